package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahalaxmi/dairybook/dairy"
	"github.com/mahalaxmi/dairybook/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func asha() dairy.Customer {
	return dairy.Customer{
		ID:     "c1",
		Name:   "Asha",
		Mobile: "9876543210",
		Rate:   decimal.NewFromInt(50),
		Shift:  dairy.ShiftMorning,
	}
}

func strptr(s string) *string { return &s }

// =============================================================================
// CUSTOMERS
// =============================================================================

func TestSQLite_CustomerRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.PutCustomer(ctx, asha()))

	customers, err := st.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)

	got := customers[0]
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, "9876543210", got.Mobile)
	assert.True(t, got.Rate.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, dairy.ShiftMorning, got.Shift)
}

func TestSQLite_MergeCustomer_LeavesOtherFieldsIntact(t *testing.T) {
	// GIVEN: A stored customer
	// WHEN: Merging a rate-only patch
	// THEN: Name, mobile and shift survive the merge

	st := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.PutCustomer(ctx, asha()))

	newRate := decimal.NewFromInt(60)
	require.NoError(t, st.MergeCustomer(ctx, "c1", dairy.CustomerPatch{Rate: &newRate}))

	customers, _ := st.Customers(ctx)
	require.Len(t, customers, 1)
	assert.Equal(t, "Asha", customers[0].Name)
	assert.Equal(t, "9876543210", customers[0].Mobile)
	assert.True(t, customers[0].Rate.Equal(newRate))
}

func TestSQLite_MergeCustomer_UnknownID(t *testing.T) {
	st := newTestStore(t)
	err := st.MergeCustomer(context.Background(), "ghost", dairy.CustomerPatch{Name: strptr("X")})
	assert.True(t, dairy.IsNotFound(err))
}

func TestSQLite_DeleteCustomer(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.PutCustomer(ctx, asha()))

	require.NoError(t, st.DeleteCustomer(ctx, "c1"))
	customers, _ := st.Customers(ctx)
	assert.Empty(t, customers)

	err := st.DeleteCustomer(ctx, "c1")
	assert.True(t, dairy.IsNotFound(err))
}

// =============================================================================
// DELIVERY LOG
// =============================================================================

func TestSQLite_MergeLog_FieldLevelMerge(t *testing.T) {
	// GIVEN: A morning quantity already stored
	// WHEN: A second merge carries only the evening quantity
	// THEN: Both shifts are present afterwards

	st := newTestStore(t)
	ctx := context.Background()
	k := dairy.LogKey{Date: dairy.NewDate(2026, time.March, 1), CustomerID: "c1"}

	require.NoError(t, st.MergeLog(ctx, k, dairy.LogPatch{MorningLiters: strptr("2"), Rate: strptr("50")}))
	require.NoError(t, st.MergeLog(ctx, k, dairy.LogPatch{EveningLiters: strptr("1"), EveningML: strptr("500")}))

	logs, err := st.Logs(ctx)
	require.NoError(t, err)
	entry := logs[k]
	assert.Equal(t, "2", entry.MorningLiters)
	assert.Equal(t, "1", entry.EveningLiters)
	assert.Equal(t, "500", entry.EveningML)
	assert.Equal(t, "50", entry.Rate)
}

func TestSQLite_DeleteLog(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	k := dairy.LogKey{Date: dairy.NewDate(2026, time.March, 1), CustomerID: "c1"}

	require.NoError(t, st.MergeLog(ctx, k, dairy.LogPatch{MorningLiters: strptr("2")}))
	require.NoError(t, st.DeleteLog(ctx, k))

	logs, _ := st.Logs(ctx)
	assert.Empty(t, logs)

	err := st.DeleteLog(ctx, k)
	assert.True(t, dairy.IsNotFound(err))
}

func TestSQLite_SimilarCustomerIDsStayDistinct(t *testing.T) {
	// Composite primary key: "c1" and "cc1" on the same date are separate
	// rows, never overwriting each other.

	st := newTestStore(t)
	ctx := context.Background()
	d := dairy.NewDate(2026, time.March, 1)

	require.NoError(t, st.MergeLog(ctx, dairy.LogKey{Date: d, CustomerID: "c1"},
		dairy.LogPatch{MorningLiters: strptr("1")}))
	require.NoError(t, st.MergeLog(ctx, dairy.LogKey{Date: d, CustomerID: "cc1"},
		dairy.LogPatch{MorningLiters: strptr("9")}))

	logs, _ := st.Logs(ctx)
	require.Len(t, logs, 2)
	assert.Equal(t, "1", logs[dairy.LogKey{Date: d, CustomerID: "c1"}].MorningLiters)
	assert.Equal(t, "9", logs[dairy.LogKey{Date: d, CustomerID: "cc1"}].MorningLiters)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestSQLite_PaymentRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.AddPayment(ctx, dairy.Payment{
		CustomerID: "c1",
		Amount:     decimal.NewFromFloat(150.50),
		Date:       dairy.NewDate(2026, time.April, 2),
		Method:     "upi",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id, "store assigns the id")

	payments, err := st.Payments(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, id, payments[0].ID)
	assert.True(t, payments[0].Amount.Equal(decimal.NewFromFloat(150.50)))
	assert.True(t, payments[0].Date.Equal(dairy.NewDate(2026, time.April, 2)))
	assert.Equal(t, "upi", payments[0].Method)
}

func TestSQLite_PaymentsOrderedByDate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.AddPayment(ctx, dairy.Payment{
		CustomerID: "c1", Amount: decimal.NewFromInt(10), Date: dairy.NewDate(2026, time.April, 20)})
	require.NoError(t, err)
	_, err = st.AddPayment(ctx, dairy.Payment{
		CustomerID: "c1", Amount: decimal.NewFromInt(20), Date: dairy.NewDate(2026, time.April, 5)})
	require.NoError(t, err)

	payments, _ := st.Payments(ctx)
	require.Len(t, payments, 2)
	assert.True(t, payments[0].Date.Before(payments[1].Date))
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

func TestSQLite_SubscriptionDeliversSnapshots(t *testing.T) {
	// GIVEN: A subscriber
	// THEN: It receives the current collection immediately, then the whole
	//       collection again after every mutation, and nothing after cancel

	st := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.PutCustomer(ctx, asha()))

	var snapshots [][]dairy.Customer
	cancel := st.SubscribeCustomers(func(cs []dairy.Customer) {
		snapshots = append(snapshots, cs)
	})

	require.Len(t, snapshots, 1, "initial snapshot on subscribe")
	assert.Len(t, snapshots[0], 1)

	require.NoError(t, st.PutCustomer(ctx, dairy.Customer{
		ID: "c2", Name: "Ravi", Rate: decimal.NewFromInt(40)}))
	require.Len(t, snapshots, 2)
	assert.Len(t, snapshots[1], 2, "whole collection, not a diff")

	cancel()
	require.NoError(t, st.DeleteCustomer(ctx, "c2"))
	assert.Len(t, snapshots, 2, "no delivery after cancel")
}

func TestSQLite_LogSubscriptionFiresOnMergeAndDelete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	var count int
	cancel := st.SubscribeLogs(func(dairy.LogBook) { count++ })
	defer cancel()
	require.Equal(t, 1, count)

	k := dairy.LogKey{Date: dairy.NewDate(2026, time.May, 1), CustomerID: "c1"}
	require.NoError(t, st.MergeLog(ctx, k, dairy.LogPatch{MorningLiters: strptr("1")}))
	require.NoError(t, st.DeleteLog(ctx, k))
	assert.Equal(t, 3, count)
}
