/*
aggregate_test.go - Aggregation engine behavior

ORGANIZATION:
  1. Volume and rate resolution - how one entry turns into liters and money
  2. Daily stats - the dashboard's shift-split buckets
  3. Period aggregation - bill totals over a date range
  4. End-to-end - one customer, full week, every derived view

READING THESE TESTS:
  Each test has GIVEN/WHEN/THEN comments explaining the scenario and
  assertions with explanatory messages.
*/
package dairy_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahalaxmi/dairybook/dairy"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) dairy.Date {
	return dairy.NewDate(year, month, day)
}

func customer(id, name string, rate int64) dairy.Customer {
	return dairy.Customer{ID: id, Name: name, Rate: decimal.NewFromInt(rate)}
}

func key(d dairy.Date, customerID string) dairy.LogKey {
	return dairy.LogKey{Date: d, CustomerID: customerID}
}

// dec asserts decimal equality by value, ignoring exponent representation.
func dec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	w, err := decimal.NewFromString(want)
	require.NoError(t, err)
	assert.True(t, w.Equal(got), "want %s, got %s: %v", want, got, msgAndArgs)
}

// =============================================================================
// VOLUME AND RATE RESOLUTION
// =============================================================================

func TestLogEntry_VolumeAdditive(t *testing.T) {
	// GIVEN: 1 liter and 500 ml recorded for the morning
	// THEN: The morning volume is 1.5 L

	e := dairy.LogEntry{MorningLiters: "1", MorningML: "500"}
	dec(t, "1.5", e.MorningVolume())
	dec(t, "0", e.EveningVolume())
	dec(t, "1.5", e.TotalVolume())
}

func TestLogEntry_MissingAndUnparseableFieldsAreZero(t *testing.T) {
	// GIVEN: An entry with empty and garbage quantity fields
	// THEN: They all count as zero instead of poisoning the total

	e := dairy.LogEntry{MorningLiters: "", MorningML: "abc", EveningLiters: "2"}
	dec(t, "0", e.MorningVolume())
	dec(t, "2", e.EveningVolume())
}

func TestLogEntry_CapturedRateWins(t *testing.T) {
	// GIVEN: An entry saved at rate 12, customer's current default is 18
	// THEN: The effective rate is the historical 12, not today's 18

	e := dairy.LogEntry{Rate: "12"}
	dec(t, "12", e.EffectiveRate(decimal.NewFromInt(18)))
}

func TestLogEntry_DefaultRateWhenNoneCaptured(t *testing.T) {
	// GIVEN: An entry that never captured a rate
	// THEN: The customer's current default fills in

	e := dairy.LogEntry{MorningLiters: "1"}
	dec(t, "18", e.EffectiveRate(decimal.NewFromInt(18)))
}

// =============================================================================
// DAILY STATS
// =============================================================================

func TestComputeDayStats_ShiftBuckets(t *testing.T) {
	// GIVEN: Three customers; one delivered morning only, one evening only,
	//        one nothing at all
	// WHEN: Computing stats for the date
	// THEN: Total counts all 3 customers; each shift bucket counts only the
	//       customer with a positive volume in that shift

	d := date(2026, time.March, 5)
	customers := []dairy.Customer{
		customer("c1", "Asha", 50),
		customer("c2", "Ravi", 40),
		customer("c3", "Meena", 60),
	}
	logs := dairy.LogBook{
		key(d, "c1"): {MorningLiters: "2"},
		key(d, "c2"): {EveningLiters: "1", EveningML: "500"},
	}

	stats := dairy.ComputeDayStats(customers, logs, d)

	assert.Equal(t, 3, stats.Total.Customers, "total bucket counts all customers")
	dec(t, "3.5", stats.Total.Milk)
	dec(t, "160", stats.Total.Cost, "2*50 + 1.5*40")

	assert.Equal(t, 1, stats.Morning.Customers)
	dec(t, "2", stats.Morning.Milk)
	dec(t, "100", stats.Morning.Cost)

	assert.Equal(t, 1, stats.Evening.Customers)
	dec(t, "1.5", stats.Evening.Milk)
	dec(t, "60", stats.Evening.Cost)
}

func TestComputeDayStats_Idempotent(t *testing.T) {
	// GIVEN: The same snapshots
	// WHEN: Computing the same date twice
	// THEN: Both results are identical (pure function, no hidden state)

	d := date(2026, time.March, 5)
	customers := []dairy.Customer{customer("c1", "Asha", 50)}
	logs := dairy.LogBook{key(d, "c1"): {MorningLiters: "2", Rate: "45"}}

	first := dairy.ComputeDayStats(customers, logs, d)
	second := dairy.ComputeDayStats(customers, logs, d)
	assert.Equal(t, first, second)
}

func TestComputeDayStats_NoEntries(t *testing.T) {
	// GIVEN: Customers exist but nothing was logged for the date
	// THEN: Milk and cost are zero; total customer count still shows

	stats := dairy.ComputeDayStats(
		[]dairy.Customer{customer("c1", "Asha", 50)},
		dairy.LogBook{},
		date(2026, time.March, 5),
	)
	assert.Equal(t, 1, stats.Total.Customers)
	dec(t, "0", stats.Total.Milk)
	assert.Equal(t, 0, stats.Morning.Customers)
	assert.Equal(t, 0, stats.Evening.Customers)
}

// =============================================================================
// PERIOD AGGREGATION
// =============================================================================

func TestCustomerPeriod_SingleDayRange(t *testing.T) {
	// GIVEN: One entry of 2 L at rate 10
	// WHEN: The range starts and ends on that day
	// THEN: Totals are 2.0 L / 20 cost / average rate 10, one detail row

	c := customer("c1", "Asha", 10)
	d := date(2026, time.April, 1)
	logs := dairy.LogBook{key(d, "c1"): {MorningLiters: "2"}}

	totals, details := dairy.CustomerPeriod(c, logs, d, d)

	dec(t, "2", totals.Milk)
	dec(t, "20", totals.Cost)
	dec(t, "10", totals.AverageRate)
	require.Len(t, details, 1)
	assert.True(t, details[0].Date.Equal(d))
}

func TestCustomerPeriod_InvertedRangeIsEmpty(t *testing.T) {
	// GIVEN: from is after to
	// THEN: Zero totals, no rows, no error

	c := customer("c1", "Asha", 10)
	logs := dairy.LogBook{key(date(2026, time.April, 1), "c1"): {MorningLiters: "2"}}

	totals, details := dairy.CustomerPeriod(c, logs,
		date(2026, time.April, 10), date(2026, time.April, 1))

	dec(t, "0", totals.Milk)
	dec(t, "0", totals.Cost)
	assert.Empty(t, details)
}

func TestCustomerPeriod_MixedRates(t *testing.T) {
	// GIVEN: Two delivery days, one priced at a captured historical rate,
	//        one falling back to the customer default
	// THEN: Each day is priced with its own rate; the average blends them

	c := customer("c1", "Asha", 18)
	logs := dairy.LogBook{
		key(date(2026, time.May, 1), "c1"): {MorningLiters: "1", Rate: "12"},
		key(date(2026, time.May, 2), "c1"): {MorningLiters: "1"},
	}

	totals, details := dairy.CustomerPeriod(c, logs,
		date(2026, time.May, 1), date(2026, time.May, 31))

	dec(t, "2", totals.Milk)
	dec(t, "30", totals.Cost, "1*12 + 1*18")
	dec(t, "15", totals.AverageRate)
	require.Len(t, details, 2)
	dec(t, "12", details[0].Rate)
	dec(t, "18", details[1].Rate)
}

func TestCustomerPeriod_ZeroVolumeDayProducesNoRow(t *testing.T) {
	// GIVEN: An entry exists but records no quantity (rate-only save)
	// THEN: It contributes nothing and produces no detail row

	c := customer("c1", "Asha", 18)
	logs := dairy.LogBook{key(date(2026, time.May, 1), "c1"): {Rate: "20"}}

	totals, details := dairy.CustomerPeriod(c, logs,
		date(2026, time.May, 1), date(2026, time.May, 2))

	dec(t, "0", totals.Milk)
	assert.Empty(t, details)
	dec(t, "18", totals.AverageRate, "falls back to the customer default")
}

func TestCustomerPeriod_SimilarIDsDoNotCollide(t *testing.T) {
	// GIVEN: Customers "c1" and "cc1"; only "cc1" has an entry
	// THEN: "c1" sees nothing of it (explicit composite keys, no suffix
	//       matching)

	c1 := customer("c1", "Asha", 10)
	logs := dairy.LogBook{key(date(2026, time.June, 1), "cc1"): {MorningLiters: "5"}}

	totals, details := dairy.CustomerPeriod(c1, logs,
		date(2026, time.June, 1), date(2026, time.June, 30))

	dec(t, "0", totals.Milk)
	assert.Empty(t, details)
}

func TestMasterPeriod_OneRowPerCustomer(t *testing.T) {
	// GIVEN: Two customers, only one with deliveries
	// THEN: Both get a row, in snapshot order; the idle one shows zeros

	customers := []dairy.Customer{
		customer("c1", "Asha", 50),
		customer("c2", "Ravi", 40),
	}
	logs := dairy.LogBook{
		key(date(2026, time.July, 1), "c1"): {MorningLiters: "2"},
	}

	rows := dairy.MasterPeriod(customers, logs,
		date(2026, time.July, 1), date(2026, time.July, 31))

	require.Len(t, rows, 2)
	assert.Equal(t, "c1", rows[0].Customer.ID)
	dec(t, "2", rows[0].Totals.Milk)
	assert.Equal(t, "c2", rows[1].Customer.ID)
	dec(t, "0", rows[1].Totals.Milk)
}

// =============================================================================
// END-TO-END SCENARIO
// =============================================================================

func TestAggregation_FullDayScenario(t *testing.T) {
	// GIVEN: Ravi gets 2 L in the morning and 1 L + 500 ml in the evening,
	//        all at rate 40
	// THEN: Dashboard shows morning 2.0 L / 80, evening 1.5 L / 60,
	//       total 3.5 L / 140 - and the bill for that single day agrees

	d := date(2026, time.August, 15)
	ravi := customer("r1", "Ravi", 40)
	logs := dairy.LogBook{
		key(d, "r1"): {MorningLiters: "2", EveningLiters: "1", EveningML: "500"},
	}

	stats := dairy.ComputeDayStats([]dairy.Customer{ravi}, logs, d)
	dec(t, "2", stats.Morning.Milk)
	dec(t, "80", stats.Morning.Cost)
	dec(t, "1.5", stats.Evening.Milk)
	dec(t, "60", stats.Evening.Cost)
	dec(t, "3.5", stats.Total.Milk)
	dec(t, "140", stats.Total.Cost)

	totals, _ := dairy.CustomerPeriod(ravi, logs, d, d)
	dec(t, "3.5", totals.Milk, "bill agrees with dashboard")
	dec(t, "140", totals.Cost)
}
