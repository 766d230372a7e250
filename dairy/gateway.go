/*
gateway.go - Mutation gateway

PURPOSE:
  The single entry point through which the application mutates the store.
  The gateway validates (required fields, positive amounts, duplicate ids,
  existence) BEFORE forwarding; the store itself enforces nothing beyond
  key semantics. Nothing is updated locally on success - the replica sees
  the change through the next snapshot.

CASCADING ERASE:
  EraseCustomer removes a customer's entire financial history plus the
  customer document, phase by phase (logs, then payments, then the
  customer), and reports what each phase deleted. The store has no
  multi-document transaction, so a failure leaves earlier phases applied;
  the resulting EraseError carries the phase reached and the partial
  counts so the caller can say exactly what state the store is in.
*/
package dairy

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Gateway validates mutations and forwards them to the store.
type Gateway struct {
	store Store
	log   *zap.Logger
}

func NewGateway(store Store, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{store: store, log: log}
}

// =============================================================================
// CUSTOMERS
// =============================================================================

// AddCustomer creates a customer. The id is user-assigned; creation is
// rejected when the id is blank, the name is blank, the rate is not
// positive, or the id is already taken.
func (g *Gateway) AddCustomer(ctx context.Context, c Customer) error {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	if c.ID == "" {
		return &ValidationError{Field: "id", Reason: "is required"}
	}
	if c.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if !c.Rate.IsPositive() {
		return &ValidationError{Field: "rate", Reason: "must be a positive number"}
	}
	c.Shift = c.Shift.Normalize()

	existing, err := g.store.Customers(ctx)
	if err != nil {
		return err
	}
	if _, err := FindCustomer(existing, c.ID); err == nil {
		return ErrCustomerExists
	}

	if err := g.store.PutCustomer(ctx, c); err != nil {
		g.log.Error("add customer failed", zap.String("customer_id", c.ID), zap.Error(err))
		return err
	}
	g.log.Info("customer added", zap.String("customer_id", c.ID))
	return nil
}

// UpdateCustomer merges a partial update into an existing customer. The id
// itself can never change.
func (g *Gateway) UpdateCustomer(ctx context.Context, id string, patch CustomerPatch) error {
	if patch.Rate != nil && !patch.Rate.IsPositive() {
		return &ValidationError{Field: "rate", Reason: "must be a positive number"}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if err := g.store.MergeCustomer(ctx, id, patch); err != nil {
		g.log.Error("update customer failed", zap.String("customer_id", id), zap.Error(err))
		return err
	}
	return nil
}

// DeleteCustomer removes the customer document only; delivery logs and
// payments stay behind. Use EraseCustomer for the full cascade.
func (g *Gateway) DeleteCustomer(ctx context.Context, id string) error {
	return g.store.DeleteCustomer(ctx, id)
}

// =============================================================================
// DELIVERY LOG
// =============================================================================

// SaveLogEntry merge-upserts a delivery entry for (date, customerID). The
// customer must exist in the current snapshot; the patch should carry the
// rate in effect at save time so the entry stays historically priced.
func (g *Gateway) SaveLogEntry(ctx context.Context, date Date, customerID string, patch LogPatch) error {
	if date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	customers, err := g.store.Customers(ctx)
	if err != nil {
		return err
	}
	if _, err := FindCustomer(customers, customerID); err != nil {
		return err
	}
	key := LogKey{Date: date, CustomerID: customerID}
	if err := g.store.MergeLog(ctx, key, patch); err != nil {
		g.log.Error("save log entry failed",
			zap.String("customer_id", customerID), zap.String("date", date.String()), zap.Error(err))
		return err
	}
	return nil
}

// DeleteLogEntry removes one delivery entry.
func (g *Gateway) DeleteLogEntry(ctx context.Context, date Date, customerID string) error {
	return g.store.DeleteLog(ctx, LogKey{Date: date, CustomerID: customerID})
}

// =============================================================================
// PAYMENTS
// =============================================================================

// AddPayment records a payment and returns the store-assigned id.
func (g *Gateway) AddPayment(ctx context.Context, p Payment) (string, error) {
	if strings.TrimSpace(p.CustomerID) == "" {
		return "", &ValidationError{Field: "customerId", Reason: "is required"}
	}
	if !p.Amount.IsPositive() {
		return "", &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	if p.Date.IsZero() {
		p.Date = Today()
	}
	customers, err := g.store.Customers(ctx)
	if err != nil {
		return "", err
	}
	if _, err := FindCustomer(customers, p.CustomerID); err != nil {
		return "", err
	}
	id, err := g.store.AddPayment(ctx, p)
	if err != nil {
		g.log.Error("add payment failed", zap.String("customer_id", p.CustomerID), zap.Error(err))
		return "", err
	}
	g.log.Info("payment added",
		zap.String("payment_id", id), zap.String("customer_id", p.CustomerID))
	return id, nil
}

// DeletePayment removes one payment.
func (g *Gateway) DeletePayment(ctx context.Context, id string) error {
	return g.store.DeletePayment(ctx, id)
}

// =============================================================================
// CASCADING ERASE
// =============================================================================

// ErasePhase marks how far a cascading erase has progressed.
type ErasePhase string

const (
	EraseNotStarted      ErasePhase = "NOT_STARTED"
	EraseLogsDeleted     ErasePhase = "LOGS_DELETED"
	ErasePaymentsDeleted ErasePhase = "PAYMENTS_DELETED"
	EraseCustomerDeleted ErasePhase = "CUSTOMER_DELETED"
)

// EraseResult reports what a completed (or failed) erase removed.
type EraseResult struct {
	CustomerID      string
	LogsDeleted     int
	PaymentsDeleted int
	Phase           ErasePhase
}

// EraseCustomer deletes every delivery entry for the customer, then every
// payment, then the customer document. The phases are sequential, not
// atomic: on failure the returned EraseError says which phase was reached
// and what was already deleted, and nothing is retried.
func (g *Gateway) EraseCustomer(ctx context.Context, id string) (EraseResult, error) {
	res := EraseResult{CustomerID: id, Phase: EraseNotStarted}

	customers, err := g.store.Customers(ctx)
	if err != nil {
		return res, err
	}
	if _, err := FindCustomer(customers, id); err != nil {
		return res, err
	}

	fail := func(err error) (EraseResult, error) {
		return res, &EraseError{
			CustomerID:      id,
			Phase:           res.Phase,
			LogsDeleted:     res.LogsDeleted,
			PaymentsDeleted: res.PaymentsDeleted,
			Err:             err,
		}
	}

	// Phase 1: delivery log entries.
	logs, err := g.store.Logs(ctx)
	if err != nil {
		return fail(err)
	}
	for _, de := range logs.ByCustomer(id) {
		if err := g.store.DeleteLog(ctx, LogKey{Date: de.Date, CustomerID: id}); err != nil {
			return fail(err)
		}
		res.LogsDeleted++
	}
	res.Phase = EraseLogsDeleted

	// Phase 2: payments.
	payments, err := g.store.Payments(ctx)
	if err != nil {
		return fail(err)
	}
	for _, p := range PaymentsFor(payments, id) {
		if err := g.store.DeletePayment(ctx, p.ID); err != nil {
			return fail(err)
		}
		res.PaymentsDeleted++
	}
	res.Phase = ErasePaymentsDeleted

	// Phase 3: the customer document.
	if err := g.store.DeleteCustomer(ctx, id); err != nil {
		return fail(err)
	}
	res.Phase = EraseCustomerDeleted

	g.log.Info("customer erased",
		zap.String("customer_id", id),
		zap.Int("logs_deleted", res.LogsDeleted),
		zap.Int("payments_deleted", res.PaymentsDeleted))
	return res, nil
}
