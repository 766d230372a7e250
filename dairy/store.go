/*
store.go - Document store contract

PURPOSE:
  Defines the interface between the application and its document store.
  The store holds three collections - customers, logs, payments - and
  offers two things per collection: mutations and a subscription that
  pushes the ENTIRE collection to the callback on every change.

SNAPSHOT CONTRACT:
  Subscribers receive the whole current collection, not diffs, and replace
  their local copy wholesale each call. The three streams are independent:
  nothing guarantees a log snapshot and a customer snapshot are mutually
  consistent at any instant. Consumers treat missing lookups as "no data".

MUTATION CONTRACT:
  Mutations are acknowledged (the caller may report success or failure to
  the user) but nothing is applied optimistically anywhere - local truth
  always arrives via the next snapshot. Log entries merge field-by-field;
  customers replace on create and merge on update; payments are created
  with a store-assigned id and never mutated.

IMPLEMENTATIONS:
  - dairy/store: in-memory, for tests and development
  - store/sqlite: production SQLite with the same fan-out semantics
*/
package dairy

import "context"

// CancelFunc tears down one subscription.
type CancelFunc func()

// Store is the document store holding the three collections.
type Store interface {
	// --- customers ---

	// PutCustomer writes a full customer document (create path).
	PutCustomer(ctx context.Context, c Customer) error

	// MergeCustomer applies a partial update to an existing customer.
	// Returns ErrCustomerNotFound if the id is unknown.
	MergeCustomer(ctx context.Context, id string, patch CustomerPatch) error

	// DeleteCustomer removes the customer document only. Logs and payments
	// are untouched; cascading is the Gateway's job.
	DeleteCustomer(ctx context.Context, id string) error

	// --- delivery log ---

	// MergeLog upserts the entry at key, merging patch fields into whatever
	// is already stored. Creates the entry if absent.
	MergeLog(ctx context.Context, key LogKey, patch LogPatch) error

	// DeleteLog removes one entry. Returns ErrLogNotFound if absent.
	DeleteLog(ctx context.Context, key LogKey) error

	// --- payments ---

	// AddPayment stores a payment and returns the store-assigned id.
	AddPayment(ctx context.Context, p Payment) (string, error)

	// DeletePayment removes one payment. Returns ErrPaymentNotFound if absent.
	DeletePayment(ctx context.Context, id string) error

	// --- reads (current snapshot, for one-shot consumers) ---

	Customers(ctx context.Context) ([]Customer, error)
	Logs(ctx context.Context) (LogBook, error)
	Payments(ctx context.Context) ([]Payment, error)

	// --- subscriptions (whole-collection push) ---
	//
	// Each Subscribe delivers the current collection immediately, then again
	// after every change, until the returned CancelFunc is called. Payments
	// arrive sorted by date ascending.

	SubscribeCustomers(fn func([]Customer)) CancelFunc
	SubscribeLogs(fn func(LogBook)) CancelFunc
	SubscribePayments(fn func([]Payment)) CancelFunc
}
