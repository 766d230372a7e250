/*
errors.go - Centralized error types for the dairy engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The HTTP layer maps these onto status codes; nothing here is fatal to
  the process.

ERROR CATEGORIES:
  1. Validation errors - required field missing, non-positive amounts
  2. Not-found errors  - references to records absent from the snapshot
  3. Conflict errors   - duplicate customer id on create
  4. Erase errors      - cascading erase stopped partway (non-atomic)

USAGE:
  if dairy.IsNotFound(err) { ... 404 ... }
  var ee *dairy.EraseError
  if errors.As(err, &ee) { ... report ee.Phase and partial counts ... }
*/
package dairy

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCustomerNotFound is returned when an operation references a customer
	// id absent from the current snapshot.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrCustomerExists is returned when creating a customer whose id is
	// already taken. Customer ids are user-assigned and immutable.
	ErrCustomerExists = errors.New("customer id already exists")

	// ErrPaymentNotFound is returned when deleting an unknown payment.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrLogNotFound is returned when deleting a delivery entry that does
	// not exist for the given (date, customer) key.
	ErrLogNotFound = errors.New("log entry not found")

	// ErrValidation is the base error for rejected input. Wrapped by
	// ValidationError with field detail.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a required-field or range violation. These are
// raised before any mutation is sent to the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError identifies which record kind was missing.
type NotFoundError struct {
	Kind string // "customer", "payment", "log"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case "payment":
		return ErrPaymentNotFound
	case "log":
		return ErrLogNotFound
	default:
		return ErrCustomerNotFound
	}
}

// EraseError reports a cascading erase that stopped partway. The store
// offers no multi-document transaction, so records deleted before the
// failure stay deleted; Phase says how far the erase got and the counts
// say what is already gone.
type EraseError struct {
	CustomerID      string
	Phase           ErasePhase
	LogsDeleted     int
	PaymentsDeleted int
	Err             error
}

func (e *EraseError) Error() string {
	return fmt.Sprintf("erase of customer %q failed at %s (logs deleted: %d, payments deleted: %d): %v",
		e.CustomerID, e.Phase, e.LogsDeleted, e.PaymentsDeleted, e.Err)
}

func (e *EraseError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrLogNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrCustomerExists)
}
