/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The ledger package returns these; the API maps them to HTTP statuses.

ERROR CATEGORIES:
  1. NotFound     - An operation that must produce a result referenced an
                    id absent from its collection (settle, receipt-for-sale,
                    update-by-id lookups). Removal and filter changes never
                    report NotFound: they are silent no-ops.
  2. Validation   - A required field is empty for the active payment type,
                    or a caller omitted a mandatory choice. Blocks the
                    mutation: nothing is stored.
  3. Persistence  - The durable store could not be read or written. Logged
                    and swallowed by the persistence gateway; the ledger
                    mutation stands regardless.

USAGE:
    if errors.Is(err, generic.ErrNotFound) {
        // 404
    }

    var verr *generic.ValidationError
    if errors.As(err, &verr) {
        fmt.Println(verr.Field)
    }

SEE ALSO:
  - ledger/linkage.go: Returns NotFound and Validation errors
  - ledger/persist.go: Produces and swallows Persistence errors
  - api/handlers.go:   Maps errors to HTTP statuses
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when input violates a business rule.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence is returned when the durable store fails.
	ErrPersistence = errors.New("persistence failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the collection and id that could not be resolved.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Collection, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// PersistenceError wraps a store failure with the operation and key.
type PersistenceError struct {
	Op  string // "read" or "write"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// NotFound builds a NotFoundError.
func NotFound(collection, id string) error {
	return &NotFoundError{Collection: collection, ID: id}
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation returns true if the error is due to invalid client input.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsPersistence returns true if the error came from the durable store.
func IsPersistence(err error) bool { return errors.Is(err, ErrPersistence) }
