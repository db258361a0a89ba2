/*
Package generic provides the domain-agnostic ledger engine.

PURPOSE:
  This package contains the building blocks every entity collection of the
  ledger shares. Sales, purchases, payments and receipts are all ordered,
  uniquely-keyed sets of records with their own search state; the same
  engine handles identity, immutable updates, filtering and persistence
  plumbing for all of them.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record:      Anything with a stable string identifier
  - Filters:     The per-collection search state (free text + status)
  - FilterPatch: A partial update to Filters (shallow merge)
  - Day:         Calendar dates in YYYY-MM-DD form

DESIGN PRINCIPLES:
  1. Value semantics: collections are never mutated in place
  2. Precision: amounts use decimal.Decimal (see ledger package)
  3. Idempotent removal: deleting an absent id is a no-op

SEE ALSO:
  - collection.go: Immutable ordered collection
  - filter.go:     Search predicate
  - id.go:         Identifier generation
  - store.go:      Durable key-value persistence interface
*/
package generic

import "time"

// =============================================================================
// RECORD - Anything stored in a collection
// =============================================================================

// Record is implemented by every entity kept in a Collection.
type Record interface {
	RecordID() string
}

// =============================================================================
// FILTERS - Per-collection search state
// =============================================================================

// StatusAll is the sentinel status filter that matches every record.
const StatusAll = "ALL"

// Filters is the search state persisted alongside each collection.
// Status is only meaningful for collections whose records carry a status.
type Filters struct {
	Query  string `json:"q"`
	Status string `json:"status,omitempty"`
}

// FilterPatch is a partial Filters update. Nil fields are left untouched.
type FilterPatch struct {
	Query  *string `json:"q,omitempty"`
	Status *string `json:"status,omitempty"`
}

// Merge applies the patch on top of f and returns the result.
func (f Filters) Merge(p FilterPatch) Filters {
	if p.Query != nil {
		f.Query = *p.Query
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	return f
}

// QueryPatch is shorthand for a patch that only sets the free-text query.
func QueryPatch(q string) FilterPatch { return FilterPatch{Query: &q} }

// StatusPatch is shorthand for a patch that only sets the status filter.
func StatusPatch(s string) FilterPatch { return FilterPatch{Status: &s} }

// =============================================================================
// DAYS
// =============================================================================

// DayLayout is the calendar date format used throughout the ledger.
const DayLayout = "2006-01-02"

// Today returns the current UTC date as YYYY-MM-DD.
func Today() string {
	return time.Now().UTC().Format(DayLayout)
}

// IsDay reports whether s is a valid YYYY-MM-DD date.
func IsDay(s string) bool {
	_, err := time.Parse(DayLayout, s)
	return err == nil
}
