package generic

// =============================================================================
// COLLECTION - Ordered, unique-by-id, immutable set of records
// =============================================================================

// Collection is an ordered set of records keyed by RecordID.
//
// INVARIANTS:
//   - Unique: no two items share an id.
//   - Ordered: insertion order is kept for display.
//   - Immutable: every mutating method returns a new Collection whose backing
//     array is never shared with the receiver, so a reader iterating an older
//     value never observes a half-applied change.
//
// The zero value is an empty collection with empty filters.
type Collection[T Record] struct {
	items   []T
	filters Filters
}

// NewCollection builds a collection from items, dropping later duplicates.
func NewCollection[T Record](items []T, filters Filters) Collection[T] {
	seen := make(map[string]bool, len(items))
	kept := make([]T, 0, len(items))
	for _, it := range items {
		id := it.RecordID()
		if seen[id] {
			continue
		}
		seen[id] = true
		kept = append(kept, it)
	}
	return Collection[T]{items: kept, filters: filters}
}

// Len returns the number of records.
func (c Collection[T]) Len() int { return len(c.items) }

// Filters returns the collection's search state.
func (c Collection[T]) Filters() Filters { return c.filters }

// List returns a copy of the records in order.
func (c Collection[T]) List() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Has reports whether a record with id exists.
func (c Collection[T]) Has(id string) bool {
	return c.indexOf(id) != -1
}

// Get returns the record with id.
func (c Collection[T]) Get(id string) (T, bool) {
	if i := c.indexOf(id); i != -1 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Find returns every record matching pred, in order.
func (c Collection[T]) Find(pred func(T) bool) []T {
	var out []T
	for _, it := range c.items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// Add appends rec. If a record with the same id already exists the
// collection is returned unchanged; callers assign fresh ids with NewID.
func (c Collection[T]) Add(rec T) Collection[T] {
	if c.Has(rec.RecordID()) {
		return c
	}
	items := make([]T, len(c.items), len(c.items)+1)
	copy(items, c.items)
	return Collection[T]{items: append(items, rec), filters: c.filters}
}

// Update replaces the record with id by fn(existing). Returns false and the
// unchanged collection when id is absent. fn must not change the id.
func (c Collection[T]) Update(id string, fn func(T) T) (Collection[T], bool) {
	i := c.indexOf(id)
	if i == -1 {
		return c, false
	}
	items := c.List()
	items[i] = fn(items[i])
	return Collection[T]{items: items, filters: c.filters}, true
}

// ReplaceFirst replaces the first record matching pred by fn(existing).
// Returns false when nothing matched.
func (c Collection[T]) ReplaceFirst(pred func(T) bool, fn func(T) T) (Collection[T], bool) {
	for i, it := range c.items {
		if pred(it) {
			items := c.List()
			items[i] = fn(it)
			return Collection[T]{items: items, filters: c.filters}, true
		}
	}
	return c, false
}

// Remove drops the record with id. Removing an absent id is a no-op.
func (c Collection[T]) Remove(id string) Collection[T] {
	i := c.indexOf(id)
	if i == -1 {
		return c
	}
	items := make([]T, 0, len(c.items)-1)
	items = append(items, c.items[:i]...)
	items = append(items, c.items[i+1:]...)
	return Collection[T]{items: items, filters: c.filters}
}

// SetFilter shallow-merges p into the collection's filters.
func (c Collection[T]) SetFilter(p FilterPatch) Collection[T] {
	return Collection[T]{items: c.items, filters: c.filters.Merge(p)}
}

// WithFilters replaces the filters wholesale.
func (c Collection[T]) WithFilters(f Filters) Collection[T] {
	return Collection[T]{items: c.items, filters: f}
}

func (c Collection[T]) indexOf(id string) int {
	for i, it := range c.items {
		if it.RecordID() == id {
			return i
		}
	}
	return -1
}
