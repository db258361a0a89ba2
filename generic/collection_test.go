package generic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bizledger/generic"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type rec struct {
	ID   string
	Name string
}

func (r rec) RecordID() string { return r.ID }

func ids(items []rec) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func abc() generic.Collection[rec] {
	return generic.NewCollection([]rec{{ID: "a"}, {ID: "b"}, {ID: "c"}}, generic.Filters{})
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNewCollection_DropsLaterDuplicates(t *testing.T) {
	// GIVEN: Items where "a" appears twice
	items := []rec{{ID: "a", Name: "first"}, {ID: "b"}, {ID: "a", Name: "second"}}

	// WHEN: Building a collection
	c := generic.NewCollection(items, generic.Filters{Query: "x"})

	// THEN: The first "a" wins and order is kept
	assert.Equal(t, []string{"a", "b"}, ids(c.List()))
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", got.Name)
	assert.Equal(t, "x", c.Filters().Query)
}

func TestCollection_ZeroValueIsEmpty(t *testing.T) {
	var c generic.Collection[rec]
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.List())
	assert.False(t, c.Has("a"))
}

// =============================================================================
// IMMUTABILITY
// =============================================================================

func TestCollection_Add_LeavesReceiverUntouched(t *testing.T) {
	// GIVEN: A collection and a copy of its list taken earlier
	before := abc()
	old := before.List()

	// WHEN: Adding a record
	after := before.Add(rec{ID: "d"})

	// THEN: Only the new value sees it
	assert.Equal(t, 3, before.Len())
	assert.Equal(t, 4, after.Len())
	assert.Equal(t, []string{"a", "b", "c"}, ids(old))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(after.List()))
}

func TestCollection_Add_ExistingIDIsNoop(t *testing.T) {
	c := abc().Add(rec{ID: "b", Name: "dup"})

	assert.Equal(t, 3, c.Len())
	got, _ := c.Get("b")
	assert.Empty(t, got.Name)
}

func TestCollection_Add_SiblingsDoNotShareBacking(t *testing.T) {
	// GIVEN: Two values derived from the same base
	base := abc()
	x := base.Add(rec{ID: "x"})
	y := base.Add(rec{ID: "y"})

	// THEN: Neither sees the other's record
	assert.Equal(t, []string{"a", "b", "c", "x"}, ids(x.List()))
	assert.Equal(t, []string{"a", "b", "c", "y"}, ids(y.List()))
}

func TestCollection_List_ReturnsCopy(t *testing.T) {
	c := abc()
	list := c.List()
	list[0].Name = "mutated"

	got, _ := c.Get("a")
	assert.Empty(t, got.Name)
}

func TestCollection_Update(t *testing.T) {
	// GIVEN: A collection
	before := abc()

	// WHEN: Updating an existing record
	after, ok := before.Update("b", func(r rec) rec {
		r.Name = "bee"
		return r
	})

	// THEN: The new value has the change, in place
	require.True(t, ok)
	got, _ := after.Get("b")
	assert.Equal(t, "bee", got.Name)
	assert.Equal(t, []string{"a", "b", "c"}, ids(after.List()))

	old, _ := before.Get("b")
	assert.Empty(t, old.Name)
}

func TestCollection_Update_MissingID(t *testing.T) {
	c, ok := abc().Update("zz", func(r rec) rec { return r })
	assert.False(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestCollection_ReplaceFirst(t *testing.T) {
	c := generic.NewCollection([]rec{{ID: "a", Name: "k"}, {ID: "b", Name: "k"}}, generic.Filters{})

	after, ok := c.ReplaceFirst(
		func(r rec) bool { return r.Name == "k" },
		func(r rec) rec { r.Name = "replaced"; return r },
	)

	require.True(t, ok)
	first, _ := after.Get("a")
	second, _ := after.Get("b")
	assert.Equal(t, "replaced", first.Name)
	assert.Equal(t, "k", second.Name)

	_, ok = c.ReplaceFirst(func(rec) bool { return false }, func(r rec) rec { return r })
	assert.False(t, ok)
}

// =============================================================================
// REMOVE
// =============================================================================

func TestCollection_Remove_PresentDecreasesByOne(t *testing.T) {
	c := abc().Remove("b")
	assert.Equal(t, []string{"a", "c"}, ids(c.List()))
}

func TestCollection_Remove_AbsentIsNoop(t *testing.T) {
	c := abc().Remove("zz")
	assert.Equal(t, 3, c.Len())
}

func TestCollection_Remove_Idempotent(t *testing.T) {
	once := abc().Remove("a")
	twice := once.Remove("a")
	assert.Equal(t, ids(once.List()), ids(twice.List()))
}

// =============================================================================
// FILTERS
// =============================================================================

func TestCollection_SetFilter_ShallowMerge(t *testing.T) {
	// GIVEN: A collection with status ALL
	c := generic.NewCollection[rec](nil, generic.Filters{Status: generic.StatusAll})

	// WHEN: Patching only the query
	c = c.SetFilter(generic.QueryPatch("acme"))

	// THEN: Status is kept
	assert.Equal(t, generic.Filters{Query: "acme", Status: generic.StatusAll}, c.Filters())

	c = c.SetFilter(generic.StatusPatch("Paid"))
	assert.Equal(t, generic.Filters{Query: "acme", Status: "Paid"}, c.Filters())
}

func TestCollection_WithFilters_Replaces(t *testing.T) {
	c := abc().SetFilter(generic.QueryPatch("q")).WithFilters(generic.Filters{})
	assert.Equal(t, generic.Filters{}, c.Filters())
	assert.Equal(t, 3, c.Len())
}
