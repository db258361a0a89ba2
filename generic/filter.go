package generic

import "strings"

// =============================================================================
// FILTER ENGINE - Free-text + status search over a collection
// =============================================================================

// Match reports whether query is a case-insensitive substring of the
// haystack built from fields. Empty fields are skipped and the rest are
// joined with a single space. An empty query matches everything.
func Match(fields []string, query string) bool {
	if query == "" {
		return true
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	haystack := strings.ToLower(strings.Join(parts, " "))
	return strings.Contains(haystack, strings.ToLower(query))
}

// Filter returns the subsequence of items matching query and status, in the
// original order. fields selects the searchable values of a record. status
// is ignored when empty or StatusAll; otherwise statusOf(rec) must equal it.
// statusOf may be nil for collections without a status.
func Filter[T any](items []T, query, status string, fields func(T) []string, statusOf func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if status != "" && status != StatusAll && statusOf != nil && statusOf(it) != status {
			continue
		}
		if !Match(fields(it), query) {
			continue
		}
		out = append(out, it)
	}
	return out
}
