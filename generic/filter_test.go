package generic_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/bizledger/generic"
)

type entry struct {
	Who    string
	Note   string
	Status string
}

func entryFields(e entry) []string { return []string{e.Who, e.Note} }
func entryStatus(e entry) string   { return e.Status }

var entries = []entry{
	{Who: "Acme Ltd", Note: "pipes", Status: "Unpaid"},
	{Who: "Beta", Note: "", Status: "Paid"},
	{Who: "acme north", Note: "valves", Status: "Paid"},
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		query  string
		want   bool
	}{
		{"empty query matches", []string{"x"}, "", true},
		{"empty fields empty query", nil, "", true},
		{"case insensitive", []string{"Acme"}, "aCmE", true},
		{"across fields with space", []string{"Pipe", "2"}, "pipe 2", true},
		{"empty fields skipped in join", []string{"Pipe", "", "2"}, "pipe 2", true},
		{"no match", []string{"Acme"}, "beta", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generic.Match(tt.fields, tt.query))
		})
	}
}

func TestFilter_EmptyQueryNoStatus_IsIdentity(t *testing.T) {
	got := generic.Filter(entries, "", "", entryFields, entryStatus)
	assert.Equal(t, entries, got)
}

func TestFilter_StatusAllIgnored(t *testing.T) {
	got := generic.Filter(entries, "", generic.StatusAll, entryFields, entryStatus)
	assert.Len(t, got, 3)
}

func TestFilter_QueryKeepsOrder(t *testing.T) {
	got := generic.Filter(entries, "ACME", "", entryFields, entryStatus)
	assert.Equal(t, []entry{entries[0], entries[2]}, got)
}

func TestFilter_QueryAndStatus(t *testing.T) {
	got := generic.Filter(entries, "acme", "Paid", entryFields, entryStatus)
	assert.Equal(t, []entry{entries[2]}, got)
}

func TestFilter_NilStatusOfIgnoresStatus(t *testing.T) {
	got := generic.Filter(entries, "", "Paid", entryFields, nil)
	assert.Len(t, got, 3)
}

func TestFilter_DoesNotAliasInput(t *testing.T) {
	got := generic.Filter(entries, "", "", entryFields, entryStatus)
	got[0].Who = strings.ToUpper(got[0].Who)
	assert.Equal(t, "Acme Ltd", entries[0].Who)
}
