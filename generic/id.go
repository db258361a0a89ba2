package generic

import (
	"strings"

	"github.com/google/uuid"
)

// IDSuffixLen is the length of the random part of generated identifiers.
const IDSuffixLen = 10

// NewID returns prefix followed by a random alphanumeric suffix of
// IDSuffixLen characters. Uniqueness is practical, not guaranteed; Collection
// callers re-draw on collision with NewIDNotIn.
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(raw[:IDSuffixLen])
}

// NewIDNotIn draws ids until one is not taken.
func NewIDNotIn(prefix string, taken func(string) bool) string {
	for {
		id := NewID(prefix)
		if !taken(id) {
			return id
		}
	}
}
