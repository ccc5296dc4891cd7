package style

import (
	"github.com/matzehuels/fishbone/pkg/errors"
)

// NoIndex is the "undefined" index. It selects the first table entry.
const NoIndex = -1

// ClampIndex maps an arbitrary depth to a valid index into a table of n
// entries. Negative indices map to 0 and indices past the end map to n-1.
// The result is monotonic non-decreasing in index. n must be positive.
func ClampIndex(index, n int) int {
	if index < 0 {
		return 0
	}
	return min(index, n-1)
}

// Select returns table[ClampIndex(index, len(table))].
// An empty table is a CONFIGURATION error.
func Select[T any](index int, table []T) (T, error) {
	if len(table) == 0 {
		var zero T
		return zero, errors.Configuration("style table must have at least one entry")
	}
	return table[ClampIndex(index, len(table))], nil
}

// Table is a non-empty style table. The zero value is not usable; build
// tables with [NewTable].
type Table[T any] struct {
	entries []T
}

// NewTable validates and copies entries into a Table.
func NewTable[T any](entries []T) (Table[T], error) {
	if len(entries) == 0 {
		return Table[T]{}, errors.Configuration("style table must have at least one entry")
	}
	return Table[T]{entries: append([]T(nil), entries...)}, nil
}

// At returns the entry for index, clamped into range.
func (t Table[T]) At(index int) T {
	return t.entries[ClampIndex(index, len(t.entries))]
}

// Len returns the number of entries.
func (t Table[T]) Len() int { return len(t.entries) }

// Entries returns a copy of the table's entries.
func (t Table[T]) Entries() []T { return append([]T(nil), t.entries...) }
