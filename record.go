package gracejoin

import (
	"slices"
	"strings"
)

// Record is one immutable row.
type Record struct {
	values []Value
}

func NewRecord(values ...Value) Record {
	return Record{values: slices.Clone(values)}
}

func (r Record) Len() int {
	return len(r.values)
}

func (r Record) Value(i int) Value {
	return r.values[i]
}

func (r Record) Values() []Value {
	return slices.Clone(r.values)
}

// Concat returns a record holding r's values followed by other's.
func (r Record) Concat(other Record) Record {
	return Record{values: slices.Concat(r.values, other.values)}
}

func (r Record) Equal(other Record) bool {
	return slices.EqualFunc(r.values, other.values, Value.Equal)
}

func (r Record) String() string {
	parts := make([]string, len(r.values))
	for i, v := range r.values {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
