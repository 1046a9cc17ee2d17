package gracejoin

import "iter"

// Source is anything a join can read records from: a base relation, a
// spilled partition, a finished run or another join.
type Source interface {
	Schema() *Schema
	Records() iter.Seq2[Record, error]
}

// SliceSource serves records held in memory.
type SliceSource struct {
	schema  *Schema
	records []Record
}

func NewSliceSource(schema *Schema, records []Record) *SliceSource {
	return &SliceSource{schema: schema, records: records}
}

func (s *SliceSource) Schema() *Schema {
	return s.schema
}

func (s *SliceSource) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for _, r := range s.records {
			if !yield(r, nil) {
				return
			}
		}
	}
}
