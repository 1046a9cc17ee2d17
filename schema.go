package gracejoin

import (
	"fmt"
	"slices"
	"strings"
)

type Column struct {
	Name string
	Type Type
	// Size is the declared width of a StringType column in bytes. Fixed-width
	// types ignore it.
	Size int
}

func (c Column) width() int {
	if c.Type == StringType {
		return c.Size
	}
	return c.Type.fixedSize()
}

// Schema is the ordered list of columns describing a record's shape.
type Schema struct {
	columns []Column
}

func NewSchema(columns ...Column) *Schema {
	return &Schema{columns: slices.Clone(columns)}
}

func (s *Schema) Len() int {
	return len(s.columns)
}

func (s *Schema) Column(i int) Column {
	return s.columns[i]
}

func (s *Schema) Columns() []Column {
	return slices.Clone(s.columns)
}

// Index returns the position of the column called name.
func (s *Schema) Index(name string) (int, error) {
	idx := slices.IndexFunc(s.columns, func(c Column) bool { return c.Name == name })
	if idx < 0 {
		return -1, ErrColumnNotFound(name)
	}
	return idx, nil
}

// Concat returns the schema of s's columns followed by other's.
func (s *Schema) Concat(other *Schema) *Schema {
	return &Schema{columns: slices.Concat(s.columns, other.columns)}
}

// RecordSize is the on-page width of one record in bytes.
func (s *Schema) RecordSize() int {
	size := 0
	for _, c := range s.columns {
		size += c.width()
	}
	return size
}

// RecordsPerPage is how many records fit on a page of pageSize bytes when
// each record also costs one bit in the page's occupancy bitmap.
func (s *Schema) RecordsPerPage(pageSize int) int {
	return max((pageSize*8)/(s.RecordSize()*8+1), 1)
}

// Verify checks that r matches s in arity, column types and string widths.
func (s *Schema) Verify(r Record) error {
	if r.Len() != len(s.columns) {
		return ErrArityMismatch(len(s.columns), r.Len())
	}
	for i, c := range s.columns {
		v := r.Value(i)
		if v.Type() != c.Type {
			return ErrTypeMismatch(c.Name, c.Type, v.Type())
		}
		if c.Type == StringType && len(v.Text()) > c.Size {
			return ErrStringTooLong(c.Name, c.Size, len(v.Text()))
		}
	}
	return nil
}

func (s *Schema) String() string {
	parts := make([]string, len(s.columns))
	for i, c := range s.columns {
		if c.Type == StringType {
			parts[i] = fmt.Sprintf("%s:%s(%d)", c.Name, c.Type, c.Size)
		} else {
			parts[i] = fmt.Sprintf("%s:%s", c.Name, c.Type)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
