package main

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/longlodw/gracejoin"
)

// parseColumn parses a header cell of the form name:type[:size].
func parseColumn(cell string) (gracejoin.Column, error) {
	parts := strings.Split(strings.TrimSpace(cell), ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return gracejoin.Column{}, errors.Newf("bad column header %q, want name:type[:size]", cell)
	}
	col := gracejoin.Column{Name: parts[0]}
	switch parts[1] {
	case "int":
		col.Type = gracejoin.IntType
	case "long":
		col.Type = gracejoin.LongType
	case "float":
		col.Type = gracejoin.FloatType
	case "bool":
		col.Type = gracejoin.BoolType
	case "string":
		col.Type = gracejoin.StringType
		if len(parts) != 3 {
			return gracejoin.Column{}, errors.Newf("string column %q needs a size", parts[0])
		}
		size, err := strconv.Atoi(parts[2])
		if err != nil || size <= 0 {
			return gracejoin.Column{}, errors.Newf("bad size %q for column %q", parts[2], parts[0])
		}
		col.Size = size
	default:
		return gracejoin.Column{}, errors.Newf("unknown type %q for column %q", parts[1], parts[0])
	}
	return col, nil
}

func parseValue(col gracejoin.Column, cell string) (gracejoin.Value, error) {
	switch col.Type {
	case gracejoin.IntType:
		n, err := strconv.ParseInt(cell, 10, 32)
		return gracejoin.IntValue(int32(n)), err
	case gracejoin.LongType:
		n, err := strconv.ParseInt(cell, 10, 64)
		return gracejoin.LongValue(n), err
	case gracejoin.FloatType:
		f, err := strconv.ParseFloat(cell, 32)
		return gracejoin.FloatValue(float32(f)), err
	case gracejoin.BoolType:
		b, err := strconv.ParseBool(cell)
		return gracejoin.BoolValue(b), err
	default:
		return gracejoin.StringValue(cell), nil
	}
}

// loadCSV reads a typed header row followed by data rows.
func loadCSV(r io.Reader) (*gracejoin.SliceSource, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	columns := make([]gracejoin.Column, len(header))
	for i, cell := range header {
		if columns[i], err = parseColumn(cell); err != nil {
			return nil, err
		}
	}
	schema := gracejoin.NewSchema(columns...)

	var records []gracejoin.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		values := make([]gracejoin.Value, len(row))
		for i, cell := range row {
			if values[i], err = parseValue(columns[i], cell); err != nil {
				return nil, errors.Wrapf(err, "line %d, column %q", line, columns[i].Name)
			}
		}
		rec := gracejoin.NewRecord(values...)
		if err := schema.Verify(rec); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		records = append(records, rec)
	}
	return gracejoin.NewSliceSource(schema, records), nil
}
