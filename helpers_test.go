package gracejoin

import (
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// wideSchema has 504-byte records, which puts exactly 8 records on a 4096
// byte page.
var wideSchema = NewSchema(
	Column{Name: "id", Type: IntType},
	Column{Name: "pad", Type: StringType, Size: 500},
)

func wideRecord(val int32) Record {
	return NewRecord(IntValue(val), StringValue(strings.Repeat("x", 500)))
}

func wideSource(vals ...int32) *SliceSource {
	records := make([]Record, len(vals))
	for i, v := range vals {
		records[i] = wideRecord(v)
	}
	return NewSliceSource(wideSchema, records)
}

func rangeVals(n int) []int32 {
	vals := make([]int32, n)
	for i := range vals {
		vals[i] = int32(i)
	}
	return vals
}

func repeatVal(val int32, n int) []int32 {
	vals := make([]int32, n)
	for i := range vals {
		vals[i] = val
	}
	return vals
}

func testOptions(t testing.TB, workMem int) *Options {
	logger := zerolog.Nop()
	return &Options{
		WorkMem: workMem,
		TempDir: t.TempDir(),
		Logger:  &logger,
	}
}

func newTestJoin(t testing.TB, left, right Source, opts *Options) *GraceHashJoin {
	j, err := NewGraceHashJoin(left, right, "id", "id", opts)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })
	return j
}

func collect(t testing.TB, src Source) []Record {
	var out []Record
	for r, err := range src.Records() {
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

// referenceJoin is a nested-loop equi-join on column 0 of both sides.
func referenceJoin(t testing.TB, left, right Source) []Record {
	rights := collect(t, right)
	var out []Record
	for _, l := range collect(t, left) {
		for _, r := range rights {
			if l.Value(0).Equal(r.Value(0)) {
				out = append(out, l.Concat(r))
			}
		}
	}
	return out
}

func sortedStrings(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.String()
	}
	slices.Sort(out)
	return out
}

func constantHash(Value, int) int {
	return 0
}
