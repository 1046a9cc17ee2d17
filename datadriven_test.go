package gracejoin

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
)

var (
	ddLeftSchema = NewSchema(
		Column{Name: "id", Type: IntType},
		Column{Name: "name", Type: StringType, Size: 8},
	)
	ddRightSchema = NewSchema(
		Column{Name: "id", Type: IntType},
		Column{Name: "tag", Type: StringType, Size: 8},
	)
)

// TestJoinDataDriven runs the scenarios in testdata/join. Input lines are
// "L <id> <name>" or "R <id> <tag>"; output is the sorted joined records.
//
// Arguments: work-mem (required), page-size, max-passes, hash=constant and
// show-passes.
func TestJoinDataDriven(t *testing.T) {
	datadriven.RunTest(t, "testdata/join", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "join":
			return runJoinCommand(t, d)
		default:
			d.Fatalf(t, "unknown command %s", d.Cmd)
			return ""
		}
	})
}

func runJoinCommand(t *testing.T, d *datadriven.TestData) string {
	opts := testOptions(t, 0)
	d.ScanArgs(t, "work-mem", &opts.WorkMem)
	if d.HasArg("page-size") {
		d.ScanArgs(t, "page-size", &opts.PageSize)
	}
	if d.HasArg("max-passes") {
		d.ScanArgs(t, "max-passes", &opts.MaxPasses)
	}
	if d.HasArg("hash") {
		var hash string
		d.ScanArgs(t, "hash", &hash)
		if hash != "constant" {
			d.Fatalf(t, "unknown hash %s", hash)
		}
		opts.Hash = constantHash
	}

	var left, right []Record
	for _, line := range strings.Split(d.Input, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			d.Fatalf(t, "bad input line %q", line)
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			d.Fatalf(t, "bad id in %q: %v", line, err)
		}
		rec := NewRecord(IntValue(int32(id)), StringValue(fields[2]))
		switch fields[0] {
		case "L":
			left = append(left, rec)
		case "R":
			right = append(right, rec)
		default:
			d.Fatalf(t, "bad side in %q", line)
		}
	}

	j, err := NewGraceHashJoin(
		NewSliceSource(ddLeftSchema, left),
		NewSliceSource(ddRightSchema, right),
		"id", "id", opts,
	)
	if err != nil {
		return fmt.Sprintf("error: %v\n", err)
	}
	defer j.Close()

	var b strings.Builder
	var records []Record
	for rec, err := range j.Records() {
		if err != nil {
			if errors.Is(err, ErrMaxPassesExceeded) {
				b.WriteString("error: max passes exceeded\n")
			} else {
				fmt.Fprintf(&b, "error: %v\n", err)
			}
			break
		}
		records = append(records, rec)
	}
	if b.Len() == 0 {
		if len(records) == 0 {
			b.WriteString("empty\n")
		}
		for _, s := range sortedStrings(records) {
			b.WriteString(s + "\n")
		}
	}
	if d.HasArg("show-passes") {
		fmt.Fprintf(&b, "max-pass: %d\n", j.Stats().MaxPass)
	}
	return b.String()
}
