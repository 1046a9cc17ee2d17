package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/longlodw/gracejoin"
	"github.com/spf13/cobra"
)

type joinFlags struct {
	left      string
	right     string
	leftCol   string
	rightCol  string
	workMem   int
	pageSize  int
	maxPasses int
	tempDir   string
	stats     bool
}

func newJoinCmd() *cobra.Command {
	var f joinFlags
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join two CSV files on one column each",
		Long: `Join two CSV files on one column each and print the joined rows as CSV.

The header row of each file declares its columns as name:type[:size], where
type is one of int, long, float, bool or string. String columns need a size,
the column width in bytes used to count pages.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := gracejoin.OptionsFromEnv()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("work-mem") {
				opts.WorkMem = f.workMem
			}
			if flags.Changed("page-size") {
				opts.PageSize = f.pageSize
			}
			if flags.Changed("max-passes") {
				opts.MaxPasses = f.maxPasses
			}
			if flags.Changed("temp-dir") {
				opts.TempDir = f.tempDir
			}
			logger := gracejoin.NewLogger(cmd.ErrOrStderr())
			opts.Logger = &logger
			return runJoin(cmd.OutOrStdout(), cmd.ErrOrStderr(), f, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.left, "left", "", "left CSV file")
	flags.StringVar(&f.right, "right", "", "right CSV file")
	flags.StringVar(&f.leftCol, "left-col", "", "join column of the left file")
	flags.StringVar(&f.rightCol, "right-col", "", "join column of the right file")
	flags.IntVar(&f.workMem, "work-mem", 0, "memory budget in pages (at least 3)")
	flags.IntVar(&f.pageSize, "page-size", gracejoin.DefaultPageSize, "page size in bytes")
	flags.IntVar(&f.maxPasses, "max-passes", gracejoin.DefaultMaxPasses, "maximum partitioning passes")
	flags.StringVar(&f.tempDir, "temp-dir", "", "directory for the spill file")
	flags.BoolVar(&f.stats, "stats", false, "print join statistics to stderr")
	for _, name := range []string{"left", "right", "left-col", "right-col"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runJoin(out, errOut io.Writer, f joinFlags, opts *gracejoin.Options) error {
	left, err := loadCSVFile(f.left)
	if err != nil {
		return err
	}
	right, err := loadCSVFile(f.right)
	if err != nil {
		return err
	}
	j, err := gracejoin.NewGraceHashJoin(left, right, f.leftCol, f.rightCol, opts)
	if err != nil {
		return err
	}
	defer j.Close()

	if err := writeCSV(out, j); err != nil {
		return err
	}
	if f.stats {
		fmt.Fprint(errOut, j.Stats().String())
	}
	return nil
}

func loadCSVFile(path string) (*gracejoin.SliceSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	src, err := loadCSV(file)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return src, nil
}

func writeCSV(out io.Writer, src gracejoin.Source) error {
	w := csv.NewWriter(out)
	schema := src.Schema()
	row := make([]string, schema.Len())
	for i, c := range schema.Columns() {
		row[i] = c.Name
	}
	if err := w.Write(row); err != nil {
		return err
	}
	for rec, err := range src.Records() {
		if err != nil {
			return err
		}
		for i := range row {
			row[i] = rec.Value(i).String()
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
