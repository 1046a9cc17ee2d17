package gracejoin

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/openkvlab/boltdb"
)

// Stats describes one materialized join. Call GraceHashJoin.Stats for a
// snapshot.
type Stats struct {
	// MaxPass is the deepest partitioning pass the join reached.
	MaxPass int64

	PartitionsCreated  int64 // Buckets allocated across all passes
	RecordsPartitioned int64 // Records routed into buckets, counted per pass
	Recursions         int64 // Bucket pairs handed to a deeper pass

	BuildProbeCalls int64 // Bucket pairs joined in memory
	BuildRecords    int64 // Records loaded into hash tables
	ProbeRecords    int64 // Records streamed against hash tables
	RecordsEmitted  int64 // Joined records appended to the output run

	// Duration is the time spent materializing the output.
	Duration time.Duration

	// BoltDB is the spill file's BoltDB statistics (passthrough).
	BoltDB boltdb.Stats
}

// String returns a human-readable multi-line summary of the statistics.
func (s Stats) String() string {
	var b strings.Builder

	b.WriteString("Grace Hash Join Stats\n")
	b.WriteString(strings.Repeat("-", 50) + "\n")

	b.WriteString("Partitioning:\n")
	b.WriteString(fmt.Sprintf("  Max Pass:   %d    Recursions: %s\n",
		s.MaxPass, humanize.Comma(s.Recursions)))
	b.WriteString(fmt.Sprintf("  Buckets:    %s    Records:    %s\n",
		humanize.Comma(s.PartitionsCreated), humanize.Comma(s.RecordsPartitioned)))

	b.WriteString("\nBuild and Probe:\n")
	b.WriteString(fmt.Sprintf("  Calls:      %s\n", humanize.Comma(s.BuildProbeCalls)))
	b.WriteString(fmt.Sprintf("  Built:      %s    Probed:     %s\n",
		humanize.Comma(s.BuildRecords), humanize.Comma(s.ProbeRecords)))
	b.WriteString(fmt.Sprintf("  Emitted:    %s    (total: %s)\n",
		humanize.Comma(s.RecordsEmitted), s.Duration))

	b.WriteString("\nBoltDB:\n")
	b.WriteString(fmt.Sprintf("  Free Pages:    %d    Pending Pages: %d\n",
		s.BoltDB.FreePageN, s.BoltDB.PendingPageN))
	b.WriteString(fmt.Sprintf("  Free Alloc:    %s    Freelist Size: %s\n",
		humanize.IBytes(uint64(s.BoltDB.FreeAlloc)), humanize.IBytes(uint64(s.BoltDB.FreelistInuse))))

	return b.String()
}

type internalStats struct {
	maxPass            atomic.Int64
	partitionsCreated  atomic.Int64
	recordsPartitioned atomic.Int64
	recursions         atomic.Int64
	buildProbeCalls    atomic.Int64
	buildRecords       atomic.Int64
	probeRecords       atomic.Int64
	recordsEmitted     atomic.Int64
	duration           atomic.Int64
}

func (s *internalStats) observePass(pass int) {
	for {
		cur := s.maxPass.Load()
		if int64(pass) <= cur || s.maxPass.CompareAndSwap(cur, int64(pass)) {
			return
		}
	}
}

func (s *internalStats) snapshot(boltStats boltdb.Stats) Stats {
	return Stats{
		MaxPass:            s.maxPass.Load(),
		PartitionsCreated:  s.partitionsCreated.Load(),
		RecordsPartitioned: s.recordsPartitioned.Load(),
		Recursions:         s.recursions.Load(),
		BuildProbeCalls:    s.buildProbeCalls.Load(),
		BuildRecords:       s.buildRecords.Load(),
		ProbeRecords:       s.probeRecords.Load(),
		RecordsEmitted:     s.recordsEmitted.Load(),
		Duration:           time.Duration(s.duration.Load()),
		BoltDB:             boltStats,
	}
}
