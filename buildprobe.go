package gracejoin

import (
	"github.com/cockroachdb/errors"
)

// joinRoles fixes which partition of a pair is loaded into memory and which
// is streamed against it, so the matching loop never branches on side.
type joinRoles struct {
	build    Source
	buildCol int
	probe    Source
	probeCol int
	// probeFirst is set when the probe records hold the left fields.
	probeFirst bool
}

func (r joinRoles) concat(probe, build Record) Record {
	if r.probeFirst {
		return probe.Concat(build)
	}
	return build.Concat(probe)
}

// fitsInMemory reports whether p can be the build side: it must span at most
// WorkMem-2 pages, leaving one page for the probe stream and one for output.
func (j *GraceHashJoin) fitsInMemory(p *Partition) bool {
	return p.NumPages() <= j.opts.WorkMem-2
}

func (j *GraceHashJoin) resolveRoles(left, right *Partition) (joinRoles, error) {
	switch {
	case j.fitsInMemory(left):
		return joinRoles{
			build:    left,
			buildCol: j.leftCol,
			probe:    right,
			probeCol: j.rightCol,
		}, nil
	case j.fitsInMemory(right):
		return joinRoles{
			build:      right,
			buildCol:   j.rightCol,
			probe:      left,
			probeCol:   j.leftCol,
			probeFirst: true,
		}, nil
	default:
		return joinRoles{}, errors.WithAssertionFailure(errors.Wrapf(ErrNeitherFits,
			"left spans %d pages, right spans %d pages, work mem is %d pages",
			left.NumPages(), right.NumPages(), j.opts.WorkMem))
	}
}

// buildAndProbe joins one bucket pair in memory and appends every match to
// the output run. At least one of the two partitions must fit in memory.
func (j *GraceHashJoin) buildAndProbe(left, right *Partition) error {
	roles, err := j.resolveRoles(left, right)
	if err != nil {
		return err
	}
	j.stats.buildProbeCalls.Add(1)

	table := make(map[string][]Record)
	built := 0
	for record, err := range roles.build.Records() {
		if err != nil {
			return err
		}
		key := string(record.Value(roles.buildCol).Key())
		table[key] = append(table[key], record)
		built++
	}
	j.stats.buildRecords.Add(int64(built))

	probed, emitted := 0, 0
	for record, err := range roles.probe.Records() {
		if err != nil {
			return err
		}
		probed++
		for _, match := range table[string(record.Value(roles.probeCol).Key())] {
			if err := j.joined.Add(roles.concat(record, match)); err != nil {
				return err
			}
			emitted++
		}
	}
	j.stats.probeRecords.Add(int64(probed))
	j.stats.recordsEmitted.Add(int64(emitted))
	return nil
}
