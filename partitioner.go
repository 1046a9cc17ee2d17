package gracejoin

import (
	"github.com/cockroachdb/errors"
)

// createPartitions allocates one empty bucket per usable buffer for side.
// One buffer is held back for the input being scanned.
func (j *GraceHashJoin) createPartitions(side Side) ([]*Partition, error) {
	schema := j.sideSchema(side)
	partitions := make([]*Partition, j.opts.WorkMem-1)
	for i := range partitions {
		p, err := newPartition(j.store, schema, side, j.opts.PageSize)
		if err != nil {
			return nil, errors.CombineErrors(err, dropPartitions(partitions[:i]))
		}
		partitions[i] = p
	}
	j.stats.partitionsCreated.Add(int64(len(partitions)))
	return partitions, nil
}

// partition routes every record of src into partitions by the hash of its
// join column for this pass. The assignment depends only on the key and the
// pass, so every record lands in exactly one bucket.
func (j *GraceHashJoin) partition(partitions []*Partition, src Source, side Side, pass int) error {
	col := j.columnIndex(side)
	schema := j.sideSchema(side)
	n := len(partitions)
	count := 0
	for record, err := range src.Records() {
		if err != nil {
			return err
		}
		if err := schema.Verify(record); err != nil {
			return err
		}
		idx := bucketIndex(j.opts.Hash(record.Value(col), pass), n)
		if err := partitions[idx].add(record); err != nil {
			return err
		}
		count++
	}
	j.stats.recordsPartitioned.Add(int64(count))
	return nil
}

// dropPartitions releases every partition, returning the first failure.
func dropPartitions(partitions ...[]*Partition) error {
	var first error
	for _, ps := range partitions {
		for _, p := range ps {
			if p == nil {
				continue
			}
			if err := p.drop(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
