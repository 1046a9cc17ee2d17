package gracejoin

import (
	"iter"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GraceHashJoin joins two sources on equality of one column each. Output
// records hold the left fields followed by the right fields.
type GraceHashJoin struct {
	left     Source
	right    Source
	leftCol  int
	rightCol int
	schema   *Schema
	opts     Options
	log      zerolog.Logger

	store  *tempStore
	joined *Run
	ran    bool
	err    error
	closed bool
	stats  internalStats
}

func NewGraceHashJoin(left, right Source, leftColumn, rightColumn string, opts *Options) (*GraceHashJoin, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	leftCol, err := left.Schema().Index(leftColumn)
	if err != nil {
		return nil, errors.Wrap(err, "left join column")
	}
	rightCol, err := right.Schema().Index(rightColumn)
	if err != nil {
		return nil, errors.Wrap(err, "right join column")
	}
	leftType := left.Schema().Column(leftCol).Type
	rightType := right.Schema().Column(rightCol).Type
	if leftType != rightType {
		return nil, ErrJoinTypeMismatch(leftColumn, leftType, rightColumn, rightType)
	}
	return &GraceHashJoin{
		left:     left,
		right:    right,
		leftCol:  leftCol,
		rightCol: rightCol,
		schema:   left.Schema().Concat(right.Schema()),
		opts:     o,
		log: o.Logger.With().
			Str("op", uuid.NewString()).
			Str("left_col", leftColumn).
			Str("right_col", rightColumn).
			Logger(),
		store: newTempStore(o.TempDir, o.Codec),
	}, nil
}

// Schema is the left schema followed by the right schema.
func (j *GraceHashJoin) Schema() *Schema {
	return j.schema
}

// Materialized is always true: the output is computed in full before it can
// be read.
func (j *GraceHashJoin) Materialized() bool {
	return true
}

// EstimateIOCost is as high as possible. The join can fail on skewed input,
// so a planner should only pick it when told to.
func (j *GraceHashJoin) EstimateIOCost() int {
	return math.MaxInt
}

// Iterator runs the join on first use and returns a fresh iterator over the
// output. A failed join returns the same error on every call.
func (j *GraceHashJoin) Iterator() (*RunIterator, error) {
	if err := j.materialize(); err != nil {
		return nil, err
	}
	return j.joined.Iterator(), nil
}

// Records runs the join on first use and yields its output.
func (j *GraceHashJoin) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		if err := j.materialize(); err != nil {
			yield(Record{}, err)
			return
		}
		for r, err := range j.joined.Records() {
			if !yield(r, err) {
				return
			}
		}
	}
}

func (j *GraceHashJoin) Stats() Stats {
	return j.stats.snapshot(j.store.stats())
}

// Close removes the spill file. Iterators over the output stop working.
func (j *GraceHashJoin) Close() error {
	if j.closed {
		return nil
	}
	j.closed = true
	j.joined = nil
	return j.store.close()
}

func (j *GraceHashJoin) materialize() error {
	if j.closed {
		return ErrClosed
	}
	if j.ran {
		return j.err
	}
	j.ran = true

	start := time.Now()
	joined, err := newRun(j.store, j.schema, j.opts.PageSize)
	if err != nil {
		j.err = err
		return err
	}
	j.joined = joined
	err = j.run(j.left, j.right, 1)
	j.stats.duration.Store(int64(time.Since(start)))
	if err != nil {
		j.err = errors.CombineErrors(err, joined.drop())
		j.joined = nil
		return j.err
	}
	j.log.Debug().
		Int("records", joined.Len()).
		Int64("max_pass", j.stats.maxPass.Load()).
		Dur("took", time.Since(start)).
		Msg("grace hash join complete")
	return nil
}

// run partitions both inputs for this pass, then joins each bucket pair in
// memory when it fits or hands it to the next pass when it does not. Each
// bucket pair is dropped once consumed.
func (j *GraceHashJoin) run(left, right Source, pass int) (retErr error) {
	if pass < 1 {
		return errors.AssertionFailedf("grace hash join pass must be at least 1, got %d", pass)
	}
	if pass > j.opts.MaxPasses {
		j.log.Warn().Int("pass", pass).Int("max_passes", j.opts.MaxPasses).Msg("partitions still too large after max passes")
		return errors.Wrapf(ErrMaxPassesExceeded, "pass %d exceeds limit of %d", pass, j.opts.MaxPasses)
	}
	j.stats.observePass(pass)

	leftPartitions, err := j.createPartitions(LeftSide)
	if err != nil {
		return err
	}
	rightPartitions, err := j.createPartitions(RightSide)
	if err != nil {
		return errors.CombineErrors(err, dropPartitions(leftPartitions))
	}
	defer func() {
		if err := dropPartitions(leftPartitions, rightPartitions); retErr == nil {
			retErr = err
		}
	}()

	if err := j.partition(leftPartitions, left, LeftSide, pass); err != nil {
		return err
	}
	if err := j.partition(rightPartitions, right, RightSide, pass); err != nil {
		return err
	}
	j.log.Debug().Int("pass", pass).Int("buckets", len(leftPartitions)).Msg("partitioned inputs")

	for i := range leftPartitions {
		l, r := leftPartitions[i], rightPartitions[i]
		if j.fitsInMemory(l) || j.fitsInMemory(r) {
			j.log.Debug().Int("pass", pass).Int("bucket", i).
				Int("left_pages", l.NumPages()).Int("right_pages", r.NumPages()).
				Msg("build and probe")
			err = j.buildAndProbe(l, r)
		} else {
			j.log.Debug().Int("pass", pass).Int("bucket", i).
				Int("left_pages", l.NumPages()).Int("right_pages", r.NumPages()).
				Msg("repartitioning bucket")
			j.stats.recursions.Add(1)
			err = j.run(l, r, pass+1)
		}
		if err != nil {
			return err
		}
		if err := errors.CombineErrors(l.drop(), r.drop()); err != nil {
			return err
		}
	}
	return nil
}

func (j *GraceHashJoin) columnIndex(side Side) int {
	if side == LeftSide {
		return j.leftCol
	}
	return j.rightCol
}

func (j *GraceHashJoin) sideSchema(side Side) *Schema {
	if side == LeftSide {
		return j.left.Schema()
	}
	return j.right.Schema()
}
