package gracejoin

import (
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/openkvlab/boltdb"
)

// Run is the append-only, disk-backed sequence a join materializes its
// output into. Records keep the order they were added in.
type Run struct {
	store          *tempStore
	name           []byte
	bucket         *boltdb.Bucket
	schema         *Schema
	recordsPerPage int
	count          int
}

func newRun(store *tempStore, schema *Schema, pageSize int) (*Run, error) {
	name, bucket, err := store.createBucket("run")
	if err != nil {
		return nil, err
	}
	return &Run{
		store:          store,
		name:           name,
		bucket:         bucket,
		schema:         schema,
		recordsPerPage: schema.RecordsPerPage(pageSize),
	}, nil
}

func (r *Run) Add(rec Record) error {
	if r.bucket == nil {
		return ErrClosed
	}
	if err := r.store.appendRecord(r.bucket, rec); err != nil {
		return err
	}
	r.count++
	return nil
}

func (r *Run) Len() int {
	return r.count
}

func (r *Run) NumPages() int {
	return (r.count + r.recordsPerPage - 1) / r.recordsPerPage
}

func (r *Run) Schema() *Schema {
	return r.schema
}

// Records yields the run from the start each time it is ranged over.
func (r *Run) Records() iter.Seq2[Record, error] {
	return r.store.scanBucket(r.bucket)
}

// Iterator returns a backtracking iterator positioned at the first record.
func (r *Run) Iterator() *RunIterator {
	return &RunIterator{run: r, next: 1}
}

// get reads the record stored at 1-based position seq.
func (r *Run) get(seq uint64) (Record, error) {
	if r.bucket == nil || r.store.closed {
		return Record{}, ErrClosed
	}
	data := r.bucket.Get(seqKey(seq))
	if data == nil {
		return Record{}, ErrMissingEntry(seq)
	}
	rec, err := decodeRecord(r.store.maUn, data)
	if err != nil {
		return Record{}, errors.Wrap(err, "decoding record")
	}
	return rec, nil
}

func (r *Run) drop() error {
	if r.bucket == nil {
		return nil
	}
	r.bucket = nil
	return r.store.dropBucket(r.name)
}

// RunIterator walks a Run and can jump back to a marked position.
type RunIterator struct {
	run *Run
	// next is the 1-based position Next returns; mark is 0 when unset.
	next uint64
	mark uint64
}

func (it *RunIterator) HasNext() bool {
	return it.next <= uint64(it.run.count)
}

func (it *RunIterator) Next() (Record, error) {
	if !it.HasNext() {
		return Record{}, ErrIteratorExhausted
	}
	rec, err := it.run.get(it.next)
	if err != nil {
		return Record{}, err
	}
	it.next++
	return rec, nil
}

// MarkPrev marks the record most recently returned by Next. It does nothing
// before the first call to Next.
func (it *RunIterator) MarkPrev() {
	if it.next > 1 {
		it.mark = it.next - 1
	}
}

// MarkNext marks the record the next call to Next will return. It does
// nothing once the iterator is exhausted.
func (it *RunIterator) MarkNext() {
	if it.HasNext() {
		it.mark = it.next
	}
}

// Reset moves the iterator back to the marked record. Without a mark it
// does nothing.
func (it *RunIterator) Reset() {
	if it.mark != 0 {
		it.next = it.mark
	}
}
