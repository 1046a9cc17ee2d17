package gracejoin

import (
	"iter"

	"github.com/openkvlab/boltdb"
)

// Side names which input of the join a record comes from.
type Side int

const (
	LeftSide Side = iota
	RightSide
)

func (s Side) String() string {
	if s == LeftSide {
		return "left"
	}
	return "right"
}

// Partition is an append-only, disk-backed bucket holding records of one
// side. Its page count is tracked as records are added so feasibility can
// be checked without reading it back.
type Partition struct {
	store          *tempStore
	name           []byte
	bucket         *boltdb.Bucket
	schema         *Schema
	side           Side
	recordsPerPage int
	count          int
}

func newPartition(store *tempStore, schema *Schema, side Side, pageSize int) (*Partition, error) {
	name, bucket, err := store.createBucket("partition/" + side.String())
	if err != nil {
		return nil, err
	}
	return &Partition{
		store:          store,
		name:           name,
		bucket:         bucket,
		schema:         schema,
		side:           side,
		recordsPerPage: schema.RecordsPerPage(pageSize),
	}, nil
}

// Add appends r after checking it against the partition's schema.
func (p *Partition) Add(r Record) error {
	if err := p.schema.Verify(r); err != nil {
		return err
	}
	return p.add(r)
}

func (p *Partition) add(r Record) error {
	if p.bucket == nil {
		return ErrClosed
	}
	if err := p.store.appendRecord(p.bucket, r); err != nil {
		return err
	}
	p.count++
	return nil
}

func (p *Partition) Len() int {
	return p.count
}

func (p *Partition) NumPages() int {
	return (p.count + p.recordsPerPage - 1) / p.recordsPerPage
}

func (p *Partition) Schema() *Schema {
	return p.schema
}

func (p *Partition) Side() Side {
	return p.side
}

func (p *Partition) Records() iter.Seq2[Record, error] {
	return p.store.scanBucket(p.bucket)
}

// drop releases the partition's storage. It is safe to call more than once.
func (p *Partition) drop() error {
	if p.bucket == nil {
		return nil
	}
	p.bucket = nil
	return p.store.dropBucket(p.name)
}
