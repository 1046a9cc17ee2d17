package gracejoin

import (
	"encoding/binary"
	"fmt"
	"iter"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/openkvlab/boltdb"
	boltdb_errors "github.com/openkvlab/boltdb/errors"
)

// tempStore is the scratch bolt database that partitions and runs spill
// into. It is opened on first use and lives inside a single write
// transaction that is rolled back, never committed, when the store closes.
type tempStore struct {
	dir      string
	maUn     MarshalUnmarshaler
	db       *boltdb.DB
	tx       *boltdb.Tx
	filePath string
	nextID   uint64
	closed   bool
}

func newTempStore(dir string, maUn MarshalUnmarshaler) *tempStore {
	return &tempStore{dir: dir, maUn: maUn}
}

func (s *tempStore) ensureTx() (*boltdb.Tx, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}
	tempFile, err := os.CreateTemp(s.dir, "gracejoin_spill_*.db")
	if err != nil {
		return nil, errors.Wrap(err, "creating spill file")
	}
	tempFilePath := tempFile.Name()
	tempFile.Close()

	db, err := boltdb.Open(tempFilePath, 0600, &boltdb.Options{
		NoSync:         true,
		NoGrowSync:     true,
		NoFreelistSync: true,
	})
	if err != nil {
		os.Remove(tempFilePath)
		return nil, errors.Wrap(err, "opening spill file")
	}
	tx, err := db.Begin(true)
	if err != nil {
		db.Close()
		os.Remove(tempFilePath)
		return nil, errors.Wrap(err, "beginning spill transaction")
	}
	s.db = db
	s.tx = tx
	s.filePath = tempFilePath
	return tx, nil
}

// createBucket makes a fresh, uniquely named bucket.
func (s *tempStore) createBucket(prefix string) ([]byte, *boltdb.Bucket, error) {
	tx, err := s.ensureTx()
	if err != nil {
		return nil, nil, err
	}
	s.nextID++
	name := fmt.Appendf(nil, "%s/%d", prefix, s.nextID)
	bucket, err := tx.CreateBucket(name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "creating bucket %s", name)
	}
	return name, bucket, nil
}

func (s *tempStore) dropBucket(name []byte) error {
	if s.tx == nil || s.closed {
		return nil
	}
	err := s.tx.DeleteBucket(name)
	if err != nil && !errors.Is(err, boltdb_errors.ErrBucketNotFound) {
		return errors.Wrapf(err, "dropping bucket %s", name)
	}
	return nil
}

func (s *tempStore) stats() boltdb.Stats {
	if s.db == nil {
		return boltdb.Stats{}
	}
	return s.db.Stats()
}

func (s *tempStore) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.tx != nil {
		err = errors.CombineErrors(err, s.tx.Rollback())
		s.tx = nil
	}
	if s.db != nil {
		err = errors.CombineErrors(err, s.db.Close())
		s.db = nil
	}
	if s.filePath != "" {
		err = errors.CombineErrors(err, os.Remove(s.filePath))
		s.filePath = ""
	}
	return err
}

// appendRecord stores r under the bucket's next sequence number.
func (s *tempStore) appendRecord(bucket *boltdb.Bucket, r Record) error {
	id, err := bucket.NextSequence()
	if err != nil {
		return err
	}
	data, err := encodeRecord(s.maUn, r)
	if err != nil {
		return errors.Wrap(err, "encoding record")
	}
	return bucket.Put(seqKey(id), data)
}

// scanBucket yields the bucket's records in insertion order.
func (s *tempStore) scanBucket(bucket *boltdb.Bucket) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		if s.closed || bucket == nil {
			yield(Record{}, ErrClosed)
			return
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			r, err := decodeRecord(s.maUn, v)
			if err != nil {
				if !yield(Record{}, errors.Wrap(err, "decoding record")) {
					return
				}
				continue
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

func seqKey(id uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], id)
	return key[:]
}
