package gracejoin

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// HashFunc hashes a join key for a given partitioning pass. Equal values
// must hash identically for a fixed pass. The result may be negative.
type HashFunc func(v Value, pass int) int

// HashValue is the default HashFunc. The pass number seeds the digest, so
// keys that collide in one pass are spread out again in the next.
func HashValue(v Value, pass int) int {
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], uint64(pass))
	d := xxhash.New()
	_, _ = d.Write(seed[:])
	_, _ = d.Write(v.Key())
	return int(d.Sum64())
}

// bucketIndex maps a hash onto [0, n) regardless of its sign.
func bucketIndex(h, n int) int {
	return ((h % n) + n) % n
}
