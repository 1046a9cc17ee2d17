// Package gracejoin implements a grace hash join: an equi-join on one column
// per side that runs under a fixed budget of memory pages.
//
// Both inputs are hashed into WorkMem-1 partitions held in a scratch bolt
// file. Each
// partition pair where one side spans at most WorkMem-2 pages is joined in
// memory; any other pair is partitioned again with a hash seeded by the next
// pass number. After MaxPasses passes the join gives up with
// ErrMaxPassesExceeded.
//
// The scratch file lives inside one write transaction that is never
// committed, so spilled pages stay in the process heap. The page budget
// decides when partitions are split and which side is built from; it does
// not bound how much heap the process uses.
//
// The operator materializes its whole output before the first record is
// returned, then serves it as often as asked:
//
//	j, err := gracejoin.NewGraceHashJoin(users, orders, "id", "user_id", &gracejoin.Options{WorkMem: 6})
//	if err != nil {
//	    return err
//	}
//	defer j.Close()
//	for rec, err := range j.Records() {
//	    ...
//	}
package gracejoin
