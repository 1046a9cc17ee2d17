package gracejoin

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T, maUn MarshalUnmarshaler) *tempStore {
	store := newTempStore(t.TempDir(), maUn)
	t.Cleanup(func() { require.NoError(t, store.close()) })
	return store
}

func TestPartition_AddAndPages(t *testing.T) {
	store := setupTestStore(t, MsgpackMaUn)
	p, err := newPartition(store, wideSchema, LeftSide, 4096)
	require.NoError(t, err)
	require.Equal(t, 0, p.NumPages())

	for i := range 33 {
		require.NoError(t, p.Add(wideRecord(int32(i))))
		if i == 31 {
			require.Equal(t, 4, p.NumPages())
		}
	}
	require.Equal(t, 33, p.Len())
	require.Equal(t, 5, p.NumPages())
	require.Equal(t, LeftSide, p.Side())

	got := collect(t, p)
	require.Len(t, got, 33)
	for i, r := range got {
		require.Equal(t, int32(i), r.Value(0).Int())
	}
}

func TestPartition_RejectsBadRecord(t *testing.T) {
	store := setupTestStore(t, MsgpackMaUn)
	p, err := newPartition(store, wideSchema, RightSide, 4096)
	require.NoError(t, err)
	require.Error(t, p.Add(NewRecord(IntValue(1))))
	require.Equal(t, 0, p.Len())
}

func TestPartition_Drop(t *testing.T) {
	store := setupTestStore(t, MsgpackMaUn)
	p, err := newPartition(store, wideSchema, LeftSide, 4096)
	require.NoError(t, err)
	require.NoError(t, p.Add(wideRecord(1)))
	require.NoError(t, p.drop())
	require.NoError(t, p.drop())
	require.ErrorIs(t, p.Add(wideRecord(2)), ErrClosed)
	for _, err := range p.Records() {
		require.ErrorIs(t, err, ErrClosed)
	}
}

func TestTempStore_CloseRemovesFile(t *testing.T) {
	dir := t.TempDir()
	store := newTempStore(dir, MsgpackMaUn)
	_, _, err := store.createBucket("x")
	require.NoError(t, err)
	matches, err := filepath.Glob(filepath.Join(dir, "gracejoin_spill_*.db"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	require.NoError(t, store.close())
	_, err = os.Stat(matches[0])
	require.True(t, os.IsNotExist(err))
	require.NoError(t, store.close())

	_, _, err = store.createBucket("y")
	require.ErrorIs(t, err, ErrClosed)
}

func TestCodecs_RoundTripRecord(t *testing.T) {
	rec := NewRecord(
		IntValue(-7),
		LongValue(1<<40),
		FloatValue(2.25),
		BoolValue(true),
		StringValue("hello"),
		IntValue(0),
		BoolValue(false),
		StringValue(""),
	)
	for name, maUn := range map[string]MarshalUnmarshaler{
		"msgpack": MsgpackMaUn,
		"gob":     GobMaUn,
		"json":    JsonMaUn,
	} {
		t.Run(name, func(t *testing.T) {
			data, err := encodeRecord(maUn, rec)
			require.NoError(t, err)
			got, err := decodeRecord(maUn, data)
			require.NoError(t, err)
			require.True(t, rec.Equal(got), "got %s", got)
			for i := range rec.Len() {
				require.Equal(t, rec.Value(i).Type(), got.Value(i).Type())
			}
		})
	}
}

func TestRun_IteratorMarkAndReset(t *testing.T) {
	store := setupTestStore(t, MsgpackMaUn)
	run, err := newRun(store, wideSchema, 4096)
	require.NoError(t, err)
	for i := range 5 {
		require.NoError(t, run.Add(wideRecord(int32(i))))
	}
	require.Equal(t, 5, run.Len())
	require.Equal(t, 1, run.NumPages())

	next := func(it *RunIterator) int32 {
		r, err := it.Next()
		require.NoError(t, err)
		return r.Value(0).Int()
	}

	it := run.Iterator()
	// Reset without a mark stays put.
	it.Reset()
	require.Equal(t, int32(0), next(it))
	require.Equal(t, int32(1), next(it))
	it.MarkPrev()
	require.Equal(t, int32(2), next(it))
	it.Reset()
	require.Equal(t, int32(1), next(it))
	require.Equal(t, int32(2), next(it))
	it.MarkNext()
	require.Equal(t, int32(3), next(it))
	require.Equal(t, int32(4), next(it))
	require.False(t, it.HasNext())
	_, err = it.Next()
	require.ErrorIs(t, err, ErrIteratorExhausted)
	it.Reset()
	require.Equal(t, int32(3), next(it))

	// A fresh iterator starts over.
	require.Equal(t, int32(0), next(run.Iterator()))
}

func TestRun_ClosedStore(t *testing.T) {
	store := newTempStore(t.TempDir(), MsgpackMaUn)
	run, err := newRun(store, wideSchema, 4096)
	require.NoError(t, err)
	require.NoError(t, run.Add(wideRecord(1)))
	it := run.Iterator()
	require.NoError(t, store.close())
	_, err = it.Next()
	require.ErrorIs(t, err, ErrClosed)
}

func TestCodecs_RoundTripSpecialFloats(t *testing.T) {
	specials := []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))}
	values := make([]Value, len(specials))
	for i, f := range specials {
		values[i] = FloatValue(f)
	}
	rec := NewRecord(values...)
	for name, maUn := range map[string]MarshalUnmarshaler{
		"msgpack": MsgpackMaUn,
		"gob":     GobMaUn,
		"json":    JsonMaUn,
	} {
		t.Run(name, func(t *testing.T) {
			data, err := encodeRecord(maUn, rec)
			require.NoError(t, err)
			got, err := decodeRecord(maUn, data)
			require.NoError(t, err)
			require.True(t, math.IsNaN(float64(got.Value(0).Float())))
			require.True(t, math.IsInf(float64(got.Value(1).Float()), 1))
			require.True(t, math.IsInf(float64(got.Value(2).Float()), -1))
		})
	}
}
