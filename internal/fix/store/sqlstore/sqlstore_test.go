package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/store"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "fixstore.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestAppendFetchRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	rec := store.Record{
		Direction: store.Out,
		SeqNum:    1,
		MsgType:   "D",
		RawBytes:  []byte("8=FIX.4.2\x019=5\x0135=D\x0110=000\x01"),
		Timestamp: time.Now(),
	}
	require.NoError(t, s.Append(ctx, rec))

	got, err := s.FetchRange(ctx, store.Out, 1, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, rec.MsgType, got[0].MsgType)
	require.Equal(t, rec.RawBytes, got[0].RawBytes)
}

func TestAppendIsIdempotent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	rec := store.Record{Direction: store.In, SeqNum: 9, MsgType: "0", RawBytes: []byte("first")}
	require.NoError(t, s.Append(ctx, rec))

	rec2 := rec
	rec2.RawBytes = []byte("second-should-be-ignored")
	require.NoError(t, s.Append(ctx, rec2))

	got, err := s.FetchRange(ctx, store.In, 9, 9)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []byte("first"), got[0].RawBytes)
}

func TestHighestSeqPerDirection(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, s.Append(ctx, store.Record{Direction: store.Out, SeqNum: i, RawBytes: []byte("x")}))
	}
	require.NoError(t, s.Append(ctx, store.Record{Direction: store.In, SeqNum: 1, RawBytes: []byte("y")}))

	high, err := s.HighestSeq(ctx, store.Out)
	require.NoError(t, err)
	require.EqualValues(t, 3, high)

	high, err = s.HighestSeq(ctx, store.In)
	require.NoError(t, err)
	require.EqualValues(t, 1, high)
}

func TestFetchRangeBounded(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for i := uint64(1); i <= 10; i++ {
		require.NoError(t, s.Append(ctx, store.Record{Direction: store.Out, SeqNum: i, RawBytes: []byte("x")}))
	}

	recs, err := s.FetchRange(ctx, store.Out, 3, 6)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	for i, r := range recs {
		require.EqualValues(t, 3+i, r.SeqNum)
	}
}

func TestResetDiscardsOnEpochChange(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, store.Record{Direction: store.Out, SeqNum: 1, RawBytes: []byte("x")}))
	require.NoError(t, s.Reset(ctx, "session-epoch-A"))

	high, err := s.HighestSeq(ctx, store.Out)
	require.NoError(t, err)
	require.Zero(t, high)

	require.NoError(t, s.Append(ctx, store.Record{Direction: store.Out, SeqNum: 1, RawBytes: []byte("x")}))
	require.NoError(t, s.Reset(ctx, "session-epoch-A"))
	high, err = s.HighestSeq(ctx, store.Out)
	require.NoError(t, err)
	require.EqualValues(t, 1, high, "reset with the same epoch is a no-op")

	require.NoError(t, s.Reset(ctx, "session-epoch-B"))
	high, err = s.HighestSeq(ctx, store.Out)
	require.NoError(t, err)
	require.Zero(t, high, "reset with a new epoch discards stored state")
}
