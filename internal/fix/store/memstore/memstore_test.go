package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/store"
	"github.com/stretchr/testify/require"
)

func TestAppendIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := store.Record{Direction: store.Out, SeqNum: 1, MsgType: "D", RawBytes: []byte("hello"), Timestamp: time.Now()}

	require.NoError(t, s.Append(ctx, rec))
	rec2 := rec
	rec2.RawBytes = []byte("different-but-ignored")
	require.NoError(t, s.Append(ctx, rec2))

	got, err := s.FetchRange(ctx, store.Out, 1, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []byte("hello"), got[0].RawBytes)
}

func TestFetchRangeAndHighestSeq(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, s.Append(ctx, store.Record{Direction: store.Out, SeqNum: i, RawBytes: []byte("x")}))
	}

	high, err := s.HighestSeq(ctx, store.Out)
	require.NoError(t, err)
	require.EqualValues(t, 5, high)

	recs, err := s.FetchRange(ctx, store.Out, 2, 4)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.EqualValues(t, 2, recs[0].SeqNum)
	require.EqualValues(t, 4, recs[2].SeqNum)

	high, err = s.HighestSeq(ctx, store.In)
	require.NoError(t, err)
	require.Zero(t, high)
}

func TestResetDiscardsOnEpochChange(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, store.Record{Direction: store.Out, SeqNum: 1, RawBytes: []byte("x")}))

	require.NoError(t, s.Reset(ctx, "epoch-1"))
	high, _ := s.HighestSeq(ctx, store.Out)
	require.Zero(t, high, "first reset establishes the epoch and clears prior state")

	require.NoError(t, s.Append(ctx, store.Record{Direction: store.Out, SeqNum: 1, RawBytes: []byte("y")}))
	require.NoError(t, s.Reset(ctx, "epoch-1"))
	high, _ = s.HighestSeq(ctx, store.Out)
	require.EqualValues(t, 1, high, "same epoch is a no-op")

	require.NoError(t, s.Reset(ctx, "epoch-2"))
	high, _ = s.HighestSeq(ctx, store.Out)
	require.Zero(t, high, "epoch change discards state")
}
