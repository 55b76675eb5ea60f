package session

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/builder"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/store/memstore"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/wire"
	"github.com/stretchr/testify/require"
)

// logonReply builds a raw Logon message as if sent by the counterparty,
// used to drive a Session through handleLogon in tests.
func logonReply(t *testing.T, seq int64, sender, target string, now time.Time, possDup bool, resetFlag bool) *wire.Message {
	t.Helper()
	b := builder.New("FIX.4.2", dictionary.MsgTypeLogon)
	require.NoError(t, b.PushInt(dictionary.TagEncryptMethod, 0))
	require.NoError(t, b.PushInt(dictionary.TagHeartBtInt, 30))
	if resetFlag {
		require.NoError(t, b.PushField(dictionary.TagResetSeqNumFlag, "Y"))
	}
	if possDup {
		b.SetPossDupFlag()
	}
	raw, err := b.Finalize(sender, target, seq, now)
	require.NoError(t, err)
	msg, err := wire.Parse(raw)
	require.NoError(t, err)
	return msg
}

func newTestSession(t *testing.T) (*Session, *bytes.Buffer, chan Event) {
	t.Helper()
	var out bytes.Buffer
	events := make(chan Event, 32)
	s, err := New(context.Background(), Config{
		SenderCompID: "TW",
		TargetCompID: "ISLD",
		HeartBtInt:   30 * time.Second,
		Transport:    &out,
		Store:        memstore.New(),
		Events:       events,
		Now:          time.Now,
	})
	require.NoError(t, err)
	return s, &out, events
}

func TestCleanLogon(t *testing.T) {
	s, out, _ := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	require.Equal(t, ConnectingLogonSent, s.State())

	sent, err := wire.Parse(out.Bytes())
	require.NoError(t, err)
	require.Equal(t, dictionary.MsgTypeLogon, sent.MsgType())
	seq, _ := sent.MsgSeqNum()
	require.EqualValues(t, 1, seq)

	reply := logonReply(t, 1, "ISLD", "TW", time.Now(), false, false)
	require.NoError(t, s.HandleInbound(ctx, reply))

	require.Equal(t, LoggedOn, s.State())
	require.EqualValues(t, 2, s.NextOutSeq())
	require.EqualValues(t, 2, s.NextInSeq())
}

func TestLogonWithResetSeqNum(t *testing.T) {
	var out bytes.Buffer
	s, err := New(context.Background(), Config{
		SenderCompID: "TW",
		TargetCompID: "ISLD",
		HeartBtInt:   30 * time.Second,
		ResetSeqNum:  true,
		Transport:    &out,
		Store:        memstore.New(),
	})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	sent, err := wire.Parse(out.Bytes())
	require.NoError(t, err)
	require.True(t, sent.GetBool(dictionary.TagResetSeqNumFlag))
	require.EqualValues(t, 2, s.NextOutSeq())
}

func TestHeartbeatEmittedOnTick(t *testing.T) {
	s, out, _ := newTestSession(t)
	ctx := context.Background()
	clock := time.Now()
	s.now = func() time.Time { return clock }
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.HandleInbound(ctx, logonReply(t, 1, "ISLD", "TW", clock, false, false)))

	// Refresh last_recv_time 20s after Start so that a tick 31s after
	// Start exceeds only the outbound heartbeat threshold (based on the
	// last_sent_time of the Logon sent by Start), not the inbound liveness
	// one.
	clock = clock.Add(20 * time.Second)
	hb := builder.New("FIX.4.2", dictionary.MsgTypeHeartbeat)
	raw, err := hb.Finalize("ISLD", "TW", 2, clock)
	require.NoError(t, err)
	msg, err := wire.Parse(raw)
	require.NoError(t, err)
	require.NoError(t, s.HandleInbound(ctx, msg))
	out.Reset()

	future := clock.Add(11 * time.Second)
	require.NoError(t, s.OnTimerTick(ctx, future))

	sent, err := wire.Parse(out.Bytes())
	require.NoError(t, err)
	require.Equal(t, dictionary.MsgTypeHeartbeat, sent.MsgType())
	_, hasTestReqID := sent.GetString(dictionary.TagTestReqID)
	require.False(t, hasTestReqID)
}

func TestTestRequestReply(t *testing.T) {
	s, out, _ := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.HandleInbound(ctx, logonReply(t, 1, "ISLD", "TW", time.Now(), false, false)))
	out.Reset()

	b := builder.New("FIX.4.2", dictionary.MsgTypeTestRequest)
	require.NoError(t, b.PushString(dictionary.TagTestReqID, "ABC"))
	raw, err := b.Finalize("ISLD", "TW", 2, time.Now())
	require.NoError(t, err)
	msg, err := wire.Parse(raw)
	require.NoError(t, err)

	require.NoError(t, s.HandleInbound(ctx, msg))

	sent, err := wire.Parse(out.Bytes())
	require.NoError(t, err)
	require.Equal(t, dictionary.MsgTypeHeartbeat, sent.MsgType())
	id, ok := sent.GetString(dictionary.TagTestReqID)
	require.True(t, ok)
	require.Equal(t, "ABC", id)
}

func TestGapTriggersResendRequestAndBuffers(t *testing.T) {
	s, out, events := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.HandleInbound(ctx, logonReply(t, 1, "ISLD", "TW", time.Now(), false, false)))
	out.Reset()

	b := builder.New("FIX.4.2", "D")
	require.NoError(t, b.PushString(55, "IBM"))
	raw, err := b.Finalize("ISLD", "TW", 5, time.Now())
	require.NoError(t, err)
	msg, err := wire.Parse(raw)
	require.NoError(t, err)

	require.NoError(t, s.HandleInbound(ctx, msg))

	sent, err := wire.Parse(out.Bytes())
	require.NoError(t, err)
	require.Equal(t, dictionary.MsgTypeResendRequest, sent.MsgType())
	begin, _ := sent.GetInt(dictionary.TagBeginSeqNo)
	end, _ := sent.GetInt(dictionary.TagEndSeqNo)
	require.EqualValues(t, 2, begin)
	require.EqualValues(t, 0, end)

	require.EqualValues(t, 2, s.NextInSeq(), "gap must not advance next_in_seq")
	select {
	case ev := <-events:
		t.Fatalf("unexpected event delivered before gap filled: %+v", ev)
	default:
	}
}

func TestDuplicateBelowExpectedIsDiscarded(t *testing.T) {
	s, out, _ := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.HandleInbound(ctx, logonReply(t, 1, "ISLD", "TW", time.Now(), false, false)))
	out.Reset()

	b := builder.New("FIX.4.2", dictionary.MsgTypeHeartbeat)
	b.SetPossDupFlag()
	raw, err := b.Finalize("ISLD", "TW", 1, time.Now())
	require.NoError(t, err)
	msg, err := wire.Parse(raw)
	require.NoError(t, err)

	require.NoError(t, s.HandleInbound(ctx, msg))
	require.EqualValues(t, 2, s.NextInSeq())
	require.Zero(t, out.Len(), "no reply expected for a discarded duplicate")
}

func TestSeqTooLowWithoutPossDupIsFatal(t *testing.T) {
	s, _, events := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.HandleInbound(ctx, logonReply(t, 1, "ISLD", "TW", time.Now(), false, false)))

	b := builder.New("FIX.4.2", dictionary.MsgTypeHeartbeat)
	raw, err := b.Finalize("ISLD", "TW", 1, time.Now())
	require.NoError(t, err)
	msg, err := wire.Parse(raw)
	require.NoError(t, err)

	err = s.HandleInbound(ctx, msg)
	require.Error(t, err)
	require.Equal(t, Disconnected, s.State())

	ev := <-events
	require.Equal(t, EventDisconnected, ev.Kind)
}

func TestSubmitAssignsMonotonicSeqAndPersists(t *testing.T) {
	s, out, _ := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.HandleInbound(ctx, logonReply(t, 1, "ISLD", "TW", time.Now(), false, false)))
	out.Reset()

	b1 := builder.New("FIX.4.2", "D")
	require.NoError(t, b1.PushString(55, "IBM"))
	seq1, err := s.Submit(ctx, b1)
	require.NoError(t, err)
	require.EqualValues(t, 2, seq1)

	b2 := builder.New("FIX.4.2", "D")
	require.NoError(t, b2.PushString(55, "MSFT"))
	seq2, err := s.Submit(ctx, b2)
	require.NoError(t, err)
	require.EqualValues(t, 3, seq2)
}

func TestGracefulShutdown(t *testing.T) {
	s, out, events := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.HandleInbound(ctx, logonReply(t, 1, "ISLD", "TW", time.Now(), false, false)))
	out.Reset()

	require.NoError(t, s.Shutdown(ctx))
	require.Equal(t, LogoutSent, s.State())

	sent, err := wire.Parse(out.Bytes())
	require.NoError(t, err)
	require.Equal(t, dictionary.MsgTypeLogout, sent.MsgType())

	b := builder.New("FIX.4.2", dictionary.MsgTypeLogout)
	raw, err := b.Finalize("ISLD", "TW", 2, time.Now())
	require.NoError(t, err)
	reply, err := wire.Parse(raw)
	require.NoError(t, err)

	require.NoError(t, s.HandleInbound(ctx, reply))
	require.Equal(t, Disconnected, s.State())

	ev := <-events
	require.Equal(t, EventDisconnected, ev.Kind)
	require.NoError(t, ev.Err)
}
