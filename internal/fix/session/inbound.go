package session

import (
	"context"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/builder"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/store"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/wire"
)

// HandleInbound processes one parsed inbound message (spec.md §4.5.2). It
// is the sole entry point the driver uses for inbound frames once they
// have cleared wire.Parse.
func (s *Session) HandleInbound(ctx context.Context, msg *wire.Message) error {
	_ = s.cfg.RawSink.Record("in", msg.Raw)

	seqI, err := msg.MsgSeqNum()
	if err != nil {
		return s.fatal(ctx, errors.BadFormat, "inbound message missing MsgSeqNum: %v", err)
	}
	if seqI < 1 {
		return s.fatal(ctx, errors.BadFormat, "inbound MsgSeqNum %d is not positive", seqI)
	}
	seq := uint64(seqI)
	possDup := msg.GetBool(dictionary.TagPossDupFlag)
	msgType := msg.MsgType()

	if s.cfg.Metrics != nil {
		class := "app"
		if dictionary.IsAdmin(msgType) {
			class = "admin"
		}
		s.cfg.Metrics.RecordMessage(s.label, "in", class)
	}

	if s.state == ConnectingLogonSent {
		if msgType != dictionary.MsgTypeLogon {
			return s.fatal(ctx, errors.LogonFailed, "expected Logon, got MsgType=%s", msgType)
		}
		return s.handleLogon(ctx, seq, possDup)
	}

	if s.state != LoggedOn && s.state != LogoutSent {
		return errors.Newf(errors.Unknown, "inbound message while not connected (state=%s)", s.state)
	}

	s.lastRecvTime = s.now()

	// Hard reset (§4.5.2 step 2): SequenceReset with GapFillFlag=N moves
	// next_in_seq unconditionally, no gap detection.
	if msgType == dictionary.MsgTypeSequenceReset && !msg.GetBool(dictionary.TagGapFillFlag) {
		return s.handleHardReset(ctx, msg)
	}

	delta := int64(seq) - int64(s.nextInSeq)
	switch {
	case delta == 0:
		return s.acceptInOrder(ctx, seq, msg)
	case delta > 0:
		return s.handleGap(ctx, seq, possDup, msg)
	default:
		return s.handleSeqTooLow(ctx, seq, possDup)
	}
}

// acceptInOrder persists and advances for a message exactly at next_in_seq,
// then dispatches it (admin inline, application to the consumer).
func (s *Session) acceptInOrder(ctx context.Context, seq uint64, msg *wire.Message) error {
	rec := store.Record{Direction: store.In, SeqNum: seq, MsgType: msg.MsgType(), RawBytes: msg.Raw, Timestamp: s.now()}
	if err := s.cfg.Store.Append(ctx, rec); err != nil {
		return s.fatal(ctx, errors.IoError, "store append inbound seq %d: %v", seq, err)
	}
	s.nextInSeq = seq + 1
	s.reportSeqMetrics()
	if s.resend.waiting && s.nextInSeq > s.resend.from && len(s.resend.buffered) == 0 {
		s.resend.waiting = false
	}

	if err := s.dispatch(ctx, msg); err != nil {
		return err
	}
	return s.drainBuffered(ctx)
}

// drainBuffered replays any buffered out-of-order messages that the gap
// fill has now made contiguous (spec.md §4.5.2 "duplicates fill the gap").
func (s *Session) drainBuffered(ctx context.Context) error {
	for {
		buffered, ok := s.resend.buffered[s.nextInSeq]
		if !ok {
			return nil
		}
		delete(s.resend.buffered, s.nextInSeq)
		if err := s.acceptInOrder(ctx, s.nextInSeq, buffered); err != nil {
			return err
		}
	}
}

func (s *Session) handleGap(ctx context.Context, seq uint64, possDup bool, msg *wire.Message) error {
	if possDup {
		// Already accounted for by whatever filled the gap; drop.
		return nil
	}
	s.resend.buffered[seq] = msg
	if s.resend.waiting {
		return nil // a resend covering this seq is already outstanding
	}
	return s.requestResend(ctx, s.nextInSeq, 0)
}

func (s *Session) handleSeqTooLow(ctx context.Context, seq uint64, possDup bool) error {
	if possDup {
		return nil // duplicate of something already processed
	}
	return s.fatal(ctx, errors.Unknown, "MsgSeqNum too low: got %d, expected %d", seq, s.nextInSeq)
}

// handleHardReset implements spec.md §4.5.2 step 2: SequenceReset with
// GapFillFlag=N sets next_in_seq unconditionally, no gap detection.
func (s *Session) handleHardReset(ctx context.Context, msg *wire.Message) error {
	newSeq, ok := msg.GetInt(dictionary.TagNewSeqNo)
	if !ok || newSeq < 1 {
		return s.fatal(ctx, errors.BadFormat, "SequenceReset missing valid NewSeqNo(36)")
	}
	if newSeq > 1 {
		rec := store.Record{Direction: store.In, SeqNum: uint64(newSeq) - 1, MsgType: msg.MsgType(), RawBytes: msg.Raw, Timestamp: s.now()}
		if err := s.cfg.Store.Append(ctx, rec); err != nil {
			return s.fatal(ctx, errors.IoError, "persist hard reset marker: %v", err)
		}
	}
	s.nextInSeq = uint64(newSeq)
	s.reportSeqMetrics()
	return nil
}

// handleGapFillReset implements the GapFillFlag=Y branch of SequenceReset
// reached through normal steady-state dispatch (spec.md §4.5.3): accepted
// like any other in-sequence message, then NewSeqNo becomes next_in_seq.
//
// Per spec.md §9 the FIX spec rejects an attempt to move next_in_seq
// backwards via gap-fill; the source behavior is undocumented, so this
// implementation follows the FIX spec and rejects it as fatal rather than
// silently accepting a rollback.
func (s *Session) handleGapFillReset(ctx context.Context, msg *wire.Message) error {
	newSeq, ok := msg.GetInt(dictionary.TagNewSeqNo)
	if !ok || newSeq < 1 {
		return s.fatal(ctx, errors.BadFormat, "SequenceReset(GapFill) missing valid NewSeqNo(36)")
	}
	if uint64(newSeq) < s.nextInSeq {
		return s.fatal(ctx, errors.Unknown, "SequenceReset(GapFill) NewSeqNo %d would move next_in_seq backwards from %d", newSeq, s.nextInSeq)
	}
	s.nextInSeq = uint64(newSeq)
	s.reportSeqMetrics()
	if s.resend.waiting && s.nextInSeq >= s.resend.from {
		s.resend.waiting = false
	}
	return nil
}

// dispatch routes one accepted, in-order message to admin handling or the
// application event stream (spec.md §4.5.3).
func (s *Session) dispatch(ctx context.Context, msg *wire.Message) error {
	switch msg.MsgType() {
	case dictionary.MsgTypeHeartbeat:
		return s.handleHeartbeat(ctx, msg)
	case dictionary.MsgTypeTestRequest:
		return s.handleTestRequest(ctx, msg)
	case dictionary.MsgTypeResendRequest:
		return s.handleResendRequest(ctx, msg)
	case dictionary.MsgTypeSequenceReset:
		return s.handleGapFillReset(ctx, msg)
	case dictionary.MsgTypeReject:
		s.deliver(Event{Kind: EventReject, Message: msg})
		return nil
	case dictionary.MsgTypeLogout:
		return s.handleLogout(ctx, msg)
	default:
		s.deliver(Event{Kind: EventApp, Message: msg})
		return nil
	}
}

func (s *Session) handleHeartbeat(ctx context.Context, msg *wire.Message) error {
	if id, ok := msg.GetString(dictionary.TagTestReqID); ok && id == s.testReqOutstanding {
		s.testReqOutstanding = ""
	}
	return nil
}

func (s *Session) handleTestRequest(ctx context.Context, msg *wire.Message) error {
	id, _ := msg.GetString(dictionary.TagTestReqID)
	return s.sendAdmin(ctx, dictionary.MsgTypeHeartbeat, func(b *builder.Builder) error {
		if id == "" {
			return nil
		}
		return b.PushString(dictionary.TagTestReqID, id)
	})
}

func (s *Session) handleLogout(ctx context.Context, msg *wire.Message) error {
	switch s.state {
	case LoggedOn:
		_ = s.sendAdmin(ctx, dictionary.MsgTypeLogout, nil)
		s.state = Disconnected
		s.reportState()
		s.deliver(Event{Kind: EventDisconnected, Err: nil})
		return nil
	case LogoutSent:
		s.state = Disconnected
		s.reportState()
		s.deliver(Event{Kind: EventDisconnected, Err: nil})
		return nil
	default:
		return nil
	}
}
