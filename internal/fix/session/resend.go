package session

import (
	"context"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/builder"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/store"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/wire"
)

// requestResend emits ResendRequest(35=2) covering [from, through] and
// marks a resend as outstanding so further gaps don't trigger duplicate
// requests (spec.md §4.5.2, and §9's "queue resend requests serially").
func (s *Session) requestResend(ctx context.Context, from uint64, through uint64) error {
	if s.resend.waiting {
		return nil
	}
	s.resend.waiting = true
	s.resend.from = from

	return s.sendAdmin(ctx, dictionary.MsgTypeResendRequest, func(b *builder.Builder) error {
		if err := b.PushInt(dictionary.TagBeginSeqNo, int64(from)); err != nil {
			return err
		}
		return b.PushInt(dictionary.TagEndSeqNo, int64(through))
	})
}

// handleResendRequest implements spec.md §4.5.3's ResendRequest(2) server
// side: replay stored outbound records in [BeginSeqNo, EndSeqNo], coalescing
// consecutive admin/gap-filled records into a single SequenceReset
// gap-fill rather than retransmitting them.
func (s *Session) handleResendRequest(ctx context.Context, msg *wire.Message) error {
	begin, ok := msg.GetInt(dictionary.TagBeginSeqNo)
	if !ok || begin < 1 {
		return s.fatal(ctx, errors.BadFormat, "ResendRequest missing valid BeginSeqNo(7)")
	}
	end, ok := msg.GetInt(dictionary.TagEndSeqNo)
	if !ok {
		return s.fatal(ctx, errors.BadFormat, "ResendRequest missing EndSeqNo(16)")
	}
	through := uint64(end)
	if through == 0 {
		// 0 means "through current" (spec.md §4.5.3).
		through = s.nextOutSeq - 1
	}
	if through < uint64(begin) {
		return nil // nothing to do
	}

	recs, err := s.cfg.Store.FetchRange(ctx, store.Out, uint64(begin), through)
	if err != nil {
		return s.fatal(ctx, errors.IoError, "fetch outbound range [%d,%d]: %v", begin, through, err)
	}

	if err := s.replayRange(ctx, uint64(begin), through, recs); err != nil {
		return err
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordResendServed(s.label)
	}
	return nil
}

// replayRange walks stored records in [from, through], coalescing
// consecutive admin messages (and any that were themselves gap-filled) into
// SequenceReset(GapFillFlag=Y) and resending application messages verbatim
// with PossDupFlag=Y / OrigSendingTime set (spec.md §4.5.3).
func (s *Session) replayRange(ctx context.Context, from, through uint64, recs []store.Record) error {
	byseq := make(map[uint64]store.Record, len(recs))
	for _, r := range recs {
		byseq[r.SeqNum] = r
	}

	gapStart := uint64(0)
	flushGap := func(ctx context.Context, nextAppSeq uint64) error {
		if gapStart == 0 {
			return nil
		}
		start := gapStart
		gapStart = 0
		return s.sendGapFill(ctx, start, nextAppSeq)
	}

	for seq := from; seq <= through; seq++ {
		rec, ok := byseq[seq]
		if !ok {
			// A hole in the outbound store within the requested range: treat
			// it as already-gap-filled ground rather than fail the whole
			// replay.
			if gapStart == 0 {
				gapStart = seq
			}
			continue
		}
		if dictionary.IsAdmin(rec.MsgType) {
			if gapStart == 0 {
				gapStart = seq
			}
			continue
		}

		if err := flushGap(ctx, seq); err != nil {
			return err
		}
		if err := s.resendApplicationRecord(ctx, rec); err != nil {
			return err
		}
	}
	return flushGap(ctx, through+1)
}

// sendGapFill writes a coalesced SequenceReset(GapFillFlag=Y) covering the
// skipped run [seqNum, newSeqNo) directly to the transport. MsgSeqNum is
// the first skipped sequence number, not a freshly allocated one: like a
// resent application record, this replay is NOT re-appended to the Store
// and does not consume next_out_seq (spec.md §4.5.3).
func (s *Session) sendGapFill(ctx context.Context, seqNum, newSeqNo uint64) error {
	b := builder.New(s.cfg.BeginString, dictionary.MsgTypeSequenceReset)
	if err := b.PushField(dictionary.TagGapFillFlag, "Y"); err != nil {
		return s.fatal(ctx, errors.BadFormat, "build gap-fill seq %d: %v", seqNum, err)
	}
	if err := b.PushInt(dictionary.TagNewSeqNo, int64(newSeqNo)); err != nil {
		return s.fatal(ctx, errors.BadFormat, "build gap-fill seq %d: %v", seqNum, err)
	}
	b.SetPossDupFlag()

	bytes, err := b.Finalize(s.cfg.SenderCompID, s.cfg.TargetCompID, int64(seqNum), s.now())
	if err != nil {
		return s.fatal(ctx, errors.SendMessageFailed, "finalize gap-fill seq %d: %v", seqNum, err)
	}
	if _, err := s.cfg.Transport.Write(bytes); err != nil {
		return s.fatal(ctx, errors.IoError, "write gap-fill seq %d: %v", seqNum, err)
	}
	s.lastSentTime = s.now()
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordMessage(s.label, "out", "resend:"+dictionary.MsgTypeSequenceReset)
	}
	return nil
}

// resendApplicationRecord replays one stored application message verbatim
// except for PossDupFlag, OrigSendingTime, recomputed SendingTime and
// CheckSum; MsgSeqNum is preserved (spec.md §4.5.3). The replay is NOT
// re-appended to the Store.
func (s *Session) resendApplicationRecord(ctx context.Context, rec store.Record) error {
	parsed, err := wire.Parse(rec.RawBytes)
	if err != nil {
		return s.fatal(ctx, errors.IoError, "parse stored outbound seq %d for resend: %v", rec.SeqNum, err)
	}

	origSendingStr, _ := parsed.GetString(dictionary.TagSendingTime)
	origSendingTime, err := wire.ParseUTCTimestamp(origSendingStr)
	if err != nil {
		origSendingTime = rec.Timestamp
	}

	b := builder.New(s.cfg.BeginString, parsed.MsgType())
	for _, f := range parsed.Fields {
		switch f.Tag {
		case dictionary.TagBeginString, dictionary.TagBodyLength, dictionary.TagCheckSum,
			dictionary.TagMsgType, dictionary.TagSenderCompID, dictionary.TagTargetCompID,
			dictionary.TagMsgSeqNum, dictionary.TagSendingTime,
			dictionary.TagPossDupFlag, dictionary.TagOrigSendingTime:
			continue // header/trailer fields the builder regenerates itself
		}
		if err := b.PushString(f.Tag, f.String()); err != nil {
			return s.fatal(ctx, errors.BadFormat, "resend seq %d: re-push tag %d: %v", rec.SeqNum, f.Tag, err)
		}
	}
	b.SetPossDupFlag()
	b.SetOrigSendingTime(origSendingTime)

	bytes, err := b.Finalize(s.cfg.SenderCompID, s.cfg.TargetCompID, int64(rec.SeqNum), s.now())
	if err != nil {
		return s.fatal(ctx, errors.SendMessageFailed, "finalize resend seq %d: %v", rec.SeqNum, err)
	}
	if _, err := s.cfg.Transport.Write(bytes); err != nil {
		return s.fatal(ctx, errors.IoError, "write resend seq %d: %v", rec.SeqNum, err)
	}
	s.lastSentTime = s.now()
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordMessage(s.label, "out", "resend:"+parsed.MsgType())
	}
	return nil
}
