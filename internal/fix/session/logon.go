package session

import (
	"context"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/builder"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
)

// Start sends the initial Logon and transitions to ConnectingLogonSent
// (spec.md §4.5.1).
func (s *Session) Start(ctx context.Context) error {
	if s.state != Disconnected {
		return errors.Newf(errors.Unknown, "start called from state %s", s.state)
	}

	if s.cfg.ResetSeqNum {
		s.nextOutSeq = 1
		s.nextInSeq = 1
		s.reportSeqMetrics()
	}

	heartBtInt := int64(s.cfg.HeartBtInt.Seconds())
	err := s.sendAdmin(ctx, dictionary.MsgTypeLogon, func(b *builder.Builder) error {
		if err := b.PushInt(dictionary.TagEncryptMethod, 0); err != nil {
			return err
		}
		if err := b.PushInt(dictionary.TagHeartBtInt, heartBtInt); err != nil {
			return err
		}
		if s.cfg.ResetSeqNum {
			return b.PushField(dictionary.TagResetSeqNumFlag, "Y")
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.LogonFailed, err, "send logon")
	}

	s.state = ConnectingLogonSent
	s.reportState()
	s.lastRecvTime = s.now()
	s.logonDeadline = s.now().Add(s.cfg.LogonTimeout)
	return nil
}

// handleLogon processes an inbound Logon while awaiting one (spec.md
// §4.5.1). msg has already passed wire parsing; seq is its MsgSeqNum.
func (s *Session) handleLogon(ctx context.Context, seq uint64, possDup bool) error {
	switch {
	case seq == s.nextInSeq:
		return s.acceptLogonAt(ctx, seq)

	case seq > s.nextInSeq:
		if err := s.acceptLogonAt(ctx, seq); err != nil {
			return err
		}
		return s.requestResend(ctx, s.nextInSeq, 0)

	default: // seq < next_in_seq
		if possDup {
			// Counted already; nothing to accept, nothing to advance.
			return nil
		}
		_ = s.sendAdmin(ctx, dictionary.MsgTypeLogout, func(b *builder.Builder) error {
			return b.PushString(dictionary.TagText, "MsgSeqNum too low on Logon")
		})
		s.state = Disconnected
		s.reportState()
		err := errors.Newf(errors.LogonFailed, "counterparty logon seq %d below expected %d without PossDup", seq, s.nextInSeq)
		s.deliver(Event{Kind: EventDisconnected, Err: err})
		return err
	}
}

func (s *Session) acceptLogonAt(ctx context.Context, seq uint64) error {
	s.nextInSeq = seq + 1
	s.reportSeqMetrics()
	s.state = LoggedOn
	s.reportState()
	s.lastRecvTime = s.now()
	return nil
}

// CheckLogonTimeout is polled by the timer scheduler while awaiting Logon
// (spec.md §4.5.1 "Logon timeout").
func (s *Session) CheckLogonTimeout(ctx context.Context, now time.Time) error {
	if s.state != ConnectingLogonSent {
		return nil
	}
	if now.Before(s.logonDeadline) {
		return nil
	}
	s.state = Disconnected
	s.reportState()
	err := errors.New(errors.LogonFailed, "no Logon received within logon timeout")
	s.deliver(Event{Kind: EventDisconnected, Err: err})
	return err
}
