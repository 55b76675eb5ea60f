package session

import (
	"context"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/builder"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
	"github.com/google/uuid"
)

// OnTimerTick implements the heartbeat/liveness logic of spec.md §4.6.
// The driver calls this at roughly H/4 resolution. While awaiting Logon or
// the counterparty's Logout it only checks the logon/logout timeout; in
// any state other than those and LoggedOn it is a no-op.
func (s *Session) OnTimerTick(ctx context.Context, now time.Time) error {
	if s.state == ConnectingLogonSent {
		return s.CheckLogonTimeout(ctx, now)
	}
	if s.state == LogoutSent {
		return s.CheckLogoutTimeout(ctx, now)
	}
	if s.state != LoggedOn {
		return nil
	}

	h := s.cfg.HeartBtInt

	if now.Sub(s.lastSentTime) >= h {
		if err := s.sendAdmin(ctx, dictionary.MsgTypeHeartbeat, nil); err != nil {
			return err
		}
	}

	if s.testReqOutstanding == "" {
		if now.Sub(s.lastRecvTime) >= h {
			id := uuid.NewString()
			s.testReqOutstanding = id
			s.testReqSentAt = now
			if err := s.sendAdmin(ctx, dictionary.MsgTypeTestRequest, func(b *builder.Builder) error {
				return b.PushString(dictionary.TagTestReqID, id)
			}); err != nil {
				return err
			}
		}
	} else if now.Sub(s.testReqSentAt) >= 2*h {
		return s.fatal(ctx, errors.SessionEnded, "session dead: no response to TestRequest within 2x HeartBtInt")
	}

	return nil
}
