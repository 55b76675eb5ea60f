package session

import (
	"context"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
)

// Shutdown implements the graceful end() path of spec.md §4.7/§5/S6: send
// Logout, transition to LogoutSent, and arm the logout deadline. The
// driver is expected to keep pumping HandleInbound until either the
// counterparty's Logout arrives (handleLogout completes the transition to
// Disconnected) or CheckLogoutTimeout fires.
func (s *Session) Shutdown(ctx context.Context) error {
	if s.state != LoggedOn {
		s.state = Disconnected
		s.reportState()
		s.deliver(Event{Kind: EventDisconnected, Err: nil})
		return nil
	}

	if err := s.sendAdmin(ctx, dictionary.MsgTypeLogout, nil); err != nil {
		return err
	}
	s.state = LogoutSent
	s.reportState()
	s.logoutDeadline = s.now().Add(s.cfg.LogoutTimeout)
	return nil
}

// CheckLogoutTimeout is polled by the driver while LogoutSent; it
// implements S6's "no reply within logout timeout, closes anyway and
// returns LogoutFailed".
func (s *Session) CheckLogoutTimeout(ctx context.Context, now time.Time) error {
	if s.state != LogoutSent {
		return nil
	}
	if now.Before(s.logoutDeadline) {
		return nil
	}
	s.state = Disconnected
	s.reportState()
	err := errors.New(errors.LogoutFailed, "counterparty did not Logout within logout timeout")
	s.deliver(Event{Kind: EventDisconnected, Err: err})
	return err
}
