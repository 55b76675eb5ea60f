package session

import (
	"context"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/builder"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
)

// Submit implements spec.md §4.5.4: acquire and increment next_out_seq,
// finalize the builder, append to Store, then write to the transport. A
// failed submit (finalize error, store error, write error) does not
// consume a sequence number for finalize failures; store/write failures
// are fatal per spec.md §7 and tear down the session.
//
// Submits are accepted under an outstanding resend: they race ahead of the
// resent stream on the wire, distinguished by the resent messages' own
// (lower, original) sequence numbers and PossDupFlag.
func (s *Session) Submit(ctx context.Context, b *builder.Builder) (uint64, error) {
	if s.state != LoggedOn {
		return 0, errors.Newf(errors.SendMessageFailed, "submit while not LoggedOn (state=%s)", s.state)
	}
	_, seq, err := s.emit(ctx, b)
	if err != nil {
		return 0, err
	}
	return seq, nil
}
