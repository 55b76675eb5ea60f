// Package driver implements the Session Driver / Event Loop of spec.md
// §4.7: a single goroutine that owns one session.Session and serializes
// every inbound frame, outbound submit, and timer tick into it. External
// producers talk to the driver only through the bounded Submit channel;
// no other mutable state escapes the loop (spec.md §5).
//
// Go has no native async read the way the source runtime does, so the one
// concession to a second goroutine is a dumb reader pump: it does nothing
// but block on conn.Read and forward bytes (or the terminal error) over a
// channel, the same shape the teacher's settings_watcher/flusher poll
// loops use for a ticker-driven background goroutine feeding a
// single consuming owner. When the connection exposes its file descriptor
// (a real net.Conn, not a test fake), the pump polls for readability
// between short timeouts instead of sitting in an uninterruptible
// conn.Read, so it notices context cancellation without waiting on the
// socket to be closed out from under it.
package driver

import (
	"context"
	"io"
	"log/slog"
	"syscall"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/builder"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/session"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/timer"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/wire"
	"github.com/ForgeFinx/ForgeFIX/internal/fixlog"
)

// readPollInterval bounds how long pumpReads waits in one unix.Poll call
// before re-checking ctx, when the connection supports it.
const readPollInterval = 2 * time.Second

// SubmitRequest is one application message crossing the bounded
// multi-producer channel into the driver (spec.md §4.7).
type SubmitRequest struct {
	Builder *builder.Builder
	Result  chan<- SubmitResult
}

// SubmitResult is delivered back to the submitter once the driver has
// either written the message or failed to.
type SubmitResult struct {
	Seq uint64
	Err error
}

type readChunk struct {
	data []byte
	err  error
}

// Driver runs the event loop for one session.Session over one connection.
type Driver struct {
	sess   *session.Session
	conn   io.Reader
	framer wire.Framer
	logger *slog.Logger

	submitCh   chan SubmitRequest
	shutdownCh chan struct{}
	reads      chan readChunk
}

// New constructs a Driver. submitBuffer sizes the bounded Submit channel
// (spec.md §4.7 "no unbounded queue").
func New(sess *session.Session, conn io.Reader, logger *slog.Logger, submitBuffer int) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	if submitBuffer <= 0 {
		submitBuffer = 64
	}
	return &Driver{
		sess:       sess,
		conn:       conn,
		logger:     logger,
		submitCh:   make(chan SubmitRequest, submitBuffer),
		shutdownCh: make(chan struct{}),
		reads:      make(chan readChunk, 4),
	}
}

// Submit queues an application message for the driver to encode, persist,
// and write. It blocks if the bounded channel is full, which is the
// back-pressure spec.md §4.5.4 requires.
func (d *Driver) Submit(ctx context.Context, b *builder.Builder) (uint64, error) {
	result := make(chan SubmitResult, 1)
	select {
	case d.submitCh <- SubmitRequest{Builder: b, Result: result}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case r := <-result:
		return r.Seq, r.Err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Shutdown requests a graceful logout; Run returns once the session
// finishes disconnecting or the logout timeout fires.
func (d *Driver) Shutdown() {
	close(d.shutdownCh)
}

// pumpReads is the sole extra goroutine: it blocks on conn.Read and
// forwards every chunk (or the terminal read error) to the driver loop.
// It holds no session state.
func (d *Driver) pumpReads(ctx context.Context) {
	sc, pollable := d.conn.(syscall.Conn)

	buf := make([]byte, 4096)
	for {
		if pollable {
			ready := false
			for !ready {
				select {
				case <-ctx.Done():
					return
				default:
				}
				r, err := pollReadable(sc, readPollInterval)
				if err != nil {
					select {
					case d.reads <- readChunk{err: err}:
					case <-ctx.Done():
					}
					return
				}
				ready = r
			}
		}

		n, err := d.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case d.reads <- readChunk{data: chunk}:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			select {
			case d.reads <- readChunk{err: err}:
			case <-ctx.Done():
			}
			return
		}
	}
}

// Run is the event loop itself. It blocks until the session disconnects
// (gracefully or fatally) or ctx is cancelled. Run must be called from its
// own goroutine; every other Driver method is safe to call concurrently
// with Run because they only ever touch channels, never session state
// directly.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.sess.Start(ctx); err != nil {
		d.logger.Error("session start failed", "error", err)
		return err
	}
	d.logger.Info("session driver started", fixlog.SessionLabel(d.sess.Label()))

	readCtx, cancelReads := context.WithCancel(ctx)
	defer cancelReads()
	go d.pumpReads(readCtx)

	ticker := timer.NewTicker(d.sess.HeartBtInt())
	defer ticker.Stop()

	shuttingDown := false
	doShutdown := func() error {
		if shuttingDown {
			return nil
		}
		shuttingDown = true
		return d.sess.Shutdown(ctx)
	}

	for {
		// Checked non-blockingly ahead of the main select so a pending
		// shutdown wins priority over inbound/submit/timer work that
		// happens to be ready on the same pass (spec.md §4.7 priority
		// order; select alone would pick among ready cases at random).
		select {
		case <-d.shutdownCh:
			if err := doShutdown(); err != nil {
				return err
			}
		default:
		}

		select {
		case <-d.shutdownCh:
			if err := doShutdown(); err != nil {
				return err
			}

		case chunk := <-d.reads:
			if chunk.err != nil {
				return errors.Wrap(errors.IoError, chunk.err, "connection read failed")
			}
			d.framer.Feed(chunk.data)
			for {
				frame, ok, err := d.framer.Next()
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				msg, err := wire.Parse(frame)
				if err != nil {
					return err
				}
				if err := d.sess.HandleInbound(ctx, msg); err != nil {
					return err
				}
				if d.sess.State() == session.Disconnected {
					return nil
				}
			}

		case req := <-d.submitCh:
			seq, err := d.sess.Submit(ctx, req.Builder)
			req.Result <- SubmitResult{Seq: seq, Err: err}

		case now := <-ticker.C:
			if err := d.sess.OnTimerTick(ctx, now); err != nil {
				return err
			}

		case <-ctx.Done():
			return ctx.Err()
		}

		if d.sess.State() == session.Disconnected {
			return nil
		}
	}
}
