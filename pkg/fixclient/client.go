package fixclient

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/builder"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/driver"
	fixerrors "github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/session"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/store"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/store/badgerstore"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/store/sqlstore"
	"github.com/ForgeFinx/ForgeFIX/internal/fixlog"
	"github.com/ForgeFinx/ForgeFIX/pkg/metrics"
)

// Handle is the live, running session returned by Start. It is the only
// type the application layer needs to interact with a session (spec.md
// §6).
type Handle struct {
	conn   net.Conn
	driver *driver.Driver
	sess   *session.Session
	store  store.Store
	sink   *fixlog.RawSink
	events chan session.Event

	runErr        chan error
	logoutTimeout time.Duration
}

func openStore(s *Settings) (store.Store, error) {
	switch s.StoreBackend {
	case "", "badger":
		return badgerstore.Open(s.StorePath)
	case "sql":
		return sqlstore.Open(s.StorePath)
	default:
		return nil, fixerrors.Newf(fixerrors.SettingRequired, "unknown store_backend %q", s.StoreBackend)
	}
}

// Start implements spec.md §6's start(settings): dials the configured
// socket_addr, opens the durable Store, constructs the Session and its
// Driver, and launches the event loop on its own goroutine. It returns
// as soon as that goroutine is launched: the initial Logon is sent by the
// event loop afterwards, and the transition to LoggedOn is not delivered
// as an event (State reports it).
func Start(ctx context.Context, s *Settings, logger *slog.Logger) (*Handle, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := net.Dial("tcp", s.SocketAddr)
	if err != nil {
		return nil, fixerrors.Wrap(fixerrors.IoError, err, "dial "+s.SocketAddr)
	}

	st, err := openStore(s)
	if err != nil {
		conn.Close()
		return nil, fixerrors.Wrap(fixerrors.IoError, err, "open store")
	}

	label := s.SenderCompID + "-" + s.TargetCompID
	sink, err := fixlog.OpenRawSink(s.LogDir, label)
	if err != nil {
		conn.Close()
		st.Close()
		return nil, fixerrors.Wrap(fixerrors.IoError, err, "open raw sink")
	}

	events := make(chan session.Event, 256)

	cfg := session.Config{
		SenderCompID:  s.SenderCompID,
		TargetCompID:  s.TargetCompID,
		BeginString:   s.BeginString,
		HeartBtInt:    s.HeartbeatTimeout,
		ResetSeqNum:   s.ResetSeqNumOnLogon,
		Transport:     conn,
		Store:         st,
		Events:        events,
		Logger:        logger,
		Metrics:       metrics.NewSessionMetrics(),
		SessionLabel:  label,
		LogonTimeout:  s.LogonTimeout,
		LogoutTimeout: s.LogoutTimeout,
		Epoch:         s.Epoch,
		RawSink:       sink,
	}

	sess, err := session.New(ctx, cfg)
	if err != nil {
		conn.Close()
		st.Close()
		sink.Close()
		return nil, err
	}

	d := driver.New(sess, conn, logger, s.SubmitBuffer)

	h := &Handle{
		conn:   conn,
		driver: d,
		sess:   sess,
		store:  st,
		sink:   sink,
		events:        events,
		runErr:        make(chan error, 1),
		logoutTimeout: s.LogoutTimeout,
	}

	go func() {
		h.runErr <- d.Run(ctx)
		close(events)
	}()

	return h, nil
}

// Submit implements spec.md §6's submit(handle, builder): hands the
// builder to the driver's bounded channel and blocks for the result.
func Submit(ctx context.Context, h *Handle, b *builder.Builder) (uint64, error) {
	return h.driver.Submit(ctx, b)
}

// PollEvent implements spec.md §6's poll_event(handle): blocks for the
// next delivered application message or lifecycle event. ctx cancellation
// returns ctx.Err().
func PollEvent(ctx context.Context, h *Handle) (session.Event, error) {
	select {
	case ev, ok := <-h.events:
		if !ok {
			return session.Event{Kind: session.EventDisconnected}, fixerrors.ErrSessionEnded
		}
		return ev, nil
	case <-ctx.Done():
		return session.Event{}, ctx.Err()
	}
}

// End implements spec.md §6's end(handle): requests a graceful logout and
// waits for the driver's event loop to return, up to the configured
// logout timeout plus a short grace margin for socket teardown.
func End(ctx context.Context, h *Handle) error {
	h.driver.Shutdown()

	timeout := h.logoutTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	select {
	case err := <-h.runErr:
		h.cleanup()
		return err
	case <-time.After(timeout + 5*time.Second):
		h.cleanup()
		return fixerrors.New(fixerrors.LogoutFailed, "driver did not exit after shutdown request")
	case <-ctx.Done():
		h.cleanup()
		return ctx.Err()
	}
}

func (h *Handle) cleanup() {
	h.conn.Close()
	h.store.Close()
	h.sink.Close()
}

// NextOutSeq and NextInSeq expose the live sequence counters of a running
// session. (cmd/fixctl status reads the Store instead.)
func (h *Handle) NextOutSeq() uint64 { return h.sess.NextOutSeq() }
func (h *Handle) NextInSeq() uint64  { return h.sess.NextInSeq() }
func (h *Handle) State() string      { return h.sess.State().String() }
func (h *Handle) Label() string      { return h.sess.Label() }
