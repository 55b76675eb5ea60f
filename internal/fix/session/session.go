// Package session implements the session state machine (spec.md §4.5): the
// protocol core driving Logon, steady-state sequencing, admin message
// handling, and outbound application submission. It is deliberately not
// concurrency-safe on its own — per spec.md §4.7/§5, a single driver task
// owns one Session and serializes every call into it, the same
// single-writer shape the teacher's smb/session.Session documents for its
// own session-local mutable state (one goroutine touches this, locking
// would just be overhead).
package session

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/builder"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/store"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/wire"
	"github.com/ForgeFinx/ForgeFIX/internal/fixlog"
	"github.com/ForgeFinx/ForgeFIX/pkg/metrics"
)

// State is the session's logon-lifecycle phase, encoded as an explicit
// tagged variant per spec.md §9 rather than scattered boolean checks.
type State int

const (
	Disconnected State = iota
	ConnectingLogonSent
	LoggedOn
	LogoutSent
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case ConnectingLogonSent:
		return "ConnectingLogonSent"
	case LoggedOn:
		return "LoggedOn"
	case LogoutSent:
		return "LogoutSent"
	default:
		return "Unknown"
	}
}

// EventKind classifies what an Event delivers to the embedding application.
type EventKind int

const (
	EventApp EventKind = iota
	EventReject
	EventDisconnected
)

// Event is what poll_event (spec.md §6) surfaces to the application layer:
// a delivered application message, a session-level Reject, or the terminal
// disconnect notice.
type Event struct {
	Kind    EventKind
	Message *wire.Message // set for EventApp and EventReject
	Err     error          // set for EventDisconnected; nil on graceful end()
}

// pendingResend tracks an in-flight gap: messages buffered while we wait
// for the counterparty to fill seq numbers [from, current).
type pendingResend struct {
	waiting  bool
	from     uint64
	buffered map[uint64]*wire.Message
}

// Config seeds a new Session. Fields mirror the settings enumerated in
// spec.md §6.
type Config struct {
	SenderCompID  string
	TargetCompID  string
	BeginString   string
	HeartBtInt    time.Duration
	ResetSeqNum   bool
	Transport     io.Writer
	Store         store.Store
	Events        chan<- Event
	Logger        *slog.Logger
	Metrics       *metrics.SessionMetrics
	SessionLabel  string // metrics/log label, defaults to "<sender>-<target>"
	Now           func() time.Time
	LogonTimeout  time.Duration
	LogoutTimeout time.Duration

	// Epoch, if set, is compared against the epoch recorded in Store on
	// construction (spec.md §4.5.5). A mismatch resets the Store and both
	// counters to 1 before they are loaded.
	Epoch string

	// RawSink, if set, receives a copy of every raw inbound/outbound frame
	// independent of Store (spec.md §6 log_dir). Nil is safe to pass.
	RawSink *fixlog.RawSink
}

// Session is the live state machine for one FIX session. All exported
// methods are expected to be called from a single goroutine (the driver).
type Session struct {
	cfg   Config
	now   func() time.Time
	label string

	state State

	nextOutSeq uint64
	nextInSeq  uint64

	lastSentTime time.Time
	lastRecvTime time.Time

	testReqOutstanding string // empty when none outstanding
	testReqSentAt      time.Time

	resend pendingResend

	tearingDown bool // guards fatal against recursing through its own Logout attempt

	logonDeadline  time.Time
	logoutDeadline time.Time
}

// New constructs a Session with counters loaded from Store (spec.md
// §4.5.1 "load persisted counters via Store").
func New(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.SenderCompID == "" || cfg.TargetCompID == "" {
		return nil, errors.New(errors.SettingRequired, "sender_comp_id and target_comp_id are required")
	}
	if cfg.BeginString == "" {
		cfg.BeginString = "FIX.4.2"
	}
	if cfg.HeartBtInt <= 0 {
		cfg.HeartBtInt = 30 * time.Second
	}
	if cfg.LogonTimeout <= 0 {
		cfg.LogonTimeout = 10 * time.Second
	}
	if cfg.LogoutTimeout <= 0 {
		cfg.LogoutTimeout = 10 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Store == nil {
		return nil, errors.New(errors.SettingRequired, "store is required")
	}
	label := cfg.SessionLabel
	if label == "" {
		label = cfg.SenderCompID + "-" + cfg.TargetCompID
	}

	if cfg.Epoch != "" {
		if err := cfg.Store.Reset(ctx, cfg.Epoch); err != nil {
			return nil, errors.Wrap(errors.IoError, err, "start-of-day epoch reset")
		}
	}

	outHigh, err := cfg.Store.HighestSeq(ctx, store.Out)
	if err != nil {
		return nil, errors.Wrap(errors.IoError, err, "load outbound highest seq")
	}
	inHigh, err := cfg.Store.HighestSeq(ctx, store.In)
	if err != nil {
		return nil, errors.Wrap(errors.IoError, err, "load inbound highest seq")
	}

	s := &Session{
		cfg:        cfg,
		now:        cfg.Now,
		label:      label,
		state:      Disconnected,
		nextOutSeq: outHigh + 1,
		nextInSeq:  inHigh + 1,
		resend:     pendingResend{buffered: map[uint64]*wire.Message{}},
	}
	s.reportSeqMetrics()
	s.reportState()
	return s, nil
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) NextOutSeq() uint64 {
	return s.nextOutSeq
}

func (s *Session) NextInSeq() uint64 {
	return s.nextInSeq
}

// HeartBtInt returns the configured heartbeat interval, used by the driver
// to size its timer tick resolution (spec.md §4.6).
func (s *Session) HeartBtInt() time.Duration {
	return s.cfg.HeartBtInt
}

// Label returns the session's sender-target label, used by the driver and
// CLI for logging and raw-log file naming.
func (s *Session) Label() string {
	return s.label
}

func (s *Session) reportSeqMetrics() {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SetSeqNums(s.label, s.nextOutSeq, s.nextInSeq)
	}
}

func (s *Session) reportState() {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SetLogonState(s.label, int(s.state))
	}
}

// emit finalizes a builder against current session identity/seq and writes
// it to the transport; used for every outbound admin and application
// message (spec.md §4.5.4, §4.3).
func (s *Session) emit(ctx context.Context, b *builder.Builder) ([]byte, uint64, error) {
	seq := s.nextOutSeq
	s.nextOutSeq++

	now := s.now()
	bytes, err := b.Finalize(s.cfg.SenderCompID, s.cfg.TargetCompID, int64(seq), now)
	if err != nil {
		s.nextOutSeq-- // a failed finalize does not consume a sequence number
		return nil, 0, err
	}

	rec := store.Record{Direction: store.Out, SeqNum: seq, MsgType: b.MsgType(), RawBytes: bytes, Timestamp: now}
	if err := s.cfg.Store.Append(ctx, rec); err != nil {
		s.nextOutSeq--
		return nil, 0, s.fatal(ctx, errors.SendMessageFailed, "store append failed: %v", err)
	}

	if _, err := s.cfg.Transport.Write(bytes); err != nil {
		return nil, 0, s.fatal(ctx, errors.IoError, "socket write failed: %v", err)
	}
	_ = s.cfg.RawSink.Record("out", bytes)
	s.lastSentTime = now
	s.reportSeqMetrics()
	if s.cfg.Metrics != nil {
		class := "app"
		if dictionary.IsAdmin(b.MsgType()) {
			class = "admin"
		}
		s.cfg.Metrics.RecordMessage(s.label, "out", class)
	}
	return bytes, seq, nil
}

// sendAdmin builds and emits an admin message with no further caller setup
// beyond the fields pushed by fn.
func (s *Session) sendAdmin(ctx context.Context, msgType string, fn func(b *builder.Builder) error) error {
	b := builder.New(s.cfg.BeginString, msgType)
	if fn != nil {
		if err := fn(b); err != nil {
			return err
		}
	}
	_, _, err := s.emit(ctx, b)
	return err
}

// deliver hands an Event to the application's poll_event consumer. It
// blocks if the channel is full rather than drop the event (spec.md §7
// "errors are never swallowed silently").
func (s *Session) deliver(ev Event) {
	if s.cfg.Events == nil {
		return
	}
	s.cfg.Events <- ev
}

func (s *Session) fatal(ctx context.Context, code errors.Code, format string, args ...any) error {
	err := errors.Newf(code, format, args...)
	if s.tearingDown {
		// Already unwinding (this is a nested failure from the Logout
		// attempt below failing too); don't try to send another one.
		return err
	}
	s.tearingDown = true

	s.cfg.Logger.Error("fatal session error", fixlog.SessionLabel(s.label), fixlog.Err(err))
	if s.cfg.Metrics != nil && (code == errors.BadChecksum || code == errors.BadBodyLength || code == errors.BadFormat) {
		s.cfg.Metrics.RecordFramingError()
	}
	if s.state == LoggedOn {
		_ = s.sendAdmin(ctx, dictionary.MsgTypeLogout, func(b *builder.Builder) error {
			return b.PushString(dictionary.TagText, err.Error())
		})
	}
	s.state = Disconnected
	s.reportState()
	s.deliver(Event{Kind: EventDisconnected, Err: err})
	return err
}
