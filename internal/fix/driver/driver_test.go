package driver

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/builder"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/session"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/store/memstore"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/wire"
	"github.com/stretchr/testify/require"
)

// counterpartyFrame builds a raw wire frame as if sent by the other side of
// the connection, for writing into the driver's read pipe.
func counterpartyFrame(t *testing.T, msgType string, seq int64, fn func(b *builder.Builder) error) []byte {
	t.Helper()
	b := builder.New("FIX.4.2", msgType)
	if fn != nil {
		require.NoError(t, fn(b))
	}
	raw, err := b.Finalize("ISLD", "TW", seq, time.Now())
	require.NoError(t, err)
	return raw
}

func newTestDriver(t *testing.T) (*Driver, *bytes.Buffer, *io.PipeWriter) {
	t.Helper()
	var transport bytes.Buffer
	pr, pw := io.Pipe()
	t.Cleanup(func() { pr.Close(); pw.Close() })

	sess, err := session.New(context.Background(), session.Config{
		SenderCompID: "TW",
		TargetCompID: "ISLD",
		HeartBtInt:   30 * time.Second,
		Transport:    &transport,
		Store:        memstore.New(),
		Now:          time.Now,
	})
	require.NoError(t, err)

	d := New(sess, pr, nil, 8)
	return d, &transport, pw
}

func TestRunLogsOnAndSubmitsThenShutsDownGracefully(t *testing.T) {
	d, transport, pw := newTestDriver(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return transport.Len() > 0 }, time.Second, time.Millisecond)
	logonOut, err := wire.Parse(transport.Bytes())
	require.NoError(t, err)
	require.Equal(t, dictionary.MsgTypeLogon, logonOut.MsgType())
	transport.Reset()

	reply := counterpartyFrame(t, dictionary.MsgTypeLogon, 1, func(b *builder.Builder) error {
		if err := b.PushInt(dictionary.TagEncryptMethod, 0); err != nil {
			return err
		}
		return b.PushInt(dictionary.TagHeartBtInt, 30)
	})
	_, err = pw.Write(reply)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return d.sess.State() == session.LoggedOn }, time.Second, time.Millisecond)

	appBuilder := builder.New("FIX.4.2", "D")
	require.NoError(t, appBuilder.PushString(55, "IBM"))
	seq, err := d.Submit(ctx, appBuilder)
	require.NoError(t, err)
	require.EqualValues(t, 2, seq)

	transport.Reset()
	d.Shutdown()

	require.Eventually(t, func() bool { return d.sess.State() == session.LogoutSent }, time.Second, time.Millisecond)
	logoutOut, err := wire.Parse(transport.Bytes())
	require.NoError(t, err)
	require.Equal(t, dictionary.MsgTypeLogout, logoutOut.MsgType())

	logoutReply := counterpartyFrame(t, dictionary.MsgTypeLogout, 2, nil)
	_, err = pw.Write(logoutReply)
	require.NoError(t, err)

	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after graceful logout")
	}
	require.Equal(t, session.Disconnected, d.sess.State())
}

func TestRunReturnsOnReadError(t *testing.T) {
	d, transport, pw := newTestDriver(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return transport.Len() > 0 }, time.Second, time.Millisecond)

	pw.CloseWithError(io.ErrClosedPipe)

	select {
	case err := <-runErr:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after read error")
	}
}
