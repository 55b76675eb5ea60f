package builder

import (
	"testing"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/wire"
	"github.com/stretchr/testify/require"
)

func TestFinalizeProducesValidMessage(t *testing.T) {
	b := New("FIX.4.2", dictionary.MsgTypeLogon)
	require.NoError(t, b.PushInt(dictionary.TagEncryptMethod, 0))
	require.NoError(t, b.PushInt(dictionary.TagHeartBtInt, 30))
	require.NoError(t, b.PushField(dictionary.TagResetSeqNumFlag, "Y"))

	now := time.Now()
	raw, err := b.Finalize("TW", "ISLD", 1, now)
	require.NoError(t, err)

	msg, err := wire.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, dictionary.MsgTypeLogon, msg.MsgType())

	hb, _ := msg.GetString(dictionary.TagHeartBtInt)
	require.Equal(t, "30", hb)
}

func TestPushRejectsSOH(t *testing.T) {
	b := New("FIX.4.2", "D")
	err := b.PushString(dictionary.TagText, "bad\x01value")
	require.Error(t, err)
}

func TestDoubleFinalizeIsUsageError(t *testing.T) {
	b := New("FIX.4.2", dictionary.MsgTypeHeartbeat)
	_, err := b.Finalize("TW", "ISLD", 1, time.Now())
	require.NoError(t, err)

	_, err = b.Finalize("TW", "ISLD", 2, time.Now())
	require.Error(t, err)
}

func TestPushAfterFinalizeIsUsageError(t *testing.T) {
	b := New("FIX.4.2", dictionary.MsgTypeHeartbeat)
	_, err := b.Finalize("TW", "ISLD", 1, time.Now())
	require.NoError(t, err)

	require.Error(t, b.PushInt(dictionary.TagHeartBtInt, 30))
}

func TestPossDupAndOrigSendingTime(t *testing.T) {
	b := New("FIX.4.2", dictionary.MsgTypeHeartbeat)
	b.SetPossDupFlag()
	orig := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	b.SetOrigSendingTime(orig)

	raw, err := b.Finalize("TW", "ISLD", 5, time.Now())
	require.NoError(t, err)

	msg, err := wire.Parse(raw)
	require.NoError(t, err)
	require.True(t, msg.GetBool(dictionary.TagPossDupFlag))

	ost, ok := msg.GetString(dictionary.TagOrigSendingTime)
	require.True(t, ok)
	parsed, err := wire.ParseUTCTimestamp(ost)
	require.NoError(t, err)
	require.True(t, parsed.Equal(orig))
}
