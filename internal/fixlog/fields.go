package fixlog

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured session logging. Use these
// consistently so log lines stay greppable/aggregable across sessions.
const (
	KeySessionLabel = "session"        // "<sender>-<target>" label
	KeySenderCompID = "sender_comp_id"
	KeyTargetCompID = "target_comp_id"
	KeyMsgType      = "msg_type"
	KeySeqNum       = "seq_num"
	KeyDirection    = "direction" // "in" or "out"
	KeyTag          = "tag"
	KeyState        = "state"
	KeyError        = "error"
	KeyErrorCode    = "error_code"
	KeyDurationMs   = "duration_ms"
)

// SessionLabel returns a slog.Attr for the session's sender-target label.
func SessionLabel(label string) slog.Attr {
	return slog.String(KeySessionLabel, label)
}

// MsgType returns a slog.Attr for a FIX MsgType(35) value.
func MsgType(msgType string) slog.Attr {
	return slog.String(KeyMsgType, msgType)
}

// SeqNum returns a slog.Attr for a MsgSeqNum(34) value.
func SeqNum(seq uint64) slog.Attr {
	return slog.Uint64(KeySeqNum, seq)
}

// Direction returns a slog.Attr classifying a message as inbound or outbound.
func Direction(dir string) slog.Attr {
	return slog.String(KeyDirection, dir)
}

// Tag returns a slog.Attr identifying a FIX tag number involved in an error.
func Tag(tag uint32) slog.Attr {
	return slog.Uint64(KeyTag, uint64(tag))
}

// Err returns a slog.Attr for an error, or an empty Attr if err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// State returns a slog.Attr for a value implementing fmt.Stringer, used
// for session.State transitions.
func State(s fmt.Stringer) slog.Attr {
	return slog.String(KeyState, s.String())
}
