package wire

import (
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
)

// Message is a parsed FIX message: the raw bytes it was parsed from, plus
// an ordered field list and a tag->index map for O(1) random access.
// Value slices reference Raw directly; Parse never copies field bytes.
type Message struct {
	Raw    []byte
	Fields []Field

	index map[dictionary.Tag]int // tag -> index into Fields of its first occurrence
}

// Get returns the first field with the given tag, if present.
func (m *Message) Get(tag dictionary.Tag) (Field, bool) {
	i, ok := m.index[tag]
	if !ok {
		return Field{}, false
	}
	return m.Fields[i], true
}

func (m *Message) GetString(tag dictionary.Tag) (string, bool) {
	f, ok := m.Get(tag)
	if !ok {
		return "", false
	}
	return f.String(), true
}

func (m *Message) GetInt(tag dictionary.Tag) (int64, bool) {
	f, ok := m.Get(tag)
	if !ok {
		return 0, false
	}
	v, err := f.Int()
	if err != nil {
		return 0, false
	}
	return v, true
}

func (m *Message) GetBool(tag dictionary.Tag) bool {
	f, ok := m.Get(tag)
	return ok && f.Bool()
}

// MsgType returns the value of tag 35, or "" if the message has none.
// Parse does not check that tag 35 is present.
func (m *Message) MsgType() string {
	s, _ := m.GetString(dictionary.TagMsgType)
	return s
}

// MsgSeqNum returns the value of tag 34.
func (m *Message) MsgSeqNum() (int64, error) {
	v, ok := m.GetInt(dictionary.TagMsgSeqNum)
	if !ok {
		return 0, errors.New(errors.BadFormat, "missing or non-numeric MsgSeqNum(34)")
	}
	return v, nil
}

// IsAdmin classifies this message per the dictionary (spec.md §3).
func (m *Message) IsAdmin() bool {
	return dictionary.IsAdmin(m.MsgType())
}

// FormatUTCTimestamp renders t as FIX's YYYYMMDD-HH:MM:SS.sss in UTC,
// used by push_current_time and by OrigSendingTime propagation during
// resend (§4.3, §4.5.3).
func FormatUTCTimestamp(t time.Time) string {
	return t.UTC().Format("20060102-15:04:05.000")
}

// ParseUTCTimestamp is the inverse of FormatUTCTimestamp.
func ParseUTCTimestamp(s string) (time.Time, error) {
	return time.Parse("20060102-15:04:05.000", s)
}
