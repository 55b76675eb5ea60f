// Package builder implements the outbound Message Builder (spec.md §4.3):
// a mutable accumulator of body fields for a single outbound message,
// consumed exactly once by Finalize.
package builder

import (
	"strconv"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/wire"
)

// Builder accumulates (Tag, value) pairs for the body of one outbound
// message. A Builder is single-use: Finalize consumes it and any further
// Push* call after Finalize is a usage error.
type Builder struct {
	beginString string
	msgType     string
	body        []wire.Field
	headerExtra []wire.Field
	finalized   bool
}

// New seeds a builder with the target BeginString and MsgType. The body
// starts empty.
func New(beginString, msgType string) *Builder {
	return &Builder{beginString: beginString, msgType: msgType}
}

// MsgType reports the message type this builder was seeded with, so
// callers (the session state machine) can branch on it before Finalize.
func (b *Builder) MsgType() string {
	return b.msgType
}

func (b *Builder) checkUsable() error {
	if b.finalized {
		return errors.New(errors.Unknown, "builder already finalized: use-after-finalize")
	}
	return nil
}

// PushString appends a string-valued field. Values containing SOH are
// rejected (spec.md §4.3 "Constraints").
func (b *Builder) PushString(tag dictionary.Tag, value string) error {
	if err := b.checkUsable(); err != nil {
		return err
	}
	for i := 0; i < len(value); i++ {
		if value[i] == 0x01 {
			return errors.Newf(errors.BadString, "value for tag %d contains SOH", tag)
		}
	}
	b.body = append(b.body, wire.Field{Tag: tag, Value: []byte(value)})
	return nil
}

// PushInt appends an integer field, base-10 ASCII encoded.
func (b *Builder) PushInt(tag dictionary.Tag, value int64) error {
	if err := b.checkUsable(); err != nil {
		return err
	}
	b.body = append(b.body, wire.Field{Tag: tag, Value: []byte(strconv.FormatInt(value, 10))})
	return nil
}

// PushField appends a field using its already-wire-form enumerated value
// (e.g. "1" for Side=Buy), validating it against the dictionary's
// enumerated-value table for tag (spec.md §4.1 "Enumerated-value tables").
// BOOLEAN-typed tags (Y/N) have no enum table of their own and are
// accepted directly, since "Y"/"N" is the entire value space for Boolean.
func (b *Builder) PushField(tag dictionary.Tag, wireValue string) error {
	if err := b.checkUsable(); err != nil {
		return err
	}
	if typ, ok := dictionary.TypeOf(tag); ok && typ == dictionary.TypeBoolean {
		if wireValue != "Y" && wireValue != "N" {
			return errors.Newf(errors.BadString, "tag %d is BOOLEAN, got %q", tag, wireValue)
		}
		b.body = append(b.body, wire.Field{Tag: tag, Value: []byte(wireValue)})
		return nil
	}
	if _, ok := dictionary.EnumName(tag, wireValue); !ok {
		return errors.Newf(errors.BadString, "tag %d has no enum value %q", tag, wireValue)
	}
	b.body = append(b.body, wire.Field{Tag: tag, Value: []byte(wireValue)})
	return nil
}

// PushCurrentTime appends tag formatted as YYYYMMDD-HH:MM:SS.sss in UTC.
func (b *Builder) PushCurrentTime(tag dictionary.Tag, now time.Time) error {
	if err := b.checkUsable(); err != nil {
		return err
	}
	b.body = append(b.body, wire.Field{Tag: tag, Value: []byte(wire.FormatUTCTimestamp(now))})
	return nil
}

// pushHeaderExtra appends an additional header field (PossDupFlag,
// OrigSendingTime, ...) that isn't part of the fixed required order but
// still belongs in the header, not the body. Backs SetPossDupFlag and
// SetOrigSendingTime, which the session state machine calls when
// replaying messages during a resend.
func (b *Builder) pushHeaderExtra(tag dictionary.Tag, value string) {
	b.headerExtra = append(b.headerExtra, wire.Field{Tag: tag, Value: []byte(value)})
}

// SetPossDupFlag marks this message as a possible duplicate/resend.
func (b *Builder) SetPossDupFlag() {
	b.pushHeaderExtra(dictionary.TagPossDupFlag, "Y")
}

// SetOrigSendingTime records the original SendingTime of a resent message.
func (b *Builder) SetOrigSendingTime(t time.Time) {
	b.pushHeaderExtra(dictionary.TagOrigSendingTime, wire.FormatUTCTimestamp(t))
}

// Finalize assembles the complete wire buffer: header in fixed order,
// HeaderExtra, body, then BodyLength and CheckSum computed post-hoc
// (spec.md §4.3 "finalize"). The builder must not be reused afterward.
func (b *Builder) Finalize(sender, target string, seqNum int64, sendingTime time.Time) ([]byte, error) {
	if err := b.checkUsable(); err != nil {
		return nil, err
	}
	b.finalized = true

	env := wire.Envelope{
		BeginString:  b.beginString,
		MsgType:      b.msgType,
		SenderCompID: sender,
		TargetCompID: target,
		MsgSeqNum:    seqNum,
		SendingTime:  sendingTime,
		HeaderExtra:  b.headerExtra,
		Body:         b.body,
	}
	return wire.Serialize(env), nil
}
