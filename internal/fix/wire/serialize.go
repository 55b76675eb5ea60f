package wire

import (
	"bytes"
	"strconv"
	"time"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
)

// Envelope describes everything needed to serialize one outbound message:
// the fixed-order required header fields (spec.md §3), any additional
// header fields (PossDupFlag, OrigSendingTime, SenderSubID, ...), and the
// body fields in caller-specified order. BodyLength and CheckSum are
// always computed here, never supplied by the caller (spec.md §4.2
// "Serialization").
type Envelope struct {
	BeginString  string
	MsgType      string
	SenderCompID string
	TargetCompID string
	MsgSeqNum    int64
	SendingTime  time.Time

	HeaderExtra []Field
	Body        []Field
}

// Serialize writes the header fields in the fixed required order, then
// HeaderExtra, then Body, computes BodyLength and writes it right after
// BeginString, then computes and appends the CheckSum trailer. The result
// is a complete, on-wire FIX message.
func Serialize(e Envelope) []byte {
	var mid bytes.Buffer
	writeField(&mid, dictionary.TagMsgType, []byte(e.MsgType))
	writeField(&mid, dictionary.TagSenderCompID, []byte(e.SenderCompID))
	writeField(&mid, dictionary.TagTargetCompID, []byte(e.TargetCompID))
	writeField(&mid, dictionary.TagMsgSeqNum, []byte(strconv.FormatInt(e.MsgSeqNum, 10)))
	writeField(&mid, dictionary.TagSendingTime, []byte(FormatUTCTimestamp(e.SendingTime)))
	for _, f := range e.HeaderExtra {
		writeField(&mid, f.Tag, f.Value)
	}
	for _, f := range e.Body {
		writeField(&mid, f.Tag, f.Value)
	}

	bodyLength := mid.Len()

	var out bytes.Buffer
	writeField(&out, dictionary.TagBeginString, []byte(e.BeginString))
	writeField(&out, dictionary.TagBodyLength, []byte(strconv.Itoa(bodyLength)))
	out.Write(mid.Bytes())

	sum := Checksum(out.Bytes())
	writeField(&out, dictionary.TagCheckSum, []byte(FormatChecksum(sum)))

	return out.Bytes()
}

func writeField(buf *bytes.Buffer, tag dictionary.Tag, value []byte) {
	buf.WriteString(strconv.FormatUint(uint64(tag), 10))
	buf.WriteByte('=')
	buf.Write(value)
	buf.WriteByte(soh)
}
