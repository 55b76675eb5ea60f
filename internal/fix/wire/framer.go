package wire

import (
	"bytes"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
)

// trailerLen is the fixed width of "10=NNN<SOH>" -- CheckSum is always
// rendered as exactly three ASCII digits (spec.md §3).
const trailerLen = len("10=000") + 1

// Framer accumulates inbound bytes and slices off complete FIX frames.
// It is not safe for concurrent use; the Session Driver owns it
// exclusively (spec.md §4.7).
type Framer struct {
	buf []byte
}

// Feed appends newly-read bytes to the framer's internal buffer.
func (f *Framer) Feed(data []byte) {
	f.buf = append(f.buf, data...)
}

// Next attempts to slice one complete frame off the front of the buffer.
// It returns ok=false (with a nil error) when more bytes are needed. A
// non-nil error is always fatal to the connection (spec.md §4.2, §7).
func (f *Framer) Next() (frame []byte, ok bool, err error) {
	if len(f.buf) == 0 {
		return nil, false, nil
	}

	if !bytes.HasPrefix(f.buf, []byte("8=")) {
		return nil, false, errors.New(errors.BadFormat, "frame does not start with BeginString(8)")
	}

	firstSOH := bytes.IndexByte(f.buf, soh)
	if firstSOH == -1 {
		return nil, false, nil // need more data
	}

	rest := f.buf[firstSOH+1:]
	if !bytes.HasPrefix(rest, []byte("9=")) {
		return nil, false, errors.New(errors.BadFormat, "expected BodyLength(9) as second field")
	}

	secondSOH := bytes.IndexByte(rest, soh)
	if secondSOH == -1 {
		return nil, false, nil // need more data
	}

	bodyLenStr := rest[2:secondSOH]
	bodyLen, parseErr := parseNonNegativeInt(bodyLenStr)
	if parseErr != nil {
		return nil, false, errors.Newf(errors.BadFormat, "non-numeric BodyLength(9): %q", bodyLenStr)
	}

	bodyFieldsStart := firstSOH + 1 + secondSOH + 1
	totalLen := bodyFieldsStart + bodyLen + trailerLen

	if len(f.buf) < totalLen {
		return nil, false, nil // need more data
	}

	frame = f.buf[:totalLen]
	f.buf = f.buf[totalLen:]
	return frame, true, nil
}

func parseNonNegativeInt(b []byte) (int, error) {
	n := 0
	if len(b) == 0 {
		return 0, errors.New(errors.BadFormat, "empty integer field")
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, errors.New(errors.BadFormat, "non-numeric digit")
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
