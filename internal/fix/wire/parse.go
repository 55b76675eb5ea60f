package wire

import (
	"bytes"
	"strconv"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/errors"
)

// Parse turns a single complete FIX frame (as produced by a Framer) into a
// Message. It validates BodyLength and CheckSum (spec.md §4.2 steps 1-4)
// and builds a tag-indexed Message without copying any field value.
func Parse(raw []byte) (*Message, error) {
	pendingDataLen := map[dictionary.Tag]int{}

	msg := &Message{Raw: raw, index: map[dictionary.Tag]int{}}
	add := func(tag dictionary.Tag, value []byte) {
		msg.Fields = append(msg.Fields, Field{Tag: tag, Value: value})
		if _, exists := msg.index[tag]; !exists {
			msg.index[tag] = len(msg.Fields) - 1
		}
	}

	tag, val, pos, err := scanField(raw, 0, pendingDataLen)
	if err != nil {
		return nil, err
	}
	if tag != dictionary.TagBeginString {
		return nil, errors.Newf(errors.BadFormat, "message must start with BeginString(8), got tag %d", tag)
	}
	add(tag, val)

	tag, val, pos, err = scanField(raw, pos, pendingDataLen)
	if err != nil {
		return nil, err
	}
	if tag != dictionary.TagBodyLength {
		return nil, errors.Newf(errors.BadFormat, "expected BodyLength(9) as second field, got tag %d", tag)
	}
	bodyLen, err := strconv.Atoi(string(val))
	if err != nil {
		return nil, errors.Newf(errors.BadFormat, "non-numeric BodyLength(9): %q", val)
	}
	add(tag, val)

	bodyFieldsStart := pos

	for {
		if pos >= len(raw) {
			return nil, errors.New(errors.BadFormat, "truncated message: no CheckSum(10) trailer found")
		}

		tag, val, newPos, err := scanField(raw, pos, pendingDataLen)
		if err != nil {
			return nil, err
		}

		if tag == dictionary.TagCheckSum {
			bodyFieldsEnd := pos
			measured := bodyFieldsEnd - bodyFieldsStart
			if measured != bodyLen {
				return nil, errors.Newf(errors.BadBodyLength, "BodyLength mismatch: header says %d, measured %d", bodyLen, measured)
			}

			computed := Checksum(raw[:bodyFieldsEnd])
			expected := FormatChecksum(computed)
			if string(val) != expected {
				return nil, errors.Newf(errors.BadChecksum, "CheckSum mismatch: expected %s, got %s", expected, val)
			}

			add(tag, val)
			pos = newPos
			break
		}

		add(tag, val)
		pos = newPos
	}

	if pos != len(raw) {
		return nil, errors.New(errors.BadFormat, "trailing bytes after CheckSum(10)")
	}

	return msg, nil
}

// scanField reads one "tag=value<SOH>" token starting at pos. If tag is
// the companion DATA tag for a Length field seen earlier in this message,
// it instead reads exactly the recorded number of raw bytes (which may
// contain embedded SOH bytes) and then expects a single trailing SOH
// (spec.md §4.2 "DATA fields").
func scanField(raw []byte, pos int, pendingDataLen map[dictionary.Tag]int) (dictionary.Tag, []byte, int, error) {
	eq := bytes.IndexByte(raw[pos:], '=')
	if eq == -1 {
		return 0, nil, pos, errors.New(errors.BadFormat, "missing '=' in field")
	}

	tagNum, err := strconv.ParseUint(string(raw[pos:pos+eq]), 10, 32)
	if err != nil {
		return 0, nil, pos, errors.Newf(errors.BadFormat, "non-numeric tag: %q", raw[pos:pos+eq])
	}
	tag := dictionary.Tag(tagNum)
	valueStart := pos + eq + 1

	if length, ok := pendingDataLen[tag]; ok {
		valueEnd := valueStart + length
		if valueEnd > len(raw) {
			return 0, nil, pos, errors.Newf(errors.BadFormat, "truncated DATA field %d: need %d bytes", tag, length)
		}
		value := raw[valueStart:valueEnd]
		if valueEnd >= len(raw) || raw[valueEnd] != soh {
			return 0, nil, pos, errors.Newf(errors.BadFormat, "DATA field %d not terminated by SOH", tag)
		}
		delete(pendingDataLen, tag)
		return tag, value, valueEnd + 1, nil
	}

	sohIdx := bytes.IndexByte(raw[valueStart:], soh)
	if sohIdx == -1 {
		return 0, nil, pos, errors.Newf(errors.BadFormat, "missing SOH terminator for tag %d", tag)
	}
	value := raw[valueStart : valueStart+sohIdx]

	if dataTag, ok := dictionary.DataTagForLengthTag(tag); ok {
		n, err := strconv.Atoi(string(value))
		if err != nil {
			return 0, nil, pos, errors.Newf(errors.BadFormat, "non-numeric length field %d: %q", tag, value)
		}
		pendingDataLen[dataTag] = n
	}

	return tag, value, valueStart + sohIdx + 1, nil
}
