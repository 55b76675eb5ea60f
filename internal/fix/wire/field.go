package wire

import (
	"strconv"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/dictionary"
)

// Field is a single (Tag, raw bytes) pair. Value is a slice into the
// message's original buffer for fields produced by Parse; it is a
// freshly-allocated slice for fields produced by the builder.
type Field struct {
	Tag   dictionary.Tag
	Value []byte
}

func (f Field) String() string {
	return string(f.Value)
}

func (f Field) Int() (int64, error) {
	return strconv.ParseInt(string(f.Value), 10, 64)
}

func (f Field) Bool() bool {
	return len(f.Value) == 1 && f.Value[0] == 'Y'
}
