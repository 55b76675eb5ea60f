package dictionary

import "fmt"

// FieldType is the wire type of a field's value, per the FIX 4.2 data
// dictionary's type attribute.
type FieldType int

const (
	TypeString FieldType = iota
	TypeChar
	TypeInt
	TypePrice
	TypeQty
	TypeData
	TypeUTCTimestamp
	TypeBoolean
	TypeMultipleValueString
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeChar:
		return "CHAR"
	case TypeInt:
		return "INT"
	case TypePrice:
		return "PRICE"
	case TypeQty:
		return "QTY"
	case TypeData:
		return "DATA"
	case TypeUTCTimestamp:
		return "UTCTIMESTAMP"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeMultipleValueString:
		return "MULTIPLEVALUESTRING"
	default:
		return "UNKNOWN"
	}
}

type fieldDef struct {
	name   string
	typ    FieldType
	lenTag Tag // 0 if this field is not of type DATA
}

// fields is the generated tag -> definition table. It is not exhaustive of
// the full FIX 4.2 dictionary (thousands of application tags across every
// component block); it carries every header/trailer/admin tag the session
// engine touches directly plus a representative slice of the New Order
// Single / Execution Report application tags exercised by order-entry
// sessions, which is the table's stated scope (§4.1).
var fields = map[Tag]fieldDef{
	TagBeginString:         {"BeginString", TypeString, 0},
	TagBodyLength:          {"BodyLength", TypeInt, 0},
	TagCheckSum:            {"CheckSum", TypeString, 0},
	TagMsgType:             {"MsgType", TypeString, 0},
	TagSenderCompID:        {"SenderCompID", TypeString, 0},
	TagTargetCompID:        {"TargetCompID", TypeString, 0},
	TagMsgSeqNum:           {"MsgSeqNum", TypeInt, 0},
	TagSendingTime:         {"SendingTime", TypeUTCTimestamp, 0},
	TagSenderSubID:         {"SenderSubID", TypeString, 0},
	TagTargetSubID:         {"TargetSubID", TypeString, 0},
	TagPossDupFlag:         {"PossDupFlag", TypeBoolean, 0},
	TagPossResend:          {"PossResend", TypeBoolean, 0},
	TagOrigSendingTime:     {"OrigSendingTime", TypeUTCTimestamp, 0},
	TagEncryptMethod:       {"EncryptMethod", TypeInt, 0},
	TagHeartBtInt:          {"HeartBtInt", TypeInt, 0},
	TagResetSeqNumFlag:     {"ResetSeqNumFlag", TypeBoolean, 0},
	TagTestReqID:           {"TestReqID", TypeString, 0},
	TagBeginSeqNo:          {"BeginSeqNo", TypeInt, 0},
	TagEndSeqNo:            {"EndSeqNo", TypeInt, 0},
	TagNewSeqNo:            {"NewSeqNo", TypeInt, 0},
	TagGapFillFlag:         {"GapFillFlag", TypeBoolean, 0},
	TagText:                {"Text", TypeString, 0},
	TagRefSeqNum:           {"RefSeqNum", TypeInt, 0},
	TagRefTagID:            {"RefTagID", TypeInt, 0},
	TagRefMsgType:          {"RefMsgType", TypeString, 0},
	TagSessionRejectReason: {"SessionRejectReason", TypeInt, 0},

	// Representative application tags (New Order Single / Execution Report).
	11:  {"ClOrdID", TypeString, 0},
	17:  {"ExecID", TypeString, 0},
	21:  {"HandlInst", TypeChar, 0},
	37:  {"OrderID", TypeString, 0},
	38:  {"OrderQty", TypeQty, 0},
	39:  {"OrdStatus", TypeChar, 0},
	40:  {"OrdType", TypeChar, 0},
	44:  {"Price", TypePrice, 0},
	54:  {"Side", TypeChar, 0},
	55:  {"Symbol", TypeString, 0},
	59:  {"TimeInForce", TypeChar, 0},
	60:  {"TransactTime", TypeUTCTimestamp, 0},
	150: {"ExecType", TypeChar, 0},
	151: {"LeavesQty", TypeQty, 0},
	14:  {"CumQty", TypeQty, 0},
	6:   {"AvgPx", TypePrice, 0},
	1:   {"Account", TypeString, 0},

	// DATA/Length pairing example (RawData/RawDataLength), representative
	// of the pattern the parser uses for every DATA field on the wire.
	95: {"RawDataLength", TypeInt, 0},
	96: {"RawData", TypeData, 95},
}

// lenTagOf is derived from fields at init time: DATA tag -> its companion
// Length tag, the direction the wire codec actually needs (§4.2).
var lenTagOf = func() map[Tag]Tag {
	m := make(map[Tag]Tag)
	for tag, def := range fields {
		if def.typ == TypeData && def.lenTag != 0 {
			m[tag] = def.lenTag
		}
	}
	return m
}()

var nameToTag = func() map[string]Tag {
	m := make(map[string]Tag, len(fields))
	for tag, def := range fields {
		m[def.name] = tag
	}
	return m
}()

// TagOf returns the tag number for a symbolic field name.
func TagOf(name string) (Tag, bool) {
	t, ok := nameToTag[name]
	return t, ok
}

// NameOf returns the symbolic name for a tag, if known.
func NameOf(tag Tag) (string, bool) {
	def, ok := fields[tag]
	if !ok {
		return "", false
	}
	return def.name, true
}

// TypeOf returns the wire type for a tag, if known.
func TypeOf(tag Tag) (FieldType, bool) {
	def, ok := fields[tag]
	if !ok {
		return 0, false
	}
	return def.typ, true
}

// LengthTagOf returns the tag of the companion Length field for a DATA
// field, used by the parser to read binary values verbatim (§4.2).
func LengthTagOf(tag Tag) (Tag, bool) {
	lt, ok := lenTagOf[tag]
	return lt, ok
}

// dataTagForLenTag is the inverse of lenTagOf: Length tag -> its paired
// DATA tag. The wire parser consults this as soon as it reads a Length
// field so it knows to switch the following field into raw-byte mode.
var dataTagForLenTag = func() map[Tag]Tag {
	m := make(map[Tag]Tag)
	for dataTag, lenTag := range lenTagOf {
		m[lenTag] = dataTag
	}
	return m
}()

// DataTagForLengthTag returns the DATA tag paired with a Length tag, if
// lenTag names one.
func DataTagForLengthTag(lenTag Tag) (Tag, bool) {
	dt, ok := dataTagForLenTag[lenTag]
	return dt, ok
}

// enumTable is a bidirectional map between symbolic enum names and their
// wire representation, for CHAR/BOOLEAN/INT tags with enumerated values.
type enumTable struct {
	nameToWire map[string]string
	wireToName map[string]string
}

func newEnumTable(pairs ...[2]string) enumTable {
	t := enumTable{nameToWire: map[string]string{}, wireToName: map[string]string{}}
	for _, p := range pairs {
		t.nameToWire[p[0]] = p[1]
		t.wireToName[p[1]] = p[0]
	}
	return t
}

// enums holds the enumerated-value tables for tags whose dictionary entry
// declares an enum. Only a representative subset is populated; other tags
// have no entry, so EnumWireValue returns an error and EnumName reports
// false for them.
var enums = map[Tag]enumTable{
	54: newEnumTable( // Side
		[2]string{"Buy", "1"},
		[2]string{"Sell", "2"},
	),
	39: newEnumTable( // OrdStatus
		[2]string{"New", "0"},
		[2]string{"PartiallyFilled", "1"},
		[2]string{"Filled", "2"},
		[2]string{"Canceled", "4"},
		[2]string{"PendingCancel", "6"},
		[2]string{"Rejected", "8"},
	),
	40: newEnumTable( // OrdType
		[2]string{"Market", "1"},
		[2]string{"Limit", "2"},
	),
	150: newEnumTable( // ExecType
		[2]string{"New", "0"},
		[2]string{"Canceled", "4"},
		[2]string{"Rejected", "8"},
		[2]string{"Trade", "F"},
	),
}

// EnumWireValue translates a symbolic enum name to its wire representation.
func EnumWireValue(tag Tag, name string) (string, error) {
	table, ok := enums[tag]
	if !ok {
		return "", fmt.Errorf("dictionary: tag %d has no enumerated values", tag)
	}
	v, ok := table.nameToWire[name]
	if !ok {
		return "", fmt.Errorf("dictionary: tag %d has no enum value named %q", tag, name)
	}
	return v, nil
}

// EnumName translates a wire value back to its symbolic enum name.
func EnumName(tag Tag, wire string) (string, bool) {
	table, ok := enums[tag]
	if !ok {
		return "", false
	}
	name, ok := table.wireToName[wire]
	return name, ok
}
