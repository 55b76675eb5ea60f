package dictionary

// Tag identifies a single FIX field on the wire.
type Tag uint32

// Header, trailer, and session-critical tags used directly by the wire
// codec and session state machine. Values match the FIX 4.2 data
// dictionary exactly; application-layer tags beyond this set are looked
// up through the name/type tables below rather than named constants.
const (
	TagBeginString    Tag = 8
	TagBodyLength     Tag = 9
	TagCheckSum       Tag = 10
	TagMsgType        Tag = 35
	TagSenderCompID   Tag = 49
	TagTargetCompID   Tag = 56
	TagMsgSeqNum      Tag = 34
	TagSendingTime    Tag = 52
	TagSenderSubID    Tag = 50
	TagTargetSubID    Tag = 57
	TagPossDupFlag    Tag = 43
	TagPossResend     Tag = 97
	TagOrigSendingTime Tag = 122
	TagEncryptMethod  Tag = 98
	TagHeartBtInt     Tag = 108
	TagResetSeqNumFlag Tag = 141
	TagTestReqID      Tag = 112
	TagBeginSeqNo     Tag = 7
	TagEndSeqNo       Tag = 16
	TagNewSeqNo       Tag = 36
	TagGapFillFlag    Tag = 123
	TagText           Tag = 58
	TagRefSeqNum      Tag = 45
	TagRefTagID       Tag = 371
	TagRefMsgType     Tag = 372
	TagSessionRejectReason Tag = 373
)

// MsgType wire values for the seven admin message types (§3, GLOSSARY).
const (
	MsgTypeHeartbeat      = "0"
	MsgTypeTestRequest    = "1"
	MsgTypeResendRequest  = "2"
	MsgTypeReject         = "3"
	MsgTypeSequenceReset  = "4"
	MsgTypeLogout         = "5"
	MsgTypeLogon          = "A"
)

// adminMsgTypes is the fixed set of session-layer (admin) message types.
// Everything else is an application message per spec.md §3.
var adminMsgTypes = map[string]bool{
	MsgTypeHeartbeat:     true,
	MsgTypeTestRequest:   true,
	MsgTypeResendRequest: true,
	MsgTypeReject:        true,
	MsgTypeSequenceReset: true,
	MsgTypeLogout:        true,
	MsgTypeLogon:         true,
}

// IsAdmin reports whether msgType names a session-layer (admin) message.
func IsAdmin(msgType string) bool {
	return adminMsgTypes[msgType]
}

// SessionRejectReason enumerates the wire values of tag 373, the reason
// code carried by a session-level Reject (35=3). Values per the FIX 4.2
// data dictionary. The session engine does not emit Reject messages
// itself; it only delivers inbound ones to the application.
type SessionRejectReason int

const (
	RejectInvalidTagNumber        SessionRejectReason = 0
	RejectRequiredTagMissing      SessionRejectReason = 1
	RejectTagNotDefinedForMsgType SessionRejectReason = 2
	RejectUndefinedTag            SessionRejectReason = 3
	RejectTagSpecifiedWithoutValue SessionRejectReason = 4
	RejectValueIncorrect          SessionRejectReason = 5
	RejectIncorrectDataFormat     SessionRejectReason = 6
	RejectDecryptionProblem       SessionRejectReason = 7
	RejectSignatureProblem        SessionRejectReason = 8
	RejectCompIDProblem           SessionRejectReason = 9
	RejectSendingTimeAccuracy     SessionRejectReason = 10
	RejectInvalidMsgType          SessionRejectReason = 11
	RejectOther                   SessionRejectReason = 99
)
