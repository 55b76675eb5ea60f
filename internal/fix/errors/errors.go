// Package errors defines the boundary error kinds surfaced to applications
// embedding the session engine (spec.md §6, §7), modeled on the teacher's
// StoreError / ProtocolError shape: a small sentinel code plus a message,
// with Unwrap support so callers can still errors.Is/errors.As through to
// the underlying I/O or store error.
package errors

import "fmt"

// Code enumerates the error kinds surfaced at the client boundary.
type Code int

const (
	Ok Code = iota
	IoError
	SessionEnded
	LogonFailed
	LogoutFailed
	SendMessageFailed
	BadString
	SettingRequired
	Unknown

	// Wire-level errors (§4.2). These are always fatal to the connection.
	BadChecksum
	BadBodyLength
	BadFormat
)

func (c Code) String() string {
	switch c {
	case Ok:
		return "Ok"
	case IoError:
		return "IoError"
	case SessionEnded:
		return "SessionEnded"
	case LogonFailed:
		return "LogonFailed"
	case LogoutFailed:
		return "LogoutFailed"
	case SendMessageFailed:
		return "SendMessageFailed"
	case BadString:
		return "BadString"
	case SettingRequired:
		return "SettingRequired"
	case BadChecksum:
		return "BadChecksum"
	case BadBodyLength:
		return "BadBodyLength"
	case BadFormat:
		return "BadFormat"
	default:
		return "Unknown"
	}
}

// SessionError is the concrete error type returned at the session
// boundary. Tag is non-zero when the error concerns a specific field.
type SessionError struct {
	Code    Code
	Message string
	Tag     uint32
	cause   error
}

func New(code Code, message string) *SessionError {
	return &SessionError{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *SessionError {
	return &SessionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, cause error, message string) *SessionError {
	return &SessionError{Code: code, Message: message, cause: cause}
}

func (e *SessionError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SessionError) Unwrap() error {
	return e.cause
}

// Is supports errors.Is(err, SomeSessionError) comparison by Code, the way
// sentinel codes are usually compared in Go, without requiring identical
// messages.
func (e *SessionError) Is(target error) bool {
	other, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// Sentinels for errors.Is comparisons against a bare code.
var (
	ErrSessionEnded     = New(SessionEnded, "session ended")
	ErrLogonFailed      = New(LogonFailed, "logon failed")
	ErrLogoutFailed     = New(LogoutFailed, "logout failed")
	ErrSendMessageFailed = New(SendMessageFailed, "send message failed")
)
