package capture

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodePermissionBlocked      ErrorCode = "PermissionBlocked"
	CodeNoMicFound             ErrorCode = "NoMicFound"
	CodeMicInUse               ErrorCode = "MicInUse"
	CodeUnknownMicError        ErrorCode = "UnknownMicError"
	CodeRecordingTooShort      ErrorCode = "RecordingTooShort"
	CodeTransportError         ErrorCode = "TransportError"
	CodeInvalidRequest         ErrorCode = "InvalidRequest"
	CodeTranscriptionFailed    ErrorCode = "TranscriptionFailed"
	CodeTranscriptionEmpty     ErrorCode = "TranscriptionEmpty"
	CodeStructuringFailed      ErrorCode = "StructuringFailed"
	CodeStructuringInvalidJSON ErrorCode = "StructuringInvalidJSON"
	CodePersistenceFailure     ErrorCode = "PersistenceFailure"
	CodeTimeout                ErrorCode = "Timeout"
	CodeInternal               ErrorCode = "Internal"
)

// Code sentinels for errors.Is.
var (
	ErrPermissionBlocked      = &Error{Code: CodePermissionBlocked}
	ErrNoMicFound             = &Error{Code: CodeNoMicFound}
	ErrMicInUse               = &Error{Code: CodeMicInUse}
	ErrUnknownMicError        = &Error{Code: CodeUnknownMicError}
	ErrRecordingTooShort      = &Error{Code: CodeRecordingTooShort}
	ErrTransport              = &Error{Code: CodeTransportError}
	ErrInvalidRequest         = &Error{Code: CodeInvalidRequest}
	ErrTranscriptionFailed    = &Error{Code: CodeTranscriptionFailed}
	ErrTranscriptionEmpty     = &Error{Code: CodeTranscriptionEmpty}
	ErrStructuringFailed      = &Error{Code: CodeStructuringFailed}
	ErrStructuringInvalidJSON = &Error{Code: CodeStructuringInvalidJSON}
	ErrPersistenceFailure     = &Error{Code: CodePersistenceFailure}
	ErrTimeout                = &Error{Code: CodeTimeout}
)

type Error struct {
	Code   ErrorCode
	Detail string
	Err    error
}

func NewError(code ErrorCode, detail string, cause error) *Error {
	return &Error{Code: code, Detail: detail, Err: cause}
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the taxonomy code of err, or CodeInternal.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsLocal reports whether the code is resolved on the client without a
// network call.
func (c ErrorCode) IsLocal() bool {
	switch c {
	case CodePermissionBlocked, CodeNoMicFound, CodeMicInUse, CodeUnknownMicError, CodeRecordingTooShort:
		return true
	default:
		return false
	}
}
