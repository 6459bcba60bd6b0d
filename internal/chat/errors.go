package chat

import "fmt"

type ErrorCode string

const (
	// ErrorInvalidRequest covers caller mistakes: missing required fields
	// or an explicitly supplied conversation id that does not resolve.
	ErrorInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrorProcessingFailed covers every downstream failure. The caller is
	// deliberately not told whether the store or the provider broke.
	ErrorProcessingFailed ErrorCode = "PROCESSING_FAILED"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("chat: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("chat: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
