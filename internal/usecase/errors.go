package usecase

import "fmt"

// ErrorCode groups session failures by how the UI should present them.
type ErrorCode string

const (
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorBusy         ErrorCode = "BUSY"
	ErrorTimeout      ErrorCode = "TIMEOUT"
	ErrorNetwork      ErrorCode = "NETWORK_ERROR"
	ErrorUpstream     ErrorCode = "UPSTREAM_ERROR"
)

// Error is returned by session operations. Reason is a short snake_case tag
// such as "request_pending" or "unexpected_status"; Err, when set, is the
// webhook or context error behind it.
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
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
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
