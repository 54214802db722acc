package access

import "github.com/samber/oops"

// Sentinel errors surfaced by access validation (spec §4.2, §7).
// Callers match them with errors.Is; the response code and usage
// snapshot travel on the wrapping *Error, reached with errors.As.
var (
	ErrTokenNotFound    = oops.Errorf("token not found")
	ErrInvalidSignature = oops.Errorf("invalid admission signature")
)

// Error carries the response code, the access usage snapshot, and the
// human-readable message a caller needs to render a quota/denial
// screen, per spec §4.2 step 4 and §7.
type Error struct {
	err          error
	ResponseCode ResponseCode
	Usage        Usage
	Message      string
}

func NewError(err error, code ResponseCode, usage Usage, message string) *Error {
	return &Error{err: err, ResponseCode: code, Usage: usage, Message: message}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}
