package session

import (
	"github.com/google/uuid"

	domainaccess "sessioncore/domain/access"
	domainsession "sessioncore/domain/session"
)

// Error is the error type create_session/get_by_id surface to callers
// (spec §7). ResponseCode and Usage are always populated; SuppressedBy
// is non-None only for a suppression-triggered closure.
type Error struct {
	err          error
	ResponseCode domainaccess.ResponseCode
	Usage        domainaccess.Usage
	Message      string
	SuppressedBy domainsession.SuppressedBy
	SuppressorID *uuid.UUID
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

// FromAccessError builds a session Error from an access validation
// failure (spec §4.2 step 4).
func FromAccessError(err error, code domainaccess.ResponseCode, usage domainaccess.Usage, message string) *Error {
	return &Error{err: err, ResponseCode: code, Usage: usage, Message: message}
}

// FromClosed builds a session Error from a disposed session's closed
// state (spec §4.1 "Status refresh on lookup").
func FromClosed(c *domainsession.ClosedError) *Error {
	return &Error{
		err:          c,
		ResponseCode: c.ResponseCode,
		Usage:        c.Usage,
		Message:      c.Message,
		SuppressedBy: c.SuppressedBy,
		SuppressorID: c.SuppressorID,
	}
}

var ErrNotFound = domainsession.ErrNotFound
