package session

import (
	"github.com/google/uuid"
	"github.com/samber/oops"

	"sessioncore/domain/access"
)

// ErrNotFound is returned when a session id or client id has no live
// session — never returned for a disposed session, which instead
// surfaces *ClosedError carrying the original disposal cause (spec §7).
var ErrNotFound = oops.Errorf("session not found")

// ClosedError is surfaced by get_by_id / find_by_client_id for a
// disposed session (spec §4.1 "Status refresh on lookup", §7).
type ClosedError struct {
	SessionID    uint64
	ResponseCode access.ResponseCode
	Usage        access.Usage
	Message      string
	SuppressedBy SuppressedBy
	SuppressorID *uuid.UUID
}

func (e *ClosedError) Error() string {
	if e.SuppressedBy != SuppressedByNone {
		return "session closed: suppressed"
	}
	if e.Message != "" {
		return "session closed: " + e.Message
	}
	return "session closed"
}

// NewClosedError builds the closed-session error for a session that
// has already transitioned to disposed.
func NewClosedError(s *Session) *ClosedError {
	code, usage, msg := s.LastStatus()
	suppressedBy, suppressorID := s.SuppressedBy()
	return &ClosedError{
		SessionID:    s.SessionID(),
		ResponseCode: code,
		Usage:        usage,
		Message:      msg,
		SuppressedBy: suppressedBy,
		SuppressorID: suppressorID,
	}
}
