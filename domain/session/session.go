package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"sessioncore/domain/access"
)

// SuppressedBy records why a disposed session was displaced, per
// spec §3/§9 Open Question (a): YourSelf is a distinct signal from
// Other even though both record the displacing client's id.
type SuppressedBy int

const (
	SuppressedByNone SuppressedBy = iota
	SuppressedByYourSelf
	SuppressedByOther
)

func (s SuppressedBy) String() string {
	switch s {
	case SuppressedByNone:
		return "None"
	case SuppressedByYourSelf:
		return "YourSelf"
	case SuppressedByOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// Controller is the shared, per-access admission state. It is the
// session-facing view of an AccessController (application package)
// — kept here as a narrow interface so Session does not depend on
// the access-validation package directly.
type Controller interface {
	AccessID() uuid.UUID
	Refresh() (access.ResponseCode, access.Usage, string)
}

// Session is one client's live tunnel state, owned exclusively by the
// Session Manager. Invariants (spec §3):
//   - IsDisposed() == true implies DisposeTime() is non-nil.
//   - the transition to disposed is one-way.
//   - SessionID is stable for the lifetime of the process.
type Session struct {
	sessionID  uint64
	clientID   uuid.UUID
	controller Controller
	createdAt  time.Time

	mu                   sync.Mutex
	disposeTime          *time.Time
	suppressedBy         SuppressedBy
	suppressedToClientID *uuid.UUID
	suppressedByClientID *uuid.UUID
	lastResponseCode     access.ResponseCode
	lastUsage            access.Usage
	lastMessage          string
}

func New(sessionID uint64, clientID uuid.UUID, controller Controller, createdAt time.Time) *Session {
	return &Session{
		sessionID:  sessionID,
		clientID:   clientID,
		controller: controller,
		createdAt:  createdAt,
	}
}

func (s *Session) SessionID() uint64  { return s.sessionID }
func (s *Session) ClientID() uuid.UUID { return s.clientID }
func (s *Session) AccessID() uuid.UUID { return s.controller.AccessID() }
func (s *Session) Controller() Controller { return s.controller }
func (s *Session) CreatedTime() time.Time { return s.createdAt }

func (s *Session) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposeTime != nil
}

func (s *Session) DisposeTime() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposeTime == nil {
		return time.Time{}, false
	}
	return *s.disposeTime, true
}

func (s *Session) SuppressedBy() (SuppressedBy, *uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressedBy, s.suppressedByClientID
}

// SetSuppressedToClientID records that this still-live session has
// displaced the session belonging to suppressedID (spec §4.1 step 6).
func (s *Session) SetSuppressedToClientID(suppressedID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := suppressedID
	s.suppressedToClientID = &id
}

func (s *Session) SuppressedToClientID() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suppressedToClientID == nil {
		return uuid.UUID{}, false
	}
	return *s.suppressedToClientID, true
}

// MarkSuppressed disposes the session as a result of suppression,
// per spec §4.1 step 5. by is YourSelf when the displacing client id
// equals this session's own client id, Other otherwise.
func (s *Session) MarkSuppressed(now time.Time, byClientID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposeTime != nil {
		return
	}
	t := now
	s.disposeTime = &t
	s.suppressedByClientID = &byClientID
	if byClientID == s.clientID {
		s.suppressedBy = SuppressedByYourSelf
	} else {
		s.suppressedBy = SuppressedByOther
	}
}

// Dispose marks the session disposed without a suppressor (e.g. the
// client closed cleanly, or the access controller tore down the
// connection). Idempotent per spec §4.4 invariant applied to Session.
func (s *Session) Dispose(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposeTime != nil {
		return
	}
	t := now
	s.disposeTime = &t
}

// UpdateStatus polls the shared access controller and self-disposes
// when the access is non-Ok, per spec §4.3. It is a no-op once the
// session is already disposed. Returns the last known response,
// usage, and message regardless of whether a transition happened.
func (s *Session) UpdateStatus(now time.Time) (access.ResponseCode, access.Usage, string) {
	s.mu.Lock()
	if s.disposeTime != nil {
		code, usage, msg := s.lastResponseCode, s.lastUsage, s.lastMessage
		s.mu.Unlock()
		return code, usage, msg
	}
	s.mu.Unlock()

	code, usage, msg := s.controller.Refresh()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResponseCode, s.lastUsage, s.lastMessage = code, usage, msg
	if code != access.ResponseOk && s.disposeTime == nil {
		t := now
		s.disposeTime = &t
	}
	return code, usage, msg
}

// LastStatus returns the most recently observed response/usage/message
// without triggering a controller refresh.
func (s *Session) LastStatus() (access.ResponseCode, access.Usage, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResponseCode, s.lastUsage, s.lastMessage
}
