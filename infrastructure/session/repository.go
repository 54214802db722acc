// Package session implements the Session Manager (spec §4.1): the
// admission algorithm, suppression policy, reaping, and lookup. The
// concurrent map and its secondary indices are grounded on the
// teacher's infrastructure/tunnel/session.{Repository,ConcurrentRepository}
// pair — a plain map wrapped by a single RWMutex, generalized here to
// also index by client id and access id (Design Note 9: "a production
// implementation should add two secondary indices").
package session

import (
	"sync"

	"github.com/google/uuid"

	domainsession "sessioncore/domain/session"
)

// Repository is the concurrent session_id → Session map plus its
// secondary indices (spec §3 "Session Manager state").
type Repository struct {
	mu         sync.RWMutex
	byID       map[uint64]*domainsession.Session
	byClientID map[uuid.UUID]uint64
	byAccessID map[uuid.UUID]map[uint64]struct{}
}

func NewRepository() *Repository {
	return &Repository{
		byID:       make(map[uint64]*domainsession.Session),
		byClientID: make(map[uuid.UUID]uint64),
		byAccessID: make(map[uuid.UUID]map[uint64]struct{}),
	}
}

func (r *Repository) Insert(s *domainsession.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(s)
}

func (r *Repository) insertLocked(s *domainsession.Session) {
	r.byID[s.SessionID()] = s
	r.byClientID[s.ClientID()] = s.SessionID()
	set, ok := r.byAccessID[s.AccessID()]
	if !ok {
		set = make(map[uint64]struct{})
		r.byAccessID[s.AccessID()] = set
	}
	set[s.SessionID()] = struct{}{}
}

// Admit runs the suppression check (spec §4.1 step 4: self-suppression
// of an existing live session for the same client id, else quota
// suppression of the oldest live session once an access's
// max_client_count is reached) and inserts the session build produces
// under the same write-lock acquisition. Serializing check-and-insert
// this way is what makes "at most one live session per client" and
// "at most max_client_count live sessions per access" hold even when
// CreateSession runs concurrently for the same client or access, as
// spec §5's work-stealing pool of client streams guarantees it will.
//
// build receives the suppression target (nil if none) so it can stamp
// the new session's SuppressedToClientID before the insert; its
// return value becomes Admit's first return value.
func (r *Repository) Admit(
	clientID, accessID uuid.UUID,
	maxClientCount uint32,
	build func(suppressed *domainsession.Session) *domainsession.Session,
) (*domainsession.Session, *domainsession.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	suppressed := r.selfSuppressionTargetLocked(clientID)
	if suppressed == nil {
		suppressed = r.quotaSuppressionTargetLocked(accessID, maxClientCount)
	}

	newSession := build(suppressed)
	r.insertLocked(newSession)
	return newSession, suppressed
}

func (r *Repository) selfSuppressionTargetLocked(clientID uuid.UUID) *domainsession.Session {
	id, ok := r.byClientID[clientID]
	if !ok {
		return nil
	}
	existing := r.byID[id]
	if existing == nil || existing.IsDisposed() {
		return nil
	}
	return existing
}

func (r *Repository) quotaSuppressionTargetLocked(accessID uuid.UUID, maxClientCount uint32) *domainsession.Session {
	if maxClientCount == 0 {
		return nil
	}

	live := make([]*domainsession.Session, 0)
	for id := range r.byAccessID[accessID] {
		if s := r.byID[id]; s != nil && !s.IsDisposed() {
			live = append(live, s)
		}
	}
	if uint32(len(live)) < maxClientCount {
		return nil
	}

	oldest := live[0]
	for _, s := range live[1:] {
		if s.CreatedTime().Before(oldest.CreatedTime()) ||
			(s.CreatedTime().Equal(oldest.CreatedTime()) && s.SessionID() < oldest.SessionID()) {
			oldest = s
		}
	}
	return oldest
}

// Remove deletes the session from every index. It does not dispose
// it — callers must have already disposed it (or be removing it
// pre-insertion, which never happens in practice).
func (r *Repository) Remove(s *domainsession.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(s)
}

func (r *Repository) removeLocked(s *domainsession.Session) {
	delete(r.byID, s.SessionID())
	if current, ok := r.byClientID[s.ClientID()]; ok && current == s.SessionID() {
		delete(r.byClientID, s.ClientID())
	}
	if set, ok := r.byAccessID[s.AccessID()]; ok {
		delete(set, s.SessionID())
		if len(set) == 0 {
			delete(r.byAccessID, s.AccessID())
		}
	}
}

func (r *Repository) GetByID(id uint64) (*domainsession.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

func (r *Repository) GetByClientID(clientID uuid.UUID) (*domainsession.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byClientID[clientID]
	if !ok {
		return nil, false
	}
	s := r.byID[id]
	return s, s != nil
}

// SessionsForAccess returns every session indexed under accessID,
// live or disposed (disposed ones stay indexed until the reaper
// removes them). Used by the access-degradation fan-out (SPEC_FULL
// §12); the quota-suppression check reads the index directly.
func (r *Repository) SessionsForAccess(accessID uuid.UUID) []*domainsession.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.byAccessID[accessID]
	out := make([]*domainsession.Session, 0, len(set))
	for id := range set {
		if s, ok := r.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// All returns every session currently tracked, live or disposed
// (disposed ones are only removed by the reaper).
func (r *Repository) All() []*domainsession.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainsession.Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out
}

func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
