package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	domainaccess "sessioncore/domain/access"
	domainsession "sessioncore/domain/session"
)

type fakeRepoController struct {
	id uuid.UUID
}

func (f *fakeRepoController) AccessID() uuid.UUID { return f.id }
func (f *fakeRepoController) Refresh() (domainaccess.ResponseCode, domainaccess.Usage, string) {
	return domainaccess.ResponseOk, domainaccess.Usage{}, ""
}

func newTestSession(id uint64, clientID, accessID uuid.UUID) *domainsession.Session {
	return domainsession.New(id, clientID, &fakeRepoController{id: accessID}, time.Now())
}

func TestRepository_InsertAndGetByID(t *testing.T) {
	r := NewRepository()
	s := newTestSession(1, uuid.New(), uuid.New())
	r.Insert(s)

	got, ok := r.GetByID(1)
	if !ok || got != s {
		t.Fatalf("expected to find session 1, ok=%v got=%v", ok, got)
	}
	if r.Len() != 1 {
		t.Fatalf("expected Len 1, got %d", r.Len())
	}
}

func TestRepository_GetByClientID(t *testing.T) {
	r := NewRepository()
	clientID := uuid.New()
	s := newTestSession(1, clientID, uuid.New())
	r.Insert(s)

	got, ok := r.GetByClientID(clientID)
	if !ok || got != s {
		t.Fatalf("expected to find the session by client id, ok=%v got=%v", ok, got)
	}

	if _, ok := r.GetByClientID(uuid.New()); ok {
		t.Fatalf("expected no session for an unknown client id")
	}
}

func TestRepository_SessionsForAccess(t *testing.T) {
	r := NewRepository()
	accessID := uuid.New()
	s1 := newTestSession(1, uuid.New(), accessID)
	s2 := newTestSession(2, uuid.New(), accessID)
	s3 := newTestSession(3, uuid.New(), uuid.New())
	r.Insert(s1)
	r.Insert(s2)
	r.Insert(s3)

	got := r.SessionsForAccess(accessID)
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions sharing the access, got %d", len(got))
	}
	seen := map[uint64]bool{}
	for _, s := range got {
		seen[s.SessionID()] = true
	}
	if !seen[1] || !seen[2] {
		t.Fatalf("expected sessions 1 and 2, got %v", got)
	}
}

func TestRepository_Remove_ClearsAllIndices(t *testing.T) {
	r := NewRepository()
	clientID := uuid.New()
	accessID := uuid.New()
	s := newTestSession(1, clientID, accessID)
	r.Insert(s)

	r.Remove(s)

	if _, ok := r.GetByID(1); ok {
		t.Fatalf("expected the session to be gone from the id index")
	}
	if _, ok := r.GetByClientID(clientID); ok {
		t.Fatalf("expected the session to be gone from the client index")
	}
	if got := r.SessionsForAccess(accessID); len(got) != 0 {
		t.Fatalf("expected the session to be gone from the access index, got %v", got)
	}
	if r.Len() != 0 {
		t.Fatalf("expected Len 0, got %d", r.Len())
	}
}

// TestRepository_Remove_DoesNotClobberNewerClientIndexEntry covers the
// removeLocked edge case: if a second session for the same client has
// already overwritten byClientID before the first session is removed,
// removing the first must not delete the second's index entry.
func TestRepository_Remove_DoesNotClobberNewerClientIndexEntry(t *testing.T) {
	r := NewRepository()
	clientID := uuid.New()
	first := newTestSession(1, clientID, uuid.New())
	second := newTestSession(2, clientID, uuid.New())

	r.Insert(first)
	r.Insert(second)
	r.Remove(first)

	got, ok := r.GetByClientID(clientID)
	if !ok || got != second {
		t.Fatalf("expected the newer session to remain indexed by client id, ok=%v got=%v", ok, got)
	}
}

func TestRepository_All_ReturnsEveryTrackedSession(t *testing.T) {
	r := NewRepository()
	s1 := newTestSession(1, uuid.New(), uuid.New())
	s2 := newTestSession(2, uuid.New(), uuid.New())
	r.Insert(s1)
	r.Insert(s2)
	s2.Dispose(time.Now())

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("expected All to include disposed sessions too, got %d", len(all))
	}
}

func TestRepository_Admit_SelfSuppressionBeatsQuota(t *testing.T) {
	r := NewRepository()
	clientID := uuid.New()
	accessID := uuid.New()
	existing := newTestSession(1, clientID, accessID)
	r.Insert(existing)

	_, suppressed := r.Admit(clientID, accessID, 0, func(supp *domainsession.Session) *domainsession.Session {
		return newTestSession(2, clientID, accessID)
	})
	if suppressed != existing {
		t.Fatalf("expected the existing session for the same client to be suppressed, got %v", suppressed)
	}
}

func TestRepository_Admit_QuotaSuppressesOldest(t *testing.T) {
	r := NewRepository()
	accessID := uuid.New()
	older := domainsession.New(1, uuid.New(), &fakeRepoController{id: accessID}, time.Now().Add(-time.Minute))
	newer := domainsession.New(2, uuid.New(), &fakeRepoController{id: accessID}, time.Now())
	r.Insert(older)
	r.Insert(newer)

	_, suppressed := r.Admit(uuid.New(), accessID, 2, func(supp *domainsession.Session) *domainsession.Session {
		return newTestSession(3, uuid.New(), accessID)
	})
	if suppressed != older {
		t.Fatalf("expected the oldest live session to be suppressed, got %v", suppressed)
	}
}

func TestRepository_Admit_NoSuppressionUnderQuota(t *testing.T) {
	r := NewRepository()
	accessID := uuid.New()
	r.Insert(newTestSession(1, uuid.New(), accessID))

	_, suppressed := r.Admit(uuid.New(), accessID, 2, func(supp *domainsession.Session) *domainsession.Session {
		return newTestSession(2, uuid.New(), accessID)
	})
	if suppressed != nil {
		t.Fatalf("expected no suppression while under quota, got %v", suppressed)
	}
}

// TestRepository_Admit_ConcurrentSameAccessRespectsQuota hammers Admit
// with concurrent callers sharing one access id and asserts the live
// count never exceeds max_client_count once every call has returned —
// the race this guards against is two concurrent CreateSession calls
// each observing live < max before either one has inserted.
func TestRepository_Admit_ConcurrentSameAccessRespectsQuota(t *testing.T) {
	r := NewRepository()
	accessID := uuid.New()
	const maxClientCount = 3
	const callers = 20

	var nextID atomic.Uint64
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			clientID := uuid.New()
			_, suppressed := r.Admit(clientID, accessID, maxClientCount, func(supp *domainsession.Session) *domainsession.Session {
				id := nextID.Add(1)
				return newTestSession(id, clientID, accessID)
			})
			// Mirrors what DefaultManager.suppress does right after
			// Admit returns: dispose whoever Admit named as displaced.
			if suppressed != nil {
				suppressed.Dispose(time.Now())
			}
		}()
	}
	wg.Wait()

	live := 0
	for _, s := range r.SessionsForAccess(accessID) {
		if !s.IsDisposed() {
			live++
		}
	}
	if live > maxClientCount {
		t.Fatalf("expected at most %d live sessions for the access, got %d", maxClientCount, live)
	}
}

func TestIDGenerator_IssuesUniqueNonZeroIDs(t *testing.T) {
	g := newIDGenerator()
	seen := map[uint64]bool{}
	for i := 0; i < 100; i++ {
		id := g.next()
		if id == 0 {
			t.Fatalf("expected a non-zero id")
		}
		if seen[id] {
			t.Fatalf("expected unique ids, saw %d twice", id)
		}
		seen[id] = true
	}
}
