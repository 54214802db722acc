package session

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"sessioncore/domain/access"
)

type fakeController struct {
	id   uuid.UUID
	code access.ResponseCode
}

func (f *fakeController) AccessID() uuid.UUID { return f.id }
func (f *fakeController) Refresh() (access.ResponseCode, access.Usage, string) {
	return f.code, access.Usage{BytesUp: 1}, "refreshed"
}

func TestSession_DisposeIsIdempotent(t *testing.T) {
	s := New(1, uuid.New(), &fakeController{id: uuid.New(), code: access.ResponseOk}, time.Now())

	first := time.Now()
	s.Dispose(first)
	if !s.IsDisposed() {
		t.Fatalf("expected session to be disposed")
	}
	got, ok := s.DisposeTime()
	if !ok || !got.Equal(first) {
		t.Fatalf("unexpected dispose time: %v (ok=%v)", got, ok)
	}

	s.Dispose(first.Add(time.Hour))
	got2, _ := s.DisposeTime()
	if !got2.Equal(first) {
		t.Fatalf("dispose must be one-way: expected %v, got %v", first, got2)
	}
}

func TestSession_MarkSuppressed_YourSelf(t *testing.T) {
	clientID := uuid.New()
	s := New(1, clientID, &fakeController{id: uuid.New(), code: access.ResponseOk}, time.Now())

	s.MarkSuppressed(time.Now(), clientID)

	by, byClient := s.SuppressedBy()
	if by != SuppressedByYourSelf {
		t.Fatalf("expected SuppressedByYourSelf, got %v", by)
	}
	if byClient == nil || *byClient != clientID {
		t.Fatalf("expected suppressing client id %v, got %v", clientID, byClient)
	}
	if !s.IsDisposed() {
		t.Fatalf("expected MarkSuppressed to dispose the session")
	}
}

func TestSession_MarkSuppressed_Other(t *testing.T) {
	clientID := uuid.New()
	displacer := uuid.New()
	s := New(1, clientID, &fakeController{id: uuid.New(), code: access.ResponseOk}, time.Now())

	s.MarkSuppressed(time.Now(), displacer)

	by, byClient := s.SuppressedBy()
	if by != SuppressedByOther {
		t.Fatalf("expected SuppressedByOther, got %v", by)
	}
	if byClient == nil || *byClient != displacer {
		t.Fatalf("expected suppressing client id %v, got %v", displacer, byClient)
	}
}

func TestSession_MarkSuppressed_DoesNotOverrideExistingDisposal(t *testing.T) {
	clientID := uuid.New()
	s := New(1, clientID, &fakeController{id: uuid.New(), code: access.ResponseOk}, time.Now())

	first := time.Now()
	s.Dispose(first)
	s.MarkSuppressed(first.Add(time.Hour), uuid.New())

	by, _ := s.SuppressedBy()
	if by != SuppressedByNone {
		t.Fatalf("expected the earlier plain Dispose to win, got suppression %v", by)
	}
	got, _ := s.DisposeTime()
	if !got.Equal(first) {
		t.Fatalf("expected dispose time to stay at %v, got %v", first, got)
	}
}

func TestSession_SuppressedToClientID(t *testing.T) {
	s := New(1, uuid.New(), &fakeController{id: uuid.New(), code: access.ResponseOk}, time.Now())

	if _, ok := s.SuppressedToClientID(); ok {
		t.Fatalf("expected no suppressed-to id before SetSuppressedToClientID")
	}

	displaced := uuid.New()
	s.SetSuppressedToClientID(displaced)

	got, ok := s.SuppressedToClientID()
	if !ok || got != displaced {
		t.Fatalf("expected %v, got %v (ok=%v)", displaced, got, ok)
	}
}

func TestSession_UpdateStatus_SelfDisposesOnNonOk(t *testing.T) {
	s := New(1, uuid.New(), &fakeController{id: uuid.New(), code: access.ResponseAccessError}, time.Now())

	code, usage, msg := s.UpdateStatus(time.Now())
	if code != access.ResponseAccessError {
		t.Fatalf("expected ResponseAccessError, got %v", code)
	}
	if usage.BytesUp != 1 || msg != "refreshed" {
		t.Fatalf("expected the controller's usage/message to be recorded, got %+v %q", usage, msg)
	}
	if !s.IsDisposed() {
		t.Fatalf("expected UpdateStatus to self-dispose on a non-Ok response")
	}
}

func TestSession_UpdateStatus_StaysLiveOnOk(t *testing.T) {
	s := New(1, uuid.New(), &fakeController{id: uuid.New(), code: access.ResponseOk}, time.Now())

	s.UpdateStatus(time.Now())
	if s.IsDisposed() {
		t.Fatalf("expected the session to remain live on an Ok response")
	}
}

func TestSession_UpdateStatus_IsNoOpOnceDisposed(t *testing.T) {
	ctrl := &fakeController{id: uuid.New(), code: access.ResponseOk}
	s := New(1, uuid.New(), ctrl, time.Now())

	disposeAt := time.Now()
	s.Dispose(disposeAt)

	ctrl.code = access.ResponseAccessError
	code, _, _ := s.UpdateStatus(disposeAt.Add(time.Minute))
	if code != access.ResponseOk {
		t.Fatalf("expected a disposed session's UpdateStatus to return the last cached code, got %v", code)
	}
	got, _ := s.DisposeTime()
	if !got.Equal(disposeAt) {
		t.Fatalf("expected UpdateStatus on a disposed session to leave dispose time untouched")
	}
}

func TestSession_LastStatus_DoesNotTriggerRefresh(t *testing.T) {
	ctrl := &fakeController{id: uuid.New(), code: access.ResponseOk}
	s := New(1, uuid.New(), ctrl, time.Now())

	code, usage, msg := s.LastStatus()
	if code != access.ResponseOk || usage != (access.Usage{}) || msg != "" {
		t.Fatalf("expected zero-value status before any UpdateStatus call, got %v %+v %q", code, usage, msg)
	}
}

func TestSession_AccessIDDelegatesToController(t *testing.T) {
	accessID := uuid.New()
	s := New(1, uuid.New(), &fakeController{id: accessID, code: access.ResponseOk}, time.Now())

	if s.AccessID() != accessID {
		t.Fatalf("expected AccessID to delegate to the controller")
	}
}
