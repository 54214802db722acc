package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	applogging "sessioncore/application/logging"
	appmetrics "sessioncore/application/metrics"
	appsession "sessioncore/application/session"
	apptracking "sessioncore/application/tracking"
	domainaccess "sessioncore/domain/access"
	domainsession "sessioncore/domain/session"
)

// DefaultManager implements appsession.Manager: it is the Session
// Manager (spec §4.1), grounded on the teacher's
// infrastructure/tunnel/sessionplane/server/tcp_registration.Registrar
// (admission flow) combined with infrastructure/tunnel/session's
// repository/reaper split.
type DefaultManager struct {
	repo      *Repository
	ids       *idGenerator
	validator appsession.AccessValidator
	tracker   apptracking.Tracker
	logger    applogging.Logger
	metrics   appmetrics.Recorder
	config    Config

	cleanupMu   sync.Mutex
	lastCleanup time.Time

	now func() time.Time
}

type Option func(*DefaultManager)

func WithClock(now func() time.Time) Option {
	return func(m *DefaultManager) { m.now = now }
}

func NewDefaultManager(
	validator appsession.AccessValidator,
	tracker apptracking.Tracker,
	logger applogging.Logger,
	metrics appmetrics.Recorder,
	config Config,
	opts ...Option,
) *DefaultManager {
	m := &DefaultManager{
		repo:      NewRepository(),
		ids:       newIDGenerator(),
		validator: validator,
		tracker:   tracker,
		logger:    logger,
		metrics:   metrics,
		config:    config.WithDefaults(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lastCleanup = m.now()
	return m
}

// CreateSession runs the full admission algorithm (spec §4.1).
func (m *DefaultManager) CreateSession(ctx context.Context, hello appsession.HelloRequest, clientIP string) (*domainsession.Session, error) {
	identity := domainaccess.NewClientIdentity(hello.ClientID, hello.TokenID, clientIP, hello.UserToken)

	controller, err := m.validator.Validate(ctx, identity, hello.EncryptedClientID)
	if err != nil {
		m.recordAdmissionFailure(err)
		return nil, toSessionError(err)
	}

	now := m.now()
	m.reapIfDue(now)

	acc := controller.Access()
	newSession, suppressed := m.repo.Admit(identity.ClientID, controller.AccessID(), acc.MaxClientCount,
		func(suppressed *domainsession.Session) *domainsession.Session {
			id := m.ids.next()
			s := domainsession.New(id, identity.ClientID, controller, now)
			if suppressed != nil {
				s.SetSuppressedToClientID(suppressed.ClientID())
			}
			return s
		})
	if suppressed != nil {
		m.suppress(suppressed, identity.ClientID, now)
	}

	m.tracker.TrackEvent(ctx, "session", "created")
	m.metrics.SessionCreated()
	m.metrics.LiveSessions(m.liveCount())

	return newSession, nil
}

func (m *DefaultManager) suppress(s *domainsession.Session, byClientID uuid.UUID, now time.Time) {
	s.MarkSuppressed(now, byClientID)
	m.validator.Release(s.AccessID())

	reason := "quota"
	if byClientID == s.ClientID() {
		reason = "self"
	}
	m.metrics.SessionSuppressed(reason)
}

func (m *DefaultManager) FindByClientID(ctx context.Context, clientID uuid.UUID) (*domainsession.Session, error) {
	s, ok := m.repo.GetByClientID(clientID)
	if !ok {
		return nil, fmt.Errorf("%w: client %s", appsession.ErrNotFound, clientID)
	}
	return m.GetByID(ctx, s.SessionID())
}

// GetByID fetches the session, refreshing its status first (spec §4.1
// "Status refresh on lookup").
func (m *DefaultManager) GetByID(_ context.Context, sessionID uint64) (*domainsession.Session, error) {
	s, ok := m.repo.GetByID(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: session %d", appsession.ErrNotFound, sessionID)
	}

	wasDisposed := s.IsDisposed()
	if !wasDisposed {
		now := m.now()
		s.UpdateStatus(now)
		if s.IsDisposed() {
			m.validator.Release(s.AccessID())
			m.disposeAccessSiblings(s, now)
		}
	}

	if s.IsDisposed() {
		return nil, appsession.FromClosed(domainsession.NewClosedError(s))
	}
	return s, nil
}

// disposeAccessSiblings implements SPEC_FULL §12's "structured
// suppression reason on AccessError": once one session sharing an
// access observes the access go non-Ok, every other live session
// sharing that access id is disposed on the spot instead of each
// independently discovering it on its own next lookup.
func (m *DefaultManager) disposeAccessSiblings(trigger *domainsession.Session, now time.Time) {
	for _, sibling := range m.repo.SessionsForAccess(trigger.AccessID()) {
		if sibling.SessionID() == trigger.SessionID() || sibling.IsDisposed() {
			continue
		}
		sibling.UpdateStatus(now)
		if sibling.IsDisposed() {
			m.validator.Release(sibling.AccessID())
		}
	}
}

// Dispose terminates every session (spec §4.1 "dispose()").
func (m *DefaultManager) Dispose() {
	now := m.now()
	var eg errgroup.Group
	for _, s := range m.repo.All() {
		s := s
		eg.Go(func() error {
			wasDisposed := s.IsDisposed()
			s.Dispose(now)
			if !wasDisposed {
				m.validator.Release(s.AccessID())
			}
			return nil
		})
	}
	_ = eg.Wait()
	m.metrics.LiveSessions(0)
}

// reapIfDue removes long-disposed sessions at most once per
// ReapInterval (spec §4.1 "Reaping"). It must be called while no lock
// the repository depends on is held by the caller.
func (m *DefaultManager) reapIfDue(now time.Time) {
	m.cleanupMu.Lock()
	due := now.Sub(m.lastCleanup) >= m.config.ReapInterval
	if due {
		m.lastCleanup = now
	}
	m.cleanupMu.Unlock()
	if !due {
		return
	}

	reaped := 0
	for _, s := range m.repo.All() {
		if !s.IsDisposed() {
			continue
		}
		disposeTime, _ := s.DisposeTime()
		if now.Sub(disposeTime) >= m.config.SessionTimeout {
			m.repo.Remove(s)
			reaped++
		}
	}
	if reaped > 0 {
		m.logger.Printf("reaped %d disposed session(s)", reaped)
	}
	m.metrics.SessionsReaped(reaped)
}

func (m *DefaultManager) liveCount() int {
	n := 0
	for _, s := range m.repo.All() {
		if !s.IsDisposed() {
			n++
		}
	}
	return n
}

func (m *DefaultManager) recordAdmissionFailure(err error) {
	code := domainaccess.ResponseAccessError
	var accessErr *domainaccess.Error
	if e, ok := err.(*domainaccess.Error); ok {
		accessErr = e
		code = accessErr.ResponseCode
	}
	m.metrics.AdmissionFailed(code.String())
}

func toSessionError(err error) error {
	if e, ok := err.(*domainaccess.Error); ok {
		return appsession.FromAccessError(e.Unwrap(), e.ResponseCode, e.Usage, e.Message)
	}
	return err
}
