package session

import (
	"context"

	"github.com/google/uuid"

	domainsession "sessioncore/domain/session"
)

// Manager is the Session Manager's public contract (spec §4.1).
type Manager interface {
	// CreateSession admits a new client, returning *Error on failure.
	CreateSession(ctx context.Context, hello HelloRequest, clientIP string) (*domainsession.Session, error)

	// FindByClientID locates a live session for clientID, refreshing
	// its status the same way GetByID does (spec §4.5).
	FindByClientID(ctx context.Context, clientID uuid.UUID) (*domainsession.Session, error)

	// GetByID fetches the session, refreshing its status first. If the
	// session is disposed (or never existed), returns *Error/ErrNotFound.
	GetByID(ctx context.Context, sessionID uint64) (*domainsession.Session, error)

	// Dispose terminates every live session. Idempotent.
	Dispose()
}
