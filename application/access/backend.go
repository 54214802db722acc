// Package access defines the boundary between the session core and
// C1, the access backend (spec §6 "Access Backend contract"). The
// backend is an external collaborator; this module ships two
// reference implementations under infrastructure/access.
package access

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"sessioncore/domain/access"
)

// ErrNoAccess is returned by Backend.GetAccess when the backend has
// no record for the identity (spec §4.2 step 1: "A missing record
// fails with TokenNotFound" — infrastructure/access.Validator maps
// this error to access.ErrTokenNotFound).
var ErrNoAccess = errors.New("no access record for identity")

// Backend is C1: maps token identity to an Access record and reports
// usage deltas back. Implementations must be safe for concurrent use.
type Backend interface {
	// GetAccess resolves the Access for the identity's token. Returns
	// ErrNoAccess if none exists.
	GetAccess(ctx context.Context, identity access.ClientIdentity) (access.Access, error)

	// AddUsage reports a usage delta for accessID and returns the
	// refreshed Access. Implementations must be monotone: AddUsage
	// never decreases recorded usage (spec §6).
	AddUsage(ctx context.Context, accessID uuid.UUID, deltaBytes uint64) (access.Access, error)
}
