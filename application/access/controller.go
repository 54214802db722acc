package access

import (
	"context"

	"github.com/google/uuid"

	domainaccess "sessioncore/domain/access"
)

// Controller owns one Access record and derives the caller-facing
// ResponseCode/Usage/Message triple from it (spec §3 "AccessController").
// A Controller is shared by every live session carrying the same
// AccessID; its lifetime is the longest-living holder.
type Controller interface {
	AccessID() uuid.UUID

	// Refresh re-derives the response code from the controller's
	// current Access snapshot. Session.UpdateStatus calls this on
	// every poll (spec §4.3).
	Refresh() (domainaccess.ResponseCode, domainaccess.Usage, string)

	// RefreshFromBackend re-reads the Access from the backend in
	// place and recomputes status (spec §4.2 step 3).
	RefreshFromBackend(ctx context.Context) (domainaccess.ResponseCode, domainaccess.Usage, string, error)

	// Access returns the current Access snapshot.
	Access() domainaccess.Access
}
