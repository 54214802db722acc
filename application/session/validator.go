package session

import (
	"context"

	"github.com/google/uuid"

	appaccess "sessioncore/application/access"
	domainaccess "sessioncore/domain/access"
)

// AccessValidator is the Session Manager's dependency on the admission
// algorithm of spec §4.2. Validate returns the (possibly shared)
// Controller for the resolved access, or an error carrying the
// response code/usage/message to surface verbatim (spec §7).
type AccessValidator interface {
	Validate(ctx context.Context, identity domainaccess.ClientIdentity, encryptedClientID [16]byte) (appaccess.Controller, error)

	// Release must be called once per session that disposes, mirroring
	// the Acquire performed inside Validate (spec §9 "Cyclic ownership").
	Release(accessID uuid.UUID)
}
