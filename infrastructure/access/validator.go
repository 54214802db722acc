// Validator implements the admission algorithm from spec §4.2: resolve
// the Access from the backend, check the AES-CBC admission proof,
// join or create the shared AccessController, and map a non-Ok status
// to a domainaccess.Error.
package access

import (
	"context"
	"errors"

	"github.com/google/uuid"

	appaccess "sessioncore/application/access"
	"sessioncore/infrastructure/crypto/admission"

	domainaccess "sessioncore/domain/access"
)

type Validator struct {
	backend  appaccess.Backend
	registry *Registry
}

func NewValidator(backend appaccess.Backend, registry *Registry) *Validator {
	return &Validator{backend: backend, registry: registry}
}

// Validate runs spec §4.2 steps 1-4, returning a *domainaccess.Error
// wrapping access.ErrTokenNotFound / access.ErrInvalidSignature / the
// mapped AccessError on any failure.
func (v *Validator) Validate(ctx context.Context, identity domainaccess.ClientIdentity, encryptedClientID [16]byte) (appaccess.Controller, error) {
	acc, err := v.backend.GetAccess(ctx, identity)
	if err != nil {
		if errors.Is(err, appaccess.ErrNoAccess) {
			return nil, domainaccess.NewError(domainaccess.ErrTokenNotFound, domainaccess.ResponseAccessError, domainaccess.Usage{}, "token not found")
		}
		return nil, domainaccess.NewError(err, domainaccess.ResponseAccessError, domainaccess.Usage{}, "access backend error")
	}

	var rawClientID [16]byte
	copy(rawClientID[:], identity.ClientID[:])
	ok, verifyErr := admission.Verify(acc.Secret, rawClientID, encryptedClientID)
	if verifyErr != nil {
		return nil, domainaccess.NewError(verifyErr, domainaccess.ResponseAccessError, acc.Usage, "admission proof computation failed")
	}
	if !ok {
		return nil, domainaccess.NewError(domainaccess.ErrInvalidSignature, domainaccess.ResponseAccessError, acc.Usage, "invalid admission signature")
	}

	controller := v.registry.Acquire(acc.AccessID, func() appaccess.Controller {
		return NewDefaultController(v.backend, identity, acc)
	})

	code, usage, msg, refreshErr := controller.RefreshFromBackend(ctx)
	if refreshErr != nil {
		v.registry.Release(acc.AccessID)
		return nil, domainaccess.NewError(refreshErr, domainaccess.ResponseAccessError, acc.Usage, "access refresh failed")
	}
	if code != domainaccess.ResponseOk {
		v.registry.Release(acc.AccessID)
		return nil, domainaccess.NewError(errAccessNonOk, code, usage, msg)
	}

	return controller, nil
}

// Release must be called exactly once per session when it disposes,
// mirroring the Acquire performed during Validate.
func (v *Validator) Release(accessID uuid.UUID) {
	v.registry.Release(accessID)
}

var errAccessNonOk = errors.New("access status is not Ok")
