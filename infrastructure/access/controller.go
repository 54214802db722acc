package access

import (
	"context"
	"sync"

	"github.com/google/uuid"

	appaccess "sessioncore/application/access"
	domainaccess "sessioncore/domain/access"
)

// DefaultController is the reference application/access.Controller
// implementation: it owns one Access, refreshes it in place from the
// backend, and derives a ResponseCode from the access's StatusCode
// (spec §3 "AccessController").
type DefaultController struct {
	backend  appaccess.Backend
	identity domainaccess.ClientIdentity

	mu  sync.RWMutex
	acc domainaccess.Access
}

func NewDefaultController(backend appaccess.Backend, identity domainaccess.ClientIdentity, initial domainaccess.Access) *DefaultController {
	return &DefaultController{backend: backend, identity: identity, acc: initial}
}

func (c *DefaultController) AccessID() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.acc.AccessID
}

func (c *DefaultController) Access() domainaccess.Access {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.acc
}

func (c *DefaultController) Refresh() (domainaccess.ResponseCode, domainaccess.Usage, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domainaccess.ResponseCodeFor(c.acc.StatusCode), c.acc.Usage, c.acc.Message
}

func (c *DefaultController) RefreshFromBackend(ctx context.Context) (domainaccess.ResponseCode, domainaccess.Usage, string, error) {
	acc, err := c.backend.GetAccess(ctx, c.identity)
	if err != nil {
		return 0, domainaccess.Usage{}, "", err
	}

	c.mu.Lock()
	c.acc = acc
	c.mu.Unlock()

	return domainaccess.ResponseCodeFor(acc.StatusCode), acc.Usage, acc.Message, nil
}
