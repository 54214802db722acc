package access

import (
	"context"
	"sync"

	"github.com/google/uuid"

	appaccess "sessioncore/application/access"
	domainaccess "sessioncore/domain/access"
)

// MemoryBackend is a reference, in-process implementation of C1 (the
// access backend). It is keyed by token id, the same lookup key the
// wire-level Hello carries (spec §6 "get_access(ClientIdentity)").
type MemoryBackend struct {
	mu         sync.RWMutex
	byTokenID  map[uuid.UUID]domainaccess.Access
	byAccessID map[uuid.UUID]uuid.UUID // accessID -> tokenID, for AddUsage
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		byTokenID:  make(map[uuid.UUID]domainaccess.Access),
		byAccessID: make(map[uuid.UUID]uuid.UUID),
	}
}

// Put registers/updates the Access record for tokenID. Intended for
// test setup and admin-issued provisioning.
func (b *MemoryBackend) Put(tokenID uuid.UUID, acc domainaccess.Access) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byTokenID[tokenID] = acc
	b.byAccessID[acc.AccessID] = tokenID
}

func (b *MemoryBackend) GetAccess(_ context.Context, identity domainaccess.ClientIdentity) (domainaccess.Access, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acc, found := b.byTokenID[identity.TokenID]
	if !found {
		return domainaccess.Access{}, appaccess.ErrNoAccess
	}
	return acc, nil
}

func (b *MemoryBackend) AddUsage(_ context.Context, accessID uuid.UUID, deltaBytes uint64) (domainaccess.Access, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tokenID, found := b.byAccessID[accessID]
	if !found {
		return domainaccess.Access{}, appaccess.ErrNoAccess
	}
	acc := b.byTokenID[tokenID]
	acc.Usage.BytesUp += deltaBytes
	b.byTokenID[tokenID] = acc
	return acc, nil
}
