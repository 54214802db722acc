package access

import (
	"sync"

	"github.com/google/uuid"

	appaccess "sessioncore/application/access"
)

// Registry is the "access_id → weak controller" auxiliary index
// Design Note 9 permits for O(1) controller lookup. It holds plain
// (non-weak) references; entries are removed explicitly when the
// last session referencing a controller disposes, so the registry
// never outlives its sessions. Release is called once per disposed
// session (by the Session Manager, through Validator.Release) and by
// Validator.Validate itself when admission fails after its Acquire.
type Registry struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]appaccess.Controller
	refs  map[uuid.UUID]int
}

func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[uuid.UUID]appaccess.Controller),
		refs: make(map[uuid.UUID]int),
	}
}

// Acquire returns the existing controller for accessID if one is
// registered, incrementing its refcount; otherwise it registers and
// returns newController with a refcount of 1.
func (r *Registry) Acquire(accessID uuid.UUID, newController func() appaccess.Controller) appaccess.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byID[accessID]; ok {
		r.refs[accessID]++
		return existing
	}
	c := newController()
	r.byID[accessID] = c
	r.refs[accessID] = 1
	return c
}

// Release decrements accessID's refcount, removing the controller
// from the registry once no live session references it.
func (r *Registry) Release(accessID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs[accessID]--
	if r.refs[accessID] <= 0 {
		delete(r.byID, accessID)
		delete(r.refs, accessID)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
