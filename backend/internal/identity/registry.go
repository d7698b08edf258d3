// Package identity tracks known actors and the privileged (creator) set.
package identity

import (
	"sync"
)

// Identity describes one addressable actor
type Identity struct {
	ID        int64  `json:"user_id"`
	Name      string `json:"name"`
	IsCreator bool   `json:"is_creator"`
}

// Registry maps numeric ids to display names and holds the creator set.
// Mutations are rare (explicit elevation only) and serialized by one mutex.
type Registry struct {
	mu       sync.RWMutex
	names    map[int64]string
	creators map[int64]struct{}
}

// NewRegistry seeds the registry from the static creator allow-list
func NewRegistry(creatorIDs []int64) *Registry {
	r := &Registry{
		names:    make(map[int64]string),
		creators: make(map[int64]struct{}),
	}
	for _, id := range creatorIDs {
		r.creators[id] = struct{}{}
	}
	return r
}

// IsCreator reports whether id is in the privileged set
func (r *Registry) IsCreator(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.creators[id]
	return ok
}

// Name returns the display name observed for id, or "Unknown User"
func (r *Registry) Name(id int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.names[id]; ok {
		return name
	}
	return "Unknown User"
}

// Observe records the display name for an id seen on an inbound message
func (r *Registry) Observe(id int64, name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[id] = name
}

// Add registers an identity; elevating to creator requires the caller to
// have checked authorization first.
func (r *Registry) Add(id int64, name string, isCreator bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[id] = name
	if isCreator {
		r.creators[id] = struct{}{}
	}
}

// Lookup builds the full identity record for id
func (r *Registry) Lookup(id int64) Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[id]
	if !ok {
		name = "Unknown User"
	}
	_, creator := r.creators[id]
	return Identity{ID: id, Name: name, IsCreator: creator}
}

// Creators returns a snapshot of the privileged set
func (r *Registry) Creators() []Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Identity, 0, len(r.creators))
	for id := range r.creators {
		name, ok := r.names[id]
		if !ok {
			name = "Unknown User"
		}
		out = append(out, Identity{ID: id, Name: name, IsCreator: true})
	}
	return out
}
