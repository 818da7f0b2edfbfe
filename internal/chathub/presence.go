package chathub

import "sync"

// Registry is the process-local presence map: identity -> live connection.
// It is a liveness optimization for fan-out, not a source of truth; durable
// state always lives in storage. At most one entry exists per identity.
//
// Handlers run on their own goroutines, so the map is guarded by a RWMutex.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Client
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Client)}
}

// Join inserts or overwrites the mapping for the identity and returns the
// superseded client, if any. A second connection for the same user silently
// replaces the first.
func (r *Registry) Join(goSipID string, c Client) Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.entries[goSipID]
	r.entries[goSipID] = c
	return prev
}

// Resolve looks up the live connection for an identity. Absence means the
// recipient is not reachable from this instance; realtime events for them
// are simply dropped.
func (r *Registry) Resolve(goSipID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.entries[goSipID]
	return c, ok
}

// Leave removes the entry owned by this exact client and returns the
// identity it was mapped to. A stale pump of a superseded connection does
// not evict the newer entry.
func (r *Registry) Leave(c Client) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.entries {
		if entry == c {
			delete(r.entries, id)
			return id, true
		}
	}
	return "", false
}

// Online returns the subset of the given identities that currently have a
// live connection here.
func (r *Registry) Online(goSipIDs []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	online := make([]string, 0, len(goSipIDs))
	for _, id := range goSipIDs {
		if _, ok := r.entries[id]; ok {
			online = append(online, id)
		}
	}
	return online
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
