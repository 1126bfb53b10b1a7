package provider

import (
	"sync"
	"time"
)

// Status is the volatile health record for one provider. It is advisory:
// rebuilt on every call attempt, shown in diagnostics, and by default never
// used to skip a provider.
type Status struct {
	Working     bool      `json:"working"`
	LastError   string    `json:"last_error,omitempty"`
	LastSuccess time.Time `json:"last_success,omitempty"`
}

// Registry tracks per-provider health across orchestration attempts.
type Registry struct {
	mu     sync.RWMutex
	status map[Provider]Status
}

// NewRegistry returns an empty health registry.
func NewRegistry() *Registry {
	return &Registry{status: make(map[Provider]Status)}
}

// MarkHealthy records a successful call: working=true, timestamp now,
// error cleared.
func (r *Registry) MarkHealthy(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[p] = Status{Working: true, LastSuccess: time.Now()}
}

// MarkUnhealthy records a failed call, keeping the previous success time.
func (r *Registry) MarkUnhealthy(p Provider, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.status[p]
	r.status[p] = Status{Working: false, LastError: err.Error(), LastSuccess: prev.LastSuccess}
}

// Get returns the status for one provider and whether it has been seen.
func (r *Registry) Get(p Provider) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.status[p]
	return s, ok
}

// Snapshot copies the full status map for diagnostics.
func (r *Registry) Snapshot() map[Provider]Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Provider]Status, len(r.status))
	for p, s := range r.status {
		out[p] = s
	}
	return out
}
