package registry

import (
	"context"
	"sync"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
	"github.com/avatarctic/weather-sdk/go/internal/core/ports"
)

// MemoryRegistry is an in-process InstanceRegistry. One mutex guards every
// operation so concurrent reservations for the same id cannot both succeed.
type MemoryRegistry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{active: make(map[string]struct{})}
}

// Reserve implements ports.InstanceRegistry.Reserve.
func (r *MemoryRegistry) Reserve(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[id]; ok {
		return weather.ErrDuplicateInstance
	}
	r.active[id] = struct{}{}
	return nil
}

// Release implements ports.InstanceRegistry.Release.
func (r *MemoryRegistry) Release(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
	return nil
}

// IsReserved reports whether id is currently held.
func (r *MemoryRegistry) IsReserved(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[id]
	return ok
}

func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

var _ ports.InstanceRegistry = (*MemoryRegistry)(nil)
