package capability

import (
	"fmt"
	"sync"

	"github.com/hypertune/hypertune/internal/tuning"
)

// Registry maps model kinds to capability factories. Workers resolve the
// kind recorded on the model; callers depend only on the Capability
// interface, never on concrete implementations.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(kind string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
}

// New instantiates a capability for the given model kind.
func (r *Registry) New(kind string, definition []byte, hyperparameters tuning.Params) (Capability, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no capability registered for model kind %q", kind)
	}

	return factory(definition, hyperparameters)
}

// Default returns a registry with the built-in capabilities.
func Default() *Registry {
	r := NewRegistry()
	r.Register(CommandKind, NewCommandCapability)
	return r
}
