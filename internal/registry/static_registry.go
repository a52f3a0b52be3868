// Package registry implements the default compile-time block registry
// (spec §4.4). It is adapted from internal/module/registry.go: the same
// RWMutex-guarded map plus global-register-with-panic idiom, narrowed to
// the plugin.BlockFactory/plugin.Registry contract instead of
// plugin.ModuleFactory/plugin.Module.
package registry

import (
	"fmt"
	"sync"

	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/plugin"
)

// StaticRegistry implements plugin.Registry over a compile-time map. It is
// the default registry used when no dynamically loaded modules are
// involved (spec §4.4's "statically linked at compile time" case).
type StaticRegistry struct {
	mu        sync.RWMutex
	factories map[string]plugin.BlockFactory
}

// NewStaticRegistry creates a new, empty registry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{factories: make(map[string]plugin.BlockFactory)}
}

// Register associates a block type name with its factory.
func (r *StaticRegistry) Register(name string, factory plugin.BlockFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return streamprocerrors.NewConfigError("block registration error: name cannot be empty", nil)
	}
	if factory == nil {
		return streamprocerrors.NewConfigError(fmt.Sprintf("block registration error for '%s': factory cannot be nil", name), nil)
	}
	if _, exists := r.factories[name]; exists {
		return streamprocerrors.NewConfigError(fmt.Sprintf("block registration error: duplicate block type '%s'", name), nil)
	}
	r.factories[name] = factory
	return nil
}

// Get retrieves the factory for name, or a ModuleNotFoundError.
func (r *StaticRegistry) Get(name string) (plugin.BlockFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, streamprocerrors.NewModuleNotFoundError(name)
	}
	return factory, nil
}

// List returns every registered block type name. Order is not guaranteed.
func (r *StaticRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

var (
	globalRegistry = NewStaticRegistry()
	_              plugin.Registry = (*StaticRegistry)(nil)
)

// Register globally associates a block type name with its factory in the
// default registry. Intended for call from a block package's init().
// Panics on a registration error, matching the teacher's rationale: an
// init()-time registration failure is a programming mistake, not a
// recoverable runtime condition.
func Register(name string, factory plugin.BlockFactory) {
	if err := globalRegistry.Register(name, factory); err != nil {
		panic(fmt.Errorf("failed to register block type %q globally: %w", name, err))
	}
}

// Default exposes the global static registry as the public plugin.Registry
// interface, for use by cmd/streamprocdemo and internal/dynload.
var Default plugin.Registry = globalRegistry
