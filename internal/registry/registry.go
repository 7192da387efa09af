// Package registry maps executor names, as selected on the command line,
// to the Go factories that build them. It is populated once at startup
// and validated before any shard runs.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/buildmatrix/internal/executor"
)

// Factory builds a step executor instance.
type Factory func() executor.Executor

// Registry holds the named executor factories.
type Registry struct {
	factories map[string]Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a named factory. Registering the same name twice is a
// programmer error and panics.
func (r *Registry) Register(name string, f Factory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("executor with name '%s' already registered", name))
	}
	slog.Debug("Registering executor.", "name", name)
	r.factories[name] = f
}

// Lookup returns the factory for name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered executor names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
