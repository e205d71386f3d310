package registry

import (
	"slices"
	"sync"

	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/names"
)

// Module is the interface that all built-in modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered built-ins for a single application instance.
// It implements command.Catalog.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]*RegisteredBuiltin
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{builtins: make(map[string]*RegisteredBuiltin)}
}

// Builtin implements command.Catalog. Every call returns a new directive.
func (r *Registry) Builtin(name string) (command.Directive, bool) {
	r.mu.RLock()
	b, ok := r.builtins[names.Fold(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return b.New(), true
}

// Names returns the registered names as they were declared, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.builtins))
	for _, b := range r.builtins {
		out = append(out, b.Name)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of registered built-ins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.builtins)
}
