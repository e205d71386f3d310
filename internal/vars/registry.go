package vars

import (
	"sync"
)

// Registry tracks persistent variables so a reload can carry their values
// into the freshly parsed replacements.
type Registry struct {
	mu   sync.Mutex
	vars map[string]*Variable
}

// NewRegistry creates an empty survivor registry.
func NewRegistry() *Registry {
	return &Registry{vars: make(map[string]*Variable)}
}

// Register records v. A later registration under the same name replaces the
// earlier one.
func (r *Registry) Register(v *Variable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vars[v.name] = v
}

// Len returns the number of registered variables.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.vars)
}

// Snapshot returns the current value of every registered variable.
func (r *Registry) Snapshot() map[string]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]float32, len(r.vars))
	for name, v := range r.vars {
		out[name] = v.Load()
	}
	return out
}

// Restore copies values into the registered variables of the same name and
// returns how many were carried over. Names with no registered variable are
// dropped.
func (r *Registry) Restore(values map[string]float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for name, val := range values {
		if v, ok := r.vars[name]; ok {
			v.Store(val)
			n++
		}
	}
	return n
}
