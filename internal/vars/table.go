package vars

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/cmdlist/internal/names"
)

var (
	// ErrRedeclared is returned when a name is already visible.
	ErrRedeclared = errors.New("variable already declared")
	// ErrUnresolved is returned when a name cannot be resolved.
	ErrUnresolved = errors.New("undeclared variable")
	// ErrInvalidName is returned for names that are not of the form $name.
	ErrInvalidName = errors.New("invalid variable name")
)

// Table is the process-wide set of global variables. It is safe for
// concurrent use.
type Table struct {
	mu   sync.RWMutex
	vars map[string]*Variable
}

// NewTable creates an empty global table.
func NewTable() *Table {
	return &Table{vars: make(map[string]*Variable)}
}

// Declare inserts a new global. Declaring a name twice is an error.
func (t *Table) Declare(name string, flags Flags, initial float32) (*Variable, error) {
	key := names.Fold(name)
	if err := ValidateName(key); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.vars[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrRedeclared, name)
	}
	v := New(key, flags|Global, initial)
	t.vars[key] = v
	return v, nil
}

// insert adds a variable created elsewhere (a staged declaration).
func (t *Table) insert(v *Variable) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.vars[v.name]; ok {
		return fmt.Errorf("%w: %s", ErrRedeclared, v.name)
	}
	t.vars[v.name] = v
	return nil
}

// Lookup returns the global with the given name.
func (t *Table) Lookup(name string) (*Variable, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.vars[names.Fold(name)]
	return v, ok
}

// Get returns the value of a global.
func (t *Table) Get(name string) (float32, error) {
	v, ok := t.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnresolved, name)
	}
	return v.Load(), nil
}

// Set writes the value of an existing global. Hosts use it to feed key
// bindings and similar inputs into the configuration.
func (t *Table) Set(name string, value float32) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.vars[names.Fold(name)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnresolved, name)
	}
	v.Store(value)
	return nil
}

// Len returns the number of globals.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.vars)
}

// All returns every global sorted by name.
func (t *Table) All() []*Variable {
	t.mu.RLock()
	out := make([]*Variable, 0, len(t.vars))
	for _, v := range t.vars {
		out = append(out, v)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Snapshot returns the current value of every global.
func (t *Table) Snapshot() map[string]float32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]float32, len(t.vars))
	for name, v := range t.vars {
		out[name] = v.Load()
	}
	return out
}
