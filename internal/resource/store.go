package resource

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/cmdlist/internal/names"
)

// ErrDuplicate is returned when a custom resource name is declared twice.
var ErrDuplicate = errors.New("custom resource already declared")

// Store holds the custom resources of one loaded configuration. It uses a
// sync.Map: names are fixed after load while lookups happen from every
// thread the host invokes the engine on.
type Store struct {
	resources    sync.Map // Key: folded name, Value: *Custom
	poolCapacity int
}

// NewStore creates an empty store. poolCapacity bounds each resource's pool.
func NewStore(poolCapacity int) *Store {
	return &Store{poolCapacity: poolCapacity}
}

// Declare adds a custom resource.
func (s *Store) Declare(name string, spec Spec) (*Custom, error) {
	c := NewCustom(name, spec, s.poolCapacity)
	if _, loaded := s.resources.LoadOrStore(names.Fold(name), c); loaded {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	return c, nil
}

// Lookup finds a custom resource by name (without the Resource prefix).
func (s *Store) Lookup(name string) (*Custom, bool) {
	v, ok := s.resources.Load(names.Fold(name))
	if !ok {
		return nil, false
	}
	return v.(*Custom), true
}

// All returns every custom resource sorted by name.
func (s *Store) All() []*Custom {
	var out []*Custom
	s.resources.Range(func(_, v any) bool {
		out = append(out, v.(*Custom))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Reset drops the current resource of every custom resource.
func (s *Store) Reset() {
	s.resources.Range(func(_, v any) bool {
		v.(*Custom).Reset()
		return true
	})
}

// Stats returns pool statistics per resource.
func (s *Store) Stats() map[string]PoolStats {
	out := make(map[string]PoolStats)
	s.resources.Range(func(_, v any) bool {
		c := v.(*Custom)
		out[c.name] = c.Stats()
		return true
	})
	return out
}
