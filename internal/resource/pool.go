package resource

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/cmdlist/internal/pipeline"
)

// ErrNilFactory is returned when a pool needs to create a resource but has no
// factory.
var ErrNilFactory = errors.New("resource: factory is nil")

// DefaultPoolCapacity bounds each pool when no capacity is configured.
const DefaultPoolCapacity = 8

// Pool caches resources keyed by description hash.
//
// Pool is safe for concurrent use. Lookups take a read lock; creation uses
// double-checked locking so two racing callers never create the same shape
// twice and no reader sees a half-built entry.
type Pool struct {
	mu       sync.RWMutex
	entries  map[uint64]pipeline.Resource
	order    []uint64
	capacity int

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewPool creates a pool holding at most capacity shapes. The oldest shape is
// evicted when a new one would exceed it.
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}
	return &Pool{
		entries:  make(map[uint64]pipeline.Resource),
		capacity: capacity,
	}
}

// GetOrCreate returns the pooled resource for desc, creating it with f on a
// miss.
func (p *Pool) GetOrCreate(f pipeline.Factory, desc pipeline.Desc, label string) (pipeline.Resource, error) {
	key := desc.Hash()

	p.mu.RLock()
	if res, ok := p.entries[key]; ok {
		p.mu.RUnlock()
		p.hits.Add(1)
		return res, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if res, ok := p.entries[key]; ok {
		p.hits.Add(1)
		return res, nil
	}
	if f == nil {
		return nil, ErrNilFactory
	}

	res, err := f.CreateResource(desc, label)
	if err != nil {
		return nil, err
	}
	if len(p.order) >= p.capacity {
		oldest := p.order[0]
		p.order = p.order[1:]
		delete(p.entries, oldest)
	}
	p.entries[key] = res
	p.order = append(p.order, key)
	p.misses.Add(1)
	return res, nil
}

// Clear drops every pooled resource.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[uint64]pipeline.Resource)
	p.order = nil
}

// PoolStats reports pool usage.
type PoolStats struct {
	Size   int    `json:"size"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// Stats returns the current statistics.
func (p *Pool) Stats() PoolStats {
	p.mu.RLock()
	size := len(p.entries)
	p.mu.RUnlock()
	return PoolStats{Size: size, Hits: p.hits.Load(), Misses: p.misses.Load()}
}
