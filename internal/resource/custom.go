package resource

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
)

// Spec is the shape a configuration declares for a custom resource. Zero
// fields are inherited from whatever is copied into the resource.
type Spec struct {
	Kind        pipeline.ResourceKind
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	ByteSize    uint64
	SampleCount uint32
}

// Complete reports whether the declaration alone is enough to create the resource.
func (s Spec) Complete() bool {
	if s.Kind == pipeline.KindBuffer {
		return s.ByteSize > 0
	}
	return s.Width > 0 && s.Height > 0 && s.Format != gputypes.TextureFormatUndefined
}

// Desc returns the description of a resource created from the declaration alone.
func (s Spec) Desc() pipeline.Desc {
	if s.Kind == pipeline.KindBuffer {
		return pipeline.Buffer(s.ByteSize)
	}
	return s.Apply(pipeline.Texture2D(s.Width, s.Height, s.Format))
}

// Apply overrides the fields of d the declaration sets.
func (s Spec) Apply(d pipeline.Desc) pipeline.Desc {
	if d.Kind == pipeline.KindBuffer {
		if s.ByteSize > 0 {
			d.ByteSize = s.ByteSize
		}
		return d
	}
	if s.Width > 0 {
		d.Size.Width = s.Width
	}
	if s.Height > 0 {
		d.Size.Height = s.Height
	}
	if s.Format != gputypes.TextureFormatUndefined {
		d.Format = s.Format
	}
	if s.SampleCount > 0 {
		d.SampleCount = s.SampleCount
	}
	return d
}

// Custom is a named resource slot owned by the configuration. It is safe for
// concurrent use.
type Custom struct {
	name string
	spec Spec
	pool *Pool

	mu      sync.RWMutex
	current pipeline.Resource
}

// NewCustom creates an unnamed custom resource with its own pool. Copy
// directives that target a pipeline slot use one as their private cache.
func NewCustom(name string, spec Spec, poolCapacity int) *Custom {
	return &Custom{name: name, spec: spec, pool: NewPool(poolCapacity)}
}

// Name returns the declared name.
func (c *Custom) Name() string { return c.name }

// Spec returns the declared shape.
func (c *Custom) Spec() Spec { return c.spec }

// Current returns the resource currently held, which may be nil.
func (c *Custom) Current() pipeline.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Get returns the current resource, creating it from a complete spec the
// first time it is needed.
func (c *Custom) Get(f pipeline.Factory) (pipeline.Resource, error) {
	c.mu.RLock()
	res := c.current
	c.mu.RUnlock()
	if res != nil || !c.spec.Complete() {
		return res, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		return c.current, nil
	}
	res, err := c.pool.GetOrCreate(f, c.spec.Desc(), c.label())
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.label(), err)
	}
	c.current = res
	return res, nil
}

// Set makes res the current resource. A nil res unbinds it.
func (c *Custom) Set(res pipeline.Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = res
}

// Target returns a resource compatible with desc (after the declaration's
// overrides) to copy into. The current resource is reused when its
// description matches; otherwise a pooled one replaces it.
func (c *Custom) Target(f pipeline.Factory, desc pipeline.Desc) (pipeline.Resource, error) {
	desc = c.spec.Apply(desc)
	key := desc.Hash()

	c.mu.RLock()
	cur := c.current
	c.mu.RUnlock()
	if cur != nil && cur.Desc().Hash() == key {
		return cur, nil
	}

	res, err := c.pool.GetOrCreate(f, desc, c.label())
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.label(), err)
	}
	c.Set(res)
	return res, nil
}

// Reset drops the current resource. The pool is kept so the next copy can
// reuse an allocation.
func (c *Custom) Reset() {
	c.Set(nil)
}

// Stats returns the pool statistics.
func (c *Custom) Stats() PoolStats { return c.pool.Stats() }

func (c *Custom) label() string {
	if c.name == "" {
		return "copy cache"
	}
	return "Resource" + c.name
}
