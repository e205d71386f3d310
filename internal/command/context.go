package command

import (
	"log/slog"

	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/resource"
)

// DefaultRecursionLimit is the nesting ceiling when none is configured.
const DefaultRecursionLimit = 64

// Context is the mutable state of one invocation.
type Context struct {
	Device    pipeline.Device
	Program   Program
	Resources *resource.Store
	Logger    *slog.Logger

	// Call is the intercepted call, if the invocation has one.
	Call pipeline.DrawCall
	// Resource and View are what "this" refers to.
	Resource pipeline.Resource
	View     pipeline.View

	Post         bool
	Aborted      bool
	SkipOriginal bool

	// Limit is the recursion ceiling; zero means DefaultRecursionLimit.
	Limit int

	depth    int
	maxDepth int
	rtCached bool
	rtWidth  float32
	rtHeight float32
}

// Result is what an invocation reports back to the host.
type Result struct {
	Aborted      bool
	SkipOriginal bool
	MaxDepth     int
}

func (c *Context) result() Result {
	return Result{Aborted: c.Aborted, SkipOriginal: c.SkipOriginal, MaxDepth: c.maxDepth}
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Log returns the invocation logger.
func (c *Context) Log() *slog.Logger { return c.logger() }

func (c *Context) limit() int {
	if c.Limit <= 0 {
		return DefaultRecursionLimit
	}
	return c.Limit
}

// Depth returns the current nesting depth.
func (c *Context) Depth() int { return c.depth }

// This returns the resource "this" refers to.
func (c *Context) This() pipeline.Resource {
	if c.Resource != nil {
		return c.Resource
	}
	if c.View != nil {
		return c.View.Resource()
	}
	return nil
}

// RunList runs l nested inside the current invocation. Every nested or
// linked list goes through here so the recursion ceiling covers all of them.
func (c *Context) RunList(l *List) {
	if l == nil || c.Aborted {
		return
	}
	if c.depth >= c.limit() {
		l.warn.log(c, slog.LevelError, "Command list recursion limit exceeded, probable self- or mutual-reference.",
			"list", l.Name, "limit", c.limit())
		c.Aborted = true
		return
	}

	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.maxDepth {
		c.maxDepth = c.depth
	}
	l.execute(c)
}

func (c *Context) invalidateRenderTarget() {
	c.rtCached = false
}

func (c *Context) renderTargetSize() (float32, float32) {
	if !c.rtCached {
		c.rtWidth, c.rtHeight = 0, 0
		res := c.Device.Bound(pipeline.Slot{Kind: pipeline.KindRenderTarget})
		if res == nil {
			res = c.Device.Bound(pipeline.Slot{Kind: pipeline.KindDepthStencil})
		}
		if res != nil {
			size := res.Desc().Size
			c.rtWidth, c.rtHeight = float32(size.Width), float32(size.Height)
		}
		c.rtCached = true
	}
	return c.rtWidth, c.rtHeight
}

// Telemetry implements expr.Env. Render target size is cached for the
// invocation; draw-call values come from Call.
func (c *Context) Telemetry(t pipeline.Telemetry, index int) float32 {
	switch t {
	case pipeline.RTWidth:
		w, _ := c.renderTargetSize()
		return w
	case pipeline.RTHeight:
		_, h := c.renderTargetSize()
		return h
	}
	if v, ok := c.Call.Telemetry(t); ok {
		return v
	}
	return c.Device.Telemetry(t, index)
}

// Param implements expr.Env.
func (c *Context) Param(slot, component int) float32 {
	return c.Device.Param(slot, component)
}

// FilterIndex implements expr.Env.
func (c *Context) FilterIndex(slot pipeline.Slot) pipeline.FilterMatch {
	return c.Device.FilterIndex(slot)
}
