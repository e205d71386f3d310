package viewclear

import (
	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// ClearRenderTargets clears every bound render target to zero.
func ClearRenderTargets(c *command.Context) {
	for i := range pipeline.MaxRenderTargets {
		res := c.Device.Bound(pipeline.Slot{Kind: pipeline.KindRenderTarget, Index: i})
		if res == nil {
			continue
		}
		if err := c.Device.Clear(res, pipeline.ClearRequest{}); err != nil {
			c.Log().Debug("Render target clear failed.", "slot", i, "error", err)
		}
	}
}

// ClearDepthStencil resets the bound depth buffer to the far plane and the
// stencil to zero.
func ClearDepthStencil(c *command.Context) {
	res := c.Device.Bound(pipeline.Slot{Kind: pipeline.KindDepthStencil})
	if res == nil {
		return
	}
	req := pipeline.ClearRequest{Values: [4]float32{1}, Depth: true, Stencil: true}
	if err := c.Device.Clear(res, req); err != nil {
		c.Log().Debug("Depth stencil clear failed.", "error", err)
	}
}

// Register registers the clear built-ins.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuiltin(&registry.RegisteredBuiltin{
		Name: "BuiltInClearRenderTargets",
		Doc:  "Clears every bound render target to zero.",
		New: func() command.Directive {
			return &command.Func{Name: "BuiltInClearRenderTargets", Fn: ClearRenderTargets}
		},
	})
	r.RegisterBuiltin(&registry.RegisteredBuiltin{
		Name: "BuiltInClearDepthStencil",
		Doc:  "Clears the bound depth stencil view.",
		New: func() command.Directive {
			return &command.Func{Name: "BuiltInClearDepthStencil", Fn: ClearDepthStencil}
		},
	})
}
