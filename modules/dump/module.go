package dump

import (
	"log/slog"

	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// dumpSlots are the binding points worth reporting.
var dumpSlots = func() []pipeline.Slot {
	var out []pipeline.Slot
	for i := range pipeline.MaxRenderTargets {
		out = append(out, pipeline.Slot{Kind: pipeline.KindRenderTarget, Index: i})
	}
	out = append(out, pipeline.Slot{Kind: pipeline.KindDepthStencil})
	for _, stage := range []pipeline.Stage{pipeline.StageVertex, pipeline.StagePixel, pipeline.StageCompute} {
		for i := range 8 {
			out = append(out, pipeline.Slot{Stage: stage, Kind: pipeline.KindShaderResource, Index: i})
		}
		for i := range 4 {
			out = append(out, pipeline.Slot{Stage: stage, Kind: pipeline.KindConstantBuffer, Index: i})
		}
	}
	return out
}()

// DumpState logs the bound resources and the invocation state at info level.
func DumpState(c *command.Context) {
	var bound []any
	for _, s := range dumpSlots {
		res := c.Device.Bound(s)
		if res == nil {
			continue
		}
		bound = append(bound, slog.String(s.String(), res.Label()+" "+res.Desc().String()))
	}
	c.Log().Info("Pipeline state.",
		"post", c.Post,
		"depth", c.Depth(),
		"call", c.Call.Kind.String(),
		"rt_width", c.Telemetry(pipeline.RTWidth, 0),
		"rt_height", c.Telemetry(pipeline.RTHeight, 0),
		slog.Group("bound", bound...),
	)
}

// Register registers BuiltInDumpState.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuiltin(&registry.RegisteredBuiltin{
		Name: "BuiltInDumpState",
		Doc:  "Logs the bound resources and invocation state.",
		New: func() command.Directive {
			return &command.Func{Name: "BuiltInDumpState", Fn: DumpState}
		},
	})
}
