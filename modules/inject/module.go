package inject

import (
	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the from_caller shortcuts.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuiltin(&registry.RegisteredBuiltin{
		Name: "BuiltInDrawFromCaller",
		Doc:  "Repeats the intercepted draw call.",
		New: func() command.Directive {
			return &command.DrawOverride{Kind: pipeline.Draw, FromCaller: true}
		},
	})
	r.RegisterBuiltin(&registry.RegisteredBuiltin{
		Name: "BuiltInDispatchFromCaller",
		Doc:  "Repeats the intercepted compute dispatch.",
		New: func() command.Directive {
			return &command.DrawOverride{Kind: pipeline.Dispatch, FromCaller: true}
		},
	})
}
