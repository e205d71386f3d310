package reset

import (
	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// ResetCustomResources drops the current resource of every custom resource.
func ResetCustomResources(c *command.Context) {
	if c.Resources == nil {
		return
	}
	c.Resources.Reset()
	c.Log().Debug("Custom resources reset.")
}

// Register registers BuiltInResetCustomResources.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuiltin(&registry.RegisteredBuiltin{
		Name: "BuiltInResetCustomResources",
		Doc:  "Drops every custom resource so the next use recreates it.",
		New: func() command.Directive {
			return &command.Func{Name: "BuiltInResetCustomResources", Fn: ResetCustomResources}
		},
	})
}
