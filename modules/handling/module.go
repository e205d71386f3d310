package handling

import (
	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers BuiltInAbort and BuiltInSkip.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuiltin(&registry.RegisteredBuiltin{
		Name: "BuiltInAbort",
		Doc:  "Stops every list of the current invocation.",
		New:  func() command.Directive { return &command.Handling{Abort: true} },
	})
	r.RegisterBuiltin(&registry.RegisteredBuiltin{
		Name: "BuiltInSkip",
		Doc:  "Tells the host not to issue the intercepted call.",
		New:  func() command.Directive { return &command.Handling{} },
	})
}
