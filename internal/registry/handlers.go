package registry

import (
	"fmt"
	"log/slog"

	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/names"
)

// Prefix starts the name of every built-in.
const Prefix = "BuiltIn"

// Factory creates a fresh directive for one run = BuiltIn... line.
type Factory func() command.Directive

// RegisteredBuiltin holds the compiled parts of a built-in directive.
type RegisteredBuiltin struct {
	Name string
	// Doc is a one-line description shown by the CLI.
	Doc string
	New Factory
}

// RegisterBuiltin registers a built-in under its name. Names are matched
// case-insensitively.
func (r *Registry) RegisterBuiltin(b *RegisteredBuiltin) {
	if !names.HasPrefix(b.Name, Prefix) || len(b.Name) == len(Prefix) {
		panic(fmt.Sprintf("built-in name '%s' must start with %s", b.Name, Prefix))
	}
	if b.New == nil {
		panic(fmt.Sprintf("built-in '%s' has no factory", b.Name))
	}
	key := names.Fold(b.Name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builtins[key]; exists {
		panic(fmt.Sprintf("built-in with name '%s' already registered", b.Name))
	}
	slog.Debug("Registering built-in.", "name", b.Name)
	r.builtins[key] = b
}
