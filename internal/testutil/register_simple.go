package testutil

import (
	"sync/atomic"

	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single built-in backed by a Go function.
type SimpleModule struct {
	Name string
	Fn   func(c *command.Context)
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	r.RegisterBuiltin(&registry.RegisteredBuiltin{
		Name: m.Name,
		Doc:  "Test built-in.",
		New:  func() command.Directive { return &command.Func{Name: m.Name, Fn: m.Fn} },
	})
}

// CounterModule registers a built-in that counts its invocations. It is
// safe to invoke from concurrent replay workers.
type CounterModule struct {
	Name  string
	calls atomic.Int64
}

// Register implements the registry.Module interface.
func (m *CounterModule) Register(r *registry.Registry) {
	r.RegisterBuiltin(&registry.RegisteredBuiltin{
		Name: m.Name,
		Doc:  "Counts invocations.",
		New: func() command.Directive {
			return &command.Func{Name: m.Name, Fn: func(*command.Context) { m.calls.Add(1) }}
		},
	})
}

// Calls returns how many times the built-in ran.
func (m *CounterModule) Calls() int64 { return m.calls.Load() }
