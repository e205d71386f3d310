package command

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/resource"
)

// Run executes list as a top-level invocation. A panic inside a directive is
// logged and turns into an aborted result; it never reaches the host.
func Run(list *List, c *Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			c.logger().Error("Directive panicked, invocation aborted.",
				"list", list.Name, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			c.Aborted = true
			res = c.result()
		}
	}()
	c.RunList(list)
	return c.result()
}

// Runner builds a Context per invocation. It is safe for concurrent use.
type Runner struct {
	Device    pipeline.Device
	Program   Program
	Resources *resource.Store
	Logger    *slog.Logger
	Limit     int
}

func (r *Runner) context(post bool) *Context {
	return &Context{
		Device:    r.Device,
		Program:   r.Program,
		Resources: r.Resources,
		Logger:    r.Logger,
		Limit:     r.Limit,
		Post:      post,
	}
}

// Run invokes a section's list for a draw or dispatch call.
func (r *Runner) Run(s *Section, call pipeline.DrawCall, post bool) Result {
	c := r.context(post)
	c.Call = call
	return Run(s.List(post), c)
}

// RunOnResource invokes a section with "this" bound to res.
func (r *Runner) RunOnResource(s *Section, res pipeline.Resource, post bool) Result {
	c := r.context(post)
	c.Resource = res
	return Run(s.List(post), c)
}

// RunOnView invokes a section with "this" bound to view's resource.
func (r *Runner) RunOnView(s *Section, view pipeline.View, post bool) Result {
	c := r.context(post)
	c.View = view
	return Run(s.List(post), c)
}
