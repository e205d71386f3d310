package command

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/specialistvlad/cmdlist/internal/expr"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
)

var drawKinds = map[string]struct {
	kind pipeline.DrawKind
	args int
}{
	"draw":                 {pipeline.Draw, 2},
	"drawindexed":          {pipeline.DrawIndexed, 3},
	"drawinstanced":        {pipeline.DrawInstanced, 4},
	"drawindexedinstanced": {pipeline.DrawIndexedInstanced, 5},
	"dispatch":             {pipeline.Dispatch, 3},
}

// DrawOverride issues a draw or dispatch, either with explicit arguments or
// by repeating the intercepted call (from_caller).
type DrawOverride struct {
	Kind       pipeline.DrawKind
	Args       []*expr.Expression
	FromCaller bool
	warn       onceLog
}

func toUint(v float32) uint32 {
	switch {
	case v != v || v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}

func toInt(v float32) int32 {
	switch {
	case v != v:
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

func (d *DrawOverride) Execute(c *Context) {
	if d.FromCaller {
		d.fromCaller(c)
		return
	}

	a := make([]float32, len(d.Args))
	for i, e := range d.Args {
		a[i] = e.Evaluate(c)
	}
	call := pipeline.DrawCall{Kind: d.Kind}
	switch d.Kind {
	case pipeline.Draw:
		call.VertexCount, call.FirstVertex = toUint(a[0]), toUint(a[1])
	case pipeline.DrawIndexed:
		call.IndexCount, call.FirstIndex, call.BaseVertex = toUint(a[0]), toUint(a[1]), toInt(a[2])
	case pipeline.DrawInstanced:
		call.VertexCount, call.InstanceCount = toUint(a[0]), toUint(a[1])
		call.FirstVertex, call.FirstInstance = toUint(a[2]), toUint(a[3])
	case pipeline.DrawIndexedInstanced:
		call.IndexCount, call.InstanceCount = toUint(a[0]), toUint(a[1])
		call.FirstIndex, call.BaseVertex, call.FirstInstance = toUint(a[2]), toInt(a[3]), toUint(a[4])
	case pipeline.Dispatch:
		call.ThreadGroups = [3]uint32{toUint(a[0]), toUint(a[1]), toUint(a[2])}
	}
	c.Device.Draw(call)
}

func (d *DrawOverride) fromCaller(c *Context) {
	call := c.Call
	if call.Kind == pipeline.DrawNone {
		d.warn.log(c, slog.LevelDebug, "No intercepted call to repeat.", "directive", d.String())
		return
	}
	if (call.Kind == pipeline.Dispatch) != (d.Kind == pipeline.Dispatch) {
		d.warn.log(c, slog.LevelWarn, "Intercepted call does not match the injected call kind.",
			"directive", d.String(), "call", call.Kind.String())
		return
	}
	c.Device.Draw(call)
}

func (d *DrawOverride) Optimize(o *Optimizer) bool {
	changed := false
	for _, e := range d.Args {
		if e.Optimise() {
			o.folded++
			changed = true
		}
	}
	return changed
}

func (d *DrawOverride) NoOp(bool) bool { return false }

func (d *DrawOverride) String() string {
	if d.FromCaller {
		return d.Kind.String() + " = from_caller"
	}
	args := make([]string, len(d.Args))
	for i, e := range d.Args {
		args[i] = e.Text()
	}
	return d.Kind.String() + " = " + strings.Join(args, ", ")
}

// ViewClear clears the resource at a locator.
type ViewClear struct {
	Loc  Locator
	Req  pipeline.ClearRequest
	warn onceLog
}

func (v *ViewClear) Execute(c *Context) {
	res := v.Loc.Resolve(c)
	if res == nil {
		v.warn.log(c, slog.LevelDebug, "Nothing bound to clear.", "locator", v.Loc)
		return
	}
	if err := c.Device.Clear(res, v.Req); err != nil {
		v.warn.log(c, slog.LevelWarn, "Clear failed.", "locator", v.Loc, "error", err)
	}
}

func (v *ViewClear) Optimize(*Optimizer) bool { return false }
func (v *ViewClear) NoOp(bool) bool           { return false }

func (v *ViewClear) String() string {
	return fmt.Sprintf("clear = %s %v", v.Loc, v.Req.Values)
}
