package expr

import (
	"fmt"
	"strconv"

	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/vars"
)

// Env supplies the dynamic inputs of an expression.
type Env interface {
	Telemetry(t pipeline.Telemetry, index int) float32
	Param(slot, component int) float32
	FilterIndex(slot pipeline.Slot) pipeline.FilterMatch
}

// Evaluatable is a node of a finished expression tree: an Operator or an
// operand leaf.
type Evaluatable interface {
	Evaluate(env Env) float32
	// StaticEvaluate returns the value when it does not depend on Env or
	// on any variable.
	StaticEvaluate() (float32, bool)
	// Optimise returns a simpler replacement for the node, if there is one.
	Optimise() (Evaluatable, bool)
	String() string
}

// Literal is a constant.
type Literal struct{ Value float32 }

func (l *Literal) Evaluate(Env) float32            { return l.Value }
func (l *Literal) StaticEvaluate() (float32, bool) { return l.Value, true }
func (l *Literal) Optimise() (Evaluatable, bool)   { return nil, false }
func (l *Literal) String() string                  { return strconv.FormatFloat(float64(l.Value), 'g', -1, 32) }

// VarRef reads a variable through a direct link.
type VarRef struct{ Var *vars.Variable }

func (r *VarRef) Evaluate(Env) float32            { return r.Var.Load() }
func (r *VarRef) StaticEvaluate() (float32, bool) { return 0, false }
func (r *VarRef) Optimise() (Evaluatable, bool)   { return nil, false }
func (r *VarRef) String() string                  { return r.Var.Name() }

// TelemetryRef reads a host telemetry value.
type TelemetryRef struct {
	Item  pipeline.Telemetry
	Index int
	name  string
}

func (r *TelemetryRef) Evaluate(env Env) float32        { return env.Telemetry(r.Item, r.Index) }
func (r *TelemetryRef) StaticEvaluate() (float32, bool) { return 0, false }
func (r *TelemetryRef) Optimise() (Evaluatable, bool)   { return nil, false }
func (r *TelemetryRef) String() string                  { return r.name }

// ParamRef reads a component of an ini param slot (x, y3, ...).
type ParamRef struct {
	Slot      int
	Component int
}

func (r *ParamRef) Evaluate(env Env) float32        { return env.Param(r.Slot, r.Component) }
func (r *ParamRef) StaticEvaluate() (float32, bool) { return 0, false }
func (r *ParamRef) Optimise() (Evaluatable, bool)   { return nil, false }

func (r *ParamRef) String() string {
	c := ParamComponents[r.Component]
	if r.Slot == 0 {
		return string(c)
	}
	return fmt.Sprintf("%c%d", c, r.Slot)
}

// FilterRef looks up the filter index of the override matched at a slot.
type FilterRef struct{ Slot pipeline.Slot }

func (r *FilterRef) Evaluate(env Env) float32        { return env.FilterIndex(r.Slot).Value() }
func (r *FilterRef) StaticEvaluate() (float32, bool) { return 0, false }
func (r *FilterRef) Optimise() (Evaluatable, bool)   { return nil, false }
func (r *FilterRef) String() string                  { return r.Slot.String() }

// ParamComponents are the component letters of an ini param slot.
const ParamComponents = "xyzw"

// ParseParam parses an ini param name: a component letter followed by an
// optional slot number. limit bounds the slot number.
func ParseParam(name string, limit int) (slot, component int, ok bool) {
	if name == "" {
		return 0, 0, false
	}
	component = -1
	for i := range len(ParamComponents) {
		if name[0] == ParamComponents[i] || name[0] == ParamComponents[i]-'a'+'A' {
			component = i
		}
	}
	if component < 0 {
		return 0, 0, false
	}
	if len(name) == 1 {
		return 0, component, true
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 || n >= limit || name[1] == '+' {
		return 0, 0, false
	}
	return n, component, true
}
