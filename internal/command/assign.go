package command

import (
	"github.com/specialistvlad/cmdlist/internal/expr"
	"github.com/specialistvlad/cmdlist/internal/vars"
)

// Assignment stores the value of an expression into a variable or an ini
// param component.
type Assignment struct {
	Var   *vars.Variable
	Param *expr.ParamRef
	Value *expr.Expression
	text  string
}

func (a *Assignment) Execute(c *Context) {
	v := a.Value.Evaluate(c)
	if a.Var != nil {
		a.Var.Store(v)
		return
	}
	c.Device.SetParam(a.Param.Slot, a.Param.Component, v)
}

func (a *Assignment) Optimize(o *Optimizer) bool {
	if a.Value.Optimise() {
		o.folded++
		return true
	}
	return false
}

func (a *Assignment) NoOp(bool) bool { return false }

func (a *Assignment) String() string { return a.text }
