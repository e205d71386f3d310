package command

import (
	"github.com/specialistvlad/cmdlist/internal/expr"
)

// Branch runs one of two sub-lists depending on its guard. It sits in both
// phase lists of its parent; each phase has its own pair of sub-lists. The
// false lists hold the else arm, which is the guard negated; an else if
// chain nests another Branch there.
type Branch struct {
	Guard     *expr.Expression
	TruePre   *List
	TruePost  *List
	FalsePre  *List
	FalsePost *List
	text      string
}

func newBranch(name string, guard *expr.Expression, text string) *Branch {
	return &Branch{
		Guard:     guard,
		TruePre:   NewList(name+" if", false),
		TruePost:  NewList(name+" if post", true),
		FalsePre:  NewList(name+" else", false),
		FalsePost: NewList(name+" else post", true),
		text:      text,
	}
}

func (b *Branch) lists(post bool) (onTrue, onFalse *List) {
	if post {
		return b.TruePost, b.FalsePost
	}
	return b.TruePre, b.FalsePre
}

func (b *Branch) Execute(c *Context) {
	onTrue, onFalse := b.lists(c.Post)
	target := onFalse
	if b.Guard.Evaluate(c) != 0 {
		target = onTrue
	}
	if target.Len() > 0 {
		c.RunList(target)
	}
}

func (b *Branch) Optimize(o *Optimizer) bool {
	changed := false
	if b.Guard.Optimise() {
		o.folded++
		changed = true
	}
	for _, l := range []*List{b.TruePre, b.TruePost, b.FalsePre, b.FalsePost} {
		if o.List(l) {
			changed = true
		}
	}
	return changed
}

// NoOp reports true when the arm that can run in this phase is empty.
func (b *Branch) NoOp(post bool) bool {
	onTrue, onFalse := b.lists(post)
	if v, ok := b.Guard.StaticEvaluate(); ok {
		if v != 0 {
			return onTrue.Len() == 0
		}
		return onFalse.Len() == 0
	}
	return onTrue.Len() == 0 && onFalse.Len() == 0
}

func (b *Branch) String() string { return b.text }
