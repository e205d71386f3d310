package expr

import (
	"fmt"

	"github.com/specialistvlad/cmdlist/internal/vars"
)

// Resolver maps variable names to variables at parse time.
type Resolver interface {
	Resolve(name string) (*vars.Variable, error)
}

// DefaultParamSlots is the number of ini param slots when Options leaves it
// unset.
const DefaultParamSlots = 8

// Options tune the parser.
type Options struct {
	// NegativeTruth makes comparison and logical operators return -1
	// instead of 1 for true.
	NegativeTruth bool
	// ParamSlots bounds the slot number of ini params (x0..w<N-1>).
	ParamSlots int
}

func (o Options) paramSlots() int {
	if o.ParamSlots <= 0 {
		return DefaultParamSlots
	}
	return o.ParamSlots
}

func (o Options) truth() float32 {
	if o.NegativeTruth {
		return -1
	}
	return 1
}

// Parse builds an expression. Variables are resolved through scope, which
// may be nil when variables are not allowed. On error nothing is returned.
func Parse(text string, scope Resolver, opts Options) (*Expression, error) {
	l := &lexer{text: text, scope: scope, opts: opts}
	root, err := l.lex()
	if err != nil {
		return nil, err
	}
	b := &builder{text: text, truth: opts.truth()}
	node, err := b.reduce(root)
	if err != nil {
		return nil, err
	}
	return &Expression{root: node, text: text}, nil
}

type builder struct {
	text  string
	truth float32
}

func (b *builder) errorf(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Text: b.text, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// reduce collapses a group into a single Evaluatable. Child groups are
// reduced first, so a one-operand group collapses to its operand without an
// extra wrapper node.
func (b *builder) reduce(t *tree) (Evaluatable, error) {
	for i, it := range t.items {
		child, ok := it.(*tree)
		if !ok {
			continue
		}
		node, err := b.reduce(child)
		if err != nil {
			return nil, err
		}
		t.items[i] = node
	}

	b.bindUnary(t)
	for _, level := range precedence {
		b.bindBinary(t, level)
	}

	if len(t.items) == 0 {
		return nil, b.errorf(t.pos, "empty expression")
	}
	for _, it := range t.items {
		if op, ok := it.(*opToken); ok {
			return nil, b.errorf(op.pos, "missing operand for %q", op.sym)
		}
	}
	if len(t.items) > 1 {
		return nil, b.errorf(t.pos, "missing operator between operands")
	}
	return t.items[0].(Evaluatable), nil
}

func isOperand(it any) bool {
	_, ok := it.(Evaluatable)
	return ok
}

// bindUnary binds prefix operators right to left, so "- -x" nests. A "-"
// is unary when nothing operand-like precedes it.
func (b *builder) bindUnary(t *tree) {
	for i := len(t.items) - 2; i >= 0; i-- {
		op, ok := t.items[i].(*opToken)
		if !ok {
			continue
		}
		if _, unary := unaryOps[op.sym]; !unary {
			continue
		}
		if i > 0 && isOperand(t.items[i-1]) {
			continue
		}
		if !isOperand(t.items[i+1]) {
			continue
		}
		node := newUnary(op.sym, t.items[i+1].(Evaluatable), b.truth)
		t.items = splice(t.items, i, i+2, node)
	}
}

// bindBinary binds every operator of one precedence level, left to right.
func (b *builder) bindBinary(t *tree, level []string) {
	i := 1
	for i < len(t.items)-1 {
		op, ok := t.items[i].(*opToken)
		if !ok || !contains(level, op.sym) || !isOperand(t.items[i-1]) || !isOperand(t.items[i+1]) {
			i++
			continue
		}
		node := newBinary(op.sym, t.items[i-1].(Evaluatable), t.items[i+1].(Evaluatable), b.truth)
		t.items = splice(t.items, i-1, i+2, node)
		// The new node now sits at i-1; the next operator is at i.
	}
}

func splice(items []any, from, to int, node any) []any {
	out := append(items[:from:from], node)
	return append(out, items[to:]...)
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
