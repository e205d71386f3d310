package expr

import (
	"fmt"
	"math"
)

type opcode uint8

const (
	opMul opcode = iota
	opDiv
	opMod
	opAdd
	opSub
	opLT
	opLE
	opGT
	opGE
	opEQ
	opNE
	opAnd
	opOr
	opNot
	opNeg
)

var binaryOps = map[string]opcode{
	"*": opMul, "/": opDiv, "%": opMod,
	"+": opAdd, "-": opSub,
	"<": opLT, "<=": opLE, ">": opGT, ">=": opGE,
	"==": opEQ, "!=": opNE,
	"&&": opAnd,
	"||": opOr,
}

var unaryOps = map[string]opcode{
	"!": opNot,
	"-": opNeg,
}

// precedence lists the binary operator levels from highest to lowest.
// Unary operators bind tighter than all of them.
var precedence = [][]string{
	{"*", "/", "%"},
	{"+", "-"},
	{"<", "<=", ">", ">="},
	{"==", "!="},
	{"&&"},
	{"||"},
}

// symbols holds every operator spelling, two-character ones first so the
// lexer matches them greedily.
var symbols = []string{"==", "!=", "<=", ">=", "&&", "||", "*", "/", "%", "+", "-", "<", ">", "!"}

// Operator is a bound operator node. Unary operators keep an implicit zero
// literal as their left child so every operator has exactly two children.
type Operator struct {
	Symbol string
	Left   Evaluatable
	Right  Evaluatable
	op     opcode
	truth  float32
}

func newBinary(sym string, lhs, rhs Evaluatable, truth float32) *Operator {
	return &Operator{Symbol: sym, Left: lhs, Right: rhs, op: binaryOps[sym], truth: truth}
}

func newUnary(sym string, rhs Evaluatable, truth float32) *Operator {
	return &Operator{Symbol: sym, Left: &Literal{}, Right: rhs, op: unaryOps[sym], truth: truth}
}

// Unary reports whether the operator is a prefix operator.
func (o *Operator) Unary() bool { return o.op == opNot || o.op == opNeg }

func (o *Operator) truthOf(b bool) float32 {
	if b {
		return o.truth
	}
	return 0
}

func (o *Operator) apply(a, b float32) float32 {
	switch o.op {
	case opMul:
		return a * b
	case opDiv:
		return a / b
	case opMod:
		return float32(math.Mod(float64(a), float64(b)))
	case opAdd:
		return a + b
	case opSub:
		return a - b
	case opLT:
		return o.truthOf(a < b)
	case opLE:
		return o.truthOf(a <= b)
	case opGT:
		return o.truthOf(a > b)
	case opGE:
		return o.truthOf(a >= b)
	case opEQ:
		return o.truthOf(a == b)
	case opNE:
		return o.truthOf(a != b)
	case opAnd:
		return o.truthOf(a != 0 && b != 0)
	case opOr:
		return o.truthOf(a != 0 || b != 0)
	case opNot:
		return o.truthOf(b == 0)
	case opNeg:
		return -b
	}
	panic(fmt.Sprintf("expr: unknown operator %q", o.Symbol))
}

// Evaluate implements Evaluatable. && and || do not evaluate their right
// operand when the left one decides the result.
func (o *Operator) Evaluate(env Env) float32 {
	switch o.op {
	case opNot, opNeg:
		return o.apply(0, o.Right.Evaluate(env))
	case opAnd:
		if o.Left.Evaluate(env) == 0 {
			return 0
		}
		return o.truthOf(o.Right.Evaluate(env) != 0)
	case opOr:
		if o.Left.Evaluate(env) != 0 {
			return o.truth
		}
		return o.truthOf(o.Right.Evaluate(env) != 0)
	}
	return o.apply(o.Left.Evaluate(env), o.Right.Evaluate(env))
}

// StaticEvaluate implements Evaluatable.
func (o *Operator) StaticEvaluate() (float32, bool) {
	b, ok := o.Right.StaticEvaluate()
	if !ok {
		return 0, false
	}
	if o.Unary() {
		return o.apply(0, b), true
	}
	a, ok := o.Left.StaticEvaluate()
	if !ok {
		return 0, false
	}
	return o.apply(a, b), true
}

// Optimise folds the children first, then the operator itself.
func (o *Operator) Optimise() (Evaluatable, bool) {
	changed := false
	if r, ok := o.Left.Optimise(); ok {
		o.Left = r
		changed = true
	}
	if r, ok := o.Right.Optimise(); ok {
		o.Right = r
		changed = true
	}
	if v, ok := o.StaticEvaluate(); ok {
		return &Literal{Value: v}, true
	}
	if changed {
		return o, true
	}
	return nil, false
}

func (o *Operator) String() string {
	if o.Unary() {
		return fmt.Sprintf("%s%s", o.Symbol, o.Right)
	}
	return fmt.Sprintf("(%s %s %s)", o.Left, o.Symbol, o.Right)
}
