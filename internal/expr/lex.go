package expr

import (
	"strconv"
	"strings"

	"github.com/specialistvlad/cmdlist/internal/pipeline"
)

// opToken is an operator that has not been bound to its operands yet.
type opToken struct {
	sym string
	pos int
}

// tree is a parenthesised group. Its items are *opToken, *tree or
// Evaluatable values.
type tree struct {
	pos   int
	items []any
}

// Children returns the immediate child groups.
func (t *tree) Children() []*tree {
	var out []*tree
	for _, it := range t.items {
		if c, ok := it.(*tree); ok {
			out = append(out, c)
		}
	}
	return out
}

type lexer struct {
	text  string
	pos   int
	scope Resolver
	opts  Options
}

func (l *lexer) errorf(pos int, msg string) *SyntaxError {
	return &SyntaxError{Text: l.text, Pos: pos, Msg: msg}
}

// lex tokenises the whole text into a root tree.
func (l *lexer) lex() (*tree, error) {
	root := &tree{}
	stack := []*tree{root}

	for l.pos < len(l.text) {
		c := l.text[l.pos]
		top := stack[len(stack)-1]

		switch {
		case c == ' ' || c == '\t':
			l.pos++
		case c == '(':
			child := &tree{pos: l.pos}
			top.items = append(top.items, child)
			stack = append(stack, child)
			l.pos++
		case c == ')':
			if len(stack) == 1 {
				return nil, l.errorf(l.pos, "unbalanced ')'")
			}
			stack = stack[:len(stack)-1]
			l.pos++
		case isDigit(c) || (c == '.' && l.pos+1 < len(l.text) && isDigit(l.text[l.pos+1])):
			lit, err := l.number()
			if err != nil {
				return nil, err
			}
			top.items = append(top.items, lit)
		case c == '$':
			ref, err := l.variable()
			if err != nil {
				return nil, err
			}
			top.items = append(top.items, ref)
		case isIdentStart(c):
			op, err := l.identifier()
			if err != nil {
				return nil, err
			}
			top.items = append(top.items, op)
		default:
			sym := l.operator()
			if sym == "" {
				return nil, l.errorf(l.pos, "unexpected character "+strconv.QuoteRune(rune(c)))
			}
			top.items = append(top.items, &opToken{sym: sym, pos: l.pos})
			l.pos += len(sym)
		}
	}

	if len(stack) > 1 {
		return nil, l.errorf(stack[len(stack)-1].pos, "unbalanced '('")
	}
	return root, nil
}

func (l *lexer) operator() string {
	for _, s := range symbols {
		if strings.HasPrefix(l.text[l.pos:], s) {
			return s
		}
	}
	return ""
}

func (l *lexer) number() (Evaluatable, error) {
	start := l.pos
	for l.pos < len(l.text) && (isDigit(l.text[l.pos]) || l.text[l.pos] == '.') {
		l.pos++
	}
	if l.pos < len(l.text) && (l.text[l.pos] == 'e' || l.text[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.text) && (l.text[l.pos] == '+' || l.text[l.pos] == '-') {
			l.pos++
		}
		for l.pos < len(l.text) && isDigit(l.text[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.text) && isIdentStart(l.text[l.pos]) {
		return nil, l.errorf(start, "malformed number")
	}
	v, err := strconv.ParseFloat(l.text[start:l.pos], 32)
	if err != nil {
		return nil, &SyntaxError{Text: l.text, Pos: start, Msg: "malformed number", Err: err}
	}
	return &Literal{Value: float32(v)}, nil
}

func (l *lexer) variable() (Evaluatable, error) {
	start := l.pos
	l.pos++
	for l.pos < len(l.text) && (isIdentChar(l.text[l.pos]) || l.text[l.pos] == '\\') {
		l.pos++
	}
	name := l.text[start:l.pos]
	if l.scope == nil {
		return nil, l.errorf(start, "variables are not allowed here")
	}
	v, err := l.scope.Resolve(name)
	if err != nil {
		return nil, &SyntaxError{Text: l.text, Pos: start, Err: err}
	}
	return &VarRef{Var: v}, nil
}

// identifier reads telemetry names, ini params and filter lookups. A stage
// name directly followed by "-slot" is read as one filter operand.
func (l *lexer) identifier() (Evaluatable, error) {
	start := l.pos
	for l.pos < len(l.text) && isIdentChar(l.text[l.pos]) {
		l.pos++
	}
	word := l.text[start:l.pos]

	if _, isStage := pipeline.ParseStage(word); isStage && l.pos+1 < len(l.text) && l.text[l.pos] == '-' && isIdentStart(l.text[l.pos+1]) {
		end := l.pos + 1
		for end < len(l.text) && isIdentChar(l.text[end]) {
			end++
		}
		if slot, ok := pipeline.ParseSlot(l.text[start:end]); ok {
			l.pos = end
			return &FilterRef{Slot: slot}, nil
		}
	}

	if t, idx, ok := pipeline.ParseTelemetry(word); ok {
		return &TelemetryRef{Item: t, Index: idx, name: strings.ToLower(word)}, nil
	}
	if slot, comp, ok := ParseParam(word, l.opts.paramSlots()); ok {
		return &ParamRef{Slot: slot, Component: comp}, nil
	}
	if slot, ok := pipeline.ParseSlot(word); ok && slot.Kind == pipeline.KindShader {
		return &FilterRef{Slot: slot}, nil
	}
	return nil, l.errorf(start, "unknown identifier "+strconv.Quote(word))
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentChar(c byte) bool  { return isIdentStart(c) || isDigit(c) }
