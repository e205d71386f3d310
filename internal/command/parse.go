package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/cmdlist/internal/expr"
	"github.com/specialistvlad/cmdlist/internal/names"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/resource"
	"github.com/specialistvlad/cmdlist/internal/vars"
)

var (
	ErrUnknownSection   = errors.New("unknown section")
	ErrUnknownDirective = errors.New("unknown directive")
	ErrUnknownBuiltin   = errors.New("unknown built-in")
)

// Parser turns section bodies into directive lists.
type Parser struct {
	// Globals receives the globals of every section that parses.
	Globals *vars.Table
	// Persist, if set, registers persistent globals.
	Persist *vars.Registry
	// Resources resolves Resource<Name> locators.
	Resources *resource.Store
	// Catalog provides run = BuiltIn... directives.
	Catalog Catalog
	// Sections reports whether a run target exists. When nil every target
	// is accepted and left to be resolved at run time.
	Sections func(name string) bool

	Options      expr.Options
	PoolCapacity int
}

type frame struct {
	branch    *Branch
	pre, post *List
	elseSeen  bool
	chained   bool
	ownsLevel bool
	line      Line
}

type parseState struct {
	p       *Parser
	section *Section
	scope   *vars.Scope
	frames  []*frame
	cur     Line
}

// Parse parses one section. Any rejected line rejects the whole section:
// nothing is returned and no global it declared is committed.
func (p *Parser) Parse(name, namespace string, lines []Line) (*Section, error) {
	if p.Globals == nil {
		p.Globals = vars.NewTable()
	}
	st := &parseState{
		p:       p,
		section: NewSection(name, namespace),
		scope:   vars.NewScope(p.Globals, namespace),
	}
	for _, line := range lines {
		st.cur = line
		if err := st.line(line.Text); err != nil {
			return nil, &ParseError{Section: name, Line: line, Err: err}
		}
	}
	if n := len(st.frames); n > 0 {
		return nil, &ParseError{Section: name, Line: st.frames[n-1].line, Err: errors.New("if without endif")}
	}

	st.section.Locals = st.scope.Locals()
	st.section.Globals = st.scope.Staged()
	if err := st.scope.Commit(p.Persist); err != nil {
		return nil, &ParseError{Section: name, Err: err}
	}
	return st.section, nil
}

func (st *parseState) lists() (pre, post *List) {
	if n := len(st.frames); n > 0 {
		f := st.frames[n-1]
		return f.pre, f.post
	}
	return st.section.Pre, st.section.Post
}

func (st *parseState) add(post bool, d Directive) {
	pre, postList := st.lists()
	if post {
		postList.Add(d)
	} else {
		pre.Add(d)
	}
}

func (st *parseState) parseExpr(text string) (*expr.Expression, error) {
	return expr.Parse(text, st.scope, st.p.Options)
}

// keyword reports whether text starts with kw as a whole word and returns
// the remainder.
func keyword(text, kw string) (string, bool) {
	if len(text) < len(kw) || !strings.EqualFold(text[:len(kw)], kw) {
		return "", false
	}
	rest := text[len(kw):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '(' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func (st *parseState) line(text string) error {
	if rest, ok := keyword(text, "endif"); ok {
		if rest != "" {
			return fmt.Errorf("unexpected text after endif: %q", rest)
		}
		return st.endIf()
	}
	if rest, ok := keyword(text, "elif"); ok {
		return st.elseIf(rest, text)
	}
	if rest, ok := keyword(text, "else"); ok {
		if rest == "" {
			return st.elseArm()
		}
		guard, ok := keyword(rest, "if")
		if !ok {
			return fmt.Errorf("unexpected text after else: %q", rest)
		}
		return st.elseIf(guard, text)
	}
	if rest, ok := keyword(text, "if"); ok {
		return st.ifArm(rest, text)
	}

	if rest, ok := keyword(text, "local"); ok {
		return st.declareLocal(rest)
	}
	if rest, ok := keyword(text, "global"); ok {
		return st.declareGlobal(rest)
	}

	post, explicit := false, false
	if rest, ok := keyword(text, "pre"); ok && rest != "" {
		text, explicit = rest, true
	} else if rest, ok := keyword(text, "post"); ok && rest != "" {
		text, post, explicit = rest, true, true
	}

	key, value, ok := splitAssignment(text)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDirective, text)
	}
	return st.directive(key, value, text, post, explicit)
}

func (st *parseState) ifArm(guardText, text string) error {
	if guardText == "" {
		return errors.New("if without a condition")
	}
	guard, err := st.parseExpr(guardText)
	if err != nil {
		return err
	}
	b := newBranch(st.section.Name, guard, text)
	pre, post := st.lists()
	pre.Add(b)
	post.Add(b)
	st.frames = append(st.frames, &frame{branch: b, pre: b.TruePre, post: b.TruePost, ownsLevel: true, line: st.cur})
	st.scope.Push()
	return nil
}

func (st *parseState) top(what string) (*frame, error) {
	if len(st.frames) == 0 {
		return nil, fmt.Errorf("%s without if", what)
	}
	f := st.frames[len(st.frames)-1]
	if f.elseSeen {
		return nil, fmt.Errorf("%s after else", what)
	}
	return f, nil
}

// elseIf closes the current arm and nests a new branch in the false lists
// of the current one. The chain is closed by a single endif.
func (st *parseState) elseIf(guardText, text string) error {
	f, err := st.top("else if")
	if err != nil {
		return err
	}
	if guardText == "" {
		return errors.New("else if without a condition")
	}
	if f.ownsLevel {
		st.scope.Pop()
		f.ownsLevel = false
	}
	guard, err := st.parseExpr(guardText)
	if err != nil {
		return err
	}
	b := newBranch(st.section.Name, guard, text)
	f.branch.FalsePre.Add(b)
	f.branch.FalsePost.Add(b)
	f.elseSeen = true
	st.frames = append(st.frames, &frame{branch: b, pre: b.TruePre, post: b.TruePost, chained: true, ownsLevel: true, line: f.line})
	st.scope.Push()
	return nil
}

func (st *parseState) elseArm() error {
	f, err := st.top("else")
	if err != nil {
		return err
	}
	if f.ownsLevel {
		st.scope.Pop()
	}
	st.scope.Push()
	f.ownsLevel = true
	f.pre, f.post = f.branch.FalsePre, f.branch.FalsePost
	f.elseSeen = true
	return nil
}

func (st *parseState) endIf() error {
	if len(st.frames) == 0 {
		return errors.New("endif without if")
	}
	for {
		f := st.frames[len(st.frames)-1]
		st.frames = st.frames[:len(st.frames)-1]
		if f.ownsLevel {
			st.scope.Pop()
		}
		if !f.chained {
			return nil
		}
	}
}

func (st *parseState) declareLocal(text string) error {
	name, init, hasInit := splitAssignment(text)
	if !hasInit {
		name = strings.TrimSpace(text)
	}
	// The initializer is resolved before the name is declared, so it cannot
	// refer to the variable it initializes.
	var value *expr.Expression
	if hasInit {
		var err error
		if value, err = st.parseExpr(init); err != nil {
			return err
		}
	}
	v, err := st.scope.Declare(name, 0, 0)
	if err != nil {
		return err
	}
	if value != nil {
		st.add(false, &Assignment{Var: v, Value: value, text: "local " + text})
	}
	return nil
}

func (st *parseState) declareGlobal(text string) error {
	flags := vars.Global
	if rest, ok := keyword(text, "persist"); ok {
		flags |= vars.Persist
		text = rest
	}
	name, init, hasInit := splitAssignment(text)
	if !hasInit {
		name = strings.TrimSpace(text)
	}
	var initial float32
	if hasInit {
		e, err := expr.Parse(init, nil, st.p.Options)
		if err != nil {
			return err
		}
		v, ok := e.StaticEvaluate()
		if !ok {
			return fmt.Errorf("initializer of %s is not constant", name)
		}
		initial = v
	}
	_, err := st.scope.Declare(name, flags, initial)
	return err
}

func (st *parseState) directive(key, value, text string, post, explicit bool) error {
	if strings.HasPrefix(key, "$") {
		v, err := st.scope.Resolve(key)
		if err != nil {
			return err
		}
		e, err := st.parseExpr(value)
		if err != nil {
			return err
		}
		st.add(post, &Assignment{Var: v, Value: e, text: text})
		return nil
	}
	slots := st.p.Options.ParamSlots
	if slots <= 0 {
		slots = expr.DefaultParamSlots
	}
	if slot, comp, ok := expr.ParseParam(key, slots); ok {
		e, err := st.parseExpr(value)
		if err != nil {
			return err
		}
		st.add(post, &Assignment{Param: &expr.ParamRef{Slot: slot, Component: comp}, Value: e, text: text})
		return nil
	}

	lower := strings.ToLower(key)
	switch lower {
	case "run":
		return st.run(value, post, explicit)
	case "checktextureoverride":
		loc, err := ParseLocator(value, st.p.Resources)
		if err != nil {
			return err
		}
		st.addPhases(post, explicit, func() Directive { return &ResourceCheck{Loc: loc} })
		return nil
	case "clear":
		d, err := st.clear(value)
		if err != nil {
			return err
		}
		st.add(post, d)
		return nil
	case "handling":
		switch strings.ToLower(value) {
		case "abort":
			st.add(post, &Handling{Abort: true})
		case "skip":
			st.add(post, &Handling{})
		default:
			return fmt.Errorf("unknown handling %q", value)
		}
		return nil
	case "special":
		if !strings.EqualFold(value, "draw_overlay") {
			return fmt.Errorf("unknown special %q", value)
		}
		st.add(post, DiagnosticDraw{})
		return nil
	}
	if k, ok := drawKinds[lower]; ok {
		d, err := st.draw(k.kind, k.args, value)
		if err != nil {
			return err
		}
		st.add(post, d)
		return nil
	}

	dst, err := ParseLocator(key, st.p.Resources)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownDirective, key)
	}
	d, err := st.resourceCopy(dst, value)
	if err != nil {
		return err
	}
	st.add(post, d)
	return nil
}

// addPhases adds a directive to the chosen phase, or to both phases when
// no prefix was given.
func (st *parseState) addPhases(post, explicit bool, mk func() Directive) {
	if explicit {
		st.add(post, mk())
		return
	}
	st.add(false, mk())
	st.add(true, mk())
}

func (st *parseState) run(target string, post, explicit bool) error {
	if target == "" {
		return errors.New("run without a target")
	}
	if names.HasPrefix(target, "BuiltIn") {
		if st.p.Catalog == nil {
			return fmt.Errorf("%w: %s", ErrUnknownBuiltin, target)
		}
		d, ok := st.p.Catalog.Builtin(target)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownBuiltin, target)
		}
		st.add(post, d)
		return nil
	}
	if st.p.Sections != nil && !st.p.Sections(target) {
		return fmt.Errorf("%w: %s", ErrUnknownSection, target)
	}
	name := names.Fold(target)
	if KindOf(target) == KindCustomShader {
		st.add(post, &Invocation{Name: name, wrap: true})
		return nil
	}
	st.addPhases(post, explicit, func() Directive { return &Invocation{Name: name} })
	return nil
}

func (st *parseState) draw(kind pipeline.DrawKind, nargs int, value string) (Directive, error) {
	if strings.EqualFold(value, "from_caller") {
		return &DrawOverride{Kind: kind, FromCaller: true}, nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != nargs {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", kind, nargs, len(parts))
	}
	args := make([]*expr.Expression, nargs)
	for i, part := range parts {
		e, err := st.parseExpr(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	return &DrawOverride{Kind: kind, Args: args}, nil
}

func (st *parseState) clear(value string) (Directive, error) {
	words := strings.Fields(value)
	if len(words) == 0 {
		return nil, errors.New("clear without a target")
	}
	loc, err := ParseLocator(words[0], st.p.Resources)
	if err != nil {
		return nil, err
	}
	var req pipeline.ClearRequest
	var values []float32
	for _, w := range words[1:] {
		switch strings.ToLower(w) {
		case "depth":
			req.Depth = true
			continue
		case "stencil":
			req.Stencil = true
			continue
		case "int":
			req.Int = true
			continue
		}
		f, err := strconv.ParseFloat(w, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid clear value %q", w)
		}
		values = append(values, float32(f))
	}
	switch len(values) {
	case 0:
	case 1:
		req.Values = [4]float32{values[0], values[0], values[0], values[0]}
	case 2:
		// depth and stencil
		req.Values[0], req.Values[1] = values[0], values[1]
	case 4:
		copy(req.Values[:], values)
	default:
		return nil, fmt.Errorf("clear takes 1, 2 or 4 values, got %d", len(values))
	}
	if loc.Kind == LocSlot && loc.Slot.Kind == pipeline.KindDepthStencil && !req.Depth && !req.Stencil {
		req.Depth, req.Stencil = true, true
	}
	return &ViewClear{Loc: loc, Req: req}, nil
}

func (st *parseState) resourceCopy(dst Locator, value string) (Directive, error) {
	var words []string
	var src *Locator
	for _, w := range strings.Fields(value) {
		if _, ok := copyOptionNames[strings.ToLower(w)]; ok {
			words = append(words, w)
			continue
		}
		if src != nil {
			return nil, fmt.Errorf("more than one copy source: %s and %s", src, w)
		}
		loc, err := ParseLocator(w, st.p.Resources)
		if err != nil {
			return nil, err
		}
		src = &loc
	}
	if src == nil {
		return nil, fmt.Errorf("copy to %s without a source", dst)
	}
	opts, err := ParseCopyOptions(words)
	if err != nil {
		return nil, err
	}
	return NewResourceCopy(dst, *src, opts, st.p.PoolCapacity)
}
