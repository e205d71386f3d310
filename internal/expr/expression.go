package expr

// Expression is a parsed expression owned by one directive.
type Expression struct {
	root Evaluatable
	text string
}

// Constant returns an expression with a fixed value.
func Constant(v float32) *Expression {
	return &Expression{root: &Literal{Value: v}, text: (&Literal{Value: v}).String()}
}

// Evaluate computes the value against env.
func (e *Expression) Evaluate(env Env) float32 { return e.root.Evaluate(env) }

// StaticEvaluate returns the value if the expression is constant.
func (e *Expression) StaticEvaluate() (float32, bool) { return e.root.StaticEvaluate() }

// Optimise folds constant subtrees in place and reports whether the tree
// changed. It must not run while the expression is being evaluated.
func (e *Expression) Optimise() bool {
	r, ok := e.root.Optimise()
	if ok {
		e.root = r
	}
	return ok
}

// Root returns the root node.
func (e *Expression) Root() Evaluatable { return e.root }

// Text returns the source text.
func (e *Expression) Text() string { return e.text }

// String returns the fully parenthesised form of the current tree.
func (e *Expression) String() string { return e.root.String() }
