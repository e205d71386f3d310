package command

// Directive is one executable unit of a list.
type Directive interface {
	// Execute performs the directive. It must not panic for any input the
	// parser accepted; soft failures are logged and ignored.
	Execute(c *Context)
	// Optimize simplifies the directive in place and reports whether
	// anything changed.
	Optimize(o *Optimizer) bool
	// NoOp reports whether the directive can never have an effect when it
	// sits in the given phase's list.
	NoOp(post bool) bool
	String() string
}

// Func adapts a function into a directive. Built-in catalog entries are
// usually Funcs.
type Func struct {
	Name string
	Fn   func(c *Context)
}

func (f *Func) Execute(c *Context)       { f.Fn(c) }
func (f *Func) Optimize(*Optimizer) bool { return false }
func (f *Func) NoOp(bool) bool           { return false }
func (f *Func) String() string           { return "run = " + f.Name }

// Handling sets one of the invocation flags: abort stops every list of the
// invocation, skip tells the host not to issue the original call.
type Handling struct {
	Abort bool
}

func (h *Handling) Execute(c *Context) {
	if h.Abort {
		c.Aborted = true
	} else {
		c.SkipOriginal = true
	}
}

func (h *Handling) Optimize(*Optimizer) bool { return false }
func (h *Handling) NoOp(bool) bool           { return false }

func (h *Handling) String() string {
	if h.Abort {
		return "handling = abort"
	}
	return "handling = skip"
}

// DiagnosticDraw draws the host's diagnostic overlay.
type DiagnosticDraw struct{}

func (DiagnosticDraw) Execute(c *Context)       { c.Device.DrawOverlay() }
func (DiagnosticDraw) Optimize(*Optimizer) bool { return false }
func (DiagnosticDraw) NoOp(bool) bool           { return false }
func (DiagnosticDraw) String() string           { return "special = draw_overlay" }
