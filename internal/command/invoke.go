package command

import (
	"log/slog"
)

// Invocation runs another section's list. It refers to the target by name
// until the optimizer links it. CustomShader targets run both of their
// lists between a pipeline state save and restore.
type Invocation struct {
	Name   string
	Target *Section
	wrap   bool
	warn   onceLog
}

func (i *Invocation) section(c *Context) (*Section, bool) {
	if i.Target != nil {
		return i.Target, true
	}
	if c.Program == nil {
		return nil, false
	}
	return c.Program.Section(i.Name)
}

func (i *Invocation) Execute(c *Context) {
	s, ok := i.section(c)
	if !ok {
		i.warn.log(c, slog.LevelWarn, "Invoked section is not loaded.", "section", i.Name)
		return
	}
	if !i.wrap {
		c.RunList(s.List(c.Post))
		return
	}

	state := c.Device.SaveState()
	defer c.Device.RestoreState(state)
	post := c.Post
	defer func() { c.Post = post }()

	c.Post = false
	c.RunList(s.Pre)
	c.Post = true
	c.RunList(s.Post)
}

func (i *Invocation) Optimize(o *Optimizer) bool {
	if i.Target != nil {
		return false
	}
	s, ok := o.link(i.Name)
	if !ok {
		return false
	}
	i.Target = s
	return true
}

// NoOp reports true once linked to a section with nothing to do in this
// phase.
func (i *Invocation) NoOp(post bool) bool {
	if i.Target == nil || i.wrap {
		return false
	}
	return i.Target.List(post).Len() == 0
}

func (i *Invocation) String() string { return "run = " + i.Name }

// Links returns the names of the sections a list invokes, including those
// inside branch arms.
func Links(l *List) []string {
	var out []string
	var walk func(l *List)
	walk = func(l *List) {
		for _, d := range l.Directives() {
			switch d := d.(type) {
			case *Invocation:
				out = append(out, d.Name)
			case *Branch:
				walk(d.TruePre)
				walk(d.TruePost)
				walk(d.FalsePre)
				walk(d.FalsePost)
			}
		}
	}
	walk(l)
	return out
}
