package command

import (
	"sync/atomic"
	"time"

	"github.com/specialistvlad/cmdlist/internal/names"
	"github.com/specialistvlad/cmdlist/internal/vars"
)

// List is an ordered sequence of directives for one phase.
type List struct {
	Name string
	Post bool

	directives []Directive
	warn       onceLog

	runs  atomic.Uint64
	nanos atomic.Int64
}

// NewList creates an empty list.
func NewList(name string, post bool) *List {
	return &List{Name: name, Post: post}
}

// Add appends a directive.
func (l *List) Add(d Directive) { l.directives = append(l.directives, d) }

// Directives returns the directives in execution order.
func (l *List) Directives() []Directive { return l.directives }

// Len returns the number of directives.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.directives)
}

func (l *List) execute(c *Context) {
	start := time.Now()
	for _, d := range l.directives {
		d.Execute(c)
		if c.Aborted {
			break
		}
	}
	l.runs.Add(1)
	l.nanos.Add(int64(time.Since(start)))
}

// ListStats are the profiling counters of a list.
type ListStats struct {
	Runs  uint64        `json:"runs"`
	Total time.Duration `json:"total_ns"`
}

// Stats returns the profiling counters.
func (l *List) Stats() ListStats {
	return ListStats{Runs: l.runs.Load(), Total: time.Duration(l.nanos.Load())}
}

// SectionKind is derived from the section name prefix.
type SectionKind uint8

const (
	KindOther SectionKind = iota
	KindCommandList
	KindCustomShader
	KindShaderOverride
	KindTextureOverride
)

func (k SectionKind) String() string {
	switch k {
	case KindCommandList:
		return "CommandList"
	case KindCustomShader:
		return "CustomShader"
	case KindShaderOverride:
		return "ShaderOverride"
	case KindTextureOverride:
		return "TextureOverride"
	}
	return "Section"
}

// KindOf classifies a section name.
func KindOf(name string) SectionKind {
	for _, k := range []SectionKind{KindCommandList, KindCustomShader, KindShaderOverride, KindTextureOverride} {
		if names.HasPrefix(name, k.String()) {
			return k
		}
	}
	return KindOther
}

// Section is a named pair of lists. The before list owns the locals
// declared in the section; the after list reads the same variables.
type Section struct {
	Name      string
	Namespace string
	Kind      SectionKind
	Pre       *List
	Post      *List
	Locals    []*vars.Variable
	Globals   []*vars.Variable
}

// NewSection creates a section with empty lists.
func NewSection(name, namespace string) *Section {
	return &Section{
		Name:      name,
		Namespace: namespace,
		Kind:      KindOf(name),
		Pre:       NewList(name, false),
		Post:      NewList(name+" post", true),
	}
}

// List returns the list for a phase.
func (s *Section) List(post bool) *List {
	if post {
		return s.Post
	}
	return s.Pre
}

// Program resolves sections by name at optimize and run time.
type Program interface {
	Section(name string) (*Section, bool)
}

// Catalog provides the built-in directives invoked with run = BuiltIn....
// Each call returns a fresh directive.
type Catalog interface {
	Builtin(name string) (Directive, bool)
}
