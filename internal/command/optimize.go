package command

import (
	"log/slog"
)

// OptimizeStats summarise an optimizer run.
type OptimizeStats struct {
	Passes  int `json:"passes"`
	Folded  int `json:"folded"`
	Linked  int `json:"linked"`
	Removed int `json:"removed"`
}

// Optimizer rewrites parsed sections in place: it folds constant
// expressions, links invocations to their target sections and removes
// directives that are no-ops in their phase. It must finish before the
// sections are published to running invocations.
type Optimizer struct {
	program Program
	logger  *slog.Logger
	visited map[*List]bool

	folded  int
	linked  int
	removed int
}

// NewOptimizer creates an optimizer resolving links through program.
func NewOptimizer(program Program, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Optimizer{program: program, logger: logger, visited: make(map[*List]bool)}
}

func (o *Optimizer) link(name string) (*Section, bool) {
	if o.program == nil {
		return nil, false
	}
	s, ok := o.program.Section(name)
	if ok {
		o.linked++
	}
	return s, ok
}

// List optimizes every directive of l and drops the no-ops. Each list is
// processed at most once per pass.
func (o *Optimizer) List(l *List) bool {
	if l == nil || o.visited[l] {
		return false
	}
	o.visited[l] = true

	changed := false
	kept := l.directives[:0]
	for _, d := range l.directives {
		if d.Optimize(o) {
			changed = true
		}
		if d.NoOp(l.Post) {
			o.logger.Debug("Removed no-op directive.", "list", l.Name, "directive", d.String())
			o.removed++
			changed = true
			continue
		}
		kept = append(kept, d)
	}
	for i := len(kept); i < len(l.directives); i++ {
		l.directives[i] = nil
	}
	l.directives = kept
	return changed
}

// Sections runs passes over every section until nothing changes. Removing
// a directive can empty a list that another section invokes, which makes
// that invocation removable on the next pass.
func (o *Optimizer) Sections(sections []*Section) OptimizeStats {
	limit := len(sections) + 2
	passes := 0
	for passes < limit {
		passes++
		o.visited = make(map[*List]bool)
		changed := false
		for _, s := range sections {
			if o.List(s.Pre) {
				changed = true
			}
			if o.List(s.Post) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	stats := OptimizeStats{Passes: passes, Folded: o.folded, Linked: o.linked, Removed: o.removed}
	o.logger.Debug("Directive lists optimized.", "passes", stats.Passes, "folded", stats.Folded,
		"linked", stats.Linked, "removed", stats.Removed)
	return stats
}
