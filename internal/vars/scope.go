package vars

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/cmdlist/internal/names"
)

// ValidateName checks that name is $ident or a namespaced $\ns\ident.
func ValidateName(name string) error {
	if len(name) < 2 || name[0] != '$' {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	body := name[1:]
	if strings.HasPrefix(body, `\`) {
		body = body[1:]
	}
	if body == "" || strings.HasSuffix(body, `\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, r := range body {
		if r == '_' || r == '\\' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Qualify returns the namespaced global name for a $name declared inside
// namespace. Names that are already absolute and empty namespaces are
// returned folded and unchanged.
func Qualify(namespace, name string) string {
	name = names.Fold(name)
	ns := strings.Trim(names.Fold(namespace), `\`)
	if ns == "" || strings.HasPrefix(name, `$\`) {
		return name
	}
	return `$\` + ns + `\` + strings.TrimPrefix(name, "$")
}

// Scope is the parse-time name table for one section. Levels are pushed for
// every nested branch body; globals declared while parsing are staged and
// only inserted into the shared table by Commit.
type Scope struct {
	globals   *Table
	namespace string
	levels    []map[string]*Variable
	locals    []*Variable
	staged    []*Variable
	byName    map[string]*Variable
}

// NewScope creates a scope with a single (section) level.
func NewScope(globals *Table, namespace string) *Scope {
	s := &Scope{
		globals:   globals,
		namespace: namespace,
		byName:    make(map[string]*Variable),
	}
	s.Push()
	return s
}

// Namespace returns the namespace globals are qualified with.
func (s *Scope) Namespace() string { return s.namespace }

// Push opens a nested level.
func (s *Scope) Push() {
	s.levels = append(s.levels, make(map[string]*Variable))
}

// Pop discards the innermost level. The section level is never popped.
func (s *Scope) Pop() {
	if len(s.levels) > 1 {
		s.levels = s.levels[:len(s.levels)-1]
	}
}

// Depth returns the number of open levels.
func (s *Scope) Depth() int { return len(s.levels) }

func (s *Scope) visible(key string) bool {
	for i := len(s.levels) - 1; i >= 0; i-- {
		if _, ok := s.levels[i][key]; ok {
			return true
		}
	}
	return false
}

// Declare inserts name into the innermost level, or stages a global when
// flags include Global. Redeclaring a name visible from the innermost level
// is an error.
func (s *Scope) Declare(name string, flags Flags, initial float32) (*Variable, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if flags&(Global|Persist) != 0 {
		return s.declareGlobal(name, flags, initial)
	}

	key := names.Fold(name)
	if strings.HasPrefix(key, `$\`) {
		return nil, fmt.Errorf("%w: namespaced name %s cannot be local", ErrInvalidName, name)
	}
	if s.visible(key) {
		return nil, fmt.Errorf("%w: %s", ErrRedeclared, name)
	}
	v := New(key, 0, initial)
	s.levels[len(s.levels)-1][key] = v
	s.locals = append(s.locals, v)
	return v, nil
}

func (s *Scope) declareGlobal(name string, flags Flags, initial float32) (*Variable, error) {
	if len(s.levels) > 1 {
		return nil, fmt.Errorf("global %s must be declared at the top level of a section", name)
	}
	key := Qualify(s.namespace, name)
	if _, ok := s.byName[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrRedeclared, name)
	}
	if _, ok := s.globals.Lookup(key); ok {
		return nil, fmt.Errorf("%w: %s", ErrRedeclared, name)
	}
	v := New(key, flags|Global, initial)
	s.byName[key] = v
	s.staged = append(s.staged, v)
	return v, nil
}

// Resolve finds the variable a name refers to: innermost level outwards,
// then the namespaced global, then the unqualified global.
func (s *Scope) Resolve(name string) (*Variable, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	key := names.Fold(name)

	if !strings.HasPrefix(key, `$\`) {
		for i := len(s.levels) - 1; i >= 0; i-- {
			if v, ok := s.levels[i][key]; ok {
				return v, nil
			}
		}
	}

	candidates := []string{Qualify(s.namespace, key)}
	if candidates[0] != key {
		candidates = append(candidates, key)
	}
	for _, c := range candidates {
		if v, ok := s.byName[c]; ok {
			return v, nil
		}
		if v, ok := s.globals.Lookup(c); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnresolved, name)
}

// Locals returns every local declared in this scope, in declaration order.
func (s *Scope) Locals() []*Variable { return s.locals }

// Staged returns the globals declared in this scope that are not yet
// committed.
func (s *Scope) Staged() []*Variable { return s.staged }

// Commit inserts the staged globals into the shared table and registers the
// persistent ones with persist (which may be nil).
func (s *Scope) Commit(persist *Registry) error {
	for i, v := range s.staged {
		if err := s.globals.insert(v); err != nil {
			// Roll back what this scope already inserted.
			s.globals.mu.Lock()
			for _, done := range s.staged[:i] {
				delete(s.globals.vars, done.name)
			}
			s.globals.mu.Unlock()
			return err
		}
	}
	if persist != nil {
		for _, v := range s.staged {
			if v.IsPersistent() {
				persist.Register(v)
			}
		}
	}
	s.staged = nil
	s.byName = make(map[string]*Variable)
	return nil
}
