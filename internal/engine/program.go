package engine

import (
	"slices"

	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/names"
	"github.com/specialistvlad/cmdlist/internal/resource"
	"github.com/specialistvlad/cmdlist/internal/vars"
)

// Override is a texture override section the host should match resources
// against.
type Override struct {
	Section     string
	Hash        string
	FilterIndex *float32
}

// Program is one loaded generation of sections. It is immutable once
// published, apart from variable values, resource pools and counters.
type Program struct {
	sections  map[string]*command.Section
	order     []*command.Section
	globals   *vars.Table
	persist   *vars.Registry
	resources *resource.Store
	overrides []Override
	optimize  command.OptimizeStats
	rejected  int
}

func newProgram(poolCapacity int) *Program {
	return &Program{
		sections:  make(map[string]*command.Section),
		globals:   vars.NewTable(),
		persist:   vars.NewRegistry(),
		resources: resource.NewStore(poolCapacity),
	}
}

// Section implements command.Program.
func (p *Program) Section(name string) (*command.Section, bool) {
	s, ok := p.sections[names.Fold(name)]
	return s, ok
}

// Sections returns the sections in load order.
func (p *Program) Sections() []*command.Section { return slices.Clone(p.order) }

// Globals returns the global variable table.
func (p *Program) Globals() *vars.Table { return p.globals }

// Resources returns the custom resources.
func (p *Program) Resources() *resource.Store { return p.resources }

// Overrides returns the texture overrides declared by the configuration.
func (p *Program) Overrides() []Override { return slices.Clone(p.overrides) }

func (p *Program) add(s *command.Section) {
	p.sections[names.Fold(s.Name)] = s
	p.order = append(p.order, s)
}
