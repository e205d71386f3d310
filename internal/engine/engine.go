package engine

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/resource"
)

// ConstantsSection is run once, pre phase, after every load.
const ConstantsSection = "Constants"

// Options are the engine-wide knobs. Zero values select the defaults of the
// packages they are passed to.
type Options struct {
	RecursionLimit int
	ParamSlots     int
	NegativeTruth  bool
	PoolCapacity   int
}

// Engine holds the active program and runs its sections. Run, RunOnResource
// and RunOnView are safe for concurrent use, including while a reload is in
// progress.
type Engine struct {
	device  pipeline.Device
	catalog command.Catalog
	logger  *slog.Logger
	opts    Options

	loadMu  sync.Mutex
	program atomic.Pointer[Program]
	reloads atomic.Uint64
}

// New creates an engine with no program loaded.
func New(device pipeline.Device, catalog command.Catalog, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		device:  device,
		catalog: catalog,
		logger:  logger.With("component", "engine"),
		opts:    opts,
	}
}

// Program returns the active program, or nil before the first load.
func (e *Engine) Program() *Program { return e.program.Load() }

func (e *Engine) active() (*Program, error) {
	p := e.program.Load()
	if p == nil {
		return nil, ErrNotLoaded
	}
	return p, nil
}

func (e *Engine) runner(p *Program) *command.Runner {
	return &command.Runner{
		Device:    e.device,
		Program:   p,
		Resources: p.resources,
		Logger:    e.logger,
		Limit:     e.opts.RecursionLimit,
	}
}

func (e *Engine) lookup(name string) (*Program, *command.Section, error) {
	p, err := e.active()
	if err != nil {
		return nil, nil, err
	}
	s, ok := p.Section(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", command.ErrUnknownSection, name)
	}
	return p, s, nil
}

// Run invokes a section for an intercepted draw or dispatch call.
func (e *Engine) Run(section string, call pipeline.DrawCall, post bool) (command.Result, error) {
	p, s, err := e.lookup(section)
	if err != nil {
		return command.Result{}, err
	}
	return e.runner(p).Run(s, call, post), nil
}

// RunOnResource invokes a section with "this" bound to res.
func (e *Engine) RunOnResource(section string, res pipeline.Resource, post bool) (command.Result, error) {
	p, s, err := e.lookup(section)
	if err != nil {
		return command.Result{}, err
	}
	return e.runner(p).RunOnResource(s, res, post), nil
}

// RunOnView invokes a section with "this" bound to the view's resource.
func (e *Engine) RunOnView(section string, view pipeline.View, post bool) (command.Result, error) {
	p, s, err := e.lookup(section)
	if err != nil {
		return command.Result{}, err
	}
	return e.runner(p).RunOnView(s, view, post), nil
}

// Global returns the current value of a global variable.
func (e *Engine) Global(name string) (float32, error) {
	p, err := e.active()
	if err != nil {
		return 0, err
	}
	return p.globals.Get(name)
}

// Overrides returns the texture overrides of the active program.
func (e *Engine) Overrides() []Override {
	if p := e.program.Load(); p != nil {
		return p.Overrides()
	}
	return nil
}

// SectionStats are the profiling counters of one section.
type SectionStats struct {
	Pre  command.ListStats `json:"pre"`
	Post command.ListStats `json:"post"`
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Reloads  uint64                        `json:"reloads"`
	Sections int                           `json:"sections"`
	Rejected int                           `json:"rejected"`
	Globals  map[string]any                `json:"globals"`
	Optimize command.OptimizeStats         `json:"optimize"`
	Lists    map[string]SectionStats       `json:"lists"`
	Pools    map[string]resource.PoolStats `json:"pools"`
}

// Stats returns a snapshot of the active program's counters.
func (e *Engine) Stats() Stats {
	st := Stats{Reloads: e.reloads.Load()}
	p := e.program.Load()
	if p == nil {
		return st
	}
	st.Sections = len(p.order)
	st.Rejected = p.rejected
	st.Globals = make(map[string]any)
	for name, v := range p.globals.Snapshot() {
		// encoding/json rejects non-finite numbers.
		if f := float64(v); math.IsInf(f, 0) || math.IsNaN(f) {
			st.Globals[name] = strconv.FormatFloat(f, 'g', -1, 32)
			continue
		}
		st.Globals[name] = v
	}
	st.Optimize = p.optimize
	st.Lists = make(map[string]SectionStats, len(p.order))
	for _, s := range p.order {
		st.Lists[s.Name] = SectionStats{Pre: s.Pre.Stats(), Post: s.Post.Stats()}
	}
	st.Pools = p.resources.Stats()
	return st
}
