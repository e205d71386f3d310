package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/config"
	"github.com/specialistvlad/cmdlist/internal/ctxlog"
	"github.com/specialistvlad/cmdlist/internal/dag"
	"github.com/specialistvlad/cmdlist/internal/expr"
	"github.com/specialistvlad/cmdlist/internal/names"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/resource"
	"github.com/specialistvlad/cmdlist/internal/vars"
)

// Load builds a program from model and publishes it. Sections that fail to
// parse are rejected and reported in a *LoadError; everything else is loaded.
// Persistent globals are carried over from the previously active program.
func (e *Engine) Load(ctx context.Context, model *config.Model) error {
	_, logger := ctxlog.Component(ctx, "engine")
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	p := newProgram(e.opts.PoolCapacity)
	var errs []error

	for _, r := range model.Resources {
		spec, err := resourceSpec(r)
		if err == nil {
			_, err = p.resources.Declare(r.Name, spec)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("resource %s: %w", r.Name, err))
		}
	}

	errs = append(errs, e.parseSections(p, model, logger)...)
	p.rejected = len(errs)

	opt := command.NewOptimizer(p, logger)
	p.optimize = opt.Sections(p.order)
	if err := linkGraph(p.order).DetectCycles(); err != nil {
		logger.Warn("Sections invoke each other recursively; the recursion limit will cut the cycle.", "error", err)
	}

	if s, ok := p.Section(ConstantsSection); ok {
		res := e.runner(p).Run(s, pipeline.DrawCall{}, false)
		if res.Aborted {
			logger.Warn("Constants section aborted.")
		}
	}

	prev := e.program.Load()
	if prev != nil {
		carried := p.persist.Restore(prev.persist.Snapshot())
		logger.Info("Persistent globals carried over.", "count", carried)
		e.reloads.Add(1)
	}
	e.program.Store(p)

	logger.Info("Program loaded.", "sections", len(p.order), "globals", p.globals.Len(),
		"resources", len(model.Resources), "rejected", len(errs))
	if len(errs) > 0 {
		return &LoadError{Errs: errs}
	}
	return nil
}

// parseSections parses every section of model into p. A section that uses a
// global declared by a section later in the file is retried after the rest
// have been parsed, for as long as retries make progress.
func (e *Engine) parseSections(p *Program, model *config.Model, logger *slog.Logger) []error {
	known := make(map[string]bool, len(model.Sections))
	for _, s := range model.Sections {
		known[names.Fold(s.Name)] = true
	}
	parser := &command.Parser{
		Globals:   p.globals,
		Persist:   p.persist,
		Resources: p.resources,
		Catalog:   e.catalog,
		Sections:  func(name string) bool { return known[names.Fold(name)] },
		Options: expr.Options{
			NegativeTruth: e.opts.NegativeTruth,
			ParamSlots:    e.opts.ParamSlots,
		},
		PoolCapacity: e.opts.PoolCapacity,
	}

	pending := model.Sections
	failed := make(map[*config.Section]error)
	for len(pending) > 0 {
		var retry []*config.Section
		for _, cs := range pending {
			namespace := cs.Namespace
			if namespace == "" {
				namespace = model.Settings.Namespace
			}
			s, err := parser.Parse(cs.Name, namespace, command.SplitLines(cs.Body, cs.File, cs.Line))
			if err != nil {
				failed[cs] = err
				if errors.Is(err, vars.ErrUnresolved) {
					retry = append(retry, cs)
				}
				continue
			}
			delete(failed, cs)
			p.add(s)
			if cs.Hash != "" {
				p.overrides = append(p.overrides, Override{Section: cs.Name, Hash: cs.Hash, FilterIndex: cs.FilterIndex})
			}
		}
		if len(retry) == len(pending) {
			break
		}
		pending = retry
	}

	var errs []error
	for _, cs := range model.Sections {
		if err, ok := failed[cs]; ok {
			logger.Warn("Section rejected.", "section", cs.Name, "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

func resourceSpec(r *config.Resource) (resource.Spec, error) {
	spec := resource.Spec{
		Width:       r.Width,
		Height:      r.Height,
		ByteSize:    r.ByteSize,
		SampleCount: r.SampleCount,
	}
	switch names.Fold(r.Type) {
	case "", "texture2d":
		spec.Kind = pipeline.KindTexture2D
	case "buffer":
		spec.Kind = pipeline.KindBuffer
	default:
		return spec, fmt.Errorf("unknown resource type %q", r.Type)
	}
	if r.Format != "" {
		f, err := pipeline.ParseFormat(r.Format)
		if err != nil {
			return spec, err
		}
		spec.Format = f
	}
	return spec, nil
}

// linkGraph builds the static invocation graph of the parsed sections.
func linkGraph(sections []*command.Section) *dag.Graph {
	g := dag.New()
	ids := make(map[string]string, len(sections))
	for _, s := range sections {
		ids[names.Fold(s.Name)] = s.Name
		g.AddNode(s.Name)
	}
	for _, s := range sections {
		for _, l := range []*command.List{s.Pre, s.Post} {
			for _, target := range command.Links(l) {
				if id, ok := ids[names.Fold(target)]; ok {
					// Both nodes exist, AddEdge cannot fail.
					_ = g.AddEdge(s.Name, id)
				}
			}
		}
	}
	return g
}
