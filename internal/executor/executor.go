package executor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/config"
	"github.com/specialistvlad/cmdlist/internal/ctxlog"
	"github.com/specialistvlad/cmdlist/internal/engine"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/pipeline/sim"
)

// Engine is the part of *engine.Engine a replay drives.
type Engine interface {
	Run(section string, call pipeline.DrawCall, post bool) (command.Result, error)
	RunOnResource(section string, res pipeline.Resource, post bool) (command.Result, error)
	RunOnView(section string, view pipeline.View, post bool) (command.Result, error)
	Overrides() []engine.Override
}

// Report summarises a replay.
type Report struct {
	Frames   int    `json:"frames"`
	Events   uint64 `json:"events"`
	Draws    uint64 `json:"draws"`
	Skipped  uint64 `json:"skipped"`
	Aborted  uint64 `json:"aborted"`
	Failed   uint64 `json:"failed"`
	MaxDepth int64  `json:"max_depth"`
}

type counters struct {
	events, draws, skipped, aborted, failed atomic.Uint64
	maxDepth                                atomic.Int64
}

func (c *counters) observe(res command.Result) {
	if res.Aborted {
		c.aborted.Add(1)
	}
	for {
		cur := c.maxDepth.Load()
		if int64(res.MaxDepth) <= cur || c.maxDepth.CompareAndSwap(cur, int64(res.MaxDepth)) {
			return
		}
	}
}

// Executor replays config.Replay scripts on a simulated device.
type Executor struct {
	engine   Engine
	device   *sim.Device
	replay   *config.Replay
	workers  int
	textures map[string]*sim.Texture
	events   []*event

	warned sync.Map
}

// New prepares a replay: it creates the replay textures, binds them and
// resolves every event's telemetry overrides.
func New(eng Engine, device *sim.Device, replay *config.Replay, workers int) (*Executor, error) {
	if workers <= 0 {
		workers = 1
	}
	e := &Executor{
		engine:   eng,
		device:   device,
		replay:   replay,
		workers:  workers,
		textures: make(map[string]*sim.Texture),
	}
	if err := e.createTextures(); err != nil {
		return nil, err
	}
	for i, ce := range replay.Events {
		ev, err := e.compile(ce)
		if err != nil {
			return nil, fmt.Errorf("replay event %d (%s): %w", i, ce.Kind, err)
		}
		e.events = append(e.events, ev)
	}
	return e, nil
}

// Execute registers the engine's texture overrides with the device and
// replays frames times. It returns ctx.Err() if the replay was cancelled
// before every frame ran.
func (e *Executor) Execute(ctx context.Context, frames int) (Report, error) {
	ctx, logger := ctxlog.Component(ctx, "executor")
	if frames <= 0 {
		frames = e.replay.Frames
	}
	if frames <= 0 {
		frames = 1
	}
	e.RegisterOverrides()

	var c counters
	var done atomic.Int64
	frameChan := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			e.worker(ctx, frameChan, &c, &done, workerID)
		}(i)
	}

	logger.Debug("Replay started.", "frames", frames, "events", len(e.events), "workers", e.workers)
feed:
	for frame := 0; frame < frames; frame++ {
		select {
		case frameChan <- frame:
		case <-ctx.Done():
			break feed
		}
	}
	close(frameChan)
	wg.Wait()

	report := Report{
		Frames:   int(done.Load()),
		Events:   c.events.Load(),
		Draws:    c.draws.Load(),
		Skipped:  c.skipped.Load(),
		Aborted:  c.aborted.Load(),
		Failed:   c.failed.Load(),
		MaxDepth: c.maxDepth.Load(),
	}
	if report.Frames < frames {
		return report, ctx.Err()
	}
	return report, nil
}

// RegisterOverrides replaces the device's texture overrides with the ones
// the engine's active program declares.
func (e *Executor) RegisterOverrides() {
	e.device.ClearOverrides()
	for _, o := range e.engine.Overrides() {
		e.device.AddOverride(o.Hash, sim.Override{Section: o.Section, FilterIndex: o.FilterIndex})
	}
}

// Texture returns a replay texture by name.
func (e *Executor) Texture(name string) (*sim.Texture, bool) {
	t, ok := e.textures[name]
	return t, ok
}

func (e *Executor) createTextures() error {
	for _, t := range e.replay.Textures {
		format, err := pipeline.ParseFormat(t.Format)
		if err != nil {
			return fmt.Errorf("replay texture %s: %w", t.Name, err)
		}
		tex := sim.NewTexture(t.Name, t.Hash, pipeline.Texture2D(t.Width, t.Height, format))
		for _, b := range t.Bind {
			slot, ok := pipeline.ParseSlot(b)
			if !ok || !slot.IsResource() {
				return fmt.Errorf("replay texture %s: invalid bind slot %q", t.Name, b)
			}
			e.device.Bind(slot, tex, pipeline.BindOptions{})
		}
		e.textures[t.Name] = tex
	}
	return nil
}
