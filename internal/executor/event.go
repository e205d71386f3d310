package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/config"
	"github.com/specialistvlad/cmdlist/internal/ctxlog"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/pipeline/sim"
)

// PresentSection is the section a present event runs when it names none.
const PresentSection = "Present"

type telemetryOverride struct {
	t     pipeline.Telemetry
	index int
	value float32
}

type event struct {
	kind      string
	section   string
	call      pipeline.DrawCall
	texture   *sim.Texture
	telemetry []telemetryOverride
}

func (e *Executor) compile(ce *config.Event) (*event, error) {
	ev := &event{kind: ce.Kind, section: ce.Section}
	for name, v := range ce.Telemetry {
		t, index, ok := pipeline.ParseTelemetry(name)
		if !ok {
			return nil, fmt.Errorf("unknown telemetry %q", name)
		}
		ev.telemetry = append(ev.telemetry, telemetryOverride{t: t, index: index, value: v})
	}

	c := ce.Call
	ev.call = pipeline.DrawCall{
		VertexCount:   c.VertexCount,
		IndexCount:    c.IndexCount,
		InstanceCount: c.InstanceCount,
		FirstVertex:   c.FirstVertex,
		FirstIndex:    c.FirstIndex,
		FirstInstance: c.FirstInstance,
		BaseVertex:    c.BaseVertex,
		ThreadGroups:  c.ThreadGroups,
	}
	switch ce.Kind {
	case config.EventDraw:
		ev.call.Kind = drawKind(c)
	case config.EventDispatch:
		ev.call.Kind = pipeline.Dispatch
	case config.EventTexture, config.EventView:
		tex, ok := e.textures[ce.Texture]
		if !ok {
			return nil, fmt.Errorf("unknown texture %q", ce.Texture)
		}
		ev.texture = tex
	case config.EventPresent:
		if ev.section == "" {
			ev.section = PresentSection
		}
	default:
		return nil, fmt.Errorf("unknown event kind %q", ce.Kind)
	}
	return ev, nil
}

func drawKind(c config.Call) pipeline.DrawKind {
	switch {
	case c.IndexCount > 0 && c.InstanceCount > 0:
		return pipeline.DrawIndexedInstanced
	case c.IndexCount > 0:
		return pipeline.DrawIndexed
	case c.InstanceCount > 0:
		return pipeline.DrawInstanced
	}
	return pipeline.Draw
}

// run replays one event: the pre list, the original call unless the pre
// list asked to skip it, then the post list.
func (e *Executor) run(ctx context.Context, ev *event, c *counters) {
	for _, o := range ev.telemetry {
		e.device.SetTelemetry(o.t, o.index, o.value)
	}
	c.events.Add(1)

	invoke := func(post bool) (command.Result, error) {
		switch ev.kind {
		case config.EventTexture:
			return e.engine.RunOnResource(ev.section, ev.texture, post)
		case config.EventView:
			return e.engine.RunOnView(ev.section, sim.NewView(ev.texture), post)
		}
		return e.engine.Run(ev.section, ev.call, post)
	}

	pre, err := invoke(false)
	if err != nil {
		e.fail(ctx, ev, err, c)
		return
	}
	c.observe(pre)

	if ev.kind == config.EventDraw || ev.kind == config.EventDispatch {
		if pre.SkipOriginal {
			c.skipped.Add(1)
		} else {
			e.device.Draw(ev.call)
			c.draws.Add(1)
		}
	}

	post, err := invoke(true)
	if err != nil {
		e.fail(ctx, ev, err, c)
		return
	}
	c.observe(post)
}

func (e *Executor) fail(ctx context.Context, ev *event, err error, c *counters) {
	// A configuration without a Present section is normal.
	if ev.kind == config.EventPresent && errors.Is(err, command.ErrUnknownSection) {
		return
	}
	c.failed.Add(1)
	if _, seen := e.warned.LoadOrStore(ev.section, struct{}{}); !seen {
		ctxlog.FromContext(ctx).Warn("Replay event failed.", "kind", ev.kind, "section", ev.section, "error", err)
	}
}
