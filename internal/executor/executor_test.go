package executor

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/specialistvlad/cmdlist/internal/config"
	"github.com/specialistvlad/cmdlist/internal/ctxlog"
	"github.com/specialistvlad/cmdlist/internal/engine"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/pipeline/sim"
	"github.com/specialistvlad/cmdlist/internal/registry"
	"github.com/specialistvlad/cmdlist/modules/handling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	ctx    context.Context
	dev    *sim.Device
	engine *engine.Engine
	logs   *bytes.Buffer
}

func newHarness(t *testing.T, model *config.Model) *harness {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	r := registry.New()
	(&handling.Module{}).Register(r)
	dev := sim.New(sim.Options{Width: 320, Height: 200})
	eng := engine.New(dev, r, engine.Options{}, logger)
	require.NoError(t, eng.Load(ctx, model))
	return &harness{ctx: ctx, dev: dev, engine: eng, logs: logs}
}

func section(name, body string) *config.Section {
	return &config.Section{Name: name, Body: body, File: "replay.hcl", Line: 1}
}

func hudModel() *config.Model {
	filter := float32(2)
	hud := section("TextureOverrideHUD", "global $seen = 0\n$seen = $seen + 1")
	hud.Hash = "5a1c9e2f"
	hud.FilterIndex = &filter
	return &config.Model{
		Sections: []*config.Section{
			hud,
			section("ShaderOverrideHUD", "global $filter = 0\n$filter = ps-t0\nif $filter == 2\nhandling = skip\nendif\npost $after = vertex_count"),
			section("Present", "global $frames = 0\nglobal $after = 0\n$frames = $frames + 1\nglobal $time = 0\n$time = time"),
		},
		Replay: &config.Replay{
			Frames: 3,
			Textures: []*config.Texture{
				{Name: "HUDTex", Hash: "5A1C9E2F", Width: 64, Height: 64, Format: "rgba8unorm", Bind: []string{"ps-t0"}},
			},
			Events: []*config.Event{
				{Kind: config.EventTexture, Section: "TextureOverrideHUD", Texture: "HUDTex"},
				{Kind: config.EventDraw, Section: "ShaderOverrideHUD", Call: config.Call{VertexCount: 6}},
				{Kind: config.EventPresent, Telemetry: map[string]float32{"time": 12.5}},
			},
		},
	}
}

func global(t *testing.T, e *engine.Engine, name string) float32 {
	t.Helper()
	v, err := e.Global(name)
	require.NoError(t, err)
	return v
}

func TestExecutor_Replay(t *testing.T) {
	model := hudModel()
	h := newHarness(t, model)
	x, err := New(h.engine, h.dev, model.Replay, 1)
	require.NoError(t, err)

	report, err := x.Execute(h.ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, Report{Frames: 3, Events: 9, Draws: 0, Skipped: 3, MaxDepth: 2}, report)
	assert.Equal(t, float32(3), global(t, h.engine, "$seen"))
	assert.Equal(t, float32(2), global(t, h.engine, "$filter"))
	assert.Equal(t, float32(6), global(t, h.engine, "$after"))
	assert.Equal(t, float32(3), global(t, h.engine, "$frames"))
	assert.Equal(t, float32(12.5), global(t, h.engine, "$time"))
	assert.Empty(t, h.dev.Draws(), "the skipped draw never reaches the device")

	tex, ok := x.Texture("HUDTex")
	require.True(t, ok)
	slot, _ := pipeline.ParseSlot("ps-t0")
	assert.Same(t, tex, h.dev.Bound(slot))
}

func TestExecutor_ConcurrentWorkers(t *testing.T) {
	model := &config.Model{
		Sections: []*config.Section{
			section("Constants", "global $draws = 0"),
			section("ShaderOverrideCounter", "$draws = $draws + 1"),
		},
		Replay: &config.Replay{Events: []*config.Event{
			{Kind: config.EventDraw, Section: "ShaderOverrideCounter", Call: config.Call{IndexCount: 3}},
			{Kind: config.EventDispatch, Section: "ShaderOverrideCounter", Call: config.Call{ThreadGroups: [3]uint32{8, 8, 1}}},
		}},
	}
	h := newHarness(t, model)
	x, err := New(h.engine, h.dev, model.Replay, 8)
	require.NoError(t, err)

	report, err := x.Execute(h.ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, report.Frames)
	assert.Equal(t, uint64(100), report.Draws)
	// Unprefixed assignments run in the pre phase only.
	lists := h.engine.Stats().Lists["ShaderOverrideCounter"]
	assert.Equal(t, uint64(100), lists.Pre.Runs)
	assert.Equal(t, uint64(100), lists.Post.Runs)

	kinds := map[pipeline.DrawKind]int{}
	for _, d := range h.dev.Draws() {
		kinds[d.Kind]++
	}
	assert.Equal(t, map[pipeline.DrawKind]int{pipeline.DrawIndexed: 50, pipeline.Dispatch: 50}, kinds)
}

func TestExecutor_ReloadReregistersOverrides(t *testing.T) {
	model := hudModel()
	h := newHarness(t, model)
	x, err := New(h.engine, h.dev, model.Replay, 2)
	require.NoError(t, err)
	_, err = x.Execute(h.ctx, 1)
	require.NoError(t, err)

	tex, _ := x.Texture("HUDTex")
	assert.Equal(t, []string{"TextureOverrideHUD"}, h.dev.MatchOverrides(tex))

	model.Sections[0].Name = "TextureOverrideRenamed"
	require.NoError(t, h.engine.Load(h.ctx, model))
	x.RegisterOverrides()
	assert.Equal(t, []string{"TextureOverrideRenamed"}, h.dev.MatchOverrides(tex))
}

func TestExecutor_FailedEvents(t *testing.T) {
	model := &config.Model{
		Sections: []*config.Section{section("ShaderOverrideOK", "handling = abort")},
		Replay: &config.Replay{Events: []*config.Event{
			{Kind: config.EventDraw, Section: "ShaderOverrideMissing"},
			{Kind: config.EventDraw, Section: "ShaderOverrideOK"},
			{Kind: config.EventPresent},
		}},
	}
	h := newHarness(t, model)
	x, err := New(h.engine, h.dev, model.Replay, 1)
	require.NoError(t, err)

	report, err := x.Execute(h.ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), report.Failed)
	// An abort does not cancel the original call.
	assert.Equal(t, uint64(2), report.Aborted)
	assert.Equal(t, uint64(2), report.Draws)
	assert.Equal(t, 1, bytes.Count(h.logs.Bytes(), []byte("Replay event failed.")))
}

func TestExecutor_Cancelled(t *testing.T) {
	model := hudModel()
	h := newHarness(t, model)
	x, err := New(h.engine, h.dev, model.Replay, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(h.ctx)
	cancel()
	report, err := x.Execute(ctx, 10)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, report.Frames, 10)
}

func TestNew_Errors(t *testing.T) {
	dev := sim.New(sim.Options{})
	tests := []struct {
		name   string
		replay *config.Replay
		want   string
	}{
		{
			name:   "bad format",
			replay: &config.Replay{Textures: []*config.Texture{{Name: "T", Format: "rgb565"}}},
			want:   "unknown texture format",
		},
		{
			name:   "bad slot",
			replay: &config.Replay{Textures: []*config.Texture{{Name: "T", Format: "rgba8unorm", Bind: []string{"ps-q0"}}}},
			want:   "invalid bind slot",
		},
		{
			name: "bad telemetry",
			replay: &config.Replay{Events: []*config.Event{
				{Kind: config.EventDraw, Section: "S", Telemetry: map[string]float32{"fps": 60}},
			}},
			want: `unknown telemetry "fps"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil, dev, tt.replay, 1)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
