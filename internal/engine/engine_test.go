package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/config"
	"github.com/specialistvlad/cmdlist/internal/ctxlog"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/pipeline/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *sim.Device, context.Context, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	dev := sim.New(sim.Options{Width: 64, Height: 32})
	e := New(dev, nil, Options{RecursionLimit: 16, PoolCapacity: 4}, logger)
	return e, dev, ctxlog.WithLogger(context.Background(), logger), logs
}

func section(name, body string) *config.Section {
	return &config.Section{Name: name, Body: body, File: "test.hcl", Line: 1}
}

func TestEngine_NotLoaded(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	_, err := e.Run("Present", pipeline.DrawCall{}, false)
	require.ErrorIs(t, err, ErrNotLoaded)
	assert.Nil(t, e.Overrides())
	assert.Zero(t, e.Stats().Sections)
}

func TestEngine_GlobalsSharedAcrossSections(t *testing.T) {
	e, _, ctx, _ := newTestEngine(t)
	model := &config.Model{Sections: []*config.Section{
		section("Constants", "global $frames = 0\nglobal $scale = 2"),
		section("Present", "$frames = $frames + 1\nrun = CommandListDouble"),
		section("CommandListDouble", "$scale = $scale * 2"),
	}}
	require.NoError(t, e.Load(ctx, model))

	for range 3 {
		res, err := e.Run("present", pipeline.DrawCall{}, false)
		require.NoError(t, err)
		assert.False(t, res.Aborted)
	}
	frames, err := e.Global("$frames")
	require.NoError(t, err)
	assert.Equal(t, float32(3), frames)
	scale, err := e.Global("$scale")
	require.NoError(t, err)
	assert.Equal(t, float32(16), scale)
}

func TestEngine_EmptySection(t *testing.T) {
	e, _, ctx, _ := newTestEngine(t)
	model := &config.Model{Sections: []*config.Section{
		section("CommandListEmpty", ""),
		section("Present", "global $n = 0\nrun = CommandListEmpty\n$n = $n + 1"),
	}}
	require.NoError(t, e.Load(ctx, model))

	s, ok := e.Program().Section("CommandListEmpty")
	require.True(t, ok)
	assert.Zero(t, s.Pre.Len())
	assert.Zero(t, s.Post.Len())

	res, err := e.Run("Present", pipeline.DrawCall{}, false)
	require.NoError(t, err)
	assert.False(t, res.Aborted)
	n, err := e.Global("$n")
	require.NoError(t, err)
	assert.Equal(t, float32(1), n)
}

func TestEngine_ForwardGlobalReference(t *testing.T) {
	e, _, ctx, _ := newTestEngine(t)
	model := &config.Model{Sections: []*config.Section{
		section("Present", "$late = 5"),
		section("Constants", "global $late = 1"),
	}}
	require.NoError(t, e.Load(ctx, model))
	assert.Len(t, e.Program().Sections(), 2)

	_, err := e.Run("Present", pipeline.DrawCall{}, false)
	require.NoError(t, err)
	v, err := e.Global("$late")
	require.NoError(t, err)
	assert.Equal(t, float32(5), v)
}

func TestEngine_ConstantsRunOnLoad(t *testing.T) {
	e, _, ctx, _ := newTestEngine(t)
	model := &config.Model{Sections: []*config.Section{
		section("Constants", "global $w = 0\n$w = res_width"),
	}}
	require.NoError(t, e.Load(ctx, model))
	v, err := e.Global("$w")
	require.NoError(t, err)
	assert.Equal(t, float32(64), v)
}

func TestEngine_PersistAcrossReload(t *testing.T) {
	e, _, ctx, _ := newTestEngine(t)
	model := func() *config.Model {
		return &config.Model{Sections: []*config.Section{
			section("Constants", "global persist $toggle = 0\nglobal $plain = 0"),
			section("KeyToggle", "$toggle = 1 - $toggle\n$plain = 7"),
		}}
	}
	require.NoError(t, e.Load(ctx, model()))
	_, err := e.Run("KeyToggle", pipeline.DrawCall{}, false)
	require.NoError(t, err)

	require.NoError(t, e.Load(ctx, model()))

	toggle, err := e.Global("$toggle")
	require.NoError(t, err)
	assert.Equal(t, float32(1), toggle, "persistent value survives the reload")
	plain, err := e.Global("$plain")
	require.NoError(t, err)
	assert.Equal(t, float32(0), plain, "non-persistent value is re-initialized")
	assert.Equal(t, uint64(1), e.Stats().Reloads)
}

func TestEngine_PersistOverridesConstants(t *testing.T) {
	e, _, ctx, _ := newTestEngine(t)
	model := &config.Model{Sections: []*config.Section{
		section("Constants", "global persist $mode = 0\n$mode = 2"),
		section("KeyMode", "$mode = 5"),
	}}
	require.NoError(t, e.Load(ctx, model))
	_, err := e.Run("KeyMode", pipeline.DrawCall{}, false)
	require.NoError(t, err)
	require.NoError(t, e.Load(ctx, model))

	mode, err := e.Global("$mode")
	require.NoError(t, err)
	assert.Equal(t, float32(5), mode)
}

func TestEngine_InFlightProgramSurvivesReload(t *testing.T) {
	e, _, ctx, _ := newTestEngine(t)
	require.NoError(t, e.Load(ctx, &config.Model{Sections: []*config.Section{
		section("Present", "global $n = 1"),
	}}))
	old := e.Program()

	require.NoError(t, e.Load(ctx, &config.Model{Sections: []*config.Section{
		section("Present", "global $m = 1"),
	}}))
	_, ok := old.Section("Present")
	assert.True(t, ok, "old program is untouched")
	_, err := old.Globals().Get("$n")
	assert.NoError(t, err)
	_, err = e.Global("$n")
	assert.Error(t, err)
}

func TestEngine_LoadErrors(t *testing.T) {
	e, _, ctx, logs := newTestEngine(t)
	model := &config.Model{
		Sections: []*config.Section{
			section("Present", "global $ok = 1"),
			section("CommandListBad", "if $ok\n$ok = 2"),
			section("CommandListWorse", "$missing = 1"),
			section("CommandListTypo", "frobnicate = 1"),
		},
		Resources: []*config.Resource{
			{Name: "Good", Type: "texture2d", Format: "rgba8unorm"},
			{Name: "Bad", Type: "texture3d"},
		},
	}
	err := e.Load(ctx, model)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Len(t, loadErr.Errs, 4)
	assert.ErrorIs(t, err, command.ErrUnknownDirective)

	var parseErr *command.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "test.hcl", parseErr.Line.File)

	// The rest of the program is still published.
	_, err = e.Run("Present", pipeline.DrawCall{}, false)
	require.NoError(t, err)
	_, err = e.Run("CommandListBad", pipeline.DrawCall{}, false)
	require.ErrorIs(t, err, command.ErrUnknownSection)
	_, ok := e.Program().Resources().Lookup("Good")
	assert.True(t, ok)

	assert.Equal(t, 4, e.Stats().Rejected)
	assert.Contains(t, logs.String(), "Section rejected.")
}

func TestEngine_CycleWarning(t *testing.T) {
	e, _, ctx, logs := newTestEngine(t)
	model := &config.Model{Sections: []*config.Section{
		section("CommandListPing", "global $depth = 0\n$depth = $depth + 1\nrun = CommandListPong"),
		section("CommandListPong", "run = CommandListPing"),
	}}
	require.NoError(t, e.Load(ctx, model))
	assert.Contains(t, logs.String(), "cycle detected")

	res, err := e.Run("CommandListPing", pipeline.DrawCall{}, false)
	require.NoError(t, err)
	assert.True(t, res.Aborted)
	depth, err := e.Global("$depth")
	require.NoError(t, err)
	assert.Equal(t, float32(8), depth)
}

func TestEngine_RunOnResourceAndView(t *testing.T) {
	e, dev, ctx, _ := newTestEngine(t)
	model := &config.Model{
		Sections: []*config.Section{
			section("TextureOverrideHUD", "global $hits = 0\n$hits = $hits + 1\nResourceSaved = copy this"),
		},
		Resources: []*config.Resource{{Name: "Saved"}},
	}
	model.Sections[0].Hash = "5a1c9e2f"
	require.NoError(t, e.Load(ctx, model))

	tex := sim.NewTexture("HUD", "5a1c9e2f", pipeline.Texture2D(8, 8, gputypes.TextureFormatRGBA8Unorm))
	_, err := e.RunOnResource("TextureOverrideHUD", tex, false)
	require.NoError(t, err)
	_, err = e.RunOnView("TextureOverrideHUD", sim.NewView(tex), false)
	require.NoError(t, err)

	hits, err := e.Global("$hits")
	require.NoError(t, err)
	assert.Equal(t, float32(2), hits)
	saved, _ := e.Program().Resources().Lookup("Saved")
	require.NotNil(t, saved.Current())
	assert.Equal(t, 1, dev.Created())
	assert.Equal(t, []Override{{Section: "TextureOverrideHUD", Hash: "5a1c9e2f"}}, e.Overrides())
}

func TestEngine_StatsJSON(t *testing.T) {
	e, _, ctx, _ := newTestEngine(t)
	require.NoError(t, e.Load(ctx, &config.Model{Sections: []*config.Section{
		section("Present", "global $inf = 1 / 0\nglobal $one = 1"),
	}}))
	_, err := e.Run("Present", pipeline.DrawCall{}, false)
	require.NoError(t, err)

	data, err := json.Marshal(e.Stats())
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	globals := decoded["globals"].(map[string]any)
	assert.Equal(t, "+Inf", globals["$inf"])
	assert.Equal(t, float64(1), globals["$one"])
	lists := decoded["lists"].(map[string]any)
	assert.Contains(t, lists, "Present")
}

func TestLoadError_Unwrap(t *testing.T) {
	sentinel := errors.New("boom")
	err := error(&LoadError{Errs: []error{errors.New("other"), sentinel}})
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "2 section(s) rejected")
}
