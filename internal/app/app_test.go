package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/cmdlist/internal/config"
	"github.com/specialistvlad/cmdlist/internal/ctxlog"
	"github.com/specialistvlad/cmdlist/internal/engine"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hudWorkspace = `section "Constants" {
  lines = <<-EOT
    global persist $presses = 0
    global $frames = 0
    global $skipped = 0
  EOT
}

section "Present" {
  lines = [
    "$frames = $frames + 1",
    "$presses = $presses + 1",
  ]
}

section "ShaderOverrideHUD" {
  lines = <<-EOT
    if ps-t0 == 2
      handling = skip
      $skipped = $skipped + 1
    endif
    run = BuiltInDumpState
  EOT
}

section "TextureOverrideHUD" {
  hash         = "5a1c9e2f"
  filter_index = 2
  lines        = "ResourceBackup = copy this"
}

resource "Backup" {}

replay {
  frames = 3

  texture "HUDTex" {
    hash   = "5a1c9e2f"
    width  = 256
    height = 256
    bind   = ["ps-t0"]
  }

  event "texture" {
    section = "TextureOverrideHUD"
    texture = "HUDTex"
  }

  event "draw" {
    section      = "ShaderOverrideHUD"
    vertex_count = 6
  }

  event "present" {}
}
`

func global(t *testing.T, e *engine.Engine, name string) float32 {
	t.Helper()
	v, err := e.Global(name)
	require.NoError(t, err)
	return v
}

func TestApp_RunReplay(t *testing.T) {
	dir := WriteWorkspace(t, map[string]string{"main.hcl": hudWorkspace})
	a, logs := SetupAppTest(t, &Config{WorkspacePath: dir, WorkerCount: 1})

	require.NoError(t, a.Run(context.Background()))

	e := a.Engine()
	assert.Equal(t, float32(3), global(t, e, "$frames"))
	assert.Equal(t, float32(3), global(t, e, "$skipped"))
	assert.Empty(t, a.Device().Draws())

	report := a.LastReport()
	require.NotNil(t, report)
	assert.Equal(t, 3, report.Frames)
	assert.Equal(t, uint64(9), report.Events)
	assert.Equal(t, uint64(3), report.Skipped)

	backup, ok := e.Program().Resources().Lookup("Backup")
	require.True(t, ok)
	require.NotNil(t, backup.Current())
	assert.Equal(t, uint32(256), backup.Current().Desc().Size.Width)

	out := logs.String()
	assert.Contains(t, out, "run_id=")
	assert.Contains(t, out, "Replay finished.")
	assert.Contains(t, out, "Pipeline state.")
}

func TestApp_ReloadKeepsPersistentGlobals(t *testing.T) {
	dir := WriteWorkspace(t, map[string]string{"main.hcl": hudWorkspace})
	a, logs := SetupAppTest(t, &Config{WorkspacePath: dir, WorkerCount: 1, Frames: 2, Reload: true})

	require.NoError(t, a.Run(context.Background()))

	e := a.Engine()
	assert.Equal(t, float32(4), global(t, e, "$presses"), "persistent counter spans both passes")
	assert.Equal(t, float32(2), global(t, e, "$frames"), "plain counter restarts after the reload")
	assert.Equal(t, uint64(1), e.Stats().Reloads)
	assert.Contains(t, logs.String(), "pass=reloaded")
}

func TestApp_RejectedSectionsAreNotFatal(t *testing.T) {
	dir := WriteWorkspace(t, map[string]string{"main.hcl": `
section "Present" {
  lines = "global $ok = 1"
}

section "CommandListBroken" {
  lines = "run = BuiltInNothing"
}
`})
	a, logs := SetupAppTest(t, &Config{WorkspacePath: dir})
	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, float32(1), global(t, a.Engine(), "$ok"))
	assert.Equal(t, 1, a.Engine().Stats().Rejected)
	assert.Contains(t, logs.String(), "Workspace loaded with rejected sections.")
	assert.Contains(t, logs.String(), "No replay events found")
}

func TestNewApp_PanicsOnBrokenWorkspace(t *testing.T) {
	dir := WriteWorkspace(t, map[string]string{"main.hcl": `section "Present" {`})
	assert.Panics(t, func() {
		SetupAppTest(t, &Config{WorkspacePath: dir})
	})
}

func TestApp_RecursionLimitLayers(t *testing.T) {
	dir := WriteWorkspace(t, map[string]string{
		"main.hcl": `
settings {
  recursion_limit = 6
}

section "CommandListLoop" {
  lines = <<-EOT
    global $depth = 0
    $depth = $depth + 1
    run = CommandListLoop
  EOT
}
`,
		SettingsFile: "[engine]\nrecursion_limit = 4\n",
	})

	tests := []struct {
		name string
		flag int
		want float32
	}{
		{name: "workspace overrides settings file", want: 6},
		{name: "flag overrides workspace", flag: 3, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := SetupAppTest(t, &Config{WorkspacePath: dir, RecursionLimit: tt.flag})
			res, err := a.Engine().Run("CommandListLoop", pipeline.DrawCall{}, false)
			require.NoError(t, err)
			assert.True(t, res.Aborted)
			assert.Equal(t, tt.want, global(t, a.Engine(), "$depth"))
		})
	}
}

func TestApp_HealthEndpoints(t *testing.T) {
	dir := WriteWorkspace(t, map[string]string{"main.hcl": hudWorkspace})
	a, _ := SetupAppTest(t, &Config{WorkspacePath: dir, WorkerCount: 1})
	require.NoError(t, a.Run(context.Background()))
	mux := a.healthMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Engine.Sections)
	require.NotNil(t, body.Replay)
	assert.Equal(t, 3, body.Replay.Frames)
	assert.Contains(t, body.Builtins, "BuiltInDumpState")
	assert.Equal(t, uint64(3), body.Engine.Lists["Present"].Pre.Runs)
}

func TestApp_HealthcheckShutdownError(t *testing.T) {
	dir := WriteWorkspace(t, map[string]string{"main.hcl": hudWorkspace})
	a, logs := SetupAppTest(t, &Config{WorkspacePath: dir, WorkerCount: 1})
	ctx := ctxlog.WithLogger(context.Background(), a.logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	entered := make(chan struct{})
	release := make(chan struct{})
	a.httpServer = &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(entered)
			<-release
		}),
		ReadHeaderTimeout: time.Second,
	}
	go func() { _ = a.httpServer.Serve(ln) }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if resp, err := http.Get("http://" + ln.Addr().String() + "/health"); err == nil {
			_ = resp.Body.Close()
		}
	}()
	<-entered

	a.shutdownTimeout = 20 * time.Millisecond
	err = a.closeHealthcheckServer(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, logs.String(), "Health check server shutdown failed.")

	close(release)
	<-done
	_ = a.httpServer.Close()
}

func TestLoadSettings(t *testing.T) {
	t.Run("missing default file", func(t *testing.T) {
		s, err := LoadSettings("", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, &Settings{}, s)
	})

	t.Run("next to a workspace file", func(t *testing.T) {
		dir := WriteWorkspace(t, map[string]string{
			"main.hcl":   "",
			SettingsFile: "[engine]\nparam_slots = 16\nnegative_truth = true\npool_capacity = 2\n",
		})
		s, err := LoadSettings("", filepath.Join(dir, "main.hcl"))
		require.NoError(t, err)
		truth := true
		assert.Equal(t, EngineSettings{ParamSlots: 16, NegativeTruth: &truth, PoolCapacity: 2}, s.Engine)
	})

	t.Run("explicit missing file", func(t *testing.T) {
		_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.toml"), "")
		require.Error(t, err)
	})

	t.Run("unknown keys", func(t *testing.T) {
		dir := WriteWorkspace(t, map[string]string{SettingsFile: "[engine]\nrecursion = 3\n"})
		_, err := LoadSettings("", dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "engine.recursion")
	})
}

func TestEngineOptions(t *testing.T) {
	truth := false
	file := &Settings{Engine: EngineSettings{RecursionLimit: 10, ParamSlots: 4, NegativeTruth: &truth, PoolCapacity: 8}}
	ws := config.Settings{ParamSlots: 12, NegativeTruth: true}

	got := engineOptions(file, ws, &Config{RecursionLimit: 20})
	assert.Equal(t, engine.Options{RecursionLimit: 20, ParamSlots: 12, NegativeTruth: true, PoolCapacity: 8}, got)
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)
	_, err = NewConfig(Config{WorkspacePath: "x", Frames: -1})
	require.Error(t, err)
	cfg, err := NewConfig(Config{WorkspacePath: "x", WorkerCount: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.WorkerCount)
}
