package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/cmdlist/internal/config"
	"github.com/specialistvlad/cmdlist/internal/ctxlog"
	"github.com/specialistvlad/cmdlist/internal/engine"
	"github.com/specialistvlad/cmdlist/internal/executor"
	"github.com/specialistvlad/cmdlist/internal/pipeline/sim"
	"github.com/specialistvlad/cmdlist/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	cfg      *Config
	loader   config.Loader
	registry *registry.Registry
	settings *Settings
	device   *sim.Device
	engine   *engine.Engine

	mu    sync.Mutex
	model *config.Model

	report          atomic.Pointer[executor.Report]
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, registry and
// engine, and the workspace already loaded. Sections rejected by the engine
// are logged, not fatal.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	settings, err := LoadSettings(cfg.SettingsPath, cfg.WorkspacePath)
	if err != nil {
		panic(err)
	}

	// Load all configuration into the format-agnostic model first.
	model, err := loader.Load(ctx, cfg.WorkspacePath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.", "sections", len(model.Sections))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "builtins", reg.Len())

	if err := reg.ValidateRegistry(ctx); err != nil {
		// A broken built-in is a programmer error, so we panic.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	opts := engineOptions(settings, model.Settings, cfg)
	device := sim.New(sim.Options{ParamSlots: opts.ParamSlots})
	eng := engine.New(device, reg, opts, logger)

	a := &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfg,
		loader:   loader,
		registry: reg,
		settings: settings,
		device:   device,
		engine:   eng,
		model:    model,

		shutdownTimeout: 5 * time.Second,
	}
	a.load(ctx, model)
	return a
}

// load hands model to the engine. Rejected sections leave the rest of the
// program running.
func (a *App) load(ctx context.Context, model *config.Model) {
	err := a.engine.Load(ctx, model)
	var loadErr *engine.LoadError
	if errors.As(err, &loadErr) {
		ctxlog.FromContext(ctx).Warn("Workspace loaded with rejected sections.", "rejected", len(loadErr.Errs))
	}
}

// Reload re-reads the workspace from disk and swaps the engine program.
// Persistent globals keep their values.
func (a *App) Reload(ctx context.Context) error {
	model, err := a.loader.Load(ctx, a.cfg.WorkspacePath)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	a.load(ctx, model)
	a.mu.Lock()
	a.model = model
	a.mu.Unlock()
	return nil
}

// Registry returns the application's built-in catalog. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Device returns the simulated device the replay drives.
func (a *App) Device() *sim.Device {
	return a.device
}

func (a *App) currentModel() *config.Model {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.model
}
