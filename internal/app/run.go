package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/specialistvlad/cmdlist/internal/ctxlog"
	"github.com/specialistvlad/cmdlist/internal/executor"
)

// Run replays the workspace's scripted frames against the engine. With
// Config.Reload set it then reloads the workspace and replays again.
func (a *App) Run(ctx context.Context) (err error) {
	logger := a.logger.With("run_id", uuid.New().String())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.")

	if a.cfg.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.cfg.HealthcheckPort)
		defer func() {
			if closeErr := a.closeHealthcheckServer(ctx); closeErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to stop health check server: %w", closeErr))
			}
		}()
	}

	logger.Info("Built-ins registered.", "count", a.registry.Len(), "names", a.registry.Names())

	if err := a.replay(ctx, "initial"); err != nil {
		return err
	}
	if a.cfg.Reload {
		logger.Info("Reloading workspace.")
		if err := a.Reload(ctx); err != nil {
			return err
		}
		if err := a.replay(ctx, "reloaded"); err != nil {
			return err
		}
	}

	logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) replay(ctx context.Context, pass string) error {
	logger := ctxlog.FromContext(ctx).With("pass", pass)
	model := a.currentModel()
	if model.Replay == nil || len(model.Replay.Events) == 0 {
		logger.Warn("No replay events found, execution not required.")
		return nil
	}

	x, err := executor.New(a.engine, a.device, model.Replay, a.cfg.WorkerCount)
	if err != nil {
		return fmt.Errorf("failed to prepare replay: %w", err)
	}

	logger.Info("Starting replay.", "frames", a.frames(model.Replay.Frames), "workers", a.cfg.WorkerCount)
	report, err := x.Execute(ctxlog.WithLogger(ctx, logger), a.cfg.Frames)
	a.report.Store(&report)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}
	logger.Info("Replay finished.",
		"frames", report.Frames,
		"events", report.Events,
		"draws", report.Draws,
		"skipped", report.Skipped,
		"aborted", report.Aborted,
		"failed", report.Failed,
		"max_depth", report.MaxDepth,
	)
	return nil
}

func (a *App) frames(configured int) int {
	if a.cfg.Frames > 0 {
		return a.cfg.Frames
	}
	return max(configured, 1)
}

// LastReport returns the report of the most recent replay, or nil.
func (a *App) LastReport() *executor.Report {
	return a.report.Load()
}
