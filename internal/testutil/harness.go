package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/cmdlist/internal/app"
	"github.com/specialistvlad/cmdlist/internal/hclconfig"
	"github.com/specialistvlad/cmdlist/internal/registry"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// Options adjust the app configuration a harness run uses.
type Options struct {
	Workers int
	Frames  int
	Reload  bool
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, opts Options, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, opts, modules...)
}

// RunIntegrationTestWithContext writes files into a temporary workspace,
// builds an app with the core modules plus modules, and runs its replay.
// A startup panic is reported through HarnessResult.Err.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts Options, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	workspace := filepath.Join(tmpDir, "workspace")
	require.NoError(t, os.Mkdir(workspace, 0o755))
	for name, content := range files {
		filePath := filepath.Join(workspace, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	workers := opts.Workers
	if workers == 0 {
		workers = 1
	}
	appConfig := &app.Config{
		WorkspacePath: workspace,
		LogLevel:      "debug",
		LogFormat:     "text",
		WorkerCount:   workers,
		Frames:        opts.Frames,
		Reload:        opts.Reload,
	}

	logBuffer := &app.SafeBuffer{}
	all := append(app.CoreModules(), modules...)

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, appConfig, hclconfig.NewLoader(), all...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(ctx)
	if os.Getenv("CMDLIST_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}
	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
