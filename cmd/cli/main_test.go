package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// A syntax error in the workspace makes app.NewApp panic while loading.
	invalidHCL := `
		section "Present" {
			lines = [
		// Missing closing brackets here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0600), "failed to set up test file")

	out := &bytes.Buffer{}
	runErr := run(context.Background(), out, []string{filePath})

	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	require.Contains(t, runErr.Error(), "application startup panicked")
	require.Contains(t, runErr.Error(), "failed to load configuration")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_Replay(t *testing.T) {
	t.Parallel()

	workspace := `
section "Present" {
  lines = <<-EOT
    global persist $frames = 0
    $frames = $frames + 1
    run = BuiltInDumpState
  EOT
}

replay {
  frames = 2
  event "present" {}
}
`
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.hcl"), []byte(workspace), 0600))

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-log-format", "json", "-reload", tempDir})

	require.NoError(t, err)
	require.Contains(t, out.String(), `"msg":"Replay finished."`)
	require.Contains(t, out.String(), `"pass":"reloaded"`)
	require.Contains(t, out.String(), `"msg":"Pipeline state."`)
}
