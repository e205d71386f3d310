package integration_tests

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/testutil"
	"github.com/stretchr/testify/require"
)

const counterWorkspace = `
section "Constants" {
  lines = "global $scale = 4"
}

section "ShaderOverrideA" {
  lines = <<-EOT
    local $half = $scale / 2
    if $half == 2
      run = BuiltInCount
    endif
  EOT
}

section "ShaderOverrideB" {
  lines = <<-EOT
    run = CommandListInner
  EOT
}

section "CommandListInner" {
  lines = "pre run = BuiltInCount"
}

replay {
  event "draw" {
    section      = "ShaderOverrideA"
    vertex_count = 3
  }

  event "draw" {
    section      = "ShaderOverrideB"
    vertex_count = 3
  }
}
`

// TestConcurrency_ReplayWorkers replays many frames on several workers;
// every invocation gets its own context, so counts stay exact.
func TestConcurrency_ReplayWorkers(t *testing.T) {
	t.Parallel()
	counter := &testutil.CounterModule{Name: "BuiltInCount"}
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": counterWorkspace},
		testutil.Options{Workers: 8, Frames: 200}, counter)
	require.NoError(t, result.Err)

	require.Equal(t, int64(400), counter.Calls())
	report := result.App.LastReport()
	require.NotNil(t, report)
	require.Equal(t, 200, report.Frames)
	require.Equal(t, uint64(400), report.Draws)
	require.Equal(t, int64(2), report.MaxDepth)
}

// TestConcurrency_InvocationsDuringReload runs sections from many
// goroutines while the workspace is reloaded underneath them.
func TestConcurrency_InvocationsDuringReload(t *testing.T) {
	t.Parallel()
	counter := &testutil.CounterModule{Name: "BuiltInCount"}
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": counterWorkspace},
		testutil.Options{Frames: 1}, counter)
	require.NoError(t, result.Err)
	before := counter.Calls()

	eng := result.App.Engine()
	const goroutines, runs = 8, 50
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < runs; i++ {
				section := fmt.Sprintf("ShaderOverride%c", 'A'+rune(i%2))
				if _, err := eng.Run(section, pipeline.DrawCall{Kind: pipeline.Draw}, false); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, result.App.Reload(context.Background()))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, before+goroutines*runs, counter.Calls())
	require.Equal(t, uint64(5), eng.Stats().Reloads)
}
