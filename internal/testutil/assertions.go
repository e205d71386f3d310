package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertGlobal checks the value a global variable ended the run with.
func AssertGlobal(t *testing.T, result *HarnessResult, name string, want float32) {
	t.Helper()
	require.NotNil(t, result.App, "app did not start: %v", result.Err)
	got, err := result.App.Engine().Global(name)
	require.NoError(t, err)
	require.Equal(t, want, got, "global %s", name)
}

// AssertLogged checks that the run logged msg.
func AssertLogged(t *testing.T, result *HarnessResult, msg string) {
	t.Helper()
	require.True(t, strings.Contains(result.LogOutput, msg),
		"expected log output to contain %q", msg)
}
