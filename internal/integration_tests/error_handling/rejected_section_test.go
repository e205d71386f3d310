package integration_tests

import (
	"testing"

	"github.com/specialistvlad/cmdlist/internal/testutil"
	"github.com/stretchr/testify/require"
)

// TestErrorHandling_RejectedSectionKeepsOthers checks that a section with a
// bad line is dropped on its own, with its file and line in the log, while
// the rest of the workspace keeps running.
func TestErrorHandling_RejectedSectionKeepsOthers(t *testing.T) {
	t.Parallel()
	workspace := `
section "Constants" {
  lines = "global $frames = 0"
}

section "CommandListBroken" {
  lines = <<-EOT
    global $never = 1
    $frames = $frames +
  EOT
}

section "Present" {
  lines = <<-EOT
    $frames = $frames + 1
    run = CommandListBroken
  EOT
}

replay {
  frames = 2
  event "present" {}
}
`
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": workspace}, testutil.Options{})
	require.NoError(t, result.Err)

	testutil.AssertGlobal(t, result, "$frames", 2)
	testutil.AssertLogged(t, result, "Section rejected.")
	testutil.AssertLogged(t, result, "main.hcl:9")
	testutil.AssertLogged(t, result, "Invoked section is not loaded.")

	_, err := result.App.Engine().Global("$never")
	require.Error(t, err, "globals of a rejected section are not committed")
}
