package integration_tests

import (
	"testing"

	"github.com/specialistvlad/cmdlist/internal/testutil"
	"github.com/stretchr/testify/require"
)

// Test for: invalid hcl is rejected
func TestErrorHandling_InvalidHCL_IsRejected(t *testing.T) {
	t.Parallel()
	invalidHCL := `
		section "Present" {
			lines = [
		// Missing closing brackets here
	`
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": invalidHCL}, testutil.Options{})

	require.Error(t, result.Err)
	require.Nil(t, result.App)
	require.Contains(t, result.Err.Error(), "application startup panicked")
	require.Contains(t, result.Err.Error(), "failed to load configuration")
}
