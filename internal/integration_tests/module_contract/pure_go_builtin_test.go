package module_contract_test

import (
	"testing"

	"github.com/specialistvlad/cmdlist/internal/command"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPureGoBuiltinExecution registers a built-in written in Go and checks
// that it sees the invocation context the engine builds.
func TestPureGoBuiltinExecution(t *testing.T) {
	t.Parallel()
	var seen []pipeline.DrawCall
	var post []bool
	module := &testutil.SimpleModule{
		Name: "BuiltInRecordCall",
		Fn: func(c *command.Context) {
			seen = append(seen, c.Call)
			post = append(post, c.Post)
			c.SkipOriginal = true
		},
	}
	workspace := `
section "ShaderOverrideRecorded" {
  lines = "run = BuiltInRecordCall"
}

section "CommandListUnused" {
  lines = "post run = builtinrecordcall"
}

replay {
  event "draw" {
    section        = "ShaderOverrideRecorded"
    index_count    = 36
    instance_count = 2
    first_index    = 6
  }
}
`
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": workspace}, testutil.Options{}, module)
	require.NoError(t, result.Err)

	require.Len(t, seen, 1, "built-ins run in the pre phase unless prefixed")
	assert.Equal(t, pipeline.DrawCall{
		Kind:          pipeline.DrawIndexedInstanced,
		IndexCount:    36,
		InstanceCount: 2,
		FirstIndex:    6,
	}, seen[0])
	assert.Equal(t, []bool{false}, post)
	assert.Empty(t, result.App.Device().Draws(), "the built-in asked to skip the call")
	assert.Contains(t, result.App.Registry().Names(), "BuiltInRecordCall")
}

// TestBuiltinNameCollisionPanics checks that a module cannot shadow a core
// built-in.
func TestBuiltinNameCollisionPanics(t *testing.T) {
	t.Parallel()
	module := &testutil.SimpleModule{Name: "builtinabort", Fn: func(*command.Context) {}}
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": ""}, testutil.Options{}, module)

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "already registered")
}
