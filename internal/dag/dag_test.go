package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("Present")
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["Present"]
	require.True(t, ok)
	assert.Equal(t, "Present", nodeA.id)
	assert.NotNil(t, nodeA.callees)
	assert.NotNil(t, nodeA.callers)

	g.AddNode("Present") // Test idempotency
	assert.Len(t, g.nodes, 1)

	g.AddNode("CommandListHUD")
	assert.Len(t, g.nodes, 2)
	_, ok = g.nodes["CommandListHUD"]
	assert.True(t, ok)
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("Present")
		g.AddNode("CommandListHUD")

		err := g.AddEdge("Present", "CommandListHUD") // Present runs CommandListHUD
		require.NoError(t, err)

		nodeA := g.nodes["Present"]
		nodeB := g.nodes["CommandListHUD"]

		assert.Contains(t, nodeA.callees, "CommandListHUD")
		assert.Equal(t, nodeB, nodeA.callees["CommandListHUD"])
		assert.Contains(t, nodeB.callers, "Present")
		assert.Equal(t, nodeA, nodeB.callers["Present"])

		callees, err := g.Callees("Present")
		require.NoError(t, err)
		assert.Equal(t, []string{"CommandListHUD"}, callees)
		callers, err := g.Callers("CommandListHUD")
		require.NoError(t, err)
		assert.Equal(t, []string{"Present"}, callers)
	})

	t.Run("self edge", func(t *testing.T) {
		g := New()
		g.AddNode("Present")
		require.NoError(t, g.AddEdge("Present", "Present"))

		var cycle *CycleError
		require.ErrorAs(t, g.DetectCycles(), &cycle)
		assert.Equal(t, []string{"Present", "Present"}, cycle.Path)
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("Present")
		g.AddNode("CommandListHUD")

		err := g.AddEdge("dne", "Present")
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("Present", "dne")
		assert.ErrorContains(t, err, "destination node not found")

		_, err = g.Callees("dne")
		assert.ErrorContains(t, err, "node not found")
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		g := New()
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("graph with nodes but no edges has no cycles", func(t *testing.T) {
		g := New()
		g.AddNode("Present")
		g.AddNode("CommandListHUD")
		g.AddNode("CustomShaderBlur")
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := New()
		g.AddNode("Present")
		g.AddNode("CommandListHUD")
		g.AddNode("CustomShaderBlur")
		g.AddNode("ShaderOverrideUI")
		require.NoError(t, g.AddEdge("Present", "CommandListHUD"))
		require.NoError(t, g.AddEdge("CommandListHUD", "CustomShaderBlur"))
		require.NoError(t, g.AddEdge("Present", "CustomShaderBlur")) // Transitive edge
		require.NoError(t, g.AddEdge("CustomShaderBlur", "ShaderOverrideUI"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("simple direct cycle is detected", func(t *testing.T) {
		g := New()
		g.AddNode("Present")
		g.AddNode("CommandListHUD")
		require.NoError(t, g.AddEdge("Present", "CommandListHUD"))
		require.NoError(t, g.AddEdge("CommandListHUD", "Present")) // Cycle
		err := g.DetectCycles()
		assert.Error(t, err)
		assert.ErrorContains(t, err, "cycle detected")
		assert.ErrorContains(t, err, "CommandListHUD -> Present -> CommandListHUD")
	})

	t.Run("longer cycle is detected", func(t *testing.T) {
		g := New()
		g.AddNode("Present")
		g.AddNode("CommandListHUD")
		g.AddNode("CustomShaderBlur")
		g.AddNode("ShaderOverrideUI")
		require.NoError(t, g.AddEdge("Present", "CommandListHUD"))
		require.NoError(t, g.AddEdge("CommandListHUD", "CustomShaderBlur"))
		require.NoError(t, g.AddEdge("CustomShaderBlur", "ShaderOverrideUI"))
		require.NoError(t, g.AddEdge("ShaderOverrideUI", "Present")) // Cycle back to the start
		err := g.DetectCycles()
		assert.Error(t, err)
		assert.ErrorContains(t, err, "cycle detected")
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := New()
		// Component 1 (valid)
		g.AddNode("Present")
		g.AddNode("CommandListHUD")
		require.NoError(t, g.AddEdge("Present", "CommandListHUD"))

		// Component 2 (has a cycle)
		g.AddNode("x")
		g.AddNode("y")
		g.AddNode("z")
		require.NoError(t, g.AddEdge("x", "y"))
		require.NoError(t, g.AddEdge("y", "z"))
		require.NoError(t, g.AddEdge("z", "y")) // Cycle

		err := g.DetectCycles()
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"y", "z", "y"}, cycle.Path)
	})
}
