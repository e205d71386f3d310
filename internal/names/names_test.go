package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "commandlistfoo", Fold("CommandListFoo"))
	assert.Equal(t, "$x", Fold("  $X "))
	assert.True(t, Equal("ResourceBackup", "resourcebackup"))
	assert.False(t, Equal("a", "b"))
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("CustomShaderBlur", "customshader"))
	assert.False(t, HasPrefix("Custom", "customshader"))
	assert.False(t, HasPrefix("CommandListX", "customshader"))
}
