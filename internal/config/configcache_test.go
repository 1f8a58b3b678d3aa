package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrLoadCompilesFilterAndMappingsTogether(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jvl.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"files": ["src/**", "!src/generated/**"],
		"schemas": [{"path": "s.json", "files": ["*.json"]}]
	}`), 0o644))

	c := NewCache()
	compiled, err := c.GetOrLoad(path, dir)
	require.NoError(t, err)

	assert.True(t, compiled.Filter.Match("src/a.json"))
	assert.False(t, compiled.Filter.Match("src/generated/b.json"))
	assert.False(t, compiled.Filter.Match("other/c.json"))

	_, ok := compiled.Mappings.Resolve("package.json", dir)
	assert.True(t, ok)
}

func TestGetOrLoadCachesUntilInvalidated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jvl.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"files": ["*.json"]}`), 0o644))

	c := NewCache()
	first, err := c.GetOrLoad(path, dir)
	require.NoError(t, err)

	second, err := c.GetOrLoad(path, dir)
	require.NoError(t, err)
	assert.Same(t, first, second)

	c.Invalidate(path)

	third, err := c.GetOrLoad(path, dir)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestGetOrLoadUsesDefaultConfigForEmptyPath(t *testing.T) {
	c := NewCache()
	compiled, err := c.GetOrLoad("", "/does/not/matter")
	require.NoError(t, err)

	assert.Equal(t, Default(), compiled.Config)
	assert.True(t, compiled.Filter.Match("anything.json"))
	assert.False(t, compiled.Config.Strict)
}
