package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateSchemaCache points os.UserCacheDir (via XDG_CACHE_HOME) at a
// fresh temp directory so these tests never touch a real user's schema
// cache.
func isolateSchemaCache(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

func TestSchemaCacheListReportsEmptyCache(t *testing.T) {
	isolateSchemaCache(t)
	stdout, _, code := execRoot("schema", "cache", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "no cached schemas")
}

func TestSchemaCacheClearReportsAlreadyEmpty(t *testing.T) {
	isolateSchemaCache(t)
	stdout, _, code := execRoot("schema", "cache", "clear")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "already empty")
}

func TestPluralEntrySingularAndPlural(t *testing.T) {
	assert.Equal(t, "entry", plural(1))
	assert.Equal(t, "entries", plural(0))
	assert.Equal(t, "entries", plural(2))
}
