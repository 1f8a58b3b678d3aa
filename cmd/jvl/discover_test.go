package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigForCheckFallsBackToDefaultsWhenNothingFound(t *testing.T) {
	dir := t.TempDir()
	cfg, path, root, err := loadConfigForCheck("", dir)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, dir, root)
	assert.NotEmpty(t, cfg.Files)
}

func TestLoadConfigForCheckAutoDiscoversUpwards(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jvl.json"), []byte(`{"files": ["*.json"]}`), 0o644))

	cfg, path, root, err := loadConfigForCheck("", sub)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "jvl.json"), path)
	assert.Equal(t, dir, root)
	assert.Equal(t, []string{"*.json"}, cfg.Files)
}

func TestLoadConfigForCheckReturnsErrorForBadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	_, _, _, err := loadConfigForCheck(filepath.Join(dir, "missing.json"), dir)
	assert.Error(t, err)
}

func TestResolveCheckTargetsDiscoversFromCwdWhenNoArgsGiven(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte(`x`), 0o644))

	cfg, _, _, err := loadConfigForCheck("", dir)
	require.NoError(t, err)

	files, _, err := resolveCheckTargets(nil, dir, dir, cfg, &checkFlags{format: "human"}, os.Stderr)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "a.json"), files[0])
}

func TestResolveCheckTargetsWalksExplicitSubdirectoryRelativeToProjectRoot(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.json"), []byte(`{}`), 0o644))

	cfg, _, _, err := loadConfigForCheck("", dir)
	require.NoError(t, err)
	cfg.Files = []string{"src/**/*.json"}

	files, _, err := resolveCheckTargets([]string{sub}, dir, dir, cfg, &checkFlags{format: "human"}, os.Stderr)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(sub, "a.json"), files[0])
}

func TestResolveCheckTargetsTreatsExplicitFileArgsAsIs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "only.json"), []byte(`{}`), 0o644))

	cfg, _, _, err := loadConfigForCheck("", dir)
	require.NoError(t, err)

	files, _, err := resolveCheckTargets([]string{"only.json"}, dir, dir, cfg, &checkFlags{format: "human"}, os.Stderr)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "only.json", files[0])
}
