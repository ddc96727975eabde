package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Contains(t, cfg.Paths.Sources, "**/*.cpp")
	assert.Contains(t, cfg.Paths.Templates, "**/*.md.tmpl")
	assert.Equal(t, 0, cfg.Extract.Workers)
	assert.Equal(t, 1024, cfg.Extract.CacheEntries)
	assert.Equal(t, "docs", cfg.Render.OutputDir)
	assert.Equal(t, "origin", cfg.Git.Remote)

	require.NoError(t, Validate(cfg))
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	root := t.TempDir()

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Paths.Sources, cfg.Paths.Sources)
	assert.False(t, cfg.Extract.FailFast)
}

func TestLoad_ConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".projected"), 0o755))

	yml := `
paths:
  sources:
    - "src/**/*.cpp"
extract:
  workers: 4
  fail_fast: true
render:
  output_dir: out
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".projected", "config.yml"), []byte(yml), 0o644))

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/**/*.cpp"}, cfg.Paths.Sources)
	assert.Equal(t, 4, cfg.Extract.Workers)
	assert.True(t, cfg.Extract.FailFast)
	assert.Equal(t, "out", cfg.Render.OutputDir)

	// Untouched sections keep defaults.
	assert.Equal(t, "origin", cfg.Git.Remote)
}

func TestLoad_EnvOverride(t *testing.T) {
	root := t.TempDir()
	t.Setenv("PROJECTED_EXTRACT_WORKERS", "8")
	t.Setenv("PROJECTED_RENDER_OUTPUT_DIR", "rendered")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Extract.Workers)
	assert.Equal(t, "rendered", cfg.Render.OutputDir)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Paths.Sources = nil
	cfg.Extract.Workers = -1
	cfg.Render.OutputDir = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSourcePatterns)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
	assert.ErrorIs(t, err, ErrEmptyOutputDir)
}
