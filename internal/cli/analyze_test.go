package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/projected-source/internal/config"
	"github.com/mvp-joe/projected-source/internal/extract"
)

func TestBuildFileReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "calc.cpp")
	require.NoError(t, os.WriteFile(path, []byte(`int add(int a, int b) {
    //@@start sum
    return a + b;
    //@@end sum
}
`), 0o644))

	runner, err := extract.NewRunner(config.ExtractConfig{Workers: 1})
	require.NoError(t, err)
	t.Cleanup(runner.Close)

	summary := runner.Run(context.Background(), []string{path}, nil)
	require.Len(t, summary.Results, 1)

	report := buildFileReport(summary.Results[0])
	assert.Equal(t, path, report.Path)
	assert.Empty(t, report.Error)

	require.Len(t, report.Declarations, 1)
	assert.Equal(t, "add", report.Declarations[0].Name)
	assert.Equal(t, "free-function", report.Declarations[0].Kind)
	assert.Equal(t, 1, report.Declarations[0].StartLine)
	assert.Equal(t, 5, report.Declarations[0].EndLine)

	require.Len(t, report.Regions, 1)
	assert.Equal(t, "sum", report.Regions[0].ID)
}

func TestBuildFileReport_Error(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "broken.cpp")
	require.NoError(t, os.WriteFile(path, []byte("//@@start dangling\nint f() { return 1; }\n"), 0o644))

	runner, err := extract.NewRunner(config.ExtractConfig{Workers: 1})
	require.NoError(t, err)
	t.Cleanup(runner.Close)

	summary := runner.Run(context.Background(), []string{path}, nil)
	require.Len(t, summary.Results, 1)

	report := buildFileReport(summary.Results[0])
	assert.Contains(t, report.Error, "dangling")
	assert.Empty(t, report.Declarations)
}
