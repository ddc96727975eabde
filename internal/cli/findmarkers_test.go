package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const markedSource = `int compute(int a) {
    //@@start body
    return a * 2;
    //@@end body
}
// a comment mentioning //@@start inline does not count
int other() { return 0; } //@@start trailing
`

func TestScanMarkerLines(t *testing.T) {
	t.Parallel()

	hits := scanMarkerLines(markedSource)
	require.Len(t, hits, 2)

	assert.Equal(t, markerHit{Line: 2, Kind: "start", ID: "body"}, hits[0])
	assert.Equal(t, markerHit{Line: 4, Kind: "end", ID: "body"}, hits[1])
}

func TestScanMarkerLines_Indented(t *testing.T) {
	t.Parallel()

	hits := scanMarkerLines("\t\t//@@start deep-section\n")
	require.Len(t, hits, 1)
	assert.Equal(t, "deep-section", hits[0].ID)
}

func TestRemoveMarkerLines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "src.cpp")
	require.NoError(t, os.WriteFile(path, []byte(markedSource), 0o644))

	hits := scanMarkerLines(markedSource)
	removed, err := removeMarkerLines(path, hits)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `int compute(int a) {
    return a * 2;
}
// a comment mentioning //@@start inline does not count
int other() { return 0; } //@@start trailing
`, string(after))

	// A second pass finds nothing to remove.
	removed, err = removeMarkerLines(path, nil)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRemoveMarkerLines_NoFinalNewline(t *testing.T) {
	t.Parallel()

	src := "//@@start top\nint x;\nint y;"
	dir := t.TempDir()
	path := filepath.Join(dir, "src.cpp")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	removed, err := removeMarkerLines(path, scanMarkerLines(src))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "int x;\nint y;", string(after), "no final newline appears out of nowhere")
}
