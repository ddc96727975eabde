package cppscan

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regionsFor(t *testing.T, src string) ([]Region, error) {
	t.Helper()
	toks, _ := scanTokens(src)
	return extractRegions(src, toks)
}

func TestExtractRegions_Single(t *testing.T) {
	t.Parallel()

	src := "int f() {\n//@@start setup\nint temp = a + b;\n//@@end setup\nreturn temp;\n}\n"
	regions, err := regionsFor(t, src)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, "setup", r.ID)
	assert.Equal(t, 3, r.StartLine)
	assert.Equal(t, 3, r.EndLine)
	assert.Equal(t, 2, r.MarkerStartLine)
	assert.Equal(t, 4, r.MarkerEndLine)
	assert.Equal(t, "int temp = a + b;", r.Text)
	assert.Equal(t, 0, r.Depth)
}

func TestExtractRegions_Empty(t *testing.T) {
	t.Parallel()

	regions, err := regionsFor(t, "//@@start nothing\n//@@end nothing\n")
	require.NoError(t, err)
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, "", r.Text)
	assert.Greater(t, r.StartLine, r.EndLine)
}

func TestExtractRegions_Nested(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"//@@start outer",
		"before",
		"//@@start inner",
		"middle",
		"//@@end inner",
		"after",
		"//@@end outer",
		"",
	}, "\n")

	regions, err := regionsFor(t, src)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	// Sorted by start marker line: outer first.
	assert.Equal(t, "outer", regions[0].ID)
	assert.Equal(t, 0, regions[0].Depth)
	assert.Equal(t, "inner", regions[1].ID)
	assert.Equal(t, 1, regions[1].Depth)

	// The outer region's raw text keeps the inner markers verbatim.
	assert.Equal(t, "before\n//@@start inner\nmiddle\n//@@end inner\nafter", regions[0].Text)
	assert.Equal(t, "middle", regions[1].Text)
}

func TestExtractRegions_RoundTrip(t *testing.T) {
	t.Parallel()

	src := "a\n//@@start r\nline one\n  line two\n//@@end r\nz\n"
	regions, err := regionsFor(t, src)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	lines := strings.Split(src, "\n")
	r := regions[0]
	rebuilt := strings.Join([]string{
		strings.Join(lines[:r.MarkerStartLine], "\n"),
		r.Text,
		strings.Join(lines[r.MarkerEndLine-1:], "\n"),
	}, "\n")
	assert.Equal(t, src, rebuilt)
}

func TestExtractRegions_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		wantID string
	}{
		{
			name:   "end without start",
			src:    "//@@end ghost\n",
			wantID: "ghost",
		},
		{
			name:   "start never closed",
			src:    "//@@start forever\nint x;\n",
			wantID: "forever",
		},
		{
			name:   "crossing pairs",
			src:    "//@@start a\n//@@start b\n//@@end a\n//@@end b\n",
			wantID: "a",
		},
		{
			name:   "duplicate open",
			src:    "//@@start dup\n//@@end dup\n//@@start dup\n//@@end dup\n",
			wantID: "dup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := regionsFor(t, tt.src)
			require.Error(t, err)

			var merr *MarkerError
			require.True(t, errors.As(err, &merr))
			assert.Equal(t, tt.wantID, merr.ID)
		})
	}
}

func TestExtractRegions_MarkersInsideCommentsIgnored(t *testing.T) {
	t.Parallel()

	// A marker-shaped line inside a block comment is not a marker.
	src := "/*\n//@@start hidden\n*/\nint x;\n"
	regions, err := regionsFor(t, src)
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestMarkerLines(t *testing.T) {
	t.Parallel()

	toks, _ := scanTokens("int a;\n//@@start r\nint b;\n//@@end r\n")
	assert.Equal(t, []int{2, 4}, markerLines(toks))
}
