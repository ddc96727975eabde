package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// markerDiff is the shape produced by injecting a one-pair marker region
// into a committed file: two added lines inside a single hunk.
const markerDiff = `diff --git a/src/engine.cpp b/src/engine.cpp
index 1111111..2222222 100644
--- a/src/engine.cpp
+++ b/src/engine.cpp
@@ -2,3 +2,5 @@
 line2
+//@@start setup
 line3
+//@@end setup
 line4
`

func TestParseDiffHunks(t *testing.T) {
	t.Parallel()

	hunks := ParseDiffHunks(markerDiff)
	require.Len(t, hunks, 1)
	assert.Equal(t, Hunk{OldStart: 2, OldCount: 3, NewStart: 2, NewCount: 5}, hunks[0])
}

func TestParseDiffHunks_SingleLineCounts(t *testing.T) {
	t.Parallel()

	hunks := ParseDiffHunks("@@ -7 +9 @@\n")
	require.Len(t, hunks, 1)
	assert.Equal(t, Hunk{OldStart: 7, OldCount: 1, NewStart: 9, NewCount: 1}, hunks[0])
}

func TestParseDiffHunks_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, ParseDiffHunks(""))
}

func TestMapLineToCommitted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line int
		want int
	}{
		{name: "context line before additions", line: 2, want: 2},
		{name: "added marker maps to survivor above", line: 3, want: 2},
		{name: "context line between markers", line: 4, want: 3},
		{name: "second added marker", line: 5, want: 3},
		{name: "context line after markers", line: 6, want: 4},
		{name: "line after the hunk shifts back", line: 10, want: 8},
		{name: "line before the hunk unchanged", line: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapLineToCommitted(tt.line, markerDiff))
		})
	}
}

func TestMapLineToCommitted_NoDiff(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 17, MapLineToCommitted(17, ""))
}
