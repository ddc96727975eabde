package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		remote string
		want   string
	}{
		{
			name:   "ssh form",
			remote: "git@github.com:user/repo.git",
			want:   "https://github.com/user/repo",
		},
		{
			name:   "https form",
			remote: "https://github.com/user/repo.git",
			want:   "https://github.com/user/repo",
		},
		{
			name:   "https without suffix",
			remote: "https://github.com/user/repo",
			want:   "https://github.com/user/repo",
		},
		{
			name:   "non-github remote",
			remote: "https://gitlab.example.com/user/repo.git",
			want:   "",
		},
		{
			name:   "empty",
			remote: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, webURL(tt.remote))
		})
	}
}

func TestPermalink_CleanFile(t *testing.T) {
	t.Parallel()

	ops := NewMockGitOps()
	p := NewPermalinker(ops, "/tmp/test-repo", "origin")

	got := p.Permalink("src/engine.cpp", 10, 20)
	assert.Equal(t,
		"[`src/engine.cpp:10-20`](https://github.com/user/repo/blob/0123456789abcdef0123456789abcdef01234567/src/engine.cpp#L10-L20)",
		got)
}

func TestPermalink_SingleLine(t *testing.T) {
	t.Parallel()

	ops := NewMockGitOps()
	p := NewPermalinker(ops, "/tmp/test-repo", "origin")

	got := p.Permalink("src/engine.cpp", 10, 10)
	assert.Contains(t, got, "#L10)")
	assert.Contains(t, got, "src/engine.cpp:10")
}

func TestPermalink_FileOnly(t *testing.T) {
	t.Parallel()

	ops := NewMockGitOps()
	p := NewPermalinker(ops, "/tmp/test-repo", "origin")

	got := p.Permalink("src/engine.cpp", 0, 0)
	assert.Equal(t,
		"[`src/engine.cpp`](https://github.com/user/repo/blob/0123456789abcdef0123456789abcdef01234567/src/engine.cpp)",
		got)
}

func TestPermalink_DirtyFileRemapsLines(t *testing.T) {
	t.Parallel()

	ops := NewMockGitOps()
	ops.DirtyFiles["src/engine.cpp"] = true
	ops.Diffs["src/engine.cpp"] = markerDiff

	p := NewPermalinker(ops, "/tmp/test-repo", "origin")

	// Working-copy lines 4-6 sit around injected markers; the permalink
	// anchors on committed lines 3-4.
	got := p.Permalink("src/engine.cpp", 4, 6)
	assert.Contains(t, got, "#L3-L4)")
	assert.Contains(t, got, "src/engine.cpp:3-4")
}

func TestPermalink_NoGitHubFallsBackToPlainPath(t *testing.T) {
	t.Parallel()

	ops := NewMockGitOps()
	ops.RemoteURL = "https://gitlab.example.com/user/repo.git"

	p := NewPermalinker(ops, "/tmp/test-repo", "origin")

	assert.Equal(t, "`src/engine.cpp:5-9`", p.Permalink("src/engine.cpp", 5, 9))
	assert.Equal(t, "`src/engine.cpp:5`", p.Permalink("src/engine.cpp", 5, 5))
	assert.Equal(t, "`src/engine.cpp`", p.Permalink("src/engine.cpp", 0, 0))
}
