package render

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_FiresOnMatchingChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewWatcher([]string{dir}, []string{".cpp"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	w.debounceTime = 50 * time.Millisecond

	var mu sync.Mutex
	var got []string
	w.Start(context.Background(), func(files []string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, files...)
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cpp"), []byte("int x;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, got, filepath.Join(dir, "a.cpp"))
	for _, f := range got {
		assert.NotContains(t, f, "notes.txt")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	w, err := NewWatcher([]string{t.TempDir()}, nil)
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
