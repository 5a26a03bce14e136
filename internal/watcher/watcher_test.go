package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool, timeout time.Duration) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_TriggersRebuildOnMarkdownWrite(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("# A\n"), 0o644))

	var rebuilds atomic.Int64
	w := New(root, func(ctx context.Context) error {
		rebuilds.Add(1)
		return nil
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("# A changed\n"), 0o644))

	assert.True(t, waitFor(t, func() bool { return rebuilds.Load() >= 1 }, 3*time.Second))
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	root := t.TempDir()

	var rebuilds atomic.Int64
	w := New(root, func(ctx context.Context) error {
		rebuilds.Add(1)
		return nil
	}, WithDebounce(150*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "burst.md"), []byte("# B\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.True(t, waitFor(t, func() bool { return rebuilds.Load() >= 1 }, 3*time.Second))
	// The burst landed inside one debounce window.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int64(1), rebuilds.Load())
}

func TestWatcher_IgnoresNonMarkdownAndUnderscore(t *testing.T) {
	root := t.TempDir()

	var rebuilds atomic.Int64
	w := New(root, func(ctx context.Context) error {
		rebuilds.Add(1)
		return nil
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "_draft.md"), []byte("# D\n"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int64(0), rebuilds.Load())
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := New(t.TempDir(), func(ctx context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not exit after Stop")
	}
}

func TestIsMarkdown(t *testing.T) {
	assert.True(t, isMarkdown("a.md"))
	assert.True(t, isMarkdown("a.MDX"))
	assert.True(t, isMarkdown("a.markdown"))
	assert.False(t, isMarkdown("a.txt"))
	assert.False(t, isMarkdown("md"))
}
