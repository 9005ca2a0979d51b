package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu    sync.Mutex
	paths []string
}

func (c *collector) handle(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, filepath.Base(path))
	return nil
}

func (c *collector) seen() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func TestWatcherHandlesSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	c := &collector{}

	w, err := New(dir, c.handle, logger.Nop(), 2)
	require.NoError(t, err)
	defer w.Stop()
	w.(*implWatcher).settleDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meeting.MP4"), []byte("x"), 0o644))

	require.Eventually(t, func() bool { return len(c.seen()) == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"meeting.MP4"}, c.seen())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestClaimDropsDuplicates(t *testing.T) {
	w := &implWatcher{inFlight: make(map[string]struct{})}

	assert.True(t, w.claim("a.mp4"))
	assert.False(t, w.claim("a.mp4"))
	w.release("a.mp4")
	assert.True(t, w.claim("a.mp4"))
}

func TestNewMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), func(context.Context, string) error { return nil }, logger.Nop(), 0)
	assert.Error(t, err)
}
