package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShouldIgnore(t *testing.T) {
	assert.True(t, shouldIgnore("/data/.git"))
	assert.True(t, shouldIgnore("/data/.#lock"))
	assert.False(t, shouldIgnore("/data/events"))
	assert.False(t, shouldIgnore("/data/provinceCityMap.json"))
}

func TestWatcher_InvokesCallbackAfterChange(t *testing.T) {
	if testing.Short() {
		t.Skip("debounce wait")
	}

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "events"), 0o755))

	var fired atomic.Int32
	w, err := New(root, func() { fired.Add(1) }, testLogger())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	// A burst of writes must collapse into a single invalidation.
	for i := range 3 {
		path := filepath.Join(root, "events", "random.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"random_events": []}`), 0o644))
		if i < 2 {
			time.Sleep(50 * time.Millisecond)
		}
	}

	assert.Eventually(t, func() bool {
		return fired.Load() == 1
	}, 5*time.Second, 100*time.Millisecond)

	// No further changes, no further callbacks.
	time.Sleep(debounceDelay + 500*time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestWatcher_IgnoresNonJSONFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("debounce wait")
	}

	root := t.TempDir()

	var fired atomic.Int32
	w, err := New(root, func() { fired.Add(1) }, testLogger())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("notes"), 0o644))

	time.Sleep(debounceDelay + 500*time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir(), func() {}, testLogger())
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
