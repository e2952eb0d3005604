package lifecycle

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/storage"
)

func newTestLifecycle(t *testing.T) *Lifecycle {
	t.Helper()
	cfg := &config.ScratchConfig{Root: t.TempDir(), Prefix: "youtube_dl_"}
	return NewLifecycle(cfg, storage.NewFileManager(zap.NewNop()), zap.NewNop())
}

func TestBeginOwnedAndRelease(t *testing.T) {
	l := newTestLifecycle(t)

	s, err := l.Begin("", "attempt-1")
	require.NoError(t, err)
	assert.True(t, s.Owned)
	assert.True(t, strings.HasPrefix(filepath.Base(s.Path), "youtube_dl_"))
	assert.DirExists(t, s.Path)

	require.NoError(t, os.WriteFile(filepath.Join(s.Path, "song.mp3"), []byte("data"), 0644))

	require.NoError(t, l.End(s))
	assert.True(t, s.Released())
	assert.NoDirExists(t, s.Path)

	// idempotent
	assert.NoError(t, s.Release())
	assert.NoError(t, l.End(s))
}

func TestBeginUniquePerAttempt(t *testing.T) {
	l := newTestLifecycle(t)
	a, err := l.Begin("", "a")
	require.NoError(t, err)
	b, err := l.Begin("", "b")
	require.NoError(t, err)
	defer a.Release()
	defer b.Release()

	assert.NotEqual(t, a.Path, b.Path)
}

func TestBeginCallerDirectorySurvivesRelease(t *testing.T) {
	l := newTestLifecycle(t)
	dir := filepath.Join(t.TempDir(), "persistent", "out")

	s, err := l.Begin(dir, "attempt-2")
	require.NoError(t, err)
	assert.False(t, s.Owned)
	assert.DirExists(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.mp3"), []byte("data"), 0644))
	require.NoError(t, s.Release())
	assert.True(t, s.Released())
	assert.FileExists(t, filepath.Join(dir, "song.mp3"))
}

func TestReleaseConcurrent(t *testing.T) {
	l := newTestLifecycle(t)
	s, err := l.Begin("", "attempt-3")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Release())
		}()
	}
	wg.Wait()
	assert.NoDirExists(t, s.Path)
}

func TestReleaseAfterExternalRemoval(t *testing.T) {
	l := newTestLifecycle(t)
	s, err := l.Begin("", "attempt-4")
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(s.Path))
	assert.NoError(t, s.Release())
}

func TestEndNil(t *testing.T) {
	assert.NoError(t, newTestLifecycle(t).End(nil))
}
