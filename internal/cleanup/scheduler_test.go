package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/storage"
)

func mkdirAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0755))
	ts := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, ts, ts))
}

func TestSweepRemovesOnlyStaleOwnedDirs(t *testing.T) {
	root := t.TempDir()
	cfg := &config.ScratchConfig{Root: root, Prefix: "youtube_dl_", SweepEnabled: true, SweepInterval: 60, MaxAge: 3600}
	s := NewScheduler(cfg, storage.NewFileManager(zap.NewNop()), zap.NewNop())

	stale := filepath.Join(root, "youtube_dl_stale")
	fresh := filepath.Join(root, "youtube_dl_fresh")
	foreign := filepath.Join(root, "other_stale")
	mkdirAged(t, stale, 2*time.Hour)
	mkdirAged(t, fresh, time.Minute)
	mkdirAged(t, foreign, 2*time.Hour)

	assert.Equal(t, 1, s.Sweep(context.Background()))
	assert.NoDirExists(t, stale)
	assert.DirExists(t, fresh)
	assert.DirExists(t, foreign)
}

func TestStartDisabledReturns(t *testing.T) {
	cfg := &config.ScratchConfig{Root: t.TempDir(), Prefix: "youtube_dl_", SweepInterval: 60, MaxAge: 60}
	s := NewScheduler(cfg, storage.NewFileManager(zap.NewNop()), zap.NewNop())

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled scheduler should return immediately")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	cfg := &config.ScratchConfig{Root: t.TempDir(), Prefix: "youtube_dl_", SweepEnabled: true, SweepInterval: 60, MaxAge: 60}
	s := NewScheduler(cfg, storage.NewFileManager(zap.NewNop()), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
