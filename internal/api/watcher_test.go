package api

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/amterp/cardman/internal/kv"
	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/service"
	"github.com/amterp/cardman/internal/store"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (r *countingReloader) Reload() error {
	r.calls.Add(1)
	return r.err
}

func TestStorageWatcher_Matches(t *testing.T) {
	sw := &StorageWatcher{target: "cards.db"}

	assert.True(t, sw.matches("/data/cards.db"))
	assert.True(t, sw.matches("/data/cards.db-journal"))
	assert.True(t, sw.matches("/data/cards.db-wal"))
	assert.False(t, sw.matches("/data/other.db"))
	assert.False(t, sw.matches("/data/.tmp-123"))
}

func TestStorageWatcher_DebouncesBurst(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "cards-data.item")
	reloader := &countingReloader{}

	sw, err := NewStorageWatcher(path, reloader, nil)
	require.NoError(t, err)
	require.NoError(t, sw.Start())
	defer sw.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))
	}

	require.Eventually(t, func() bool { return reloader.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(3 * DebounceDelay)
	assert.Equal(t, int32(1), reloader.calls.Load())
}

func TestStorageWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	reloader := &countingReloader{}

	sw, err := NewStorageWatcher(filepath.Join(dir, "cards-data.item"), reloader, nil)
	require.NoError(t, err)
	require.NoError(t, sw.Start())
	defer sw.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.item"), []byte("x"), 0644))

	time.Sleep(3 * DebounceDelay)
	assert.Zero(t, reloader.calls.Load())
}

func TestStorageWatcher_ReloadErrorIsNotFatal(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "cards-data.item")
	reloader := &countingReloader{err: errors.New("io")}

	sw, err := NewStorageWatcher(path, reloader, nil)
	require.NoError(t, err)
	require.NoError(t, sw.Start())
	defer sw.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))
	require.Eventually(t, func() bool { return reloader.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("[ ]"), 0644))
	require.Eventually(t, func() bool { return reloader.calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestStorageWatcher_StopCancelsPendingReload(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "cards-data.item")
	reloader := &countingReloader{}

	sw, err := NewStorageWatcher(path, reloader, nil)
	require.NoError(t, err)
	require.NoError(t, sw.Start())

	sw.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	require.NoError(t, sw.Stop())
	require.NoError(t, sw.Stop())

	time.Sleep(3 * DebounceDelay)
	assert.Zero(t, reloader.calls.Load())
	assert.Error(t, sw.Start(), "a stopped watcher cannot restart")
}

// Another process writing the blob reaches the card service.
func TestStorageWatcher_ReloadsCardService(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	ours, err := kv.NewFileStorage(dir, 0)
	require.NoError(t, err)
	theirs, err := kv.NewFileStorage(dir, 0)
	require.NoError(t, err)

	cards := service.NewCardService(store.NewCardStore(ours, testKey), nil)
	defer cards.Close()

	sw, err := NewStorageWatcher(ours.Location(testKey), cards, nil)
	require.NoError(t, err)
	require.NoError(t, sw.Start())
	defer sw.Stop()

	external := []model.Card{{ID: 8, Title: "Elsewhere", Description: "Written by another process"}}
	require.NoError(t, store.NewCardStore(theirs, testKey).Save(external))

	require.Eventually(t, func() bool {
		return model.Equal(cards.Cards(), external)
	}, 2*time.Second, 10*time.Millisecond)
}
