package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DebounceDelay is how long the watcher waits after the last change before
// reloading, to coalesce the burst of events one write produces.
const DebounceDelay = 100 * time.Millisecond

// Reloader re-reads persisted state. *service.CardService implements it.
type Reloader interface {
	Reload() error
}

// StorageWatcher watches the file holding the card blob and reloads the
// card service when another process changes it.
type StorageWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	target   string
	reloader Reloader
	log      *zap.SugaredLogger

	mu      sync.Mutex
	timer   *time.Timer
	stopCh  chan struct{}
	stopped bool // Once stopped, cannot restart
	running bool
}

// NewStorageWatcher creates a watcher for the file at path.
func NewStorageWatcher(path string, reloader Reloader, log *zap.SugaredLogger) (*StorageWatcher, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &StorageWatcher{
		watcher:  watcher,
		dir:      filepath.Dir(path),
		target:   filepath.Base(path),
		reloader: reloader,
		log:      log.Named("watcher"),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. The directory is created if missing, since the
// blob may not have been written yet.
func (sw *StorageWatcher) Start() error {
	sw.mu.Lock()
	if sw.running {
		sw.mu.Unlock()
		return nil
	}
	if sw.stopped {
		sw.mu.Unlock()
		return fmt.Errorf("storage watcher cannot be restarted after stop")
	}
	sw.running = true
	sw.mu.Unlock()

	if err := os.MkdirAll(sw.dir, 0755); err != nil {
		return err
	}
	// Watch the directory, not the file: atomic writes replace the file.
	if err := sw.watcher.Add(sw.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", sw.dir, err)
	}

	go sw.run()
	return nil
}

// Stop stops watching for changes. A pending reload is cancelled.
func (sw *StorageWatcher) Stop() error {
	sw.mu.Lock()
	if !sw.running || sw.stopped {
		sw.stopped = true
		sw.mu.Unlock()
		return sw.watcher.Close()
	}
	sw.running = false
	sw.stopped = true
	if sw.timer != nil {
		sw.timer.Stop()
		sw.timer = nil
	}
	sw.mu.Unlock()

	close(sw.stopCh)
	return sw.watcher.Close()
}

func (sw *StorageWatcher) run() {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handleEvent(event)

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warnw("watch error", "error", err)

		case <-sw.stopCh:
			return
		}
	}
}

// matches reports whether name is the blob file or one of its sidecars
// (sqlite journals are named <db>-journal, <db>-wal).
func (sw *StorageWatcher) matches(name string) bool {
	base := filepath.Base(name)
	return base == sw.target || strings.HasPrefix(base, sw.target+"-")
}

func (sw *StorageWatcher) handleEvent(event fsnotify.Event) {
	if !sw.matches(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.stopped {
		return
	}
	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.timer = time.AfterFunc(DebounceDelay, sw.reload)
}

func (sw *StorageWatcher) reload() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.timer = nil
	sw.mu.Unlock()

	if err := sw.reloader.Reload(); err != nil {
		sw.log.Warnw("failed to reload cards", "error", err)
	}
}
