package cliconfig

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/arcbank/offlinegate/internal/ports"
)

// Watcher monitors the config file and reloads it on change, so route
// tables and the staged cache version can follow the file without a
// restart. Editors often write a file several times in quick succession;
// reloads are debounced.
type Watcher struct {
	path          string
	debounceDelay time.Duration
	onChange      func(FileConfig)
	logger        ports.Logger

	mu       sync.Mutex
	debounce *time.Timer
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher for the given config file path. onChange is
// called with each successfully parsed reload.
func NewWatcher(path string, onChange func(FileConfig), logger ports.Logger) *Watcher {
	return &Watcher{
		path:          path,
		debounceDelay: 100 * time.Millisecond,
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching. Returns immediately; the watch loop runs until
// Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.watchLoop(watchCtx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Error("config watcher: failed to create watcher", ports.Err(err))
		return
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files via rename
	// and a watch on the old inode would go stale.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		w.logger.Error("config watcher: failed to watch directory", ports.Err(err))
		return
	}

	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debounceReload()

		case werr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher: watcher error", ports.Err(werr))
		}
	}
}

func (w *Watcher) debounceReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("config watcher: reload failed", ports.Err(err))
		return
	}
	w.logger.Info("config reloaded", ports.String("path", w.path))
	w.onChange(fc)
}
