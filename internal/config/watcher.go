package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/glint/internal/logging"
)

// Handler is called with the freshly loaded config after the watched
// file changes.
type Handler func(Config)

// Watcher watches a config file and reloads it on change. Editors
// often replace files by rename, so the parent directory is watched
// and events are filtered by name; writes are debounced so a burst
// of partial writes loads once.
type Watcher struct {
	path     string
	handler  Handler
	log      *logging.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending *time.Timer
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for the given config file.
func NewWatcher(path string, handler Handler, logger *logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.Null
	}
	return &Watcher{
		path:     path,
		handler:  handler,
		log:      logger.WithComponent("config-watcher"),
		debounce: 100 * time.Millisecond,
	}
}

// Start begins watching until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer fsw.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				w.scheduleReload()

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.log.Warn("watch error: %v", err)
			}
		}
	}()

	return nil
}

// Wait blocks until the watch goroutine has exited.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// scheduleReload debounces reloads.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		cfg, err := Load(w.path)
		if err != nil {
			w.log.Warn("reload failed: %v", err)
			return
		}
		w.log.Info("configuration reloaded from %s", w.path)
		w.handler(cfg)
	})
}
