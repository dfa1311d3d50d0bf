package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stagehand/stagehand/pkg/telemetry"
)

// ChangeCallback is invoked after a successful reload with the old and new
// configuration.
type ChangeCallback func(oldCfg, newCfg *Config)

// Watcher watches a configuration file and reloads it on change. A reload
// that fails to parse or validate keeps the previous configuration.
type Watcher struct {
	path string
	log  *telemetry.Logger

	mu  sync.RWMutex
	cfg *Config

	callbacks   []ChangeCallback
	callbacksMu sync.Mutex

	fsWatcher *fsnotify.Watcher
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewWatcher loads the initial configuration and prepares a file watcher
// for it.
func NewWatcher(path string, log *telemetry.Logger) (*Watcher, error) {
	if log == nil {
		log = telemetry.NopLogger()
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatch, err)
	}

	return &Watcher{
		path:      path,
		log:       log.NewComponentLogger("config"),
		cfg:       cfg,
		fsWatcher: fsWatcher,
	}, nil
}

// Config returns the current configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

// OnChange registers a callback invoked after each successful reload.
func (w *Watcher) OnChange(cb ChangeCallback) {
	w.callbacksMu.Lock()
	w.callbacks = append(w.callbacks, cb)
	w.callbacksMu.Unlock()
}

// Start begins watching the configuration file for changes. Watching the
// parent directory survives editors that replace the file on save.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("%w: %v", ErrWatch, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go w.watch(ctx)
	return nil
}

// Stop stops watching and releases the file watcher.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}

// watch processes file system events until the context is cancelled.
// Events for the watched file are debounced: editors commonly emit several
// writes per save.
func (w *Watcher) watch(ctx context.Context) {
	defer w.wg.Done()

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(100 * time.Millisecond)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("config watch error")

		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

// reload re-reads the configuration file and notifies callbacks.
func (w *Watcher) reload() {
	newCfg, err := Load(w.path)
	if err != nil {
		w.log.WithError(err).Warn("config reload failed, keeping previous configuration")
		return
	}

	w.mu.Lock()
	oldCfg := w.cfg
	w.cfg = newCfg
	w.mu.Unlock()

	w.log.Info("configuration reloaded")

	w.callbacksMu.Lock()
	callbacks := make([]ChangeCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.callbacksMu.Unlock()

	for _, cb := range callbacks {
		cb(oldCfg, newCfg)
	}
}
