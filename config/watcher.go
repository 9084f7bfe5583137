package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/lixenwraith/starfield/core"
	"github.com/lixenwraith/starfield/parameter"
)

// Watcher reloads the config file on change and hands valid configs to a callback
// The file's directory is watched so editors that replace files on save are seen
type Watcher struct {
	path     string
	onChange func(*Config)
	overlay  func(*Config)
	log      *zap.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	closed  bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for path; onChange runs on the watcher goroutine
// and only receives configs that passed Validate
func NewWatcher(path string, onChange func(*Config), log *zap.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("watch config: no config file given")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		path:     abs,
		onChange: onChange,
		log:      log,
		debounce: parameter.ConfigReloadDebounce,
		watcher:  w,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetOverlay registers fn to adjust each reloaded config before validation
// Used to re-apply command-line flags so they keep precedence over the file
func (w *Watcher) SetOverlay(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.overlay = fn
}

// Start begins watching; non-blocking
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if w.closed {
		return fmt.Errorf("watch config: watcher stopped")
	}

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.running = true
	core.Go(func() { w.run(ctx) })
	w.log.Debug("watching config", zap.String("path", w.path))
	return nil
}

// Stop stops the watcher, waits for cleanup and releases the fsnotify handle
// Safe to call whether or not Start succeeded
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	w.watcher.Close()
}

// Closed reports whether Stop released the watcher
func (w *Watcher) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			// Debounce rapid saves
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))

		case <-timerC:
			timerC = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err == nil {
		w.mu.Lock()
		overlay := w.overlay
		w.mu.Unlock()
		if overlay != nil {
			overlay(cfg)
		}
		err = cfg.Validate()
	}
	if err != nil {
		w.log.Warn("config reload rejected", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.log.Info("config reloaded", zap.String("path", w.path))
	w.onChange(cfg)
}
