package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher reloads a config file whenever it changes and hands the fresh
// Config to every registered handler. Files that fail to load or validate
// are logged and skipped; handlers only ever see valid configs.
type Watcher struct {
	path     string
	debounce time.Duration

	mu       sync.RWMutex
	handlers []func(*Config)

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWatcher returns a stopped watcher. debounce <= 0 uses 500ms.
func NewWatcher(path string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// OnReload registers h. Handlers run on the watcher goroutine.
func (w *Watcher) OnReload(h func(*Config)) {
	w.mu.Lock()
	w.handlers = append(w.handlers, h)
	w.mu.Unlock()
}

// Start watches the directory holding the file, so editors that replace the
// file instead of writing it in place are still seen.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return err
	}
	w.watcher = fw
	log.Info().Str("path", w.path).Dur("debounce", w.debounce).Msg("config watcher started")
	go w.watch()
	return nil
}

func (w *Watcher) Stop() error {
	w.cancel()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) watch() {
	defer close(w.done)
	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-w.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("config watcher")
		}
	}
}

func (w *Watcher) reload() {
	c, err := Load(w.path)
	if err != nil {
		log.Warn().Err(err).Msg("config reload skipped")
		return
	}
	log.Info().Str("path", w.path).Msg("config reloaded")
	w.mu.RLock()
	hs := append(([]func(*Config))(nil), w.handlers...)
	w.mu.RUnlock()
	for _, h := range hs {
		h(c)
	}
}
