// Package watch monitors the pipeline search path and reports when the
// set of available pipelines may have changed.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/acribbs/trnanalysis/internal/logging"
	"github.com/acribbs/trnanalysis/internal/pipeline"
)

// DefaultDebounce is how long the watcher waits for a burst of changes to
// settle before reporting them.
const DefaultDebounce = 300 * time.Millisecond

// Config holds the watcher settings.
type Config struct {
	Directories []string
	Runtimes    []pipeline.Runtime
	Debounce    time.Duration
}

// Event is a change to a pipeline unit or its manifest directory.
type Event struct {
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"`
}

// Handler receives the events collected during one debounce window.
type Handler func(events []Event)

// Status represents the current watcher status.
type Status struct {
	Running     bool     `json:"running"`
	Directories []string `json:"directories"`
	Skipped     []string `json:"skipped,omitempty"`
	EventCount  int      `json:"eventCount"`
}

// Watcher monitors search directories for pipeline changes.
type Watcher struct {
	Config  Config
	Logger  *log.Logger
	Handler Handler

	mu      sync.Mutex
	count   int
	pending []Event
	timer   *time.Timer
	watched []string
	skipped []string
	running bool
	watcher *fsnotify.Watcher
}

// New creates a new Watcher with the given configuration.
func New(config Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}

	return &Watcher{
		Config:  config,
		Logger:  logging.Discard(),
		watcher: fsw,
	}, nil
}

// Start begins watching the configured directories. Directories that do
// not exist are skipped. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.Config.Directories {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			w.watcher.Close()
			return fmt.Errorf("could not resolve %s: %w", dir, err)
		}
		if info, err := os.Stat(absDir); err != nil || !info.IsDir() {
			w.Logger.Debug("not watching missing directory", "dir", absDir)
			w.mu.Lock()
			w.skipped = append(w.skipped, absDir)
			w.mu.Unlock()
			continue
		}
		if err := w.watcher.Add(absDir); err != nil {
			w.watcher.Close()
			return fmt.Errorf("could not watch %s: %w", absDir, err)
		}
		w.mu.Lock()
		w.watched = append(w.watched, absDir)
		w.mu.Unlock()
	}

	w.mu.Lock()
	w.running = true
	n := len(w.watched)
	w.mu.Unlock()
	w.Logger.Info("watching search path", "directories", n)

	defer func() {
		w.mu.Lock()
		w.running = false
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			w.Logger.Debug("stopping watcher")
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) {
		return
	}
	if !w.matches(event.Name) {
		return
	}

	evt := Event{Time: time.Now(), Path: event.Name, Operation: event.Op.String()}
	w.Logger.Debug("pipeline change", "path", evt.Path, "op", evt.Operation)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, evt)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.Config.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	batch := w.pending
	w.pending = nil
	w.count += len(batch)
	handler := w.Handler
	w.mu.Unlock()

	if len(batch) == 0 || handler == nil {
		return
	}
	handler(batch)
}

func (w *Watcher) matches(path string) bool {
	return pipeline.IsUnitName(filepath.Base(path), w.Config.Runtimes)
}

// GetStatus returns the current watcher status.
func (w *Watcher) GetStatus() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Status{
		Running:     w.running,
		Directories: append([]string(nil), w.watched...),
		Skipped:     append([]string(nil), w.skipped...),
		EventCount:  w.count,
	}
}
