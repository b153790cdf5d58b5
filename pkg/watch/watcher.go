// Package watch re-parses a rulebook source file whenever it changes on
// disk and reports what changed against the previous parse.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/fsnotify.v1"

	"github.com/coolbeans/rulebook/pkg/rules"
)

// DefaultDebounce coalesces the event bursts editors produce when saving.
const DefaultDebounce = 250 * time.Millisecond

// Update is delivered to the callback after each successful re-parse.
type Update struct {
	// Data is the freshly parsed document.
	Data *rules.RulesData

	// Diff compares the previous parse to this one. Nil on the first
	// parse, when there is nothing to compare against.
	Diff *rules.VersionDiff
}

// Watcher monitors one rulebook source file.
type Watcher struct {
	path     string
	parser   *rules.Parser
	debounce time.Duration
	onUpdate func(Update)
	onError  func(error)

	fsw  *fsnotify.Watcher
	stop chan struct{}
	done chan struct{}

	mu      sync.Mutex
	prev    *rules.RulesData
	pending *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the event-coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithErrorHandler installs a callback for watch and re-parse errors.
// Without one, errors are dropped and watching continues.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// New creates a watcher for the given source file. onUpdate runs on the
// watcher's goroutine after every successful parse, including the initial
// one performed by Start.
func New(path string, onUpdate func(Update), opts ...Option) (*Watcher, error) {
	if onUpdate == nil {
		return nil, fmt.Errorf("watch: onUpdate callback is required")
	}
	w := &Watcher{
		path:     path,
		parser:   rules.NewParser(),
		debounce: DefaultDebounce,
		onUpdate: onUpdate,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start parses the file once, then watches its directory for changes.
// Watching the directory rather than the file survives editors that replace
// the file on save.
func (w *Watcher) Start() error {
	if err := w.reparse(); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	w.fsw = fsw

	go w.loop()
	return nil
}

// Stop ends watching and waits for the watch goroutine to exit.
func (w *Watcher) Stop() {
	if w.fsw == nil {
		return
	}
	close(w.stop)
	<-w.done
	w.fsw.Close()

	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

// schedule arms the debounce timer, restarting it on every event so only
// the last write of a burst triggers a parse.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		if err := w.reparse(); err != nil {
			w.reportError(err)
		}
	})
}

func (w *Watcher) reparse() error {
	data, err := w.parser.ParseFile(w.path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	prev := w.prev
	w.prev = data
	w.mu.Unlock()

	update := Update{Data: data}
	if prev != nil {
		update.Diff = rules.CompareVersions(prev, data)
	}
	w.onUpdate(update)
	return nil
}

func (w *Watcher) reportError(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}
