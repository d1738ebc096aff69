// Package watcher polls input files and reports debounced change batches.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"
)

// EventType represents the type of file change
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Event represents one observed file change
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// ChangeHandler receives a debounced batch. Calls never overlap.
type ChangeHandler func(events []Event)

// Config contains watcher configuration
type Config struct {
	PollInterval time.Duration
	Debounce     time.Duration
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		PollInterval: 500 * time.Millisecond,
		Debounce:     200 * time.Millisecond,
	}
}

type fileState struct {
	exists  bool
	size    int64
	modTime time.Time
}

// Watcher polls a set of files for size and mtime changes.
type Watcher struct {
	config  Config
	logger  *slog.Logger
	handler ChangeHandler
	batch   *BatchDebouncer

	mu    sync.Mutex
	files map[string]fileState

	handlerMu sync.Mutex
}

// New creates a watcher. Zero config durations take the defaults.
func New(config Config, logger *slog.Logger, handler ChangeHandler) *Watcher {
	def := DefaultConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.Debounce < 0 {
		config.Debounce = 0
	}

	w := &Watcher{
		config:  config,
		logger:  logger,
		handler: handler,
		files:   make(map[string]fileState),
	}
	w.batch = NewBatchDebouncer(config.Debounce, w.deliver)
	return w
}

// Add starts tracking path. The current state is the baseline, so an
// existing file produces no event until it changes.
func (w *Watcher) Add(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = stat(path)
}

// Files returns the tracked paths in sorted order.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Run polls until ctx is cancelled. Pending events are dropped on return.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("Watching files", "files", len(w.Files()), "poll_interval", w.config.PollInterval, "debounce", w.config.Debounce)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.poll()
		case <-ctx.Done():
			w.batch.Cancel()
			w.logger.Info("File watcher stopped")
			return ctx.Err()
		}
	}
}

// poll compares every tracked file with its last state.
func (w *Watcher) poll() {
	now := time.Now()
	var events []Event

	w.mu.Lock()
	for path, prev := range w.files {
		cur := stat(path)
		if ev, ok := diff(prev, cur); ok {
			events = append(events, Event{Type: ev, Path: path, Timestamp: now})
			w.files[path] = cur
		}
	}
	w.mu.Unlock()

	for _, ev := range events {
		w.logger.Debug("File change detected", "path", ev.Path, "type", ev.Type.String())
		w.batch.Add(ev)
	}
}

func (w *Watcher) deliver(events []Event) {
	w.handlerMu.Lock()
	defer w.handlerMu.Unlock()

	if w.handler != nil {
		w.handler(events)
	}
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{exists: true, size: info.Size(), modTime: info.ModTime()}
}

func diff(prev, cur fileState) (EventType, bool) {
	switch {
	case !prev.exists && cur.exists:
		return EventCreate, true
	case prev.exists && !cur.exists:
		return EventDelete, true
	case cur.exists && (cur.size != prev.size || !cur.modTime.Equal(prev.modTime)):
		return EventModify, true
	default:
		return 0, false
	}
}
