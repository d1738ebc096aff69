package engine

import (
	"fmt"
	"io"
	"log/slog"
)

// Engine sorts and groups item sequences. It holds configuration only; all
// working state lives in a single Sort or GroupBy call, so one Engine can be
// shared across collections.
type Engine struct {
	defaultDirection Direction
	logger           *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultDirection sets the direction used by keys without an explicit
// one. Ascending or Descending; anything else is ignored.
func WithDefaultDirection(dir Direction) Option {
	return func(e *Engine) {
		if dir == Ascending || dir == Descending {
			e.defaultDirection = dir
		}
	}
}

// WithLogger sets the logger for skipped keys and call sizes.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine. Unflagged keys default to Descending.
func New(opts ...Option) *Engine {
	e := &Engine{
		defaultDirection: Descending,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultDirection returns the direction applied to unflagged keys.
func (e *Engine) DefaultDirection() Direction {
	return e.defaultDirection
}

var defaultEngine = New()

// Sort stably sorts items with the default engine.
func Sort(items []Item, keys ...Key) []Item {
	return defaultEngine.Sort(items, keys...)
}

// GroupBy groups items with the default engine.
func GroupBy(items []Item, keys ...Key) []Node {
	return defaultEngine.GroupBy(items, keys...)
}

// MismatchError reports a parallel key whose length differs from the input.
type MismatchError struct {
	Key      int
	Length   int
	Expected int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("parallel key %d has %d values, input has %d items", e.Key, e.Length, e.Expected)
}

// Validate reports the first parallel key whose length does not match n.
// Sort and GroupBy skip such keys; hosts that want the strict behaviour
// call Validate first.
func (e *Engine) Validate(n int, keys ...Key) error {
	for i, k := range keys {
		if k.Kind == KeyParallel && len(k.Values) != n {
			return &MismatchError{Key: i, Length: len(k.Values), Expected: n}
		}
	}
	return nil
}

// prepare resolves default directions and drops parallel keys that cannot
// apply to an input of length n.
func (e *Engine) prepare(n int, keys []Key) []Key {
	out := make([]Key, 0, len(keys))
	for i, k := range keys {
		switch k.Kind {
		case KeyParallel:
			if len(k.Values) != n {
				e.logger.Warn("Skipping parallel key with mismatched length",
					"key", i, "values", len(k.Values), "items", n)
				continue
			}
			if k.Direction == DirectionDefault {
				k.Direction = Descending
			}
		case KeyProperty:
			if k.Path == "" {
				continue
			}
			if k.Direction == DirectionDefault {
				k.Direction = e.defaultDirection
			}
		case KeyIndex:
			k.Direction = Ascending
			if k.Sign < 0 {
				k.Direction = Descending
			}
		}
		out = append(out, k)
	}
	return out
}
