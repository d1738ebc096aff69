package engine

import (
	"fmt"
	"strings"
)

// Direction is the ordering applied by a key.
type Direction int8

const (
	// DirectionDefault defers to the engine's configured default.
	DirectionDefault Direction = iota
	// Ascending orders smaller values first.
	Ascending
	// Descending orders larger values first.
	Descending
)

// String returns "asc", "desc" or "default"
func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "default"
	}
}

// ParseDirection parses "asc"/"ascending"/"+" and "desc"/"descending"/"-".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "+":
		return Ascending, nil
	case "desc", "descending", "-":
		return Descending, nil
	case "", "default":
		return DirectionDefault, nil
	default:
		return DirectionDefault, fmt.Errorf("invalid direction %q", s)
	}
}

// KeyKind discriminates the Key variants.
type KeyKind uint8

const (
	// KeyProperty orders by a dotted property path.
	KeyProperty KeyKind = iota
	// KeyParallel orders by an auxiliary array aligned with the input.
	KeyParallel
	// KeyIndex orders whole items; only the sign carries meaning.
	KeyIndex
)

// Key is a single sort or group criterion.
type Key struct {
	Kind      KeyKind
	Path      string
	Values    []any
	Direction Direction
	Sign      int
}

// PropertyKey orders by the value at a dotted path.
func PropertyKey(path string, dir Direction) Key {
	return Key{Kind: KeyProperty, Path: path, Direction: dir}
}

// ParallelKey orders the i-th input item by values[i].
func ParallelKey(values []any, dir Direction) Key {
	return Key{Kind: KeyParallel, Values: values, Direction: dir}
}

// IndexKey orders whole items; a negative sign is descending.
func IndexKey(sign int) Key {
	return Key{Kind: KeyIndex, Sign: sign}
}

// Name returns the property label used for group nodes.
func (k Key) Name() string {
	if k.Kind == KeyProperty {
		return k.Path
	}
	return ""
}

// String renders the key with an explicit direction sigil.
func (k Key) String() string {
	switch k.Kind {
	case KeyProperty:
		return sigil(k.Direction) + k.Path
	case KeyParallel:
		return fmt.Sprintf("%s[%d]", sigil(k.Direction), len(k.Values))
	case KeyIndex:
		if k.Sign < 0 {
			return "-1"
		}
		return "1"
	default:
		return "?"
	}
}

func sigil(d Direction) string {
	switch d {
	case Ascending:
		return "+"
	case Descending:
		return "-"
	default:
		return ""
	}
}
