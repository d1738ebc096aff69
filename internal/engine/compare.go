package engine

import (
	"encoding/json"
	"math"
	"reflect"
)

// valueClass is the comparable family of a value. Values of different
// classes never compare by value.
type valueClass uint8

const (
	classNone valueClass = iota
	classNumber
	classString
	classBool
	classObject
)

func classOf(v any) valueClass {
	switch v.(type) {
	case nil:
		return classNone
	case bool:
		return classBool
	case string:
		return classString
	case json.Number:
		return classNumber
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return classNumber
	case LiveNode:
		return classObject
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return classBool
	case reflect.String:
		return classString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return classNumber
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return classNone
		}
		return classOf(rv.Elem().Interface())
	default:
		return classObject
	}
}

// deref strips pointers so scalars behind them compare by value.
func deref(v any) reflect.Value {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

// compareNatural compares two values with the natural < / > ordering.
// ok is false when the values are not comparable primitives of one class.
func compareNatural(a, b any) (cmp int, ok bool) {
	ca, cb := classOf(a), classOf(b)
	if ca != cb {
		return 0, false
	}

	switch ca {
	case classNumber:
		return compareNumbers(a, b), true
	case classString:
		return compareOrdered(deref(a).String(), deref(b).String()), true
	case classBool:
		ab, bb := deref(a).Bool(), deref(b).Bool()
		switch {
		case ab == bb:
			return 0, true
		case !ab:
			return -1, true
		default:
			return 1, true
		}
	default:
		return 0, false
	}
}

func compareNumbers(a, b any) int {
	av, bv := deref(a), deref(b)
	switch {
	case isInt(av) && isInt(bv):
		return compareOrdered(av.Int(), bv.Int())
	case isUint(av) && isUint(bv):
		return compareOrdered(av.Uint(), bv.Uint())
	default:
		fa, fb := toFloat(av), toFloat(bv)
		// NaN is greater than every other number and equal to itself.
		switch na, nb := math.IsNaN(fa), math.IsNaN(fb); {
		case na && nb:
			return 0
		case na:
			return 1
		case nb:
			return -1
		}
		return compareOrdered(fa, fb)
	}
}

func isInt(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func toFloat(rv reflect.Value) float64 {
	if n, ok := rv.Interface().(json.Number); ok {
		f, _ := n.Float64()
		return f
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return 0
	}
}

type ordered interface {
	~int64 | ~uint64 | ~float64 | ~string
}

// compareOrdered returns -1, 0 or 1. Callers keep NaN out of it.
func compareOrdered[T ordered](a, b T) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// applyDirection flips an ascending comparison for descending keys.
func applyDirection(cmp int, dir Direction) int {
	if dir == Descending {
		return -cmp
	}
	return cmp
}
