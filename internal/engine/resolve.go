package engine

import (
	"reflect"
	"strconv"
	"strings"
)

// Resolve walks a path of property names into a plain value.
// Each segment may itself be dotted. The bool is false when any step is
// missing; a present nil value resolves to (nil, true).
func Resolve(value any, path ...string) (any, bool) {
	cur := value
	for _, p := range path {
		for _, seg := range strings.Split(p, ".") {
			if seg == "" {
				continue
			}
			next, ok := step(cur, seg)
			if !ok {
				return nil, false
			}
			cur = next
		}
	}
	return cur, true
}

func step(v any, seg string) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		val, ok := x[seg]
		return val, ok
	case []any:
		i, ok := sliceIndex(seg, len(x))
		if !ok {
			return nil, false
		}
		return x[i], true
	case LiveNode:
		return step(x.Data(true), seg)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		return mapField(rv, seg)
	case reflect.Struct:
		return structField(rv, seg)
	case reflect.Slice, reflect.Array:
		i, ok := sliceIndex(seg, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	default:
		return nil, false
	}
}

func sliceIndex(seg string, n int) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

func mapField(rv reflect.Value, seg string) (any, bool) {
	keyType := rv.Type().Key()
	var key reflect.Value
	switch keyType.Kind() {
	case reflect.String:
		key = reflect.ValueOf(seg).Convert(keyType)
	case reflect.Interface:
		key = reflect.ValueOf(seg)
		if !key.Type().AssignableTo(keyType) {
			return nil, false
		}
	default:
		return nil, false
	}
	val := rv.MapIndex(key)
	if !val.IsValid() {
		return nil, false
	}
	return val.Interface(), true
}

// structField matches the Go field name, then the json tag name, then the
// field name case-insensitively.
func structField(rv reflect.Value, seg string) (any, bool) {
	t := rv.Type()
	if f, ok := t.FieldByName(seg); ok && f.IsExported() {
		fv, err := rv.FieldByIndexErr(f.Index)
		if err != nil {
			return nil, false
		}
		return fv.Interface(), true
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == seg {
			return rv.Field(i).Interface(), true
		}
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, seg) {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}
