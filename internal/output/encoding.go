package output

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"mavosort/internal/engine"
)

// DeterministicEncode produces byte-identical JSON output
// - Stable key ordering (sorted alphabetically)
// - Float formatting: max 6 decimal places
// - Nil struct fields omitted; nulls inside data are kept
func DeterministicEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(Normalize(v)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DeterministicEncodeIndented produces indented byte-identical JSON output
func DeterministicEncodeIndented(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indent)

	if err := encoder.Encode(Normalize(v)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Normalize converts v into plain maps, []any and scalars: grouped nodes
// become {"id", "property", "items"} tables, items become their values,
// floats are rounded and times become RFC 3339 strings. Every encoder in
// this package works on the normalized form.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case engine.Node:
		return normalizeNode(x)
	case []engine.Node:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = normalizeNode(n)
		}
		return out
	case engine.Item:
		return Normalize(x.Value())
	case engine.LiveNode:
		return Normalize(x.Data(false))
	case json.Number:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	}

	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Ptr || val.Kind() == reflect.Interface {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Map:
		return normalizeMap(val)
	case reflect.Slice, reflect.Array:
		return normalizeSlice(val)
	case reflect.Struct:
		if t, ok := val.Interface().(time.Time); ok {
			return Normalize(t)
		}
		return normalizeStruct(val)
	case reflect.Float32, reflect.Float64:
		return RoundFloat(val.Float())
	default:
		return val.Interface()
	}
}

func normalizeNode(n engine.Node) any {
	if n.Group == nil {
		return Normalize(n.Leaf)
	}
	g := map[string]any{
		"id":    Normalize(n.Group.ID),
		"items": Normalize(n.Group.Items),
	}
	if n.Group.Property != "" {
		g["property"] = n.Group.Property
	}
	return g
}

// normalizeMap converts a map to map[string]any; encoding/json sorts the keys.
func normalizeMap(val reflect.Value) any {
	if val.IsNil() {
		return nil
	}
	result := make(map[string]any, val.Len())
	iter := val.MapRange()
	for iter.Next() {
		result[mapKey(iter.Key())] = Normalize(iter.Value().Interface())
	}
	return result
}

func mapKey(k reflect.Value) string {
	for k.Kind() == reflect.Interface {
		k = k.Elem()
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	b, err := json.Marshal(Normalize(k.Interface()))
	if err != nil {
		return k.String()
	}
	return string(b)
}

// normalizeSlice normalizes a slice or array. Empty lists stay empty lists.
func normalizeSlice(val reflect.Value) any {
	if val.Kind() == reflect.Slice && val.IsNil() {
		return []any{}
	}
	if val.Kind() == reflect.Slice && val.Type().Elem().Kind() == reflect.Uint8 {
		return val.Interface()
	}
	result := make([]any, val.Len())
	for i := range result {
		result[i] = Normalize(val.Index(i).Interface())
	}
	return result
}

// normalizeStruct converts a struct to a map following its json tags.
func normalizeStruct(val reflect.Value) any {
	result := make(map[string]any)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		tagName, omitEmpty := parseJSONTag(jsonTag)
		if tagName == "" {
			tagName = field.Name
		}

		normalized := Normalize(val.Field(i).Interface())
		if normalized == nil || (omitEmpty && isZeroValue(normalized)) {
			continue
		}
		result[tagName] = normalized
	}
	return result
}

func parseJSONTag(tag string) (name string, omitEmpty bool) {
	parts := strings.Split(tag, ",")
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return parts[0], omitEmpty
}

// isZeroValue checks if a value is zero/empty
func isZeroValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case int, int8, int16, int32, int64:
		return reflect.ValueOf(val).Int() == 0
	case uint, uint8, uint16, uint32, uint64:
		return reflect.ValueOf(val).Uint() == 0
	case float32, float64:
		return reflect.ValueOf(val).Float() == 0
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}
