package output

import (
	"bytes"
	"reflect"
	"testing"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"mavosort/internal/engine"
	errs "mavosort/internal/errors"
)

func grouped() []engine.Node {
	return engine.GroupBy(engine.Items([]any{
		map[string]any{"a": "x", "n": 1},
		map[string]any{"a": "y", "n": 2.25},
		map[string]any{"a": "x", "n": 3},
	}), engine.PropertyKey("a", engine.Ascending))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "YAML": FormatYAML, "yml": FormatYAML, "toml": FormatTOML, "human": FormatHuman} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); errs.CodeOf(err) != errs.FormatUnsupported {
		t.Errorf("ParseFormat(xml) err = %v", err)
	}
}

func TestEncodeYAML(t *testing.T) {
	data, err := Encode(grouped(), FormatYAML, 2)
	if err != nil {
		t.Fatal(err)
	}

	var back []map[string]any
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("yaml output does not parse: %v\n%s", err, data)
	}
	if len(back) != 2 || back[0]["id"] != "x" || back[1]["id"] != "y" {
		t.Errorf("groups = %v", back)
	}
	if items := back[0]["items"].([]any); len(items) != 2 {
		t.Errorf("group x has %d items, want 2", len(items))
	}
}

func TestEncodeTOML(t *testing.T) {
	nodes := engine.GroupBy(engine.Items([]any{
		map[string]any{"a": "x", "n": 1, "gone": nil},
	}))

	data, err := Encode(nodes, FormatTOML, 0)
	if err != nil {
		t.Fatal(err)
	}

	var back map[string]any
	if err := toml.Unmarshal(data, &back); err != nil {
		t.Fatalf("toml output does not parse: %v\n%s", err, data)
	}
	items, ok := back["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("items = %#v", back["items"])
	}
	item := items[0].(map[string]any)
	if item["a"] != "x" || item["n"] != int64(1) {
		t.Errorf("item = %v", item)
	}
	if _, ok := item["gone"]; ok {
		t.Error("null field should be dropped in TOML")
	}
}

func TestHuman(t *testing.T) {
	got := Human(grouped())
	want := "a: x (2)\n" +
		"  - {\"a\":\"x\",\"n\":1}\n" +
		"  - {\"a\":\"x\",\"n\":3}\n" +
		"a: y (1)\n" +
		"  - {\"a\":\"y\",\"n\":2.25}\n"
	if got != want {
		t.Errorf("Human() =\n%s\nwant\n%s", got, want)
	}

	if got := Human(engine.GroupBy(engine.Items([]any{3, "s", nil}))); got != "- 3\n- s\n- null\n" {
		t.Errorf("Human(flat) = %q", got)
	}
}

func TestHumanNestedCounts(t *testing.T) {
	nodes := engine.GroupBy(engine.Items([]any{
		map[string]any{"a": 1, "b": true},
		map[string]any{"a": 1, "b": false},
		map[string]any{"a": 1, "b": true},
	}), engine.PropertyKey("a", engine.Ascending), engine.PropertyKey("b", engine.Ascending))

	got := Human(nodes)
	want := "a: 1 (3)\n" +
		"  b: false (1)\n" +
		"    - {\"a\":1,\"b\":false}\n" +
		"  b: true (2)\n" +
		"    - {\"a\":1,\"b\":true}\n" +
		"    - {\"a\":1,\"b\":true}\n"
	if got != want {
		t.Errorf("Human() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriterMaterialize(t *testing.T) {
	var buf bytes.Buffer
	var m Materializer = NewWriter(&buf, FormatJSON, 0)

	if err := m.Materialize(engine.GroupBy(engine.Items([]any{2, 1}))); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[2,1]\n" {
		t.Errorf("output = %q", buf.String())
	}

	if err := NewWriter(&buf, Format("xml"), 0).Materialize(nil); errs.CodeOf(err) != errs.FormatUnsupported {
		t.Errorf("err = %v", err)
	}
}

func TestWriterTarget(t *testing.T) {
	base := NewWriter(nil, FormatJSON, 2).WithDestination("/out/a.json").Target()

	tests := []struct {
		name string
		w    *Writer
		same bool
	}{
		{"same settings", NewWriter(nil, FormatJSON, 2).WithDestination("/out/a.json"), true},
		{"other file", NewWriter(nil, FormatJSON, 2).WithDestination("/out/b.json"), false},
		{"other format", NewWriter(nil, FormatYAML, 2).WithDestination("/out/a.json"), false},
		{"other indent", NewWriter(nil, FormatJSON, 4).WithDestination("/out/a.json"), false},
		{"stdout", NewWriter(nil, FormatJSON, 2).WithDestination("-"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Target() == base; got != tt.same {
				t.Errorf("Target() = %q, base %q; same = %v, want %v", tt.w.Target(), base, got, tt.same)
			}
		})
	}

	var m Materializer = NewWriter(nil, "", 0)
	if _, ok := m.(Targeted); !ok {
		t.Error("Writer does not implement Targeted")
	}
	if got, want := NewWriter(nil, "", 0).Target(), NewWriter(nil, FormatJSON, 0).Target(); got != want {
		t.Errorf("empty format target = %q, want %q", got, want)
	}
}

func TestNormalizeItems(t *testing.T) {
	got := Normalize([]engine.Item{engine.Primitive(1.0000001), engine.Null(), engine.Record(map[string]int{"k": 2})})
	want := []any{1.0, nil, map[string]any{"k": 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %#v, want %#v", got, want)
	}
}
