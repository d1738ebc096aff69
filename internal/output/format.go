package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"mavosort/internal/engine"
	errs "mavosort/internal/errors"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
	FormatHuman Format = "human"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatTOML, FormatHuman:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errs.New(errs.FormatUnsupported, fmt.Sprintf("unknown output format %q", s), nil)
	}
}

// Materializer receives the result of a sort or group pass.
type Materializer interface {
	Materialize(nodes []engine.Node) error
}

// Targeted is implemented by materializers whose rendering depends on more
// than the nodes. Target must change whenever the produced output would.
type Targeted interface {
	Target() string
}

// Writer materializes nodes by encoding them to an io.Writer.
type Writer struct {
	w      io.Writer
	format Format
	indent int
	dest   string
}

// NewWriter creates a Writer. indent applies to JSON and YAML.
func NewWriter(w io.Writer, format Format, indent int) *Writer {
	return &Writer{w: w, format: format, indent: indent}
}

// WithDestination names where w writes, such as "-" or a file path.
func (w *Writer) WithDestination(dest string) *Writer {
	w.dest = dest
	return w
}

// Target combines encoding and destination.
func (w *Writer) Target() string {
	format := w.format
	if format == "" {
		format = FormatJSON
	}
	return fmt.Sprintf("%s:%d:%s", format, w.indent, w.dest)
}

// Materialize encodes nodes and writes them followed by a newline.
func (w *Writer) Materialize(nodes []engine.Node) error {
	data, err := Encode(nodes, w.format, w.indent)
	if err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err = w.w.Write(data)
	return err
}

// Encode renders v in the given format.
func Encode(v any, format Format, indent int) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		if indent <= 0 {
			return DeterministicEncode(v)
		}
		return DeterministicEncodeIndented(v, strings.Repeat(" ", indent))
	case FormatYAML:
		return encodeYAML(Normalize(v), indent)
	case FormatTOML:
		return encodeTOML(Normalize(v))
	case FormatHuman:
		return []byte(Human(v)), nil
	default:
		return nil, errs.New(errs.FormatUnsupported, fmt.Sprintf("unknown output format %q", format), nil)
	}
}

func encodeYAML(v any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if indent > 0 {
		enc.SetIndent(indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeTOML wraps lists under an "items" table, since a TOML document
// must be a table. Nulls have no TOML form and are dropped.
func encodeTOML(v any) ([]byte, error) {
	doc, ok := v.(map[string]any)
	if !ok {
		doc = map[string]any{"items": v}
	}
	return toml.Marshal(dropNulls(doc))
}

func dropNulls(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			if e != nil {
				out[k] = dropNulls(e)
			}
		}
		return out
	case []any:
		out := make([]any, 0, len(x))
		for _, e := range x {
			if e != nil {
				out = append(out, dropNulls(e))
			}
		}
		return out
	default:
		return v
	}
}

// Human renders nodes as an indented tree: one line per group header
// ("property: id (n)") and one compact JSON line per leaf.
func Human(v any) string {
	var b strings.Builder
	switch x := v.(type) {
	case []engine.Node:
		writeNodes(&b, x, 0)
	default:
		b.WriteString(scalar(Normalize(v)))
		b.WriteByte('\n')
	}
	return b.String()
}

func writeNodes(b *strings.Builder, nodes []engine.Node, depth int) {
	pad := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.Group == nil {
			fmt.Fprintf(b, "%s- %s\n", pad, scalar(Normalize(n.Leaf)))
			continue
		}
		label := scalar(Normalize(n.Group.ID))
		if n.Group.Property != "" {
			label = n.Group.Property + ": " + label
		}
		fmt.Fprintf(b, "%s%s (%d)\n", pad, label, len(engine.Leaves(n.Group.Items)))
		writeNodes(b, n.Group.Items, depth+1)
	}
}

func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case float64:
		return FormatFloat(x)
	default:
		data, err := DeterministicEncode(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}
