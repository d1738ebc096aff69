// Package input loads item lists from JSON, YAML or TOML documents,
// optionally gzip or zstd compressed.
package input

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"mavosort/internal/engine"
	errs "mavosort/internal/errors"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DefaultItemsKey is looked up when the document root is a table rather
// than a list and no items path is given.
const DefaultItemsKey = "items"

// Stdin is the path that reads from standard input.
const Stdin = "-"

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Options control how a document is decoded.
type Options struct {
	// Format overrides detection by extension.
	Format string
	// ItemsPath is a dotted path to the item list inside the document.
	ItemsPath string
}

// Document is a decoded input file.
type Document struct {
	Path   string
	Format Format
	Root   any
	Items  []any
	// Digest is the blake2b-256 hex digest of the decompressed content.
	Digest string
}

// ParseFormat validates a format name. Empty means "detect".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", errs.New(errs.FormatUnsupported, fmt.Sprintf("unknown input format %q", s), nil)
	}
}

// DetectFormat picks a format from the file extension, ignoring a trailing
// .gz or .zst. Unknown extensions give JSON.
func DetectFormat(path string) Format {
	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ".zst")
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Load reads path ("-" for stdin) and extracts its item list.
func Load(path string, opts Options) (*Document, error) {
	format, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = DetectFormat(path)
	}

	var r io.Reader
	if path == Stdin {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errs.New(errs.InputUnreadable, "cannot open "+path, err)
		}
		defer f.Close()
		r = f
	}

	data, err := readAll(r)
	if err != nil {
		return nil, errs.New(errs.InputUnreadable, "cannot read "+path, err)
	}

	root, err := Decode(data, format)
	if err != nil {
		return nil, errs.New(errs.InputUnreadable, fmt.Sprintf("cannot decode %s as %s", path, format), err)
	}

	items, err := SelectItems(root, opts.ItemsPath)
	if err != nil {
		return nil, errs.New(errs.InputUnreadable, path+": "+err.Error(), nil)
	}

	return &Document{
		Path:   path,
		Format: format,
		Root:   root,
		Items:  items,
		Digest: Digest(data),
	}, nil
}

// readAll reads r fully, transparently decompressing gzip and zstd streams.
func readAll(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4)

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return io.ReadAll(br)
	}
}

// Decode parses data in the given format into plain Go values: maps with
// string keys, []any lists and scalars.
func Decode(data []byte, format Format) (any, error) {
	var root any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, err
		}
	case FormatTOML:
		var table map[string]any
		if _, err := toml.Decode(string(data), &table); err != nil {
			return nil, err
		}
		root = table
	case FormatJSON, "":
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, err
		}
	default:
		return nil, errs.New(errs.FormatUnsupported, fmt.Sprintf("unknown input format %q", format), nil)
	}
	return normalize(root), nil
}

// normalize rewrites decoder-specific containers into map[string]any and
// []any so the engine and output encoders see a single shape.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	case []map[string]any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}

// SelectItems finds the item list inside root. With an empty path the
// root itself must be a list, or a table holding an "items" list.
func SelectItems(root any, itemsPath string) ([]any, error) {
	if itemsPath != "" {
		v, ok := engine.Resolve(root, itemsPath)
		if !ok {
			return nil, fmt.Errorf("items path %q not found", itemsPath)
		}
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("items path %q is not a list", itemsPath)
		}
		return list, nil
	}

	switch x := root.(type) {
	case []any:
		return x, nil
	case map[string]any:
		if list, ok := x[DefaultItemsKey].([]any); ok {
			return list, nil
		}
		return nil, fmt.Errorf("document has no %q list", DefaultItemsKey)
	case nil:
		return []any{}, nil
	default:
		return nil, fmt.Errorf("document root is %T, not a list", root)
	}
}

// LoadValues loads a parallel-key array. The document is either a list or
// a table whose list is selected like an item list.
func LoadValues(path string, opts Options) ([]any, error) {
	doc, err := Load(path, opts)
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// Digest returns the blake2b-256 hex digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
