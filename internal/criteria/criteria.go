// Package criteria canonicalizes sort and group criteria.
//
// Criteria are text such as "+price -name", a list of such tokens
// (possibly nested), or an already built list of engine keys. The
// normalized form carries one token per property with an explicit
// direction sigil; its joined text is the criteria signature used to skip
// redundant re-sorting.
package criteria

import (
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"

	"mavosort/internal/engine"
)

// Options configures a Normalizer.
type Options struct {
	// DefaultDirection is given to tokens without a sigil.
	DefaultDirection engine.Direction
	// AscendingSigils are prefixes marking ascending keys.
	AscendingSigils []string
	// DescendingSigils are prefixes marking descending keys.
	DescendingSigils []string
}

// DefaultOptions returns "+" / "-" sigils with a descending default.
func DefaultOptions() Options {
	return Options{
		DefaultDirection: engine.Descending,
		AscendingSigils:  []string{"+"},
		DescendingSigils: []string{"-"},
	}
}

// Normalizer turns criteria into tokens, keys and signatures.
type Normalizer struct {
	opts Options
}

// New creates a Normalizer. Empty sigil lists fall back to "+" and "-".
func New(opts Options) *Normalizer {
	defaults := DefaultOptions()
	if opts.DefaultDirection != engine.Ascending && opts.DefaultDirection != engine.Descending {
		opts.DefaultDirection = defaults.DefaultDirection
	}
	if len(opts.AscendingSigils) == 0 {
		opts.AscendingSigils = defaults.AscendingSigils
	}
	if len(opts.DescendingSigils) == 0 {
		opts.DescendingSigils = defaults.DescendingSigils
	}
	return &Normalizer{opts: opts}
}

var defaultNormalizer = New(DefaultOptions())

// Signature returns the signature of spec under the default options.
func Signature(spec any) string {
	return defaultNormalizer.Signature(spec)
}

// term is one parsed token.
type term struct {
	path string
	dir  engine.Direction
}

// Normalize returns one token per distinct property path, in first
// occurrence order. With keepSigil every token carries its direction sigil
// (the default one when it had none); otherwise sigils are stripped.
func (n *Normalizer) Normalize(spec any, keepSigil bool) []string {
	terms := n.terms(spec)
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if keepSigil {
			out = append(out, n.sigil(t.dir)+t.path)
		} else {
			out = append(out, t.path)
		}
	}
	return out
}

// Keys returns property keys with explicit directions.
func (n *Normalizer) Keys(spec any) []engine.Key {
	terms := n.terms(spec)
	keys := make([]engine.Key, 0, len(terms))
	for _, t := range terms {
		keys = append(keys, engine.PropertyKey(t.path, t.dir))
	}
	return keys
}

// Signature joins the sigil-retaining tokens with single spaces.
func (n *Normalizer) Signature(spec any) string {
	return strings.Join(n.Normalize(spec, true), " ")
}

// Digest returns a fixed-width hex digest of a signature.
func Digest(signature string) string {
	sum := blake2b.Sum256([]byte(signature))
	return hex.EncodeToString(sum[:])
}

func (n *Normalizer) terms(spec any) []term {
	var parts []part
	collect(spec, &parts)

	seen := make(map[string]bool)
	out := make([]term, 0, len(parts))
	for _, p := range parts {
		t := p.key
		if !p.built {
			t = n.parse(p.token)
		} else if t.dir == engine.DirectionDefault {
			t.dir = n.opts.DefaultDirection
		}
		if t.path == "" || seen[t.path] {
			continue
		}
		seen[t.path] = true
		out = append(out, t)
	}
	return out
}

// part is a raw token or a pre-built key, in input order.
type part struct {
	token string
	key   term
	built bool
}

// collect flattens criteria into parts.
func collect(spec any, parts *[]part) {
	switch s := spec.(type) {
	case string:
		for _, tok := range split(s) {
			*parts = append(*parts, part{token: tok})
		}
	case []string:
		for _, el := range s {
			collect(el, parts)
		}
	case [][]string:
		for _, el := range s {
			collect(el, parts)
		}
	case []any:
		for _, el := range s {
			collect(el, parts)
		}
	case engine.Key:
		if s.Kind == engine.KeyProperty {
			*parts = append(*parts, part{key: term{path: s.Path, dir: s.Direction}, built: true})
		}
	case []engine.Key:
		for _, k := range s {
			collect(k, parts)
		}
	}
}

func split(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// parse strips a leading sigil and resolves the token's direction.
func (n *Normalizer) parse(tok string) term {
	tok = strings.TrimSpace(tok)
	for _, s := range n.opts.AscendingSigils {
		if strings.HasPrefix(tok, s) {
			return term{path: strings.TrimSpace(tok[len(s):]), dir: engine.Ascending}
		}
	}
	for _, s := range n.opts.DescendingSigils {
		if strings.HasPrefix(tok, s) {
			return term{path: strings.TrimSpace(tok[len(s):]), dir: engine.Descending}
		}
	}
	return term{path: tok, dir: n.opts.DefaultDirection}
}

func (n *Normalizer) sigil(dir engine.Direction) string {
	if dir == engine.Ascending {
		return n.opts.AscendingSigils[0]
	}
	return n.opts.DescendingSigils[0]
}
