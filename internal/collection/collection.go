// Package collection holds an item list together with the criteria last
// applied to it, and re-materializes the sorted and grouped view only when
// the data or the normalized criteria change.
package collection

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"mavosort/internal/criteria"
	"mavosort/internal/engine"
	errs "mavosort/internal/errors"
	"mavosort/internal/output"
	"mavosort/internal/storage"
)

// Criteria is what a collection is ordered by. Sort and Group accept any
// form criteria.Normalizer understands. Extra keys (parallel or index keys)
// are appended after the Sort keys.
type Criteria struct {
	Sort  any
	Group any
	Extra []engine.Key
}

// StateStore persists the last render per collection name and output
// target.
type StateStore interface {
	Get(name, target string) (*storage.CollectionState, error)
	Put(st *storage.CollectionState) error
}

// Options configure a Collection. Zero values select defaults.
type Options struct {
	Engine     *engine.Engine
	Normalizer *criteria.Normalizer
	Logger     *slog.Logger
	Store      StateStore
	// StrictParallel fails Apply on a parallel key of the wrong length
	// instead of skipping the key.
	StrictParallel bool
}

// Result is the outcome of Apply.
type Result struct {
	Nodes          []engine.Node
	SortSignature  string
	GroupSignature string
	// Changed is false when the cached view was returned.
	Changed bool
}

// Collection is safe for concurrent use; the last Apply wins.
type Collection struct {
	mu     sync.Mutex
	id     string
	name   string
	engine *engine.Engine
	norm   *criteria.Normalizer
	logger *slog.Logger
	store  StateStore
	strict bool

	items      []engine.Item
	dataDigest string
	dirty      bool

	applied  bool
	sortSig  string
	groupSig string
	extraSig string
	view     []engine.Node
}

// New creates a collection named name (typically the canonical input path).
func New(name string, items []engine.Item, opts Options) *Collection {
	if opts.Engine == nil {
		opts.Engine = engine.New()
	}
	if opts.Normalizer == nil {
		opts.Normalizer = criteria.New(criteria.Options{DefaultDirection: opts.Engine.DefaultDirection()})
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Collection{
		id:     uuid.New().String(),
		name:   name,
		engine: opts.Engine,
		norm:   opts.Normalizer,
		store:  opts.Store,
		strict: opts.StrictParallel,
	}
	c.logger = opts.Logger.With("collection", name, "collection_id", c.id)
	c.setItems(items, "")
	return c
}

// ID returns the collection's random identifier.
func (c *Collection) ID() string { return c.id }

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Len returns the number of items.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// SetItems replaces the items and invalidates the cached view. digest
// identifies the data; when empty it is computed from the items.
func (c *Collection) SetItems(items []engine.Item, digest string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setItems(items, digest)
	c.logger.Debug("Items replaced", "items", len(items))
}

func (c *Collection) setItems(items []engine.Item, digest string) {
	if digest == "" {
		digest = digestOf(items)
	}
	c.items = items
	c.dataDigest = digest
	c.dirty = true
}

// Invalidate forces the next Apply to recompute, e.g. after live data
// below the items changed.
func (c *Collection) Invalidate() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// Apply sorts by crit.Sort (plus crit.Extra), then groups by crit.Group.
// Leaves within a group keep the sort order. When neither the data nor the
// normalized criteria changed since the last Apply, the cached view is
// returned with Changed=false.
func (c *Collection) Apply(crit Criteria) (*Result, error) {
	sortSig := c.norm.Signature(crit.Sort)
	groupSig := c.norm.Signature(crit.Group)
	extraSig := extraSignature(crit.Extra)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.applied && !c.dirty && sortSig == c.sortSig && groupSig == c.groupSig && extraSig == c.extraSig {
		c.logger.Debug("Criteria unchanged, reusing view", "sort", sortSig, "group", groupSig)
		return &Result{Nodes: c.view, SortSignature: sortSig, GroupSignature: groupSig}, nil
	}

	if c.strict {
		if err := c.engine.Validate(len(c.items), crit.Extra...); err != nil {
			return nil, errs.New(errs.ParallelLengthMismatch, "cannot apply "+c.name, err)
		}
	}

	sortKeys := append(c.norm.Keys(crit.Sort), crit.Extra...)
	sorted := c.engine.Sort(c.items, sortKeys...)
	view := c.engine.GroupBy(sorted, c.norm.Keys(crit.Group)...)

	c.view = view
	c.sortSig, c.groupSig, c.extraSig = sortSig, groupSig, extraSig
	c.applied = true
	c.dirty = false

	c.logger.Info("Applied criteria", "sort", sortSig, "group", groupSig, "items", len(c.items), "nodes", len(view))
	return &Result{Nodes: view, SortSignature: sortSig, GroupSignature: groupSig, Changed: true}, nil
}

// Render applies crit and hands the view to m when it changed. With a
// StateStore the comparison also spans processes: a view whose criteria
// and data match the stored state for the same output target is not
// materialized again. The target comes from m when it implements
// output.Targeted. The bool reports whether m was called.
func (c *Collection) Render(m output.Materializer, crit Criteria) (bool, error) {
	res, err := c.Apply(crit)
	if err != nil {
		return false, err
	}

	if c.store == nil {
		if !res.Changed {
			return false, nil
		}
		return true, c.materialize(m, res.Nodes)
	}

	c.mu.Lock()
	dataDigest := c.dataDigest
	c.mu.Unlock()

	var target string
	if t, ok := m.(output.Targeted); ok {
		target = t.Target()
	}

	outDigest := outputDigest(res.Nodes)
	prev, err := c.store.Get(c.name, target)
	if err != nil {
		return false, errs.New(errs.StateUnavailable, "cannot read render state", err)
	}
	if prev != nil && prev.SortSignature == res.SortSignature &&
		prev.GroupSignature == res.GroupSignature && prev.DataDigest == dataDigest &&
		prev.OutputDigest == outDigest {
		c.logger.Info("Render state unchanged, skipping", "target", target, "renders", prev.Renders)
		return false, nil
	}

	if err := c.materialize(m, res.Nodes); err != nil {
		return false, err
	}

	st := &storage.CollectionState{
		Name:           c.name,
		Target:         target,
		CollectionID:   c.id,
		SortSignature:  res.SortSignature,
		GroupSignature: res.GroupSignature,
		DataDigest:     dataDigest,
		OutputDigest:   outDigest,
	}
	if err := c.store.Put(st); err != nil {
		return true, errs.New(errs.StateUnavailable, "cannot save render state", err)
	}
	return true, nil
}

// materialize invalidates the cached view when m fails, so the next
// Render retries.
func (c *Collection) materialize(m output.Materializer, nodes []engine.Node) error {
	if err := m.Materialize(nodes); err != nil {
		c.Invalidate()
		return err
	}
	return nil
}

// View returns the last applied view, or nil before the first Apply.
func (c *Collection) View() []engine.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// extraSignature covers parallel values too, since Key.String only shows
// their count.
func extraSignature(keys []engine.Key) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
		if k.Kind == engine.KeyParallel {
			parts[i] += "@" + digestOf(k.Values)
		}
	}
	return strings.Join(parts, " ")
}

func digestOf(v any) string {
	data, err := output.DeterministicEncode(v)
	if err != nil {
		// Unencodable data never matches a previous digest.
		return uuid.NewString()
	}
	return criteria.Digest(string(data))
}

func outputDigest(nodes []engine.Node) string {
	return digestOf(nodes)
}
