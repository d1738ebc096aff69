// Package livedata wraps a decoded document in a mutable tree whose nodes
// satisfy engine.LiveNode. A node is a path into the tree, so reads always
// observe the latest Set.
package livedata

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"mavosort/internal/engine"
)

// Tree holds a document behind a lock.
type Tree struct {
	mu   sync.RWMutex
	root any
}

// New wraps root. The tree takes ownership of root; callers should not
// mutate it afterwards except through Set.
func New(root any) *Tree {
	return &Tree{root: root}
}

// Root returns the node for the whole document.
func (t *Tree) Root() *Node {
	return &Node{tree: t, index: -1}
}

// Items returns one node per element of the list at listPath.
func (t *Tree) Items(listPath string) ([]*Node, error) {
	base := splitPath(listPath)

	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := lookup(t.root, base)
	if !ok {
		return nil, fmt.Errorf("path %q not found", listPath)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("path %q is %T, not a list", listPath, v)
	}

	nodes := make([]*Node, len(list))
	for i := range list {
		nodes[i] = &Node{tree: t, path: appendPath(base, strconv.Itoa(i)), index: i}
	}
	return nodes, nil
}

// Set replaces the value at path. Intermediate tables are created as needed;
// list elements must already exist.
func (t *Tree) Set(path string, value any) error {
	segs := splitPath(path)
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(segs) == 0 {
		t.root = value
		return nil
	}
	root, err := assign(t.root, segs, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", path, err)
	}
	t.root = root
	return nil
}

func assign(cur any, segs []string, value any) (any, error) {
	if len(segs) == 0 {
		return value, nil
	}
	seg := segs[0]
	switch x := cur.(type) {
	case map[string]any:
		next, err := assign(x[seg], segs[1:], value)
		if err != nil {
			return nil, err
		}
		x[seg] = next
		return x, nil
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(x) {
			return nil, fmt.Errorf("index %q out of range", seg)
		}
		next, err := assign(x[i], segs[1:], value)
		if err != nil {
			return nil, err
		}
		x[i] = next
		return x, nil
	case nil:
		m := map[string]any{}
		next, err := assign(nil, segs[1:], value)
		if err != nil {
			return nil, err
		}
		m[seg] = next
		return m, nil
	default:
		return nil, fmt.Errorf("cannot descend into %T at %q", cur, seg)
	}
}

// Node addresses one value in a Tree.
type Node struct {
	tree  *Tree
	path  []string
	index int
}

var _ engine.LiveNode = (*Node)(nil)

// Data returns the value at the node. live=true returns the shared value,
// so later Sets below it are visible; live=false returns a deep copy.
func (n *Node) Data(live bool) any {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()

	v, _ := lookup(n.tree.root, n.path)
	if live {
		return v
	}
	return Snapshot(v)
}

// Find returns the descendant at a dotted path, if it exists now.
func (n *Node) Find(path string) (engine.LiveNode, bool) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return n, true
	}

	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()

	if _, ok := lookup(n.tree.root, appendPath(n.path, segs...)); !ok {
		return nil, false
	}
	return &Node{tree: n.tree, path: appendPath(n.path, segs...), index: n.index}, true
}

// Index is the node's position in the list it was taken from, or -1.
func (n *Node) Index() int { return n.index }

// Path returns the node's dotted path from the root.
func (n *Node) Path() string { return strings.Join(n.path, ".") }

// Set replaces the value at path relative to this node.
func (n *Node) Set(path string, value any) error {
	return n.tree.Set(strings.Join(appendPath(n.path, splitPath(path)...), "."), value)
}

func lookup(root any, segs []string) (any, bool) {
	if len(segs) == 0 {
		return root, true
	}
	return engine.Resolve(root, segs...)
}

func splitPath(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, ".") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func appendPath(base []string, segs ...string) []string {
	out := make([]string, 0, len(base)+len(segs))
	return append(append(out, base...), segs...)
}

// Snapshot deep-copies maps and lists; scalars are returned as is.
func Snapshot(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = Snapshot(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = Snapshot(e)
		}
		return s
	default:
		return v
	}
}
