package engine

import (
	"encoding/json"
	"fmt"
	"math"
)

// Group is one distinct value of a group key at one nesting depth.
type Group struct {
	ID       any    `json:"id"`
	Property string `json:"property,omitempty"`
	Items    []Node `json:"items"`
}

// Node is a position in the grouped output: a nested Group or a leaf value.
type Node struct {
	Group *Group
	Leaf  any
}

// IsGroup reports whether the node is a group header.
func (n Node) IsGroup() bool {
	return n.Group != nil
}

// MarshalJSON encodes groups as objects and leaves as their value.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.Group != nil {
		return json.Marshal(n.Group)
	}
	return json.Marshal(n.Leaf)
}

// Leaves returns the leaf values of a forest in depth-first order.
func Leaves(nodes []Node) []any {
	var out []any
	for _, n := range nodes {
		if n.Group != nil {
			out = append(out, Leaves(n.Group.Items)...)
			continue
		}
		out = append(out, n.Leaf)
	}
	return out
}

// level is one frame of the grouping descent: the list being filled and
// the groups already registered in it.
type level struct {
	items    *[]Node
	children map[any]*level
}

func newLevel(items *[]Node) *level {
	return &level{items: items, children: make(map[any]*level)}
}

// GroupBy sorts items by keys and folds them into nested groups, one
// nesting depth per key. Groups appear in first-occurrence order. An item
// for which no key resolves belongs to no group and is left out. With no
// applicable keys the output is the input order, ungrouped.
func (e *Engine) GroupBy(items []Item, keys ...Key) []Node {
	root := make([]Node, 0)
	if len(items) == 0 {
		return root
	}

	active := e.prepare(len(items), keys)
	if len(active) == 0 {
		for _, it := range items {
			root = append(root, Node{Leaf: it.Value()})
		}
		return root
	}

	entries := e.sortEntries(items, active)
	top := newLevel(&root)
	dropped := 0

	for i := range entries {
		en := &entries[i]
		cur := top
		matched := false

		for _, k := range active {
			v, ok := groupValue(k, en)
			if !ok {
				continue
			}
			matched = true

			id := identity(v)
			child, seen := cur.children[id]
			if !seen {
				g := &Group{ID: v, Property: k.Name(), Items: make([]Node, 0)}
				*cur.items = append(*cur.items, Node{Group: g})
				child = newLevel(&g.Items)
				cur.children[id] = child
			}
			cur = child
		}

		if !matched {
			dropped++
			continue
		}
		*cur.items = append(*cur.items, Node{Leaf: en.u.value})
	}

	e.logger.Debug("Grouped items", "items", len(items), "keys", len(active), "dropped", dropped)
	return root
}

func groupValue(k Key, en *entry) (any, bool) {
	switch k.Kind {
	case KeyProperty:
		return resolveOne(en, k.Path)
	case KeyParallel:
		return parallelValue(k, en)
	case KeyIndex:
		if missingRank(en) != 0 {
			return nil, false
		}
		return en.u.value, true
	default:
		return nil, false
	}
}

type (
	nullID   struct{}
	nanID    struct{}
	numberID float64
	objectID string
)

// identity maps a group value to a comparable map key. Numbers of any type
// share one identity per value, and all NaNs share one; composite values
// use canonical JSON.
func identity(v any) any {
	switch classOf(v) {
	case classNone:
		return nullID{}
	case classNumber:
		f := toFloat(deref(v))
		if math.IsNaN(f) {
			return nanID{}
		}
		return numberID(f)
	case classString:
		return deref(v).String()
	case classBool:
		return deref(v).Bool()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return objectID(fmt.Sprintf("%#v", v))
		}
		return objectID(b)
	}
}
