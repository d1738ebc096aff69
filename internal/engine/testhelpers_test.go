package engine

import (
	"strings"
)

// fakeNode is a minimal LiveNode over nested maps.
type fakeNode struct {
	data  any
	index int
	reads int
}

func (n *fakeNode) Data(live bool) any {
	n.reads++
	return n.data
}

func (n *fakeNode) Find(path string) (LiveNode, bool) {
	cur := n.data
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return &fakeNode{data: cur, index: -1}, true
}

func (n *fakeNode) Index() int {
	return n.index
}

func rec(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func values(items []Item) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it.Value()
	}
	return out
}

func asc(path string) Key  { return PropertyKey(path, Ascending) }
func desc(path string) Key { return PropertyKey(path, Descending) }
