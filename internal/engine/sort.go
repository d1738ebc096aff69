package engine

import (
	"sort"
)

// entry pairs an item with its original index and its unwrapped value.
type entry struct {
	item  Item
	index int
	u     unwrapped
}

// keyState is the outcome of comparing one key for one pair.
type keyState uint8

const (
	keySkipped keyState = iota
	keyTie
	keyDecisive
)

// Sort returns a stably sorted copy of items. The input is not modified.
//
// Ties on every key, and pairs no key applies to, keep their input order.
// Undefined items go last, null items just before them.
func (e *Engine) Sort(items []Item, keys ...Key) []Item {
	out := make([]Item, len(items))
	if len(items) == 0 {
		return out
	}

	entries := e.sortEntries(items, e.prepare(len(items), keys))
	for i, en := range entries {
		out[i] = en.item
	}
	return out
}

// sortEntries orders items by already prepared keys.
//
// Null items follow all data and undefined items follow nulls, each in
// input order. Data items of different classes never compare with each
// other: every class is sorted within the positions it held in the input,
// so a number never moves past a string.
func (e *Engine) sortEntries(items []Item, keys []Key) []entry {
	var (
		slots     = make(map[valueClass][]int)
		byClass   = make(map[valueClass][]entry)
		classes   []valueClass
		nulls     []entry
		undefined []entry
		data      int
	)
	for i, it := range items {
		pos := i
		if n, ok := it.Node(); ok {
			pos = n.Index()
		}
		en := entry{item: it, index: i, u: it.unwrap(pos)}

		switch missingRank(&en) {
		case 1:
			nulls = append(nulls, en)
		case 2:
			undefined = append(undefined, en)
		default:
			c := classOf(en.u.value)
			if _, ok := byClass[c]; !ok {
				classes = append(classes, c)
			}
			byClass[c] = append(byClass[c], en)
			slots[c] = append(slots[c], data)
			data++
		}
	}

	entries := make([]entry, data, len(items))
	for _, c := range classes {
		part := byClass[c]
		// compare resolves every tie by index: a total order.
		sort.SliceStable(part, func(i, j int) bool {
			return e.compare(&part[i], &part[j], keys) < 0
		})
		for j, slot := range slots[c] {
			entries[slot] = part[j]
		}
	}
	entries = append(entries, nulls...)
	entries = append(entries, undefined...)

	e.logger.Debug("Sorted items", "items", len(items), "keys", len(keys))
	return entries
}

// compare orders two data items of one class. A key missing on both sides
// is skipped; a key missing on one side sorts that item after the other.
func (e *Engine) compare(a, b *entry, keys []Key) int {
	tie := false
	for _, k := range keys {
		cmp, state := e.compareKey(k, a, b)
		switch state {
		case keyDecisive:
			return cmp
		case keyTie:
			tie = true
		}
	}

	if tie {
		return byIndex(a, b)
	}
	return natural(a, b)
}

// missingRank is 0 for data, 1 for null and 2 for undefined.
func missingRank(en *entry) int {
	switch {
	case en.item.Kind() == KindUndefined:
		return 2
	case en.item.Kind() == KindNull, en.u.value == nil:
		return 1
	default:
		return 0
	}
}

func byIndex(a, b *entry) int {
	return compareOrdered(int64(a.index), int64(b.index))
}

// natural compares whole values, falling back to input order.
func natural(a, b *entry) int {
	if cmp, ok := compareNatural(a.u.value, b.u.value); ok && cmp != 0 {
		return cmp
	}
	return byIndex(a, b)
}

func (e *Engine) compareKey(k Key, a, b *entry) (int, keyState) {
	switch k.Kind {
	case KeyIndex:
		return compareKeyValues(a.u.value, b.u.value, k.Direction)

	case KeyParallel:
		va, oka := parallelValue(k, a)
		vb, okb := parallelValue(k, b)
		if cmp, state, done := presence(oka, okb); done {
			return cmp, state
		}
		return compareKeyValues(va, vb, k.Direction)

	case KeyProperty:
		va, oka := resolveOne(a, k.Path)
		vb, okb := resolveOne(b, k.Path)
		if cmp, state, done := presence(oka, okb); done {
			return cmp, state
		}
		return compareKeyValues(va, vb, k.Direction)

	default:
		return 0, keySkipped
	}
}

// presence settles a key that is missing on one or both sides. The item
// without the key goes after the one with it, whatever the direction.
func presence(oka, okb bool) (int, keyState, bool) {
	switch {
	case oka && okb:
		return 0, keyTie, false
	case !oka && !okb:
		return 0, keySkipped, true
	case !oka:
		return 1, keyDecisive, true
	default:
		return -1, keyDecisive, true
	}
}

// compareKeyValues orders two resolved key values. Nulls go last whatever
// the direction. Values of different classes order by class (numbers,
// strings, booleans, then composites) whatever the direction; composites
// tie with each other.
func compareKeyValues(va, vb any, dir Direction) (int, keyState) {
	ca, cb := classOf(va), classOf(vb)
	switch {
	case ca == classNone && cb == classNone:
		return 0, keyTie
	case ca == classNone:
		return 1, keyDecisive
	case cb == classNone:
		return -1, keyDecisive
	case ca != cb:
		return compareOrdered(int64(ca), int64(cb)), keyDecisive
	}

	cmp, ok := compareNatural(va, vb)
	if !ok || cmp == 0 {
		return 0, keyTie
	}
	return applyDirection(cmp, dir), keyDecisive
}

func parallelValue(k Key, en *entry) (any, bool) {
	if en.u.pos < 0 || en.u.pos >= len(k.Values) {
		return nil, false
	}
	return k.Values[en.u.pos], true
}

// resolveOne resolves a property on a single item: a live node is looked
// up structurally first, then the path is walked through the plain value.
func resolveOne(en *entry, path string) (any, bool) {
	if en.u.node != nil {
		if n, ok := en.u.node.Find(path); ok {
			return n.Data(true), true
		}
	}
	return Resolve(en.u.value, path)
}
