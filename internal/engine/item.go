package engine

// Kind discriminates the variants an Item can hold.
type Kind uint8

const (
	// KindUndefined marks missing data. Sorts after everything.
	KindUndefined Kind = iota
	// KindNull marks an explicit null. Sorts after everything but undefined.
	KindNull
	// KindPrimitive holds a number, string or bool.
	KindPrimitive
	// KindRecord holds a plain keyed structure (map, struct, slice).
	KindRecord
	// KindLive holds a LiveNode handle.
	KindLive
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindPrimitive:
		return "primitive"
	case KindRecord:
		return "record"
	case KindLive:
		return "live"
	default:
		return "unknown"
	}
}

// LiveNode is a host-provided handle to data that may change after it is read.
type LiveNode interface {
	// Data extracts the underlying value. live=true returns a live-linked
	// view, live=false a snapshot.
	Data(live bool) any
	// Find looks up a sub-node by dotted path.
	Find(path string) (LiveNode, bool)
	// Index is the node's position in its collection, used for parallel keys.
	Index() int
}

// Item is one element of a sequence to sort or group.
type Item struct {
	kind  Kind
	value any
	node  LiveNode
}

// Undefined returns an item with no data.
func Undefined() Item { return Item{kind: KindUndefined} }

// Null returns an explicit null item.
func Null() Item { return Item{kind: KindNull} }

// Primitive wraps a scalar value.
func Primitive(v any) Item { return Item{kind: KindPrimitive, value: v} }

// Record wraps a keyed structure.
func Record(v any) Item { return Item{kind: KindRecord, value: v} }

// Live wraps a live node handle. A nil node is undefined.
func Live(n LiveNode) Item {
	if n == nil {
		return Undefined()
	}
	return Item{kind: KindLive, node: n}
}

// FromValue classifies a decoded value into the matching Item variant.
func FromValue(v any) Item {
	switch x := v.(type) {
	case Item:
		return x
	case LiveNode:
		return Live(x)
	case nil:
		return Null()
	}

	switch classOf(v) {
	case classNone:
		return Null()
	case classObject:
		return Record(v)
	default:
		return Primitive(v)
	}
}

// Items classifies every value of a decoded list.
func Items(values []any) []Item {
	items := make([]Item, len(values))
	for i, v := range values {
		items[i] = FromValue(v)
	}
	return items
}

// Kind returns the variant tag.
func (it Item) Kind() Kind { return it.kind }

// Node returns the live handle, if any.
func (it Item) Node() (LiveNode, bool) {
	return it.node, it.kind == KindLive
}

// Value returns the unwrapped value. Live nodes are read with Data(true).
func (it Item) Value() any {
	switch it.kind {
	case KindPrimitive, KindRecord:
		return it.value
	case KindLive:
		return it.node.Data(true)
	default:
		return nil
	}
}

// Snapshot returns the unwrapped value, reading live nodes with Data(false).
func (it Item) Snapshot() any {
	if it.kind == KindLive {
		return it.node.Data(false)
	}
	return it.Value()
}

// missing reports whether the item is one of the missing-data sentinels.
func (it Item) missing() bool {
	return it.kind == KindUndefined || it.kind == KindNull
}

// unwrapped is an item resolved once per comparison.
type unwrapped struct {
	value any
	node  LiveNode
	pos   int
}

func (it Item) unwrap(pos int) unwrapped {
	u := unwrapped{value: it.Value(), pos: pos}
	if it.kind == KindLive {
		u.node = it.node
	}
	return u
}
