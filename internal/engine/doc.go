// Package engine implements multi-key stable sorting and hierarchical
// grouping of heterogeneous item sequences.
//
// # Items
//
// An Item is a tagged union over the values a collection can hold:
// undefined, null, primitives (numbers, strings, bools), records (maps,
// structs, slices) and live nodes supplied by the host. FromValue classifies
// decoded data; Live wraps a LiveNode.
//
// # Keys
//
// A Key is one criterion:
//
//   - PropertyKey: a dotted path resolved against each item. Two live nodes
//     are resolved structurally with Find; everything else through Resolve.
//   - ParallelKey: an array whose i-th value orders the i-th input item.
//     A length mismatch disables the key for the whole call.
//   - IndexKey: orders whole items; the sign selects the direction.
//
// Keys without a direction take the engine default, Descending unless set
// with WithDefaultDirection.
//
// # Ordering Contract
//
//  1. Undefined items sort last, null items just before them.
//  2. Items of different primitive classes keep their input order.
//  3. Keys are consulted left to right; a key that does not resolve on
//     either side is skipped for that pair.
//  4. A tie on every consulted key keeps input order.
//  5. When every key is skipped, items compare by natural value order,
//     then input order.
//
// Sort never mutates its input and never fails. GroupBy sorts first and
// then folds the sequence into Groups in first-occurrence order.
//
// # Usage Example
//
//	items := engine.Items([]any{
//	    map[string]any{"a": "x", "b": 2},
//	    map[string]any{"a": "y", "b": 1},
//	    map[string]any{"a": "x", "b": 1},
//	})
//
//	e := engine.New()
//	sorted := e.Sort(items, engine.PropertyKey("b", engine.Ascending))
//	forest := e.GroupBy(items, engine.PropertyKey("a", engine.Ascending))
package engine
