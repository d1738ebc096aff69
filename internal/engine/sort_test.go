package engine

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func TestSortDefaults(t *testing.T) {
	t.Run("no keys sorts primitives ascending", func(t *testing.T) {
		got := values(Sort(Items([]any{3, 1, 2})))
		want := []any{1, 2, 3}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Sort() = %v, want %v", got, want)
		}
	})

	t.Run("strings", func(t *testing.T) {
		got := values(Sort(Items([]any{"pear", "apple", "fig"})))
		want := []any{"apple", "fig", "pear"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Sort() = %v, want %v", got, want)
		}
	})

	t.Run("mixed numeric types", func(t *testing.T) {
		got := values(Sort(Items([]any{2.5, int64(1), uint8(2), float32(3)})))
		want := []any{int64(1), uint8(2), 2.5, float32(3)}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Sort() = %v, want %v", got, want)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := Sort(nil, asc("a")); len(got) != 0 {
			t.Errorf("Sort(nil) = %v, want empty", got)
		}
		if got := Sort([]Item{}); got == nil || len(got) != 0 {
			t.Errorf("Sort([]) = %v, want empty non-nil", got)
		}
	})

	t.Run("keys that never resolve fall back to natural order", func(t *testing.T) {
		got := values(Sort(Items([]any{3, 1, 2}), asc("a")))
		want := []any{1, 2, 3}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Sort() = %v, want %v", got, want)
		}
	})
}

func TestSortDirection(t *testing.T) {
	items := Items([]any{rec("a", 1), rec("a", 3), rec("a", 2)})

	tests := []struct {
		name string
		e    *Engine
		key  Key
		want []any
	}{
		{"ascending", New(), asc("a"), []any{rec("a", 1), rec("a", 2), rec("a", 3)}},
		{"descending", New(), desc("a"), []any{rec("a", 3), rec("a", 2), rec("a", 1)}},
		{"default is descending", New(), PropertyKey("a", DirectionDefault), []any{rec("a", 3), rec("a", 2), rec("a", 1)}},
		{"configured default", New(WithDefaultDirection(Ascending)), PropertyKey("a", DirectionDefault), []any{rec("a", 1), rec("a", 2), rec("a", 3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := values(tt.e.Sort(items, tt.key))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sort() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortTieBreakCascade(t *testing.T) {
	items := Items([]any{rec("a", 1, "b", 2), rec("a", 1, "b", 1)})
	got := values(Sort(items, asc("a"), asc("b")))
	want := []any{rec("a", 1, "b", 1), rec("a", 1, "b", 2)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sort() = %v, want %v", got, want)
	}
}

func TestSortStability(t *testing.T) {
	items := Items([]any{
		rec("a", 1, "id", 0),
		rec("a", 0, "id", 1),
		rec("a", 1, "id", 2),
		rec("a", 0, "id", 3),
		rec("a", 1, "id", 4),
	})

	got := ids(Sort(items, asc("a")))
	want := []int{1, 3, 0, 2, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sort() ids = %v, want %v", got, want)
	}

	got = ids(Sort(items, desc("a")))
	want = []int{0, 2, 4, 1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sort() desc ids = %v, want %v", got, want)
	}
}

func TestSortIdempotent(t *testing.T) {
	items := Items([]any{
		rec("a", 2, "b", "x"),
		rec("a", 1, "b", "y"),
		rec("a", 2, "b", "a"),
		rec("a", 1, "b", "y"),
		rec("a", 3, "b", "m"),
	})
	keys := []Key{desc("a"), asc("b")}

	once := Sort(items, keys...)
	twice := Sort(once, keys...)
	if !reflect.DeepEqual(values(once), values(twice)) {
		t.Errorf("Sort not idempotent: %v then %v", values(once), values(twice))
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	items := Items([]any{3, 1, 2})
	before := values(items)
	_ = Sort(items)
	if !reflect.DeepEqual(values(items), before) {
		t.Errorf("input mutated: %v, was %v", values(items), before)
	}
}

func TestSortMissingProperty(t *testing.T) {
	tests := []struct {
		name  string
		items []any
		key   Key
		want  []int
	}{
		{
			name:  "missing after present",
			items: []any{rec("a", 2, "id", 0), rec("a", 1, "id", 1), rec("id", 2), rec("id", 3)},
			key:   asc("a"),
			want:  []int{1, 0, 2, 3},
		},
		{
			name: "interleaved",
			items: []any{
				rec("a", 3, "id", 0), rec("id", 1), rec("a", 1, "id", 2),
				rec("id", 3), rec("a", 0, "id", 4), rec("a", 1, "id", 5),
			},
			key:  asc("a"),
			want: []int{4, 2, 5, 0, 1, 3},
		},
		{
			name:  "interleaved descending",
			items: []any{rec("id", 0), rec("a", 1, "id", 1), rec("id", 2), rec("a", 2, "id", 3)},
			key:   desc("a"),
			want:  []int{3, 1, 0, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Sort(Items(tt.items), tt.key)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sort() ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortMissingKeyIsConsistent(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for round := 0; round < 500; round++ {
		n := 1 + r.Intn(24)
		raw := make([]any, n)
		for i := range raw {
			if r.Intn(3) == 0 {
				raw[i] = rec("id", i)
			} else {
				raw[i] = rec("a", r.Intn(4), "id", i)
			}
		}

		once := Sort(Items(raw), asc("a"))
		got := ids(once)

		// Present items ascending by a with ties in input order, then the
		// missing ones in input order.
		prevA, prevID, missing := -1, -1, false
		for _, it := range once {
			a, has := Resolve(it.Value(), "a")
			id, _ := Resolve(it.Value(), "id")
			switch {
			case !has:
				if missing && id.(int) < prevID {
					t.Fatalf("round %d: missing items out of input order: %v", round, got)
				}
				missing = true
			case missing:
				t.Fatalf("round %d: present item after a missing one: %v", round, got)
			case a.(int) < prevA, a.(int) == prevA && id.(int) < prevID:
				t.Fatalf("round %d: present items out of order: %v", round, got)
			default:
				prevA = a.(int)
			}
			prevID = id.(int)
		}

		if twice := ids(Sort(once, asc("a"))); !reflect.DeepEqual(got, twice) {
			t.Fatalf("round %d: not idempotent: %v then %v", round, got, twice)
		}
	}
}

func TestSortMissingKeyFallsThrough(t *testing.T) {
	items := Items([]any{rec("a", 1, "id", 0), rec("a", 1, "id", 1, "b", 5), rec("a", 1, "id", 2, "b", 4)})
	got := ids(Sort(items, asc("a"), asc("b")))
	if !reflect.DeepEqual(got, []int{2, 1, 0}) {
		t.Errorf("Sort() ids = %v, want [2 1 0]", got)
	}
}

func TestSortMixedKeyClasses(t *testing.T) {
	items := Items([]any{rec("a", "x"), rec("a", 2), rec("a", true), rec("a", nil), rec("a", 1)})

	got := values(Sort(items, asc("a")))
	want := []any{rec("a", 1), rec("a", 2), rec("a", "x"), rec("a", true), rec("a", nil)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("asc = %v, want %v", got, want)
	}

	got = values(Sort(items, desc("a")))
	want = []any{rec("a", 2), rec("a", 1), rec("a", "x"), rec("a", true), rec("a", nil)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("desc = %v, want %v", got, want)
	}
}

func TestSortNaN(t *testing.T) {
	got := values(Sort(Items([]any{2.0, math.NaN(), 1.0, math.NaN(), 0.5})))
	if got[0] != 0.5 || got[1] != 1.0 || got[2] != 2.0 {
		t.Errorf("numbers = %v, want [0.5 1 2 NaN NaN]", got)
	}
	for _, v := range got[3:] {
		if f, ok := v.(float64); !ok || !math.IsNaN(f) {
			t.Errorf("tail = %v, want NaN", got[3:])
		}
	}
}

func TestSortMissingSentinels(t *testing.T) {
	items := []Item{Primitive(2), Undefined(), Null(), Primitive(1)}
	got := Sort(items)

	kinds := []Kind{got[0].Kind(), got[1].Kind(), got[2].Kind(), got[3].Kind()}
	wantKinds := []Kind{KindPrimitive, KindPrimitive, KindNull, KindUndefined}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Fatalf("kinds = %v, want %v", kinds, wantKinds)
	}
	if got[0].Value() != 1 || got[1].Value() != 2 {
		t.Errorf("values = %v, want [1 2 ...]", values(got))
	}
}

func TestSortNullKeyValuesLast(t *testing.T) {
	items := Items([]any{rec("a", nil), rec("a", 1), rec("a", 2)})

	got := values(Sort(items, asc("a")))
	want := []any{rec("a", 1), rec("a", 2), rec("a", nil)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("asc = %v, want %v", got, want)
	}

	got = values(Sort(items, desc("a")))
	want = []any{rec("a", 2), rec("a", 1), rec("a", nil)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("desc = %v, want %v", got, want)
	}
}

func TestSortTypeMismatchKeepsInputOrder(t *testing.T) {
	tests := []struct {
		name  string
		items []any
		want  []any
	}{
		{"string then number", []any{"b", 2}, []any{"b", 2}},
		{"number then string", []any{2, "b"}, []any{2, "b"}},
		{"each class sorts in its own slots", []any{3, "b", 1, "a"}, []any{1, "a", 3, "b"}},
		{"records stay in record slots", []any{rec("a", 2), 9, rec("a", 1)}, []any{rec("a", 1), 9, rec("a", 2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := values(Sort(Items(tt.items), asc("a")))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sort() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortDottedPath(t *testing.T) {
	items := Items([]any{
		rec("p", rec("q", 2)),
		rec("p", rec("q", 3)),
		rec("p", rec("q", 1)),
	})
	got := values(Sort(items, asc("p.q")))
	want := []any{rec("p", rec("q", 1)), rec("p", rec("q", 2)), rec("p", rec("q", 3))}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sort() = %v, want %v", got, want)
	}
}

type person struct {
	Name string `json:"name"`
	Age  int
}

func TestSortStructRecords(t *testing.T) {
	items := Items([]any{
		person{Name: "cy", Age: 30},
		person{Name: "al", Age: 40},
		&person{Name: "bo", Age: 20},
	})

	got := values(Sort(items, asc("name")))
	names := []string{nameOf(got[0]), nameOf(got[1]), nameOf(got[2])}
	if !reflect.DeepEqual(names, []string{"al", "bo", "cy"}) {
		t.Errorf("by name = %v", names)
	}

	got = values(Sort(items, desc("age")))
	names = []string{nameOf(got[0]), nameOf(got[1]), nameOf(got[2])}
	if !reflect.DeepEqual(names, []string{"al", "cy", "bo"}) {
		t.Errorf("by age = %v", names)
	}
}

func TestSortIndexKey(t *testing.T) {
	items := Items([]any{3, 1, 2})

	if got := values(Sort(items, IndexKey(-1))); !reflect.DeepEqual(got, []any{3, 2, 1}) {
		t.Errorf("IndexKey(-1) = %v", got)
	}
	if got := values(Sort(items, IndexKey(1))); !reflect.DeepEqual(got, []any{1, 2, 3}) {
		t.Errorf("IndexKey(1) = %v", got)
	}
}

func TestSortParallelKey(t *testing.T) {
	items := Items([]any{"x", "y", "z"})

	t.Run("ascending", func(t *testing.T) {
		got := values(Sort(items, ParallelKey([]any{3, 1, 2}, Ascending)))
		if !reflect.DeepEqual(got, []any{"y", "z", "x"}) {
			t.Errorf("Sort() = %v", got)
		}
	})

	t.Run("defaults to descending", func(t *testing.T) {
		e := New(WithDefaultDirection(Ascending))
		got := values(e.Sort(items, ParallelKey([]any{3, 1, 2}, DirectionDefault)))
		if !reflect.DeepEqual(got, []any{"x", "z", "y"}) {
			t.Errorf("Sort() = %v", got)
		}
	})

	t.Run("length mismatch skips the key", func(t *testing.T) {
		var buf bytes.Buffer
		e := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
		got := values(e.Sort(Items([]any{"z", "x", "y"}), ParallelKey([]any{1, 2}, Ascending)))
		if !reflect.DeepEqual(got, []any{"x", "y", "z"}) {
			t.Errorf("Sort() = %v", got)
		}
		if !strings.Contains(buf.String(), "mismatched length") {
			t.Errorf("expected mismatch warning, got: %s", buf.String())
		}
	})

	t.Run("later keys still apply after a mismatch", func(t *testing.T) {
		items := Items([]any{rec("a", 1), rec("a", 3), rec("a", 2)})
		got := values(Sort(items, ParallelKey([]any{1}, Ascending), asc("a")))
		want := []any{rec("a", 1), rec("a", 2), rec("a", 3)}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Sort() = %v, want %v", got, want)
		}
	})
}

func TestValidate(t *testing.T) {
	e := New()
	if err := e.Validate(3, asc("a"), ParallelKey([]any{1, 2, 3}, Ascending)); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}

	err := e.Validate(3, asc("a"), ParallelKey([]any{1}, Ascending))
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Validate() error = %v, want *MismatchError", err)
	}
	if mismatch.Key != 1 || mismatch.Length != 1 || mismatch.Expected != 3 {
		t.Errorf("mismatch = %+v", mismatch)
	}
}

func TestSortLiveNodes(t *testing.T) {
	a := &fakeNode{data: rec("info", rec("rank", 2), "name", "a"), index: 0}
	b := &fakeNode{data: rec("info", rec("rank", 1), "name", "b"), index: 1}
	c := &fakeNode{data: rec("info", rec("rank", 3), "name", "c"), index: 2}
	items := []Item{Live(a), Live(b), Live(c)}

	t.Run("structural lookup", func(t *testing.T) {
		got := Sort(items, asc("info.rank"))
		var names []any
		for _, it := range got {
			v, _ := Resolve(it.Value(), "name")
			names = append(names, v)
		}
		if !reflect.DeepEqual(names, []any{"b", "a", "c"}) {
			t.Errorf("names = %v", names)
		}
	})

	t.Run("live against plain record", func(t *testing.T) {
		mixed := []Item{Live(a), FromValue(rec("info", rec("rank", 0), "name", "plain"))}
		got := Sort(mixed, asc("info.rank"))
		v, _ := Resolve(got[0].Value(), "name")
		if v != "plain" {
			t.Errorf("first = %v, want plain", v)
		}
	})

	t.Run("parallel key uses node index", func(t *testing.T) {
		shuffled := []Item{Live(c), Live(a), Live(b)}
		got := Sort(shuffled, ParallelKey([]any{"m", "z", "a"}, Ascending))
		var names []any
		for _, it := range got {
			v, _ := Resolve(it.Value(), "name")
			names = append(names, v)
		}
		if !reflect.DeepEqual(names, []any{"c", "a", "b"}) {
			t.Errorf("names = %v", names)
		}
	})
}

func TestFromValue(t *testing.T) {
	var nilPtr *person
	tests := []struct {
		name string
		v    any
		want Kind
	}{
		{"nil", nil, KindNull},
		{"nil pointer", nilPtr, KindNull},
		{"int", 1, KindPrimitive},
		{"string", "s", KindPrimitive},
		{"bool", true, KindPrimitive},
		{"map", rec("a", 1), KindRecord},
		{"struct", person{}, KindRecord},
		{"slice", []any{1}, KindRecord},
		{"live", &fakeNode{}, KindLive},
		{"item passthrough", Undefined(), KindUndefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromValue(tt.v).Kind(); got != tt.want {
				t.Errorf("FromValue(%v).Kind() = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func ids(items []Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		v, _ := Resolve(it.Value(), "id")
		out[i] = v.(int)
	}
	return out
}

func nameOf(v any) string {
	n, _ := Resolve(v, "name")
	s, _ := n.(string)
	return s
}
