package record

import (
	"iter"
	"slices"
)

// List is an immutable ordered sequence.
type List struct {
	items []any
}

// NewList copies items into a list. Elements are stored as given.
func NewList(items ...any) *List { return &List{items: slices.Clone(items)} }

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// At returns the element at i.
func (l *List) At(i int) any { return l.items[i] }

// All yields index/element pairs.
func (l *List) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i, v := range l.itemsOrNil() {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Values yields the elements in order.
func (l *List) Values() iter.Seq[any] { return slices.Values(l.itemsOrNil()) }

// Slice returns a copy of the elements.
func (l *List) Slice() []any { return slices.Clone(l.itemsOrNil()) }

// Index returns the position of the first element equal to v, or -1.
func (l *List) Index(v any) int {
	return slices.IndexFunc(l.itemsOrNil(), func(item any) bool { return Equal(item, v) })
}

func (l *List) itemsOrNil() []any {
	if l == nil {
		return nil
	}
	return l.items
}

// Set is an immutable insertion-ordered set.
type Set struct {
	items []any
	index map[string]int
}

// NewSet builds a set, keeping the first of any equal elements.
func NewSet(items ...any) *Set { return newSet(slices.Clone(items)) }

// newSet takes ownership of items.
func newSet(items []any) *Set {
	s := &Set{items: items[:0], index: make(map[string]int, len(items))}
	for _, item := range items {
		k := Key(item)
		if _, dup := s.index[k]; dup {
			continue
		}
		s.index[k] = len(s.items)
		s.items = append(s.items, item)
	}
	return s
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Has reports membership.
func (s *Set) Has(v any) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[Key(v)]
	return ok
}

// Values yields the elements in insertion order.
func (s *Set) Values() iter.Seq[any] { return slices.Values(s.itemsOrNil()) }

// Slice returns a copy of the elements in insertion order.
func (s *Set) Slice() []any { return slices.Clone(s.itemsOrNil()) }

func (s *Set) itemsOrNil() []any {
	if s == nil {
		return nil
	}
	return s.items
}

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   any
	Value any
}

// Map is an immutable insertion-ordered map with structural keys.
type Map struct {
	keys  []any
	vals  []any
	index map[string]int
}

// NewMap builds a map. A repeated key keeps its first position and its
// last value.
func NewMap(entries ...Entry) *Map {
	m := &Map{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		m.put(e.Key, e.Value)
	}
	return m
}

func (m *Map) put(k, v any) {
	ks := Key(k)
	if i, ok := m.index[ks]; ok {
		m.vals[i] = v
		return
	}
	m.index[ks] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value stored under k.
func (m *Map) Get(k any) (any, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[Key(k)]
	if !ok {
		return nil, false
	}
	return m.vals[i], true
}

// Has reports whether k is present.
func (m *Map) Has(k any) bool {
	_, ok := m.Get(k)
	return ok
}

// All yields entries in insertion order.
func (m *Map) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		if m == nil {
			return
		}
		for i, k := range m.keys {
			if !yield(k, m.vals[i]) {
				return
			}
		}
	}
}

// Keys returns a copy of the keys in insertion order.
func (m *Map) Keys() []any {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Entries returns a copy of the entries in insertion order.
func (m *Map) Entries() []Entry {
	out := make([]Entry, m.Len())
	for i := range out {
		out[i] = Entry{Key: m.keys[i], Value: m.vals[i]}
	}
	return out
}

// ItemsOf returns the elements of a *List or *Set as a []T. Elements that
// are not a T (nil in a nullable container) become T's zero value.
func ItemsOf[T any](v any) []T {
	var items []any
	switch c := v.(type) {
	case *List:
		items = c.itemsOrNil()
	case *Set:
		items = c.itemsOrNil()
	default:
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i], _ = item.(T)
	}
	return out
}
