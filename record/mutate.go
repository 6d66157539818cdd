package record

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Container mutators operate on field i of an instance. Mutators that
// introduce new values validate and normalize the whole rebuilt container
// and return an error; those that only drop or reorder existing values
// cannot fail and panic when called on a field of the wrong kind.
// Every mutator returns the receiver when the container would not change.

func (in *Instance) mutable(i int, kinds ...Kind) *slot {
	s := in.slot(i)
	if !slices.Contains(kinds, s.Kind) {
		panic(&Error{Type: in.typ.identity, Field: s.Name, Code: CodeInvalidType, Message: fmt.Sprintf("%s field does not support this operation", s.Kind)})
	}
	if err := in.writable(s); err != nil {
		panic(err)
	}
	return s
}

// replace validates and normalizes a rebuilt container.
func (in *Instance) replace(s *slot, raw any) (*Instance, error) {
	nv, err := in.typ.prepare(s, raw)
	if err != nil {
		return nil, err
	}
	return in.withContainer(s.index, nv), nil
}

// withContainer is with for container results. An absent container counts
// as empty, so an empty result leaves it absent.
func (in *Instance) withContainer(i int, c any) *Instance {
	if in.vals[i] == nil && containerLen(c) == 0 {
		return in
	}
	return in.with(i, c)
}

func containerLen(c any) int {
	switch x := c.(type) {
	case *List:
		return x.Len()
	case *Set:
		return x.Len()
	case *Map:
		return x.Len()
	}
	return -1
}

func (in *Instance) items(i int, kinds ...Kind) (*slot, []any) {
	s := in.mutable(i, kinds...)
	switch c := in.vals[i].(type) {
	case *List:
		return s, slices.Clone(c.items)
	case *Set:
		return s, slices.Clone(c.items)
	}
	return s, nil
}

func (in *Instance) rebuilt(s *slot, items []any) *Instance {
	if items == nil {
		items = []any{}
	}
	if s.Kind == KindSet {
		return in.withContainer(s.index, newSet(items))
	}
	return in.withContainer(s.index, &List{items: items})
}

// lookupValue normalizes a lookup value; ok is false when it cannot be a member.
func lookupValue(n Normalizer, v any) (any, bool) {
	if n == nil {
		return Canonical(v), true
	}
	nv, err := n(v)
	return nv, err == nil
}

// relIndex resolves a possibly negative index against length n.
func relIndex(idx, n int) int {
	if idx < 0 {
		return max(n+idx, 0)
	}
	return min(idx, n)
}

// Push appends items to a list field.
func (in *Instance) Push(i int, items ...any) (*Instance, error) {
	s, cur := in.items(i, KindList)
	return in.replace(s, append(cur, items...))
}

// Pop removes the last element of a list field.
func (in *Instance) Pop(i int) *Instance {
	s, cur := in.items(i, KindList)
	if len(cur) == 0 {
		return in
	}
	return in.rebuilt(s, cur[:len(cur)-1])
}

// Shift removes the first element of a list field.
func (in *Instance) Shift(i int) *Instance {
	s, cur := in.items(i, KindList)
	if len(cur) == 0 {
		return in
	}
	return in.rebuilt(s, cur[1:])
}

// Unshift prepends items to a list field.
func (in *Instance) Unshift(i int, items ...any) (*Instance, error) {
	s, cur := in.items(i, KindList)
	return in.replace(s, append(slices.Clone(items), cur...))
}

// Splice removes count elements at start and inserts items in their place.
// A negative start counts from the end.
func (in *Instance) Splice(i, start, count int, items ...any) (*Instance, error) {
	s, cur := in.items(i, KindList)
	start = relIndex(start, len(cur))
	count = min(max(count, 0), len(cur)-start)
	next := slices.Concat(cur[:start], items, cur[start+count:])
	return in.replace(s, next)
}

// Reverse reverses a list field.
func (in *Instance) Reverse(i int) *Instance {
	s, cur := in.items(i, KindList)
	slices.Reverse(cur)
	return in.rebuilt(s, cur)
}

// Sort stably sorts a list field. A nil cmp uses Compare.
func (in *Instance) Sort(i int, cmp func(a, b any) int) *Instance {
	s, cur := in.items(i, KindList)
	if cmp == nil {
		cmp = Compare
	}
	slices.SortStableFunc(cur, cmp)
	return in.rebuilt(s, cur)
}

// Fill sets elements [start, end) of a list field to v. Negative bounds
// count from the end; bounds past the end are clamped.
func (in *Instance) Fill(i int, v any, start, end int) (*Instance, error) {
	s, cur := in.items(i, KindList)
	start, end = relIndex(start, len(cur)), relIndex(end, len(cur))
	for j := start; j < end; j++ {
		cur[j] = v
	}
	return in.replace(s, cur)
}

// CopyWithin copies elements [start, end) to position target, without
// changing the length.
func (in *Instance) CopyWithin(i, target, start, end int) *Instance {
	s, cur := in.items(i, KindList)
	n := len(cur)
	target, start, end = relIndex(target, n), relIndex(start, n), relIndex(end, n)
	count := min(end-start, n-target)
	if count <= 0 {
		return in
	}
	next := slices.Clone(cur)
	copy(next[target:target+count], cur[start:start+count])
	return in.rebuilt(s, next)
}

// Filter keeps the elements of a list or set field that keep accepts.
func (in *Instance) Filter(i int, keep func(any) bool) *Instance {
	s, cur := in.items(i, KindList, KindSet)
	return in.rebuilt(s, slices.DeleteFunc(cur, func(v any) bool { return !keep(v) }))
}

// Add inserts v into a set field.
func (in *Instance) Add(i int, v any) (*Instance, error) { return in.AddAll(i, v) }

// AddAll inserts vs into a set field.
func (in *Instance) AddAll(i int, vs ...any) (*Instance, error) {
	s, cur := in.items(i, KindSet)
	return in.replace(s, append(cur, vs...))
}

// Delete removes v from a set field.
func (in *Instance) Delete(i int, v any) *Instance { return in.DeleteAll(i, v) }

// DeleteAll removes vs from a set field.
func (in *Instance) DeleteAll(i int, vs ...any) *Instance {
	s, cur := in.items(i, KindSet)
	drop := make(map[string]bool, len(vs))
	for _, v := range vs {
		if p, ok := lookupValue(s.elem, v); ok {
			drop[Key(p)] = true
		}
	}
	return in.rebuilt(s, slices.DeleteFunc(cur, func(item any) bool { return drop[Key(item)] }))
}

// MapValues replaces every element of a set field with fn(element).
func (in *Instance) MapValues(i int, fn func(any) any) (*Instance, error) {
	s, cur := in.items(i, KindSet)
	for j, v := range cur {
		cur[j] = fn(v)
	}
	return in.replace(s, cur)
}

// Update replaces a set field with fn applied to the current set.
func (in *Instance) Update(i int, fn func(*Set) any) (*Instance, error) {
	s := in.mutable(i, KindSet)
	cur, _ := in.vals[i].(*Set)
	if cur == nil {
		cur = newSet(nil)
	}
	return in.replace(s, fn(cur))
}

// Clear empties a list, set or map field.
func (in *Instance) Clear(i int) *Instance {
	s := in.mutable(i, KindList, KindSet, KindMap)
	switch s.Kind {
	case KindMap:
		return in.withContainer(i, NewMap())
	case KindSet:
		return in.withContainer(i, newSet(nil))
	}
	return in.withContainer(i, &List{items: []any{}})
}

func (in *Instance) entries(i int) (*slot, *Map) {
	s := in.mutable(i, KindMap)
	m := &Map{index: map[string]int{}}
	if cur, ok := in.vals[i].(*Map); ok {
		m.keys = slices.Clone(cur.keys)
		m.vals = slices.Clone(cur.vals)
		for k, j := range cur.index {
			m.index[k] = j
		}
	}
	return s, m
}

// SetEntry stores v under k in a map field.
func (in *Instance) SetEntry(i int, k, v any) (*Instance, error) {
	s, m := in.entries(i)
	if p, ok := lookupValue(s.key, k); ok {
		k = p
	}
	m.put(k, v)
	return in.replace(s, m)
}

// DeleteEntry removes k from a map field.
func (in *Instance) DeleteEntry(i int, k any) *Instance {
	s, m := in.entries(i)
	p, ok := lookupValue(s.key, k)
	if !ok || !m.Has(p) {
		return in
	}
	return in.withContainer(i, filterMap(m, func(key, _ any) bool { return Key(key) != Key(p) }))
}

// Merge stores every entry of other in a map field. other may be a *Map,
// a Go map or a list of [key, value] pairs.
func (in *Instance) Merge(i int, other any) (*Instance, error) {
	s, m := in.entries(i)
	keys, vals, ok := mapEntries(other)
	if !ok {
		return nil, &Error{Type: in.typ.identity, Field: s.Name, Code: CodeInvalidType, Message: "cannot merge " + describe(other)}
	}
	for j, k := range keys {
		if p, ok := lookupValue(s.key, k); ok {
			k = p
		}
		m.put(k, vals[j])
	}
	return in.replace(s, m)
}

// UpdateEntry stores fn(current, present) under k in a map field.
func (in *Instance) UpdateEntry(i int, k any, fn func(v any, ok bool) any) (*Instance, error) {
	s, m := in.entries(i)
	if p, ok := lookupValue(s.key, k); ok {
		k = p
	}
	cur, ok := m.Get(k)
	m.put(k, fn(cur, ok))
	return in.replace(s, m)
}

// MapEntries replaces every entry of a map field with fn(key, value).
func (in *Instance) MapEntries(i int, fn func(k, v any) (any, any)) (*Instance, error) {
	s, m := in.entries(i)
	next := &Map{index: make(map[string]int, len(m.keys))}
	for j, k := range m.keys {
		next.put(fn(k, m.vals[j]))
	}
	return in.replace(s, next)
}

// FilterEntries keeps the entries of a map field that keep accepts.
func (in *Instance) FilterEntries(i int, keep func(k, v any) bool) *Instance {
	_, m := in.entries(i)
	return in.withContainer(i, filterMap(m, keep))
}

func filterMap(m *Map, keep func(k, v any) bool) *Map {
	out := &Map{index: make(map[string]int, len(m.keys))}
	for j, k := range m.keys {
		if keep(k, m.vals[j]) {
			out.put(k, m.vals[j])
		}
	}
	return out
}

// Compare is the default list order: numbers numerically, then strings,
// booleans and timestamps naturally, anything else by Key.
func Compare(a, b any) int {
	a, b = Canonical(a), Canonical(b)
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, y)
		case float64:
			return cmp.Compare(float64(x), y)
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, float64(y))
		case float64:
			return cmp.Compare(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	case Date:
		if y, ok := b.(Date); ok {
			return x.t.Compare(y.t)
		}
	}
	return strings.Compare(Key(a), Key(b))
}
