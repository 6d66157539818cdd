package record

import "reflect"

// Equal reports whether a and b are structurally equal storage values.
// Records compare by type and field values, sets and maps ignore order.
func Equal(a, b any) bool {
	if same(a, b) {
		return true
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case Date:
		y, ok := b.(Date)
		return ok && x.t.Equal(y.t)
	case *List:
		y, ok := b.(*List)
		return ok && equalSeq(x.items, y.items)
	case *Set:
		y, ok := b.(*Set)
		if !ok || len(x.items) != len(y.items) {
			return false
		}
		for _, item := range x.items {
			if !y.Has(item) {
				return false
			}
		}
		return true
	case *Map:
		y, ok := b.(*Map)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i, k := range x.keys {
			v, ok := y.Get(k)
			if !ok || !Equal(x.vals[i], v) {
				return false
			}
		}
		return true
	case Record:
		y, ok := b.(Record)
		if !ok || y == nil {
			return false
		}
		xi, yi := x.Instance(), y.Instance()
		if xi == yi {
			return true
		}
		return xi.typ == yi.typ && equalSeq(xi.vals, yi.vals)
	}
	if b == nil {
		return false
	}
	return Key(a) == Key(b)
}

func equalSeq(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// same reports identity for comparable values without panicking on
// uncomparable ones.
func same(a, b any) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta == nil {
		return true
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}
