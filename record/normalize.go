package record

import (
	"fmt"
	"maps"
	"math"
	"net/url"
	"reflect"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Canonical converts any Go number to int64 or float64 and leaves other
// values alone. Integral JSON numbers become int64.
func Canonical(v any) any {
	switch x := v.(type) {
	case int64, float64, string, bool, nil:
		return v
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

// ToCanonical is Freeze as a Normalizer, for fields typed any.
func ToCanonical(v any) (any, error) { return Freeze(v), nil }

// Freeze copies plain slices into *List and string-keyed maps into *Map,
// recursively, and canonicalizes everything else. Stored values never
// share memory with the caller.
func Freeze(v any) any {
	switch x := v.(type) {
	case []any:
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = Freeze(item)
		}
		return &List{items: items}
	case map[string]any:
		return freezeMap(x)
	case Fields:
		return freezeMap(x)
	}
	return Canonical(v)
}

func freezeMap(in map[string]any) *Map {
	m := &Map{index: make(map[string]int, len(in))}
	for _, k := range slices.Sorted(maps.Keys(in)) {
		m.put(k, Freeze(in[k]))
	}
	return m
}

// ToInt stores integers as int64.
func ToInt(v any) (any, error) {
	switch x := Canonical(v).(type) {
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) || x > math.MaxInt64 || x < math.MinInt64 {
			return nil, &Error{Code: CodeInvalidType, Message: fmt.Sprintf("%v is not an integer", x)}
		}
		return int64(x), nil
	}
	return nil, &Error{Code: CodeInvalidType, Message: "expected int, got " + describe(v)}
}

// ToFloat stores numbers as float64.
func ToFloat(v any) (any, error) {
	switch x := Canonical(v).(type) {
	case int64:
		return float64(x), nil
	case float64:
		return x, nil
	}
	return nil, &Error{Code: CodeInvalidType, Message: "expected float, got " + describe(v)}
}

// ToString stores named string types as plain strings.
func ToString(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return nil, &Error{Code: CodeInvalidType, Message: "expected string, got " + describe(v)}
}

// ToDate stores timestamps as Date.
func ToDate(v any) (any, error) {
	switch x := v.(type) {
	case Date:
		return x, nil
	case time.Time:
		return NewDate(x), nil
	case string:
		return ParseDate(x)
	}
	return nil, &Error{Code: CodeInvalidType, Message: "expected timestamp, got " + describe(v)}
}

// ToURI stores URIs as URI.
func ToURI(v any) (any, error) {
	switch x := v.(type) {
	case URI:
		return x, nil
	case *url.URL:
		return URI{s: x.String()}, nil
	case string:
		return ParseURI(x)
	}
	return nil, &Error{Code: CodeInvalidType, Message: "expected uri, got " + describe(v)}
}

// ToBinary stores byte strings as Binary.
func ToBinary(v any) (any, error) {
	switch x := v.(type) {
	case Binary:
		return x, nil
	case []byte:
		return NewBinary(x), nil
	case string:
		return ParseBinary(x)
	}
	return nil, &Error{Code: CodeInvalidType, Message: "expected bytes, got " + describe(v)}
}

// OrNil passes nil through and applies n to everything else.
func OrNil(n Normalizer) Normalizer {
	if n == nil {
		return nil
	}
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		return n(v)
	}
}

// ToListOf returns a normalizer producing *List. A *List whose elements
// elem leaves unchanged is returned as is.
func ToListOf(elem Normalizer) Normalizer {
	return func(v any) (any, error) {
		if l, ok := v.(*List); ok {
			out, changed, err := mapItems(l.itemsOrNil(), elem)
			if err != nil || !changed {
				return l, err
			}
			return &List{items: out}, nil
		}
		items, ok := seqItems(v)
		if !ok {
			return nil, &Error{Code: CodeInvalidType, Message: "expected list, got " + describe(v)}
		}
		out, _, err := mapItems(items, elem)
		if err != nil {
			return nil, err
		}
		return &List{items: cloneIfShared(out, items)}, nil
	}
}

// ToSetOf returns a normalizer producing *Set, keeping the first of any
// elements that normalize to equal values.
func ToSetOf(elem Normalizer) Normalizer {
	return func(v any) (any, error) {
		if s, ok := v.(*Set); ok {
			out, changed, err := mapItems(s.itemsOrNil(), elem)
			if err != nil || !changed {
				return s, err
			}
			return newSet(out), nil
		}
		items, ok := seqItems(v)
		if !ok {
			return nil, &Error{Code: CodeInvalidType, Message: "expected set, got " + describe(v)}
		}
		out, _, err := mapItems(items, elem)
		if err != nil {
			return nil, err
		}
		return newSet(cloneIfShared(out, items)), nil
	}
}

// ToMapOf returns a normalizer producing *Map.
func ToMapOf(key, val Normalizer) Normalizer {
	return func(v any) (any, error) {
		keys, vals, ok := mapEntries(v)
		if !ok {
			return nil, &Error{Code: CodeInvalidType, Message: "expected map, got " + describe(v)}
		}
		nk, kChanged, err := mapItems(keys, key)
		if err != nil {
			return nil, fmt.Errorf("key: %w", err)
		}
		nv, vChanged, err := mapItems(vals, val)
		if err != nil {
			return nil, err
		}
		if m, isMap := v.(*Map); isMap && !kChanged && !vChanged {
			return m, nil
		}
		m := &Map{index: make(map[string]int, len(nk))}
		for i := range nk {
			m.put(nk[i], nv[i])
		}
		return m, nil
	}
}

// mapItems applies n to each item. The result shares items when nothing
// changed.
func mapItems(items []any, n Normalizer) ([]any, bool, error) {
	if n == nil {
		return items, false, nil
	}
	var out []any
	for i, item := range items {
		nv, err := n(item)
		if err != nil {
			return nil, false, fmt.Errorf("[%d]: %w", i, err)
		}
		if out == nil && !same(item, nv) {
			out = slices.Clone(items)
		}
		if out != nil {
			out[i] = nv
		}
	}
	if out == nil {
		return items, false, nil
	}
	return out, true, nil
}

// cloneIfShared copies out when it still aliases the caller's slice.
func cloneIfShared(out, in []any) []any {
	if len(out) > 0 && len(in) > 0 && &out[0] == &in[0] {
		return slices.Clone(out)
	}
	if out == nil {
		return []any{}
	}
	return out
}

func sortBy[T any](s []T, key func(T) string) {
	slices.SortStableFunc(s, func(a, b T) int { return strings.Compare(key(a), key(b)) })
}
