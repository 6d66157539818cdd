package record

import (
	"encoding/base64"
	"math"
	"net/url"
	"reflect"
	"time"

	json "github.com/goccy/go-json"
)

// IsString accepts strings and named string types.
func IsString(v any) bool {
	switch v.(type) {
	case string:
		return true
	case json.Number, nil:
		return false
	}
	return reflect.ValueOf(v).Kind() == reflect.String
}

// IsBool accepts booleans.
func IsBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

// IsInt accepts every Go integer type, integral floats and integral
// JSON numbers.
func IsInt(v any) bool {
	switch x := v.(type) {
	case int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return true
	case float64:
		return x == math.Trunc(x) && !math.IsInf(x, 0)
	case float32:
		return IsInt(float64(x))
	case json.Number:
		_, err := x.Int64()
		return err == nil
	}
	return false
}

// IsFloat accepts every Go numeric type and JSON numbers.
func IsFloat(v any) bool {
	switch x := v.(type) {
	case float64, float32:
		return true
	case json.Number:
		_, err := x.Float64()
		return err == nil
	}
	return IsInt(v)
}

// IsDate accepts Date, time.Time and RFC 3339 strings.
func IsDate(v any) bool {
	switch x := v.(type) {
	case Date, time.Time:
		return true
	case string:
		_, err := ParseDate(x)
		return err == nil
	}
	return false
}

// IsURI accepts URI, *url.URL and parseable non-empty strings.
func IsURI(v any) bool {
	switch x := v.(type) {
	case URI:
		return true
	case *url.URL:
		return x != nil
	case string:
		_, err := ParseURI(x)
		return err == nil
	}
	return false
}

// IsBinary accepts Binary, []byte and base64 strings.
func IsBinary(v any) bool {
	switch x := v.(type) {
	case Binary, []byte:
		return true
	case string:
		_, err := base64.StdEncoding.DecodeString(x)
		return err == nil
	}
	return false
}

// IsLiteral accepts values equal to lit after number canonicalization.
func IsLiteral(lit any) Checker {
	want := Key(Canonical(lit))
	return func(v any) bool { return Key(Canonical(v)) == want }
}

// Optional accepts nil in addition to what c accepts.
func Optional(c Checker) Checker {
	if c == nil {
		return nil
	}
	return func(v any) bool { return v == nil || c(v) }
}

// AnyOf accepts values at least one checker accepts. A nil checker
// accepts everything.
func AnyOf(cs ...Checker) Checker {
	for _, c := range cs {
		if c == nil {
			return nil
		}
	}
	return func(v any) bool {
		for _, c := range cs {
			if c(v) {
				return true
			}
		}
		return false
	}
}

// IsListOf accepts *List and Go slices whose elements elem accepts.
func IsListOf(elem Checker) Checker {
	return func(v any) bool {
		items, ok := seqItems(v)
		return ok && allOf(items, elem)
	}
}

// IsSetOf accepts *Set, *List and Go slices whose elements elem accepts.
func IsSetOf(elem Checker) Checker {
	return func(v any) bool {
		if s, ok := v.(*Set); ok {
			return allOf(s.items, elem)
		}
		items, ok := seqItems(v)
		return ok && allOf(items, elem)
	}
}

// IsMapOf accepts *Map, Go maps and lists of [key, value] pairs.
func IsMapOf(key, val Checker) Checker {
	return func(v any) bool {
		keys, vals, ok := mapEntries(v)
		return ok && allOf(keys, key) && allOf(vals, val)
	}
}

func allOf(items []any, c Checker) bool {
	if c == nil {
		return true
	}
	for _, item := range items {
		if !c(item) {
			return false
		}
	}
	return true
}

// seqItems returns the elements of a list-like value without copying
// canonical lists.
func seqItems(v any) ([]any, bool) {
	switch x := v.(type) {
	case *List:
		return x.itemsOrNil(), true
	case []any:
		return x, true
	case nil, string, []byte, Binary:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// mapEntries returns the keys and values of a map-like value. Go maps
// iterate in key order so the result is deterministic.
func mapEntries(v any) (keys, vals []any, ok bool) {
	switch x := v.(type) {
	case *Map:
		if x == nil {
			return nil, nil, true
		}
		return x.keys, x.vals, true
	case nil, string, []byte:
		return nil, nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		type kv struct {
			key  string
			k, v any
		}
		entries := make([]kv, 0, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			k := it.Key().Interface()
			entries = append(entries, kv{key: Key(k), k: k, v: it.Value().Interface()})
		}
		sortBy(entries, func(e kv) string { return e.key })
		for _, e := range entries {
			keys = append(keys, e.k)
			vals = append(vals, e.v)
		}
		return keys, vals, true
	case reflect.Slice, reflect.Array:
		items, _ := seqItems(v)
		for _, item := range items {
			pair, ok := seqItems(item)
			if !ok || len(pair) != 2 {
				return nil, nil, false
			}
			keys = append(keys, pair[0])
			vals = append(vals, pair[1])
		}
		return keys, vals, true
	}
	if l, isList := v.(*List); isList {
		return mapEntries(l.items)
	}
	return nil, nil, false
}
