package record

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Key returns a canonical string for v such that structurally equal values
// share a key. Set membership and map lookup use it. Input forms that
// normalize to the same storage value (int and int64, time.Time and Date,
// []byte and Binary) share a key too.
func Key(v any) string {
	var sb strings.Builder
	writeKey(&sb, v)
	return sb.String()
}

func writeKey(sb *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		sb.WriteByte('_')
	case string:
		sb.WriteByte('s')
		sb.WriteString(strconv.Quote(x))
	case bool:
		if x {
			sb.WriteString("b1")
		} else {
			sb.WriteString("b0")
		}
	case int64:
		sb.WriteByte('i')
		sb.WriteString(strconv.FormatInt(x, 10))
	case int:
		sb.WriteByte('i')
		sb.WriteString(strconv.Itoa(x))
	case float64:
		sb.WriteByte('f')
		sb.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case json.Number:
		if n, err := x.Int64(); err == nil {
			writeKey(sb, n)
		} else if f, err := x.Float64(); err == nil {
			writeKey(sb, f)
		} else {
			writeKey(sb, string(x))
		}
	case Date:
		writeTimeKey(sb, x.t)
	case time.Time:
		writeTimeKey(sb, x)
	case URI:
		sb.WriteByte('u')
		sb.WriteString(strconv.Quote(x.s))
	case *url.URL:
		sb.WriteByte('u')
		sb.WriteString(strconv.Quote(x.String()))
	case Binary:
		sb.WriteByte('x')
		sb.WriteString(hex.EncodeToString([]byte(x.s)))
	case []byte:
		sb.WriteByte('x')
		sb.WriteString(hex.EncodeToString(x))
	case *List:
		writeSeqKey(sb, x.items)
	case []any:
		writeSeqKey(sb, x)
	case *Set:
		keys := make([]string, len(x.items))
		for i, item := range x.items {
			keys[i] = Key(item)
		}
		slices.Sort(keys)
		sb.WriteString("S{")
		sb.WriteString(strings.Join(keys, ","))
		sb.WriteByte('}')
	case *Map:
		writeEntriesKey(sb, x.keys, x.vals)
	case Record:
		in := x.Instance()
		sb.WriteByte('r')
		sb.WriteString(strconv.Quote(in.typ.identity))
		writeSeqKey(sb, in.vals)
	default:
		writeReflectKey(sb, v)
	}
}

func writeTimeKey(sb *strings.Builder, t time.Time) {
	sb.WriteByte('d')
	sb.WriteString(t.UTC().Format(time.RFC3339Nano))
}

func writeSeqKey(sb *strings.Builder, items []any) {
	sb.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeKey(sb, item)
	}
	sb.WriteByte(']')
}

func writeEntriesKey(sb *strings.Builder, keys, vals []any) {
	entries := make([]string, len(keys))
	for i := range keys {
		entries[i] = Key(keys[i]) + "=" + Key(vals[i])
	}
	slices.Sort(entries)
	sb.WriteString("M{")
	sb.WriteString(strings.Join(entries, ","))
	sb.WriteByte('}')
}

func writeReflectKey(sb *strings.Builder, v any) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		writeKey(sb, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		writeKey(sb, int64(rv.Uint()))
	case reflect.Float32:
		writeKey(sb, rv.Float())
	case reflect.Int, reflect.Int64:
		writeKey(sb, rv.Int())
	case reflect.Float64:
		writeKey(sb, rv.Float())
	case reflect.String:
		writeKey(sb, rv.String())
	case reflect.Bool:
		writeKey(sb, rv.Bool())
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		writeSeqKey(sb, items)
	case reflect.Map:
		keys := make([]any, 0, rv.Len())
		vals := make([]any, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			keys = append(keys, iter.Key().Interface())
			vals = append(vals, iter.Value().Interface())
		}
		writeEntriesKey(sb, keys, vals)
	default:
		fmt.Fprintf(sb, "?%T:%v", v, v)
	}
}
