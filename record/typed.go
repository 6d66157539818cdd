package record

// Adapters between the typed callbacks of generated code and the untyped
// runtime mutators. Stored values that are not a T (nil elements of a
// nullable container) reach the callback as T's zero value.

// AnyItems converts typed elements for the variadic mutators.
func AnyItems[T any](items []T) []any {
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}

// CompareAs adapts a typed comparison. A nil cmp stays nil so Sort falls
// back to Compare.
func CompareAs[T any](cmp func(a, b T) int) func(a, b any) int {
	if cmp == nil {
		return nil
	}
	return func(a, b any) int {
		av, _ := a.(T)
		bv, _ := b.(T)
		return cmp(av, bv)
	}
}

// KeepAs adapts a typed element filter.
func KeepAs[T any](keep func(T) bool) func(any) bool {
	return func(v any) bool {
		tv, _ := v.(T)
		return keep(tv)
	}
}

// MapAs adapts a typed element mapping.
func MapAs[T any](fn func(T) T) func(any) any {
	return func(v any) any {
		tv, _ := v.(T)
		return fn(tv)
	}
}

// KeepEntriesAs adapts a typed entry filter.
func KeepEntriesAs[K, V any](keep func(K, V) bool) func(k, v any) bool {
	return func(k, v any) bool {
		tk, _ := k.(K)
		tv, _ := v.(V)
		return keep(tk, tv)
	}
}

// MapEntriesAs adapts a typed entry mapping.
func MapEntriesAs[K, V any](fn func(K, V) (K, V)) func(k, v any) (any, any) {
	return func(k, v any) (any, any) {
		tk, _ := k.(K)
		tv, _ := v.(V)
		return fn(tk, tv)
	}
}

// UpdateEntryAs adapts a typed entry update.
func UpdateEntryAs[V any](fn func(v V, ok bool) V) func(v any, ok bool) any {
	return func(v any, ok bool) any {
		tv, _ := v.(V)
		return fn(tv, ok)
	}
}
