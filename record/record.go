package record

import "iter"

// Record is the contract shared by every generated record type.
type Record interface {
	RecordType() *Type
	Instance() *Instance
	Encode() (any, error)
	WithChild(key string, child any) (Record, error)
	Children() iter.Seq2[string, any]
}

// Fields is the input bag for constructors and batch updates, keyed by
// field name or numeric tag.
type Fields map[string]any

// SkipValue is the type of Skip.
type SkipValue struct{}

// Skip marks an entry of a Fields bag that should be ignored.
var Skip = SkipValue{}

func isSkip(v any) bool {
	_, ok := v.(SkipValue)
	return ok
}

// Checker reports whether v is an accepted input form.
type Checker func(v any) bool

// Normalizer converts an accepted input form into the storage form.
// It is only called with values the matching Checker accepted.
type Normalizer func(v any) (any, error)
