// Package record is the runtime shared by every type recgen generates.
//
// A record type is described by a *Type: an ordered list of fields, each
// with a validation Checker and a Normalizer that coerces accepted input
// forms into the canonical storage form. Values are *Instance, immutable
// after construction. Every mutation returns a new instance, or the same
// instance when the result would be structurally equal.
//
// Generated code declares one *Type per record in two steps, NewType at
// package initialization and Define in init, so mutually recursive record
// types can reference each other. Field closures are resolved on first
// use, after every Define has run.
//
// Canonical storage forms:
//
//	string, bool          as is
//	int, float            int64, float64
//	timestamp, uri, bytes Date, URI, Binary
//	array, set, map       *List, *Set, *Map
//	record                the generated wrapper (or *Instance)
package record
