package record

import (
	"fmt"
	"maps"
	"slices"

	json "github.com/goccy/go-json"
)

// Instance is an immutable record value.
type Instance struct {
	typ  *Type
	vals []any
}

// RecordType returns the instance's type.
func (in *Instance) RecordType() *Type {
	if in == nil {
		return nil
	}
	return in.typ
}

// Instance returns in, so *Instance satisfies Record.
func (in *Instance) Instance() *Instance { return in }

// Get returns the stored value of field i, nil when absent.
func (in *Instance) Get(i int) any { return in.vals[i] }

// Lookup returns a field's stored value by name or numeric tag.
func (in *Instance) Lookup(key string) (any, bool) {
	i, ok := in.typ.fieldIndex(key)
	if !ok {
		return nil, false
	}
	return in.vals[i], in.vals[i] != nil
}

// Has reports whether field i holds a value.
func (in *Instance) Has(i int) bool { return in.vals[i] != nil }

// Equal reports structural equality with another record.
func (in *Instance) Equal(other Record) bool { return Equal(in, other) }

func (in *Instance) String() string {
	enc, err := in.Encode()
	if err != nil {
		return in.typ.identity + "(" + err.Error() + ")"
	}
	b, err := json.Marshal(enc)
	if err != nil {
		return in.typ.identity + "(" + err.Error() + ")"
	}
	return in.typ.identity + string(b)
}

func (in *Instance) slot(i int) *slot {
	slots := in.typ.resolved()
	if i < 0 || i >= len(slots) {
		panic(fmt.Sprintf("record: %s has no field index %d", in.typ.name, i))
	}
	return &slots[i]
}

// with returns a copy with field i replaced, or in itself when the stored
// value would not change.
func (in *Instance) with(i int, v any) *Instance {
	if Equal(in.vals[i], v) {
		return in
	}
	vals := slices.Clone(in.vals)
	vals[i] = v
	return &Instance{typ: in.typ, vals: vals}
}

func (in *Instance) writable(s *slot) error {
	if s.Readonly {
		return &Error{Type: in.typ.identity, Field: s.Name, Code: CodeReadonly, Message: "field is readonly"}
	}
	return nil
}

// Set replaces field i, validating and normalizing v. A nil v unsets an
// optional or nullable field.
func (in *Instance) Set(i int, v any) (*Instance, error) {
	s := in.slot(i)
	if err := in.writable(s); err != nil {
		return nil, err
	}
	nv, err := in.typ.prepare(s, v)
	if err != nil {
		return nil, err
	}
	return in.with(i, nv), nil
}

// Unset clears field i. Required non-nullable fields cannot be unset.
func (in *Instance) Unset(i int) (*Instance, error) {
	s := in.slot(i)
	if err := in.writable(s); err != nil {
		return nil, err
	}
	if s.Required && !s.Nullable {
		return nil, in.typ.requiredError(s)
	}
	return in.with(i, nil), nil
}

// SetMany applies several field updates in one pass. Entries holding Skip
// are ignored; unknown keys are an error.
func (in *Instance) SetMany(updates Fields) (*Instance, error) {
	for _, key := range slices.Sorted(maps.Keys(updates)) {
		if _, ok := in.typ.fieldIndex(key); !ok {
			return nil, &Error{Type: in.typ.identity, Field: key, Code: CodeUnknownField, Message: "no such field"}
		}
	}
	var vals []any
	slots := in.typ.resolved()
	for i := range slots {
		s := &slots[i]
		v, ok := lookup(updates, s)
		if !ok {
			continue
		}
		if err := in.writable(s); err != nil {
			return nil, err
		}
		nv, err := in.typ.prepare(s, v)
		if err != nil {
			return nil, err
		}
		if Equal(in.vals[i], nv) {
			continue
		}
		if vals == nil {
			vals = slices.Clone(in.vals)
		}
		vals[i] = nv
	}
	if vals == nil {
		return in, nil
	}
	return &Instance{typ: in.typ, vals: vals}, nil
}
