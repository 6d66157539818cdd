package record

import (
	"fmt"
	"strings"
)

// Envelope keys of the tagged wire form.
const (
	TagKey  = "$tag"
	DataKey = "$data"
)

// Encode returns the plain wire form: a map keyed by field name, with
// absent fields omitted.
func (in *Instance) Encode() (any, error) {
	slots := in.typ.resolved()
	out := make(map[string]any, len(slots))
	for i := range slots {
		s := &slots[i]
		v := in.vals[i]
		if v == nil {
			continue
		}
		enc, err := encodeValue(v, s.UnionOfRecords, s.ElemUnionOfRecords)
		if err != nil {
			return nil, fieldError(in.typ, s.Name, err)
		}
		out[s.Name] = enc
	}
	return out, nil
}

// EncodeTagged returns {"$tag": identity, "$data": data} where data is the
// compact form when the type has one and the plain form otherwise.
func (in *Instance) EncodeTagged() (any, error) {
	data, err := in.encodePreferred()
	if err != nil {
		return nil, err
	}
	return map[string]any{TagKey: in.typ.identity, DataKey: data}, nil
}

// EncodeCompact returns the bare-string form.
func (in *Instance) EncodeCompact() (string, error) {
	t := in.typ
	if !t.HasCompact() {
		return "", &Error{Type: t.identity, Code: CodeInvalidCompact, Message: "type has no compact form"}
	}
	s, err := ToString(in.vals[t.compact])
	if err != nil {
		return "", fieldError(t, t.spec.Fields[t.compact].Name, err)
	}
	return t.spec.Compact.Prefix + s.(string), nil
}

func (in *Instance) encodePreferred() (any, error) {
	if in.typ.HasCompact() {
		return in.EncodeCompact()
	}
	return in.Encode()
}

func encodeValue(v any, tagged, elemTagged bool) (any, error) {
	switch x := v.(type) {
	case Record:
		if tagged {
			return x.Instance().EncodeTagged()
		}
		return x.Instance().encodePreferred()
	case *List:
		return encodeItems(x.items, elemTagged)
	case *Set:
		return encodeItems(x.items, elemTagged)
	case *Map:
		return encodeMap(x, elemTagged)
	case Date, URI, Binary:
		return x.(fmt.Stringer).String(), nil
	}
	return v, nil
}

func encodeItems(items []any, tagged bool) ([]any, error) {
	out := make([]any, len(items))
	for i, item := range items {
		enc, err := encodeValue(item, tagged, false)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = enc
	}
	return out, nil
}

// encodeMap uses a JSON object when every key is a string and a list of
// [key, value] pairs otherwise.
func encodeMap(m *Map, tagged bool) (any, error) {
	stringKeys := true
	for _, k := range m.keys {
		if _, ok := k.(string); !ok {
			stringKeys = false
			break
		}
	}
	if stringKeys {
		out := make(map[string]any, len(m.keys))
		for i, k := range m.keys {
			enc, err := encodeValue(m.vals[i], tagged, false)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k.(string)] = enc
		}
		return out, nil
	}
	out := make([]any, len(m.keys))
	for i, k := range m.keys {
		ek, err := encodeValue(k, false, false)
		if err != nil {
			return nil, err
		}
		ev, err := encodeValue(m.vals[i], tagged, false)
		if err != nil {
			return nil, err
		}
		out[i] = []any{ek, ev}
	}
	return out, nil
}

// Decode builds an instance from any accepted wire form: a compact string,
// a tagged envelope, a plain entries map, JSON bytes or an instance of t.
func (t *Type) Decode(data any) (*Instance, error) {
	switch x := data.(type) {
	case []byte:
		return UnmarshalJSON(t, x)
	case nil:
		return nil, &Error{Type: t.identity, Code: CodeInvalidFormat, Message: "no data"}
	}
	r, err := t.Coerce(data)
	if err != nil {
		return nil, err
	}
	return r.Instance(), nil
}

func (t *Type) acceptsCompact(s string) bool {
	if !t.HasCompact() {
		return false
	}
	s = strings.TrimPrefix(s, t.spec.Compact.Prefix)
	slot := &t.resolved()[t.compact]
	return slot.check == nil || slot.check(s)
}

// decodeCompact accepts the string with or without the declared prefix.
func (t *Type) decodeCompact(s string) (*Instance, error) {
	if !t.HasCompact() {
		return nil, &Error{Type: t.identity, Code: CodeInvalidCompact, Message: "type has no compact form"}
	}
	name := t.spec.Fields[t.compact].Name
	in, err := t.build(map[string]any{name: strings.TrimPrefix(s, t.spec.Compact.Prefix)}, buildDecode)
	if err != nil {
		return nil, &Error{Type: t.identity, Code: CodeInvalidCompact, Message: fmt.Sprintf("cannot decode %q", s), Cause: err}
	}
	return in, nil
}

func (t *Type) decodeTagged(tag, data any) (*Instance, error) {
	s, _ := tag.(string)
	if !t.matchesTag(s) {
		return nil, &Error{Type: t.identity, Code: CodeTagMismatch, Message: fmt.Sprintf("envelope tag %q", tag)}
	}
	if _, nested := data.(Record); nested || data == nil {
		return nil, &Error{Type: t.identity, Code: CodeInvalidFormat, Message: "envelope $data must be a string or an object"}
	}
	if entries, ok := asEntries(data); ok {
		if _, again := entries[TagKey]; again {
			return nil, &Error{Type: t.identity, Code: CodeInvalidFormat, Message: "nested envelope"}
		}
	}
	r, err := t.Coerce(data)
	if err != nil {
		return nil, err
	}
	return r.Instance(), nil
}
