package record

import (
	"errors"
	"fmt"
	"strings"
)

// Normalize coerces an already-validated value into an instance of t and
// returns the public record. It is the normalizer for record fields.
func (t *Type) Normalize(v any) (any, error) {
	r, err := t.coerce(v, false)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Coerce validates v and returns it as an instance of t. It accepts an
// instance of t (returned as is), a plain entries map, a tagged envelope
// and, for compact types, a bare string.
func (t *Type) Coerce(v any) (Record, error) { return t.coerce(v, true) }

func (t *Type) coerce(v any, validate bool) (Record, error) {
	switch x := v.(type) {
	case nil:
		return nil, &Error{Type: t.identity, Code: CodeInvalidType, Message: "expected " + t.identity + ", got null"}
	case Record:
		if t.IsInstance(x) {
			return x.RecordType().Wrap(x.Instance()), nil
		}
		if origin(x.RecordType()) == origin(t) {
			// Same generic declaration under another binding: rebuild
			// through t's own parameter constructors.
			enc, err := x.Encode()
			if err != nil {
				return nil, err
			}
			return t.coerce(enc, true)
		}
		return nil, &Error{Type: t.identity, Code: CodeInvalidType, Message: "expected " + t.identity + ", got " + x.RecordType().identity}
	case string:
		in, err := t.decodeCompact(x)
		if err != nil {
			return nil, err
		}
		return t.Wrap(in), nil
	}
	entries, ok := asEntries(v)
	if !ok {
		return nil, &Error{Type: t.identity, Code: CodeInvalidType, Message: "expected " + t.identity + ", got " + describe(v)}
	}
	if tag, tagged := entries[TagKey]; tagged {
		in, err := t.decodeTagged(tag, entries[DataKey])
		if err != nil {
			return nil, err
		}
		return t.Wrap(in), nil
	}
	mode := buildTrusted
	if validate {
		mode = buildDecode
	}
	in, err := t.build(entries, mode)
	if err != nil {
		return nil, err
	}
	return t.Wrap(in), nil
}

// Accepts reports whether v is an accepted input form of t: an instance,
// valid entries, a tagged envelope naming t or a compact string.
func (t *Type) Accepts(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case Record:
		if t.IsInstance(x) {
			return true
		}
		if origin(x.RecordType()) != origin(t) {
			return false
		}
		enc, err := x.Encode()
		return err == nil && t.Accepts(enc)
	case string:
		return t.acceptsCompact(x)
	}
	entries, ok := asEntries(v)
	if !ok {
		return false
	}
	if tag, tagged := entries[TagKey]; tagged {
		s, _ := tag.(string)
		return t.matchesTag(s) && t.Accepts(entries[DataKey])
	}
	return t.validate(entries) == nil
}

func (t *Type) matchesTag(tag string) bool {
	if tag == t.identity {
		return true
	}
	// An unbound generic accepts envelopes of its bindings.
	return t.base == nil && len(t.spec.Params) > 0 && strings.HasPrefix(tag, t.identity+"<")
}

func origin(t *Type) *Type {
	if t != nil && t.base != nil {
		return t.base
	}
	return t
}

func asEntries(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, true
	case Fields:
		return x, true
	}
	return nil, false
}

// UnionOf returns the normalizer of a union of record types. Dispatch
// order: instances of a member, then a tagged envelope's $tag, then the
// first member that accepts the shape.
func UnionOf(members ...*Type) Normalizer {
	return func(v any) (any, error) {
		r, err := CoerceUnion(v, members...)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// CoerceUnion coerces v into one of the member record types.
func CoerceUnion(v any, members ...*Type) (Record, error) {
	if r, ok := v.(Record); ok {
		for _, m := range members {
			if m.IsInstance(r) {
				return r.RecordType().Wrap(r.Instance()), nil
			}
		}
	}
	if entries, ok := asEntries(v); ok {
		if tag, tagged := entries[TagKey]; tagged {
			s, _ := tag.(string)
			for _, m := range members {
				if m.matchesTag(s) {
					return m.Coerce(v)
				}
			}
			return nil, &Error{
				Code:    CodeTagMismatch,
				Message: fmt.Sprintf("tag %q is not one of %s", s, memberNames(members)),
			}
		}
	}
	if s, ok := v.(string); ok {
		// A declared prefix picks its member before shape fallback.
		for _, m := range members {
			if m.HasCompact() && m.spec.Compact.Prefix != "" && strings.HasPrefix(s, m.spec.Compact.Prefix) {
				return m.Coerce(s)
			}
		}
	}
	var errs []error
	for _, m := range members {
		r, err := m.Coerce(v)
		if err == nil {
			return r, nil
		}
		errs = append(errs, err)
	}
	return nil, &Error{
		Code:    CodeUnionNoMatch,
		Message: fmt.Sprintf("%s matches none of %s", describe(v), memberNames(members)),
		Cause:   errors.Join(errs...),
	}
}

// MixedOf normalizes a union mixing record types with scalar members:
// records and entry maps go through the record members, everything else
// is frozen.
func MixedOf(members ...*Type) Normalizer {
	return func(v any) (any, error) {
		switch v.(type) {
		case Record, map[string]any, Fields:
			return UnionOf(members...)(v)
		}
		return Freeze(v), nil
	}
}

func memberNames(members []*Type) string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.identity
	}
	return "[" + strings.Join(names, ", ") + "]"
}
