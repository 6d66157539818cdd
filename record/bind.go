package record

import (
	"fmt"
	"strings"
)

// Bind returns t with its type parameters bound to args, in declaration
// order. Parameter-typed fields of the result validate against and
// construct through the bound types. Bindings are cached per argument
// identity.
func (t *Type) Bind(args ...*Type) (*Type, error) {
	if t.base != nil {
		return nil, &Error{Type: t.identity, Code: CodeBindArity, Message: "type is already bound"}
	}
	if len(args) != len(t.spec.Params) {
		return nil, &Error{
			Type:    t.identity,
			Code:    CodeBindArity,
			Message: fmt.Sprintf("expected %d type arguments, got %d", len(t.spec.Params), len(args)),
		}
	}
	ids := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			return nil, &Error{Type: t.identity, Code: CodeBindArity, Message: fmt.Sprintf("type argument %s is nil", t.spec.Params[i].Name)}
		}
		ids[i] = a.identity
	}
	key := strings.Join(ids, ",")
	if b, ok := t.bindings.Load(key); ok {
		return b.(*Type), nil
	}
	bound := &Type{
		name:     t.name,
		identity: t.identity + "<" + strings.Join(ids, ", ") + ">",
		hash:     t.hash,
		spec:     t.spec,
		defined:  t.defined,
		byName:   t.byName,
		byTag:    t.byTag,
		compact:  t.compact,
		base:     t,
		args:     append([]*Type(nil), args...),
	}
	actual, _ := t.bindings.LoadOrStore(key, bound)
	return actual.(*Type), nil
}

// MustBind is like Bind but panics on error.
func MustBind(t *Type, args ...*Type) *Type {
	b, err := t.Bind(args...)
	if err != nil {
		panic(err)
	}
	return b
}

// Arg returns the type bound to the named parameter, or nil when t is
// unbound.
func (t *Type) Arg(name string) *Type {
	for i, p := range t.spec.Params {
		if p.Name == name && i < len(t.args) {
			return t.args[i]
		}
	}
	return nil
}

func (t *Type) param(name string) (Param, bool) {
	for _, p := range t.spec.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ParamCheck returns the checker for values of the named parameter: the
// bound type's Accepts, or a shape check while unbound.
func (t *Type) ParamCheck(name string) Checker {
	if a := t.Arg(name); a != nil {
		return a.Accepts
	}
	if p, ok := t.param(name); ok && p.Records {
		return func(v any) bool {
			switch v.(type) {
			case Record, map[string]any, Fields, *Map, string:
				return true
			}
			return false
		}
	}
	return nil
}

// ParamNormalizer returns the normalizer for values of the named
// parameter. Unbound parameters keep a frozen copy of the value.
func (t *Type) ParamNormalizer(name string) Normalizer {
	if a := t.Arg(name); a != nil {
		return a.Normalize
	}
	return ToCanonical
}

// ParamDefault returns the default of a required parameter-typed field.
func (t *Type) ParamDefault(name string) any {
	if a := t.Arg(name); a != nil {
		return a.EmptyRecord()
	}
	return nil
}
