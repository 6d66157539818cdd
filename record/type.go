package record

import (
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
)

// Kind classifies a field's storage shape.
type Kind uint8

const (
	KindValue Kind = iota
	KindRecord
	KindUnion
	KindList
	KindSet
	KindMap
	KindParam
)

var kindNames = [...]string{"value", "record", "union", "list", "set", "map", "param"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Field declares one field of a record type. The function-valued members
// are factories called once per *Type (and once per generic binding) with
// the owning type, so type-parameter lookups see the bound arguments.
type Field struct {
	Name     string
	Tag      int // 0 when untagged
	Type     string
	Kind     Kind
	Required bool
	Nullable bool
	Readonly bool

	// UnionOfRecords marks record unions, serialized with tagged envelopes.
	// ElemUnionOfRecords does the same for container elements and map values.
	UnionOfRecords     bool
	ElemUnionOfRecords bool

	// Param names the type parameter the field is typed by directly.
	Param string

	Check     func(t *Type) Checker    // nil: every non-null value passes
	Normalize func(t *Type) Normalizer // nil: identity
	Elem      func(t *Type) Normalizer // element, or map value
	Key       func(t *Type) Normalizer // map key
	Default   func(t *Type) any        // value of a required field in Empty
}

// Param declares a type parameter.
type Param struct {
	Name    string
	Records bool
}

// Compact enables the bare-string wire form. The field with tag 1 holds
// the string.
type Compact struct {
	Prefix string
}

// TypeSpec is the definition passed to Define.
type TypeSpec struct {
	Fields  []Field
	Params  []Param
	Compact *Compact
	Wrap    func(*Instance) Record
}

// FieldInfo is the reflection entry for one field.
type FieldInfo struct {
	Name               string
	Tag                int
	Index              int
	Kind               Kind
	Type               string
	Required           bool
	Nullable           bool
	Readonly           bool
	UnionOfRecords     bool
	ElemUnionOfRecords bool
}

type slot struct {
	Field
	index  int
	tagKey string
	check  Checker
	norm   Normalizer
	elem   Normalizer
	key    Normalizer
}

// Type is a record type.
type Type struct {
	name     string
	identity string
	hash     string

	spec    TypeSpec
	defined bool
	byName  map[string]int
	byTag   map[int]int
	compact int // slot index of the compact field, -1 when disabled

	base *Type
	args []*Type

	once     sync.Once
	slots    []slot
	empty    atomic.Pointer[Instance]
	bindings sync.Map
}

// NewType declares a record type. It must be defined with Define before
// any instance is built.
func NewType(name, identity, hash string) *Type {
	if identity == "" {
		identity = name
	}
	return &Type{name: name, identity: identity, hash: hash, compact: -1}
}

// Define sets the type's fields. It panics on a second call or on an
// inconsistent spec; both are generator bugs.
func (t *Type) Define(spec TypeSpec) *Type {
	if t.defined {
		panic(fmt.Sprintf("record: %s defined twice", t.name))
	}
	t.byName = make(map[string]int, len(spec.Fields))
	t.byTag = make(map[int]int)
	for i, f := range spec.Fields {
		if _, dup := t.byName[f.Name]; dup {
			panic(fmt.Sprintf("record: %s: duplicate field %q", t.name, f.Name))
		}
		t.byName[f.Name] = i
		if f.Tag > 0 {
			if _, dup := t.byTag[f.Tag]; dup {
				panic(fmt.Sprintf("record: %s: duplicate tag %d", t.name, f.Tag))
			}
			t.byTag[f.Tag] = i
		}
	}
	if spec.Compact != nil {
		i, ok := t.byTag[1]
		if !ok {
			panic(fmt.Sprintf("record: %s: compact form needs a field with tag 1", t.name))
		}
		t.compact = i
	}
	t.spec = spec
	t.defined = true
	return t
}

// resolved builds the field closures on first use.
func (t *Type) resolved() []slot {
	t.once.Do(func() {
		if !t.defined {
			panic(fmt.Sprintf("record: %s used before Define", t.name))
		}
		slots := make([]slot, len(t.spec.Fields))
		for i, f := range t.spec.Fields {
			s := slot{Field: f, index: i}
			if f.Tag > 0 {
				s.tagKey = strconv.Itoa(f.Tag)
			}
			if f.Check != nil {
				s.check = f.Check(t)
			}
			if f.Normalize != nil {
				s.norm = f.Normalize(t)
			}
			if f.Elem != nil {
				s.elem = f.Elem(t)
			}
			if f.Key != nil {
				s.key = f.Key(t)
			}
			slots[i] = s
		}
		t.slots = slots
	})
	return t.slots
}

// Name returns the declared name.
func (t *Type) Name() string { return t.name }

// Identity returns the wire identity used in tagged envelopes. Bound
// generic types interpolate their arguments: "example.Box<example.Name>".
func (t *Type) Identity() string { return t.identity }

// Hash returns the content hash of the declaration.
func (t *Type) Hash() string { return t.hash }

func (t *Type) String() string { return t.identity }

// Base returns the unbound generic type of a binding, or nil.
func (t *Type) Base() *Type { return t.base }

// Params returns the declared type parameters.
func (t *Type) Params() []Param { return append([]Param(nil), t.spec.Params...) }

// Fields returns the reflection list in declaration order.
func (t *Type) Fields() []FieldInfo {
	out := make([]FieldInfo, len(t.spec.Fields))
	for i, f := range t.spec.Fields {
		out[i] = FieldInfo{
			Name:               f.Name,
			Tag:                f.Tag,
			Index:              i,
			Kind:               f.Kind,
			Type:               f.Type,
			Required:           f.Required,
			Nullable:           f.Nullable,
			Readonly:           f.Readonly,
			UnionOfRecords:     f.UnionOfRecords,
			ElemUnionOfRecords: f.ElemUnionOfRecords,
		}
	}
	return out
}

// Field returns the reflection entry for a field name or numeric tag.
func (t *Type) Field(key string) (FieldInfo, bool) {
	i, ok := t.fieldIndex(key)
	if !ok {
		return FieldInfo{}, false
	}
	return t.Fields()[i], true
}

func (t *Type) fieldIndex(key string) (int, bool) {
	if n, err := strconv.Atoi(key); err == nil {
		if i, ok := t.byTag[n]; ok {
			return i, true
		}
	}
	i, ok := t.byName[key]
	return i, ok
}

// HasCompact reports whether the compact string form is enabled.
func (t *Type) HasCompact() bool { return t.compact >= 0 }

// Wrap converts an instance into the record's public Go type.
func (t *Type) Wrap(in *Instance) Record {
	if t.spec.Wrap != nil {
		return t.spec.Wrap(in)
	}
	return in
}

// IsInstance reports whether v is an instance of t. An unbound generic
// type also claims instances of its bindings.
func (t *Type) IsInstance(v any) bool {
	r, ok := v.(Record)
	if !ok || r == nil {
		return false
	}
	rt := r.RecordType()
	return rt == t || (t.base == nil && rt.base == t)
}

// Empty returns the memoized instance with every optional field absent and
// every required field at its default.
func (t *Type) Empty() *Instance {
	if e := t.empty.Load(); e != nil {
		return e
	}
	slots := t.resolved()
	vals := make([]any, len(slots))
	for i, s := range slots {
		if s.Required && !s.Nullable && s.Default != nil {
			vals[i] = s.Default(t)
		}
	}
	t.empty.CompareAndSwap(nil, &Instance{typ: t, vals: vals})
	return t.empty.Load()
}

// EmptyRecord is Empty wrapped in the public Go type.
func (t *Type) EmptyRecord() Record { return t.Wrap(t.Empty()) }

// New builds an instance from a Fields bag, validating first. Missing
// required fields take their defaults; a nil or empty bag returns Empty.
func (t *Type) New(in Fields) (*Instance, error) {
	if len(in) == 0 {
		return t.Empty(), nil
	}
	return t.build(in, buildNew)
}

// MustNew is like New but panics on error.
func (t *Type) MustNew(in Fields) *Instance {
	inst, err := t.New(in)
	if err != nil {
		panic(err)
	}
	return inst
}

// DecodeEntries builds an instance from plain entries keyed by field name
// or numeric tag. A tag key wins over a name key; unknown keys are ignored.
func (t *Type) DecodeEntries(entries map[string]any) (*Instance, error) {
	return t.build(entries, buildDecode)
}

func lookup(in map[string]any, s *slot) (any, bool) {
	if s.tagKey != "" {
		if v, ok := in[s.tagKey]; ok && !isSkip(v) {
			return v, true
		}
	}
	v, ok := in[s.Name]
	if ok && isSkip(v) {
		return nil, false
	}
	return v, ok
}

type buildMode uint8

const (
	buildNew     buildMode = iota // check values, default missing required fields
	buildDecode                   // check values, missing required fields are errors
	buildTrusted                  // the enclosing check already accepted the input
)

// build assigns each field present ? normalize(input) : default.
func (t *Type) build(in map[string]any, mode buildMode) (*Instance, error) {
	slots := t.resolved()
	vals := make([]any, len(slots))
	for i := range slots {
		s := &slots[i]
		v, _ := lookup(in, s)
		if v == nil {
			if s.Required && !s.Nullable {
				if mode == buildDecode {
					return nil, t.requiredError(s)
				}
				if s.Default != nil {
					vals[i] = s.Default(t)
				}
			}
			continue
		}
		if mode != buildTrusted && s.check != nil && !s.check(v) {
			return nil, t.checkError(s, v)
		}
		if s.norm != nil {
			nv, err := s.norm(v)
			if err != nil {
				return nil, fieldError(t, s.Name, err)
			}
			v = nv
		}
		vals[i] = v
	}
	return &Instance{typ: t, vals: vals}, nil
}

// validate checks entries without building anything.
func (t *Type) validate(in map[string]any) error {
	slots := t.resolved()
	for i := range slots {
		s := &slots[i]
		v, _ := lookup(in, s)
		if v == nil {
			if s.Required && !s.Nullable {
				return t.requiredError(s)
			}
			continue
		}
		if s.check != nil && !s.check(v) {
			return t.checkError(s, v)
		}
	}
	return nil
}

// prepare validates and normalizes a value assigned to one field.
func (t *Type) prepare(s *slot, v any) (any, error) {
	if v == nil {
		if s.Required && !s.Nullable {
			return nil, t.requiredError(s)
		}
		return nil, nil
	}
	if s.check != nil && !s.check(v) {
		return nil, t.checkError(s, v)
	}
	if s.norm == nil {
		return v, nil
	}
	nv, err := s.norm(v)
	if err != nil {
		return nil, fieldError(t, s.Name, err)
	}
	return nv, nil
}

func (t *Type) requiredError(s *slot) error {
	return &Error{Type: t.identity, Field: s.Name, Code: CodeRequired, Message: "missing required field"}
}

// checkError reports a value the field check rejected. A tagged envelope
// naming the wrong type is reported as a tag mismatch, not a type error.
func (t *Type) checkError(s *slot, v any) error {
	if s.norm != nil && hasEnvelope(v) {
		if _, err := s.norm(v); err != nil && HasCode(err, CodeTagMismatch) {
			return fieldError(t, s.Name, err)
		}
	}
	return t.typeError(s, v)
}

// hasEnvelope reports whether v, or an element or value directly inside it,
// carries a $tag.
func hasEnvelope(v any) bool {
	isTagged := func(x any) bool {
		e, ok := asEntries(x)
		if !ok {
			return false
		}
		_, tagged := e[TagKey]
		return tagged
	}
	if isTagged(v) {
		return true
	}
	switch x := v.(type) {
	case []any:
		return slices.ContainsFunc(x, isTagged)
	case map[string]any:
		for _, e := range x {
			if isTagged(e) {
				return true
			}
		}
	case Fields:
		for _, e := range x {
			if isTagged(e) {
				return true
			}
		}
	}
	return false
}

func (t *Type) typeError(s *slot, v any) error {
	return &Error{
		Type:    t.identity,
		Field:   s.Name,
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("expected %s, got %s", s.Type, describe(v)),
	}
}
