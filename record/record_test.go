package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPair(t *testing.T, in Fields) *Instance {
	t.Helper()
	p, err := pairType.New(in)
	require.NoError(t, err)
	return p
}

func TestNewNormalizesInputForms(t *testing.T) {
	p := newPair(t, Fields{
		"first":  "ada",
		"second": []any{"x", map[string]any{"value": "y"}, "x"},
	})

	first, ok := p.Get(pairFirst).(*Instance)
	require.True(t, ok, "record fields store instances")
	assert.Equal(t, "ada", first.Get(0))

	second, ok := p.Get(pairSecond).(*Set)
	require.True(t, ok)
	assert.Equal(t, 2, second.Len(), "duplicates collapse")
	assert.Nil(t, p.Get(pairNote))
}

func TestNewEmptyIsMemoized(t *testing.T) {
	a, err := pairType.New(nil)
	require.NoError(t, err)
	b, err := pairType.New(Fields{})
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Same(t, pairType.Empty(), a)

	first := a.Get(pairFirst).(*Instance)
	assert.Same(t, nameType.Empty(), first, "required record fields default to the empty instance")
	assert.Equal(t, 0, a.Get(pairSecond).(*Set).Len())
}

func TestNewRejectsInvalidInput(t *testing.T) {
	_, err := pairType.New(Fields{"first": 42, "second": []any{}})
	require.Error(t, err)

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidType, e.Code)
	assert.Equal(t, "first", e.Field)
	assert.Equal(t, "example.Pair", e.Type)
	assert.Contains(t, err.Error(), "example.Pair.first: invalid_type")
}

func TestDecodeEntriesRequiresFields(t *testing.T) {
	_, err := pairType.DecodeEntries(map[string]any{"second": []any{}})
	require.Error(t, err)
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeRequired, e.Code)
	assert.Equal(t, "first", e.Field)
}

func TestDecodeEntriesTagWins(t *testing.T) {
	p, err := pairType.DecodeEntries(map[string]any{
		"1":       "by-tag",
		"first":   "by-name",
		"second":  []any{},
		"unknown": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "by-tag", p.Get(pairFirst).(*Instance).Get(0))
}

func TestNormalizationIsIdempotent(t *testing.T) {
	p := newPair(t, Fields{"first": "ada", "second": []any{"x"}, "note": "hi"})

	again, err := pairType.Coerce(p)
	require.NoError(t, err)
	assert.Same(t, p, again.Instance(), "instances pass through")

	fields := Fields{}
	for name, v := range p.Children() {
		fields[name] = v
	}
	fields["note"] = p.Get(pairNote)
	rebuilt := newPair(t, fields)
	assert.True(t, Equal(p, rebuilt))
	assert.Same(t, p.Get(pairSecond), rebuilt.Get(pairSecond), "canonical containers are reused")
}

func TestSetNoOpReturnsSameInstance(t *testing.T) {
	p := newPair(t, Fields{"first": "ada", "second": []any{"x"}})

	same, err := p.Set(pairFirst, map[string]any{"value": "ada"})
	require.NoError(t, err)
	assert.Same(t, p, same)

	same, err = p.Set(pairSecond, []any{"x"})
	require.NoError(t, err)
	assert.Same(t, p, same)

	changed, err := p.Set(pairNote, "hello")
	require.NoError(t, err)
	assert.NotSame(t, p, changed)
	assert.Nil(t, p.Get(pairNote), "original is unchanged")
	assert.Equal(t, "hello", changed.Get(pairNote))
}

func TestUnset(t *testing.T) {
	p := newPair(t, Fields{"first": "ada", "note": "x"})

	cleared, err := p.Unset(pairNote)
	require.NoError(t, err)
	assert.Nil(t, cleared.Get(pairNote))

	again, err := cleared.Unset(pairNote)
	require.NoError(t, err)
	assert.Same(t, cleared, again)

	_, err = p.Unset(pairFirst)
	assert.True(t, HasCode(err, CodeRequired))
}

func TestSetMany(t *testing.T) {
	p := newPair(t, Fields{"first": "ada"})

	next, err := p.SetMany(Fields{"note": "n", "second": Skip, "first": "bob"})
	require.NoError(t, err)
	assert.Equal(t, "n", next.Get(pairNote))
	assert.Equal(t, "bob", next.Get(pairFirst).(*Instance).Get(0))
	assert.Same(t, p.Get(pairSecond), next.Get(pairSecond))

	same, err := p.SetMany(Fields{"first": "ada", "note": Skip})
	require.NoError(t, err)
	assert.Same(t, p, same)

	_, err = p.SetMany(Fields{"nope": 1})
	assert.True(t, HasCode(err, CodeUnknownField))
}

func TestReadonlyField(t *testing.T) {
	p := newPair(t, Fields{"first": "ada", "id": "p-1"})
	assert.Equal(t, "p-1", p.Get(pairID))

	_, err := p.Set(pairID, "p-2")
	assert.True(t, HasCode(err, CodeReadonly))

	_, err = p.SetMany(Fields{"id": "p-2"})
	assert.True(t, HasCode(err, CodeReadonly))
}

func TestLookupAndFields(t *testing.T) {
	p := newPair(t, Fields{"first": "ada", "note": "x"})

	v, ok := p.Lookup("note")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = p.Lookup("2")
	assert.True(t, ok, "lookup by tag")

	fields := pairType.Fields()
	require.Len(t, fields, 4)
	assert.Equal(t, FieldInfo{Name: "first", Tag: 1, Index: 0, Kind: KindRecord, Type: "Name", Required: true}, fields[0])
	assert.Equal(t, KindSet, fields[1].Kind)
	assert.True(t, fields[3].Readonly)

	info, ok := pairType.Field("2")
	require.True(t, ok)
	assert.Equal(t, "second", info.Name)
}

func TestWithChildAndChildren(t *testing.T) {
	p := newPair(t, Fields{"first": "ada", "second": []any{"x"}})

	var names []string
	for name := range p.Children() {
		names = append(names, name)
	}
	assert.Equal(t, []string{"first", "second"}, names)

	r, err := p.WithChild("first", "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", r.Instance().Get(pairFirst).(*Instance).Get(0))

	_, err = p.WithChild("missing", 1)
	assert.True(t, HasCode(err, CodeUnknownField))
}

func TestDefineRejectsInconsistentSpecs(t *testing.T) {
	assert.Panics(t, func() {
		NewType("Dup", "", "").Define(TypeSpec{Fields: []Field{{Name: "a"}, {Name: "a"}}})
	})
	assert.Panics(t, func() {
		NewType("DupTag", "", "").Define(TypeSpec{Fields: []Field{{Name: "a", Tag: 1}, {Name: "b", Tag: 1}}})
	})
	assert.Panics(t, func() {
		NewType("NoCompact", "", "").Define(TypeSpec{Compact: &Compact{}, Fields: []Field{{Name: "a"}}})
	})
	assert.Panics(t, func() {
		typ := NewType("Twice", "", "")
		typ.Define(TypeSpec{})
		typ.Define(TypeSpec{})
	})
	assert.Panics(t, func() { NewType("Undefined", "", "").Empty() })
}
