package record

import (
	"net/url"
	"slices"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetKeepsFirstOccurrence(t *testing.T) {
	s := NewSet("b", "a", "b", int64(1), 1)
	assert.Equal(t, []any{"b", "a", int64(1)}, s.Slice())
	assert.True(t, s.Has("a"))
	assert.True(t, s.Has(1), "int and int64 share a key")
	assert.False(t, s.Has("c"))
}

func TestMapOrderAndOverwrite(t *testing.T) {
	m := NewMap(Entry{"b", 1}, Entry{"a", 2}, Entry{"b", 3})
	assert.Equal(t, []any{"b", "a"}, m.Keys())
	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	var keys []any
	for k := range m.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []any{"b", "a"}, keys)
}

func TestNilCollectionsAreEmpty(t *testing.T) {
	var l *List
	var s *Set
	var m *Map
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, m.Len())
	assert.False(t, s.Has(1))
	assert.Empty(t, slices.Collect(l.Values()))
}

func TestKeyCanonicalizesInputForms(t *testing.T) {
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	u, err := url.Parse("https://example.com/a")
	require.NoError(t, err)
	uri, err := ParseURI("https://example.com/a")
	require.NoError(t, err)

	assert.Equal(t, Key(int64(5)), Key(5))
	assert.Equal(t, Key(int64(5)), Key(json.Number("5")))
	assert.Equal(t, Key(NewDate(when)), Key(when.UTC()))
	assert.Equal(t, Key(NewBinary([]byte("hi"))), Key([]byte("hi")))
	assert.Equal(t, Key(uri), Key(u))
	assert.Equal(t, Key(NewList("a", int64(1))), Key([]any{"a", 1}))
	assert.Equal(t, Key(NewMap(Entry{"a", int64(1)})), Key(map[string]any{"a": 1}))

	assert.NotEqual(t, Key("1"), Key(1))
	assert.NotEqual(t, Key(1), Key(1.5))
	assert.NotEqual(t, Key(NewList("a", "b")), Key(NewList("b", "a")))
	assert.Equal(t, Key(NewSet("a", "b")), Key(NewSet("b", "a")))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, "a"))
	assert.False(t, Equal("a", nil))
	assert.True(t, Equal(NewList(int64(1)), NewList(int64(1))))
	assert.False(t, Equal(NewList(int64(1)), NewSet(int64(1))))
	assert.True(t, Equal(NewSet("a", "b"), NewSet("b", "a")))
	assert.True(t, Equal(NewMap(Entry{"a", 1}, Entry{"b", 2}), NewMap(Entry{"b", 2}, Entry{"a", 1})))
	assert.False(t, Equal(NewMap(Entry{"a", 1}), NewMap(Entry{"a", 2})))

	when := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.True(t, Equal(NewDate(when), NewDate(when.In(time.FixedZone("X", 7200)))))

	a := nameType.MustNew(Fields{"value": "x"})
	b := nameType.MustNew(Fields{"value": "x"})
	c := tagType.MustNew(Fields{"value": "x"})
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c), "different types never compare equal")
	assert.True(t, a.Equal(b))
}

func TestSpecialWrappers(t *testing.T) {
	d, err := ParseDate("2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04T00:00:00Z", d.String())

	_, err = ParseDate("yesterday")
	assert.True(t, HasCode(err, CodeInvalidFormat))

	_, err = ParseURI("")
	assert.True(t, HasCode(err, CodeInvalidFormat))
	_, err = ParseURI("http://[::1")
	assert.True(t, HasCode(err, CodeInvalidFormat))

	b, err := ParseBinary("aGk=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), b.Bytes())
	assert.Equal(t, "aGk=", b.String())
	_, err = ParseBinary("***")
	assert.True(t, HasCode(err, CodeInvalidFormat))
}

func TestCheckers(t *testing.T) {
	assert.True(t, IsInt(json.Number("3")))
	assert.False(t, IsInt(json.Number("3.5")))
	assert.True(t, IsInt(2.0))
	assert.False(t, IsInt(2.5))
	assert.True(t, IsFloat(json.Number("3.5")))
	assert.False(t, IsString(json.Number("3")))

	type userID string
	assert.True(t, IsString(userID("u1")))

	assert.True(t, IsLiteral(int64(3))(3))
	assert.True(t, IsLiteral("on")("on"))
	assert.False(t, IsLiteral("on")("off"))

	assert.True(t, Optional(IsString)(nil))
	assert.Nil(t, Optional(nil))
	assert.Nil(t, AnyOf(IsString, nil), "a trivial member makes the union trivial")

	isPairs := IsMapOf(IsInt, IsString)
	assert.True(t, isPairs([]any{[]any{1, "a"}, []any{2, "b"}}))
	assert.False(t, isPairs([]any{[]any{1}}))
	assert.False(t, IsListOf(nil)("text"))
}

func TestNormalizerFastPaths(t *testing.T) {
	l := NewList(int64(1), int64(2))
	out, err := ToListOf(ToInt)(l)
	require.NoError(t, err)
	assert.Same(t, l, out)

	s := NewSet("a")
	out, err = ToSetOf(ToString)(s)
	require.NoError(t, err)
	assert.Same(t, s, out)

	m := NewMap(Entry{"a", int64(1)})
	out, err = ToMapOf(ToString, ToInt)(m)
	require.NoError(t, err)
	assert.Same(t, m, out)

	src := []any{int64(1)}
	out, err = ToListOf(nil)(src)
	require.NoError(t, err)
	src[0] = int64(9)
	assert.Equal(t, int64(1), out.(*List).At(0), "lists never alias their input")

	_, err = ToInt(2.5)
	assert.True(t, HasCode(err, CodeInvalidType))
}

func TestFreezeCopiesPlainContainers(t *testing.T) {
	inner := []any{1, 2}
	src := map[string]any{"b": inner, "a": map[string]any{"x": 1.0}}
	out, err := ToCanonical(src)
	require.NoError(t, err)

	inner[0] = 9
	src["c"] = true
	m := out.(*Map)
	assert.Equal(t, []any{"a", "b"}, m.keys, "keys are sorted")
	b, _ := m.Get("b")
	assert.True(t, Equal(NewList(int64(1), int64(2)), b))
	a, _ := m.Get("a")
	assert.True(t, Equal(NewMap(Entry{"x", 1.0}), a))

	l := NewList("x")
	assert.Same(t, l, Freeze(l), "runtime containers are already immutable")
	assert.Equal(t, int64(3), Freeze(int32(3)))
}

func TestItemsOf(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ItemsOf[string](NewList("a", "b")))
	assert.Equal(t, []int64{1, 2}, ItemsOf[int64](NewSet(int64(1), int64(2), int64(1))))
	assert.Equal(t, []string{"a", ""}, ItemsOf[string](NewList("a", nil)), "mismatched items are zero values")
	assert.Nil(t, ItemsOf[string]("not a collection"))
	assert.Empty(t, ItemsOf[string]((*List)(nil)))
}
