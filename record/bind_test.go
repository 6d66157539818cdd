package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindConstructsParameterFields(t *testing.T) {
	boxOfName, err := boxType.Bind(nameType)
	require.NoError(t, err)
	assert.Equal(t, "example.Box<example.Name>", boxOfName.Identity())
	assert.Equal(t, "Box", boxOfName.Name())
	assert.Same(t, boxType, boxOfName.Base())
	assert.Same(t, nameType, boxOfName.Arg("T"))

	b, err := boxOfName.New(Fields{"item": "ada", "extras": []any{map[string]any{"value": "bob"}}})
	require.NoError(t, err)

	item, ok := b.Get(0).(Record)
	require.True(t, ok, "plain value constructed through the bound type")
	assert.Same(t, nameType, item.RecordType())

	extras := b.Get(1).(*List)
	assert.Same(t, nameType, extras.At(0).(Record).RecordType())

	assert.True(t, boxOfName.IsInstance(b))
	assert.True(t, boxType.IsInstance(b), "unbound type claims its bindings")
	assert.False(t, boxOfName.IsInstance(boxType.Empty()))
}

func TestBindRejectsMismatchedValues(t *testing.T) {
	boxOfName := MustBind(boxType, nameType)
	_, err := boxOfName.New(Fields{"item": 12})
	assert.True(t, HasCode(err, CodeInvalidType))
}

func TestBindIsCached(t *testing.T) {
	a := MustBind(boxType, nameType)
	b := MustBind(boxType, nameType)
	c := MustBind(boxType, tagType)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "example.Box<example.Tag>", c.Identity())
}

func TestBindArity(t *testing.T) {
	_, err := boxType.Bind()
	assert.True(t, HasCode(err, CodeBindArity))

	_, err = boxType.Bind(nameType, tagType)
	assert.True(t, HasCode(err, CodeBindArity))

	_, err = MustBind(boxType, nameType).Bind(nameType)
	assert.True(t, HasCode(err, CodeBindArity), "bound types cannot be rebound")

	assert.Panics(t, func() { MustBind(boxType) })
}

func TestUnboundParamKeepsValues(t *testing.T) {
	plain := map[string]any{"value": "ada"}
	b, err := boxType.New(Fields{"item": plain})
	require.NoError(t, err)
	assert.True(t, Equal(NewMap(Entry{Key: "value", Value: "ada"}), b.Get(0)))

	plain["value"] = "bob"
	v, _ := b.Get(0).(*Map).Get("value")
	assert.Equal(t, "ada", v, "the caller's map is copied")

	again, err := boxType.New(Fields{"item": b.Get(0)})
	require.NoError(t, err)
	assert.True(t, Equal(b, again), "stored values are accepted back")

	enc, err := b.Encode()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": "ada"}, enc.(map[string]any)["item"])

	_, err = boxType.New(Fields{"item": 3})
	assert.True(t, HasCode(err, CodeInvalidType), "record-constrained parameters reject scalars")
}

func TestBoundRoundTrip(t *testing.T) {
	boxOfName := MustBind(boxType, nameType)
	b, err := boxOfName.New(Fields{"item": "ada"})
	require.NoError(t, err)

	enc, err := b.EncodeTagged()
	require.NoError(t, err)
	assert.Equal(t, "example.Box<example.Name>", enc.(map[string]any)[TagKey])

	back, err := boxOfName.Decode(enc)
	require.NoError(t, err)
	assert.True(t, Equal(b, back))
}

func TestBoundDefaults(t *testing.T) {
	boxOfName := MustBind(boxType, nameType)
	empty := boxOfName.Empty()
	assert.Same(t, nameType.Empty(), empty.Get(0))
	assert.Nil(t, boxType.Empty().Get(0))
}
