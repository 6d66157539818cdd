package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnionShapeFallback(t *testing.T) {
	d, err := drawingType.New(Fields{"main": map[string]any{"side": 2}})
	require.NoError(t, err)

	main := d.Get(0).(Record)
	assert.Same(t, squareType, main.RecordType())
	assert.Equal(t, 2.0, main.Instance().Get(0))
}

func TestUnionTagDispatch(t *testing.T) {
	d, err := drawingType.New(Fields{
		"shapes": []any{
			map[string]any{TagKey: "example.Square", DataKey: map[string]any{"side": 1}},
			map[string]any{"radius": 3},
		},
	})
	require.NoError(t, err)

	shapes := d.Get(1).(*List)
	require.Equal(t, 2, shapes.Len())
	assert.Same(t, squareType, shapes.At(0).(Record).RecordType())
	assert.Same(t, circleType, shapes.At(1).(Record).RecordType())
}

func TestUnionInstancePassthrough(t *testing.T) {
	c := circleType.MustNew(Fields{"radius": 1})
	d, err := drawingType.New(Fields{"main": c})
	require.NoError(t, err)
	assert.Same(t, c, d.Get(0))
}

func TestUnionEncodesTagged(t *testing.T) {
	d, err := drawingType.New(Fields{
		"main":   map[string]any{"radius": 1},
		"shapes": []any{map[string]any{"side": 2}},
	})
	require.NoError(t, err)

	enc, err := d.Encode()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"main":   map[string]any{TagKey: "example.Circle", DataKey: map[string]any{"radius": 1.0}},
		"shapes": []any{map[string]any{TagKey: "example.Square", DataKey: map[string]any{"side": 2.0}}},
	}, enc)

	back, err := drawingType.Decode(enc)
	require.NoError(t, err)
	assert.True(t, Equal(d, back))
}

func TestCoerceUnionErrors(t *testing.T) {
	_, err := CoerceUnion(map[string]any{"edges": 5}, circleType, squareType)
	require.Error(t, err)
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeUnionNoMatch, e.Code)
	assert.Contains(t, e.Message, "example.Circle")
	assert.True(t, HasCode(err, CodeRequired), "member failures are kept as the cause")

	_, err = CoerceUnion(map[string]any{TagKey: "example.Hexagon", DataKey: map[string]any{}}, circleType, squareType)
	assert.True(t, HasCode(err, CodeTagMismatch))

	_, err = drawingType.New(Fields{"main": "circle"})
	assert.True(t, HasCode(err, CodeInvalidType))
}

func TestFieldTagMismatchKeepsCode(t *testing.T) {
	_, err := pairType.New(Fields{"first": map[string]any{TagKey: "example.Tag", DataKey: "x"}})
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeTagMismatch), err.Error())
	e, _ := AsError(err)
	assert.Equal(t, "first", e.Field)

	_, err = drawingType.New(Fields{"main": map[string]any{TagKey: "example.Nope", DataKey: map[string]any{}}})
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeTagMismatch), err.Error())
	e, _ = AsError(err)
	assert.Equal(t, "main", e.Field)

	_, err = drawingType.Decode(map[string]any{
		"shapes": []any{map[string]any{TagKey: "example.Nope", DataKey: map[string]any{}}},
	})
	assert.True(t, HasCode(err, CodeTagMismatch), "list elements go through the same path")

	d := drawingType.Empty()
	_, err = d.Set(0, map[string]any{TagKey: "example.Name", DataKey: "ada"})
	assert.True(t, HasCode(err, CodeTagMismatch), "assignment reports the tag too")

	_, err = drawingType.New(Fields{"main": 5})
	assert.True(t, HasCode(err, CodeInvalidType), "untagged values stay type errors")
}

func TestCoerceUnionCompactPrefix(t *testing.T) {
	r, err := CoerceUnion("name:ada", tagType, nameType)
	require.NoError(t, err)
	assert.Same(t, nameType, r.RecordType(), "declared prefix wins over member order")

	r, err = CoerceUnion("plain", tagType, nameType)
	require.NoError(t, err)
	assert.Same(t, tagType, r.RecordType())
}

func TestMixedOf(t *testing.T) {
	n := MixedOf(circleType)

	v, err := n(7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	v, err = n(map[string]any{"radius": 1})
	require.NoError(t, err)
	assert.Same(t, circleType, v.(Record).RecordType())

	items := []any{1, "a"}
	v, err = n(items)
	require.NoError(t, err)
	items[0] = 2
	assert.True(t, Equal(NewList(int64(1), "a"), v), "the caller's slice is copied")
}
