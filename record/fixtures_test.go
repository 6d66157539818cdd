package record

// Hand-written types shaped like generated code.
var (
	nameType     = NewType("Name", "example.Name", "")
	tagType      = NewType("Tag", "example.Tag", "")
	pairType     = NewType("Pair", "example.Pair", "")
	circleType   = NewType("Circle", "example.Circle", "")
	squareType   = NewType("Square", "example.Square", "")
	drawingType  = NewType("Drawing", "example.Drawing", "")
	boxType      = NewType("Box", "example.Box", "")
	playlistType = NewType("Playlist", "example.Playlist", "")
)

func checker(c Checker) func(*Type) Checker          { return func(*Type) Checker { return c } }
func normalizer(n Normalizer) func(*Type) Normalizer { return func(*Type) Normalizer { return n } }
func constant(v any) func(*Type) any                 { return func(*Type) any { return v } }

func stringField(name string, tag int, required bool) Field {
	f := Field{
		Name:      name,
		Tag:       tag,
		Type:      "string",
		Required:  required,
		Check:     checker(IsString),
		Normalize: normalizer(ToString),
	}
	if required {
		f.Default = constant("")
	}
	return f
}

func init() {
	nameType.Define(TypeSpec{
		Compact: &Compact{Prefix: "name:"},
		Fields:  []Field{stringField("value", 1, true)},
	})
	tagType.Define(TypeSpec{
		Compact: &Compact{},
		Fields:  []Field{stringField("value", 1, true)},
	})

	readonlyID := stringField("id", 0, false)
	readonlyID.Readonly = true
	pairType.Define(TypeSpec{Fields: []Field{
		{
			Name: "first", Tag: 1, Type: "Name", Kind: KindRecord, Required: true,
			Check:     func(*Type) Checker { return nameType.Accepts },
			Normalize: func(*Type) Normalizer { return nameType.Normalize },
			Default:   func(*Type) any { return nameType.EmptyRecord() },
		},
		{
			Name: "second", Tag: 2, Type: "Set<Tag>", Kind: KindSet, Required: true,
			Check:     func(*Type) Checker { return IsSetOf(tagType.Accepts) },
			Normalize: func(*Type) Normalizer { return ToSetOf(tagType.Normalize) },
			Elem:      func(*Type) Normalizer { return tagType.Normalize },
			Default:   func(*Type) any { return NewSet() },
		},
		stringField("note", 0, false),
		readonlyID,
	}})

	circleType.Define(TypeSpec{Fields: []Field{{
		Name: "radius", Type: "float", Required: true,
		Check: checker(IsFloat), Normalize: normalizer(ToFloat), Default: constant(0.0),
	}}})
	squareType.Define(TypeSpec{Fields: []Field{{
		Name: "side", Type: "float", Required: true,
		Check: checker(IsFloat), Normalize: normalizer(ToFloat), Default: constant(0.0),
	}}})
	drawingType.Define(TypeSpec{Fields: []Field{
		{
			Name: "main", Type: "Circle | Square", Kind: KindUnion, Nullable: true, UnionOfRecords: true,
			Check:     func(*Type) Checker { return AnyOf(circleType.Accepts, squareType.Accepts) },
			Normalize: func(*Type) Normalizer { return UnionOf(circleType, squareType) },
		},
		{
			Name: "shapes", Type: "(Circle | Square)[]", Kind: KindList, ElemUnionOfRecords: true,
			Check:     func(*Type) Checker { return IsListOf(AnyOf(circleType.Accepts, squareType.Accepts)) },
			Normalize: func(*Type) Normalizer { return ToListOf(UnionOf(circleType, squareType)) },
			Elem:      func(*Type) Normalizer { return UnionOf(circleType, squareType) },
		},
	}})

	boxType.Define(TypeSpec{
		Params: []Param{{Name: "T", Records: true}},
		Fields: []Field{
			{
				Name: "item", Tag: 1, Type: "T", Kind: KindParam, Param: "T", Required: true,
				Check:     func(t *Type) Checker { return t.ParamCheck("T") },
				Normalize: func(t *Type) Normalizer { return t.ParamNormalizer("T") },
				Default:   func(t *Type) any { return t.ParamDefault("T") },
			},
			{
				Name: "extras", Tag: 2, Type: "T[]", Kind: KindList,
				Check:     func(t *Type) Checker { return IsListOf(t.ParamCheck("T")) },
				Normalize: func(t *Type) Normalizer { return ToListOf(t.ParamNormalizer("T")) },
				Elem:      func(t *Type) Normalizer { return t.ParamNormalizer("T") },
			},
		},
	})

	playlistType.Define(TypeSpec{Fields: []Field{
		{
			Name: "tracks", Type: "int[]", Kind: KindList, Required: true,
			Check:     checker(IsListOf(IsInt)),
			Normalize: normalizer(ToListOf(ToInt)),
			Elem:      normalizer(ToInt),
			Default:   func(*Type) any { return NewList() },
		},
		{
			Name: "scores", Type: "Map<string, int>", Kind: KindMap,
			Check:     checker(IsMapOf(IsString, IsInt)),
			Normalize: normalizer(ToMapOf(ToString, ToInt)),
			Elem:      normalizer(ToInt),
			Key:       normalizer(ToString),
		},
		{
			Name: "days", Type: "Map<Date, string>", Kind: KindMap,
			Check:     checker(IsMapOf(IsDate, IsString)),
			Normalize: normalizer(ToMapOf(ToDate, ToString)),
			Elem:      normalizer(ToString),
			Key:       normalizer(ToDate),
		},
		{
			Name: "labels", Type: "Set<string>", Kind: KindSet,
			Check:     checker(IsSetOf(IsString)),
			Normalize: normalizer(ToSetOf(ToString)),
			Elem:      normalizer(ToString),
		},
	}})
}

const (
	pairFirst  = 0
	pairSecond = 1
	pairNote   = 2
	pairID     = 3

	playlistTracks = 0
	playlistScores = 1
	playlistDays   = 2
	playlistLabels = 3
)
