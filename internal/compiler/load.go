package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/recgen/internal/ir"
	"github.com/roach88/recgen/internal/typeexpr"
)

// LoadCUE compiles a single CUE source and reads its record declarations.
func LoadCUE(filename string, src []byte) ([]*ir.RecordDecl, error) {
	v := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return LoadRecords(v)
}

// LoadFile reads one schema file, CUE or YAML by extension.
func LoadFile(path string) ([]*ir.RecordDecl, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &CompileError{Code: ErrLoad, Message: err.Error(), Pos: ir.Pos{File: path}}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return LoadCUE(path, src)
	case ".yaml", ".yml":
		return LoadYAML(path, src)
	}
	return nil, &CompileError{Code: ErrLoad, Message: "unsupported schema file extension", Pos: ir.Pos{File: path}}
}

// LoadRecords reads record declarations from a CUE value. Records live
// under the top-level "record" struct, one field per record type:
//
//	record: Pair: {
//		fields: { "1:first": "Name", "note?": "string" }
//		readonly: ["first"]
//	}
//
// Declarations that fail to load are reported together; the ones that
// loaded are returned alongside the error.
func LoadRecords(v cue.Value) ([]*ir.RecordDecl, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	recordsVal := v.LookupPath(cue.ParsePath("record"))
	if !recordsVal.Exists() {
		return nil, nil
	}
	iter, err := recordsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var (
		decls []*ir.RecordDecl
		errs  CompileErrors
	)
	for iter.Next() {
		sel := iter.Selector()
		if sel.LabelType() != cue.StringLabel {
			continue
		}
		decl, err := loadRecord(sel.Unquoted(), iter.Value())
		if err != nil {
			errs = append(errs, asCompileError(err, sel.Unquoted()))
			continue
		}
		decls = append(decls, decl)
	}
	return decls, errs.orNil()
}

func loadRecord(name string, v cue.Value) (*ir.RecordDecl, error) {
	decl := &ir.RecordDecl{Name: name, Pos: posOf(v.Pos())}

	if idVal := v.LookupPath(cue.ParsePath("identity")); idVal.Exists() {
		id, err := idVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		decl.Identity = id
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{
			Record:  name,
			Field:   "fields",
			Code:    ErrLoad,
			Message: "fields is required",
			Pos:     decl.Pos,
		}
	}
	fields, err := loadFields(name, fieldsVal)
	if err != nil {
		return nil, err
	}
	decl.Fields = fields

	if paramsVal := v.LookupPath(cue.ParsePath("params")); paramsVal.Exists() {
		params, err := loadParams(name, paramsVal)
		if err != nil {
			return nil, err
		}
		decl.Params = params
	}

	if roVal := v.LookupPath(cue.ParsePath("readonly")); roVal.Exists() {
		list, err := roVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for list.Next() {
			s, err := list.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			decl.Readonly = append(decl.Readonly, s)
		}
	}

	if cVal := v.LookupPath(cue.ParsePath("compact")); cVal.Exists() {
		compact, err := loadCompact(cVal)
		if err != nil {
			return nil, err
		}
		decl.Compact = compact
	}

	return decl, nil
}

// loadFields reads a fields struct. A string value is a type expression,
// a struct value an inline record literal.
func loadFields(record string, v cue.Value) ([]ir.FieldDecl, error) {
	iter, err := v.Fields(cue.Optional(true))
	if err != nil {
		return nil, formatCUEError(err)
	}
	var fields []ir.FieldDecl
	for iter.Next() {
		sel := iter.Selector()
		if sel.LabelType() != cue.StringLabel {
			continue
		}
		fv := iter.Value()
		field := ir.FieldDecl{
			Key:      sel.Unquoted(),
			Optional: iter.IsOptional(),
			Pos:      posOf(fv.Pos()),
		}
		field.Type, err = loadType(record, field.Key, fv)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func loadType(record, key string, v cue.Value) (ir.TypeExpr, error) {
	if src, err := v.String(); err == nil {
		t, perr := typeexpr.Parse(src)
		if perr != nil {
			return nil, &CompileError{
				Record:  record,
				Field:   key,
				Code:    ErrInvalidTypeExpr,
				Message: perr.Error(),
				Pos:     posOf(v.Pos()),
			}
		}
		return t, nil
	}

	// Non-concrete CUE types stand for the matching primitive.
	switch v.IncompleteKind() {
	case cue.StructKind:
		fields, err := loadFields(record, v)
		if err != nil {
			return nil, err
		}
		return ir.InlineRecord{Fields: fields}, nil
	case cue.StringKind:
		return ir.Primitive{Kind: ir.KindString}, nil
	case cue.IntKind:
		return ir.Primitive{Kind: ir.KindInt}, nil
	case cue.FloatKind, cue.NumberKind:
		return ir.Primitive{Kind: ir.KindFloat}, nil
	case cue.BoolKind:
		return ir.Primitive{Kind: ir.KindBool}, nil
	case cue.TopKind:
		return ir.Primitive{Kind: ir.KindAny}, nil
	}
	return nil, &CompileError{
		Record:  record,
		Field:   key,
		Code:    ErrUnsupportedShape,
		Message: fmt.Sprintf("unsupported field value of kind %v", v.IncompleteKind()),
		Pos:     posOf(v.Pos()),
	}
}

func loadParams(record string, v cue.Value) ([]ir.ParamDecl, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var params []ir.ParamDecl
	for iter.Next() {
		constraint, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		p, err := paramDecl(record, iter.Selector().Unquoted(), constraint, posOf(iter.Value().Pos()))
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

// paramDecl validates a parameter name and constraint.
func paramDecl(record, name, constraint string, pos ir.Pos) (ir.ParamDecl, error) {
	if !identRe.MatchString(name) {
		return ir.ParamDecl{}, &CompileError{
			Record:  record,
			Code:    ErrInvalidParam,
			Message: fmt.Sprintf("type parameter %q is not an identifier", name),
			Pos:     pos,
		}
	}
	switch constraint {
	case ir.ConstraintRecord:
	case "", "any":
		constraint = ""
	default:
		return ir.ParamDecl{}, &CompileError{
			Record:  record,
			Code:    ErrInvalidParam,
			Message: fmt.Sprintf("type parameter %s: unknown constraint %q (want \"record\" or \"any\")", name, constraint),
			Pos:     pos,
		}
	}
	return ir.ParamDecl{Name: name, Constraint: constraint}, nil
}

// loadCompact accepts `compact: true` or `compact: { prefix: "x:" }`.
func loadCompact(v cue.Value) (ir.Compact, error) {
	if b, err := v.Bool(); err == nil {
		return ir.Compact{Enabled: b}, nil
	}
	c := ir.Compact{Enabled: true}
	if pVal := v.LookupPath(cue.ParsePath("prefix")); pVal.Exists() {
		prefix, err := pVal.String()
		if err != nil {
			return c, formatCUEError(err)
		}
		c.Prefix = prefix
	}
	return c, nil
}

func asCompileError(err error, record string) *CompileError {
	var ce *CompileError
	if errors.As(err, &ce) {
		if ce.Record == "" {
			ce.Record = record
		}
		return ce
	}
	return &CompileError{Record: record, Code: ErrLoad, Message: err.Error()}
}
