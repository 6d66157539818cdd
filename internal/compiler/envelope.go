package compiler

import (
	"fmt"

	"github.com/roach88/recgen/internal/ir"
)

// CompactTag is the positional tag reserved for the compact string field.
const CompactTag = 1

// Envelope describes the wire forms of a record. Plain and tagged forms
// always exist; the compact form only when requested and eligible.
type Envelope struct {
	Compact      bool
	Prefix       string
	CompactField string
}

// buildEnvelope checks compact eligibility: exactly one required field,
// a non-null string (or branded string) at tag 1.
func buildEnvelope(decl *ir.RecordDecl, fields []*FieldModel) (Envelope, error) {
	if !decl.Compact.Enabled {
		return Envelope{}, nil
	}
	fail := func(format string, args ...any) (Envelope, error) {
		return Envelope{}, &CompileError{
			Record:  decl.Name,
			Code:    ErrCompactIneligible,
			Message: "compact form: " + fmt.Sprintf(format, args...),
			Pos:     decl.Pos,
		}
	}

	var compact *FieldModel
	required := 0
	for _, f := range fields {
		if f.Required && !f.Nullable() {
			required++
		}
		if f.Tag == CompactTag {
			compact = f
		}
	}
	switch {
	case compact == nil:
		return fail("needs a field with tag %d", CompactTag)
	case compact.Shape.Kind != ShapeString:
		return fail("field %s must be a string, got %s", compact.Name, compact.Type)
	case !compact.Required || compact.Nullable():
		return fail("field %s must be required", compact.Name)
	case required != 1:
		return fail("field %s must be the only required field, found %d", compact.Name, required)
	}
	return Envelope{Compact: true, Prefix: decl.Compact.Prefix, CompactField: compact.Name}, nil
}
