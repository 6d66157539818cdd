package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/recgen/internal/ir"
)

// Schema error codes (E200-E299)
const (
	ErrLoad              = "E200" // schema file could not be read or evaluated
	ErrDuplicateField    = "E201" // field name declared twice
	ErrDuplicateTag      = "E202" // positional tag declared twice
	ErrInvalidTag        = "E203" // tag is not a positive integer
	ErrInvalidFieldKey   = "E204" // field name is not an identifier
	ErrUnknownReference  = "E205" // name is neither a record nor a type parameter
	ErrBadArity          = "E206" // wrong number of generic arguments
	ErrUnsupportedShape  = "E207" // type expression has no storage shape
	ErrCompactIneligible = "E208" // compact form requested but not possible
	ErrRequiredCycle     = "E209" // required references never terminate
	ErrInvalidTypeExpr   = "E210" // type expression does not parse
	ErrDuplicateRecord   = "E211" // record name declared twice
	ErrNameCollision     = "E212" // generated Go identifiers collide
	ErrInvalidParam      = "E213" // bad type parameter declaration
	ErrUnknownReadonly   = "E214" // readonly list names a missing field
)

// CompileError is a schema error attributed to a record and, when known,
// one of its fields.
type CompileError struct {
	Record  string `json:"record,omitempty"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Pos     ir.Pos `json:"-"`
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	if e.Pos.IsValid() {
		sb.WriteString(e.Pos.String())
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "[%s] ", e.Code)
	switch {
	case e.Record != "" && e.Field != "":
		fmt.Fprintf(&sb, "%s.%s: ", e.Record, e.Field)
	case e.Record != "":
		sb.WriteString(e.Record + ": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// CompileErrors collects every schema error of a compilation unit.
type CompileErrors []*CompileError

func (es CompileErrors) Error() string {
	switch len(es) {
	case 0:
		return "no errors"
	case 1:
		return es[0].Error()
	}
	lines := make([]string, len(es))
	for i, e := range es {
		lines[i] = e.Error()
	}
	return fmt.Sprintf("%d schema errors:\n  %s", len(es), strings.Join(lines, "\n  "))
}

// Unwrap exposes the individual errors to errors.As.
func (es CompileErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

func (es CompileErrors) orNil() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// posOf converts a CUE position.
func posOf(p token.Pos) ir.Pos {
	if !p.IsValid() {
		return ir.Pos{}
	}
	return ir.Pos{File: p.Filename(), Line: p.Line(), Column: p.Column()}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	ce := &CompileError{Code: ErrLoad, Message: firstErr.Error()}
	if positions := errors.Positions(firstErr); len(positions) > 0 {
		ce.Pos = posOf(positions[0])
	}
	return ce
}
