package record

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes.
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeReadonly       = "readonly"
	CodeUnknownField   = "unknown_field"
	CodeTagMismatch    = "tag_mismatch"
	CodeInvalidCompact = "invalid_compact"
	CodeUnionNoMatch   = "union_no_match"
	CodeInvalidFormat  = "invalid_format"
	CodeBindArity      = "bind_arity"
)

// Error is a validation or decode failure. Type is the record identity,
// Field the field name when the failure is field-specific.
type Error struct {
	Type    string
	Field   string
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Type)
	if e.Field != "" {
		if e.Type != "" {
			sb.WriteByte('.')
		}
		sb.WriteString(e.Field)
	}
	if sb.Len() > 0 {
		sb.WriteString(": ")
	}
	sb.WriteString(e.Code)
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts the outermost *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HasCode reports whether err or any error it wraps is an *Error with code.
func HasCode(err error, code string) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// fieldError attaches a field to an error raised while normalizing it.
func fieldError(t *Type, field string, err error) error {
	code := CodeInvalidType
	if inner, ok := AsError(err); ok {
		code = inner.Code
	}
	return &Error{Type: t.identity, Field: field, Code: code, Message: err.Error(), Cause: err}
}

func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case Record:
		return x.RecordType().Identity()
	case string:
		if len(x) > 32 {
			x = x[:32] + "..."
		}
		return fmt.Sprintf("string %q", x)
	}
	return fmt.Sprintf("%T", v)
}
