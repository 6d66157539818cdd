package record

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"time"
)

// Date is the storage form of timestamp fields. Its wire form is RFC 3339.
type Date struct {
	t time.Time
}

// NewDate wraps t.
func NewDate(t time.Time) Date { return Date{t: t} }

// ParseDate parses an RFC 3339 timestamp or a bare YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Date{t: t}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, &Error{Code: CodeInvalidFormat, Message: fmt.Sprintf("invalid timestamp %q", s), Cause: err}
	}
	return Date{t: t}, nil
}

func (d Date) Time() time.Time { return d.t }
func (d Date) IsZero() bool    { return d.t.IsZero() }
func (d Date) String() string  { return d.t.Format(time.RFC3339Nano) }

// URI is the storage form of uri fields.
type URI struct {
	s string
}

// ParseURI parses and re-serializes s.
func ParseURI(s string) (URI, error) {
	if s == "" {
		return URI{}, &Error{Code: CodeInvalidFormat, Message: "empty uri"}
	}
	u, err := url.Parse(s)
	if err != nil {
		return URI{}, &Error{Code: CodeInvalidFormat, Message: fmt.Sprintf("invalid uri %q", s), Cause: err}
	}
	return URI{s: u.String()}, nil
}

// URL returns a fresh parsed copy.
func (u URI) URL() *url.URL {
	parsed, _ := url.Parse(u.s)
	return parsed
}

func (u URI) String() string { return u.s }

// Binary is the storage form of byte-string fields. Its wire form is
// standard base64.
type Binary struct {
	s string
}

// NewBinary copies b.
func NewBinary(b []byte) Binary { return Binary{s: string(b)} }

// ParseBinary decodes standard base64.
func ParseBinary(s string) (Binary, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Binary{}, &Error{Code: CodeInvalidFormat, Message: "invalid base64", Cause: err}
	}
	return Binary{s: string(b)}, nil
}

// Bytes returns a copy of the contents.
func (b Binary) Bytes() []byte { return []byte(b.s) }
func (b Binary) Len() int      { return len(b.s) }
func (b Binary) String() string {
	return base64.StdEncoding.EncodeToString([]byte(b.s))
}
