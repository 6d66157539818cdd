package record

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// MarshalJSON encodes the plain wire form.
func (in *Instance) MarshalJSON() ([]byte, error) {
	v, err := in.Encode()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// MarshalTagged encodes r as a tagged envelope.
func MarshalTagged(r Record) ([]byte, error) {
	v, err := r.Instance().EncodeTagged()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes JSON into an instance of t. Numbers are decoded
// as json.Number so integers keep full precision.
func UnmarshalJSON(t *Type, data []byte) (*Instance, error) {
	v, err := decodeJSON(data)
	if err != nil {
		return nil, &Error{Type: t.identity, Code: CodeInvalidFormat, Message: "invalid JSON", Cause: err}
	}
	if v == nil {
		return nil, &Error{Type: t.identity, Code: CodeInvalidFormat, Message: "no data"}
	}
	return t.Decode(v)
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
