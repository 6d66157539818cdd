package typeexpr

import "fmt"

// SyntaxError reports a malformed type expression.
type SyntaxError struct {
	Input   string
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("type %q: offset %d: %s", e.Input, e.Offset, e.Message)
}
