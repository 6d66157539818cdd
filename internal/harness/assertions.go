package harness

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/goccy/go-json"

	"github.com/roach88/recgen/record"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the bound values.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(values map[string]*record.Instance, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(values, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(values map[string]*record.Instance, a Assertion) error {
	left, ok := values[a.Left]
	if !ok {
		return fmt.Errorf("unknown value %q", a.Left)
	}

	switch a.Type {
	case AssertEqual, AssertNotEqual, AssertSameInstance:
		right, ok := values[a.Right]
		if !ok {
			return fmt.Errorf("unknown value %q", a.Right)
		}
		switch a.Type {
		case AssertEqual:
			if !record.Equal(left, right) {
				return &AssertionError{Type: a.Type, Expected: a.Left + " == " + a.Right, Actual: left.String() + " != " + right.String()}
			}
		case AssertNotEqual:
			if record.Equal(left, right) {
				return &AssertionError{Type: a.Type, Expected: a.Left + " != " + a.Right, Actual: "both " + left.String()}
			}
		default:
			if left != right {
				return &AssertionError{Type: a.Type, Expected: a.Left + " and " + a.Right + " are one instance", Actual: "distinct instances"}
			}
		}
		return nil

	case AssertFieldValue:
		enc, err := left.Encode()
		if err != nil {
			return err
		}
		actual := enc.(map[string]any)[a.Field]
		if !jsonEqual(actual, a.Value) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s.%s = %s", a.Left, a.Field, jsonString(a.Value)),
				Actual:   jsonString(actual),
			}
		}
		return nil
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// jsonEqual compares two values by their JSON meaning, so int and int64
// or YAML and wire maps compare equal.
func jsonEqual(actual, expected any) bool {
	a, errA := normalizeJSON(actual)
	e, errE := normalizeJSON(expected)
	if errA != nil || errE != nil {
		return false
	}
	return reflect.DeepEqual(a, e)
}

func normalizeJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func jsonString(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
