package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Step operations.
const (
	OpNew         = "new"
	OpDecode      = "decode"
	OpDecodeJSON  = "decode_json"
	OpSet         = "set"
	OpUnset       = "unset"
	OpWithChild   = "with_child"
	OpPush        = "push"
	OpPop         = "pop"
	OpShift       = "shift"
	OpUnshift     = "unshift"
	OpSplice      = "splice"
	OpReverse     = "reverse"
	OpSort        = "sort"
	OpFill        = "fill"
	OpCopyWithin  = "copy_within"
	OpAdd         = "add"
	OpAddAll      = "add_all"
	OpDelete      = "delete"
	OpDeleteAll   = "delete_all"
	OpClear       = "clear"
	OpSetEntry    = "set_entry"
	OpDeleteEntry = "delete_entry"
	OpMerge       = "merge"
	OpEncode      = "encode"
)

// Assertion types.
const (
	AssertEqual        = "equal"
	AssertNotEqual     = "not_equal"
	AssertSameInstance = "same_instance"
	AssertFieldValue   = "field_value"
)

// Scenario is a sequence of record operations over compiled schemas.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schemas lists CUE or YAML schema files, relative to the scenario.
	Schemas []string `yaml:"schemas"`

	// Package is the package name the schemas compile under; it prefixes
	// default identities. Defaults to "scenario".
	Package string `yaml:"package,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after every step ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation. Construction ops name a type; the others act on
// the value bound to Target.
type Step struct {
	Op     string  `yaml:"op"`
	Type   string  `yaml:"type,omitempty"`
	Target string  `yaml:"target,omitempty"`
	As     string  `yaml:"as,omitempty"`
	Field  string  `yaml:"field,omitempty"`
	Input  any     `yaml:"input,omitempty"`
	Args   []any   `yaml:"args,omitempty"`
	Form   string  `yaml:"form,omitempty"`
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect checks the outcome of a step. Without Error the step must
// succeed.
type Expect struct {
	// Error is the expected record error code.
	Error string `yaml:"error,omitempty"`

	// Field is the field the error must name.
	Field string `yaml:"field,omitempty"`

	// Output is compared with the plain encoding of the result, or with
	// the encoded value for encode steps.
	Output any `yaml:"output,omitempty"`

	// Same names a value the result must be identical to.
	Same string `yaml:"same,omitempty"`
}

// Assertion compares named values after the steps ran.
type Assertion struct {
	Type  string `yaml:"type"`
	Left  string `yaml:"left,omitempty"`
	Right string `yaml:"right,omitempty"`
	Field string `yaml:"field,omitempty"`
	Value any    `yaml:"value,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Schema paths are
// resolved relative to the file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, p := range scenario.Schemas {
		if !filepath.IsAbs(p) {
			scenario.Schemas[i] = filepath.Join(base, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

var targetOps = map[string]bool{
	OpSet: true, OpUnset: true, OpWithChild: true, OpPush: true, OpPop: true,
	OpShift: true, OpUnshift: true, OpSplice: true, OpReverse: true, OpSort: true,
	OpFill: true, OpCopyWithin: true, OpAdd: true, OpAddAll: true, OpDelete: true,
	OpDeleteAll: true, OpClear: true, OpSetEntry: true, OpDeleteEntry: true,
	OpMerge: true, OpEncode: true,
}

// fieldOps need a field besides the target.
var fieldOps = map[string]bool{
	OpUnset: true, OpWithChild: true, OpPush: true, OpPop: true, OpShift: true,
	OpUnshift: true, OpSplice: true, OpReverse: true, OpSort: true, OpFill: true,
	OpCopyWithin: true, OpAdd: true, OpAddAll: true, OpDelete: true,
	OpDeleteAll: true, OpClear: true, OpSetEntry: true, OpDeleteEntry: true,
	OpMerge: true,
}

// argCounts is the exact argument count of ops that take a fixed number.
var argCounts = map[string]int{
	OpAdd: 1, OpDelete: 1, OpFill: 3, OpCopyWithin: 3,
	OpSetEntry: 2, OpDeleteEntry: 1, OpMerge: 1,
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Schemas) == 0 {
		return fmt.Errorf("schemas list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, p := range s.Schemas {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("schema file not found: %s", p)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step) error {
	switch step.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", i)
	case OpNew, OpDecode, OpDecodeJSON:
		if step.Type == "" {
			return fmt.Errorf("steps[%d]: type is required for %s", i, step.Op)
		}
		if step.Input == nil {
			return fmt.Errorf("steps[%d]: input is required for %s", i, step.Op)
		}
		if step.Op == OpDecodeJSON {
			if _, ok := step.Input.(string); !ok {
				return fmt.Errorf("steps[%d]: decode_json input must be a string", i)
			}
		}
		return nil
	}
	if !targetOps[step.Op] {
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}
	if step.Target == "" {
		return fmt.Errorf("steps[%d]: target is required for %s", i, step.Op)
	}
	if fieldOps[step.Op] && step.Field == "" {
		return fmt.Errorf("steps[%d]: field is required for %s", i, step.Op)
	}
	if n, ok := argCounts[step.Op]; ok && len(step.Args) != n {
		return fmt.Errorf("steps[%d]: %s takes %d args, got %d", i, step.Op, n, len(step.Args))
	}
	switch step.Op {
	case OpSet:
		if _, ok := step.Input.(map[string]any); !ok {
			return fmt.Errorf("steps[%d]: set input must be a field map", i)
		}
	case OpSplice:
		if len(step.Args) < 2 {
			return fmt.Errorf("steps[%d]: splice takes start, count and items", i)
		}
	case OpEncode:
		switch step.Form {
		case "", "plain", "tagged", "compact":
		default:
			return fmt.Errorf("steps[%d]: unknown encode form %q", i, step.Form)
		}
	}
	return nil
}

func validateAssertion(i int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", i)
	case AssertEqual, AssertNotEqual, AssertSameInstance:
		if a.Left == "" || a.Right == "" {
			return fmt.Errorf("assertions[%d]: left and right are required for %s", i, a.Type)
		}
	case AssertFieldValue:
		if a.Left == "" || a.Field == "" {
			return fmt.Errorf("assertions[%d]: left and field are required for field_value", i)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
	}
	return nil
}
