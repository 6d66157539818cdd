package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recgen/internal/testutil"
)

func pairSchema(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs("testdata/schemas/pair.cue")
	require.NoError(t, err)
	return path
}

func writeSchema(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func newPair() Step {
	return Step{Op: OpNew, Type: "Pair", As: "p", Input: map[string]any{"first": "name:a", "second": []any{"x"}}}
}

func hasError(result *Result, substr string) bool {
	for _, e := range result.Errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

// TestRunPairLifecycleGolden tests the pair scenario against its golden trace.
func TestRunPairLifecycleGolden(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/pair_lifecycle.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, 6)
}

// TestRunDiscoveredScenarios runs every scenario under testdata.
func TestRunDiscoveredScenarios(t *testing.T) {
	paths, err := DiscoverScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.Len(t, paths, 2)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			result, err := RunWithLogger(scenario, testutil.DiscardLogger())
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(scenario.Steps))
		})
	}
}

// TestRunExpectMismatches tests that failed expectations fail the run
// without stopping it.
func TestRunExpectMismatches(t *testing.T) {
	scenario := &Scenario{
		Name:    "mismatch",
		Schemas: []string{pairSchema(t)},
		Steps: []Step{
			newPair(),
			{Op: OpEncode, Target: "p", Form: "compact", Expect: &Expect{Output: "x"}},
			{Op: OpSet, Target: "p", Input: map[string]any{"note": "n"}, Expect: &Expect{Error: "invalid_type"}},
			{Op: OpSet, Target: "p", Input: map[string]any{"first": "name:b"}},
			{Op: OpSet, Target: "p", Input: map[string]any{"note": 1}, Expect: &Expect{Error: "invalid_type", Field: "second"}},
			{Op: OpAdd, Target: "p", Field: "second", Args: []any{"y"}, Expect: &Expect{Output: map[string]any{"first": "name:a"}}},
			{Op: OpAdd, Target: "p", Field: "second", Args: []any{"y"}, Expect: &Expect{Same: "p"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Trace, 7)

	assert.True(t, hasError(result, "step 2 (encode): unexpected error"), "Pair has no compact form: %v", result.Errors)
	assert.True(t, hasError(result, "step 3 (set): expected error invalid_type, got success"))
	assert.True(t, hasError(result, "step 4 (set): unexpected error"))
	assert.True(t, hasError(result, "step 5 (set): expected error on field second, got note"))
	assert.True(t, hasError(result, "step 6 (add): output mismatch"))
	assert.True(t, hasError(result, "step 7 (add): expected the identical instance as p"))

	assert.Equal(t, &TraceError{Code: "readonly", Field: "first"}, result.Trace[3].Error)
	assert.Equal(t, "p.second", result.Trace[5].Subject)
}

// TestRunUnknownTargetAndType tests references to values and types that
// do not exist.
func TestRunUnknownTargetAndType(t *testing.T) {
	scenario := &Scenario{
		Name:    "unknown",
		Schemas: []string{pairSchema(t)},
		Steps: []Step{
			{Op: OpNew, Type: "Missing", Input: map[string]any{"a": 1}},
			{Op: OpPop, Target: "nobody", Field: "list"},
			newPair(),
			{Op: OpClear, Target: "p", Field: "missing", Expect: &Expect{Error: "unknown_field", Field: "missing"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, &TraceError{Code: "error"}, result.Trace[1].Error)
	assert.Equal(t, &TraceError{Code: "unknown_field", Field: "missing"}, result.Trace[3].Error)
}

// TestRunMutatorMisuse tests that mutators that panic on misuse report a
// step error.
func TestRunMutatorMisuse(t *testing.T) {
	schema := writeSchema(t, `
record: Bag: {
	fields: {
		items: "string[]"
		label: "string"
	}
	readonly: ["items"]
}
`)
	scenario := &Scenario{
		Name:    "misuse",
		Schemas: []string{schema},
		Steps: []Step{
			{Op: OpNew, Type: "Bag", As: "b", Input: map[string]any{"items": []any{"a"}, "label": "l"}},
			{Op: OpReverse, Target: "b", Field: "items", Expect: &Expect{Error: "readonly", Field: "items"}},
			{Op: OpSort, Target: "b", Field: "label", Expect: &Expect{Error: "invalid_type", Field: "label"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

// TestRunSchemaErrors tests that schema problems abort the run.
func TestRunSchemaErrors(t *testing.T) {
	_, err := Run(&Scenario{
		Name:    "missing",
		Schemas: []string{filepath.Join(t.TempDir(), "nope.cue")},
		Steps:   []Step{newPair()},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load schema")

	_, err = Run(&Scenario{
		Name:    "dangling",
		Schemas: []string{writeSchema(t, `record: Bad: fields: x: "Nowhere"`)},
		Steps:   []Step{newPair()},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile schemas")
}

// TestRunPackageIdentity tests that the scenario package prefixes default
// identities.
func TestRunPackageIdentity(t *testing.T) {
	scenario := &Scenario{
		Name:    "identity",
		Package: "shop",
		Schemas: []string{pairSchema(t)},
		Steps: []Step{
			newPair(),
			{Op: OpEncode, Target: "p", Form: "tagged"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	out, ok := result.Trace[1].Output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "shop.Pair", out["$tag"])
}

// TestEvaluateAssertions tests assertion failures directly.
func TestEvaluateAssertions(t *testing.T) {
	scenario := &Scenario{
		Name:    "values",
		Schemas: []string{pairSchema(t)},
		Steps: []Step{
			newPair(),
			{Op: OpNew, Type: "Pair", As: "q", Input: map[string]any{"first": "name:a", "second": []any{"x"}}},
			{Op: OpSet, Target: "q", As: "r", Input: map[string]any{"note": "n"}},
		},
		Assertions: []Assertion{
			{Type: AssertEqual, Left: "p", Right: "q"},
			{Type: AssertSameInstance, Left: "p", Right: "q"},
			{Type: AssertEqual, Left: "p", Right: "r"},
			{Type: AssertNotEqual, Left: "p", Right: "q"},
			{Type: AssertFieldValue, Left: "r", Field: "note", Value: "other"},
			{Type: AssertEqual, Left: "p", Right: "ghost"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.True(t, strings.HasPrefix(result.Errors[0], "assertion[1]: Assertion failed: same_instance"))
	assert.True(t, strings.HasPrefix(result.Errors[1], "assertion[2]: Assertion failed: equal"))
	assert.True(t, strings.HasPrefix(result.Errors[2], "assertion[3]: Assertion failed: not_equal"))
	assert.Contains(t, result.Errors[3], `Actual: "n"`)
	assert.Equal(t, `assertion[5]: unknown value "ghost"`, result.Errors[4])
}

// TestMarshalSnapshot tests the golden rendering of a result.
func TestMarshalSnapshot(t *testing.T) {
	result := NewResult()
	result.AddEvent(TraceEvent{Step: 1, Op: OpNew, Subject: "Pair", Error: &TraceError{Code: "required", Field: "first"}})

	data, err := MarshalSnapshot("s", result)
	require.NoError(t, err)
	assert.Equal(t, `{
  "scenario": "s",
  "pass": true,
  "trace": [
    {
      "step": 1,
      "op": "new",
      "subject": "Pair",
      "error": {
        "code": "required",
        "field": "first"
      }
    }
  ]
}
`, string(data))
}
