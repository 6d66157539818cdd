package harness

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	Scenario string       `json:"scenario"`
	Pass     bool         `json:"pass"`
	Trace    []TraceEvent `json:"trace"`
}

// MarshalSnapshot renders a result as indented JSON with sorted map keys.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	data, err := json.MarshalIndent(TraceSnapshot{
		Scenario: name,
		Pass:     result.Pass,
		Trace:    result.Trace,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()
	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()
	data, err := MarshalSnapshot(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
