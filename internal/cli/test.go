package cli

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/recgen/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
	Golden string // golden file directory
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-dir>",
		Short: "Run record scenarios",
		Long: `Run scenario files against their schemas.

A scenario compiles the schema files it lists, then applies record
operations step by step, checking each step's expectations and the final
assertions. When <golden-dir>/<scenario>.golden exists the step trace must
match it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  recgen test ./scenarios
  recgen test ./scenarios --filter "pair_*"
  recgen test ./scenarios --update
  recgen test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "golden file directory (default: <scenario-dir>/golden)")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Validate directory
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("invalid filter pattern: %v", err))
		}
	}
	goldenDir := opts.Golden
	if goldenDir == "" {
		goldenDir = filepath.Join(scenariosDir, "golden")
	}

	// Find scenario files
	scenarioFiles, err := harness.DiscoverScenarios(scenariosDir)
	if err != nil {
		return outputCommandError(formatter, ErrCodeScanError, err.Error())
	}
	scenarioFiles = filterScenarios(scenarioFiles, opts.Filter)

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return formatter.Success(TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	// Run scenarios
	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}
	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, goldenDir, opts, formatter)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	// Output results
	if opts.Format == "json" {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter, result)
}

// filterScenarios keeps the files whose base name without extension
// matches filter. The pattern was validated by the caller.
func filterScenarios(files []string, filter string) []string {
	if filter == "" {
		return files
	}
	var out []string
	for _, path := range files {
		base := filepath.Base(path)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		if ok, _ := filepath.Match(filter, name); ok {
			out = append(out, path)
		}
	}
	return out
}

// runScenario executes a single scenario and returns the result.
func runScenario(scenarioFile, goldenDir string, opts *TestOptions, formatter *OutputFormatter) ScenarioResult {
	text := opts.Format != "json"
	w := formatter.Writer
	fail := func(name string, errs ...string) ScenarioResult {
		if text {
			fmt.Fprintf(w, "✗ %s\n", name)
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		return ScenarioResult{Name: name, Pass: false, Errors: errs}
	}

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return fail(filepath.Base(scenarioFile), fmt.Sprintf("failed to load scenario: %v", err))
	}

	result, err := harness.RunWithLogger(scenario, slog.Default())
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("execution failed: %v", err))
	}

	snapshot, err := harness.MarshalSnapshot(scenario.Name, result)
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("failed to render trace: %v", err))
	}
	goldenPath := filepath.Join(goldenDir, scenario.Name+".golden")

	if opts.Update {
		if err := writeGolden(goldenPath, snapshot); err != nil {
			return fail(scenario.Name, fmt.Sprintf("failed to update golden file: %v", err))
		}
		formatter.VerboseLog("Updated %s", goldenPath)
	} else {
		want, err := os.ReadFile(goldenPath)
		switch {
		case os.IsNotExist(err):
			// No golden file - use expectations and assertions only
		case err != nil:
			return fail(scenario.Name, fmt.Sprintf("failed to read golden file: %v", err))
		case !bytes.Equal(want, snapshot):
			return fail(scenario.Name, "trace does not match golden file (run with --update to regenerate)")
		}
	}

	if !result.Pass {
		return fail(scenario.Name, result.Errors...)
	}
	if text {
		suffix := ""
		if opts.Update {
			suffix = " (golden updated)"
		}
		fmt.Fprintf(w, "✓ %s%s\n", scenario.Name, suffix)
	}
	return ScenarioResult{Name: scenario.Name, Pass: true}
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}
	if err := formatter.encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(formatter *OutputFormatter, result TestResult) error {
	w := formatter.Writer

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
