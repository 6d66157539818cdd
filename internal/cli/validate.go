package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/recgen/internal/compiler"
)

// defaultPackage names the compilation unit of commands that do not write
// code; it only shows up in default identities.
const defaultPackage = "records"

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Package        string
	IdentityPrefix string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool       `json:"valid"`
	Records []string   `json:"records"`
	Errors  []CLIError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <schema-dir>",
		Short: "Check record schemas without generating code",
		Long: `Check CUE and YAML record declarations without generating code.

Runs the full compiler: field keys and tags, type expressions, references,
generic arity, compact eligibility, required cycles and generated name
collisions. Every error is reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Package, "package", "", "package name used for default identities")
	cmd.Flags().StringVar(&opts.IdentityPrefix, "identity-prefix", "", "prefix of default record identities")

	return cmd
}

func runValidate(opts *ValidateOptions, schemaDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := resolveConfig(opts.RootOptions, schemaDir)
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, err.Error())
	}

	unit, errs, fatal := compileDir(schemaDir, compiler.Options{
		Package:        override(override(opts.Package, cfg.Package), defaultPackage),
		IdentityPrefix: override(opts.IdentityPrefix, cfg.IdentityPrefix),
	}, formatter)
	if fatal != nil {
		e := toCLIError(fatal)
		return outputCommandError(formatter, e.Code, e.Message)
	}

	result := ValidationResult{Valid: len(errs) == 0, Records: []string{}}
	for _, m := range unit.Records {
		result.Records = append(result.Records, m.Name)
	}

	if len(errs) > 0 {
		result.Errors = toCLIErrors(errs)
		if formatter.Format == "json" {
			_ = formatter.encode(CLIResponse{Status: "error", Data: result, Error: &result.Errors[0]})
		} else {
			_ = formatter.Errors("Validation failed", result.Errors)
		}
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d record(s) valid\n", len(result.Records))
	for _, name := range result.Records {
		fmt.Fprintf(formatter.Writer, "  %s\n", name)
	}
	return nil
}
