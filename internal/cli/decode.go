package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/roach88/recgen/internal/compiler"
	"github.com/roach88/recgen/internal/interp"
	"github.com/roach88/recgen/record"
)

// DecodeOptions holds flags for the decode command.
type DecodeOptions struct {
	*RootOptions
	Form           string // plain | tagged | compact
	Package        string
	IdentityPrefix string
}

// DecodeResult holds a decoded and re-encoded value.
type DecodeResult struct {
	Type     string `json:"type"`
	Identity string `json:"identity"`
	Form     string `json:"form"`
	Value    any    `json:"value"`
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode <schema-dir> <type> <file.json>",
		Short: "Validate JSON data against a record type",
		Long: `Decode JSON data as a record type and print it re-encoded.

The schemas are compiled and interpreted in process; no code is generated.
The type may be a generic binding such as "Box<Name>". Any wire form is
accepted: plain entries, a tagged envelope or a compact string. Use "-" to
read from stdin.

Exit codes:
  0 - Data is valid
  1 - Data does not match the type
  2 - Command error (invalid paths, schema errors, etc.)`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Form, "form", "plain", "output form (plain|tagged|compact)")
	cmd.Flags().StringVar(&opts.Package, "package", "", "package name used for default identities")
	cmd.Flags().StringVar(&opts.IdentityPrefix, "identity-prefix", "", "prefix of default record identities")

	return cmd
}

func runDecode(opts *DecodeOptions, schemaDir, typeExpr, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	switch opts.Form {
	case "plain", "tagged", "compact":
	default:
		return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("invalid form %q: must be plain, tagged or compact", opts.Form))
	}

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
	if len(errs) > 0 {
		_ = formatter.Errors("Schema errors", toCLIErrors(errs))
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	t, err := interp.Load(unit).Lookup(typeExpr)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	data, err := readInput(input, cmd.InOrStdin())
	if err != nil {
		return outputCommandError(formatter, ErrCodeReadFailed, err.Error())
	}
	formatter.VerboseLog("Decoding %d byte(s) as %s", len(data), t.Identity())

	inst, err := record.UnmarshalJSON(t, data)
	if err == nil {
		var value any
		value, err = encodeForm(inst, opts.Form)
		if err == nil {
			return outputDecodeSuccess(formatter, DecodeResult{Type: typeExpr, Identity: t.Identity(), Form: opts.Form, Value: value})
		}
	}
	return outputDataError(formatter, err)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func encodeForm(in *record.Instance, form string) (any, error) {
	switch form {
	case "tagged":
		return in.EncodeTagged()
	case "compact":
		return in.EncodeCompact()
	}
	return in.Encode()
}

func outputDecodeSuccess(formatter *OutputFormatter, result DecodeResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	data, err := json.MarshalIndent(result.Value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(formatter.Writer, string(data))
	return nil
}

// outputDataError reports a record error (exit code 1).
func outputDataError(formatter *OutputFormatter, err error) error {
	e := CLIError{Code: ErrCodeGeneric, Message: err.Error()}
	var rerr *record.Error
	if errors.As(err, &rerr) {
		e = CLIError{Code: rerr.Code, Message: rerr.Error(), Record: rerr.Type, Field: rerr.Field}
	}
	if formatter.Format == "json" {
		_ = formatter.encode(CLIResponse{Status: "error", Error: &e})
	} else {
		fmt.Fprintf(formatter.Writer, "✗ Invalid data\n  %s: %s\n", e.Code, e.Message)
	}
	return WrapExitError(ExitFailure, "invalid data", err)
}
