package cli

import (
	"context"
	"fmt"
	"go/token"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/recgen/internal/codegen"
	"github.com/roach88/recgen/internal/compiler"
	"github.com/roach88/recgen/internal/ir"
	"github.com/roach88/recgen/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output         string // output directory
	Package        string // Go package name
	IdentityPrefix string // prefix of default identities
	Cache          string // build cache database
}

// CompiledRecord describes one generated file.
type CompiledRecord struct {
	Name     string `json:"name"`
	Identity string `json:"identity"`
	File     string `json:"file"`
	Hash     string `json:"hash"`
	Cached   bool   `json:"cached"`
}

// CompilationResult holds the outcome of a compile run.
type CompilationResult struct {
	Package  string           `json:"package"`
	UnitHash string           `json:"unit_hash"`
	Records  []CompiledRecord `json:"records"`
	Output   string           `json:"output,omitempty"`
	BuildID  string           `json:"build_id,omitempty"`
	Reused   int              `json:"reused"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <schema-dir>",
		Short: "Compile record schemas to Go source",
		Long: `Compile CUE and YAML record declarations to Go source.

Every record becomes one <name>.gen.go file holding its record type, an
immutable wrapper, constructors, accessors and mutators. Without --output
the files are generated and checked but not written.

With --cache, generated files are stored in a SQLite build cache keyed by
declaration hash, package, identity and compiler version; unchanged
declarations reuse their cached source.

Settings may also come from recgen.yaml (package, output, identity_prefix,
cache); flags take precedence.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory")
	cmd.Flags().StringVar(&opts.Package, "package", "", "Go package name of the generated code")
	cmd.Flags().StringVar(&opts.IdentityPrefix, "identity-prefix", "", "prefix of default record identities (default: package)")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "build cache database")

	return cmd
}

func runCompile(opts *CompileOptions, schemaDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := resolveConfig(opts.RootOptions, schemaDir)
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, err.Error())
	}
	formatter.VerboseLog("Using config: %s", cfg.Source())

	pkg := override(opts.Package, cfg.Package)
	output := override(opts.Output, cfg.Output)
	cache := override(opts.Cache, cfg.Cache)
	if pkg == "" {
		return outputCommandError(formatter, ErrCodeConfig, "package name is required (--package or package: in "+ConfigFileName+")")
	}
	if !token.IsIdentifier(pkg) {
		return outputCommandError(formatter, ErrCodeConfig, fmt.Sprintf("invalid package name %q", pkg))
	}

	unit, errs, fatal := compileDir(schemaDir, compiler.Options{
		Package:        pkg,
		IdentityPrefix: override(opts.IdentityPrefix, cfg.IdentityPrefix),
	}, formatter)
	if fatal != nil {
		e := toCLIError(fatal)
		return outputCommandError(formatter, e.Code, e.Message)
	}
	if len(errs) > 0 {
		_ = formatter.Errors("Compilation failed", toCLIErrors(errs))
		// Schema errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	result := &CompilationResult{Package: unit.Package, UnitHash: unit.Hash, Output: output}
	files, code, err := generateFiles(cmd.Context(), unit, cache, result)
	if err != nil {
		return outputCommandError(formatter, code, err.Error())
	}

	if output != "" {
		if err := codegen.WriteFiles(output, files); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, err.Error())
		}
	}

	slog.Info("compile finished",
		"package", unit.Package,
		"records", len(result.Records),
		"reused", result.Reused,
		"output", output,
	)
	return outputCompileSuccess(formatter, result)
}

// compileDir loads and compiles the schemas of dir. fatal is set when the
// directory could not be loaded at all; errs holds every schema error.
func compileDir(dir string, opts compiler.Options, formatter *OutputFormatter) (unit *compiler.Unit, errs []error, fatal error) {
	loadResult, loadErrs := LoadSchemas(dir)
	if loadResult == nil {
		return nil, nil, loadErrs[0]
	}
	formatter.VerboseLog("Found %d CUE file(s) and %d YAML file(s) in %s", len(loadResult.CUEFiles), len(loadResult.YAMLFiles), dir)
	for _, d := range loadResult.Decls {
		formatter.VerboseLog("Compiling record: %s", d.Name)
	}

	unit, err := compiler.Compile(loadResult.Decls, opts)
	errs = append(loadErrs, splitErrors(err)...)
	return unit, errs, nil
}

// generateFiles renders every record, through the build cache when one is
// configured. code is the CLI error code of a failure.
func generateFiles(ctx context.Context, unit *compiler.Unit, cachePath string, result *CompilationResult) ([]codegen.File, string, error) {
	if cachePath == "" {
		files, err := codegen.Generate(unit)
		if err != nil {
			return nil, ErrCodeGeneric, err
		}
		for i, m := range unit.Records {
			result.Records = append(result.Records, compiledRecord(unit.Package, m, files[i].Name, false))
		}
		return files, "", nil
	}

	st, err := store.Open(cachePath)
	if err != nil {
		return nil, ErrCodeCache, err
	}
	defer st.Close()

	build, err := st.BeginBuild(ctx, unit.Hash, unit.Package)
	if err != nil {
		return nil, ErrCodeCache, err
	}
	result.BuildID = build.ID

	files := make([]codegen.File, 0, len(unit.Records))
	for _, m := range unit.Records {
		out, found, err := st.Lookup(ctx, ir.OutputHash(unit.Package, m.Identity, m.Hash))
		if err != nil {
			return nil, ErrCodeCache, err
		}
		if !found {
			f, err := codegen.GenerateRecord(unit.Package, m)
			if err != nil {
				return nil, ErrCodeGeneric, err
			}
			out, err = store.NewOutput(unit.Package, m.Identity, f.Name, m.Decl, f.Source)
			if err != nil {
				return nil, ErrCodeCache, err
			}
		}
		if err := st.WriteOutput(ctx, build.ID, out, found); err != nil {
			return nil, ErrCodeCache, err
		}

		files = append(files, codegen.File{Name: out.File, Record: m.Name, Source: out.Source})
		result.Records = append(result.Records, compiledRecord(unit.Package, m, out.File, found))
		if found {
			result.Reused++
		}
	}
	return files, "", nil
}

func compiledRecord(pkg string, m *compiler.RecordModel, file string, cached bool) CompiledRecord {
	return CompiledRecord{
		Name:     m.Name,
		Identity: m.Identity,
		File:     file,
		Hash:     ir.OutputHash(pkg, m.Identity, m.Hash),
		Cached:   cached,
	}
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d record(s) into package %s\n\n", len(result.Records), result.Package)

	if len(result.Records) > 0 {
		fmt.Fprintln(formatter.Writer, "Records:")
		for _, r := range result.Records {
			suffix := ""
			if r.Cached {
				suffix = " (cached)"
			}
			fmt.Fprintf(formatter.Writer, "  %s [%s] → %s%s\n", r.Name, r.Identity, r.File, suffix)
		}
		fmt.Fprintln(formatter.Writer)
	}

	if result.BuildID != "" {
		fmt.Fprintf(formatter.Writer, "Build %s: %d of %d record(s) reused\n", result.BuildID, result.Reused, len(result.Records))
	}
	if result.Output != "" {
		fmt.Fprintf(formatter.Writer, "Wrote %d file(s) to %s\n", len(result.Records), result.Output)
	}

	return nil
}

// outputCommandError outputs a single command-level error (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}
