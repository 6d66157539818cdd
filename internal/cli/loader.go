package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/recgen/internal/compiler"
	"github.com/roach88/recgen/internal/ir"
)

// LoadResult contains the record declarations found in a schema directory.
type LoadResult struct {
	Decls     []*ir.RecordDecl
	CUEFiles  []string
	YAMLFiles []string
}

// FileCount is the number of schema files read.
func (r *LoadResult) FileCount() int { return len(r.CUEFiles) + len(r.YAMLFiles) }

// LoadError represents an error that occurred during schema loading.
type LoadError struct {
	Code    string
	Message string
	Pos     ir.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSchemas reads every record declaration in dir. The .cue files of dir
// are loaded as one CUE instance so they may share definitions; each
// .yaml/.yml file other than the config file is loaded on its own.
//
// A nil result means the directory could not be used at all. Otherwise
// the declarations that loaded are returned with every schema error.
func LoadSchemas(dir string) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schema directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, yamlFiles, err := FindSchemaFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 && len(yamlFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no schema files found in %s", dir)}}
	}

	result := &LoadResult{CUEFiles: cueFiles, YAMLFiles: yamlFiles}
	var errs []error

	if len(cueFiles) > 0 {
		decls, cueErrs := loadCUEDir(dir)
		if decls == nil && len(cueErrs) == 1 {
			var loadErr *LoadError
			if errors.As(cueErrs[0], &loadErr) {
				return nil, cueErrs
			}
		}
		result.Decls = append(result.Decls, decls...)
		errs = append(errs, cueErrs...)
	}

	for _, path := range yamlFiles {
		decls, err := compiler.LoadFile(path)
		result.Decls = append(result.Decls, decls...)
		errs = append(errs, splitErrors(err)...)
	}

	if len(result.Decls) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no records found in schemas"})
	}
	return result, errs
}

func loadCUEDir(dir string) ([]*ir.RecordDecl, []error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	decls, err := compiler.LoadRecords(value)
	return decls, splitErrors(err)
}

// FindSchemaFiles lists the schema files directly inside dir, sorted. The
// config file is not a schema.
func FindSchemaFiles(dir string) (cueFiles, yamlFiles []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == ConfigFileName {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".cue":
			cueFiles = append(cueFiles, path)
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, path)
		}
	}
	sort.Strings(cueFiles)
	sort.Strings(yamlFiles)
	return cueFiles, yamlFiles, nil
}

// splitErrors flattens a CompileErrors into its members.
func splitErrors(err error) []error {
	if err == nil {
		return nil
	}
	var many compiler.CompileErrors
	if errors.As(err, &many) {
		out := make([]error, len(many))
		for i, e := range many {
			out[i] = e
		}
		return out
	}
	return []error{err}
}

// toCLIError converts a load or schema error for output.
func toCLIError(err error) CLIError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		out := CLIError{Code: compileErr.Code, Message: compileErr.Message, Record: compileErr.Record, Field: compileErr.Field}
		if compileErr.Pos.IsValid() {
			out.Pos = compileErr.Pos.String()
		}
		return out
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		out := CLIError{Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			out.Pos = loadErr.Pos.String()
		}
		return out
	}
	return CLIError{Code: ErrCodeGeneric, Message: err.Error()}
}

func toCLIErrors(errs []error) []CLIError {
	out := make([]CLIError, len(errs))
	for i, err := range errs {
		out[i] = toCLIError(err)
	}
	return out
}

// Error code constants for command-level failures. Schema errors carry the
// compiler's E2xx codes and data errors the record error codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No schema files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeConfig      = "E008" // Config file or flag error
	ErrCodeCache       = "E009" // Build cache error
	ErrCodeReadFailed  = "E010" // Input file read error
)
