// Package codegen renders compiled record models as Go source: one file
// per record with its *record.Type declaration, an immutable wrapper type,
// constructors, accessors and mutators.
package codegen

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/recgen/internal/compiler"
)

// Header marks every generated file.
const Header = "// Code generated by recgen. DO NOT EDIT."

// RuntimeImport is the import path of the runtime package.
const RuntimeImport = "github.com/roach88/recgen/record"

// File is one generated source file.
type File struct {
	Name   string
	Record string
	Source []byte
}

// Generate renders every record of the unit. Output is formatted and its
// imports pruned; a formatting failure means the emitter produced invalid
// Go and is returned with the offending file name.
func Generate(unit *compiler.Unit) ([]File, error) {
	files := make([]File, 0, len(unit.Records))
	for _, m := range unit.Records {
		f, err := GenerateRecord(unit.Package, m)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// FileName is the generated file name of a record.
func FileName(m *compiler.RecordModel) string {
	return compiler.SnakeName(m.GoName) + ".gen.go"
}

// GenerateRecord renders one record. The file references other records
// of the package by name only.
func GenerateRecord(pkg string, m *compiler.RecordModel) (File, error) {
	name := FileName(m)
	src, err := renderFile(pkg, m)
	if err != nil {
		return File{}, fmt.Errorf("generate %s: %w", name, err)
	}
	slog.Debug("generated record", "record", m.Name, "file", name, "bytes", len(src))
	return File{Name: name, Record: m.Name, Source: src}, nil
}

func renderFile(pkg string, m *compiler.RecordModel) ([]byte, error) {
	e := &Emitter{}
	e.Line(Header)
	e.Blank()
	e.Line("package %s", pkg)
	e.Blank()
	e.Line("import (")
	e.Line("\t\"iter\"")
	e.Line("\t\"net/url\"")
	e.Line("\t\"time\"")
	e.Blank()
	e.Line("\t%q", RuntimeImport)
	e.Line(")")
	e.Blank()
	renderRecord(e, m)
	return format(m.GoName, e.Bytes())
}

// WriteFiles writes generated files into dir, creating it when needed.
func WriteFiles(dir string, files []File) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Source, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	slog.Info("wrote generated files", "dir", dir, "files", len(files))
	return nil
}
