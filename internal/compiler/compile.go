package compiler

import (
	"fmt"
	"log/slog"

	"github.com/roach88/recgen/internal/ir"
)

// Options configures a compilation unit.
type Options struct {
	// Package is the Go package name of the generated code.
	Package string
	// IdentityPrefix prefixes default record identities; defaults to Package.
	IdentityPrefix string
}

// Unit is a compiled set of record declarations.
type Unit struct {
	Package string
	Records []*RecordModel
	Hash    string
}

// Record returns the model named name, or nil.
func (u *Unit) Record(name string) *RecordModel {
	for _, m := range u.Records {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Compile builds the record models of a unit. Every declared name is
// registered first so references may point forward; records synthesized
// for inline literals follow their parent. All schema errors are
// collected into a CompileErrors; the records that compiled cleanly are
// returned alongside it.
func Compile(decls []*ir.RecordDecl, opts Options) (*Unit, error) {
	prefix := opts.IdentityPrefix
	if prefix == "" {
		prefix = opts.Package
	}
	ctx := NewContext(prefix)

	var errs CompileErrors
	declared := make([]*ir.RecordDecl, 0, len(decls))
	for _, d := range decls {
		if err := ctx.Declare(d); err != nil {
			errs = append(errs, asCompileError(err, d.Name))
			continue
		}
		declared = append(declared, d)
	}

	unit := &Unit{Package: opts.Package}
	var compileOne func(d *ir.RecordDecl)
	compileOne = func(d *ir.RecordDecl) {
		m, err := buildRecord(ctx, d)
		// Synthesized children compile even when the parent failed later on.
		pending := ctx.takePending()
		if err != nil {
			errs = append(errs, asCompileError(err, d.Name))
			slog.Debug("record rejected", "record", d.Name, "error", err)
		} else {
			unit.Records = append(unit.Records, m)
			slog.Debug("record compiled",
				"record", m.Name,
				"identity", m.Identity,
				"fields", len(m.Fields),
				"generic", m.Generic(),
				"compact", m.Envelope.Compact,
			)
		}
		for _, child := range pending {
			compileOne(child)
		}
	}
	for _, d := range declared {
		compileOne(d)
	}

	errs = append(errs, checkRequiredCycles(unit.Records)...)
	errs = append(errs, checkTopLevelNames(unit.Records)...)

	hashes := make([]string, len(unit.Records))
	for i, m := range unit.Records {
		hashes[i] = m.Hash
	}
	unit.Hash = ir.UnitHash(opts.Package, hashes)

	slog.Info("compiled records",
		"package", opts.Package,
		"records", len(unit.Records),
		"errors", len(errs),
	)
	return unit, errs.orNil()
}

// checkTopLevelNames rejects records whose generated package-level
// identifiers collide.
func checkTopLevelNames(models []*RecordModel) CompileErrors {
	var errs CompileErrors
	owner := make(map[string]string)
	for _, m := range models {
		names := []string{m.GoName, m.TypeVar(), "New" + m.GoName, "Empty" + m.GoName, "Decode" + m.GoName, "Is" + m.GoName, "As" + m.GoName}
		if m.Binding != nil {
			names = append(names, m.Binding.Func)
		}
		for _, f := range m.Fields {
			names = append(names, m.FieldConst(f))
		}
		for _, n := range names {
			if prev, taken := owner[n]; taken && prev != m.Name {
				errs = append(errs, &CompileError{
					Record:  m.Name,
					Code:    ErrNameCollision,
					Message: fmt.Sprintf("generated identifier %s collides with record %s", n, prev),
					Pos:     m.Decl.Pos,
				})
				break
			}
			owner[n] = m.Name
		}
	}
	return errs
}
