package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/recgen/internal/ir"
)

// Build is one compile run.
type Build struct {
	ID              string `json:"id"`
	Seq             int64  `json:"seq"`
	UnitHash        string `json:"unit_hash"`
	Package         string `json:"package"`
	CompilerVersion string `json:"compiler_version"`
	Records         int    `json:"records"`
	Reused          int    `json:"reused"`
}

// Output is the cached generated source of one declaration.
type Output struct {
	Hash     string `json:"output_hash"`
	DeclHash string `json:"decl_hash"`
	Record   string `json:"record"`
	Identity string `json:"identity"`
	Package  string `json:"package"`
	File     string `json:"file"`
	Decl     string `json:"-"`
	Source   []byte `json:"-"`
	BuildID  string `json:"build_id"`
}

// DeclObject returns the stored canonical declaration as a generic object.
func (o Output) DeclObject() (map[string]any, error) {
	return unmarshalDecl(o.Decl)
}

// NewOutput builds the cache entry for the generated file of decl. identity
// is the resolved wire identity, which may come from a prefix rather than
// the declaration.
func NewOutput(pkg, identity, file string, decl *ir.RecordDecl, source []byte) (Output, error) {
	declHash, err := ir.DeclHash(decl)
	if err != nil {
		return Output{}, fmt.Errorf("new output: %w", err)
	}
	declJSON, err := marshalDecl(decl)
	if err != nil {
		return Output{}, fmt.Errorf("new output: %w", err)
	}
	return Output{
		Hash:     ir.OutputHash(pkg, identity, declHash),
		DeclHash: declHash,
		Record:   decl.Name,
		Identity: identity,
		Package:  pkg,
		File:     file,
		Decl:     declJSON,
		Source:   source,
	}, nil
}

// BeginBuild records the start of a compile run and returns it with a
// fresh id and the next seq.
func (s *Store) BeginBuild(ctx context.Context, unitHash, pkg string) (Build, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Build{}, fmt.Errorf("begin build: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	b := Build{
		ID:              s.ids.Generate(),
		UnitHash:        unitHash,
		Package:         pkg,
		CompilerVersion: ir.CompilerVersion,
	}
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM builds`).Scan(&b.Seq); err != nil {
		return Build{}, fmt.Errorf("begin build: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO builds (id, seq, unit_hash, package, compiler_version)
		VALUES (?, ?, ?, ?, ?)
	`, b.ID, b.Seq, b.UnitHash, b.Package, b.CompilerVersion)
	if err != nil {
		return Build{}, fmt.Errorf("begin build: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Build{}, fmt.Errorf("begin build: commit: %w", err)
	}
	slog.Debug("build started", "id", b.ID, "seq", b.Seq, "package", pkg)
	return b, nil
}

// WriteOutput records that build produced out. The output row is
// content-addressed: a second write of the same hash keeps the first row.
// reused marks outputs served from the cache instead of regenerated.
// Writing the same output to the same build twice is a no-op.
func (s *Store) WriteOutput(ctx context.Context, buildID string, out Output, reused bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write output: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outputs
		(output_hash, decl_hash, record, identity, package, file, decl, source, build_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(output_hash) DO NOTHING
	`,
		out.Hash,
		out.DeclHash,
		out.Record,
		out.Identity,
		out.Package,
		out.File,
		out.Decl,
		out.Source,
		buildID,
	)
	if err != nil {
		return fmt.Errorf("write output %s: %w", out.Record, err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO build_outputs (build_id, output_hash, reused)
		VALUES (?, ?, ?)
		ON CONFLICT(build_id, output_hash) DO NOTHING
	`, buildID, out.Hash, reused)
	if err != nil {
		return fmt.Errorf("write output %s: link build: %w", out.Record, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write output %s: rows affected: %w", out.Record, err)
	}

	if n > 0 {
		reusedInc := 0
		if reused {
			reusedInc = 1
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE builds SET records = records + 1, reused = reused + ? WHERE id = ?
		`, reusedInc, buildID)
		if err != nil {
			return fmt.Errorf("write output %s: update build: %w", out.Record, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write output %s: commit: %w", out.Record, err)
	}
	return nil
}
