package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const outputColumns = `o.output_hash, o.decl_hash, o.record, o.identity, o.package, o.file, o.decl, o.source, o.build_id`

// Lookup returns the cached output with the given output hash.
func (s *Store) Lookup(ctx context.Context, hash string) (Output, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+outputColumns+`
		FROM outputs o
		WHERE o.output_hash = ?
	`, hash)
	out, err := scanOutput(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Output{}, false, nil
	}
	if err != nil {
		return Output{}, false, fmt.Errorf("lookup %s: %w", hash, err)
	}
	return out, true, nil
}

// ReadBuilds returns every build ordered by seq.
//
// Returns an empty slice (not nil) if the cache has no builds.
func (s *Store) ReadBuilds(ctx context.Context) ([]Build, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, unit_hash, package, compiler_version, records, reused
		FROM builds
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

// LatestBuild returns the build with the highest seq.
func (s *Store) LatestBuild(ctx context.Context) (Build, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, unit_hash, package, compiler_version, records, reused
		FROM builds
		ORDER BY seq DESC
		LIMIT 1
	`)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, false, nil
	}
	if err != nil {
		return Build{}, false, fmt.Errorf("latest build: %w", err)
	}
	return b, true, nil
}

// ReadBuildOutputs returns the outputs a build produced, ordered by record
// name.
func (s *Store) ReadBuildOutputs(ctx context.Context, buildID string) ([]Output, error) {
	return s.queryOutputs(ctx, `
		SELECT `+outputColumns+`
		FROM build_outputs bo
		JOIN outputs o ON o.output_hash = bo.output_hash
		WHERE bo.build_id = ?
		ORDER BY o.record COLLATE BINARY ASC, o.output_hash ASC
	`, buildID)
}

// ReadRecordHistory returns every distinct output cached for a record, in
// the order the builds that first produced them ran.
func (s *Store) ReadRecordHistory(ctx context.Context, record string) ([]Output, error) {
	return s.queryOutputs(ctx, `
		SELECT `+outputColumns+`
		FROM outputs o
		JOIN builds b ON b.id = o.build_id
		WHERE o.record = ?
		ORDER BY b.seq ASC, o.output_hash ASC
	`, record)
}

// ReadOutputs returns every cached output ordered by record name.
func (s *Store) ReadOutputs(ctx context.Context) ([]Output, error) {
	return s.queryOutputs(ctx, `
		SELECT `+outputColumns+`
		FROM outputs o
		ORDER BY o.record COLLATE BINARY ASC, o.output_hash ASC
	`)
}

func (s *Store) queryOutputs(ctx context.Context, query string, args ...any) ([]Output, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()

	outputs := []Output{}
	for rows.Next() {
		out, err := scanOutput(rows)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outputs: %w", err)
	}
	return outputs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(sc scanner) (Build, error) {
	var b Build
	err := sc.Scan(&b.ID, &b.Seq, &b.UnitHash, &b.Package, &b.CompilerVersion, &b.Records, &b.Reused)
	if err != nil {
		return Build{}, fmt.Errorf("scan build: %w", err)
	}
	return b, nil
}

func scanOutput(sc scanner) (Output, error) {
	var o Output
	err := sc.Scan(&o.Hash, &o.DeclHash, &o.Record, &o.Identity, &o.Package, &o.File, &o.Decl, &o.Source, &o.BuildID)
	if err != nil {
		return Output{}, fmt.Errorf("scan output: %w", err)
	}
	return o, nil
}
