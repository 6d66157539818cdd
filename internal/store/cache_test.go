package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recgen/internal/ir"
)

// TestBeginBuild tests build ids and the logical seq.
func TestBeginBuild(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	_, ok, err := s.LatestBuild(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache has no builds")

	b1, err := s.BeginBuild(ctx, "unit-1", "example")
	require.NoError(t, err)
	b2, err := s.BeginBuild(ctx, "unit-2", "example")
	require.NoError(t, err)

	assert.Equal(t, "build-0001", b1.ID)
	assert.Equal(t, int64(1), b1.Seq)
	assert.Equal(t, int64(2), b2.Seq)
	assert.Equal(t, ir.CompilerVersion, b1.CompilerVersion)

	latest, ok, err := s.LatestBuild(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b2.ID, latest.ID)

	builds, err := s.ReadBuilds(ctx)
	require.NoError(t, err)
	require.Len(t, builds, 2)
	assert.Equal(t, []string{"build-0001", "build-0002"}, []string{builds[0].ID, builds[1].ID})
}

// TestWriteOutputAndLookup tests content addressing and build counters.
func TestWriteOutputAndLookup(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	b, err := s.BeginBuild(ctx, "unit", "example")
	require.NoError(t, err)

	pair := testOutput(t, testDecl("Pair", "first"))
	require.NoError(t, s.WriteOutput(ctx, b.ID, pair, false))
	// same output, same build: no-op
	require.NoError(t, s.WriteOutput(ctx, b.ID, pair, false))

	got, ok, err := s.Lookup(ctx, pair.Hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Pair", got.Record)
	assert.Equal(t, "example.Pair", got.Identity)
	assert.Equal(t, b.ID, got.BuildID)
	assert.Equal(t, []byte("package example\n"), got.Source)
	assert.Equal(t, ir.MustDeclHash(testDecl("Pair", "first")), got.DeclHash)

	decl, err := got.DeclObject()
	require.NoError(t, err)
	assert.Equal(t, "Pair", decl["name"])

	_, ok, err = s.Lookup(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	latest, _, err := s.LatestBuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, latest.Records)
	assert.Equal(t, 0, latest.Reused)
}

// TestReuseAcrossBuilds tests that a reused output keeps the row of the
// build that first produced it.
func TestReuseAcrossBuilds(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	b1, err := s.BeginBuild(ctx, "unit-1", "example")
	require.NoError(t, err)
	pairV1 := testOutput(t, testDecl("Pair", "first"))
	name := testOutput(t, testDecl("Name", "value"))
	require.NoError(t, s.WriteOutput(ctx, b1.ID, pairV1, false))
	require.NoError(t, s.WriteOutput(ctx, b1.ID, name, false))

	b2, err := s.BeginBuild(ctx, "unit-2", "example")
	require.NoError(t, err)
	pairV2 := testOutput(t, testDecl("Pair", "second"))
	require.NotEqual(t, pairV1.Hash, pairV2.Hash)
	require.NoError(t, s.WriteOutput(ctx, b2.ID, pairV2, false))
	require.NoError(t, s.WriteOutput(ctx, b2.ID, name, true))

	got, ok, err := s.Lookup(ctx, name.Hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b1.ID, got.BuildID, "first producer is kept")

	outs, err := s.ReadBuildOutputs(ctx, b2.ID)
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Equal(t, "Name", outs[0].Record, "ordered by record name")
	assert.Equal(t, "Pair", outs[1].Record)

	builds, err := s.ReadBuilds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, builds[1].Records)
	assert.Equal(t, 1, builds[1].Reused)

	history, err := s.ReadRecordHistory(ctx, "Pair")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, pairV1.Hash, history[0].Hash)
	assert.Equal(t, pairV2.Hash, history[1].Hash)

	all, err := s.ReadOutputs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// TestWriteOutputUnknownBuild tests the foreign key on builds.
func TestWriteOutputUnknownBuild(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteOutput(context.Background(), "no-such-build", testOutput(t, testDecl("Pair", "first")), false)
	assert.Error(t, err)
}

// TestOutputHashDependsOnPackage tests the cache key.
func TestOutputHashDependsOnPackage(t *testing.T) {
	decl := testDecl("Pair", "first")
	a, err := NewOutput("example", "example.Pair", "pair.gen.go", decl, nil)
	require.NoError(t, err)
	b, err := NewOutput("other", "example.Pair", "pair.gen.go", decl, nil)
	require.NoError(t, err)
	c, err := NewOutput("example", "acme.Pair", "pair.gen.go", decl, nil)
	require.NoError(t, err)

	assert.Equal(t, a.DeclHash, b.DeclHash)
	assert.NotEqual(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.Hash, c.Hash)
	assert.Equal(t, "acme.Pair", c.Identity)
}
