package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/recgen/internal/ir"
	"github.com/roach88/recgen/internal/testutil"
)

// createTestStore opens a fresh cache with sequential build ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.WithIDs(testutil.NewSequentialIDs(""))
}

// testDecl returns a one-field declaration; field varies its hash.
func testDecl(name, field string) *ir.RecordDecl {
	return &ir.RecordDecl{
		Name:     name,
		Identity: "example." + name,
		Fields: []ir.FieldDecl{
			{Key: field, Type: ir.Primitive{Kind: ir.KindString}},
		},
	}
}

func testOutput(t *testing.T, decl *ir.RecordDecl) Output {
	t.Helper()
	out, err := NewOutput("example", decl.Identity, decl.Name+".gen.go", decl, []byte("package example\n"))
	if err != nil {
		t.Fatalf("NewOutput() failed: %v", err)
	}
	return out
}
