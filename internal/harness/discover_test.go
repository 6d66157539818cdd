package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDiscoverScenarios tests that only YAML files with steps are found.
func TestDiscoverScenarios(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.yaml":          "name: b\nsteps: []\n",
		"nested/a.yml":    "name: a\nsteps: []\n",
		"schema.yaml":     "record:\n  A:\n    fields:\n      x: string\n",
		"list.yaml":       "- steps\n",
		"notes.txt":       "steps: []\n",
		"nested/c.YAML":   "steps: []\n",
		"nested/bad.yaml": "steps: [\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	paths, err := DiscoverScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested/a.yml"),
		filepath.Join(dir, "nested/c.YAML"),
	}, paths)
}

// TestDiscoverScenariosMissingDir tests the walk error.
func TestDiscoverScenariosMissingDir(t *testing.T) {
	_, err := DiscoverScenarios(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover scenarios")
}
