package harness

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DiscoverScenarios returns the scenario files under dir: every .yaml or
// .yml file whose top level has a "steps" key. Schema files living next to
// scenarios are skipped. Paths are sorted.
func DiscoverScenarios(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		ok, err := isScenario(path)
		if err != nil {
			return err
		}
		if ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover scenarios in %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func isScenario(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	var top map[string]any
	if err := yaml.Unmarshal(data, &top); err != nil {
		// Not a mapping document; not a scenario.
		return false, nil
	}
	_, ok := top["steps"]
	return ok, nil
}
