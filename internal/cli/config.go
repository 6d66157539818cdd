package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the project config file looked up in the schema
// directory when --config is not given.
const ConfigFileName = "recgen.yaml"

// Config holds project settings. Command-line flags override them.
type Config struct {
	// Package is the Go package name of the generated code.
	Package string `yaml:"package"`

	// Output is the directory generated files are written to.
	Output string `yaml:"output"`

	// IdentityPrefix prefixes default record identities.
	IdentityPrefix string `yaml:"identity_prefix"`

	// Cache is the build cache database.
	Cache string `yaml:"cache"`

	// path is the file the config was read from, if any.
	path string
}

// LoadConfig reads a config file. Relative output and cache paths are
// resolved against the file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	cfg.Output = resolvePath(base, cfg.Output)
	cfg.Cache = resolvePath(base, cfg.Cache)
	cfg.path = path
	return &cfg, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// resolveConfig loads --config when set, else the config file of
// schemaDir when present, else an empty config.
func resolveConfig(opts *RootOptions, schemaDir string) (*Config, error) {
	if opts.Config != "" {
		return LoadConfig(opts.Config)
	}
	if schemaDir == "" {
		return &Config{}, nil
	}
	path := filepath.Join(schemaDir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		return &Config{}, nil
	}
	return LoadConfig(path)
}

// override returns flag when set, else the config value.
func override(flag, fromConfig string) string {
	if flag != "" {
		return flag
	}
	return fromConfig
}

// Source describes where the config came from, for verbose output.
func (c *Config) Source() string {
	if c.path == "" {
		return "flags only"
	}
	return c.path
}
