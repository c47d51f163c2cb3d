package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// DefaultProjectFile is the project file the CLI reads when none is named.
const DefaultProjectFile = "splice.yaml"

// Project is the CLI project file. Relative paths are resolved against the
// directory holding the file.
type Project struct {
	Root        string   `yaml:"root"`
	IncludeDirs []string `yaml:"include_dirs"`
	Bundles     []string `yaml:"bundles"`
	PragmaOnce  bool     `yaml:"pragma_once"`
	MaxDepth    int      `yaml:"max_depth"`
	Remote      Remote   `yaml:"remote"`
}

// Remote configures pathstore as an additional include source.
type Remote struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Prefix string `yaml:"prefix"`
}

// LoadProject reads a project file. A missing file yields an error matching
// os.ErrNotExist so callers can fall back to defaults.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}

	var p Project
	if err := yaml.UnmarshalWithOptions(data, &p, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("parse project file %s: %w", path, err)
	}
	if p.MaxDepth < 0 {
		return nil, fmt.Errorf("project file %s: max_depth must not be negative", path)
	}

	base := filepath.Dir(path)
	p.Root = resolvePath(base, p.Root)
	for i, dir := range p.IncludeDirs {
		p.IncludeDirs[i] = resolvePath(base, dir)
	}
	for i, b := range p.Bundles {
		p.Bundles[i] = resolvePath(base, b)
	}
	p.Remote.URL = os.ExpandEnv(p.Remote.URL)
	p.Remote.APIKey = os.ExpandEnv(p.Remote.APIKey)
	p.Remote.Prefix = os.ExpandEnv(p.Remote.Prefix)

	return &p, nil
}

// LoadProjectOrDefault reads path, returning an empty project when the file
// does not exist.
func LoadProjectOrDefault(path string) (*Project, error) {
	p, err := LoadProject(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Project{}, nil
	}
	return p, err
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
