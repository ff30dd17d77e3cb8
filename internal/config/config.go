// Package config loads and validates the relgen configuration file.
package config

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultFileName is looked up in the working directory when no -config
// flag is given.
const DefaultFileName = "relgen.toml"

// Source describes one input file of model structs.
type Source struct {
	Path   string            `toml:"path"`
	Tables map[string]string `toml:"tables"` // struct name → table name override
}

// Config mirrors the relgen TOML schema.
type Config struct {
	Destination string   `toml:"destination"` // output directory, relative to the config file
	Package     string   `toml:"package"`     // output package name
	Sources     []Source `toml:"source"`
}

// Plan is the resolved configuration used by the generator.
type Plan struct {
	Destination string // absolute output directory
	Package     string
	Sources     []Source // paths resolved relative to the config file
}

// Load reads and validates a relgen configuration file. Relative paths in
// the file are resolved against the file's directory.
func Load(path string) (Plan, error) {
	var plan Plan

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return plan, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return plan, fmt.Errorf("%s: %w", path, err)
	}

	return resolve(path, cfg)
}

func resolve(path string, cfg Config) (Plan, error) {
	var plan Plan
	baseDir := filepath.Dir(path)

	if len(cfg.Sources) == 0 {
		return plan, fmt.Errorf("%s: at least one [[source]] block is required", path)
	}
	for i, src := range cfg.Sources {
		if src.Path == "" {
			return plan, fmt.Errorf("%s: source[%d]: path is required", path, i)
		}
		if !filepath.IsAbs(src.Path) {
			cfg.Sources[i].Path = filepath.Join(baseDir, src.Path)
		}
	}

	dest := cfg.Destination
	if dest == "" {
		dest = "."
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(baseDir, dest)
	}

	pkg := cfg.Package
	if pkg == "" {
		pkg = filepath.Base(dest)
	}
	if !token.IsIdentifier(pkg) {
		return plan, fmt.Errorf("%s: package %q is not a valid Go identifier", path, pkg)
	}

	plan.Destination = dest
	plan.Package = pkg
	plan.Sources = cfg.Sources
	return plan, nil
}
