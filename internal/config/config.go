// Package config loads cssdoodle project configuration: a .cssdoodle.yaml,
// .cssdoodle.yml or .cssdoodle.json file, or the "cssdoodle" field of
// package.json, found by walking up from the working directory.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// FileNames are the config file names, in lookup order.
var FileNames = []string{".cssdoodle.yaml", ".cssdoodle.yml", ".cssdoodle.json"}

// packageKey is the package.json field holding the config.
const packageKey = "cssdoodle"

// TokenFile is a design token file whose tokens become custom properties.
type TokenFile struct {
	Path string `yaml:"path" json:"path"`
	// Prefix for the custom properties of this file, overriding
	// Config.Prefix.
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
}

// UnmarshalYAML accepts a bare path as well as a mapping.
func (t *TokenFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.Path = node.Value
		return nil
	}
	type plain TokenFile
	return node.Decode((*plain)(t))
}

// UnmarshalJSON accepts a bare path as well as an object.
func (t *TokenFile) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		t.Path = path
		return nil
	}
	type plain TokenFile
	return json.Unmarshal(data, (*plain)(t))
}

// Config is the project configuration.
type Config struct {
	// Grid is the default grid size for doodles that declare none.
	Grid string `yaml:"grid" json:"grid"`
	// Seed is the default seed.
	Seed         string      `yaml:"seed" json:"seed"`
	Experimental bool        `yaml:"experimental" json:"experimental"`
	Tokens       []TokenFile `yaml:"tokens" json:"tokens"`
	// Prefix is the global custom property prefix for tokens.
	Prefix  string   `yaml:"prefix" json:"prefix"`
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
	// Format of the compiled output: css, json or html.
	Format string `yaml:"format" json:"format"`
	OutDir string `yaml:"outDir" json:"outDir"`

	// Dir is the directory of the config file. Relative paths resolve
	// against it.
	Dir string `yaml:"-" json:"-"`
}

// Formats are the output formats.
var Formats = []string{"css", "json", "html"}

// Default returns the configuration used without a config file.
func Default() Config {
	return Config{
		Format:  "css",
		Include: []string{"**/*.doodle", "**/*.css-doodle"},
		Exclude: []string{"**/node_modules/**"},
	}
}

// Validate reports unusable values.
func (c Config) Validate() error {
	if c.Format != "" && !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("unknown format %q, want one of %s", c.Format, strings.Join(Formats, ", "))
	}
	for _, pattern := range slices.Concat(c.Include, c.Exclude) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return nil
}

// Load reads a config file. Missing fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path) //nolint:gosec // G304: config paths come from the user
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(jsonc.ToJSON(data), &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, cfg.Validate()
}

// loadPackageJSON reads the config field of a package.json. ok is false
// when the file or the field is missing.
func loadPackageJSON(path string) (cfg Config, ok bool, err error) {
	cfg = Default()
	data, err := os.ReadFile(path) //nolint:gosec // G304: reading workspace package.json
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, fmt.Errorf("failed to read package.json: %w", err)
	}
	var pkg map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return cfg, false, fmt.Errorf("failed to parse package.json: %w", err)
	}
	raw, found := pkg[packageKey]
	if !found {
		return cfg, false, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, false, fmt.Errorf("%s in package.json must be an object: %w", packageKey, err)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, true, cfg.Validate()
}

// Find walks up from dir to the first directory holding a config file.
// It returns "" when there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
		pkg := filepath.Join(dir, "package.json")
		if _, ok, err := loadPackageJSON(pkg); err != nil {
			return "", err
		} else if ok {
			return pkg, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Discover loads the config that applies to dir, or the defaults with
// Dir set to dir when there is none.
func Discover(dir string) (Config, error) {
	path, err := Find(dir)
	if err != nil {
		return Default(), err
	}
	if path == "" {
		cfg := Default()
		cfg.Dir, _ = filepath.Abs(dir)
		return cfg, nil
	}
	if filepath.Base(path) == "package.json" {
		cfg, _, err := loadPackageJSON(path)
		return cfg, err
	}
	return Load(path)
}

// Resolve makes a path relative to the config directory absolute.
func (c Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// Matches reports whether a slash-separated path relative to Dir is
// included and not excluded.
func (c Config) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	included := false
	for _, pattern := range c.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}

// Files lists the files under Dir that Matches accepts, sorted.
func (c Config) Files() ([]string, error) {
	fsys := os.DirFS(c.Dir)
	seen := map[string]bool{}
	var files []string
	for _, pattern := range c.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] && c.Matches(m) {
				seen[m] = true
				files = append(files, filepath.Join(c.Dir, filepath.FromSlash(m)))
			}
		}
	}
	slices.Sort(files)
	return files, nil
}

// Merge overlays the non-zero fields of o.
func (c Config) Merge(o Config) Config {
	if o.Grid != "" {
		c.Grid = o.Grid
	}
	if o.Seed != "" {
		c.Seed = o.Seed
	}
	if o.Experimental {
		c.Experimental = true
	}
	if len(o.Tokens) > 0 {
		c.Tokens = o.Tokens
	}
	if o.Prefix != "" {
		c.Prefix = o.Prefix
	}
	if len(o.Include) > 0 {
		c.Include = o.Include
	}
	if len(o.Exclude) > 0 {
		c.Exclude = o.Exclude
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.OutDir != "" {
		c.OutDir = o.OutDir
	}
	return c
}
