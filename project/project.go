// Package project finds and loads the pqls.yaml file that configures a
// workspace.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/dhamidi/pqls/pq"
	"github.com/dhamidi/pqls/pq/codebase"
	"github.com/dhamidi/pqls/pq/parser"
)

const FileName = "pqls.yaml"

// Project is a workspace root and its configuration. Path is empty when no
// configuration file was found and defaults are in effect.
type Project struct {
	RootDir string
	Path    string
	Config  Config
}

type Config struct {
	Locale   string `yaml:"locale,omitempty"`
	MaxDepth int    `yaml:"maxDepth,omitempty"`
	// Include lists glob patterns, matched against paths relative to the
	// project root. A pattern without a slash matches the file name at any
	// depth.
	Include      []string  `yaml:"include,omitempty"`
	PollInterval string    `yaml:"pollInterval,omitempty"`
	Log          LogConfig `yaml:"log,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

var levels = map[string]int{
	"none":     -4,
	"critical": -3,
	"error":    -2,
	"warning":  -1,
	"notice":   0,
	"info":     1,
	"debug":    2,
}

func Default() Config {
	return Config{
		Locale:       parser.DefaultLocale,
		MaxDepth:     parser.DefaultMaxDepth,
		Include:      []string{"*.pq", "*.pqm", "*.m"},
		PollInterval: "1s",
		Log:          LogConfig{Level: "notice"},
	}
}

// Load finds the project for the current directory.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom looks for pqls.yaml in dir and its parents. Without one, the
// project is rooted at dir with the default configuration.
func LoadFrom(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	path, err := Find(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return &Project{RootDir: abs, Config: Default()}, nil
	}
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// Find returns the closest pqls.yaml at or above dir.
func Find(dir string) (string, error) {
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("find %s: %w", FileName, fs.ErrNotExist)
		}
		dir = parent
	}
}

// LoadFile reads a configuration file. Fields it leaves out keep their
// defaults.
func LoadFile(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Project{RootDir: filepath.Dir(abs), Path: abs, Config: cfg}, nil
}

// Init writes a default configuration into dir. An existing file is left
// alone unless force is set.
func Init(dir string, force bool) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists", path)
	}
	return path, Default().Save(path)
}

func (c Config) Save(path string) error {
	data, err := yaml.MarshalWithOptions(c, yaml.Indent(2))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c Config) Validate() error {
	var errs []error
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("maxDepth must not be negative, got %d", c.MaxDepth))
	}
	if _, err := c.Interval(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Verbosity(); err != nil {
		errs = append(errs, err)
	}
	for _, pattern := range c.Include {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("include %q: %w", pattern, err))
		}
	}
	return errors.Join(errs...)
}

func (c Config) Interval() (time.Duration, error) {
	if c.PollInterval == "" {
		return time.Second, nil
	}
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("pollInterval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("pollInterval must be positive, got %s", d)
	}
	return d, nil
}

// Verbosity maps log.level to a commonlog verbosity.
func (c Config) Verbosity() (int, error) {
	if c.Log.Level == "" {
		return 0, nil
	}
	v, ok := levels[strings.ToLower(c.Log.Level)]
	if !ok {
		return 0, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return v, nil
}

func (c Config) Settings() pq.Settings {
	settings := pq.DefaultSettings()
	if c.Locale != "" {
		settings.Parser.Locale = c.Locale
	}
	if c.MaxDepth > 0 {
		settings.Parser.MaxDepth = c.MaxDepth
	}
	return settings
}

// Match reports whether path is a source file of the project.
func (p *Project) Match(path string) bool {
	if len(p.Config.Include) == 0 {
		return codebase.IsSourceFile(path)
	}
	rel, err := filepath.Rel(p.RootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range p.Config.Include {
		subject := rel
		if !strings.Contains(pattern, "/") {
			subject = filepath.Base(rel)
		}
		if ok, _ := filepath.Match(pattern, subject); ok {
			return true
		}
	}
	return false
}

// Codebase returns a codebase over the project root, configured by the
// project settings and include patterns.
func (p *Project) Codebase() *codebase.Codebase {
	return codebase.New(p.RootDir, p.Options()...)
}

func (p *Project) Options() []codebase.Option {
	return []codebase.Option{
		codebase.WithSettings(p.Config.Settings()),
		codebase.WithMatcher(p.Match),
	}
}
