// Package config loads ledgerize.yaml, the description of a conversion run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ledgerize-dev/ledgerize/internal/accounts"
	"github.com/ledgerize-dev/ledgerize/internal/importer"
)

// FileName is the config file that init writes and run reads by default.
const FileName = "ledgerize.yaml"

// Environment variables that override the config file.
const (
	EnvRules           = "LEDGERIZE_RULES"
	EnvFallbackAccount = "LEDGERIZE_FALLBACK_ACCOUNT"
	EnvRunLog          = "LEDGERIZE_RUN_LOG"
)

// Config represents the top-level ledgerize.yaml configuration.
type Config struct {
	Rules           string `yaml:"rules"`
	FallbackAccount string `yaml:"fallback_account"`
	CategoryPrefix  string `yaml:"category_prefix"`
	SkipMalformed   bool   `yaml:"skip_malformed"`
	RunLog          string `yaml:"run_log,omitempty"`

	Sources []Source `yaml:"sources,omitempty"`

	// Institutions adds export layouts beside the built-in ones.
	Institutions []importer.Layout `yaml:"institutions,omitempty"`

	Git GitConfig `yaml:"git"`

	dir string
}

// GitConfig controls committing converted ledgers when the project
// directory is a git repository.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Source is one export to convert: which institution produced it, the
// account it belongs to and where the ledger text goes.
type Source struct {
	Name        string `yaml:"name"`
	Institution string `yaml:"institution"`
	Account     string `yaml:"account"`
	Input       string `yaml:"input"`
	Output      string `yaml:"output"`
	Append      bool   `yaml:"append,omitempty"`
}

// Load reads a ledgerize.yaml file from disk. Relative paths in it resolve
// against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = filepath.Dir(path)
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Rules:           "rules.csv",
		FallbackAccount: accounts.DefaultFallback,
		CategoryPrefix:  accounts.DefaultCategoryPrefix,
		RunLog:          filepath.Join("logs", "runs.csv"),
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "ledgerize",
			AuthorEmail: "ledgerize@localhost",
		},
	}
}

// ApplyEnv overrides settings from the environment and from the dotenv
// file at envPath. Process variables win over the file. A missing file is
// not an error.
func (c *Config) ApplyEnv(envPath string) error {
	vals, err := godotenv.Read(envPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envPath, err)
		}
		vals = map[string]string{}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vals[key]
		return v, ok
	}

	if v, ok := lookup(EnvRules); ok && v != "" {
		c.Rules = v
	}
	if v, ok := lookup(EnvFallbackAccount); ok && v != "" {
		c.FallbackAccount = v
	}
	if v, ok := lookup(EnvRunLog); ok {
		c.RunLog = v
	}
	return nil
}

// Dir returns the directory relative paths resolve against.
func (c *Config) Dir() string {
	if c.dir == "" {
		return "."
	}
	return c.dir
}

// Resolve returns p relative to the config file's directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// Registry builds the adapter registry: the built-in institutions plus the
// configured layouts.
func (c *Config) Registry() (*importer.Registry, error) {
	reg := importer.DefaultRegistry(importer.Options{
		FallbackAccount: c.FallbackAccount,
		CategoryPrefix:  c.CategoryPrefix,
	})
	for i := range c.Institutions {
		l := c.Institutions[i]
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if reg.Get(l.Name()) != nil {
			return nil, fmt.Errorf("institution %q is already defined", l.Name())
		}
		if l.FallbackAccount == "" {
			l.FallbackAccount = c.fallback()
		}
		if l.Category != "" && l.CategoryPrefix == "" {
			l.CategoryPrefix = c.CategoryPrefix
		}
		reg.Register(&l)
	}
	return reg, nil
}

func (c *Config) fallback() string {
	if c.FallbackAccount == "" {
		return accounts.DefaultFallback
	}
	return c.FallbackAccount
}

// Validate checks the configuration against the institutions in reg.
func (c *Config) Validate(reg *importer.Registry) error {
	if c.Rules == "" {
		return errors.New("rules: path is required")
	}
	if c.FallbackAccount != "" {
		if err := accounts.Validate(c.FallbackAccount); err != nil {
			return fmt.Errorf("fallback_account: %w", err)
		}
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i+1)
		}
		if seen[s.Name] {
			return fmt.Errorf("source %s: duplicate name", s.Name)
		}
		seen[s.Name] = true

		if reg.Get(s.Institution) == nil {
			return fmt.Errorf("source %s: unknown institution %q", s.Name, s.Institution)
		}
		if err := accounts.Validate(s.Account); err != nil {
			return fmt.Errorf("source %s: account: %w", s.Name, err)
		}
		if s.Input == "" || s.Output == "" {
			return fmt.Errorf("source %s: input and output are required", s.Name)
		}
	}
	return nil
}

// Source returns the source with the given name.
func (c *Config) Source(name string) (Source, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}
