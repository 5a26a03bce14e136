// Package config provides layered configuration for rxmcp.
//
// Precedence, lowest to highest:
//  1. Hardcoded defaults (NewConfig)
//  2. User config (~/.config/rxmcp/config.yaml)
//  3. Project config (.rxmcp.yaml in the working directory)
//  4. Environment variables (RXMCP_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	rxerrors "github.com/rxdocs/rxmcp/internal/errors"
)

// DuplicatePolicy controls how rebuild handles duplicate page slugs and
// component names.
type DuplicatePolicy string

const (
	// DuplicateLastWins resolves collisions silently, keeping the last
	// record seen and logging the collision count.
	DuplicateLastWins DuplicatePolicy = "last-wins"

	// DuplicateStrict fails the rebuild on the first collision.
	DuplicateStrict DuplicatePolicy = "strict"
)

// Config represents the complete rxmcp configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Paths   PathsConfig   `yaml:"paths" json:"paths"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Index   IndexConfig   `yaml:"index" json:"index"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Watcher WatcherConfig `yaml:"watcher" json:"watcher"`
}

// PathsConfig configures filesystem locations.
type PathsConfig struct {
	// DocsRoot is the documentation source tree supplied by the fetch
	// collaborator (a checkout of the docs repository).
	DocsRoot string `yaml:"docs_root" json:"docs_root"`

	// DataDir holds the persistent store (SQLite database, lock file).
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// DocsBaseURL is the base for canonical page URLs attached to query
	// results: <base>/<slug>.
	DocsBaseURL string `yaml:"docs_base_url" json:"docs_base_url"`
}

// SearchConfig configures the ranking and snippet behavior of the store:
// per-term relevance from the text index, a multiplicative boost for title
// matches, ties broken by slug ascending.
type SearchConfig struct {
	// TitleBoost multiplies the weight of title-field matches over body
	// matches. Must be >= 1.
	TitleBoost float64 `yaml:"title_boost" json:"title_boost"`

	// PrefixBoost weights prefix (partially typed term) matches relative
	// to exact term matches. Must be in (0, 1].
	PrefixBoost float64 `yaml:"prefix_boost" json:"prefix_boost"`

	// SnippetLength is the target snippet window in characters.
	SnippetLength int `yaml:"snippet_length" json:"snippet_length"`

	// MaxResults caps the limit a caller can request.
	MaxResults int `yaml:"max_results" json:"max_results"`

	// CacheSize is the per-generation LRU search cache size (entries).
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// IndexConfig configures the indexing pipeline.
type IndexConfig struct {
	// Workers is the parse worker pool size. 0 means NumCPU.
	Workers int `yaml:"workers" json:"workers"`

	// Duplicates selects the duplicate-key policy for rebuilds.
	Duplicates DuplicatePolicy `yaml:"duplicates" json:"duplicates"`

	// MaxFileSize skips source files larger than this many bytes.
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"`
}

// ServerConfig configures the MCP serve mode.
type ServerConfig struct {
	// AutoIndex builds the index at startup when the store is empty.
	AutoIndex bool `yaml:"auto_index" json:"auto_index"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// WatcherConfig configures source-change watching in serve mode.
type WatcherConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled"`
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// NewConfig returns the hardcoded defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			DocsRoot:    "docs",
			DataDir:     defaultDataDir(),
			DocsBaseURL: "https://reflex.dev/docs",
		},
		Search: SearchConfig{
			TitleBoost:    3.0,
			PrefixBoost:   0.5,
			SnippetLength: 160,
			MaxResults:    50,
			CacheSize:     256,
		},
		Index: IndexConfig{
			Workers:     0,
			Duplicates:  DuplicateLastWins,
			MaxFileSize: 2 << 20, // 2 MiB
		},
		Server: ServerConfig{
			AutoIndex: true,
			LogLevel:  "info",
		},
		Watcher: WatcherConfig{
			Enabled:  false,
			Debounce: 2 * time.Second,
		},
	}
}

// Load builds the effective configuration for a project directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, rxerrors.ConfigError("failed to load user config", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// userConfigPath returns ~/.config/rxmcp/config.yaml, honoring
// XDG_CONFIG_HOME.
func userConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rxmcp", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rxmcp", "config.yaml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rxmcp"
	}
	return filepath.Join(home, ".rxmcp")
}

func loadUserConfig() (*Config, error) {
	path := userConfigPath()
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var cfg Config
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadFromFile merges .rxmcp.yaml (or .yml) from dir when present.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".rxmcp.yaml", ".rxmcp.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return c.loadYAML(path)
		}
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return rxerrors.ConfigError(fmt.Sprintf("cannot read %s", path), err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return rxerrors.ConfigError(fmt.Sprintf("invalid YAML in %s", path), err)
	}
	return nil
}

// mergeWith overlays non-zero fields from other onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Paths.DocsRoot != "" {
		c.Paths.DocsRoot = other.Paths.DocsRoot
	}
	if other.Paths.DataDir != "" {
		c.Paths.DataDir = other.Paths.DataDir
	}
	if other.Paths.DocsBaseURL != "" {
		c.Paths.DocsBaseURL = other.Paths.DocsBaseURL
	}
	if other.Search.TitleBoost != 0 {
		c.Search.TitleBoost = other.Search.TitleBoost
	}
	if other.Search.PrefixBoost != 0 {
		c.Search.PrefixBoost = other.Search.PrefixBoost
	}
	if other.Search.SnippetLength != 0 {
		c.Search.SnippetLength = other.Search.SnippetLength
	}
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.CacheSize != 0 {
		c.Search.CacheSize = other.Search.CacheSize
	}
	if other.Index.Workers != 0 {
		c.Index.Workers = other.Index.Workers
	}
	if other.Index.Duplicates != "" {
		c.Index.Duplicates = other.Index.Duplicates
	}
	if other.Index.MaxFileSize != 0 {
		c.Index.MaxFileSize = other.Index.MaxFileSize
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
	if other.Watcher.Debounce != 0 {
		c.Watcher.Debounce = other.Watcher.Debounce
	}
}

// applyEnvOverrides applies RXMCP_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("RXMCP_DOCS_ROOT"); v != "" {
		c.Paths.DocsRoot = v
	}
	if v := os.Getenv("RXMCP_DOCS_BASE_URL"); v != "" {
		c.Paths.DocsBaseURL = v
	}
	if v := os.Getenv("RXMCP_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv("RXMCP_TITLE_BOOST"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.TitleBoost = f
		}
	}
	if v := os.Getenv("RXMCP_DUPLICATES"); v != "" {
		c.Index.Duplicates = DuplicatePolicy(v)
	}
	if v := os.Getenv("RXMCP_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("RXMCP_AUTO_INDEX"); v != "" {
		c.Server.AutoIndex = envFlag(v)
	}
	if v := os.Getenv("RXMCP_WATCH"); v != "" {
		c.Watcher.Enabled = envFlag(v)
	}
}

// envFlag interprets common truthy spellings.
func envFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// Validate checks the final configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Search.TitleBoost < 1 {
		return rxerrors.ConfigError(
			fmt.Sprintf("search.title_boost must be >= 1, got %g", c.Search.TitleBoost), nil)
	}
	if c.Search.PrefixBoost <= 0 || c.Search.PrefixBoost > 1 {
		return rxerrors.ConfigError(
			fmt.Sprintf("search.prefix_boost must be in (0, 1], got %g", c.Search.PrefixBoost), nil)
	}
	if c.Search.SnippetLength < 40 {
		return rxerrors.ConfigError(
			fmt.Sprintf("search.snippet_length must be >= 40, got %d", c.Search.SnippetLength), nil)
	}
	if c.Search.MaxResults < 1 {
		return rxerrors.ConfigError(
			fmt.Sprintf("search.max_results must be >= 1, got %d", c.Search.MaxResults), nil)
	}
	switch c.Index.Duplicates {
	case DuplicateLastWins, DuplicateStrict:
	default:
		return rxerrors.ConfigError(
			fmt.Sprintf("index.duplicates must be %q or %q, got %q",
				DuplicateLastWins, DuplicateStrict, c.Index.Duplicates), nil)
	}
	if c.Watcher.Debounce < 0 {
		return rxerrors.ConfigError("watcher.debounce must not be negative", nil)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return rxerrors.ConfigError("cannot marshal config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return rxerrors.ConfigError("cannot create config directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return rxerrors.ConfigError("cannot write config file", err)
	}
	return nil
}
