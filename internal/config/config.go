// Package config loads and validates docgraph.yaml.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/graph"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/publish"
	"git.home.luguber.info/inful/docgraph/internal/retry"
)

// CurrentVersion is the only configuration version understood by Load.
const CurrentVersion = "1"

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "docgraph.yaml"

// Config is the complete docgraph configuration.
type Config struct {
	Version    string           `yaml:"version"`
	Site       SiteConfig       `yaml:"site"`
	Output     OutputConfig     `yaml:"output"`
	History    HistoryConfig    `yaml:"history"`
	Publish    PublishConfig    `yaml:"publish"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// SiteConfig selects the content that goes into the graph.
type SiteConfig struct {
	Dir       string `yaml:"dir"`
	DocsRoot  string `yaml:"docs_root"`
	BlogRoot  string `yaml:"blog_root"`
	PagesRoot string `yaml:"pages_root"`

	// Include flags default to true when omitted.
	IncludeDocs  *bool `yaml:"include_docs,omitempty"`
	IncludeBlog  *bool `yaml:"include_blog,omitempty"`
	IncludePages *bool `yaml:"include_pages,omitempty"`

	IncludePatterns []string `yaml:"include_patterns,omitempty"`
	ExcludePatterns []string `yaml:"exclude_patterns,omitempty"`
	Extensions      []string `yaml:"extensions,omitempty"`

	MaxDepth      int  `yaml:"max_depth"`
	Concurrency   int  `yaml:"concurrency,omitempty"`
	HTMLLinks     bool `yaml:"html_links"`
	ExcludeDrafts bool `yaml:"exclude_drafts"`
}

// OutputConfig lists where generated graphs are written.
type OutputConfig struct {
	Paths  []string `yaml:"paths"`
	Pretty bool     `yaml:"pretty"`
}

// HistoryConfig controls the SQLite run history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	// MaxRuns bounds the in-memory projection, not the database.
	MaxRuns int `yaml:"max_runs"`
}

// PublishConfig controls NATS JetStream publication.
type PublishConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
	Bucket  string `yaml:"bucket"`
	Key     string `yaml:"key"`
	Stream  string `yaml:"stream,omitempty"`
	Timeout string `yaml:"timeout"`

	// MaxRetries bounds retries of a failed KV put or event publish.
	MaxRetries   *int         `yaml:"max_retries,omitempty"`
	RetryBackoff RetryBackoff `yaml:"retry_backoff,omitempty"`
}

// ServerConfig controls `docgraph serve`.
type ServerConfig struct {
	Address string `yaml:"address"`
	// Refresh is a Go duration between regenerations; empty disables it.
	Refresh string `yaml:"refresh,omitempty"`
	// RefreshCron is a five-field cron expression; it wins over Refresh.
	RefreshCron string `yaml:"refresh_cron,omitempty"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MonitoringConfig controls the Prometheus endpoint.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
}

type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads, normalizes, defaults and validates the configuration at path.
// Relative paths inside the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	loadEnvFiles(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapError(err, errors.CategoryNotFound, "configuration file not found").
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read config file").
			WithContext("path", path).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid configuration").
			WithContext("path", path).
			Build()
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default(".") when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.HasCategory(err, errors.CategoryNotFound) {
		return nil, err
	}
	slog.Info("No configuration file, using defaults", logfields.Path(path))
	cfg = Default(".")
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML data after expanding ${VAR} references, then applies
// normalization, defaults and validation.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Version != "" && cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported configuration version: %s (expected %s)", cfg.Version, CurrentVersion)
	}
	if err := finish(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func finish(cfg *Config) error {
	res := NormalizeConfig(cfg)
	for _, w := range res.Warnings {
		slog.Warn("Config normalization", slog.String("detail", w))
	}
	if err := applyDefaults(cfg); err != nil {
		return fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "configuration validation failed").Build()
	}
	return nil
}

func (c *Config) resolvePaths(base string) {
	if base == "" || base == "." {
		return
	}
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Site.Dir = abs(c.Site.Dir)
	for i, p := range c.Output.Paths {
		c.Output.Paths[i] = abs(p)
	}
	if c.History.Path != ":memory:" {
		c.History.Path = abs(c.History.Path)
	}
}

// GraphOptions maps the site section onto generator options.
func (c *Config) GraphOptions() graph.Options {
	s := c.Site
	opts := graph.DefaultOptions(s.Dir)
	opts.DocsRoot = s.DocsRoot
	opts.BlogRoot = s.BlogRoot
	opts.PagesRoot = s.PagesRoot
	opts.IncludeDocs = boolOr(s.IncludeDocs, true)
	opts.IncludeBlog = boolOr(s.IncludeBlog, true)
	opts.IncludePages = boolOr(s.IncludePages, true)
	opts.IncludePatterns = s.IncludePatterns
	opts.ExcludePatterns = s.ExcludePatterns
	opts.Extensions = s.Extensions
	opts.MaxDepth = s.MaxDepth
	opts.Concurrency = s.Concurrency
	opts.HTMLLinks = s.HTMLLinks
	opts.ExcludeDrafts = s.ExcludeDrafts
	return opts
}

// PublishOptions maps the publish section onto NATS publisher options.
func (c *Config) PublishOptions() publish.Config {
	p := c.Publish
	timeout, _ := time.ParseDuration(p.Timeout)
	return publish.Config{
		URL:     p.URL,
		Subject: p.Subject,
		Bucket:  p.Bucket,
		Key:     p.Key,
		Stream:  p.Stream,
		Timeout: timeout,
		Retry:   retry.NewPolicy(retry.Mode(p.RetryBackoff), 0, 0, intOr(p.MaxRetries, DefaultPublishMaxRetries)),
	}
}

// RefreshInterval returns the parsed server.refresh, or zero when unset.
func (c *Config) RefreshInterval() time.Duration {
	d, _ := time.ParseDuration(c.Server.Refresh)
	return d
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func boolPtr(v bool) *bool { return &v }

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func intPtr(v int) *int { return &v }
