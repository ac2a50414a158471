package config

import (
	"path/filepath"

	"git.home.luguber.info/inful/docgraph/internal/graph"
	"git.home.luguber.info/inful/docgraph/internal/publish"
)

// Default values not owned by other packages.
const (
	DefaultOutputFile     = "static/content-graph.json"
	DefaultHistoryPath    = ".docgraph/history.db"
	DefaultHistoryMaxRuns = 100
	DefaultServerAddress  = ":8090"
	DefaultMetricsPath    = "/metrics"
	DefaultPublishTimeout = "5s"

	DefaultPublishMaxRetries = 2
)

// DefaultExcludePatterns keep underscore-prefixed partials out of the graph.
var DefaultExcludePatterns = []string{"**/_*", "**/_*/**"}

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier runs domain appliers in order.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the applier chain used by Load.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{appliers: []DefaultApplier{
		&SiteDefaultApplier{},
		&OutputDefaultApplier{},
		&HistoryDefaultApplier{},
		&PublishDefaultApplier{},
		&ServerDefaultApplier{},
		&LoggingDefaultApplier{},
		&MonitoringDefaultApplier{},
	}}
}

func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, a := range c.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

func applyDefaults(cfg *Config) error {
	return NewDefaultApplier().ApplyDefaults(cfg)
}

type SiteDefaultApplier struct{}

func (SiteDefaultApplier) Domain() string { return "site" }

func (SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	s := &cfg.Site
	if s.Dir == "" {
		s.Dir = "."
	}
	if s.DocsRoot == "" {
		s.DocsRoot = graph.DefaultDocsRoot
	}
	if s.BlogRoot == "" {
		s.BlogRoot = graph.DefaultBlogRoot
	}
	if s.PagesRoot == "" {
		s.PagesRoot = graph.DefaultPagesRoot
	}
	if s.IncludeDocs == nil {
		s.IncludeDocs = boolPtr(true)
	}
	if s.IncludeBlog == nil {
		s.IncludeBlog = boolPtr(true)
	}
	if s.IncludePages == nil {
		s.IncludePages = boolPtr(true)
	}
	// An explicit empty list disables the default excludes.
	if s.ExcludePatterns == nil {
		s.ExcludePatterns = append([]string(nil), DefaultExcludePatterns...)
	}
	if s.MaxDepth == 0 {
		s.MaxDepth = graph.DefaultMaxDepth
	}
	return nil
}

type OutputDefaultApplier struct{}

func (OutputDefaultApplier) Domain() string { return "output" }

func (OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Output.Paths) == 0 {
		cfg.Output.Paths = []string{filepath.Join(cfg.Site.Dir, filepath.FromSlash(DefaultOutputFile))}
	}
	return nil
}

type HistoryDefaultApplier struct{}

func (HistoryDefaultApplier) Domain() string { return "history" }

func (HistoryDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(cfg.Site.Dir, filepath.FromSlash(DefaultHistoryPath))
	}
	if cfg.History.MaxRuns <= 0 {
		cfg.History.MaxRuns = DefaultHistoryMaxRuns
	}
	return nil
}

type PublishDefaultApplier struct{}

func (PublishDefaultApplier) Domain() string { return "publish" }

func (PublishDefaultApplier) ApplyDefaults(cfg *Config) error {
	p := &cfg.Publish
	if p.Subject == "" {
		p.Subject = publish.DefaultSubject
	}
	if p.Bucket == "" {
		p.Bucket = publish.DefaultBucket
	}
	if p.Key == "" {
		p.Key = publish.DefaultKey
	}
	if p.Timeout == "" {
		p.Timeout = DefaultPublishTimeout
	}
	if p.MaxRetries == nil {
		p.MaxRetries = intPtr(DefaultPublishMaxRetries)
	}
	if p.RetryBackoff == "" {
		p.RetryBackoff = RetryBackoffLinear
	}
	return nil
}

type ServerDefaultApplier struct{}

func (ServerDefaultApplier) Domain() string { return "server" }

func (ServerDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Server.Address == "" {
		cfg.Server.Address = DefaultServerAddress
	}
	return nil
}

type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	return nil
}

type MonitoringDefaultApplier struct{}

func (MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (MonitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Monitoring.Metrics.Path == "" {
		cfg.Monitoring.Metrics.Path = DefaultMetricsPath
	}
	return nil
}

// Default returns a configuration for the site in siteDir with every default
// applied. Metrics are enabled; history and publishing are not.
func Default(siteDir string) *Config {
	cfg := &Config{Version: CurrentVersion}
	cfg.Site.Dir = siteDir
	cfg.Monitoring.Metrics.Enabled = true
	_ = applyDefaults(cfg)
	return cfg
}
