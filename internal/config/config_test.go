package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/retry"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "docgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "version: \"1\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, dir, cfg.Site.Dir)
	require.Equal(t, "docs", cfg.Site.DocsRoot)
	require.Equal(t, "src/pages", cfg.Site.PagesRoot)
	require.Equal(t, 10, cfg.Site.MaxDepth)
	require.Equal(t, DefaultExcludePatterns, cfg.Site.ExcludePatterns)
	require.Equal(t, []string{filepath.Join(dir, "static", "content-graph.json")}, cfg.Output.Paths)
	require.Equal(t, filepath.Join(dir, ".docgraph", "history.db"), cfg.History.Path)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Logging.Format)
	require.Equal(t, "/metrics", cfg.Monitoring.Metrics.Path)

	opts := cfg.GraphOptions()
	require.True(t, opts.IncludeDocs)
	require.True(t, opts.IncludeBlog)
	require.True(t, opts.IncludePages)
}

func TestLoad_SiteSection(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
site:
  dir: website
  include_blog: false
  include_patterns: ["guides/**/*.md"]
  exclude_patterns: []
  extensions: [MD, .mdx]
  html_links: true
  exclude_drafts: true
  max_depth: 4
output:
  paths: [out/graph.json, /tmp/abs-graph.json]
  pretty: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "website"), cfg.Site.Dir)
	require.Equal(t, []string{filepath.Join(dir, "out", "graph.json"), "/tmp/abs-graph.json"}, cfg.Output.Paths)
	require.Empty(t, cfg.Site.ExcludePatterns)
	require.Equal(t, []string{".md", ".mdx"}, cfg.Site.Extensions)

	opts := cfg.GraphOptions()
	require.False(t, opts.IncludeBlog)
	require.True(t, opts.IncludeDocs)
	require.True(t, opts.HTMLLinks)
	require.True(t, opts.ExcludeDrafts)
	require.Equal(t, 4, opts.MaxDepth)
	require.Equal(t, []string{"guides/**/*.md"}, opts.IncludePatterns)
}

func TestLoad_ExpandsEnvFromDotenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DOCGRAPH_TEST_NATS=nats://from-dotenv:4222\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DOCGRAPH_TEST_NATS") })

	path := writeConfig(t, dir, `
publish:
  enabled: true
  url: ${DOCGRAPH_TEST_NATS}
  timeout: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "nats://from-dotenv:4222", cfg.Publish.URL)

	popts := cfg.PublishOptions()
	require.Equal(t, 2*time.Second, popts.Timeout)
	require.Equal(t, "docgraph", popts.Bucket)
}

func TestLoad_ProcessEnvWinsOverDotenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DOCGRAPH_TEST_ADDR=:1111\n"), 0o600))
	t.Setenv("DOCGRAPH_TEST_ADDR", ":2222")

	path := writeConfig(t, dir, "server:\n  address: ${DOCGRAPH_TEST_ADDR}\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":2222", cfg.Server.Address)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, ".", cfg.Site.Dir)
	require.False(t, cfg.History.Enabled)
	require.False(t, cfg.Publish.Enabled)
}

func TestLoadOrDefault_InvalidFileIsAnError(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "version: \"9\"\n")
	_, err := LoadOrDefault(path)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unsupported version", "version: \"2\"\n"},
		{"bad yaml", "site: [\n"},
		{"bad exclude glob", "site:\n  exclude_patterns: [\"docs/{a,b\"]\n"},
		{"publish without url", "publish:\n  enabled: true\n"},
		{"bad publish timeout", "publish:\n  timeout: soon\n"},
		{"wildcard subject", "publish:\n  enabled: true\n  url: nats://x\n  subject: docs.>\n"},
		{"negative publish retries", "publish:\n  max_retries: -1\n"},
		{"bad refresh", "server:\n  refresh: often\n"},
		{"negative refresh", "server:\n  refresh: -1m\n"},
		{"bad cron", "server:\n  refresh_cron: every day\n"},
		{"duplicate outputs", "output:\n  paths: [a.json, a.json]\n"},
		{"relative metrics path", "monitoring:\n  metrics:\n    path: metrics\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestNormalizeConfig(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "WARNING", Format: "loud"},
		Site:    SiteConfig{MaxDepth: -3, Extensions: []string{" Md "}},
	}
	res := NormalizeConfig(cfg)

	require.Equal(t, LogLevelWarn, cfg.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Logging.Format)
	require.Equal(t, 0, cfg.Site.MaxDepth)
	require.Equal(t, []string{".md"}, cfg.Site.Extensions)
	require.Len(t, res.Warnings, 4)
}

func TestPublishRetryOptions(t *testing.T) {
	cfg, err := Parse([]byte("publish:\n  retry_backoff: EXP\n"))
	require.NoError(t, err)
	require.Equal(t, RetryBackoffExponential, cfg.Publish.RetryBackoff)

	p := cfg.PublishOptions().Retry
	require.Equal(t, retry.ModeExponential, p.Mode)
	require.Equal(t, DefaultPublishMaxRetries, p.MaxRetries)

	cfg, err = Parse([]byte("publish:\n  max_retries: 0\n"))
	require.NoError(t, err)
	require.Zero(t, cfg.PublishOptions().Retry.MaxRetries)
}

func TestLogLevel_Slog(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.Slog().String())
	require.Equal(t, "ERROR", LogLevelError.Slog().String())
	require.Equal(t, "INFO", LogLevel("").Slog().String())
}

func TestRefreshInterval(t *testing.T) {
	cfg := Default(".")
	require.Zero(t, cfg.RefreshInterval())
	cfg.Server.Refresh = "90s"
	require.Equal(t, 90*time.Second, cfg.RefreshInterval())
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "docgraph.yaml")

	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.History.Enabled)
	require.False(t, cfg.Publish.Enabled)
	require.Equal(t, 5*time.Minute, cfg.RefreshInterval())
	require.Equal(t, filepath.Join(dir, "conf", "static", "content-graph.json"), cfg.Output.Paths[0])
}
