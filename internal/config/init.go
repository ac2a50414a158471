package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const exampleHeader = `# docgraph configuration.
# Values may reference environment variables as ${VAR}; .env and
# .env.local next to this file are loaded first.
`

// Example returns the configuration written by Init.
func Example() *Config {
	return &Config{
		Version: CurrentVersion,
		Site: SiteConfig{
			Dir:             ".",
			DocsRoot:        "docs",
			BlogRoot:        "blog",
			PagesRoot:       "src/pages",
			IncludeDocs:     boolPtr(true),
			IncludeBlog:     boolPtr(true),
			IncludePages:    boolPtr(true),
			ExcludePatterns: append([]string(nil), DefaultExcludePatterns...),
			MaxDepth:        10,
		},
		Output: OutputConfig{
			Paths: []string{DefaultOutputFile},
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    DefaultHistoryPath,
			MaxRuns: DefaultHistoryMaxRuns,
		},
		Publish: PublishConfig{
			Enabled: false,
			URL:     "${NATS_URL}",
			Subject: "docgraph.graph.published",
			Bucket:  "docgraph",
			Key:     "graph",
			Timeout: DefaultPublishTimeout,

			MaxRetries:   intPtr(DefaultPublishMaxRetries),
			RetryBackoff: RetryBackoffLinear,
		},
		Server: ServerConfig{
			Address: DefaultServerAddress,
			Refresh: "5m",
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
		Monitoring: MonitoringConfig{
			Metrics: MonitoringMetrics{Enabled: true, Path: DefaultMetricsPath},
		},
	}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	var buf bytes.Buffer
	buf.WriteString(exampleHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Example()); err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
