package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docgraph/internal/discovery"
)

// ValidateConfig checks a defaulted configuration.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateSite(); err != nil {
		return err
	}
	if err := cv.validateOutput(); err != nil {
		return err
	}
	if err := cv.validatePublish(); err != nil {
		return err
	}
	if err := cv.validateServer(); err != nil {
		return err
	}
	return cv.validateMonitoring()
}

func (cv *configurationValidator) validateSite() error {
	s := cv.config.Site
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("site.dir must not be empty")
	}
	if _, err := discovery.CompileAll(s.IncludePatterns); err != nil {
		return fmt.Errorf("site.include_patterns: %w", err)
	}
	if _, err := discovery.CompileAll(s.ExcludePatterns); err != nil {
		return fmt.Errorf("site.exclude_patterns: %w", err)
	}
	for _, ext := range s.Extensions {
		if ext == "" || ext == "." {
			return errors.New("site.extensions must not contain empty entries")
		}
	}
	return nil
}

func (cv *configurationValidator) validateOutput() error {
	seen := make(map[string]struct{}, len(cv.config.Output.Paths))
	for _, p := range cv.config.Output.Paths {
		if strings.TrimSpace(p) == "" {
			return errors.New("output.paths must not contain empty entries")
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("output.paths lists %s twice", p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

func (cv *configurationValidator) validatePublish() error {
	p := cv.config.Publish
	if _, err := time.ParseDuration(p.Timeout); err != nil {
		return fmt.Errorf("publish.timeout: %w", err)
	}
	if p.MaxRetries != nil && *p.MaxRetries < 0 {
		return fmt.Errorf("publish.max_retries must not be negative, got %d", *p.MaxRetries)
	}
	if !p.Enabled {
		return nil
	}
	if strings.TrimSpace(p.URL) == "" {
		return errors.New("publish.url is required when publishing is enabled")
	}
	if strings.ContainsAny(p.Subject, " \t*>") {
		return fmt.Errorf("publish.subject %q must be a literal subject", p.Subject)
	}
	return nil
}

func (cv *configurationValidator) validateServer() error {
	s := cv.config.Server
	if s.Refresh != "" {
		d, err := time.ParseDuration(s.Refresh)
		if err != nil {
			return fmt.Errorf("server.refresh: %w", err)
		}
		if d <= 0 {
			return errors.New("server.refresh must be positive")
		}
	}
	if s.RefreshCron != "" {
		if err := validateCron(s.RefreshCron); err != nil {
			return fmt.Errorf("server.refresh_cron: %w", err)
		}
	}
	return nil
}

func (cv *configurationValidator) validateMonitoring() error {
	if !strings.HasPrefix(cv.config.Monitoring.Metrics.Path, "/") {
		return errors.New("monitoring.metrics.path must start with /")
	}
	return nil
}

// validateCron parses expr with a throwaway scheduler.
func validateCron(expr string) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	defer func() { _ = s.Shutdown() }()
	_, err = s.NewJob(gocron.CronJob(expr, false), gocron.NewTask(func() {}))
	return err
}
