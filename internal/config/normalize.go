package config

import (
	"fmt"
	"strings"
)

// NormalizationResult captures adjustments made by NormalizeConfig.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated and bounded fields in place. It
// runs before defaults so canonical values drive them.
func NormalizeConfig(c *Config) *NormalizationResult {
	res := &NormalizationResult{}
	normalizeLogging(&c.Logging, res)
	normalizeSite(&c.Site, res)
	if raw := string(c.Publish.RetryBackoff); raw != "" {
		b := NormalizeRetryBackoff(raw)
		switch {
		case !retryBackoffs.Valid(raw):
			res.Warnings = append(res.Warnings, warnUnknown("publish.retry_backoff", raw, string(b)))
		case b != c.Publish.RetryBackoff:
			res.Warnings = append(res.Warnings, warnChanged("publish.retry_backoff", c.Publish.RetryBackoff, b))
		}
		c.Publish.RetryBackoff = b
	}
	return res
}

func normalizeLogging(l *LoggingConfig, res *NormalizationResult) {
	if raw := string(l.Level); raw != "" {
		lvl := NormalizeLogLevel(raw)
		switch {
		case !logLevels.Valid(raw):
			res.Warnings = append(res.Warnings, warnUnknown("logging.level", raw, string(lvl)))
		case lvl != l.Level:
			res.Warnings = append(res.Warnings, warnChanged("logging.level", l.Level, lvl))
		}
		l.Level = lvl
	}
	if raw := string(l.Format); raw != "" {
		f := NormalizeLogFormat(raw)
		switch {
		case !logFormats.Valid(raw):
			res.Warnings = append(res.Warnings, warnUnknown("logging.format", raw, string(f)))
		case f != l.Format:
			res.Warnings = append(res.Warnings, warnChanged("logging.format", l.Format, f))
		}
		l.Format = f
	}
}

func normalizeSite(s *SiteConfig, res *NormalizationResult) {
	if s.MaxDepth < 0 {
		res.Warnings = append(res.Warnings, warnChanged("site.max_depth", s.MaxDepth, 0))
		s.MaxDepth = 0
	}
	if s.Concurrency < 0 {
		s.Concurrency = 0
	}
	for i, ext := range s.Extensions {
		e := strings.ToLower(strings.TrimSpace(ext))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if e != ext {
			res.Warnings = append(res.Warnings, warnChanged("site.extensions", ext, e))
			s.Extensions[i] = e
		}
	}
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
