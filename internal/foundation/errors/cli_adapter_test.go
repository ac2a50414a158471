package errors

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "not found", err: NewError(CategoryNotFound, "missing").Build(), expected: 3},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "publish", err: PublishError("nats down").Build(), expected: 8},
		{name: "filesystem", err: FileSystemError("unreadable").Build(), expected: 11},
		{name: "eventstore", err: EventStoreError("db locked").Build(), expected: 11},
		{name: "internal", err: InternalError("boom").Build(), expected: 10},
		{name: "unclassified", err: errors.New("unknown"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	err := WrapError(errors.New("yaml: line 3"), CategoryConfig, "failed to parse configuration").
		UserAction().
		Build()

	got := quiet.FormatError(err)
	if !strings.Contains(got, "failed to parse configuration") || strings.Contains(got, "yaml: line 3") {
		t.Errorf("unexpected quiet format: %q", got)
	}
	if !strings.Contains(got, "check your configuration") {
		t.Errorf("expected user action hint, got %q", got)
	}

	got = verbose.FormatError(err)
	if !strings.Contains(got, "yaml: line 3") {
		t.Errorf("expected verbose format to include cause, got %q", got)
	}

	if quiet.FormatError(nil) != "" {
		t.Error("expected empty string for nil error")
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("bad").Build())
	if code != 7 {
		t.Errorf("expected exit code 7, got %d", code)
	}

	code = -1
	adapter.HandleError(nil)
	if code != -1 {
		t.Error("expected nil error to not exit")
	}
}
