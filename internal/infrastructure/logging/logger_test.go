package logging

import (
	"log/slog"
	"testing"

	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNew_DoesNotPanic(t *testing.T) {
	for _, format := range []string{"json", "text", ""} {
		log := New(config.Logging{Level: "debug", Format: format, Output: "stdout"}, "test")
		if log == nil {
			t.Fatalf("New returned nil for format %q", format)
		}
		log.Debug("probe", "format", format)
	}
}

func TestWith_ReturnsNewLogger(t *testing.T) {
	base := Discard()
	child := base.With("component", "test")
	if child == base {
		t.Error("With should return a new logger")
	}
	child.Info("probe")
}
