package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %q, expected %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"unknown", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseColorMode(t *testing.T) {
	if ParseColorMode("always") != ColorAlways || ParseColorMode("never") != ColorNever || ParseColorMode("") != ColorAuto {
		t.Error("ParseColorMode mismatch")
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf, Color: ColorNever})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn %d", 1)
	logger.Error("error %s", "two")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below level were written: %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "warn 1") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR]") || !strings.Contains(out, "error two") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestLoggerFieldsAreSortedAndShared(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: LevelInfo, Output: &buf, Prefix: "test", Color: ColorNever})
	child := base.WithComponent("player").WithField("loop", 3)

	child.Info("dispatched")
	line := buf.String()
	if !strings.Contains(line, "test: dispatched {component=player, loop=3}") {
		t.Errorf("unexpected line: %q", line)
	}

	buf.Reset()
	base.SetLevel(LevelError)
	child.Info("should be filtered")
	if buf.Len() != 0 {
		t.Errorf("child logger ignored parent level change: %q", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	l := OrNop(nil)
	l.Error("nothing")
	if l.Enabled(LevelError) {
		t.Error("nop logger should not be enabled")
	}
}

func TestColorAlways(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf, Color: ColorAlways})
	logger.Info("colored")
	if !strings.Contains(buf.String(), "INFO") {
		t.Errorf("missing level tag: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected ANSI escape in forced colour output: %q", buf.String())
	}
}
