package app

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"invalid", LogLevelInfo},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func newTestLogger(buf *bytes.Buffer, level LogLevel) *Logger {
	l := NewLogger(LoggerConfig{Level: level, Output: buf, Prefix: "test"})
	l.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, LogLevelDebug)

	logger.Info("opened %d frames", 3)

	want := "2024-03-01T12:00:00.000 [INFO] test: opened 3 frames\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, LogLevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() != 0 {
		t.Errorf("messages below warn were written: %q", buf.String())
	}

	logger.Warn("warn message")
	logger.Error("error message")
	out := buf.String()
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "[ERROR]") {
		t.Errorf("output = %q, want WARN and ERROR lines", out)
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, LogLevelInfo)

	child := logger.WithComponent("store").WithField("path", "/a.check")
	child.Info("saved")

	if !strings.HasSuffix(buf.String(), "saved {component=store, path=/a.check}\n") {
		t.Errorf("output = %q, want sorted fields", buf.String())
	}

	buf.Reset()
	logger.Info("plain")
	if strings.Contains(buf.String(), "{") {
		t.Errorf("parent logger gained fields: %q", buf.String())
	}
}

func TestNullLogger(t *testing.T) {
	if NullLogger.Enabled(LogLevelError) {
		t.Error("NullLogger.Enabled(error) = true")
	}
	NullLogger.WithField("k", "v").Error("discarded")
}
