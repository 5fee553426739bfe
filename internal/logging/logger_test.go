package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelWarn, Output: &buf})

	l.Debugf("debug message")
	l.Infof("info message")
	l.Warnf("warn message")
	l.Errorf("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("low-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("high-level messages missing: %q", out)
	}
}

func TestLoggerLevelTags(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	l.Debugf("x")
	l.Errorf("y")

	out := buf.String()
	if !strings.Contains(out, "[DEBUG]") || !strings.Contains(out, "[ERROR]") {
		t.Errorf("level tags missing: %q", out)
	}
}

func TestLoggerEnabled(t *testing.T) {
	l := NewLogger(&Config{Level: LevelInfo})
	if l.Enabled(LevelDebug) {
		t.Error("debug enabled at info level")
	}
	if !l.Enabled(LevelError) {
		t.Error("error disabled at info level")
	}
}

func TestDefaultLogger(t *testing.T) {
	if Default() == nil {
		t.Fatal("no default logger")
	}
	if Default() != Default() {
		t.Error("default logger not stable")
	}

	old := Default()
	defer SetDefault(old)

	var buf bytes.Buffer
	SetDefault(NewLogger(&Config{Level: LevelDebug, Output: &buf}))
	Debugf("through the default")
	if !strings.Contains(buf.String(), "through the default") {
		t.Errorf("default logger did not receive the message: %q", buf.String())
	}
}

func TestPrintfLogsAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelInfo, Output: &buf})
	l.Printf("compat %d", 42)
	if !strings.Contains(buf.String(), "compat 42") {
		t.Errorf("printf output missing: %q", buf.String())
	}
}
