package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn)
	l.SetOutput(&buf)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("shown %d", 3)
	l.Error("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains filtered records: %q", out)
	}
	if !strings.Contains(out, "shown 3") || !strings.Contains(out, "shown 4") {
		t.Errorf("output missing records: %q", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("expected slog level attribute, got %q", out)
	}
}

func TestSetLevelAffectsChildren(t *testing.T) {
	var buf bytes.Buffer
	root := New(LevelError)
	root.SetOutput(&buf)
	child := root.With("sim")

	child.Info("before")
	root.SetLevel(LevelDebug)
	child.Info("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Errorf("child logged below level: %q", out)
	}
	if !strings.Contains(out, "after") || !strings.Contains(out, "component=sim") {
		t.Errorf("child record missing or untagged: %q", out)
	}
}

func TestSetOutputSharedWithChildren(t *testing.T) {
	root := New(LevelInfo)
	child := root.With("telemetry")

	var buf bytes.Buffer
	root.SetOutput(&buf)
	child.Info("hello")

	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("child did not follow parent output: %q", buf.String())
	}
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo)
	l.SetOutput(&buf)

	l.StdLogger(LevelError).Print("http: accept failed")
	if !strings.Contains(buf.String(), "accept failed") || !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("StdLogger output = %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing %s", "here")
	l.With("x").Error("nor here")
}
