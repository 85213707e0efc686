package logger

import (
	"bytes"
	"os"
	"testing"
)

func reset() {
	SetLevel(LevelInfo)
	SetOutput(os.Stderr)
}

func TestLevels(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarn)

	Debug("d")
	Info("i")
	Warn("w %d", 1)
	Error("e")

	if got := buf.String(); got != "[WARN] w 1\n[ERROR] e\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	SetVerbose(true)
	if GetLevel() != LevelDebug {
		t.Errorf("expected debug level, got %s", GetLevel())
	}
	Debug("rebuilding index for %s", "query")
	if buf.String() != "[DEBUG] rebuilding index for query\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}

	SetVerbose(false)
	buf.Reset()
	Debug("hidden")
	if buf.Len() > 0 {
		t.Error("expected no debug output after SetVerbose(false)")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
