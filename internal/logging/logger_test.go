package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogger_SetOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Infof("uploaded %d files", 3)

	if !strings.Contains(buf.String(), "uploaded 3 files") {
		t.Errorf("expected message in console output, got %q", buf.String())
	}

	var other bytes.Buffer
	l.SetOutput(&other)
	l.Warnf("moved")
	if strings.Contains(buf.String(), "moved") {
		t.Error("message should not reach the previous writer")
	}
	if !strings.Contains(other.String(), "moved") {
		t.Errorf("expected message in new writer, got %q", other.String())
	}
	if l.Output() != &other {
		t.Error("Output should return the current writer")
	}
}

func TestLogger_EnableFile(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	path := filepath.Join(t.TempDir(), "logs", "filedeck.log")
	if err := l.EnableFile(path); err != nil {
		t.Fatalf("EnableFile failed: %v", err)
	}
	l.Info().Str("file", "a.png").Msg("upload complete")
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"file":"a.png"`) {
		t.Errorf("expected JSON fields in log file, got %q", data)
	}
	if !strings.Contains(buf.String(), "upload complete") {
		t.Error("console output should still receive messages")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"info":    zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRetryLogger_IncludesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	rl := RetryLogger{L: NewLogger(&buf)}
	rl.Warn("retrying request", "url", "http://x/api/edit/files", "retry", 2, 17)

	out := buf.String()
	if !strings.Contains(out, "retrying request") || !strings.Contains(out, "http://x/api/edit/files") {
		t.Errorf("unexpected retry log output: %q", out)
	}
}
