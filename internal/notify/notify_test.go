package notify

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/filedeck/filedeck/internal/logging"
)

type sent struct {
	title, message string
}

func newTestNotifier(cfg *Config) (*Notifier, *[]sent) {
	var got []sent
	n := NewNotifier(cfg, logging.NewLogger(io.Discard))
	n.send = func(title, message string) error {
		got = append(got, sent{title, message})
		return nil
	}
	return n, &got
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Enabled {
		t.Error("Expected Enabled to be true by default")
	}
	if !cfg.ShowUploadComplete {
		t.Error("Expected ShowUploadComplete to be true by default")
	}
	if !cfg.ShowUploadFailed {
		t.Error("Expected ShowUploadFailed to be true by default")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
		{"abc", 3, "abc"},
		{"abcd", 3, "..."},
		{"ñandú-ñandú", 8, "ñandú..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestUploadNotifications(t *testing.T) {
	n, got := newTestNotifier(nil)

	n.UploadComplete("holiday", 3*1024*1024*1024)
	n.UploadFailed("report.pdf", "status 500: storage bucket unavailable")

	if len(*got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(*got))
	}
	if (*got)[0].title != "Upload Complete" || !strings.Contains((*got)[0].message, "3.00 GB") {
		t.Errorf("unexpected complete notification: %+v", (*got)[0])
	}
	if (*got)[1].title != "Upload Failed" || !strings.Contains((*got)[1].message, "storage bucket unavailable") {
		t.Errorf("unexpected failed notification: %+v", (*got)[1])
	}
}

func TestNotifierDisabled_NoSend(t *testing.T) {
	n, got := newTestNotifier(&Config{Enabled: false, ShowUploadComplete: true, ShowUploadFailed: true})
	n.UploadComplete("a.png", 10)
	n.UploadFailed("a.png", "boom")
	if len(*got) != 0 {
		t.Errorf("disabled notifier sent %d notifications", len(*got))
	}

	n.SetEnabled(true)
	if !n.IsEnabled() {
		t.Fatal("Expected enabled after SetEnabled(true)")
	}
	n.UploadComplete("a.png", 10)
	if len(*got) != 1 {
		t.Errorf("expected 1 notification after enabling, got %d", len(*got))
	}
}

func TestNotifierKindFilters(t *testing.T) {
	n, got := newTestNotifier(&Config{Enabled: true, ShowUploadFailed: true})
	n.UploadComplete("a.png", 10)
	n.UploadFailed("a.png", "boom")
	if len(*got) != 1 || (*got)[0].title != "Upload Failed" {
		t.Errorf("only failures should be sent, got %+v", *got)
	}
}

func TestSendErrorIsLoggedNotReturned(t *testing.T) {
	n := NewNotifier(nil, logging.NewLogger(io.Discard))
	n.send = func(string, string) error { return errors.New("no notification daemon") }

	// Must not panic
	n.UploadComplete("a.png", 10)
}
