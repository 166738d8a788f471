package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestFileRecord_DecodeNumericAndStringIDs(t *testing.T) {
	raw := `[
		{"id": 42, "file_name": "a.png", "file_url": "https://s3/a.png", "folder_id": 7, "size": 10, "created_at": "2024-05-01T10:00:00+00:00"},
		{"id": "9b1d", "file_name": "b.txt", "file_url": "https://s3/b.txt", "folder_id": null, "size": 5, "created_at": "2024-05-01T10:00:00.123456"}
	]`

	var files []FileRecord
	if err := json.Unmarshal([]byte(raw), &files); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if files[0].ID != "42" {
		t.Errorf("expected id 42, got %q", files[0].ID)
	}
	if !files[0].InFolder() || *files[0].FolderID != "7" {
		t.Errorf("expected first file in folder 7, got %v", files[0].FolderID)
	}
	if files[1].ID != "9b1d" {
		t.Errorf("expected id 9b1d, got %q", files[1].ID)
	}
	if files[1].InFolder() {
		t.Error("expected second file to be top-level")
	}
	if files[1].CreatedAt.Nanosecond() != 123456000 {
		t.Errorf("expected fractional seconds to survive, got %d", files[1].CreatedAt.Nanosecond())
	}
}

func TestID_MarshalKeepsNumbersNumeric(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{"42", `42`},
		{"-3", `-3`},
		{"9b1d", `"9b1d"`},
		{"", `""`},
		{"007", `"007"`},
		{"+5", `"+5"`},
		{"0042", `"0042"`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.id)
		if err != nil {
			t.Fatalf("marshal %q: %v", tt.id, err)
		}
		if string(data) != tt.want {
			t.Errorf("Marshal(%q) = %s, want %s", tt.id, data, tt.want)
		}
	}
}

func TestShareRequest_LeadingZeroIDRoundTrips(t *testing.T) {
	var rec FileRecord
	if err := json.Unmarshal([]byte(`{"id":"0042","file_name":"a.png"}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	data, err := json.Marshal(ShareRequest{FileID: rec.ID, SharedWithEmail: "bo@example.net", Role: RoleViewer})
	if err != nil {
		t.Fatalf("marshal share request: %v", err)
	}
	if !strings.Contains(string(data), `"file_id":"0042"`) {
		t.Errorf("file id not sent as a string: %s", data)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-01T10:00:00Z", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01T12:00:00+02:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01T10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01 10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got.Time, tt.want)
		}
	}

	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestItemKind_PathSegment(t *testing.T) {
	if KindFile.PathSegment() != "files" {
		t.Errorf("file kind should route to 'files', got %q", KindFile.PathSegment())
	}
	if KindFolder.PathSegment() != "folder" {
		t.Errorf("folder kind should route to 'folder', got %q", KindFolder.PathSegment())
	}

	for _, s := range []string{"file", "files", "folder", "folders"} {
		if _, ok := ParseItemKind(s); !ok {
			t.Errorf("ParseItemKind(%q) should succeed", s)
		}
	}
	if _, ok := ParseItemKind("bucket"); ok {
		t.Error("ParseItemKind(bucket) should fail")
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{"viewer", "editor", "owner"} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	for _, r := range []Role{"admin", "", "Viewer", " viewer"} {
		if r.Valid() {
			t.Errorf("%q should be invalid", r)
		}
	}
}

func TestUsageBreakdown_RemainingNeverNegative(t *testing.T) {
	u := UsageBreakdown{Images: 10, Zip: 10, Others: 10, Quota: 20}
	if u.Remaining() != 0 {
		t.Errorf("expected 0 remaining when over quota, got %d", u.Remaining())
	}

	u = UsageBreakdown{Images: 5, Quota: 20}
	if u.Remaining() != 15 {
		t.Errorf("expected 15 remaining, got %d", u.Remaining())
	}
}

func TestFormatGiB(t *testing.T) {
	if got := FormatGiB(2_000_000_000); got != "1.86 GB" {
		t.Errorf("FormatGiB(2e9) = %q, want 1.86 GB", got)
	}
	if got := FormatGiB(0); got != "0.00 GB" {
		t.Errorf("FormatGiB(0) = %q, want 0.00 GB", got)
	}
}

func TestSession_NilSafeAccessors(t *testing.T) {
	var s *Session
	if s.BearerToken() != "" || s.UserID() != "" {
		t.Error("nil session should yield empty token and user id")
	}

	s = &Session{AccessToken: "tok", User: &User{ID: "u1"}}
	if s.BearerToken() != "tok" || s.UserID() != "u1" {
		t.Errorf("unexpected accessors: %q %q", s.BearerToken(), s.UserID())
	}
}
