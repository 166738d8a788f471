package localfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{".gitignore", true},
		{"visible.txt", false},
		{"normal", false},
		{"/path/to/.hidden", true},
		{"/path/to/visible.txt", false},
		{"../.hidden", true},
		{"../visible.txt", false},
		{"..", false}, // Special case: parent dir reference
		{".", false},  // Special case: current dir reference
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := IsHidden(tt.path)
			if result != tt.expected {
				t.Errorf("IsHidden(%q) = %v, want %v", tt.path, result, tt.expected)
			}
		})
	}
}

func TestIsHiddenName(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{".hidden", true},
		{".gitignore", true},
		{"visible.txt", false},
		{"normal", false},
		{"..", false}, // Parent dir reference starts with . but is special
		{".", false},  // Current dir reference
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsHiddenName(tt.name)
			if result != tt.expected {
				t.Errorf("IsHiddenName(%q) = %v, want %v", tt.name, result, tt.expected)
			}
		})
	}
}

func TestWalkFiles(t *testing.T) {
	tmpDir := t.TempDir()

	// tmpDir/
	//   file1.txt
	//   .hidden_file
	//   subdir/
	//     file2.txt
	//   .hidden_dir/
	//     file3.txt
	os.WriteFile(filepath.Join(tmpDir, "file1.txt"), []byte("1"), 0644)
	os.WriteFile(filepath.Join(tmpDir, ".hidden_file"), []byte("h"), 0644)
	os.MkdirAll(filepath.Join(tmpDir, "subdir"), 0755)
	os.WriteFile(filepath.Join(tmpDir, "subdir", "file2.txt"), []byte("22"), 0644)
	os.MkdirAll(filepath.Join(tmpDir, ".hidden_dir"), 0755)
	os.WriteFile(filepath.Join(tmpDir, ".hidden_dir", "file3.txt"), []byte("3"), 0644)

	collect := func(opts WalkOptions) []FileEntry {
		var out []FileEntry
		if err := WalkFiles(tmpDir, opts, func(e FileEntry) error {
			out = append(out, e)
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		return out
	}

	t.Run("exclude hidden", func(t *testing.T) {
		got := collect(WalkOptions{})
		if len(got) != 2 {
			t.Fatalf("got %d files, want 2 (file1.txt, subdir/file2.txt)", len(got))
		}
		if got[0].RelPath != "file1.txt" || got[1].RelPath != "subdir/file2.txt" {
			t.Errorf("unexpected relative paths: %q, %q", got[0].RelPath, got[1].RelPath)
		}
		if got[1].Size != 2 {
			t.Errorf("expected size 2, got %d", got[1].Size)
		}
	})

	t.Run("include hidden", func(t *testing.T) {
		if got := collect(WalkOptions{IncludeHidden: true}); len(got) != 4 {
			t.Errorf("got %d files, want 4", len(got))
		}
	})

	t.Run("hidden root is walked", func(t *testing.T) {
		root := filepath.Join(tmpDir, ".hidden_dir")
		var n int
		if err := WalkFiles(root, WalkOptions{}, func(e FileEntry) error { n++; return nil }); err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("got %d files under a hidden root, want 1", n)
		}
	})

	t.Run("missing root", func(t *testing.T) {
		err := WalkFiles(filepath.Join(tmpDir, "nope"), WalkOptions{}, func(FileEntry) error { return nil })
		if err == nil {
			t.Error("expected error for missing root")
		}
	})
}
