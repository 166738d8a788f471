package localfs

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"time"
)

// FileEntry is a regular file found under a walk root.
type FileEntry struct {
	Path    string    // Full path to the file
	RelPath string    // Path relative to the walk root, forward slashes
	Name    string    // Base name of the file
	Size    int64     // Size in bytes
	ModTime time.Time // Last modification time
}

// WalkOptions configures the behavior of WalkFiles.
type WalkOptions struct {
	// IncludeHidden includes hidden files and directories in the walk.
	// Default is false (hidden items excluded).
	IncludeHidden bool
}

// WalkFunc is the callback signature for WalkFiles.
type WalkFunc func(entry FileEntry) error

// WalkFiles visits every regular file under root in lexical order.
// Hidden directories are not descended into unless opts.IncludeHidden is set;
// the root itself is never filtered. Symlinks and other special files are skipped.
// Unlike filepath.WalkDir callers that skip unreadable entries, any access error
// stops the walk so an upload never silently drops a file.
func WalkFiles(root string, opts WalkOptions, fn WalkFunc) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		if path != root && !opts.IncludeHidden && IsHiddenName(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		return fn(FileEntry{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
			Name:    d.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	})
}
