// Package upload sends files and folders to the filedeck backend as streamed
// multipart requests and reports byte-level progress.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/filedeck/filedeck/internal/localfs"
)

// Source is one file to upload. Open is called once, when the request body
// reaches the file; it must yield exactly Size bytes.
type Source struct {
	Name string // multipart filename; relative slash path for folder members
	Size int64
	Open func() (io.ReadCloser, error)
}

func (s Source) valid() bool {
	return s.Name != "" && s.Open != nil && s.Size >= 0
}

// FileSource builds a Source from a regular file on disk.
func FileSource(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return Source{}, fmt.Errorf("%s is not a regular file", path)
	}

	return Source{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// Folder is a named set of files uploaded in one request.
type Folder struct {
	Name  string
	Files []Source
}

// TotalSize is the sum of the member sizes.
func (f *Folder) TotalSize() int64 {
	var n int64
	for _, s := range f.Files {
		n += s.Size
	}
	return n
}

// FolderOptions controls FolderFromDir.
type FolderOptions struct {
	IncludeHidden bool
}

// FolderFromDir builds a Folder from a local directory. The folder is named after
// the directory; member names are slash paths relative to it, in lexical order.
func FolderFromDir(dir string, opts FolderOptions) (*Folder, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	folder := &Folder{Name: filepath.Base(abs)}

	err = localfs.WalkFiles(abs, localfs.WalkOptions{IncludeHidden: opts.IncludeHidden}, func(e localfs.FileEntry) error {
		path := e.Path
		folder.Files = append(folder.Files, Source{
			Name: e.RelPath,
			Size: e.Size,
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// WalkDir is already lexical per directory; sort on the full slash path for a stable wire order
	sort.SliceStable(folder.Files, func(i, j int) bool {
		return strings.Compare(folder.Files[i].Name, folder.Files[j].Name) < 0
	})

	return folder, nil
}
