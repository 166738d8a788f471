// Package session owns the signed-in session: where it is cached, when its token
// expires, and how it is refreshed. Callers get an explicit *models.Session from
// Manager.Current and pass it to every backend call.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/filedeck/filedeck/internal/config"
	"github.com/filedeck/filedeck/internal/constants"
	"github.com/filedeck/filedeck/internal/models"
)

// Store persists the session as JSON in a single owner-only file.
type Store struct {
	path string
}

// NewStore creates a store at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns the store inside the config directory.
func DefaultStore() (*Store, error) {
	dir, err := config.ConfigDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to determine session path: %w", err)
	}
	return NewStore(filepath.Join(dir, constants.SessionFileName)), nil
}

// Path returns the session file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the cached session, or nil if there is none.
func (s *Store) Load() (*models.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session file %s is corrupt: %w", s.path, err)
	}
	if sess.AccessToken == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save writes sess atomically with 0600 permissions.
func (s *Store) Save(sess *models.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save session: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(s.path, 0600); err != nil {
			return fmt.Errorf("failed to set session permissions: %w", err)
		}
	}
	return nil
}

// Delete removes the cached session. A missing file is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
