// Package registry issues rename, delete and share requests for the user's files
// and folders, and keeps the last fetched record set in sync with the backend.
//
// The registry never patches its snapshot locally. Every mutation is followed by a
// full refresh, and the snapshot is replaced wholesale.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/filedeck/filedeck/internal/api"
	"github.com/filedeck/filedeck/internal/logging"
	"github.com/filedeck/filedeck/internal/models"
	"github.com/filedeck/filedeck/internal/view"
)

// Backend is the part of the REST client the registry uses. *api.Client implements it.
type Backend interface {
	ListFiles(ctx context.Context, sess *models.Session) ([]models.FileRecord, error)
	ListFolders(ctx context.Context, sess *models.Session) ([]models.FolderRecord, error)
	Rename(ctx context.Context, sess *models.Session, kind models.ItemKind, id models.ID, newName string) error
	Delete(ctx context.Context, sess *models.Session, kind models.ItemKind, id models.ID) error
	CreateShare(ctx context.Context, sess *models.Session, req models.ShareRequest) error
	GetSignedURL(ctx context.Context, sess *models.Session, fileID models.ID) (string, error)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm approves every prompt. Used for --yes.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// neverConfirm is the default, so nothing is deleted without an explicit confirmer.
var neverConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })

// Snapshot is the record set from one refresh and the views derived from it.
type Snapshot struct {
	Files     []models.FileRecord
	Folders   []models.FolderRecord
	Items     []models.UploadItem
	Usage     models.UsageBreakdown
	FetchedAt time.Time
}

// Tree groups the snapshot's files under their folders.
func (s Snapshot) Tree() []view.Node {
	return view.BuildTree(s.Files, s.Folders)
}

// PartialFailure reports which side of a refresh failed.
// The snapshot returned alongside it is still usable; the failed side is empty.
type PartialFailure struct {
	Files   error
	Folders error
}

func (e *PartialFailure) Error() string {
	var parts []string
	if e.Files != nil {
		parts = append(parts, fmt.Sprintf("files: %v", e.Files))
	}
	if e.Folders != nil {
		parts = append(parts, fmt.Sprintf("folders: %v", e.Folders))
	}
	return "refresh incomplete (" + strings.Join(parts, "; ") + ")"
}

func (e *PartialFailure) Is(target error) bool {
	return target == api.ErrPartialFailure
}

// Unwrap exposes both causes so errors.Is finds e.g. ErrAuthRequired.
func (e *PartialFailure) Unwrap() []error {
	var errs []error
	if e.Files != nil {
		errs = append(errs, e.Files)
	}
	if e.Folders != nil {
		errs = append(errs, e.Folders)
	}
	return errs
}

// ShareLinkError means the share grant was created but the signed link could
// not be fetched. Calling SignedURL again recovers the link.
type ShareLinkError struct {
	FileID models.ID
	Email  string
	Role   models.Role
	Err    error
}

func (e *ShareLinkError) Error() string {
	return fmt.Sprintf("shared file %s with %s as %s, but fetching the link failed: %v", e.FileID, e.Email, e.Role, e.Err)
}

func (e *ShareLinkError) Is(target error) bool {
	return target == api.ErrPartialFailure
}

func (e *ShareLinkError) Unwrap() error {
	return e.Err
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for degraded refreshes.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithConfirmer sets who approves deletions.
func WithConfirmer(c Confirmer) Option {
	return func(r *Registry) { r.confirmer = c }
}

// Registry is the CRUD facade over the backend's record endpoints.
type Registry struct {
	backend   Backend
	confirmer Confirmer
	logger    *logging.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

// New creates a Registry. Without WithConfirmer every deletion is declined.
func New(backend Backend, opts ...Option) *Registry {
	r := &Registry{backend: backend, confirmer: neverConfirm}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewDefaultCLILogger()
	}
	return r
}

// Snapshot returns the result of the last refresh.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Refresh fetches files and folders concurrently and replaces the snapshot.
// A failed fetch degrades that side to empty; the error is then a *PartialFailure
// and the snapshot is still returned. Only context cancellation aborts.
func (r *Registry) Refresh(ctx context.Context, sess *models.Session) (Snapshot, error) {
	var (
		files                []models.FileRecord
		folders              []models.FolderRecord
		filesErr, foldersErr error
	)

	// Both goroutines always return nil so one failure never cancels the other
	var g errgroup.Group
	g.Go(func() error {
		files, filesErr = r.backend.ListFiles(ctx, sess)
		return nil
	})
	g.Go(func() error {
		folders, foldersErr = r.backend.ListFolders(ctx, sess)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return r.Snapshot(), err
	}

	if filesErr != nil {
		r.logger.Warn().Err(filesErr).Msg("could not fetch files; showing none")
		files = nil
	}
	if foldersErr != nil {
		r.logger.Warn().Err(foldersErr).Msg("could not fetch folders; showing none")
		folders = nil
	}

	items, usage := view.Merge(files, folders)
	snap := Snapshot{
		Files:     files,
		Folders:   folders,
		Items:     items,
		Usage:     usage,
		FetchedAt: time.Now(),
	}

	r.mu.Lock()
	r.snapshot = snap
	r.mu.Unlock()

	if filesErr != nil || foldersErr != nil {
		return snap, &PartialFailure{Files: filesErr, Folders: foldersErr}
	}
	return snap, nil
}

// refreshAfter runs the post-mutation refresh. Its failure does not undo the
// mutation, so it is logged rather than returned.
func (r *Registry) refreshAfter(ctx context.Context, sess *models.Session, op string) {
	if _, err := r.Refresh(ctx, sess); err != nil {
		r.logger.Warn().Err(err).Str("after", op).Msg("refresh failed; listing may be stale")
	}
}

// Rename sets a new name on a file or folder, then refreshes.
// A blank or whitespace-only name is ignored: no request is made and nothing changes.
func (r *Registry) Rename(ctx context.Context, sess *models.Session, kind models.ItemKind, id models.ID, newName string) error {
	name := strings.TrimSpace(newName)
	if name == "" {
		return nil
	}

	if err := r.backend.Rename(ctx, sess, kind, id, name); err != nil {
		return fmt.Errorf("rename %s %s: %w", kind, id, err)
	}

	r.refreshAfter(ctx, sess, "rename")
	return nil
}

// Remove asks for confirmation and moves the item to trash, then refreshes.
// It returns false with a nil error when the user declines.
func (r *Registry) Remove(ctx context.Context, sess *models.Session, kind models.ItemKind, id models.ID) (bool, error) {
	ok, err := r.confirmer.Confirm(ctx, "Move to trash?")
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return false, nil
	}

	if err := r.backend.Delete(ctx, sess, kind, id); err != nil {
		return false, fmt.Errorf("delete %s %s: %w", kind, id, err)
	}

	r.refreshAfter(ctx, sess, "delete")
	return true, nil
}

// Share grants email access to a file with role and returns a signed link.
// Invalid input is rejected before any request. If the grant succeeds but the
// link cannot be fetched, the error is a *ShareLinkError.
func (r *Registry) Share(ctx context.Context, sess *models.Session, fileID models.ID, email string, role models.Role) (string, error) {
	if !role.Valid() {
		return "", api.ErrInvalidRole
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", &api.ValidationError{Field: "email", Reason: "recipient email is required"}
	}
	if fileID.IsZero() {
		return "", &api.ValidationError{Field: "file_id", Reason: "file id is required"}
	}

	req := models.ShareRequest{FileID: fileID, SharedWithEmail: email, Role: role}
	if err := r.backend.CreateShare(ctx, sess, req); err != nil {
		return "", fmt.Errorf("share: %w", err)
	}

	link, err := r.backend.GetSignedURL(ctx, sess, fileID)
	if err != nil {
		return "", &ShareLinkError{FileID: fileID, Email: email, Role: role, Err: err}
	}
	return link, nil
}

// SignedURL fetches a file's signed link on its own, e.g. to recover from a ShareLinkError.
func (r *Registry) SignedURL(ctx context.Context, sess *models.Session, fileID models.ID) (string, error) {
	link, err := r.backend.GetSignedURL(ctx, sess, fileID)
	if err != nil {
		return "", fmt.Errorf("signed url: %w", err)
	}
	return link, nil
}

// IsPartialFailure reports whether err is a *PartialFailure or *ShareLinkError.
func IsPartialFailure(err error) bool {
	return errors.Is(err, api.ErrPartialFailure)
}
