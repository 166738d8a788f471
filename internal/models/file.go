// Package models defines the records exchanged with the filedeck backend and
// the view models derived from them.
package models

// FileRecord represents a stored file as returned by the backend
type FileRecord struct {
	ID        ID        `json:"id"`
	Name      string    `json:"file_name"`
	URL       string    `json:"file_url"`
	UserID    string    `json:"user_id,omitempty"`
	FolderID  *ID       `json:"folder_id,omitempty"`
	Size      int64     `json:"size"`
	Type      string    `json:"file_type,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

// InFolder reports whether the file belongs to a folder.
func (f FileRecord) InFolder() bool {
	return f.FolderID != nil && !f.FolderID.IsZero()
}

// FolderRecord represents an uploaded folder
type FolderRecord struct {
	ID         ID        `json:"id"`
	Name       string    `json:"folder_name"`
	URL        string    `json:"folder_url,omitempty"` // archive URL, optional
	UserID     string    `json:"user_id,omitempty"`
	UploadedAt Timestamp `json:"uploaded_at"`
}

// ItemKind tags a record as a file or a folder.
type ItemKind string

const (
	KindFile   ItemKind = "file"
	KindFolder ItemKind = "folder"
)

// PathSegment returns the segment used by the /api/edit/{kind}/{id} routes.
// The backend spells the file route in the plural.
func (k ItemKind) PathSegment() string {
	if k == KindFile {
		return "files"
	}
	return string(k)
}

// Valid reports whether k is a known kind.
func (k ItemKind) Valid() bool {
	return k == KindFile || k == KindFolder
}

// ParseItemKind accepts the CLI and route spellings of a kind.
func ParseItemKind(s string) (ItemKind, bool) {
	switch s {
	case "file", "files":
		return KindFile, true
	case "folder", "folders":
		return KindFolder, true
	default:
		return "", false
	}
}

// UploadItem is the merged, display-only projection of a file or folder.
// It is recomputed on every fetch and never persisted.
type UploadItem struct {
	ID   ID
	Kind ItemKind
	Name string
	Date Timestamp
	Size *int64 // nil for folders
	Type string
	URL  string
}

// SignupRequest is the body of POST /api/auth/signup
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RenameRequest is the body of PUT /api/edit/{kind}/{id}
type RenameRequest struct {
	NewName string `json:"new_name"`
}

// FileUploadResponse is returned by POST /api/upload on 201
type FileUploadResponse struct {
	FileURL string `json:"file_url"`
}

// FolderUploadResponse is returned by POST /api/folder/upload-folder.
// The backend is loose about its shape, so every field is optional.
type FolderUploadResponse struct {
	FolderID  *ID    `json:"folder_id,omitempty"`
	FolderURL string `json:"folder_url,omitempty"`
	Message   string `json:"message,omitempty"`
}
