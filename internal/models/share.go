package models

import "strings"

// Role is the access level granted by a share
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleOwner  Role = "owner"
)

// Roles lists the accepted roles in display order.
var Roles = []Role{RoleViewer, RoleEditor, RoleOwner}

// Valid reports whether r is one of viewer, editor or owner. Matching is exact.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleOwner:
		return true
	}
	return false
}

// RoleNames returns the accepted roles joined for help text.
func RoleNames() string {
	names := make([]string, len(Roles))
	for i, r := range Roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// ShareRequest is the body of POST /api/share
type ShareRequest struct {
	FileID          ID     `json:"file_id"`
	SharedWithEmail string `json:"shared_with_email"`
	Role            Role   `json:"role"`
}

// SignedURLResponse is returned by GET /api/share/{fileId}/signed-url
type SignedURLResponse struct {
	SignedURL string `json:"signedUrl"`
}
