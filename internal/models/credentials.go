package models

import "time"

// User is the identity of the signed-in account
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Session is the explicit credential bundle handed to every backend call.
// A nil *Session means "not signed in".
type Session struct {
	User         *User     `json:"user,omitempty"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// BearerToken returns the access token, or "" for a nil session.
func (s *Session) BearerToken() string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}

// UserID returns the signed-in user's id, or "" when unknown.
func (s *Session) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID
}

// Tokens is what the identity provider returns from a sign-in or refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"` // seconds
	ExpiresAt    int64  `json:"expires_at,omitempty"` // unix seconds
}

// IdentityUser is the provider's user object (auth/v1/user)
type IdentityUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// MetadataString returns a string field from user_metadata, or "".
func (u *IdentityUser) MetadataString(key string) string {
	if u == nil || u.UserMetadata == nil {
		return ""
	}
	v, _ := u.UserMetadata[key].(string)
	return v
}

// Profile is the row upserted into the provider's users table after sign-in
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}
