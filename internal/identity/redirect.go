package identity

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/filedeck/filedeck/internal/constants"
	"github.com/filedeck/filedeck/internal/models"
)

// ErrNoTokens means a redirect URL carried neither tokens nor an error.
var ErrNoTokens = errors.New("redirect URL contains no access token")

// ParseRedirect extracts the session from the URL the provider redirected the
// browser to after OAuth sign-in. Tokens normally sit in the fragment; the query
// is checked as well. A provider error in the redirect is returned as an error.
func ParseRedirect(raw string) (*models.Tokens, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URL: %w", err)
	}

	values := u.Query()
	if u.Fragment != "" {
		frag, err := url.ParseQuery(u.Fragment)
		if err != nil {
			return nil, fmt.Errorf("invalid redirect fragment: %w", err)
		}
		for k, v := range frag {
			values[k] = v
		}
	}

	if e := values.Get("error"); e != "" {
		if desc := values.Get("error_description"); desc != "" {
			return nil, fmt.Errorf("sign in failed: %s", desc)
		}
		return nil, fmt.Errorf("sign in failed: %s", e)
	}

	tokens := &models.Tokens{
		AccessToken:  values.Get("access_token"),
		RefreshToken: values.Get("refresh_token"),
		TokenType:    values.Get("token_type"),
	}
	if tokens.AccessToken == "" {
		return nil, ErrNoTokens
	}
	if n, err := strconv.ParseInt(values.Get("expires_in"), 10, 64); err == nil {
		tokens.ExpiresIn = n
	}
	if n, err := strconv.ParseInt(values.Get("expires_at"), 10, 64); err == nil {
		tokens.ExpiresAt = n
	}
	return tokens, nil
}

// UserFromIdentity maps the provider's user object to the cached user.
// A missing full_name shows as "No Name".
func UserFromIdentity(u *models.IdentityUser) *models.User {
	name := strings.TrimSpace(u.MetadataString("full_name"))
	if name == "" {
		name = strings.TrimSpace(u.MetadataString("name"))
	}
	if name == "" {
		name = constants.UnnamedUser
	}
	return &models.User{
		ID:        u.ID,
		Name:      name,
		Email:     u.Email,
		AvatarURL: u.MetadataString("avatar_url"),
	}
}

// ProfileFromUser is the users-table row for u.
func ProfileFromUser(u *models.User) models.Profile {
	name := u.Name
	if name == constants.UnnamedUser {
		name = ""
	}
	return models.Profile{ID: u.ID, Email: u.Email, FullName: name, AvatarURL: u.AvatarURL}
}
