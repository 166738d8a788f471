package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/filedeck/filedeck/internal/api"
	"github.com/filedeck/filedeck/internal/constants"
	"github.com/filedeck/filedeck/internal/identity"
	"github.com/filedeck/filedeck/internal/logging"
	"github.com/filedeck/filedeck/internal/models"
)

// Provider is the part of the identity client the manager needs.
// *identity.Client implements it.
type Provider interface {
	Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error)
	GetUser(ctx context.Context, token string) (*models.IdentityUser, error)
	UpsertProfile(ctx context.Context, token string, p models.Profile) error
}

// Manager hands out a usable session, refreshing or re-deriving it as needed.
type Manager struct {
	store    *Store
	provider Provider // nil when no identity provider is configured
	logger   *logging.Logger
	now      func() time.Time
}

// NewManager creates a manager. provider may be nil; sessions then cannot be
// refreshed and the user is read from the token's claims.
func NewManager(store *Store, provider Provider, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return &Manager{store: store, provider: provider, logger: logger, now: time.Now}
}

// Current returns the signed-in session.
//
// An expired token is refreshed when a refresh token is available; otherwise the
// caller must sign in again and api.ErrAuthRequired is returned. A cached session
// without a user has the user re-derived and cached.
func (m *Manager) Current(ctx context.Context) (*models.Session, error) {
	sess, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, api.ErrAuthRequired
	}

	changed := false

	if m.expired(sess) {
		if sess.RefreshToken == "" || m.provider == nil {
			return nil, api.ErrAuthRequired
		}
		m.logger.Debug().Msg("access token expired; refreshing")

		tokens, err := m.provider.Refresh(ctx, sess.RefreshToken)
		if err != nil {
			if api.StatusCode(err) >= 400 && api.StatusCode(err) < 500 {
				return nil, fmt.Errorf("%w: session refresh rejected: %v", api.ErrAuthRequired, err)
			}
			return nil, fmt.Errorf("failed to refresh session: %w", err)
		}
		m.applyTokens(sess, tokens)
		changed = true
	}

	if sess.User == nil || sess.User.ID == "" {
		user, err := m.deriveUser(ctx, sess.AccessToken)
		if err != nil {
			return nil, err
		}
		sess.User = user
		changed = true
	}

	if changed {
		if err := m.store.Save(sess); err != nil {
			m.logger.Warn().Err(err).Msg("could not cache session")
		}
	}
	return sess, nil
}

// Login turns freshly issued tokens into a cached session and performs profile
// setup: the user is fetched and upserted into the users table. A failed upsert
// is logged and does not fail the login.
func (m *Manager) Login(ctx context.Context, tokens *models.Tokens) (*models.Session, error) {
	if tokens == nil || tokens.AccessToken == "" {
		return nil, api.ErrAuthRequired
	}

	sess := &models.Session{}
	m.applyTokens(sess, tokens)

	user, err := m.deriveUser(ctx, sess.AccessToken)
	if err != nil {
		return nil, err
	}
	sess.User = user

	if m.provider != nil {
		if err := m.provider.UpsertProfile(ctx, sess.AccessToken, identity.ProfileFromUser(user)); err != nil {
			m.logger.Warn().Err(err).Msg("profile setup failed; continuing")
		}
	}

	if err := m.store.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout forgets the cached session.
func (m *Manager) Logout() error {
	return m.store.Delete()
}

// Cached returns the stored session as is, without refreshing. nil when signed out.
func (m *Manager) Cached() (*models.Session, error) {
	return m.store.Load()
}

func (m *Manager) applyTokens(sess *models.Session, t *models.Tokens) {
	sess.AccessToken = t.AccessToken
	if t.RefreshToken != "" {
		sess.RefreshToken = t.RefreshToken
	}

	switch {
	case t.ExpiresAt > 0:
		sess.ExpiresAt = time.Unix(t.ExpiresAt, 0).UTC()
	case t.ExpiresIn > 0:
		sess.ExpiresAt = m.now().Add(time.Duration(t.ExpiresIn) * time.Second).UTC()
	default:
		if exp, ok := TokenExpiry(t.AccessToken); ok {
			sess.ExpiresAt = exp
		} else {
			sess.ExpiresAt = time.Time{}
		}
	}
}

// expired applies the skew so a token never leaves with seconds to live.
// The token's own exp claim wins over the cached expiry; a token with neither
// never expires locally.
func (m *Manager) expired(sess *models.Session) bool {
	exp, ok := TokenExpiry(sess.AccessToken)
	if !ok {
		exp = sess.ExpiresAt
	}
	if exp.IsZero() {
		return false
	}
	return !m.now().Add(constants.TokenExpirySkew).Before(exp)
}

func (m *Manager) deriveUser(ctx context.Context, token string) (*models.User, error) {
	if m.provider != nil {
		iu, err := m.provider.GetUser(ctx, token)
		if err != nil {
			if api.IsAuthRequired(err) {
				return nil, fmt.Errorf("%w: %v", api.ErrAuthRequired, err)
			}
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		return identity.UserFromIdentity(iu), nil
	}

	if user, ok := UserFromToken(token); ok {
		return user, nil
	}
	return nil, api.ErrAuthRequired
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The provider verifies tokens; the client only needs to know when to refresh.
func TokenExpiry(token string) (time.Time, bool) {
	claims, ok := parseClaims(token)
	if !ok {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// UserFromToken builds a user from the sub, email and user_metadata claims.
func UserFromToken(token string) (*models.User, bool) {
	claims, ok := parseClaims(token)
	if !ok {
		return nil, false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, false
	}

	iu := &models.IdentityUser{ID: sub}
	iu.Email, _ = claims["email"].(string)
	if md, ok := claims["user_metadata"].(map[string]interface{}); ok {
		iu.UserMetadata = md
	}
	return identity.UserFromIdentity(iu), true
}

func parseClaims(token string) (jwt.MapClaims, bool) {
	if strings.Count(token, ".") != 2 {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
