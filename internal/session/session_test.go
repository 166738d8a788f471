package session

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedeck/filedeck/internal/api"
	"github.com/filedeck/filedeck/internal/logging"
	"github.com/filedeck/filedeck/internal/models"
)

var now = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

type fakeProvider struct {
	refreshCalls int
	refreshErr   error
	refreshed    *models.Tokens
	user         *models.IdentityUser
	userErr      error
	upsertErr    error
	upserted     []models.Profile
}

func (p *fakeProvider) Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error) {
	p.refreshCalls++
	return p.refreshed, p.refreshErr
}

func (p *fakeProvider) GetUser(ctx context.Context, token string) (*models.IdentityUser, error) {
	return p.user, p.userErr
}

func (p *fakeProvider) UpsertProfile(ctx context.Context, token string, prof models.Profile) error {
	p.upserted = append(p.upserted, prof)
	return p.upsertErr
}

func newManager(t *testing.T, provider Provider) (*Manager, *Store) {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	m := NewManager(store, provider, logging.NewLogger(io.Discard))
	m.now = func() time.Time { return now }
	return m, store
}

var ann = &models.IdentityUser{ID: "u-1", Email: "ann@example.net", UserMetadata: map[string]interface{}{"full_name": "Ann"}}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "session.json"))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, got, "missing file means signed out")

	sess := &models.Session{
		User:         &models.User{ID: "u-1", Name: "Ann", Email: "ann@example.net"},
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    now,
	}
	require.NoError(t, store.Save(sess))

	got, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, sess.User, got.User)
	assert.Equal(t, "rt", got.RefreshToken)
	assert.True(t, got.ExpiresAt.Equal(now))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(store.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, store.Delete())
	require.NoError(t, store.Delete(), "deleting twice is fine")
	got, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewStore(path).Load()
	assert.ErrorContains(t, err, "corrupt")
}

func TestCurrent_NoSession(t *testing.T) {
	m, _ := newManager(t, &fakeProvider{})
	_, err := m.Current(context.Background())
	assert.ErrorIs(t, err, api.ErrAuthRequired)
}

func TestCurrent_ValidTokenUsedAsIs(t *testing.T) {
	p := &fakeProvider{}
	m, store := newManager(t, p)
	token := signToken(t, jwt.MapClaims{"sub": "u-1", "exp": now.Add(time.Hour).Unix()})
	require.NoError(t, store.Save(&models.Session{AccessToken: token, User: &models.User{ID: "u-1"}}))

	sess, err := m.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, sess.AccessToken)
	assert.Zero(t, p.refreshCalls)
}

func TestCurrent_RefreshesWithinSkew(t *testing.T) {
	fresh := signToken(t, jwt.MapClaims{"sub": "u-1", "exp": now.Add(time.Hour).Unix()})
	p := &fakeProvider{refreshed: &models.Tokens{AccessToken: fresh, RefreshToken: "rt-2", ExpiresIn: 3600}}
	m, store := newManager(t, p)

	// Expires in 10s, inside the 30s skew
	old := signToken(t, jwt.MapClaims{"sub": "u-1", "exp": now.Add(10 * time.Second).Unix()})
	require.NoError(t, store.Save(&models.Session{AccessToken: old, RefreshToken: "rt-1", User: &models.User{ID: "u-1"}}))

	sess, err := m.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, p.refreshCalls)
	assert.Equal(t, fresh, sess.AccessToken)
	assert.Equal(t, "rt-2", sess.RefreshToken)
	assert.True(t, sess.ExpiresAt.Equal(now.Add(time.Hour)))

	cached, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, fresh, cached.AccessToken, "refreshed tokens are persisted")
}

func TestCurrent_ExpiredWithoutRefreshToken(t *testing.T) {
	p := &fakeProvider{}
	m, store := newManager(t, p)
	old := signToken(t, jwt.MapClaims{"sub": "u-1", "exp": now.Add(-time.Minute).Unix()})
	require.NoError(t, store.Save(&models.Session{AccessToken: old, User: &models.User{ID: "u-1"}}))

	_, err := m.Current(context.Background())
	assert.ErrorIs(t, err, api.ErrAuthRequired)
	assert.Zero(t, p.refreshCalls)
}

func TestCurrent_RefreshRejected(t *testing.T) {
	p := &fakeProvider{refreshErr: &api.ServerError{Status: 400, Message: "Invalid Refresh Token"}}
	m, store := newManager(t, p)
	old := signToken(t, jwt.MapClaims{"sub": "u-1", "exp": now.Add(-time.Minute).Unix()})
	require.NoError(t, store.Save(&models.Session{AccessToken: old, RefreshToken: "rt", User: &models.User{ID: "u-1"}}))

	_, err := m.Current(context.Background())
	assert.ErrorIs(t, err, api.ErrAuthRequired)
}

func TestCurrent_OpaqueTokenUsesCachedExpiry(t *testing.T) {
	m, store := newManager(t, nil)

	require.NoError(t, store.Save(&models.Session{AccessToken: "opaque", User: &models.User{ID: "u-1"}}))
	_, err := m.Current(context.Background())
	require.NoError(t, err, "no expiry known means the token is used as is")

	require.NoError(t, store.Save(&models.Session{AccessToken: "opaque", User: &models.User{ID: "u-1"}, ExpiresAt: now.Add(-time.Hour)}))
	_, err = m.Current(context.Background())
	assert.ErrorIs(t, err, api.ErrAuthRequired)
}

func TestCurrent_RederivesMissingUser(t *testing.T) {
	p := &fakeProvider{user: &models.IdentityUser{ID: "u-9", Email: "x@y.com"}}
	m, store := newManager(t, p)
	require.NoError(t, store.Save(&models.Session{AccessToken: "opaque"}))

	sess, err := m.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-9", sess.UserID())
	assert.Equal(t, "No Name", sess.User.Name)

	cached, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "u-9", cached.UserID())
}

func TestCurrent_UserFromClaimsWithoutProvider(t *testing.T) {
	m, store := newManager(t, nil)
	token := signToken(t, jwt.MapClaims{
		"sub":           "u-5",
		"email":         "bo@example.net",
		"exp":           now.Add(time.Hour).Unix(),
		"user_metadata": map[string]interface{}{"full_name": "Bo"},
	})
	require.NoError(t, store.Save(&models.Session{AccessToken: token}))

	sess, err := m.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: "u-5", Name: "Bo", Email: "bo@example.net"}, sess.User)
}

func TestLogin_ProfileSetup(t *testing.T) {
	p := &fakeProvider{user: ann}
	m, store := newManager(t, p)

	sess, err := m.Login(context.Background(), &models.Tokens{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 60})
	require.NoError(t, err)
	assert.Equal(t, "Ann", sess.User.Name)
	assert.True(t, sess.ExpiresAt.Equal(now.Add(time.Minute)))
	require.Len(t, p.upserted, 1)
	assert.Equal(t, models.Profile{ID: "u-1", Email: "ann@example.net", FullName: "Ann"}, p.upserted[0])

	cached, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "u-1", cached.UserID())
}

func TestLogin_UpsertFailureIsNotFatal(t *testing.T) {
	p := &fakeProvider{user: ann, upsertErr: errors.New("permission denied for table users")}
	m, _ := newManager(t, p)

	sess, err := m.Login(context.Background(), &models.Tokens{AccessToken: "at"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", sess.UserID())
}

func TestLogin_GetUserFailure(t *testing.T) {
	p := &fakeProvider{userErr: &api.ServerError{Status: 401, Message: "bad jwt"}}
	m, store := newManager(t, p)

	_, err := m.Login(context.Background(), &models.Tokens{AccessToken: "at"})
	assert.ErrorIs(t, err, api.ErrAuthRequired)

	cached, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cached, "nothing is cached when login fails")
}

func TestLogout(t *testing.T) {
	m, store := newManager(t, &fakeProvider{user: ann})
	_, err := m.Login(context.Background(), &models.Tokens{AccessToken: "at"})
	require.NoError(t, err)

	require.NoError(t, m.Logout())
	cached, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestTokenExpiry(t *testing.T) {
	exp := now.Add(5 * time.Minute)
	got, ok := TokenExpiry(signToken(t, jwt.MapClaims{"exp": exp.Unix()}))
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = TokenExpiry(signToken(t, jwt.MapClaims{"sub": "x"}))
	assert.False(t, ok, "no exp claim")

	_, ok = TokenExpiry("not-a-jwt")
	assert.False(t, ok)
}

func TestCached_ReturnsStoredSessionWithoutRefreshing(t *testing.T) {
	p := &fakeProvider{refreshed: &models.Tokens{AccessToken: "new"}}
	m, store := newManager(t, p)

	got, err := m.Cached()
	require.NoError(t, err)
	assert.Nil(t, got)

	old := signToken(t, jwt.MapClaims{"sub": "u-1", "exp": now.Add(-time.Minute).Unix()})
	require.NoError(t, store.Save(&models.Session{AccessToken: old, RefreshToken: "rt", User: &models.User{ID: "u-1"}}))

	got, err = m.Cached()
	require.NoError(t, err)
	assert.Equal(t, old, got.AccessToken, "expired token is returned as stored")
	assert.Zero(t, p.refreshCalls)
}
