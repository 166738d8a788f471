// Package identity talks to the external identity provider (a Supabase-compatible
// auth and table API): OAuth and password sign-in, token refresh, the user
// record, the profile upsert and direct table reads.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/filedeck/filedeck/internal/api"
	"github.com/filedeck/filedeck/internal/config"
	"github.com/filedeck/filedeck/internal/constants"
	"github.com/filedeck/filedeck/internal/http"
	"github.com/filedeck/filedeck/internal/logging"
	"github.com/filedeck/filedeck/internal/models"
	"github.com/filedeck/filedeck/internal/version"
)

// Client is the identity provider client. It is stateless apart from the
// project URL and the public anon key.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	anonKey    string
	logger     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger routes request logging to l.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces the retrying, proxy-aware client.
func WithHTTPClient(hc *nethttp.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the provider configured in cfg.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.ValidateForIdentity(); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(cfg.IdentityURL), "/"),
		anonKey: cfg.IdentityAnonKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewDefaultCLILogger()
	}

	if c.httpClient == nil {
		hc, err := http.ConfigureHTTPClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
		}
		c.httpClient = http.NewRetryClient(hc, logging.RetryLogger{L: c.logger})
	}
	return c, nil
}

// AuthorizeURL returns the provider's OAuth entry point. The browser ends up at
// redirectTo with the session tokens in the URL fragment; see ParseRedirect.
func (c *Client) AuthorizeURL(provider, redirectTo string) string {
	if provider == "" {
		provider = constants.DefaultProvider
	}
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.baseURL + constants.PathAuthorize + "?" + q.Encode()
}

// SignInWithPassword exchanges email and password for tokens.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*models.Tokens, error) {
	body := map[string]string{"email": email, "password": password}
	return c.token(ctx, "password", body)
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error) {
	if refreshToken == "" {
		return nil, api.ErrAuthRequired
	}
	return c.token(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

func (c *Client) token(ctx context.Context, grant string, body interface{}) (*models.Tokens, error) {
	path := constants.PathToken + "?grant_type=" + url.QueryEscape(grant)
	resp, err := c.do(ctx, nethttp.MethodPost, path, "", body, nil)
	if err != nil {
		return nil, err
	}

	var tokens models.Tokens
	if err := decode(resp, "sign in", &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("sign in: provider returned no access token")
	}
	return &tokens, nil
}

// GetUser returns the account behind token.
func (c *Client) GetUser(ctx context.Context, token string) (*models.IdentityUser, error) {
	if token == "" {
		return nil, api.ErrAuthRequired
	}
	resp, err := c.do(ctx, nethttp.MethodGet, constants.PathUser, token, nil, nil)
	if err != nil {
		return nil, err
	}

	var u models.IdentityUser
	if err := decode(resp, "get user", &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, fmt.Errorf("get user: provider returned no user id")
	}
	return &u, nil
}

// UpsertProfile inserts or merges the user's row in the users table, keyed by id.
func (c *Client) UpsertProfile(ctx context.Context, token string, p models.Profile) error {
	if token == "" {
		return api.ErrAuthRequired
	}
	headers := map[string]string{"Prefer": "resolution=merge-duplicates,return=minimal"}
	resp, err := c.do(ctx, nethttp.MethodPost, constants.PathRestPrefix+constants.TableUsers, token, []models.Profile{p}, headers)
	if err != nil {
		return err
	}
	return decode(resp, "profile upsert", nil)
}

// SelectFiles reads the user's rows from the files table, newest first.
func (c *Client) SelectFiles(ctx context.Context, token, userID string) ([]models.FileRecord, error) {
	var files []models.FileRecord
	err := c.selectRows(ctx, token, constants.TableFiles, userID, "created_at", &files)
	return files, err
}

// SelectFolders reads the user's rows from the folder table, newest first.
func (c *Client) SelectFolders(ctx context.Context, token, userID string) ([]models.FolderRecord, error) {
	var folders []models.FolderRecord
	err := c.selectRows(ctx, token, constants.TableFolders, userID, "uploaded_at", &folders)
	return folders, err
}

func (c *Client) selectRows(ctx context.Context, token, table, userID, orderBy string, out interface{}) error {
	if token == "" || userID == "" {
		return api.ErrAuthRequired
	}
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+userID)
	q.Set("order", orderBy+".desc")

	resp, err := c.do(ctx, nethttp.MethodGet, constants.PathRestPrefix+table+"?"+q.Encode(), token, nil, nil)
	if err != nil {
		return err
	}
	return decode(resp, "select "+table, out)
}

// do sends a request with the anon key. token, when set, authorizes as the user;
// otherwise the anon key is the bearer.
func (c *Client) do(ctx context.Context, method, path, token string, body interface{}, headers map[string]string) (*nethttp.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	bearer := token
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &api.NetworkError{Op: method + " " + strings.SplitN(path, "?", 2)[0], Err: err}
	}
	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("identity request")
	return resp, nil
}

func decode(resp *nethttp.Response, op string, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s failed: %w", op, api.NewServerError(resp))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
