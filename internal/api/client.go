package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/filedeck/filedeck/internal/config"
	"github.com/filedeck/filedeck/internal/constants"
	"github.com/filedeck/filedeck/internal/http"
	"github.com/filedeck/filedeck/internal/logging"
	"github.com/filedeck/filedeck/internal/models"
	"github.com/filedeck/filedeck/internal/version"
)

// Client is the filedeck backend REST client.
// Every call takes the caller's session explicitly; the client holds no user state.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	logger     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger routes request and retry logging to l.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces the retrying, proxy-aware client. Used by tests.
func WithHTTPClient(hc *nethttp.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new backend client from cfg.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	base := strings.TrimSuffix(strings.TrimSpace(cfg.BackendURL), "/")
	if base == "" {
		return nil, fmt.Errorf("backend URL is empty: set backend.url or %s", config.EnvBackendURL)
	}

	c := &Client{baseURL: base}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewDefaultCLILogger()
	}

	if c.httpClient == nil {
		httpClient, err := http.ConfigureHTTPClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
		}
		c.httpClient = http.NewRetryClient(httpClient, logging.RetryLogger{L: c.logger})
	}

	return c, nil
}

// BaseURL returns the backend origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs a JSON request, attaching the session's bearer token when present.
func (c *Client) doRequest(ctx context.Context, method, path string, sess *models.Session, body interface{}) (*nethttp.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := sess.BearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Str("request_id", requestID).Str("method", method).Str("path", path).Err(err).Msg("request failed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	return resp, nil
}

// decodeJSON checks the status and decodes the body into out (if non-nil).
func decodeJSON(resp *nethttp.Response, op string, out interface{}, accepted ...int) error {
	defer resp.Body.Close()

	ok := false
	for _, s := range accepted {
		if resp.StatusCode == s {
			ok = true
			break
		}
	}
	if len(accepted) == 0 {
		ok = resp.StatusCode >= 200 && resp.StatusCode < 300
	}
	if !ok {
		se := NewServerError(resp)
		return fmt.Errorf("%s failed: %w", op, se)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// Signup registers a new account. The backend reports problems as {"error": "..."}.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) error {
	resp, err := c.doRequest(ctx, nethttp.MethodPost, constants.PathSignup, nil, req)
	if err != nil {
		return err
	}
	return decodeJSON(resp, "signup", nil)
}

// ListFolders returns the caller's folders.
func (c *Client) ListFolders(ctx context.Context, sess *models.Session) ([]models.FolderRecord, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodGet, constants.PathEditFolders, sess, nil)
	if err != nil {
		return nil, err
	}

	var folders []models.FolderRecord
	if err := decodeJSON(resp, "list folders", &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// ListFiles returns the caller's files, including files inside folders.
func (c *Client) ListFiles(ctx context.Context, sess *models.Session) ([]models.FileRecord, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodGet, constants.PathEditFiles, sess, nil)
	if err != nil {
		return nil, err
	}

	var files []models.FileRecord
	if err := decodeJSON(resp, "list files", &files); err != nil {
		return nil, err
	}
	return files, nil
}

func itemPath(kind models.ItemKind, id models.ID) (string, error) {
	if !kind.Valid() {
		return "", &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown item kind %q", kind)}
	}
	if id.IsZero() {
		return "", &ValidationError{Field: "id", Reason: "item id is required"}
	}
	return fmt.Sprintf("%s/%s/%s", constants.PathEdit, kind.PathSegment(), url.PathEscape(id.String())), nil
}

// Rename sets a new display name on a file or folder.
func (c *Client) Rename(ctx context.Context, sess *models.Session, kind models.ItemKind, id models.ID, newName string) error {
	path, err := itemPath(kind, id)
	if err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, nethttp.MethodPut, path, sess, models.RenameRequest{NewName: newName})
	if err != nil {
		return err
	}
	return decodeJSON(resp, "rename", nil)
}

// Delete moves a file or folder to trash.
func (c *Client) Delete(ctx context.Context, sess *models.Session, kind models.ItemKind, id models.ID) error {
	path, err := itemPath(kind, id)
	if err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, nethttp.MethodDelete, path, sess, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, "delete", nil)
}

// CreateShare grants another user access to a file.
func (c *Client) CreateShare(ctx context.Context, sess *models.Session, req models.ShareRequest) error {
	resp, err := c.doRequest(ctx, nethttp.MethodPost, constants.PathShare, sess, req)
	if err != nil {
		return err
	}
	return decodeJSON(resp, "share", nil)
}

// GetSignedURL fetches a time-limited download link for a file.
func (c *Client) GetSignedURL(ctx context.Context, sess *models.Session, fileID models.ID) (string, error) {
	if fileID.IsZero() {
		return "", &ValidationError{Field: "file_id", Reason: "file id is required"}
	}

	path := fmt.Sprintf("%s/%s/signed-url", constants.PathShare, url.PathEscape(fileID.String()))
	resp, err := c.doRequest(ctx, nethttp.MethodGet, path, sess, nil)
	if err != nil {
		return "", err
	}

	var out models.SignedURLResponse
	if err := decodeJSON(resp, "signed url", &out); err != nil {
		return "", err
	}
	if out.SignedURL == "" {
		return "", errors.New("signed url response did not contain a link")
	}
	return out.SignedURL, nil
}
