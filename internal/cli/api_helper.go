package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/filedeck/filedeck/internal/api"
	"github.com/filedeck/filedeck/internal/config"
	"github.com/filedeck/filedeck/internal/http"
	"github.com/filedeck/filedeck/internal/identity"
	"github.com/filedeck/filedeck/internal/models"
	"github.com/filedeck/filedeck/internal/notify"
	"github.com/filedeck/filedeck/internal/registry"
	"github.com/filedeck/filedeck/internal/session"
	"github.com/filedeck/filedeck/internal/upload"
)

// loadConfig reads the config file and applies environment and flag overrides.
// Priority: flags > environment > config file > defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvironment()
	cfg.MergeWithFlags(backendURL, logFile)
	return cfg, nil
}

// loadValidConfig is loadConfig plus validation and the proxy password prompt.
func loadValidConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if http.NeedsProxyPassword(cfg) {
		pw, err := readPassword(fmt.Sprintf("Proxy password for %s@%s: ", cfg.ProxyUser, cfg.ProxyHost))
		if err != nil {
			return nil, fmt.Errorf("failed to read proxy password: %w", err)
		}
		cfg.ProxyPassword = pw
	}
	return cfg, nil
}

// app bundles the clients a command needs, all built from one config.
type app struct {
	cfg      *config.Config
	api      *api.Client
	identity *identity.Client // nil when no identity provider is configured
	sessions *session.Manager
}

func newApp() (*app, error) {
	cfg, err := loadValidConfig()
	if err != nil {
		return nil, err
	}
	log := GetLogger()

	apiClient, err := api.NewClient(cfg, api.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	a := &app{cfg: cfg, api: apiClient}

	// Untyped nil keeps the manager's provider check working
	var provider session.Provider
	if cfg.ValidateForIdentity() == nil {
		idc, err := identity.NewClient(cfg, identity.WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("failed to create identity client: %w", err)
		}
		a.identity = idc
		provider = idc
	}

	store, err := session.DefaultStore()
	if err != nil {
		return nil, err
	}
	a.sessions = session.NewManager(store, provider, log)
	return a, nil
}

// session returns the signed-in session, refreshed if needed.
func (a *app) session(ctx context.Context) (*models.Session, error) {
	sess, err := a.sessions.Current(ctx)
	if err != nil {
		if errors.Is(err, api.ErrAuthRequired) {
			return nil, fmt.Errorf("%w: run 'filedeck login' first", err)
		}
		return nil, err
	}
	return sess, nil
}

// identityClient returns the identity client or explains how to configure one.
func (a *app) identityClient() (*identity.Client, error) {
	if a.identity == nil {
		return nil, fmt.Errorf("%w (set them with 'filedeck config set identity.url ...' or %s/%s)",
			config.ErrMissingIdentity, config.EnvIdentityURL, config.EnvIdentityAnonKey)
	}
	return a.identity, nil
}

// registry builds a Registry over backend; nil means the backend REST API.
func (a *app) registry(backend registry.Backend, opts ...registry.Option) *registry.Registry {
	if backend == nil {
		backend = a.api
	}
	opts = append([]registry.Option{registry.WithLogger(GetLogger())}, opts...)
	return registry.New(backend, opts...)
}

func (a *app) uploader() (*upload.Uploader, error) {
	return upload.NewFromConfig(a.cfg, GetLogger())
}

// notifier honours [notifications] enabled and --notify.
func (a *app) notifier() *notify.Notifier {
	cfg := notify.DefaultConfig()
	cfg.Enabled = a.cfg.NotificationsEnabled || notifyFlag
	return notify.NewNotifier(cfg, GetLogger())
}

// tableBackend reads records straight from the identity provider's tables.
// Mutations still go to the backend.
type tableBackend struct {
	*api.Client
	idc *identity.Client
}

func (t tableBackend) ListFiles(ctx context.Context, sess *models.Session) ([]models.FileRecord, error) {
	return t.idc.SelectFiles(ctx, sess.BearerToken(), sess.UserID())
}

func (t tableBackend) ListFolders(ctx context.Context, sess *models.Session) ([]models.FolderRecord, error) {
	return t.idc.SelectFolders(ctx, sess.BearerToken(), sess.UserID())
}
