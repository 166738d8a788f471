package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnvironment.
const (
	EnvBackendURL      = "FILEDECK_BACKEND_URL"
	EnvLegacyBackend   = "REACT_APP_BACKEND_URL" // same .env the web front-end reads
	EnvIdentityURL     = "FILEDECK_IDENTITY_URL"
	EnvIdentityAnonKey = "FILEDECK_IDENTITY_ANON_KEY"
	EnvProxyMode       = "FILEDECK_PROXY_MODE"
	EnvProxyPassword   = "FILEDECK_PROXY_PASSWORD"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set.
// Missing files are ignored; malformed files are an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ApplyEnvironment overlays environment variables onto cfg.
// Priority: flags > environment > config file > defaults.
func (cfg *Config) ApplyEnvironment() {
	if v := firstEnv(EnvBackendURL, EnvLegacyBackend); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv(EnvIdentityURL); v != "" {
		cfg.IdentityURL = v
	}
	if v := os.Getenv(EnvIdentityAnonKey); v != "" {
		cfg.IdentityAnonKey = v
	}
	if v := os.Getenv(EnvProxyMode); v != "" {
		cfg.ProxyMode = v
	}
	if v := os.Getenv(EnvProxyPassword); v != "" {
		cfg.ProxyPassword = v
	}
}

// MergeWithFlags applies non-empty command-line overrides.
func (cfg *Config) MergeWithFlags(backendURL, logFile string) {
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	cfg.BackendURL = strings.TrimSuffix(cfg.BackendURL, "/")
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
