// Package config provides configuration management for filedeck.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/filedeck/filedeck/internal/constants"
)

// Config is the client configuration.
//
// Config file location: ~/.config/filedeck/config (see DefaultConfigPath)
//
// INI format:
//
//	[backend]
//	url = http://localhost:5000
//
//	[identity]
//	url = https://<project>.supabase.co
//	anon_key = <public anon key>
//	oauth_provider = google
//	redirect_url = http://localhost:3000/profile-setup
//
//	[proxy]
//	mode = no-proxy
//	host =
//	port = 0
//	user =
//	no_proxy =
//	warmup = false
//
//	[logging]
//	level = info
//	file =
//
//	[notifications]
//	enabled = false
type Config struct {
	// Backend origin; REST paths are appended to it
	BackendURL string

	// Identity provider settings
	IdentityURL     string
	IdentityAnonKey string
	OAuthProvider   string
	RedirectURL     string

	// Proxy settings
	ProxyMode     string // "no-proxy", "system", "basic", "ntlm"
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string // never written to disk
	NoProxy       string // Comma-separated list of hosts to bypass proxy
	ProxyWarmup   bool

	// Logging
	LogLevel string
	LogFile  string

	// Desktop notifications after uploads
	NotificationsEnabled bool
}

// Validation errors
var (
	ErrMissingBackendURL = errors.New("backend url is required")
	ErrInvalidBackendURL = errors.New("backend url must be an absolute http(s) URL")
	ErrMissingIdentity   = errors.New("identity url and anon_key are required to sign in")
	ErrInvalidProxyMode  = errors.New("proxy mode must be one of no-proxy, system, basic, ntlm")
	ErrMissingProxyHost  = errors.New("proxy host is required for basic and ntlm modes")
	ErrInvalidLogLevel   = errors.New("log level must be one of debug, info, warn, error")
)

var validProxyModes = map[string]bool{"no-proxy": true, "system": true, "basic": true, "ntlm": true}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		BackendURL:    constants.DefaultBackendURL,
		OAuthProvider: constants.DefaultProvider,
		RedirectURL:   constants.DefaultRedirectURL,
		ProxyMode:     "no-proxy",
		LogLevel:      "info",
	}
}

// LoadConfig loads configuration from an INI file.
// If the file doesn't exist, returns a config with default values and no error.
// If the file exists but is invalid, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, nil // Return defaults if we can't determine path
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	backend := iniFile.Section("backend")
	cfg.BackendURL = backend.Key("url").MustString(cfg.BackendURL)

	identity := iniFile.Section("identity")
	cfg.IdentityURL = identity.Key("url").String()
	cfg.IdentityAnonKey = identity.Key("anon_key").String()
	cfg.OAuthProvider = identity.Key("oauth_provider").MustString(cfg.OAuthProvider)
	cfg.RedirectURL = identity.Key("redirect_url").MustString(cfg.RedirectURL)

	proxy := iniFile.Section("proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(0)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	logging := iniFile.Section("logging")
	cfg.LogLevel = logging.Key("level").MustString(cfg.LogLevel)
	cfg.LogFile = logging.Key("file").String()

	cfg.NotificationsEnabled = iniFile.Section("notifications").Key("enabled").MustBool(false)

	return cfg, nil
}

// SaveConfig saves configuration to an INI file.
// Creates parent directories if they don't exist. The proxy password is never persisted.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	sections := []struct {
		name string
		keys [][2]string
	}{
		{"backend", [][2]string{{"url", cfg.BackendURL}}},
		{"identity", [][2]string{
			{"url", cfg.IdentityURL},
			{"anon_key", cfg.IdentityAnonKey},
			{"oauth_provider", cfg.OAuthProvider},
			{"redirect_url", cfg.RedirectURL},
		}},
		{"proxy", [][2]string{
			{"mode", cfg.ProxyMode},
			{"host", cfg.ProxyHost},
			{"port", strconv.Itoa(cfg.ProxyPort)},
			{"user", cfg.ProxyUser},
			{"no_proxy", cfg.NoProxy},
			{"warmup", strconv.FormatBool(cfg.ProxyWarmup)},
		}},
		{"logging", [][2]string{{"level", cfg.LogLevel}, {"file", cfg.LogFile}}},
		{"notifications", [][2]string{{"enabled", strconv.FormatBool(cfg.NotificationsEnabled)}}},
	}

	for _, s := range sections {
		section, err := iniFile.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", s.name, err)
		}
		for _, kv := range s.keys {
			section.Key(kv[0]).SetValue(kv[1])
		}
	}

	// Use temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	// The anon key is not secret but proxy user names are; keep the file private
	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks the settings every command needs.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.BackendURL) == "" {
		return ErrMissingBackendURL
	}
	u, err := url.Parse(cfg.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBackendURL
	}

	mode := strings.ToLower(cfg.ProxyMode)
	if mode == "" {
		mode = "no-proxy"
	}
	if !validProxyModes[mode] {
		return ErrInvalidProxyMode
	}
	if (mode == "basic" || mode == "ntlm") && strings.TrimSpace(cfg.ProxyHost) == "" {
		return ErrMissingProxyHost
	}

	if cfg.LogLevel != "" && !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// ValidateForIdentity checks the identity provider settings needed by login.
func (cfg *Config) ValidateForIdentity() error {
	if strings.TrimSpace(cfg.IdentityURL) == "" || strings.TrimSpace(cfg.IdentityAnonKey) == "" {
		return ErrMissingIdentity
	}
	return nil
}

// Set assigns a value addressed as "section.key", as used by "config set".
func (cfg *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "backend.url":
		cfg.BackendURL = value
	case "identity.url":
		cfg.IdentityURL = value
	case "identity.anon_key":
		cfg.IdentityAnonKey = value
	case "identity.oauth_provider":
		cfg.OAuthProvider = value
	case "identity.redirect_url":
		cfg.RedirectURL = value
	case "proxy.mode":
		cfg.ProxyMode = value
	case "proxy.host":
		cfg.ProxyHost = value
	case "proxy.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("proxy.port must be a number: %w", err)
		}
		cfg.ProxyPort = port
	case "proxy.user":
		cfg.ProxyUser = value
	case "proxy.no_proxy":
		cfg.NoProxy = value
	case "proxy.warmup":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("proxy.warmup must be true or false: %w", err)
		}
		cfg.ProxyWarmup = b
	case "logging.level":
		cfg.LogLevel = value
	case "logging.file":
		cfg.LogFile = value
	case "notifications.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("notifications.enabled must be true or false: %w", err)
		}
		cfg.NotificationsEnabled = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Keys lists every key accepted by Set, in file order.
func Keys() []string {
	return []string{
		"backend.url",
		"identity.url", "identity.anon_key", "identity.oauth_provider", "identity.redirect_url",
		"proxy.mode", "proxy.host", "proxy.port", "proxy.user", "proxy.no_proxy", "proxy.warmup",
		"logging.level", "logging.file",
		"notifications.enabled",
	}
}
