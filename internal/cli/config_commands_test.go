package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/filedeck/filedeck/internal/config"
)

// TestConfigCmd tests the config command group
func TestConfigCmd(t *testing.T) {
	cmd := newConfigCmd()
	if cmd.Use != "config" {
		t.Errorf("Expected Use='config', got '%s'", cmd.Use)
	}

	expectedSubs := []string{"init", "show", "set", "path"}
	if len(cmd.Commands()) != len(expectedSubs) {
		t.Errorf("Expected %d subcommands, got %d", len(expectedSubs), len(cmd.Commands()))
	}

	foundSubs := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		foundSubs[sub.Name()] = true
		if sub.Short == "" {
			t.Errorf("Subcommand '%s' has empty Short description", sub.Name())
		}
	}
	for _, expected := range expectedSubs {
		if !foundSubs[expected] {
			t.Errorf("Subcommand '%s' not found", expected)
		}
	}
}

func TestConfigSetAndShow(t *testing.T) {
	dir := setupEnv(t)

	if _, _, err := run(t, "config", "set", "backend.url", "https://files.example.net"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if _, _, err := run(t, "config", "set", "identity.anon_key", "super-secret-key"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}

	cfg, err := config.LoadConfig(filepath.Join(dir, "config"))
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if cfg.BackendURL != "https://files.example.net" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}

	out, _, err := run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "https://files.example.net") {
		t.Errorf("show should print the backend URL:\n%s", out)
	}
	if strings.Contains(out, "super-secret-key") || !strings.Contains(out, "<set (16 chars)>") {
		t.Errorf("anon key must be masked:\n%s", out)
	}

	// Flags win over the file
	out, _, err = run(t, "--backend-url", "http://localhost:9999/", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "URL: http://localhost:9999\n") {
		t.Errorf("flag override not applied:\n%s", out)
	}
}

func TestConfigSet_Rejects(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"config", "set", "backend.port", "1"}},
		{"bad value", []string{"config", "set", "proxy.port", "eighty"}},
		{"invalid result", []string{"config", "set", "proxy.mode", "socks"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := run(t, tt.args...); err == nil {
				t.Errorf("expected %v to fail", tt.args)
			}
		})
	}
}

func TestConfigInit(t *testing.T) {
	dir := setupEnv(t)
	setInput(t, strings.Join([]string{
		"http://files.local:5000", // backend
		"https://abc.supabase.co", // identity url
		"anon-key",                // anon key
		"",                        // provider: default
		"",                        // redirect: default
		"n",                       // proxy
		"yes",                     // notifications
	}, "\n")+"\n")

	out, _, err := run(t, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Configuration saved") {
		t.Errorf("unexpected output:\n%s", out)
	}

	cfg, err := config.LoadConfig(filepath.Join(dir, "config"))
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if cfg.BackendURL != "http://files.local:5000" || cfg.IdentityURL != "https://abc.supabase.co" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.OAuthProvider != "google" || !cfg.NotificationsEnabled {
		t.Errorf("defaults and answers not applied: %+v", cfg)
	}

	// A second init without --force leaves the file alone
	out, _, err = run(t, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("expected an already exists notice:\n%s", out)
	}
}

func TestConfigPath(t *testing.T) {
	dir := setupEnv(t)

	out, _, err := run(t, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.Contains(out, filepath.Join(dir, "config")) || !strings.Contains(out, "does not exist") {
		t.Errorf("unexpected output:\n%s", out)
	}

	custom := filepath.Join(t.TempDir(), "alt.ini")
	if err := os.WriteFile(custom, []byte("[backend]\nurl = http://x\n"), 0600); err != nil {
		t.Fatal(err)
	}
	out, _, err = run(t, "--config", custom, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.Contains(out, "from --config flag") || !strings.Contains(out, "File exists") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret(""); got != "<not set>" {
		t.Errorf("maskSecret(\"\") = %q", got)
	}
	if got := maskSecret("abc"); got != "<set (3 chars)>" {
		t.Errorf("maskSecret(\"abc\") = %q", got)
	}
}
