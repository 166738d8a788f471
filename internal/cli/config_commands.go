// Package cli provides configuration management commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/filedeck/filedeck/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage filedeck configuration",
		Long: `Configuration management commands for filedeck.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  set   - Change one setting
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// configPath returns --config or the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for filedeck.

The configuration is saved to ~/.config/filedeck/config

Use --force to overwrite existing configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg, err := runConfigWizard(out)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.SaveConfig(cfg, path); err != nil {
				return err
			}

			GetLogger().Info().Str("path", path).Msg("Configuration saved")
			fmt.Fprintf(out, "\nConfiguration saved to: %s\n", path)
			fmt.Fprintln(out, "Sign in with: filedeck login")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// runConfigWizard prompts for each setting, offering the defaults.
func runConfigWizard(out io.Writer) (*config.Config, error) {
	cfg := config.NewConfig()

	fmt.Fprintln(out, "filedeck Configuration Setup")
	fmt.Fprintln(out, "============================")
	fmt.Fprintln(out)

	fields := []struct {
		label string
		dst   *string
	}{
		{"Backend URL", &cfg.BackendURL},
		{"Identity provider URL", &cfg.IdentityURL},
		{"Identity provider anon key", &cfg.IdentityAnonKey},
		{"OAuth provider", &cfg.OAuthProvider},
		{"OAuth redirect URL", &cfg.RedirectURL},
	}
	for _, f := range fields {
		v, err := promptDefault(f.label, *f.dst)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	fmt.Fprintln(out)
	answer, err := promptLine("Configure proxy? [y/N]: ")
	if err != nil {
		return nil, err
	}
	if answer == "y" || answer == "yes" {
		if cfg.ProxyMode, err = promptDefault("Proxy mode (no-proxy, system, basic, ntlm)", "system"); err != nil {
			return nil, err
		}
		if cfg.ProxyMode == "basic" || cfg.ProxyMode == "ntlm" {
			if cfg.ProxyHost, err = promptDefault("Proxy host", ""); err != nil {
				return nil, err
			}
			port, err := promptDefault("Proxy port", "8080")
			if err != nil {
				return nil, err
			}
			if cfg.ProxyPort, err = strconv.Atoi(port); err != nil {
				return nil, fmt.Errorf("proxy port must be a number: %w", err)
			}
			if cfg.ProxyUser, err = promptDefault("Proxy user (empty for none)", ""); err != nil {
				return nil, err
			}
		}
	}

	answer, err = promptLine("Desktop notifications after uploads? [y/N]: ")
	if err != nil {
		return nil, err
	}
	cfg.NotificationsEnabled = answer == "y" || answer == "yes"

	return cfg, nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (~/.config/filedeck/config)
  2. .env and environment variables (FILEDECK_BACKEND_URL, FILEDECK_IDENTITY_URL, ...)
  3. Command-line flags (--backend-url, --log-file)

Priority: flags > environment > config file > defaults`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path, err := configPath()
			if err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), cfg, path)
			return nil
		},
	}
}

func printConfig(out io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(out, "Current Configuration")
	fmt.Fprintln(out, "=====================")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Backend:")
	fmt.Fprintf(out, "  URL: %s\n", cfg.BackendURL)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Identity:")
	fmt.Fprintf(out, "  URL:            %s\n", orUnset(cfg.IdentityURL))
	fmt.Fprintf(out, "  Anon Key:       %s\n", maskSecret(cfg.IdentityAnonKey))
	fmt.Fprintf(out, "  OAuth Provider: %s\n", cfg.OAuthProvider)
	fmt.Fprintf(out, "  Redirect URL:   %s\n", cfg.RedirectURL)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Proxy Settings:")
	fmt.Fprintf(out, "  Proxy Mode: %s\n", cfg.ProxyMode)
	if cfg.ProxyHost != "" {
		fmt.Fprintf(out, "  Proxy Host: %s\n", cfg.ProxyHost)
		fmt.Fprintf(out, "  Proxy Port: %d\n", cfg.ProxyPort)
	}
	if cfg.ProxyUser != "" {
		fmt.Fprintf(out, "  Proxy User: %s\n", cfg.ProxyUser)
	}
	if cfg.NoProxy != "" {
		fmt.Fprintf(out, "  No Proxy:   %s\n", cfg.NoProxy)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Logging:")
	fmt.Fprintf(out, "  Level: %s\n", cfg.LogLevel)
	fmt.Fprintf(out, "  File:  %s\n", orUnset(cfg.LogFile))
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Notifications: %t\n", cfg.NotificationsEnabled)
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Configuration file: %s\n", path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(out, "  (file does not exist - using defaults)")
	}
}

// maskSecret never displays any part of a secret.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	return fmt.Sprintf("<set (%d chars)>", len(s))
}

func orUnset(s string) string {
	if s == "" {
		return "<not set>"
	}
	return s
}

// newConfigSetCmd creates the 'config set' command.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <section.key> <value>",
		Short: "Change one setting",
		Long: `Change one setting in the configuration file.

Keys:
  backend.url
  identity.url, identity.anon_key, identity.oauth_provider, identity.redirect_url
  proxy.mode, proxy.host, proxy.port, proxy.user, proxy.no_proxy, proxy.warmup
  logging.level, logging.file
  notifications.enabled

Examples:
  filedeck config set backend.url https://files.example.net
  filedeck config set notifications.enabled true`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}

			// Only the file is edited; environment overrides are not persisted
			cfg, err := config.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.SaveConfig(cfg, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cfgFile == "" {
				fmt.Fprintln(out, "Default configuration path:")
			} else {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			}
			fmt.Fprintf(out, "  %s\n\n", path)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: File exists")
				fmt.Fprintf(out, "Size:   %d bytes\n", info.Size())
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create a configuration file with: filedeck config init")
			}
			return nil
		},
	}
}
