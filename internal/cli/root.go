// Package cli provides the command-line interface for filedeck.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/filedeck/filedeck/internal/api"
	"github.com/filedeck/filedeck/internal/config"
	"github.com/filedeck/filedeck/internal/http"
	"github.com/filedeck/filedeck/internal/logging"
	"github.com/filedeck/filedeck/internal/version"
)

var (
	// Global flags
	cfgFile    string
	backendURL string
	logFile    string
	verbose    bool
	debug      bool
	notifyFlag bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filedeck",
		Short: "filedeck - upload, browse and share your files from the terminal",
		Long: `filedeck ` + version.Version + ` - Built: ` + version.BuildTime + `
Command-line client for the filedeck file storage service.

Sign in, upload files and folders, check your storage usage,
and rename, delete or share what you have stored.

Getting started:
  filedeck config init
  filedeck login
  filedeck upload report.pdf
  filedeck dashboard`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger
			logger = logging.NewDefaultCLILogger()
			if err := config.LoadDotEnv(); err != nil {
				logger.Warn().Err(err).Msg("ignoring unreadable .env file")
			}

			cfg, err := loadConfig()
			if err != nil {
				// Commands that need the config report the error themselves
				logger.Debug().Err(err).Msg("config not loaded")
				cfg = config.NewConfig()
			}
			applyLogSettings(cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Close()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "Backend URL (overrides config and environment)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file (rotated)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")
	rootCmd.PersistentFlags().BoolVar(&notifyFlag, "notify", false, "Send a desktop notification when an upload finishes")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Enable tab-completion for filedeck commands",
		Long: `Generate shell completion scripts to enable tab-completion for filedeck.

QUICK START:

  zsh:
    mkdir -p ~/.zsh/completions
    filedeck completion zsh > ~/.zsh/completions/_filedeck
    # Then add to ~/.zshrc: fpath=(~/.zsh/completions $fpath)

  bash (Linux):
    filedeck completion bash | sudo tee /etc/bash_completion.d/filedeck

For detailed instructions, use: filedeck completion [shell] --help`,
	}
	rootCmd.AddCommand(completionCmd)

	completionCmd.AddCommand(&cobra.Command{
		Use:   "bash",
		Short: "Generate bash completion script",
		Long: `Generate the autocompletion script for bash.

QUICK TEST (temporary, current session only):
  source <(filedeck completion bash)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenBashCompletion(cmd.OutOrStdout())
		},
	})

	completionCmd.AddCommand(&cobra.Command{
		Use:   "zsh",
		Short: "Generate zsh completion script",
		Long: `Generate the autocompletion script for zsh.

QUICK TEST (temporary, current session only):
  source <(filedeck completion zsh)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	})

	completionCmd.AddCommand(&cobra.Command{
		Use:   "fish",
		Short: "Generate fish completion script",
		Long: `Generate the autocompletion script for fish.

  filedeck completion fish > ~/.config/fish/completions/filedeck.fish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})

	completionCmd.AddCommand(&cobra.Command{
		Use:   "powershell",
		Short: "Generate PowerShell completion script",
		Long: `Generate the autocompletion script for PowerShell.

  filedeck completion powershell >> $PROFILE`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenPowerShellCompletion(cmd.OutOrStdout())
		},
	})

	// Disable default completion command (we're adding our own above)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	// Create a context that can be cancelled by signals
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Loop so repeated Ctrl+C does not block the sender
	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	// Clean up signal handler
	signal.Stop(sigChan)
	close(sigChan)

	if err != nil {
		printHint(err)
	}
	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newSignupCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newUploadFolderCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newShareCmd())
	rootCmd.AddCommand(newConfigCmd())

	AddShortcuts(rootCmd)
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

func applyLogSettings(cfg *config.Config) {
	level := logging.ParseLevel(cfg.LogLevel)
	if verbose || debug {
		level = zerolog.DebugLevel
	}
	logging.SetGlobalLevel(level)

	if cfg.LogFile != "" {
		if err := logger.EnableFile(cfg.LogFile); err != nil {
			logger.Warn().Err(err).Str("path", cfg.LogFile).Msg("could not open log file")
		}
	}
}

// printHint adds a one-line suggestion under cobra's error output.
func printHint(err error) {
	if hint := hintFor(err); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
}

// hintFor picks the suggestion for err. Validation failures and cancellations
// already say everything and get none.
func hintFor(err error) string {
	switch {
	case err == nil, errors.Is(err, context.Canceled), api.IsValidation(err):
		return ""
	case api.IsAuthRequired(err):
		return http.Hint(http.ErrorTypeAuth)
	case api.IsNetworkError(err):
		return http.Hint(http.ErrorTypeNetwork)
	default:
		return http.Hint(http.ClassifyError(err))
	}
}
