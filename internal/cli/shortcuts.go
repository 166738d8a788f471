// Package cli provides command shortcuts for common operations.
package cli

import (
	"github.com/spf13/cobra"
)

// AddShortcuts adds shortcut commands to the root command.
// Shortcuts provide convenient aliases for commonly-used operations.
func AddShortcuts(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newLsShortcut())
	rootCmd.AddCommand(newLinkShortcut())
}

// newLsShortcut creates the 'ls' shortcut command.
// Shortcut for: files list
func newLsShortcut() *cobra.Command {
	cmd := newFilesListCmd()
	cmd.Use = "ls"
	cmd.Short = "List files (shortcut for 'files list')"
	cmd.Long = `Shortcut for listing files and folders.

Equivalent to: filedeck files list

Examples:
  filedeck ls
  filedeck ls --expand 12
  filedeck ls --include "*.zip"`
	return cmd
}

// newLinkShortcut creates the 'link' shortcut command.
// Shortcut for: share link
func newLinkShortcut() *cobra.Command {
	cmd := newShareLinkCmd()
	cmd.Use = "link <file-id>"
	cmd.Short = "Print a file's signed link (shortcut for 'share link')"
	cmd.Long = `Shortcut for fetching a file's signed link.

Equivalent to: filedeck share link <file-id>`
	return cmd
}
