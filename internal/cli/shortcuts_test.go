package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

// TestShortcutCommands tests that all shortcut commands exist
func TestShortcutCommands(t *testing.T) {
	shortcuts := []struct {
		name     string
		createFn func() *cobra.Command
		flags    []string
	}{
		{"ls", newLsShortcut, []string{"expand", "include", "exclude", "path", "search"}},
		{"link", newLinkShortcut, nil},
	}

	for _, sc := range shortcuts {
		t.Run(sc.name, func(t *testing.T) {
			cmd := sc.createFn()
			if cmd.Name() != sc.name {
				t.Errorf("Expected name %q, got %q", sc.name, cmd.Name())
			}
			if cmd.RunE == nil {
				t.Errorf("Shortcut command '%s' has no RunE function", sc.name)
			}
			if cmd.Short == "" || cmd.Long == "" {
				t.Errorf("Shortcut command '%s' is missing its descriptions", sc.name)
			}
			for _, f := range sc.flags {
				if cmd.Flags().Lookup(f) == nil {
					t.Errorf("--%s flag not found on %s", f, sc.name)
				}
			}
		})
	}
}

// TestAddShortcuts tests that AddShortcuts adds commands to root
func TestAddShortcuts(t *testing.T) {
	rootCmd := NewRootCmd()
	AddShortcuts(rootCmd)

	found := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, expected := range []string{"ls", "link"} {
		if !found[expected] {
			t.Errorf("Shortcut command '%s' not found in root command", expected)
		}
	}
}
