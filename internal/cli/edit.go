package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/filedeck/filedeck/internal/models"
	"github.com/filedeck/filedeck/internal/registry"
)

func parseKind(s string) (models.ItemKind, error) {
	kind, ok := models.ParseItemKind(strings.ToLower(s))
	if !ok {
		return "", fmt.Errorf("unknown item kind %q: use file or folder", s)
	}
	return kind, nil
}

// newRenameCmd creates the 'rename' command.
func newRenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <file|folder> <id> <new-name>",
		Short: "Rename a file or folder",
		Long: `Rename a stored file or folder.

A blank name is ignored and nothing is sent.

Examples:
  filedeck rename file 42 "holiday 2024.png"
  filedeck rename folder 7 photos`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			id, newName := models.ID(args[1]), args[2]

			out := cmd.OutOrStdout()
			if strings.TrimSpace(newName) == "" {
				fmt.Fprintln(out, "Name is blank; nothing renamed")
				return nil
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := GetContext()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}

			if err := a.registry(nil).Rename(ctx, sess, kind, id, newName); err != nil {
				return err
			}
			fmt.Fprintf(out, "Renamed %s %s to %q\n", kind, id, strings.TrimSpace(newName))
			return nil
		},
	}

	return cmd
}

// newDeleteCmd creates the 'delete' command.
func newDeleteCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:     "delete <file|folder> <id>",
		Aliases: []string{"rm"},
		Short:   "Move a file or folder to trash",
		Long: `Move a stored file or folder to trash.

You are asked to confirm unless --yes is given.

Examples:
  filedeck delete file 42
  filedeck delete folder 7 --yes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			id := models.ID(args[1])

			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := GetContext()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}

			removed, err := a.registry(nil, registry.WithConfirmer(confirmer(assumeYes))).Remove(ctx, sess, kind, id)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s %s to trash\n", kind, id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// newShareCmd creates the 'share' command.
func newShareCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "share <file-id> <email>",
		Short: "Share a file and print its link",
		Long: `Grant another user access to a file and print a signed link to it.

Roles: ` + models.RoleNames() + `

If access is granted but the link cannot be fetched, the share still exists;
run 'filedeck share link <file-id>' to fetch the link again.

Examples:
  filedeck share 42 bo@example.net
  filedeck share 42 bo@example.net --role editor
  filedeck share link 42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileID, email := models.ID(args[0]), args[1]

			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := GetContext()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}

			link, err := a.registry(nil).Share(ctx, sess, fileID, email, models.Role(role))
			var linkErr *registry.ShareLinkError
			if errors.As(err, &linkErr) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Shared with %s as %s, but the link could not be fetched.\n", linkErr.Email, linkErr.Role)
				fmt.Fprintf(cmd.ErrOrStderr(), "Run 'filedeck share link %s' to try again.\n", linkErr.FileID)
				return err
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Shared with %s as %s\n%s\n", strings.TrimSpace(email), role, link)
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", string(models.RoleViewer), "Access level: "+models.RoleNames())

	cmd.AddCommand(newShareLinkCmd())

	return cmd
}

// newShareLinkCmd creates the 'share link' command.
func newShareLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <file-id>",
		Short: "Fetch a file's signed link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := GetContext()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}

			link, err := a.registry(nil).SignedURL(ctx, sess, models.ID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
}
