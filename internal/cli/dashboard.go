package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/filedeck/filedeck/internal/constants"
	"github.com/filedeck/filedeck/internal/models"
	"github.com/filedeck/filedeck/internal/registry"
	"github.com/filedeck/filedeck/internal/view"
)

// Dashboard record sources
const (
	sourceBackend = "backend"
	sourceTables  = "tables"
)

// newDashboardCmd creates the 'dashboard' command.
func newDashboardCmd() *cobra.Command {
	var source string
	var limit int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show storage usage and recent uploads",
		Long: `Show how your storage quota is used, by category, and your most recent uploads.

Records are read from the backend by default. With --source tables they are
read directly from the identity provider's files and folder tables.

Examples:
  filedeck dashboard
  filedeck dashboard --limit 25
  filedeck dashboard --source tables`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source != sourceBackend && source != sourceTables {
				return fmt.Errorf("--source must be %q or %q, got %q", sourceBackend, sourceTables, source)
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

			var backend registry.Backend
			if source == sourceTables {
				idc, err := a.identityClient()
				if err != nil {
					return err
				}
				backend = tableBackend{Client: a.api, idc: idc}
			}

			snap, err := a.registry(backend).Refresh(ctx, sess)
			if err != nil {
				if !registry.IsPartialFailure(err) {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}

			printDashboard(cmd.OutOrStdout(), sess.User, snap, limit)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", sourceBackend, "Where records are read from: backend or tables")
	cmd.Flags().IntVarP(&limit, "limit", "n", constants.DefaultRecentLimit, "Number of recent uploads to show (0 = all)")

	return cmd
}

func printDashboard(out io.Writer, user *models.User, snap registry.Snapshot, limit int) {
	if user != nil {
		fmt.Fprintf(out, "Welcome, %s\n\n", user.Name)
	}

	u := snap.Usage
	fmt.Fprintf(out, "Storage (%s of %s used)\n", models.FormatGiB(u.Used()), models.FormatGiB(u.Quota))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range models.FileCategories {
		fmt.Fprintf(tw, "  %s\t%s\n", c, models.FormatGiB(u.Bytes(c)))
	}
	fmt.Fprintf(tw, "  %s\t%d\n", models.CategoryFolders, u.FolderCount)
	fmt.Fprintf(tw, "  %s\t%s\n", models.CategoryRemaining, models.FormatGiB(u.Remaining()))
	tw.Flush()

	fmt.Fprintln(out)
	recent := view.Recent(snap.Items, limit)
	if len(recent) == 0 {
		fmt.Fprintln(out, "No uploads yet")
		return
	}

	fmt.Fprintln(out, "Recent uploads")
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  TYPE\tNAME\tSIZE\tDATE")
	for _, it := range recent {
		size := "-"
		if it.Size != nil {
			size = formatBytes(*it.Size)
		}
		typ := it.Type
		if typ == "" {
			typ = string(view.Categorize(it.Name))
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", typ, it.Name, size, formatDate(it.Date))
	}
	tw.Flush()

	if len(recent) < len(snap.Items) {
		fmt.Fprintf(out, "(Showing %d of %d. Use --limit to change)\n", len(recent), len(snap.Items))
	}
}
