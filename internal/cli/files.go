// Package cli provides file listing commands.
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/filedeck/filedeck/internal/models"
	"github.com/filedeck/filedeck/internal/registry"
	"github.com/filedeck/filedeck/internal/util/filter"
	"github.com/filedeck/filedeck/internal/view"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Browse your stored files and folders",
		Long:  `Commands for browsing the files and folders in your filedeck storage.`,
	}

	filesCmd.AddCommand(newFilesListCmd())

	return filesCmd
}

// newFilesListCmd creates the 'files list' command.
func newFilesListCmd() *cobra.Command {
	var expand string
	var includePatterns string
	var excludePatterns string
	var pathPatterns string
	var searchTerms string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List files, grouped by folder",
		Long: `List your folders and files as a table.

Folders are listed first with the number of files they hold. Use --expand
with a folder id to show the files inside it; only one folder is expanded
at a time. Files that belong to no folder are listed at the top level.

Examples:
  # List everything
  filedeck files list

  # Show the files of folder 12
  filedeck files list --expand 12

  # Only images, skipping thumbnails
  filedeck files list --include "*.png,*.jpg" --exclude "thumb*"

  # Names containing both terms
  filedeck files list --search "invoice 2024"

  # Files at any depth named report.pdf inside uploaded folders
  filedeck files list --path "**/report.pdf"`,
		Args: cobra.NoArgs,
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

			snap, err := a.registry(nil).Refresh(ctx, sess)
			if err != nil {
				if !registry.IsPartialFailure(err) {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}

			cfg := filter.Config{
				Include:     filter.ParsePatternList(includePatterns),
				Exclude:     filter.ParsePatternList(excludePatterns),
				PathInclude: filter.ParsePatternList(pathPatterns),
				Search:      strings.Fields(searchTerms),
			}
			files, folders := filterRecords(snap.Files, snap.Folders, cfg)

			tree := view.BuildTree(files, folders)
			state := view.ViewState{}
			if expand != "" {
				state = state.Toggle(models.ID(expand))
			}
			state = state.Prune(tree)
			if expand != "" && !state.IsExpanded(models.ID(expand)) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: no folder with id %s\n", expand)
			}

			rows := state.Rows(tree)
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No files found")
				return nil
			}
			renderRows(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&expand, "expand", "", "Folder id whose files are shown")
	cmd.Flags().StringVar(&includePatterns, "include", "", "Comma-separated glob patterns to include (e.g. \"*.png,*.zip\")")
	cmd.Flags().StringVar(&excludePatterns, "exclude", "", "Comma-separated glob patterns to exclude")
	cmd.Flags().StringVar(&pathPatterns, "path", "", "Comma-separated path patterns, ** matches any depth")
	cmd.Flags().StringVarP(&searchTerms, "search", "s", "", "Space-separated terms that must all appear in the name")

	return cmd
}

// filterRecords applies cfg to file names. A folder stays when its own name
// passes or when any of its files does.
func filterRecords(files []models.FileRecord, folders []models.FolderRecord, cfg filter.Config) ([]models.FileRecord, []models.FolderRecord) {
	if cfg.IsZero() {
		return files, folders
	}
	kept := view.FilterFiles(files, cfg)

	hasMatch := make(map[models.ID]bool)
	for _, f := range kept {
		if f.InFolder() {
			hasMatch[*f.FolderID] = true
		}
	}

	var keptFolders []models.FolderRecord
	for _, fo := range folders {
		if hasMatch[fo.ID] || cfg.Match(fo.Name) {
			keptFolders = append(keptFolders, fo)
		}
	}
	return kept, keptFolders
}

// renderRows prints the files table.
func renderRows(out io.Writer, rows []view.Row) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tDATE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, rowName(r), rowSize(r), formatDate(r.Date))
	}
	tw.Flush()
}

func rowName(r view.Row) string {
	switch {
	case r.Kind == models.KindFolder && r.Expanded:
		return "▾ " + r.Name + "/"
	case r.Kind == models.KindFolder:
		return "▸ " + r.Name + "/"
	case r.Depth > 0:
		return strings.Repeat("  ", r.Depth) + "└ " + r.Name
	default:
		return r.Name
	}
}

func rowSize(r view.Row) string {
	if r.Size == nil {
		if r.Children == 1 {
			return "1 file"
		}
		return fmt.Sprintf("%d files", r.Children)
	}
	return formatBytes(*r.Size)
}

func formatDate(ts models.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

// formatBytes renders a size with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
