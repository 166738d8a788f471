package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/filedeck/filedeck/internal/progress"
	"github.com/filedeck/filedeck/internal/upload"
)

// newUploadCmd creates the 'upload' command.
func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file",
		Long: `Upload a single file to your filedeck storage.

Progress is shown as a byte bar when stderr is a terminal. Uploads are never
retried; run the command again if it fails.

Examples:
  filedeck upload report.pdf
  filedeck upload holiday.png --notify`,
		Args: cobra.ExactArgs(1),
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
			up, err := a.uploader()
			if err != nil {
				return err
			}

			src, err := upload.FileSource(args[0])
			if err != nil {
				return err
			}

			var rep progress.Reporter = progress.NewNoOpProgress()
			if term.IsTerminal(int(os.Stderr.Fd())) {
				rep = progress.NewCLIProgress()
			}

			GetLogger().Debug().Str("file", args[0]).Int64("size", src.Size).Msg("Uploading file")
			out, err := up.UploadFile(ctx, sess, src, upload.Options{OnProgress: reporterProgress(rep, src.Name)})
			notifier := a.notifier()
			if err != nil {
				rep.Error(err)
				notifier.UploadFailed(src.Name, err.Error())
				return err
			}
			rep.Finish()
			notifier.UploadComplete(src.Name, src.Size)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Uploaded %s (%s) in %s\n", src.Name, formatBytes(src.Size), out.Elapsed.Round(time.Millisecond))
			if out.FileURL != "" {
				fmt.Fprintf(w, "URL: %s\n", out.FileURL)
			}
			return nil
		},
	}

	return cmd
}

// newUploadFolderCmd creates the 'upload-folder' command.
func newUploadFolderCmd() *cobra.Command {
	var name string
	var includeHidden bool

	cmd := &cobra.Command{
		Use:   "upload-folder <dir>",
		Short: "Upload a folder and everything in it",
		Long: `Upload a local directory as one folder in a single request.

Files keep their paths relative to the directory. Hidden files and directories
are skipped unless --include-hidden is given.

Examples:
  filedeck upload-folder ./photos
  filedeck upload-folder ./build --name release-1.2
  filedeck upload-folder ./project --include-hidden`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := GetContext()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}
			up, err := a.uploader()
			if err != nil {
				return err
			}

			folder, err := upload.FolderFromDir(args[0], upload.FolderOptions{IncludeHidden: includeHidden})
			if err != nil {
				return err
			}
			if name != "" {
				folder.Name = name
			}
			if len(folder.Files) == 0 {
				return fmt.Errorf("%s contains no files to upload", filepath.Clean(args[0]))
			}

			log.Info().
				Str("folder", folder.Name).
				Int("files", len(folder.Files)).
				Int64("bytes", folder.TotalSize()).
				Msg("Uploading folder")

			ui := progress.NewUploadUI(folder.Name, len(folder.Files))

			// Keep log lines above the bars while they render
			prevOutput := log.Output()
			log.SetOutput(ui.Writer())
			out, err := up.UploadFolder(ctx, sess, folder, upload.Options{OnProgress: folderProgress(ui)})
			ui.CompleteAll(err)
			ui.Wait()
			log.SetOutput(prevOutput)

			notifier := a.notifier()
			if err != nil {
				notifier.UploadFailed(folder.Name, err.Error())
				return err
			}
			notifier.UploadComplete(folder.Name, folder.TotalSize())

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Uploaded folder %s: %d files, %s\n", folder.Name, len(folder.Files), formatBytes(folder.TotalSize()))
			if out.FolderURL != "" {
				fmt.Fprintf(w, "URL: %s\n", out.FolderURL)
			}
			if out.Message != "" {
				fmt.Fprintf(w, "Server: %s\n", out.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Folder name (default: the directory name)")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "Include hidden files and directories")

	return cmd
}

// reporterProgress drives a byte reporter from upload progress. The bar is
// started on the first tick, once the body length is known.
func reporterProgress(rep progress.Reporter, name string) func(upload.Progress) {
	started := false
	return func(p upload.Progress) {
		if !started {
			rep.Start(p.Total, name)
			started = true
		}
		rep.Update(p.Sent)
	}
}

// folderProgress moves the bar of the file currently on the wire.
func folderProgress(ui *progress.UploadUI) func(upload.Progress) {
	return func(p upload.Progress) {
		if p.FileIndex == 0 {
			return
		}
		ui.FileBar(p.FileIndex, p.File, p.FileSize).SetCurrent(p.FileSent)
	}
}
