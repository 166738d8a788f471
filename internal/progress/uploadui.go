package progress

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/filedeck/filedeck/internal/constants"
)

// UploadUI renders one progress bar per file of a folder upload using mpb.
// When stderr is not a terminal it prints one line per file instead.
type UploadUI struct {
	progress   *mpb.Progress
	out        io.Writer
	folder     string
	isTerminal bool
	totalFiles int

	mu        sync.Mutex
	bars      map[int]*FileBar
	completed int32
	failed    int32
}

// FileBar is the progress bar of a single file within an upload
type FileBar struct {
	bar        *mpb.Bar
	ui         *UploadUI
	index      int
	name       string
	size       int64
	startTime  time.Time
	lastUpdate time.Time
	lastBytes  int64
	done       bool
}

// NewUploadUI creates a new upload UI for a folder with totalFiles files.
func NewUploadUI(folder string, totalFiles int) *UploadUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))
	if isTerminal {
		enableANSIOnWindows(os.Stderr)
	}
	return newUploadUI(os.Stderr, isTerminal, folder, totalFiles)
}

func newUploadUI(out io.Writer, isTerminal bool, folder string, totalFiles int) *UploadUI {
	var p *mpb.Progress
	if isTerminal {
		p = mpb.New(
			mpb.WithOutput(out),
			mpb.WithRefreshRate(constants.ProgressRefreshRate),
			mpb.WithWidth(100),
		)
	} else {
		// Non-TTY: disable progress bars, just use text output
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	return &UploadUI{
		progress:   p,
		out:        out,
		folder:     folder,
		isTerminal: isTerminal,
		totalFiles: totalFiles,
		bars:       make(map[int]*FileBar),
	}
}

// FileBar returns the bar for index, creating it on first use.
// Indexes are 1-based to match the "[i/n]" label.
func (u *UploadUI) FileBar(index int, name string, size int64) *FileBar {
	u.mu.Lock()
	defer u.mu.Unlock()

	if fb, ok := u.bars[index]; ok {
		return fb
	}

	fb := &FileBar{
		ui:         u,
		index:      index,
		name:       name,
		size:       size,
		startTime:  time.Now(),
		lastUpdate: time.Now(),
	}

	label := fmt.Sprintf("[%d/%d] %s", index, u.totalFiles, truncatePath(name, 2))

	if u.isTerminal {
		fb.bar = u.progress.New(size,
			mpb.BarStyle().
				Lbound("[").
				Filler("█").
				Tip("█").
				Padding("░").
				Rbound("]"),
			mpb.PrependDecorators(
				decor.Name(label, decor.WCSyncSpaceR),
			),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
				decor.Name("  "),
				decor.Percentage(decor.WCSyncSpace),
				decor.Name("  "),
				decor.EwmaSpeed(decor.SizeB1024(0), "% .1f", 30, decor.WCSyncSpace),
			),
			mpb.BarRemoveOnComplete(),
		)
	} else {
		fmt.Fprintf(u.out, "Uploading %s (%.1f MiB) → %s\n", label, float64(size)/(1024*1024), u.folder)
	}

	u.bars[index] = fb
	return fb
}

// SetCurrent moves the bar to sent bytes. Updates are throttled to the refresh rate
// so mpb's EWMA speed sees real elapsed time.
func (f *FileBar) SetCurrent(sent int64) {
	if f.bar == nil || f.done {
		return
	}

	now := time.Now()
	elapsed := now.Sub(f.lastUpdate)
	if elapsed < constants.ProgressRefreshRate && sent < f.size {
		return
	}

	if delta := sent - f.lastBytes; delta > 0 {
		f.bar.EwmaIncrBy(int(delta), elapsed)
		f.lastBytes = sent
	}
	f.lastUpdate = now
}

// Complete marks the file as finished. err is the upload's error, if any.
func (f *FileBar) Complete(err error) {
	if f.done {
		return
	}
	f.done = true

	elapsed := time.Since(f.startTime)
	name := truncatePath(f.name, 2)

	var msg string
	if err == nil {
		if f.bar != nil {
			f.bar.SetCurrent(f.size)
			f.bar.SetTotal(f.size, true)
		}
		msg = fmt.Sprintf("✓ %s (%.1f MiB, %s)\n", name, float64(f.size)/(1024*1024), elapsed.Round(time.Second))
		atomic.AddInt32(&f.ui.completed, 1)
	} else {
		if f.bar != nil {
			f.bar.Abort(false)
		}
		msg = fmt.Sprintf("✗ %s: %v\n", name, err)
		atomic.AddInt32(&f.ui.failed, 1)
	}

	f.ui.write(msg)
}

// CompleteAll finishes every bar that is still open with err.
// A folder upload is a single request, so all files succeed or fail together.
func (u *UploadUI) CompleteAll(err error) {
	u.mu.Lock()
	bars := make([]*FileBar, 0, len(u.bars))
	for i := 1; i <= u.totalFiles; i++ {
		if fb, ok := u.bars[i]; ok {
			bars = append(bars, fb)
		}
	}
	u.mu.Unlock()

	for _, fb := range bars {
		fb.Complete(err)
	}
}

// Counts returns how many files completed and failed.
func (u *UploadUI) Counts() (completed, failed int) {
	return int(atomic.LoadInt32(&u.completed)), int(atomic.LoadInt32(&u.failed))
}

func (u *UploadUI) write(msg string) {
	// Write through mpb's writer to avoid corrupting the bars
	if u.isTerminal && u.progress != nil {
		_, _ = u.progress.Write([]byte(msg))
		return
	}
	fmt.Fprint(u.out, msg)
}

// Wait blocks until all progress bars complete
func (u *UploadUI) Wait() {
	if u.progress != nil {
		u.progress.Wait()
	}
}

// Writer returns an io.Writer that safely prints above the progress bars
func (u *UploadUI) Writer() io.Writer {
	if u.progress != nil && u.isTerminal {
		return u.progress
	}
	return u.out
}

// IsTerminal returns true if output is to a terminal (progress bars are active).
func (u *UploadUI) IsTerminal() bool {
	return u.isTerminal
}

// truncatePath shortens a slash-separated relative path to its last N components.
// Example: truncatePath("a/b/c/d/file.txt", 3) → "…/c/d/file.txt"
func truncatePath(p string, maxComponents int) string {
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	if len(parts) <= maxComponents {
		return strings.Join(parts, "/")
	}
	return "…/" + path.Join(parts[len(parts)-maxComponents:]...)
}

// enableANSIOnWindows enables Virtual Terminal processing on Windows for ANSI escape sequences
func enableANSIOnWindows(f *os.File) {
	if runtime.GOOS == "windows" {
		enableWindowsANSI(f)
	}
}
