// Package progress renders upload progress in the terminal and tracks the
// monotonic percentage reported to callers.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/vbauerster/mpb/v8/decor"
)

// Reporter receives byte counts for one upload.
type Reporter interface {
	Start(total int64, name string)
	Update(sent int64)
	Finish()
	Error(err error)
}

// CLIProgress draws a single byte bar.
type CLIProgress struct {
	bar  *progressbar.ProgressBar
	out  io.Writer
	name string
}

// NewCLIProgress returns a reporter drawing on stderr.
func NewCLIProgress() *CLIProgress {
	return NewCLIProgressTo(os.Stderr)
}

// NewCLIProgressTo returns a reporter drawing on w.
func NewCLIProgressTo(w io.Writer) *CLIProgress {
	return &CLIProgress{out: w}
}

// Start creates the bar. total is the full request body, framing included.
func (p *CLIProgress) Start(total int64, name string) {
	out := p.out
	p.name = name
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription("Uploading "+truncatePath(name, 3)),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update moves the bar to sent bytes.
func (p *CLIProgress) Update(sent int64) {
	if p.bar != nil {
		_ = p.bar.Set64(sent)
	}
}

// Finish fills the bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error clears the bar and reports how far the upload got.
func (p *CLIProgress) Error(err error) {
	if p.bar == nil {
		return
	}
	state := p.bar.State()
	_ = p.bar.Clear()
	if err != nil {
		fmt.Fprintf(p.out, "\nUpload of %s stopped at %s of %s\n",
			p.name, formatSize(state.CurrentNum), formatSize(p.bar.GetMax64()))
	}
}

// NoOpProgress discards progress (non-terminal output).
type NoOpProgress struct{}

// NewNoOpProgress returns a reporter that draws nothing.
func NewNoOpProgress() *NoOpProgress {
	return &NoOpProgress{}
}

func (p *NoOpProgress) Start(total int64, name string) {}
func (p *NoOpProgress) Update(sent int64)              {}
func (p *NoOpProgress) Finish()                        {}
func (p *NoOpProgress) Error(err error)                {}

// formatSize matches the folder bars' byte units.
func formatSize(n int64) string {
	return fmt.Sprintf("% .1f", decor.SizeB1024(n))
}
