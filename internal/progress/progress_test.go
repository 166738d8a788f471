package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTracker_MonotonicFloor(t *testing.T) {
	tr := NewTracker(1000)

	steps := []struct {
		add  int64
		want int
	}{
		{9, 0},
		{1, 1},
		{489, 49},
		{1, 50},
		{499, 99},
		{1, 100},
		{50, 100}, // overshoot is capped
	}
	last := 0
	for i, s := range steps {
		got := tr.Add(s.add)
		if got != s.want {
			t.Errorf("step %d: Add(%d) = %d, want %d", i, s.add, got, s.want)
		}
		if got < last {
			t.Errorf("step %d: percent decreased from %d to %d", i, last, got)
		}
		last = got
	}
}

func TestTracker_CompleteAndReset(t *testing.T) {
	tr := NewTracker(0)
	if tr.Add(10) != 0 {
		t.Error("empty total should stay at 0 until Complete")
	}
	if tr.Complete() != 100 {
		t.Error("Complete should report 100")
	}

	tr = NewTracker(200)
	tr.Add(150)
	tr.Reset()
	if tr.Percent() != 0 || tr.Sent() != 0 {
		t.Errorf("Reset should zero the tracker, got %d%% %d bytes", tr.Percent(), tr.Sent())
	}
	if tr.Total() != 200 {
		t.Errorf("Reset must keep the total, got %d", tr.Total())
	}
}

func TestUploadUI_NonTerminalOutput(t *testing.T) {
	var buf bytes.Buffer
	ui := newUploadUI(&buf, false, "holiday", 2)

	a := ui.FileBar(1, "holiday/a.png", 1024)
	if again := ui.FileBar(1, "holiday/a.png", 1024); again != a {
		t.Error("FileBar should return the existing bar for an index")
	}
	ui.FileBar(2, "holiday/sub/b.zip", 2048)
	a.SetCurrent(512)

	ui.CompleteAll(errors.New("status 500: boom"))
	ui.Wait()

	out := buf.String()
	for _, want := range []string{"[1/2] holiday/a.png", "[2/2] …/sub/b.zip", "✗ holiday/a.png: status 500: boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	completed, failed := ui.Counts()
	if completed != 0 || failed != 2 {
		t.Errorf("Counts() = %d, %d; want 0, 2", completed, failed)
	}

	// Completing twice must not double count
	a.Complete(nil)
	if c, f := ui.Counts(); c != 0 || f != 2 {
		t.Errorf("second Complete changed counts to %d, %d", c, f)
	}
}

func TestTruncatePath(t *testing.T) {
	tests := map[string]string{
		"a.png":          "a.png",
		"docs/a.png":     "docs/a.png",
		"docs/x/y/a.png": "…/y/a.png",
		"/abs/dir/a.png": "…/dir/a.png",
	}
	for in, want := range tests {
		if got := truncatePath(in, 2); got != want {
			t.Errorf("truncatePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCLIProgress_ErrorReportsPosition(t *testing.T) {
	var buf bytes.Buffer
	p := NewCLIProgressTo(&buf)
	p.Start(2048, "a.png")
	p.Update(1024)
	p.Error(errors.New("network error"))

	out := buf.String()
	if !strings.Contains(out, "Upload of a.png stopped at") || !strings.Contains(out, "of 2.0 KiB") {
		t.Errorf("expected stop position, got %q", out)
	}
}

func TestCLIProgress_ErrorBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	NewCLIProgressTo(&buf).Error(errors.New("refused"))
	if buf.Len() != 0 {
		t.Errorf("expected no output before Start, got %q", buf.String())
	}
}
