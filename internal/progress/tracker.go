package progress

// Tracker converts a running byte count into a whole-number percentage that
// never decreases between Reset calls. It is not safe for concurrent use;
// uploads drive it from the single goroutine reading the request body.
type Tracker struct {
	total   int64
	sent    int64
	percent int
}

// NewTracker creates a tracker for total bytes.
func NewTracker(total int64) *Tracker {
	return &Tracker{total: total}
}

// Add records n more bytes and returns the current percentage.
func (t *Tracker) Add(n int64) int {
	if n > 0 {
		t.sent += n
	}
	if t.total <= 0 {
		return t.percent
	}

	sent := t.sent
	if sent > t.total {
		sent = t.total
	}
	// floor(sent*100/total)
	if p := int(sent * 100 / t.total); p > t.percent {
		t.percent = p
	}
	return t.percent
}

// Complete forces the percentage to 100.
func (t *Tracker) Complete() int {
	if t.total > 0 {
		t.sent = t.total
	}
	t.percent = 100
	return t.percent
}

// Reset returns the tracker to 0 after a failed attempt.
func (t *Tracker) Reset() {
	t.sent = 0
	t.percent = 0
}

// Sent is the number of bytes recorded so far.
func (t *Tracker) Sent() int64 {
	return t.sent
}

// Total is the expected number of bytes.
func (t *Tracker) Total() int64 {
	return t.total
}

// Percent is the current percentage.
func (t *Tracker) Percent() int {
	return t.percent
}
