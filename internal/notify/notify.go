// Package notify sends desktop notifications when long uploads finish.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
package notify

import (
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/filedeck/filedeck/internal/logging"
	"github.com/filedeck/filedeck/internal/models"
)

// Notifier handles desktop notifications.
type Notifier struct {
	logger  *logging.Logger
	enabled bool
	cfg     Config
	mu      sync.RWMutex

	// send delivers a notification; replaced in tests
	send func(title, message string) error
}

// Config holds notification configuration.
type Config struct {
	// Enabled determines if notifications are sent.
	Enabled bool

	// ShowUploadComplete shows notifications for successful uploads.
	ShowUploadComplete bool

	// ShowUploadFailed shows notifications for failed uploads.
	ShowUploadFailed bool
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:            true,
		ShowUploadComplete: true,
		ShowUploadFailed:   true,
	}
}

// NewNotifier creates a new notifier with the given configuration.
func NewNotifier(cfg *Config, logger *logging.Logger) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}

	return &Notifier{
		logger:  logger,
		enabled: cfg.Enabled,
		cfg:     *cfg,
		send: func(title, message string) error {
			// Windows toast, macOS notification center, D-Bus on Linux
			return beeep.Notify(title, message, "")
		},
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// UploadComplete announces a finished upload of name (a file or a folder).
func (n *Notifier) UploadComplete(name string, bytes int64) {
	if !n.IsEnabled() || !n.cfg.ShowUploadComplete {
		return
	}

	title := "Upload Complete"
	message := fmt.Sprintf("\"%s\" uploaded (%s)", truncate(name, 40), models.FormatGiB(bytes))

	if err := n.send(title, message); err != nil {
		n.logger.Warn().Err(err).Str("name", name).Msg("Failed to send upload complete notification")
	}
}

// UploadFailed announces a failed upload of name.
func (n *Notifier) UploadFailed(name string, errorMsg string) {
	if !n.IsEnabled() || !n.cfg.ShowUploadFailed {
		return
	}

	title := "Upload Failed"
	message := fmt.Sprintf("\"%s\" failed:\n%s", truncate(name, 40), truncate(errorMsg, 100))

	if err := n.send(title, message); err != nil {
		n.logger.Warn().Err(err).Str("name", name).Msg("Failed to send upload failed notification")
	}
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
