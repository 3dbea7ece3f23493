package feed

import (
	"sync"
	"time"

	"github.com/rafiq-app/rafiq/internal/group"
)

// SuppressFilter decides whether a newly observed alert should surface a
// local notification. It guards against three things: notifying the author
// of their own write (every write echoes back through the subscription),
// notifying twice for the same entry, and re-notifying historical entries
// replayed on reconnect.
type SuppressFilter struct {
	window time.Duration

	mu      sync.Mutex
	lastKey string
}

// NewSuppressFilter creates a filter with the given freshness window for
// notification-type alerts.
func NewSuppressFilter(window time.Duration) *SuppressFilter {
	return &SuppressFilter{window: window}
}

// ShouldNotify reports whether the alert keyed by key warrants a local
// notification for the session identified by selfID/selfName. The key is
// recorded regardless of the outcome, so each observed alert is judged at
// most once.
func (f *SuppressFilter) ShouldNotify(key string, a group.Alert, selfID, selfName string, now time.Time) bool {
	if key == "" {
		return false
	}

	f.mu.Lock()
	seen := key == f.lastKey
	f.lastKey = key
	f.mu.Unlock()
	if seen {
		return false
	}

	// Never notify the originating user of their own write.
	if a.FromID == selfID || a.From == selfName {
		return false
	}

	// Panic alerts are rare and high priority; the most-recent-only
	// inspection already bounds them to one notification per new alert.
	if a.Type == group.AlertPanic {
		return true
	}

	// Notification-type alerts older than the window are replayed history.
	age := now.Sub(time.UnixMilli(a.Timestamp))
	return age <= f.window
}

// Reset forgets the last observed key, e.g. when detaching from a group.
func (f *SuppressFilter) Reset() {
	f.mu.Lock()
	f.lastKey = ""
	f.mu.Unlock()
}
