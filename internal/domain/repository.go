package domain

import (
	"context"
	"time"
)

// UINode is a node of a foreground application's accessibility tree.
// The tree is owned by another process and may change or be invalidated
// at any time, so every accessor can fail.
type UINode interface {
	// Text returns the node's displayed text.
	Text() (string, error)

	// Label returns the accessibility label (content description).
	Label() (string, error)

	// ViewID returns the fully qualified view identifier, e.g. "com.android.chrome:id/url_bar".
	ViewID() (string, error)

	// ChildCount returns the number of direct children.
	ChildCount() (int, error)

	// Child returns the i-th child. A nil node with nil error means the slot is empty.
	Child(i int) (UINode, error)

	// FindByViewID returns descendants (including self) with the given view identifier.
	FindByViewID(id string) ([]UINode, error)

	// Release frees the handle. Calling it more than once is allowed.
	Release()
}

// NotificationSource is the push feed of UI notifications (accessibility events).
type NotificationSource interface {
	// Subscribe starts delivery. The channel is closed when ctx is canceled
	// or the underlying feed ends.
	Subscribe(ctx context.Context) (<-chan Notification, error)
}

// ForegroundQuery answers which application was most recently in the foreground.
type ForegroundQuery interface {
	// MostRecent returns the identifier of the app most recently in the foreground
	// within the trailing window. Returns "" with nil error when nothing qualifies,
	// and ErrForegroundUnavailable when the query cannot be served at all.
	MostRecent(ctx context.Context, window time.Duration) (string, error)
}

// Presenter shows the interruption screen and offers a back primitive.
type Presenter interface {
	// Back asks the OS to navigate back from the current foreground surface.
	Back(ctx context.Context) error

	// Present shows the full-screen interruption for the given category.
	Present(ctx context.Context, category BlockCategory) error

	// Notify shows a passive, non-blocking message (screen-time reminders).
	Notify(ctx context.Context, message string) error
}

// PolicySet is the immutable classification rule set.
type PolicySet interface {
	// IsBlockedApp is an exact, case-sensitive membership test.
	IsBlockedApp(appID string) bool

	// IsBrowser reports whether appID is a monitored browser.
	IsBrowser(appID string) bool

	// IsAddressBlocked reports whether any blocked pattern is a
	// case-insensitive substring of address.
	IsAddressBlocked(address string) bool

	// IsAlwaysAllowed reports whether appID must never be blocked.
	IsAlwaysAllowed(appID string) bool
}

// AddressExtractor recovers the displayed address from a browser snapshot.
type AddressExtractor interface {
	// Extract returns the first qualifying address, or false when none is found.
	// It never fails: lookup errors count as "no match".
	Extract(appID string, root UINode) (string, bool)
}

// DebounceGate suppresses repeated decisions for the same target.
type DebounceGate interface {
	// Submit atomically accepts and records d, or rejects it as a duplicate.
	Submit(d BlockDecision) bool
}

// BlockAction dismisses the blocked surface and presents the interruption.
type BlockAction interface {
	// Execute is fire-and-forget: failures are logged, not returned.
	Execute(ctx context.Context, d BlockDecision)
}

// BlockJournal stores accepted block decisions.
// Implementation: SQLCipher encrypted SQLite database.
type BlockJournal interface {
	// Record appends an accepted decision.
	Record(rec BlockRecord) error

	// Recent returns the latest records, newest first.
	Recent(limit int) ([]BlockRecord, error)

	// CountSince returns the number of blocks per category since t.
	CountSince(t time.Time) (map[BlockCategory]int, error)

	// Close releases resources (e.g., database connection).
	Close() error
}

// KeyProvider abstracts the source of encryption keys.
type KeyProvider interface {
	// GetKey returns the encryption key bytes.
	GetKey() ([]byte, error)

	// StoreKey persists a new encryption key.
	StoreKey(key []byte) error

	// KeyExists checks if a key has been generated.
	KeyExists() bool
}

// MonitorMetrics receives counters from the monitoring pipeline.
// Implementation: Prometheus counters.
type MonitorMetrics interface {
	// NotificationReceived counts an evaluated notification.
	NotificationReceived(kind EventKind)

	// DecisionSubmitted counts a decision and whether the gate accepted it.
	DecisionSubmitted(source string, category BlockCategory, accepted bool)

	// PollSkipped counts a poll tick that produced no foreground app.
	PollSkipped(reason string)
}

// Clock abstracts wall time so debounce windows can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
