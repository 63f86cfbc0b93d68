// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import (
	"errors"
	"time"
)

// EventKind tags a notification from the UI instrumentation layer.
type EventKind string

const (
	KindForegroundChanged EventKind = "foreground_changed"
	KindContentChanged    EventKind = "content_changed"
	KindTextChanged       EventKind = "text_changed"
	KindFocusChanged      EventKind = "focus_changed"
)

// Valid reports whether k is one of the known notification kinds.
func (k EventKind) Valid() bool {
	switch k {
	case KindForegroundChanged, KindContentChanged, KindTextChanged, KindFocusChanged:
		return true
	}
	return false
}

// Notification is a single event pushed by the OS notification feed.
type Notification struct {
	AppID string
	Kind  EventKind
	Root  UINode // may be nil
}

// ForegroundContext is the application currently visible to the user, with an
// optional UI snapshot. Built fresh on every event or poll tick.
type ForegroundContext struct {
	AppID string
	Root  UINode
}

// BlockCategory distinguishes why a block was triggered.
type BlockCategory string

const (
	CategoryApp        BlockCategory = "app"
	CategoryURL        BlockCategory = "url"
	CategoryShortVideo BlockCategory = "shorts"
)

// BlockDecision is produced by classification and consumed by the blocker.
type BlockDecision struct {
	Target   string // debounce key
	Category BlockCategory
	AppID    string
	Address  string // empty for app blocks
}

// BlockRecord is a persisted accepted block decision.
type BlockRecord struct {
	Target    string
	Category  BlockCategory
	AppID     string
	Address   string
	BlockedAt time.Time
}

var (
	// ErrForegroundUnavailable means the foreground-app query cannot be served
	// (no permission, platform unsupported). Polling degrades to a no-op.
	ErrForegroundUnavailable = errors.New("foreground app query unavailable")

	// ErrNodeStale means a snapshot node was invalidated while being read.
	ErrNodeStale = errors.New("ui node is stale")

	// ErrSourceClosed means the notification feed has ended.
	ErrSourceClosed = errors.New("notification source closed")
)
