// Package policy implements the Strategy pattern for grouped blocking rules.
// Each group (social, video, games, streaming) contributes app identifiers and
// address patterns; the union forms the process-wide Set.
package policy

// ShortFormMarker marks a blocked address as short-form video.
const ShortFormMarker = "shorts"

// AppPolicy defines the strategy interface for a group of blocked targets.
type AppPolicy interface {
	// ID returns unique identifier (e.g., "social", "video").
	ID() string

	// Name returns human-readable name for display.
	Name() string

	// Apps returns application identifiers to block.
	// Matched exactly and case-sensitively.
	Apps() []string

	// AddressPatterns returns address substrings to block in browsers.
	// Matched case-insensitively.
	AddressPatterns() []string
}
