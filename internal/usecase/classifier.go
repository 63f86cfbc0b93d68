package usecase

import (
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
	"github.com/eliteGoblin/focusd/focus_mon/internal/policy"
)

// Classifier turns a foreground context into a block decision.
// Both monitors share it; only the way they acquire the context differs.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	policy    domain.PolicySet
	extractor domain.AddressExtractor
}

// NewClassifier creates a classifier.
func NewClassifier(ps domain.PolicySet, ex domain.AddressExtractor) *Classifier {
	return &Classifier{policy: ps, extractor: ex}
}

// Classify evaluates fc for a notification of the given kind.
//
// Precedence: always-allowed apps are never blocked, even when they are
// also listed as blocked. App blocks only fire on foreground changes.
// Browsers are checked for blocked addresses on every kind of notification.
func (c *Classifier) Classify(kind domain.EventKind, fc domain.ForegroundContext) (domain.BlockDecision, bool) {
	if fc.AppID == "" || c.policy.IsAlwaysAllowed(fc.AppID) {
		return domain.BlockDecision{}, false
	}

	if kind == domain.KindForegroundChanged && c.policy.IsBlockedApp(fc.AppID) {
		return domain.BlockDecision{
			Target:   fc.AppID,
			Category: domain.CategoryApp,
			AppID:    fc.AppID,
		}, true
	}

	if !c.policy.IsBrowser(fc.AppID) || fc.Root == nil {
		return domain.BlockDecision{}, false
	}

	address, ok := c.extractor.Extract(fc.AppID, fc.Root)
	if !ok || !c.policy.IsAddressBlocked(address) {
		return domain.BlockDecision{}, false
	}

	return domain.BlockDecision{
		Target:   AddressTarget(address),
		Category: AddressCategory(address),
		AppID:    fc.AppID,
		Address:  address,
	}, true
}

// AddressCategory distinguishes short-form video from other blocked addresses.
func AddressCategory(address string) domain.BlockCategory {
	if strings.Contains(strings.ToLower(address), policy.ShortFormMarker) {
		return domain.CategoryShortVideo
	}
	return domain.CategoryURL
}

// AddressTarget returns the debounce key for a blocked address: its
// registrable domain ("m.youtube.com/shorts/x" -> "youtube.com"), or the
// trimmed lowercased address when no domain can be derived.
func AddressTarget(address string) string {
	lower := strings.ToLower(strings.TrimSpace(address))

	raw := lower
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return lower
	}

	d, err := publicsuffix.Domain(u.Hostname())
	if err != nil {
		return lower
	}
	return d
}
