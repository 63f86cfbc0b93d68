package policy

import (
	"sort"
	"strings"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// Set is the immutable, process-wide classification rule set.
// It is safe for concurrent reads without synchronization.
type Set struct {
	blockedApps   map[string]struct{}
	patterns      []string // lowercased
	browsers      map[string]struct{}
	alwaysAllowed map[string]struct{}
}

// NewSet builds a Set. Address patterns are lowercased once here.
func NewSet(blockedApps, addressPatterns, browsers, alwaysAllowed []string) *Set {
	s := &Set{
		blockedApps:   toSet(blockedApps),
		browsers:      toSet(browsers),
		alwaysAllowed: toSet(alwaysAllowed),
		patterns:      make([]string, 0, len(addressPatterns)),
	}
	seen := make(map[string]struct{}, len(addressPatterns))
	for _, p := range addressPatterns {
		lp := strings.ToLower(p)
		if lp == "" {
			continue
		}
		if _, ok := seen[lp]; ok {
			continue
		}
		seen[lp] = struct{}{}
		s.patterns = append(s.patterns, lp)
	}
	return s
}

// NewDefaultSet returns the compiled-in Set.
func NewDefaultSet() *Set {
	return NewRegistry().Set()
}

func (s *Set) IsBlockedApp(appID string) bool {
	_, ok := s.blockedApps[appID]
	return ok
}

func (s *Set) IsBrowser(appID string) bool {
	_, ok := s.browsers[appID]
	return ok
}

func (s *Set) IsAlwaysAllowed(appID string) bool {
	_, ok := s.alwaysAllowed[appID]
	return ok
}

// IsAddressBlocked lowercases address and reports whether any pattern is a substring.
func (s *Set) IsAddressBlocked(address string) bool {
	lower := strings.ToLower(address)
	for _, p := range s.patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Conflicts returns identifiers present in both the blocked and the
// always-allowed lists. Always-allowed wins for these.
func (s *Set) Conflicts() []string {
	var out []string
	for id := range s.blockedApps {
		if _, ok := s.alwaysAllowed[id]; ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// BlockedApps returns the blocked identifiers, sorted.
func (s *Set) BlockedApps() []string { return sortedKeys(s.blockedApps) }

// Browsers returns the monitored browsers, sorted.
func (s *Set) Browsers() []string { return sortedKeys(s.browsers) }

// AlwaysAllowed returns the always-allowed identifiers, sorted.
func (s *Set) AlwaysAllowed() []string { return sortedKeys(s.alwaysAllowed) }

// AddressPatterns returns a copy of the lowercased patterns.
func (s *Set) AddressPatterns() []string {
	out := make([]string, len(s.patterns))
	copy(out, s.patterns)
	return out
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Ensure Set implements domain.PolicySet.
var _ domain.PolicySet = (*Set)(nil)
