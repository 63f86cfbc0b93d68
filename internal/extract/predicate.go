package extract

import "strings"

// addressMarkers make a string look like an address at all.
var addressMarkers = []string{".com", ".org", "http"}

// attentionDomains are the sites the fallback search is looking for.
var attentionDomains = []string{
	"youtube.com",
	"youtu.be",
	"reddit.com",
	"instagram.com",
	"tiktok.com",
	"twitter.com",
	"x.com",
	"facebook.com",
	"shorts",
}

// LooksLikeAddress reports whether text looks like an address of one of the
// attention-economy sites.
func LooksLikeAddress(text string) bool {
	lower := strings.ToLower(text)
	return containsAny(lower, addressMarkers) && containsAny(lower, attentionDomains)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
