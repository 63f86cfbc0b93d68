package extract

// hintEntry maps a family of browsers to the view identifiers of their
// address field. These identifiers belong to the vendors and change
// between releases, so the table is a hint, not a contract.
type hintEntry struct {
	browsers []string
	fieldIDs []string
}

// genericFieldSuffixes are common address field names tried for browsers
// without an explicit entry, qualified as "<appID>:id/<suffix>".
var genericFieldSuffixes = []string{
	"url_bar",
	"search_box_text",
	"address_bar_edit_text",
	"location_bar_edit_text",
	"url",
	"omnibox_text_field",
}

var defaultHints = []hintEntry{
	{
		browsers: []string{"com.android.chrome", "com.chrome.beta", "com.chrome.dev"},
		fieldIDs: []string{
			"com.android.chrome:id/url_bar",
			"com.android.chrome:id/search_box_text",
			"com.android.chrome:id/omnibox_text_field",
		},
	},
	{
		browsers: []string{"com.sec.android.app.sbrowser"},
		fieldIDs: []string{
			"com.sec.android.app.sbrowser:id/location_bar_edit_text",
			"com.sec.android.app.sbrowser:id/url_bar",
			"com.sec.android.app.sbrowser:id/address_bar_edit_text",
		},
	},
	{
		browsers: []string{"org.mozilla.firefox", "org.mozilla.firefox_beta"},
		fieldIDs: []string{
			"org.mozilla.firefox:id/mozac_browser_toolbar_url_view",
			"org.mozilla.firefox:id/url_bar_title",
		},
	},
	{
		browsers: []string{"com.brave.browser"},
		fieldIDs: []string{
			"com.brave.browser:id/url_bar",
			"com.brave.browser:id/search_box_text",
		},
	},
	{
		browsers: []string{"com.microsoft.emmx"},
		fieldIDs: []string{
			"com.microsoft.emmx:id/url_bar",
			"com.microsoft.emmx:id/search_box_text",
		},
	},
}

// HintTable is an ordered browser -> candidate field IDs mapping with a
// generic fallback for unknown browsers.
type HintTable struct {
	byBrowser map[string][]string
	generic   []string
}

// NewHintTable builds the default table.
func NewHintTable() *HintTable {
	return newHintTable(defaultHints, genericFieldSuffixes)
}

func newHintTable(entries []hintEntry, generic []string) *HintTable {
	t := &HintTable{
		byBrowser: make(map[string][]string),
		generic:   generic,
	}
	for _, e := range entries {
		for _, b := range e.browsers {
			t.byBrowser[b] = e.fieldIDs
		}
	}
	return t
}

// Candidates returns the view identifiers to probe for appID, in order.
func (t *HintTable) Candidates(appID string) []string {
	if ids, ok := t.byBrowser[appID]; ok {
		out := make([]string, len(ids))
		copy(out, ids)
		return out
	}
	out := make([]string, 0, len(t.generic))
	for _, suffix := range t.generic {
		out = append(out, appID+":id/"+suffix)
	}
	return out
}

// Known reports whether appID has an explicit entry.
func (t *HintTable) Known(appID string) bool {
	_, ok := t.byBrowser[appID]
	return ok
}
