// Package fixtures provides synthetic browser snapshots and notification
// feeds for integration tests.
package fixtures

import (
	"bytes"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
	"github.com/eliteGoblin/focusd/focus_mon/internal/infra"
)

// Window builds a browser window whose address field (viewID) shows
// address, nested below a typical toolbar and a content pane.
func Window(appID, viewID, address string) *infra.NodeJSON {
	return &infra.NodeJSON{
		ViewID: appID + ":id/coordinator",
		Children: []*infra.NodeJSON{
			{ViewID: appID + ":id/toolbar", Children: []*infra.NodeJSON{
				{ViewID: appID + ":id/home_button", Label: "Home"},
				{ViewID: viewID, Text: address},
				{ViewID: appID + ":id/tab_switcher", Label: "Switch tabs"},
			}},
			{ViewID: appID + ":id/content", Children: []*infra.NodeJSON{
				{Text: "Loading"},
			}},
		},
	}
}

// ChromeWindow is Chrome showing address in its URL bar.
func ChromeWindow(address string) *infra.NodeJSON {
	return Window("com.android.chrome", "com.android.chrome:id/url_bar", address)
}

// FirefoxWindow is Firefox showing address in its toolbar URL view.
func FirefoxWindow(address string) *infra.NodeJSON {
	return Window("org.mozilla.firefox", "org.mozilla.firefox:id/mozac_browser_toolbar_url_view", address)
}

// SamsungWindow is Samsung Internet showing address in its location bar.
func SamsungWindow(address string) *infra.NodeJSON {
	return Window("com.sec.android.app.sbrowser", "com.sec.android.app.sbrowser:id/location_bar_edit_text", address)
}

// UnlabeledWindow has no known address field; the address only appears as
// the accessibility label of a node somewhere in the page.
func UnlabeledWindow(appID, address string) *infra.NodeJSON {
	return &infra.NodeJSON{
		ViewID: appID + ":id/main",
		Children: []*infra.NodeJSON{
			{Text: "Menu"},
			{Children: []*infra.NodeJSON{
				{Text: "Short"},
				{Label: address},
			}},
		},
	}
}

// Nested returns a single-child chain of the given depth (the root is depth
// 0) with text placed on the node at depth at.
func Nested(depth, at int, text string) *infra.NodeJSON {
	root := &infra.NodeJSON{}
	cur := root
	for d := 0; d <= depth; d++ {
		if d == at {
			cur.Text = text
		}
		if d < depth {
			next := &infra.NodeJSON{}
			cur.Children = []*infra.NodeJSON{next}
			cur = next
		}
	}
	return root
}

// Event is one line of a notification feed.
type Event struct {
	App  string
	Kind domain.EventKind
	Root *infra.NodeJSON
}

// Feed encodes events as newline-delimited JSON.
func Feed(events ...Event) []byte {
	var buf bytes.Buffer
	for _, e := range events {
		line, err := infra.EncodeNotification(e.App, e.Kind, e.Root)
		if err != nil {
			panic(err)
		}
		buf.Write(line)
	}
	return buf.Bytes()
}
