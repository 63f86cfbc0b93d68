package policy

// DefaultBrowsers are the browser apps monitored for address blocking.
var DefaultBrowsers = []string{
	"com.android.chrome",
	"com.chrome.beta",
	"com.chrome.dev",
	"org.mozilla.firefox",
	"org.mozilla.firefox_beta",
	"com.brave.browser",
	"com.opera.browser",
	"com.opera.mini.native",
	"com.microsoft.emmx", // Edge
	"com.sec.android.app.sbrowser",
	"com.duckduckgo.mobile.android",
	"com.vivaldi.browser",
}

// DefaultAlwaysAllowed are essential apps that are never blocked,
// even if a group lists them by mistake.
var DefaultAlwaysAllowed = []string{
	"com.android.dialer",
	"com.samsung.android.dialer",
	"com.google.android.dialer",
	"com.android.contacts",
	"com.samsung.android.contacts",
	"com.android.mms",
	"com.samsung.android.messaging",
	"com.google.android.apps.messaging",
	"com.android.settings",
	"com.android.vending",
	"com.google.android.gm",
	"com.google.android.apps.maps",
	"com.google.android.calendar",
	"com.samsung.android.calendar",
	SelfAppID,
}

// SelfAppID is this system's own application identifier.
const SelfAppID = "com.deepfocus.app"

// SystemUIAppID is the system shell; its notifications are never evaluated.
const SystemUIAppID = "com.android.systemui"
