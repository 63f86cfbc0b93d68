package policy

// VideoPolicy blocks the YouTube apps and short-form video in browsers.
// The apps are blocked outright because Shorts cannot be separated in-app;
// in a browser only the Shorts paths are blocked.
type VideoPolicy struct{}

// NewVideoPolicy creates the video blocking policy.
func NewVideoPolicy() *VideoPolicy {
	return &VideoPolicy{}
}

func (p *VideoPolicy) ID() string {
	return "video"
}

func (p *VideoPolicy) Name() string {
	return "Short-Form Video"
}

func (p *VideoPolicy) Apps() []string {
	return []string{
		"com.google.android.youtube",
		"com.google.android.apps.youtube.music",
	}
}

func (p *VideoPolicy) AddressPatterns() []string {
	return []string{
		"youtube.com/shorts",
		"youtu.be/shorts",
		"m.youtube.com/shorts",
		"/shorts/",
	}
}

// Ensure VideoPolicy implements AppPolicy.
var _ AppPolicy = (*VideoPolicy)(nil)
