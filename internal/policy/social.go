package policy

// SocialPolicy blocks the endless-scroll social networks.
type SocialPolicy struct{}

// NewSocialPolicy creates the social media blocking policy.
func NewSocialPolicy() *SocialPolicy {
	return &SocialPolicy{}
}

func (p *SocialPolicy) ID() string {
	return "social"
}

func (p *SocialPolicy) Name() string {
	return "Social Media"
}

// Apps returns official clients and popular third-party readers.
func (p *SocialPolicy) Apps() []string {
	return []string{
		"com.instagram.android",
		"com.instagram.lite",
		"com.zhiliaoapp.musically", // TikTok
		"com.ss.android.ugc.trill", // TikTok (alternate)
		"com.twitter.android",
		"com.twitter.android.lite",
		"com.reddit.frontpage",
		"com.andrewshu.android.reddit",
		"com.laurencedawson.reddit_sync",
		"com.laurencedawson.reddit_sync.pro",
		"ml.docilealligator.infinityforreddit",
		"com.rubenmayayo.reddit",
		"com.onelouder.baconreader",
		"com.facebook.katana",
		"com.facebook.lite",
		"com.snapchat.android",
		"com.linkedin.android",
		"com.pinterest",
		"com.tumblr",
	}
}

func (p *SocialPolicy) AddressPatterns() []string {
	return []string{
		"instagram.com",
		"tiktok.com",
		"twitter.com",
		"x.com",
		"reddit.com",
		"facebook.com",
	}
}

// Ensure SocialPolicy implements AppPolicy.
var _ AppPolicy = (*SocialPolicy)(nil)
