package policy

// GamesPolicy blocks mobile games.
type GamesPolicy struct{}

// NewGamesPolicy creates the games blocking policy.
func NewGamesPolicy() *GamesPolicy {
	return &GamesPolicy{}
}

func (p *GamesPolicy) ID() string {
	return "games"
}

func (p *GamesPolicy) Name() string {
	return "Games"
}

func (p *GamesPolicy) Apps() []string {
	return []string{
		"com.supercell.clashroyale",
		"com.supercell.clashofclans",
		"com.supercell.brawlstars",
		"com.king.candycrushsaga",
		"com.kiloo.subwaysurf",
	}
}

// AddressPatterns is empty: games are only blocked as apps.
func (p *GamesPolicy) AddressPatterns() []string {
	return nil
}

// StreamingPolicy blocks streaming apps.
type StreamingPolicy struct{}

// NewStreamingPolicy creates the streaming blocking policy.
func NewStreamingPolicy() *StreamingPolicy {
	return &StreamingPolicy{}
}

func (p *StreamingPolicy) ID() string {
	return "streaming"
}

func (p *StreamingPolicy) Name() string {
	return "Streaming"
}

func (p *StreamingPolicy) Apps() []string {
	return []string{
		"tv.twitch.android.app",
		"com.netflix.mediaclient",
		"com.netflix.ninja",
	}
}

func (p *StreamingPolicy) AddressPatterns() []string {
	return nil
}

var (
	_ AppPolicy = (*GamesPolicy)(nil)
	_ AppPolicy = (*StreamingPolicy)(nil)
)
