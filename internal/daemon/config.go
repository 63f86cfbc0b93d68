// Package daemon runs the monitoring subsystem: the event-driven monitor,
// the polling backstop and the screen-time reporter.
package daemon

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/eliteGoblin/focusd/focus_mon/internal/extract"
	"github.com/eliteGoblin/focusd/focus_mon/internal/policy"
	"github.com/eliteGoblin/focusd/focus_mon/internal/usecase"
)

// EnvPrefix prefixes every environment override, e.g. FOCUSMON_COOLDOWN.
const EnvPrefix = "FOCUSMON"

// Config holds monitoring tunables. Policy itself is compiled in.
type Config struct {
	Cooldown           time.Duration `envconfig:"COOLDOWN" default:"1s"`              // Debounce window per target
	PollInterval       time.Duration `envconfig:"POLL_INTERVAL" default:"500ms"`      // Polling backstop tick
	PollWindow         time.Duration `envconfig:"POLL_WINDOW" default:"1s"`           // Trailing foreground window
	MaxDepth           int           `envconfig:"MAX_DEPTH" default:"15"`             // Fallback tree search bound
	ScreenTimeInterval time.Duration `envconfig:"SCREEN_TIME_INTERVAL" default:"30m"` // 0 disables reminders
	SelfID             string        `envconfig:"SELF_ID" default:"com.deepfocus.app"`

	Socket         string `envconfig:"SOCKET"` // Empty reads notifications from stdin
	BackCommand    string `envconfig:"BACK_COMMAND"`
	PresentCommand string `envconfig:"PRESENT_COMMAND"`
	NotifyCommand  string `envconfig:"NOTIFY_COMMAND"`
	MetricsAddr    string `envconfig:"METRICS_ADDR"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
}

// DefaultConfig returns default monitoring configuration.
func DefaultConfig() Config {
	return Config{
		Cooldown:           usecase.DefaultCooldown,
		PollInterval:       500 * time.Millisecond,
		PollWindow:         time.Second,
		MaxDepth:           extract.DefaultMaxDepth,
		ScreenTimeInterval: 30 * time.Minute,
		SelfID:             policy.SelfAppID,
		LogLevel:           "info",
	}
}

// LoadConfig applies FOCUSMON_* environment overrides on top of the defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the monitors cannot run with.
func (c Config) Validate() error {
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative: %s", c.Cooldown)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive: %s", c.PollInterval)
	}
	if c.PollWindow <= 0 {
		return fmt.Errorf("poll window must be positive: %s", c.PollWindow)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative: %d", c.MaxDepth)
	}
	if c.ScreenTimeInterval < 0 {
		return fmt.Errorf("screen time interval must not be negative: %s", c.ScreenTimeInterval)
	}
	return nil
}
