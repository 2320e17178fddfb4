package config

import "time"

// Config is the root configuration for a tradedesk instance.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Feed      FeedConfig      `yaml:"feed"`
	Auth      AuthConfig      `yaml:"auth"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// APIConfig holds trading API settings.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// FeedConfig holds live price feed settings.
type FeedConfig struct {
	URL              string        `yaml:"url"` // Base WebSocket URL; instrument is appended as a path element
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	PingTimeout      time.Duration `yaml:"ping_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
}

// AuthConfig selects where the bearer token comes from. Token wins over
// TokenFile when both are set; TokenFile is re-read on each use.
type AuthConfig struct {
	Token     string `yaml:"token"`
	TokenFile string `yaml:"token_file"`
}

// DashboardConfig holds controller settings.
type DashboardConfig struct {
	DefaultInstrument string `yaml:"default_instrument"`
}
