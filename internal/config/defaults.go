package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAPIBaseURL       = "http://localhost:8000"
	DefaultAPITimeout       = 30 * time.Second
	DefaultFeedURL          = "ws://localhost:8000/ws"
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultPingTimeout      = 60 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultInstrument       = "GEMINI"
)

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Feed.HandshakeTimeout == 0 {
		c.Feed.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Feed.PingTimeout == 0 {
		c.Feed.PingTimeout = DefaultPingTimeout
	}
	if c.Feed.WriteTimeout == 0 {
		c.Feed.WriteTimeout = DefaultWriteTimeout
	}

	if c.Dashboard.DefaultInstrument == "" {
		c.Dashboard.DefaultInstrument = DefaultInstrument
	}
}
