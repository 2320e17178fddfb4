package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tradedesk.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://api.example.com
  timeout: 10s
feed:
  url: wss://api.example.com/ws
  handshake_timeout: 5s
  ping_timeout: 30s
  write_timeout: 2s
auth:
  token_file: /var/run/tradedesk/token
dashboard:
  default_instrument: AAPL
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.Feed.URL != "wss://api.example.com/ws" {
		t.Errorf("Feed.URL = %q", cfg.Feed.URL)
	}
	if cfg.Feed.PingTimeout != 30*time.Second {
		t.Errorf("Feed.PingTimeout = %v, want 30s", cfg.Feed.PingTimeout)
	}
	if cfg.Auth.TokenFile != "/var/run/tradedesk/token" {
		t.Errorf("Auth.TokenFile = %q", cfg.Auth.TokenFile)
	}
	if cfg.Dashboard.DefaultInstrument != "AAPL" {
		t.Errorf("Dashboard.DefaultInstrument = %q", cfg.Dashboard.DefaultInstrument)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TD_TEST_TOKEN", "secret-token")

	path := writeConfig(t, `
auth:
  token: ${TD_TEST_TOKEN}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Auth.Token != "secret-token" {
		t.Errorf("Auth.Token = %q, want expanded env value", cfg.Auth.Token)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "api: [not: a: mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeConfig(t, "{}")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Errorf("API.BaseURL = %q, want default", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want default", cfg.API.Timeout)
	}
	if cfg.Feed.URL != DefaultFeedURL {
		t.Errorf("Feed.URL = %q, want default", cfg.Feed.URL)
	}
	if cfg.Feed.PingTimeout != DefaultPingTimeout {
		t.Errorf("Feed.PingTimeout = %v, want default", cfg.Feed.PingTimeout)
	}
	if cfg.Dashboard.DefaultInstrument != DefaultInstrument {
		t.Errorf("Dashboard.DefaultInstrument = %q, want default", cfg.Dashboard.DefaultInstrument)
	}
}

func TestLoadWithDefaults_ExplicitValuesKept(t *testing.T) {
	path := writeConfig(t, `
feed:
  ping_timeout: 17s
`)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Feed.PingTimeout != 17*time.Second {
		t.Errorf("Feed.PingTimeout = %v, want 17s", cfg.Feed.PingTimeout)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: "api.base_url",
		},
		{
			name:    "non-positive timeout",
			mutate:  func(c *Config) { c.API.Timeout = 0 },
			wantErr: "api.timeout",
		},
		{
			name:    "missing feed url",
			mutate:  func(c *Config) { c.Feed.URL = "" },
			wantErr: "feed.url",
		},
		{
			name:    "http feed url",
			mutate:  func(c *Config) { c.Feed.URL = "http://example.com/ws" },
			wantErr: "feed.url",
		},
		{
			name:    "missing instrument",
			mutate:  func(c *Config) { c.Dashboard.DefaultInstrument = "" },
			wantErr: "default_instrument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
