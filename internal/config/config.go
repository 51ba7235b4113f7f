package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/hostwatch/internal/domain"
)

// Notifications holds the global alerting switches. Per-host toggles live on
// the Host itself; ApplyToAll overrides them when set.
type Notifications struct {
	Enabled         bool `yaml:"enabled"`
	ApplyToAll      bool `yaml:"apply_to_all"`
	AggregateOutage bool `yaml:"aggregate_outage"`
}

// Gateway configures the default-gateway host refresh loop.
type Gateway struct {
	Enabled         bool          `yaml:"enabled"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Fallback        string        `yaml:"fallback"`
}

// Archive configures the optional sqlite result archive. Empty path disables it.
type Archive struct {
	Path      string        `yaml:"path"`
	Retention time.Duration `yaml:"retention"`
}

// API configures the HTTP surface.
type API struct {
	PublicKeys   []string `yaml:"public_keys"`
	AdminKeyHash string   `yaml:"admin_key_hash"` // argon2id encoded hash
	RatePerMin   int      `yaml:"rate_per_min"`
	Burst        int      `yaml:"burst"`
}

// Notify configures outbound notification sinks. Empty values disable a sink.
type Notify struct {
	SlackWebhook string `yaml:"slack_webhook"`
	BrevoAPIKey  string `yaml:"brevo_api_key"`
	EmailFrom    string `yaml:"email_from"`
	EmailTo      string `yaml:"email_to"`
}

type Config struct {
	Addr          string        `yaml:"addr"`
	LogDir        string        `yaml:"log_dir"`
	Hosts         []domain.Host `yaml:"hosts"`
	Notifications Notifications `yaml:"notifications"`
	Gateway       Gateway       `yaml:"gateway"`
	Archive       Archive       `yaml:"archive"`
	API           API           `yaml:"api"`
	Notify        Notify        `yaml:"notify"`
}

func DefaultConfig() Config {
	return Config{
		Addr:   "127.0.0.1:8080",
		LogDir: "logs",
		Notifications: Notifications{
			Enabled:         true,
			AggregateOutage: true,
		},
		Gateway: Gateway{
			Enabled:         true,
			RefreshInterval: 30 * time.Second,
			Fallback:        "192.168.1.1",
		},
		Archive: Archive{
			Retention: 7 * 24 * time.Hour,
		},
		API: API{
			RatePerMin: 120,
			Burst:      60,
		},
	}
}

// Load reads configuration from a YAML file. A missing file falls back to
// defaults. Host entries are validated here so a bad port never reaches the
// probe loop.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(content, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if cfg.Gateway.RefreshInterval <= 0 {
		cfg.Gateway.RefreshInterval = 30 * time.Second
	}
	if cfg.Archive.Retention <= 0 {
		cfg.Archive.Retention = 7 * 24 * time.Hour
	}

	for i := range cfg.Hosts {
		if cfg.Hosts[i].ID == "" {
			cfg.Hosts[i].ID = domain.HostID(fmt.Sprintf("host-%d", i+1))
		}
		if err := cfg.Hosts[i].Normalize(); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// applyEnv layers environment overrides on top of file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		c.LogDir = v
	}
	if v := os.Getenv("SLACK_WEBHOOK"); v != "" {
		c.Notify.SlackWebhook = v
	}
	if v := os.Getenv("BREVO_API_KEY"); v != "" {
		c.Notify.BrevoAPIKey = v
	}
	if v := os.Getenv("ARCHIVE_PATH"); v != "" {
		c.Archive.Path = v
	}
	if v := os.Getenv("RATE_PER_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.API.RatePerMin = n
		}
	}
}
