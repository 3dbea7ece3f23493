package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.rafiq/config.toml. The remote database
// URL and auth secret deliberately live in the environment, not here.
type Config struct {
	Language string `toml:"language"`

	// Presence publishing cadence.
	PublishIntervalSecs int     `toml:"publish_interval_secs"`
	DisplacementMeters  float64 `toml:"displacement_meters"`

	// Freshness window for surfacing remote notification-type alerts.
	AlertFreshnessSecs int `toml:"alert_freshness_secs"`

	// Fixed device position used when no platform location feed is wired in.
	Latitude  float64 `toml:"latitude"`
	Longitude float64 `toml:"longitude"`
}

// Default returns the built-in configuration: English, 2-minute location
// samples, 50 m displacement trigger, 10-second alert freshness window.
func Default() *Config {
	return &Config{
		Language:            "en",
		PublishIntervalSecs: 120,
		DisplacementMeters:  50,
		AlertFreshnessSecs:  10,
	}
}

// PublishInterval returns the presence publish cadence as a duration.
func (c *Config) PublishInterval() time.Duration {
	if c.PublishIntervalSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.PublishIntervalSecs) * time.Second
}

// AlertFreshness returns the alert freshness window as a duration.
func (c *Config) AlertFreshness() time.Duration {
	if c.AlertFreshnessSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.AlertFreshnessSecs) * time.Second
}

// Load reads config from the given path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, cfg)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
