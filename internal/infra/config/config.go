// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Playback PlaybackConfig `yaml:"playback"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Speech   SpeechConfig   `yaml:"speech"`
}

// ServerConfig represents the control API server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8090"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info"`
}

// PlaybackConfig represents playback control configuration.
type PlaybackConfig struct {
	RetryDelayMs         int    `yaml:"retry_delay_ms" default:"2000" validate:"gte=0,lte=30000"`
	AnnouncementTemplate string `yaml:"announcement_template" default:"Up next: %s"`
	SearchLimit          int    `yaml:"search_limit" default:"10" validate:"gte=1,lte=50"`
}

// RetryDelay returns the skip-and-advance delay as a duration.
func (p PlaybackConfig) RetryDelay() time.Duration {
	return time.Duration(p.RetryDelayMs) * time.Millisecond
}

// CatalogConfig represents catalog provider configuration.
type CatalogConfig struct {
	Providers []ProviderConfig `yaml:"providers" validate:"required,min=1"`
}

// ProviderConfig represents a single catalog provider configuration.
type ProviderConfig struct {
	Type     string         `yaml:"type" validate:"required"`
	Settings map[string]any `yaml:"settings"`
}

// SpeechConfig represents the speech synthesis endpoint configuration.
type SpeechConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	Voice   string `yaml:"voice" default:"en"`
}

// Load loads configuration from a YAML file. Environment variables take
// precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("HERALD_TTS_URL"); v != "" {
		c.Speech.BaseURL = v
	}
	for i := range c.Catalog.Providers {
		if c.Catalog.Providers[i].Type != "spotify" {
			continue
		}
		if c.Catalog.Providers[i].Settings == nil {
			c.Catalog.Providers[i].Settings = map[string]any{}
		}
		if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
			c.Catalog.Providers[i].Settings["client_id"] = v
		}
		if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
			c.Catalog.Providers[i].Settings["client_secret"] = v
		}
		if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
			c.Catalog.Providers[i].Settings["refresh_token"] = v
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
