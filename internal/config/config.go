// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds all service settings. Every field can be set through an
// environment variable of the same name as its koanf tag, case-insensitive
// (REDIS_HOST, plane_limit, ...).
type Config struct {
	RedisHost      string `koanf:"redis_host"`      // Backing store address, host or host:port.
	AllowedOrigins string `koanf:"allowed_origins"` // Comma-separated CORS origins.
	PlaneLimit     int    `koanf:"plane_limit"`     // Cap on planes per routeset request.
	APIKey         string `koanf:"api_key"`         // Shared secret for admin endpoints. Required.
	Port           int    `koanf:"port"`            // HTTP listen port.
	NATSURL        string `koanf:"nats_url"`        // Optional route-update feed; empty disables it.
	NATSSubject    string `koanf:"nats_subject"`    // Subject the route pipeline publishes updates on.
}

func defaultConfig() *Config {
	return &Config{
		RedisHost:   "127.0.0.1",
		PlaneLimit:  100,
		Port:        8000,
		NATSSubject: "routes.update",
	}
}

// Load builds the configuration from defaults overridden by environment
// variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable zero value.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key must be set")
	}
	if c.PlaneLimit <= 0 {
		return fmt.Errorf("plane_limit must be positive, got %d", c.PlaneLimit)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535, got %d", c.Port)
	}
	return nil
}

// Origins returns the allowed CORS origins as a list.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
