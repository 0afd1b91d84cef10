// Package config loads the static client configuration: the page origin,
// the checkout timeout, and the list of known game servers.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig reports a configuration that fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Server describes one known game server. The list is loaded once at startup
// and immutable for the process lifetime.
type Server struct {
	Name string `mapstructure:"name" json:"name"`
	Kind string `mapstructure:"kind" json:"kind"`
	Port int    `mapstructure:"port" json:"port"`
}

// Origin is the page origin server endpoints are resolved against.
type Origin struct {
	Scheme   string `mapstructure:"scheme" json:"scheme"`
	Hostname string `mapstructure:"hostname" json:"hostname"`
}

// Config is the full client configuration.
type Config struct {
	Origin          Origin        `mapstructure:"origin" json:"origin"`
	CheckoutTimeout time.Duration `mapstructure:"checkout_timeout" json:"checkout_timeout"`
	Servers         []Server      `mapstructure:"servers" json:"servers"`
}

// KindNames maps the single-letter game-kind codes to display names. Codes
// outside this map are carried through as-is; the core never interprets them.
var KindNames = map[string]string{
	"P": "Pawns",
	"D": "Draughts",
	"H": "Halma",
}

// KindName returns the display name for a game-kind code.
func KindName(code string) string {
	if name, ok := KindNames[code]; ok {
		return name
	}
	return code
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Origin:          Origin{Scheme: "http", Hostname: "localhost"},
		CheckoutTimeout: 5 * time.Second,
		Servers: []Server{
			{Name: "pawns-1", Kind: "P", Port: 35555},
			{Name: "pawns-2", Kind: "P", Port: 35556},
			{Name: "draughts-1", Kind: "D", Port: 35557},
		},
	}
}

// Load reads the configuration from path. An empty path yields the defaults.
// Viper infers the format from the file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetDefault("origin.scheme", "http")
	v.SetDefault("origin.hostname", "localhost")
	v.SetDefault("checkout_timeout", "5s")
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Servers) == 0 {
		cfg.Servers = Default().Servers
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural rules every configuration must satisfy.
func Validate(cfg *Config) error {
	if cfg.Origin.Scheme != "http" && cfg.Origin.Scheme != "https" {
		return fmt.Errorf("%w: origin scheme %q (want http or https)", ErrInvalidConfig, cfg.Origin.Scheme)
	}
	if cfg.Origin.Hostname == "" {
		return fmt.Errorf("%w: empty origin hostname", ErrInvalidConfig)
	}
	if cfg.CheckoutTimeout <= 0 {
		return fmt.Errorf("%w: checkout timeout must be positive", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(cfg.Servers))
	for i, srv := range cfg.Servers {
		if srv.Name == "" {
			return fmt.Errorf("%w: server %d has no name", ErrInvalidConfig, i)
		}
		if seen[srv.Name] {
			return fmt.Errorf("%w: duplicate server name %q", ErrInvalidConfig, srv.Name)
		}
		seen[srv.Name] = true
		if len(srv.Kind) != 1 || srv.Kind[0] < 'A' || srv.Kind[0] > 'Z' {
			return fmt.Errorf("%w: server %q kind %q (want one uppercase letter)", ErrInvalidConfig, srv.Name, srv.Kind)
		}
		if srv.Port < 1 || srv.Port > 65535 {
			return fmt.Errorf("%w: server %q port %d out of range", ErrInvalidConfig, srv.Name, srv.Port)
		}
	}
	return nil
}
