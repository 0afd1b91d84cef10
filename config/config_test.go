package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "servers.yaml", `
origin:
  scheme: https
  hostname: play.example.com
checkout_timeout: 2s
servers:
  - name: pawns-eu
    kind: P
    port: 4100
  - name: halma-eu
    kind: H
    port: 4101
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Origin{Scheme: "https", Hostname: "play.example.com"}, cfg.Origin)
	assert.Equal(t, 2*time.Second, cfg.CheckoutTimeout)
	require.Len(t, cfg.Servers, 2)
	assert.Equal(t, Server{Name: "pawns-eu", Kind: "P", Port: 4100}, cfg.Servers[0])
	assert.Equal(t, Server{Name: "halma-eu", Kind: "H", Port: 4101}, cfg.Servers[1])
}

func TestLoadFillsDefaultsForOmittedFields(t *testing.T) {
	path := writeConfig(t, "servers.yaml", `
servers:
  - name: local
    kind: P
    port: 35555
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Origin.Scheme)
	assert.Equal(t, "localhost", cfg.Origin.Hostname)
	assert.Equal(t, 5*time.Second, cfg.CheckoutTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	broken := func(mutate func(*Config)) *Config {
		cfg := Default()
		mutate(cfg)
		return cfg
	}

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"bad scheme", broken(func(c *Config) { c.Origin.Scheme = "ftp" })},
		{"empty hostname", broken(func(c *Config) { c.Origin.Hostname = "" })},
		{"zero timeout", broken(func(c *Config) { c.CheckoutTimeout = 0 })},
		{"unnamed server", broken(func(c *Config) { c.Servers[0].Name = "" })},
		{"duplicate name", broken(func(c *Config) { c.Servers[1].Name = c.Servers[0].Name })},
		{"lowercase kind", broken(func(c *Config) { c.Servers[0].Kind = "p" })},
		{"multi-letter kind", broken(func(c *Config) { c.Servers[0].Kind = "PW" })},
		{"port out of range", broken(func(c *Config) { c.Servers[0].Port = 70000 })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tt.cfg), ErrInvalidConfig)
		})
	}

	assert.NoError(t, Validate(Default()))
}

func TestKindName(t *testing.T) {
	assert.Equal(t, "Pawns", KindName("P"))
	assert.Equal(t, "Halma", KindName("H"))
	assert.Equal(t, "X", KindName("X"), "unknown codes pass through")
}
