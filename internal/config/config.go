// Package config loads gameserverd/hytale-login configuration with
// koanf/v2: an optional YAML file overlaid with HYTALE_*-prefixed
// environment variables, grounded on
// dantte-lp-gobfd/internal/config/config.go's file+env+defaults layering.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the complete gameserverd configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Auth    AuthConfig    `koanf:"auth"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// ServerConfig holds the frame listener's own identity and credentials.
type ServerConfig struct {
	Addr            string `koanf:"addr"`
	SessionToken    string `koanf:"session_token"`
	IdentityToken   string `koanf:"identity_token"`
	CertFingerprint string `koanf:"cert_fingerprint"`
	Audience        string `koanf:"audience"`
}

// AuthConfig holds the OAuth device-flow and session-service endpoints.
type AuthConfig struct {
	DeviceURL           string `koanf:"device_url"`
	TokenURL            string `koanf:"token_url"`
	AccountDataBase     string `koanf:"account_data_base"`
	SessionsBase        string `koanf:"sessions_base"`
	ClientID            string `koanf:"client_id"`
	Scope               string `koanf:"scope"`
	CredentialStorePath string `koanf:"credential_store_path"`
}

// LogConfig controls log/slog's handler selection.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig holds the Prometheus /metrics HTTP endpoint address.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
	Path string `koanf:"path"`
}

// envPrefix is the environment variable prefix for config overrides:
// HYTALE_SERVER_SESSION_TOKEN, HYTALE_AUTH_DEVICE_URL, and so on.
const envPrefix = "HYTALE_"

// DefaultConfig returns a Config populated with the documented production
// defaults, before any file or environment overlay is applied.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:     ":25565",
			Audience: "hytale-game-server",
		},
		Auth: AuthConfig{
			DeviceURL:           "https://oauth.accounts.hytale.com/oauth2/device/auth",
			TokenURL:            "https://oauth.accounts.hytale.com/oauth2/token",
			AccountDataBase:     "https://account-data.hytale.com",
			SessionsBase:        "https://sessions.hytale.com",
			ClientID:            "hytale-server",
			Scope:               "openid+offline+auth:server",
			CredentialStorePath: "auth.enc",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
			Path: "/metrics",
		},
	}
}

// Load builds a Config from DefaultConfig(), an optional YAML file at
// path (skipped entirely when path is empty), and HYTALE_*-prefixed
// environment variable overrides, in that precedence order — matching
// gobfd's file-then-env layering.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k, DefaultConfig()); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("config: load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// envKeyMapper transforms HYTALE_SERVER_SESSION_TOKEN into
// server.session_token.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.Replace(s, "_", ".", 1)
}

// ParseLogLevel maps a config string ("debug", "info", "warn", "error")
// to a slog.Level, defaulting to Info for anything unrecognized.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadDefaults(k *koanf.Koanf, d *Config) error {
	defaults := map[string]any{
		"server.addr":                 d.Server.Addr,
		"server.audience":             d.Server.Audience,
		"auth.device_url":             d.Auth.DeviceURL,
		"auth.token_url":              d.Auth.TokenURL,
		"auth.account_data_base":      d.Auth.AccountDataBase,
		"auth.sessions_base":          d.Auth.SessionsBase,
		"auth.client_id":              d.Auth.ClientID,
		"auth.scope":                  d.Auth.Scope,
		"auth.credential_store_path":  d.Auth.CredentialStorePath,
		"log.level":                   d.Log.Level,
		"log.format":                  d.Log.Format,
		"metrics.addr":                d.Metrics.Addr,
		"metrics.path":                d.Metrics.Path,
	}
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}
	return nil
}
