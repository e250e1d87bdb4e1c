// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Profile names for the backend connection.
const (
	ProfileVisible          = "visible"
	ProfileNoScript         = "noscript"
	ProfileHeadless         = "headless"
	ProfileHeadlessNoScript = "headless-noscript"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// BackendConfig selects and addresses the browser automation backend.
type BackendConfig struct {
	Addr           string `mapstructure:"addr"`
	Port           string `mapstructure:"port"`
	Profile        string `mapstructure:"profile"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WEBPARSER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("backend.addr", "127.0.0.1")
	v.SetDefault("backend.port", "9222")
	v.SetDefault("backend.profile", ProfileHeadless)
	v.SetDefault("backend.user_agent", "webparser-bot/0.1")
	v.SetDefault("backend.timeout_seconds", 45)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend.timeout_seconds must be > 0")
	}
	switch c.Backend.Profile {
	case ProfileVisible, ProfileNoScript, ProfileHeadless, ProfileHeadlessNoScript:
	default:
		return fmt.Errorf("backend.profile %q is not a known profile", c.Backend.Profile)
	}
	return nil
}

// BackendTimeout converts the backend timeout knob into a duration.
func (c Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}
