// Package conf implements the configuration loader: defaults, overridden
// by an optional config file, overridden by UPNPGO_-prefixed environment
// variables, overridden by explicit flag values, exactly the precedence order
// viper is built around.
package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved set of tunables the library and CLI expose.
type Config struct {
	TTL                   int
	ResponseWaitTime      time.Duration
	MSearchCount          int
	DoBroadcastSearch     bool
	RaiseOnRemoteError    bool
	LogLevel              string
	RegistrySweepInterval time.Duration
}

// ConfigError reports a value that failed validation at construction,
// rather than lazily on first use.
type ConfigError struct {
	Field string
	Value interface{}
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("conf: %s=%v: %s", e.Field, e.Value, e.Msg)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ttl", 4)
	v.SetDefault("response_wait_time", "5s")
	v.SetDefault("m_search_count", 2)
	v.SetDefault("do_broadcast_search", false)
	v.SetDefault("raise_on_remote_error", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("registry_sweep_interval", "30s")
}

// Load resolves a Config from defaults, an optional config file at path (may
// be empty to skip), and UPNPGO_-prefixed environment variables, in that
// increasing order of precedence. Flag overrides are not handled here: the
// CLI assigns its explicit flag values to the returned Config after Load.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("UPNPGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("conf: reading %s: %w", path, err)
		}
	}

	cfg := &Config{
		TTL:                   v.GetInt("ttl"),
		ResponseWaitTime:      v.GetDuration("response_wait_time"),
		MSearchCount:          v.GetInt("m_search_count"),
		DoBroadcastSearch:     v.GetBool("do_broadcast_search"),
		RaiseOnRemoteError:    v.GetBool("raise_on_remote_error"),
		LogLevel:              v.GetString("log_level"),
		RegistrySweepInterval: v.GetDuration("registry_sweep_interval"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TTL < 1 || c.TTL > 255 {
		return &ConfigError{Field: "ttl", Value: c.TTL, Msg: "must be in [1, 255]"}
	}
	if c.ResponseWaitTime < time.Second || c.ResponseWaitTime > 5*time.Second {
		return &ConfigError{Field: "response_wait_time", Value: c.ResponseWaitTime, Msg: "must be in [1s, 5s]"}
	}
	if c.MSearchCount < 1 {
		return &ConfigError{Field: "m_search_count", Value: c.MSearchCount, Msg: "must be >= 1"}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "log_level", Value: c.LogLevel, Msg: "must be one of debug, info, warn, error"}
	}
	return nil
}
