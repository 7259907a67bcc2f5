package conf

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.TTL)
	assert.Equal(t, 5*time.Second, cfg.ResponseWaitTime)
	assert.Equal(t, 2, cfg.MSearchCount)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvironmentOverridesDefaults(t *testing.T) {
	os.Setenv("UPNPGO_TTL", "10")
	os.Setenv("UPNPGO_LOG_LEVEL", "debug")
	defer os.Unsetenv("UPNPGO_TTL")
	defer os.Unsetenv("UPNPGO_LOG_LEVEL")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.TTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsOutOfRangeTTL(t *testing.T) {
	os.Setenv("UPNPGO_TTL", "0")
	defer os.Unsetenv("UPNPGO_TTL")

	_, err := Load("")
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "ttl", cfgErr.Field)
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	os.Setenv("UPNPGO_LOG_LEVEL", "verbose")
	defer os.Unsetenv("UPNPGO_LOG_LEVEL")

	_, err := Load("")
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "log_level", cfgErr.Field)
}
