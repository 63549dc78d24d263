package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/chat-session/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(testutil.CreateTempDir(t), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	SetConfigDefaults(v)
	require.NoError(t, ReadConfigFile(v, writeConfig(t, "")))

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultStatePath(), cfg.StatePath)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFile(t *testing.T) {
	v := viper.New()
	SetConfigDefaults(v)
	path := writeConfig(t, "api-url: http://chat.internal:9000\ntimeout: 5s\nlog-format: json\nlog-level: warn\n")
	require.NoError(t, ReadConfigFile(v, path))

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "http://chat.internal:9000", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("CHAT_SESSION_API_URL", "http://from-env:8000")
	t.Setenv("CHAT_SESSION_LOG_FORMAT", "json")

	v := viper.New()
	SetConfigDefaults(v)
	require.NoError(t, ReadConfigFile(v, writeConfig(t, "api-url: http://from-file:8000\n")))

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8000", cfg.APIURL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{name: "zero timeout", content: "timeout: 0s\n", key: "timeout"},
		{name: "log format", content: "log-format: xml\n", key: "log-format"},
		{name: "log level", content: "log-level: loud\n", key: "log-level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetConfigDefaults(v)
			require.NoError(t, ReadConfigFile(v, writeConfig(t, tt.content)))

			_, err := LoadConfig(v)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "error = %v", err)
			assert.Equal(t, tt.key, cfgErr.Key)
		})
	}
}

func TestConfigLogConfig(t *testing.T) {
	assert.Equal(t, "debug", Config{Verbose: true}.LogConfig().Level)
	assert.Equal(t, "warn", Config{Verbose: true, LogLevel: "warn"}.LogConfig().Level)
	assert.Equal(t, "", Config{}.LogConfig().Level)
}
