package internal

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides (CHAT_SESSION_API_URL, ...)
const EnvPrefix = "chat_session"

// Config holds the resolved client settings
type Config struct {
	APIURL    string
	StatePath string
	Timeout   time.Duration
	Verbose   bool
	LogLevel  string
	LogFormat string
	LogFile   string
}

// DefaultStatePath returns ~/.chat-session/state.db, or a relative path if
// the home directory cannot be determined
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".chat-session", "state.db")
	}
	return filepath.Join(home, ".chat-session", "state.db")
}

// SetConfigDefaults registers the defaults on v
func SetConfigDefaults(v *viper.Viper) {
	v.SetDefault("api-url", DefaultAPIURL)
	v.SetDefault("state", DefaultStatePath())
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("log-format", "text")
}

// ReadConfigFile loads config.yaml from path, or from the usual locations
// when path is empty. A missing file is not an error.
func ReadConfigFile(v *viper.Viper, path string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.chat-session")
		if xdg, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(xdg, "chat-session"))
		}
	}

	err := v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return nil
	}
	return err
}

// LoadConfig resolves a Config from v
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		APIURL:    strings.TrimSpace(v.GetString("api-url")),
		StatePath: v.GetString("state"),
		Timeout:   v.GetDuration("timeout"),
		Verbose:   v.GetBool("verbose"),
		LogLevel:  v.GetString("log-level"),
		LogFormat: v.GetString("log-format"),
		LogFile:   v.GetString("log-file"),
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath()
	}
	if cfg.Timeout <= 0 {
		return cfg, &ConfigError{Key: "timeout", Value: v.GetString("timeout")}
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return cfg, &ConfigError{Key: "log-format", Value: cfg.LogFormat}
	}
	if cfg.LogLevel != "" {
		if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// LogConfig returns the logger settings implied by cfg
func (c Config) LogConfig() LogConfig {
	level := c.LogLevel
	if c.Verbose && level == "" {
		level = "debug"
	}
	return LogConfig{Level: level, Format: c.LogFormat, File: c.LogFile}
}
