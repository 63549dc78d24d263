package internal

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// LogConfig describes where and how log output is written
type LogConfig struct {
	Level   string // "error", "warn", "info", "debug"; empty keeps the current level
	Format  string // "text" or "json"
	File    string // optional rotating log file
	Discard bool   // drop console output (used while the TUI owns the terminal)
}

var (
	logLevel = LogLevelInfo
	logger   = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			With().Timestamp().Logger()
)

// Logger returns the structured logger shared by the package
func Logger() *zerolog.Logger {
	return &logger
}

// InitLogger rebuilds the shared logger from cfg
func InitLogger(cfg LogConfig) error {
	var console io.Writer
	switch {
	case cfg.Discard:
		console = nil
	case cfg.Format == "json":
		console = os.Stderr
	default:
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	writers := make([]io.Writer, 0, 2)
	if console != nil {
		writers = append(writers, console)
	}
	if cfg.File != "" {
		writers = append(writers, zerolog.ConsoleWriter{
			NoColor: true,
			Out: &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			},
		})
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 1:
		out = writers[0]
	case 2:
		out = zerolog.MultiLevelWriter(writers...)
	}
	logger = zerolog.New(out).With().Timestamp().Logger()

	if cfg.Level != "" {
		level, err := ParseLogLevel(cfg.Level)
		if err != nil {
			return err
		}
		SetLogLevel(level)
	} else {
		SetLogLevel(logLevel)
	}
	return nil
}

// ParseLogLevel converts a level name into a LogLevel
func ParseLogLevel(name string) (LogLevel, error) {
	switch strings.ToLower(name) {
	case "error":
		return LogLevelError, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "info":
		return LogLevelInfo, nil
	case "debug", "trace":
		return LogLevelDebug, nil
	}
	return LogLevelInfo, &ConfigError{Key: "log-level", Value: name}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel = level
	switch level {
	case LogLevelError:
		logger = logger.Level(zerolog.ErrorLevel)
	case LogLevelWarn:
		logger = logger.Level(zerolog.WarnLevel)
	case LogLevelInfo:
		logger = logger.Level(zerolog.InfoLevel)
	default:
		logger = logger.Level(zerolog.DebugLevel)
	}
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logger.Error().Msgf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logger.Warn().Msgf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logger.Info().Msgf(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logger.Debug().Msgf(format, args...)
}
