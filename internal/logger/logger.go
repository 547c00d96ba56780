package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the application logger instance
var Logger zerolog.Logger

// Options tune where the logger writes
type Options struct {
	// Out receives console/json output. Defaults to os.Stdout.
	Out io.Writer
	// File, when set, also writes JSON lines to a rotating log file.
	File string
}

// Init initializes the logger with the given configuration
func Init(level, format string) {
	InitWithOptions(level, format, Options{})
}

// InitWithOptions initializes the logger writing to a custom sink
func InitWithOptions(level, format string, opts Options) {
	// Set log level
	logLevel := parseLogLevel(level)
	zerolog.SetGlobalLevel(logLevel)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	// Configure output format
	var primary io.Writer
	if strings.ToLower(format) == "json" {
		primary = out
	} else {
		// Console format with colors
		primary = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	}

	writer := primary
	if opts.File != "" {
		writer = zerolog.MultiLevelWriter(primary, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	Logger = zerolog.New(writer).With().
		Timestamp().
		Caller().
		Logger()

	// Set the global logger
	log.Logger = Logger
}

// parseLogLevel parses string log level to zerolog level
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetLogger returns the configured logger instance
func GetLogger() zerolog.Logger {
	return Logger
}
