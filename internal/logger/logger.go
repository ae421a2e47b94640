package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileName = "metascrape.log"

// Logger wraps zerolog and owns the optional rotating log file.
type Logger struct {
	zerolog.Logger
	rotator *lumberjack.Logger
}

// Config holds logger configuration.
type Config struct {
	Level      string
	Format     string // "console" or "json"
	Path       string // directory for log files, empty disables file output
	MaxSizeMB  int    // default: 10
	MaxBackups int    // default: 5
	MaxAgeDays int    // default: 30
	Compress   bool
}

// New creates a logger writing to out (stderr when nil) and, if cfg.Path is
// set, to a rotating file in that directory.
func New(cfg Config, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}

	var console io.Writer = out
	if cfg.Format != "json" {
		console = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	output := console
	var rotator *lumberjack.Logger
	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0o755); err == nil {
			rotator = &lumberjack.Logger{
				Filename:   filepath.Join(cfg.Path, logFileName),
				MaxSize:    orDefault(cfg.MaxSizeMB, 10),
				MaxBackups: orDefault(cfg.MaxBackups, 5),
				MaxAge:     orDefault(cfg.MaxAgeDays, 30),
				Compress:   cfg.Compress,
				LocalTime:  true,
			}
			output = io.MultiWriter(console, rotator)
		}
	}

	zl := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: zl, rotator: rotator}
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// Component returns a sub-logger tagged with the component name.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.Logger.With().Str("component", name).Logger()
}

// ParseLevel converts a level name to a zerolog level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
