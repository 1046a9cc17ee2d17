package gracejoin

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger     zerolog.Logger
	defaultLoggerOnce sync.Once
)

// NewLogger returns a timestamped JSON logger writing to w. PRETTY=1 switches
// to console output and GHJ_LOG_LEVEL sets the level (default info).
func NewLogger(w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(w).With().Timestamp().Logger()
	if os.Getenv("PRETTY") == "1" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: w})
	}
	level, err := zerolog.ParseLevel(getEnvOrDefault("GHJ_LOG_LEVEL", "info"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// DefaultLogger is the stderr logger used when Options.Logger is unset.
func DefaultLogger() *zerolog.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = NewLogger(os.Stderr)
	})
	return &defaultLogger
}
