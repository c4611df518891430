package logger

import (
	"io"
	stdlog "log"
	"os"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

var zlog = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the process-wide logger. Development gets console output,
// everything else JSON on stdout.
func Init(env string) {
	var w io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if env == "development" || env == "dev" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}
	if env == "test" {
		level = zerolog.Disabled
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zlog = zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", "carbon-codex").
		Logger()
}

// Get returns the process-wide logger.
func Get() *zerolog.Logger {
	return &zlog
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return zlog.With().Str("component", name).Logger()
}

// WithRequestID returns a child logger tagged with a request id.
func WithRequestID(requestID string) zerolog.Logger {
	return zlog.With().Str("request_id", requestID).Logger()
}

// Gorm returns a gorm logger that writes through zerolog.
func Gorm(slowThreshold time.Duration) gormlogger.Interface {
	w := zlog.With().Str("component", "gorm").Logger()
	return gormlogger.New(
		stdlog.New(w, "", 0),
		gormlogger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
