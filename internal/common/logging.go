package common

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a config level name to a zerolog level, Info for anything
// unknown.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetupLogging sets the global level and output. Production writes JSON
// lines, everything else gets the console writer.
func SetupLogging(level string) {
	SetupLoggingTo(os.Stdout, level, os.Getenv("APP_ENV"))
}

func SetupLoggingTo(out io.Writer, level, env string) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	if env == "production" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}
