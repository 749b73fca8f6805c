package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process. Development gets a console
// writer at debug level; other environments log JSON. A non-empty level
// overrides the environment default.
func Setup(environment, level string) zerolog.Logger {
	return SetupWithWriter(environment, level, nil)
}

// SetupWithWriter is Setup with an explicit output (nil means stdout).
func SetupWithWriter(environment, level string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if out == nil {
		out = os.Stdout
	}

	lvl := zerolog.InfoLevel
	if environment == "development" {
		lvl = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: out}
	}
	if level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			lvl = parsed
		}
	}

	logger := zerolog.New(out).With().Timestamp().Logger().Level(lvl)
	log.Logger = logger
	return logger
}
