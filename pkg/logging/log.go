package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger installs the console logger on stderr as the global logger.
func SetupLogger() {
	log.Logger = NewConsoleLogger(os.Stderr)
}

// NewConsoleLogger returns a human readable logger without ANSI colour codes.
func NewConsoleLogger(out io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("[ %s ]", i)
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

func GetLogger() zerolog.Logger {
	return log.Logger
}

// ForTransfer tags every event with the id of a single download so that interleaved
// logs from concurrent invocations can be told apart.
func ForTransfer(id string) zerolog.Logger {
	return log.Logger.With().Str("transfer_id", id).Logger()
}

// FromContext returns the logger attached to ctx with zerolog's WithContext, falling back to the
// global logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger := zerolog.Ctx(ctx); logger != nil && logger.GetLevel() != zerolog.Disabled {
		return *logger
	}
	return GetLogger()
}
