// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const (
	JSON = "json"
	Text = "text"
	Tint = "tint"
)

// Types lists the accepted logging types.
var Types = []string{Tint, Text, JSON}

// New returns a logger of the given type writing to w. Tint output is only
// colored when w is a terminal.
func New(w io.Writer, loggingType string, logLevelName string) (*slog.Logger, error) {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(logLevelName))
	if err != nil {
		return nil, fmt.Errorf("could not parse log level: %w", err)
	}

	var (
		logHandlerOptions = slog.HandlerOptions{
			AddSource: logLevel <= slog.LevelDebug,
			Level:     logLevel,
		}
		logHandler slog.Handler
	)

	switch loggingType {
	case JSON:
		logHandler = slog.NewJSONHandler(w, &logHandlerOptions)
	case Text:
		logHandler = slog.NewTextHandler(w, &logHandlerOptions)
	case Tint:
		logHandler = tint.NewHandler(w, &tint.Options{
			AddSource:  logHandlerOptions.AddSource,
			Level:      logHandlerOptions.Level,
			TimeFormat: "15:04:05.000",
			NoColor:    !isTerminal(w),
		})
	default:
		return nil, fmt.Errorf("unknown logging type: %s", loggingType)
	}

	return slog.New(logHandler), nil
}

// Initialize installs a logger writing to stderr as the slog default, so
// stdout stays free for command output.
func Initialize(loggingType string, logLevelName string) error {
	logger, err := New(os.Stderr, loggingType, logLevelName)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)
	slog.Debug("logging initialized", "type", loggingType, "logLevel", logLevelName)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
