// Package logging configures the process-wide logrus logger and provides
// gin middleware that logs through it.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls log output.
type Options struct {
	// Level is one of debug, info, warn, error (aliases accepted, see
	// SetLogLevel).
	Level string
	// Format is "text" (default) or "json".
	Format string
	// File, when set, receives logs instead of stderr and is rotated.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Writer overrides the output entirely. Tests use it.
	Writer io.Writer
}

// Setup applies opts to the standard logger. The returned closer releases
// the log file, if any.
func Setup(opts Options) io.Closer {
	SetLogLevel(opts.Level)

	if strings.EqualFold(opts.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	switch {
	case opts.Writer != nil:
		log.SetOutput(opts.Writer)
		return nopCloser{}
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			log.SetOutput(os.Stderr)
			log.WithError(err).Warn("cannot create log directory, logging to stderr")
			return nopCloser{}
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
			Compress:   true,
		}
		log.SetOutput(lj)
		return lj
	default:
		// stdout carries MCP frames and command output.
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}
}

// SetLogLevel sets the standard logger's level from a loose name. Unknown
// names fall back to info.
func SetLogLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "verbose":
		log.SetLevel(log.DebugLevel)
	case "warn", "warning":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	case "quiet", "silent":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
