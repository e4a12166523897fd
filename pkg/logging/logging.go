// Package logging configures the global zerolog logger for dotlink.
// Output goes to the console and, in parallel, to a plain-text log file of
// timestamped, severity-tagged lines with no ANSI escapes.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level names accepted by --log-level. NOTICE maps onto Info (zerolog has no
// notice level), ALL onto Trace.
const (
	LevelFatal  = "FATAL"
	LevelError  = "ERROR"
	LevelWarn   = "WARN"
	LevelInfo   = "INFO"
	LevelNotice = "NOTICE"
	LevelDebug  = "DEBUG"
	LevelAll    = "ALL"
	LevelOff    = "OFF"
)

// Config controls logger setup for one run.
type Config struct {
	// Level is one of the names above. Default is ERROR.
	Level string
	// File overrides the default log file location.
	File string
	// Verbosity is the -v count; at 2+ caller info is attached and the
	// console level is raised to at least debug.
	Verbosity int
	// Quiet drops console output entirely. The file writer is unaffected.
	Quiet bool
}

// ParseLevel maps a level name onto a zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case LevelFatal:
		return zerolog.FatalLevel, nil
	case LevelError, "":
		return zerolog.ErrorLevel, nil
	case LevelWarn:
		return zerolog.WarnLevel, nil
	case LevelInfo, LevelNotice:
		return zerolog.InfoLevel, nil
	case LevelDebug:
		return zerolog.DebugLevel, nil
	case LevelAll:
		return zerolog.TraceLevel, nil
	case LevelOff:
		return zerolog.Disabled, nil
	}
	return zerolog.ErrorLevel, fmt.Errorf("unknown log level %q", name)
}

// Setup configures the global logger. It never fails: if the log file cannot
// be created, logging continues to the console only and a warning is emitted.
func Setup(cfg Config) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.ErrorLevel
	}
	if cfg.Verbosity >= 2 && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	if !cfg.Quiet {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		})
	}

	logFile := cfg.File
	if logFile == "" {
		logFile = DefaultLogFile()
	}
	fileHandle, fileErr := openLogFile(logFile)
	if fileErr == nil {
		// Plain console formatting into the file keeps the lines
		// severity-tagged and timestamped without escape sequences.
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        fileHandle,
			NoColor:    true,
			TimeFormat: time.RFC3339,
		})
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", logFile).Msg("Failed to create log file, logging to console only")
	}

	if cfg.Verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().
		Str("level", level.String()).
		Str("logFile", logFile).
		Int("verbosity", cfg.Verbosity).
		Msg("Logger initialized")
}

// GetLogger returns a contextualized logger with the given component name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// DefaultLogFile returns the log path used when --log-file is not given,
// under the XDG state directory.
func DefaultLogFile() string {
	stateHome := xdg.StateHome
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "dotlink.log"
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "dotlink", "dotlink.log")
}

func openLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}
