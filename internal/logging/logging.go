// Package logging provides subsystem loggers for auctiond. Every component
// constructor accepts a Logger; all logging goes through the provided logger.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/decred/slog"
)

// Logger is the logging interface handed to every subsystem.
type Logger = slog.Logger

// LoggerMaker allows creation of new log subsystems with predefined levels.
type LoggerMaker struct {
	*slog.Backend
	DefaultLevel slog.Level
	Levels       map[string]slog.Level
}

// NewLoggerMaker creates a LoggerMaker writing to w. The level spec is either
// a single level name applied to all subsystems ("debug") or a comma-separated
// list of subsystem=level pairs ("AUCT=trace,RPC=warn").
func NewLoggerMaker(w io.Writer, levelSpec string) (*LoggerMaker, error) {
	lm := &LoggerMaker{
		Backend:      slog.NewBackend(w),
		DefaultLevel: slog.LevelInfo,
		Levels:       make(map[string]slog.Level),
	}
	if levelSpec == "" {
		return lm, nil
	}

	for _, part := range strings.Split(levelSpec, ",") {
		name, levelName, found := strings.Cut(part, "=")
		if !found {
			level, ok := slog.LevelFromString(part)
			if !ok {
				return nil, fmt.Errorf("unknown log level %q", part)
			}
			lm.DefaultLevel = level
			continue
		}
		level, ok := slog.LevelFromString(levelName)
		if !ok {
			return nil, fmt.Errorf("unknown log level %q for subsystem %q", levelName, name)
		}
		lm.Levels[strings.ToUpper(name)] = level
	}
	return lm, nil
}

// NewLogger creates a new Logger for the subsystem with the given name. If a
// level was set for the subsystem in the level spec it is used, otherwise the
// DefaultLevel applies.
func (lm *LoggerMaker) NewLogger(name string) Logger {
	level, ok := lm.Levels[strings.ToUpper(name)]
	if !ok {
		level = lm.DefaultLevel
	}
	logger := lm.Backend.Logger(name)
	logger.SetLevel(level)
	return logger
}

// SubLogger creates a Logger named "parent[name]" inheriting the parent's
// configured level.
func (lm *LoggerMaker) SubLogger(parent, name string) Logger {
	level, ok := lm.Levels[strings.ToUpper(parent)]
	if !ok {
		level = lm.DefaultLevel
	}
	logger := lm.Backend.Logger(fmt.Sprintf("%s[%s]", parent, name))
	logger.SetLevel(level)
	return logger
}

// Disabled is a Logger that discards everything. Useful as a default in
// constructors before SetLogger is called.
var Disabled = slog.Disabled
