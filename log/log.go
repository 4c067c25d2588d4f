// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package log defines the leveled Logger interface shared by every
// subsystem package (blockchain, mempool, ingestor, store). Each
// subsystem holds its own unexported `log` variable, defaulted to
// Disabled, and exposes UseLogger/DisableLog so a caller wires in a
// real backend only if it wants one.
package log

import "log/slog"

// Level describes the severity of a log message, ordered from most to
// least verbose.
type Level uint32

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	default:
		return "off"
	}
}

// LevelFromString maps a level name to a Level, defaulting to LevelInfo
// and ok=false when s is not recognised.
func LevelFromString(s string) (l Level, ok bool) {
	switch s {
	case "trace", "trc":
		return LevelTrace, true
	case "debug", "dbg":
		return LevelDebug, true
	case "info", "inf":
		return LevelInfo, true
	case "warn", "wrn":
		return LevelWarn, true
	case "error", "err":
		return LevelError, true
	case "critical", "crt":
		return LevelCritical, true
	case "off":
		return LevelOff, true
	default:
		return LevelInfo, false
	}
}

// Logger is the interface each subsystem logs through. Implementations
// must be safe for concurrent use.
type Logger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Criticalf(format string, args ...interface{})

	Trace(args ...interface{})
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Critical(args ...interface{})

	// Level returns the current logging level.
	Level() Level
	// SetLevel changes the logging level to the passed level.
	SetLevel(level Level)
}

// toSlogLevel converts a Level to the nearest slog.Level, reserving two
// custom values below Debug and above Error since slog only defines
// four built-in levels.
func toSlogLevel(l Level) slog.Level {
	switch l {
	case LevelTrace:
		return slog.Level(-8)
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelCritical:
		return slog.Level(12)
	default:
		return slog.Level(16)
	}
}
