// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// slogLogger adapts an slog.Logger to the Logger interface, with a
// settable level so UseLogger callers can change verbosity at runtime
// without re-wiring the backend.
type slogLogger struct {
	subsystem string
	logger    *slog.Logger
	level     atomic.Uint32
}

// NewBackend creates a Backend whose subsystem Loggers write leveled,
// timestamped lines to w. Multiple subsystem loggers may share one io.Writer; each line is
// tagged with the subsystem name passed to Subsystem.
func NewBackend(w io.Writer) *Backend {
	return &Backend{w: w}
}

// Backend is a shared sink that every subsystem Logger writes through.
// Each Logger returned by Subsystem is bound to the Backend's io.Writer
// (typically a jrick/logrotate file) at the time it is created; Backend
// has no method to replace that writer afterwards.
type Backend struct {
	w io.Writer
}

// Subsystem returns a Logger tagged with the given subsystem name,
// defaulted to LevelInfo.
func (b *Backend) Subsystem(name string) Logger {
	handler := slog.NewTextHandler(b.w, &slog.HandlerOptions{
		Level: toSlogLevel(LevelTrace),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(time.Now().UTC().Format("2006-01-02 15:04:05.000"))
			}
			return a
		},
	})
	l := &slogLogger{
		subsystem: name,
		logger:    slog.New(handler).With("subsystem", name),
	}
	l.level.Store(uint32(LevelInfo))
	return l
}

func (l *slogLogger) Level() Level {
	return Level(l.level.Load())
}

func (l *slogLogger) SetLevel(level Level) {
	l.level.Store(uint32(level))
}

func (l *slogLogger) enabled(level Level) bool {
	return level >= l.Level()
}

func (l *slogLogger) log(level Level, msg string) {
	if !l.enabled(level) {
		return
	}
	l.logger.Log(context.Background(), toSlogLevel(level), msg)
}

func (l *slogLogger) Tracef(format string, args ...interface{}) {
	l.log(LevelTrace, fmt.Sprintf(format, args...))
}
func (l *slogLogger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, fmt.Sprintf(format, args...))
}
func (l *slogLogger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, fmt.Sprintf(format, args...))
}
func (l *slogLogger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...))
}
func (l *slogLogger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, fmt.Sprintf(format, args...))
}
func (l *slogLogger) Criticalf(format string, args ...interface{}) {
	l.log(LevelCritical, fmt.Sprintf(format, args...))
}

func (l *slogLogger) Trace(args ...interface{})    { l.log(LevelTrace, fmt.Sprint(args...)) }
func (l *slogLogger) Debug(args ...interface{})    { l.log(LevelDebug, fmt.Sprint(args...)) }
func (l *slogLogger) Info(args ...interface{})     { l.log(LevelInfo, fmt.Sprint(args...)) }
func (l *slogLogger) Warn(args ...interface{})     { l.log(LevelWarn, fmt.Sprint(args...)) }
func (l *slogLogger) Error(args ...interface{})    { l.log(LevelError, fmt.Sprint(args...)) }
func (l *slogLogger) Critical(args ...interface{}) { l.log(LevelCritical, fmt.Sprint(args...)) }
