// Package logging provides the operational logger shared by every
// xstreamrt component: pools, schedulers, and the association layer
// that binds them.
package logging

import (
	"log/slog"
	"os"
	"sync/atomic"
)

var (
	opLogger atomic.Pointer[slog.Logger]
	logLevel = new(slog.LevelVar)
)

func init() {
	logLevel.Set(slog.LevelInfo)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	opLogger.Store(slog.New(handler))
}

// Op returns the operational logger. Failure sites in pool and sched
// log through this logger with the operation name and error, per the
// "diagnostics at the failure site" policy: the caller always gets the
// error back too, this is for operators tailing stderr.
func Op() *slog.Logger {
	return opLogger.Load()
}

// SetLevel changes the level of the operational logger.
func SetLevel(level slog.Level) {
	logLevel.Set(level)
}

// SetLevelFromString sets the level from a config string. Unrecognized
// values are ignored and leave the current level untouched.
func SetLevelFromString(level string) {
	switch level {
	case "debug", "DEBUG":
		logLevel.Set(slog.LevelDebug)
	case "info", "INFO":
		logLevel.Set(slog.LevelInfo)
	case "warn", "WARN", "warning", "WARNING":
		logLevel.Set(slog.LevelWarn)
	case "error", "ERROR":
		logLevel.Set(slog.LevelError)
	}
}
