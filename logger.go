// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package marcher

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while the render loop is logging.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for marcher and all its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used by marcher:
//   - [slog.LevelDebug]: buffer allocation sizes, per-dispatch details
//   - [slog.LevelInfo]: device enumeration and selection, kernel rebuilds
//   - [slog.LevelWarn]: kernel build failures, resource release errors
//
// Example:
//
//	marcher.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by marcher.
// Sub-packages call this so they share one configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
