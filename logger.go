// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/fluxcap/surface"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for fluxcap and its surface backends.
// By default, fluxcap produces no log output. Call SetLogger once at process
// start to enable logging; the capture pipeline itself never configures it.
//
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by fluxcap:
//   - [slog.LevelDebug]: per-stage diagnostics (step progress, buffer sizes)
//   - [slog.LevelInfo]: run lifecycle (resolution, backend, output path)
//   - [slog.LevelWarn]: non-fatal issues (teardown failures)
//
// Example:
//
//	fluxcap.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// Backends share the same configuration.
	surface.SetLogger(l)
}

// Logger returns the current logger used by fluxcap.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
