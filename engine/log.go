// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards all records.
// Enabled returns false, so callers skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger sets the logger used by the engine.
// By default, the engine produces no log output.
// Passing nil restores the default.
//
// Levels used:
//   - [slog.LevelDebug]: per-frame events (slot waits, fence values)
//   - [slog.LevelInfo]: lifecycle events (device, swapchain, resize)
//   - [slog.LevelWarn]: validation messages
//
// It is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the logger used by the engine.
func Logger() *slog.Logger { return loggerPtr.Load() }
