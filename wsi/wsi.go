// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package wsi provides window system integration (WSI)
// for GPU drivers.
// Window creation and message handling belong to the
// application; this package only describes what a
// driver needs from a window: a native handle to
// present into and the size of its client area.
package wsi

import "sync"

// Window is the interface that defines a drawable window.
// The purpose of a window is to provide a surface into
// which a GPU can draw.
type Window interface {
	// Handle returns the native window handle
	// (e.g., HWND on Windows).
	// Headless windows return 0.
	Handle() uintptr

	// ClientSize returns the size of the window's
	// client area in pixels.
	// A minimized window reports a zero width
	// and/or height.
	ClientSize() (width, height int)
}

// Fixed is a headless Window whose client area is
// set explicitly.
// It is safe for concurrent use.
type Fixed struct {
	mu     sync.Mutex
	width  int
	height int
}

// NewFixed creates a new headless window.
func NewFixed(width, height int) *Fixed {
	return &Fixed{width: width, height: height}
}

// Handle returns 0.
func (w *Fixed) Handle() uintptr { return 0 }

// ClientSize returns the current client area.
func (w *Fixed) ClientSize() (width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// Resize sets the client area.
// Negative values are clamped to zero.
func (w *Fixed) Resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width = max(width, 0)
	w.height = max(height, 0)
}
