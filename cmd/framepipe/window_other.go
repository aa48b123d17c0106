// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build !windows

package main

// Handle returns zero. Only the software driver
// presents to windows on this platform, and it does
// not need a native handle.
func (w *window) Handle() uintptr { return 0 }

// ClientSize returns the size of the framebuffer in
// pixels. It is zero while minimized.
func (w *window) ClientSize() (width, height int) {
	return w.w.GetFramebufferSize()
}
