// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"unsafe"

	"github.com/gviegas/rendercore/wsi"
)

func (w *window) hwnd() wsi.HWND {
	return wsi.HWND(uintptr(unsafe.Pointer(w.w.GetWin32Window())))
}

// Handle returns the window's HWND.
func (w *window) Handle() uintptr { return w.hwnd().Handle() }

// ClientSize returns the size of the window's client
// area. It is zero while minimized.
func (w *window) ClientSize() (width, height int) { return w.hwnd().ClientSize() }
