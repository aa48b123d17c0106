// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32            = windows.NewLazySystemDLL("user32.dll")
	procGetClientRect = user32.NewProc("GetClientRect")
)

// rect mirrors the Win32 RECT structure.
type rect struct {
	left, top, right, bottom int32
}

// HWND is a Window backed by a native Win32 window
// created elsewhere (e.g., by GLFW or the application's
// own message loop).
type HWND windows.HWND

// Handle returns the HWND.
func (h HWND) Handle() uintptr { return uintptr(h) }

// ClientSize returns the size of the window's client
// area, as reported by GetClientRect.
// If the query fails, it returns zero for both values.
func (h HWND) ClientSize() (width, height int) {
	var r rect
	ret, _, _ := procGetClientRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return 0, 0
	}
	return int(r.right - r.left), int(r.bottom - r.top)
}
