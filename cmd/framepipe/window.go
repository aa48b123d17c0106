// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW must be used from the main thread.
	runtime.LockOSThread()
}

// window is a GLFW window that implements wsi.Window.
type window struct {
	w *glfw.Window
}

// newWindow initializes GLFW and creates a window
// with no client API.
func newWindow(width, height int, title string) (*window, error) {
	if err := glfw.Init(); err != nil {
		return nil, err
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	w, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	return &window{w}, nil
}

// SetSize requests a new client size.
func (w *window) SetSize(width, height int) {
	w.w.SetSize(width, height)
	glfw.PollEvents()
}

// Poll processes pending events and reports whether
// the window should stay open.
func (w *window) Poll() bool {
	glfw.PollEvents()
	return !w.w.ShouldClose()
}

// Close destroys the window and terminates GLFW.
func (w *window) Close() {
	w.w.Destroy()
	glfw.Terminate()
}
