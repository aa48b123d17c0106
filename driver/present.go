// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"errors"

	"github.com/gviegas/rendercore/wsi"
)

// ErrCannotPresent means that the driver and/or device do not
// support presentation.
var ErrCannotPresent = errors.New("driver: presentation not supported")

// ErrWindow represents an error related to a specific window.
// This error usually indicates that a window misconfiguration
// is preventing correct operation.
var ErrWindow = errors.New("driver: window-related error")

// ErrSwapchain represents an error related to a specific
// swapchain.
// This error usually indicates that changes to the window or
// compositor made the swapchain unusable.
var ErrSwapchain = errors.New("driver: swapchain-related error")

// Presenter is the interface that a GPU may implement
// to enable presentation on a display.
type Presenter interface {
	// NewSwapchain creates a new swapchain that presents
	// into win.
	// Presentation operations are ordered with respect to
	// the work submitted to q.
	// Only one swapchain can be associated with a specific
	// wsi.Window at a time.
	NewSwapchain(win wsi.Window, q Queue, desc *SwapchainDesc) (Swapchain, error)
}

// SwapchainFlag is a mask of swapchain creation flags.
type SwapchainFlag int

// Swapchain flags.
const (
	SFAllowTearing SwapchainFlag = 1 << iota
)

// SwapchainDesc describes a swapchain.
type SwapchainDesc struct {
	Width  int
	Height int
	Count  int
	Format PixelFmt
	Flags  SwapchainFlag
}

// PresentFlag is a mask of presentation flags.
type PresentFlag int

// Present flags.
const (
	// Present without waiting for the vertical blank
	// (requires SFAllowTearing).
	PFAllowTearing PresentFlag = 1 << iota
	// Fail instead of blocking when the queue of
	// pending presentations is full.
	PFDoNotWait
)

// Swapchain is the interface that defines a flip-model
// swapchain.
// Back-buffers are used in the order defined by the
// presentation engine, which may not be round-robin.
// To present, one queries CurrentIndex, transitions that
// back-buffer from RSPresent to RSRenderTarget, records
// and executes commands targeting it, transitions it back
// to RSPresent and then calls Present.
type Swapchain interface {
	Destroyer

	// CurrentIndex returns the index of the back-buffer
	// that will be presented next.
	CurrentIndex() int

	// Buffer returns a reference to the ith back-buffer.
	// The reference must be destroyed before calling
	// ResizeBuffers.
	Buffer(i int) (Image, error)

	// Present presents the current back-buffer.
	// interval is the number of vertical blanks to
	// synchronize with; zero presents immediately.
	Present(interval int, flags PresentFlag) error

	// ResizeBuffers recreates the back-buffers.
	// It fails with ErrInUse if any reference returned
	// by Buffer is still alive.
	// The GPU must not be using any back-buffer.
	// Zero width or height is valid (e.g., for a
	// minimized window).
	ResizeBuffers(count, width, height int, pf PixelFmt, flags SwapchainFlag) error

	// Desc returns the current swapchain description.
	Desc() SwapchainDesc
}
