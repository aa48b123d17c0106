// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gviegas/rendercore/driver"
	"github.com/gviegas/rendercore/wsi"
)

func newSurfErr(s string) error { return errors.New("surface: " + s) }

// Surface is the presentation surface.
// It owns a swapchain of MaxFrame back-buffers and one
// render target view per back-buffer.
type Surface struct {
	dev  *Device
	fs   *FrameSync
	win  wsi.Window
	sc   driver.Swapchain
	heap driver.DescHeap
	// References to back-buffers, valid only when
	// nview is MaxFrame.
	bufs  [MaxFrame]driver.Image
	nview int
	cur   int

	width   int
	height  int
	resizes uint64
}

// NewSurface creates a swapchain sized to win's client
// area, with MaxFrame back-buffers, and a view of each
// back-buffer.
// No views are created if the client area is empty.
func NewSurface(dev *Device, fs *FrameSync, win wsi.Window) (s *Surface, err error) {
	if win == nil {
		return nil, newSurfErr("nil wsi.Window in call to NewSurface")
	}
	pres, ok := dev.GPU().(driver.Presenter)
	if !ok {
		return nil, fmt.Errorf("surface: %w", driver.ErrCannotPresent)
	}
	s = &Surface{dev: dev, fs: fs, win: win}
	defer func() {
		if err != nil {
			s.Free()
			s = nil
		}
	}()
	s.width, s.height = win.ClientSize()
	s.sc, err = pres.NewSwapchain(win, dev.Queue(), &driver.SwapchainDesc{
		Width:  s.width,
		Height: s.height,
		Count:  MaxFrame,
		Format: driver.RGBA8un,
	})
	if err != nil {
		return s, fmt.Errorf("surface: %w", err)
	}
	if s.heap, err = dev.GPU().NewDescHeap(MaxFrame); err != nil {
		return s, fmt.Errorf("surface: %w", err)
	}
	if s.width > 0 && s.height > 0 {
		if err = s.createViews(); err != nil {
			return s, err
		}
	}
	Logger().Info("surface created", slog.Int("width", s.width), slog.Int("height", s.height), slog.Int("buffers", MaxFrame))
	return s, nil
}

// createViews obtains the back-buffers and creates a
// render target view of each.
func (s *Surface) createViews() error {
	for i := range s.bufs {
		img, err := s.sc.Buffer(i)
		if err != nil {
			return fmt.Errorf("surface: %w", err)
		}
		s.bufs[i] = img
		if err := s.heap.SetRenderTarget(i, img); err != nil {
			return fmt.Errorf("surface: %w", err)
		}
		s.nview++
	}
	return nil
}

// releaseBuffers drops every back-buffer reference.
func (s *Surface) releaseBuffers() {
	for i := range s.bufs {
		if s.bufs[i] != nil {
			s.bufs[i].Destroy()
			s.bufs[i] = nil
		}
	}
	s.nview = 0
}

// CurrentIndex returns the index of the back-buffer that
// will be presented next, as defined by the swapchain.
// This is the frame slot to use for the next frame.
func (s *Surface) CurrentIndex() int {
	s.cur = s.sc.CurrentIndex()
	return s.cur
}

// Resize resizes the back-buffers.
// It is a no-op if the size is unchanged. Otherwise it
// flushes the GPU, releases the back-buffers, resets the
// fence values of every frame slot and resizes the
// swapchain, preserving its format and flags.
// Views are recreated only if neither dimension is zero.
// Resizing while a frame is being recorded panics.
func (s *Surface) Resize(width, height int) error {
	if slot := s.fs.Recording(); slot >= 0 {
		panic(fmt.Sprintf("engine: Surface.Resize called while recording frame slot %d", slot))
	}
	if width < 0 || height < 0 {
		return newSurfErr(fmt.Sprintf("invalid size %dx%d", width, height))
	}
	if width == s.width && height == s.height {
		return nil
	}
	if err := s.fs.Flush(); err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	s.releaseBuffers()
	s.fs.resetSlots()
	desc := s.sc.Desc()
	if err := s.sc.ResizeBuffers(MaxFrame, width, height, desc.Format, desc.Flags); err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	s.width, s.height = width, height
	s.resizes++
	if width > 0 && height > 0 {
		if err := s.createViews(); err != nil {
			return err
		}
	}
	Logger().Info("surface resized", slog.Int("width", width), slog.Int("height", height), slog.Int("views", s.nview))
	return nil
}

// ResizeToWindow calls Resize with the window's current
// client area.
// Like Resize, it panics if a frame is being recorded.
func (s *Surface) ResizeToWindow() error {
	return s.Resize(s.win.ClientSize())
}

// Present presents the current back-buffer with no
// vertical sync and no flags.
func (s *Surface) Present() error {
	if err := s.sc.Present(0, 0); err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	return nil
}

// CurrentBackBuffer returns the back-buffer identified by
// the last call to CurrentIndex.
// It returns nil if the surface has no views (e.g., the
// window is minimized).
func (s *Surface) CurrentBackBuffer() driver.Image {
	if s.nview == 0 {
		return nil
	}
	return s.bufs[s.cur]
}

// RenderTargetView returns the view of the back-buffer
// identified by the last call to CurrentIndex.
// ok is false if the surface has no views.
func (s *Surface) RenderTargetView() (rtv driver.CPUHandle, ok bool) {
	if s.nview == 0 {
		return 0, false
	}
	return s.heap.CPUHandle(s.cur), true
}

// Views returns the number of render target views.
// It is either zero or MaxFrame.
func (s *Surface) Views() int { return s.nview }

// Width returns the width of the back-buffers.
func (s *Surface) Width() int { return s.width }

// Height returns the height of the back-buffers.
func (s *Surface) Height() int { return s.height }

// Window returns the wsi.Window associated with s.
func (s *Surface) Window() wsi.Window { return s.win }

// Swapchain returns the driver.Swapchain.
func (s *Surface) Swapchain() driver.Swapchain { return s.sc }

// Free releases the back-buffers and destroys the
// swapchain and descriptor heap.
// The GPU must be idle.
func (s *Surface) Free() {
	s.releaseBuffers()
	if s.heap != nil {
		s.heap.Destroy()
		s.heap = nil
	}
	if s.sc != nil {
		s.sc.Destroy()
		s.sc = nil
	}
}
