// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gviegas/rendercore/driver"
	"github.com/gviegas/rendercore/wsi"
)

// Limits on the number of back-buffers.
const (
	minBuffers = 2
	maxBuffers = 16
)

// swapchain implements driver.Swapchain.
// Back-buffers are presented in the driver's present
// order (round-robin by default), starting from the
// beginning of the order after each resize.
type swapchain struct {
	resource
	win wsi.Window
	q   *queue

	mu    sync.Mutex
	desc  driver.SwapchainDesc
	imgs  []*image
	order []int
	pos   int
	cur   int
}

// NewSwapchain creates a new swapchain.
func (g *GPU) NewSwapchain(win wsi.Window, q driver.Queue, desc *driver.SwapchainDesc) (driver.Swapchain, error) {
	qu, ok := q.(*queue)
	if !ok || qu == nil {
		return nil, errors.New("soft: invalid queue")
	}
	if win == nil {
		return nil, driver.ErrWindow
	}
	if desc.Count < minBuffers || desc.Count > maxBuffers {
		return nil, fmt.Errorf("soft: %w: invalid buffer count %d", driver.ErrSwapchain, desc.Count)
	}
	if desc.Format.Size() == 0 {
		return nil, fmt.Errorf("soft: %w: invalid pixel format %d", driver.ErrSwapchain, desc.Format)
	}
	if desc.Width < 0 || desc.Height < 0 {
		return nil, fmt.Errorf("soft: %w: invalid size %dx%d", driver.ErrSwapchain, desc.Width, desc.Height)
	}
	g.mu.Lock()
	if g.windows[win] {
		g.mu.Unlock()
		return nil, fmt.Errorf("soft: %w: window already has a swapchain", driver.ErrWindow)
	}
	g.windows[win] = true
	g.mu.Unlock()

	s := &swapchain{win: win, q: qu, desc: *desc}
	s.init(g)
	s.makeImages()
	return s, nil
}

// makeImages creates the back-buffers.
// s.mu must be held (or s not yet shared).
func (s *swapchain) makeImages() {
	s.imgs = make([]*image, s.desc.Count)
	for i := range s.imgs {
		s.imgs[i] = newImage(s.gpu, s.desc.Width, s.desc.Height, s.desc.Format)
	}
	s.order = s.gpu.drv.presentOrder(len(s.imgs))
	s.pos = 0
	s.cur = s.order[0]
}

// CurrentIndex returns the index of the next back-buffer.
func (s *swapchain) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Buffer returns a reference to the ith back-buffer.
func (s *swapchain) Buffer(i int) (driver.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.imgs) {
		return nil, fmt.Errorf("soft: back-buffer index %d out of bounds", i)
	}
	img := s.imgs[i]
	img.refs.Add(1)
	return &imageRef{img: img}, nil
}

// Present presents the current back-buffer.
func (s *swapchain) Present(interval int, flags driver.PresentFlag) error {
	s.gpu.dbg.raise()
	if interval < 0 || interval > 4 {
		return fmt.Errorf("soft: invalid sync interval %d", interval)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.imgs == nil {
		return fmt.Errorf("soft: %w: swapchain destroyed", driver.ErrSwapchain)
	}
	if flags&driver.PFAllowTearing != 0 && (interval != 0 || s.desc.Flags&driver.SFAllowTearing == 0) {
		return fmt.Errorf("soft: %w: tearing not allowed", driver.ErrSwapchain)
	}
	img := s.imgs[s.cur]
	img.acquire()
	s.q.push(item{kind: itemPresent, img: img})
	s.pos = (s.pos + 1) % len(s.order)
	s.cur = s.order[s.pos]
	return nil
}

// ResizeBuffers recreates the back-buffers.
// Zero count or FUnknown format keep the current values.
func (s *swapchain) ResizeBuffers(count, width, height int, pf driver.PixelFmt, flags driver.SwapchainFlag) error {
	s.gpu.dbg.raise()
	s.mu.Lock()
	defer s.mu.Unlock()
	if count == 0 {
		count = s.desc.Count
	}
	if pf == driver.FUnknown {
		pf = s.desc.Format
	}
	switch {
	case count < minBuffers || count > maxBuffers:
		return fmt.Errorf("soft: %w: invalid buffer count %d", driver.ErrSwapchain, count)
	case pf.Size() == 0:
		return fmt.Errorf("soft: %w: invalid pixel format %d", driver.ErrSwapchain, pf)
	case width < 0 || height < 0:
		return fmt.Errorf("soft: %w: invalid size %dx%d", driver.ErrSwapchain, width, height)
	}
	if err := s.checkIdle("resized"); err != nil {
		return err
	}
	for _, img := range s.imgs {
		img.invalidate()
	}
	s.desc = driver.SwapchainDesc{
		Width:  width,
		Height: height,
		Count:  count,
		Format: pf,
		Flags:  flags,
	}
	s.makeImages()
	return nil
}

// checkIdle fails if a back-buffer is referenced.
// s.mu must be held.
func (s *swapchain) checkIdle(what string) error {
	for i, img := range s.imgs {
		if n := img.refs.Load(); n > 0 {
			s.gpu.dbg.report(driver.SError, msgResizeInUse, "swapchain %s with %d outstanding reference(s) to back-buffer %d", what, n, i)
			return fmt.Errorf("soft: %w: back-buffer %d is referenced", driver.ErrInUse, i)
		}
		if img.busy() {
			s.gpu.dbg.report(driver.SCorruption, msgResizeInFlight, "swapchain %s while back-buffer %d is used by the GPU", what, i)
			return fmt.Errorf("soft: %w: back-buffer %d is used by the GPU", driver.ErrInUse, i)
		}
	}
	return nil
}

// Desc returns the swapchain description.
func (s *swapchain) Desc() driver.SwapchainDesc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desc
}

// Destroy destroys the swapchain.
func (s *swapchain) Destroy() {
	if !s.destroy("swapchain") {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gpu.mu.Lock()
	delete(s.gpu.windows, s.win)
	s.gpu.mu.Unlock()
	s.checkIdle("destroyed")
	for _, img := range s.imgs {
		img.invalidate()
	}
	s.imgs = nil
}
