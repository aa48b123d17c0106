// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build windows && (amd64 || arm64)

package d3d12

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"github.com/gviegas/rendercore/driver"
	"github.com/gviegas/rendercore/wsi"
)

func toDXGI(pf driver.PixelFmt) uint32 {
	switch pf {
	case driver.RGBA8un:
		return dxgiFormatR8G8B8A8UNorm
	case driver.RGBA8sRGB:
		return dxgiFormatR8G8B8A8UNormSRGB
	case driver.BGRA8un:
		return dxgiFormatB8G8R8A8UNorm
	case driver.BGRA8sRGB:
		return dxgiFormatB8G8R8A8UNormSRGB
	case driver.RGBA16f:
		return dxgiFormatR16G16B16A16F
	case driver.RGB10A2un:
		return dxgiFormatR10G10B10A2UNorm
	}
	return dxgiFormatUnknown
}

func fromDXGI(f uint32) driver.PixelFmt {
	for pf := driver.RGBA8un; pf <= driver.RGB10A2un; pf++ {
		if toDXGI(pf) == f {
			return pf
		}
	}
	return driver.FUnknown
}

func scFlags(f driver.SwapchainFlag) uint32 {
	if f&driver.SFAllowTearing != 0 {
		return dxgiSwapChainFlagAllowTearing
	}
	return 0
}

// swapchain implements driver.Swapchain.
type swapchain struct {
	gpu  *GPU
	obj  *com
	desc driver.SwapchainDesc
}

// NewSwapchain creates a flip-discard swapchain for the
// window's HWND.
func (g *GPU) NewSwapchain(win wsi.Window, q driver.Queue, desc *driver.SwapchainDesc) (driver.Swapchain, error) {
	hwnd := win.Handle()
	if hwnd == 0 {
		return nil, fmt.Errorf("d3d12: %w: window has no native handle", driver.ErrWindow)
	}
	qu, ok := q.(*queue)
	if !ok || qu == nil {
		return nil, errors.New("d3d12: invalid queue")
	}
	format := toDXGI(desc.Format)
	if format == dxgiFormatUnknown {
		return nil, fmt.Errorf("d3d12: %w: invalid pixel format %d", driver.ErrSwapchain, desc.Format)
	}
	d1 := swapChainDesc1{
		Width:       uint32(desc.Width),
		Height:      uint32(desc.Height),
		Format:      format,
		SampleDesc:  sampleDesc{Count: 1},
		BufferUsage: dxgiUsageRenderTargetOutput,
		BufferCount: uint32(desc.Count),
		Scaling:     dxgiScalingNone,
		SwapEffect:  dxgiSwapEffectFlipDiscard,
		AlphaMode:   dxgiAlphaModeUnspecified,
		Flags:       scFlags(desc.Flags),
	}
	var sc1 *com
	r, _, _ := syscall.SyscallN(g.factory.fn(factoryCreateSwapChainForHwnd), g.factory.this(),
		qu.obj.this(), hwnd, uintptr(unsafe.Pointer(&d1)), 0, 0, uintptr(unsafe.Pointer(&sc1)))
	if err := check(r, "CreateSwapChainForHwnd"); err != nil {
		return nil, fmt.Errorf("%w: %w", driver.ErrSwapchain, g.removed(err))
	}
	defer sc1.Release()
	sc3, err := sc1.query(&iidSwapChain3)
	if err != nil {
		return nil, err
	}
	syscall.SyscallN(g.factory.fn(factoryMakeWindowAssociation), g.factory.this(), hwnd, dxgiMWANoAltEnter)
	s := &swapchain{gpu: g, obj: sc3}
	if err := s.updateDesc(); err != nil {
		sc3.Release()
		return nil, err
	}
	return s, nil
}

// updateDesc queries the swapchain description, since
// DXGI may replace zero sizes by the window's.
func (s *swapchain) updateDesc() error {
	var d1 swapChainDesc1
	r, _, _ := syscall.SyscallN(s.obj.fn(scGetDesc1), s.obj.this(), uintptr(unsafe.Pointer(&d1)))
	if err := check(r, "IDXGISwapChain1.GetDesc1"); err != nil {
		return err
	}
	s.desc = driver.SwapchainDesc{
		Width:  int(d1.Width),
		Height: int(d1.Height),
		Count:  int(d1.BufferCount),
		Format: fromDXGI(d1.Format),
	}
	if d1.Flags&dxgiSwapChainFlagAllowTearing != 0 {
		s.desc.Flags |= driver.SFAllowTearing
	}
	return nil
}

// CurrentIndex returns GetCurrentBackBufferIndex.
func (s *swapchain) CurrentIndex() int {
	r, _, _ := syscall.SyscallN(s.obj.fn(scGetCurrentBackBufferIndex), s.obj.this())
	return int(uint32(r))
}

// Buffer returns a new reference to the ith back-buffer.
func (s *swapchain) Buffer(i int) (driver.Image, error) {
	var p *com
	r, _, _ := syscall.SyscallN(s.obj.fn(scGetBuffer), s.obj.this(), uintptr(i), uintptr(unsafe.Pointer(&iidResource)), uintptr(unsafe.Pointer(&p)))
	if err := check(r, "IDXGISwapChain.GetBuffer"); err != nil {
		return nil, err
	}
	return &image{obj: p, width: s.desc.Width, height: s.desc.Height, format: s.desc.Format}, nil
}

// Present presents the current back-buffer.
func (s *swapchain) Present(interval int, flags driver.PresentFlag) error {
	var f uintptr
	if flags&driver.PFAllowTearing != 0 {
		f |= dxgiPresentAllowTearing
	}
	if flags&driver.PFDoNotWait != 0 {
		f |= dxgiPresentDoNotWait
	}
	r, _, _ := syscall.SyscallN(s.obj.fn(scPresent), s.obj.this(), uintptr(interval), f)
	if err := check(r, "IDXGISwapChain.Present"); err != nil {
		return s.gpu.removed(err)
	}
	return nil
}

// ResizeBuffers resizes the back-buffers.
func (s *swapchain) ResizeBuffers(count, width, height int, pf driver.PixelFmt, flags driver.SwapchainFlag) error {
	r, _, _ := syscall.SyscallN(s.obj.fn(scResizeBuffers), s.obj.this(),
		uintptr(count), uintptr(width), uintptr(height), uintptr(toDXGI(pf)), uintptr(scFlags(flags)))
	if err := check(r, "IDXGISwapChain.ResizeBuffers"); err != nil {
		if isHRESULT(err, dxgiErrorInvalidCall) {
			// Back-buffer references are still alive.
			return fmt.Errorf("%w: %w", driver.ErrInUse, err)
		}
		return s.gpu.removed(err)
	}
	return s.updateDesc()
}

// Desc returns the swapchain description.
func (s *swapchain) Desc() driver.SwapchainDesc { return s.desc }

// Destroy releases the swapchain.
func (s *swapchain) Destroy() {
	s.obj.Release()
	s.obj = nil
}
