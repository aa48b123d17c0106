// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build windows && (amd64 || arm64)

package d3d12

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"github.com/gviegas/rendercore/driver"
)

// buffer implements driver.Buffer.
// Host-visible buffers stay mapped for their lifetime.
type buffer struct {
	obj  *com
	heap driver.HeapType
	size int64
	data []byte
}

// NewBuffer creates a committed buffer resource.
func (g *GPU) NewBuffer(size int64, heap driver.HeapType) (driver.Buffer, error) {
	if size <= 0 {
		return nil, errors.New("d3d12: buffer size must be greater than zero")
	}
	props := heapProperties{VisibleNodeMask: 1, CreationNodeMask: 1}
	var state uint32
	switch heap {
	case driver.HDefault:
		props.Type = heapTypeDefault
		state = resourceStateCommon
	case driver.HUpload:
		props.Type = heapTypeUpload
		state = resourceStateGenericRead
	case driver.HReadback:
		props.Type = heapTypeReadback
		state = resourceStateCopyDest
	default:
		return nil, fmt.Errorf("d3d12: invalid heap type %d", heap)
	}
	desc := resourceDesc{
		Dimension:        resourceDimensionBuffer,
		Width:            uint64(size),
		Height:           1,
		DepthOrArraySize: 1,
		MipLevels:        1,
		Format:           dxgiFormatUnknown,
		SampleDesc:       sampleDesc{Count: 1},
		Layout:           textureLayoutRowMajor,
	}
	var p *com
	r, _, _ := syscall.SyscallN(g.dev.fn(devCreateCommittedResource), g.dev.this(),
		uintptr(unsafe.Pointer(&props)), 0, uintptr(unsafe.Pointer(&desc)), uintptr(state), 0,
		uintptr(unsafe.Pointer(&iidResource)), uintptr(unsafe.Pointer(&p)))
	if err := check(r, "CreateCommittedResource"); err != nil {
		if isHRESULT(err, eOutOfMemory) {
			return nil, fmt.Errorf("%w: %w", driver.ErrNoDeviceMemory, err)
		}
		return nil, g.removed(err)
	}
	b := &buffer{obj: p, heap: heap, size: size}
	if heap != driver.HDefault {
		// The CPU does not read upload heaps.
		var rng *d3d12Range
		if heap == driver.HUpload {
			rng = &d3d12Range{}
		}
		var ptr unsafe.Pointer
		r, _, _ = syscall.SyscallN(p.fn(resMap), p.this(), 0, uintptr(unsafe.Pointer(rng)), uintptr(unsafe.Pointer(&ptr)))
		if err := check(r, "ID3D12Resource.Map"); err != nil {
			p.Release()
			return nil, g.removed(err)
		}
		b.data = unsafe.Slice((*byte)(ptr), size)
	}
	return b, nil
}

func (b *buffer) Heap() driver.HeapType { return b.heap }
func (b *buffer) Size() int64           { return b.size }
func (b *buffer) Bytes() []byte         { return b.data }

// Destroy unmaps and releases the buffer.
func (b *buffer) Destroy() {
	if b.obj == nil {
		return
	}
	if b.data != nil {
		// Readback heaps are not written by the CPU.
		var rng *d3d12Range
		if b.heap == driver.HReadback {
			rng = &d3d12Range{}
		}
		syscall.SyscallN(b.obj.fn(resUnmap), b.obj.this(), 0, uintptr(unsafe.Pointer(rng)))
	}
	b.obj.Release()
	*b = buffer{}
}

// image is a reference to a swapchain back-buffer.
type image struct {
	obj    *com
	width  int
	height int
	format driver.PixelFmt
}

func (img *image) Width() int              { return img.width }
func (img *image) Height() int             { return img.height }
func (img *image) Format() driver.PixelFmt { return img.format }

// Destroy releases the reference.
func (img *image) Destroy() {
	img.obj.Release()
	img.obj = nil
}

// descHeap implements driver.DescHeap.
type descHeap struct {
	gpu   *GPU
	obj   *com
	start uintptr
	n     int
}

// NewDescHeap creates a RTV descriptor heap.
func (g *GPU) NewDescHeap(n int) (driver.DescHeap, error) {
	if n <= 0 {
		return nil, errors.New("d3d12: descriptor heap must not be empty")
	}
	desc := descriptorHeapDesc{Type: descriptorHeapTypeRTV, NumDescriptors: uint32(n)}
	var p *com
	r, _, _ := syscall.SyscallN(g.dev.fn(devCreateDescriptorHeap), g.dev.this(), uintptr(unsafe.Pointer(&desc)), uintptr(unsafe.Pointer(&iidDescriptorHeap)), uintptr(unsafe.Pointer(&p)))
	if err := check(r, "CreateDescriptorHeap"); err != nil {
		return nil, g.removed(err)
	}
	// The handle is returned through a hidden pointer.
	var start uintptr
	syscall.SyscallN(p.fn(heapGetCPUDescriptorHandleForHeapStart), p.this(), uintptr(unsafe.Pointer(&start)))
	return &descHeap{gpu: g, obj: p, start: start, n: n}, nil
}

func (h *descHeap) Len() int { return h.n }

func (h *descHeap) CPUHandle(i int) driver.CPUHandle {
	if i < 0 || i >= h.n {
		panic("d3d12: descriptor index out of bounds")
	}
	return driver.CPUHandle(h.start + uintptr(i)*h.gpu.rtvInc)
}

// SetRenderTarget creates a render target view.
func (h *descHeap) SetRenderTarget(i int, img driver.Image) error {
	im, ok := img.(*image)
	if !ok || im == nil || im.obj == nil {
		return errors.New("d3d12: invalid image")
	}
	if im.width == 0 || im.height == 0 {
		return fmt.Errorf("d3d12: zero-sized render target (%dx%d)", im.width, im.height)
	}
	g := h.gpu
	syscall.SyscallN(g.dev.fn(devCreateRenderTargetView), g.dev.this(), im.obj.this(), 0, uintptr(h.CPUHandle(i)))
	return nil
}

// Destroy releases the heap.
func (h *descHeap) Destroy() {
	h.obj.Release()
	h.obj = nil
}
