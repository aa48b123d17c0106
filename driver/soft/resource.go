// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gviegas/rendercore/driver"
)

// maxBufferSize is the largest buffer the GPU creates.
const maxBufferSize = 1 << 32

// buffer implements driver.Buffer.
type buffer struct {
	resource
	heap driver.HeapType
	data []byte
}

// NewBuffer creates a new buffer.
func (g *GPU) NewBuffer(size int64, heap driver.HeapType) (driver.Buffer, error) {
	switch {
	case size <= 0:
		return nil, errors.New("soft: buffer size must be greater than zero")
	case size > maxBufferSize:
		return nil, driver.ErrNoDeviceMemory
	case heap < driver.HDefault || heap > driver.HReadback:
		return nil, fmt.Errorf("soft: invalid heap type %d", heap)
	}
	b := &buffer{heap: heap, data: make([]byte, size)}
	b.init(g)
	return b, nil
}

func (b *buffer) Heap() driver.HeapType { return b.heap }
func (b *buffer) Size() int64           { return int64(len(b.data)) }

func (b *buffer) Bytes() []byte {
	if b.heap == driver.HDefault {
		return nil
	}
	return b.data
}

// Destroy destroys the buffer.
func (b *buffer) Destroy() { b.destroy("buffer") }

// image is a swapchain back-buffer.
// Its storage is owned by the swapchain, so it is not
// counted as a live object.
type image struct {
	resource
	width  int
	height int
	format driver.PixelFmt
	// References returned by Swapchain.Buffer.
	refs atomic.Int32

	mu    sync.Mutex
	state driver.ResState
	pix   []byte
}

func newImage(g *GPU, width, height int, pf driver.PixelFmt) *image {
	img := &image{width: width, height: height, format: pf, state: driver.RSPresent}
	img.gpu = g
	return img
}

func (img *image) Width() int              { return img.width }
func (img *image) Height() int             { return img.height }
func (img *image) Format() driver.PixelFmt { return img.format }

// Destroy is a no-op; back-buffers are destroyed
// by their swapchain.
func (img *image) Destroy() {}

// invalidate marks img as destroyed.
func (img *image) invalidate() { img.destroyed.Store(true) }

// Pixel returns the color of the pixel at (x, y) as
// written by the last clear, in the image's format.
// It returns the zero value if the image was never
// cleared or the position is out of bounds.
func (img *image) Pixel(x, y int) (px [4]byte) {
	img.mu.Lock()
	defer img.mu.Unlock()
	if img.pix == nil || x < 0 || y < 0 || x >= img.width || y >= img.height {
		return
	}
	i := (y*img.width + x) * 4
	copy(px[:], img.pix[i:i+4])
	return
}

// imageRef is a counted reference to a back-buffer.
type imageRef struct {
	img  *image
	done atomic.Bool
}

func (r *imageRef) Width() int              { return r.img.width }
func (r *imageRef) Height() int             { return r.img.height }
func (r *imageRef) Format() driver.PixelFmt { return r.img.format }

// Pixel is like image.Pixel.
func (r *imageRef) Pixel(x, y int) [4]byte { return r.img.Pixel(x, y) }

// Destroy releases the reference.
func (r *imageRef) Destroy() {
	if !r.done.Swap(true) {
		r.img.refs.Add(-1)
	}
}

func asImage(img driver.Image) *image {
	switch x := img.(type) {
	case *imageRef:
		if x != nil {
			return x.img
		}
	case *image:
		return x
	}
	return nil
}

// descHeap implements driver.DescHeap.
type descHeap struct {
	resource
	base int
	n    int
}

// NewDescHeap creates a new descriptor heap.
func (g *GPU) NewDescHeap(n int) (driver.DescHeap, error) {
	if n <= 0 {
		return nil, errors.New("soft: descriptor heap must not be empty")
	}
	h := &descHeap{base: g.allocHandles(n), n: n}
	h.init(g)
	return h, nil
}

func (h *descHeap) Len() int { return h.n }

func (h *descHeap) CPUHandle(i int) driver.CPUHandle {
	if i < 0 || i >= h.n {
		panic("soft: descriptor index out of bounds")
	}
	return handleOf(h.base + i)
}

// SetRenderTarget creates a render target view.
func (h *descHeap) SetRenderTarget(i int, img driver.Image) error {
	im := asImage(img)
	if im == nil {
		return errors.New("soft: invalid image")
	}
	if im.width == 0 || im.height == 0 {
		h.gpu.dbg.report(driver.SError, msgZeroSizeView, "render target view of zero-sized image (%dx%d)", im.width, im.height)
		return fmt.Errorf("soft: zero-sized render target (%dx%d)", im.width, im.height)
	}
	h.gpu.setRTV(h.CPUHandle(i), im)
	return nil
}

// Destroy destroys the heap.
func (h *descHeap) Destroy() {
	if h.destroy("descriptor heap") {
		h.gpu.freeHandles(h.base, h.n)
	}
}
