// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// GPU is the main interface to an underlying driver
// implementation.
// It is used to create other types.
// A GPU is obtained from a call to Driver.Open.
type GPU interface {
	// Driver returns the Driver that owns the GPU.
	Driver() Driver

	// Adapter describes the physical adapter from
	// which the GPU was created.
	Adapter() AdapterInfo

	// NewQueue creates a new direct execution queue.
	NewQueue() (Queue, error)

	// NewCmdAllocator creates a new command allocator.
	NewCmdAllocator() (CmdAllocator, error)

	// NewCmdList creates a new command list that uses
	// alloc as its initial backing storage.
	// The command list is returned in the closed state,
	// so Reset must be called before recording.
	NewCmdList(alloc CmdAllocator) (CmdList, error)

	// NewFence creates a new fence whose completed value
	// is initial.
	NewFence(initial uint64) (Fence, error)

	// NewBuffer creates a new buffer in the given heap.
	// size must be greater than zero.
	NewBuffer(size int64, heap HeapType) (Buffer, error)

	// NewDescHeap creates a new render target descriptor
	// heap with n descriptors.
	NewDescHeap(n int) (DescHeap, error)
}

// AdapterInfo describes a physical adapter.
type AdapterInfo struct {
	Name     string
	VendorID uint32
	DeviceID uint32
	// Dedicated video memory in bytes.
	VideoMemory uint64
	// Whether this is a software (e.g., WARP) adapter.
	Software bool
}

// Destroyer is the interface that wraps the Destroy method.
// Types that implement this interface may allocate external
// memory that is not managed by GC, so Destroy must be
// called explicitly to ensure such memory is deallocated.
// Objects must not be destroyed while referenced by GPU
// work that has not completed.
type Destroyer interface {
	Destroy()
}

// Queue is the interface that defines an execution queue.
// Work executes in submission order, and signals complete
// in submission order as well.
type Queue interface {
	Destroyer

	// Execute submits closed command lists for execution.
	// It does not wait for completion; completion is
	// observed through a fence signaled afterwards.
	// The lists' allocators must not be reset until then.
	Execute(cl ...CmdList)

	// Signal enqueues a signal operation that sets f's
	// completed value to value once all previously
	// submitted work completes.
	Signal(f Fence, value uint64) error
}

// CmdAllocator is the interface that defines the backing
// storage of recorded commands.
type CmdAllocator interface {
	Destroyer

	// Reset reclaims the memory of all commands recorded
	// into the allocator.
	// It must not be called while the GPU may still be
	// executing such commands.
	Reset() error
}

// CmdList is the interface that defines a command list.
// Commands are recorded between Reset and Close, and then
// submitted through Queue.Execute.
// The same command list can be reused across frames,
// rebinding it to a different allocator on each Reset.
type CmdList interface {
	Destroyer

	// Reset opens the command list for recording, using
	// alloc as backing storage.
	// Only one open command list may use a given
	// allocator at a time.
	Reset(alloc CmdAllocator) error

	// Close ends recording.
	Close() error

	// Barrier records a state transition of img.
	Barrier(img Image, before, after ResState)

	// SetTarget binds the render target view rtv.
	SetTarget(rtv CPUHandle)

	// ClearTarget clears the render target view rtv
	// to the given RGBA color.
	ClearTarget(rtv CPUHandle, color [4]float32)

	// CopyBuffer copies size bytes from src, starting at
	// srcOff, to dst, starting at dstOff.
	CopyBuffer(dst Buffer, dstOff int64, src Buffer, srcOff int64, size int64)
}

// Fence is the interface that defines a GPU/CPU
// synchronization counter.
type Fence interface {
	Destroyer

	// Completed returns the last value signaled by the GPU.
	Completed() uint64

	// Wait blocks the calling goroutine until Completed
	// returns a value greater than or equal to value.
	// There is no timeout: a hung GPU hangs the caller.
	// The wait must not poll.
	Wait(value uint64) error
}

// HeapType is the type of a buffer's memory heap.
type HeapType int

// Heap types.
const (
	// Device-local memory, accessible only by the GPU.
	HDefault HeapType = iota
	// Host-visible memory optimized for CPU writes
	// and GPU reads.
	HUpload
	// Host-visible memory optimized for GPU writes
	// and CPU reads.
	HReadback
)

// String implements fmt.Stringer.
func (h HeapType) String() string {
	switch h {
	case HDefault:
		return "default"
	case HUpload:
		return "upload"
	case HReadback:
		return "readback"
	}
	return "invalid"
}

// Buffer is the interface that defines a GPU buffer.
// The size of the buffer is fixed.
type Buffer interface {
	Destroyer

	// Heap returns the heap in which the buffer resides.
	Heap() HeapType

	// Size returns the size of the buffer in bytes.
	Size() int64

	// Bytes returns a slice of length Size referring to
	// the underlying data. If the buffer is not host
	// visible (i.e., it is in HDefault), it returns nil.
	// The slice is valid for the lifetime of the buffer.
	Bytes() []byte
}

// PixelFmt describes the format of a pixel.
type PixelFmt int

// Pixel formats.
const (
	FUnknown PixelFmt = iota
	RGBA8un
	RGBA8sRGB
	BGRA8un
	BGRA8sRGB
	RGBA16f
	RGB10A2un
)

// Size returns the size in bytes of a single pixel.
func (f PixelFmt) Size() int {
	switch f {
	case RGBA8un, RGBA8sRGB, BGRA8un, BGRA8sRGB, RGB10A2un:
		return 4
	case RGBA16f:
		return 8
	}
	return 0
}

// Image is the interface that defines a GPU image.
// Images returned by Swapchain.Buffer are references to
// swapchain storage, and Destroy releases the reference.
type Image interface {
	Destroyer

	Width() int
	Height() int
	Format() PixelFmt
}

// ResState is the type of resource states.
type ResState int

// Resource states.
const (
	RSCommon ResState = iota
	RSPresent
	RSRenderTarget
	RSCopySrc
	RSCopyDst
	RSGenericRead
)

// String implements fmt.Stringer.
func (s ResState) String() string {
	switch s {
	case RSCommon:
		return "common"
	case RSPresent:
		return "present"
	case RSRenderTarget:
		return "render-target"
	case RSCopySrc:
		return "copy-source"
	case RSCopyDst:
		return "copy-dest"
	case RSGenericRead:
		return "generic-read"
	}
	return "invalid"
}

// CPUHandle is a CPU descriptor handle.
// The zero value is never a valid handle.
type CPUHandle uintptr

// DescHeap is the interface that defines a heap of
// render target view descriptors.
type DescHeap interface {
	Destroyer

	// Len returns the number of descriptors in the heap.
	Len() int

	// CPUHandle returns the handle of the ith descriptor.
	CPUHandle(i int) CPUHandle

	// SetRenderTarget creates a render target view of img
	// in the ith descriptor.
	// img must not have zero width or height.
	SetRenderTarget(i int, img Image) error
}
