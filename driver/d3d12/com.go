// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build windows && (amd64 || arm64)

package d3d12

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/gviegas/rendercore/driver"
)

// com is a COM interface pointer.
// Methods are called through its vtable with
// syscall.SyscallN, passing the object as the first
// argument.
type com struct {
	vtbl *[64]uintptr
}

// IUnknown methods.
const (
	unkQueryInterface = 0
	unkAddRef         = 1
	unkRelease        = 2
)

func (c *com) fn(method int) uintptr { return c.vtbl[method] }
func (c *com) this() uintptr         { return uintptr(unsafe.Pointer(c)) }

// Release decrements the reference count.
// It is valid to call it on a nil *com.
func (c *com) Release() {
	if c != nil {
		syscall.SyscallN(c.fn(unkRelease), c.this())
	}
}

// query calls QueryInterface.
func (c *com) query(iid *windows.GUID) (*com, error) {
	var p *com
	r, _, _ := syscall.SyscallN(c.fn(unkQueryInterface), c.this(), uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&p)))
	if err := check(r, "QueryInterface"); err != nil {
		return nil, err
	}
	return p, nil
}

func mustGUID(s string) windows.GUID {
	g, err := windows.GUIDFromString(s)
	if err != nil {
		panic(err)
	}
	return g
}

// Interface IDs.
var (
	iidDevice           = mustGUID("{189819f1-1db6-4b57-be54-1821339b85f7}")
	iidDebug            = mustGUID("{344488b7-6846-474b-b989-f027448245e0}")
	iidFactory6         = mustGUID("{c1b6694f-ff09-44a9-b03c-77900a0a1d17}")
	iidAdapter1         = mustGUID("{29038f61-3839-4626-91fd-086879011a05}")
	iidCommandQueue     = mustGUID("{0ec870a6-5d7e-4c22-8cfc-5baae07616ed}")
	iidCommandAllocator = mustGUID("{6102dee4-af59-4b09-b999-b44d73f09b24}")
	iidCommandList      = mustGUID("{5b160d0f-ac1b-4185-8ba8-b3ae42a5a455}")
	iidFence            = mustGUID("{0a753dcf-c4d8-4b91-adf6-be5a60d95a76}")
	iidDescriptorHeap   = mustGUID("{8efb471d-616c-4f49-90f7-127bb763fa51}")
	iidResource         = mustGUID("{696442be-a72e-4059-bc79-5b5c98040fad}")
	iidInfoQueue        = mustGUID("{0742a90b-c387-483f-b946-30a7e4e61458}")
	iidSwapChain3       = mustGUID("{94d99bdb-f1f8-4ab0-b236-7da0170edab1}")
)

// HRESULT values.
const (
	eOutOfMemory              = 0x8007000e
	eInvalidArg               = 0x80070057
	dxgiErrorInvalidCall      = 0x887a0001
	dxgiErrorNotFound         = 0x887a0002
	dxgiErrorUnsupported      = 0x887a0004
	dxgiErrorDeviceRemoved    = 0x887a0005
	dxgiErrorDeviceHung       = 0x887a0006
	dxgiErrorDeviceReset      = 0x887a0007
	dxgiErrorStillDrawing     = 0x887a000a
	dxgiErrorDriverInternal   = 0x887a0020
	d3d12ErrorAdapterNotFound = 0x887e0001
)

// hresultError is an error returned by a COM method.
type hresultError struct {
	op string
	hr uint32
}

func (e *hresultError) Error() string {
	return fmt.Sprintf("d3d12: %s failed: HRESULT %#08x", e.op, e.hr)
}

// Unwrap returns the driver error that best describes e.
func (e *hresultError) Unwrap() error {
	switch e.hr {
	case eOutOfMemory:
		return driver.ErrNoHostMemory
	case dxgiErrorNotFound, dxgiErrorUnsupported, d3d12ErrorAdapterNotFound:
		return driver.ErrNoDevice
	case dxgiErrorDeviceRemoved, dxgiErrorDeviceHung, dxgiErrorDeviceReset, dxgiErrorDriverInternal:
		return driver.ErrFatal
	case dxgiErrorInvalidCall:
		return driver.ErrSwapchain
	}
	return nil
}

// check converts an HRESULT into an error.
// Success codes (e.g., DXGI_STATUS_OCCLUDED) are not errors.
func check(r uintptr, op string) error {
	if hr := uint32(r); int32(hr) < 0 {
		return &hresultError{op: op, hr: hr}
	}
	return nil
}

// isHRESULT reports whether err was caused by hr.
func isHRESULT(err error, hr uint32) bool {
	var e *hresultError
	return errors.As(err, &e) && e.hr == hr
}

// Loaded libraries.
var (
	libD3D12                   = windows.NewLazySystemDLL("d3d12.dll")
	procD3D12CreateDevice      = libD3D12.NewProc("D3D12CreateDevice")
	procD3D12GetDebugInterface = libD3D12.NewProc("D3D12GetDebugInterface")

	libDXGI                = windows.NewLazySystemDLL("dxgi.dll")
	procCreateDXGIFactory2 = libDXGI.NewProc("CreateDXGIFactory2")
)

// load loads the libraries.
func load() error {
	for _, p := range [...]*windows.LazyProc{
		procD3D12CreateDevice,
		procD3D12GetDebugInterface,
		procCreateDXGIFactory2,
	} {
		if err := p.Find(); err != nil {
			return fmt.Errorf("%w: %v", driver.ErrNotInstalled, err)
		}
	}
	return nil
}
