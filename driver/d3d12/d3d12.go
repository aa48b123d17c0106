// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build windows && (amd64 || arm64)

// Package d3d12 implements the driver interfaces using
// Direct3D 12 and DXGI.
// It calls into d3d12.dll and dxgi.dll through COM vtables,
// so it does not require cgo.
package d3d12

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/gviegas/rendercore/driver"
)

const driverName = "d3d12"

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver.
type Driver struct {
	gpu *GPU
}

// GPU implements driver.GPU and driver.Presenter.
type GPU struct {
	drv     *Driver
	factory *com
	adapter *com
	dev     *com
	iq      *com
	info    driver.AdapterInfo
	rtvInc  uintptr
}

// debugGPU is the GPU returned when the debug layer
// is enabled.
type debugGPU struct {
	*GPU
}

func (g *GPU) wrap() driver.GPU {
	if g.iq != nil {
		return debugGPU{g}
	}
	return g
}

// Open initializes the driver.
// It selects an adapter using opts.Preference and creates
// a device of feature level 12_0 on it. Failure to do so
// is not retried on other adapters.
func (d *Driver) Open(opts driver.Options) (gpu driver.GPU, err error) {
	if d.gpu != nil {
		return d.gpu.wrap(), nil
	}
	if err = load(); err != nil {
		return
	}
	g := &GPU{drv: d}
	defer func() {
		if err != nil {
			g.release()
		}
	}()

	var flags uintptr
	if opts.Debug {
		if err = enableDebugLayer(); err != nil {
			return
		}
		flags = dxgiCreateFactoryDebug
	}
	r, _, _ := procCreateDXGIFactory2.Call(flags, uintptr(unsafe.Pointer(&iidFactory6)), uintptr(unsafe.Pointer(&g.factory)))
	if err = check(r, "CreateDXGIFactory2"); err != nil {
		return
	}

	var pref uintptr
	switch opts.Preference {
	case driver.APMinPower:
		pref = dxgiGpuPreferenceMinPower
	case driver.APHighPerf:
		pref = dxgiGpuPreferenceHighPerf
	default:
		pref = dxgiGpuPreferenceUnspecified
	}
	r, _, _ = syscall.SyscallN(g.factory.fn(factoryEnumAdapterByGpuPreference), g.factory.this(), 0, pref, uintptr(unsafe.Pointer(&iidAdapter1)), uintptr(unsafe.Pointer(&g.adapter)))
	if err = check(r, "EnumAdapterByGpuPreference"); err != nil {
		return
	}
	var desc adapterDesc1
	r, _, _ = syscall.SyscallN(g.adapter.fn(adapterGetDesc1), g.adapter.this(), uintptr(unsafe.Pointer(&desc)))
	if err = check(r, "IDXGIAdapter1.GetDesc1"); err != nil {
		return
	}
	g.info = driver.AdapterInfo{
		Name:        windows.UTF16ToString(desc.Description[:]),
		VendorID:    desc.VendorID,
		DeviceID:    desc.DeviceID,
		VideoMemory: uint64(desc.DedicatedVideoMemory),
		Software:    desc.Flags&dxgiAdapterFlagSoftware != 0,
	}

	r, _, _ = procD3D12CreateDevice.Call(g.adapter.this(), featureLevel12_0, uintptr(unsafe.Pointer(&iidDevice)), uintptr(unsafe.Pointer(&g.dev)))
	if err = check(r, "D3D12CreateDevice"); err != nil {
		return
	}
	if opts.Debug {
		if g.iq, err = g.dev.query(&iidInfoQueue); err != nil {
			return
		}
	}
	r, _, _ = syscall.SyscallN(g.dev.fn(devGetDescriptorHandleIncrementSize), g.dev.this(), descriptorHeapTypeRTV)
	g.rtvInc = uintptr(uint32(r))

	d.gpu = g
	return g.wrap(), nil
}

func enableDebugLayer() error {
	var dbg *com
	r, _, _ := procD3D12GetDebugInterface.Call(uintptr(unsafe.Pointer(&iidDebug)), uintptr(unsafe.Pointer(&dbg)))
	if err := check(r, "D3D12GetDebugInterface"); err != nil {
		return err
	}
	syscall.SyscallN(dbg.fn(debugEnableDebugLayer), dbg.this())
	dbg.Release()
	return nil
}

func (g *GPU) release() {
	g.iq.Release()
	g.dev.Release()
	g.adapter.Release()
	g.factory.Release()
	*g = GPU{drv: g.drv}
}

// Name returns the driver name.
func (d *Driver) Name() string { return driverName }

// Close deinitializes the driver.
func (d *Driver) Close() {
	if d.gpu != nil {
		d.gpu.release()
		d.gpu = nil
	}
}

// Driver returns the driver.Driver that owns g.
func (g *GPU) Driver() driver.Driver { return g.drv }

// Adapter describes the adapter chosen by Open.
func (g *GPU) Adapter() driver.AdapterInfo { return g.info }

// removed checks whether the device was removed, in which
// case err is replaced by the removal reason.
func (g *GPU) removed(err error) error {
	if isHRESULT(err, dxgiErrorDeviceRemoved) {
		r, _, _ := syscall.SyscallN(g.dev.fn(devGetDeviceRemovedReason), g.dev.this())
		if e := check(r, "device removed"); e != nil {
			return e
		}
	}
	return err
}
