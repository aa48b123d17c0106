// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build windows && (amd64 || arm64)

package d3d12

import (
	"errors"
	"syscall"
	"unsafe"

	"github.com/gviegas/rendercore/driver"
)

// cmdAlloc implements driver.CmdAllocator.
type cmdAlloc struct {
	gpu *GPU
	obj *com
}

// NewCmdAllocator creates a new direct command allocator.
func (g *GPU) NewCmdAllocator() (driver.CmdAllocator, error) {
	var p *com
	r, _, _ := syscall.SyscallN(g.dev.fn(devCreateCommandAllocator), g.dev.this(), commandListTypeDirect, uintptr(unsafe.Pointer(&iidCommandAllocator)), uintptr(unsafe.Pointer(&p)))
	if err := check(r, "CreateCommandAllocator"); err != nil {
		return nil, g.removed(err)
	}
	return &cmdAlloc{gpu: g, obj: p}, nil
}

// Reset resets the allocator.
func (a *cmdAlloc) Reset() error {
	r, _, _ := syscall.SyscallN(a.obj.fn(allocReset), a.obj.this())
	if err := check(r, "ID3D12CommandAllocator.Reset"); err != nil {
		return a.gpu.removed(err)
	}
	return nil
}

// Destroy releases the allocator.
func (a *cmdAlloc) Destroy() {
	a.obj.Release()
	a.obj = nil
}

// cmdList implements driver.CmdList.
type cmdList struct {
	gpu *GPU
	obj *com
}

// NewCmdList creates a new graphics command list.
func (g *GPU) NewCmdList(alloc driver.CmdAllocator) (driver.CmdList, error) {
	a, ok := alloc.(*cmdAlloc)
	if !ok || a == nil {
		return nil, errors.New("d3d12: invalid command allocator")
	}
	var p *com
	r, _, _ := syscall.SyscallN(g.dev.fn(devCreateCommandList), g.dev.this(), 0, commandListTypeDirect, a.obj.this(), 0, uintptr(unsafe.Pointer(&iidCommandList)), uintptr(unsafe.Pointer(&p)))
	if err := check(r, "CreateCommandList"); err != nil {
		return nil, g.removed(err)
	}
	// Command lists are created open.
	l := &cmdList{gpu: g, obj: p}
	if err := l.Close(); err != nil {
		p.Release()
		return nil, err
	}
	return l, nil
}

// Reset opens the list for recording.
func (l *cmdList) Reset(alloc driver.CmdAllocator) error {
	a, ok := alloc.(*cmdAlloc)
	if !ok || a == nil {
		return errors.New("d3d12: invalid command allocator")
	}
	r, _, _ := syscall.SyscallN(l.obj.fn(listReset), l.obj.this(), a.obj.this(), 0)
	if err := check(r, "ID3D12GraphicsCommandList.Reset"); err != nil {
		return l.gpu.removed(err)
	}
	return nil
}

// Close ends recording.
func (l *cmdList) Close() error {
	r, _, _ := syscall.SyscallN(l.obj.fn(listClose), l.obj.this())
	if err := check(r, "ID3D12GraphicsCommandList.Close"); err != nil {
		return l.gpu.removed(err)
	}
	return nil
}

func resState(s driver.ResState) uint32 {
	switch s {
	case driver.RSRenderTarget:
		return resourceStateRenderTarget
	case driver.RSCopySrc:
		return resourceStateCopySource
	case driver.RSCopyDst:
		return resourceStateCopyDest
	case driver.RSGenericRead:
		return resourceStateGenericRead
	}
	// RSCommon and RSPresent.
	return resourceStateCommon
}

// Barrier records a transition barrier.
func (l *cmdList) Barrier(img driver.Image, before, after driver.ResState) {
	b := resourceBarrier{
		Type:        resourceBarrierTypeTransition,
		Resource:    img.(*image).obj.this(),
		Subresource: resourceBarrierAllSubresources,
		StateBefore: resState(before),
		StateAfter:  resState(after),
	}
	syscall.SyscallN(l.obj.fn(listResourceBarrier), l.obj.this(), 1, uintptr(unsafe.Pointer(&b)))
}

// SetTarget binds a single render target view.
func (l *cmdList) SetTarget(rtv driver.CPUHandle) {
	syscall.SyscallN(l.obj.fn(listOMSetRenderTargets), l.obj.this(), 1, uintptr(unsafe.Pointer(&rtv)), 0, 0)
}

// ClearTarget clears a render target view.
func (l *cmdList) ClearTarget(rtv driver.CPUHandle, color [4]float32) {
	syscall.SyscallN(l.obj.fn(listClearRenderTargetView), l.obj.this(), uintptr(rtv), uintptr(unsafe.Pointer(&color[0])), 0, 0)
}

// CopyBuffer records a buffer region copy.
func (l *cmdList) CopyBuffer(dst driver.Buffer, dstOff int64, src driver.Buffer, srcOff int64, size int64) {
	syscall.SyscallN(l.obj.fn(listCopyBufferRegion), l.obj.this(),
		dst.(*buffer).obj.this(), uintptr(dstOff),
		src.(*buffer).obj.this(), uintptr(srcOff),
		uintptr(size))
}

// Destroy releases the list.
func (l *cmdList) Destroy() {
	l.obj.Release()
	l.obj = nil
}
