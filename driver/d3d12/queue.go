// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build windows && (amd64 || arm64)

package d3d12

import (
	"errors"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/gviegas/rendercore/driver"
)

// queue implements driver.Queue.
type queue struct {
	gpu *GPU
	obj *com
}

// NewQueue creates a new direct command queue.
func (g *GPU) NewQueue() (driver.Queue, error) {
	desc := commandQueueDesc{Type: commandListTypeDirect}
	var p *com
	r, _, _ := syscall.SyscallN(g.dev.fn(devCreateCommandQueue), g.dev.this(), uintptr(unsafe.Pointer(&desc)), uintptr(unsafe.Pointer(&iidCommandQueue)), uintptr(unsafe.Pointer(&p)))
	if err := check(r, "CreateCommandQueue"); err != nil {
		return nil, g.removed(err)
	}
	return &queue{gpu: g, obj: p}, nil
}

// Execute submits command lists.
func (q *queue) Execute(cl ...driver.CmdList) {
	if len(cl) == 0 {
		return
	}
	lists := make([]*com, len(cl))
	for i := range cl {
		lists[i] = cl[i].(*cmdList).obj
	}
	syscall.SyscallN(q.obj.fn(queueExecuteCommandLists), q.obj.this(), uintptr(len(lists)), uintptr(unsafe.Pointer(&lists[0])))
}

// Signal enqueues a fence signal.
func (q *queue) Signal(f driver.Fence, value uint64) error {
	fc, ok := f.(*fence)
	if !ok || fc == nil {
		return errors.New("d3d12: invalid fence")
	}
	r, _, _ := syscall.SyscallN(q.obj.fn(queueSignal), q.obj.this(), fc.obj.this(), uintptr(value))
	if err := check(r, "ID3D12CommandQueue.Signal"); err != nil {
		return q.gpu.removed(err)
	}
	return nil
}

// Destroy releases the queue.
func (q *queue) Destroy() {
	q.obj.Release()
	*q = queue{}
}

// fence implements driver.Fence.
// Waits block on an auto-reset event.
type fence struct {
	gpu   *GPU
	obj   *com
	mu    sync.Mutex
	event windows.Handle
}

// NewFence creates a new fence.
func (g *GPU) NewFence(initial uint64) (driver.Fence, error) {
	var p *com
	r, _, _ := syscall.SyscallN(g.dev.fn(devCreateFence), g.dev.this(), uintptr(initial), 0, uintptr(unsafe.Pointer(&iidFence)), uintptr(unsafe.Pointer(&p)))
	if err := check(r, "CreateFence"); err != nil {
		return nil, g.removed(err)
	}
	e, err := windows.CreateEvent(nil, 0, 0, nil)
	if err != nil {
		p.Release()
		return nil, err
	}
	return &fence{gpu: g, obj: p, event: e}, nil
}

// Completed returns the fence's completed value.
func (f *fence) Completed() uint64 {
	r, _, _ := syscall.SyscallN(f.obj.fn(fenceGetCompletedValue), f.obj.this())
	return uint64(r)
}

// Wait blocks until value is signaled.
func (f *fence) Wait(value uint64) error {
	if f.Completed() >= value {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, _, _ := syscall.SyscallN(f.obj.fn(fenceSetEventOnCompletion), f.obj.this(), uintptr(value), uintptr(f.event))
	if err := check(r, "ID3D12Fence.SetEventOnCompletion"); err != nil {
		return f.gpu.removed(err)
	}
	if _, err := windows.WaitForSingleObject(f.event, windows.INFINITE); err != nil {
		return err
	}
	return nil
}

// Destroy releases the fence.
func (f *fence) Destroy() {
	if f.event != 0 {
		windows.CloseHandle(f.event)
	}
	f.obj.Release()
	f.obj = nil
	f.event = 0
}
