// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build windows && (amd64 || arm64)

package d3d12

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/gviegas/rendercore/driver"
)

// SetBreakOnSeverity implements driver.Debugger.
// D3D12 severities have the same order as driver.Severity.
// A break raises a debugger breakpoint.
func (g debugGPU) SetBreakOnSeverity(s driver.Severity, enable bool) error {
	if s < driver.SCorruption || s > driver.SMessage {
		return fmt.Errorf("d3d12: invalid severity %d", s)
	}
	var b uintptr
	if enable {
		b = 1
	}
	r, _, _ := syscall.SyscallN(g.iq.fn(iqSetBreakOnSeverity), g.iq.this(), uintptr(s), b)
	return check(r, "ID3D12InfoQueue.SetBreakOnSeverity")
}

// Messages implements driver.Debugger.
func (g debugGPU) Messages() []driver.Message {
	r, _, _ := syscall.SyscallN(g.iq.fn(iqGetNumStoredMessages), g.iq.this())
	n := uint64(r)
	msgs := make([]driver.Message, 0, n)
	for i := range n {
		var size uintptr
		r, _, _ = syscall.SyscallN(g.iq.fn(iqGetMessage), g.iq.this(), uintptr(i), 0, uintptr(unsafe.Pointer(&size)))
		if check(r, "") != nil || size < unsafe.Sizeof(message{}) {
			continue
		}
		// The description is stored after the
		// message structure.
		buf := make([]uint64, (size+7)/8)
		m := (*message)(unsafe.Pointer(&buf[0]))
		r, _, _ = syscall.SyscallN(g.iq.fn(iqGetMessage), g.iq.this(), uintptr(i), uintptr(unsafe.Pointer(m)), uintptr(unsafe.Pointer(&size)))
		if check(r, "") != nil {
			continue
		}
		var desc string
		if m.Description != nil && m.DescriptionByteLength > 0 {
			// The length includes the NUL terminator.
			desc = string(unsafe.Slice(m.Description, m.DescriptionByteLength-1))
		}
		msgs = append(msgs, driver.Message{
			Severity: driver.Severity(m.Severity),
			ID:       int(m.ID),
			Desc:     desc,
		})
	}
	return msgs
}

// ClearMessages implements driver.Debugger.
func (g debugGPU) ClearMessages() {
	syscall.SyscallN(g.iq.fn(iqClearStoredMessages), g.iq.this())
}
