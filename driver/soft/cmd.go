// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"errors"
	"fmt"
	"math"

	"github.com/gviegas/rendercore/driver"
)

// cmdAlloc implements driver.CmdAllocator.
// Its pending count is the number of submissions
// recorded into it that have not completed.
type cmdAlloc struct {
	resource
	open *cmdList
}

// NewCmdAllocator creates a new command allocator.
func (g *GPU) NewCmdAllocator() (driver.CmdAllocator, error) {
	a := new(cmdAlloc)
	a.init(g)
	return a, nil
}

// Reset resets the allocator.
func (a *cmdAlloc) Reset() error {
	a.gpu.dbg.raise()
	if a.busy() {
		a.gpu.dbg.report(driver.SCorruption, msgAllocResetInFlight, "command allocator reset while its commands are executing")
		return fmt.Errorf("soft: %w: command allocator is executing", driver.ErrInUse)
	}
	if a.open != nil {
		a.gpu.dbg.report(driver.SError, msgAllocInUse, "command allocator reset while a command list is recording into it")
		return fmt.Errorf("soft: %w: command allocator is recording", driver.ErrInUse)
	}
	return nil
}

// Destroy destroys the allocator.
func (a *cmdAlloc) Destroy() { a.destroy("command allocator") }

type opcode int

const (
	opBarrier opcode = iota
	opSetTarget
	opClear
	opCopy
)

// command is a recorded command.
type command struct {
	op            opcode
	img           *image
	before, after driver.ResState
	color         [4]float32
	dst, src      *buffer
	dstOff        int64
	srcOff        int64
	size          int64
}

// refs appends the resources referenced by c to r.
func (c *command) refs(r []*resource) []*resource {
	if c.img != nil {
		r = append(r, &c.img.resource)
	}
	if c.dst != nil {
		r = append(r, &c.dst.resource, &c.src.resource)
	}
	return r
}

// exec executes c.
// It is called from the queue goroutine.
func (c *command) exec(dbg *validator) {
	switch c.op {
	case opBarrier:
		c.img.mu.Lock()
		if c.img.state != c.before {
			dbg.reportAsync(driver.SError, msgStateMismatch, "barrier expects state %s, but resource is in state %s", c.before, c.img.state)
		}
		c.img.state = c.after
		c.img.mu.Unlock()
	case opSetTarget:
		c.img.mu.Lock()
		if c.img.state != driver.RSRenderTarget {
			dbg.reportAsync(driver.SError, msgStateMismatch, "render target bound in state %s", c.img.state)
		}
		c.img.mu.Unlock()
	case opClear:
		c.img.mu.Lock()
		if c.img.state != driver.RSRenderTarget {
			dbg.reportAsync(driver.SError, msgStateMismatch, "render target cleared in state %s", c.img.state)
		}
		c.img.clear(c.color)
		c.img.mu.Unlock()
	case opCopy:
		copy(c.dst.data[c.dstOff:c.dstOff+c.size], c.src.data[c.srcOff:c.srcOff+c.size])
	}
}

// cmdList implements driver.CmdList.
type cmdList struct {
	resource
	alloc *cmdAlloc
	open  bool
	cmds  []command
}

// NewCmdList creates a new command list in the closed state.
func (g *GPU) NewCmdList(alloc driver.CmdAllocator) (driver.CmdList, error) {
	a, ok := alloc.(*cmdAlloc)
	if !ok || a == nil {
		return nil, errors.New("soft: invalid command allocator")
	}
	l := &cmdList{alloc: a}
	l.init(g)
	return l, nil
}

// Reset opens the command list for recording.
func (l *cmdList) Reset(alloc driver.CmdAllocator) error {
	l.gpu.dbg.raise()
	a, ok := alloc.(*cmdAlloc)
	if !ok || a == nil {
		return errors.New("soft: invalid command allocator")
	}
	if l.open {
		l.gpu.dbg.report(driver.SError, msgListOpen, "command list reset while recording")
		return errors.New("soft: command list is recording")
	}
	if a.open != nil {
		l.gpu.dbg.report(driver.SError, msgAllocInUse, "command allocator bound to another recording command list")
		return fmt.Errorf("soft: %w: command allocator is recording", driver.ErrInUse)
	}
	a.open = l
	l.alloc = a
	l.open = true
	l.cmds = nil
	return nil
}

// Close ends recording.
func (l *cmdList) Close() error {
	if !l.open {
		l.gpu.dbg.report(driver.SError, msgListNotOpen, "command list closed while not recording")
		return errors.New("soft: command list is not recording")
	}
	l.open = false
	l.alloc.open = nil
	return nil
}

func (l *cmdList) record(c command) {
	if !l.open {
		l.gpu.dbg.report(driver.SError, msgListNotOpen, "command recorded into closed command list")
		return
	}
	l.cmds = append(l.cmds, c)
}

// Barrier records a state transition.
func (l *cmdList) Barrier(img driver.Image, before, after driver.ResState) {
	im := asImage(img)
	if im == nil {
		l.gpu.dbg.report(driver.SError, msgInvalidHandle, "barrier on invalid image")
		return
	}
	l.record(command{op: opBarrier, img: im, before: before, after: after})
}

func (l *cmdList) target(rtv driver.CPUHandle) *image {
	im := l.gpu.rtv(rtv)
	if im == nil {
		l.gpu.dbg.report(driver.SError, msgInvalidHandle, "invalid render target view %#x", uintptr(rtv))
	}
	return im
}

// SetTarget binds a render target view.
func (l *cmdList) SetTarget(rtv driver.CPUHandle) {
	if im := l.target(rtv); im != nil {
		l.record(command{op: opSetTarget, img: im})
	}
}

// ClearTarget clears a render target view.
func (l *cmdList) ClearTarget(rtv driver.CPUHandle, color [4]float32) {
	if im := l.target(rtv); im != nil {
		l.record(command{op: opClear, img: im, color: color})
	}
}

// CopyBuffer copies between buffers.
func (l *cmdList) CopyBuffer(dst driver.Buffer, dstOff int64, src driver.Buffer, srcOff int64, size int64) {
	d, ok1 := dst.(*buffer)
	s, ok2 := src.(*buffer)
	if !ok1 || !ok2 || d == nil || s == nil {
		l.gpu.dbg.report(driver.SError, msgInvalidHandle, "copy with invalid buffer")
		return
	}
	if size < 0 || dstOff < 0 || srcOff < 0 || dstOff+size > d.Size() || srcOff+size > s.Size() {
		l.gpu.dbg.report(driver.SError, msgCopyBounds, "buffer copy out of bounds (dst %d+%d/%d, src %d+%d/%d)",
			dstOff, size, d.Size(), srcOff, size, s.Size())
		return
	}
	if d.heap == driver.HUpload {
		l.gpu.dbg.report(driver.SError, msgCopyBounds, "copy destination in upload heap")
		return
	}
	l.record(command{op: opCopy, dst: d, src: s, dstOff: dstOff, srcOff: srcOff, size: size})
}

// Destroy destroys the command list.
func (l *cmdList) Destroy() {
	if l.destroy("command list") && l.open {
		l.alloc.open = nil
	}
}

// clear fills img with color.
// img.mu must be held.
func (img *image) clear(color [4]float32) {
	n := img.format.Size()
	if n != 4 || img.format == driver.RGB10A2un {
		return
	}
	if img.pix == nil {
		img.pix = make([]byte, img.width*img.height*n)
	}
	var px [4]byte
	for i, c := range color {
		px[i] = byte(math.Round(float64(min(max(c, 0), 1)) * 255))
	}
	if img.format == driver.BGRA8un || img.format == driver.BGRA8sRGB {
		px[0], px[2] = px[2], px[0]
	}
	for i := 0; i < len(img.pix); i += 4 {
		copy(img.pix[i:i+4], px[:])
	}
}
