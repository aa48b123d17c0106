// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"fmt"

	"github.com/gviegas/rendercore/driver"
)

// Commands is the command submission unit.
// It owns one command allocator per frame slot and a
// single command list that is rebound to the slot's
// allocator on every ResetForFrame.
type Commands struct {
	dev    *Device
	fs     *FrameSync
	allocs [MaxFrame]driver.CmdAllocator
	list   driver.CmdList
	// Slot being recorded, or -1.
	slot int
}

// NewCommands creates the allocators and command list.
func NewCommands(dev *Device, fs *FrameSync) (c *Commands, err error) {
	c = &Commands{dev: dev, fs: fs, slot: -1}
	defer func() {
		if err != nil {
			c.Free()
			c = nil
		}
	}()
	gpu := dev.GPU()
	for i := range c.allocs {
		if c.allocs[i], err = gpu.NewCmdAllocator(); err != nil {
			return c, fmt.Errorf("commands: %w", err)
		}
	}
	if c.list, err = gpu.NewCmdList(c.allocs[0]); err != nil {
		return c, fmt.Errorf("commands: %w", err)
	}
	return c, nil
}

// ResetForFrame resets slot's allocator and opens the
// command list for recording into it.
// The slot must be idle (see FrameSync.WaitForSlot);
// calling ResetForFrame otherwise is a programming
// error and panics.
func (c *Commands) ResetForFrame(slot int) error {
	checkSlot(slot)
	if c.slot >= 0 {
		panic(fmt.Sprintf("engine: ResetForFrame(%d) while recording slot %d", slot, c.slot))
	}
	if !c.fs.Idle(slot) {
		panic(fmt.Sprintf("engine: ResetForFrame(%d) on a frame slot in flight", slot))
	}
	if err := c.allocs[slot].Reset(); err != nil {
		return fmt.Errorf("commands: %w", err)
	}
	if err := c.list.Reset(c.allocs[slot]); err != nil {
		return fmt.Errorf("commands: %w", err)
	}
	c.slot = slot
	c.fs.noteRecording(slot)
	return nil
}

// Submit closes the command list and enqueues it for
// execution. It does not wait for completion.
func (c *Commands) Submit() error {
	if c.slot < 0 {
		panic("engine: Submit called without ResetForFrame")
	}
	c.slot = -1
	c.fs.noteRecording(-1)
	if err := c.list.Close(); err != nil {
		return fmt.Errorf("commands: %w", err)
	}
	c.dev.Queue().Execute(c.list)
	c.fs.noteSubmit()
	return nil
}

// List returns the command list.
// It is only valid for recording between ResetForFrame
// and Submit.
func (c *Commands) List() driver.CmdList { return c.list }

// Allocator returns slot's command allocator.
func (c *Commands) Allocator(slot int) driver.CmdAllocator {
	checkSlot(slot)
	return c.allocs[slot]
}

// Recording returns the slot being recorded, or -1.
func (c *Commands) Recording() int { return c.slot }

// Free destroys the command list and allocators.
// The GPU must be idle.
func (c *Commands) Free() {
	if c.list != nil {
		c.list.Destroy()
		c.list = nil
	}
	for i := range c.allocs {
		if c.allocs[i] != nil {
			c.allocs[i].Destroy()
			c.allocs[i] = nil
		}
	}
}
