// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"fmt"
	"log/slog"

	"github.com/gviegas/rendercore/driver"
)

// FrameSync is the frame fence synchronizer.
// It owns a single fence, a monotonically increasing
// counter and the fence value stamped on each frame slot.
// It is the sole authority on whether a slot may be
// reused.
//
// A slot whose value is zero was never submitted (or was
// reset by a resize). Otherwise the slot is in flight
// until the fence's completed value reaches its value.
type FrameSync struct {
	dev     *Device
	fence   driver.Fence
	values  [MaxFrame]uint64
	counter uint64
	// Whether a command list was submitted since
	// the last SignalAfterSubmit.
	submitted bool
	// Slot being recorded, or -1.
	recording int

	waits   uint64
	flushes uint64
}

// NewFrameSync creates a new FrameSync whose fence
// is signaled on dev's queue.
func NewFrameSync(dev *Device) (*FrameSync, error) {
	f, err := dev.GPU().NewFence(0)
	if err != nil {
		return nil, fmt.Errorf("frame sync: %w", err)
	}
	return &FrameSync{dev: dev, fence: f, recording: -1}, nil
}

func checkSlot(slot int) {
	if slot < 0 || slot >= MaxFrame {
		panic(fmt.Sprintf("engine: frame slot %d out of range [0, %d)", slot, MaxFrame))
	}
}

// WaitForSlot blocks until the GPU completes the work
// last submitted for slot.
// It returns immediately if the slot was never used.
// The wait has no timeout.
func (fs *FrameSync) WaitForSlot(slot int) error {
	checkSlot(slot)
	v := fs.values[slot]
	if v == 0 {
		return nil
	}
	if fs.fence.Completed() >= v {
		return nil
	}
	fs.waits++
	Logger().Debug("waiting for frame slot", slog.Int("slot", slot), slog.Uint64("value", v))
	if err := fs.fence.Wait(v); err != nil {
		return fmt.Errorf("frame sync: %w", err)
	}
	return nil
}

// SignalAfterSubmit increments the counter, enqueues a
// signal of the new value and stamps it on slot.
// It must be called after the frame's command list was
// submitted.
func (fs *FrameSync) SignalAfterSubmit(slot int) error {
	checkSlot(slot)
	if !fs.submitted {
		panic("engine: SignalAfterSubmit called without a prior Submit")
	}
	v, err := fs.signal()
	if err != nil {
		return err
	}
	fs.values[slot] = v
	fs.submitted = false
	return nil
}

// Flush blocks until all work submitted so far completes.
// It signals a new value rather than waiting on the
// values stamped on slots.
func (fs *FrameSync) Flush() error {
	fs.flushes++
	v, err := fs.signalAndWait()
	if err != nil {
		return err
	}
	Logger().Debug("flushed", slog.Uint64("value", v))
	return nil
}

// signal enqueues a signal of the next counter value.
func (fs *FrameSync) signal() (uint64, error) {
	v := fs.counter + 1
	if err := fs.dev.Queue().Signal(fs.fence, v); err != nil {
		return 0, fmt.Errorf("frame sync: %w", err)
	}
	fs.counter = v
	return v, nil
}

// signalAndWait signals the next counter value and
// waits for it.
func (fs *FrameSync) signalAndWait() (uint64, error) {
	v, err := fs.signal()
	if err != nil {
		return 0, err
	}
	if err := fs.fence.Wait(v); err != nil {
		return 0, fmt.Errorf("frame sync: %w", err)
	}
	return v, nil
}

// noteSubmit records that a frame command list
// was submitted.
func (fs *FrameSync) noteSubmit() { fs.submitted = true }

// noteRecording records the slot whose command list is
// open, or -1 when none is.
func (fs *FrameSync) noteRecording(slot int) { fs.recording = slot }

// Recording returns the slot whose frame is being
// recorded, or -1.
func (fs *FrameSync) Recording() int { return fs.recording }

// resetSlots sets every slot's value to zero.
// The GPU must be idle.
func (fs *FrameSync) resetSlots() { fs.values = [MaxFrame]uint64{} }

// Idle reports whether slot can be reused.
func (fs *FrameSync) Idle(slot int) bool {
	checkSlot(slot)
	v := fs.values[slot]
	return v == 0 || fs.fence.Completed() >= v
}

// Value returns the fence value stamped on slot.
func (fs *FrameSync) Value(slot int) uint64 {
	checkSlot(slot)
	return fs.values[slot]
}

// Counter returns the last value signaled (or to
// be signaled) on the fence.
func (fs *FrameSync) Counter() uint64 { return fs.counter }

// Completed returns the fence's completed value.
func (fs *FrameSync) Completed() uint64 { return fs.fence.Completed() }

// Free destroys the fence.
// The GPU must be idle.
func (fs *FrameSync) Free() {
	if fs.fence != nil {
		fs.fence.Destroy()
		fs.fence = nil
	}
}
