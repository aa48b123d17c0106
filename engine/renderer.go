// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gviegas/rendercore/driver"
	"github.com/gviegas/rendercore/wsi"
)

func newRendErr(s string) error { return errors.New("renderer: " + s) }

// Initer is implemented by modules that must be
// initialized when registered.
type Initer interface {
	Init(r *Renderer) error
}

// PreRenderer is implemented by modules that record
// commands at the start of every frame.
type PreRenderer interface {
	PreRender() error
}

// PostRenderer is implemented by modules that record
// commands at the end of every frame.
type PostRenderer interface {
	PostRender() error
}

// Freer is implemented by modules that own GPU objects.
// Free is called after the GPU becomes idle.
type Freer interface {
	Free()
}

// Stats contains frame statistics.
type Stats struct {
	Frames  uint64
	Waits   uint64
	Flushes uint64
	Uploads uint64
	Resizes uint64
	// Last value signaled on the fence.
	FenceValue uint64
}

// Renderer drives the frame loop.
// It composes the device, the frame synchronizer, the
// command submission unit, the surface and the uploader,
// and calls registered modules in registration order.
type Renderer struct {
	dev  *Device
	fs   *FrameSync
	cmd  *Commands
	surf *Surface
	upl  *Uploader

	mods []any
	// Objects to destroy once the slot's work completes.
	retired [MaxFrame][]driver.Destroyer
	// Slot of the frame being recorded, or -1.
	slot int
	// Slot of the last frame submitted, or -1.
	last   int
	frames uint64
}

// NewRenderer creates a new renderer that presents to win.
// If cfg is nil, DefaultConfig is used.
func NewRenderer(cfg *Config, win wsi.Window) (r *Renderer, err error) {
	dev, err := NewDevice(cfg)
	if err != nil {
		return nil, err
	}
	r = &Renderer{dev: dev, slot: -1, last: -1}
	defer func() {
		if err != nil {
			r.Free()
			r = nil
		}
	}()
	if r.fs, err = NewFrameSync(dev); err != nil {
		return
	}
	if r.cmd, err = NewCommands(dev, r.fs); err != nil {
		return
	}
	if r.surf, err = NewSurface(dev, r.fs, win); err != nil {
		return
	}
	if r.upl, err = NewUploader(dev, r.fs); err != nil {
		return
	}
	return r, nil
}

// Register adds a module to r.
// m must implement at least one of Initer, PreRenderer,
// PostRenderer and Freer. If it implements Initer, its
// Init method is called before Register returns.
func (r *Renderer) Register(m any) error {
	if r.slot >= 0 {
		panic("engine: Register called during a frame")
	}
	switch m.(type) {
	case Initer, PreRenderer, PostRenderer, Freer:
	default:
		return newRendErr(fmt.Sprintf("%T is not a renderer module", m))
	}
	if i, ok := m.(Initer); ok {
		if err := i.Init(r); err != nil {
			return err
		}
	}
	r.mods = append(r.mods, m)
	return nil
}

// BeginFrame waits until the current back-buffer's frame
// slot is idle, destroys what was retired in that slot
// and opens the command list for recording.
// The back-buffer is transitioned to the render target
// state and set as the render target, unless the surface
// has no views.
// If a PreRenderer fails, the frame remains open and
// EndFrame must still be called.
// Calling BeginFrame twice without EndFrame panics.
func (r *Renderer) BeginFrame() error {
	if r.slot >= 0 {
		panic("engine: BeginFrame called twice without EndFrame")
	}
	slot := r.surf.CurrentIndex()
	if err := r.fs.WaitForSlot(slot); err != nil {
		return err
	}
	r.destroyRetired(slot)
	if err := r.cmd.ResetForFrame(slot); err != nil {
		return err
	}
	r.slot = slot
	list := r.cmd.List()
	if img := r.surf.CurrentBackBuffer(); img != nil {
		list.Barrier(img, driver.RSPresent, driver.RSRenderTarget)
		rtv, _ := r.surf.RenderTargetView()
		list.SetTarget(rtv)
	}
	for _, m := range r.mods {
		if m, ok := m.(PreRenderer); ok {
			if err := m.PreRender(); err != nil {
				return err
			}
		}
	}
	return nil
}

// EndFrame submits the command list, presents the
// back-buffer and signals the fence for the frame slot.
// It does not wait for the GPU.
// If a PostRenderer fails, the frame is still submitted
// and the error is returned afterwards.
func (r *Renderer) EndFrame() error {
	if r.slot < 0 {
		panic("engine: EndFrame called without BeginFrame")
	}
	var errs []error
	for _, m := range r.mods {
		if m, ok := m.(PostRenderer); ok {
			if err := m.PostRender(); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	if img := r.surf.CurrentBackBuffer(); img != nil {
		r.cmd.List().Barrier(img, driver.RSRenderTarget, driver.RSPresent)
	}
	slot := r.slot
	r.slot = -1
	if err := r.cmd.Submit(); err != nil {
		return errors.Join(append(errs, err)...)
	}
	if err := r.surf.Present(); err != nil {
		errs = append(errs, err)
	}
	// Signal even if presentation failed, so the slot
	// tracks the submitted commands.
	if err := r.fs.SignalAfterSubmit(slot); err != nil {
		return errors.Join(append(errs, err)...)
	}
	r.last = slot
	r.frames++
	r.dev.LogMessages()
	return errors.Join(errs...)
}

// Clear clears the current render target.
// It must be called between BeginFrame and EndFrame.
// It does nothing if the surface has no views.
func (r *Renderer) Clear(color [4]float32) {
	if r.slot < 0 {
		panic("engine: Clear called outside of a frame")
	}
	if rtv, ok := r.surf.RenderTargetView(); ok {
		r.cmd.List().ClearTarget(rtv, color)
	}
}

// Retire schedules d for destruction once the GPU is done
// with the current frame (or the last frame, if called
// outside of a frame).
// d is destroyed immediately if no frame was submitted.
func (r *Renderer) Retire(d driver.Destroyer) {
	slot := r.slot
	if slot < 0 {
		slot = r.last
	}
	if slot < 0 {
		d.Destroy()
		return
	}
	r.retired[slot] = append(r.retired[slot], d)
}

func (r *Renderer) destroyRetired(slot int) {
	for i, d := range r.retired[slot] {
		d.Destroy()
		r.retired[slot][i] = nil
	}
	r.retired[slot] = r.retired[slot][:0]
}

// Resize resizes the surface.
// It must not be called during a frame.
func (r *Renderer) Resize(width, height int) error {
	if r.slot >= 0 {
		panic("engine: Resize called during a frame")
	}
	if err := r.surf.Resize(width, height); err != nil {
		return err
	}
	// Resize flushes, so nothing retired is in use.
	if r.fs.Counter() == r.fs.Completed() {
		for i := range r.retired {
			r.destroyRetired(i)
		}
	}
	return nil
}

// ResizeToWindow resizes the surface to the window's
// current client area.
// It must not be called during a frame.
func (r *Renderer) ResizeToWindow() error {
	return r.Resize(r.surf.Window().ClientSize())
}

// Device returns the Device.
func (r *Renderer) Device() *Device { return r.dev }

// Queue returns the execution queue.
func (r *Renderer) Queue() driver.Queue { return r.dev.Queue() }

// Surface returns the Surface.
func (r *Renderer) Surface() *Surface { return r.surf }

// Commands returns the command submission unit.
func (r *Renderer) Commands() *Commands { return r.cmd }

// Sync returns the frame synchronizer.
func (r *Renderer) Sync() *FrameSync { return r.fs }

// Uploader returns the Uploader.
func (r *Renderer) Uploader() *Uploader { return r.upl }

// CmdList returns the command list.
// It is only valid for recording between BeginFrame and
// EndFrame.
func (r *Renderer) CmdList() driver.CmdList { return r.cmd.List() }

// CurrentAllocator returns the command allocator of the
// frame being recorded, or nil if not in a frame.
func (r *Renderer) CurrentAllocator() driver.CmdAllocator {
	if r.slot < 0 {
		return nil
	}
	return r.cmd.Allocator(r.slot)
}

// Frame returns the slot of the frame being recorded,
// or -1.
func (r *Renderer) Frame() int { return r.slot }

// Stats returns frame statistics.
func (r *Renderer) Stats() Stats {
	s := Stats{Frames: r.frames}
	if r.fs != nil {
		s.Waits = r.fs.waits
		s.Flushes = r.fs.flushes
		s.FenceValue = r.fs.counter
	}
	if r.upl != nil {
		s.Uploads = r.upl.uploads
	}
	if r.surf != nil {
		s.Resizes = r.surf.resizes
	}
	return s
}

// Free waits for the GPU to become idle and then frees
// every module and GPU object owned by r.
// r must not be used afterwards.
func (r *Renderer) Free() {
	if r.dev == nil {
		return
	}
	if r.fs != nil {
		if err := r.fs.Flush(); err != nil {
			Logger().Error("flush on teardown failed", slog.Any("err", err))
		}
	}
	for i := range r.retired {
		r.destroyRetired(i)
	}
	for i := len(r.mods) - 1; i >= 0; i-- {
		if m, ok := r.mods[i].(Freer); ok {
			m.Free()
		}
	}
	if r.upl != nil {
		r.upl.Free()
	}
	if r.surf != nil {
		r.surf.Free()
	}
	if r.cmd != nil {
		r.cmd.Free()
	}
	if r.fs != nil {
		r.fs.Free()
	}
	Logger().Info("renderer freed", slog.Uint64("frames", r.frames))
	r.dev.Free()
	*r = Renderer{slot: -1, last: -1}
}
