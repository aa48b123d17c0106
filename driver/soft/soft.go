// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package soft implements the driver interfaces in pure Go.
// Commands execute on one goroutine per queue, in submission
// order, optionally delayed by a simulated latency.
// When opened with driver.Options.Debug, the GPU validates
// usage and reports hazards as driver.Messages.
package soft

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gviegas/rendercore/driver"
	"github.com/gviegas/rendercore/internal/bitvec"
	"github.com/gviegas/rendercore/wsi"
)

const driverName = "soft"

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver.
type Driver struct {
	mu      sync.Mutex
	gpu     *GPU
	latency time.Duration
	order   []int
}

// Open initializes the driver.
func (d *Driver) Open(opts driver.Options) (driver.GPU, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gpu == nil {
		d.gpu = newGPU(d, opts)
		d.gpu.latency.Store(int64(d.latency))
	}
	if d.gpu.dbg != nil {
		return debugGPU{d.gpu}, nil
	}
	return d.gpu, nil
}

// Name returns the driver name.
func (d *Driver) Name() string { return driverName }

// Close deinitializes the driver.
// With validation enabled, objects that were not
// destroyed are reported.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gpu == nil {
		return
	}
	if n := d.gpu.live.Load(); n > 0 {
		d.gpu.dbg.report(driver.SWarning, msgLiveObjects, "%d live object(s) at driver close", n)
	}
	d.gpu = nil
}

// SetLatency sets the simulated execution time of each
// batch of command lists submitted to a queue.
func (d *Driver) SetLatency(latency time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latency = max(latency, 0)
	if d.gpu != nil {
		d.gpu.latency.Store(int64(d.latency))
	}
}

// SetPresentOrder sets the order in which swapchains
// hand out back-buffers. order must be a permutation of
// the back-buffer indices; swapchains whose buffer count
// differs from len(order) use round-robin order.
// A nil order restores round-robin for every swapchain.
// It applies to swapchains created or resized afterwards.
func (d *Driver) SetPresentOrder(order []int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.order = slices.Clone(order)
}

// presentOrder returns the presentation order for
// n back-buffers.
func (d *Driver) presentOrder(n int) []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.order) == n {
		sorted := slices.Sorted(slices.Values(d.order))
		perm := true
		for i, x := range sorted {
			if x != i {
				perm = false
				break
			}
		}
		if perm {
			return slices.Clone(d.order)
		}
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// GPU implements driver.GPU and driver.Presenter.
type GPU struct {
	drv     *Driver
	dbg     *validator
	latency atomic.Int64
	live    atomic.Int64

	mu      sync.Mutex
	handles bitvec.V
	rtvs    map[driver.CPUHandle]*image
	windows map[wsi.Window]bool
}

func newGPU(drv *Driver, opts driver.Options) *GPU {
	g := &GPU{
		drv:     drv,
		rtvs:    make(map[driver.CPUHandle]*image),
		windows: make(map[wsi.Window]bool),
	}
	if opts.Debug {
		g.dbg = new(validator)
	}
	return g
}

// debugGPU is the GPU returned when validation is enabled.
type debugGPU struct {
	*GPU
}

// SetBreakOnSeverity implements driver.Debugger.
func (g debugGPU) SetBreakOnSeverity(s driver.Severity, enable bool) error {
	if s < driver.SCorruption || s > driver.SMessage {
		return fmt.Errorf("soft: invalid severity %d", s)
	}
	g.dbg.mu.Lock()
	defer g.dbg.mu.Unlock()
	g.dbg.brk[s] = enable
	return nil
}

// Messages implements driver.Debugger.
func (g debugGPU) Messages() []driver.Message {
	g.dbg.mu.Lock()
	defer g.dbg.mu.Unlock()
	return append([]driver.Message(nil), g.dbg.msgs...)
}

// ClearMessages implements driver.Debugger.
func (g debugGPU) ClearMessages() {
	g.dbg.mu.Lock()
	defer g.dbg.mu.Unlock()
	g.dbg.msgs = g.dbg.msgs[:0]
}

// Driver returns the driver.Driver that owns g.
func (g *GPU) Driver() driver.Driver { return g.drv }

// Adapter describes the software adapter.
func (g *GPU) Adapter() driver.AdapterInfo {
	return driver.AdapterInfo{
		Name:     "Go Software Adapter",
		VendorID: 0x1414,
		DeviceID: 0x8c,
		Software: true,
	}
}

// Live returns the number of objects created from g
// that were not destroyed yet.
func (g *GPU) Live() int { return int(g.live.Load()) }

// Descriptor handles are laid out as if in a
// contiguous CPU address range.
const (
	handleBase   = 0x10000
	handleStride = 32
)

func (g *GPU) allocHandles(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx, _ := g.handles.Alloc(n)
	return idx
}

func (g *GPU) freeHandles(idx, n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := idx; i < idx+n; i++ {
		delete(g.rtvs, handleOf(i))
	}
	g.handles.Free(idx, n)
}

func handleOf(idx int) driver.CPUHandle {
	return driver.CPUHandle(handleBase + idx*handleStride)
}

func (g *GPU) setRTV(h driver.CPUHandle, img *image) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rtvs[h] = img
}

func (g *GPU) rtv(h driver.CPUHandle) *image {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rtvs[h]
}

// resource is embedded by every object that GPU
// work can reference.
type resource struct {
	gpu       *GPU
	pending   atomic.Int32
	destroyed atomic.Bool
}

func (r *resource) init(g *GPU) {
	r.gpu = g
	g.live.Add(1)
}

func (r *resource) acquire() {
	if r.destroyed.Load() {
		r.gpu.dbg.report(driver.SCorruption, msgUseAfterDestroy, "destroyed object referenced by submitted work")
	}
	r.pending.Add(1)
}

func (r *resource) release() { r.pending.Add(-1) }

func (r *resource) busy() bool { return r.pending.Load() > 0 }

// destroy marks r as destroyed.
// It returns false if r was destroyed already.
func (r *resource) destroy(what string) bool {
	if r.destroyed.Swap(true) {
		return false
	}
	if r.busy() {
		r.gpu.dbg.report(driver.SCorruption, msgDestroyInFlight, "%s destroyed while referenced by pending GPU work", what)
	}
	r.gpu.live.Add(-1)
	return true
}
