// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gviegas/rendercore/driver"
	"github.com/gviegas/rendercore/engine/internal/ctxt"
)

func newDevErr(s string) error { return errors.New("device: " + s) }

// latencySetter is implemented by drivers that simulate
// execution time.
type latencySetter interface {
	SetLatency(time.Duration)
}

// Device is the device context.
// It owns the driver, the GPU and the single execution
// queue shared by every other component.
type Device struct {
	drv driver.Driver
	gpu driver.GPU
	dbg driver.Debugger
	q   driver.Queue
}

// NewDevice opens a driver according to cfg and creates
// the execution queue.
// When cfg.Debug is set, the validation layer is enabled
// before device creation and the severities in
// cfg.BreakOn are promoted to breaks.
// There is no fallback: any failure is fatal and is
// returned to the caller.
func NewDevice(cfg *Config) (*Device, error) {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pref, _ := cfg.adapterPref()
	opts := driver.Options{Debug: cfg.Debug, Preference: pref}
	drv, gpu, err := ctxt.Load(cfg.Driver, opts)
	if err != nil {
		return nil, fmt.Errorf("device: %w", err)
	}
	d := &Device{drv: drv, gpu: gpu}
	if ls, ok := drv.(latencySetter); ok {
		ls.SetLatency(time.Duration(cfg.Latency))
	}
	if cfg.Debug {
		dbg, ok := gpu.(driver.Debugger)
		if !ok {
			drv.Close()
			return nil, newDevErr(drv.Name() + " driver has no validation layer")
		}
		sevs, _ := cfg.breakOn()
		for _, s := range sevs {
			if err := dbg.SetBreakOnSeverity(s, true); err != nil {
				drv.Close()
				return nil, fmt.Errorf("device: %w", err)
			}
		}
		d.dbg = dbg
	}
	if d.q, err = gpu.NewQueue(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("device: %w", err)
	}
	info := gpu.Adapter()
	Logger().Info("device created",
		slog.String("driver", drv.Name()),
		slog.String("adapter", info.Name),
		slog.Bool("software", info.Software),
		slog.String("preference", pref.String()),
		slog.Bool("debug", cfg.Debug))
	return d, nil
}

// Driver returns the driver.Driver.
func (d *Device) Driver() driver.Driver { return d.drv }

// GPU returns the driver.GPU.
func (d *Device) GPU() driver.GPU { return d.gpu }

// Queue returns the execution queue.
func (d *Device) Queue() driver.Queue { return d.q }

// Debugger returns the validation layer, or nil if
// the device was created without Config.Debug.
func (d *Device) Debugger() driver.Debugger { return d.dbg }

// Adapter describes the adapter in use.
func (d *Device) Adapter() driver.AdapterInfo { return d.gpu.Adapter() }

// LogMessages logs and clears the validation messages
// stored so far.
// It returns the number of messages.
func (d *Device) LogMessages() int {
	if d.dbg == nil {
		return 0
	}
	msgs := d.dbg.Messages()
	for _, m := range msgs {
		Logger().Warn("validation",
			slog.String("severity", m.Severity.String()),
			slog.Int("id", m.ID),
			slog.String("desc", m.Desc))
	}
	d.dbg.ClearMessages()
	return len(msgs)
}

// Free destroys the queue and closes the driver.
// All other objects created from d must have been
// destroyed and the GPU must be idle.
func (d *Device) Free() {
	if d.drv == nil {
		return
	}
	d.LogMessages()
	d.q.Destroy()
	d.drv.Close()
	Logger().Info("device closed", slog.String("driver", d.drv.Name()))
	*d = Device{}
}
