// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package driver defines a set of interfaces encompassing
// the GPU functionality required for frame pipelining:
// command recording and submission, fences, buffers and
// presentation.
// It is modelled after explicit APIs such as Direct3D 12,
// so that they can be implemented in a mostly
// straightforward manner.
package driver

import (
	"errors"
	"log/slog"
	"sync"
)

// Driver is the interface that provides methods for
// loading and unloading an underlying implementation.
type Driver interface {
	// Open initializes the driver.
	// If it succeeds, further calls with the same receiver
	// have no effect and must return the same GPU instance
	// (opts is only considered by the first call).
	// Callers should assume that Open is not safe for
	// parallel execution.
	Open(opts Options) (GPU, error)

	// Name returns the name of the driver.
	// It must not cause the driver to be opened.
	Name() string

	// Close deinitializes the driver.
	// Closing a driver that is not open has no effect.
	// Callers should assume that Close is not safe for
	// parallel execution.
	Close()
}

// Options configures Driver.Open.
type Options struct {
	// Debug enables the validation layer.
	// It must be set before the device is created, since
	// it cannot be enabled afterwards.
	// When set, the GPU will implement Debugger.
	Debug bool

	// Preference is the adapter selection preference.
	Preference AdapterPref
}

// AdapterPref is the type of adapter preferences.
type AdapterPref int

// Adapter preferences.
const (
	APUnspecified AdapterPref = iota
	APMinPower
	APHighPerf
)

// String implements fmt.Stringer.
func (p AdapterPref) String() string {
	switch p {
	case APUnspecified:
		return "unspecified"
	case APMinPower:
		return "minimum-power"
	case APHighPerf:
		return "high-performance"
	}
	return "invalid"
}

// ErrNotInstalled means that a platform-specific library
// required for the driver to work is not present in the
// system.
var ErrNotInstalled = errors.New("driver: missing required library")

// ErrNoDevice means that no suitable device could be
// found.
var ErrNoDevice = errors.New("driver: no suitable device found")

// ErrNoHostMemory means that host memory could not be
// allocated.
var ErrNoHostMemory = errors.New("driver: out of host memory")

// ErrNoDeviceMemory means that device memory could not
// be allocated.
var ErrNoDeviceMemory = errors.New("driver: out of device memory")

// ErrFatal means that the driver is in an unrecoverable
// state. Upon encountering such an error, the application
// must destroy everything that it created using the
// driver's GPU and then call the Close method. It may call
// Open again to reinitialize the driver for further use.
var ErrFatal = errors.New("driver: fatal error")

// ErrInUse means that an operation could not be performed
// because the resource is still referenced elsewhere.
var ErrInUse = errors.New("driver: resource in use")

// Drivers returns the registered Drivers.
// Client code imports specific driver packages, and then
// call this function from init. As such, drivers that do
// not register themselves on init will not be considered
// for selection.
func Drivers() []Driver {
	mu.Lock()
	defer mu.Unlock()
	drv := make([]Driver, len(drivers))
	copy(drv, drivers)
	return drv
}

// Register registers a Driver.
// Driver implementations are expected to call Register
// exactly once, from an init function.
// If a driver with the same name has already been
// registered, it will be replaced by drv.
func Register(drv Driver) {
	mu.Lock()
	defer mu.Unlock()
	for i := range drivers {
		if drivers[i].Name() == drv.Name() {
			drivers[i] = drv
			slog.Debug("driver replaced", slog.String("driver", drv.Name()))
			return
		}
	}
	drivers = append(drivers, drv)
	slog.Debug("driver registered", slog.String("driver", drv.Name()))
}

// Lookup returns the registered Driver whose name is name.
func Lookup(name string) (Driver, bool) {
	mu.Lock()
	defer mu.Unlock()
	for _, d := range drivers {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// Variables used for driver registration.
var (
	mu      sync.Mutex
	drivers []Driver = make([]Driver, 0, 2)
)
