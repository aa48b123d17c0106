// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package ctxt loads the GPU driver used in the engine.
package ctxt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gviegas/rendercore/driver"
	_ "github.com/gviegas/rendercore/driver/soft"
)

// ErrNoDriver means that no registered driver matched
// the requested name.
var ErrNoDriver = errors.New("ctxt: driver not found")

// preferred lists the names of drivers that are tried
// first when no name is given.
// It is extended by platform-specific files.
var preferred []string

// Load attempts to open any driver whose name contains
// the name string. It is case insensitive.
// If name is the empty string and the platform has
// preferred drivers, then only those are tried: failing
// to open them is fatal rather than a reason to fall
// back to another driver. Otherwise any registered
// driver is tried.
// Errors from drivers that fail to open are joined in
// the returned error.
func Load(name string, opts driver.Options) (driver.Driver, driver.GPU, error) {
	if name == "" && len(preferred) > 0 {
		var errs []error
		for _, p := range preferred {
			drv, gpu, err := load(p, opts)
			if err == nil {
				return drv, gpu, nil
			}
			errs = append(errs, err)
		}
		return nil, nil, errors.Join(errs...)
	}
	return load(name, opts)
}

func load(name string, opts driver.Options) (driver.Driver, driver.GPU, error) {
	drivers := driver.Drivers()
	errs := []error{ErrNoDriver}
	name = strings.ToLower(name)
	for i := range drivers {
		if !strings.Contains(strings.ToLower(drivers[i].Name()), name) {
			continue
		}
		gpu, err := drivers[i].Open(opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("ctxt: %s: %w", drivers[i].Name(), err))
			continue
		}
		return drivers[i], gpu, nil
	}
	if len(errs) > 1 {
		errs = errs[1:]
	}
	return nil, nil, errors.Join(errs...)
}
