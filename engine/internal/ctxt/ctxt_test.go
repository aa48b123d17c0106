// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package ctxt

import (
	"errors"
	"testing"

	"github.com/gviegas/rendercore/driver"
)

func TestLoad(t *testing.T) {
	drv, gpu, err := Load("SOFT", driver.Options{})
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	defer drv.Close()
	if drv.Name() != "soft" {
		t.Errorf("Load: Driver.Name\nhave %s\nwant soft", drv.Name())
	}
	if gpu == nil {
		t.Error("Load: unexpected nil gpu")
	} else if gpu.Driver() != drv {
		t.Error("Load: GPU.Driver mismatch")
	}
}

func TestLoadAny(t *testing.T) {
	drv, gpu, err := Load("", driver.Options{})
	if errors.Is(err, driver.ErrNotInstalled) || errors.Is(err, driver.ErrNoDevice) {
		t.Skipf("Load: no hardware driver: %v", err)
	}
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	defer drv.Close()
	if gpu == nil {
		t.Error("Load: unexpected nil gpu")
	}
}

func TestLoadMissing(t *testing.T) {
	_, _, err := Load("no such driver", driver.Options{})
	if !errors.Is(err, ErrNoDriver) {
		t.Fatalf("Load: unexpected error\nhave %v\nwant %v", err, ErrNoDriver)
	}
}

// brokenDriver is a Driver that has no usable device.
type brokenDriver struct{}

func (brokenDriver) Open(driver.Options) (driver.GPU, error) { return nil, driver.ErrNoDevice }
func (brokenDriver) Name() string                            { return "broken" }
func (brokenDriver) Close()                                  {}

func TestLoadPreferredFails(t *testing.T) {
	driver.Register(brokenDriver{})
	prev := preferred
	preferred = []string{"broken"}
	defer func() { preferred = prev }()

	drv, gpu, err := Load("", driver.Options{})
	if !errors.Is(err, driver.ErrNoDevice) {
		t.Fatalf("Load: unexpected error\nhave %v\nwant %v", err, driver.ErrNoDevice)
	}
	if drv != nil || gpu != nil {
		// Must not fall back to another driver.
		if drv != nil {
			drv.Close()
			t.Fatalf("Load: fell back to driver %q", drv.Name())
		}
		t.Fatal("Load: unexpected non-nil gpu")
	}

	// Naming a driver explicitly still works.
	drv, _, err = Load("soft", driver.Options{})
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	drv.Close()
}
