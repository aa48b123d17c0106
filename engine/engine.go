// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package engine implements the frame pipelining core of
// a real-time renderer: device creation, per-frame command
// submission, presentation, CPU/GPU synchronization and
// resource uploads.
//
// Up to MaxFrame frames are in flight at any time. The
// frame loop is driven by Renderer.BeginFrame and
// Renderer.EndFrame, which perform, in order:
//
//	wait-for-slot → reset → (record) → submit → present → signal
package engine

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gviegas/rendercore/driver"
)

const (
	// The maximum number of frames in flight.
	MaxFrame = 3

	dflWidth   = 1280
	dflHeight  = 720
	dflAdapter = "high-performance"
	dflLevel   = "info"
)

// Config is used to configure the engine.
type Config struct {
	// Name of the driver to use. Any registered driver
	// whose name contains this string (ignoring case)
	// is a candidate.
	//
	// Default is "" (the platform's hardware driver,
	// with no fallback; any driver on platforms that
	// have none).
	Driver string `toml:"driver" yaml:"driver"`

	// Whether to enable the driver's validation layer.
	//
	// Default is false.
	Debug bool `toml:"debug" yaml:"debug"`

	// Validation message severities that cause a break.
	// Only used when Debug is set.
	//
	// Default is ["corruption", "error", "warning"].
	BreakOn []string `toml:"break_on" yaml:"break_on"`

	// Adapter preference. Valid values are
	// "high-performance", "minimum-power" and
	// "unspecified".
	//
	// Default is "high-performance".
	Adapter string `toml:"adapter" yaml:"adapter"`

	// Initial window size, for frontends that create
	// the window.
	//
	// Default is 1280x720.
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`

	// Simulated execution time of each submission.
	// Only drivers that support it (i.e., soft) use
	// this value.
	//
	// Default is 0.
	Latency Duration `toml:"latency" yaml:"latency"`

	// Log level. Valid values are "debug", "info",
	// "warn" and "error".
	//
	// Default is "info".
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Driver:   "",
		Debug:    false,
		BreakOn:  []string{"corruption", "error", "warning"},
		Adapter:  dflAdapter,
		Width:    dflWidth,
		Height:   dflHeight,
		Latency:  0,
		LogLevel: dflLevel,
	}
}

// Validate checks whether c is valid.
func (c *Config) Validate() error {
	if _, err := c.adapterPref(); err != nil {
		return err
	}
	if _, err := c.breakOn(); err != nil {
		return err
	}
	if c.Width < 0 || c.Height < 0 {
		return newCfgErr(fmt.Sprintf("invalid window size %dx%d", c.Width, c.Height))
	}
	if c.Latency < 0 {
		return newCfgErr("negative latency")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return newCfgErr(fmt.Sprintf("invalid log level %q", c.LogLevel))
	}
	return nil
}

func (c *Config) adapterPref() (driver.AdapterPref, error) {
	for _, p := range [...]driver.AdapterPref{driver.APHighPerf, driver.APMinPower, driver.APUnspecified} {
		if strings.EqualFold(c.Adapter, p.String()) {
			return p, nil
		}
	}
	if c.Adapter == "" {
		return driver.APHighPerf, nil
	}
	return 0, newCfgErr(fmt.Sprintf("invalid adapter preference %q", c.Adapter))
}

func (c *Config) breakOn() ([]driver.Severity, error) {
	sevs := make([]driver.Severity, 0, len(c.BreakOn))
	for _, s := range c.BreakOn {
		sev, err := driver.ParseSeverity(s)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		sevs = append(sevs, sev)
	}
	return sevs, nil
}

// Duration is a time.Duration that is encoded as a
// string such as "16ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	x, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(x)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// String implements fmt.Stringer.
func (d Duration) String() string { return time.Duration(d).String() }
