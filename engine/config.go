// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

func newCfgErr(s string) error { return errors.New("config: " + s) }

// LoadConfig reads a configuration file.
// The format is chosen by the file extension: ".toml"
// for TOML, ".yaml" or ".yml" for YAML.
// Fields missing from the file keep their default values,
// while unknown fields are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err = DecodeConfig(f, filepath.Ext(path), &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig decodes a configuration from r into cfg.
// format is either "toml" or "yaml"/"yml", optionally
// preceded by a dot.
func DecodeConfig(r io.Reader, format string, cfg *Config) error {
	// Defaults are replaced, not merged.
	breakOn := cfg.BreakOn
	cfg.BreakOn = nil
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "toml":
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			var sme *toml.StrictMissingError
			if errors.As(err, &sme) {
				return newCfgErr(sme.String())
			}
			return fmt.Errorf("config: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("config: %w", err)
		}
	default:
		return newCfgErr(fmt.Sprintf("unsupported format %q", format))
	}
	if cfg.BreakOn == nil {
		cfg.BreakOn = breakOn
	}
	return cfg.Validate()
}
