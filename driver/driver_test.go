// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"bytes"
	"log/slog"
	"testing"
)

// nameDriver is a Driver that cannot be opened.
type nameDriver string

func (d nameDriver) Open(Options) (GPU, error) { return nil, ErrNoDevice }
func (d nameDriver) Name() string              { return string(d) }
func (d nameDriver) Close()                    {}

func TestRegister(t *testing.T) {
	var buf bytes.Buffer
	dfl := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(dfl)

	n := len(Drivers())
	Register(nameDriver("register test"))
	Register(nameDriver("register test"))
	if m := len(Drivers()); m != n+1 {
		t.Fatalf("Register: len(Drivers())\nhave %d\nwant %d", m, n+1)
	}
	if _, ok := Lookup("register test"); !ok {
		t.Fatal("Lookup: registered driver not found")
	}
	// Registration is only logged at debug level.
	if buf.Len() != 0 {
		t.Fatalf("Register: unexpected log output\n%s", buf.String())
	}

	var dbg bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&dbg, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Register(nameDriver("register test"))
	if !bytes.Contains(dbg.Bytes(), []byte("driver replaced")) {
		t.Fatalf("Register: missing debug record\n%s", dbg.String())
	}
}
