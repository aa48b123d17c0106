// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResize(t *testing.T) {
	ev, err := parseResize("800x600@10")
	require.NoError(t, err)
	assert.Equal(t, resizeEvent{frame: 10, width: 800, height: 600}, ev)
	ev, err = parseResize("0X0@3")
	require.NoError(t, err)
	assert.Equal(t, resizeEvent{frame: 3}, ev)

	for _, s := range [...]string{"", "800x600", "800@1", "ax600@1", "800x600@-1", "-1x2@0", "1x2@"} {
		_, err := parseResize(s)
		assert.ErrorIs(t, err, errResizeSyntax, s)
	}
}

func TestParseResizes(t *testing.T) {
	evs, err := parseResizes([]string{"1x1@9", "2x2@3", "3x3@9"})
	require.NoError(t, err)
	want := []resizeEvent{{3, 2, 2}, {9, 1, 1}, {9, 3, 3}}
	assert.Equal(t, want, evs)
	_, err = parseResizes([]string{"1x1@1", "bad"})
	assert.Error(t, err)
}

func TestLogLevel(t *testing.T) {
	for _, x := range [...]struct {
		f    logFlags
		cfg  string
		want slog.Level
	}{
		{logFlags{verbose: 2, quiet: true}, "error", slog.LevelDebug},
		{logFlags{verbose: 1}, "error", slog.LevelInfo},
		{logFlags{quiet: true}, "debug", slog.LevelError},
		{logFlags{}, "warn", slog.LevelWarn},
		{logFlags{}, "", slog.LevelInfo},
	} {
		if l := x.f.level(x.cfg); l != x.want {
			t.Errorf("logFlags.level(%q):\nhave %v\nwant %v", x.cfg, l, x.want)
		}
	}
}
