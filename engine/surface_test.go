// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/rendercore/driver"
	"github.com/gviegas/rendercore/wsi"
)

func TestSurface(t *testing.T) {
	r, win := newTestRenderer(t, 0)
	s := r.Surface()
	if w, h := s.Width(), s.Height(); w != 64 || h != 48 {
		t.Fatalf("NewSurface: size\nhave %dx%d\nwant 64x48", w, h)
	}
	assert.Same(t, win, s.Window().(*wsi.Fixed))
	assert.Equal(t, MaxFrame, s.Views())
	desc := s.Swapchain().Desc()
	assert.Equal(t, MaxFrame, desc.Count)
	assert.Equal(t, driver.RGBA8un, desc.Format)

	seen := make(map[driver.CPUHandle]bool)
	for i := range MaxFrame {
		require.NoError(t, r.BeginFrame())
		if idx := s.CurrentIndex(); idx != i {
			t.Fatalf("Surface.CurrentIndex:\nhave %d\nwant %d", idx, i)
		}
		img := s.CurrentBackBuffer()
		require.NotNil(t, img)
		assert.Equal(t, 64, img.Width())
		rtv, ok := s.RenderTargetView()
		require.True(t, ok)
		seen[rtv] = true
		require.NoError(t, r.EndFrame())
	}
	assert.Len(t, seen, MaxFrame, "render target views are not distinct")
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestSurfaceResizeSame(t *testing.T) {
	r, _ := newTestRenderer(t, 0)
	renderFrames(t, r, 2)
	fs := r.Sync()
	var values [MaxFrame]uint64
	for i := range values {
		values[i] = fs.Value(i)
	}
	flushes, counter := fs.flushes, fs.Counter()
	require.NoError(t, r.Resize(64, 48))
	assert.Equal(t, flushes, fs.flushes, "Resize flushed with an unchanged size")
	assert.Equal(t, counter, fs.Counter())
	for i := range values {
		assert.Equal(t, values[i], fs.Value(i))
	}
	assert.Zero(t, r.Stats().Resizes)
}

func TestSurfaceResize(t *testing.T) {
	r, win := newTestRenderer(t, 0)
	renderFrames(t, r, 2)
	fs := r.Sync()
	win.Resize(100, 80)
	require.NoError(t, r.Surface().ResizeToWindow())
	for i := range MaxFrame {
		if v := fs.Value(i); v != 0 {
			t.Fatalf("Surface.Resize: Value(%d)\nhave %d\nwant 0", i, v)
		}
	}
	assert.Equal(t, fs.Counter(), fs.Completed(), "Surface.Resize did not flush")
	s := r.Surface()
	assert.Equal(t, MaxFrame, s.Views())
	assert.Equal(t, 0, s.CurrentIndex())
	desc := s.Swapchain().Desc()
	if desc.Width != 100 || desc.Height != 80 {
		t.Fatalf("Surface.Resize: swapchain size\nhave %dx%d\nwant 100x80", desc.Width, desc.Height)
	}
	assert.Equal(t, driver.RGBA8un, desc.Format, "Surface.Resize: format not preserved")
	assert.Equal(t, uint64(1), r.Stats().Resizes)
	renderFrames(t, r, MaxFrame+1)
	assert.Zero(t, r.Device().LogMessages())
}

func TestSurfaceMinimize(t *testing.T) {
	r, _ := newTestRenderer(t, 0)
	renderFrames(t, r, 1)
	require.NoError(t, r.Resize(0, 0))
	s := r.Surface()
	assert.Zero(t, s.Views())
	assert.Nil(t, s.CurrentBackBuffer())
	_, ok := s.RenderTargetView()
	assert.False(t, ok)
	// Frames still run while minimized.
	renderFrames(t, r, 2)

	require.NoError(t, r.Resize(64, 48))
	assert.Equal(t, MaxFrame, s.Views())
	renderFrames(t, r, 2)
	assert.Zero(t, r.Device().LogMessages())
	assert.Error(t, r.Resize(-1, 10))
}

func TestSurfaceResizeDuringFrame(t *testing.T) {
	r, win := newTestRenderer(t, 0)
	renderFrames(t, r, 1)
	win.Resize(32, 32)
	require.NoError(t, r.BeginFrame())
	slot := r.Frame()
	value := r.Sync().Value(slot)
	assert.Panics(t, func() { r.Resize(32, 32) })
	assert.Panics(t, func() { r.ResizeToWindow() })
	assert.Panics(t, func() { r.Surface().Resize(32, 32) })
	assert.Panics(t, func() { r.Surface().ResizeToWindow() })
	// Nothing was released or reset.
	assert.Equal(t, MaxFrame, r.Surface().Views())
	assert.Equal(t, value, r.Sync().Value(slot))
	assert.Equal(t, 64, r.Surface().Width())
	require.NoError(t, r.EndFrame())
	assert.Equal(t, -1, r.Sync().Recording())

	require.NoError(t, r.ResizeToWindow())
	assert.Equal(t, 32, r.Surface().Width())
	renderFrames(t, r, 1)
	assert.Zero(t, r.Device().LogMessages())
}
