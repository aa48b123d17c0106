// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build windows && (amd64 || arm64)

package d3d12

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/rendercore/driver"
)

func open(t *testing.T) (*Driver, driver.GPU) {
	t.Helper()
	drv := &Driver{}
	gpu, err := drv.Open(driver.Options{Preference: driver.APHighPerf})
	if errors.Is(err, driver.ErrNotInstalled) || errors.Is(err, driver.ErrNoDevice) {
		t.Skipf("Direct3D 12 not available: %v", err)
	}
	require.NoError(t, err)
	return drv, gpu
}

func TestOpen(t *testing.T) {
	drv, gpu := open(t)
	defer drv.Close()

	gpu2, err := drv.Open(driver.Options{})
	require.NoError(t, err)
	assert.Same(t, gpu.(*GPU), gpu2.(*GPU))
	assert.NotEmpty(t, gpu.Adapter().Name)
	assert.Equal(t, "d3d12", drv.Name())
	_, ok := gpu.(driver.Presenter)
	assert.True(t, ok)
}

func TestUploadReadback(t *testing.T) {
	drv, gpu := open(t)
	defer drv.Close()

	q, err := gpu.NewQueue()
	require.NoError(t, err)
	defer q.Destroy()
	alloc, err := gpu.NewCmdAllocator()
	require.NoError(t, err)
	defer alloc.Destroy()
	cl, err := gpu.NewCmdList(alloc)
	require.NoError(t, err)
	defer cl.Destroy()
	f, err := gpu.NewFence(0)
	require.NoError(t, err)
	defer f.Destroy()

	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i * 7)
	}
	n := int64(len(data))
	up, err := gpu.NewBuffer(n, driver.HUpload)
	require.NoError(t, err)
	defer up.Destroy()
	dev, err := gpu.NewBuffer(n, driver.HDefault)
	require.NoError(t, err)
	defer dev.Destroy()
	rb, err := gpu.NewBuffer(n, driver.HReadback)
	require.NoError(t, err)
	defer rb.Destroy()
	copy(up.Bytes(), data)

	require.NoError(t, cl.Reset(alloc))
	cl.CopyBuffer(dev, 0, up, 0, n)
	require.NoError(t, cl.Close())
	q.Execute(cl)
	require.NoError(t, q.Signal(f, 1))
	require.NoError(t, f.Wait(1))

	require.NoError(t, alloc.Reset())
	require.NoError(t, cl.Reset(alloc))
	cl.CopyBuffer(rb, 0, dev, 0, n)
	require.NoError(t, cl.Close())
	q.Execute(cl)
	require.NoError(t, q.Signal(f, 2))
	require.NoError(t, f.Wait(2))
	assert.Equal(t, uint64(2), f.Completed())
	assert.Equal(t, data, rb.Bytes())
}

func TestFormats(t *testing.T) {
	for pf := driver.RGBA8un; pf <= driver.RGB10A2un; pf++ {
		if have := fromDXGI(toDXGI(pf)); have != pf {
			t.Fatalf("fromDXGI(toDXGI(%d)):\nhave %d\nwant %d", pf, have, pf)
		}
	}
	if f := toDXGI(driver.FUnknown); f != dxgiFormatUnknown {
		t.Fatalf("toDXGI(FUnknown):\nhave %d\nwant %d", f, dxgiFormatUnknown)
	}
}
