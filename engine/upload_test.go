// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/rendercore/driver"
)

func TestUploadZeroSize(t *testing.T) {
	r, _ := newTestRenderer(t, 0)
	u := r.Uploader()
	counter := r.Sync().Counter()
	for _, f := range [...]func(int64, []byte) (driver.Buffer, error){
		u.NewUploadBuffer,
		u.NewDefaultBuffer,
	} {
		for _, n := range [...]int64{0, -1} {
			buf, err := f(n, nil)
			assert.Nil(t, buf)
			assert.ErrorIs(t, err, ErrZeroSize)
		}
	}
	assert.Equal(t, counter, r.Sync().Counter(), "failed upload signaled the fence")
	assert.Zero(t, r.Stats().Uploads)
}

func TestUploadBuffer(t *testing.T) {
	r, _ := newTestRenderer(t, 0)
	data := []byte("vertex data")
	buf, err := r.Uploader().NewUploadBuffer(64, data)
	require.NoError(t, err)
	defer buf.Destroy()
	assert.Equal(t, driver.HUpload, buf.Heap())
	assert.Equal(t, int64(64), buf.Size())
	b := buf.Bytes()
	if !bytes.Equal(b[:len(data)], data) {
		t.Fatalf("Uploader.NewUploadBuffer: contents\nhave %q\nwant %q", b[:len(data)], data)
	}
	assert.Equal(t, make([]byte, 64-len(data)), b[len(data):])
	// Upload-heap buffers need no copy.
	assert.Zero(t, r.Stats().Uploads)
}

func TestDefaultBuffer(t *testing.T) {
	r, _ := newTestRenderer(t, 0)
	u := r.Uploader()
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i * 7)
	}
	buf, err := u.NewDefaultBuffer(int64(len(data)), data)
	require.NoError(t, err)
	defer buf.Destroy()
	assert.Equal(t, driver.HDefault, buf.Heap())
	assert.Nil(t, buf.Bytes())
	if c, n := r.Sync().Completed(), r.Sync().Counter(); c != n {
		t.Fatalf("Uploader.NewDefaultBuffer: did not wait\nhave completed %d\nwant %d", c, n)
	}

	b, err := u.Readback(buf, int64(len(data)))
	require.NoError(t, err)
	if !bytes.Equal(b, data) {
		t.Fatal("Uploader.Readback: contents differ from uploaded data")
	}
	b, err = u.Readback(buf, 16)
	require.NoError(t, err)
	assert.Equal(t, data[:16], b)
	_, err = u.Readback(buf, int64(len(data))+1)
	assert.Error(t, err)

	assert.Equal(t, uint64(3), r.Stats().Uploads)
	assert.Zero(t, r.Device().LogMessages())
}

func TestUploadResourceError(t *testing.T) {
	r, _ := newTestRenderer(t, 0)
	_, err := r.Uploader().NewDefaultBuffer(1<<40, nil)
	var re *ResourceError
	require.True(t, errors.As(err, &re), "Uploader.NewDefaultBuffer: error is not a *ResourceError")
	assert.Equal(t, driver.HDefault, re.Heap)
	assert.Equal(t, int64(1<<40), re.Size)
	assert.Error(t, re.Unwrap())
}

func TestCounterIncreases(t *testing.T) {
	r, _ := newTestRenderer(t, 0)
	fs := r.Sync()
	var prev uint64
	check := func(what string) {
		t.Helper()
		n := fs.Counter()
		if n <= prev {
			t.Fatalf("%s: counter did not increase\nhave %d\nwant > %d", what, n, prev)
		}
		prev = n
	}
	for range 2 {
		renderFrames(t, r, 1)
		check("EndFrame")
		buf, err := r.Uploader().NewDefaultBuffer(256, nil)
		require.NoError(t, err)
		check("NewDefaultBuffer")
		r.Retire(buf)
		require.NoError(t, r.Resize(32+int(prev), 32))
		check("Resize")
		require.NoError(t, fs.Flush())
		check("Flush")
	}
}

// lostFence is a fence that the queue does not accept,
// so every signal fails.
type lostFence struct{}

func (lostFence) Destroy()          {}
func (lostFence) Completed() uint64 { return 0 }
func (lostFence) Wait(uint64) error { return nil }

func TestUploadFlushFailure(t *testing.T) {
	cfg := testConfig(0)
	// Buffers left alive are reported at close.
	cfg.BreakOn = nil
	dev, err := NewDevice(cfg)
	require.NoError(t, err)
	defer dev.Free()
	fs := &FrameSync{dev: dev, fence: lostFence{}, recording: -1}
	u, err := NewUploader(dev, fs)
	require.NoError(t, err)
	live := dev.GPU().(interface{ Live() int })

	n := live.Live()
	buf, err := u.NewDefaultBuffer(64, []byte{1, 2, 3})
	assert.Nil(t, buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid fence")
	// Neither the staging buffer nor the destination
	// may be destroyed while the copy can be pending.
	assert.Equal(t, n+2, live.Live())

	// Wait for the copy before destroying the uploader.
	f, err := dev.GPU().NewFence(0)
	require.NoError(t, err)
	require.NoError(t, dev.Queue().Signal(f, 1))
	require.NoError(t, f.Wait(1))
	f.Destroy()
	u.Free()
	assert.Zero(t, fs.Counter())
}
