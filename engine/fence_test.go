// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncObjs creates a device, a FrameSync and a Commands.
func syncObjs(t *testing.T, latency time.Duration) (*FrameSync, *Commands) {
	t.Helper()
	dev, err := NewDevice(testConfig(latency))
	require.NoError(t, err)
	fs, err := NewFrameSync(dev)
	require.NoError(t, err)
	cmd, err := NewCommands(dev, fs)
	require.NoError(t, err)
	t.Cleanup(func() {
		fs.Flush()
		cmd.Free()
		fs.Free()
		dev.Free()
	})
	return fs, cmd
}

func submitSlot(t *testing.T, fs *FrameSync, cmd *Commands, slot int) {
	t.Helper()
	require.NoError(t, cmd.ResetForFrame(slot))
	require.NoError(t, cmd.Submit())
	require.NoError(t, fs.SignalAfterSubmit(slot))
}

func TestFrameSync(t *testing.T) {
	fs, cmd := syncObjs(t, time.Millisecond)
	for i := range MaxFrame {
		if v := fs.Value(i); v != 0 {
			t.Fatalf("FrameSync.Value(%d):\nhave %d\nwant 0", i, v)
		}
		assert.True(t, fs.Idle(i))
		require.NoError(t, fs.WaitForSlot(i))
	}
	assert.Zero(t, fs.waits, "WaitForSlot blocked on unused slots")

	for i := range 2 * MaxFrame {
		slot := i % MaxFrame
		require.NoError(t, fs.WaitForSlot(slot))
		if c, v := fs.Completed(), fs.Value(slot); c < v {
			t.Fatalf("FrameSync.WaitForSlot(%d): returned early\nhave completed %d\nwant >= %d", slot, c, v)
		}
		submitSlot(t, fs, cmd, slot)
		if v, n := fs.Value(slot), fs.Counter(); v != n || v != uint64(i+1) {
			t.Fatalf("FrameSync.SignalAfterSubmit(%d):\nhave value %d, counter %d\nwant %d", slot, v, n, i+1)
		}
	}

	require.NoError(t, fs.Flush())
	if c, n := fs.Completed(), fs.Counter(); c != n || n != 2*MaxFrame+1 {
		t.Fatalf("FrameSync.Flush:\nhave completed %d, counter %d\nwant %d", c, n, 2*MaxFrame+1)
	}
	for i := range MaxFrame {
		assert.True(t, fs.Idle(i))
	}
	// Values are kept after completion.
	assert.Equal(t, uint64(2*MaxFrame), fs.Value(MaxFrame-1))
	assert.Equal(t, uint64(1), fs.flushes)
}

func TestFrameSyncBlocks(t *testing.T) {
	const latency = 20 * time.Millisecond
	fs, cmd := syncObjs(t, latency)
	submitSlot(t, fs, cmd, 0)
	assert.False(t, fs.Idle(0))
	start := time.Now()
	require.NoError(t, fs.WaitForSlot(0))
	assert.True(t, fs.Idle(0))
	assert.Equal(t, uint64(1), fs.waits)
	assert.GreaterOrEqual(t, time.Since(start), latency/2)
}

func TestSlotRange(t *testing.T) {
	fs, cmd := syncObjs(t, 0)
	assert.Panics(t, func() { fs.WaitForSlot(MaxFrame) })
	assert.Panics(t, func() { fs.Value(-1) })
	assert.Panics(t, func() { cmd.ResetForFrame(MaxFrame) })
	assert.Panics(t, func() { cmd.Allocator(-1) })
}

func TestSignalWithoutSubmit(t *testing.T) {
	fs, cmd := syncObjs(t, 0)
	assert.Panics(t, func() { fs.SignalAfterSubmit(0) })
	submitSlot(t, fs, cmd, 0)
	// Each submission permits one signal.
	assert.Panics(t, func() { fs.SignalAfterSubmit(0) })
}

func TestResetInFlight(t *testing.T) {
	fs, cmd := syncObjs(t, 50*time.Millisecond)
	submitSlot(t, fs, cmd, 0)
	assert.Panics(t, func() { cmd.ResetForFrame(0) })
	require.NoError(t, fs.WaitForSlot(0))
	require.NoError(t, cmd.ResetForFrame(0))
	assert.Equal(t, 0, cmd.Recording())
	assert.Equal(t, 0, fs.Recording())
	assert.Panics(t, func() { cmd.ResetForFrame(1) })
	require.NoError(t, cmd.Submit())
	assert.Equal(t, -1, cmd.Recording())
	assert.Equal(t, -1, fs.Recording())
	assert.Panics(t, func() { cmd.Submit() })
	require.NoError(t, fs.SignalAfterSubmit(0))
}
