// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gviegas/rendercore/driver"
)

// ErrZeroSize means that a buffer of size zero was
// requested.
var ErrZeroSize = errors.New("upload: buffer size must be greater than zero")

// ResourceError is the error returned when a resource
// could not be created.
type ResourceError struct {
	Op   string
	Heap driver.HeapType
	Size int64
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("upload: %s (%s heap, %d bytes): %v", e.Op, e.Heap, e.Size, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Uploader is the resource upload unit.
// It owns a command allocator and command list that are
// independent of the frame slots, and uses the FrameSync's
// counter to wait for its copies.
type Uploader struct {
	dev     *Device
	fs      *FrameSync
	alloc   driver.CmdAllocator
	list    driver.CmdList
	uploads uint64
}

// NewUploader creates a new Uploader.
func NewUploader(dev *Device, fs *FrameSync) (*Uploader, error) {
	alloc, err := dev.GPU().NewCmdAllocator()
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	list, err := dev.GPU().NewCmdList(alloc)
	if err != nil {
		alloc.Destroy()
		return nil, fmt.Errorf("upload: %w", err)
	}
	return &Uploader{dev: dev, fs: fs, alloc: alloc, list: list}, nil
}

func (u *Uploader) newBuffer(op string, size int64, heap driver.HeapType) (driver.Buffer, error) {
	if size <= 0 {
		return nil, ErrZeroSize
	}
	buf, err := u.dev.GPU().NewBuffer(size, heap)
	if err != nil {
		return nil, &ResourceError{Op: op, Heap: heap, Size: size, Err: err}
	}
	return buf, nil
}

// NewUploadBuffer creates a host-visible buffer of the
// given size and copies data into it.
// The buffer remains mappable through its Bytes method.
// Bytes of data beyond size are ignored.
func (u *Uploader) NewUploadBuffer(size int64, data []byte) (driver.Buffer, error) {
	buf, err := u.newBuffer("create upload buffer", size, driver.HUpload)
	if err != nil {
		return nil, err
	}
	copy(buf.Bytes(), data)
	return buf, nil
}

// NewDefaultBuffer creates a device-local buffer of the
// given size and fills it with data through a staging
// buffer.
// It blocks until the GPU completes the copy, so the
// staging buffer is destroyed only after that.
// Bytes of data beyond size are ignored.
func (u *Uploader) NewDefaultBuffer(size int64, data []byte) (driver.Buffer, error) {
	dst, err := u.newBuffer("create default buffer", size, driver.HDefault)
	if err != nil {
		return nil, err
	}
	stg, err := u.NewUploadBuffer(size, data)
	if err != nil {
		dst.Destroy()
		return nil, err
	}
	if err = u.copyAndWait(dst, stg, size); err != nil {
		return nil, u.abort(err, stg, dst)
	}
	stg.Destroy()
	return dst, nil
}

// Readback copies size bytes from the start of src into
// host memory and returns them.
// It blocks until the GPU completes the copy.
func (u *Uploader) Readback(src driver.Buffer, size int64) ([]byte, error) {
	if size > src.Size() {
		return nil, fmt.Errorf("upload: readback of %d bytes from a %d-byte buffer", size, src.Size())
	}
	rb, err := u.newBuffer("create readback buffer", size, driver.HReadback)
	if err != nil {
		return nil, err
	}
	if err = u.copyAndWait(rb, src, size); err != nil {
		return nil, u.abort(err, rb)
	}
	b := append([]byte(nil), rb.Bytes()...)
	rb.Destroy()
	return b, nil
}

// abort handles a failed copy.
// The copy may still be pending, so bufs are destroyed
// only after a flush succeeds. If the flush fails, they
// are left alive and the flush error is joined to err.
func (u *Uploader) abort(err error, bufs ...driver.Buffer) error {
	if ferr := u.fs.Flush(); ferr != nil {
		Logger().Error("flush after failed copy", slog.Any("err", ferr), slog.Int("leaked", len(bufs)))
		return errors.Join(err, ferr)
	}
	for _, b := range bufs {
		b.Destroy()
	}
	return err
}

// copyAndWait records and submits a copy, then waits for
// a newly signaled counter value.
func (u *Uploader) copyAndWait(dst, src driver.Buffer, size int64) error {
	if err := u.alloc.Reset(); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	if err := u.list.Reset(u.alloc); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	u.list.CopyBuffer(dst, 0, src, 0, size)
	if err := u.list.Close(); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	u.dev.Queue().Execute(u.list)
	v, err := u.fs.signalAndWait()
	if err != nil {
		return err
	}
	u.uploads++
	Logger().Debug("copy completed", slog.Int64("size", size), slog.Uint64("value", v))
	return nil
}

// Free destroys the command list and allocator.
// The GPU must be idle.
func (u *Uploader) Free() {
	if u.list != nil {
		u.list.Destroy()
		u.list = nil
	}
	if u.alloc != nil {
		u.alloc.Destroy()
		u.alloc = nil
	}
}
