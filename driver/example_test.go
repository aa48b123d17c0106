// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver_test

import (
	"fmt"
	"log"

	"github.com/gviegas/rendercore/driver"
	_ "github.com/gviegas/rendercore/driver/soft"
)

// openDriver selects the software driver.
func openDriver() (driver.Driver, driver.GPU) {
	drv, ok := driver.Lookup("soft")
	if !ok {
		log.Fatal("driver.Lookup: driver not found")
	}
	gpu, err := drv.Open(driver.Options{})
	if err != nil {
		log.Fatal(err)
	}
	return drv, gpu
}

// Example_copy copies data from an upload buffer into a
// device-local buffer, then back into a readback buffer.
func Example_copy() {
	drv, gpu := openDriver()
	defer drv.Close()

	q, err := gpu.NewQueue()
	if err != nil {
		log.Fatal(err)
	}
	defer q.Destroy()
	alloc, err := gpu.NewCmdAllocator()
	if err != nil {
		log.Fatal(err)
	}
	defer alloc.Destroy()
	// Command lists are created closed.
	cl, err := gpu.NewCmdList(alloc)
	if err != nil {
		log.Fatal(err)
	}
	defer cl.Destroy()
	fence, err := gpu.NewFence(0)
	if err != nil {
		log.Fatal(err)
	}
	defer fence.Destroy()

	const size = 16
	var bufs [3]driver.Buffer
	for i, h := range [3]driver.HeapType{driver.HUpload, driver.HDefault, driver.HReadback} {
		if bufs[i], err = gpu.NewBuffer(size, h); err != nil {
			log.Fatal(err)
		}
		defer bufs[i].Destroy()
	}
	copy(bufs[0].Bytes(), "Hello, GPU!")

	if err := cl.Reset(alloc); err != nil {
		log.Fatal(err)
	}
	cl.CopyBuffer(bufs[1], 0, bufs[0], 0, size)
	cl.CopyBuffer(bufs[2], 0, bufs[1], 0, size)
	if err := cl.Close(); err != nil {
		log.Fatal(err)
	}
	q.Execute(cl)

	// Wait for the copies to complete before reading
	// from the readback buffer.
	if err := q.Signal(fence, 1); err != nil {
		log.Fatal(err)
	}
	if err := fence.Wait(1); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s\n", bufs[2].Bytes()[:11])
	fmt.Println(fence.Completed())

	// Output:
	// Hello, GPU!
	// 1
}
