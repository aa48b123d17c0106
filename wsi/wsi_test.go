// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"sync"
	"testing"
)

func TestFixed(t *testing.T) {
	var _ Window = (*Fixed)(nil)

	win := NewFixed(480, 360)
	if h := win.Handle(); h != 0 {
		t.Fatalf("Fixed.Handle\nhave %d\nwant 0", h)
	}
	if w, h := win.ClientSize(); w != 480 || h != 360 {
		t.Fatalf("Fixed.ClientSize\nhave %d, %d\nwant 480, 360", w, h)
	}
	win.Resize(0, 0)
	if w, h := win.ClientSize(); w != 0 || h != 0 {
		t.Fatalf("Fixed.ClientSize (minimized)\nhave %d, %d\nwant 0, 0", w, h)
	}
	win.Resize(-1, 90)
	if w, h := win.ClientSize(); w != 0 || h != 90 {
		t.Fatalf("Fixed.ClientSize (clamped)\nhave %d, %d\nwant 0, 90", w, h)
	}
}

func TestFixedConcurrent(t *testing.T) {
	win := NewFixed(1, 1)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			win.Resize(i+1, i+1)
			w, h := win.ClientSize()
			if w != h {
				t.Errorf("Fixed.ClientSize: torn read %d, %d", w, h)
			}
		}()
	}
	wg.Wait()
}
