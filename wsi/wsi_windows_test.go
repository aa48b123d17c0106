// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import "testing"

func TestHWND(t *testing.T) {
	var _ Window = HWND(0)

	// GetClientRect fails on a null window.
	if w, h := HWND(0).ClientSize(); w != 0 || h != 0 {
		t.Fatalf("HWND.ClientSize\nhave %d, %d\nwant 0, 0", w, h)
	}
	if h := HWND(42).Handle(); h != 42 {
		t.Fatalf("HWND.Handle\nhave %d\nwant 42", h)
	}
}
