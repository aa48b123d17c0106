// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"fmt"
	"sync"

	"github.com/gviegas/rendercore/driver"
)

// Message IDs.
const (
	msgAllocResetInFlight = 1 + iota
	msgAllocInUse
	msgListOpen
	msgListNotOpen
	msgListNotClosed
	msgDestroyInFlight
	msgUseAfterDestroy
	msgStateMismatch
	msgInvalidHandle
	msgCopyBounds
	msgZeroSizeView
	msgResizeInUse
	msgResizeInFlight
	msgPresentState
	msgWaitUnsignaled
	msgLiveObjects
)

// validator stores validation messages.
// A nil *validator discards everything.
type validator struct {
	mu   sync.Mutex
	msgs []driver.Message
	brk  [driver.SMessage + 1]bool
	// Break raised on the queue goroutine,
	// to be delivered on the next API call.
	deferred *driver.Message
}

// report stores a message and breaks (panics) if the
// severity is configured to do so.
// It must be called from the goroutine using the API.
func (v *validator) report(sev driver.Severity, id int, format string, args ...any) {
	if v == nil {
		return
	}
	m := v.store(sev, id, format, args)
	if m != nil {
		panic("soft: break on " + m.String())
	}
}

// reportAsync is like report, but defers the break
// to the next call of raise.
// It is called from the queue goroutine.
func (v *validator) reportAsync(sev driver.Severity, id int, format string, args ...any) {
	if v == nil {
		return
	}
	if m := v.store(sev, id, format, args); m != nil {
		v.mu.Lock()
		if v.deferred == nil {
			v.deferred = m
		}
		v.mu.Unlock()
	}
}

func (v *validator) store(sev driver.Severity, id int, format string, args []any) *driver.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	m := driver.Message{
		Severity: sev,
		ID:       id,
		Desc:     fmt.Sprintf(format, args...),
	}
	v.msgs = append(v.msgs, m)
	if v.brk[sev] {
		return &m
	}
	return nil
}

// raise delivers a deferred break.
func (v *validator) raise() {
	if v == nil {
		return
	}
	v.mu.Lock()
	m := v.deferred
	v.deferred = nil
	v.mu.Unlock()
	if m != nil {
		panic("soft: break on " + m.String())
	}
}
