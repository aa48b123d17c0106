// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"errors"
	"sync"
	"time"

	"github.com/gviegas/rendercore/driver"
)

// queueDepth is the number of items a queue accepts
// before submission blocks.
const queueDepth = 64

type itemKind int

const (
	itemExec itemKind = iota
	itemSignal
	itemPresent
)

// item is a unit of queue work.
type item struct {
	kind  itemKind
	subs  []submission
	fence *fence
	value uint64
	img   *image
}

// submission is the immutable copy of a command list
// taken at Execute time.
type submission struct {
	alloc *cmdAlloc
	cmds  []command
	refs  []*resource
}

// queue implements driver.Queue.
type queue struct {
	resource
	mu     sync.Mutex
	closed bool
	work   chan item
	done   chan struct{}
}

// NewQueue creates a new queue.
func (g *GPU) NewQueue() (driver.Queue, error) {
	q := &queue{
		work: make(chan item, queueDepth),
		done: make(chan struct{}),
	}
	q.init(g)
	go q.run()
	return q, nil
}

func (q *queue) run() {
	defer close(q.done)
	for it := range q.work {
		switch it.kind {
		case itemExec:
			if d := time.Duration(q.gpu.latency.Load()); d > 0 {
				time.Sleep(d)
			}
			for _, s := range it.subs {
				for i := range s.cmds {
					s.cmds[i].exec(q.gpu.dbg)
				}
				for _, r := range s.refs {
					r.release()
				}
				s.alloc.release()
			}
		case itemSignal:
			// Releases happen before the signal so that
			// waiters observe an idle queue and fence.
			it.fence.release()
			q.release()
			it.fence.signal(it.value)
			continue
		case itemPresent:
			it.img.mu.Lock()
			if it.img.state != driver.RSPresent {
				q.gpu.dbg.reportAsync(driver.SError, msgPresentState, "back-buffer presented in state %s", it.img.state)
			}
			it.img.mu.Unlock()
			it.img.release()
		}
		q.release()
	}
}

func (q *queue) push(it item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.gpu.dbg.report(driver.SCorruption, msgUseAfterDestroy, "submission to destroyed queue")
		return
	}
	q.pending.Add(1)
	q.work <- it
}

// Execute submits closed command lists.
func (q *queue) Execute(cl ...driver.CmdList) {
	q.gpu.dbg.raise()
	subs := make([]submission, 0, len(cl))
	for _, x := range cl {
		l := x.(*cmdList)
		if l.open {
			q.gpu.dbg.report(driver.SError, msgListNotClosed, "open command list submitted for execution")
			continue
		}
		if l.alloc == nil {
			continue
		}
		s := submission{
			alloc: l.alloc,
			cmds:  append([]command(nil), l.cmds...),
		}
		l.alloc.acquire()
		for i := range s.cmds {
			s.refs = s.cmds[i].refs(s.refs)
		}
		for _, r := range s.refs {
			r.acquire()
		}
		subs = append(subs, s)
	}
	if len(subs) > 0 {
		q.push(item{kind: itemExec, subs: subs})
	}
}

// Signal enqueues a fence signal.
func (q *queue) Signal(f driver.Fence, value uint64) error {
	q.gpu.dbg.raise()
	fc, ok := f.(*fence)
	if !ok || fc == nil {
		return errors.New("soft: invalid fence")
	}
	fc.mu.Lock()
	fc.enqueued = max(fc.enqueued, value)
	fc.mu.Unlock()
	fc.acquire()
	q.push(item{kind: itemSignal, fence: fc, value: value})
	return nil
}

// Destroy waits for queued work and stops the queue.
func (q *queue) Destroy() {
	if !q.destroy("queue") {
		return
	}
	q.mu.Lock()
	q.closed = true
	close(q.work)
	q.mu.Unlock()
	<-q.done
}

// fence implements driver.Fence.
type fence struct {
	resource
	mu        sync.Mutex
	cond      sync.Cond
	completed uint64
	enqueued  uint64
}

// NewFence creates a new fence.
func (g *GPU) NewFence(initial uint64) (driver.Fence, error) {
	f := &fence{completed: initial, enqueued: initial}
	f.cond.L = &f.mu
	f.init(g)
	return f, nil
}

// Completed returns the last signaled value.
func (f *fence) Completed() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Wait blocks until value is signaled.
func (f *fence) Wait(value uint64) error {
	f.gpu.dbg.raise()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed >= value {
		return nil
	}
	if f.enqueued < value {
		// Nothing submitted so far will ever complete
		// this wait.
		f.gpu.dbg.report(driver.SWarning, msgWaitUnsignaled, "wait for fence value %d, but only %d was signaled", value, f.enqueued)
	}
	for f.completed < value {
		f.cond.Wait()
	}
	return nil
}

func (f *fence) signal(value uint64) {
	f.mu.Lock()
	f.completed = value
	f.mu.Unlock()
	f.cond.Broadcast()
}

// Destroy destroys the fence.
func (f *fence) Destroy() { f.destroy("fence") }
