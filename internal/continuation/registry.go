// Copyright 2024 The gopromise Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package continuation

import (
	"sync"
	"sync/atomic"
)

// Dispatcher submits fn to run, synchronously or on some executor. Push
// calls it directly, without going through the registry, once RequestRun
// has already fired: a callback attached after the fact must still run.
type Dispatcher interface {
	Submit(fn func())
}

// DispatcherFunc adapts a plain function to a Dispatcher.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Submit(fn func()) { f(fn) }

type node struct {
	fn   func()
	next *node
}

// Eager is a continuation registry safe for concurrent Push and a single
// RequestRun, used by continuable operation states. Entries accumulate on
// an atomically-linked list (a Treiber stack: pushes prepend via CAS, so
// the list is in reverse insertion order until drained), guarded against
// loss by a run-requested flag and a short mutex that closes the race
// between a push in flight and a request to run.
type Eager struct {
	head         atomic.Pointer[node]
	runRequested atomic.Bool
	mu           sync.Mutex
}

// Push appends fn to the registry and reports true, unless RequestRun has
// already fired, in which case it hands fn straight to disp and reports
// false. The mutex brackets the flag check and the append so that any push
// racing a RequestRun either lands in the pre-CAS list (picked up by
// RequestRun's own drain) or observes the flag already set (and is
// dispatched immediately here) — no third outcome is possible.
//
// The append itself is a CAS loop, not a plain load-then-store: RequestRun's
// first drain runs without holding mu, so head can be swapped to nil by a
// concurrent drain between this call's read of the old head and its write
// of the new one. A plain store would silently resurrect the just-drained
// chain as the tail of the new node; the CAS instead fails and retries
// against whatever head actually is now.
func (r *Eager) Push(disp Dispatcher, fn func()) bool {
	r.mu.Lock()
	if r.runRequested.Load() {
		r.mu.Unlock()
		disp.Submit(fn)
		return false
	}
	n := &node{fn: fn}
	for {
		old := r.head.Load()
		n.next = old
		if r.head.CompareAndSwap(old, n) {
			break
		}
	}
	r.mu.Unlock()
	return true
}

// RequestRun latches the run-requested flag and drains the registry,
// invoking every queued callback in the order it was pushed. Only the
// first caller runs the drain and reports true; later callers report
// false without touching the queue.
//
// The drain runs twice: once lock-free immediately after winning the CAS,
// to cover the common case of no concurrent pushers, and once more under
// the mutex, to pick up any push that saw the flag unset before the CAS
// but whose append landed after the first drain's swap.
//
// A callback that panics doesn't stop the drain: every remaining callback
// still runs, and the first panic encountered (across both drain passes)
// propagates out of RequestRun once draining is complete.
func (r *Eager) RequestRun() bool {
	if !r.runRequested.CompareAndSwap(false, true) {
		return false
	}
	p := r.drain()
	r.mu.Lock()
	if p2 := r.drain(); p == nil {
		p = p2
	}
	r.mu.Unlock()
	if p != nil {
		panic(p)
	}
	return true
}

// IsRunRequested reports whether RequestRun has been called.
func (r *Eager) IsRunRequested() bool { return r.runRequested.Load() }

func (r *Eager) drain() (panicVal any) {
	head := r.head.Swap(nil)
	if head == nil {
		return nil
	}
	// the list is in reverse insertion order (each push prepended); reverse
	// it in place before running, so continuations fire in attach order.
	var prev *node
	for head != nil {
		next := head.next
		head.next = prev
		prev = head
		head = next
	}
	for n := prev; n != nil; n = n.next {
		if p := runRecovered(n.fn); p != nil && panicVal == nil {
			panicVal = p
		}
	}
	return panicVal
}

// runRecovered runs fn, converting a panic into a returned value instead of
// letting it unwind past the caller, so a drain loop can keep going after a
// callback misbehaves.
func runRecovered(fn func()) (panicVal any) {
	defer func() {
		if r := recover(); r != nil {
			panicVal = r
		}
	}()
	fn()
	return nil
}
