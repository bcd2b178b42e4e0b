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

package opstate

import (
	"container/list"
	"sync"
	"time"

	"github.com/gopromise/opstate/internal/status"
)

// launcher is implemented by DeferredState to override the base's default
// (no-op) launch and parent-waiting behavior. Base keeps its owner as a
// launcher-typed field rather than embedding a virtual-call table, since
// Go has no inheritance: Base is composed INTO State/DeferredState, so it
// needs a way to call back out to the concrete type's overrides.
type launcher interface {
	postDeferred()
	waitForParent()
}

// WaiterHandle identifies an external condition variable registered with
// NotifyWhenReady, for later removal via UnnotifyWhenReady. It stays valid
// until explicitly deregistered, per the external-waiter list's stability
// requirement.
type WaiterHandle struct {
	elem *list.Element
}

// Base is the synchronization fabric shared by every operation state: the
// status word, the waiters mutex and internal condition variable, and the
// list of external waiters registered via NotifyWhenReady. Every State and
// DeferredState embeds one.
type Base struct {
	st status.State

	mu       sync.Mutex
	cond     *sync.Cond
	external list.List // of *sync.Cond

	owner launcher // set by NewDeferred to the DeferredState; nil for New
}

func (b *Base) init(opts Options, eager bool, owner launcher) {
	b.st = status.NewFromOptions(opts.bits(), eager)
	b.cond = sync.NewCond(&b.mu)
	b.owner = owner
}

// Status returns the current lifecycle value.
func (b *Base) Status() status.State {
	return status.Lifecycle(b.st.Load())
}

// IsReady reports whether the state has reached Ready. Once true, it
// never again reports false (property: monotone readiness).
func (b *Base) IsReady() bool {
	return status.IsReady(b.st.Load())
}

// IsDeferred reports whether the state is still in the Deferred lifecycle
// value, i.e. its task hasn't been launched yet.
func (b *Base) IsDeferred() bool {
	return status.IsDeferred(b.st.Load())
}

// HasOption reports whether opt was set on this state at construction.
func (b *Base) HasOption(opt status.State) bool {
	return status.HasOption(b.st.Load(), opt)
}

// markReady transitions to Ready and broadcasts the internal condvar under
// the waiters mutex, then, after releasing it, broadcasts every registered
// external condvar with that condvar's own lock held.
func (b *Base) markReady() {
	b.mu.Lock()
	wasWaiting, _, _ := b.st.MarkReady()
	var toNotify []*sync.Cond
	if wasWaiting || b.external.Len() > 0 {
		for e := b.external.Front(); e != nil; e = e.Next() {
			toNotify = append(toNotify, e.Value.(*sync.Cond))
		}
	}
	b.cond.Broadcast()
	b.mu.Unlock()

	for _, cv := range toNotify {
		cv.L.Lock()
		cv.Broadcast()
		cv.L.Unlock()
	}
}

// launchIfDeferred posts the deferred task exactly once, the first time
// any observer transitions the state out of Deferred. It's a no-op for
// non-deferred states.
func (b *Base) launchIfDeferred() {
	ok, _ := b.st.MarkLaunched()
	if ok && b.owner != nil {
		b.owner.waitForParent()
		b.owner.postDeferred()
	}
}

// Wait blocks until the state is Ready. On a Deferred state it launches
// the task first.
func (b *Base) Wait() {
	b.wait(false, time.Time{})
}

// WaitFor blocks until the state is Ready or d elapses, whichever comes
// first. It returns ErrTimeout on expiry, leaving the status at Launched.
func (b *Base) WaitFor(d time.Duration) error {
	return b.waitDeadline(false, time.Now().Add(d))
}

// WaitUntil blocks until the state is Ready or the wall-clock deadline tp
// passes.
func (b *Base) WaitUntil(tp time.Time) error {
	return b.waitDeadline(false, tp)
}

// ConstWait reports the state's readiness without launching a Deferred
// task: it returns ErrDeferredNotLaunched immediately if the state is
// still Deferred, otherwise behaves like Wait. This preserves the
// asymmetry documented in the design notes: only a non-const wait may
// trigger a deferred launch.
func (b *Base) ConstWait() error {
	if status.IsDeferred(b.st.Load()) {
		return ErrDeferredNotLaunched
	}
	b.wait(true, time.Time{})
	return nil
}

// ConstWaitFor is the const-qualified counterpart of WaitFor: it returns
// ErrDeferredNotLaunched immediately on a Deferred state instead of
// launching it, otherwise blocks until Ready or d elapses.
func (b *Base) ConstWaitFor(d time.Duration) error {
	return b.waitDeadline(true, time.Now().Add(d))
}

// ConstWaitUntil is the const-qualified counterpart of WaitUntil: it
// returns ErrDeferredNotLaunched immediately on a Deferred state instead
// of launching it, otherwise blocks until Ready or the wall-clock
// deadline tp passes.
func (b *Base) ConstWaitUntil(tp time.Time) error {
	return b.waitDeadline(true, tp)
}

func (b *Base) wait(constOnly bool, _ time.Time) {
	if !constOnly {
		b.launchIfDeferred()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for !status.IsReady(b.st.Load()) {
		b.st.MarkWaiting()
		b.cond.Wait()
	}
}

func (b *Base) waitDeadline(constOnly bool, deadline time.Time) error {
	if constOnly {
		if status.IsDeferred(b.st.Load()) {
			return ErrDeferredNotLaunched
		}
	} else {
		b.launchIfDeferred()
	}

	if status.IsReady(b.st.Load()) {
		return nil
	}

	done := make(chan struct{})
	timer := time.AfterFunc(time.Until(deadline), func() { close(done) })
	defer timer.Stop()

	// a helper goroutine turns the condvar's blocking Wait into something
	// selectable against the deadline channel above.
	ready := make(chan struct{})
	go func() {
		b.mu.Lock()
		for !status.IsReady(b.st.Load()) {
			select {
			case <-done:
				b.mu.Unlock()
				return
			default:
			}
			b.st.MarkWaiting()
			b.cond.Wait()
		}
		b.mu.Unlock()
		close(ready)
	}()

	select {
	case <-ready:
		return nil
	case <-done:
		b.mu.Lock()
		if !status.IsReady(b.st.Load()) {
			b.st.MarkTimeoutRearm()
			b.mu.Unlock()
			// wake the helper goroutine's Wait so it can observe the
			// (still not ready) predicate and exit instead of leaking.
			b.cond.Broadcast()
			return ErrTimeout
		}
		b.mu.Unlock()
		return nil
	}
}

// NotifyWhenReady registers cv to be broadcast on (with cv.L held) once
// the state becomes Ready. If the state is Deferred, this launches it. If
// the state is already Ready, cv is not registered but is broadcast to
// immediately so the caller doesn't need a special case.
func (b *Base) NotifyWhenReady(cv *sync.Cond) WaiterHandle {
	b.launchIfDeferred()

	b.mu.Lock()
	if status.IsReady(b.st.Load()) {
		b.mu.Unlock()
		cv.L.Lock()
		cv.Broadcast()
		cv.L.Unlock()
		return WaiterHandle{}
	}
	b.st.MarkWaiting()
	elem := b.external.PushBack(cv)
	b.mu.Unlock()
	return WaiterHandle{elem: elem}
}

// UnnotifyWhenReady removes a handle previously returned by
// NotifyWhenReady. Calling it with a zero handle is a no-op.
func (b *Base) UnnotifyWhenReady(h WaiterHandle) {
	if h.elem == nil {
		return
	}
	b.mu.Lock()
	b.external.Remove(h.elem)
	b.mu.Unlock()
}

// signalPromiseDestroyed passes ErrBrokenPromise to setException if the
// state wasn't already Ready. State.SignalPromiseDestroyed wraps it with
// its own SetException.
func (b *Base) signalPromiseDestroyed(setException func(error)) {
	if status.IsReady(b.st.Load()) {
		return
	}
	setException(ErrBrokenPromise)
}
