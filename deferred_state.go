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
	"sync"

	"github.com/gopromise/opstate/internal/stopsource"
)

// Parent is implemented by any state a deferred task's launch must wait
// on before running — a continuation-task carries a reference to the
// state it was attached to. waitForParent calls Wait on it before posting
// the task, so parent completion always precedes child dispatch.
type Parent interface {
	Wait()
}

// DeferredState extends State with a bound, zero-argument task that isn't
// run until the first time some goroutine observes the state (by Wait,
// WaitFor, WaitUntil, or NotifyWhenReady). It's constructed Deferred, not
// Launched.
type DeferredState[R any] struct {
	State[R]

	launchOnce sync.Once
	task       func(stopsource.Token) (R, error)
	parent     Parent // nil for a plain deferred task
}

// NewDeferred constructs a Deferred state bound to task. If parent is
// non-nil, waitForParent blocks on it before task runs, which is how a
// continuation chained onto another deferred future waits for its
// predecessor.
func NewDeferred[R any](opts Options, task func(stopsource.Token) (R, error), parent Parent) *DeferredState[R] {
	d := &DeferredState[R]{task: task, parent: parent}
	d.opts = opts
	d.init(opts, false, d)
	if opts.Stoppable {
		d.stop = stopSourceFor(opts)
	}
	if opts.Continuable {
		d.continuation = continuationRegistryFor(opts)
	}
	return d
}

// postDeferred implements the launcher interface Base calls back into. If
// Options.AlwaysDeferred is set and an executor is attached, task is
// submitted to it; otherwise it runs synchronously on the calling
// (waiting) goroutine. Base guarantees this
// is called at most once, the first time some goroutine transitions the
// state out of Deferred.
func (d *DeferredState[R]) postDeferred() {
	d.launchOnce.Do(func() {
		task := d.task
		if d.opts.AlwaysDeferred && d.exec != nil {
			d.exec.Submit(func() { d.Apply(task) })
			return
		}
		d.Apply(task)
	})
}

// waitForParent implements the launcher interface. A plain deferred task
// (no parent) is a no-op; a continuation-task waits for its parent's
// completion first, so the chain resolves in order.
func (d *DeferredState[R]) waitForParent() {
	if d.parent != nil {
		d.parent.Wait()
	}
}

// MoveInto transfers this deferred state's task and parent into dst,
// which must be a freshly constructed, still-Deferred shared state. It's
// the Go equivalent of moving an inline deferred state into shared
// storage: valid only while status is still Deferred, since once Launched
// the task has already been (or is being) consumed.
func (d *DeferredState[R]) MoveInto(dst *DeferredState[R]) error {
	if !d.IsDeferred() {
		return errMovedAfterLaunch
	}
	dst.task = d.task
	dst.parent = d.parent
	return nil
}
