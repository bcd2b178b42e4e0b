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
	"errors"
	"fmt"
)

var (
	// ErrAlreadySatisfied is returned by SetValue/SetException when the
	// state was already Ready.
	ErrAlreadySatisfied = errors.New("opstate: promise already satisfied")

	// ErrUninitialized is returned by GetExceptionPtr when the state isn't
	// Ready yet.
	ErrUninitialized = errors.New("opstate: promise uninitialized")

	// ErrBrokenPromise is the exception a state carries when its producer
	// dropped it without setting a value or exception.
	ErrBrokenPromise = errors.New("opstate: broken promise")

	// ErrNoState is the error for an operation on a future whose state
	// handle is nil. No function in this package returns it: State and
	// DeferredState methods do not check for a nil receiver.
	ErrNoState = errors.New("opstate: no state")

	// ErrTimeout is returned by WaitFor/WaitUntil (and their ConstWaitFor/
	// ConstWaitUntil counterparts) when the deadline
	// elapses before the state becomes Ready. It's an ordinary error
	// value, not a panic: a timeout is an expected outcome of a timed
	// wait, not a contract violation.
	ErrTimeout = errors.New("opstate: wait timed out")

	// ErrDeferredNotLaunched is returned by a const-qualified wait on a
	// Deferred state: it declines to launch the task and reports this
	// instead of blocking.
	ErrDeferredNotLaunched = errors.New("opstate: deferred task not yet launched")

	// errMovedAfterLaunch is returned by DeferredState.MoveInto once the
	// source state has left the Deferred lifecycle value.
	errMovedAfterLaunch = errors.New("opstate: cannot move a deferred state after it has launched")
)

// CapturedPanic wraps a panic value recovered from a task run by Apply, so
// it can be stored as the state's exception and re-raised, with its
// original dynamic value, when a consumer calls Get.
type CapturedPanic struct {
	v any
}

func newCapturedPanic(v any) *CapturedPanic {
	return &CapturedPanic{v: v}
}

func (e *CapturedPanic) Error() string {
	return fmt.Sprintf("opstate: task panicked: %v", e.v)
}

// Value returns the original value passed to panic.
func (e *CapturedPanic) Value() any {
	return e.v
}
