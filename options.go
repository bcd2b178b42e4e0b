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

import "github.com/gopromise/opstate/internal/status"

// Options is the compile-time descriptor of a State's shape, applied once
// at construction. Fields left at their zero value disable the
// corresponding machinery entirely: a State built with Continuable=false
// never allocates a continuation registry, and one built with
// Stoppable=false hands its task a zero-value stop token that never
// reports a stop request.
type Options struct {
	// HasExecutor lets WithExecutor attach an Executor. Continuations
	// attached via Then then run through it, and so does the deferred
	// launch of a DeferredState that also has AlwaysDeferred set; without
	// an attached Executor both run synchronously.
	HasExecutor bool

	// Continuable marks a state that accepts continuations via Then. Such
	// a state carries an eager continuation registry, or the plain one
	// when AlwaysDeferred is also set.
	Continuable bool

	// Stoppable marks a state whose Apply hands the running task a real
	// stop token, cloned from a stop source owned by the state.
	Stoppable bool

	// Shared marks a state that may be observed by more than one
	// consumer concurrently. It is recorded in the status word's option
	// bits only; no code path in this package behaves differently when it
	// is set, and MoveInto's still-Deferred check applies either way.
	Shared bool

	// AlwaysDeferred selects a plain, unsynchronized continuation registry
	// instead of the lock-free one Continuable normally implies, and makes
	// a DeferredState with an attached Executor submit its task to it. It
	// does not choose the starting lifecycle: New always starts Launched
	// and NewDeferred always starts Deferred.
	AlwaysDeferred bool
}

// bits packs o into the status word's option section.
func (o Options) bits() status.State {
	var s status.State
	if o.HasExecutor {
		s |= status.HasExecutor
	}
	if o.Continuable {
		s |= status.Continuable
	}
	if o.Stoppable {
		s |= status.Stoppable
	}
	if o.Shared {
		s |= status.Shared
	}
	if o.AlwaysDeferred {
		s |= status.AlwaysDeferred
	}
	return s
}
