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

// Package opstate implements the operation-state engine that backs a
// future/promise pair: the shared object a producer completes and any
// number of consumers wait on, attach continuations to, or compose
// together with wait-for-all/wait-for-any.
//
// An operation state moves through four lifecycle values, in this order,
// with the two exceptions noted:
//
//	Deferred -> Launched -> Waiting -> Ready
//
// Eager states start in Launched; deferred states start in Deferred and
// only move to Launched the first time some goroutine observes them (by
// calling Wait, WaitFor, WaitUntil, or NotifyWhenReady). Waiting moves
// back to Launched if a timed wait expires, so a later waiter can re-arm
// it. Ready is terminal.
//
// # Options
//
// A state's shape is fixed at construction by an Options value: whether it
// has an Executor, whether it accepts continuations (Continuable), whether
// it carries a cancellation token (Stoppable), whether it may be shared
// across a fan-out (Shared), and whether it is permanently deferred
// (AlwaysDeferred, which selects a simpler, unsynchronized continuation
// registry because such states are single-producer/single-consumer by
// construction). Disabled options cost nothing: a State built without
// Continuable never allocates a continuation registry.
//
// # Producer and consumer sides
//
// SetValue and SetException are the producer's two ways to complete a
// state; each may be called at most once. Get, Wait, WaitFor, and
// WaitUntil are the consumer's ways to observe it; Apply runs a function
// and routes its result or panic to SetValue/SetException automatically.
// NotifyWhenReady registers an external condition variable, used to
// implement WaitForAny without polling.
//
// # Errors
//
// Calling SetValue or SetException on an already-ready state returns
// ErrAlreadySatisfied. Calling GetExceptionPtr before the state is Ready
// returns ErrUninitialized. A producer that drops its state without
// completing it causes consumers to observe ErrBrokenPromise. ErrNoState
// is defined for a nil future handle, but nothing in this package returns
// it. A timed wait that expires returns ErrTimeout as an ordinary
// error value, not a panic — timeouts are an expected outcome, not a
// contract violation.
package opstate
