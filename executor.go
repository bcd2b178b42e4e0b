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

// Executor accepts zero-arg callables for asynchronous execution. A State
// with HasExecutor set and an Executor attached via WithExecutor invokes
// it exactly once per continuation dispatch, and, for a DeferredState
// that also has AlwaysDeferred set, once for its deferred launch. Nothing in this package assumes an Executor runs
// its callback synchronously or on any particular goroutine.
type Executor interface {
	Submit(fn func())
}

// FuncExecutor is an Executor that launches each submitted callback on its
// own goroutine. It's a reference
// implementation, useful in tests and for callers that don't need pooling
// or backpressure; production callers typically supply their own
// worker-pool-backed Executor instead.
type FuncExecutor struct {
	// Reserve, if non-nil, is called before each Submit's goroutine
	// starts and Release after it returns, so a caller can bound
	// concurrency with a counting semaphore.
	Reserve func()
	Release func()
}

// Submit runs fn on a new goroutine, bracketed by Reserve/Release if set.
func (e FuncExecutor) Submit(fn func()) {
	if e.Reserve != nil {
		e.Reserve()
	}
	go func() {
		if e.Release != nil {
			defer e.Release()
		}
		fn()
	}()
}
