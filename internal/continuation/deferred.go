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

// Deferred is a continuation registry for always-deferred operation
// states. Such states are single-producer/single-consumer by
// construction — exactly one goroutine builds the chain of continuations
// before the state is ever launched, and exactly one goroutine (the
// launcher) later runs it — so the flag and backing slice are plain,
// unsynchronized fields rather than atomics.
type Deferred struct {
	items        []func()
	runRequested bool
}

// Push appends fn, or, if RequestRun already fired, hands it to disp.
func (r *Deferred) Push(disp Dispatcher, fn func()) bool {
	if r.runRequested {
		disp.Submit(fn)
		return false
	}
	r.items = append(r.items, fn)
	return true
}

// RequestRun runs every queued callback in attach order, exactly once. A
// callback that panics doesn't stop the run: every remaining callback still
// runs, and the first panic encountered propagates out of RequestRun once
// the whole queue has drained.
func (r *Deferred) RequestRun() bool {
	if r.runRequested {
		return false
	}
	r.runRequested = true
	items := r.items
	r.items = nil
	var panicVal any
	for _, fn := range items {
		if p := runRecovered(fn); p != nil && panicVal == nil {
			panicVal = p
		}
	}
	if panicVal != nil {
		panic(panicVal)
	}
	return true
}

// IsRunRequested reports whether RequestRun has been called.
func (r *Deferred) IsRunRequested() bool { return r.runRequested }
