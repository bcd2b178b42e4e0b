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

	"github.com/gopromise/opstate/internal/continuation"
	"github.com/gopromise/opstate/internal/stopsource"
)

// continuationRegistry is implemented by both continuation.Eager and
// continuation.Deferred, letting State pick between them at construction
// without knowing which one it holds.
type continuationRegistry interface {
	Push(disp continuation.Dispatcher, fn func()) bool
	RequestRun() bool
	IsRunRequested() bool
}

// State is a typed operation state: the base status machine and waiter
// machinery, plus an R-typed storage cell and whichever of the optional
// sub-components its Options selected. It's eager — constructed already
// Launched — with SetValue/SetException/Apply available immediately.
// DeferredState builds on top of it for lazy launch.
type State[R any] struct {
	Base

	opts Options
	cell Cell[R]

	exec         Executor
	continuation continuationRegistry
	stop         stopsource.Source

	setMu sync.Mutex // guards SetValue/SetException against concurrent callers
}

// New constructs an eager, Launched State with the given options.
func New[R any](opts Options) *State[R] {
	s := &State[R]{opts: opts}
	s.init(opts, true, nil)
	if opts.Stoppable {
		s.stop = stopSourceFor(opts)
	}
	if opts.Continuable {
		s.continuation = continuationRegistryFor(opts)
	}
	return s
}

func stopSourceFor(opts Options) stopsource.Source {
	if !opts.Stoppable {
		return stopsource.Source{}
	}
	return stopsource.New()
}

func continuationRegistryFor(opts Options) continuationRegistry {
	if !opts.Continuable {
		return nil
	}
	if opts.AlwaysDeferred {
		return &continuation.Deferred{}
	}
	return &continuation.Eager{}
}

// WithExecutor sets the Executor used for deferred launch and continuation
// dispatch. It's a no-op if Options.HasExecutor wasn't set.
func (s *State[R]) WithExecutor(exec Executor) *State[R] {
	if s.opts.HasExecutor {
		s.exec = exec
	}
	return s
}

// dispatcher returns the continuation.Dispatcher used to run a callback:
// the configured Executor if any, otherwise synchronous execution on the
// calling goroutine.
func (s *State[R]) dispatcher() continuation.Dispatcher {
	if s.exec != nil {
		return continuation.DispatcherFunc(s.exec.Submit)
	}
	return continuation.DispatcherFunc(func(fn func()) { fn() })
}

// SetValue completes the state with v. It returns ErrAlreadySatisfied if
// the state was already Ready.
func (s *State[R]) SetValue(v R) error {
	s.setMu.Lock()
	if s.cell.IsSet() {
		s.setMu.Unlock()
		return ErrAlreadySatisfied
	}
	s.cell.SetValue(v)
	s.markReady()
	s.setMu.Unlock()

	s.runContinuations()
	return nil
}

// SetException completes the state with err as its failure. It returns
// ErrAlreadySatisfied if the state was already Ready.
func (s *State[R]) SetException(err error) error {
	s.setMu.Lock()
	if s.cell.IsSet() {
		s.setMu.Unlock()
		return ErrAlreadySatisfied
	}
	s.cell.SetException(err)
	s.markReady()
	s.setMu.Unlock()

	s.runContinuations()
	return nil
}

func (s *State[R]) runContinuations() {
	if s.continuation != nil {
		s.continuation.RequestRun()
	}
}

// GetStopSource returns the state's cancellation source. It's only
// meaningful when Options.Stoppable was set.
func (s *State[R]) GetStopSource() stopsource.Source {
	return s.stop
}

// StopToken returns a token observing this state's stop source. On a
// non-stoppable state it returns a zero token, which never reports a
// stop request.
func (s *State[R]) StopToken() stopsource.Token {
	return s.stop.Token()
}

// Then registers fn to run once the state is Ready, on the state's
// Executor if one is configured, otherwise synchronously wherever
// RequestRun ends up being called. It returns false, and dispatches fn
// immediately instead, if continuations have already been requested to
// run — no callback is ever silently dropped. On a state built without
// Continuable, Then runs fn immediately on the calling goroutine, whether
// or not the state is Ready, and returns false.
func (s *State[R]) Then(fn func()) bool {
	if s.continuation == nil {
		fn()
		return false
	}
	disp := s.dispatcher()
	run := func() { disp.Submit(fn) }
	return s.continuation.Push(continuation.DispatcherFunc(func(f func()) { f() }), run)
}

// Apply runs fn with the state's stop token as its argument, routing a
// normal return to SetValue and a returned error or a panic to
// SetException. For R = struct{}, fn still completes the state on normal
// return even though there's no payload to carry.
func (s *State[R]) Apply(fn func(stopsource.Token) (R, error)) {
	defer func() {
		if r := recover(); r != nil {
			s.SetException(newCapturedPanic(r))
		}
	}()
	v, err := fn(s.StopToken())
	if err != nil {
		s.SetException(err)
		return
	}
	s.SetValue(v)
}

// Get waits for the state to be Ready, then returns its payload, or its
// stored exception if SetException was called instead of SetValue.
func (s *State[R]) Get() (R, error) {
	s.Wait()
	return s.cell.Value()
}

// GetExceptionPtr returns the stored exception, or nil if the state
// completed with a value. It requires the state to be Ready; calling it
// earlier returns ErrUninitialized.
func (s *State[R]) GetExceptionPtr() error {
	if !s.IsReady() {
		return ErrUninitialized
	}
	_, err := s.cell.Value()
	return err
}

// SignalPromiseDestroyed marks the state Ready with ErrBrokenPromise if a
// producer drops it without completing. Callers typically invoke this
// from a finalizer or an explicit Close/Drop method on their promise type.
func (s *State[R]) SignalPromiseDestroyed() {
	s.signalPromiseDestroyed(func(err error) { s.SetException(err) })
}
