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

// Package stopsource implements the cooperative-cancellation primitive
// used by stoppable operation states: a single shared, one-way flag that
// any number of cloned tokens can observe.
package stopsource

import "sync/atomic"

// shared is the flag a Source and all Tokens cloned from it point to. It
// outlives the Source itself, since a Token may be handed to a task that
// runs long after the state that created the Source is gone.
type shared struct {
	stopped atomic.Bool
}

// Source is the producer side of a cancellation signal: exactly one
// operation state owns a Source, and calling RequestStop on it is the only
// way the shared flag ever becomes true.
type Source struct {
	s *shared
}

// New returns a fresh Source with its flag unset.
func New() Source {
	return Source{s: &shared{}}
}

// RequestStop latches the shared flag. It's idempotent: calling it more
// than once, from any number of goroutines, has the same effect as calling
// it once.
func (src Source) RequestStop() {
	if src.s == nil {
		return
	}
	src.s.stopped.Store(true)
}

// StopRequested reports whether RequestStop has been called.
func (src Source) StopRequested() bool {
	return src.s != nil && src.s.stopped.Load()
}

// Token returns a Token observing this Source's flag.
func (src Source) Token() Token {
	return Token{s: src.s}
}

// Token is the consumer side of a cancellation signal, handed to a running
// task so it can poll for a stop request. A zero Token never reports a
// stop request; it's the token a non-stoppable operation state's Apply
// receives in place of a real one.
type Token struct {
	s *shared
}

// StopRequested reports whether the Source this token was cloned from has
// had RequestStop called on it.
func (tok Token) StopRequested() bool {
	return tok.s != nil && tok.s.stopped.Load()
}

// Clone returns a Token observing the same shared flag as tok. Tokens are
// values and are already safe to copy directly; Clone exists so call
// sites that hold an interface or a generic Token-like type can copy one
// without knowing it's a plain struct.
func (tok Token) Clone() Token {
	return tok
}
