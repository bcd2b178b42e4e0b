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

package stopsource

import (
	"sync"
	"testing"
)

func TestZeroValueTokenNeverStopped(t *testing.T) {
	var tok Token
	if tok.StopRequested() {
		t.Fatalf("zero-value token must never report a stop request")
	}
}

func TestRequestStopIsObservedByAllTokens(t *testing.T) {
	src := New()
	toks := make([]Token, 4)
	for i := range toks {
		toks[i] = src.Token()
	}
	for _, tok := range toks {
		if tok.StopRequested() {
			t.Fatalf("token must not report stopped before RequestStop")
		}
	}

	src.RequestStop()

	if !src.StopRequested() {
		t.Fatalf("source must report stopped after RequestStop")
	}
	for _, tok := range toks {
		if !tok.StopRequested() {
			t.Fatalf("token cloned before RequestStop must observe it afterward")
		}
	}

	// a token cloned after the fact must also see it: the flag is one-way.
	if !src.Token().StopRequested() {
		t.Fatalf("token cloned after RequestStop must already observe it")
	}
}

func TestRequestStopIsIdempotentUnderConcurrency(t *testing.T) {
	src := New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src.RequestStop()
		}()
	}
	wg.Wait()
	if !src.StopRequested() {
		t.Fatalf("expected stopped after concurrent RequestStop calls")
	}
}

func TestCloneObservesSameFlag(t *testing.T) {
	src := New()
	tok := src.Token()
	clone := tok.Clone()
	src.RequestStop()
	if !clone.StopRequested() {
		t.Fatalf("clone must observe the same shared flag as its source token")
	}
}
