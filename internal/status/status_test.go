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

package status

import (
	"sync"
	"testing"
)

func TestNewFromOptions(t *testing.T) {
	s := NewFromOptions(Continuable|Stoppable, true)
	if !IsLaunched(s) {
		t.Fatalf("want launched, got %s", s)
	}
	if !HasOption(s, Continuable) || !HasOption(s, Stoppable) {
		t.Fatalf("want continuable+stoppable, got %v", OptionNames(s))
	}
	if HasOption(s, Shared) {
		t.Fatalf("shared should not be set")
	}

	d := NewFromOptions(AlwaysDeferred, false)
	if !IsDeferred(d) {
		t.Fatalf("want deferred, got %s", d)
	}
}

func TestTransitions(t *testing.T) {
	s := NewFromOptions(0, false)
	if !IsDeferred(s.Load()) {
		t.Fatalf("want deferred")
	}

	if ok, ns := s.MarkLaunched(); !ok || !IsLaunched(ns) {
		t.Fatalf("want launched transition, got ok=%v ns=%s", ok, ns)
	}
	if ok, _ := s.MarkLaunched(); ok {
		t.Fatalf("second MarkLaunched must be a no-op")
	}

	if ok, ns := s.MarkWaiting(); !ok || !IsWaiting(ns) {
		t.Fatalf("want waiting transition, got ok=%v ns=%s", ok, ns)
	}

	if ok, ns := s.MarkTimeoutRearm(); !ok || !IsLaunched(ns) {
		t.Fatalf("want re-arm to launched, got ok=%v ns=%s", ok, ns)
	}

	wasWaiting, prior, ns := s.MarkReady()
	if wasWaiting {
		t.Fatalf("prior state was launched, not waiting")
	}
	if prior != Launched {
		t.Fatalf("want prior=launched, got %s", prior)
	}
	if !IsReady(ns) {
		t.Fatalf("want ready, got %s", ns)
	}
}

func TestMarkReadyFromWaitingReportsWasWaiting(t *testing.T) {
	s := NewFromOptions(0, true) // Launched
	s.MarkWaiting()
	wasWaiting, prior, ns := s.MarkReady()
	if !wasWaiting || prior != Waiting || !IsReady(ns) {
		t.Fatalf("got wasWaiting=%v prior=%s ns=%s", wasWaiting, prior, ns)
	}
}

func TestOptionsBitsSurviveTransitions(t *testing.T) {
	s := NewFromOptions(Continuable|Shared, true)
	s.MarkWaiting()
	_, _, ns := s.MarkReady()
	if !HasOption(ns, Continuable) || !HasOption(ns, Shared) {
		t.Fatalf("options must survive lifecycle transitions, got %v", OptionNames(ns))
	}
}

func TestConcurrentMarkLaunchedIsExclusive(t *testing.T) {
	s := NewFromOptions(0, false)
	var wg sync.WaitGroup
	wins := make([]bool, 64)
	for i := range wins {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, _ := s.MarkLaunched()
			wins[i] = ok
		}(i)
	}
	wg.Wait()

	count := 0
	for _, w := range wins {
		if w {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one winner, got %d", count)
	}
}
