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
	"sync"
	"testing"
	"time"

	"github.com/gopromise/opstate/internal/status"
	"github.com/gopromise/opstate/internal/stopsource"
)

// S1: producer/consumer round trip across goroutines.
func TestScenarioEagerRoundTrip(t *testing.T) {
	s := New[int](Options{})
	go func() {
		if err := s.SetValue(42); err != nil {
			t.Errorf("SetValue: %v", err)
		}
	}()
	v, err := s.Get()
	if err != nil || v != 42 {
		t.Fatalf("got v=%d err=%v, want v=42 err=nil", v, err)
	}
}

func TestSetValueTwiceIsAlreadySatisfied(t *testing.T) {
	s := New[int](Options{})
	if err := s.SetValue(1); err != nil {
		t.Fatalf("first SetValue: %v", err)
	}
	if err := s.SetValue(2); !errors.Is(err, ErrAlreadySatisfied) {
		t.Fatalf("got %v, want ErrAlreadySatisfied", err)
	}
	v, _ := s.Get()
	if v != 1 {
		t.Fatalf("second SetValue must not overwrite the first, got %d", v)
	}
}

func TestSetExceptionThenGetReraises(t *testing.T) {
	want := errors.New("failed")
	s := New[int](Options{})
	if err := s.SetException(want); err != nil {
		t.Fatalf("SetException: %v", err)
	}
	_, err := s.Get()
	if err != want {
		t.Fatalf("got %v, want %v", err, want)
	}
}

// S3: a timed wait on a state nobody completes returns ErrTimeout and
// leaves the status at Launched; a later SetValue then Wait succeeds.
func TestScenarioTimeoutThenLateValue(t *testing.T) {
	s := New[int](Options{})
	start := time.Now()
	err := s.WaitFor(30 * time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Fatalf("returned before the requested duration elapsed")
	}
	if got := s.Status(); got != status.Launched {
		t.Fatalf("got status %v, want Launched", got)
	}

	if err := s.SetValue(1); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	s.Wait()
	v, err := s.Get()
	if err != nil || v != 1 {
		t.Fatalf("got v=%d err=%v, want v=1 err=nil", v, err)
	}
}

// S6: a producer that drops its handle without setting anything causes a
// consumer to observe ErrBrokenPromise.
func TestScenarioBrokenPromise(t *testing.T) {
	s := New[int](Options{})
	s.SignalPromiseDestroyed()
	_, err := s.Get()
	if !errors.Is(err, ErrBrokenPromise) {
		t.Fatalf("got %v, want ErrBrokenPromise", err)
	}
}

func TestSignalPromiseDestroyedIsNoOpOnceReady(t *testing.T) {
	s := New[int](Options{})
	s.SetValue(9)
	s.SignalPromiseDestroyed()
	v, err := s.Get()
	if err != nil || v != 9 {
		t.Fatalf("got v=%d err=%v, want v=9 err=nil (destroyed-after-ready must be a no-op)", v, err)
	}
}

func TestGetExceptionPtrRequiresReady(t *testing.T) {
	s := New[int](Options{})
	if err := s.GetExceptionPtr(); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("got %v, want ErrUninitialized", err)
	}
	s.SetValue(1)
	if err := s.GetExceptionPtr(); err != nil {
		t.Fatalf("got %v, want nil for a value completion", err)
	}
}

// S2: three states completed one after another, continuations record index.
func TestScenarioContinuationsRecordIndex(t *testing.T) {
	values := []int{6, 7, 8}
	states := make([]*State[int], len(values))
	var mu sync.Mutex
	seen := map[int]bool{}
	var wg sync.WaitGroup

	for i := range values {
		s := New[int](Options{Continuable: true})
		states[i] = s
		i := i
		wg.Add(1)
		s.Then(func() {
			defer wg.Done()
			mu.Lock()
			seen[i] = true
			mu.Unlock()
		})
	}
	for i, s := range states {
		if err := s.SetValue(values[i]); err != nil {
			t.Fatalf("SetValue %d: %v", i, err)
		}
	}
	wg.Wait()

	for i := range values {
		if !seen[i] {
			t.Fatalf("continuation for index %d never ran", i)
		}
	}
}

func TestThenAfterReadyDispatchesImmediately(t *testing.T) {
	s := New[int](Options{Continuable: true})
	s.SetValue(1)
	var ran bool
	if s.Then(func() { ran = true }) {
		t.Fatalf("Then after completion must report false")
	}
	if !ran {
		t.Fatalf("Then after completion must still run the callback")
	}
}

func TestApplyRoutesReturnToSetValue(t *testing.T) {
	s := New[string](Options{})
	s.Apply(func(stopsource.Token) (string, error) {
		return "hello", nil
	})
	v, err := s.Get()
	if err != nil || v != "hello" {
		t.Fatalf("got v=%q err=%v, want v=hello err=nil", v, err)
	}
}

func TestApplyRoutesErrorToSetException(t *testing.T) {
	want := errors.New("bad")
	s := New[string](Options{})
	s.Apply(func(stopsource.Token) (string, error) {
		return "", want
	})
	_, err := s.Get()
	if err != want {
		t.Fatalf("got %v, want %v", err, want)
	}
}

func TestApplyCapturesPanic(t *testing.T) {
	s := New[int](Options{})
	s.Apply(func(stopsource.Token) (int, error) {
		panic("kaboom")
	})
	_, err := s.Get()
	var cp *CapturedPanic
	if !errors.As(err, &cp) || cp.Value() != "kaboom" {
		t.Fatalf("got %v, want a CapturedPanic wrapping 'kaboom'", err)
	}
}

func TestApplySeesStopToken(t *testing.T) {
	s := New[bool](Options{Stoppable: true})
	s.Apply(func(tok stopsource.Token) (bool, error) {
		return tok.StopRequested(), nil
	})
	before, _ := s.Get()
	if before {
		t.Fatalf("token must not report stopped before RequestStop")
	}

	s2 := New[bool](Options{Stoppable: true})
	s2.GetStopSource().RequestStop()
	s2.Apply(func(tok stopsource.Token) (bool, error) {
		return tok.StopRequested(), nil
	})
	after, _ := s2.Get()
	if !after {
		t.Fatalf("token must observe a stop requested before Apply ran")
	}
}

func TestMonotoneReadiness(t *testing.T) {
	s := New[int](Options{})
	if s.IsReady() {
		t.Fatalf("fresh state must not be ready")
	}
	s.SetValue(1)
	for i := 0; i < 3; i++ {
		if !s.IsReady() {
			t.Fatalf("once ready, IsReady must keep reporting true")
		}
	}
}

func TestAtMostOnceCompletionUnderRace(t *testing.T) {
	s := New[int](Options{})
	var wg sync.WaitGroup
	var oks int32
	var mu sync.Mutex
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.SetValue(i); err == nil {
				mu.Lock()
				oks++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if oks != 1 {
		t.Fatalf("expected exactly one SetValue to succeed, got %d", oks)
	}
}
