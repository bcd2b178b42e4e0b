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

// Package status implements the packed atomic status word shared by every
// operation state.
//
// The word is a single uint32, read and written atomically, split into three
// sections, starting from the right:
//
//   - a lock section, taking 1 bit. It doesn't use any Mutex; a caller wins
//     the right to update the word by atomically swapping in the reserved
//     lockAcquired pattern and observing that the previous value wasn't
//     already lockAcquired. Losers spin, yielding to the scheduler between
//     attempts, rather than busy-waiting on a hot cache line.
//
//   - a lifecycle section, taking 2 bits, holding one of Deferred, Launched,
//     Waiting, or Ready. Transitions follow: Deferred -> Launched (first
//     observation posts the deferred task), Launched -> Waiting (a consumer
//     starts blocking), Waiting -> Ready (producer completes), Launched ->
//     Ready (producer completes before any blocker arrives), and Waiting ->
//     Launched (a timed wait expired, so a later waiter may re-arm).
//
//   - an options section, taking 5 bits, one per compile-time option
//     (has-executor, continuable, stoppable, shared, always-deferred). These
//     bits are set once, at construction, from the Options the caller chose,
//     and never change afterward.
//
// Because every update goes through the same short spin lock, the lifecycle
// and options sections can be read and written together without tearing,
// while still being far cheaper than a full sync.Mutex for the common case
// of an uncontended, single read-modify-write.
package status
