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

// Package continuation holds the two concurrent-list shapes an operation
// state's continuation registry can use, selected at construction from the
// state's Options:
//
//   - Eager, for continuable states multiple goroutines may attach
//     continuations to concurrently: an atomically-linked list plus a
//     latched run-requested flag, with a short mutex used only to close the
//     race between a push and a request to run.
//   - Deferred, for always-deferred states, which are single-producer/
//     single-consumer by construction and so need no synchronization beyond
//     the run-requested flag itself.
//
// Both shapes guarantee the same contract: a Push that returns true means
// the callback is queued and will run exactly once when RequestRun is
// called; a Push that returns false means RequestRun already happened, and
// the callback has instead been handed to the caller-supplied Dispatcher so
// it is never silently dropped.
package continuation
