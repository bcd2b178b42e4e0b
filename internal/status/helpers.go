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

// String returns the name of the lifecycle value carried by s, ignoring its
// options bits.
func (s State) String() string {
	switch Lifecycle(s) {
	case Deferred:
		return "deferred"
	case Launched:
		return "launched"
	case Waiting:
		return "waiting"
	case Ready:
		return "ready"
	default:
		return "<unknown lifecycle>"
	}
}

// OptionNames returns the names of the option bits latched into s, for
// diagnostics.
func OptionNames(s State) []string {
	var names []string
	if HasOption(s, HasExecutor) {
		names = append(names, "has-executor")
	}
	if HasOption(s, Continuable) {
		names = append(names, "continuable")
	}
	if HasOption(s, Stoppable) {
		names = append(names, "stoppable")
	}
	if HasOption(s, Shared) {
		names = append(names, "shared")
	}
	if HasOption(s, AlwaysDeferred) {
		names = append(names, "always-deferred")
	}
	return names
}
