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

//go:build opstate_debug

package opstate

import "fmt"

// assertf panics with the formatted message if cond is false. Only wired
// up when the module is built with -tags opstate_debug; production builds
// use the no-op variant in debug.go.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic("opstate: internal: " + fmt.Sprintf(format, args...))
	}
}
