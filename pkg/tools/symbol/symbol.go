// Copyright The VTForge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package symbol renders linker symbols for humans.
package symbol

import (
	"github.com/ianlancetaylor/demangle"
)

// DisplayName demangles a symbol for report output. Mangled names may carry
// a leading '.' or '$' from the object format, unmangleable names pass
// through unchanged.
func DisplayName(name string) string {
	if name == "" {
		return ""
	}
	skip := 0
	if name[0] == '.' || name[0] == '$' {
		skip++
	}
	return demangle.Filter(name[skip:])
}
