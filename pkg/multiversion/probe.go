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

package multiversion

import (
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/vtforge/vtforge/pkg/target"
)

// HostFeatures probes the executing processor. A micro-architecture level
// counts as satisfied when its key extension is available.
func HostFeatures() target.FeatureSet {
	set := target.NewFeatureSet()
	if runtime.GOARCH == "amd64" {
		// the 64-bit baseline
		set.Add("cmov")
		set.Add("mmx")
		set.Add("sse")
		set.Add("sse2")
	}
	for name, available := range map[string]bool{
		"popcnt":  cpu.X86.HasPOPCNT,
		"sse3":    cpu.X86.HasSSE3,
		"ssse3":   cpu.X86.HasSSSE3,
		"sse4.1":  cpu.X86.HasSSE41,
		"sse4.2":  cpu.X86.HasSSE42,
		"avx":     cpu.X86.HasAVX,
		"avx2":    cpu.X86.HasAVX2,
		"avx512f": cpu.X86.HasAVX512F,
	} {
		if available {
			set.Add(name)
		}
	}
	for level, key := range target.Levels() {
		if set.Satisfies(key) {
			set.Add(level)
		}
	}
	return set
}
