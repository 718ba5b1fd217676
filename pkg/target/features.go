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

package target

import (
	"fmt"
	"strings"
)

// RequirementDefault marks the fallback candidate of a multiversioned
// function, it holds in any execution environment.
const RequirementDefault = "default"

const archPrefix = "arch="

// multiversionExtensions orders the ISA extensions usable as multiversion
// requirements, weakest first.
var multiversionExtensions = []string{
	"cmov", "mmx", "popcnt", "sse", "sse2", "sse3", "ssse3",
	"sse4.1", "sse4.2", "avx", "avx2", "avx512f",
}

// archKeyFeature maps a named micro-architecture level to the extension
// deciding its dispatch priority.
var archKeyFeature = map[string]string{
	"core2":          "ssse3",
	"nehalem":        "sse4.2",
	"sandybridge":    "avx",
	"ivybridge":      "avx",
	"haswell":        "avx2",
	"broadwell":      "avx2",
	"skylake":        "avx2",
	"skylake-avx512": "avx512f",
	"knl":            "avx512f",
}

// Levels lists the named micro-architecture levels with the extension
// deciding each level's dispatch priority.
func Levels() map[string]string {
	levels := make(map[string]string, len(archKeyFeature))
	for level, key := range archKeyFeature {
		levels[level] = key
	}
	return levels
}

// FeatureTable answers priority queries for multiversion requirements.
// Requirements come in three shapes: the "default" fallback, a plain
// extension name, or a named level "arch=<cpu>".
type FeatureTable struct {
	extensionPriority map[string]int
}

func NewFeatureTable() *FeatureTable {
	priorities := make(map[string]int, len(multiversionExtensions))
	for i, name := range multiversionExtensions {
		priorities[name] = i + 1
	}
	return &FeatureTable{extensionPriority: priorities}
}

// Priority returns the dispatch priority of a requirement, higher wins.
// The fallback sits at zero. A named level sorts just above its key
// extension, so two levels sharing a key extension tie and keep their
// declaration order under a stable sort.
func (t *FeatureTable) Priority(requirement string) (int, error) {
	if requirement == RequirementDefault {
		return 0, nil
	}
	if strings.HasPrefix(requirement, archPrefix) {
		level := strings.TrimPrefix(requirement, archPrefix)
		key, exist := archKeyFeature[level]
		if !exist {
			return 0, fmt.Errorf("unknown micro-architecture level: %s", level)
		}
		return t.extensionPriority[key]<<1 + 1, nil
	}
	priority, exist := t.extensionPriority[requirement]
	if !exist {
		return 0, fmt.Errorf("unknown feature requirement: %s", requirement)
	}
	return priority << 1, nil
}

// Known reports whether the requirement names the fallback, a known
// extension or a known micro-architecture level
func (t *FeatureTable) Known(requirement string) bool {
	_, err := t.Priority(requirement)
	return err == nil
}

// FeatureSet is the capability surface of one execution environment: the
// ISA extensions it provides plus the micro-architecture level names it
// satisfies.
type FeatureSet map[string]bool

func NewFeatureSet(names ...string) FeatureSet {
	set := make(FeatureSet, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

func (s FeatureSet) Add(name string) {
	s[name] = true
}

// Satisfies reports whether one requirement holds in this environment.
// The fallback always holds, "arch=<cpu>" matches the level name itself,
// anything else matches the extension name.
func (s FeatureSet) Satisfies(requirement string) bool {
	if requirement == RequirementDefault {
		return true
	}
	if strings.HasPrefix(requirement, archPrefix) {
		return s[strings.TrimPrefix(requirement, archPrefix)]
	}
	return s[requirement]
}
