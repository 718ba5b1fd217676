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

// Package abi holds the two convention strategies. A strategy encodes
// virtual crossings into their table shape and owns the inline-assembly
// clobber policy, callers never branch on which one is active.
package abi

import (
	"fmt"

	"github.com/vtforge/vtforge/pkg/adjust"
	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/layout"
	"github.com/vtforge/vtforge/pkg/target"
)

// Strategy is the full convention surface consumed by the synthesizer.
type Strategy interface {
	adjust.VirtualEncoder

	Convention() target.Convention

	// Clobbers and ValidClobber pass the target's inline-assembly
	// legality policy through
	Clobbers() []string
	ValidClobber(name string) bool

	// DisambiguatesEqualThunks reports whether the convention tells
	// thunks with numerically identical adjustments apart by their
	// overridden method
	DisambiguatesEqualThunks() bool
}

// New selects the strategy for the target.
func New(spec *target.Spec, graph *hierarchy.Graph, layouts *layout.Table) (Strategy, error) {
	switch spec.Convention {
	case target.ConventionOffsetTable:
		return &offsetTableStrategy{spec: spec, graph: graph, layouts: layouts}, nil
	case target.ConventionVBTable:
		return &vbtableStrategy{spec: spec, graph: graph, layouts: layouts}, nil
	}
	return nil, fmt.Errorf("unknown convention: %s", spec.Convention)
}

// crossedBase returns the virtual base of the walk's single virtual step.
func crossedBase(path hierarchy.Path) (hierarchy.ClassID, error) {
	last := path.LastVirtual()
	if last < 0 {
		return hierarchy.InvalidClass, fmt.Errorf("path %s crosses no virtual base", path)
	}
	return path.Steps[last].To, nil
}
