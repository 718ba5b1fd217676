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

package abi

import (
	"github.com/vtforge/vtforge/pkg/adjust"
	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/layout"
	"github.com/vtforge/vtforge/pkg/target"
)

// offsetTableStrategy reads virtual displacements from slots in front of
// the vtable address point. Virtual call and virtual base offsets share
// the slot block in this model, positions come from the complete-object
// table of the walk's starting class.
type offsetTableStrategy struct {
	spec    *target.Spec
	graph   *hierarchy.Graph
	layouts *layout.Table
}

func (s *offsetTableStrategy) Convention() target.Convention {
	return target.ConventionOffsetTable
}

func (s *offsetTableStrategy) Clobbers() []string {
	return s.spec.Clobbers
}

func (s *offsetTableStrategy) ValidClobber(name string) bool {
	return s.spec.ValidClobber(name)
}

func (s *offsetTableStrategy) DisambiguatesEqualThunks() bool {
	return false
}

func (s *offsetTableStrategy) EncodeVirtualThis(path hierarchy.Path) (adjust.VirtualThis, error) {
	vbase, err := crossedBase(path)
	if err != nil {
		return adjust.VirtualThis{}, err
	}
	slot, err := s.layouts.VBaseSlotOffset(path.Derived(), vbase)
	if err != nil {
		return adjust.VirtualThis{}, err
	}
	return adjust.NewOffsetTableThis(slot, vbase), nil
}

func (s *offsetTableStrategy) EncodeVirtualReturn(path hierarchy.Path) (adjust.VirtualReturn, error) {
	vbase, err := crossedBase(path)
	if err != nil {
		return adjust.VirtualReturn{}, err
	}
	slot, err := s.layouts.VBaseSlotOffset(path.Derived(), vbase)
	if err != nil {
		return adjust.VirtualReturn{}, err
	}
	return adjust.NewOffsetTableReturn(slot), nil
}
