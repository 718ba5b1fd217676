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
	"fmt"

	"github.com/vtforge/vtforge/pkg/adjust"
	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/layout"
	"github.com/vtforge/vtforge/pkg/target"
)

// vtordispDelta is the fixed construction-time correction, the 4-byte
// displacement sits just above the virtual base start.
const vtordispDelta = -4

// vbtableStrategy reads virtual displacements from the per-class
// virtual-base table reached through the vbptr.
type vbtableStrategy struct {
	spec    *target.Spec
	graph   *hierarchy.Graph
	layouts *layout.Table
}

func (s *vbtableStrategy) Convention() target.Convention {
	return target.ConventionVBTable
}

func (s *vbtableStrategy) Clobbers() []string {
	return s.spec.Clobbers
}

func (s *vbtableStrategy) ValidClobber(name string) bool {
	return s.spec.ValidClobber(name)
}

func (s *vbtableStrategy) DisambiguatesEqualThunks() bool {
	return true
}

func (s *vbtableStrategy) EncodeVirtualThis(path hierarchy.Path) (adjust.VirtualThis, error) {
	vbase, rec, err := s.tableEntry(path)
	if err != nil {
		return adjust.VirtualThis{}, err
	}
	index, err := s.layouts.VBTableIndex(path.Derived(), vbase)
	if err != nil {
		return adjust.VirtualThis{}, err
	}
	// receivers entering a class with its own overrides need the
	// construction-time correction
	vtordisp := int32(0)
	if class := s.graph.Class(path.Derived()); class != nil && len(class.Methods) > 0 {
		vtordisp = vtordispDelta
	}
	return adjust.NewVBTableThis(vtordisp, int32(rec.VBPtrOffset), int32(index*layout.VBTableEntrySize)), nil
}

func (s *vbtableStrategy) EncodeVirtualReturn(path hierarchy.Path) (adjust.VirtualReturn, error) {
	vbase, rec, err := s.tableEntry(path)
	if err != nil {
		return adjust.VirtualReturn{}, err
	}
	index, err := s.layouts.VBTableIndex(path.Derived(), vbase)
	if err != nil {
		return adjust.VirtualReturn{}, err
	}
	return adjust.NewVBTableReturn(uint32(rec.VBPtrOffset), uint32(index)), nil
}

func (s *vbtableStrategy) tableEntry(path hierarchy.Path) (hierarchy.ClassID, *layout.Record, error) {
	vbase, err := crossedBase(path)
	if err != nil {
		return hierarchy.InvalidClass, nil, err
	}
	rec, err := s.layouts.Record(path.Derived())
	if err != nil {
		return hierarchy.InvalidClass, nil, err
	}
	if rec.VBPtrOffset < 0 {
		return hierarchy.InvalidClass, nil, fmt.Errorf("class %s has no vbptr", s.graph.ClassName(path.Derived()))
	}
	return vbase, rec, nil
}
