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

// Package layout stands in for the external layout engine. It computes
// complete-object records from the class graph on demand, keeps them in an
// LRU cache, and accepts seeded records when the real engine has already
// placed a class. The model is hierarchy-only: sub-object offsets, table
// pointers and vtable slot counts are laid out, data members are not.
package layout

import (
	"github.com/vtforge/vtforge/pkg/hierarchy"
)

// VBase records one virtual base inside a complete object.
type VBase struct {
	Class hierarchy.ClassID
	// Offset is the complete-object byte offset of the base sub-object
	Offset int64
	// Index is the vbtable entry for this base, entry 0 is reserved for
	// the displacement back to the vbptr owner
	Index int
}

// Record is the complete-object layout of a single class.
type Record struct {
	Class hierarchy.ClassID

	// Size covers the complete object, NVSize stops before the virtual
	// bases. Both in bytes, Align as well.
	Size   int64
	NVSize int64
	Align  int64

	// BaseOffsets places each direct non-virtual base
	BaseOffsets map[hierarchy.ClassID]int64

	// VBPtrOffset is -1 when the class carries no virtual-base table pointer
	VBPtrOffset int64

	// VBases lists every virtual base of the complete object in
	// inheritance-graph discovery order
	VBases []VBase

	// Slots holds the vtable method slots, introducing-class first.
	// Entries counts all vtable entries including the prefix slots in
	// front of the address point, AddressPoint is the byte offset of the
	// address point from the start of the table. All three are zero for
	// classes without a vtable.
	Slots        []hierarchy.MethodID
	Entries      int
	AddressPoint int64
}

// BaseOffset reports the placement of a direct non-virtual base.
func (r *Record) BaseOffset(base hierarchy.ClassID) (int64, bool) {
	offset, ok := r.BaseOffsets[base]
	return offset, ok
}

// FindVBase reports the virtual-base entry for the given class.
func (r *Record) FindVBase(base hierarchy.ClassID) (VBase, bool) {
	for _, vb := range r.VBases {
		if vb.Class == base {
			return vb, true
		}
	}
	return VBase{}, false
}

// HasVTable reports whether the class owns or extends a vtable.
func (r *Record) HasVTable() bool {
	return r.Entries > 0
}
