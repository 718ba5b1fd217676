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

// Package adjust computes the receiver and covariant-return corrections a
// virtual dispatch needs when an overrider sits at a different sub-object
// than the slot it serves. The virtual component of an adjustment is a
// tagged variant over the two convention shapes, never raw storage.
package adjust

import (
	"fmt"

	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/target"
)

// VirtualKind tags the shape of a virtual adjustment component.
type VirtualKind int

const (
	// VirtualNone marks an adjustment with no runtime table lookup
	VirtualNone VirtualKind = iota
	// VirtualOffsetTable reads the displacement from a slot near the
	// vtable address point
	VirtualOffsetTable
	// VirtualVBTable reads the displacement from a per-class
	// virtual-base table found through the vbptr
	VirtualVBTable
)

func (k VirtualKind) String() string {
	switch k {
	case VirtualNone:
		return "none"
	case VirtualOffsetTable:
		return "offset-table"
	case VirtualVBTable:
		return "vbtable"
	}
	return "unknown"
}

// Matches reports whether a descriptor of this kind may appear under the
// given convention, the empty kind under any.
func (k VirtualKind) Matches(c target.Convention) bool {
	switch k {
	case VirtualNone:
		return true
	case VirtualOffsetTable:
		return c == target.ConventionOffsetTable
	case VirtualVBTable:
		return c == target.ConventionVBTable
	}
	return false
}

// ConventionMismatchError reports a descriptor reaching a consumer driven
// by the other convention.
type ConventionMismatchError struct {
	Kind       VirtualKind
	Convention target.Convention
}

func (e *ConventionMismatchError) Error() string {
	return fmt.Sprintf("%s descriptor cannot appear under the %s convention", e.Kind, e.Convention)
}

// OffsetTableThis locates the runtime receiver displacement for the
// offset-table convention.
type OffsetTableThis struct {
	// VCallOffsetOffset is the byte offset, relative to the address
	// point, of the virtual call offset
	VCallOffsetOffset int64
	// VBase is the virtual base involved in the adjustment
	VBase hierarchy.ClassID
}

// VBTableThis locates the runtime receiver displacement for the vbtable
// convention.
type VBTableThis struct {
	// VtordispOffset is the byte offset of the vtordisp relative to the
	// incoming receiver, zero when no construction-time correction applies
	VtordispOffset int32
	// VBPtrOffset is the byte offset of the vbptr inside the derived
	// class, after the vtordisp correction
	VBPtrOffset int32
	// VBOffsetOffset is the byte offset of the base's entry inside the
	// vbtable
	VBOffsetOffset int32
}

// VirtualThis is the virtual component of a receiver adjustment, empty or
// exactly one of the two convention shapes.
type VirtualThis struct {
	Kind        VirtualKind
	OffsetTable OffsetTableThis
	VBTable     VBTableThis
}

func NewOffsetTableThis(vcallOffsetOffset int64, vbase hierarchy.ClassID) VirtualThis {
	return VirtualThis{
		Kind:        VirtualOffsetTable,
		OffsetTable: OffsetTableThis{VCallOffsetOffset: vcallOffsetOffset, VBase: vbase},
	}
}

func NewVBTableThis(vtordispOffset, vbptrOffset, vbOffsetOffset int32) VirtualThis {
	return VirtualThis{
		Kind: VirtualVBTable,
		VBTable: VBTableThis{
			VtordispOffset: vtordispOffset,
			VBPtrOffset:    vbptrOffset,
			VBOffsetOffset: vbOffsetOffset,
		},
	}
}

func (v VirtualThis) IsEmpty() bool {
	return v.Kind == VirtualNone
}

// Equal compares kind first, then only the active shape.
func (v VirtualThis) Equal(other VirtualThis) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case VirtualOffsetTable:
		return v.OffsetTable == other.OffsetTable
	case VirtualVBTable:
		return v.VBTable == other.VBTable
	}
	return true
}

// Less is a strict weak order, kind first, then the active shape's fields.
func (v VirtualThis) Less(other VirtualThis) bool {
	if v.Kind != other.Kind {
		return v.Kind < other.Kind
	}
	switch v.Kind {
	case VirtualOffsetTable:
		if v.OffsetTable.VCallOffsetOffset != other.OffsetTable.VCallOffsetOffset {
			return v.OffsetTable.VCallOffsetOffset < other.OffsetTable.VCallOffsetOffset
		}
		return v.OffsetTable.VBase < other.OffsetTable.VBase
	case VirtualVBTable:
		if v.VBTable.VtordispOffset != other.VBTable.VtordispOffset {
			return v.VBTable.VtordispOffset < other.VBTable.VtordispOffset
		}
		if v.VBTable.VBPtrOffset != other.VBTable.VBPtrOffset {
			return v.VBTable.VBPtrOffset < other.VBTable.VBPtrOffset
		}
		return v.VBTable.VBOffsetOffset < other.VBTable.VBOffsetOffset
	}
	return false
}

// OffsetTableReturn locates the runtime return displacement for the
// offset-table convention.
type OffsetTableReturn struct {
	// VBaseOffsetOffset is the byte offset, relative to the address
	// point, of the virtual base class offset
	VBaseOffsetOffset int64
}

// VBTableReturn locates the runtime return displacement for the vbtable
// convention.
type VBTableReturn struct {
	// VBPtrOffset is the byte offset of the vbptr inside the derived class
	VBPtrOffset uint32
	// VBIndex is the entry of the virtual base in the vbtable
	VBIndex uint32
}

// VirtualReturn is the virtual component of a return adjustment, empty or
// exactly one of the two convention shapes.
type VirtualReturn struct {
	Kind        VirtualKind
	OffsetTable OffsetTableReturn
	VBTable     VBTableReturn
}

func NewOffsetTableReturn(vbaseOffsetOffset int64) VirtualReturn {
	return VirtualReturn{
		Kind:        VirtualOffsetTable,
		OffsetTable: OffsetTableReturn{VBaseOffsetOffset: vbaseOffsetOffset},
	}
}

func NewVBTableReturn(vbptrOffset, vbIndex uint32) VirtualReturn {
	return VirtualReturn{
		Kind:    VirtualVBTable,
		VBTable: VBTableReturn{VBPtrOffset: vbptrOffset, VBIndex: vbIndex},
	}
}

func (v VirtualReturn) IsEmpty() bool {
	return v.Kind == VirtualNone
}

// Equal compares kind first, then only the active shape.
func (v VirtualReturn) Equal(other VirtualReturn) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case VirtualOffsetTable:
		return v.OffsetTable == other.OffsetTable
	case VirtualVBTable:
		return v.VBTable == other.VBTable
	}
	return true
}

// Less is a strict weak order, kind first, then the active shape's fields.
func (v VirtualReturn) Less(other VirtualReturn) bool {
	if v.Kind != other.Kind {
		return v.Kind < other.Kind
	}
	switch v.Kind {
	case VirtualOffsetTable:
		return v.OffsetTable.VBaseOffsetOffset < other.OffsetTable.VBaseOffsetOffset
	case VirtualVBTable:
		if v.VBTable.VBPtrOffset != other.VBTable.VBPtrOffset {
			return v.VBTable.VBPtrOffset < other.VBTable.VBPtrOffset
		}
		return v.VBTable.VBIndex < other.VBTable.VBIndex
	}
	return false
}
