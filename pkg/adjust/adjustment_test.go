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

package adjust

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/target"
)

func TestThisAdjustmentEqual(t *testing.T) {
	left := ThisAdjustment{NonVirtual: -8, Source: 1, Target: 2}
	right := ThisAdjustment{
		NonVirtual: -8,
		Source:     3,
		Target:     4,
		Path:       hierarchy.Path{Steps: []hierarchy.Step{{From: 4, To: 3}}},
	}
	// endpoints and the walk are bookkeeping, the applied offsets decide
	assert.True(t, left.Equal(right))

	right.Virtual = NewOffsetTableThis(-24, 5)
	assert.False(t, left.Equal(right))

	differentOffset := ThisAdjustment{NonVirtual: -16}
	assert.False(t, left.Equal(differentOffset))
}

func TestReturnAdjustmentEqual(t *testing.T) {
	left := ReturnAdjustment{NonVirtual: 8, Source: 1, Target: 2}
	same := ReturnAdjustment{NonVirtual: 8, Source: 1, Target: 2}
	assert.True(t, left.Equal(same))

	differentSource := ReturnAdjustment{NonVirtual: 8, Source: 3, Target: 2}
	assert.False(t, left.Equal(differentSource))

	differentVirtual := ReturnAdjustment{NonVirtual: 8, Source: 1, Target: 2,
		Virtual: NewOffsetTableReturn(-24)}
	assert.False(t, left.Equal(differentVirtual))
}

func TestAdjustmentIsEmpty(t *testing.T) {
	assert.True(t, ThisAdjustment{}.IsEmpty())
	assert.True(t, ReturnAdjustment{}.IsEmpty())

	// an empty adjustment may still carry its endpoints
	assert.True(t, ThisAdjustment{Source: 1, Target: 2}.IsEmpty())
	assert.True(t, ReturnAdjustment{Source: 1, Target: 2}.IsEmpty())

	assert.False(t, ThisAdjustment{NonVirtual: -8}.IsEmpty())
	assert.False(t, ThisAdjustment{Virtual: NewOffsetTableThis(-24, 1)}.IsEmpty())
	assert.False(t, ReturnAdjustment{NonVirtual: 8}.IsEmpty())
	assert.False(t, ReturnAdjustment{Virtual: NewVBTableReturn(8, 1)}.IsEmpty())
}

func TestThisAdjustmentLess(t *testing.T) {
	small := ThisAdjustment{NonVirtual: -24}
	big := ThisAdjustment{NonVirtual: -8}
	assert.True(t, small.Less(big))
	assert.False(t, big.Less(small))

	// same offset, the virtual component breaks the tie by kind
	plain := ThisAdjustment{NonVirtual: -8}
	virtual := ThisAdjustment{NonVirtual: -8, Virtual: NewOffsetTableThis(-24, 1)}
	assert.True(t, plain.Less(virtual))
	assert.False(t, virtual.Less(plain))

	// equal adjustments order neither way
	other := ThisAdjustment{NonVirtual: -8, Source: 9}
	assert.False(t, plain.Less(other))
	assert.False(t, other.Less(plain))
}

func TestVirtualThisEqual(t *testing.T) {
	assert.True(t, VirtualThis{}.IsEmpty())
	assert.True(t, VirtualThis{}.Equal(VirtualThis{}))

	offsetTable := NewOffsetTableThis(-24, 1)
	assert.False(t, offsetTable.IsEmpty())
	assert.True(t, offsetTable.Equal(NewOffsetTableThis(-24, 1)))
	assert.False(t, offsetTable.Equal(NewOffsetTableThis(-24, 2)))
	assert.False(t, offsetTable.Equal(NewOffsetTableThis(-16, 1)))
	assert.False(t, offsetTable.Equal(VirtualThis{}))
	assert.False(t, offsetTable.Equal(NewVBTableThis(-4, 8, 4)))
}

func TestVirtualReturnLess(t *testing.T) {
	none := VirtualReturn{}
	offsetTable := NewOffsetTableReturn(-24)
	vbtable := NewVBTableReturn(8, 1)

	assert.True(t, none.Less(offsetTable))
	assert.True(t, offsetTable.Less(vbtable))
	assert.True(t, none.Less(vbtable))
	assert.False(t, vbtable.Less(none))

	assert.True(t, NewOffsetTableReturn(-24).Less(NewOffsetTableReturn(-16)))
	assert.True(t, NewVBTableReturn(8, 1).Less(NewVBTableReturn(8, 2)))
	assert.False(t, NewVBTableReturn(8, 1).Less(NewVBTableReturn(8, 1)))
}

func TestVirtualKindMatches(t *testing.T) {
	assert.True(t, VirtualNone.Matches(target.ConventionOffsetTable))
	assert.True(t, VirtualNone.Matches(target.ConventionVBTable))
	assert.True(t, VirtualOffsetTable.Matches(target.ConventionOffsetTable))
	assert.False(t, VirtualOffsetTable.Matches(target.ConventionVBTable))
	assert.True(t, VirtualVBTable.Matches(target.ConventionVBTable))
	assert.False(t, VirtualVBTable.Matches(target.ConventionOffsetTable))
}
