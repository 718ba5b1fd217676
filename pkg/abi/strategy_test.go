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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vtforge/vtforge/pkg/adjust"
	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/layout"
	"github.com/vtforge/vtforge/pkg/target"
)

// diamondGraph builds D : B, C with B and C virtually inheriting A, A
// introducing f and D overriding it.
func diamondGraph(t *testing.T) (*hierarchy.Graph, map[string]hierarchy.ClassID) {
	builder := hierarchy.NewBuilder()
	a := builder.AddClass("A", "1A")
	b := builder.AddClass("B", "1B")
	c := builder.AddClass("C", "1C")
	d := builder.AddClass("D", "1D")
	builder.AddBase(b, hierarchy.Base{Class: a, Virtual: true})
	builder.AddBase(c, hierarchy.Base{Class: a, Virtual: true})
	builder.AddBase(d, hierarchy.Base{Class: b})
	builder.AddBase(d, hierarchy.Base{Class: c})
	builder.AddMethod(a, "f", "_ZN1A1fEv", hierarchy.InvalidClass)
	builder.AddMethod(d, "f", "_ZN1D1fEv", hierarchy.InvalidClass)
	graph, err := builder.Finalize()
	if err != nil {
		t.Fatalf("finalize diamond failure: %v", err)
	}
	return graph, map[string]hierarchy.ClassID{"A": a, "B": b, "C": c, "D": d}
}

func newStrategy(t *testing.T, triple string, graph *hierarchy.Graph) (Strategy, *target.Spec, *layout.Table) {
	spec, err := target.Lookup(triple)
	if err != nil {
		t.Fatal(err)
	}
	table, err := layout.NewTable(spec, graph, 0)
	if err != nil {
		t.Fatal(err)
	}
	strategy, err := New(spec, graph, table)
	if err != nil {
		t.Fatalf("strategy selection failure: %v", err)
	}
	return strategy, spec, table
}

func TestNewSelectsConvention(t *testing.T) {
	graph, _ := diamondGraph(t)

	offsetTable, _, _ := newStrategy(t, "x86_64-offsettable", graph)
	assert.Equal(t, target.ConventionOffsetTable, offsetTable.Convention())
	assert.False(t, offsetTable.DisambiguatesEqualThunks())

	vbtable, _, _ := newStrategy(t, "x86_64-vbtable", graph)
	assert.Equal(t, target.ConventionVBTable, vbtable.Convention())
	assert.True(t, vbtable.DisambiguatesEqualThunks())

	if _, err := New(&target.Spec{Convention: target.Convention(9)}, graph, nil); err == nil {
		t.Fatal("except unknown convention error, actual nil")
	}
}

func TestOffsetTableEncode(t *testing.T) {
	graph, ids := diamondGraph(t)
	strategy, _, _ := newStrategy(t, "x86_64-offsettable", graph)

	path, err := graph.UniquePath(ids["D"], ids["A"])
	if err != nil {
		t.Fatal(err)
	}
	this, err := strategy.EncodeVirtualThis(path)
	if err != nil {
		t.Fatalf("encode failure: %v", err)
	}
	assert.Equal(t, adjust.NewOffsetTableThis(-24, ids["A"]), this)

	ret, err := strategy.EncodeVirtualReturn(path)
	if err != nil {
		t.Fatalf("encode failure: %v", err)
	}
	assert.Equal(t, adjust.NewOffsetTableReturn(-24), ret)

	// a walk without a virtual crossing has nothing to encode
	flat := hierarchy.Path{Steps: []hierarchy.Step{{From: ids["D"], To: ids["B"]}}}
	if _, err := strategy.EncodeVirtualThis(flat); err == nil {
		t.Fatal("except no virtual base error, actual nil")
	}
}

func TestVBTableEncode(t *testing.T) {
	graph, ids := diamondGraph(t)
	strategy, _, _ := newStrategy(t, "x86_64-vbtable", graph)

	path, err := graph.UniquePath(ids["D"], ids["A"])
	if err != nil {
		t.Fatal(err)
	}
	this, err := strategy.EncodeVirtualThis(path)
	if err != nil {
		t.Fatalf("encode failure: %v", err)
	}
	// D overrides f, receivers get the construction-time correction
	assert.Equal(t, adjust.NewVBTableThis(-4, 8, 4), this)

	ret, err := strategy.EncodeVirtualReturn(path)
	if err != nil {
		t.Fatalf("encode failure: %v", err)
	}
	assert.Equal(t, adjust.NewVBTableReturn(8, 1), ret)
}

func TestVBTableEncodeWithoutOverrides(t *testing.T) {
	graph, ids := diamondGraph(t)
	strategy, _, _ := newStrategy(t, "x86_64-vbtable", graph)

	// B declares nothing itself, no vtordisp applies
	path, err := graph.UniquePath(ids["B"], ids["A"])
	if err != nil {
		t.Fatal(err)
	}
	this, err := strategy.EncodeVirtualThis(path)
	if err != nil {
		t.Fatalf("encode failure: %v", err)
	}
	assert.Equal(t, adjust.NewVBTableThis(0, 8, 4), this)
}

func TestVBTableEncodeMissingVBPtr(t *testing.T) {
	builder := hierarchy.NewBuilder()
	a := builder.AddClass("A", "1A")
	x := builder.AddClass("X", "1X")
	builder.AddMethod(x, "f", "_ZN1X1fEv", hierarchy.InvalidClass)
	graph, err := builder.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	strategy, _, _ := newStrategy(t, "x86_64-vbtable", graph)

	// X has no virtual bases and therefore no vbptr
	bogus := hierarchy.Path{Steps: []hierarchy.Step{{From: x, To: a, Virtual: true}}}
	if _, err := strategy.EncodeVirtualThis(bogus); err == nil {
		t.Fatal("except missing vbptr error, actual nil")
	}
}

func TestClobberPassThrough(t *testing.T) {
	graph, _ := diamondGraph(t)

	x86, spec, _ := newStrategy(t, "x86_64-offsettable", graph)
	assert.Equal(t, spec.Clobbers, x86.Clobbers())
	assert.True(t, x86.ValidClobber("ax"))
	assert.True(t, x86.ValidClobber("memory"))
	assert.False(t, x86.ValidClobber("zmm0"))

	wasm, _, _ := newStrategy(t, "wasm32-object", graph)
	assert.True(t, wasm.ValidClobber("anything-at-all"))
}

func TestCalculatorWithOffsetTableStrategy(t *testing.T) {
	// D : C, B with C carrying the vtable, B at +8 holding virtual base A
	builder := hierarchy.NewBuilder()
	a := builder.AddClass("A", "1A")
	b := builder.AddClass("B", "1B")
	c := builder.AddClass("C", "1C")
	d := builder.AddClass("D", "1D")
	builder.AddMethod(a, "f", "_ZN1A1fEv", hierarchy.InvalidClass)
	builder.AddMethod(c, "g", "_ZN1C1gEv", hierarchy.InvalidClass)
	builder.AddMethod(d, "f", "_ZN1D1fEv", hierarchy.InvalidClass)
	builder.AddBase(b, hierarchy.Base{Class: a, Virtual: true})
	builder.AddBase(d, hierarchy.Base{Class: c})
	builder.AddBase(d, hierarchy.Base{Class: b})
	graph, err := builder.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	strategy, spec, table := newStrategy(t, "x86_64-offsettable", graph)
	calc := adjust.NewCalculator(spec, graph, table, strategy)

	path, err := graph.UniquePath(d, a)
	if err != nil {
		t.Fatal(err)
	}
	this, err := calc.ComputeThis(path)
	if err != nil {
		t.Fatalf("compute failure: %v", err)
	}
	// the classic shape: -8 non-virtual, -24 vcall offset offset
	assert.Equal(t, int64(-8), this.NonVirtual)
	assert.Equal(t, adjust.NewOffsetTableThis(-24, a), this.Virtual)
}
