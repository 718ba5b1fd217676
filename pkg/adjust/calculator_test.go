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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/layout"
	"github.com/vtforge/vtforge/pkg/target"
)

type stubEncoder struct {
	this      VirtualThis
	ret       VirtualReturn
	err       error
	thisCalls int
	retCalls  int
}

func (s *stubEncoder) EncodeVirtualThis(path hierarchy.Path) (VirtualThis, error) {
	s.thisCalls++
	return s.this, s.err
}

func (s *stubEncoder) EncodeVirtualReturn(path hierarchy.Path) (VirtualReturn, error) {
	s.retCalls++
	return s.ret, s.err
}

// twoBaseGraph builds D : C, B with both bases dynamic, B lands at +8
// under an 8 byte pointer target.
func twoBaseGraph(t *testing.T) (*hierarchy.Graph, map[string]hierarchy.ClassID) {
	builder := hierarchy.NewBuilder()
	b := builder.AddClass("B", "1B")
	c := builder.AddClass("C", "1C")
	d := builder.AddClass("D", "1D")
	builder.AddMethod(b, "f", "_ZN1B1fEv", hierarchy.InvalidClass)
	builder.AddMethod(c, "g", "_ZN1C1gEv", hierarchy.InvalidClass)
	builder.AddBase(d, hierarchy.Base{Class: c})
	builder.AddBase(d, hierarchy.Base{Class: b})
	graph, err := builder.Finalize()
	if err != nil {
		t.Fatalf("finalize failure: %v", err)
	}
	return graph, map[string]hierarchy.ClassID{"B": b, "C": c, "D": d}
}

func newCalculator(t *testing.T, triple string, graph *hierarchy.Graph, encoder VirtualEncoder) *Calculator {
	spec, err := target.Lookup(triple)
	if err != nil {
		t.Fatal(err)
	}
	table, err := layout.NewTable(spec, graph, 0)
	if err != nil {
		t.Fatal(err)
	}
	return NewCalculator(spec, graph, table, encoder)
}

func TestComputeThisNonVirtual(t *testing.T) {
	graph, ids := twoBaseGraph(t)
	encoder := &stubEncoder{}
	calc := newCalculator(t, "x86_64-offsettable", graph, encoder)

	path, err := graph.UniquePath(ids["D"], ids["B"])
	if err != nil {
		t.Fatal(err)
	}
	this, err := calc.ComputeThis(path)
	if err != nil {
		t.Fatalf("compute failure: %v", err)
	}
	// B sits at +8 inside D, the receiver moves back by 8
	assert.Equal(t, int64(-8), this.NonVirtual)
	assert.True(t, this.Virtual.IsEmpty())
	assert.Equal(t, ids["B"], this.Source)
	assert.Equal(t, ids["D"], this.Target)
	assert.Equal(t, path, this.Path)
	assert.Equal(t, 0, encoder.thisCalls)
}

func TestComputeReturnNonVirtual(t *testing.T) {
	graph, ids := twoBaseGraph(t)
	calc := newCalculator(t, "x86_64-offsettable", graph, &stubEncoder{})

	path, err := graph.UniquePath(ids["D"], ids["B"])
	if err != nil {
		t.Fatal(err)
	}
	ret, err := calc.ComputeReturn(path)
	if err != nil {
		t.Fatalf("compute failure: %v", err)
	}
	assert.Equal(t, int64(8), ret.NonVirtual)
	assert.True(t, ret.Virtual.IsEmpty())
	// byte addressable targets drop the endpoints
	assert.Equal(t, hierarchy.InvalidClass, ret.Source)
	assert.Equal(t, hierarchy.InvalidClass, ret.Target)
}

func TestComputeReturnKeepsEndpoints(t *testing.T) {
	graph, ids := twoBaseGraph(t)
	calc := newCalculator(t, "wasm32-object", graph, &stubEncoder{})

	path, err := graph.UniquePath(ids["D"], ids["B"])
	if err != nil {
		t.Fatal(err)
	}
	ret, err := calc.ComputeReturn(path)
	if err != nil {
		t.Fatalf("compute failure: %v", err)
	}
	// 4 byte pointers on this target
	assert.Equal(t, int64(4), ret.NonVirtual)
	assert.Equal(t, ids["D"], ret.Source)
	assert.Equal(t, ids["B"], ret.Target)
}

func TestComputeVirtualCrossing(t *testing.T) {
	builder := hierarchy.NewBuilder()
	a := builder.AddClass("A", "1A")
	b := builder.AddClass("B", "1B")
	d := builder.AddClass("D", "1D")
	builder.AddMethod(a, "f", "_ZN1A1fEv", hierarchy.InvalidClass)
	builder.AddBase(b, hierarchy.Base{Class: a, Virtual: true})
	builder.AddBase(d, hierarchy.Base{Class: b})
	graph, err := builder.Finalize()
	if err != nil {
		t.Fatal(err)
	}

	encoder := &stubEncoder{
		this: NewOffsetTableThis(-24, a),
		ret:  NewOffsetTableReturn(-24),
	}
	calc := newCalculator(t, "x86_64-offsettable", graph, encoder)

	path, err := graph.UniquePath(d, a)
	if err != nil {
		t.Fatal(err)
	}
	this, err := calc.ComputeThis(path)
	if err != nil {
		t.Fatalf("compute failure: %v", err)
	}
	assert.Equal(t, int64(0), this.NonVirtual)
	assert.True(t, this.Virtual.Equal(encoder.this))
	assert.Equal(t, 1, encoder.thisCalls)

	ret, err := calc.ComputeReturn(path)
	if err != nil {
		t.Fatalf("compute failure: %v", err)
	}
	assert.True(t, ret.Virtual.Equal(encoder.ret))
	assert.Equal(t, 1, encoder.retCalls)

	encoder.err = fmt.Errorf("encode failure")
	if _, err := calc.ComputeThis(path); err == nil {
		t.Fatal("except encoder error, actual nil")
	}
}

func TestComputeChainedVirtual(t *testing.T) {
	graph, ids := twoBaseGraph(t)
	calc := newCalculator(t, "x86_64-offsettable", graph, &stubEncoder{})

	chained := hierarchy.Path{Steps: []hierarchy.Step{
		{From: ids["D"], To: ids["C"], Virtual: true},
		{From: ids["C"], To: ids["B"], Virtual: true},
	}}
	_, err := calc.ComputeThis(chained)
	chainedErr := &ChainedVirtualError{}
	if !errors.As(err, &chainedErr) {
		t.Fatalf("except ChainedVirtualError, actual: %v", err)
	}
	if _, err := calc.ComputeReturn(chained); !errors.As(err, &chainedErr) {
		t.Fatalf("except ChainedVirtualError, actual: %v", err)
	}
}

func TestComputeEmptyPath(t *testing.T) {
	graph, _ := twoBaseGraph(t)
	encoder := &stubEncoder{}
	calc := newCalculator(t, "x86_64-offsettable", graph, encoder)

	this, err := calc.ComputeThis(hierarchy.Path{})
	if err != nil {
		t.Fatalf("compute failure: %v", err)
	}
	assert.True(t, this.IsEmpty())

	ret, err := calc.ComputeReturn(hierarchy.Path{})
	if err != nil {
		t.Fatalf("compute failure: %v", err)
	}
	assert.True(t, ret.IsEmpty())
	assert.Equal(t, 0, encoder.thisCalls+encoder.retCalls)
}

func TestComputeUnplacedStep(t *testing.T) {
	graph, ids := twoBaseGraph(t)
	calc := newCalculator(t, "x86_64-offsettable", graph, &stubEncoder{})

	// B is not a direct base of C, the walk has no placement
	bogus := hierarchy.Path{Steps: []hierarchy.Step{
		{From: ids["C"], To: ids["B"]},
	}}
	if _, err := calc.ComputeThis(bogus); err == nil {
		t.Fatal("except placement error, actual nil")
	}
}
