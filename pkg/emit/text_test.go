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

package emit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vtforge/vtforge/pkg/abi"
	"github.com/vtforge/vtforge/pkg/adjust"
	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/layout"
	"github.com/vtforge/vtforge/pkg/multiversion"
	"github.com/vtforge/vtforge/pkg/target"
	"github.com/vtforge/vtforge/pkg/thunk"
)

// crossedDiamond builds A(f) virtual in B, C standalone, D : C, B with D
// overriding f, the shape producing the -8/-24 receiver correction.
func crossedDiamond(t *testing.T) (*hierarchy.Graph, hierarchy.ClassID) {
	builder := hierarchy.NewBuilder()
	a := builder.AddClass("A", "1A")
	b := builder.AddClass("B", "1B")
	c := builder.AddClass("C", "1C")
	d := builder.AddClass("D", "1D")
	builder.AddBase(b, hierarchy.Base{Class: a, Virtual: true})
	builder.AddBase(d, hierarchy.Base{Class: c})
	builder.AddBase(d, hierarchy.Base{Class: b})
	builder.AddMethod(a, "f", "_ZN1A1fEv", hierarchy.InvalidClass)
	builder.AddMethod(c, "g", "_ZN1C1gEv", hierarchy.InvalidClass)
	builder.AddMethod(d, "f", "_ZN1D1fEv", hierarchy.InvalidClass)
	graph, err := builder.Finalize()
	if err != nil {
		t.Fatalf("finalize failure: %v", err)
	}
	return graph, d
}

// virtualDiamond builds D : B, C with both arms virtually inheriting A(f)
// and D overriding f.
func virtualDiamond(t *testing.T) (*hierarchy.Graph, hierarchy.ClassID) {
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
		t.Fatalf("finalize failure: %v", err)
	}
	return graph, d
}

// renderPlan runs the full pipeline for one class and renders it through a
// text session.
func renderPlan(t *testing.T, triple string, graph *hierarchy.Graph, class hierarchy.ClassID) string {
	spec, err := target.Lookup(triple)
	if err != nil {
		t.Fatal(err)
	}
	layouts, err := layout.NewTable(spec, graph, 0)
	if err != nil {
		t.Fatal(err)
	}
	strategy, err := abi.New(spec, graph, layouts)
	if err != nil {
		t.Fatalf("strategy selection failure: %v", err)
	}
	calc := adjust.NewCalculator(spec, graph, layouts, strategy)
	plan, err := thunk.NewSynthesizer(graph, layouts, calc, strategy).Plan(class)
	if err != nil {
		t.Fatalf("plan failure: %v", err)
	}
	rec, err := layouts.Record(class)
	if err != nil {
		t.Fatalf("record failure: %v", err)
	}

	var out bytes.Buffer
	session := NewSession(spec, NewTextSink(&out, graph, spec))
	if err := session.EmitPlan(rec, plan); err != nil {
		t.Fatalf("emit failure: %v", err)
	}
	if err := session.Finish(); err != nil {
		t.Fatalf("finish failure: %v", err)
	}
	return out.String()
}

func TestTextSinkOffsetTableDump(t *testing.T) {
	graph, d := crossedDiamond(t)
	text := renderPlan(t, "x86_64-offsettable", graph, d)

	assert.Contains(t, text, "Vtable for 'D' (5 entries)\n")
	assert.Contains(t, text, "   0 | vbase_offset (16)\n")
	assert.Contains(t, text, "   1 | offset_to_top (0)\n")
	assert.Contains(t, text, "   2 | D RTTI\n")
	assert.Contains(t, text, "   3 | C::g()\n")
	assert.Contains(t, text, "   4 | D::f()\n")
	assert.Contains(t, text, "[this adjustment: -8 non-virtual, -24 vcall offset offset]")
	assert.Contains(t, text, "emitted 1 vtables (40B of dispatch tables), 0 resolvers\n")
	assert.NotContains(t, text, "VBTable")
}

func TestTextSinkVBTableDump(t *testing.T) {
	graph, d := virtualDiamond(t)
	text := renderPlan(t, "x86_64-vbtable", graph, d)

	assert.Contains(t, text, "Vtable for 'D' (1 entries)\n")
	assert.Contains(t, text, "   0 | D::f()\n")
	assert.Contains(t, text, "[this adjustment: vtordisp at -4, vbptr at offset 8, vboffset at 4 in the vbtable, 0 non-virtual]")
	assert.Contains(t, text, "VBTable for 'D' (2 entries)\n")
	assert.Contains(t, text, "   0 | -8\n")
	assert.Contains(t, text, "   1 | 24\n")
	assert.Contains(t, text, "emitted 1 vtables (16B of dispatch tables), 0 resolvers\n")
	assert.NotContains(t, text, "RTTI")
}

func TestTextSinkResolverListing(t *testing.T) {
	descriptor, err := multiversion.NewBuilder(target.NewFeatureTable()).BuildResolver(multiversion.Function{
		Name:   "foo",
		Symbol: "_Z3foov",
		Candidates: []multiversion.Candidate{
			{Requirement: "default"},
			{Requirement: "arch=sandybridge"},
			{Requirement: "arch=ivybridge"},
			{Requirement: "sse4.2"},
		},
	})
	if err != nil {
		t.Fatalf("build failure: %v", err)
	}

	spec, err := target.Lookup("x86_64-offsettable")
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	session := NewSession(spec, NewTextSink(&out, nil, spec))
	if err := session.EmitResolver(descriptor); err != nil {
		t.Fatalf("emit failure: %v", err)
	}
	if err := session.Finish(); err != nil {
		t.Fatalf("finish failure: %v", err)
	}

	text := out.String()
	assert.Contains(t, text, "Resolver for 'foo()' (3 checks)\n")
	assert.Contains(t, text, "  ifunc: _Z3foov.ifunc\n")
	assert.Contains(t, text, "  resolver: _Z3foov.resolver\n")
	assert.Contains(t, text, "   0 | arch=sandybridge -> _Z3foov.arch_sandybridge\n")
	assert.Contains(t, text, "   1 | arch=ivybridge -> _Z3foov.arch_ivybridge\n")
	assert.Contains(t, text, "   2 | sse4.2 -> _Z3foov.sse4.2\n")
	assert.Contains(t, text, "   * | default -> _Z3foov\n")
	assert.Contains(t, text, "emitted 0 vtables (0B of dispatch tables), 1 resolvers\n")
}
