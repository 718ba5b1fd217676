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
	"fmt"
	"io"

	"github.com/docker/go-units"

	"github.com/vtforge/vtforge/pkg/adjust"
	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/layout"
	"github.com/vtforge/vtforge/pkg/multiversion"
	"github.com/vtforge/vtforge/pkg/target"
	"github.com/vtforge/vtforge/pkg/thunk"
	"github.com/vtforge/vtforge/pkg/tools/symbol"
)

// TextSink renders dispatch tables and resolver listings as compiler dump
// text, one section per class or function, a byte-size summary at the end.
type TextSink struct {
	writer io.Writer
	graph  *hierarchy.Graph
	spec   *target.Spec
	err    error

	classes    int
	resolvers  int
	tableBytes int64
}

func NewTextSink(writer io.Writer, graph *hierarchy.Graph, spec *target.Spec) *TextSink {
	return &TextSink{
		writer: writer,
		graph:  graph,
		spec:   spec,
	}
}

func (s *TextSink) printf(format string, args ...interface{}) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.writer, format, args...)
}

func (s *TextSink) ConsumePlan(rec *layout.Record, plan *thunk.Plan) error {
	if !rec.HasVTable() {
		return nil
	}
	name := s.graph.ClassName(rec.Class)
	s.printf("Vtable for '%s' (%d entries)\n", name, rec.Entries)

	row := 0
	if s.spec.Convention == target.ConventionOffsetTable {
		for _, vbase := range rec.VBases {
			s.printf("%4d | vbase_offset (%d)\n", row, vbase.Offset)
			row++
		}
		s.printf("%4d | offset_to_top (0)\n", row)
		row++
		s.printf("%4d | %s RTTI\n", row, name)
		row++
	}
	for _, binding := range plan.Bindings {
		method := s.graph.Method(binding.Overrider)
		s.printf("%4d | %s\n", row, symbol.DisplayName(method.MangledName))
		row++
		if binding.Thunk == nil {
			continue
		}
		if !binding.Thunk.This.IsEmpty() {
			s.printf("       [this adjustment: %s]\n", formatThis(binding.Thunk.This))
		}
		if !binding.Thunk.Return.IsEmpty() {
			s.printf("       [return adjustment: %s]\n", formatReturn(binding.Thunk.Return))
		}
		if binding.Thunk.Method != hierarchy.InvalidMethod {
			overridden := s.graph.Method(binding.Thunk.Method)
			s.printf("       [overrides: %s]\n", symbol.DisplayName(overridden.MangledName))
		}
	}
	s.tableBytes += int64(rec.Entries) * int64(s.spec.PointerWidth)

	if s.spec.Convention == target.ConventionVBTable && rec.VBPtrOffset >= 0 {
		s.printf("VBTable for '%s' (%d entries)\n", name, 1+len(rec.VBases))
		// entry zero points from the vbptr back to the object start
		s.printf("%4d | %d\n", 0, -rec.VBPtrOffset)
		for _, vbase := range rec.VBases {
			s.printf("%4d | %d\n", vbase.Index, vbase.Offset-rec.VBPtrOffset)
		}
		s.tableBytes += int64(1+len(rec.VBases)) * layout.VBTableEntrySize
	}
	s.printf("\n")
	s.classes++
	return s.err
}

func (s *TextSink) ConsumeResolver(descriptor *multiversion.ResolverDescriptor) error {
	s.printf("Resolver for '%s' (%d checks)\n", symbol.DisplayName(descriptor.Default.Symbol), len(descriptor.Checks))
	s.printf("  ifunc: %s\n", descriptor.IFuncSymbol)
	s.printf("  resolver: %s\n", descriptor.ResolverSymbol)
	for i, check := range descriptor.Checks {
		s.printf("%4d | %s -> %s\n", i, check.Requirement, check.Symbol)
	}
	s.printf("   * | default -> %s\n", descriptor.Default.Symbol)
	s.printf("\n")
	s.resolvers++
	return s.err
}

func (s *TextSink) Close() error {
	s.printf("emitted %d vtables (%s of dispatch tables), %d resolvers\n",
		s.classes, units.BytesSize(float64(s.tableBytes)), s.resolvers)
	return s.err
}

func formatThis(a adjust.ThisAdjustment) string {
	switch a.Virtual.Kind {
	case adjust.VirtualOffsetTable:
		return fmt.Sprintf("%d non-virtual, %d vcall offset offset",
			a.NonVirtual, a.Virtual.OffsetTable.VCallOffsetOffset)
	case adjust.VirtualVBTable:
		return fmt.Sprintf("vtordisp at %d, vbptr at offset %d, vboffset at %d in the vbtable, %d non-virtual",
			a.Virtual.VBTable.VtordispOffset, a.Virtual.VBTable.VBPtrOffset,
			a.Virtual.VBTable.VBOffsetOffset, a.NonVirtual)
	default:
		return fmt.Sprintf("%d non-virtual", a.NonVirtual)
	}
}

func formatReturn(a adjust.ReturnAdjustment) string {
	switch a.Virtual.Kind {
	case adjust.VirtualOffsetTable:
		return fmt.Sprintf("%d non-virtual, %d vbase offset offset",
			a.NonVirtual, a.Virtual.OffsetTable.VBaseOffsetOffset)
	case adjust.VirtualVBTable:
		return fmt.Sprintf("vbptr at offset %d, vbase #%d, %d non-virtual",
			a.Virtual.VBTable.VBPtrOffset, a.Virtual.VBTable.VBIndex, a.NonVirtual)
	default:
		return fmt.Sprintf("%d non-virtual", a.NonVirtual)
	}
}
