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
	"fmt"

	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/layout"
	"github.com/vtforge/vtforge/pkg/target"
)

// VirtualEncoder produces the convention shape of a virtual crossing. The
// calculator never branches on the active convention, all divergence lives
// behind this interface.
type VirtualEncoder interface {
	EncodeVirtualThis(path hierarchy.Path) (VirtualThis, error)
	EncodeVirtualReturn(path hierarchy.Path) (VirtualReturn, error)
}

// ChainedVirtualError reports a walk crossing more than one virtual base.
// The two-field descriptors encode a single table lookup, a second
// crossing has no representation.
type ChainedVirtualError struct {
	Path hierarchy.Path
}

func (e *ChainedVirtualError) Error() string {
	return fmt.Sprintf("path %s crosses more than one virtual base", e.Path)
}

// Calculator turns derived-to-base walks into adjustments. It is pure over
// the finalized graph and safe for concurrent use across classes.
type Calculator struct {
	graph   *hierarchy.Graph
	layouts *layout.Table
	encoder VirtualEncoder

	// keepEndpoints is decided once per target, return adjustments on
	// byte-addressable targets drop their class endpoints
	keepEndpoints bool
}

func NewCalculator(spec *target.Spec, graph *hierarchy.Graph, layouts *layout.Table, encoder VirtualEncoder) *Calculator {
	return &Calculator{
		graph:         graph,
		layouts:       layouts,
		encoder:       encoder,
		keepEndpoints: !spec.ByteAddressable,
	}
}

// ComputeThis builds the receiver correction for a call arriving at the
// walk's base sub-object and entering the overrider declared at its start.
// The statically known sub-object offsets are summed and negated, a
// virtual crossing defers the rest to the convention descriptor.
func (c *Calculator) ComputeThis(path hierarchy.Path) (ThisAdjustment, error) {
	if path.IsEmpty() {
		return ThisAdjustment{}, nil
	}
	if path.VirtualSteps() > 1 {
		return ThisAdjustment{}, &ChainedVirtualError{Path: path}
	}
	nonVirtual, err := c.nonVirtualSum(path)
	if err != nil {
		return ThisAdjustment{}, err
	}
	result := ThisAdjustment{
		NonVirtual: -nonVirtual,
		Source:     path.Base(),
		Target:     path.Derived(),
		Path:       path,
	}
	if path.LastVirtual() >= 0 {
		virtual, err := c.encoder.EncodeVirtualThis(path)
		if err != nil {
			return ThisAdjustment{}, err
		}
		result.Virtual = virtual
	}
	return result, nil
}

// ComputeReturn builds the correction for a pointer returned as the walk's
// starting class where the caller expects its base.
func (c *Calculator) ComputeReturn(path hierarchy.Path) (ReturnAdjustment, error) {
	if path.IsEmpty() {
		return ReturnAdjustment{}, nil
	}
	if path.VirtualSteps() > 1 {
		return ReturnAdjustment{}, &ChainedVirtualError{Path: path}
	}
	nonVirtual, err := c.nonVirtualSum(path)
	if err != nil {
		return ReturnAdjustment{}, err
	}
	result := ReturnAdjustment{NonVirtual: nonVirtual}
	if c.keepEndpoints {
		result.Source = path.Derived()
		result.Target = path.Base()
	}
	if path.LastVirtual() >= 0 {
		virtual, err := c.encoder.EncodeVirtualReturn(path)
		if err != nil {
			return ReturnAdjustment{}, err
		}
		result.Virtual = virtual
	}
	return result, nil
}

// nonVirtualSum adds up the fixed sub-object offsets of the walk's
// non-virtual steps.
func (c *Calculator) nonVirtualSum(path hierarchy.Path) (int64, error) {
	var sum int64
	for _, step := range path.Steps {
		if step.Virtual {
			continue
		}
		rec, err := c.layouts.Record(step.From)
		if err != nil {
			return 0, err
		}
		offset, ok := rec.BaseOffset(step.To)
		if !ok {
			return 0, fmt.Errorf("class %s: base %s has no placement",
				c.graph.ClassName(step.From), c.graph.ClassName(step.To))
		}
		sum += offset
	}
	return sum, nil
}
