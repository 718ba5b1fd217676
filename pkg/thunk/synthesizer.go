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

package thunk

import (
	"fmt"

	"github.com/vtforge/vtforge/pkg/abi"
	"github.com/vtforge/vtforge/pkg/adjust"
	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/layout"
)

// AmbiguousOverriderError reports two unrelated classes competing to
// override the same vtable slot.
type AmbiguousOverriderError struct {
	Class  *hierarchy.Class
	Slot   *hierarchy.Method
	First  *hierarchy.Class
	Second *hierarchy.Class
}

func (e *AmbiguousOverriderError) Error() string {
	return fmt.Sprintf("class %s: %s and %s both override %s",
		e.Class.Name, e.First.Name, e.Second.Name, e.Slot.Name)
}

// Binding ties one vtable slot of a class to its final overrider.
// Thunk is nil when the entry can reference the overrider directly.
type Binding struct {
	// Slot indexes the class layout record's slot list
	Slot int

	// Introduced is the declaration that created the slot
	Introduced hierarchy.MethodID

	// Overrider is the final overrider reached through the slot
	Overrider hierarchy.MethodID

	Thunk *Info
}

// Plan is the dispatch plan of one class, every slot bound to its final
// overrider plus the deduplicated thunks the bindings require, in
// emission order.
type Plan struct {
	Class    hierarchy.ClassID
	Bindings []Binding
	Thunks   []Info
}

// Synthesizer builds thunk descriptors for (overrider, slot) pairs. It is
// pure over the finalized graph and may run for independent classes in
// parallel.
type Synthesizer struct {
	graph    *hierarchy.Graph
	layouts  *layout.Table
	calc     *adjust.Calculator
	strategy abi.Strategy
}

func NewSynthesizer(graph *hierarchy.Graph, layouts *layout.Table, calc *adjust.Calculator, strategy abi.Strategy) *Synthesizer {
	return &Synthesizer{
		graph:    graph,
		layouts:  layouts,
		calc:     calc,
		strategy: strategy,
	}
}

// NeedsThunk reports whether dispatching the slot to the overrider requires
// a trampoline. Collision disambiguation needs the sibling overrides of a
// whole class and is applied by Plan, not here.
func (s *Synthesizer) NeedsThunk(overrider, slot hierarchy.MethodID) (bool, error) {
	info, err := s.Build(overrider, slot)
	if err != nil {
		return false, err
	}
	return !info.IsEmpty(), nil
}

// Build computes the thunk descriptor adjusting a receiver arriving as the
// slot's class into the overrider's class, plus the covariant return
// correction when the two declarations return different classes.
func (s *Synthesizer) Build(overrider, slot hierarchy.MethodID) (Info, error) {
	over := s.graph.Method(overrider)
	intro := s.graph.Method(slot)
	if over == nil {
		return Info{}, fmt.Errorf("unknown overrider method %d", overrider)
	}
	if intro == nil {
		return Info{}, fmt.Errorf("unknown slot method %d", slot)
	}

	var info Info
	if overrider != slot {
		if !s.overrides(overrider, slot) {
			return Info{}, fmt.Errorf("method %s::%s does not override %s::%s",
				s.graph.ClassName(over.Class), over.Name,
				s.graph.ClassName(intro.Class), intro.Name)
		}
		path, err := s.graph.UniquePath(over.Class, intro.Class)
		if err != nil {
			return Info{}, err
		}
		info.This, err = s.calc.ComputeThis(path)
		if err != nil {
			return Info{}, err
		}
	}

	if covariant(over, intro) {
		path, err := s.graph.UniquePath(over.CovariantReturn, intro.CovariantReturn)
		if err != nil {
			return Info{}, err
		}
		info.Return, err = s.calc.ComputeReturn(path)
		if err != nil {
			return Info{}, err
		}
	}
	return info, nil
}

// Plan binds every vtable slot of the class to its final overrider and
// synthesizes the thunks the bindings need. Classes without a vtable get
// an empty plan.
func (s *Synthesizer) Plan(class hierarchy.ClassID) (*Plan, error) {
	if s.graph.Class(class) == nil {
		return nil, fmt.Errorf("unknown class %d", class)
	}
	rec, err := s.layouts.Record(class)
	if err != nil {
		return nil, err
	}
	plan := &Plan{Class: class}
	if !rec.HasVTable() {
		return plan, nil
	}

	for i, slot := range rec.Slots {
		overrider, err := s.finalOverrider(class, slot)
		if err != nil {
			return nil, err
		}
		info, err := s.Build(overrider, slot)
		if err != nil {
			return nil, err
		}
		binding := Binding{Slot: i, Introduced: slot, Overrider: overrider}
		if !info.IsEmpty() {
			copied := info
			binding.Thunk = &copied
		}
		plan.Bindings = append(plan.Bindings, binding)
	}

	if s.strategy.DisambiguatesEqualThunks() {
		s.disambiguate(plan)
	}

	thunks := make([]Info, 0, len(plan.Bindings))
	for _, binding := range plan.Bindings {
		if binding.Thunk != nil {
			thunks = append(thunks, *binding.Thunk)
		}
	}
	plan.Thunks = Dedupe(thunks)
	Sort(plan.Thunks)
	return plan, nil
}

// disambiguate records the overridden declaration on covariant bindings
// whose adjustments collide with a sibling overriding a different slot.
// Bindings without a thunk gain one carrying only the disambiguator.
func (s *Synthesizer) disambiguate(plan *Plan) {
	covariants := make([]int, 0, len(plan.Bindings))
	for i, binding := range plan.Bindings {
		if covariant(s.graph.Method(binding.Overrider), s.graph.Method(binding.Introduced)) {
			covariants = append(covariants, i)
		}
	}
	marked := make(map[int]bool)
	for x, i := range covariants {
		for _, j := range covariants[x+1:] {
			a, b := plan.Bindings[i], plan.Bindings[j]
			if a.Introduced == b.Introduced {
				continue
			}
			if sameAdjustments(a.Thunk, b.Thunk) {
				marked[i] = true
				marked[j] = true
			}
		}
	}
	for i := range marked {
		binding := &plan.Bindings[i]
		if binding.Thunk == nil {
			binding.Thunk = &Info{}
		}
		binding.Thunk.Method = binding.Introduced
	}
}

// finalOverrider resolves the unique most derived override of the slot
// visible in the class. An override loses to any override declared below
// it, two survivors are an ambiguity in the input hierarchy.
func (s *Synthesizer) finalOverrider(class hierarchy.ClassID, slot hierarchy.MethodID) (hierarchy.MethodID, error) {
	intro := s.graph.Method(slot)
	candidates := make([]hierarchy.MethodID, 0, 2)
	consider := func(id hierarchy.ClassID) {
		if id != intro.Class && !s.graph.IsAncestor(id, intro.Class) {
			return
		}
		for _, method := range s.graph.Class(id).Methods {
			if s.graph.Method(method).Name == intro.Name {
				candidates = append(candidates, method)
				return
			}
		}
	}
	consider(class)
	for _, ancestor := range s.graph.Ancestors(class) {
		consider(ancestor)
	}

	final := make([]hierarchy.MethodID, 0, 1)
	for _, candidate := range candidates {
		beaten := false
		for _, other := range candidates {
			if other == candidate {
				continue
			}
			if s.graph.IsAncestor(s.graph.Method(other).Class, s.graph.Method(candidate).Class) {
				beaten = true
				break
			}
		}
		if !beaten {
			final = append(final, candidate)
		}
	}
	switch len(final) {
	case 0:
		return hierarchy.InvalidMethod, fmt.Errorf("class %s: slot %s has no overrider",
			s.graph.ClassName(class), intro.Name)
	case 1:
		return final[0], nil
	default:
		return hierarchy.InvalidMethod, &AmbiguousOverriderError{
			Class:  s.graph.Class(class),
			Slot:   intro,
			First:  s.graph.Class(s.graph.Method(final[0]).Class),
			Second: s.graph.Class(s.graph.Method(final[1]).Class),
		}
	}
}

func (s *Synthesizer) overrides(overrider, slot hierarchy.MethodID) bool {
	for _, overridden := range s.graph.Overridden(overrider) {
		if overridden == slot {
			return true
		}
	}
	return false
}

// covariant reports whether the override narrows the returned class. Both
// declarations must name a return class and the classes must differ.
func covariant(over, intro *hierarchy.Method) bool {
	return over.CovariantReturn != hierarchy.InvalidClass &&
		intro.CovariantReturn != hierarchy.InvalidClass &&
		over.CovariantReturn != intro.CovariantReturn
}

// sameAdjustments compares the numeric corrections of two optional thunks,
// a nil thunk counts as the empty correction.
func sameAdjustments(a, b *Info) bool {
	var left, right Info
	if a != nil {
		left = *a
	}
	if b != nil {
		right = *b
	}
	return left.This.Equal(right.This) && left.Return.Equal(right.Return)
}
