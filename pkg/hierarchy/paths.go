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

package hierarchy

import (
	"fmt"
	"strings"
)

// NotAncestorError reports a path query whose base class is not reachable
// from the derived class, a contract violation of the caller
type NotAncestorError struct {
	Derived, Base *Class
}

func (e *NotAncestorError) Error() string {
	return fmt.Sprintf("class %s is not an ancestor of class %s", e.Base.Name, e.Derived.Name)
}

// AmbiguousBaseError reports a base class reachable through several
// distinct non-collapsing routes where the caller required a unique one
type AmbiguousBaseError struct {
	Derived, Base *Class
}

func (e *AmbiguousBaseError) Error() string {
	return fmt.Sprintf("base class %s is ambiguous in class %s", e.Base.Name, e.Derived.Name)
}

// EnumeratePaths returns every distinct inheritance walk from derived down
// to base, in depth-first declaration order. Empty when base is not an
// ancestor of derived.
func (g *Graph) EnumeratePaths(derived, base ClassID) []Path {
	if g.Class(derived) == nil || g.Class(base) == nil {
		return nil
	}
	paths := make([]Path, 0)
	steps := make([]Step, 0)
	var walk func(current ClassID)
	walk = func(current ClassID) {
		if current == base && len(steps) > 0 {
			copied := make([]Step, len(steps))
			copy(copied, steps)
			paths = append(paths, Path{Steps: copied})
			return
		}
		for _, edge := range g.Class(current).Bases {
			steps = append(steps, Step{From: current, To: edge.Class, Virtual: edge.Virtual})
			walk(edge.Class)
			steps = steps[:len(steps)-1]
		}
	}
	walk(derived)
	return paths
}

// UniquePath resolves the single logical walk from derived to base that
// adjustment computation may use.
//
// Walks whose last virtual crossing lands on the same virtual base with
// the same steps below it collapse to one, a virtual base has one address
// per complete object no matter how many routes reach it. A base reachable
// both virtually and non-virtually resolves to the virtual walk. Distinct
// non-collapsing routes make the base ambiguous.
func (g *Graph) UniquePath(derived, base ClassID) (Path, error) {
	derivedClass := g.Class(derived)
	baseClass := g.Class(base)
	if derivedClass == nil || baseClass == nil {
		return Path{}, fmt.Errorf("unknown class in path query: %d -> %d", derived, base)
	}
	if derived == base {
		return Path{}, nil
	}

	paths := g.EnumeratePaths(derived, base)
	if len(paths) == 0 {
		return Path{}, &NotAncestorError{Derived: derivedClass, Base: baseClass}
	}

	virtual := make([]Path, 0)
	nonVirtual := make([]Path, 0)
	for _, path := range paths {
		if path.LastVirtual() >= 0 {
			virtual = append(virtual, path)
		} else {
			nonVirtual = append(nonVirtual, path)
		}
	}

	if len(virtual) > 0 {
		first := virtual[0]
		firstKey := collapseKey(first)
		for _, path := range virtual[1:] {
			if collapseKey(path) != firstKey {
				return Path{}, &AmbiguousBaseError{Derived: derivedClass, Base: baseClass}
			}
		}
		return first, nil
	}

	if len(nonVirtual) > 1 {
		return Path{}, &AmbiguousBaseError{Derived: derivedClass, Base: baseClass}
	}
	return nonVirtual[0], nil
}

// collapseKey identifies the part of a virtual walk deciding the
// adjustment: the last virtual base crossed and the class sequence below
// it. The prefix above the crossing is irrelevant, every route ends at the
// same shared sub-object.
func collapseKey(p Path) string {
	last := p.LastVirtual()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", p.Steps[last].To)
	for _, step := range p.Steps[last+1:] {
		fmt.Fprintf(&sb, "/%d", step.To)
	}
	return sb.String()
}
