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

// Step is one inheritance edge crossed walking from a derived class toward
// a base
type Step struct {
	From    ClassID
	To      ClassID
	Virtual bool
}

// Path is a contiguous derived-to-base walk. The zero value is the empty
// path from a class to itself.
type Path struct {
	Steps []Step
}

func (p Path) IsEmpty() bool {
	return len(p.Steps) == 0
}

// Derived returns the walk's starting class, InvalidClass for the empty path
func (p Path) Derived() ClassID {
	if len(p.Steps) == 0 {
		return InvalidClass
	}
	return p.Steps[0].From
}

// Base returns the walk's final class, InvalidClass for the empty path
func (p Path) Base() ClassID {
	if len(p.Steps) == 0 {
		return InvalidClass
	}
	return p.Steps[len(p.Steps)-1].To
}

// VirtualSteps counts the virtual crossings on the path
func (p Path) VirtualSteps() int {
	count := 0
	for _, step := range p.Steps {
		if step.Virtual {
			count++
		}
	}
	return count
}

// LastVirtual returns the index of the last virtual crossing, -1 when the
// path never crosses a virtual base
func (p Path) LastVirtual() int {
	for i := len(p.Steps) - 1; i >= 0; i-- {
		if p.Steps[i].Virtual {
			return i
		}
	}
	return -1
}

// String prints the walked class identifiers, virtual crossings marked
// with "~>"
func (p Path) String() string {
	if len(p.Steps) == 0 {
		return "<empty>"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", p.Steps[0].From)
	for _, step := range p.Steps {
		if step.Virtual {
			sb.WriteString(" ~> ")
		} else {
			sb.WriteString(" -> ")
		}
		fmt.Fprintf(&sb, "%d", step.To)
	}
	return sb.String()
}

// DescribePath prints a path with class names instead of identifiers
func (g *Graph) DescribePath(p Path) string {
	if len(p.Steps) == 0 {
		return "<empty>"
	}
	var sb strings.Builder
	sb.WriteString(g.ClassName(p.Steps[0].From))
	for _, step := range p.Steps {
		if step.Virtual {
			sb.WriteString(" ~> ")
		} else {
			sb.WriteString(" -> ")
		}
		sb.WriteString(g.ClassName(step.To))
	}
	return sb.String()
}

// ClassName returns the display name of a class, a placeholder for
// identifiers outside the graph.
func (g *Graph) ClassName(id ClassID) string {
	if class := g.Class(id); class != nil {
		return class.Name
	}
	return fmt.Sprintf("<%d>", id)
}
