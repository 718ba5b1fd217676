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

	"github.com/hashicorp/go-multierror"
)

// Builder accumulates class declarations and produces an immutable Graph
type Builder struct {
	classes []*Class
	methods []*Method
	errs    *multierror.Error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// AddClass declares a class and returns its identifier
func (b *Builder) AddClass(name, mangledName string) ClassID {
	id := ClassID(len(b.classes) + 1)
	if name == "" {
		b.errs = multierror.Append(b.errs, fmt.Errorf("class %d: empty name", id))
	}
	b.classes = append(b.classes, &Class{ID: id, Name: name, MangledName: mangledName})
	return id
}

// AddBase appends a direct base edge to a declared class
func (b *Builder) AddBase(class ClassID, base Base) {
	owner := b.class(class)
	if owner == nil {
		b.errs = multierror.Append(b.errs, fmt.Errorf("add base: unknown class %d", class))
		return
	}
	owner.Bases = append(owner.Bases, base)
}

// AddMethod declares a virtual method on a class and returns its identifier
func (b *Builder) AddMethod(class ClassID, name, mangledName string, covariantReturn ClassID) MethodID {
	owner := b.class(class)
	if owner == nil {
		b.errs = multierror.Append(b.errs, fmt.Errorf("add method %s: unknown class %d", name, class))
		return InvalidMethod
	}
	id := MethodID(len(b.methods) + 1)
	if name == "" {
		b.errs = multierror.Append(b.errs, fmt.Errorf("class %s: method %d has empty name", owner.Name, id))
	}
	b.methods = append(b.methods, &Method{
		ID:              id,
		Class:           class,
		Name:            name,
		MangledName:     mangledName,
		CovariantReturn: covariantReturn,
	})
	owner.Methods = append(owner.Methods, id)
	return id
}

func (b *Builder) class(id ClassID) *Class {
	if id < 1 || int(id) > len(b.classes) {
		return nil
	}
	return b.classes[id-1]
}

// Finalize validates the accumulated declarations and freezes them into a
// Graph. Every path query requires a finalized graph, nothing may be added
// afterwards.
func (b *Builder) Finalize() (*Graph, error) {
	result := b.errs
	g := &Graph{classes: b.classes, methods: b.methods}

	mangled := make(map[string]ClassID, len(b.classes))
	for _, class := range b.classes {
		if class.MangledName != "" {
			if prev, exist := mangled[class.MangledName]; exist {
				result = multierror.Append(result, fmt.Errorf("classes %s and %s share mangled name %s",
					b.class(prev).Name, class.Name, class.MangledName))
			} else {
				mangled[class.MangledName] = class.ID
			}
		}

		seen := make(map[ClassID]bool, len(class.Bases))
		for _, base := range class.Bases {
			if b.class(base.Class) == nil {
				result = multierror.Append(result, fmt.Errorf("class %s: unknown base %d", class.Name, base.Class))
				continue
			}
			if base.Class == class.ID {
				result = multierror.Append(result, fmt.Errorf("class %s inherits itself", class.Name))
				continue
			}
			if seen[base.Class] {
				result = multierror.Append(result, fmt.Errorf("class %s: duplicate direct base %s",
					class.Name, b.class(base.Class).Name))
			}
			seen[base.Class] = true
		}
	}

	for _, method := range b.methods {
		if method.CovariantReturn != InvalidClass && b.class(method.CovariantReturn) == nil {
			result = multierror.Append(result, fmt.Errorf("method %s: unknown covariant return class %d",
				method.Name, method.CovariantReturn))
		}
	}

	// cycle detection needs the edges above to be well formed
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

// Graph is a finalized, immutable inheritance graph
type Graph struct {
	classes []*Class
	methods []*Method
}

func (g *Graph) checkAcyclic() error {
	const (
		white = iota
		gray
		black
	)
	colors := make(map[ClassID]int, len(g.classes))
	var visit func(id ClassID) error
	visit = func(id ClassID) error {
		colors[id] = gray
		for _, base := range g.Class(id).Bases {
			switch colors[base.Class] {
			case gray:
				return fmt.Errorf("inheritance cycle through %s and %s",
					g.Class(id).Name, g.Class(base.Class).Name)
			case white:
				if err := visit(base.Class); err != nil {
					return err
				}
			}
		}
		colors[id] = black
		return nil
	}
	for _, class := range g.classes {
		if colors[class.ID] == white {
			if err := visit(class.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Class returns the class with the given identifier, nil when out of range
func (g *Graph) Class(id ClassID) *Class {
	if id < 1 || int(id) > len(g.classes) {
		return nil
	}
	return g.classes[id-1]
}

// Method returns the method with the given identifier, nil when out of range
func (g *Graph) Method(id MethodID) *Method {
	if id < 1 || int(id) > len(g.methods) {
		return nil
	}
	return g.methods[id-1]
}

// Classes in declaration order
func (g *Graph) Classes() []*Class {
	return g.classes
}

// FindClass returns the first class with the given display name,
// InvalidClass when absent
func (g *Graph) FindClass(name string) ClassID {
	for _, class := range g.classes {
		if class.Name == name {
			return class.ID
		}
	}
	return InvalidClass
}

// IsAncestor reports whether base is reachable from derived through any
// chain of inheritance edges. A class is not its own ancestor.
func (g *Graph) IsAncestor(derived, base ClassID) bool {
	if g.Class(derived) == nil || g.Class(base) == nil {
		return false
	}
	for _, ancestor := range g.Ancestors(derived) {
		if ancestor == base {
			return true
		}
	}
	return false
}

// Ancestors returns every class reachable from the given one, in preorder
// with each class listed at first discovery
func (g *Graph) Ancestors(id ClassID) []ClassID {
	visited := make(map[ClassID]bool)
	ancestors := make([]ClassID, 0)
	var visit func(current ClassID)
	visit = func(current ClassID) {
		for _, base := range g.Class(current).Bases {
			if !visited[base.Class] {
				visited[base.Class] = true
				ancestors = append(ancestors, base.Class)
				visit(base.Class)
			}
		}
	}
	if g.Class(id) != nil {
		visit(id)
	}
	return ancestors
}

// VirtualBases returns every virtual base reachable from the class, in
// inheritance graph discovery order
func (g *Graph) VirtualBases(id ClassID) []ClassID {
	if g.Class(id) == nil {
		return nil
	}
	visited := make(map[ClassID]bool)
	recorded := make(map[ClassID]bool)
	vbases := make([]ClassID, 0)
	var visit func(current ClassID)
	visit = func(current ClassID) {
		for _, base := range g.Class(current).Bases {
			if base.Virtual && !recorded[base.Class] {
				recorded[base.Class] = true
				vbases = append(vbases, base.Class)
			}
			if !visited[base.Class] {
				visited[base.Class] = true
				visit(base.Class)
			}
		}
	}
	visit(id)
	return vbases
}

// IsDynamic reports whether the class declares or inherits virtual methods
func (g *Graph) IsDynamic(id ClassID) bool {
	class := g.Class(id)
	if class == nil {
		return false
	}
	if len(class.Methods) > 0 {
		return true
	}
	for _, ancestor := range g.Ancestors(id) {
		if len(g.Class(ancestor).Methods) > 0 {
			return true
		}
	}
	return false
}

// Overridden returns the ancestor methods sharing the given method's name,
// the vtable slots it overrides, in ancestor discovery order
func (g *Graph) Overridden(id MethodID) []MethodID {
	method := g.Method(id)
	if method == nil {
		return nil
	}
	overridden := make([]MethodID, 0)
	for _, ancestor := range g.Ancestors(method.Class) {
		for _, candidate := range g.Class(ancestor).Methods {
			if g.Method(candidate).Name == method.Name {
				overridden = append(overridden, candidate)
			}
		}
	}
	return overridden
}
