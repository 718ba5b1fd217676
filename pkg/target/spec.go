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

// Package target describes the compilation targets the adjustment pipeline
// can lower for: the numeric layout constants, the ABI convention tag, and
// the CPU feature model used by multiversion dispatch.
package target

import (
	"fmt"
	"sort"
	"strings"
)

// Convention selects how a target encodes the virtual part of receiver and
// return adjustments.
type Convention int

const (
	// ConventionOffsetTable reads virtual base offsets from hidden slots
	// placed next to the vtable address point.
	ConventionOffsetTable Convention = iota
	// ConventionVBTable reads virtual base offsets from a per-class table
	// addressed through a vbptr stored inside the object.
	ConventionVBTable
)

func (c Convention) String() string {
	switch c {
	case ConventionOffsetTable:
		return "offset-table"
	case ConventionVBTable:
		return "vbtable"
	}
	return "unknown"
}

// Spec describes one compilation target. Specs are read-only once built,
// every consumer receives them as plain configuration values.
type Spec struct {
	Name string

	// PointerWidth and PointerAlign are in bytes
	PointerWidth int
	PointerAlign int

	Convention Convention

	// ByteAddressable reports whether object layout is a flat byte image.
	// Targets with an object memory model keep the endpoint class
	// identities on return adjustments, so emission can rebuild typed
	// references instead of doing byte arithmetic.
	ByteAddressable bool

	Clobbers []string
}

// ValidClobber reports whether an inline-assembly clobber name is legal on
// this target. Object-model targets accept any name.
func (s *Spec) ValidClobber(name string) bool {
	if !s.ByteAddressable {
		return true
	}
	for _, clobber := range s.Clobbers {
		if clobber == name {
			return true
		}
	}
	return false
}

var x86Clobbers = []string{
	"memory", "cc",
	"ax", "bx", "cx", "dx", "si", "di", "sp", "bp",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
}

var builtinSpecs = map[string]*Spec{
	"x86_64-offsettable": {
		Name:            "x86_64-offsettable",
		PointerWidth:    8,
		PointerAlign:    8,
		Convention:      ConventionOffsetTable,
		ByteAddressable: true,
		Clobbers:        x86Clobbers,
	},
	"x86_64-vbtable": {
		Name:            "x86_64-vbtable",
		PointerWidth:    8,
		PointerAlign:    8,
		Convention:      ConventionVBTable,
		ByteAddressable: true,
		Clobbers:        x86Clobbers,
	},
	"wasm32-object": {
		Name:            "wasm32-object",
		PointerWidth:    4,
		PointerAlign:    4,
		Convention:      ConventionOffsetTable,
		ByteAddressable: false,
	},
}

// Lookup returns the builtin spec with the given target name
func Lookup(name string) (*Spec, error) {
	spec := builtinSpecs[name]
	if spec == nil {
		return nil, fmt.Errorf("unknown target: %s, supported: %s", name, strings.Join(Names(), ", "))
	}
	return spec, nil
}

// Names lists the builtin target names in stable order
func Names() []string {
	names := make([]string, 0, len(builtinSpecs))
	for name := range builtinSpecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
