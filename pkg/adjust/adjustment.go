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
	"github.com/vtforge/vtforge/pkg/hierarchy"
)

// ThisAdjustment corrects the receiver before an overriding method body
// runs. All offsets are signed bytes, added to move a pointer from the
// adjustment source toward its target.
type ThisAdjustment struct {
	// NonVirtual is applied last, after any virtual displacement
	NonVirtual int64
	Virtual    VirtualThis

	// Source and Target name the sub-objects the receiver moves between.
	// Consumers on targets without flat byte addressing dispatch on them,
	// equality ignores them.
	Source hierarchy.ClassID
	Target hierarchy.ClassID

	// Path is the full walk, some consumers need the intermediate classes
	Path hierarchy.Path
}

// IsEmpty reports a no-op adjustment.
func (a ThisAdjustment) IsEmpty() bool {
	return a.NonVirtual == 0 && a.Virtual.IsEmpty()
}

// Equal compares the applied offsets only, two walks producing the same
// correction are the same adjustment.
func (a ThisAdjustment) Equal(other ThisAdjustment) bool {
	return a.NonVirtual == other.NonVirtual && a.Virtual.Equal(other.Virtual)
}

// Less is a strict weak order over the applied offsets.
func (a ThisAdjustment) Less(other ThisAdjustment) bool {
	if a.NonVirtual != other.NonVirtual {
		return a.NonVirtual < other.NonVirtual
	}
	return a.Virtual.Less(other.Virtual)
}

// ReturnAdjustment corrects a covariantly returned pointer before it
// reaches the caller.
type ReturnAdjustment struct {
	NonVirtual int64
	Virtual    VirtualReturn

	// Source and Target name the returned and the expected class. They
	// survive only on targets without flat byte addressing and
	// participate in equality, both InvalidClass otherwise.
	Source hierarchy.ClassID
	Target hierarchy.ClassID
}

// IsEmpty reports a no-op adjustment.
func (a ReturnAdjustment) IsEmpty() bool {
	return a.NonVirtual == 0 && a.Virtual.IsEmpty()
}

// Equal includes the endpoints, they are part of the correction on
// targets that keep them.
func (a ReturnAdjustment) Equal(other ReturnAdjustment) bool {
	return a.NonVirtual == other.NonVirtual && a.Virtual.Equal(other.Virtual) &&
		a.Source == other.Source && a.Target == other.Target
}

// Less is a strict weak order over the applied offsets.
func (a ReturnAdjustment) Less(other ReturnAdjustment) bool {
	if a.NonVirtual != other.NonVirtual {
		return a.NonVirtual < other.NonVirtual
	}
	return a.Virtual.Less(other.Virtual)
}
