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

// Package thunk synthesizes the trampoline descriptors handed to code
// emission, one per vtable slot whose final overrider cannot be reached
// by a direct entry.
package thunk

import (
	"sort"

	"github.com/vtforge/vtforge/pkg/adjust"
	"github.com/vtforge/vtforge/pkg/hierarchy"
)

// Info is one thunk descriptor. Method is populated only when the active
// convention tells thunks with numerically identical adjustments apart by
// the method they override, both adjustments may then be empty.
// MemberPointer marks a thunk serving a member function pointer call,
// which loads the target from the vtable instead of jumping directly.
type Info struct {
	This   adjust.ThisAdjustment
	Return adjust.ReturnAdjustment

	Method hierarchy.MethodID

	MemberPointer bool
}

// IsEmpty reports a no-op descriptor, such a thunk is elided, never emitted.
func (i Info) IsEmpty() bool {
	return i.This.IsEmpty() && i.Return.IsEmpty() && i.Method == hierarchy.InvalidMethod
}

// Equal compares the adjustments and the disambiguator. The member pointer
// flag does not participate, it selects a calling form, not a distinct thunk.
func (i Info) Equal(other Info) bool {
	return i.This.Equal(other.This) && i.Return.Equal(other.Return) && i.Method == other.Method
}

// Compare orders descriptors by receiver adjustment, then return adjustment,
// then disambiguator. The result is negative, zero or positive.
func (i Info) Compare(other Info) int {
	if i.This.Less(other.This) {
		return -1
	}
	if other.This.Less(i.This) {
		return 1
	}
	if i.Return.Less(other.Return) {
		return -1
	}
	if other.Return.Less(i.Return) {
		return 1
	}
	if i.Method != other.Method {
		if i.Method < other.Method {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether i orders before other under Compare.
func (i Info) Less(other Info) bool {
	return i.Compare(other) < 0
}

// ForMemberPointer returns the member function pointer variant of the
// descriptor. The pointed-to slot can be overridden again in classes unknown
// where the pointer was formed, so the call always redispatches.
func (i Info) ForMemberPointer() Info {
	i.MemberPointer = true
	return i
}

// Dedupe drops empty descriptors and collapses equal ones, keeping the first
// occurrence of each. The input is not modified.
func Dedupe(infos []Info) []Info {
	out := make([]Info, 0, len(infos))
	for _, info := range infos {
		if info.IsEmpty() {
			continue
		}
		seen := false
		for _, kept := range out {
			if kept.Equal(info) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, info)
		}
	}
	return out
}

// Sort orders descriptors in place under Compare, the emission order.
func Sort(infos []Info) {
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Less(infos[j])
	})
}
