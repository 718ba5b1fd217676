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

package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Info is a dotted revision, missing parts read as zero
type Info struct {
	Major int
	Minor int
	Patch int
}

func Build(major, minor, patch int) *Info {
	return &Info{Major: major, Minor: minor, Patch: patch}
}

// Parse reads "major[.minor[.patch]]" into an Info
func Parse(value string) (*Info, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ".", 4)
	if len(parts) > 3 {
		return nil, fmt.Errorf("the revision has too many parts: %s", value)
	}
	names := []string{"major", "minor", "patch"}
	numbers := make([]int, 3)
	for i, part := range parts {
		number, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("the %s revision is a number, revision: %s", names[i], value)
		}
		numbers[i] = number
	}
	return Build(numbers[0], numbers[1], numbers[2]), nil
}

// AtLeast reports whether v is the same revision as o or a later one
func (v *Info) AtLeast(o *Info) bool {
	var compare int
	compare = v.compare(compare, v.Major, o.Major)
	compare = v.compare(compare, v.Minor, o.Minor)
	compare = v.compare(compare, v.Patch, o.Patch)
	return compare >= 0
}

func (v *Info) compare(res, before, after int) int {
	if res != 0 {
		return res
	}
	if before > after {
		return 1
	} else if before == after {
		return 0
	}
	return -1
}

func (v *Info) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
