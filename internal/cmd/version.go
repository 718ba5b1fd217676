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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vtforge/vtforge/pkg/tools/version"
)

// toolVersion is stamped through ldflags on release builds
var toolVersion = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the vtforge version",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := version.Parse(toolVersion)
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	}
}
