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
	"github.com/spf13/cobra"

	"github.com/vtforge/vtforge/pkg/logger"
)

func newRootCmd() *cobra.Command {
	logLevel := ""
	cmd := &cobra.Command{
		Use:          "vtforge",
		Short:        "compute C++ dynamic dispatch plans for a scenario",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.SetupLogger(&logger.Config{Level: logLevel})
		},
	}
	cmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "the logging level, such as debug or warning")
	cmd.AddCommand(newDumpCmd(), newResolveCmd(), newVersionCmd())
	return cmd
}

// Execute the vtforge command line
func Execute() error {
	return newRootCmd().Execute()
}
