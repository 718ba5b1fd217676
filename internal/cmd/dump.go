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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vtforge/vtforge/pkg/pipeline"

	// register all pipeline phases
	_ "github.com/vtforge/vtforge/pkg/emit"
	_ "github.com/vtforge/vtforge/pkg/hierarchy"
	_ "github.com/vtforge/vtforge/pkg/layout"
	_ "github.com/vtforge/vtforge/pkg/multiversion"
	_ "github.com/vtforge/vtforge/pkg/target"
	_ "github.com/vtforge/vtforge/pkg/thunk"
)

func newDumpCmd() *cobra.Command {
	scenarioPath := ""
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "run a scenario and dump its dispatch tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(scenarioPath, nil)
		},
	}
	cmd.Flags().StringVarP(&scenarioPath, "scenario", "c", "configs/vtforge_scenario.yaml", "the vtforge scenario file path")
	return cmd
}

func runScenario(scenarioPath string, callback func(*pipeline.Manager)) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	return pipeline.RunScenario(ctx, scenarioPath, callback)
}
