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
	"strings"

	"github.com/spf13/cobra"

	"github.com/vtforge/vtforge/pkg/multiversion"
	"github.com/vtforge/vtforge/pkg/pipeline"
	"github.com/vtforge/vtforge/pkg/target"
)

func newResolveCmd() *cobra.Command {
	scenarioPath := ""
	featureList := ""
	cmd := &cobra.Command{
		Use:   "resolve [function ...]",
		Short: "pick multiversion implementations the way the loader would",
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolve(scenarioPath, featureList, args)
		},
	}
	cmd.Flags().StringVarP(&scenarioPath, "scenario", "c", "configs/vtforge_scenario.yaml", "the vtforge scenario file path")
	cmd.Flags().StringVarP(&featureList, "features", "f", "", "comma separated features overriding the host probe")
	return cmd
}

func resolve(scenarioPath, featureList string, names []string) error {
	var resolveErr error
	err := runScenario(scenarioPath, func(mgr *pipeline.Manager) {
		phase := mgr.FindPhase(multiversion.PhaseName)
		if phase == nil {
			resolveErr = fmt.Errorf("the scenario does not declare the %s phase", multiversion.PhaseName)
			return
		}
		resolveErr = resolveFunctions(phase.(multiversion.Operator), featureList, names)
	})
	if err != nil {
		return err
	}
	return resolveErr
}

func resolveFunctions(operator multiversion.Operator, featureList string, names []string) error {
	dispatcher := operator.Dispatcher()
	if featureList != "" {
		// replay the selection against the requested features instead of the host
		features := target.NewFeatureSet(strings.Split(featureList, ",")...)
		dispatcher = multiversion.NewDispatcher(func() target.FeatureSet {
			return features
		})
		for _, descriptor := range operator.Descriptors() {
			dispatcher.Register(descriptor)
		}
	}

	if len(names) == 0 {
		for _, descriptor := range operator.Descriptors() {
			names = append(names, descriptor.Name)
		}
	}
	for _, name := range names {
		symbol, err := dispatcher.Resolve(name)
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", name, symbol)
	}
	return nil
}
