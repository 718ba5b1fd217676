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

package emit

import (
	"context"
	"io"
	"os"

	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/layout"
	"github.com/vtforge/vtforge/pkg/logger"
	"github.com/vtforge/vtforge/pkg/multiversion"
	"github.com/vtforge/vtforge/pkg/pipeline"
	"github.com/vtforge/vtforge/pkg/target"
	"github.com/vtforge/vtforge/pkg/thunk"
)

// PhaseName declares this phase in scenario files
const PhaseName = "report"

var log = logger.GetLogger("report")

type Phase struct {
	config *PhaseConfig
}

type PhaseConfig struct {
	pipeline.Config

	Active bool `mapstructure:"active"`

	// Output is the report path, standard output when empty
	Output string `mapstructure:"output"`
}

func (c *PhaseConfig) IsActive() bool {
	return c.Active
}

func NewPhase() *Phase {
	return &Phase{config: &PhaseConfig{}}
}

func init() {
	pipeline.Register(NewPhase())
}

func (p *Phase) Name() string {
	return PhaseName
}

func (p *Phase) RequiredPhases() []string {
	return []string{thunk.PhaseName, multiversion.PhaseName}
}

func (p *Phase) Config() pipeline.ConfigInterface {
	return p.config
}

func (p *Phase) Start(ctx context.Context, mgr *pipeline.Manager) error {
	spec := mgr.FindPhase(target.PhaseName).(target.Operator).ActiveSpec()
	graph := mgr.FindPhase(hierarchy.PhaseName).(hierarchy.Operator).Graph()
	layouts := mgr.FindPhase(layout.PhaseName).(layout.Operator).Layouts()
	plans := mgr.FindPhase(thunk.PhaseName).(thunk.Operator).Plans()
	descriptors := mgr.FindPhase(multiversion.PhaseName).(multiversion.Operator).Descriptors()

	var writer io.Writer = os.Stdout
	if p.config.Output != "" {
		file, err := os.Create(p.config.Output)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	session := NewSession(spec, NewTextSink(writer, graph, spec))
	for _, class := range graph.Classes() {
		plan := plans[class.ID]
		if plan == nil {
			continue
		}
		rec, err := layouts.Record(class.ID)
		if err != nil {
			return err
		}
		if err := session.EmitPlan(rec, plan); err != nil {
			return err
		}
	}
	for _, descriptor := range descriptors {
		if err := session.EmitResolver(descriptor); err != nil {
			return err
		}
	}
	if err := session.Finish(); err != nil {
		return err
	}
	log.Infof("report session %s written, classes: %d, resolvers: %d",
		session.ID, len(plans), len(descriptors))
	return nil
}

func (p *Phase) NotifyStartSuccess() {
}

func (p *Phase) Shutdown(ctx context.Context, mgr *pipeline.Manager) error {
	return nil
}
