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

package layout

import (
	"context"

	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/logger"
	"github.com/vtforge/vtforge/pkg/pipeline"
	"github.com/vtforge/vtforge/pkg/target"
)

// PhaseName declares this phase in scenario files
const PhaseName = "layout"

var log = logger.GetLogger("layout")

// Operator is the surface other phases use to reach the layout table
type Operator interface {
	Layouts() *Table
}

type Phase struct {
	config *PhaseConfig

	table *Table
}

type PhaseConfig struct {
	pipeline.Config

	Active bool `mapstructure:"active"`
	Cache  int  `mapstructure:"cache"`
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
	return []string{target.PhaseName, hierarchy.PhaseName}
}

func (p *Phase) Config() pipeline.ConfigInterface {
	return p.config
}

func (p *Phase) Start(ctx context.Context, mgr *pipeline.Manager) error {
	spec := mgr.FindPhase(target.PhaseName).(target.Operator).ActiveSpec()
	graph := mgr.FindPhase(hierarchy.PhaseName).(hierarchy.Operator).Graph()

	table, err := NewTable(spec, graph, p.config.Cache)
	if err != nil {
		return err
	}
	if err := table.WarmAll(ctx); err != nil {
		return err
	}
	p.table = table
	log.Infof("layout table warmed, classes: %d", len(graph.Classes()))
	return nil
}

func (p *Phase) NotifyStartSuccess() {
}

func (p *Phase) Shutdown(ctx context.Context, mgr *pipeline.Manager) error {
	return nil
}

func (p *Phase) Layouts() *Table {
	return p.table
}
