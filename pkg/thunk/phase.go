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

package thunk

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vtforge/vtforge/pkg/abi"
	"github.com/vtforge/vtforge/pkg/adjust"
	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/layout"
	"github.com/vtforge/vtforge/pkg/logger"
	"github.com/vtforge/vtforge/pkg/pipeline"
	"github.com/vtforge/vtforge/pkg/target"
)

// PhaseName declares this phase in scenario files
const PhaseName = "dispatch"

var log = logger.GetLogger("dispatch")

// Operator is the surface other phases use to reach the dispatch plans
type Operator interface {
	Plans() map[hierarchy.ClassID]*Plan
	Strategy() abi.Strategy
}

type Phase struct {
	config *PhaseConfig

	strategy abi.Strategy
	plans    map[hierarchy.ClassID]*Plan
}

type PhaseConfig struct {
	pipeline.Config

	Active bool `mapstructure:"active"`
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
	return []string{target.PhaseName, hierarchy.PhaseName, layout.PhaseName}
}

func (p *Phase) Config() pipeline.ConfigInterface {
	return p.config
}

func (p *Phase) Start(ctx context.Context, mgr *pipeline.Manager) error {
	spec := mgr.FindPhase(target.PhaseName).(target.Operator).ActiveSpec()
	graph := mgr.FindPhase(hierarchy.PhaseName).(hierarchy.Operator).Graph()
	layouts := mgr.FindPhase(layout.PhaseName).(layout.Operator).Layouts()

	strategy, err := abi.New(spec, graph, layouts)
	if err != nil {
		return err
	}
	calc := adjust.NewCalculator(spec, graph, layouts, strategy)
	synthesizer := NewSynthesizer(graph, layouts, calc, strategy)

	classes := graph.Classes()
	plans := make([]*Plan, len(classes))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, class := range classes {
		if !graph.IsDynamic(class.ID) {
			continue
		}
		i := i
		id := class.ID
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			plan, err := synthesizer.Plan(id)
			if err != nil {
				return err
			}
			plans[i] = plan
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	p.strategy = strategy
	p.plans = make(map[hierarchy.ClassID]*Plan)
	thunks := 0
	for _, plan := range plans {
		if plan == nil {
			continue
		}
		p.plans[plan.Class] = plan
		thunks += len(plan.Thunks)
	}
	log.Infof("dispatch plans built, classes: %d, thunks: %d", len(p.plans), thunks)
	return nil
}

func (p *Phase) NotifyStartSuccess() {
}

func (p *Phase) Shutdown(ctx context.Context, mgr *pipeline.Manager) error {
	return nil
}

func (p *Phase) Plans() map[hierarchy.ClassID]*Plan {
	return p.plans
}

func (p *Phase) Strategy() abi.Strategy {
	return p.strategy
}
