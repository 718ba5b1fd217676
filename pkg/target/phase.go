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

package target

import (
	"context"

	"github.com/vtforge/vtforge/pkg/logger"
	"github.com/vtforge/vtforge/pkg/pipeline"
)

// PhaseName declares this phase in scenario files
const PhaseName = "target"

var log = logger.GetLogger("target")

// Operator is the surface other phases use to reach the selected target
type Operator interface {
	ActiveSpec() *Spec
	Features() *FeatureTable
}

type Phase struct {
	config *PhaseConfig

	spec     *Spec
	features *FeatureTable
}

type PhaseConfig struct {
	pipeline.Config

	Active bool   `mapstructure:"active"`
	Triple string `mapstructure:"triple"`
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
	return nil
}

func (p *Phase) Config() pipeline.ConfigInterface {
	return p.config
}

func (p *Phase) Start(ctx context.Context, mgr *pipeline.Manager) error {
	spec, err := Lookup(p.config.Triple)
	if err != nil {
		return err
	}
	p.spec = spec
	p.features = NewFeatureTable()
	log.Infof("target %s selected, convention: %s", spec.Name, spec.Convention)
	return nil
}

func (p *Phase) NotifyStartSuccess() {
}

func (p *Phase) Shutdown(ctx context.Context, mgr *pipeline.Manager) error {
	return nil
}

func (p *Phase) ActiveSpec() *Spec {
	return p.spec
}

func (p *Phase) Features() *FeatureTable {
	return p.features
}
