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

package multiversion

import (
	"context"

	"github.com/vtforge/vtforge/pkg/logger"
	"github.com/vtforge/vtforge/pkg/pipeline"
	"github.com/vtforge/vtforge/pkg/target"
)

// PhaseName declares this phase in scenario files
const PhaseName = "multiversion"

var log = logger.GetLogger("multiversion")

// Operator is the surface other phases use to reach the resolver tables
type Operator interface {
	Descriptors() []*ResolverDescriptor
	Dispatcher() *Dispatcher
}

type Phase struct {
	config *PhaseConfig

	descriptors []*ResolverDescriptor
	dispatcher  *Dispatcher
}

type PhaseConfig struct {
	pipeline.Config

	Active    bool             `mapstructure:"active"`
	Functions []FunctionConfig `mapstructure:"functions"`
}

type FunctionConfig struct {
	Name       string            `mapstructure:"name"`
	Symbol     string            `mapstructure:"symbol"`
	Candidates []CandidateConfig `mapstructure:"candidates"`
}

type CandidateConfig struct {
	Requirement string `mapstructure:"requirement"`
	Symbol      string `mapstructure:"symbol"`
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
	return []string{target.PhaseName}
}

func (p *Phase) Config() pipeline.ConfigInterface {
	return p.config
}

func (p *Phase) Start(ctx context.Context, mgr *pipeline.Manager) error {
	features := mgr.FindPhase(target.PhaseName).(target.Operator).Features()
	builder := NewBuilder(features)
	dispatcher := NewDispatcher(nil)

	descriptors := make([]*ResolverDescriptor, 0, len(p.config.Functions))
	for _, function := range p.config.Functions {
		fn := Function{Name: function.Name, Symbol: function.Symbol}
		for _, candidate := range function.Candidates {
			fn.Candidates = append(fn.Candidates, Candidate{
				Requirement: candidate.Requirement,
				Symbol:      candidate.Symbol,
			})
		}
		descriptor, err := builder.BuildResolver(fn)
		if err != nil {
			return err
		}
		descriptors = append(descriptors, descriptor)
		dispatcher.Register(descriptor)
	}

	p.descriptors = descriptors
	p.dispatcher = dispatcher
	log.Infof("multiversion resolvers built, functions: %d", len(descriptors))
	return nil
}

func (p *Phase) NotifyStartSuccess() {
}

func (p *Phase) Shutdown(ctx context.Context, mgr *pipeline.Manager) error {
	return nil
}

func (p *Phase) Descriptors() []*ResolverDescriptor {
	return p.descriptors
}

func (p *Phase) Dispatcher() *Dispatcher {
	return p.dispatcher
}
