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

package hierarchy

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/vtforge/vtforge/pkg/logger"
	"github.com/vtforge/vtforge/pkg/pipeline"
)

// PhaseName declares this phase in scenario files
const PhaseName = "hierarchy"

var log = logger.GetLogger("hierarchy")

// Operator is the surface other phases use to reach the finalized graph
type Operator interface {
	Graph() *Graph
}

type Phase struct {
	config *PhaseConfig
	graph  *Graph
}

type PhaseConfig struct {
	pipeline.Config

	Active  bool          `mapstructure:"active"`
	Classes []ClassConfig `mapstructure:"classes"`
}

type ClassConfig struct {
	Name    string         `mapstructure:"name"`
	Mangled string         `mapstructure:"mangled"`
	Bases   []BaseConfig   `mapstructure:"bases"`
	Methods []MethodConfig `mapstructure:"methods"`
}

type BaseConfig struct {
	Class   string `mapstructure:"class"`
	Virtual bool   `mapstructure:"virtual"`
	Offset  *int64 `mapstructure:"offset"`
}

type MethodConfig struct {
	Name            string `mapstructure:"name"`
	Mangled         string `mapstructure:"mangled"`
	CovariantReturn string `mapstructure:"covariant_return"`
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
	graph, err := BuildFromConfig(p.config.Classes)
	if err != nil {
		return err
	}
	p.graph = graph
	log.Infof("hierarchy finalized, classes: %d", len(graph.Classes()))
	return nil
}

func (p *Phase) NotifyStartSuccess() {
}

func (p *Phase) Shutdown(ctx context.Context, mgr *pipeline.Manager) error {
	return nil
}

func (p *Phase) Graph() *Graph {
	return p.graph
}

// BuildFromConfig declares every scenario class into a builder and
// finalizes the graph. Bases and covariant returns reference classes by
// display name.
func BuildFromConfig(classes []ClassConfig) (*Graph, error) {
	builder := NewBuilder()
	var result *multierror.Error

	ids := make(map[string]ClassID, len(classes))
	for _, class := range classes {
		if _, exist := ids[class.Name]; exist {
			result = multierror.Append(result, fmt.Errorf("duplicate class name: %s", class.Name))
			continue
		}
		ids[class.Name] = builder.AddClass(class.Name, class.Mangled)
	}

	resolve := func(name string) (ClassID, error) {
		id, exist := ids[name]
		if !exist {
			return InvalidClass, fmt.Errorf("unknown class name: %s", name)
		}
		return id, nil
	}

	for _, class := range classes {
		owner := ids[class.Name]
		for _, base := range class.Bases {
			baseID, err := resolve(base.Class)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("class %s: %v", class.Name, err))
				continue
			}
			edge := Base{Class: baseID, Virtual: base.Virtual}
			if base.Offset != nil {
				edge.Placed = true
				edge.Offset = *base.Offset
			}
			builder.AddBase(owner, edge)
		}
		for _, method := range class.Methods {
			covariant := InvalidClass
			if method.CovariantReturn != "" {
				id, err := resolve(method.CovariantReturn)
				if err != nil {
					result = multierror.Append(result, fmt.Errorf("method %s.%s: %v", class.Name, method.Name, err))
					continue
				}
				covariant = id
			}
			builder.AddMethod(owner, method.Name, method.Mangled, covariant)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return builder.Finalize()
}
