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

package pipeline

import "context"

// Phase define
type Phase interface {
	// Name of phase.
	// It would be used when declaring this phase in a scenario file or
	// when another phase needs to reference it.
	Name() string

	// RequiredPhases means which phases this phase is depended on,
	// The current phase started after the dependent phases are Start success.
	RequiredPhases() []string

	// Config of this phase
	// The config is automatically read from the scenario file before phase Start
	Config() ConfigInterface

	// Start phase
	// The phase needs to return the start result after its work is completed
	Start(ctx context.Context, mgr *Manager) error

	// NotifyStartSuccess when all phases have been start success
	NotifyStartSuccess()

	// Shutdown phase, the sequence of shutdown is the reverse of the phase Start
	// The shutdown would trigger in the following cases
	// 1. If other phases fail to start
	// 2. The phase is actively shutdown through Manager.ShutdownPhases
	// 3. The session runs to completion
	Shutdown(ctx context.Context, mgr *Manager) error
}

// ConfigInterface is implemented by every phase config
type ConfigInterface interface {
	IsActive() bool
}

// Config is the common part of each phase config
type Config struct {
	Active bool `mapstructure:"active"`
}

func (c *Config) IsActive() bool {
	return c.Active
}

var registry = make(map[string]Phase)

// Register a phase so scenario files can activate it by name.
// Usually called from the init function of the phase package.
func Register(phase Phase) {
	registry[phase.Name()] = phase
}

// Find the registered phase with the given name, or nil when absent
func Find(name string) Phase {
	return registry[name]
}
