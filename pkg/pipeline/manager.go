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

// Manager hands running phases access to each other
type Manager struct {
	phases      []Phase
	downHandler func(error)
}

func NewManager(phases []Phase, downHandler func(error)) *Manager {
	return &Manager{phases: phases, downHandler: downHandler}
}

// FindPhase returns the managed phase with the given name, or nil.
// Callers assert the result to the phase's operator interface.
func (m *Manager) FindPhase(name string) Phase {
	for _, phase := range m.phases {
		if phase.Name() == name {
			return phase
		}
	}
	return nil
}

// ShutdownPhases marks the session as finished, the error describes
// why when the session is aborted rather than completed
func (m *Manager) ShutdownPhases(err error) {
	if m.downHandler != nil {
		m.downHandler(err)
	}
}
