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

import (
	"context"
	"fmt"
	"sync"

	"github.com/vtforge/vtforge/pkg/config"
	"github.com/vtforge/vtforge/pkg/logger"
)

var log = logger.GetLogger("pipeline", "starter")

// RunScenario loads a scenario file, activates every phase it declares,
// and drives the session to completion
func RunScenario(ctx context.Context, file string, startUpSuccessCallback func(*Manager)) error {
	// read scenario file
	conf, err := config.Load(file)
	if err != nil {
		return fmt.Errorf("load scenario error: %s, %v", file, err)
	}

	// find all declared phases
	phases, err := findAllDeclaredPhases(conf)
	if err != nil {
		return err
	}

	// run all phases
	starter := NewStarter(phases)
	return starter.Run(ctx, startUpSuccessCallback)
}

func findAllDeclaredPhases(conf *config.Config) ([]Phase, error) {
	phaseNames := conf.TopLevelKeys()
	if len(phaseNames) == 0 {
		return nil, fmt.Errorf("no phases declared, please update the scenario")
	}
	phases := make([]Phase, 0)
	for _, name := range phaseNames {
		// find phase
		phase := Find(name)
		if phase == nil {
			return nil, fmt.Errorf("could not found phase: %s", name)
		}
		// read config
		if err := conf.UnmarshalKey(name, phase.Config()); err != nil {
			return nil, fmt.Errorf("read %s phase config error: %v", name, err)
		}
		phases = append(phases, phase)
	}
	return phases, nil
}

type Starter struct {
	original []Phase

	activePhases  []Phase
	phaseMap      map[string]Phase
	visited       map[string]bool
	orderedPhases []Phase
	startedPhases []Phase
	phaseManager  *Manager
}

func NewStarter(phases []Phase) *Starter {
	activePhases := make([]Phase, 0)
	for _, phase := range phases {
		if phase.Config().IsActive() {
			activePhases = append(activePhases, phase)
		}
	}
	phaseMap := make(map[string]Phase)
	for _, phase := range phases {
		phaseMap[phase.Name()] = phase
	}
	return &Starter{
		original:      phases,
		activePhases:  activePhases,
		phaseMap:      phaseMap,
		orderedPhases: make([]Phase, 0),
		visited:       make(map[string]bool),
		startedPhases: make([]Phase, 0),
	}
}

// Run starts every active phase in dependency order, notifies them once all
// are up, then shuts them down in reverse order. The session is one-shot:
// each phase performs its work inside Start, so Run returns after the last
// phase completes instead of blocking
func (s *Starter) Run(ctx context.Context, startUpSuccessCallback func(*Manager)) error {
	// resolve phase dependencies
	if err := s.ResolveDependency(); err != nil {
		return err
	}

	if len(s.orderedPhases) == 0 {
		return fmt.Errorf("no phase is active")
	}

	var abort struct {
		once sync.Once
		err  error
	}
	s.phaseManager = NewManager(s.orderedPhases, func(err error) {
		abort.once.Do(func() {
			abort.err = err
		})
	})

	// startup phases
	defer s.shutdownPhases(ctx)
	for _, phase := range s.orderedPhases {
		phaseName := phase.Name()
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("session cancelled before phase %s: %v", phaseName, err)
		}

		// start phase
		log.Debugf("starting phase %s", phaseName)
		if err := phase.Start(ctx, s.phaseManager); err != nil {
			return fmt.Errorf("start phase %s failure: %v", phaseName, err)
		}

		log.Infof("phase %s start successful", phaseName)

		// append to started phases
		s.startedPhases = append(s.startedPhases, phase)
	}

	// notify all phases setup success
	for _, phase := range s.startedPhases {
		phase.NotifyStartSuccess()
	}
	if startUpSuccessCallback != nil {
		startUpSuccessCallback(s.phaseManager)
	}

	if abort.err != nil {
		log.Warnf("detect phase shutdown notify: %v", abort.err)
	}
	return abort.err
}

func (s *Starter) ResolveDependency() error {
	// check has required phase is not include
	for _, phase := range s.activePhases {
		for _, reqPhase := range phase.RequiredPhases() {
			if s.phaseMap[reqPhase] == nil {
				return fmt.Errorf("phase %s is required %s, please declare in the scenario", phase.Name(), reqPhase)
			}
		}
	}

	// append all phases
	for _, phase := range s.activePhases {
		if err := s.appendToResolve(phase, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *Starter) appendToResolve(phase, parentPhase Phase) error {
	if s.visited[phase.Name()] {
		for _, addedPhase := range s.orderedPhases {
			if addedPhase.Name() == phase.Name() {
				return nil
			}
		}
		if parentPhase == nil {
			return fmt.Errorf("found cyclic dependency in %s", phase.Name())
		}
		return fmt.Errorf("found cyclic dependency between in %s and %s", phase.Name(), parentPhase.Name())
	}
	s.visited[phase.Name()] = true
	for _, requiredPhase := range phase.RequiredPhases() {
		if err := s.appendToResolve(s.phaseMap[requiredPhase], phase); err != nil {
			return err
		}
	}
	s.orderedPhases = append(s.orderedPhases, phase)
	return nil
}

func (s *Starter) shutdownPhases(ctx context.Context) {
	for i := len(s.startedPhases) - 1; i >= 0; i-- {
		phase := s.startedPhases[i]
		err := phase.Shutdown(ctx, s.phaseManager)
		if err != nil {
			log.Warnf("shutdown phase %s failure: %v", phase.Name(), err)
		} else {
			log.Infof("phase %s shutdown successful", phase.Name())
		}
	}
}
