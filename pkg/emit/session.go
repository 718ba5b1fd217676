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

// Package emit hands the computed dispatch artifacts to their consumers.
// Nothing here produces instructions, a sink receives descriptors and
// renders or records them.
package emit

import (
	"github.com/google/uuid"

	"github.com/vtforge/vtforge/pkg/adjust"
	"github.com/vtforge/vtforge/pkg/layout"
	"github.com/vtforge/vtforge/pkg/multiversion"
	"github.com/vtforge/vtforge/pkg/target"
	"github.com/vtforge/vtforge/pkg/thunk"
)

// Sink consumes the artifacts of one emission session.
type Sink interface {
	ConsumePlan(rec *layout.Record, plan *thunk.Plan) error
	ConsumeResolver(descriptor *multiversion.ResolverDescriptor) error
	Close() error
}

// Session ties one emission run to a target. Every descriptor passing
// through is checked against the target's convention, a foreign descriptor
// kind is an error, never silently forwarded.
type Session struct {
	ID     uuid.UUID
	Target *target.Spec
	Sink   Sink
}

func NewSession(spec *target.Spec, sink Sink) *Session {
	return &Session{
		ID:     uuid.New(),
		Target: spec,
		Sink:   sink,
	}
}

func (s *Session) EmitPlan(rec *layout.Record, plan *thunk.Plan) error {
	for _, info := range plan.Thunks {
		if !info.This.Virtual.Kind.Matches(s.Target.Convention) {
			return &adjust.ConventionMismatchError{
				Kind:       info.This.Virtual.Kind,
				Convention: s.Target.Convention,
			}
		}
		if !info.Return.Virtual.Kind.Matches(s.Target.Convention) {
			return &adjust.ConventionMismatchError{
				Kind:       info.Return.Virtual.Kind,
				Convention: s.Target.Convention,
			}
		}
	}
	return s.Sink.ConsumePlan(rec, plan)
}

func (s *Session) EmitResolver(descriptor *multiversion.ResolverDescriptor) error {
	return s.Sink.ConsumeResolver(descriptor)
}

func (s *Session) Finish() error {
	return s.Sink.Close()
}
