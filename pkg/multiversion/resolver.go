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

// Package multiversion builds the dispatch descriptors of functions compiled
// once per CPU capability level, and models the run-time side selecting one
// body on first call.
package multiversion

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/vtforge/vtforge/pkg/target"
)

// Candidate is one compiled body of a multiversioned function. Symbol may be
// left empty, the builder then derives it from the function symbol and the
// requirement.
type Candidate struct {
	Requirement string
	Symbol      string
}

// Function is a logical multiversioned function, its candidates in
// declaration order.
type Function struct {
	Name       string
	Symbol     string
	Candidates []Candidate
}

// Check is one step of the resolver's decision sequence.
type Check struct {
	Requirement string
	Symbol      string
	Priority    int
}

// ResolverDescriptor is the priority ordered decision table of one function.
// Checks run strongest requirement first, Default terminates the sequence
// unconditionally. Both emission conventions derive from it, the loader
// resolved indirection cell and the textual dispatch function.
type ResolverDescriptor struct {
	Name           string
	ResolverSymbol string
	IFuncSymbol    string

	Checks  []Check
	Default Check
}

// Select runs the check sequence against the given capabilities and returns
// the winning symbol.
func (d *ResolverDescriptor) Select(features target.FeatureSet) string {
	for _, check := range d.Checks {
		if features.Satisfies(check.Requirement) {
			return check.Symbol
		}
	}
	return d.Default.Symbol
}

// Builder turns functions into resolver descriptors using the target's
// feature priorities.
type Builder struct {
	Features *target.FeatureTable
}

func NewBuilder(features *target.FeatureTable) *Builder {
	return &Builder{Features: features}
}

// BuildResolver validates the candidate table and produces the descriptor.
// A malformed table is a build error reported before anything is emitted,
// every defect at once: the fallback must appear exactly once, requirements
// may not repeat, and every requirement must be known to the target.
func (b *Builder) BuildResolver(fn Function) (*ResolverDescriptor, error) {
	var errs *multierror.Error
	if fn.Name == "" {
		errs = multierror.Append(errs, fmt.Errorf("multiversion function has empty name"))
	}
	if fn.Symbol == "" {
		errs = multierror.Append(errs, fmt.Errorf("function %s has empty symbol", fn.Name))
	}

	defaults := 0
	seen := make(map[string]bool, len(fn.Candidates))
	for _, candidate := range fn.Candidates {
		if seen[candidate.Requirement] {
			errs = multierror.Append(errs, fmt.Errorf("function %s: duplicate requirement %s",
				fn.Name, candidate.Requirement))
			continue
		}
		seen[candidate.Requirement] = true
		if candidate.Requirement == target.RequirementDefault {
			defaults++
			continue
		}
		if _, err := b.Features.Priority(candidate.Requirement); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("function %s: %v", fn.Name, err))
		}
	}
	if defaults == 0 {
		errs = multierror.Append(errs, fmt.Errorf("function %s has no default candidate", fn.Name))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	descriptor := &ResolverDescriptor{
		Name:           fn.Name,
		ResolverSymbol: fn.Symbol + ".resolver",
		IFuncSymbol:    fn.Symbol + ".ifunc",
	}
	for _, candidate := range fn.Candidates {
		check := Check{
			Requirement: candidate.Requirement,
			Symbol:      candidate.Symbol,
		}
		if check.Symbol == "" {
			check.Symbol = CandidateSymbol(fn.Symbol, candidate.Requirement)
		}
		if candidate.Requirement == target.RequirementDefault {
			descriptor.Default = check
			continue
		}
		check.Priority, _ = b.Features.Priority(candidate.Requirement)
		descriptor.Checks = append(descriptor.Checks, check)
	}
	// strongest first, declaration order breaks priority ties
	sort.SliceStable(descriptor.Checks, func(i, j int) bool {
		return descriptor.Checks[i].Priority > descriptor.Checks[j].Priority
	})
	return descriptor, nil
}

// CandidateSymbol derives the symbol of one candidate body. The fallback
// keeps the plain function symbol, a named level "arch=<cpu>" appends
// ".arch_<cpu>", an extension appends its own name.
func CandidateSymbol(base, requirement string) string {
	if requirement == target.RequirementDefault {
		return base
	}
	if strings.HasPrefix(requirement, "arch=") {
		return base + ".arch_" + strings.TrimPrefix(requirement, "arch=")
	}
	return base + "." + requirement
}
