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
	"fmt"
	"sync"

	cmap "github.com/orcaman/concurrent-map"

	"github.com/vtforge/vtforge/pkg/target"
)

// Dispatcher models the run-time half of multiversion dispatch: each logical
// function selects a body on first resolution and answers with that same
// body forever after.
type Dispatcher struct {
	registry cmap.ConcurrentMap
	probe    func() target.FeatureSet
}

type dispatchEntry struct {
	descriptor *ResolverDescriptor

	once   sync.Once
	symbol string
}

// NewDispatcher builds a dispatcher probing capabilities through the given
// function, the executing host is probed when probe is nil.
func NewDispatcher(probe func() target.FeatureSet) *Dispatcher {
	if probe == nil {
		probe = HostFeatures
	}
	return &Dispatcher{
		registry: cmap.New(),
		probe:    probe,
	}
}

// Register publishes a descriptor under its function name. Racing
// registrations of one name collapse to the first, losers are discarded and
// Register reports false for them.
func (d *Dispatcher) Register(descriptor *ResolverDescriptor) bool {
	return d.registry.SetIfAbsent(descriptor.Name, &dispatchEntry{descriptor: descriptor})
}

// Resolve returns the symbol serving the named function on this host. The
// first call runs the check sequence, every later call observes the cached
// winner, concurrent first calls included.
func (d *Dispatcher) Resolve(name string) (string, error) {
	value, exist := d.registry.Get(name)
	if !exist {
		return "", fmt.Errorf("no resolver registered for function: %s", name)
	}
	entry := value.(*dispatchEntry)
	entry.once.Do(func() {
		entry.symbol = entry.descriptor.Select(d.probe())
	})
	return entry.symbol, nil
}

// Count reports the number of registered logical functions.
func (d *Dispatcher) Count() int {
	return d.registry.Count()
}
