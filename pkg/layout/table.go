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

package layout

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"github.com/vtforge/vtforge/pkg/hierarchy"
	"github.com/vtforge/vtforge/pkg/target"
)

const defaultCacheSize = 256

// VBTableEntrySize is the byte width of one vbtable entry.
const VBTableEntrySize = 4

// Table serves complete-object records for a finalized graph on one target.
// Records are pure functions of the graph, so cache eviction only costs a
// recomputation and concurrent requests for the same class are benign.
type Table struct {
	spec  *target.Spec
	graph *hierarchy.Graph
	cache *lru.Cache
}

func NewTable(spec *target.Spec, graph *hierarchy.Graph, cacheSize int) (*Table, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Table{spec: spec, graph: graph, cache: cache}, nil
}

// Record returns the layout of the class, computing and caching it on the
// first request.
func (t *Table) Record(id hierarchy.ClassID) (*Record, error) {
	if value, ok := t.cache.Get(id); ok {
		return value.(*Record), nil
	}
	rec, err := t.compute(id)
	if err != nil {
		return nil, err
	}
	t.cache.Add(id, rec)
	return rec, nil
}

// Seed installs a record supplied by the real layout engine, replacing
// whatever this table would compute for the class.
func (t *Table) Seed(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("cannot seed a nil record")
	}
	if t.graph.Class(rec.Class) == nil {
		return fmt.Errorf("unknown class: %d", rec.Class)
	}
	t.cache.Add(rec.Class, rec)
	return nil
}

// WarmAll computes every class in the graph, classes in parallel.
func (t *Table) WarmAll(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, class := range t.graph.Classes() {
		id := class.ID
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := t.Record(id)
			return err
		})
	}
	return eg.Wait()
}

// VBaseSlotOffset returns the byte offset, relative to the address point of
// the owner's vtable, of the slot holding the offset of vbase. The slots
// sit in front of the offset-to-top and type-info entries, the last
// discovered base closest to the address point.
func (t *Table) VBaseSlotOffset(owner, vbase hierarchy.ClassID) (int64, error) {
	rec, err := t.Record(owner)
	if err != nil {
		return 0, err
	}
	count := len(rec.VBases)
	for i, vb := range rec.VBases {
		if vb.Class == vbase {
			return -int64(2+(count-i)) * int64(t.spec.PointerWidth), nil
		}
	}
	return 0, fmt.Errorf("class %s has no virtual base %s", t.graph.ClassName(owner), t.graph.ClassName(vbase))
}

// VBTableIndex returns the vbtable entry index of vbase inside the owner's
// complete object.
func (t *Table) VBTableIndex(owner, vbase hierarchy.ClassID) (int, error) {
	rec, err := t.Record(owner)
	if err != nil {
		return 0, err
	}
	vb, ok := rec.FindVBase(vbase)
	if !ok {
		return 0, fmt.Errorf("class %s has no virtual base %s", t.graph.ClassName(owner), t.graph.ClassName(vbase))
	}
	return vb.Index, nil
}

func (t *Table) compute(id hierarchy.ClassID) (*Record, error) {
	class := t.graph.Class(id)
	if class == nil {
		return nil, fmt.Errorf("unknown class: %d", id)
	}

	rec := &Record{
		Class:       id,
		Align:       1,
		BaseOffsets: make(map[hierarchy.ClassID]int64),
		VBPtrOffset: -1,
	}

	ptrWidth := int64(t.spec.PointerWidth)
	ptrAlign := int64(t.spec.PointerAlign)
	vbases := t.graph.VirtualBases(id)
	slots := t.slots(id)

	var hasVTable bool
	switch t.spec.Convention {
	case target.ConventionOffsetTable:
		// virtual bases alone force a table, their offsets live in it
		hasVTable = t.graph.IsDynamic(id) || len(vbases) > 0
	case target.ConventionVBTable:
		hasVTable = t.graph.IsDynamic(id)
	}

	var nvBases []hierarchy.Base
	for _, base := range class.Bases {
		if !base.Virtual {
			nvBases = append(nvBases, base)
		}
	}
	baseRecs := make([]*Record, len(nvBases))
	for i, base := range nvBases {
		baseRec, err := t.Record(base.Class)
		if err != nil {
			return nil, err
		}
		baseRecs[i] = baseRec
	}

	// the first declared non-virtual base with a vtable extends it, the
	// class allocates its own pointer otherwise
	ownVPtr := hasVTable && (len(baseRecs) == 0 || !baseRecs[0].HasVTable())

	cursor := int64(0)
	if ownVPtr {
		cursor = ptrWidth
		rec.Align = maxAlign(rec.Align, ptrAlign)
	}

	for i, base := range nvBases {
		baseRec := baseRecs[i]
		offset := alignUp(cursor, baseRec.Align)
		if base.Placed {
			offset = base.Offset
		}
		rec.BaseOffsets[base.Class] = offset
		if end := offset + baseRec.NVSize; end > cursor {
			cursor = end
		}
		rec.Align = maxAlign(rec.Align, baseRec.Align)
	}

	if t.spec.Convention == target.ConventionVBTable && len(vbases) > 0 {
		shared := -1
		for i, baseRec := range baseRecs {
			if baseRec.VBPtrOffset >= 0 {
				shared = i
				break
			}
		}
		if shared >= 0 {
			rec.VBPtrOffset = rec.BaseOffsets[nvBases[shared].Class] + baseRecs[shared].VBPtrOffset
		} else {
			rec.VBPtrOffset = alignUp(cursor, ptrAlign)
			cursor = rec.VBPtrOffset + ptrWidth
			rec.Align = maxAlign(rec.Align, ptrAlign)
		}
	}

	if cursor == 0 {
		// empty classes still occupy one addressing unit
		cursor = 1
	}
	rec.NVSize = alignUp(cursor, rec.Align)

	vcursor := rec.NVSize
	for i, vbase := range vbases {
		vbRec, err := t.Record(vbase)
		if err != nil {
			return nil, err
		}
		offset := alignUp(vcursor, vbRec.Align)
		rec.VBases = append(rec.VBases, VBase{Class: vbase, Offset: offset, Index: i + 1})
		vcursor = offset + vbRec.NVSize
		rec.Align = maxAlign(rec.Align, vbRec.Align)
	}
	rec.Size = alignUp(vcursor, rec.Align)

	rec.Slots = slots
	if hasVTable {
		switch t.spec.Convention {
		case target.ConventionOffsetTable:
			rec.Entries = 2 + len(vbases) + len(slots)
			rec.AddressPoint = int64(2+len(vbases)) * ptrWidth
		case target.ConventionVBTable:
			rec.Entries = len(slots)
		}
	}
	return rec, nil
}

// slots collects the vtable method slots, one per introducing declaration,
// bases before the classes deriving from them.
func (t *Table) slots(id hierarchy.ClassID) []hierarchy.MethodID {
	var out []hierarchy.MethodID
	visited := make(map[hierarchy.ClassID]bool)
	var visit func(current hierarchy.ClassID)
	visit = func(current hierarchy.ClassID) {
		if visited[current] {
			return
		}
		visited[current] = true
		class := t.graph.Class(current)
		if class == nil {
			return
		}
		for _, base := range class.Bases {
			visit(base.Class)
		}
		for _, method := range class.Methods {
			if len(t.graph.Overridden(method)) == 0 {
				out = append(out, method)
			}
		}
	}
	visit(id)
	return out
}

func alignUp(value, align int64) int64 {
	if align <= 1 {
		return value
	}
	return (value + align - 1) / align * align
}

func maxAlign(a, b int64) int64 {
	if b > a {
		return b
	}
	return a
}
