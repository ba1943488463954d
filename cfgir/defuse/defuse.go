//  Copyright (c) 2026 The Medal Decompiler Authors.
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

// Package defuse maintains, for every SSA value in a function, the set of
// instruction locations where it is read and where it is written, with
// support for cheap per-block incremental updates (spec.md §4.2).
package defuse

import (
	"github.com/dsarch/medaldec/cfgir"
	"github.com/dsarch/medaldec/graph"
	"github.com/dsarch/medaldec/util/orderedmap"
)

// ValueDefUse is the def-use record for a single SSA value: the set of
// locations where it is read, and the set of locations where it is
// written. In well-formed SSA, Writes never has more than one element
// (spec.md §3).
type ValueDefUse struct {
	Reads  map[cfgir.InstructionLocation]struct{}
	Writes map[cfgir.InstructionLocation]struct{}
}

func newValueDefUse() *ValueDefUse {
	return &ValueDefUse{
		Reads:  make(map[cfgir.InstructionLocation]struct{}),
		Writes: make(map[cfgir.InstructionLocation]struct{}),
	}
}

// IsEmpty reports whether this value has no recorded reads or writes
// (spec.md §3: "Record is empty ⇒ value may be removed").
func (d *ValueDefUse) IsEmpty() bool {
	return len(d.Reads) == 0 && len(d.Writes) == 0
}

// DefUse maps SSA values to their def-use records for one function. The
// backing map preserves first-seen order, so Values and RemoveUnused
// walk values in a deterministic, reproducible order instead of Go's
// randomized map iteration; golden-fixture comparisons over decompiler
// output depend on that determinism.
type DefUse struct {
	byValue *orderedmap.OrderedMap[cfgir.ValueID, *ValueDefUse]
}

func (d *DefUse) entry(v cfgir.ValueID) *ValueDefUse {
	if e, ok := d.byValue.Load(v); ok {
		return e
	}
	e := newValueDefUse()
	d.byValue.Store(v, e)
	return e
}

// Build scans every reachable block of function once and returns its
// def-use map.
func Build(function *cfgir.Function) (*DefUse, error) {
	d := &DefUse{byValue: orderedmap.New[cfgir.ValueID, *ValueDefUse]()}

	dfs, err := function.Reachable()
	if err != nil {
		return nil, err
	}
	for _, node := range dfs.Nodes() {
		block, ok := function.Block(node)
		if !ok {
			continue
		}
		d.scanBlock(block, node, func(idx cfgir.InstructionIndex) bool { return true })
	}
	return d, nil
}

// scanBlock records reads/writes for every index in block for which keep
// returns true.
func (d *DefUse) scanBlock(block *cfgir.BasicBlock, node graph.NodeID, keep func(cfgir.InstructionIndex) bool) {
	for _, idx := range block.Indices() {
		if !keep(idx) {
			continue
		}
		loc := cfgir.InstructionLocation{Node: node, Index: idx}
		for _, v := range block.ValuesRead(idx) {
			d.entry(v).Reads[loc] = struct{}{}
		}
		for _, v := range block.ValuesWritten(idx) {
			d.entry(v).Writes[loc] = struct{}{}
		}
	}
}

// clearBlock discards every read/write location recorded for node for
// which keep returns true.
func (d *DefUse) clearBlock(node graph.NodeID, keep func(cfgir.InstructionIndex) bool) {
	for _, p := range d.byValue.Pairs {
		e := p.Value
		for loc := range e.Reads {
			if loc.Node == node && keep(loc.Index) {
				delete(e.Reads, loc)
			}
		}
		for loc := range e.Writes {
			if loc.Node == node && keep(loc.Index) {
				delete(e.Writes, loc)
			}
		}
	}
}

// UpdateBlock discards all read/write entries whose location is in node,
// then re-derives them from the block's current instructions. Callers
// rewriting one block pay only for that block, not the whole function
// (spec.md §4.2).
func (d *DefUse) UpdateBlock(function *cfgir.Function, node graph.NodeID) {
	d.clearBlock(node, func(cfgir.InstructionIndex) bool { return true })
	block, ok := function.Block(node)
	if !ok {
		return
	}
	d.scanBlock(block, node, func(cfgir.InstructionIndex) bool { return true })
}

// UpdateBlockPhi is as UpdateBlock, but restricted to phi slots; used when
// successor edges change (altering which phi incoming branches apply) but
// the block body is otherwise intact.
func (d *DefUse) UpdateBlockPhi(function *cfgir.Function, node graph.NodeID) {
	isPhi := func(idx cfgir.InstructionIndex) bool { return idx.Kind == cfgir.IndexPhi }
	d.clearBlock(node, isPhi)
	block, ok := function.Block(node)
	if !ok {
		return
	}
	d.scanBlock(block, node, isPhi)
}

// RemoveUnused drops records with empty read and write sets.
func (d *DefUse) RemoveUnused() {
	var unused []cfgir.ValueID
	for _, p := range d.byValue.Pairs {
		if p.Value.IsEmpty() {
			unused = append(unused, p.Key)
		}
	}
	for _, v := range unused {
		d.byValue.Delete(v)
	}
}

// Values returns every value with a (possibly empty) def-use record, in
// the order each was first seen.
func (d *DefUse) Values() []cfgir.ValueID {
	values := make([]cfgir.ValueID, 0, len(d.byValue.Pairs))
	for _, p := range d.byValue.Pairs {
		values = append(values, p.Key)
	}
	return values
}

// Get returns the def-use record for v, if any.
func (d *DefUse) Get(v cfgir.ValueID) (*ValueDefUse, bool) {
	return d.byValue.Load(v)
}
