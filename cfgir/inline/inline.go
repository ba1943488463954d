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

// Package inline implements the single-definition/single-use expression
// inlining pass (spec.md §4.3).
//
// medaldec's cfgir instructions are three-address (every operand is a
// ValueID, never a nested instruction), unlike the tree-shaped r-values
// the rest of the corpus this was ported from uses internally. So rather
// than literally splicing the producer instruction into the consumer's
// operand field, Run deletes the producer from its block and returns a
// Substitutions table mapping the eliminated value to the instruction
// that used to define it. The CFG-to-AST structuring pass consults this
// table when it lowers a value read, building a nested r-value instead
// of a reference to an eliminated temporary. This keeps cfgir itself
// simple while preserving the effect of the original pass at the point
// it actually matters: AST expression shape.
package inline

import (
	"github.com/dsarch/medaldec/cfgir"
	"github.com/dsarch/medaldec/cfgir/defuse"
	"github.com/dsarch/medaldec/config"
	"github.com/dsarch/medaldec/graph"
)

// Substitutions records, for each inlined value, the instruction that
// used to define it.
type Substitutions struct {
	byValue map[cfgir.ValueID]cfgir.Inner
}

// New returns an empty substitution table.
func New() *Substitutions {
	return &Substitutions{byValue: make(map[cfgir.ValueID]cfgir.Inner)}
}

// Get returns the instruction that was inlined in place of a read of v,
// if v was eliminated by this pass.
func (s *Substitutions) Get(v cfgir.ValueID) (cfgir.Inner, bool) {
	inner, ok := s.byValue[v]
	return inner, ok
}

// Merge folds other's entries into s, for callers accumulating
// substitutions across many blocks.
func (s *Substitutions) Merge(other *Substitutions) {
	for v, inner := range other.byValue {
		s.byValue[v] = inner
	}
}

// candidate is a producer instruction eligible for inlining into its one
// use, discovered while scanning a block in reverse.
type candidate struct {
	defIndex int // index into block.Inner
	value    cfgir.ValueID
	producer cfgir.Inner
}

// Run inlines every value in node that is written exactly once, read
// exactly once (at a later instruction in the same block), produced by a
// side-effect-free instruction, and separated from its use by no
// side-effecting instruction. It mutates node's block in place, deleting
// every inlined producer, and returns the substitution table so a later
// pass can recover what was inlined.
func Run(function *cfgir.Function, node graph.NodeID, du *defuse.DefUse) *Substitutions {
	subs := New()

	block, ok := function.Block(node)
	if !ok {
		return subs
	}

	var candidates []candidate
	for i := len(block.Inner) - 1; i >= 0; i-- {
		inner := block.Inner[i]
		if inner.HasSideEffects() {
			continue
		}
		written := inner.ValuesWritten()
		if len(written) != 1 {
			continue
		}
		v := written[0]

		rec, ok := du.Get(v)
		if !ok || len(rec.Writes) != 1 || len(rec.Reads) != 1 {
			continue
		}

		var useLoc cfgir.InstructionLocation
		for loc := range rec.Reads {
			useLoc = loc
		}
		if useLoc.Node != node || useLoc.Index.Kind != cfgir.IndexInner || useLoc.Index.Pos <= i {
			continue
		}
		if hasSideEffectBetween(block, i, useLoc.Index.Pos) {
			continue
		}

		candidates = append(candidates, candidate{defIndex: i, value: v, producer: inner})
		if len(candidates) >= config.MaxInlineWorklist {
			break
		}
	}

	if len(candidates) == 0 {
		return subs
	}

	remove := make(map[int]struct{}, len(candidates))
	for _, c := range candidates {
		subs.byValue[c.value] = c.producer
		remove[c.defIndex] = struct{}{}
	}

	kept := block.Inner[:0]
	for i, inner := range block.Inner {
		if _, skip := remove[i]; skip {
			continue
		}
		kept = append(kept, inner)
	}
	block.Inner = kept

	return subs
}

// hasSideEffectBetween reports whether any instruction strictly between
// indices def and use (exclusive) has side effects.
func hasSideEffectBetween(block *cfgir.BasicBlock, def, use int) bool {
	for i := def + 1; i < use; i++ {
		if block.Inner[i].HasSideEffects() {
			return true
		}
	}
	return false
}
