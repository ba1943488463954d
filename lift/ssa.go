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

package lift

import (
	"github.com/dsarch/medaldec/cfgir"
	"github.com/dsarch/medaldec/graph"
)

// registerSSA builds SSA values for Lua register reads and writes one
// function at a time, using the incomplete-phi construction described
// by Braun et al. ("Simple and Efficient Construction of SSA Form"):
// a block not yet sealed (some static predecessor hasn't been
// translated yet, which only happens across a loop back edge) gets a
// placeholder phi whose incoming edges are filled in once every
// predecessor is known.
type registerSSA struct {
	fn *cfgir.Function

	preds     map[graph.NodeID][]graph.NodeID
	remaining map[graph.NodeID]int
	sealed    map[graph.NodeID]bool

	current    map[graph.NodeID]map[int]cfgir.ValueID
	incomplete map[graph.NodeID]map[int]*cfgir.Phi
	blocks     map[graph.NodeID]*cfgir.BasicBlock
}

func newRegisterSSA(fn *cfgir.Function) *registerSSA {
	return &registerSSA{
		fn:         fn,
		preds:      make(map[graph.NodeID][]graph.NodeID),
		remaining:  make(map[graph.NodeID]int),
		sealed:     make(map[graph.NodeID]bool),
		current:    make(map[graph.NodeID]map[int]cfgir.ValueID),
		incomplete: make(map[graph.NodeID]map[int]*cfgir.Phi),
		blocks:     make(map[graph.NodeID]*cfgir.BasicBlock),
	}
}

// staticEdge records a predecessor relationship discovered during the
// pre-pass over the full instruction stream, before any block is
// translated. preds and remaining are built exclusively here so that a
// loop header's count of not-yet-translated predecessors is known in
// advance (required to decide whether it can be sealed immediately).
func (s *registerSSA) staticEdge(from, to graph.NodeID) {
	s.preds[to] = append(s.preds[to], from)
	s.remaining[to]++
}

// wireEdge adds the actual graph edge during translation. It must not
// touch preds/remaining: those were already established by staticEdge
// for every edge the pre-pass found, and doing so again here would
// double-count predecessors computed by the same pre-pass.
func (s *registerSSA) wireEdge(from, to graph.NodeID) {
	s.fn.Graph().AddEdge(from, to)
}

func (s *registerSSA) write(node graph.NodeID, reg int, v cfgir.ValueID) {
	m, ok := s.current[node]
	if !ok {
		m = make(map[int]cfgir.ValueID)
		s.current[node] = m
	}
	m[reg] = v
}

func (s *registerSSA) read(node graph.NodeID, reg int) cfgir.ValueID {
	if v, ok := s.current[node][reg]; ok {
		return v
	}
	return s.readRecursive(node, reg)
}

func (s *registerSSA) readRecursive(node graph.NodeID, reg int) cfgir.ValueID {
	var value cfgir.ValueID
	switch {
	case !s.sealed[node]:
		value = s.fn.NewValue()
		phi := &cfgir.Phi{Dest: value, Incoming: make(map[graph.NodeID]cfgir.ValueID)}
		s.appendPhi(node, phi)
		if s.incomplete[node] == nil {
			s.incomplete[node] = make(map[int]*cfgir.Phi)
		}
		s.incomplete[node][reg] = phi

	case len(s.preds[node]) == 1:
		value = s.read(s.preds[node][0], reg)

	default:
		value = s.fn.NewValue()
		phi := &cfgir.Phi{Dest: value, Incoming: make(map[graph.NodeID]cfgir.ValueID)}
		s.appendPhi(node, phi)
		s.write(node, reg, value) // break read cycles through this phi
		s.fillPhiOperands(node, reg, phi)
	}
	s.write(node, reg, value)
	return value
}

func (s *registerSSA) fillPhiOperands(node graph.NodeID, reg int, phi *cfgir.Phi) {
	for _, pred := range s.preds[node] {
		phi.Incoming[pred] = s.read(pred, reg)
	}
}

func (s *registerSSA) appendPhi(node graph.NodeID, phi *cfgir.Phi) {
	bb := s.blocks[node]
	bb.Phis = append(bb.Phis, phi)
}

// finishBlock marks node as translated and seals any successor whose
// every static predecessor has now been translated.
func (s *registerSSA) finishBlock(node graph.NodeID, succs []graph.NodeID) {
	for _, succ := range succs {
		s.remaining[succ]--
		if s.remaining[succ] == 0 {
			s.seal(succ)
		}
	}
}

func (s *registerSSA) seal(node graph.NodeID) {
	if s.sealed[node] {
		return
	}
	for reg, phi := range s.incomplete[node] {
		s.fillPhiOperands(node, reg, phi)
	}
	delete(s.incomplete, node)
	s.sealed[node] = true
}

// sealRemaining seals every block that is not sealed yet. The entry
// block and blocks with no predecessors are already sealed before
// translation; this catches any block whose remaining count never
// reached zero, such as unreachable blocks our static successor scan
// still created nodes for.
func (s *registerSSA) sealRemaining() {
	for node := range s.blocks {
		s.seal(node)
	}
}
