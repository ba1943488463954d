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

package cfgir

import "github.com/dsarch/medaldec/graph"

// BasicBlock is an ordered sequence of phi instructions (at the head), an
// ordered sequence of inner instructions, and exactly one terminator
// (spec.md §3). A block with a nil Terminator is malformed.
type BasicBlock struct {
	Phis       []*Phi
	Inner      []Inner
	Terminator Terminator
}

// NewBasicBlock returns an empty, as-yet-unterminated block.
func NewBasicBlock() *BasicBlock {
	return &BasicBlock{}
}

// Indices returns every addressable instruction location within the block
// (phis, then inner instructions, then the terminator slot), in program
// order.
func (b *BasicBlock) Indices() []InstructionIndex {
	indices := make([]InstructionIndex, 0, len(b.Phis)+len(b.Inner)+1)
	for i := range b.Phis {
		indices = append(indices, InstructionIndex{Kind: IndexPhi, Pos: i})
	}
	for i := range b.Inner {
		indices = append(indices, InstructionIndex{Kind: IndexInner, Pos: i})
	}
	if b.Terminator != nil {
		indices = append(indices, InstructionIndex{Kind: IndexTerminator})
	}
	return indices
}

// ValuesRead returns the values read by the instruction at idx.
func (b *BasicBlock) ValuesRead(idx InstructionIndex) []ValueID {
	switch idx.Kind {
	case IndexPhi:
		return b.Phis[idx.Pos].ValuesRead()
	case IndexInner:
		return b.Inner[idx.Pos].ValuesRead()
	case IndexTerminator:
		if b.Terminator == nil {
			return nil
		}
		return b.Terminator.ValuesRead()
	default:
		return nil
	}
}

// ValuesWritten returns the values written by the instruction at idx.
func (b *BasicBlock) ValuesWritten(idx InstructionIndex) []ValueID {
	switch idx.Kind {
	case IndexPhi:
		return b.Phis[idx.Pos].ValuesWritten()
	case IndexInner:
		return b.Inner[idx.Pos].ValuesWritten()
	case IndexTerminator:
		return nil
	default:
		return nil
	}
}

// Successors returns the block's out-edges, taken from its terminator (or
// none, if the block is not yet terminated).
func (b *BasicBlock) Successors() []graph.NodeID {
	if b.Terminator == nil {
		return nil
	}
	return b.Terminator.Successors()
}
