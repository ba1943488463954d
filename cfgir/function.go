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

// Function is a CFG: a directed graph of basic blocks with exactly one
// entry node (spec.md §3). It implements the driver input interface
// described in spec.md §6.1.
type Function struct {
	graph     *graph.Graph
	entry     graph.NodeID
	hasEntry  bool
	blocks    map[graph.NodeID]*BasicBlock
	allocator ValueAllocator
}

// NewFunction returns an empty function with a fresh, empty graph.
func NewFunction() *Function {
	return &Function{
		graph:  graph.New(),
		blocks: make(map[graph.NodeID]*BasicBlock),
	}
}

// Graph returns the function's control-flow graph.
func (f *Function) Graph() *graph.Graph {
	return f.graph
}

// Entry returns the function's entry node, if one has been set.
func (f *Function) Entry() (graph.NodeID, bool) {
	return f.entry, f.hasEntry
}

// SetEntry designates n as the function's entry node. n must already be a
// node of f.Graph().
func (f *Function) SetEntry(n graph.NodeID) {
	f.entry = n
	f.hasEntry = true
}

// AddBlock allocates a fresh node in the graph, associates block with it,
// and returns the new node id.
func (f *Function) AddBlock(block *BasicBlock) graph.NodeID {
	n := f.graph.AddNode()
	f.blocks[n] = block
	return n
}

// Block returns the basic block at n, if any.
func (f *Function) Block(n graph.NodeID) (*BasicBlock, bool) {
	b, ok := f.blocks[n]
	return b, ok
}

// BlockMut returns the basic block at n for in-place mutation, if any. It
// is named to mirror the driver interface of spec.md §6.1
// (`Function::block_mut`); in Go, Block and BlockMut are identical since
// *BasicBlock is already a pointer, but keeping both names documents intent
// at call sites (read-only traversal vs. in-place rewrite).
func (f *Function) BlockMut(n graph.NodeID) (*BasicBlock, bool) {
	return f.Block(n)
}

// NewValue allocates a fresh SSA value identifier for this function.
func (f *Function) NewValue() ValueID {
	return f.allocator.New()
}

// Values returns every SSA value identifier allocated so far, in
// allocation order.
func (f *Function) Values() []ValueID {
	values := make([]ValueID, f.allocator.Len())
	for i := range values {
		values[i] = ValueID(i)
	}
	return values
}

// Reachable returns the depth-first spanning tree of f's graph from its
// entry node. Every pass downstream of the lifter (def-use, inlining,
// structuring) is defined purely in terms of this reachable set, never the
// raw graph's node list; this is how spec.md §3's "unreachable nodes must
// be pruned before structuring" invariant is actually enforced here — by
// construction, rather than by a separate mutating prune step that would
// have to renumber blocks out from under any InstructionLocation already
// referring to them.
func (f *Function) Reachable() (*graph.DFSTree, error) {
	entry, ok := f.Entry()
	if !ok {
		return nil, &graph.ErrUnreachableRoot{Root: entry}
	}
	return graph.DFSTreeOf(f.graph, entry)
}
