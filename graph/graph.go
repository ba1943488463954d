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

// Package graph implements the directed-graph primitives the rest of the
// pipeline is built on: a mutable adjacency-list graph keyed by small
// integer node identifiers, plus the depth-first spanning tree and
// dominator/post-dominator tree algorithms described in the CFG→AST
// reconstruction design.
package graph

// NodeID identifies a node (basic block) within a Graph. Node identifiers
// are dense, starting at 0, in the order nodes were added.
type NodeID int

// Graph is a directed graph whose nodes are small integers. The zero value
// is not usable; construct one with New.
type Graph struct {
	succs [][]NodeID
	preds [][]NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddNode allocates and returns a fresh NodeID.
func (g *Graph) AddNode() NodeID {
	id := NodeID(len(g.succs))
	g.succs = append(g.succs, nil)
	g.preds = append(g.preds, nil)
	return id
}

// AddEdge adds a directed edge from -> to. Both nodes must already exist.
func (g *Graph) AddEdge(from, to NodeID) {
	g.succs[from] = append(g.succs[from], to)
	g.preds[to] = append(g.preds[to], from)
}

// Has reports whether n is a node of g.
func (g *Graph) Has(n NodeID) bool {
	return n >= 0 && int(n) < len(g.succs)
}

// Len returns the number of nodes in g.
func (g *Graph) Len() int {
	return len(g.succs)
}

// Nodes returns all node identifiers in g, in ascending order.
func (g *Graph) Nodes() []NodeID {
	nodes := make([]NodeID, len(g.succs))
	for i := range nodes {
		nodes[i] = NodeID(i)
	}
	return nodes
}

// Successors returns the out-edges of n, in insertion order.
func (g *Graph) Successors(n NodeID) []NodeID {
	return g.succs[n]
}

// Predecessors returns the in-edges of n, in insertion order.
func (g *Graph) Predecessors(n NodeID) []NodeID {
	return g.preds[n]
}

// Reverse returns a new graph with every edge direction flipped. Node
// identifiers are preserved so a NodeID means the same basic block in both
// graphs; this is exactly what post-dominator computation needs (spec.md
// §4.1: "the dominator tree of the reverse graph").
func (g *Graph) Reverse() *Graph {
	r := &Graph{
		succs: make([][]NodeID, len(g.succs)),
		preds: make([][]NodeID, len(g.preds)),
	}
	for n, ss := range g.succs {
		r.preds[n] = append([]NodeID(nil), ss...)
	}
	for n, ps := range g.preds {
		r.succs[n] = append([]NodeID(nil), ps...)
	}
	return r
}
