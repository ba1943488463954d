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

package graph

import (
	"fmt"

	"golang.org/x/tools/container/intsets"
)

// ErrUnreachableRoot is returned by DFSTreeOf (and, transitively, by the
// dominator algorithms) when root is not a node of the graph.
type ErrUnreachableRoot struct {
	Root NodeID
}

func (e *ErrUnreachableRoot) Error() string {
	return fmt.Sprintf("graph: root %d is not a node of this graph", e.Root)
}

// DFSTree is a depth-first spanning tree of a Graph, rooted at Root.
// Parent records, for every node reachable from Root, the tree edge that
// first discovered it; Root has no parent. Preorder records the order in
// which DFS first visited each node, which Nodes() exposes.
type DFSTree struct {
	Root     NodeID
	parent   map[NodeID]NodeID
	preorder []NodeID
}

// Parent returns the spanning-tree parent of n, and whether n has one (it
// will not if n is Root or n is unreachable from Root).
func (t *DFSTree) Parent(n NodeID) (NodeID, bool) {
	p, ok := t.parent[n]
	return p, ok
}

// Nodes returns the nodes reachable from Root, in DFS preorder.
func (t *DFSTree) Nodes() []NodeID {
	return t.preorder
}

// IsAncestor reports whether a is an ancestor of b in the spanning tree
// (including a == b). This is what back-edge detection in the structuring
// pass (spec.md §4.4) is built on: an edge n -> target is a back-edge iff
// target IsAncestor of n.
func (t *DFSTree) IsAncestor(a, b NodeID) bool {
	for cur := b; ; {
		if cur == a {
			return true
		}
		parent, ok := t.parent[cur]
		if !ok {
			return cur == a
		}
		cur = parent
	}
}

// DFSTreeOf computes a depth-first spanning tree of g starting at root. It
// fails with ErrUnreachableRoot if root is not a node of g.
func DFSTreeOf(g *Graph, root NodeID) (*DFSTree, error) {
	if !g.Has(root) {
		return nil, &ErrUnreachableRoot{Root: root}
	}

	tree := &DFSTree{
		Root:   root,
		parent: make(map[NodeID]NodeID),
	}

	var visited intsets.Sparse
	// Explicit-stack DFS: recursion depth is bounded by graph size, not
	// source nesting (the same rationale spec.md §9 gives for the
	// structuring pass's explicit work stack).
	type frame struct {
		node NodeID
		next int
	}
	visited.Insert(int(root))
	tree.preorder = append(tree.preorder, root)
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := g.Successors(top.node)
		if top.next >= len(succs) {
			stack = stack[:len(stack)-1]
			continue
		}
		next := succs[top.next]
		top.next++
		if visited.Insert(int(next)) {
			tree.parent[next] = top.node
			tree.preorder = append(tree.preorder, next)
			stack = append(stack, frame{node: next})
		}
	}

	return tree, nil
}
