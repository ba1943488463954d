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

import "fmt"

// This file implements the Lengauer-Tarjan dominator tree algorithm
// ("A Fast Algorithm for Finding Dominators in a Flowgraph", 1979), adapted
// from the formulation used by gonum's graph/path package (itself citing
// the same paper), generalized to take an externally-supplied DFSTree
// (spec.md §4.1: `dominator_tree(graph, root, dfs)`) instead of computing
// its own, and to small-integer NodeIDs instead of gonum's graph.Node
// interface.

// DominatorTree is the dominator tree of a Graph rooted at Root: every
// other reachable node's parent is its immediate dominator.
type DominatorTree struct {
	root     NodeID
	idom     map[NodeID]NodeID
	children map[NodeID][]NodeID
}

// Root returns the root of the tree.
func (t *DominatorTree) Root() NodeID {
	return t.root
}

// ImmediateDominator returns the immediate dominator of n, and whether n
// has one (it will not if n is Root or n was unreachable from Root).
func (t *DominatorTree) ImmediateDominator(n NodeID) (NodeID, bool) {
	d, ok := t.idom[n]
	return d, ok
}

// Children returns the nodes immediately dominated by n.
func (t *DominatorTree) Children(n NodeID) []NodeID {
	return t.children[n]
}

// Dominates reports whether a dominates b (every node dominates itself).
func (t *DominatorTree) Dominates(a, b NodeID) bool {
	for cur := b; ; {
		if cur == a {
			return true
		}
		p, ok := t.idom[cur]
		if !ok {
			return cur == a
		}
		cur = p
	}
}

// ltNode is a graph node with accounting for the Lengauer-Tarjan algorithm.
// Field names and meaning follow gonum's path.ltNode (itself following the
// paper's notation) exactly; only the node identity field differs.
type ltNode struct {
	id    NodeID
	order int

	parent   *ltNode
	pred     []*ltNode
	semi     int
	bucket   map[*ltNode]struct{}
	dom      *ltNode
	ancestor *ltNode
	label    *ltNode
}

// DominatorTreeOf computes the dominator tree of g rooted at root, given a
// pre-computed depth-first spanning tree dfs of g from root. It fails with
// ErrUnreachableRoot if root is not a node of g.
func DominatorTreeOf(g *Graph, root NodeID, dfs *DFSTree) (*DominatorTree, error) {
	if !g.Has(root) {
		return nil, &ErrUnreachableRoot{Root: root}
	}

	order := dfs.Nodes()
	indexOf := make(map[NodeID]int, len(order))
	nodes := make([]*ltNode, len(order))
	for i, id := range order {
		indexOf[id] = i
		nodes[i] = &ltNode{id: id, order: i, semi: i, bucket: make(map[*ltNode]struct{})}
	}
	for i, id := range order {
		w := nodes[i]
		w.label = w
		if p, ok := dfs.Parent(id); ok {
			w.parent = nodes[indexOf[p]]
		}
		for _, pred := range g.Predecessors(id) {
			if pi, ok := indexOf[pred]; ok {
				w.pred = append(w.pred, nodes[pi])
			}
		}
	}

	// compress is the Lengauer-Tarjan COMPRESS procedure.
	var compress func(v *ltNode)
	compress = func(v *ltNode) {
		if v.ancestor.ancestor != nil {
			compress(v.ancestor)
			if v.ancestor.label.semi < v.label.semi {
				v.label = v.ancestor.label
			}
			v.ancestor = v.ancestor.ancestor
		}
	}
	// eval is the Lengauer-Tarjan EVAL function.
	eval := func(v *ltNode) *ltNode {
		if v.ancestor == nil {
			return v
		}
		compress(v)
		return v.label
	}
	// link is the Lengauer-Tarjan LINK procedure.
	link := func(v, w *ltNode) { w.ancestor = v }

	for i := len(nodes) - 1; i > 0; i-- {
		w := nodes[i]

		for _, v := range w.pred {
			u := eval(v)
			if u.semi < w.semi {
				w.semi = u.semi
			}
		}

		nodes[w.semi].bucket[w] = struct{}{}
		link(w.parent, w)

		for v := range w.parent.bucket {
			delete(w.parent.bucket, v)

			u := eval(v)
			if u.semi < v.semi {
				v.dom = u
			} else {
				v.dom = w.parent
			}
		}
	}

	for _, w := range nodes[1:] {
		if w.dom.id != nodes[w.semi].id {
			w.dom = w.dom.dom
		}
	}

	tree := &DominatorTree{
		root:     root,
		idom:     make(map[NodeID]NodeID, len(nodes)-1),
		children: make(map[NodeID][]NodeID),
	}
	for _, w := range nodes[1:] {
		tree.idom[w.id] = w.dom.id
		tree.children[w.dom.id] = append(tree.children[w.dom.id], w.id)
	}
	return tree, nil
}

// PostDominatorTreeOf computes the post-dominator tree of g with respect to
// root: the dominator tree of the reverse graph (spec.md §4.1). Because a
// function may have more than one exit block (multiple `return`
// terminators), this introduces a synthetic super-exit node, connected from
// every reachable block with no successors, and computes dominance on the
// reverse graph rooted there. A node whose immediate post-dominator is that
// synthetic node (which is never itself a node of g, so g.Has reports
// false for it) has no *real* join block — both its paths end in a return
// with nothing in common afterwards, not a structuring error. A node with
// no immediate post-dominator at all cannot reach any exit (every path from
// it loops forever); that is the case spec.md §4.4 calls Irreducible.
func PostDominatorTreeOf(g *Graph, root NodeID, dfs *DFSTree) (*DominatorTree, error) {
	if !g.Has(root) {
		return nil, &ErrUnreachableRoot{Root: root}
	}

	reverse := g.Reverse()
	superExit := reverse.AddNode()
	for _, n := range dfs.Nodes() {
		if len(g.Successors(n)) == 0 {
			reverse.AddEdge(superExit, n)
		}
	}

	revDFS, err := DFSTreeOf(reverse, superExit)
	if err != nil {
		// superExit was just allocated in reverse, so this is unreachable.
		panic(fmt.Sprintf("graph: internal invariant violated building post-dominator tree: %v", err))
	}
	return DominatorTreeOf(reverse, superExit, revDFS)
}
