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

package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dsarch/medaldec/graph"
)

// buildDiamond builds:
//
//	0 -> 1, 0 -> 2
//	1 -> 3, 2 -> 3
//	3 -> (return, no successors)
func buildDiamond(t *testing.T) (*graph.Graph, graph.NodeID, graph.NodeID, graph.NodeID, graph.NodeID) {
	t.Helper()
	g := graph.New()
	n0 := g.AddNode()
	n1 := g.AddNode()
	n2 := g.AddNode()
	n3 := g.AddNode()
	g.AddEdge(n0, n1)
	g.AddEdge(n0, n2)
	g.AddEdge(n1, n3)
	g.AddEdge(n2, n3)
	return g, n0, n1, n2, n3
}

func TestDFSTreeOf_UnreachableRoot(t *testing.T) {
	t.Parallel()

	g := graph.New()
	_, err := graph.DFSTreeOf(g, 0)
	require.Error(t, err)
	var unreachable *graph.ErrUnreachableRoot
	require.ErrorAs(t, err, &unreachable)
}

func TestDFSTreeOf_Diamond(t *testing.T) {
	t.Parallel()

	g, n0, n1, n2, n3 := buildDiamond(t)
	dfs, err := graph.DFSTreeOf(g, n0)
	require.NoError(t, err)

	require.Equal(t, []graph.NodeID{n0, n1, n3, n2}, dfs.Nodes())

	parent, ok := dfs.Parent(n1)
	require.True(t, ok)
	require.Equal(t, n0, parent)

	_, ok = dfs.Parent(n0)
	require.False(t, ok)

	require.True(t, dfs.IsAncestor(n0, n3))
	require.False(t, dfs.IsAncestor(n1, n2))
}

func TestDominatorTreeOf_Diamond(t *testing.T) {
	t.Parallel()

	g, n0, n1, n2, n3 := buildDiamond(t)
	dfs, err := graph.DFSTreeOf(g, n0)
	require.NoError(t, err)

	dom, err := graph.DominatorTreeOf(g, n0, dfs)
	require.NoError(t, err)

	idom1, ok := dom.ImmediateDominator(n1)
	require.True(t, ok)
	require.Equal(t, n0, idom1)

	idom3, ok := dom.ImmediateDominator(n3)
	require.True(t, ok)
	require.Equal(t, n0, idom3, "n3 is reached via both n1 and n2, so n0 dominates it directly")

	require.True(t, dom.Dominates(n0, n3))
	require.False(t, dom.Dominates(n1, n3))
}

func TestPostDominatorTreeOf_Diamond(t *testing.T) {
	t.Parallel()

	g, n0, n1, n2, n3 := buildDiamond(t)
	dfs, err := graph.DFSTreeOf(g, n0)
	require.NoError(t, err)

	pdom, err := graph.PostDominatorTreeOf(g, n0, dfs)
	require.NoError(t, err)

	join, ok := pdom.ImmediateDominator(n0)
	require.True(t, ok)
	require.Equal(t, n3, join, "n0's two arms both join at n3")

	join1, ok := pdom.ImmediateDominator(n1)
	require.True(t, ok)
	require.Equal(t, n3, join1)

	_ = n2
}

func TestPostDominatorTreeOf_BothArmsReturn_NoRealJoin(t *testing.T) {
	t.Parallel()

	// 0 -> 1 (return), 0 -> 2 (return). No shared join block.
	g := graph.New()
	n0 := g.AddNode()
	n1 := g.AddNode()
	n2 := g.AddNode()
	g.AddEdge(n0, n1)
	g.AddEdge(n0, n2)

	dfs, err := graph.DFSTreeOf(g, n0)
	require.NoError(t, err)

	pdom, err := graph.PostDominatorTreeOf(g, n0, dfs)
	require.NoError(t, err)

	join, ok := pdom.ImmediateDominator(n0)
	require.True(t, ok, "a synthetic super-exit join always exists when both arms terminate")
	require.False(t, g.Has(join), "the join is not a real block in g")
}

func TestPostDominatorTreeOf_InfiniteLoopArm_NoPostDominator(t *testing.T) {
	t.Parallel()

	// 0 -> 1 (return), 0 -> 2 -> 2 (self-loop, never returns).
	g := graph.New()
	n0 := g.AddNode()
	n1 := g.AddNode()
	n2 := g.AddNode()
	g.AddEdge(n0, n1)
	g.AddEdge(n0, n2)
	g.AddEdge(n2, n2)

	dfs, err := graph.DFSTreeOf(g, n0)
	require.NoError(t, err)

	pdom, err := graph.PostDominatorTreeOf(g, n0, dfs)
	require.NoError(t, err)

	_, ok := pdom.ImmediateDominator(n2)
	require.False(t, ok, "n2 can never reach an exit, so it has no post-dominator")
}
