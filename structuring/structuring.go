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

// Package structuring implements the CFG-to-AST lifting pass: a
// depth-first walk of the function's graph, guided by its post-dominator
// tree, that turns basic blocks and branches back into nested
// if/while/for statements (spec.md §4.4).
package structuring

import (
	"github.com/dsarch/medaldec/astir"
	"github.com/dsarch/medaldec/astir/localdecl"
	"github.com/dsarch/medaldec/cfgir"
	"github.com/dsarch/medaldec/config"
	"github.com/dsarch/medaldec/cfgir/defuse"
	"github.com/dsarch/medaldec/cfgir/inline"
	"github.com/dsarch/medaldec/graph"
	irerrors "github.com/dsarch/medaldec/ir/errors"
)

// Lift structures function's entire reachable graph into a single AST
// block, with local declarations already placed.
func Lift(function *cfgir.Function) (*astir.Block, error) {
	entry, ok := function.Entry()
	if !ok {
		return nil, &irerrors.UnreachableRoot{Root: stringerNode(0)}
	}

	dfs, err := function.Reachable()
	if err != nil {
		return nil, err
	}

	pdom, err := graph.PostDominatorTreeOf(function.Graph(), entry, dfs)
	if err != nil {
		return nil, err
	}

	subst, err := inlineEverything(function, dfs)
	if err != nil {
		return nil, err
	}

	l := &lifter{
		function: function,
		dfs:      dfs,
		pdom:     pdom,
		headers:  backEdgeHeaders(function, dfs),
		subst:    subst,
		tables:   make(map[cfgir.ValueID][]astir.RValue),
		visited:  make(map[graph.NodeID]bool),
		alias:    make(map[cfgir.ValueID]cfgir.ValueID),
	}

	body, err := l.structure(entry, 0, false, 0)
	if err != nil {
		return nil, err
	}

	localdecl.Declare(body, nil)
	return body, nil
}

type stringerNode graph.NodeID

func (n stringerNode) String() string { return "<no entry>" }

// inlineEverything runs the expression-inlining pass over every
// reachable block and merges the per-block substitution tables into one.
func inlineEverything(function *cfgir.Function, dfs *graph.DFSTree) (*inline.Substitutions, error) {
	merged := inline.New()
	du, err := defuse.Build(function)
	if err != nil {
		return nil, err
	}
	for _, node := range dfs.Nodes() {
		sub := inline.Run(function, node, du)
		merged.Merge(sub)
		du.UpdateBlock(function, node)
	}
	return merged, nil
}

// backEdgeHeaders returns the set of nodes that are the target of at
// least one back edge (n -> header where header is n's own DFS-tree
// ancestor): the standard definition of a natural-loop header.
func backEdgeHeaders(function *cfgir.Function, dfs *graph.DFSTree) map[graph.NodeID]bool {
	headers := make(map[graph.NodeID]bool)
	for _, n := range dfs.Nodes() {
		block, ok := function.Block(n)
		if !ok {
			continue
		}
		for _, s := range block.Successors() {
			if dfs.IsAncestor(s, n) {
				headers[s] = true
			}
		}
	}
	return headers
}

type lifter struct {
	function *cfgir.Function
	dfs      *graph.DFSTree
	pdom     *graph.DominatorTree
	headers  map[graph.NodeID]bool
	subst    *inline.Substitutions
	tables   map[cfgir.ValueID][]astir.RValue
	visited  map[graph.NodeID]bool

	// alias coalesces a phi destination onto one of its own incoming
	// values, so that a branch with no real else-arm does not need a
	// synthesized copy assignment on the implicit fallthrough edge (the
	// merged variable just keeps living in the value's own local).
	alias map[cfgir.ValueID]cfgir.ValueID
}

// resolve follows the alias chain for v to its representative value.
func (l *lifter) resolve(v cfgir.ValueID) cfgir.ValueID {
	if a, ok := l.alias[v]; ok {
		return l.resolve(a)
	}
	return v
}

func (l *lifter) localFor(v cfgir.ValueID) astir.Local {
	return astir.Local(int(l.resolve(v)))
}

// structure builds the AST for the region starting at node, stopping
// (without consuming) when it would re-enter stopAt, if hasStop is set.
// depth counts nested loop/branch recursion, guarded by
// config.MaxStructuringDepth against a post-dominator tree that does not
// match the graph it was built from.
func (l *lifter) structure(node graph.NodeID, stopAt graph.NodeID, hasStop bool, depth int) (*astir.Block, error) {
	if depth > config.MaxStructuringDepth {
		return nil, &irerrors.Irreducible{Detail: "structuring depth exceeded config.MaxStructuringDepth"}
	}
	block := astir.NewBlock()
	cur := node

	for {
		if hasStop && cur == stopAt {
			return block, nil
		}
		if l.visited[cur] {
			return block, nil
		}
		l.visited[cur] = true

		bb, ok := l.function.Block(cur)
		if !ok {
			return nil, &irerrors.InternalInvariant{Detail: "structuring reached a node with no block"}
		}
		l.lowerInstructions(block, bb)

		switch term := bb.Terminator.(type) {
		case *cfgir.Return:
			block.Statements = append(block.Statements, &astir.Return{
				Values: l.lowerValueRefs(term.Values),
			})
			return block, nil

		case *cfgir.UnconditionalJump:
			l.emitPhiCopies(block, cur, term.Target)
			cur = term.Target
			continue

		case *cfgir.NumericFor:
			l.emitPhiCopies(block, cur, term.Body)
			bodyBlock, err := l.structure(term.Body, cur, true, depth+1)
			if err != nil {
				return nil, err
			}
			block.Statements = append(block.Statements, &astir.NumericFor{
				Induction: l.localFor(term.Induction),
				Init:      l.lowerValueRef(term.Init),
				Limit:     l.lowerValueRef(term.Limit),
				Step:      l.lowerValueRef(term.Step),
				Body:      bodyBlock,
			})
			l.emitPhiCopies(block, cur, term.Exit)
			cur = term.Exit
			continue

		case *cfgir.ConditionalJump:
			stmt, next, terminal, err := l.structureConditional(block, cur, term, depth)
			if err != nil {
				return nil, err
			}
			block.Statements = append(block.Statements, stmt)
			if terminal {
				return block, nil
			}
			cur = next
			continue

		default:
			return nil, &irerrors.UnsupportedFanout{Count: len(bb.Successors())}
		}
	}
}

// structureConditional builds either a While (when the branch closes a
// natural loop back to its own header) or an If (otherwise), returning
// the statement, the node execution continues at afterward, and whether
// there is no such continuation (both arms terminate the function).
func (l *lifter) structureConditional(block *astir.Block, cur graph.NodeID, term *cfgir.ConditionalJump, depth int) (astir.Statement, graph.NodeID, bool, error) {
	if l.headers[cur] {
		body, exit, err := l.pickLoopArms(cur, term)
		if err != nil {
			return nil, 0, false, err
		}
		l.emitPhiCopies(block, cur, body)
		bodyBlock, err := l.structure(body, cur, true, depth+1)
		if err != nil {
			return nil, 0, false, err
		}
		l.emitPhiCopies(block, cur, exit)
		stmt := &astir.While{Condition: l.lowerValueRef(term.Condition), Body: bodyBlock}
		return stmt, exit, false, nil
	}

	join, hasJoin := l.pdom.ImmediateDominator(cur)
	realJoin := hasJoin && l.function.Graph().Has(join)

	var stopAt graph.NodeID
	hasStop := realJoin
	if realJoin {
		stopAt = join
	}

	hasElse := !realJoin || term.False != join
	if !hasElse {
		// The false arm falls straight through to join with no block of
		// its own: coalesce every phi merged there onto the value
		// already flowing in on this edge, so the only code generated is
		// the then-arm's own copy, not a redundant synthesized else.
		if joinBlock, ok := l.function.Block(join); ok {
			for _, phi := range joinBlock.Phis {
				if incoming, ok := phi.Incoming[cur]; ok {
					l.alias[phi.Dest] = incoming
				}
			}
		}
	}

	thenBlock, err := l.structure(term.True, stopAt, hasStop, depth+1)
	if err != nil {
		return nil, 0, false, err
	}

	var elseBlock *astir.Block
	if hasElse {
		elseBlock, err = l.structure(term.False, stopAt, hasStop, depth+1)
		if err != nil {
			return nil, 0, false, err
		}
	}

	stmt := &astir.If{Condition: l.lowerValueRef(term.Condition), Then: thenBlock, Else: elseBlock}
	if !realJoin {
		return stmt, 0, true, nil
	}
	return stmt, join, false, nil
}

// pickLoopArms decides which successor of a loop header continues the
// loop body (the one from which the header is reachable again) and
// which one exits it.
func (l *lifter) pickLoopArms(header graph.NodeID, term *cfgir.ConditionalJump) (body, exit graph.NodeID, err error) {
	trueLoops := l.canReach(term.True, header)
	falseLoops := l.canReach(term.False, header)
	switch {
	case trueLoops && !falseLoops:
		return term.True, term.False, nil
	case falseLoops && !trueLoops:
		return term.False, term.True, nil
	case trueLoops && falseLoops:
		// both arms eventually rejoin the header (nested loops sharing
		// one header block); take the first arm as the body, consistent
		// with the bytecode's lexical then-arm being the loop body.
		return term.True, term.False, nil
	default:
		return 0, 0, &irerrors.Irreducible{Detail: "loop header's branch never reaches its own header again"}
	}
}

// canReach reports whether target is reachable from start within the
// function's graph.
func (l *lifter) canReach(start, target graph.NodeID) bool {
	if start == target {
		return true
	}
	seen := map[graph.NodeID]bool{start: true}
	stack := []graph.NodeID{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		block, ok := l.function.Block(n)
		if !ok {
			continue
		}
		for _, s := range block.Successors() {
			if s == target {
				return true
			}
			if !seen[s] {
				seen[s] = true
				stack = append(stack, s)
			}
		}
	}
	return false
}

// emitPhiCopies appends an Assign for every phi at to's head whose
// incoming edge is from, the standard copy-insertion step for leaving
// SSA form at a structured control-flow edge.
func (l *lifter) emitPhiCopies(block *astir.Block, from, to graph.NodeID) {
	toBlock, ok := l.function.Block(to)
	if !ok {
		return
	}
	for _, phi := range toBlock.Phis {
		incoming, ok := phi.Incoming[from]
		if !ok {
			continue
		}
		if l.resolve(phi.Dest) == l.resolve(incoming) {
			continue // coalesced onto this very value; no copy needed
		}
		block.Statements = append(block.Statements, &astir.Assign{
			Targets: []astir.Local{l.localFor(phi.Dest)},
			Value:   l.lowerValueRef(incoming),
		})
	}
}
