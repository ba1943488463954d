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

// Package lift translates a parsed bytecode.Proto into a cfgir.Function,
// the way original_source/lua51-lifter/src/main.rs's Lifter::lift_function
// turns a deserialized chunk into this project's own control-flow graph.
// It covers the opcode subset spec.md's examples actually exercise
// (arithmetic, unary operators, CONCAT, comparisons,
// MOVE/LOADK/LOADNIL, LOADBOOL without its skip operand, table
// construction, calls, control flow, and the numeric for pair);
// anything else is reported
// through ir/errors rather than silently mistranslated.
package lift

import (
	"fmt"

	"github.com/dsarch/medaldec/bytecode"
	"github.com/dsarch/medaldec/cfgir"
	irerrors "github.com/dsarch/medaldec/ir/errors"
	"github.com/dsarch/medaldec/graph"
)

// Function translates proto's own code into a standalone cfgir.Function.
// It does not descend into proto.Protos; callers lift nested closures
// separately, one Function per Proto, the same granularity cfgir itself
// works at.
func Function(proto *bytecode.Proto) (*cfgir.Function, error) {
	fn := cfgir.NewFunction()
	l := &lifter{
		fn:    fn,
		proto: proto,
		ssa:   newRegisterSSA(fn),
		nodeAt: make(map[int]graph.NodeID),
		succPCs: make(map[int][]int),
	}
	if err := l.run(); err != nil {
		return nil, err
	}
	return fn, nil
}

type lifter struct {
	fn    *cfgir.Function
	proto *bytecode.Proto
	ssa   *registerSSA

	leaders   []int
	nodeAt    map[int]graph.NodeID
	succPCs   map[int][]int // leader pc -> successor leader pcs, static
	forHeader map[int]int   // FORLOOP pc -> leader pc of the matching FORPREP's block
}

func (l *lifter) run() error {
	code := l.proto.Code
	if len(code) == 0 {
		return &irerrors.MalformedAst{Detail: "function has no instructions"}
	}
	l.leaders = computeLeaders(code)
	l.computeForHeaders()

	for _, pc := range l.leaders {
		node := l.fn.AddBlock(cfgir.NewBasicBlock())
		l.nodeAt[pc] = node
		l.ssa.blocks[node] = mustBlock(l.fn, node)
	}
	l.fn.SetEntry(l.nodeAt[0])

	// Static predecessor counts must be known before any block is
	// translated, since a loop header's back-edge predecessor is
	// translated strictly after the header itself.
	for i, pc := range l.leaders {
		end := blockEnd(l.leaders, i, len(code))
		succs := l.terminatorSuccessors(pc, end)
		l.succPCs[pc] = succs
		for _, succPC := range succs {
			l.ssa.staticEdge(l.nodeAt[pc], l.nodeAt[succPC])
		}
	}
	for _, pc := range l.leaders {
		node := l.nodeAt[pc]
		if l.ssa.remaining[node] == 0 {
			l.ssa.sealed[node] = true
		}
	}
	l.ssa.sealed[l.nodeAt[0]] = true

	for i, pc := range l.leaders {
		end := blockEnd(l.leaders, i, len(code))
		if err := l.translateBlock(pc, end); err != nil {
			return err
		}
	}
	l.ssa.sealRemaining()
	return nil
}

func mustBlock(fn *cfgir.Function, node graph.NodeID) *cfgir.BasicBlock {
	bb, _ := fn.Block(node)
	return bb
}

// terminatorSuccessors returns the CFG successor leader pcs for the
// block [pc, end). For FORPREP/FORLOOP these are deliberately not the
// instructions' own bytecode jump targets: see translateForPrep and
// translateForLoop for why the pair collapses to a single NumericFor
// terminator at the FORPREP node plus one back edge.
func (l *lifter) terminatorSuccessors(pc, end int) []int {
	last := end - 1
	if last > pc && isTestPair(l.proto.Code, last-1) {
		last--
	}
	inst := l.proto.Code[last]
	switch inst.Op {
	case bytecode.OpForPrep:
		return []int{last + 1, last + 1 + inst.SBx + 1}
	case bytecode.OpForLoop:
		return []int{l.forHeader[last]}
	default:
		return successorPCs(l.proto.Code, last)
	}
}

// computeForHeaders maps every FORLOOP pc to the leader pc of the block
// that ends in the FORPREP targeting it, so the back edge can be looked
// up in nodeAt. It runs after the leaders are known.
func (l *lifter) computeForHeaders() {
	l.forHeader = make(map[int]int)
	for pc, inst := range l.proto.Code {
		if inst.Op == bytecode.OpForPrep {
			leader := 0
			for _, lp := range l.leaders {
				if lp <= pc {
					leader = lp
				}
			}
			l.forHeader[pc+1+inst.SBx] = leader
		}
	}
}

func (l *lifter) translateBlock(pc, end int) error {
	node := l.nodeAt[pc]
	bb := mustBlock(l.fn, node)

	cursor := pc
	for cursor < end {
		inst := l.proto.Code[cursor]

		if isTestPair(l.proto.Code, cursor) {
			if err := l.translateTest(node, bb, cursor); err != nil {
				return err
			}
			cursor += 2
			continue
		}

		switch inst.Op {
		case bytecode.OpJmp:
			target := l.nodeAt[cursor+1+inst.SBx]
			bb.Terminator = &cfgir.UnconditionalJump{Target: target}
			l.ssa.wireEdge(node, target)
			cursor = end

		case bytecode.OpForPrep:
			if err := l.translateForPrep(node, bb, cursor); err != nil {
				return err
			}
			cursor = end

		case bytecode.OpForLoop:
			l.translateForLoop(node, bb, cursor)
			cursor = end

		case bytecode.OpReturn:
			bb.Terminator = &cfgir.Return{Values: l.callArgs(node, inst.A, inst.B)}
			cursor = end

		case bytecode.OpTailCall:
			return &irerrors.UnsupportedFanout{Count: inst.B}

		default:
			if err := l.translateInner(node, bb, cursor); err != nil {
				return err
			}
			cursor++
		}
	}

	if cursor == end && bb.Terminator == nil && end < len(l.proto.Code) {
		// Straight-line fallthrough into the next leader with no explicit
		// jump in the bytecode (the common case for non-branching code).
		target := l.nodeAt[end]
		bb.Terminator = &cfgir.UnconditionalJump{Target: target}
		l.ssa.wireEdge(node, target)
	}

	l.ssa.finishBlock(node, succNodes(l, l.succPCs[pc]))
	return nil
}

func succNodes(l *lifter, pcs []int) []graph.NodeID {
	out := make([]graph.NodeID, len(pcs))
	for i, pc := range pcs {
		out[i] = l.nodeAt[pc]
	}
	return out
}

// rk resolves a 9-bit register-or-constant operand to a cfgir value,
// loading constants into a fresh value on first use.
func (l *lifter) rk(node graph.NodeID, bb *cfgir.BasicBlock, r int) cfgir.ValueID {
	if idx, isConst := bytecode.IsRK(r); isConst {
		dest := l.fn.NewValue()
		bb.Inner = append(bb.Inner, &cfgir.LoadConstant{Dest: dest, Constant: l.proto.Constants[idx]})
		return dest
	}
	return l.ssa.read(node, r)
}

func (l *lifter) translateInner(node graph.NodeID, bb *cfgir.BasicBlock, pc int) error {
	inst := l.proto.Code[pc]
	switch inst.Op {
	case bytecode.OpMove:
		l.ssa.write(node, inst.A, l.ssa.read(node, inst.B))

	case bytecode.OpLoadK:
		dest := l.fn.NewValue()
		bb.Inner = append(bb.Inner, &cfgir.LoadConstant{Dest: dest, Constant: l.proto.Constants[inst.Bx]})
		l.ssa.write(node, inst.A, dest)

	case bytecode.OpLoadBool:
		if inst.C != 0 {
			return &irerrors.MalformedAst{Detail: "unsupported LOADBOOL with skip operand"}
		}
		dest := l.fn.NewValue()
		bb.Inner = append(bb.Inner, &cfgir.LoadConstant{
			Dest:     dest,
			Constant: cfgir.Constant{Kind: cfgir.ConstantBoolean, Boolean: inst.B != 0},
		})
		l.ssa.write(node, inst.A, dest)

	case bytecode.OpLoadNil:
		for r := inst.A; r <= inst.B; r++ {
			dest := l.fn.NewValue()
			bb.Inner = append(bb.Inner, &cfgir.LoadConstant{Dest: dest, Constant: cfgir.Constant{Kind: cfgir.ConstantNil}})
			l.ssa.write(node, r, dest)
		}

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod, bytecode.OpPow:
		dest := l.fn.NewValue()
		bb.Inner = append(bb.Inner, &cfgir.BinaryOp{
			Dest:  dest,
			Op:    arithOp(inst.Op),
			Left:  l.rk(node, bb, inst.B),
			Right: l.rk(node, bb, inst.C),
		})
		l.ssa.write(node, inst.A, dest)

	case bytecode.OpUnm, bytecode.OpNot, bytecode.OpLen:
		dest := l.fn.NewValue()
		bb.Inner = append(bb.Inner, &cfgir.UnaryOp{Dest: dest, Op: unOp(inst.Op), Operand: l.ssa.read(node, inst.B)})
		l.ssa.write(node, inst.A, dest)

	case bytecode.OpConcat:
		acc := l.ssa.read(node, inst.C)
		for r := inst.C - 1; r >= inst.B; r-- {
			dest := l.fn.NewValue()
			bb.Inner = append(bb.Inner, &cfgir.BinaryOp{Dest: dest, Op: cfgir.OpConcat, Left: l.ssa.read(node, r), Right: acc})
			acc = dest
		}
		l.ssa.write(node, inst.A, acc)

	case bytecode.OpNewTable:
		dest := l.fn.NewValue()
		bb.Inner = append(bb.Inner, &cfgir.NewTable{Dest: dest})
		l.ssa.write(node, inst.A, dest)

	case bytecode.OpSetList:
		table := l.ssa.read(node, inst.A)
		for i := 1; i <= inst.B; i++ {
			bb.Inner = append(bb.Inner, &cfgir.SetListAppend{Table: table, Value: l.ssa.read(node, inst.A+i)})
		}

	case bytecode.OpCall:
		l.translateCall(node, bb, inst)

	case bytecode.OpGetGlobal:
		dest := l.fn.NewValue()
		bb.Inner = append(bb.Inner, &cfgir.LoadConstant{
			Dest:     dest,
			Constant: cfgir.Constant{Kind: cfgir.ConstantString, String: l.proto.Constants[inst.Bx].String},
		})
		l.ssa.write(node, inst.A, dest)

	default:
		return &irerrors.MalformedAst{Detail: fmt.Sprintf("unsupported opcode %d at pc %d", inst.Op, pc)}
	}
	return nil
}

func (l *lifter) translateCall(node graph.NodeID, bb *cfgir.BasicBlock, inst bytecode.Instruction) {
	target := l.ssa.read(node, inst.A)
	args := l.callArgs(node, inst.A+1, inst.B)

	var dests []cfgir.ValueID
	if inst.C >= 1 {
		dests = make([]cfgir.ValueID, inst.C-1)
		for i := range dests {
			dests[i] = l.fn.NewValue()
			l.ssa.write(node, inst.A+i, dests[i])
		}
	}
	bb.Inner = append(bb.Inner, &cfgir.Call{Dests: dests, Target: target, Args: args})
}

// callArgs resolves a RETURN/CALL-style (base, count) operand pair,
// where count==0 means "through the current top of stack", a
// variable-arity shape this lifter does not attempt to resolve.
func (l *lifter) callArgs(node graph.NodeID, base, count int) []cfgir.ValueID {
	if count == 0 {
		return nil
	}
	args := make([]cfgir.ValueID, count-1)
	for i := range args {
		args[i] = l.ssa.read(node, base+i)
	}
	return args
}

func (l *lifter) translateTest(node graph.NodeID, bb *cfgir.BasicBlock, pc int) error {
	inst := l.proto.Code[pc]
	jmp := l.proto.Code[pc+1]

	cmp := l.fn.NewValue()
	bb.Inner = append(bb.Inner, &cfgir.BinaryOp{
		Dest:  cmp,
		Op:    cmpOp(inst.Op),
		Left:  l.rk(node, bb, inst.B),
		Right: l.rk(node, bb, inst.C),
	})

	condition := cmp
	if inst.A == 0 {
		notCmp := l.fn.NewValue()
		bb.Inner = append(bb.Inner, &cfgir.UnaryOp{Dest: notCmp, Op: cfgir.OpNot, Operand: cmp})
		condition = notCmp
	}

	taken := l.nodeAt[(pc+2)+jmp.SBx]
	fallthroughTarget := l.nodeAt[pc+2]
	bb.Terminator = &cfgir.ConditionalJump{Condition: condition, True: taken, False: fallthroughTarget}
	l.ssa.wireEdge(node, taken)
	l.ssa.wireEdge(node, fallthroughTarget)
	return nil
}

func (l *lifter) translateForPrep(node graph.NodeID, bb *cfgir.BasicBlock, pc int) error {
	inst := l.proto.Code[pc]
	base := inst.A

	init := l.ssa.read(node, base)
	limit := l.ssa.read(node, base+1)
	step := l.ssa.read(node, base+2)
	// The loop variable visible to the body (base+3) starts at init; see
	// translateForLoop for the per-iteration increment.
	l.ssa.write(node, base+3, init)

	bodyPC := pc + 1
	exitPC := pc + 1 + inst.SBx + 1
	body := l.nodeAt[bodyPC]
	exit := l.nodeAt[exitPC]

	// The induction phi at the body's head is created lazily the first
	// time the body reads base+3; force its creation now so Induction is
	// available to populate the terminator.
	l.ssa.wireEdge(node, body)
	l.ssa.wireEdge(node, exit)
	induction := l.ssa.read(body, base+3)

	bb.Terminator = &cfgir.NumericFor{
		Init:      init,
		Limit:     limit,
		Step:      step,
		Induction: induction,
		Body:      body,
		Exit:      exit,
	}
	return nil
}

// translateForLoop ends the loop body's final block by incrementing the
// induction variable and jumping back to the FORPREP node, which is
// where structuring expects the loop's single NumericFor terminator to
// live (see structuring.structure's handling of *cfgir.NumericFor).
func (l *lifter) translateForLoop(node graph.NodeID, bb *cfgir.BasicBlock, pc int) {
	inst := l.proto.Code[pc]
	base := inst.A

	header := l.nodeAt[l.forHeader[pc]]
	step := l.ssa.read(node, base+2)
	next := l.fn.NewValue()
	bb.Inner = append(bb.Inner, &cfgir.BinaryOp{Dest: next, Op: cfgir.OpAdd, Left: l.ssa.read(node, base+3), Right: step})
	l.ssa.write(node, base+3, next)

	bb.Terminator = &cfgir.UnconditionalJump{Target: header}
	l.ssa.wireEdge(node, header)
}

func arithOp(op bytecode.Opcode) cfgir.BinOp {
	switch op {
	case bytecode.OpAdd:
		return cfgir.OpAdd
	case bytecode.OpSub:
		return cfgir.OpSub
	case bytecode.OpMul:
		return cfgir.OpMul
	case bytecode.OpDiv:
		return cfgir.OpDiv
	case bytecode.OpMod:
		return cfgir.OpMod
	case bytecode.OpPow:
		return cfgir.OpPow
	default:
		return cfgir.OpAdd
	}
}

func cmpOp(op bytecode.Opcode) cfgir.BinOp {
	switch op {
	case bytecode.OpEq:
		return cfgir.OpEq
	case bytecode.OpLt:
		return cfgir.OpLt
	case bytecode.OpLe:
		return cfgir.OpLe
	default:
		return cfgir.OpEq
	}
}

func unOp(op bytecode.Opcode) cfgir.UnOp {
	switch op {
	case bytecode.OpUnm:
		return cfgir.OpNeg
	case bytecode.OpNot:
		return cfgir.OpNot
	case bytecode.OpLen:
		return cfgir.OpLen
	default:
		return cfgir.OpNeg
	}
}
