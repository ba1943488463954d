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
	"sort"

	"github.com/dsarch/medaldec/bytecode"
)

// isTestPair reports whether the instruction at pc opens a
// compare-then-jump pair, the shape luac always emits for a Lua
// comparison or logical test: the comparison sets no register and is
// immediately followed by an unconditional JMP that the VM may or may
// not execute depending on how the comparison came out.
func isTestPair(code []bytecode.Instruction, pc int) bool {
	switch code[pc].Op {
	case bytecode.OpEq, bytecode.OpLt, bytecode.OpLe:
		return pc+1 < len(code) && code[pc+1].Op == bytecode.OpJmp
	default:
		return false
	}
}

// successorPCs returns the leader pcs reachable from the block whose
// last instruction is at pc, in [true, false] / [target] order where
// that distinction applies.
func successorPCs(code []bytecode.Instruction, pc int) []int {
	inst := code[pc]
	switch {
	case isTestPair(code, pc):
		jmp := code[pc+1]
		taken := (pc + 2) + jmp.SBx
		return []int{taken, pc + 2}
	case inst.Op == bytecode.OpJmp:
		return []int{pc + 1 + inst.SBx}
	case inst.Op == bytecode.OpForPrep:
		return []int{pc + 1 + inst.SBx}
	case inst.Op == bytecode.OpForLoop:
		// The back edge re-enters the NumericFor terminator emitted at
		// the matching FORPREP, not the loop body's own first pc: see
		// lift.go's forHeader map, built by computeForHeaders.
		return nil
	case inst.Op == bytecode.OpReturn, inst.Op == bytecode.OpTailCall:
		return nil
	default:
		if pc+1 < len(code) {
			return []int{pc + 1}
		}
		return nil
	}
}

// isTerminator reports whether the instruction at pc ends its block.
func isTerminator(code []bytecode.Instruction, pc int) bool {
	switch code[pc].Op {
	case bytecode.OpJmp, bytecode.OpForPrep, bytecode.OpForLoop, bytecode.OpReturn, bytecode.OpTailCall:
		return true
	default:
		return isTestPair(code, pc)
	}
}

// computeLeaders returns the sorted, deduplicated pcs that begin a
// basic block: pc 0, every jump target, and every instruction
// immediately following a block-ending instruction.
func computeLeaders(code []bytecode.Instruction) []int {
	set := map[int]bool{0: true}
	for pc := 0; pc < len(code); pc++ {
		if !isTerminator(code, pc) {
			continue
		}
		for _, target := range successorPCs(code, pc) {
			if target >= 0 && target < len(code) {
				set[target] = true
			}
		}
		if isTestPair(code, pc) {
			pc++ // the paired JMP belongs to the same block, skip past it
		}
		if pc+1 < len(code) {
			set[pc+1] = true
		}
	}
	leaders := make([]int, 0, len(set))
	for pc := range set {
		leaders = append(leaders, pc)
	}
	sort.Ints(leaders)
	return leaders
}

// blockEnd returns the exclusive end pc of the block starting at
// leaders[i].
func blockEnd(leaders []int, i, codeLen int) int {
	if i+1 < len(leaders) {
		return leaders[i+1]
	}
	return codeLen
}
