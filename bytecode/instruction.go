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

package bytecode

// Opcode is one of the 38 standard Lua 5.1 opcodes, in their canonical
// numeric order (the order luac actually emits, which is load-bearing:
// the lift package switches on these values directly rather than on
// mnemonics).
type Opcode byte

// Lua 5.1 opcodes. Only a subset is consumed by the lift package today
// (arithmetic, unary operators, CONCAT, comparisons,
// MOVE/LOADK/LOADBOOL/LOADNIL, GETGLOBAL, table construction, calls,
// unconditional/conditional control flow, and the numeric for pair);
// the rest decode cleanly but are reported as unsupported by lift.
const (
	OpMove Opcode = iota
	OpLoadK
	OpLoadBool
	OpLoadNil
	OpGetUpval
	OpGetGlobal
	OpGetTable
	OpSetGlobal
	OpSetUpval
	OpSetTable
	OpNewTable
	OpSelf
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpUnm
	OpNot
	OpLen
	OpConcat
	OpJmp
	OpEq
	OpLt
	OpLe
	OpTest
	OpTestSet
	OpCall
	OpTailCall
	OpReturn
	OpForLoop
	OpForPrep
	OpTForLoop
	OpSetList
	OpClose
	OpClosure
	OpVararg
)

// instructionMode records which operand shape an opcode decodes as. The
// Lua 5.1 reference VM keys this off a static table (`luaP_opmodes`)
// indexed by opcode; we only need it to know whether to read B/C or Bx.
type instructionMode int

const (
	modeABC instructionMode = iota
	modeABx
	modeAsBx
)

var modeOf = [...]instructionMode{
	OpMove:     modeABC,
	OpLoadK:    modeABx,
	OpLoadBool: modeABC,
	OpLoadNil:  modeABC,
	OpGetUpval: modeABC,
	OpGetGlobal: modeABx,
	OpGetTable: modeABC,
	OpSetGlobal: modeABx,
	OpSetUpval: modeABC,
	OpSetTable: modeABC,
	OpNewTable: modeABC,
	OpSelf:     modeABC,
	OpAdd:      modeABC,
	OpSub:      modeABC,
	OpMul:      modeABC,
	OpDiv:      modeABC,
	OpMod:      modeABC,
	OpPow:      modeABC,
	OpUnm:      modeABC,
	OpNot:      modeABC,
	OpLen:      modeABC,
	OpConcat:   modeABC,
	OpJmp:      modeAsBx,
	OpEq:       modeABC,
	OpLt:       modeABC,
	OpLe:       modeABC,
	OpTest:     modeABC,
	OpTestSet:  modeABC,
	OpCall:     modeABC,
	OpTailCall: modeABC,
	OpReturn:   modeABC,
	OpForLoop:  modeAsBx,
	OpForPrep:  modeAsBx,
	OpTForLoop: modeABC,
	OpSetList:  modeABC,
	OpClose:    modeABC,
	OpClosure:  modeABx,
	OpVararg:   modeABC,
}

const (
	bitsOp = 6
	bitsA  = 8
	bitsB  = 9
	bitsC  = 9
	bitsBx = bitsB + bitsC

	maskOp = 1<<bitsOp - 1
	maskA  = 1<<bitsA - 1
	maskB  = 1<<bitsB - 1
	maskC  = 1<<bitsC - 1
	maskBx = 1<<bitsBx - 1

	biasBx = maskBx >> 1
)

// Instruction is one decoded 32-bit Lua instruction word, with every
// field populated regardless of the opcode's actual mode (callers read
// only the fields their opcode's mode defines).
type Instruction struct {
	Op  Opcode
	A   int
	B   int
	C   int
	Bx  int
	SBx int
}

// IsRK reports whether the 9-bit B or C operand r refers to a constant
// (the high bit set) rather than a register, and returns the constant
// table index if so.
func IsRK(r int) (constantIndex int, isConstant bool) {
	const rkBit = 1 << 8
	if r&rkBit != 0 {
		return r &^ rkBit, true
	}
	return r, false
}

func decodeInstruction(word uint32) Instruction {
	op := Opcode(word & maskOp)
	a := int((word >> bitsOp) & maskA)

	inst := Instruction{Op: op, A: a}
	switch modeOf[op] {
	case modeABC:
		inst.C = int((word >> (bitsOp + bitsA)) & maskC)
		inst.B = int((word >> (bitsOp + bitsA + bitsC)) & maskB)
	case modeABx:
		inst.Bx = int((word >> (bitsOp + bitsA)) & maskBx)
	case modeAsBx:
		inst.SBx = int((word>>(bitsOp+bitsA))&maskBx) - biasBx
	}
	return inst
}
