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

package lift_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dsarch/medaldec/bytecode"
	"github.com/dsarch/medaldec/cfgir"
	"github.com/dsarch/medaldec/lift"
)

// buildAddReturn encodes `return a + b` over two parameter registers.
func buildAddReturn() *bytecode.Proto {
	return &bytecode.Proto{
		NumParams: 2,
		Code: []bytecode.Instruction{
			{Op: bytecode.OpAdd, A: 2, B: 0, C: 1},
			{Op: bytecode.OpReturn, A: 2, B: 2},
		},
	}
}

func TestFunction_StraightLineAdd(t *testing.T) {
	fn, err := lift.Function(buildAddReturn())
	require.NoError(t, err)

	entry, ok := fn.Entry()
	require.True(t, ok)
	bb, ok := fn.Block(entry)
	require.True(t, ok)

	require.Len(t, bb.Inner, 1)
	add, ok := bb.Inner[0].(*cfgir.BinaryOp)
	require.True(t, ok)
	require.Equal(t, cfgir.OpAdd, add.Op)

	ret, ok := bb.Terminator.(*cfgir.Return)
	require.True(t, ok)
	require.Equal(t, []cfgir.ValueID{add.Dest}, ret.Values)
}

// buildCompareBranch encodes:
//
//	if a < b then return 1 else return 2 end
func buildCompareBranch() *bytecode.Proto {
	return &bytecode.Proto{
		NumParams: 2,
		Constants: []cfgir.Constant{
			{Kind: cfgir.ConstantNumber, Number: 2},
			{Kind: cfgir.ConstantNumber, Number: 1},
		},
		Code: []bytecode.Instruction{
			{Op: bytecode.OpLt, A: 1, B: 0, C: 1},  // pc0
			{Op: bytecode.OpJmp, SBx: 2},           // pc1, taken target pc4
			{Op: bytecode.OpLoadK, A: 2, Bx: 0},    // pc2 (false branch)
			{Op: bytecode.OpReturn, A: 2, B: 2},    // pc3
			{Op: bytecode.OpLoadK, A: 2, Bx: 1},    // pc4 (true branch)
			{Op: bytecode.OpReturn, A: 2, B: 2},    // pc5
		},
	}
}

func TestFunction_ConditionalBranchesToDistinctReturns(t *testing.T) {
	fn, err := lift.Function(buildCompareBranch())
	require.NoError(t, err)

	entry, ok := fn.Entry()
	require.True(t, ok)
	entryBlock, ok := fn.Block(entry)
	require.True(t, ok)

	cond, ok := entryBlock.Terminator.(*cfgir.ConditionalJump)
	require.True(t, ok)

	trueBlock, ok := fn.Block(cond.True)
	require.True(t, ok)
	falseBlock, ok := fn.Block(cond.False)
	require.True(t, ok)

	trueRet := trueBlock.Terminator.(*cfgir.Return)
	falseRet := falseBlock.Terminator.(*cfgir.Return)
	require.NotEqual(t, trueRet.Values[0], falseRet.Values[0])
}

func TestFunction_RejectsUnknownOpcode(t *testing.T) {
	proto := &bytecode.Proto{
		Code: []bytecode.Instruction{
			{Op: bytecode.OpSelf},
			{Op: bytecode.OpReturn, A: 0, B: 1},
		},
	}
	_, err := lift.Function(proto)
	require.Error(t, err)
}
