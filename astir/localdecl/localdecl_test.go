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

package localdecl_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/dsarch/medaldec/astir"
	"github.com/dsarch/medaldec/astir/localdecl"
	"github.com/dsarch/medaldec/internal/snapshot"
)

func TestDeclare_CoalescesSingleAssign(t *testing.T) {
	x := astir.Local(0)
	body := &astir.Block{
		Statements: []astir.Statement{
			&astir.Assign{Targets: []astir.Local{x}, Value: &astir.LitRValue{}},
			&astir.Return{Values: []astir.RValue{&astir.LocalRValue{Local: x}}},
		},
	}

	localdecl.Declare(body, nil)

	decl, ok := body.Statements[0].(*astir.LocalDecl)
	require.True(t, ok)
	require.Equal(t, []astir.Local{x}, decl.Locals)
	require.Len(t, decl.Values, 1)
}

// TestDeclare_SingleAssign_SurvivesSnapshotRoundTrip pins the single-
// assignment worked example (spec.md §8.5) down as a byte-stable fixture,
// the same way structuring's tests pin down the if/loop examples.
func TestDeclare_SingleAssign_SurvivesSnapshotRoundTrip(t *testing.T) {
	x := astir.Local(0)
	body := &astir.Block{
		Statements: []astir.Statement{
			&astir.Assign{Targets: []astir.Local{x}, Value: &astir.LitRValue{}},
			&astir.Return{Values: []astir.RValue{&astir.LocalRValue{Local: x}}},
		},
	}
	localdecl.Declare(body, nil)

	encoded, err := snapshot.RoundTrip(body)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	var decoded astir.Block
	require.NoError(t, snapshot.Decode(bytes.NewReader(encoded), &decoded))
	require.Empty(t, cmp.Diff(body, &decoded))
}

func TestDeclare_CoalescesSiblingsFromMultiTargetAssign(t *testing.T) {
	a, b := astir.Local(0), astir.Local(1)
	body := &astir.Block{
		Statements: []astir.Statement{
			&astir.Assign{Targets: []astir.Local{a, b}, Value: &astir.CallRValue{Target: &astir.LocalRValue{Local: 2}}},
			&astir.Return{Values: []astir.RValue{&astir.LocalRValue{Local: a}, &astir.LocalRValue{Local: b}}},
		},
	}

	localdecl.Declare(body, nil)

	decl, ok := body.Statements[0].(*astir.LocalDecl)
	require.True(t, ok, "a and b share a first-use statement so must coalesce into one LocalDecl")
	require.Equal(t, []astir.Local{a, b}, decl.Locals)
	require.Empty(t, decl.Values, "the multi-target assign keeps its own Value; the decl only predeclares")

	assign, ok := body.Statements[1].(*astir.Assign)
	require.True(t, ok, "the original multi-target assign is left in place")
	require.Equal(t, []astir.Local{a, b}, assign.Targets)
}

func TestDeclare_HoistsWhenAssignedInBothBranches(t *testing.T) {
	x := astir.Local(0)
	thenBlock := &astir.Block{Statements: []astir.Statement{
		&astir.Assign{Targets: []astir.Local{x}, Value: &astir.LitRValue{}},
	}}
	elseBlock := &astir.Block{Statements: []astir.Statement{
		&astir.Assign{Targets: []astir.Local{x}, Value: &astir.LitRValue{}},
	}}
	body := &astir.Block{
		Statements: []astir.Statement{
			&astir.If{Condition: &astir.LitRValue{}, Then: thenBlock, Else: elseBlock},
			&astir.Return{Values: []astir.RValue{&astir.LocalRValue{Local: x}}},
		},
	}

	localdecl.Declare(body, nil)

	decl, ok := body.Statements[0].(*astir.LocalDecl)
	require.True(t, ok, "x is written in both arms so must be declared before the if")
	require.Equal(t, []astir.Local{x}, decl.Locals)
	require.Empty(t, decl.Values)

	// the if itself should not have moved.
	_, stillIf := body.Statements[1].(*astir.If)
	require.True(t, stillIf)
}

func TestDeclare_PushesDownIntoSingleBranchWhenScopeAllows(t *testing.T) {
	x := astir.Local(0)
	thenBlock := &astir.Block{Statements: []astir.Statement{
		&astir.Assign{Targets: []astir.Local{x}, Value: &astir.LitRValue{}},
		&astir.ExprStatement{Call: &astir.CallRValue{Target: &astir.LocalRValue{Local: x}}},
	}}
	body := &astir.Block{
		Statements: []astir.Statement{
			&astir.If{Condition: &astir.LitRValue{}, Then: thenBlock},
		},
	}

	localdecl.Declare(body, nil)

	// body itself gets no declaration; it lives entirely inside the then-branch.
	_, ok := body.Statements[0].(*astir.LocalDecl)
	require.False(t, ok)

	decl, ok := thenBlock.Statements[0].(*astir.LocalDecl)
	require.True(t, ok)
	require.Equal(t, []astir.Local{x}, decl.Locals)
}

func TestDeclare_IgnoresForLoopInduction(t *testing.T) {
	i := astir.Local(0)
	forBody := &astir.Block{Statements: []astir.Statement{
		&astir.ExprStatement{Call: &astir.CallRValue{Target: &astir.LocalRValue{Local: i}}},
	}}
	body := &astir.Block{
		Statements: []astir.Statement{
			&astir.NumericFor{
				Induction: i,
				Init:      &astir.LitRValue{},
				Limit:     &astir.LitRValue{},
				Step:      &astir.LitRValue{},
				Body:      forBody,
			},
		},
	}

	localdecl.Declare(body, nil)

	for _, stmt := range forBody.Statements {
		_, ok := stmt.(*astir.LocalDecl)
		require.False(t, ok, "induction variable must never get its own LocalDecl")
	}
}
