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

package structuring_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/dsarch/medaldec/astir"
	"github.com/dsarch/medaldec/cfgir"
	"github.com/dsarch/medaldec/graph"
	"github.com/dsarch/medaldec/internal/snapshot"
	"github.com/dsarch/medaldec/structuring"
)

// buildAbs constructs the CFG for:
//
//	if v0 < 0 then v3 = -v0 else end
//	return phi(v0, v3)
func buildAbs(t *testing.T) *cfgir.Function {
	t.Helper()
	f := cfgir.NewFunction()

	entry := cfgir.NewBasicBlock()
	v0 := f.NewValue()
	zero := f.NewValue()
	entry.Inner = append(entry.Inner, &cfgir.LoadConstant{Dest: zero, Constant: cfgir.Constant{Kind: cfgir.ConstantNumber}})
	cond := f.NewValue()
	entry.Inner = append(entry.Inner, &cfgir.BinaryOp{Dest: cond, Op: cfgir.OpLt, Left: v0, Right: zero})

	then := cfgir.NewBasicBlock()
	neg := f.NewValue()
	then.Inner = append(then.Inner, &cfgir.UnaryOp{Dest: neg, Op: cfgir.OpNeg, Operand: v0})

	join := cfgir.NewBasicBlock()

	entryID := f.AddBlock(entry)
	thenID := f.AddBlock(then)
	joinID := f.AddBlock(join)
	f.SetEntry(entryID)

	entry.Terminator = &cfgir.ConditionalJump{Condition: cond, True: thenID, False: joinID}
	then.Terminator = &cfgir.UnconditionalJump{Target: joinID}

	phi := f.NewValue()
	join.Phis = append(join.Phis, &cfgir.Phi{
		Dest: phi,
		Incoming: map[graph.NodeID]cfgir.ValueID{
			entryID: v0,
			thenID:  neg,
		},
	})
	join.Terminator = &cfgir.Return{Values: []cfgir.ValueID{phi}}

	f.Graph().AddEdge(entryID, thenID)
	f.Graph().AddEdge(entryID, joinID)
	f.Graph().AddEdge(thenID, joinID)

	return f
}

func TestLift_IfWithoutElse(t *testing.T) {
	f := buildAbs(t)

	body, err := structuring.Lift(f)
	require.NoError(t, err)
	require.NotEmpty(t, body.Statements)

	var foundIf *astir.If
	var foundReturn *astir.Return
	for _, stmt := range body.Statements {
		switch s := stmt.(type) {
		case *astir.If:
			foundIf = s
		case *astir.Return:
			foundReturn = s
		}
	}
	require.NotNil(t, foundIf, "expected an If statement in %#v", body.Statements)
	require.Nil(t, foundIf.Else, "join is a real block so there should be no synthesized else")
	require.NotNil(t, foundReturn)
	require.Len(t, foundReturn.Values, 1)
}

// TestLift_IfWithoutElse_SurvivesSnapshotRoundTrip round-trips the
// if-without-else example through internal/snapshot: encoding and
// decoding must reproduce the exact structured body, not just something
// structurally similar.
func TestLift_IfWithoutElse_SurvivesSnapshotRoundTrip(t *testing.T) {
	f := buildAbs(t)

	body, err := structuring.Lift(f)
	require.NoError(t, err)

	encoded, err := snapshot.RoundTrip(body)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	var decoded astir.Block
	require.NoError(t, snapshot.Decode(bytes.NewReader(encoded), &decoded))
	require.Empty(t, cmp.Diff(body, &decoded), "decoded body must match the structured body exactly")
}

// buildCountdown constructs: while v0 > 0 do v4 = v0 - 1 end; return v0.
// Only the loop shape matters here, so v4 is not fed back into v0.
func buildCountdown(t *testing.T) *cfgir.Function {
	t.Helper()
	f := cfgir.NewFunction()

	header := cfgir.NewBasicBlock()
	v0 := f.NewValue()
	zero := f.NewValue()
	header.Inner = append(header.Inner, &cfgir.LoadConstant{Dest: zero, Constant: cfgir.Constant{Kind: cfgir.ConstantNumber}})
	cond := f.NewValue()
	header.Inner = append(header.Inner, &cfgir.BinaryOp{Dest: cond, Op: cfgir.OpGt, Left: v0, Right: zero})

	body := cfgir.NewBasicBlock()
	one := f.NewValue()
	body.Inner = append(body.Inner, &cfgir.LoadConstant{Dest: one, Constant: cfgir.Constant{Kind: cfgir.ConstantNumber, Number: 1}})
	dec := f.NewValue()
	body.Inner = append(body.Inner, &cfgir.BinaryOp{Dest: dec, Op: cfgir.OpSub, Left: v0, Right: one})

	exit := cfgir.NewBasicBlock()

	headerID := f.AddBlock(header)
	bodyID := f.AddBlock(body)
	exitID := f.AddBlock(exit)
	f.SetEntry(headerID)

	header.Terminator = &cfgir.ConditionalJump{Condition: cond, True: bodyID, False: exitID}
	body.Terminator = &cfgir.UnconditionalJump{Target: headerID}
	exit.Terminator = &cfgir.Return{Values: []cfgir.ValueID{v0}}

	f.Graph().AddEdge(headerID, bodyID)
	f.Graph().AddEdge(headerID, exitID)
	f.Graph().AddEdge(bodyID, headerID)

	return f
}

func TestLift_WhileLoop(t *testing.T) {
	f := buildCountdown(t)

	body, err := structuring.Lift(f)
	require.NoError(t, err)

	var foundWhile *astir.While
	for _, stmt := range body.Statements {
		if w, ok := stmt.(*astir.While); ok {
			foundWhile = w
		}
	}
	require.NotNil(t, foundWhile, "expected a While statement in %#v", body.Statements)
	require.NotEmpty(t, foundWhile.Body.Statements)
}

// TestLift_WhileLoop_SurvivesSnapshotRoundTrip pins the loop-with-back-edge
// worked example (spec.md §8.5) down the same way.
func TestLift_WhileLoop_SurvivesSnapshotRoundTrip(t *testing.T) {
	f := buildCountdown(t)

	body, err := structuring.Lift(f)
	require.NoError(t, err)

	encoded, err := snapshot.RoundTrip(body)
	require.NoError(t, err)

	var decoded astir.Block
	require.NoError(t, snapshot.Decode(bytes.NewReader(encoded), &decoded))
	require.Empty(t, cmp.Diff(body, &decoded))
}
