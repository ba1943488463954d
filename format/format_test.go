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

package format_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dsarch/medaldec/astir"
	"github.com/dsarch/medaldec/cfgir"
	"github.com/dsarch/medaldec/format"
)

func TestFunction_EmptyBody(t *testing.T) {
	t.Parallel()

	got := format.Function("main", astir.NewBlock())
	require.Equal(t, "function main()\nend\n", got)
}

func TestFunction_LocalDeclAndReturn(t *testing.T) {
	t.Parallel()

	block := &astir.Block{
		Statements: []astir.Statement{
			&astir.LocalDecl{
				Locals: []astir.Local{0},
				Values: []astir.RValue{
					&astir.LitRValue{Constant: cfgir.Constant{Kind: cfgir.ConstantNumber, Number: 1}},
				},
			},
			&astir.Return{
				Values: []astir.RValue{&astir.LocalRValue{Local: 0}},
			},
		},
	}

	got := format.Function("f", block)
	require.Equal(t, "function f()\n  local l0 = 1\n  return l0\nend\n", got)
}

func TestFunction_IfElse(t *testing.T) {
	t.Parallel()

	cond := &astir.BinaryRValue{
		Op:    cfgir.OpLt,
		Left:  &astir.LocalRValue{Local: 0},
		Right: &astir.LocalRValue{Local: 1},
	}
	then := &astir.Block{Statements: []astir.Statement{
		&astir.Return{Values: []astir.RValue{&astir.LitRValue{Constant: cfgir.Constant{Kind: cfgir.ConstantNumber, Number: 1}}}},
	}}
	els := &astir.Block{Statements: []astir.Statement{
		&astir.Return{Values: []astir.RValue{&astir.LitRValue{Constant: cfgir.Constant{Kind: cfgir.ConstantNumber, Number: 2}}}},
	}}
	block := &astir.Block{Statements: []astir.Statement{
		&astir.If{Condition: cond, Then: then, Else: els},
	}}

	got := format.Function("f", block)
	require.Equal(t, "function f()\n  if l0 < l1 then\n    return 1\n  else\n    return 2\n  end\nend\n", got)
}

func TestFunction_NumericFor(t *testing.T) {
	t.Parallel()

	body := &astir.Block{Statements: []astir.Statement{
		&astir.ExprStatement{Call: &astir.CallRValue{
			Target: &astir.LocalRValue{Local: 1},
			Args:   []astir.RValue{&astir.LocalRValue{Local: 0}},
		}},
	}}
	block := &astir.Block{Statements: []astir.Statement{
		&astir.NumericFor{
			Induction: 0,
			Init:      &astir.LitRValue{Constant: cfgir.Constant{Kind: cfgir.ConstantNumber, Number: 1}},
			Limit:     &astir.LitRValue{Constant: cfgir.Constant{Kind: cfgir.ConstantNumber, Number: 10}},
			Step:      &astir.LitRValue{Constant: cfgir.Constant{Kind: cfgir.ConstantNumber, Number: 1}},
			Body:      body,
		},
	}}

	got := format.Function("f", block)
	require.Equal(t, "function f()\n  for l0 = 1, 10, 1 do\n    l1(l0)\n  end\nend\n", got)
}

func TestConstantLiteral_String(t *testing.T) {
	t.Parallel()

	block := &astir.Block{Statements: []astir.Statement{
		&astir.Return{Values: []astir.RValue{
			&astir.LitRValue{Constant: cfgir.Constant{Kind: cfgir.ConstantString, String: "hi"}},
			&astir.LitRValue{Constant: cfgir.Constant{Kind: cfgir.ConstantBoolean, Boolean: true}},
			&astir.LitRValue{Constant: cfgir.Constant{Kind: cfgir.ConstantNil}},
		}},
	}}

	got := format.Block(block)
	require.Equal(t, "return \"hi\", true, nil\n", got)
}

func TestBlock_NoFunctionHeader(t *testing.T) {
	t.Parallel()

	block := &astir.Block{Statements: []astir.Statement{&astir.Break{}}}
	require.Equal(t, "break\n", format.Block(block))
}
