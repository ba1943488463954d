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

// Package format renders a reconstructed AST back to Lua-like source
// text. It is the last stage of the pipeline (spec.md §2): everything
// upstream of it produces data, this produces the bytes a human reads.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dsarch/medaldec/astir"
	"github.com/dsarch/medaldec/cfgir"
)

const indentWidth = "  "

// Function renders a full function body, the way cmd/medaldec prints
// the result of one decompiled function.
func Function(name string, body *astir.Block) string {
	var b strings.Builder
	fmt.Fprintf(&b, "function %s()\n", name)
	writeBlock(&b, body, 1)
	b.WriteString("end\n")
	return b.String()
}

// Block renders a bare block with no enclosing function header, mostly
// useful for tests and snapshots.
func Block(body *astir.Block) string {
	var b strings.Builder
	writeBlock(&b, body, 0)
	return b.String()
}

func writeBlock(b *strings.Builder, block *astir.Block, depth int) {
	for _, stmt := range block.Statements {
		writeStatement(b, stmt, depth)
	}
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indentWidth)
	}
}

func writeStatement(b *strings.Builder, stmt astir.Statement, depth int) {
	indent(b, depth)
	switch s := stmt.(type) {
	case *astir.LocalDecl:
		b.WriteString("local ")
		writeLocalList(b, s.Locals)
		if len(s.Values) > 0 {
			b.WriteString(" = ")
			writeRValueList(b, s.Values)
		}
		b.WriteString("\n")

	case *astir.Assign:
		writeLocalList(b, s.Targets)
		b.WriteString(" = ")
		writeRValue(b, s.Value)
		b.WriteString("\n")

	case *astir.ExprStatement:
		writeRValue(b, s.Call)
		b.WriteString("\n")

	case *astir.If:
		b.WriteString("if ")
		writeRValue(b, s.Condition)
		b.WriteString(" then\n")
		writeBlock(b, s.Then, depth+1)
		if s.Else != nil {
			indent(b, depth)
			b.WriteString("else\n")
			writeBlock(b, s.Else, depth+1)
		}
		indent(b, depth)
		b.WriteString("end\n")

	case *astir.While:
		b.WriteString("while ")
		writeRValue(b, s.Condition)
		b.WriteString(" do\n")
		writeBlock(b, s.Body, depth+1)
		indent(b, depth)
		b.WriteString("end\n")

	case *astir.Repeat:
		b.WriteString("repeat\n")
		writeBlock(b, s.Body, depth+1)
		indent(b, depth)
		b.WriteString("until ")
		writeRValue(b, s.Condition)
		b.WriteString("\n")

	case *astir.NumericFor:
		fmt.Fprintf(b, "for %s = ", s.Induction)
		writeRValue(b, s.Init)
		b.WriteString(", ")
		writeRValue(b, s.Limit)
		b.WriteString(", ")
		writeRValue(b, s.Step)
		b.WriteString(" do\n")
		writeBlock(b, s.Body, depth+1)
		indent(b, depth)
		b.WriteString("end\n")

	case *astir.GenericFor:
		b.WriteString("for ")
		writeLocalList(b, s.Locals)
		b.WriteString(" in ")
		writeRValueList(b, s.Exprs)
		b.WriteString(" do\n")
		writeBlock(b, s.Body, depth+1)
		indent(b, depth)
		b.WriteString("end\n")

	case *astir.Return:
		b.WriteString("return ")
		writeRValueList(b, s.Values)
		b.WriteString("\n")

	case *astir.Break:
		b.WriteString("break\n")

	default:
		fmt.Fprintf(b, "--[[ unrenderable statement %T ]]\n", stmt)
	}
}

func writeLocalList(b *strings.Builder, locals []astir.Local) {
	for i, l := range locals {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s", l)
	}
}

func writeRValueList(b *strings.Builder, values []astir.RValue) {
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		writeRValue(b, v)
	}
}

func writeRValue(b *strings.Builder, r astir.RValue) {
	switch v := r.(type) {
	case *astir.LitRValue:
		b.WriteString(constantLiteral(v.Constant))
	case *astir.LocalRValue:
		fmt.Fprintf(b, "%s", v.Local)
	case *astir.TableRValue:
		b.WriteString("{")
		writeRValueList(b, v.Elements)
		b.WriteString("}")
	case *astir.BinaryRValue:
		writeRValue(b, v.Left)
		fmt.Fprintf(b, " %s ", binOpSymbol(v.Op))
		writeRValue(b, v.Right)
	case *astir.UnaryRValue:
		b.WriteString(unOpSymbol(v.Op))
		writeRValue(b, v.Operand)
	case *astir.CallRValue:
		writeRValue(b, v.Target)
		b.WriteString("(")
		writeRValueList(b, v.Args)
		b.WriteString(")")
	default:
		fmt.Fprintf(b, "--[[ unrenderable rvalue %T ]]", r)
	}
}

func constantLiteral(c cfgir.Constant) string {
	switch c.Kind {
	case cfgir.ConstantNil:
		return "nil"
	case cfgir.ConstantBoolean:
		return strconv.FormatBool(c.Boolean)
	case cfgir.ConstantNumber:
		return strconv.FormatFloat(c.Number, 'g', -1, 64)
	case cfgir.ConstantString:
		return strconv.Quote(c.String)
	default:
		return "nil"
	}
}

func binOpSymbol(op cfgir.BinOp) string {
	switch op {
	case cfgir.OpAdd:
		return "+"
	case cfgir.OpSub:
		return "-"
	case cfgir.OpMul:
		return "*"
	case cfgir.OpDiv:
		return "/"
	case cfgir.OpMod:
		return "%"
	case cfgir.OpPow:
		return "^"
	case cfgir.OpConcat:
		return ".."
	case cfgir.OpEq:
		return "=="
	case cfgir.OpNe:
		return "~="
	case cfgir.OpLt:
		return "<"
	case cfgir.OpLe:
		return "<="
	case cfgir.OpGt:
		return ">"
	case cfgir.OpGe:
		return ">="
	case cfgir.OpAnd:
		return "and"
	case cfgir.OpOr:
		return "or"
	default:
		return "?"
	}
}

func unOpSymbol(op cfgir.UnOp) string {
	switch op {
	case cfgir.OpNeg:
		return "-"
	case cfgir.OpNot:
		return "not "
	case cfgir.OpLen:
		return "#"
	default:
		return "?"
	}
}
