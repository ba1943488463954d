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

package structuring

import (
	"github.com/dsarch/medaldec/astir"
	"github.com/dsarch/medaldec/cfgir"
)

// lowerInstructions appends one statement per surviving inner
// instruction of bb to block. NewTable/SetListAppend pairs are folded
// into a single TableRValue at the point the table value is finally
// read, rather than emitted as their own statements.
func (l *lifter) lowerInstructions(block *astir.Block, bb *cfgir.BasicBlock) {
	for _, inner := range bb.Inner {
		switch inst := inner.(type) {
		case *cfgir.NewTable:
			l.tables[inst.Dest] = []astir.RValue{}

		case *cfgir.SetListAppend:
			l.tables[inst.Table] = append(l.tables[inst.Table], l.lowerValueRef(inst.Value))

		case *cfgir.Call:
			call := &astir.CallRValue{
				Target: l.lowerValueRef(inst.Target),
				Args:   l.lowerValueRefs(inst.Args),
			}
			if len(inst.Dests) == 0 {
				block.Statements = append(block.Statements, &astir.ExprStatement{Call: call})
			} else {
				block.Statements = append(block.Statements, &astir.Assign{
					Targets: l.localsFor(inst.Dests),
					Value:   call,
				})
			}

		default:
			written := inner.ValuesWritten()
			if len(written) != 1 {
				continue
			}
			block.Statements = append(block.Statements, &astir.Assign{
				Targets: []astir.Local{l.localFor(written[0])},
				Value:   l.lowerInner(inner),
			})
		}
	}
}

// lowerInner translates a single cfgir.Inner into the r-value it
// computes, recursively resolving inlined operands.
func (l *lifter) lowerInner(inner cfgir.Inner) astir.RValue {
	switch inst := inner.(type) {
	case *cfgir.LoadConstant:
		return &astir.LitRValue{Constant: inst.Constant}
	case *cfgir.Move:
		return l.lowerValueRef(inst.Source)
	case *cfgir.BinaryOp:
		return &astir.BinaryRValue{
			Op:    inst.Op,
			Left:  l.lowerValueRef(inst.Left),
			Right: l.lowerValueRef(inst.Right),
		}
	case *cfgir.UnaryOp:
		return &astir.UnaryRValue{Op: inst.Op, Operand: l.lowerValueRef(inst.Operand)}
	case *cfgir.Call:
		return &astir.CallRValue{Target: l.lowerValueRef(inst.Target), Args: l.lowerValueRefs(inst.Args)}
	default:
		return &astir.LitRValue{}
	}
}

// lowerValueRef resolves a read of v: if v was eliminated by the
// inlining pass, recursively lower the instruction that used to produce
// it; if v names a table still being built, fold in its elements;
// otherwise it is a plain local read.
func (l *lifter) lowerValueRef(v cfgir.ValueID) astir.RValue {
	if elements, ok := l.tables[v]; ok {
		return &astir.TableRValue{Elements: elements}
	}
	if producer, ok := l.subst.Get(v); ok {
		return l.lowerInner(producer)
	}
	return &astir.LocalRValue{Local: l.localFor(v)}
}

func (l *lifter) lowerValueRefs(vs []cfgir.ValueID) []astir.RValue {
	out := make([]astir.RValue, len(vs))
	for i, v := range vs {
		out[i] = l.lowerValueRef(v)
	}
	return out
}

func (l *lifter) localsFor(vs []cfgir.ValueID) []astir.Local {
	out := make([]astir.Local, len(vs))
	for i, v := range vs {
		out[i] = l.localFor(v)
	}
	return out
}
