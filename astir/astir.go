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

// Package astir implements the reconstructed-source AST: the output of
// the CFG-to-AST structuring pass, before and after local declaration
// placement (spec.md §4.4, §4.5).
package astir

import (
	"fmt"

	"github.com/dsarch/medaldec/cfgir"
)

// Local names a reconstructed source-level local variable. Distinct from
// cfgir.ValueID: many SSA values may be declared as reads/writes of one
// Local once phi nodes are resolved away by structuring.
type Local int

// String implements fmt.Stringer.
func (l Local) String() string { return fmt.Sprintf("l%d", int(l)) }

// RValue is an expression appearing on the right-hand side of an
// assignment, as a call argument, or as a condition.
type RValue interface {
	isRValue()
	// Reads returns every Local this expression reads, in evaluation
	// order, including duplicates.
	Reads() []Local
}

// LitRValue is a literal constant.
type LitRValue struct {
	Constant cfgir.Constant
}

func (*LitRValue) isRValue()        {}
func (*LitRValue) Reads() []Local   { return nil }

// LocalRValue reads a local variable's current value.
type LocalRValue struct {
	Local Local
}

func (*LocalRValue) isRValue()      {}
func (r *LocalRValue) Reads() []Local { return []Local{r.Local} }

// TableRValue constructs a table from a sequence of positional elements.
//
// TODO: keyed fields (`{[k] = v, ...}`) are not reconstructed; every
// table constructor lowers to a sequence of positional appends, mirroring
// the only constructor shape the lifter currently emits.
type TableRValue struct {
	Elements []RValue
}

func (*TableRValue) isRValue() {}
func (r *TableRValue) Reads() []Local {
	var reads []Local
	for _, e := range r.Elements {
		reads = append(reads, e.Reads()...)
	}
	return reads
}

// BinaryRValue applies a binary operator to two sub-expressions.
type BinaryRValue struct {
	Op          cfgir.BinOp
	Left, Right RValue
}

func (*BinaryRValue) isRValue() {}
func (r *BinaryRValue) Reads() []Local {
	return append(r.Left.Reads(), r.Right.Reads()...)
}

// UnaryRValue applies a unary operator to a sub-expression.
type UnaryRValue struct {
	Op      cfgir.UnOp
	Operand RValue
}

func (*UnaryRValue) isRValue()      {}
func (r *UnaryRValue) Reads() []Local { return r.Operand.Reads() }

// CallRValue invokes Target with Args. It is both a valid r-value (when
// used for its first result) and the expression embedded in a bare call
// statement.
type CallRValue struct {
	Target RValue
	Args   []RValue
}

func (*CallRValue) isRValue() {}
func (r *CallRValue) Reads() []Local {
	reads := r.Target.Reads()
	for _, a := range r.Args {
		reads = append(reads, a.Reads()...)
	}
	return reads
}

// Statement is one statement in a reconstructed block.
type Statement interface {
	isStatement()
}

// Assign assigns Value to every target in Targets (supporting Lua-style
// multiple assignment).
type Assign struct {
	Targets []Local
	Value   RValue
}

func (*Assign) isStatement() {}

// ExprStatement is a call kept for its side effects, with results
// discarded.
type ExprStatement struct {
	Call *CallRValue
}

func (*ExprStatement) isStatement() {}

// If is a two-armed conditional. Else may be nil for a bodyless else
// branch.
type If struct {
	Condition RValue
	Then      *Block
	Else      *Block
}

func (*If) isStatement() {}

// While is a pre-tested loop.
type While struct {
	Condition RValue
	Body      *Block
}

func (*While) isStatement() {}

// Repeat is a post-tested loop: Body always runs at least once, and
// Condition is evaluated in a scope that can see Body's locals.
//
// TODO: move condition after block; Condition is currently attached to
// the Repeat node itself rather than appended as the trailing statement
// of Body, which is the more faithful representation of Lua's
// `repeat ... until` scoping but requires Block to support a distinguished
// trailing expression.
type Repeat struct {
	Body      *Block
	Condition RValue
}

func (*Repeat) isStatement() {}

// NumericFor is a `for i = init, limit, step do ... end` loop.
type NumericFor struct {
	Induction          Local
	Init, Limit, Step  RValue
	Body               *Block
}

func (*NumericFor) isStatement() {}

// GenericFor is a `for a, b, ... in f(...) do ... end` loop.
type GenericFor struct {
	Locals []Local
	Exprs  []RValue
	Body   *Block
}

func (*GenericFor) isStatement() {}

// Return exits the enclosing function with Values.
type Return struct {
	Values []RValue
}

func (*Return) isStatement() {}

// Break exits the innermost enclosing loop.
type Break struct{}

func (*Break) isStatement() {}

// LocalDecl introduces one or more locals into scope, optionally
// initializing them in the same statement (`local x, y = e1, e2`).
// Values is nil when the locals are declared with no initializer.
type LocalDecl struct {
	Locals []Local
	Values []RValue
}

func (*LocalDecl) isStatement() {}

// Block is an ordered sequence of statements together with a Locals
// list. No pass in this module fills Locals: the localdecl pass records
// declarations as LocalDecl statements instead.
type Block struct {
	Locals     []Local
	Statements []Statement
}

// NewBlock returns an empty block.
func NewBlock() *Block { return &Block{} }

// Reads returns every local read by any statement in b, recursively
// through nested blocks (If/While/Repeat/For bodies), in traversal
// order.
func Reads(b *Block) []Local {
	var reads []Local
	for _, stmt := range b.Statements {
		reads = append(reads, StatementReads(stmt)...)
	}
	return reads
}

// StatementReads returns the locals read directly by stmt, including
// recursively through any nested blocks.
func StatementReads(stmt Statement) []Local {
	switch s := stmt.(type) {
	case *Assign:
		return s.Value.Reads()
	case *ExprStatement:
		return s.Call.Reads()
	case *If:
		reads := s.Condition.Reads()
		reads = append(reads, Reads(s.Then)...)
		if s.Else != nil {
			reads = append(reads, Reads(s.Else)...)
		}
		return reads
	case *While:
		return append(s.Condition.Reads(), Reads(s.Body)...)
	case *Repeat:
		return append(Reads(s.Body), s.Condition.Reads()...)
	case *NumericFor:
		reads := append(s.Init.Reads(), s.Limit.Reads()...)
		reads = append(reads, s.Step.Reads()...)
		return append(reads, Reads(s.Body)...)
	case *GenericFor:
		var reads []Local
		for _, e := range s.Exprs {
			reads = append(reads, e.Reads()...)
		}
		return append(reads, Reads(s.Body)...)
	case *Return:
		var reads []Local
		for _, v := range s.Values {
			reads = append(reads, v.Reads()...)
		}
		return reads
	case *LocalDecl:
		var reads []Local
		for _, v := range s.Values {
			reads = append(reads, v.Reads()...)
		}
		return reads
	case *Break:
		return nil
	default:
		return nil
	}
}

// StatementWrites returns the locals assigned directly by stmt (not
// recursing into nested blocks): the target list of an Assign, the
// induction variable of a for loop, and so on.
func StatementWrites(stmt Statement) []Local {
	switch s := stmt.(type) {
	case *Assign:
		return s.Targets
	case *LocalDecl:
		return s.Locals
	case *NumericFor:
		return []Local{s.Induction}
	case *GenericFor:
		return s.Locals
	default:
		return nil
	}
}

// NestedBlocks returns the blocks stmt directly introduces a new scope
// for (an If's arms, a loop's body), in traversal order.
func NestedBlocks(stmt Statement) []*Block {
	switch s := stmt.(type) {
	case *If:
		blocks := []*Block{s.Then}
		if s.Else != nil {
			blocks = append(blocks, s.Else)
		}
		return blocks
	case *While:
		return []*Block{s.Body}
	case *Repeat:
		return []*Block{s.Body}
	case *NumericFor:
		return []*Block{s.Body}
	case *GenericFor:
		return []*Block{s.Body}
	default:
		return nil
	}
}

// OwnReads returns the locals read by stmt's own expressions only (its
// condition, call target/args, assigned values), excluding anything read
// inside a nested block.
func OwnReads(stmt Statement) []Local {
	switch s := stmt.(type) {
	case *Assign:
		return s.Value.Reads()
	case *LocalDecl:
		var reads []Local
		for _, v := range s.Values {
			reads = append(reads, v.Reads()...)
		}
		return reads
	case *ExprStatement:
		return s.Call.Reads()
	case *If:
		return s.Condition.Reads()
	case *While:
		return s.Condition.Reads()
	case *Repeat:
		return s.Condition.Reads()
	case *NumericFor:
		reads := append(s.Init.Reads(), s.Limit.Reads()...)
		return append(reads, s.Step.Reads()...)
	case *GenericFor:
		var reads []Local
		for _, e := range s.Exprs {
			reads = append(reads, e.Reads()...)
		}
		return reads
	case *Return:
		var reads []Local
		for _, v := range s.Values {
			reads = append(reads, v.Reads()...)
		}
		return reads
	default:
		return nil
	}
}
