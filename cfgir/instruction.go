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

package cfgir

import "github.com/dsarch/medaldec/graph"

// BinOp identifies a binary operator carried by a BinOp instruction.
type BinOp int

// Binary operators. Comparisons and logical operators are included because
// the lifter may fold a conditional's comparison into a BinOp feeding a
// ConditionalJump's condition value.
const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpConcat
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

// UnOp identifies a unary operator carried by a UnOp instruction.
type UnOp int

// Unary operators.
const (
	OpNeg UnOp = iota
	OpNot
	OpLen
)

// Inner is an instruction inside the body of a basic block: it is neither a
// phi (which only appears at block head) nor a terminator (of which there
// is exactly one per block, at the end).
type Inner interface {
	// ValuesRead returns the values this instruction reads, in evaluation
	// order (duplicates allowed, e.g. `x + x`).
	ValuesRead() []ValueID
	// ValuesWritten returns the values this instruction defines. In SSA
	// form this is at most one value for every Inner variant except Call,
	// which may have multiple results.
	ValuesWritten() []ValueID
	// HasSideEffects reports whether this instruction must not be skipped
	// or reordered with respect to other side-effecting statements
	// (spec.md §4.3: calls and writes to non-local l-values are
	// side-effecting).
	HasSideEffects() bool
}

// LoadConstant assigns a constant to Dest.
type LoadConstant struct {
	Dest     ValueID
	Constant Constant
}

// ValuesRead implements Inner.
func (i *LoadConstant) ValuesRead() []ValueID { return nil }

// ValuesWritten implements Inner.
func (i *LoadConstant) ValuesWritten() []ValueID { return []ValueID{i.Dest} }

// HasSideEffects implements Inner.
func (i *LoadConstant) HasSideEffects() bool { return false }

// Move assigns Source to Dest (`dest = source`).
type Move struct {
	Dest   ValueID
	Source ValueID
}

// ValuesRead implements Inner.
func (i *Move) ValuesRead() []ValueID { return []ValueID{i.Source} }

// ValuesWritten implements Inner.
func (i *Move) ValuesWritten() []ValueID { return []ValueID{i.Dest} }

// HasSideEffects implements Inner.
func (i *Move) HasSideEffects() bool { return false }

// BinaryOp assigns `Left Op Right` to Dest.
type BinaryOp struct {
	Dest  ValueID
	Op    BinOp
	Left  ValueID
	Right ValueID
}

// ValuesRead implements Inner.
func (i *BinaryOp) ValuesRead() []ValueID { return []ValueID{i.Left, i.Right} }

// ValuesWritten implements Inner.
func (i *BinaryOp) ValuesWritten() []ValueID { return []ValueID{i.Dest} }

// HasSideEffects implements Inner.
func (i *BinaryOp) HasSideEffects() bool { return false }

// UnaryOp assigns `Op Operand` to Dest.
type UnaryOp struct {
	Dest    ValueID
	Op      UnOp
	Operand ValueID
}

// ValuesRead implements Inner.
func (i *UnaryOp) ValuesRead() []ValueID { return []ValueID{i.Operand} }

// ValuesWritten implements Inner.
func (i *UnaryOp) ValuesWritten() []ValueID { return []ValueID{i.Dest} }

// HasSideEffects implements Inner.
func (i *UnaryOp) HasSideEffects() bool { return false }

// Call invokes Target with Args and binds the (possibly empty or
// multi-valued) results to Dests. Calls are always side-effecting: the
// inlining pass (spec.md §4.3) must never treat the region spanned by a
// call as safe to skip over.
type Call struct {
	Dests  []ValueID
	Target ValueID
	Args   []ValueID
}

// ValuesRead implements Inner.
func (i *Call) ValuesRead() []ValueID {
	read := make([]ValueID, 0, len(i.Args)+1)
	read = append(read, i.Target)
	read = append(read, i.Args...)
	return read
}

// ValuesWritten implements Inner.
func (i *Call) ValuesWritten() []ValueID { return i.Dests }

// HasSideEffects implements Inner.
func (i *Call) HasSideEffects() bool { return true }

// NewTable assigns a freshly constructed, empty table value to Dest; its
// positional elements are filled in by subsequent SetListAppend
// instructions (mirroring how the bytecode builds up table constructors
// incrementally).
type NewTable struct {
	Dest ValueID
}

// ValuesRead implements Inner.
func (i *NewTable) ValuesRead() []ValueID { return nil }

// ValuesWritten implements Inner.
func (i *NewTable) ValuesWritten() []ValueID { return []ValueID{i.Dest} }

// HasSideEffects implements Inner.
func (i *NewTable) HasSideEffects() bool { return false }

// SetListAppend appends Value as the next positional element of the table
// in Table.
type SetListAppend struct {
	Table ValueID
	Value ValueID
}

// ValuesRead implements Inner.
func (i *SetListAppend) ValuesRead() []ValueID { return []ValueID{i.Table, i.Value} }

// ValuesWritten implements Inner.
func (i *SetListAppend) ValuesWritten() []ValueID { return nil }

// HasSideEffects implements Inner.
func (i *SetListAppend) HasSideEffects() bool { return true }

// Phi is a merge instruction at a block head, choosing among incoming
// definitions depending on the predecessor actually taken. Invariant
// (spec.md §3): a phi only references values defined before the merge.
type Phi struct {
	Dest     ValueID
	Incoming map[graph.NodeID]ValueID
}

// ValuesWritten returns Dest.
func (p *Phi) ValuesWritten() []ValueID { return []ValueID{p.Dest} }

// ValuesRead returns the incoming values, in a stable order keyed by
// predecessor node id (map iteration order is otherwise undefined, and
// def-use bookkeeping needs a deterministic order for reproducible tests).
func (p *Phi) ValuesRead() []ValueID {
	read := make([]ValueID, 0, len(p.Incoming))
	preds := make([]graph.NodeID, 0, len(p.Incoming))
	for n := range p.Incoming {
		preds = append(preds, n)
	}
	sortNodeIDs(preds)
	for _, n := range preds {
		read = append(read, p.Incoming[n])
	}
	return read
}

func sortNodeIDs(ns []graph.NodeID) {
	// Simple insertion sort: phi predecessor counts are tiny (almost always
	// 2, rarely more for switch-like dispatch), so a library sort is not
	// worth pulling in for this.
	for i := 1; i < len(ns); i++ {
		for j := i; j > 0 && ns[j-1] > ns[j]; j-- {
			ns[j-1], ns[j] = ns[j], ns[j-1]
		}
	}
}

// Terminator is the one control-transfer instruction at the end of every
// well-formed block (spec.md §3: "A block with no terminator is
// malformed").
type Terminator interface {
	// ValuesRead returns the values this terminator reads (e.g. a
	// conditional jump's condition, or a return's results).
	ValuesRead() []ValueID
	// Successors returns the block's out-edges, in a fixed, meaningful
	// order (e.g. [true, false] for ConditionalJump).
	Successors() []graph.NodeID
}

// UnconditionalJump transfers control to Target unconditionally.
type UnconditionalJump struct {
	Target graph.NodeID
}

// ValuesRead implements Terminator.
func (t *UnconditionalJump) ValuesRead() []ValueID { return nil }

// Successors implements Terminator.
func (t *UnconditionalJump) Successors() []graph.NodeID { return []graph.NodeID{t.Target} }

// ConditionalJump transfers control to True if Condition is truthy, False
// otherwise.
type ConditionalJump struct {
	Condition ValueID
	True      graph.NodeID
	False     graph.NodeID
}

// ValuesRead implements Terminator.
func (t *ConditionalJump) ValuesRead() []ValueID { return []ValueID{t.Condition} }

// Successors implements Terminator.
func (t *ConditionalJump) Successors() []graph.NodeID {
	return []graph.NodeID{t.True, t.False}
}

// NumericFor is emitted by the lifter only when the bytecode's own
// numeric-for opcode pair (FORPREP/FORLOOP in the Lua 5.1 sense) is
// present; spec.md §4.4 requires NumericFor to never be synthesized by the
// structuring pass itself, only passed through from here.
type NumericFor struct {
	Init  ValueID
	Limit ValueID
	Step  ValueID
	// Induction is the value bound to the loop variable on each iteration
	// (defined by a phi at Body's head, read here only for documentation
	// purposes of which value the header controls).
	Induction ValueID
	Body      graph.NodeID
	Exit      graph.NodeID
}

// ValuesRead implements Terminator.
func (t *NumericFor) ValuesRead() []ValueID {
	return []ValueID{t.Init, t.Limit, t.Step}
}

// Successors implements Terminator.
func (t *NumericFor) Successors() []graph.NodeID {
	return []graph.NodeID{t.Body, t.Exit}
}

// Return exits the function, yielding Values.
type Return struct {
	Values []ValueID
}

// ValuesRead implements Terminator.
func (t *Return) ValuesRead() []ValueID { return t.Values }

// Successors implements Terminator.
func (t *Return) Successors() []graph.NodeID { return nil }
