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

// Package localdecl places local-variable declarations at the tightest
// scope that can hold them, given an AST whose assignments all target
// locals that are not yet declared anywhere (spec.md §4.5). It is the
// last pass before the AST can be printed as valid source.
package localdecl

import "github.com/dsarch/medaldec/astir"

// Declare rewrites body in place, inserting a LocalDecl statement for
// every local written anywhere under body except those in ignore (loop
// induction variables and function parameters, which are already
// implicitly declared by their binding form).
func Declare(body *astir.Block, ignore []astir.Local) {
	skip := make(map[astir.Local]struct{}, len(ignore))
	for _, l := range ignore {
		skip[l] = struct{}{}
	}
	for _, l := range implicitLocals(body) {
		skip[l] = struct{}{}
	}

	pending := make(map[astir.Local]struct{})
	for _, l := range writtenLocals(body) {
		if _, ignored := skip[l]; !ignored {
			pending[l] = struct{}{}
		}
	}

	for _, l := range orderedLocals(body, pending) {
		declareLocal(body, l)
	}
}

// implicitLocals returns every local bound by a for-loop header anywhere
// under body; these are declared by the loop statement itself and must
// never get a separate LocalDecl, no matter how deeply nested.
func implicitLocals(b *astir.Block) []astir.Local {
	var locals []astir.Local
	for _, stmt := range b.Statements {
		switch s := stmt.(type) {
		case *astir.NumericFor:
			locals = append(locals, s.Induction)
		case *astir.GenericFor:
			locals = append(locals, s.Locals...)
		}
		for _, nested := range astir.NestedBlocks(stmt) {
			locals = append(locals, implicitLocals(nested)...)
		}
	}
	return locals
}

// writtenLocals returns every local directly assigned anywhere under b
// (including nested blocks), with duplicates.
func writtenLocals(b *astir.Block) []astir.Local {
	var locals []astir.Local
	for _, stmt := range b.Statements {
		locals = append(locals, astir.StatementWrites(stmt)...)
		for _, nested := range astir.NestedBlocks(stmt) {
			locals = append(locals, writtenLocals(nested)...)
		}
	}
	return locals
}

// orderedLocals returns the members of pending in first-appearance
// (pre-order) order, so declarations come out in a deterministic,
// source-like sequence.
func orderedLocals(b *astir.Block, pending map[astir.Local]struct{}) []astir.Local {
	seen := make(map[astir.Local]struct{})
	var order []astir.Local
	var walk func(b *astir.Block)
	walk = func(b *astir.Block) {
		for _, stmt := range b.Statements {
			for _, l := range astir.StatementWrites(stmt) {
				if _, want := pending[l]; want {
					if _, already := seen[l]; !already {
						seen[l] = struct{}{}
						order = append(order, l)
					}
				}
			}
			for _, nested := range astir.NestedBlocks(stmt) {
				walk(nested)
			}
		}
	}
	walk(b)
	return order
}

// touch classifies how a single statement relates to a local: not at
// all, through its own expressions (or through more than one nested
// block), or through exactly one nested block and nothing else. A
// Repeat whose body touches the local counts as touching it through
// that body alone, since the until condition sees the body's locals.
type touch int

const (
	touchNone touch = iota
	touchOwn
	touchSingleNested
)

func classify(stmt astir.Statement, loc astir.Local) (touch, *astir.Block) {
	if rep, ok := stmt.(*astir.Repeat); ok && blockTouches(rep.Body, loc) {
		return touchSingleNested, rep.Body
	}
	own := containsLocal(astir.OwnReads(stmt), loc) || containsLocal(astir.StatementWrites(stmt), loc)

	var touched []*astir.Block
	for _, nested := range astir.NestedBlocks(stmt) {
		if blockTouches(nested, loc) {
			touched = append(touched, nested)
		}
	}

	switch {
	case own || len(touched) > 1:
		return touchOwn, nil
	case len(touched) == 1:
		return touchSingleNested, touched[0]
	default:
		return touchNone, nil
	}
}

func blockTouches(b *astir.Block, loc astir.Local) bool {
	for _, stmt := range b.Statements {
		if containsLocal(astir.OwnReads(stmt), loc) || containsLocal(astir.StatementWrites(stmt), loc) {
			return true
		}
		for _, nested := range astir.NestedBlocks(stmt) {
			if blockTouches(nested, loc) {
				return true
			}
		}
	}
	return false
}

func containsLocal(locals []astir.Local, loc astir.Local) bool {
	for _, l := range locals {
		if l == loc {
			return true
		}
	}
	return false
}

// declareLocal finds the tightest block under (and including) block at
// which loc can be declared, and inserts its LocalDecl there, recursing
// down through single-child scopes and coalescing into a plain
// single-target assignment where one exists.
func declareLocal(block *astir.Block, loc astir.Local) {
	var touching []int
	var nestedOf = map[int]*astir.Block{}
	for i, stmt := range block.Statements {
		kind, nested := classify(stmt, loc)
		if kind == touchNone {
			continue
		}
		touching = append(touching, i)
		if kind == touchSingleNested {
			nestedOf[i] = nested
		}
	}

	if len(touching) == 0 {
		return
	}

	if len(touching) == 1 {
		if nested, ok := nestedOf[touching[0]]; ok {
			declareLocal(nested, loc)
			return
		}
	}

	// The declaration goes at the first point that needs it. When that
	// statement is a plain single-target assignment of loc, it becomes
	// the declaration itself (`local x = e`). Otherwise loc is declared
	// with no initializer right before it, unless the statement right
	// before it is already such an empty declaration, in which case loc
	// joins its left-hand list instead of getting a statement of its own
	// (original_source/ast/src/local_declarations.rs:111-117). This is
	// what turns a multi-target assign's siblings (`a, b = f()`) into
	// one `local a, b` instead of two separate declarations.
	first := touching[0]
	if assign, ok := block.Statements[first].(*astir.Assign); ok &&
		len(assign.Targets) == 1 && assign.Targets[0] == loc {
		block.Statements[first] = &astir.LocalDecl{
			Locals: []astir.Local{loc},
			Values: []astir.RValue{assign.Value},
		}
		return
	}
	if first > 0 {
		if prior, ok := block.Statements[first-1].(*astir.LocalDecl); ok && len(prior.Values) == 0 {
			prior.Locals = append(prior.Locals, loc)
			return
		}
	}
	decl := &astir.LocalDecl{Locals: []astir.Local{loc}}
	block.Statements = append(block.Statements, nil)
	copy(block.Statements[first+1:], block.Statements[first:])
	block.Statements[first] = decl
}
