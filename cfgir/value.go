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

// Package cfgir implements the control-flow-graph intermediate
// representation that sits between the bytecode lifter and the structuring
// pass: basic blocks of phi/inner/terminator instructions over SSA values,
// addressed by (node, index) instruction locations.
package cfgir

import "fmt"

// ValueID is an SSA value identifier, unique within a Function.
type ValueID int

// String implements fmt.Stringer for debug output (matching the teacher's
// convention of giving IR identifiers human-readable String() methods).
func (v ValueID) String() string {
	return fmt.Sprintf("v%d", int(v))
}

// ValueAllocator hands out fresh ValueIDs for a single function. It is the
// Go analogue of the Rust original's `value_allocator` field on Function.
type ValueAllocator struct {
	next int
}

// New allocates and returns a fresh ValueID.
func (a *ValueAllocator) New() ValueID {
	id := ValueID(a.next)
	a.next++
	return id
}

// Len returns the number of values allocated so far.
func (a *ValueAllocator) Len() int {
	return a.next
}
