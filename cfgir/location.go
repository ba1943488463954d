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

import (
	"fmt"

	"github.com/dsarch/medaldec/graph"
)

// IndexKind discriminates the three slots an InstructionIndex may point
// into: the phi list, the inner-instruction list, or the distinguished
// terminator slot (spec.md §3: "index is either a phi-index or an
// inner-index or the distinguished terminator slot").
type IndexKind int

// The three instruction-index kinds.
const (
	IndexPhi IndexKind = iota
	IndexInner
	IndexTerminator
)

// InstructionIndex identifies a slot within a single basic block.
// InstructionIndex is comparable and hashable structurally (a plain Go
// struct of comparable fields), satisfying spec.md §3's "Equality and
// hashing are structural" requirement for free.
type InstructionIndex struct {
	Kind IndexKind
	Pos  int // meaningful only when Kind is IndexPhi or IndexInner.
}

// String implements fmt.Stringer.
func (idx InstructionIndex) String() string {
	switch idx.Kind {
	case IndexPhi:
		return fmt.Sprintf("phi[%d]", idx.Pos)
	case IndexInner:
		return fmt.Sprintf("inner[%d]", idx.Pos)
	case IndexTerminator:
		return "terminator"
	default:
		return "<invalid index>"
	}
}

// InstructionLocation is the pair (node, index-within-block) spec.md §3
// defines as the addressing scheme for reads and writes.
type InstructionLocation struct {
	Node  graph.NodeID
	Index InstructionIndex
}

// String implements fmt.Stringer.
func (loc InstructionLocation) String() string {
	return fmt.Sprintf("%d:%s", loc.Node, loc.Index)
}
