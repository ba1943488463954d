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

// Package errors collects the error taxonomy shared across the
// pipeline: conditions a caller can reasonably recover from (bad
// input, unsupported input shape) are the bulk of these types.
// InternalInvariant is the exception: it is still returned rather than
// panicking, but marks a condition this program believes is
// impossible, the equivalent of the teacher's EnhancedPass.Panic for a
// pipeline that would rather fail one function than crash a whole run.
package errors

import "fmt"

// ParseError wraps a failure decoding bytecode into instructions, with
// the byte offset where decoding stopped making sense.
type ParseError struct {
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnreachableRoot reports that a graph operation was asked to start from
// a node that graph does not contain (spec.md §4.1 edge case).
type UnreachableRoot struct {
	Root fmt.Stringer
}

func (e *UnreachableRoot) Error() string {
	return fmt.Sprintf("root node %s is not part of the graph", e.Root)
}

// UnsupportedFanout reports a block with more successors than any
// terminator this pipeline knows how to structure (spec.md §4.4: fanout
// greater than two).
type UnsupportedFanout struct {
	Count int
}

func (e *UnsupportedFanout) Error() string {
	return fmt.Sprintf("unsupported branch fanout: %d successors", e.Count)
}

// Irreducible reports that the control-flow graph has no structured
// representation reachable from the conditional being processed: a
// branch target exists from which the function's exit cannot be reached
// through post-dominance alone (spec.md §4.4).
type Irreducible struct {
	Detail string
}

func (e *Irreducible) Error() string {
	return "irreducible control flow: " + e.Detail
}

// MalformedAst reports that the reconstructed AST violates an invariant
// the printer or a later pass depends on (e.g. a local read before any
// declaration reaches it).
type MalformedAst struct {
	Detail string
}

func (e *MalformedAst) Error() string {
	return "malformed AST: " + e.Detail
}

// InternalInvariant indicates this program computed something it
// believes is impossible. It is returned like the other errors here;
// cmd/medaldec reports it separately as an internal error.
type InternalInvariant struct {
	Detail string
}

func (e *InternalInvariant) Error() string {
	return "internal invariant violated: " + e.Detail
}
