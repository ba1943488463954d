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

package config

// This file hosts non-user-configurable parameters --- these are for development and testing purposes only.

// MaxStructuringDepth bounds the recursion depth of the CFG-to-AST
// structuring pass (spec.md §4.4). A well-formed post-dominator tree
// makes unbounded recursion impossible, but a malformed or adversarially
// obfuscated chunk can produce a graph shape the post-dominator
// computation does not expect; past this depth structure gives up with
// an Irreducible error instead of overflowing the stack. Well behaved
// functions nest nowhere near this deep.
const MaxStructuringDepth = 2000

// MaxInlineWorklist bounds the number of candidate producers the
// expression-inlining pass (spec.md §4.3) considers in a single block.
// A block this large already falls outside anything luac emits for
// handwritten source, so hitting the limit points at a pathological or
// hand-crafted chunk rather than real input.
const MaxInlineWorklist = 4096
