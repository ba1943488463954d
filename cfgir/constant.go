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

import "fmt"

// ConstantKind discriminates the variants of Constant.
type ConstantKind int

// The constant kinds lifted from bytecode constant pools, matching
// lua51-lifter's `Constant` enum (original_source/cfg-to-ast/src/lifter.rs's
// `constant` helper switches on exactly these four).
const (
	ConstantNil ConstantKind = iota
	ConstantBoolean
	ConstantNumber
	ConstantString
)

// Constant is an immediate value loaded by a LoadConstant instruction.
type Constant struct {
	Kind    ConstantKind
	Boolean bool
	Number  float64
	String  string
}

// String implements fmt.Stringer.
func (c Constant) String() string {
	switch c.Kind {
	case ConstantNil:
		return "nil"
	case ConstantBoolean:
		return fmt.Sprintf("%t", c.Boolean)
	case ConstantNumber:
		return fmt.Sprintf("%v", c.Number)
	case ConstantString:
		return fmt.Sprintf("%q", c.String)
	default:
		return "<invalid constant>"
	}
}
