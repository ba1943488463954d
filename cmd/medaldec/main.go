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

// Package main makes it possible to run the decompiler pipeline
// (bytecode parsing, lifting, structuring, and rendering) as a
// standalone command against a compiled Lua 5.1 chunk.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/dsarch/medaldec/bytecode"
	irerrors "github.com/dsarch/medaldec/ir/errors"
	"github.com/dsarch/medaldec/format"
	"github.com/dsarch/medaldec/lift"
	"github.com/dsarch/medaldec/structuring"
)

var _file = flag.String("file", "", "path to a compiled Lua 5.1 chunk to decompile")

func main() {
	flag.Parse()
	if *_file == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		os.Exit(2)
	}

	if err := run(*_file); err != nil {
		fail(err)
	}
}

func run(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	proto, err := bytecode.Parse(f)
	if err != nil {
		return fmt.Errorf("parse chunk: %w", err)
	}

	fn, err := lift.Function(proto)
	if err != nil {
		return fmt.Errorf("lift bytecode: %w", err)
	}

	body, err := structuring.Lift(fn)
	if err != nil {
		return fmt.Errorf("structure control flow: %w", err)
	}

	fmt.Print(format.Function("main", body))
	return nil
}

// fail reports err to stderr in red, mirroring how golden-test's diff
// output distinguishes failure from informational text, and exits
// non-zero. Internal-invariant failures are called out distinctly
// since they indicate a decompiler bug rather than an unsupported or
// malformed input chunk.
func fail(err error) {
	red := color.New(color.FgRed)
	var invariant *irerrors.InternalInvariant
	if ok := asInternalInvariant(err, &invariant); ok {
		red.Fprintln(os.Stderr, "internal error (please report):", invariant.Detail)
		os.Exit(1)
	}
	red.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func asInternalInvariant(err error, target **irerrors.InternalInvariant) bool {
	for err != nil {
		if v, ok := err.(*irerrors.InternalInvariant); ok {
			*target = v
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
