//	Copyright (c) 2026 The Medal Decompiler Authors.
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

// Package main implements golden-fixture tests for the decompiler: it
// runs the full pipeline (parse, lift, structure, render) over every
// compiled Lua 5.1 chunk under a fixtures directory and diffs the
// rendered source against a checked-in .golden file, to catch
// regressions in lifting, structuring, or formatting during development.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"github.com/dsarch/medaldec/bytecode"
	"github.com/dsarch/medaldec/format"
	"github.com/dsarch/medaldec/lift"
	"github.com/dsarch/medaldec/structuring"
)

const chunkExt = ".luac"
const goldenExt = ".golden"

// Mismatch records one fixture whose rendered output no longer matches
// its golden file.
type Mismatch struct {
	Fixture string
	Want    string
	Got     string
}

// Run walks dir for *.luac fixtures, decompiles each, and either
// compares the result against its sibling .golden file or, if update is
// set, overwrites the golden file with the freshly rendered output.
func Run(dir string, update bool) ([]Mismatch, error) {
	var fixtures []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, chunkExt) {
			fixtures = append(fixtures, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(fixtures)

	var mismatches []Mismatch
	for _, fixture := range fixtures {
		got, err := decompile(fixture)
		if err != nil {
			return nil, fmt.Errorf("decompile %s: %w", fixture, err)
		}

		goldenPath := strings.TrimSuffix(fixture, chunkExt) + goldenExt
		if update {
			if err := os.WriteFile(goldenPath, []byte(got), 0644); err != nil {
				return nil, fmt.Errorf("write %s: %w", goldenPath, err)
			}
			continue
		}

		want, err := os.ReadFile(goldenPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				mismatches = append(mismatches, Mismatch{Fixture: fixture, Want: "", Got: got})
				continue
			}
			return nil, fmt.Errorf("read %s: %w", goldenPath, err)
		}
		if string(want) != got {
			mismatches = append(mismatches, Mismatch{Fixture: fixture, Want: string(want), Got: got})
		}
	}
	return mismatches, nil
}

// decompile runs the full pipeline over the chunk at path and returns
// its rendered source.
func decompile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	proto, err := bytecode.Parse(f)
	if err != nil {
		return "", fmt.Errorf("parse chunk: %w", err)
	}
	fn, err := lift.Function(proto)
	if err != nil {
		return "", fmt.Errorf("lift bytecode: %w", err)
	}
	body, err := structuring.Lift(fn)
	if err != nil {
		return "", fmt.Errorf("structure control flow: %w", err)
	}
	return format.Function(strings.TrimSuffix(filepath.Base(path), chunkExt), body), nil
}

// WriteDiff reports every mismatch to w, colored when w is os.Stdout.
func WriteDiff(w *os.File, mismatches []Mismatch) {
	color.NoColor = w != os.Stdout

	red := color.New(color.FgRed)
	if len(mismatches) == 0 {
		color.New(color.FgGreen).Fprintln(w, "golden test: all fixtures match")
		return
	}
	red.Fprintf(w, "golden test: %d fixture(s) differ from their golden file\n\n", len(mismatches))
	for _, m := range mismatches {
		fmt.Fprintf(w, "--- %s\n", m.Fixture)
		fmt.Fprintln(w, cmp.Diff(m.Want, m.Got))
	}
}

func main() {
	fset := flag.NewFlagSet("golden-test", flag.ExitOnError)
	dir := fset.String("dir", "testdata/golden", "fixtures directory to scan for .luac chunks")
	update := fset.Bool("update", false, "overwrite golden files with freshly rendered output instead of comparing")
	if err := fset.Parse(os.Args[1:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	mismatches, err := Run(*dir, *update)
	if err != nil {
		log.Fatalf("golden test failed: %v", err)
	}
	if *update {
		fmt.Printf("golden test: updated golden files under %s\n", *dir)
		return
	}

	WriteDiff(os.Stdout, mismatches)
	if len(mismatches) > 0 {
		os.Exit(1)
	}
}
