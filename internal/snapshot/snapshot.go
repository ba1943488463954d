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

// Package snapshot gob-encodes reconstructed ASTs to a compact,
// compressed form, for golden-fixture tests that compare a freshly
// decompiled function against a stored expectation without checking in
// a huge literal AST (spec.md §8's testable-properties fixtures).
package snapshot

import (
	"bytes"
	"encoding/gob"
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/s2"

	"github.com/dsarch/medaldec/astir"
)

func init() {
	gob.Register(&astir.LitRValue{})
	gob.Register(&astir.LocalRValue{})
	gob.Register(&astir.TableRValue{})
	gob.Register(&astir.BinaryRValue{})
	gob.Register(&astir.UnaryRValue{})
	gob.Register(&astir.CallRValue{})

	gob.Register(&astir.Assign{})
	gob.Register(&astir.ExprStatement{})
	gob.Register(&astir.If{})
	gob.Register(&astir.While{})
	gob.Register(&astir.Repeat{})
	gob.Register(&astir.NumericFor{})
	gob.Register(&astir.GenericFor{})
	gob.Register(&astir.Return{})
	gob.Register(&astir.Break{})
	gob.Register(&astir.LocalDecl{})
}

// Encode writes v (typically an *astir.Block) to w as s2-compressed gob.
func Encode(w io.Writer, v any) (err error) {
	writer := s2.NewWriter(w)
	defer func() {
		if cerr := writer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	if err := gob.NewEncoder(writer).Encode(v); err != nil {
		return err
	}
	return writer.Close()
}

// Decode reads a value previously written by Encode from r into v.
func Decode(r io.Reader, v any) error {
	return gob.NewDecoder(s2.NewReader(r)).Decode(v)
}

// WriteFile encodes v and writes it to path, creating or truncating it.
func WriteFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Encode(f, v)
}

// ReadFile decodes the snapshot stored at path into v.
func ReadFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Decode(f, v)
}

// RoundTrip encodes v and returns the encoded bytes. It does not decode
// them; tests pass the bytes to Decode to complete the round trip and
// check that the gob encoding has no unregistered types.
func RoundTrip(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
