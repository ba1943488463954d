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

// Package bytecode decodes Lua 5.1 precompiled chunks (the format
// produced by luac) into Proto values the lift package can translate
// into cfgir.Function. It targets the standard, non-stripped header
// layout; int, size_t and number widths are read as the header declares
// them, but any Instruction width other than 4 bytes is rejected.
package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	irerrors "github.com/dsarch/medaldec/ir/errors"
)

// Signature is the four magic bytes every Lua chunk begins with.
var Signature = [4]byte{0x1b, 'L', 'u', 'a'}

// Header describes the integer/float widths and endianness a chunk was
// compiled with, read once and applied to every subsequent value.
type Header struct {
	Version          byte
	Format           byte
	Little           bool
	SizeInt          int
	SizeSizeT        int
	SizeInstruction  int
	SizeNumber       int
	NumberIsIntegral bool
}

// ParseHeader reads and validates a chunk header from r.
func ParseHeader(r io.Reader) (*Header, error) {
	var sig [4]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, &irerrors.ParseError{Offset: 0, Err: err}
	}
	if sig != Signature {
		return nil, &irerrors.ParseError{Offset: 0, Err: fmt.Errorf("not a Lua chunk: bad signature %x", sig)}
	}

	var rest [8]byte
	if _, err := io.ReadFull(r, rest[:]); err != nil {
		return nil, &irerrors.ParseError{Offset: 4, Err: err}
	}

	h := &Header{
		Version:          rest[0],
		Format:           rest[1],
		Little:           rest[2] != 0,
		SizeInt:          int(rest[3]),
		SizeSizeT:        int(rest[4]),
		SizeInstruction:  int(rest[5]),
		SizeNumber:       int(rest[6]),
		NumberIsIntegral: rest[7] != 0,
	}
	if h.SizeInstruction != 4 {
		return nil, &irerrors.ParseError{Offset: 10, Err: fmt.Errorf("unsupported instruction width: %d bytes", h.SizeInstruction)}
	}
	return h, nil
}

func (h *Header) order() binary.ByteOrder {
	if h.Little {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (h *Header) readInt(r io.Reader, width int) (int64, error) {
	buf := make([]byte, width)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	var v uint64
	if h.Little {
		for i := width - 1; i >= 0; i-- {
			v = v<<8 | uint64(buf[i])
		}
	} else {
		for i := 0; i < width; i++ {
			v = v<<8 | uint64(buf[i])
		}
	}
	return int64(v), nil
}

func (h *Header) readSizeT(r io.Reader) (int64, error) { return h.readInt(r, h.SizeSizeT) }
func (h *Header) readLuaInt(r io.Reader) (int64, error) { return h.readInt(r, h.SizeInt) }

func (h *Header) readFloat(r io.Reader) (float64, error) {
	if h.NumberIsIntegral {
		v, err := h.readInt(r, h.SizeNumber)
		return float64(v), err
	}
	buf := make([]byte, h.SizeNumber)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	order := h.order()
	switch h.SizeNumber {
	case 8:
		return math.Float64frombits(order.Uint64(buf)), nil
	case 4:
		return float64(math.Float32frombits(order.Uint32(buf))), nil
	default:
		return 0, fmt.Errorf("unsupported lua_Number width: %d", h.SizeNumber)
	}
}

// readString reads a Lua-format string: a size_t length (including the
// trailing NUL the compiler writes), followed by that many bytes. A
// length of 0 denotes the absence of a string (nil), not an empty one.
func (h *Header) readString(r io.Reader) (string, bool, error) {
	n, err := h.readSizeT(r)
	if err != nil {
		return "", false, err
	}
	if n == 0 {
		return "", false, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", false, err
	}
	// drop the trailing NUL the writer included in the length.
	if len(buf) > 0 && buf[len(buf)-1] == 0 {
		buf = buf[:len(buf)-1]
	}
	return string(buf), true, nil
}
