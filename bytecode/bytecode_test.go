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

package bytecode_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dsarch/medaldec/bytecode"
)

func littleHeader() []byte {
	return []byte{
		0x1b, 'L', 'u', 'a',
		0x51, // version
		0,    // official format
		1,    // little endian
		4,    // size_int
		4,    // size_size_t (32-bit for test brevity)
		4,    // size_Instruction
		8,    // size_lua_Number
		0,    // floats, not integers
	}
}

func appendUint32(buf []byte, v uint32) []byte {
	var w [4]byte
	binary.LittleEndian.PutUint32(w[:], v)
	return append(buf, w[:]...)
}

func appendString(buf []byte, s string) []byte {
	if s == "" {
		return appendUint32(buf, 0)
	}
	buf = appendUint32(buf, uint32(len(s)+1))
	buf = append(buf, s...)
	return append(buf, 0)
}

// encodeEmptyFunction builds a minimal valid chunk containing a single
// vararg-less prototype with no instructions, no constants, no nested
// protos, and no debug info.
func encodeEmptyFunction(t *testing.T) []byte {
	t.Helper()
	buf := littleHeader()
	buf = appendString(buf, "")     // source
	buf = appendUint32(buf, 0)      // line defined
	buf = appendUint32(buf, 0)      // last line defined
	buf = append(buf, 0, 0, 0, 2)   // nups, numparams, is_vararg, maxstack
	buf = appendUint32(buf, 0)      // sizecode
	buf = appendUint32(buf, 0)      // sizeconstants
	buf = appendUint32(buf, 0)      // sizeprotos
	buf = appendUint32(buf, 0)      // sizelineinfo
	buf = appendUint32(buf, 0)      // sizelocvars
	buf = appendUint32(buf, 0)      // sizeupvalues
	return buf
}

func TestParseHeader_AcceptsLittleEndian51(t *testing.T) {
	h, err := bytecode.ParseHeader(bytes.NewReader(littleHeader()))
	require.NoError(t, err)
	require.True(t, h.Little)
	require.EqualValues(t, 0x51, h.Version)
}

func TestParseHeader_RejectsBadSignature(t *testing.T) {
	bad := append([]byte{0, 0, 0, 0}, littleHeader()[4:]...)
	_, err := bytecode.ParseHeader(bytes.NewReader(bad))
	require.Error(t, err)
}

func TestParse_EmptyFunctionRoundTrips(t *testing.T) {
	proto, err := bytecode.Parse(bytes.NewReader(encodeEmptyFunction(t)))
	require.NoError(t, err)
	require.Empty(t, proto.Code)
	require.Empty(t, proto.Constants)
	require.Empty(t, proto.Protos)
	require.Equal(t, 2, proto.MaxStackSize)
}

func TestDecodeInstruction_ABxRoundTrips(t *testing.T) {
	buf := littleHeader()
	buf = appendString(buf, "")
	buf = appendUint32(buf, 0)
	buf = appendUint32(buf, 0)
	buf = append(buf, 0, 0, 0, 2)
	buf = appendUint32(buf, 1) // sizecode
	// LOADK A=0 Bx=5: opcode(6) | A(8) | Bx(18)
	word := uint32(bytecode.OpLoadK) | (0 << 6) | (5 << 14)
	buf = appendUint32(buf, word)
	buf = appendUint32(buf, 0) // sizeconstants
	buf = appendUint32(buf, 0) // sizeprotos
	buf = appendUint32(buf, 0) // sizelineinfo
	buf = appendUint32(buf, 0) // sizelocvars
	buf = appendUint32(buf, 0) // sizeupvalues

	proto, err := bytecode.Parse(bytes.NewReader(buf))
	require.NoError(t, err)
	require.Len(t, proto.Code, 1)
	require.Equal(t, bytecode.OpLoadK, proto.Code[0].Op)
	require.Equal(t, 5, proto.Code[0].Bx)
}
