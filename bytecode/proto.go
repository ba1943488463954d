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

package bytecode

import (
	"io"

	"github.com/dsarch/medaldec/cfgir"
	irerrors "github.com/dsarch/medaldec/ir/errors"
)

// Proto is one compiled function prototype: its code, constants, and
// nested closures, plus the parameter/vararg shape lift needs to seed a
// cfgir.Function's entry block.
type Proto struct {
	Source        string
	LineDefined   int
	LastLine      int
	NumUpvalues   int
	NumParams     int
	IsVararg      bool
	MaxStackSize  int
	Code          []Instruction
	Constants     []cfgir.Constant
	Protos        []*Proto
}

// Parse reads a complete Lua 5.1 chunk from r: the header, followed by
// its single top-level prototype (which may itself nest child
// prototypes for inner closures).
func Parse(r io.Reader) (*Proto, error) {
	header, err := ParseHeader(r)
	if err != nil {
		return nil, err
	}
	proto, err := parseProto(header, r)
	if err != nil {
		return nil, &irerrors.ParseError{Err: err}
	}
	return proto, nil
}

func parseProto(h *Header, r io.Reader) (*Proto, error) {
	p := &Proto{}

	source, ok, err := h.readString(r)
	if err != nil {
		return nil, err
	}
	if ok {
		p.Source = source
	}

	lineDefined, err := h.readLuaInt(r)
	if err != nil {
		return nil, err
	}
	p.LineDefined = int(lineDefined)

	lastLine, err := h.readLuaInt(r)
	if err != nil {
		return nil, err
	}
	p.LastLine = int(lastLine)

	var fixed [4]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return nil, err
	}
	p.NumUpvalues = int(fixed[0])
	p.NumParams = int(fixed[1])
	p.IsVararg = fixed[2] != 0
	p.MaxStackSize = int(fixed[3])

	if err := p.parseCode(h, r); err != nil {
		return nil, err
	}
	if err := p.parseConstants(h, r); err != nil {
		return nil, err
	}
	if err := p.parseProtos(h, r); err != nil {
		return nil, err
	}
	if err := skipDebugInfo(h, r); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Proto) parseCode(h *Header, r io.Reader) error {
	n, err := h.readLuaInt(r)
	if err != nil {
		return err
	}
	p.Code = make([]Instruction, n)
	var word [4]byte
	for i := range p.Code {
		if _, err := io.ReadFull(r, word[:]); err != nil {
			return err
		}
		var w uint32
		if h.Little {
			w = uint32(word[0]) | uint32(word[1])<<8 | uint32(word[2])<<16 | uint32(word[3])<<24
		} else {
			w = uint32(word[3]) | uint32(word[2])<<8 | uint32(word[1])<<16 | uint32(word[0])<<24
		}
		p.Code[i] = decodeInstruction(w)
	}
	return nil
}

const (
	tagNil     = 0
	tagBoolean = 1
	tagNumber  = 3
	tagString  = 4
)

func (p *Proto) parseConstants(h *Header, r io.Reader) error {
	n, err := h.readLuaInt(r)
	if err != nil {
		return err
	}
	p.Constants = make([]cfgir.Constant, n)
	for i := range p.Constants {
		var tag [1]byte
		if _, err := io.ReadFull(r, tag[:]); err != nil {
			return err
		}
		switch tag[0] {
		case tagNil:
			p.Constants[i] = cfgir.Constant{Kind: cfgir.ConstantNil}
		case tagBoolean:
			var b [1]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return err
			}
			p.Constants[i] = cfgir.Constant{Kind: cfgir.ConstantBoolean, Boolean: b[0] != 0}
		case tagNumber:
			v, err := h.readFloat(r)
			if err != nil {
				return err
			}
			p.Constants[i] = cfgir.Constant{Kind: cfgir.ConstantNumber, Number: v}
		case tagString:
			s, _, err := h.readString(r)
			if err != nil {
				return err
			}
			p.Constants[i] = cfgir.Constant{Kind: cfgir.ConstantString, String: s}
		default:
			return &irerrors.MalformedAst{Detail: "unknown constant tag in chunk"}
		}
	}
	return nil
}

func (p *Proto) parseProtos(h *Header, r io.Reader) error {
	n, err := h.readLuaInt(r)
	if err != nil {
		return err
	}
	p.Protos = make([]*Proto, n)
	for i := range p.Protos {
		child, err := parseProto(h, r)
		if err != nil {
			return err
		}
		p.Protos[i] = child
	}
	return nil
}

// skipDebugInfo consumes the line-number table, local-variable list, and
// upvalue-name list that follow a prototype's protos. Debug info is
// read and discarded rather than attached to Proto: the structuring
// pass reconstructs its own notion of source shape and has no use for
// the compiler's line numbers.
func skipDebugInfo(h *Header, r io.Reader) error {
	nLines, err := h.readLuaInt(r)
	if err != nil {
		return err
	}
	for i := int64(0); i < nLines; i++ {
		if _, err := h.readLuaInt(r); err != nil {
			return err
		}
	}

	nLocals, err := h.readLuaInt(r)
	if err != nil {
		return err
	}
	for i := int64(0); i < nLocals; i++ {
		if _, _, err := h.readString(r); err != nil {
			return err
		}
		if _, err := h.readLuaInt(r); err != nil {
			return err
		}
		if _, err := h.readLuaInt(r); err != nil {
			return err
		}
	}

	nUpvalNames, err := h.readLuaInt(r)
	if err != nil {
		return err
	}
	for i := int64(0); i < nUpvalNames; i++ {
		if _, _, err := h.readString(r); err != nil {
			return err
		}
	}
	return nil
}
