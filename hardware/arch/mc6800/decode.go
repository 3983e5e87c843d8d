// This file is part of Tracer8.
//
// Tracer8 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Tracer8 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Tracer8.  If not, see <https://www.gnu.org/licenses/>.

package mc6800

import (
	"fmt"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
)

// Decode implements the cpu.Backend interface. Direct mode addresses the
// first 256 bytes of memory with a single operand byte. Extended mode
// carries a full 16-bit address, high byte first.
func (c *MC6800) Decode(r bus.Reader, opcode uint8, pc uint16) (*execution.Operation, error) {
	op := &execution.Operation{
		OpCode: []uint8{opcode},
	}

	imm8 := func(mnemonic string, reg string, cycles int) error {
		v, err := r.Read(pc + 1)
		if err != nil {
			return err
		}
		op.Mnemonic = mnemonic
		op.Operands = []string{reg, fmt.Sprintf("#$%02X", v)}
		op.OperandBytes = []uint8{v}
		op.Cycles = cycles
		return nil
	}

	relative := func(mnemonic string) error {
		offset, err := r.Read(pc + 1)
		if err != nil {
			return err
		}
		e := int(offset)
		if e >= 0x80 {
			e -= 0x100
		}
		target := uint16(int(pc) + 2 + e)
		op.Mnemonic = mnemonic
		op.Operands = []string{fmt.Sprintf("$%04X", target)}
		op.OperandBytes = []uint8{offset}
		op.Cycles = 4
		op.EffectiveAddress = target
		op.EffectiveAddressValid = true
		return nil
	}

	extended := func(mnemonic string, reg string, cycles int) error {
		hi, err := r.Read(pc + 1)
		if err != nil {
			return err
		}
		lo, err := r.Read(pc + 2)
		if err != nil {
			return err
		}
		addr := uint16(hi)<<8 | uint16(lo)
		op.Mnemonic = mnemonic
		op.Operands = []string{fmt.Sprintf("$%04X", addr)}
		if reg != "" {
			op.Operands = []string{reg, op.Operands[0]}
		}
		op.OperandBytes = []uint8{hi, lo}
		op.Cycles = cycles
		op.EffectiveAddress = addr
		op.EffectiveAddressValid = true
		return nil
	}

	var err error

	switch opcode {
	case 0x01:
		op.Mnemonic = "NOP"
		op.Cycles = 2

	case 0x20:
		err = relative("BRA")
	case 0x26:
		err = relative("BNE")
	case 0x27:
		err = relative("BEQ")

	case 0x32:
		op.Mnemonic = "PULA"
		op.Cycles = 4
	case 0x33:
		op.Mnemonic = "PULB"
		op.Cycles = 4
	case 0x36:
		op.Mnemonic = "PSHA"
		op.Cycles = 3
	case 0x37:
		op.Mnemonic = "PSHB"
		op.Cycles = 3

	case 0x39:
		op.Mnemonic = "RTS"
		op.Cycles = 5

	case 0x5c:
		op.Mnemonic = "INCB"
		op.Cycles = 2

	case 0x80:
		err = imm8("SUBA", "A", 2)
	case 0x81:
		err = imm8("CMPA", "A", 2)
	case 0x84:
		err = imm8("ANDA", "A", 2)
	case 0x86:
		err = imm8("LDAA", "A", 2)
	case 0x8b:
		err = imm8("ADDA", "A", 2)

	case 0x96:
		// direct mode
		var v uint8
		v, err = r.Read(pc + 1)
		if err != nil {
			break
		}
		op.Mnemonic = "LDAA"
		op.Operands = []string{"A", fmt.Sprintf("$%02X", v)}
		op.OperandBytes = []uint8{v}
		op.Cycles = 3
		op.EffectiveAddress = uint16(v)
		op.EffectiveAddressValid = true

	case 0xb7:
		err = extended("STAA", "A", 5)
	case 0xbd:
		err = extended("JSR", "", 9)

	case 0xc6:
		err = imm8("LDAB", "B", 2)

	case 0xce:
		// 16-bit immediate, high byte first
		var hi, lo uint8
		hi, err = r.Read(pc + 1)
		if err != nil {
			break
		}
		lo, err = r.Read(pc + 2)
		if err != nil {
			break
		}
		op.Mnemonic = "LDX"
		op.Operands = []string{"X", fmt.Sprintf("#$%04X", uint16(hi)<<8|uint16(lo))}
		op.OperandBytes = []uint8{hi, lo}
		op.Cycles = 3

	default:
		return nil, curated.Errorf(cpu.UnsupportedOpcode, ArchID, opcode, pc)
	}

	if err != nil {
		return nil, err
	}

	op.Length = 1 + len(op.OperandBytes)
	return op, nil
}
