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

package mos6502

import (
	"fmt"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
)

func pageCrossed(a uint16, b uint16) bool {
	return a&0xff00 != b&0xff00
}

// Decode implements the cpu.Backend interface. Addressing is fully resolved
// here, including the indirection reads of the ($xx,X), ($xx),Y and (JMP
// indirect) modes, so that Execute() works only from the resolved effective
// address. The page-crossing penalty of the indexed read modes is folded
// into the cycle count during resolution.
func (c *MOS6502) Decode(r bus.Reader, opcode uint8, pc uint16) (*execution.Operation, error) {
	def, ok := opcodeTable[opcode]
	if !ok {
		return nil, curated.Errorf(cpu.UnsupportedOpcode, ArchID, opcode, pc)
	}

	op := &execution.Operation{
		OpCode:   []uint8{opcode},
		Mnemonic: def.mnemonic,
		Cycles:   def.cycles,
	}

	setEA := func(addr uint16) {
		op.EffectiveAddress = addr
		op.EffectiveAddressValid = true
	}

	switch def.mode {
	case implied:
		// nothing to resolve

	case immediate:
		v, err := r.Read(pc + 1)
		if err != nil {
			return nil, err
		}
		op.Operands = []string{fmt.Sprintf("#$%02X", v)}
		op.OperandBytes = []uint8{v}

	case zeroPage:
		v, err := r.Read(pc + 1)
		if err != nil {
			return nil, err
		}
		op.Operands = []string{fmt.Sprintf("$%02X", v)}
		op.OperandBytes = []uint8{v}
		setEA(uint16(v))

	case zeroPageX, zeroPageY:
		v, err := r.Read(pc + 1)
		if err != nil {
			return nil, err
		}
		idx := c.X
		reg := "X"
		if def.mode == zeroPageY {
			idx = c.Y
			reg = "Y"
		}
		op.Operands = []string{fmt.Sprintf("$%02X,%s", v, reg)}
		op.OperandBytes = []uint8{v}

		// index addition wraps within the zero page
		setEA(uint16(v + idx))

	case absolute:
		addr, lo, hi, err := c.readAddress(r, pc+1)
		if err != nil {
			return nil, err
		}
		op.Operands = []string{fmt.Sprintf("$%04X", addr)}
		op.OperandBytes = []uint8{lo, hi}
		setEA(addr)

	case absoluteX, absoluteY:
		base, lo, hi, err := c.readAddress(r, pc+1)
		if err != nil {
			return nil, err
		}
		idx := c.X
		reg := "X"
		if def.mode == absoluteY {
			idx = c.Y
			reg = "Y"
		}
		addr := base + uint16(idx)
		op.Operands = []string{fmt.Sprintf("$%04X,%s", base, reg)}
		op.OperandBytes = []uint8{lo, hi}
		setEA(addr)
		if pageCrossed(base, addr) {
			op.Cycles++
		}

	case indirect:
		ptr, lo, hi, err := c.readAddress(r, pc+1)
		if err != nil {
			return nil, err
		}
		effLo, err := r.Read(ptr)
		if err != nil {
			return nil, err
		}

		// hardware quirk: a pointer at $xxFF wraps within the page for its
		// high byte
		var hiAddr uint16
		if ptr&0xff == 0xff {
			hiAddr = ptr & 0xff00
		} else {
			hiAddr = ptr + 1
		}
		effHi, err := r.Read(hiAddr)
		if err != nil {
			return nil, err
		}

		op.Operands = []string{fmt.Sprintf("($%04X)", ptr)}
		op.OperandBytes = []uint8{lo, hi}
		setEA(uint16(effHi)<<8 | uint16(effLo))

	case indexedIndirect: // ($xx,X)
		base, err := r.Read(pc + 1)
		if err != nil {
			return nil, err
		}
		ptr := base + c.X // zero page wrap
		lo, err := r.Read(uint16(ptr))
		if err != nil {
			return nil, err
		}
		hi, err := r.Read(uint16(ptr + 1))
		if err != nil {
			return nil, err
		}
		op.Operands = []string{fmt.Sprintf("($%02X,X)", base)}
		op.OperandBytes = []uint8{base}
		setEA(uint16(hi)<<8 | uint16(lo))

	case indirectIndexed: // ($xx),Y
		ptr, err := r.Read(pc + 1)
		if err != nil {
			return nil, err
		}
		lo, err := r.Read(uint16(ptr))
		if err != nil {
			return nil, err
		}
		hi, err := r.Read(uint16(ptr + 1)) // zero page wrap
		if err != nil {
			return nil, err
		}
		base := uint16(hi)<<8 | uint16(lo)
		addr := base + uint16(c.Y)
		op.Operands = []string{fmt.Sprintf("($%02X),Y", ptr)}
		op.OperandBytes = []uint8{ptr}
		setEA(addr)
		if pageCrossed(base, addr) {
			op.Cycles++
		}

	case relative:
		offset, err := r.Read(pc + 1)
		if err != nil {
			return nil, err
		}
		e := int(offset)
		if e >= 0x80 {
			e -= 0x100
		}
		target := uint16(int(pc) + 2 + e)
		op.Operands = []string{fmt.Sprintf("$%04X", target)}
		op.OperandBytes = []uint8{offset}
		setEA(target)
	}

	op.Length = 1 + len(op.OperandBytes)
	return op, nil
}

func (c *MOS6502) readAddress(r bus.Reader, addr uint16) (uint16, uint8, uint8, error) {
	lo, err := r.Read(addr)
	if err != nil {
		return 0, 0, 0, err
	}
	hi, err := r.Read(addr + 1)
	if err != nil {
		return 0, 0, 0, err
	}
	return uint16(hi)<<8 | uint16(lo), lo, hi, nil
}
