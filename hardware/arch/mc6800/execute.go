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
	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
)

// push writes at the current stack pointer and then decrements it. the
// opposite order to most other 8-bit processors.
func (c *MC6800) push(v uint8) error {
	if err := c.mem.Write(c.SP, v); err != nil {
		return err
	}
	c.SP--
	return nil
}

func (c *MC6800) pull() (uint8, error) {
	c.SP++
	return c.mem.Read(c.SP)
}

// operand returns the value the instruction works on: the immediate byte
// when there is no effective address, the memory content otherwise.
func (c *MC6800) operand(op *execution.Operation) (uint8, error) {
	if !op.EffectiveAddressValid {
		return op.OperandBytes[0], nil
	}
	return c.mem.Read(op.EffectiveAddress)
}

// Execute implements the cpu.Backend interface.
func (c *MC6800) Execute(op *execution.Operation) error {
	switch op.OpCode[0] {
	case 0x01: // NOP

	case 0x20: // BRA
		c.PC = op.EffectiveAddress
	case 0x26: // BNE
		if !c.flag(flagZ) {
			c.PC = op.EffectiveAddress
		}
	case 0x27: // BEQ
		if c.flag(flagZ) {
			c.PC = op.EffectiveAddress
		}

	case 0x32: // PULA
		v, err := c.pull()
		if err != nil {
			return err
		}
		c.A = v
	case 0x33: // PULB
		v, err := c.pull()
		if err != nil {
			return err
		}
		c.B = v
	case 0x36: // PSHA
		return c.push(c.A)
	case 0x37: // PSHB
		return c.push(c.B)

	case 0x39: // RTS. the return address is pulled high byte first
		hi, err := c.pull()
		if err != nil {
			return err
		}
		lo, err := c.pull()
		if err != nil {
			return err
		}
		c.PC = uint16(hi)<<8 | uint16(lo)

	case 0x5c: // INCB
		c.setFlag(flagV, c.B == 0x7f)
		c.B++
		c.setFlag(flagN, c.B&0x80 != 0)
		c.setFlag(flagZ, c.B == 0)

	case 0x80: // SUBA
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		result := int(c.A) - int(v)
		c.flagsSub8(c.A, v, result)
		c.A = uint8(result)

	case 0x81: // CMPA
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.flagsSub8(c.A, v, int(c.A)-int(v))

	case 0x84: // ANDA
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.A &= v
		c.flagsLogic8(c.A)

	case 0x86, 0x96: // LDAA
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.A = v
		c.flagsLogic8(v)

	case 0x8b: // ADDA
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		result := int(c.A) + int(v)
		c.flagsAdd8(c.A, v, result)
		c.A = uint8(result)

	case 0xb7: // STAA
		c.flagsLogic8(c.A)
		return c.mem.Write(op.EffectiveAddress, c.A)

	case 0xbd: // JSR. the return address is pushed low byte first
		if err := c.push(uint8(c.PC)); err != nil {
			return err
		}
		if err := c.push(uint8(c.PC >> 8)); err != nil {
			return err
		}
		c.PC = op.EffectiveAddress

	case 0xc6: // LDAB
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.B = v
		c.flagsLogic8(v)

	case 0xce: // LDX
		v := uint16(op.OperandBytes[0])<<8 | uint16(op.OperandBytes[1])
		c.X = v
		c.setFlag(flagN, v&0x8000 != 0)
		c.setFlag(flagZ, v == 0)
		c.setFlag(flagV, false)

	default:
		return curated.Errorf(cpu.UnsupportedOpcode, ArchID, op.OpCode[0], c.PC)
	}

	return nil
}
