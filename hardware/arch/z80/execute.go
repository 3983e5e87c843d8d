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

package z80

import (
	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
)

// push16 writes a 16-bit value to the stack, high byte first.
func (c *Z80) push16(v uint16) error {
	c.SP--
	if err := c.mem.Write(c.SP, uint8(v>>8)); err != nil {
		return err
	}
	c.SP--
	return c.mem.Write(c.SP, uint8(v))
}

// pop16 reads a 16-bit value from the stack, low byte first.
func (c *Z80) pop16() (uint16, error) {
	lo, err := c.mem.Read(c.SP)
	if err != nil {
		return 0, err
	}
	c.SP++
	hi, err := c.mem.Read(c.SP)
	if err != nil {
		return 0, err
	}
	c.SP++
	return uint16(hi)<<8 | uint16(lo), nil
}

// Execute implements the cpu.Backend interface. The program counter has
// already advanced past the instruction; control transfer instructions
// overwrite it from there. Branch instructions amend the Operation's cycle
// count when the branch is taken.
func (c *Z80) Execute(op *execution.Operation) error {
	opcode := op.OpCode[0]

	switch opcode {
	case 0x00: // NOP
		return nil

	case 0x08: // EX AF,AF'
		c.A, c.A2 = c.A2, c.A
		c.F, c.F2 = c.F2, c.F
		return nil

	case 0x10: // DJNZ e
		c.B--
		if c.B != 0 {
			c.PC = op.EffectiveAddress
			op.Cycles = 13
		}
		return nil

	case 0x18: // JR e
		c.PC = op.EffectiveAddress
		return nil

	case 0x20, 0x28, 0x30, 0x38: // JR cc,e
		var taken bool
		switch (opcode >> 3) & 0b11 {
		case 0b00:
			taken = !c.flag(flagZ)
		case 0b01:
			taken = c.flag(flagZ)
		case 0b10:
			taken = !c.flag(flagC)
		case 0b11:
			taken = c.flag(flagC)
		}
		if taken {
			c.PC = op.EffectiveAddress
			op.Cycles = 12
		}
		return nil

	case 0x32: // LD (nn),A
		return c.mem.Write(op.EffectiveAddress, c.A)

	case 0x3a: // LD A,(nn)
		v, err := c.mem.Read(op.EffectiveAddress)
		if err != nil {
			return err
		}
		c.A = v
		return nil

	case 0x76: // HALT
		c.Halted = true
		return nil

	case 0xc3: // JP nn
		c.PC = op.EffectiveAddress
		return nil

	case 0xc9: // RET
		pc, err := c.pop16()
		if err != nil {
			return err
		}
		c.PC = pc
		return nil

	case 0xcb:
		return c.executeCB(op)

	case 0xcd: // CALL nn
		if err := c.push16(c.PC); err != nil {
			return err
		}
		c.PC = op.EffectiveAddress
		return nil

	case 0xd3: // OUT (n),A
		port := uint16(c.A)<<8 | uint16(op.OperandBytes[0])
		return c.mem.WriteIO(port, c.A)

	case 0xd9: // EXX
		c.B, c.B2 = c.B2, c.B
		c.C, c.C2 = c.C2, c.C
		c.D, c.D2 = c.D2, c.D
		c.E, c.E2 = c.E2, c.E
		c.H, c.H2 = c.H2, c.H
		c.L, c.L2 = c.L2, c.L
		return nil

	case 0xdb: // IN A,(n)
		port := uint16(c.A)<<8 | uint16(op.OperandBytes[0])
		v, err := c.mem.ReadIO(port)
		if err != nil {
			return err
		}
		c.A = v
		return nil

	case 0xdd, 0xfd:
		return c.executeIndex(op)

	case 0xe3: // EX (SP),HL
		lo, err := c.mem.Read(c.SP)
		if err != nil {
			return err
		}
		if err := c.mem.Write(c.SP, c.L); err != nil {
			return err
		}
		c.L = lo
		hi, err := c.mem.Read(c.SP + 1)
		if err != nil {
			return err
		}
		if err := c.mem.Write(c.SP+1, c.H); err != nil {
			return err
		}
		c.H = hi
		return nil

	case 0xeb: // EX DE,HL
		c.D, c.H = c.H, c.D
		c.E, c.L = c.L, c.E
		return nil

	case 0xed:
		return c.executeED(op)

	case 0xf3: // DI
		c.IFF1 = false
		c.IFF2 = false
		return nil

	case 0xfb: // EI
		c.IFF1 = true
		c.IFF2 = true
		return nil

	case 0xfe: // CP n
		n := op.OperandBytes[0]
		c.flagsSub8(c.A, n, 0, int(c.A)-int(n))
		return nil
	}

	switch {
	case opcode < 0x40 && opcode&0xcf == 0x01: // LD ss,nn
		nn := uint16(op.OperandBytes[1])<<8 | uint16(op.OperandBytes[0])
		c.setPair((opcode>>4)&0b11, nn)
		return nil

	case opcode < 0x40 && opcode&0xcf == 0x09: // ADD HL,ss
		v := c.pair((opcode >> 4) & 0b11)
		hl := c.hl()
		result := int(hl) + int(v)
		c.flagsAdd16(hl, v, result)
		c.setHL(uint16(result))
		return nil

	case opcode < 0x40 && opcode&0xc7 == 0x06: // LD r,n
		return c.setReg8((opcode>>3)&0b111, op.OperandBytes[0])

	case opcode < 0x40 && (opcode&0xc7 == 0x04 || opcode&0xc7 == 0x05): // INC r and DEC r
		code := (opcode >> 3) & 0b111
		v, err := c.reg8(code)
		if err != nil {
			return err
		}
		var result uint8
		if opcode&1 == 0 {
			result = v + 1
			c.flagsIncDec8(v, result, true)
		} else {
			result = v - 1
			c.flagsIncDec8(v, result, false)
		}
		return c.setReg8(code, result)

	case opcode >= 0x40 && opcode < 0x80: // LD r,r'
		v, err := c.reg8(opcode & 0b111)
		if err != nil {
			return err
		}
		return c.setReg8((opcode>>3)&0b111, v)

	case opcode >= 0x80 && opcode < 0xc0:
		return c.executeALU(opcode)

	case opcode&0xcf == 0xc5: // PUSH qq
		var v uint16
		switch (opcode >> 4) & 0b11 {
		case 0b00:
			v = c.bc()
		case 0b01:
			v = c.de()
		case 0b10:
			v = c.hl()
		default:
			v = c.af()
		}
		return c.push16(v)

	case opcode&0xcf == 0xc1: // POP qq
		v, err := c.pop16()
		if err != nil {
			return err
		}
		switch (opcode >> 4) & 0b11 {
		case 0b00:
			c.setBC(v)
		case 0b01:
			c.setDE(v)
		case 0b10:
			c.setHL(v)
		default:
			c.setAF(v)
		}
		return nil
	}

	return curated.Errorf(cpu.UnsupportedOpcode, ArchID, opcode, c.PC)
}

// executeALU performs the register forms of ADD/ADC/SUB/SBC/AND/XOR/OR/CP.
func (c *Z80) executeALU(opcode uint8) error {
	v, err := c.reg8(opcode & 0b111)
	if err != nil {
		return err
	}

	switch (opcode >> 3) & 0b111 {
	case 0b000: // ADD A,r
		result := int(c.A) + int(v)
		c.flagsAdd8(c.A, v, 0, result)
		c.A = uint8(result)
	case 0b001: // ADC A,r
		carry := 0
		if c.flag(flagC) {
			carry = 1
		}
		result := int(c.A) + int(v) + carry
		c.flagsAdd8(c.A, v, carry, result)
		c.A = uint8(result)
	case 0b010: // SUB r
		result := int(c.A) - int(v)
		c.flagsSub8(c.A, v, 0, result)
		c.A = uint8(result)
	case 0b011: // SBC A,r
		borrow := 0
		if c.flag(flagC) {
			borrow = 1
		}
		result := int(c.A) - int(v) - borrow
		c.flagsSub8(c.A, v, borrow, result)
		c.A = uint8(result)
	case 0b100: // AND r
		c.A &= v
		c.flagsLogic8(c.A, true)
	case 0b101: // XOR r
		c.A ^= v
		c.flagsLogic8(c.A, false)
	case 0b110: // OR r
		c.A |= v
		c.flagsLogic8(c.A, false)
	case 0b111: // CP r
		c.flagsSub8(c.A, v, 0, int(c.A)-int(v))
	}

	return nil
}

// executeCB performs the bit manipulation and rotate/shift group.
func (c *Z80) executeCB(op *execution.Operation) error {
	cb := op.OpCode[1]
	code := cb & 0b111
	bit := (cb >> 3) & 0b111

	v, err := c.reg8(code)
	if err != nil {
		return err
	}

	switch (cb >> 6) & 0b11 {
	case 0b01: // BIT b,r
		res := v & (1 << bit)
		c.setFlag(flagZ, res == 0)
		c.setFlag(flagH, true)
		c.setFlag(flagN, false)
		c.setFlag(flagS, bit == 7 && res != 0)
		c.setFlag(flagPV, res == 0)
		return nil
	case 0b10: // RES b,r
		return c.setReg8(code, v&^(1<<bit))
	case 0b11: // SET b,r
		return c.setReg8(code, v|1<<bit)
	}

	return c.setReg8(code, c.rotateShift8(v, bit))
}

// executeED performs the extended group.
func (c *Z80) executeED(op *execution.Operation) error {
	ed := op.OpCode[1]

	switch ed {
	case 0xa0, 0xa8, 0xb0, 0xb8: // LDI, LDD, LDIR, LDDR
		repeat := ed&0x10 != 0
		decrement := ed&0x08 != 0

		data, err := c.mem.Read(c.hl())
		if err != nil {
			return err
		}
		if err := c.mem.Write(c.de(), data); err != nil {
			return err
		}

		if decrement {
			c.setHL(c.hl() - 1)
			c.setDE(c.de() - 1)
		} else {
			c.setHL(c.hl() + 1)
			c.setDE(c.de() + 1)
		}
		c.setBC(c.bc() - 1)

		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagPV, c.bc() != 0)

		if repeat {
			if c.bc() != 0 {
				// rewind so the next step re-executes the instruction
				c.PC -= 2
			} else {
				op.Cycles = 16
			}
		}
		return nil

	case 0x46:
		c.IM = 0
		return nil
	case 0x56:
		c.IM = 1
		return nil
	case 0x5e:
		c.IM = 2
		return nil

	case 0x4d, 0x45: // RETI, RETN
		pc, err := c.pop16()
		if err != nil {
			return err
		}
		c.PC = pc
		if ed == 0x45 {
			c.IFF1 = c.IFF2
		}
		return nil
	}

	return curated.Errorf(cpu.UnsupportedOpcode, ArchID, ed, c.PC)
}

// executeIndex performs the DD and FD prefixed instructions.
func (c *Z80) executeIndex(op *execution.Operation) error {
	sub := op.OpCode[1]

	idx := &c.IX
	if op.OpCode[0] == 0xfd {
		idx = &c.IY
	}

	switch {
	case sub == 0x21: // LD IX,nn
		*idx = uint16(op.OperandBytes[1])<<8 | uint16(op.OperandBytes[0])
		return nil

	case sub == 0x23: // INC IX
		*idx++
		return nil

	case sub == 0xe3: // EX (SP),IX
		lo, err := c.mem.Read(c.SP)
		if err != nil {
			return err
		}
		if err := c.mem.Write(c.SP, uint8(*idx)); err != nil {
			return err
		}
		hi, err := c.mem.Read(c.SP + 1)
		if err != nil {
			return err
		}
		if err := c.mem.Write(c.SP+1, uint8(*idx>>8)); err != nil {
			return err
		}
		*idx = uint16(hi)<<8 | uint16(lo)
		return nil

	case sub&0xcf == 0x09: // ADD IX,ss
		var v uint16
		switch (sub >> 4) & 0b11 {
		case 0b00:
			v = c.bc()
		case 0b01:
			v = c.de()
		case 0b10:
			// the HL slot selects the index register itself
			v = *idx
		default:
			v = c.SP
		}
		result := int(*idx) + int(v)
		c.flagsAdd16(*idx, v, result)
		*idx = uint16(result)
		return nil

	case sub&0xc7 == 0x46 && sub != 0x76: // LD r,(IX+d)
		v, err := c.mem.Read(op.EffectiveAddress)
		if err != nil {
			return err
		}
		return c.setReg8((sub>>3)&0b111, v)

	case sub&0xf8 == 0x70 && sub != 0x76: // LD (IX+d),r
		v, err := c.reg8(sub & 0b111)
		if err != nil {
			return err
		}
		return c.mem.Write(op.EffectiveAddress, v)
	}

	return curated.Errorf(cpu.UnsupportedOpcode, ArchID, sub, c.PC)
}
