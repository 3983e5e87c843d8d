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
	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
)

// operand returns the value the instruction works on: the immediate byte
// when there is no effective address, the memory content otherwise.
func (c *MOS6502) operand(op *execution.Operation) (uint8, error) {
	if !op.EffectiveAddressValid {
		return op.OperandBytes[0], nil
	}
	return c.mem.Read(op.EffectiveAddress)
}

// Execute implements the cpu.Backend interface.
func (c *MOS6502) Execute(op *execution.Operation) error {
	def, ok := opcodeTable[op.OpCode[0]]
	if !ok {
		return curated.Errorf(cpu.UnsupportedOpcode, ArchID, op.OpCode[0], c.PC)
	}

	switch def.mnemonic {
	case "LDA":
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.A = v
		c.setNZ(v)

	case "LDX":
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.X = v
		c.setNZ(v)

	case "LDY":
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.Y = v
		c.setNZ(v)

	case "STA":
		return c.mem.Write(op.EffectiveAddress, c.A)
	case "STX":
		return c.mem.Write(op.EffectiveAddress, c.X)
	case "STY":
		return c.mem.Write(op.EffectiveAddress, c.Y)

	case "TAX":
		c.X = c.A
		c.setNZ(c.X)
	case "TAY":
		c.Y = c.A
		c.setNZ(c.Y)
	case "TXA":
		c.A = c.X
		c.setNZ(c.A)
	case "TYA":
		c.A = c.Y
		c.setNZ(c.A)
	case "TXS":
		// TXS is the one transfer that leaves the flags alone
		c.SP = c.X
	case "TSX":
		c.X = c.SP
		c.setNZ(c.X)

	case "ADC":
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		if c.flag(flagD) {
			c.adcDecimal(v)
		} else {
			c.adcBinary(v)
		}

	case "SBC":
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		if c.flag(flagD) {
			c.sbcDecimal(v)
		} else {
			c.adcBinary(v ^ 0xff)
		}

	case "CMP":
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.compare(c.A, v)
	case "CPX":
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.compare(c.X, v)
	case "CPY":
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.compare(c.Y, v)

	case "AND":
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.A &= v
		c.setNZ(c.A)
	case "ORA":
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.A |= v
		c.setNZ(c.A)
	case "EOR":
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.A ^= v
		c.setNZ(c.A)

	case "BIT":
		v, err := c.operand(op)
		if err != nil {
			return err
		}
		c.setFlag(flagZ, c.A&v == 0)
		c.setFlag(flagV, v&0x40 != 0)
		c.setFlag(flagN, v&0x80 != 0)

	case "ASL", "LSR", "ROL", "ROR":
		return c.shift(def.mnemonic, op)

	case "INC":
		v, err := c.mem.Read(op.EffectiveAddress)
		if err != nil {
			return err
		}
		v++
		c.setNZ(v)
		return c.mem.Write(op.EffectiveAddress, v)
	case "DEC":
		v, err := c.mem.Read(op.EffectiveAddress)
		if err != nil {
			return err
		}
		v--
		c.setNZ(v)
		return c.mem.Write(op.EffectiveAddress, v)

	case "INX":
		c.X++
		c.setNZ(c.X)
	case "DEX":
		c.X--
		c.setNZ(c.X)
	case "INY":
		c.Y++
		c.setNZ(c.Y)
	case "DEY":
		c.Y--
		c.setNZ(c.Y)

	case "BCC":
		c.branch(op, !c.flag(flagC))
	case "BCS":
		c.branch(op, c.flag(flagC))
	case "BEQ":
		c.branch(op, c.flag(flagZ))
	case "BNE":
		c.branch(op, !c.flag(flagZ))
	case "BMI":
		c.branch(op, c.flag(flagN))
	case "BPL":
		c.branch(op, !c.flag(flagN))
	case "BVC":
		c.branch(op, !c.flag(flagV))
	case "BVS":
		c.branch(op, c.flag(flagV))

	case "JMP":
		c.PC = op.EffectiveAddress

	case "JSR":
		// the pushed return address is the last byte of the JSR, not the
		// next instruction. RTS compensates
		ret := c.PC - 1
		if err := c.push(uint8(ret >> 8)); err != nil {
			return err
		}
		if err := c.push(uint8(ret)); err != nil {
			return err
		}
		c.PC = op.EffectiveAddress

	case "RTS":
		lo, err := c.pull()
		if err != nil {
			return err
		}
		hi, err := c.pull()
		if err != nil {
			return err
		}
		c.PC = (uint16(hi)<<8 | uint16(lo)) + 1

	case "PHA":
		return c.push(c.A)
	case "PHP":
		// the break and unused bits read as set on the stack
		return c.push(c.P | flagB | flagR)
	case "PLA":
		v, err := c.pull()
		if err != nil {
			return err
		}
		c.A = v
		c.setNZ(v)
	case "PLP":
		v, err := c.pull()
		if err != nil {
			return err
		}
		c.P = v&^flagB | flagR

	case "CLC":
		c.setFlag(flagC, false)
	case "SEC":
		c.setFlag(flagC, true)
	case "CLI":
		c.setFlag(flagI, false)
	case "SEI":
		c.setFlag(flagI, true)
	case "CLV":
		c.setFlag(flagV, false)
	case "CLD":
		c.setFlag(flagD, false)
	case "SED":
		c.setFlag(flagD, true)

	case "NOP":

	case "BRK":
		// the return address skips the padding byte after BRK
		ret := c.PC + 1
		if err := c.push(uint8(ret >> 8)); err != nil {
			return err
		}
		if err := c.push(uint8(ret)); err != nil {
			return err
		}
		if err := c.push(c.P | flagB | flagR); err != nil {
			return err
		}
		c.setFlag(flagI, true)
		lo, err := c.mem.Read(0xfffe)
		if err != nil {
			return err
		}
		hi, err := c.mem.Read(0xffff)
		if err != nil {
			return err
		}
		c.PC = uint16(hi)<<8 | uint16(lo)

	case "RTI":
		p, err := c.pull()
		if err != nil {
			return err
		}
		c.P = p&^flagB | flagR
		lo, err := c.pull()
		if err != nil {
			return err
		}
		hi, err := c.pull()
		if err != nil {
			return err
		}
		c.PC = uint16(hi)<<8 | uint16(lo)
	}

	return nil
}

func (c *MOS6502) adcBinary(v uint8) {
	carry := 0
	if c.flag(flagC) {
		carry = 1
	}
	wide := int(c.A) + int(v) + carry
	res := uint8(wide)

	c.setFlag(flagC, wide > 0xff)
	c.setFlag(flagV, ^(c.A^v)&(c.A^res)&0x80 != 0)
	c.A = res
	c.setNZ(res)
}

// adcDecimal performs BCD addition. N and Z follow the binary
// interpretation of the result, as most emulations do.
func (c *MOS6502) adcDecimal(v uint8) {
	carry := 0
	if c.flag(flagC) {
		carry = 1
	}

	lo := int(c.A&0x0f) + int(v&0x0f) + carry
	hi := int(c.A>>4) + int(v>>4)
	if lo > 9 {
		lo -= 10
		hi++
	}
	carryOut := false
	if hi > 9 {
		hi -= 10
		carryOut = true
	}

	res := uint8(hi<<4) | uint8(lo)
	c.A = res
	c.setFlag(flagC, carryOut)
	c.setNZ(res)
}

func (c *MOS6502) sbcDecimal(v uint8) {
	borrow := 1
	if c.flag(flagC) {
		borrow = 0
	}

	decimal := func(b uint8) int { return int(b>>4)*10 + int(b&0x0f) }

	diff := decimal(c.A) - decimal(v) - borrow
	carryOut := true
	if diff < 0 {
		diff += 100
		carryOut = false
	}

	res := uint8(diff/10)<<4 | uint8(diff%10)
	c.A = res
	c.setFlag(flagC, carryOut)
	c.setNZ(res)
}

// compare sets N, Z and C from a register/memory comparison. C is set when
// the register is greater than or equal to the operand.
func (c *MOS6502) compare(reg uint8, v uint8) {
	diff := int(reg) - int(v)
	c.setFlag(flagC, diff >= 0)
	c.setNZ(uint8(diff))
}

// shift performs ASL/LSR/ROL/ROR against the accumulator or memory.
func (c *MOS6502) shift(mnemonic string, op *execution.Operation) error {
	var v uint8
	if op.EffectiveAddressValid {
		var err error
		v, err = c.mem.Read(op.EffectiveAddress)
		if err != nil {
			return err
		}
	} else {
		v = c.A
	}

	var res uint8
	var carry bool
	switch mnemonic {
	case "ASL":
		carry = v&0x80 != 0
		res = v << 1
	case "LSR":
		carry = v&0x01 != 0
		res = v >> 1
	case "ROL":
		carry = v&0x80 != 0
		res = v << 1
		if c.flag(flagC) {
			res |= 0x01
		}
	case "ROR":
		carry = v&0x01 != 0
		res = v >> 1
		if c.flag(flagC) {
			res |= 0x80
		}
	}

	c.setFlag(flagC, carry)
	c.setNZ(res)

	if op.EffectiveAddressValid {
		return c.mem.Write(op.EffectiveAddress, res)
	}
	c.A = res
	return nil
}

// branch moves the program counter to the resolved target when the
// condition holds, charging one extra cycle plus another when the target
// is on a different page than the instruction that follows the branch.
func (c *MOS6502) branch(op *execution.Operation, taken bool) {
	if !taken {
		return
	}
	op.Cycles++
	if pageCrossed(c.PC, op.EffectiveAddress) {
		op.Cycles++
	}
	c.PC = op.EffectiveAddress
}
