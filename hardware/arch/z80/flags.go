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

// Flag register bit positions. Bits 5 and 3 are undocumented and left alone.
const (
	flagS  = 0b10000000
	flagZ  = 0b01000000
	flagH  = 0b00010000
	flagPV = 0b00000100
	flagN  = 0b00000010
	flagC  = 0b00000001
)

func (c *Z80) flag(mask uint8) bool {
	return c.F&mask != 0
}

func (c *Z80) setFlag(mask uint8, v bool) {
	if v {
		c.F |= mask
	} else {
		c.F &^= mask
	}
}

// parity returns true when the number of set bits is even.
func parity(v uint8) bool {
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return v&1 == 0
}

// flagsAdd8 updates all flags after an 8-bit add. carry is the carry-in (0
// or 1). result is the unclamped sum.
func (c *Z80) flagsAdd8(v1 uint8, v2 uint8, carry int, result int) {
	res := uint8(result)
	c.setFlag(flagS, res&0x80 != 0)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagH, int(v1&0x0f)+int(v2&0x0f)+carry > 0x0f)

	// overflow: two operands of the same sign producing the opposite sign
	c.setFlag(flagPV, (v1^res)&(v2^res)&0x80 != 0)

	c.setFlag(flagN, false)
	c.setFlag(flagC, result > 0xff)
}

// flagsSub8 updates all flags after an 8-bit subtract or compare. borrow is
// the borrow-in (0 or 1). result is the unclamped difference and may be
// negative.
func (c *Z80) flagsSub8(v1 uint8, v2 uint8, borrow int, result int) {
	res := uint8(result)
	c.setFlag(flagS, res&0x80 != 0)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagH, int(v1&0x0f)-int(v2&0x0f)-borrow < 0)
	c.setFlag(flagPV, (v1^v2)&(v1^res)&0x80 != 0)
	c.setFlag(flagN, true)
	c.setFlag(flagC, result < 0)
}

// flagsLogic8 updates the flags after AND/OR/XOR. halfCarry is set for AND,
// clear otherwise.
func (c *Z80) flagsLogic8(result uint8, halfCarry bool) {
	c.setFlag(flagS, result&0x80 != 0)
	c.setFlag(flagZ, result == 0)
	c.setFlag(flagH, halfCarry)
	c.setFlag(flagPV, parity(result))
	c.setFlag(flagN, false)
	c.setFlag(flagC, false)
}

// flagsIncDec8 updates the flags after INC r or DEC r. The carry flag is
// preserved.
func (c *Z80) flagsIncDec8(v uint8, result uint8, inc bool) {
	c.setFlag(flagS, result&0x80 != 0)
	c.setFlag(flagZ, result == 0)
	if inc {
		c.setFlag(flagH, v&0x0f == 0x0f)
		c.setFlag(flagPV, v == 0x7f)
		c.setFlag(flagN, false)
	} else {
		c.setFlag(flagH, v&0x0f == 0x00)
		c.setFlag(flagPV, v == 0x80)
		c.setFlag(flagN, true)
	}
}

// flagsAdd16 updates the flags after a 16-bit add. S, Z and P/V are
// unaffected. The half carry is the carry out of bit 11.
func (c *Z80) flagsAdd16(v1 uint16, v2 uint16, result int) {
	c.setFlag(flagH, int(v1&0x0fff)+int(v2&0x0fff) > 0x0fff)
	c.setFlag(flagN, false)
	c.setFlag(flagC, result > 0xffff)
}

// rotateShift8 performs the CB-prefix rotate/shift selected by op (the bits
// 5-3 of the CB opcode) and updates the flags.
func (c *Z80) rotateShift8(v uint8, op uint8) uint8 {
	var res uint8
	var carry bool

	switch op {
	case 0b000: // RLC
		carry = v&0x80 != 0
		res = v<<1 | v>>7
	case 0b001: // RRC
		carry = v&0x01 != 0
		res = v>>1 | v<<7
	case 0b010: // RL
		carry = v&0x80 != 0
		res = v << 1
		if c.flag(flagC) {
			res |= 0x01
		}
	case 0b011: // RR
		carry = v&0x01 != 0
		res = v >> 1
		if c.flag(flagC) {
			res |= 0x80
		}
	case 0b100: // SLA
		carry = v&0x80 != 0
		res = v << 1
	case 0b101: // SRA
		carry = v&0x01 != 0
		res = v>>1 | v&0x80
	case 0b110: // SLL (undocumented. shifts in a one)
		carry = v&0x80 != 0
		res = v<<1 | 0x01
	case 0b111: // SRL
		carry = v&0x01 != 0
		res = v >> 1
	}

	c.setFlag(flagS, res&0x80 != 0)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagH, false)
	c.setFlag(flagPV, parity(res))
	c.setFlag(flagN, false)
	c.setFlag(flagC, carry)

	return res
}
