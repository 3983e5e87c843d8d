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

// addressing mode of an instruction. implied covers the accumulator forms
// of the shift instructions.
type addressingMode int

const (
	implied addressingMode = iota
	immediate
	zeroPage
	zeroPageX
	zeroPageY
	absolute
	absoluteX
	absoluteY
	indirect
	indexedIndirect // ($xx,X)
	indirectIndexed // ($xx),Y
	relative
)

type opcodeDef struct {
	mnemonic string
	mode     addressingMode

	// cycle count before any page-crossing or taken-branch penalty
	cycles int
}

// every documented opcode. undocumented opcodes decode to an error.
var opcodeTable = map[uint8]opcodeDef{
	// load/store/transfer
	0xa9: {"LDA", immediate, 2},
	0xa5: {"LDA", zeroPage, 3},
	0xb5: {"LDA", zeroPageX, 4},
	0xad: {"LDA", absolute, 4},
	0xbd: {"LDA", absoluteX, 4},
	0xb9: {"LDA", absoluteY, 4},
	0xa1: {"LDA", indexedIndirect, 6},
	0xb1: {"LDA", indirectIndexed, 5},

	0xa2: {"LDX", immediate, 2},
	0xa6: {"LDX", zeroPage, 3},
	0xb6: {"LDX", zeroPageY, 4},
	0xae: {"LDX", absolute, 4},
	0xbe: {"LDX", absoluteY, 4},

	0xa0: {"LDY", immediate, 2},
	0xa4: {"LDY", zeroPage, 3},
	0xb4: {"LDY", zeroPageX, 4},
	0xac: {"LDY", absolute, 4},
	0xbc: {"LDY", absoluteX, 4},

	0x85: {"STA", zeroPage, 3},
	0x95: {"STA", zeroPageX, 4},
	0x8d: {"STA", absolute, 4},
	0x9d: {"STA", absoluteX, 5},
	0x99: {"STA", absoluteY, 5},
	0x81: {"STA", indexedIndirect, 6},
	0x91: {"STA", indirectIndexed, 6},

	0x86: {"STX", zeroPage, 3},
	0x96: {"STX", zeroPageY, 4},
	0x8e: {"STX", absolute, 4},

	0x84: {"STY", zeroPage, 3},
	0x94: {"STY", zeroPageX, 4},
	0x8c: {"STY", absolute, 4},

	0xaa: {"TAX", implied, 2},
	0xa8: {"TAY", implied, 2},
	0x8a: {"TXA", implied, 2},
	0x98: {"TYA", implied, 2},
	0x9a: {"TXS", implied, 2},
	0xba: {"TSX", implied, 2},

	// arithmetic
	0x69: {"ADC", immediate, 2},
	0x65: {"ADC", zeroPage, 3},
	0x75: {"ADC", zeroPageX, 4},
	0x6d: {"ADC", absolute, 4},
	0x7d: {"ADC", absoluteX, 4},
	0x79: {"ADC", absoluteY, 4},
	0x61: {"ADC", indexedIndirect, 6},
	0x71: {"ADC", indirectIndexed, 5},

	0xe9: {"SBC", immediate, 2},
	0xe5: {"SBC", zeroPage, 3},
	0xf5: {"SBC", zeroPageX, 4},
	0xed: {"SBC", absolute, 4},
	0xfd: {"SBC", absoluteX, 4},
	0xf9: {"SBC", absoluteY, 4},
	0xe1: {"SBC", indexedIndirect, 6},
	0xf1: {"SBC", indirectIndexed, 5},

	0xc9: {"CMP", immediate, 2},
	0xc5: {"CMP", zeroPage, 3},
	0xd5: {"CMP", zeroPageX, 4},
	0xcd: {"CMP", absolute, 4},
	0xdd: {"CMP", absoluteX, 4},
	0xd9: {"CMP", absoluteY, 4},
	0xc1: {"CMP", indexedIndirect, 6},
	0xd1: {"CMP", indirectIndexed, 5},

	0xe0: {"CPX", immediate, 2},
	0xe4: {"CPX", zeroPage, 3},
	0xec: {"CPX", absolute, 4},

	0xc0: {"CPY", immediate, 2},
	0xc4: {"CPY", zeroPage, 3},
	0xcc: {"CPY", absolute, 4},

	// logic
	0x29: {"AND", immediate, 2},
	0x25: {"AND", zeroPage, 3},
	0x35: {"AND", zeroPageX, 4},
	0x2d: {"AND", absolute, 4},
	0x3d: {"AND", absoluteX, 4},
	0x39: {"AND", absoluteY, 4},
	0x21: {"AND", indexedIndirect, 6},
	0x31: {"AND", indirectIndexed, 5},

	0x09: {"ORA", immediate, 2},
	0x05: {"ORA", zeroPage, 3},
	0x15: {"ORA", zeroPageX, 4},
	0x0d: {"ORA", absolute, 4},
	0x1d: {"ORA", absoluteX, 4},
	0x19: {"ORA", absoluteY, 4},
	0x01: {"ORA", indexedIndirect, 6},
	0x11: {"ORA", indirectIndexed, 5},

	0x49: {"EOR", immediate, 2},
	0x45: {"EOR", zeroPage, 3},
	0x55: {"EOR", zeroPageX, 4},
	0x4d: {"EOR", absolute, 4},
	0x5d: {"EOR", absoluteX, 4},
	0x59: {"EOR", absoluteY, 4},
	0x41: {"EOR", indexedIndirect, 6},
	0x51: {"EOR", indirectIndexed, 5},

	0x24: {"BIT", zeroPage, 3},
	0x2c: {"BIT", absolute, 4},

	// shift/rotate
	0x0a: {"ASL", implied, 2},
	0x06: {"ASL", zeroPage, 5},
	0x16: {"ASL", zeroPageX, 6},
	0x0e: {"ASL", absolute, 6},
	0x1e: {"ASL", absoluteX, 7},

	0x4a: {"LSR", implied, 2},
	0x46: {"LSR", zeroPage, 5},
	0x56: {"LSR", zeroPageX, 6},
	0x4e: {"LSR", absolute, 6},
	0x5e: {"LSR", absoluteX, 7},

	0x2a: {"ROL", implied, 2},
	0x26: {"ROL", zeroPage, 5},
	0x36: {"ROL", zeroPageX, 6},
	0x2e: {"ROL", absolute, 6},
	0x3e: {"ROL", absoluteX, 7},

	0x6a: {"ROR", implied, 2},
	0x66: {"ROR", zeroPage, 5},
	0x76: {"ROR", zeroPageX, 6},
	0x6e: {"ROR", absolute, 6},
	0x7e: {"ROR", absoluteX, 7},

	// increment/decrement
	0xe6: {"INC", zeroPage, 5},
	0xf6: {"INC", zeroPageX, 6},
	0xee: {"INC", absolute, 6},
	0xfe: {"INC", absoluteX, 7},

	0xc6: {"DEC", zeroPage, 5},
	0xd6: {"DEC", zeroPageX, 6},
	0xce: {"DEC", absolute, 6},
	0xde: {"DEC", absoluteX, 7},

	0xe8: {"INX", implied, 2},
	0xca: {"DEX", implied, 2},
	0xc8: {"INY", implied, 2},
	0x88: {"DEY", implied, 2},

	// branches. +1 cycle when taken, +2 when the branch crosses a page
	0x90: {"BCC", relative, 2},
	0xb0: {"BCS", relative, 2},
	0xf0: {"BEQ", relative, 2},
	0xd0: {"BNE", relative, 2},
	0x30: {"BMI", relative, 2},
	0x10: {"BPL", relative, 2},
	0x50: {"BVC", relative, 2},
	0x70: {"BVS", relative, 2},

	// jump/subroutine
	0x4c: {"JMP", absolute, 3},
	0x6c: {"JMP", indirect, 5},
	0x20: {"JSR", absolute, 6},
	0x60: {"RTS", implied, 6},

	// stack
	0x48: {"PHA", implied, 3},
	0x08: {"PHP", implied, 3},
	0x68: {"PLA", implied, 4},
	0x28: {"PLP", implied, 4},

	// flags
	0x18: {"CLC", implied, 2},
	0x38: {"SEC", implied, 2},
	0x58: {"CLI", implied, 2},
	0x78: {"SEI", implied, 2},
	0xb8: {"CLV", implied, 2},
	0xd8: {"CLD", implied, 2},
	0xf8: {"SED", implied, 2},

	// system
	0xea: {"NOP", implied, 2},
	0x00: {"BRK", implied, 7},
	0x40: {"RTI", implied, 6},
}
