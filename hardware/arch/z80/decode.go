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
	"fmt"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
)

func hex8(v uint8) string   { return fmt.Sprintf("$%02X", v) }
func hex16(v uint16) string { return fmt.Sprintf("$%04X", v) }

// relative converts an offset byte to the signed displacement used by JR and
// DJNZ.
func relative(v uint8) int {
	if v >= 0x80 {
		return int(v) - 256
	}
	return int(v)
}

// Decode implements the cpu.Backend interface. Addressing is fully resolved
// here: the returned Operation carries the effective address of any memory
// operand and of any branch target, so that Execute() never touches memory
// at a stale program counter.
func (c *Z80) Decode(r bus.Reader, opcode uint8, pc uint16) (*execution.Operation, error) {
	op := &execution.Operation{
		OpCode: []uint8{opcode},
	}

	// single byte instructions with no operand field
	switch opcode {
	case 0x00:
		op.Mnemonic = "NOP"
		op.Length = 1
		op.Cycles = 4
		return op, nil
	case 0x08:
		op.Mnemonic = "EX"
		op.Operands = []string{"AF", "AF'"}
		op.Length = 1
		op.Cycles = 4
		return op, nil
	case 0x76:
		op.Mnemonic = "HALT"
		op.Length = 1
		op.Cycles = 4
		return op, nil
	case 0xc9:
		op.Mnemonic = "RET"
		op.Length = 1
		op.Cycles = 10
		return op, nil
	case 0xd9:
		op.Mnemonic = "EXX"
		op.Length = 1
		op.Cycles = 4
		return op, nil
	case 0xe3:
		op.Mnemonic = "EX"
		op.Operands = []string{"(SP)", "HL"}
		op.Length = 1
		op.Cycles = 19
		op.EffectiveAddress = c.SP
		op.EffectiveAddressValid = true
		return op, nil
	case 0xeb:
		op.Mnemonic = "EX"
		op.Operands = []string{"DE", "HL"}
		op.Length = 1
		op.Cycles = 4
		return op, nil
	case 0xf3:
		op.Mnemonic = "DI"
		op.Length = 1
		op.Cycles = 4
		return op, nil
	case 0xfb:
		op.Mnemonic = "EI"
		op.Length = 1
		op.Cycles = 4
		return op, nil
	}

	// instructions with immediate or displacement operands
	switch opcode {
	case 0x10, 0x18, 0x20, 0x28, 0x30, 0x38: // DJNZ e and the JR group
		e, err := r.Read(pc + 1)
		if err != nil {
			return nil, err
		}
		target := uint16(int(pc) + 2 + relative(e))
		op.OperandBytes = []uint8{e}
		op.Length = 2
		op.EffectiveAddress = target
		op.EffectiveAddressValid = true

		switch opcode {
		case 0x10:
			op.Mnemonic = "DJNZ"
			op.Operands = []string{hex16(target)}
			op.Cycles = 8 // 13 when the loop is taken
		case 0x18:
			op.Mnemonic = "JR"
			op.Operands = []string{hex16(target)}
			op.Cycles = 12
		default:
			cc := [4]string{"NZ", "Z", "NC", "C"}[(opcode>>3)&0b11]
			op.Mnemonic = "JR"
			op.Operands = []string{cc, hex16(target)}
			op.Cycles = 7 // 12 when the branch is taken
		}
		return op, nil

	case 0x32, 0x3a: // LD (nn),A and LD A,(nn)
		nn, lo, hi, err := c.readAddress(r, pc+1)
		if err != nil {
			return nil, err
		}
		op.Mnemonic = "LD"
		if opcode == 0x3a {
			op.Operands = []string{"A", "(" + hex16(nn) + ")"}
		} else {
			op.Operands = []string{"(" + hex16(nn) + ")", "A"}
		}
		op.OperandBytes = []uint8{lo, hi}
		op.Length = 3
		op.Cycles = 13
		op.EffectiveAddress = nn
		op.EffectiveAddressValid = true
		return op, nil

	case 0xc3, 0xcd: // JP nn and CALL nn
		nn, lo, hi, err := c.readAddress(r, pc+1)
		if err != nil {
			return nil, err
		}
		if opcode == 0xc3 {
			op.Mnemonic = "JP"
			op.Cycles = 10
		} else {
			op.Mnemonic = "CALL"
			op.Cycles = 17
		}
		op.Operands = []string{hex16(nn)}
		op.OperandBytes = []uint8{lo, hi}
		op.Length = 3
		op.EffectiveAddress = nn
		op.EffectiveAddressValid = true
		return op, nil

	case 0xd3, 0xdb: // OUT (n),A and IN A,(n)
		n, err := r.Read(pc + 1)
		if err != nil {
			return nil, err
		}
		if opcode == 0xdb {
			op.Mnemonic = "IN"
			op.Operands = []string{"A", "(" + hex8(n) + ")"}
		} else {
			op.Mnemonic = "OUT"
			op.Operands = []string{"(" + hex8(n) + ")", "A"}
		}
		op.OperandBytes = []uint8{n}
		op.Length = 2
		op.Cycles = 11
		return op, nil

	case 0xfe: // CP n
		n, err := r.Read(pc + 1)
		if err != nil {
			return nil, err
		}
		op.Mnemonic = "CP"
		op.Operands = []string{hex8(n)}
		op.OperandBytes = []uint8{n}
		op.Length = 2
		op.Cycles = 7
		return op, nil

	case 0xcb:
		return c.decodeCB(r, pc)
	case 0xed:
		return c.decodeED(r, pc)
	case 0xdd, 0xfd:
		return c.decodeIndex(r, opcode, pc)
	}

	// pattern groups
	switch {
	case opcode < 0x40 && opcode&0xcf == 0x01: // LD ss,nn
		nn, lo, hi, err := c.readAddress(r, pc+1)
		if err != nil {
			return nil, err
		}
		op.Mnemonic = "LD"
		op.Operands = []string{pairNames[(opcode>>4)&0b11], hex16(nn)}
		op.OperandBytes = []uint8{lo, hi}
		op.Length = 3
		op.Cycles = 10
		return op, nil

	case opcode < 0x40 && opcode&0xcf == 0x09: // ADD HL,ss
		op.Mnemonic = "ADD"
		op.Operands = []string{"HL", pairNames[(opcode>>4)&0b11]}
		op.Length = 1
		op.Cycles = 11
		return op, nil

	case opcode < 0x40 && opcode&0xc7 == 0x06: // LD r,n
		n, err := r.Read(pc + 1)
		if err != nil {
			return nil, err
		}
		reg := reg8Names[(opcode>>3)&0b111]
		op.Mnemonic = "LD"
		op.Operands = []string{reg, hex8(n)}
		op.OperandBytes = []uint8{n}
		op.Length = 2
		op.Cycles = 7
		if reg == "(HL)" {
			op.Cycles = 10
			op.EffectiveAddress = c.hl()
			op.EffectiveAddressValid = true
		}
		return op, nil

	case opcode < 0x40 && (opcode&0xc7 == 0x04 || opcode&0xc7 == 0x05): // INC r and DEC r
		reg := reg8Names[(opcode>>3)&0b111]
		if opcode&1 == 0 {
			op.Mnemonic = "INC"
		} else {
			op.Mnemonic = "DEC"
		}
		op.Operands = []string{reg}
		op.Length = 1
		op.Cycles = 4
		if reg == "(HL)" {
			op.Cycles = 11
			op.EffectiveAddress = c.hl()
			op.EffectiveAddressValid = true
		}
		return op, nil

	case opcode >= 0x40 && opcode < 0x80: // LD r,r'
		dest := reg8Names[(opcode>>3)&0b111]
		src := reg8Names[opcode&0b111]
		op.Mnemonic = "LD"
		op.Operands = []string{dest, src}
		op.Length = 1
		op.Cycles = 4
		if dest == "(HL)" || src == "(HL)" {
			op.Cycles = 7
			op.EffectiveAddress = c.hl()
			op.EffectiveAddressValid = true
		}
		return op, nil

	case opcode >= 0x80 && opcode < 0xc0: // the arithmetic/logic group
		src := reg8Names[opcode&0b111]
		switch (opcode >> 3) & 0b111 {
		case 0b000:
			op.Mnemonic = "ADD"
			op.Operands = []string{"A", src}
		case 0b001:
			op.Mnemonic = "ADC"
			op.Operands = []string{"A", src}
		case 0b010:
			op.Mnemonic = "SUB"
			op.Operands = []string{src}
		case 0b011:
			op.Mnemonic = "SBC"
			op.Operands = []string{"A", src}
		case 0b100:
			op.Mnemonic = "AND"
			op.Operands = []string{src}
		case 0b101:
			op.Mnemonic = "XOR"
			op.Operands = []string{src}
		case 0b110:
			op.Mnemonic = "OR"
			op.Operands = []string{src}
		case 0b111:
			op.Mnemonic = "CP"
			op.Operands = []string{src}
		}
		op.Length = 1
		op.Cycles = 4
		if src == "(HL)" {
			op.Cycles = 7
			op.EffectiveAddress = c.hl()
			op.EffectiveAddressValid = true
		}
		return op, nil

	case opcode&0xcf == 0xc5: // PUSH qq
		op.Mnemonic = "PUSH"
		op.Operands = []string{pushPairNames[(opcode>>4)&0b11]}
		op.Length = 1
		op.Cycles = 11
		return op, nil

	case opcode&0xcf == 0xc1: // POP qq
		op.Mnemonic = "POP"
		op.Operands = []string{pushPairNames[(opcode>>4)&0b11]}
		op.Length = 1
		op.Cycles = 10
		return op, nil
	}

	return nil, curated.Errorf(cpu.UnsupportedOpcode, ArchID, opcode, pc)
}

// readAddress reads a little-endian 16-bit value.
func (c *Z80) readAddress(r bus.Reader, addr uint16) (uint16, uint8, uint8, error) {
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

// decodeCB decodes the bit manipulation and rotate/shift group.
func (c *Z80) decodeCB(r bus.Reader, pc uint16) (*execution.Operation, error) {
	cb, err := r.Read(pc + 1)
	if err != nil {
		return nil, err
	}

	reg := reg8Names[cb&0b111]
	bit := (cb >> 3) & 0b111

	op := &execution.Operation{
		OpCode:       []uint8{0xcb, cb},
		Length:       2,
		OperandBytes: []uint8{},
	}

	switch (cb >> 6) & 0b11 {
	case 0b01:
		op.Mnemonic = "BIT"
		op.Operands = []string{fmt.Sprintf("%d", bit), reg}
		op.Cycles = 8
		if reg == "(HL)" {
			op.Cycles = 12
		}
	case 0b10:
		op.Mnemonic = "RES"
		op.Operands = []string{fmt.Sprintf("%d", bit), reg}
		op.Cycles = 8
		if reg == "(HL)" {
			op.Cycles = 15
		}
	case 0b11:
		op.Mnemonic = "SET"
		op.Operands = []string{fmt.Sprintf("%d", bit), reg}
		op.Cycles = 8
		if reg == "(HL)" {
			op.Cycles = 15
		}
	default:
		op.Mnemonic = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}[bit]
		op.Operands = []string{reg}
		op.Cycles = 8
		if reg == "(HL)" {
			op.Cycles = 15
		}
	}

	if reg == "(HL)" {
		op.EffectiveAddress = c.hl()
		op.EffectiveAddressValid = true
	}

	return op, nil
}

// decodeED decodes the extended group: block transfer, interrupt mode and
// interrupt return instructions.
func (c *Z80) decodeED(r bus.Reader, pc uint16) (*execution.Operation, error) {
	ed, err := r.Read(pc + 1)
	if err != nil {
		return nil, err
	}

	op := &execution.Operation{
		OpCode: []uint8{0xed, ed},
		Length: 2,
	}

	switch ed {
	case 0xa0:
		op.Mnemonic = "LDI"
		op.Cycles = 16
	case 0xa8:
		op.Mnemonic = "LDD"
		op.Cycles = 16
	case 0xb0:
		op.Mnemonic = "LDIR"
		op.Cycles = 21 // 16 on the final iteration
	case 0xb8:
		op.Mnemonic = "LDDR"
		op.Cycles = 21
	case 0x46:
		op.Mnemonic = "IM"
		op.Operands = []string{"0"}
		op.Cycles = 8
	case 0x56:
		op.Mnemonic = "IM"
		op.Operands = []string{"1"}
		op.Cycles = 8
	case 0x5e:
		op.Mnemonic = "IM"
		op.Operands = []string{"2"}
		op.Cycles = 8
	case 0x4d:
		op.Mnemonic = "RETI"
		op.Cycles = 14
	case 0x45:
		op.Mnemonic = "RETN"
		op.Cycles = 14
	default:
		return nil, curated.Errorf(cpu.UnsupportedOpcode, ArchID, ed, pc)
	}

	return op, nil
}

// decodeIndex decodes the DD and FD prefixed instructions. Only the IX/IY
// forms that exist on hardware are recognised; anything else is an
// unsupported opcode rather than a silent fallback to the unprefixed
// instruction.
func (c *Z80) decodeIndex(r bus.Reader, prefix uint8, pc uint16) (*execution.Operation, error) {
	sub, err := r.Read(pc + 1)
	if err != nil {
		return nil, err
	}

	idx := "IX"
	idxVal := c.IX
	if prefix == 0xfd {
		idx = "IY"
		idxVal = c.IY
	}

	op := &execution.Operation{
		OpCode: []uint8{prefix, sub},
	}

	switch {
	case sub == 0x21: // LD IX,nn
		nn, lo, hi, err := c.readAddress(r, pc+2)
		if err != nil {
			return nil, err
		}
		op.Mnemonic = "LD"
		op.Operands = []string{idx, hex16(nn)}
		op.OperandBytes = []uint8{lo, hi}
		op.Length = 4
		op.Cycles = 14
		return op, nil

	case sub == 0x23: // INC IX
		op.Mnemonic = "INC"
		op.Operands = []string{idx}
		op.Length = 2
		op.Cycles = 10
		return op, nil

	case sub == 0xe3: // EX (SP),IX
		op.Mnemonic = "EX"
		op.Operands = []string{"(SP)", idx}
		op.Length = 2
		op.Cycles = 23
		op.EffectiveAddress = c.SP
		op.EffectiveAddressValid = true
		return op, nil

	case sub&0xcf == 0x09: // ADD IX,ss
		ss := pairNames[(sub>>4)&0b11]
		if ss == "HL" {
			ss = idx
		}
		op.Mnemonic = "ADD"
		op.Operands = []string{idx, ss}
		op.Length = 2
		op.Cycles = 15
		return op, nil

	case sub&0xc7 == 0x46 && sub != 0x76: // LD r,(IX+d)
		d, err := r.Read(pc + 2)
		if err != nil {
			return nil, err
		}
		dest := reg8Names[(sub>>3)&0b111]
		op.Mnemonic = "LD"
		op.Operands = []string{dest, indexOperand(idx, d)}
		op.OperandBytes = []uint8{d}
		op.Length = 3
		op.Cycles = 19
		op.EffectiveAddress = uint16(int(idxVal) + relative(d))
		op.EffectiveAddressValid = true
		return op, nil

	case sub&0xf8 == 0x70 && sub != 0x76: // LD (IX+d),r
		d, err := r.Read(pc + 2)
		if err != nil {
			return nil, err
		}
		src := reg8Names[sub&0b111]
		op.Mnemonic = "LD"
		op.Operands = []string{indexOperand(idx, d), src}
		op.OperandBytes = []uint8{d}
		op.Length = 3
		op.Cycles = 19
		op.EffectiveAddress = uint16(int(idxVal) + relative(d))
		op.EffectiveAddressValid = true
		return op, nil
	}

	return nil, curated.Errorf(cpu.UnsupportedOpcode, ArchID, sub, pc)
}

// indexOperand formats an (IX+d) operand, folding the sign of the
// displacement into the text.
func indexOperand(idx string, d uint8) string {
	e := relative(d)
	if e < 0 {
		return fmt.Sprintf("(%s-$%02X)", idx, -e)
	}
	return fmt.Sprintf("(%s+$%02X)", idx, e)
}
