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

// Package z80 emulates the Zilog Z80. Coverage extends over the load,
// exchange, 8-bit and 16-bit arithmetic, rotate/shift, bit manipulation,
// jump, call and I/O groups, including the CB, ED and DD/FD prefixes.
package z80

import (
	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
)

// ArchID is the canonical name of the architecture.
const ArchID = "z80"

// Z80 is the Zilog Z80 backend.
type Z80 struct {
	mem *bus.Bus

	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8

	// the alternate register set. reachable only through EX AF,AF' and EXX
	A2, F2 uint8
	B2, C2 uint8
	D2, E2 uint8
	H2, L2 uint8

	IX uint16
	IY uint16

	// interrupt vector and memory refresh
	I uint8
	R uint8

	SP uint16
	PC uint16

	IFF1 bool
	IFF2 bool
	IM   int

	// set by HALT. cleared only by Reset()
	Halted bool
}

// NewZ80 is the preferred method of initialisation for the Z80 type.
func NewZ80(mem *bus.Bus) *Z80 {
	c := &Z80{mem: mem}
	c.Reset()
	return c
}

// ArchID implements the cpu.Backend interface.
func (c *Z80) ArchID() string {
	return ArchID
}

// Reset implements the cpu.Backend interface.
func (c *Z80) Reset() {
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = 0, 0, 0, 0, 0, 0, 0, 0
	c.A2, c.F2, c.B2, c.C2, c.D2, c.E2, c.H2, c.L2 = 0, 0, 0, 0, 0, 0, 0, 0
	c.IX = 0
	c.IY = 0
	c.I = 0
	c.R = 0
	c.SP = 0
	c.PC = 0
	c.IFF1 = false
	c.IFF2 = false
	c.IM = 0
	c.Halted = false
}

// Suspended implements the cpu.Backend interface. The Z80 suspends after
// HALT: it stops fetching and burns four cycles per step until reset.
func (c *Z80) Suspended() (*execution.Operation, bool) {
	if !c.Halted {
		return nil, false
	}
	return &execution.Operation{
		OpCode:   []uint8{0x76},
		Mnemonic: "HALT",
		Length:   0,
		Cycles:   4,
	}, true
}

// ProgramCounter implements the cpu.Backend interface.
func (c *Z80) ProgramCounter() uint16 {
	return c.PC
}

// SetProgramCounter implements the cpu.Backend interface.
func (c *Z80) SetProgramCounter(pc uint16) {
	c.PC = pc
}

// StackPointer implements the cpu.Backend interface.
func (c *Z80) StackPointer() uint16 {
	return c.SP
}

// register pair accessors

func (c *Z80) af() uint16 { return uint16(c.A)<<8 | uint16(c.F) }
func (c *Z80) bc() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *Z80) de() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *Z80) hl() uint16 { return uint16(c.H)<<8 | uint16(c.L) }

func (c *Z80) setAF(v uint16) { c.A = uint8(v >> 8); c.F = uint8(v) }
func (c *Z80) setBC(v uint16) { c.B = uint8(v >> 8); c.C = uint8(v) }
func (c *Z80) setDE(v uint16) { c.D = uint8(v >> 8); c.E = uint8(v) }
func (c *Z80) setHL(v uint16) { c.H = uint8(v >> 8); c.L = uint8(v) }

// pair reads/writes the 16-bit register pair selected by an ss field
// (00=BC 01=DE 10=HL 11=SP).
func (c *Z80) pair(ss uint8) uint16 {
	switch ss & 0b11 {
	case 0b00:
		return c.bc()
	case 0b01:
		return c.de()
	case 0b10:
		return c.hl()
	}
	return c.SP
}

func (c *Z80) setPair(ss uint8, v uint16) {
	switch ss & 0b11 {
	case 0b00:
		c.setBC(v)
	case 0b01:
		c.setDE(v)
	case 0b10:
		c.setHL(v)
	default:
		c.SP = v
	}
}

// register names as encoded in the r fields of an opcode. code 0b110 is the
// (HL) pseudo-register.
var reg8Names = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

var pairNames = [4]string{"BC", "DE", "HL", "SP"}
var pushPairNames = [4]string{"BC", "DE", "HL", "AF"}

// reg8 reads the 8-bit register selected by an r field. code 0b110 reads
// memory at HL through the logging path.
func (c *Z80) reg8(code uint8) (uint8, error) {
	switch code & 0b111 {
	case 0b000:
		return c.B, nil
	case 0b001:
		return c.C, nil
	case 0b010:
		return c.D, nil
	case 0b011:
		return c.E, nil
	case 0b100:
		return c.H, nil
	case 0b101:
		return c.L, nil
	case 0b110:
		return c.mem.Read(c.hl())
	}
	return c.A, nil
}

func (c *Z80) setReg8(code uint8, v uint8) error {
	switch code & 0b111 {
	case 0b000:
		c.B = v
	case 0b001:
		c.C = v
	case 0b010:
		c.D = v
	case 0b011:
		c.E = v
	case 0b100:
		c.H = v
	case 0b101:
		c.L = v
	case 0b110:
		return c.mem.Write(c.hl(), v)
	default:
		c.A = v
	}
	return nil
}

// RegisterMap implements the cpu.Backend interface.
func (c *Z80) RegisterMap() map[string]uint16 {
	return map[string]uint16{
		"A": uint16(c.A), "F": uint16(c.F),
		"B": uint16(c.B), "C": uint16(c.C),
		"D": uint16(c.D), "E": uint16(c.E),
		"H": uint16(c.H), "L": uint16(c.L),
		"A'": uint16(c.A2), "F'": uint16(c.F2),
		"B'": uint16(c.B2), "C'": uint16(c.C2),
		"D'": uint16(c.D2), "E'": uint16(c.E2),
		"H'": uint16(c.H2), "L'": uint16(c.L2),
		"IX": c.IX, "IY": c.IY,
		"I": uint16(c.I), "R": uint16(c.R),
		"SP": c.SP, "PC": c.PC,
	}
}

// RegisterLayout implements the cpu.Backend interface.
func (c *Z80) RegisterLayout() []cpu.RegisterGroup {
	return []cpu.RegisterGroup{
		{Label: "main", Registers: []cpu.RegisterSpec{
			{Name: "A", Width: 8}, {Name: "F", Width: 8},
			{Name: "B", Width: 8}, {Name: "C", Width: 8},
			{Name: "D", Width: 8}, {Name: "E", Width: 8},
			{Name: "H", Width: 8}, {Name: "L", Width: 8},
		}},
		{Label: "alternate", Registers: []cpu.RegisterSpec{
			{Name: "A'", Width: 8}, {Name: "F'", Width: 8},
			{Name: "B'", Width: 8}, {Name: "C'", Width: 8},
			{Name: "D'", Width: 8}, {Name: "E'", Width: 8},
			{Name: "H'", Width: 8}, {Name: "L'", Width: 8},
		}},
		{Label: "index", Registers: []cpu.RegisterSpec{
			{Name: "IX", Width: 16}, {Name: "IY", Width: 16},
		}},
		{Label: "special", Registers: []cpu.RegisterSpec{
			{Name: "I", Width: 8}, {Name: "R", Width: 8},
			{Name: "SP", Width: 16}, {Name: "PC", Width: 16},
		}},
	}
}

// FlagMap implements the cpu.Backend interface.
func (c *Z80) FlagMap() map[string]bool {
	return map[string]bool{
		"S":  c.flag(flagS),
		"Z":  c.flag(flagZ),
		"H":  c.flag(flagH),
		"PV": c.flag(flagPV),
		"N":  c.flag(flagN),
		"C":  c.flag(flagC),
	}
}

// ApplyState implements the cpu.Backend interface.
func (c *Z80) ApplyState(registers map[string]uint16) error {
	byte8 := map[string]*uint8{
		"A": &c.A, "F": &c.F, "B": &c.B, "C": &c.C,
		"D": &c.D, "E": &c.E, "H": &c.H, "L": &c.L,
		"A'": &c.A2, "F'": &c.F2, "B'": &c.B2, "C'": &c.C2,
		"D'": &c.D2, "E'": &c.E2, "H'": &c.H2, "L'": &c.L2,
		"I": &c.I, "R": &c.R,
	}
	wide := map[string]*uint16{
		"IX": &c.IX, "IY": &c.IY, "SP": &c.SP, "PC": &c.PC,
	}

	for name, value := range registers {
		if p, ok := byte8[name]; ok {
			if value > 0xff {
				return curated.Errorf(cpu.ValueOutOfRange, ArchID, value, name)
			}
			*p = uint8(value)
			continue
		}
		if p, ok := wide[name]; ok {
			*p = value
			continue
		}
		return curated.Errorf(cpu.UnknownRegister, ArchID, name)
	}

	return nil
}
