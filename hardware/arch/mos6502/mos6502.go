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

// Package mos6502 emulates the MOS 6502. All documented instructions are
// implemented, including decimal mode arithmetic, the page-wrap quirk of
// indirect JMP and the page-crossing cycle penalties.
package mos6502

import (
	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
)

// ArchID is the canonical name of the architecture.
const ArchID = "mos6502"

// Status register bit positions. Bit 5 is unused and always set; bit 4 (the
// break flag) exists only on the stack.
const (
	flagC = 0x01
	flagZ = 0x02
	flagI = 0x04
	flagD = 0x08
	flagB = 0x10
	flagR = 0x20
	flagV = 0x40
	flagN = 0x80
)

// MOS6502 is the MOS 6502 backend. SP is the 8-bit stack register; the
// stack lives in page one at $0100|SP.
type MOS6502 struct {
	mem *bus.Bus

	A  uint8
	X  uint8
	Y  uint8
	P  uint8
	SP uint8
	PC uint16
}

// NewMOS6502 is the preferred method of initialisation for the MOS6502 type.
func NewMOS6502(mem *bus.Bus) *MOS6502 {
	c := &MOS6502{mem: mem}
	c.Reset()
	return c
}

// ArchID implements the cpu.Backend interface.
func (c *MOS6502) ArchID() string {
	return ArchID
}

// Reset implements the cpu.Backend interface. The status register powers on
// with the unused bit and the interrupt disable bit set.
func (c *MOS6502) Reset() {
	c.A = 0
	c.X = 0
	c.Y = 0
	c.P = flagR | flagI
	c.SP = 0xfd
	c.PC = 0
}

// Suspended implements the cpu.Backend interface. The 6502 has no halt
// instruction.
func (c *MOS6502) Suspended() (*execution.Operation, bool) {
	return nil, false
}

// ProgramCounter implements the cpu.Backend interface.
func (c *MOS6502) ProgramCounter() uint16 {
	return c.PC
}

// SetProgramCounter implements the cpu.Backend interface.
func (c *MOS6502) SetProgramCounter(pc uint16) {
	c.PC = pc
}

// StackPointer implements the cpu.Backend interface. The value is the full
// page one address, not the raw 8-bit register.
func (c *MOS6502) StackPointer() uint16 {
	return 0x0100 | uint16(c.SP)
}

func (c *MOS6502) flag(mask uint8) bool {
	return c.P&mask != 0
}

func (c *MOS6502) setFlag(mask uint8, v bool) {
	if v {
		c.P |= mask
	} else {
		c.P &^= mask
	}
}

// setNZ updates the negative and zero flags from a result.
func (c *MOS6502) setNZ(v uint8) {
	c.setFlag(flagN, v&0x80 != 0)
	c.setFlag(flagZ, v == 0)
}

// push writes a byte to page one and decrements the stack register.
func (c *MOS6502) push(v uint8) error {
	err := c.mem.Write(0x0100|uint16(c.SP), v)
	c.SP--
	return err
}

// pull increments the stack register and reads a byte from page one.
func (c *MOS6502) pull() (uint8, error) {
	c.SP++
	return c.mem.Read(0x0100 | uint16(c.SP))
}

// RegisterMap implements the cpu.Backend interface. S is presented as the
// page one address.
func (c *MOS6502) RegisterMap() map[string]uint16 {
	return map[string]uint16{
		"A":  uint16(c.A),
		"X":  uint16(c.X),
		"Y":  uint16(c.Y),
		"P":  uint16(c.P),
		"S":  0x0100 | uint16(c.SP),
		"PC": c.PC,
	}
}

// RegisterLayout implements the cpu.Backend interface.
func (c *MOS6502) RegisterLayout() []cpu.RegisterGroup {
	return []cpu.RegisterGroup{
		{Label: "registers", Registers: []cpu.RegisterSpec{
			{Name: "A", Width: 8}, {Name: "X", Width: 8},
			{Name: "Y", Width: 8}, {Name: "P", Width: 8},
		}},
		{Label: "pointers", Registers: []cpu.RegisterSpec{
			{Name: "PC", Width: 16}, {Name: "S", Width: 16},
		}},
	}
}

// FlagMap implements the cpu.Backend interface.
func (c *MOS6502) FlagMap() map[string]bool {
	return map[string]bool{
		"N": c.flag(flagN),
		"V": c.flag(flagV),
		"B": c.flag(flagB),
		"D": c.flag(flagD),
		"I": c.flag(flagI),
		"Z": c.flag(flagZ),
		"C": c.flag(flagC),
	}
}

// ApplyState implements the cpu.Backend interface. S accepts either the raw
// 8-bit stack register value or the full page one address.
func (c *MOS6502) ApplyState(registers map[string]uint16) error {
	for name, value := range registers {
		switch name {
		case "A", "X", "Y", "P":
			if value > 0xff {
				return curated.Errorf(cpu.ValueOutOfRange, ArchID, value, name)
			}
			switch name {
			case "A":
				c.A = uint8(value)
			case "X":
				c.X = uint8(value)
			case "Y":
				c.Y = uint8(value)
			case "P":
				c.P = uint8(value) | flagR
			}
		case "S", "SP":
			if value > 0xff && value&0xff00 != 0x0100 {
				return curated.Errorf(cpu.ValueOutOfRange, ArchID, value, name)
			}
			c.SP = uint8(value)
		case "PC":
			c.PC = value
		default:
			return curated.Errorf(cpu.UnknownRegister, ArchID, name)
		}
	}
	return nil
}
