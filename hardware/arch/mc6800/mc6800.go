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

// Package mc6800 emulates the Motorola MC6800. A representative subset of
// the instruction set is implemented: the accumulator load/store group, the
// immediate arithmetic group, stack pushes and pulls, and branch and
// subroutine control flow.
//
// The MC6800 is big-endian and its stack conventions differ from the other
// implemented processors: a push writes before decrementing the stack
// pointer, and JSR pushes the low byte of the return address first.
package mc6800

import (
	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
)

// ArchID is the canonical name of the architecture.
const ArchID = "mc6800"

// Condition code bit positions. Bits 7 and 6 do not exist in silicon and
// always read as set.
const (
	flagH = 0b00100000
	flagI = 0b00010000
	flagN = 0b00001000
	flagZ = 0b00000100
	flagV = 0b00000010
	flagC = 0b00000001

	ccFixed = 0b11000000
)

// MC6800 is the Motorola MC6800 backend.
type MC6800 struct {
	mem *bus.Bus

	A  uint8
	B  uint8
	X  uint16
	CC uint8
	SP uint16
	PC uint16
}

// NewMC6800 is the preferred method of initialisation for the MC6800 type.
func NewMC6800(mem *bus.Bus) *MC6800 {
	c := &MC6800{mem: mem}
	c.Reset()
	return c
}

// ArchID implements the cpu.Backend interface.
func (c *MC6800) ArchID() string {
	return ArchID
}

// Reset implements the cpu.Backend interface.
func (c *MC6800) Reset() {
	c.A = 0
	c.B = 0
	c.X = 0
	c.CC = ccFixed
	c.SP = 0
	c.PC = 0
}

// Suspended implements the cpu.Backend interface. The implemented subset
// has no halt instruction.
func (c *MC6800) Suspended() (*execution.Operation, bool) {
	return nil, false
}

// ProgramCounter implements the cpu.Backend interface.
func (c *MC6800) ProgramCounter() uint16 {
	return c.PC
}

// SetProgramCounter implements the cpu.Backend interface.
func (c *MC6800) SetProgramCounter(pc uint16) {
	c.PC = pc
}

// StackPointer implements the cpu.Backend interface.
func (c *MC6800) StackPointer() uint16 {
	return c.SP
}

func (c *MC6800) flag(mask uint8) bool {
	return c.CC&mask != 0
}

func (c *MC6800) setFlag(mask uint8, v bool) {
	if v {
		c.CC |= mask
	} else {
		c.CC &^= mask
	}
	c.CC |= ccFixed
}

// flagsLogic8 updates N, Z and V after a load, store or logic operation.
func (c *MC6800) flagsLogic8(result uint8) {
	c.setFlag(flagN, result&0x80 != 0)
	c.setFlag(flagZ, result == 0)
	c.setFlag(flagV, false)
}

// flagsAdd8 updates N, Z, V, C and H after an 8-bit add. result is the
// unclamped sum.
func (c *MC6800) flagsAdd8(v1 uint8, v2 uint8, result int) {
	res := uint8(result)
	c.setFlag(flagN, res&0x80 != 0)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagV, (v1^res)&(v2^res)&0x80 != 0)
	c.setFlag(flagC, result > 0xff)
	c.setFlag(flagH, (v1^v2^res)&0x10 != 0)
}

// flagsSub8 updates N, Z, V and C after an 8-bit subtract or compare. The
// half carry is unaffected.
func (c *MC6800) flagsSub8(v1 uint8, v2 uint8, result int) {
	res := uint8(result)
	c.setFlag(flagN, res&0x80 != 0)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagV, (v1^v2)&(v1^res)&0x80 != 0)
	c.setFlag(flagC, v1 < v2)
}

// RegisterMap implements the cpu.Backend interface.
func (c *MC6800) RegisterMap() map[string]uint16 {
	return map[string]uint16{
		"A":  uint16(c.A),
		"B":  uint16(c.B),
		"X":  c.X,
		"CC": uint16(c.CC),
		"SP": c.SP,
		"PC": c.PC,
	}
}

// RegisterLayout implements the cpu.Backend interface.
func (c *MC6800) RegisterLayout() []cpu.RegisterGroup {
	return []cpu.RegisterGroup{
		{Label: "accumulators", Registers: []cpu.RegisterSpec{
			{Name: "A", Width: 8}, {Name: "B", Width: 8},
		}},
		{Label: "pointers", Registers: []cpu.RegisterSpec{
			{Name: "X", Width: 16}, {Name: "SP", Width: 16}, {Name: "PC", Width: 16},
		}},
		{Label: "condition codes", Registers: []cpu.RegisterSpec{
			{Name: "CC", Width: 8},
		}},
	}
}

// FlagMap implements the cpu.Backend interface.
func (c *MC6800) FlagMap() map[string]bool {
	return map[string]bool{
		"H": c.flag(flagH),
		"I": c.flag(flagI),
		"N": c.flag(flagN),
		"Z": c.flag(flagZ),
		"V": c.flag(flagV),
		"C": c.flag(flagC),
	}
}

// ApplyState implements the cpu.Backend interface.
func (c *MC6800) ApplyState(registers map[string]uint16) error {
	for name, value := range registers {
		switch name {
		case "A", "B", "CC":
			if value > 0xff {
				return curated.Errorf(cpu.ValueOutOfRange, ArchID, value, name)
			}
			switch name {
			case "A":
				c.A = uint8(value)
			case "B":
				c.B = uint8(value)
			case "CC":
				c.CC = uint8(value) | ccFixed
			}
		case "X":
			c.X = value
		case "SP":
			c.SP = value
		case "PC":
			c.PC = value
		default:
			return curated.Errorf(cpu.UnknownRegister, ArchID, name)
		}
	}
	return nil
}
