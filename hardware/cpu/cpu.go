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

// Package cpu defines the Backend interface implemented by every emulated
// architecture, and the Engine that drives a backend through the common
// fetch/decode/execute step sequence.
package cpu

import (
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/execution"
)

// Error patterns raised by architecture backends. The arguments to
// UnsupportedOpcode are the architecture name, the opcode byte(s) and the
// fetch address.
const (
	UnsupportedOpcode = "%s: unsupported opcode %#04x at address %#06x"
	UnknownRegister   = "%s: no register named %s"
	ValueOutOfRange   = "%s: value %#06x does not fit register %s"
)

// RegisterSpec describes one register in a backend's layout.
type RegisterSpec struct {
	Name string

	// width in bits. 8 or 16
	Width int
}

// RegisterGroup is a named group of registers, for display purposes. A
// backend presents its registers in the order a programmer's reference
// manual would.
type RegisterGroup struct {
	Label     string
	Registers []RegisterSpec
}

// Backend is the interface implemented by every emulated architecture. The
// backend owns all register and flag state; memory belongs to the bus.
//
// Decode() reads the instruction's remaining bytes through the supplied
// reader and resolves addressing completely, recording the effective address
// in the returned Operation. Execute() then performs the instruction without
// re-reading any operand bytes. Execute() may amend the Operation's cycle
// count when the cost depends on the outcome (taken branches, crossed
// pages).
//
// The same Decode() function serves the execution engine and the
// disassembler. The engine passes the bus's logging read path; the
// disassembler passes a silent peek path.
type Backend interface {
	// ArchID returns the canonical architecture name: "z80", "mos6502" or
	// "mc6800"
	ArchID() string

	// Reset registers and flags to the architecture's documented power-on
	// values
	Reset()

	Decode(r bus.Reader, opcode uint8, pc uint16) (*execution.Operation, error)
	Execute(op *execution.Operation) error

	// Suspended reports whether the processor has stopped fetching
	// instructions (eg. the Z80 after HALT). The returned Operation is the
	// pseudo-operation a step should record while suspension lasts
	Suspended() (*execution.Operation, bool)

	ProgramCounter() uint16
	SetProgramCounter(pc uint16)
	StackPointer() uint16

	// RegisterMap returns a copy of all program-visible register state,
	// including the program counter and stack pointer, keyed by canonical
	// register name. 8-bit registers are widened
	RegisterMap() map[string]uint16

	// RegisterLayout describes the registers in presentation order
	RegisterLayout() []RegisterGroup

	// FlagMap returns a copy of the status flags by canonical name
	FlagMap() map[string]bool

	// ApplyState assigns the named registers. Values too wide for the
	// target register or names unknown to the architecture are an error,
	// applied partially up to the failing entry
	ApplyState(registers map[string]uint16) error
}
