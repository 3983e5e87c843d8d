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

// Package execution tracks the result of instruction execution. The Operation
// type describes a single decoded instruction and the Snapshot type is the
// complete record of one step of the emulated machine.
package execution

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tracer8/tracer8/hardware/bus"
)

// Operation is a fully decoded instruction. It is assembled by an
// architecture backend's Decode() function and may be amended by Execute()
// (eg. the cycle count of a branch depends on whether the branch is taken).
// Once embedded in a Snapshot it must not change.
type Operation struct {
	// the opcode bytes, including any prefix bytes. for a prefixed Z80
	// instruction len(OpCode) is 2
	OpCode []uint8

	// canonical mnemonic for the architecture, eg. "LD", "LDA", "LDAA"
	Mnemonic string

	// formatted operands in listing order
	Operands []string

	// the operand bytes that followed the opcode in memory
	OperandBytes []uint8

	// Length is the full instruction length in bytes. it always equals
	// len(OpCode)+len(OperandBytes)
	Length int

	// Cycles is the clock cycle count for this execution of the instruction,
	// including any taken-branch or page-crossing penalty
	Cycles int

	// EffectiveAddress is the memory address the instruction operates on,
	// when there is one. resolved at decode time
	EffectiveAddress      uint16
	EffectiveAddressValid bool
}

func (op Operation) String() string {
	if len(op.Operands) == 0 {
		return op.Mnemonic
	}
	return fmt.Sprintf("%s %s", op.Mnemonic, strings.Join(op.Operands, ","))
}

// Bytes returns every byte of the instruction in memory order.
func (op Operation) Bytes() []uint8 {
	b := make([]uint8, 0, op.Length)
	b = append(b, op.OpCode...)
	b = append(b, op.OperandBytes...)
	return b
}

// Metadata accompanies a Snapshot with information that is not part of the
// machine state proper.
type Metadata struct {
	// cumulative cycle count since the last reset, including this step
	TotalCycles int

	// Symbol is the label for the instruction's address, when a symbol table
	// has been attached to the engine. empty otherwise
	Symbol string
}

// Snapshot is the immutable record of a single step: the instruction that
// was executed, the machine state after it completed and every bus
// transaction it caused. Field values are copies; a Snapshot is unaffected
// by subsequent steps.
type Snapshot struct {
	// PC is the address the instruction was fetched from
	PC uint16

	Operation Operation

	// register and flag values after the instruction completed. Registers
	// holds full program-visible register state, including the program
	// counter and stack pointer, keyed by the architecture's canonical
	// register names
	Registers map[string]uint16
	Flags     map[string]bool

	Metadata Metadata

	// bus transactions in chronological order, fetch included
	BusActivity []bus.Access
}

func (sn Snapshot) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%#06x", sn.PC))
	if sn.Metadata.Symbol != "" {
		s.WriteString(fmt.Sprintf(" (%s)", sn.Metadata.Symbol))
	}
	s.WriteString(fmt.Sprintf("  %v  [%d cycles]", sn.Operation, sn.Operation.Cycles))
	return s.String()
}

// RegisterString formats the snapshot's registers, sorted by name for stable
// output.
func (sn Snapshot) RegisterString() string {
	names := make([]string, 0, len(sn.Registers))
	for n := range sn.Registers {
		names = append(names, n)
	}
	sort.Strings(names)

	s := strings.Builder{}
	for i, n := range names {
		if i > 0 {
			s.WriteString(" ")
		}
		s.WriteString(fmt.Sprintf("%s=%#06x", n, sn.Registers[n]))
	}
	return s.String()
}

// FlagString formats the snapshot's flags, sorted by name, set flags in
// upper case and clear flags in lower case.
func (sn Snapshot) FlagString() string {
	names := make([]string, 0, len(sn.Flags))
	for n := range sn.Flags {
		names = append(names, n)
	}
	sort.Strings(names)

	s := strings.Builder{}
	for _, n := range names {
		if sn.Flags[n] {
			s.WriteString(strings.ToUpper(n))
		} else {
			s.WriteString(strings.ToLower(n))
		}
	}
	return s.String()
}
