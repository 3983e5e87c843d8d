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

// Package disassembly decodes memory ranges into readable listings without
// disturbing the machine. All memory access goes through the peek path so
// a disassembly never appears in the bus activity log.
//
// Decoding borrows the live processor for its addressing context, so
// operands that depend on register contents (indexed modes in particular)
// reflect the machine state at the time of the disassembly.
package disassembly

import (
	"fmt"
	"io"
	"strings"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
)

// Entry is one decoded instruction in a listing. An undecodable byte
// produces an entry with the mnemonic "???" and a length of one.
type Entry struct {
	Address uint16
	Label   string
	Result  execution.Operation
}

func (e Entry) String() string {
	hex := strings.Builder{}
	for _, v := range e.Result.Bytes() {
		hex.WriteString(fmt.Sprintf("%02X ", v))
	}

	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("$%04X", e.Address))
	if e.Label != "" {
		s.WriteString(fmt.Sprintf("  %s:", e.Label))
	}
	s.WriteString(fmt.Sprintf("  %-12s", hex.String()))
	s.WriteString(e.Result.String())
	return s.String()
}

// Disassembly is a decoded listing of a memory range.
type Disassembly struct {
	Entries []Entry

	// symbols used to label entries. may be nil
	Symbols cpu.SymbolLookup
}

// FromBus disassembles the address range from..to inclusive, using the
// backend for decoding. The machine is left untouched.
func FromBus(b *bus.Bus, backend cpu.Backend, from uint16, to uint16, symbols cpu.SymbolLookup) (*Disassembly, error) {
	dsm := &Disassembly{Symbols: symbols}
	r := bus.PeekReader{Bus: b}

	addr := int(from)
	for addr <= int(to) {
		e := Entry{Address: uint16(addr)}
		if symbols != nil {
			if label, ok := symbols.LookupAddress(uint16(addr)); ok {
				e.Label = label
			}
		}

		opcode, err := r.Read(uint16(addr))
		if err != nil {
			return nil, err
		}

		op, err := backend.Decode(r, opcode, uint16(addr))
		if err != nil {
			if !curated.Is(err, cpu.UnsupportedOpcode) {
				return nil, err
			}
			e.Result = execution.Operation{
				OpCode:   []uint8{opcode},
				Mnemonic: "???",
				Length:   1,
			}
		} else {
			e.Result = *op
		}

		dsm.Entries = append(dsm.Entries, e)
		addr += e.Result.Length
	}

	return dsm, nil
}

// Write writes the listing to w, one entry per line.
func (dsm *Disassembly) Write(w io.Writer) error {
	for _, e := range dsm.Entries {
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return err
		}
	}
	return nil
}

func (dsm *Disassembly) String() string {
	s := strings.Builder{}
	_ = dsm.Write(&s)
	return s.String()
}
