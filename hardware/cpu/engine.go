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

package cpu

import (
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/execution"
)

// SymbolLookup finds the label for an address. The disassembly and debugger
// packages provide implementations; the engine only needs the lookup.
type SymbolLookup interface {
	LookupAddress(address uint16) (string, bool)
}

// Engine drives a Backend through the fetch/decode/execute sequence common
// to all architectures and assembles a Snapshot for every step.
type Engine struct {
	bus     *bus.Bus
	backend Backend

	totalCycles int
	symbols     SymbolLookup
}

// NewEngine is the preferred method of initialisation for the Engine type.
// The backend is reset before the engine is returned.
func NewEngine(b *bus.Bus, backend Backend) *Engine {
	e := &Engine{
		bus:     b,
		backend: backend,
	}
	e.Reset()
	return e
}

// Backend returns the architecture backend the engine is driving.
func (e *Engine) Backend() Backend {
	return e.backend
}

// Bus returns the bus the engine is attached to.
func (e *Engine) Bus() *bus.Bus {
	return e.bus
}

// SetSymbols attaches a symbol lookup. Snapshots taken from then on carry
// the label for the instruction address, when one exists.
func (e *Engine) SetSymbols(symbols SymbolLookup) {
	e.symbols = symbols
}

// Reset returns the backend to its power-on state and zeroes the cumulative
// cycle count. Memory content is untouched.
func (e *Engine) Reset() {
	e.backend.Reset()
	e.totalCycles = 0
	_ = e.bus.GetAndClearActivityLog()
}

// TotalCycles returns the cumulative cycle count since the last reset.
func (e *Engine) TotalCycles() int {
	return e.totalCycles
}

// Step executes a single instruction and returns its Snapshot.
//
// The sequence is fixed: the activity log is cleared; the opcode is fetched
// at the current program counter (a logged read); the backend decodes,
// reading any further instruction bytes through the logging path; the
// program counter advances past the instruction; the backend executes; the
// activity log is drained into the snapshot.
//
// A suspended backend (the Z80 after HALT) skips the fetch entirely. The
// step still completes, recording the backend's pseudo-operation with no bus
// activity.
//
// On error the machine state is indeterminate and the caller should stop
// stepping.
func (e *Engine) Step() (*execution.Snapshot, error) {
	_ = e.bus.GetAndClearActivityLog()

	pc := e.backend.ProgramCounter()

	var op *execution.Operation

	if susp, ok := e.backend.Suspended(); ok {
		op = susp
	} else {
		opcode, err := e.bus.Read(pc)
		if err != nil {
			return nil, err
		}

		op, err = e.backend.Decode(e.bus, opcode, pc)
		if err != nil {
			return nil, err
		}

		// the program counter is past the instruction before execution
		// begins. control transfer instructions overwrite it from there
		e.backend.SetProgramCounter(pc + uint16(op.Length))

		err = e.backend.Execute(op)
		if err != nil {
			return nil, err
		}
	}

	e.totalCycles += op.Cycles

	sn := &execution.Snapshot{
		PC:        pc,
		Operation: *op,
		Registers: e.backend.RegisterMap(),
		Flags:     e.backend.FlagMap(),
		Metadata: execution.Metadata{
			TotalCycles: e.totalCycles,
		},
		BusActivity: e.bus.GetAndClearActivityLog(),
	}

	if e.symbols != nil {
		if label, ok := e.symbols.LookupAddress(pc); ok {
			sn.Metadata.Symbol = label
		}
	}

	return sn, nil
}
