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

// Package hardware assembles a bus, a processor backend and an execution
// engine into a complete machine for one of the supported architectures.
package hardware

import (
	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/arch/mc6800"
	"github.com/tracer8/tracer8/hardware/arch/mos6502"
	"github.com/tracer8/tracer8/hardware/arch/z80"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/cpu"
)

// UnknownArch is returned when an architecture identifier does not name a
// supported processor.
const UnknownArch = "hardware: unknown architecture: %s"

// ArchList is the set of supported architecture identifiers.
var ArchList = []string{z80.ArchID, mos6502.ArchID, mc6800.ArchID}

// System is the main container for the emulated components.
type System struct {
	Bus     *bus.Bus
	Backend cpu.Backend
	Engine  *cpu.Engine
}

// NewSystem creates a new System for the named architecture. Devices are
// registered on the bus before the call; the backend and engine are
// created in their reset state.
func NewSystem(archID string, b *bus.Bus) (*System, error) {
	sys := &System{Bus: b}

	switch archID {
	case z80.ArchID:
		sys.Backend = z80.NewZ80(b)
	case mos6502.ArchID:
		sys.Backend = mos6502.NewMOS6502(b)
	case mc6800.ArchID:
		sys.Backend = mc6800.NewMC6800(b)
	default:
		return nil, curated.Errorf(UnknownArch, archID)
	}

	sys.Engine = cpu.NewEngine(b, sys.Backend)

	return sys, nil
}

// Reset returns the processor to its architecture-defined power-on state
// and clears the cycle count. Memory contents are left alone.
func (sys *System) Reset() {
	sys.Engine.Reset()
}
