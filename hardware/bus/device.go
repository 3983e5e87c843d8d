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

package bus

import (
	"fmt"
	"strings"
)

// Device is any readable/writable unit attachable to the bus. Addresses given
// to a device are offsets within the device, not absolute bus addresses; the
// bus performs the translation during dispatch.
//
// Read() and Write() are the normal access paths used during instruction
// execution. Peek() and Poke() are the debugger/loader paths: Peek() is a
// read with no side effects and Poke() is a write that bypasses any write
// protection the device implements.
type Device interface {
	Read(address uint16) uint8
	Write(address uint16, data uint8)
	Peek(address uint16) uint8
	Poke(address uint16, data uint8)
	Size() int
}

// RAM is the read/write memory device.
type RAM struct {
	memory []uint8
}

// NewRAM is the preferred method of initialisation for the RAM type. Memory
// is initialised to zero.
func NewRAM(size int) *RAM {
	return &RAM{
		memory: make([]uint8, size),
	}
}

func (r *RAM) String() string {
	return hexdump(r.memory)
}

// Read implements the Device interface.
func (r *RAM) Read(address uint16) uint8 {
	return r.memory[address]
}

// Write implements the Device interface.
func (r *RAM) Write(address uint16, data uint8) {
	r.memory[address] = data
}

// Peek implements the Device interface.
func (r *RAM) Peek(address uint16) uint8 {
	return r.memory[address]
}

// Poke implements the Device interface.
func (r *RAM) Poke(address uint16, data uint8) {
	r.memory[address] = data
}

// Size implements the Device interface.
func (r *RAM) Size() int {
	return len(r.memory)
}

// ROM is the read-only memory device. Writes through the normal Write() path
// are accepted and discarded, never reported as an error. This mirrors real
// hardware, where the data lines of a write cycle to ROM simply have no
// effect. Content is established with Poke(), normally through Bus.Load().
type ROM struct {
	memory []uint8
}

// NewROM is the preferred method of initialisation for the ROM type.
func NewROM(size int) *ROM {
	return &ROM{
		memory: make([]uint8, size),
	}
}

// NewROMFromData creates a ROM pre-filled with the supplied data.
func NewROMFromData(data []uint8) *ROM {
	r := &ROM{
		memory: make([]uint8, len(data)),
	}
	copy(r.memory, data)
	return r
}

func (r *ROM) String() string {
	return hexdump(r.memory)
}

// Read implements the Device interface.
func (r *ROM) Read(address uint16) uint8 {
	return r.memory[address]
}

// Write implements the Device interface. The write is discarded.
func (r *ROM) Write(address uint16, data uint8) {
}

// Peek implements the Device interface.
func (r *ROM) Peek(address uint16) uint8 {
	return r.memory[address]
}

// Poke implements the Device interface. Unlike Write(), Poke() really does
// alter ROM content. It exists for the benefit of Bus.Load() during system
// initialisation.
func (r *ROM) Poke(address uint16, data uint8) {
	r.memory[address] = data
}

// Size implements the Device interface.
func (r *ROM) Size() int {
	return len(r.memory)
}

// hexdump of the first page of a device. for terminal display.
func hexdump(memory []uint8) string {
	s := strings.Builder{}
	n := len(memory)
	if n > 256 {
		n = 256
	}
	for y := 0; y < n/16; y++ {
		s.WriteString(fmt.Sprintf("%03x- |", y))
		for x := 0; x < 16; x++ {
			s.WriteString(fmt.Sprintf(" %02x", memory[(y*16)+x]))
		}
		s.WriteString("\n")
	}
	return strings.Trim(s.String(), "\n")
}
