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

import "fmt"

// AccessKind classifies a recorded bus transaction.
type AccessKind int

// List of access kinds. The IO kinds are only ever produced by architectures
// with a separate I/O address space (eg. the Z80's IN/OUT instructions).
const (
	Read AccessKind = iota
	Write
	IORead
	IOWrite
)

func (k AccessKind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	case IORead:
		return "io read"
	case IOWrite:
		return "io write"
	}
	return "unknown"
}

// Access records a single transaction on the bus. Instances are immutable
// once appended to the activity log.
//
// PreviousData is only meaningful for write accesses and only when
// PreviousDataValid is true. It records the value that was overwritten, which
// for a ROM write equals the value that survives the write. I/O writes never
// carry a previous value because ports are not required to be readable.
type Access struct {
	Address uint16
	Data    uint8
	Kind    AccessKind

	PreviousData      uint8
	PreviousDataValid bool
}

func (a Access) String() string {
	if a.Kind == Write && a.PreviousDataValid {
		return fmt.Sprintf("%s %#06x <- %#04x (was %#04x)", a.Kind, a.Address, a.Data, a.PreviousData)
	}
	if a.Kind == Write || a.Kind == IOWrite {
		return fmt.Sprintf("%s %#06x <- %#04x", a.Kind, a.Address, a.Data)
	}
	return fmt.Sprintf("%s %#06x -> %#04x", a.Kind, a.Address, a.Data)
}
