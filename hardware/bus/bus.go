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

	"github.com/tracer8/tracer8/curated"
)

// Error patterns raised by the bus.
const (
	// AddressError is raised when an access resolves to no registered device.
	// It is never silently defaulted to zero - an unmapped access is a
	// configuration mistake that should surface as early as possible.
	AddressError = "bus: %s: address %#06x is not mapped"

	// ConfigurationError is raised at device registration time. It is never
	// raised during stepping.
	ConfigurationError = "bus: configuration: %s"
)

// Reader is the read-only face of the bus. Decode functions take a Reader
// rather than the full Bus so that the execution engine can supply the
// logging Read() path while the disassembler supplies the silent Peek()
// path.
type Reader interface {
	Read(address uint16) (uint8, error)
}

// region records the device registered for an inclusive address range.
type region struct {
	start  uint16
	end    uint16
	label  string
	device Device
}

func (r region) String() string {
	return fmt.Sprintf("%#06x to %#06x  %s", r.start, r.end, r.label)
}

// Bus is an address-space multiplexer. It owns the memory map, the I/O map
// (used only by architectures with a separate I/O space) and the activity
// log for the step in progress.
type Bus struct {
	memory []region
	io     []region

	// append-only within a step. drained by GetAndClearActivityLog()
	activity []Access
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus() *Bus {
	return &Bus{
		memory:   make([]region, 0),
		io:       make([]region, 0),
		activity: make([]Access, 0, 16),
	}
}

func registerDevice(regions []region, start uint16, end uint16, label string, device Device) ([]region, error) {
	if end < start {
		return nil, curated.Errorf(ConfigurationError,
			fmt.Sprintf("address range %#06x to %#06x is inverted", start, end))
	}

	// overlapping ranges are a configuration error, not a silent shadowing
	// of the earlier registration
	for _, r := range regions {
		if start <= r.end && end >= r.start {
			return nil, curated.Errorf(ConfigurationError,
				fmt.Sprintf("range %#06x to %#06x overlaps %v", start, end, r))
		}
	}

	if device.Size() != int(end)-int(start)+1 {
		return nil, curated.Errorf(ConfigurationError,
			fmt.Sprintf("device size (%d bytes) does not match range %#06x to %#06x", device.Size(), start, end))
	}

	return append(regions, region{start: start, end: end, label: label, device: device}), nil
}

// RegisterDevice installs a device for an inclusive range of the memory
// address space. Overlapping ranges are a ConfigurationError.
func (b *Bus) RegisterDevice(start uint16, end uint16, label string, device Device) error {
	m, err := registerDevice(b.memory, start, end, label, device)
	if err != nil {
		return err
	}
	b.memory = m
	return nil
}

// RegisterIODevice installs a device for an inclusive range of the I/O
// address space.
func (b *Bus) RegisterIODevice(start uint16, end uint16, label string, device Device) error {
	m, err := registerDevice(b.io, start, end, label, device)
	if err != nil {
		return err
	}
	b.io = m
	return nil
}

// MemoryMap returns a description of every registered memory region, in
// registration order. For display purposes.
func (b *Bus) MemoryMap() []string {
	m := make([]string, 0, len(b.memory))
	for _, r := range b.memory {
		m = append(m, r.String())
	}
	return m
}

func find(regions []region, address uint16) (region, bool) {
	for _, r := range regions {
		if address >= r.start && address <= r.end {
			return r, true
		}
	}
	return region{}, false
}

func (b *Bus) log(access Access) {
	b.activity = append(b.activity, access)
}

// Read a byte from the memory address space. The access is recorded in the
// activity log.
func (b *Bus) Read(address uint16) (uint8, error) {
	r, ok := find(b.memory, address)
	if !ok {
		return 0, curated.Errorf(AddressError, Read, address)
	}
	data := r.device.Read(address - r.start)
	b.log(Access{Address: address, Data: data, Kind: Read})
	return data, nil
}

// Write a byte to the memory address space. The current value at the address
// is read first (without being logged as a separate access) so that the
// recorded Access carries the overwritten value. This read-before-write
// happens even for RAM; for ROM the previous value equals the value that
// remains, since the device discards the write.
func (b *Bus) Write(address uint16, data uint8) error {
	r, ok := find(b.memory, address)
	if !ok {
		return curated.Errorf(AddressError, Write, address)
	}
	previous := r.device.Read(address - r.start)
	r.device.Write(address-r.start, data)
	b.log(Access{
		Address:           address,
		Data:              data,
		Kind:              Write,
		PreviousData:      previous,
		PreviousDataValid: true,
	})
	return nil
}

// ReadIO reads a byte from the I/O address space.
func (b *Bus) ReadIO(address uint16) (uint8, error) {
	r, ok := find(b.io, address)
	if !ok {
		return 0, curated.Errorf(AddressError, IORead, address)
	}
	data := r.device.Read(address - r.start)
	b.log(Access{Address: address, Data: data, Kind: IORead})
	return data, nil
}

// WriteIO writes a byte to the I/O address space. I/O ports are not required
// to be readable so the recorded Access never carries a previous value.
func (b *Bus) WriteIO(address uint16, data uint8) error {
	r, ok := find(b.io, address)
	if !ok {
		return curated.Errorf(AddressError, IOWrite, address)
	}
	r.device.Write(address-r.start, data)
	b.log(Access{Address: address, Data: data, Kind: IOWrite})
	return nil
}

// Peek reads a byte from the memory address space without recording the
// access. For non-invasive inspection only.
func (b *Bus) Peek(address uint16) (uint8, error) {
	r, ok := find(b.memory, address)
	if !ok {
		return 0, curated.Errorf(AddressError, Read, address)
	}
	return r.device.Peek(address - r.start), nil
}

// Load places a byte in the memory address space, bypassing device write
// protection (a Load into ROM succeeds) and recording nothing. For system
// initialisation only - program loaders must use this path and never
// Write().
func (b *Bus) Load(address uint16, data uint8) error {
	r, ok := find(b.memory, address)
	if !ok {
		return curated.Errorf(AddressError, Write, address)
	}
	r.device.Poke(address-r.start, data)
	return nil
}

// GetAndClearActivityLog returns the transactions recorded since the
// previous call and leaves the log empty.
func (b *Bus) GetAndClearActivityLog() []Access {
	activity := b.activity
	b.activity = make([]Access, 0, cap(activity))
	return activity
}

// PeekReader adapts the bus Peek() function to the Reader interface. It is
// the reader the disassembler must use - decoding through a PeekReader can
// never pollute the activity log.
type PeekReader struct {
	Bus *Bus
}

// Read implements the Reader interface.
func (p PeekReader) Read(address uint16) (uint8, error) {
	return p.Bus.Peek(address)
}
