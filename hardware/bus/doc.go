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

// Package bus is the single mediator of all memory and I/O access in an
// emulated system. Devices (RAM, ROM) are registered against inclusive
// address ranges and the bus dispatches every read and write to the owning
// device.
//
// Every access through the Read()/Write() and ReadIO()/WriteIO() paths is
// recorded in the activity log. The log accumulates the transactions of the
// step in progress and is drained by the execution engine with
// GetAndClearActivityLog() when the step's snapshot is assembled.
//
// Two paths deliberately bypass the log. Peek() is for non-invasive
// inspection (the debugger, the disassembler) and behaves like Read() in
// every other way. Load() is for system initialisation only: it writes
// through the device's Poke() function, meaning it can place program bytes
// in ROM, and it must never be used during instruction execution.
package bus
