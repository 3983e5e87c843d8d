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

package disassembly_test

import (
	"strings"
	"testing"

	"github.com/tracer8/tracer8/disassembly"
	"github.com/tracer8/tracer8/hardware/arch/z80"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/symbols"
	"github.com/tracer8/tracer8/test"
)

func newMachine(t *testing.T, program []uint8) (*bus.Bus, *z80.Z80) {
	t.Helper()

	b := bus.NewBus()
	test.ExpectedSuccess(t, b.RegisterDevice(0x0000, 0xffff, "ram", bus.NewRAM(0x10000)))
	for i, v := range program {
		test.ExpectedSuccess(t, b.Load(uint16(i), v))
	}

	return b, z80.NewZ80(b)
}

func TestListing(t *testing.T) {
	b, mc := newMachine(t, []uint8{
		0x3e, 0x55, // 0000: LD A,$55
		0x32, 0x00, 0x20, // 0002: LD ($2000),A
		0x76, // 0005: HALT
	})

	dsm, err := disassembly.FromBus(b, mc, 0x0000, 0x0005, nil)
	test.ExpectedSuccess(t, err)
	test.Equate(t, len(dsm.Entries), 3)

	test.Equate(t, dsm.Entries[0].Result.String(), "LD A,$55")
	test.Equate(t, dsm.Entries[1].Address, 0x0002)
	test.Equate(t, dsm.Entries[2].Result.Mnemonic, "HALT")
}

func TestNeverLogs(t *testing.T) {
	b, mc := newMachine(t, []uint8{0x3e, 0x55, 0x76})
	b.GetAndClearActivityLog()

	_, err := disassembly.FromBus(b, mc, 0x0000, 0x0002, nil)
	test.ExpectedSuccess(t, err)
	test.Equate(t, len(b.GetAndClearActivityLog()), 0)
}

func TestUndecodableBytes(t *testing.T) {
	// 0x27 (DAA) is not in the implemented subset
	b, mc := newMachine(t, []uint8{
		0x27,
		0x3e, 0x55, // LD A,$55
	})

	dsm, err := disassembly.FromBus(b, mc, 0x0000, 0x0002, nil)
	test.ExpectedSuccess(t, err)
	test.Equate(t, len(dsm.Entries), 2)

	// decoding recovers at the next byte
	test.Equate(t, dsm.Entries[0].Result.Mnemonic, "???")
	test.Equate(t, dsm.Entries[0].Result.Length, 1)
	test.Equate(t, dsm.Entries[1].Result.String(), "LD A,$55")
}

func TestSymbolLabels(t *testing.T) {
	b, mc := newMachine(t, []uint8{
		0x00, // 0000: NOP
		0x76, // 0001: HALT
	})

	tbl := symbols.NewTable()
	test.ExpectedSuccess(t, tbl.Add("stop", 0x0001))

	dsm, err := disassembly.FromBus(b, mc, 0x0000, 0x0001, tbl)
	test.ExpectedSuccess(t, err)

	test.Equate(t, dsm.Entries[0].Label, "")
	test.Equate(t, dsm.Entries[1].Label, "stop")
	test.Equate(t, strings.Contains(dsm.Entries[1].String(), "stop:"), true)
	test.Equate(t, strings.Contains(dsm.String(), "HALT"), true)
}
