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

package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/loader"
	"github.com/tracer8/tracer8/test"
)

func TestLoadIntoROM(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "program.bin")
	test.ExpectedSuccess(t, os.WriteFile(fn, []byte{0x3e, 0x55, 0x76}, 0o644))

	b := bus.NewBus()
	test.ExpectedSuccess(t, b.RegisterDevice(0x0000, 0x3fff, "rom", bus.NewROM(0x4000)))

	ld := loader.NewLoader(fn, 0x0100)
	test.ExpectedSuccess(t, ld.Load(b))
	test.Equate(t, len(ld.Data), 3)

	// loading must work against read-only devices and must not log
	v, err := b.Peek(0x0102)
	test.ExpectedSuccess(t, err)
	test.Equate(t, v, 0x76)
	test.Equate(t, len(b.GetAndClearActivityLog()), 0)
}

func TestLoadTooLarge(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "program.bin")
	test.ExpectedSuccess(t, os.WriteFile(fn, make([]byte, 0x200), 0o644))

	b := bus.NewBus()
	test.ExpectedSuccess(t, b.RegisterDevice(0x0000, 0xffff, "ram", bus.NewRAM(0x10000)))

	ld := loader.NewLoader(fn, 0xff00)
	err := ld.Load(b)
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, loader.FileError))
}

func TestSymbolSidecar(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "program.bin")
	test.ExpectedSuccess(t, os.WriteFile(fn, []byte{0x00}, 0o644))
	test.ExpectedSuccess(t, os.WriteFile(filepath.Join(dir, "program.sym"),
		[]byte("start = $0100\n"), 0o644))

	ld := loader.NewLoader(fn, 0x0000)
	tbl, err := ld.Symbols()
	test.ExpectedSuccess(t, err)

	addr, ok := tbl.LookupSymbol("start")
	test.Equate(t, ok, true)
	test.Equate(t, addr, 0x0100)
}

func TestSymbolSidecarMissing(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "program.bin")
	test.ExpectedSuccess(t, os.WriteFile(fn, []byte{0x00}, 0o644))

	ld := loader.NewLoader(fn, 0x0000)
	tbl, err := ld.Symbols()
	test.ExpectedSuccess(t, err)
	test.Equate(t, tbl.Len(), 0)
}
