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

package symbols_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/symbols"
	"github.com/tracer8/tracer8/test"
)

func TestAddAndLookup(t *testing.T) {
	tbl := symbols.NewTable()

	test.ExpectedSuccess(t, tbl.Add("start", 0x0100))
	test.ExpectedSuccess(t, tbl.Add("loop", 0x0110))

	label, ok := tbl.LookupAddress(0x0110)
	test.Equate(t, ok, true)
	test.Equate(t, label, "loop")

	addr, ok := tbl.LookupSymbol("START")
	test.Equate(t, ok, true)
	test.Equate(t, addr, 0x0100)

	_, ok = tbl.LookupAddress(0x0200)
	test.Equate(t, ok, false)
}

func TestDuplicateLabel(t *testing.T) {
	tbl := symbols.NewTable()

	test.ExpectedSuccess(t, tbl.Add("start", 0x0100))

	// the same label at the same address is harmless
	test.ExpectedSuccess(t, tbl.Add("start", 0x0100))

	err := tbl.Add("start", 0x0200)
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, symbols.DuplicateSymbol))
}

func TestReadFile(t *testing.T) {
	content := `# sidecar symbols
start = $0100
loop  = 0x0110
done  = 288    # decimal

not a symbol line
bad = zzz
`
	fn := filepath.Join(t.TempDir(), "program.sym")
	test.ExpectedSuccess(t, os.WriteFile(fn, []byte(content), 0o644))

	tbl, err := symbols.ReadFile(fn)
	test.ExpectedSuccess(t, err)
	test.Equate(t, tbl.Len(), 3)

	addr, ok := tbl.LookupSymbol("loop")
	test.Equate(t, ok, true)
	test.Equate(t, addr, 0x0110)

	label, ok := tbl.LookupAddress(0x0120)
	test.Equate(t, ok, true)
	test.Equate(t, label, "done")
}

func TestReadFileMissing(t *testing.T) {
	_, err := symbols.ReadFile(filepath.Join(t.TempDir(), "no-such-file.sym"))
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, symbols.FileError))
}
