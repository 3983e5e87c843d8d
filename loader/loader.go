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

// Package loader places raw program binaries into bus memory. Loading goes
// through the bus Load() function so that it works against ROM devices and
// produces no bus activity, and never touches processor state.
package loader

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/symbols"
)

// Error patterns for the loader package.
const (
	FileError = "loader: %s: %v"
)

// Loader is used to specify the program binary to place into memory and
// the address it is placed at.
type Loader struct {
	// filename of the program binary
	Filename string

	// the address the first byte of the binary is placed at
	Base uint16

	// copy of the loaded data, valid after Load()
	Data []byte

	// sha1 of the loaded data, valid after Load()
	Hash string
}

// NewLoader is the preferred method of initialisation for the Loader type.
func NewLoader(filename string, base uint16) Loader {
	return Loader{
		Filename: filename,
		Base:     base,
	}
}

// Load reads the program binary and places it into bus memory starting at
// the base address. A binary that does not fit below the top of the
// address space is an error.
func (ld *Loader) Load(b *bus.Bus) error {
	data, err := os.ReadFile(ld.Filename)
	if err != nil {
		return curated.Errorf(FileError, ld.Filename, err)
	}

	if int(ld.Base)+len(data) > 0x10000 {
		return curated.Errorf(FileError, ld.Filename,
			fmt.Errorf("%d bytes will not fit at %#06x", len(data), ld.Base))
	}

	for i, v := range data {
		if err := b.Load(ld.Base+uint16(i), v); err != nil {
			return err
		}
	}

	ld.Data = data
	ld.Hash = fmt.Sprintf("%x", sha1.Sum(data))

	return nil
}

// Symbols reads the sidecar symbols file for the program binary, found by
// replacing the binary's file extension with ".sym". A missing sidecar is
// not an error; an empty table is returned.
func (ld *Loader) Symbols() (*symbols.Table, error) {
	fn := ld.Filename
	if ext := path.Ext(fn); ext != "" {
		fn = fn[:len(fn)-len(ext)]
	}
	fn += ".sym"

	if _, err := os.Stat(fn); err != nil {
		return symbols.NewTable(), nil
	}

	return symbols.ReadFile(fn)
}
