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

// Package symbols maintains a two-way mapping between program addresses and
// textual labels. Symbol files are plain text, one "label = address" pair
// per line, with # introducing a comment.
package symbols

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tracer8/tracer8/curated"
)

// Error patterns for the symbols package.
const (
	FileError       = "symbols: %s: %v"
	DuplicateSymbol = "symbols: duplicate symbol %s"
)

// Table maps program addresses to labels and back. It satisfies the
// cpu.SymbolLookup interface.
type Table struct {
	byAddr  map[uint16]string
	byLabel map[string]uint16

	// index of keys in byAddr. sortable through the sort.Interface
	idx []uint16

	// the longest label in the table
	maxWidth int
}

// NewTable is the preferred method of initialisation for the Table type.
func NewTable() *Table {
	return &Table{
		byAddr:  make(map[uint16]string),
		byLabel: make(map[string]uint16),
		idx:     make([]uint16, 0),
	}
}

func (t *Table) String() string {
	s := strings.Builder{}
	for _, addr := range t.idx {
		s.WriteString(fmt.Sprintf("%#06x -> %s\n", addr, t.byAddr[addr]))
	}
	return s.String()
}

// Add places a label at an address. A label already at a different address
// is an error; relabelling the same address is allowed.
func (t *Table) Add(label string, addr uint16) error {
	if existing, ok := t.byLabel[label]; ok && existing != addr {
		return curated.Errorf(DuplicateSymbol, label)
	}

	if old, ok := t.byAddr[addr]; ok {
		delete(t.byLabel, old)
		t.byAddr[addr] = label
	} else {
		t.byAddr[addr] = label
		t.idx = append(t.idx, addr)
		sort.Sort(t)
	}
	t.byLabel[label] = addr

	if len(label) > t.maxWidth {
		t.maxWidth = len(label)
	}

	return nil
}

// LookupAddress returns the label at an address, if one exists.
func (t *Table) LookupAddress(addr uint16) (string, bool) {
	label, ok := t.byAddr[addr]
	return label, ok
}

// LookupSymbol returns the address of a label, if one exists. The search
// is case insensitive.
func (t *Table) LookupSymbol(label string) (uint16, bool) {
	if addr, ok := t.byLabel[label]; ok {
		return addr, true
	}
	for k, v := range t.byLabel {
		if strings.EqualFold(k, label) {
			return v, true
		}
	}
	return 0, false
}

// Len returns the number of symbols in the table.
func (t *Table) Len() int {
	return len(t.idx)
}

// Less implements the sort.Interface.
func (t *Table) Less(i, j int) bool {
	return t.idx[i] < t.idx[j]
}

// Swap implements the sort.Interface.
func (t *Table) Swap(i, j int) {
	t.idx[i], t.idx[j] = t.idx[j], t.idx[i]
}

// MaxWidth returns the length of the longest label, useful for column
// alignment when listing symbols.
func (t *Table) MaxWidth() int {
	return t.maxWidth
}

// ReadFile initialises a table from a symbols file. Unparseable lines are
// skipped rather than reported; a symbols file is an aid, not a contract.
func ReadFile(filename string) (*Table, error) {
	t := NewTable()

	sym, err := os.ReadFile(filename)
	if err != nil {
		return nil, curated.Errorf(FileError, filename, err)
	}

	for _, ln := range strings.Split(string(sym), "\n") {
		if i := strings.Index(ln, "#"); i != -1 {
			ln = ln[:i]
		}

		label, value, ok := strings.Cut(ln, "=")
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		value = strings.TrimSpace(value)
		if label == "" || value == "" {
			continue
		}

		addr, err := parseAddress(value)
		if err != nil {
			continue
		}

		if err := t.Add(label, addr); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// parseAddress accepts decimal, 0x-prefixed and $-prefixed forms.
func parseAddress(s string) (uint16, error) {
	if v, ok := strings.CutPrefix(s, "$"); ok {
		s = "0x" + v
	}
	addr, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, err
	}
	return uint16(addr), nil
}
