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

// Package script evaluates Lua predicates against execution snapshots.
// A predicate is a Lua expression, or a chunk ending in a return
// statement, that sees the following globals:
//
//	pc        the address the instruction was fetched from
//	mnemonic  the instruction's mnemonic
//	cycles    cumulative cycle count
//	reg       table of registers by canonical name, eg. reg.A
//	flag      table of flags by canonical name, eg. flag.Z
//
// For example:
//
//	reg.A == 0xff and flag.C
package script

import (
	"fmt"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/execution"
)

// Error patterns for the script package.
const (
	ScriptError = "script: %v"
)

// Predicate is a compiled Lua expression that can be evaluated against a
// snapshot. It owns a Lua state and is not safe for concurrent use.
type Predicate struct {
	source string
	ls     *lua.LState
	fn     *lua.LFunction
}

// NewPredicate is the preferred method of initialisation for the Predicate
// type. A bare expression is wrapped in a return statement; a chunk with
// its own return is used as is.
func NewPredicate(source string) (*Predicate, error) {
	chunk := source
	if !strings.Contains(chunk, "return") {
		chunk = fmt.Sprintf("return (%s)", chunk)
	}

	ls := lua.NewState()
	fn, err := ls.LoadString(chunk)
	if err != nil {
		ls.Close()
		return nil, curated.Errorf(ScriptError, err)
	}

	return &Predicate{
		source: source,
		ls:     ls,
		fn:     fn,
	}, nil
}

// NewPredicateFromFile compiles a predicate from a Lua file.
func NewPredicateFromFile(filename string) (*Predicate, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, curated.Errorf(ScriptError, err)
	}
	return NewPredicate(string(src))
}

// Close releases the predicate's Lua state.
func (p *Predicate) Close() {
	p.ls.Close()
}

func (p *Predicate) String() string {
	return p.source
}

// Evaluate runs the predicate against a snapshot. Any value Lua considers
// true is a match.
func (p *Predicate) Evaluate(sn *execution.Snapshot) (bool, error) {
	reg := p.ls.NewTable()
	for name, value := range sn.Registers {
		p.ls.SetField(reg, name, lua.LNumber(value))
	}

	flag := p.ls.NewTable()
	for name, value := range sn.Flags {
		p.ls.SetField(flag, name, lua.LBool(value))
	}

	p.ls.SetGlobal("pc", lua.LNumber(sn.PC))
	p.ls.SetGlobal("mnemonic", lua.LString(sn.Operation.Mnemonic))
	p.ls.SetGlobal("cycles", lua.LNumber(sn.Metadata.TotalCycles))
	p.ls.SetGlobal("reg", reg)
	p.ls.SetGlobal("flag", flag)

	if err := p.ls.CallByParam(lua.P{Fn: p.fn, NRet: 1, Protect: true}); err != nil {
		return false, curated.Errorf(ScriptError, err)
	}

	ret := p.ls.Get(-1)
	p.ls.Pop(1)

	return lua.LVAsBool(ret), nil
}
