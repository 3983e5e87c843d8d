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

package debugger

import (
	"fmt"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/debugger/script"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/execution"
	"github.com/tracer8/tracer8/logger"
)

// matchContext is everything a breakpoint can match against after a step.
type matchContext struct {
	// the snapshot of the step that just completed
	snapshot *execution.Snapshot

	// the snapshot of the step before that. nil for the first step
	previous *execution.Snapshot

	// the address of the instruction that will be fetched next. program
	// counter breakpoints match against this so that a run halts before
	// the instruction at the breakpoint address executes
	nextPC uint16
}

type breakpoint interface {
	match(ctx matchContext) bool
	String() string
}

type pcBreak struct {
	addr uint16
}

func (b pcBreak) match(ctx matchContext) bool {
	return ctx.nextPC == b.addr
}

func (b pcBreak) String() string {
	return fmt.Sprintf("PC = %#06x", b.addr)
}

type accessBreak struct {
	from uint16
	to   uint16

	kind    bus.AccessKind
	anyKind bool
}

func (b accessBreak) match(ctx matchContext) bool {
	for _, access := range ctx.snapshot.BusActivity {
		if access.Address < b.from || access.Address > b.to {
			continue
		}
		if b.anyKind || access.Kind == b.kind {
			return true
		}
	}
	return false
}

func (b accessBreak) String() string {
	kind := "access"
	if !b.anyKind {
		kind = b.kind.String()
	}
	return fmt.Sprintf("%s of %#06x to %#06x", kind, b.from, b.to)
}

type registerBreak struct {
	name  string
	value uint16
}

func (b registerBreak) match(ctx matchContext) bool {
	v, ok := ctx.snapshot.Registers[b.name]
	return ok && v == b.value
}

func (b registerBreak) String() string {
	return fmt.Sprintf("%s = %#06x", b.name, b.value)
}

type registerChangeBreak struct {
	name string
}

func (b registerChangeBreak) match(ctx matchContext) bool {
	if ctx.previous == nil {
		return false
	}
	return ctx.snapshot.Registers[b.name] != ctx.previous.Registers[b.name]
}

func (b registerChangeBreak) String() string {
	return fmt.Sprintf("%s changes", b.name)
}

type scriptBreak struct {
	predicate *script.Predicate
}

func (b scriptBreak) match(ctx matchContext) bool {
	v, err := b.predicate.Evaluate(ctx.snapshot)
	if err != nil {
		// a failing predicate never matches. the error is worth knowing
		// about but must not halt the run
		logger.Log("debugger", err.Error())
		return false
	}
	return v
}

func (b scriptBreak) String() string {
	return fmt.Sprintf("script: %s", b.predicate)
}

type breakEntry struct {
	id int
	bp breakpoint

	// a disabled breakpoint keeps its place in the evaluation order but
	// never matches
	disabled bool
}

// Breakpoints is an ordered collection of breakpoints. Evaluation happens
// in registration order and the first match wins.
type Breakpoints struct {
	entries []breakEntry
	nextID  int
}

func (bk *Breakpoints) add(bp breakpoint) int {
	bk.nextID++
	bk.entries = append(bk.entries, breakEntry{id: bk.nextID, bp: bp})
	return bk.nextID
}

// AddPC adds a program counter breakpoint. It matches when the NEXT
// instruction to execute is at the given address.
func (bk *Breakpoints) AddPC(addr uint16) int {
	return bk.add(pcBreak{addr: addr})
}

// AddAccess adds a breakpoint on any bus activity of the given kind in the
// address range from..to inclusive.
func (bk *Breakpoints) AddAccess(from uint16, to uint16, kind bus.AccessKind) int {
	return bk.add(accessBreak{from: from, to: to, kind: kind})
}

// AddAnyAccess adds a breakpoint on bus activity of any kind in the
// address range from..to inclusive.
func (bk *Breakpoints) AddAnyAccess(from uint16, to uint16) int {
	return bk.add(accessBreak{from: from, to: to, anyKind: true})
}

// AddRegisterValue adds a breakpoint on a register holding a value after a
// step.
func (bk *Breakpoints) AddRegisterValue(name string, value uint16) int {
	return bk.add(registerBreak{name: name, value: value})
}

// AddRegisterChange adds a breakpoint on a register's value differing from
// the previous step's.
func (bk *Breakpoints) AddRegisterChange(name string) int {
	return bk.add(registerChangeBreak{name: name})
}

// AddScript adds a breakpoint on a Lua predicate evaluating to true. The
// collection takes ownership of the predicate.
func (bk *Breakpoints) AddScript(predicate *script.Predicate) int {
	return bk.add(scriptBreak{predicate: predicate})
}

// Drop removes the breakpoint with the given id.
func (bk *Breakpoints) Drop(id int) error {
	for i, e := range bk.entries {
		if e.id == id {
			if s, ok := e.bp.(scriptBreak); ok {
				s.predicate.Close()
			}
			bk.entries = append(bk.entries[:i], bk.entries[i+1:]...)
			return nil
		}
	}
	return curated.Errorf(UnknownBreakpoint, id)
}

// Enable restores a disabled breakpoint. Enabling an enabled breakpoint
// does nothing.
func (bk *Breakpoints) Enable(id int) error {
	return bk.setDisabled(id, false)
}

// Disable keeps a breakpoint in the collection but stops it matching until
// it is enabled again.
func (bk *Breakpoints) Disable(id int) error {
	return bk.setDisabled(id, true)
}

func (bk *Breakpoints) setDisabled(id int, disabled bool) error {
	for i := range bk.entries {
		if bk.entries[i].id == id {
			bk.entries[i].disabled = disabled
			return nil
		}
	}
	return curated.Errorf(UnknownBreakpoint, id)
}

// List returns a description of every breakpoint, in registration order.
// Disabled breakpoints are marked as such.
func (bk *Breakpoints) List() []string {
	l := make([]string, 0, len(bk.entries))
	for _, e := range bk.entries {
		if e.disabled {
			l = append(l, fmt.Sprintf("%d: %s (disabled)", e.id, e.bp))
		} else {
			l = append(l, fmt.Sprintf("%d: %s", e.id, e.bp))
		}
	}
	return l
}

// check returns the description of the first matching enabled breakpoint.
func (bk *Breakpoints) check(ctx matchContext) (string, bool) {
	for _, e := range bk.entries {
		if e.disabled {
			continue
		}
		if e.bp.match(ctx) {
			return fmt.Sprintf("%d: %s", e.id, e.bp), true
		}
	}
	return "", false
}
