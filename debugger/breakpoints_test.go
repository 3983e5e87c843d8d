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

package debugger_test

import (
	"strings"
	"testing"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/debugger"
	"github.com/tracer8/tracer8/debugger/govern"
	"github.com/tracer8/tracer8/debugger/script"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/test"
)

func TestMemoryAccessBreakpoint(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x3e, 0x55, // 0000: LD A,$55
		0x32, 0x00, 0x20, // 0002: LD ($2000),A
		0x76, // 0005: HALT
	})

	dbg.Breakpoints.AddAccess(0x2000, 0x20ff, bus.Write)

	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, dbg.State(), govern.Paused)

	// the halt is after the store instruction completed
	test.Equate(t, dbg.LastSnapshot().PC, 0x0002)
	v, err := dbg.System().Bus.Peek(0x2000)
	test.ExpectedSuccess(t, err)
	test.Equate(t, v, 0x55)
}

func TestAccessKindFilter(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x3a, 0x00, 0x20, // 0000: LD A,($2000)  (reads the range)
		0x32, 0x00, 0x20, // 0003: LD ($2000),A
		0x76, // 0006: HALT
	})

	// a write breakpoint ignores the read of the same range
	dbg.Breakpoints.AddAccess(0x2000, 0x2000, bus.Write)

	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, dbg.LastSnapshot().PC, 0x0003)
}

func TestRegisterValueBreakpoint(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x3e, 0x01, // LD A,$01
		0x3e, 0x02, // LD A,$02
		0x3e, 0x03, // LD A,$03
		0x76, // HALT
	})

	dbg.Breakpoints.AddRegisterValue("A", 0x02)

	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, dbg.LastSnapshot().PC, 0x0002)
	test.Equate(t, dbg.System().Backend.RegisterMap()["A"], 0x02)
}

func TestRegisterChangeBreakpoint(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x00,       // 0000: NOP
		0x00,       // 0001: NOP
		0x06, 0x10, // 0002: LD B,$10
		0x76, // 0004: HALT
	})

	dbg.Breakpoints.AddRegisterChange("B")

	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, dbg.LastSnapshot().PC, 0x0002)
}

func TestScriptBreakpoint(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x3e, 0x54, // 0000: LD A,$54
		0x3c,       // 0002: INC A
		0x3c,       // 0003: INC A
		0x76, // 0004: HALT
	})

	predicate, err := script.NewPredicate("reg.A == 0x55 and mnemonic == 'INC'")
	test.ExpectedSuccess(t, err)
	dbg.Breakpoints.AddScript(predicate)

	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, dbg.LastSnapshot().PC, 0x0002)
	test.Equate(t, dbg.System().Backend.RegisterMap()["A"], 0x55)
}

func TestFirstMatchWins(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x3e, 0x55, // 0000: LD A,$55
		0x76, // 0002: HALT
	})

	// both match after the first step. the earlier registration is
	// reported
	first := dbg.Breakpoints.AddRegisterValue("A", 0x55)
	dbg.Breakpoints.AddPC(0x0002)

	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, strings.HasPrefix(dbg.HaltReason(), "1:"), true)
	test.Equate(t, first, 1)
}

func TestDisabledBreakpoint(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x00,       // 0000: NOP
		0x3e, 0x55, // 0001: LD A,$55
		0x76, // 0003: HALT
	})

	id := dbg.Breakpoints.AddPC(0x0001)
	test.ExpectedSuccess(t, dbg.Breakpoints.Disable(id))

	// a disabled breakpoint never matches. the run carries on to the halt
	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, dbg.State(), govern.Idle)
	test.Equate(t, dbg.HaltReason(), "")

	// the listing shows the disabled state
	l := dbg.Breakpoints.List()
	test.Equate(t, len(l), 1)
	test.Equate(t, strings.HasSuffix(l[0], "(disabled)"), true)

	// enabled again it matches as before
	test.ExpectedSuccess(t, dbg.Breakpoints.Enable(id))
	dbg.HardwareReset()
	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, dbg.State(), govern.Paused)
	test.Equate(t, dbg.System().Backend.ProgramCounter(), 0x0001)

	// unknown ids are errors
	err := dbg.Breakpoints.Disable(99)
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, debugger.UnknownBreakpoint))
}

func TestBreakpointManagement(t *testing.T) {
	dbg := newSession(t, nil)

	id1 := dbg.Breakpoints.AddPC(0x0100)
	id2 := dbg.Breakpoints.AddAnyAccess(0x2000, 0x2fff)
	test.Equate(t, len(dbg.Breakpoints.List()), 2)

	test.ExpectedSuccess(t, dbg.Breakpoints.Drop(id1))
	test.Equate(t, len(dbg.Breakpoints.List()), 1)
	test.Equate(t, strings.Contains(dbg.Breakpoints.List()[0], "access"), true)

	err := dbg.Breakpoints.Drop(id1)
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, debugger.UnknownBreakpoint))

	test.ExpectedSuccess(t, dbg.Breakpoints.Drop(id2))
	test.Equate(t, len(dbg.Breakpoints.List()), 0)
}
