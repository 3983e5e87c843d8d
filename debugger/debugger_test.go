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
	"testing"
	"time"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/debugger"
	"github.com/tracer8/tracer8/debugger/govern"
	"github.com/tracer8/tracer8/hardware"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/setup"
	"github.com/tracer8/tracer8/test"
)

func newSession(t *testing.T, program []uint8) *debugger.Debugger {
	t.Helper()

	b := bus.NewBus()
	test.ExpectedSuccess(t, b.RegisterDevice(0x0000, 0xffff, "ram", bus.NewRAM(0x10000)))
	for i, v := range program {
		test.ExpectedSuccess(t, b.Load(uint16(i), v))
	}

	sys, err := hardware.NewSystem("z80", b)
	test.ExpectedSuccess(t, err)

	return debugger.NewDebugger(sys, nil)
}

func TestStateTransitions(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x00, // NOP
		0x00, // NOP
		0x76, // HALT
	})

	test.Equate(t, dbg.State(), govern.Idle)
	test.Equate(t, dbg.LastSnapshot() == nil, true)

	// with no breakpoints registered a step returns the session to Idle
	sn, err := dbg.Step()
	test.ExpectedSuccess(t, err)
	test.Equate(t, dbg.State(), govern.Idle)
	test.Equate(t, sn.PC, 0x0000)
	test.Equate(t, dbg.LastSnapshot(), sn)

	dbg.HardwareReset()
	test.Equate(t, dbg.State(), govern.Idle)
	test.Equate(t, dbg.System().Backend.ProgramCounter(), 0x0000)
}

func TestRunHaltsBeforeBreakpoint(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x00,       // 0000: NOP
		0x00,       // 0001: NOP
		0x3e, 0x55, // 0002: LD A,$55
		0x76, // 0004: HALT
	})

	dbg.Breakpoints.AddPC(0x0002)

	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, dbg.State(), govern.Paused)

	// the run halted with the instruction at the breakpoint unexecuted
	test.Equate(t, dbg.System().Backend.ProgramCounter(), 0x0002)
	test.Equate(t, dbg.System().Backend.RegisterMap()["A"], 0x00)
	test.Equate(t, dbg.LastSnapshot().PC, 0x0001)
	test.Equate(t, dbg.HaltReason() == "", false)
}

func TestRunStepsOverHaltedBreakpoint(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x00,       // 0000: NOP
		0x3e, 0x55, // 0001: LD A,$55
		0x3e, 0xaa, // 0003: LD A,$AA
		0x76, // 0005: HALT
	})

	dbg.Breakpoints.AddPC(0x0001)
	dbg.Breakpoints.AddPC(0x0003)

	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, dbg.System().Backend.ProgramCounter(), 0x0001)

	// resuming executes the instruction at the breakpoint and continues to
	// the next match
	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, dbg.System().Backend.ProgramCounter(), 0x0003)
	test.Equate(t, dbg.System().Backend.RegisterMap()["A"], 0x55)
}

func TestRunReturnsWhenHalted(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x00, // NOP
		0x76, // HALT
	})

	// the run ends of its own accord when the processor suspends
	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, dbg.State(), govern.Idle)
	test.Equate(t, dbg.LastSnapshot().Operation.Mnemonic, "HALT")
	test.Equate(t, dbg.HaltReason(), "")

	// a further run ends immediately, recording the suspended
	// pseudo-operation
	test.ExpectedSuccess(t, dbg.Run())
	test.Equate(t, dbg.State(), govern.Idle)
	test.Equate(t, dbg.LastSnapshot().Operation.Length, 0)
}

func TestStepEvaluatesBreakpoints(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x00,       // 0000: NOP
		0x3e, 0x55, // 0001: LD A,$55
		0x76, // 0003: HALT
	})

	dbg.Breakpoints.AddPC(0x0001)

	// the instruction about to be fetched is at the breakpoint address, so
	// the step leaves the session paused
	_, err := dbg.Step()
	test.ExpectedSuccess(t, err)
	test.Equate(t, dbg.State(), govern.Paused)
	test.Equate(t, dbg.HaltReason() == "", false)

	// the next step moves past the breakpoint and the session settles back
	// to Idle
	_, err = dbg.Step()
	test.ExpectedSuccess(t, err)
	test.Equate(t, dbg.State(), govern.Idle)
	test.Equate(t, dbg.HaltReason(), "")
}

func TestStopRequest(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x18, 0xfe, // JR -2 (spin forever)
	})

	done := make(chan error)
	go func() {
		done <- dbg.Run()
	}()

	// the stop request is honoured at the next instruction boundary
	time.Sleep(10 * time.Millisecond)
	dbg.Stop()

	test.ExpectedSuccess(t, <-done)
	test.Equate(t, dbg.State(), govern.Stopped)
}

func TestEngineErrorStopsSession(t *testing.T) {
	dbg := newSession(t, []uint8{
		0x00, // NOP
		0x27, // DAA: not implemented
	})

	sn, err := dbg.Step()
	test.ExpectedSuccess(t, err)

	_, err = dbg.Step()
	test.ExpectedFailure(t, err)
	test.Equate(t, dbg.State(), govern.Stopped)
	test.Equate(t, dbg.RunError(), err)

	// the last valid snapshot survives the failure
	test.Equate(t, dbg.LastSnapshot(), sn)

	// a stopped session refuses to step or run
	_, err = dbg.Step()
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, debugger.InvalidState))
	err = dbg.Run()
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, debugger.InvalidState))

	// only a hardware reset recovers it
	dbg.HardwareReset()
	test.Equate(t, dbg.State(), govern.Idle)
	test.Equate(t, dbg.RunError() == nil, true)
	_, err = dbg.Step()
	test.ExpectedSuccess(t, err)
}

func TestReapplyConfiguration(t *testing.T) {
	cfg, err := setup.ReadConfig([]byte(`
architecture: z80
memory_map:
  - {start: 0x0000, end: 0xffff, type: ram, label: main}
initial_state:
  pc: 0x0100
  sp: 0xfffe
`))
	test.ExpectedSuccess(t, err)

	sys, err := cfg.Assemble()
	test.ExpectedSuccess(t, err)
	test.ExpectedSuccess(t, sys.Bus.Load(0x0100, 0x00)) // NOP

	dbg := debugger.NewDebugger(sys, cfg)

	_, err = dbg.Step()
	test.ExpectedSuccess(t, err)
	test.Equate(t, sys.Backend.ProgramCounter(), 0x0101)

	// a hardware reset goes to the architecture default state and does not
	// imply the configured initial state
	dbg.HardwareReset()
	test.Equate(t, sys.Backend.ProgramCounter(), 0x0000)
	test.Equate(t, sys.Backend.RegisterMap()["SP"], 0x0000)

	// reapplying the configuration is its own operation
	test.ExpectedSuccess(t, dbg.ReapplyConfiguration())
	test.Equate(t, sys.Backend.ProgramCounter(), 0x0100)
	test.Equate(t, sys.Backend.RegisterMap()["SP"], 0xfffe)
}
