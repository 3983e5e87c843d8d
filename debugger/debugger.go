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

// Package debugger drives a machine one instruction at a time, under the
// control of breakpoints and an interactive command loop.
//
// All machine access is serialised through the Debugger. A running session
// can be interrupted from another goroutine with Stop(); the request is
// honoured at the next instruction boundary.
package debugger

import (
	"sync/atomic"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/debugger/govern"
	"github.com/tracer8/tracer8/hardware"
	"github.com/tracer8/tracer8/hardware/execution"
	"github.com/tracer8/tracer8/logger"
	"github.com/tracer8/tracer8/setup"
	"github.com/tracer8/tracer8/symbols"
)

// Error patterns for the debugger package.
const (
	InvalidState      = "debugger: %s is not possible in the %s state"
	UnknownBreakpoint = "debugger: no breakpoint with id %d"
)

// Debugger is the controller for a debugging session.
type Debugger struct {
	sys *hardware.System

	// the configuration the machine was assembled from. nil when the
	// machine was wired by hand, in which case ReapplyConfiguration is a
	// no-op
	cfg *setup.Config

	// Breakpoints may be modified freely between Step and Run calls.
	Breakpoints Breakpoints

	// symbols attached with AttachSymbols. may be nil
	symbols *symbols.Table

	state govern.State

	// stop requests cross goroutines. polled between steps
	stop atomic.Bool

	last     *execution.Snapshot
	previous *execution.Snapshot

	// the description of the breakpoint that last halted a run and the
	// engine error that stopped the session, if either has happened
	haltReason string
	runError   error
}

// NewDebugger is the preferred method of initialisation for the Debugger
// type. The config argument may be nil.
func NewDebugger(sys *hardware.System, cfg *setup.Config) *Debugger {
	return &Debugger{
		sys:   sys,
		cfg:   cfg,
		state: govern.Idle,
	}
}

// System returns the machine under debug.
func (dbg *Debugger) System() *hardware.System {
	return dbg.sys
}

// State returns the session's current state.
func (dbg *Debugger) State() govern.State {
	return dbg.state
}

// LastSnapshot returns the snapshot of the most recent step, or nil before
// the first step. After an engine error the last valid snapshot remains
// available.
func (dbg *Debugger) LastSnapshot() *execution.Snapshot {
	return dbg.last
}

// HaltReason returns the description of the breakpoint that halted the
// last run, or the empty string.
func (dbg *Debugger) HaltReason() string {
	return dbg.haltReason
}

// RunError returns the engine error that stopped the session, if any.
func (dbg *Debugger) RunError() error {
	return dbg.runError
}

// step the engine once and update session bookkeeping. does not touch the
// session state.
func (dbg *Debugger) step() (*execution.Snapshot, error) {
	sn, err := dbg.sys.Engine.Step()
	if err != nil {
		dbg.state = govern.Stopped
		dbg.runError = err
		return nil, err
	}
	dbg.previous = dbg.last
	dbg.last = sn
	return sn, nil
}

// checkBreakpoints evaluates the registered breakpoints against the
// snapshot of the step that just completed.
func (dbg *Debugger) checkBreakpoints(sn *execution.Snapshot) (string, bool) {
	return dbg.Breakpoints.check(matchContext{
		snapshot: sn,
		previous: dbg.previous,
		nextPC:   dbg.sys.Backend.ProgramCounter(),
	})
}

// Step executes a single instruction. Breakpoints are evaluated against
// the resulting snapshot: a match leaves the session Paused, otherwise the
// session returns to Idle. An engine error leaves it Stopped.
func (dbg *Debugger) Step() (*execution.Snapshot, error) {
	if dbg.state == govern.Stopped {
		return nil, curated.Errorf(InvalidState, "step", dbg.state)
	}

	sn, err := dbg.step()
	if err != nil {
		return nil, err
	}

	if reason, ok := dbg.checkBreakpoints(sn); ok {
		dbg.haltReason = reason
		dbg.state = govern.Paused
	} else {
		dbg.haltReason = ""
		dbg.state = govern.Idle
	}

	return sn, nil
}

// Run executes instructions until the processor suspends itself, a
// breakpoint matches, a stop request arrives or the engine fails. A
// suspended processor (the Z80 after HALT) returns the session to Idle; a
// breakpoint match leaves it Paused; the other two leave it Stopped.
//
// A program counter breakpoint matches the address of the instruction
// about to be fetched, so a run halts with the breakpoint's instruction
// unexecuted. A run always executes at least one instruction, which means
// resuming from a halted breakpoint steps over it rather than halting
// again immediately.
func (dbg *Debugger) Run() error {
	if dbg.state == govern.Stopped {
		return curated.Errorf(InvalidState, "run", dbg.state)
	}

	dbg.state = govern.Running
	dbg.haltReason = ""
	dbg.stop.Store(false)

	for {
		sn, err := dbg.step()
		if err != nil {
			logger.Log("debugger", err.Error())
			return err
		}

		// a suspended processor makes no further progress. the run is over
		if _, suspended := dbg.sys.Backend.Suspended(); suspended {
			dbg.state = govern.Idle
			return nil
		}

		if reason, ok := dbg.checkBreakpoints(sn); ok {
			dbg.haltReason = reason
			dbg.state = govern.Paused
			return nil
		}

		if dbg.stop.Load() {
			dbg.state = govern.Stopped
			return nil
		}
	}
}

// Stop requests that a running session stops at the next instruction
// boundary. Safe to call from any goroutine.
func (dbg *Debugger) Stop() {
	dbg.stop.Store(true)
}

// HardwareReset returns the processor to its architecture default state
// and the session to Idle. Memory contents, breakpoints and the last
// snapshot survive; the configured initial state is NOT applied.
func (dbg *Debugger) HardwareReset() {
	dbg.sys.Reset()
	dbg.state = govern.Idle
	dbg.runError = nil
	dbg.haltReason = ""
}

// ReapplyConfiguration applies the setup-supplied initial state to the
// processor. It never happens implicitly; in particular HardwareReset does
// not do it.
func (dbg *Debugger) ReapplyConfiguration() error {
	if dbg.cfg == nil {
		return nil
	}
	return dbg.cfg.ApplyInitialState(dbg.sys)
}
