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
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"

	"github.com/tracer8/tracer8/debugger/script"
	"github.com/tracer8/tracer8/debugger/terminal"
	"github.com/tracer8/tracer8/disassembly"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
	"github.com/tracer8/tracer8/symbols"
)

const helpText = `STEP              execute one instruction
RUN               run until a breakpoint, error or interrupt
HALT              request that a running session stops
RESET             hardware reset (architecture default state)
REAPPLY           reapply the configured initial state
BREAK PC <addr>                     halt before the instruction at addr
BREAK ACCESS <from> [<to>] [<kind>] halt on bus activity in a range
BREAK REG <name> <value>            halt when a register holds a value
BREAK CHANGE <name>                 halt when a register changes
BREAK SCRIPT <lua>                  halt when a lua predicate is true
CLEAR <id>        remove a breakpoint
DISABLE <id>      keep a breakpoint but stop it matching
ENABLE <id>       restore a disabled breakpoint
LIST              list breakpoints
REGISTERS         show the processor registers
FLAGS             show the processor flags
MEMORY <from> [<to>]   peek at memory
DISASM <from> <to>     disassemble a range
SYMBOL <label>    look up a symbol
LAST              show the last snapshot again
VIZ <file>        write the last snapshot as graphviz dot
QUIT              end the session`

// AttachSymbols gives the session a symbol table. Snapshots and
// disassemblies are labelled with it and the SYMBOL command searches it.
// A nil table detaches.
func (dbg *Debugger) AttachSymbols(tbl *symbols.Table) {
	dbg.symbols = tbl
	dbg.sys.Engine.SetSymbols(dbg.symbolLookup())
}

// symbolLookup converts the symbols field for interface consumers, keeping
// a nil table as a nil interface.
func (dbg *Debugger) symbolLookup() cpu.SymbolLookup {
	if dbg.symbols == nil {
		return nil
	}
	return dbg.symbols
}

// Console runs the interactive command loop on a terminal. The loop ends
// on QUIT or end of input. An interrupt signal during a RUN stops the run;
// the session itself continues.
func (dbg *Debugger) Console(term terminal.Terminal) error {
	if err := term.Initialise(); err != nil {
		return err
	}
	defer term.CleanUp()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	go func() {
		for range sig {
			dbg.Stop()
		}
	}()

	for {
		input, err := term.TermRead(terminal.Prompt{
			Content: fmt.Sprintf("[%#06x] %s > ", dbg.sys.Backend.ProgramCounter(), dbg.state),
		})
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		quit, err := dbg.dispatch(term, input)
		if err != nil {
			term.TermPrintLine(terminal.StyleError, err.Error())
		}
		if quit {
			return nil
		}
	}
}

// dispatch parses and performs one command. The bool return indicates that
// the session should end.
func (dbg *Debugger) dispatch(out terminal.Output, input string) (bool, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, nil
	}

	arg := fields[1:]

	switch strings.ToUpper(fields[0]) {
	case "HELP":
		out.TermPrintLine(terminal.StyleFeedback, helpText)

	case "STEP":
		sn, err := dbg.Step()
		if err != nil {
			return false, err
		}
		if dbg.haltReason != "" {
			out.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("at breakpoint %s", dbg.haltReason))
		}
		dbg.printSnapshot(out, sn)

	case "RUN":
		if err := dbg.Run(); err != nil {
			return false, err
		}
		if dbg.haltReason != "" {
			out.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("halted at breakpoint %s", dbg.haltReason))
		}
		dbg.printSnapshot(out, dbg.last)

	case "HALT":
		dbg.Stop()

	case "RESET":
		dbg.HardwareReset()
		out.TermPrintLine(terminal.StyleFeedback, "hardware reset")

	case "REAPPLY":
		if err := dbg.ReapplyConfiguration(); err != nil {
			return false, err
		}
		out.TermPrintLine(terminal.StyleFeedback, "initial state reapplied")

	case "BREAK":
		return false, dbg.addBreakpoint(out, arg)

	case "CLEAR":
		id, err := parseBreakpointID(arg, "CLEAR")
		if err != nil {
			return false, err
		}
		return false, dbg.Breakpoints.Drop(id)

	case "DISABLE":
		id, err := parseBreakpointID(arg, "DISABLE")
		if err != nil {
			return false, err
		}
		return false, dbg.Breakpoints.Disable(id)

	case "ENABLE":
		id, err := parseBreakpointID(arg, "ENABLE")
		if err != nil {
			return false, err
		}
		return false, dbg.Breakpoints.Enable(id)

	case "LIST":
		l := dbg.Breakpoints.List()
		if len(l) == 0 {
			out.TermPrintLine(terminal.StyleFeedback, "no breakpoints")
		}
		for _, s := range l {
			out.TermPrintLine(terminal.StyleFeedback, s)
		}

	case "REGISTERS":
		for _, group := range dbg.sys.Backend.RegisterLayout() {
			regs := dbg.sys.Backend.RegisterMap()
			s := strings.Builder{}
			for i, spec := range group.Registers {
				if i > 0 {
					s.WriteString("  ")
				}
				format := "%s=%#06x"
				if spec.Width == 8 {
					format = "%s=%#04x"
				}
				s.WriteString(fmt.Sprintf(format, spec.Name, regs[spec.Name]))
			}
			out.TermPrintLine(terminal.StyleOutput, fmt.Sprintf("%s: %s", group.Label, s.String()))
		}

	case "FLAGS":
		sn := execution.Snapshot{Flags: dbg.sys.Backend.FlagMap()}
		out.TermPrintLine(terminal.StyleOutput, sn.FlagString())

	case "MEMORY":
		if len(arg) < 1 || len(arg) > 2 {
			return false, fmt.Errorf("MEMORY requires one or two addresses")
		}
		from, err := parseAddress(arg[0])
		if err != nil {
			return false, err
		}
		to := from
		if len(arg) == 2 {
			to, err = parseAddress(arg[1])
			if err != nil {
				return false, err
			}
		}
		return false, dbg.printMemory(out, from, to)

	case "DISASM":
		if len(arg) != 2 {
			return false, fmt.Errorf("DISASM requires two addresses")
		}
		from, err := parseAddress(arg[0])
		if err != nil {
			return false, err
		}
		to, err := parseAddress(arg[1])
		if err != nil {
			return false, err
		}
		dsm, err := disassembly.FromBus(dbg.sys.Bus, dbg.sys.Backend, from, to, dbg.symbolLookup())
		if err != nil {
			return false, err
		}
		for _, e := range dsm.Entries {
			out.TermPrintLine(terminal.StyleOutput, e.String())
		}

	case "SYMBOL":
		if len(arg) != 1 {
			return false, fmt.Errorf("SYMBOL requires a label")
		}
		if dbg.symbols == nil {
			return false, fmt.Errorf("no symbols attached")
		}
		addr, ok := dbg.symbols.LookupSymbol(arg[0])
		if !ok {
			return false, fmt.Errorf("no symbol named %s", arg[0])
		}
		out.TermPrintLine(terminal.StyleOutput, fmt.Sprintf("%s = %#06x", arg[0], addr))

	case "LAST":
		if dbg.last == nil {
			out.TermPrintLine(terminal.StyleFeedback, "nothing has executed yet")
		} else {
			dbg.printSnapshot(out, dbg.last)
		}

	case "VIZ":
		if len(arg) != 1 {
			return false, fmt.Errorf("VIZ requires a filename")
		}
		if dbg.last == nil {
			return false, fmt.Errorf("nothing has executed yet")
		}
		f, err := os.Create(arg[0])
		if err != nil {
			return false, err
		}
		defer f.Close()
		memviz.Map(f, dbg.last)
		out.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("snapshot written to %s", arg[0]))

	case "QUIT":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %s (try HELP)", strings.ToUpper(fields[0]))
	}

	return false, nil
}

func (dbg *Debugger) addBreakpoint(out terminal.Output, arg []string) error {
	if len(arg) == 0 {
		return fmt.Errorf("BREAK requires a breakpoint kind (try HELP)")
	}

	var id int

	switch strings.ToUpper(arg[0]) {
	case "PC":
		if len(arg) != 2 {
			return fmt.Errorf("BREAK PC requires an address")
		}
		addr, err := parseAddress(arg[1])
		if err != nil {
			return err
		}
		id = dbg.Breakpoints.AddPC(addr)

	case "ACCESS":
		if len(arg) < 2 || len(arg) > 4 {
			return fmt.Errorf("BREAK ACCESS requires an address range")
		}
		from, err := parseAddress(arg[1])
		if err != nil {
			return err
		}
		to := from
		rest := arg[2:]
		if len(rest) > 0 {
			if t, err := parseAddress(rest[0]); err == nil {
				to = t
				rest = rest[1:]
			}
		}
		if len(rest) == 0 {
			id = dbg.Breakpoints.AddAnyAccess(from, to)
		} else {
			var kind bus.AccessKind
			switch strings.ToUpper(rest[0]) {
			case "READ":
				kind = bus.Read
			case "WRITE":
				kind = bus.Write
			case "IOREAD":
				kind = bus.IORead
			case "IOWRITE":
				kind = bus.IOWrite
			default:
				return fmt.Errorf("%q is not an access kind", rest[0])
			}
			id = dbg.Breakpoints.AddAccess(from, to, kind)
		}

	case "REG":
		if len(arg) != 3 {
			return fmt.Errorf("BREAK REG requires a register and a value")
		}
		value, err := parseAddress(arg[2])
		if err != nil {
			return err
		}
		id = dbg.Breakpoints.AddRegisterValue(strings.ToUpper(arg[1]), value)

	case "CHANGE":
		if len(arg) != 2 {
			return fmt.Errorf("BREAK CHANGE requires a register")
		}
		id = dbg.Breakpoints.AddRegisterChange(strings.ToUpper(arg[1]))

	case "SCRIPT":
		if len(arg) < 2 {
			return fmt.Errorf("BREAK SCRIPT requires a lua expression")
		}
		predicate, err := script.NewPredicate(strings.Join(arg[1:], " "))
		if err != nil {
			return err
		}
		id = dbg.Breakpoints.AddScript(predicate)

	default:
		return fmt.Errorf("unknown breakpoint kind %s (try HELP)", strings.ToUpper(arg[0]))
	}

	out.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("breakpoint %d added", id))
	return nil
}

func (dbg *Debugger) printSnapshot(out terminal.Output, sn *execution.Snapshot) {
	if sn == nil {
		return
	}
	out.TermPrintLine(terminal.StyleSnapshot, sn.String())
	out.TermPrintLine(terminal.StyleSnapshot, sn.RegisterString())
	out.TermPrintLine(terminal.StyleSnapshot, sn.FlagString())
	for _, access := range sn.BusActivity {
		out.TermPrintLine(terminal.StyleSnapshot, fmt.Sprintf("  %s", access))
	}
}

func (dbg *Debugger) printMemory(out terminal.Output, from uint16, to uint16) error {
	for base := int(from) &^ 0x0f; base <= int(to); base += 16 {
		s := strings.Builder{}
		s.WriteString(fmt.Sprintf("%04x: ", base))
		for i := 0; i < 16; i++ {
			addr := base + i
			if addr < int(from) || addr > int(to) {
				s.WriteString("   ")
				continue
			}
			v, err := dbg.sys.Bus.Peek(uint16(addr))
			if err != nil {
				s.WriteString("?? ")
				continue
			}
			s.WriteString(fmt.Sprintf("%02x ", v))
		}
		out.TermPrintLine(terminal.StyleOutput, s.String())
	}
	return nil
}

// parseBreakpointID expects a single argument holding a breakpoint id.
func parseBreakpointID(arg []string, command string) (int, error) {
	if len(arg) != 1 {
		return 0, fmt.Errorf("%s requires a breakpoint id", command)
	}
	id, err := strconv.Atoi(arg[0])
	if err != nil {
		return 0, fmt.Errorf("%q is not a breakpoint id", arg[0])
	}
	return id, nil
}

// parseAddress accepts decimal, 0x-prefixed and $-prefixed forms.
func parseAddress(s string) (uint16, error) {
	if v, ok := strings.CutPrefix(s, "$"); ok {
		s = "0x" + v
	}
	addr, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("%q is not an address", s)
	}
	return uint16(addr), nil
}
