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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/tracer8/tracer8/debugger"
	"github.com/tracer8/tracer8/debugger/terminal"
	"github.com/tracer8/tracer8/debugger/terminal/easyterm"
	"github.com/tracer8/tracer8/debugger/terminal/plainterm"
	"github.com/tracer8/tracer8/disassembly"
	"github.com/tracer8/tracer8/hardware"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/execution"
	"github.com/tracer8/tracer8/loader"
	"github.com/tracer8/tracer8/logger"
	"github.com/tracer8/tracer8/modalflag"
	"github.com/tracer8/tracer8/performance"
	"github.com/tracer8/tracer8/setup"
	"github.com/tracer8/tracer8/statsview"
	"github.com/tracer8/tracer8/symbols"
	"github.com/tracer8/tracer8/version"
)

// assembled is everything the sub-modes need: a wired machine, the
// configuration it came from (nil when wired from flags) and the program's
// symbols.
type assembled struct {
	sys    *hardware.System
	cfg    *setup.Config
	sym    *symbols.Table
	ld     loader.Loader
	length int
}

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("RUN", "DEBUG", "DISASM", "PERFORMANCE", "VERSION")

	echoLog := md.AddBool("log", false, "echo log to stderr")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(10)
	}

	if *echoLog {
		logger.SetEcho(os.Stderr)
	}

	switch md.Mode() {
	case "RUN":
		err = emulate(md)
	case "DEBUG":
		err = debug(md)
	case "DISASM":
		err = disasm(md)
	case "PERFORMANCE":
		err = perform(md)
	case "VERSION":
		ver, rev, rel := version.Version()
		fmt.Printf("%s (%s)\n", version.ApplicationName, ver)
		if !rel {
			fmt.Printf("  %s\n", rev)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(10)
	}
}

// assemble a machine from the mode's common flags and load the program
// binary named by the remaining argument.
func assemble(md *modalflag.Modes, config *string, arch *string, base *string) (*assembled, error) {
	asm := &assembled{}

	var err error

	if *config != "" {
		asm.cfg, err = setup.ReadConfigFile(*config)
		if err != nil {
			return nil, err
		}
		asm.sys, err = asm.cfg.Assemble()
	} else {
		// no configuration file: a flat 64k of RAM and the architecture
		// default state
		b := bus.NewBus()
		if err = b.RegisterDevice(0x0000, 0xffff, "ram", bus.NewRAM(0x10000)); err != nil {
			return nil, err
		}
		asm.sys, err = hardware.NewSystem(*arch, b)
	}
	if err != nil {
		return nil, err
	}

	if md.GetArg(0) == "" {
		return nil, fmt.Errorf("no program binary specified")
	}

	baseAddr, err := parseAddress(*base)
	if err != nil {
		return nil, err
	}

	asm.ld = loader.NewLoader(md.GetArg(0), baseAddr)
	if err := asm.ld.Load(asm.sys.Bus); err != nil {
		return nil, err
	}
	asm.length = len(asm.ld.Data)

	asm.sym, err = asm.ld.Symbols()
	if err != nil {
		return nil, err
	}
	asm.sys.Engine.SetSymbols(asm.sym)

	return asm, nil
}

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

func commonFlags(md *modalflag.Modes) (config *string, arch *string, base *string) {
	config = md.AddString("config", "", "yaml system description")
	arch = md.AddString("arch", "z80", "architecture when no config file is given")
	base = md.AddString("base", "0", "load address of the program binary")
	return config, arch, base
}

func emulate(md *modalflag.Modes) error {
	md.NewMode()
	config, arch, base := commonFlags(md)
	trace := md.AddBool("trace", false, "print a snapshot for every instruction")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	asm, err := assemble(md, config, arch, base)
	if err != nil {
		return err
	}

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	defer signal.Stop(intChan)

	var last *execution.Snapshot

	for {
		sn, err := asm.sys.Engine.Step()
		if err != nil {
			return err
		}
		last = sn
		if *trace {
			fmt.Println(sn)
		}

		// a suspended processor makes no further progress
		if _, suspended := asm.sys.Backend.Suspended(); suspended {
			break
		}

		select {
		case <-intChan:
			fmt.Println("\r")
			return nil
		default:
		}
	}

	fmt.Println(asm.sys.Engine.TotalCycles(), "cycles")
	if last != nil {
		fmt.Println(last.RegisterString())
	}

	return nil
}

func debug(md *modalflag.Modes) error {
	md.NewMode()
	config, arch, base := commonFlags(md)
	termType := md.AddString("term", "plain", "terminal type: plain or easy")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	asm, err := assemble(md, config, arch, base)
	if err != nil {
		return err
	}

	dbg := debugger.NewDebugger(asm.sys, asm.cfg)
	dbg.AttachSymbols(asm.sym)

	var term terminal.Terminal
	switch *termType {
	case "easy":
		term = easyterm.NewEasyTerm()
	default:
		term = plainterm.NewPlainTerminal(nil, nil)
	}

	return dbg.Console(term)
}

func disasm(md *modalflag.Modes) error {
	md.NewMode()
	config, arch, base := commonFlags(md)

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	asm, err := assemble(md, config, arch, base)
	if err != nil {
		return err
	}

	from := asm.ld.Base
	to := from + uint16(asm.length) - 1

	dsm, err := disassembly.FromBus(asm.sys.Bus, asm.sys.Backend, from, to, asm.sym)
	if err != nil {
		return err
	}

	return dsm.Write(os.Stdout)
}

func perform(md *modalflag.Modes) error {
	md.NewMode()
	config, arch, base := commonFlags(md)
	duration := md.AddString("duration", "5s", "run duration")
	profile := md.AddBool("profile", false, "write cpu and memory profiles")
	stats := md.AddBool("stats", false, "run stats server")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	asm, err := assemble(md, config, arch, base)
	if err != nil {
		return err
	}

	if *stats {
		if statsview.Available() {
			statsview.Launch(os.Stdout)
		} else {
			fmt.Println("stats server not available")
		}
	}

	prf := performance.ProfileNone
	if *profile {
		prf = performance.ProfileAll
	}

	return performance.Check(os.Stdout, prf, asm.sys, *duration)
}
