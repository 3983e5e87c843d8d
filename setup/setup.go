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

// Package setup turns a YAML system description into a wired machine. A
// description names the architecture, the memory and I/O maps and the
// initial processor state:
//
//	architecture: z80
//	memory_map:
//	  - {start: 0x0000, end: 0x7fff, type: rom, label: monitor}
//	  - {start: 0x8000, end: 0xffff, type: ram, label: main}
//	io_map:
//	  - {start: 0x00, end: 0xff, label: ports}
//	initial_state:
//	  pc: 0x0100
//	  sp: 0xfffe
//	  registers:
//	    A: 0x01
//
// Numeric fields accept decimal, 0x-prefixed and $-prefixed forms.
package setup

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware"
	"github.com/tracer8/tracer8/hardware/bus"
)

// Error patterns for the setup package.
const (
	ConfigError = "setup: %v"
)

// Number is a 16-bit value that unmarshals from decimal, 0x-prefixed and
// $-prefixed YAML scalars.
type Number uint16

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (n *Number) UnmarshalYAML(node *yaml.Node) error {
	s := node.Value
	if v, ok := strings.CutPrefix(s, "$"); ok {
		s = "0x" + v
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return fmt.Errorf("%q is not a 16-bit number", node.Value)
	}
	*n = Number(v)
	return nil
}

// Region describes one entry of a memory or I/O map. Type is "ram" or
// "rom"; I/O regions have no type and are always RAM-backed.
type Region struct {
	Start Number `yaml:"start"`
	End   Number `yaml:"end"`
	Type  string `yaml:"type"`
	Label string `yaml:"label"`
}

// InitialState is the processor state applied after assembly. PC and SP
// are optional; omitted fields leave the reset value alone.
type InitialState struct {
	PC        *Number           `yaml:"pc"`
	SP        *Number           `yaml:"sp"`
	Registers map[string]Number `yaml:"registers"`
}

// Config is a complete system description.
type Config struct {
	Architecture string       `yaml:"architecture"`
	MemoryMap    []Region     `yaml:"memory_map"`
	IOMap        []Region     `yaml:"io_map"`
	InitialState InitialState `yaml:"initial_state"`
}

// ReadConfig parses a system description.
func ReadConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, curated.Errorf(ConfigError, err)
	}
	if cfg.Architecture == "" {
		return nil, curated.Errorf(ConfigError, fmt.Errorf("no architecture"))
	}
	if len(cfg.MemoryMap) == 0 {
		return nil, curated.Errorf(ConfigError, fmt.Errorf("no memory map"))
	}
	return cfg, nil
}

// ReadConfigFile parses a system description from a file.
func ReadConfigFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, curated.Errorf(ConfigError, err)
	}
	return ReadConfig(data)
}

// Assemble wires a complete machine from the description: devices are
// created and registered on a new bus, the backend and engine are created
// and the initial state is applied.
func (cfg *Config) Assemble() (*hardware.System, error) {
	b := bus.NewBus()

	for _, region := range cfg.MemoryMap {
		if region.End < region.Start {
			return nil, curated.Errorf(ConfigError,
				fmt.Errorf("%s: end %#06x before start %#06x", region.Label, region.End, region.Start))
		}

		size := int(region.End) - int(region.Start) + 1

		var dev bus.Device
		switch strings.ToLower(region.Type) {
		case "ram":
			dev = bus.NewRAM(size)
		case "rom":
			dev = bus.NewROM(size)
		default:
			return nil, curated.Errorf(ConfigError,
				fmt.Errorf("%s: unknown region type %q", region.Label, region.Type))
		}

		if err := b.RegisterDevice(uint16(region.Start), uint16(region.End), region.Label, dev); err != nil {
			return nil, err
		}
	}

	for _, region := range cfg.IOMap {
		if region.End < region.Start {
			return nil, curated.Errorf(ConfigError,
				fmt.Errorf("%s: end %#06x before start %#06x", region.Label, region.End, region.Start))
		}
		size := int(region.End) - int(region.Start) + 1
		if err := b.RegisterIODevice(uint16(region.Start), uint16(region.End), region.Label, bus.NewRAM(size)); err != nil {
			return nil, err
		}
	}

	sys, err := hardware.NewSystem(cfg.Architecture, b)
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyInitialState(sys); err != nil {
		return nil, err
	}

	return sys, nil
}

// ApplyInitialState applies the description's initial state to an
// assembled machine. It can be called again at any time to return the
// processor registers to their configured values; memory is unaffected.
func (cfg *Config) ApplyInitialState(sys *hardware.System) error {
	registers := make(map[string]uint16)
	for name, value := range cfg.InitialState.Registers {
		registers[name] = uint16(value)
	}
	if cfg.InitialState.PC != nil {
		registers["PC"] = uint16(*cfg.InitialState.PC)
	}
	if cfg.InitialState.SP != nil {
		registers["SP"] = uint16(*cfg.InitialState.SP)
	}

	if len(registers) == 0 {
		return nil
	}

	return sys.Backend.ApplyState(registers)
}
