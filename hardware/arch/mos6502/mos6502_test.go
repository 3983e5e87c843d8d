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

package mos6502_test

import (
	"testing"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/arch/mos6502"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
	"github.com/tracer8/tracer8/test"
)

func newMachine(t *testing.T, program []uint8) (*bus.Bus, *cpu.Engine, *mos6502.MOS6502) {
	t.Helper()

	b := bus.NewBus()
	test.ExpectedSuccess(t, b.RegisterDevice(0x0000, 0xffff, "ram", bus.NewRAM(0x10000)))
	for i, v := range program {
		test.ExpectedSuccess(t, b.Load(uint16(i), v))
	}

	mc := mos6502.NewMOS6502(b)
	return b, cpu.NewEngine(b, mc), mc
}

func step(t *testing.T, eng *cpu.Engine) *execution.Snapshot {
	t.Helper()
	sn, err := eng.Step()
	test.ExpectedSuccess(t, err)
	return sn
}

func TestResetState(t *testing.T) {
	_, _, mc := newMachine(t, nil)

	test.Equate(t, mc.P, 0x24)
	test.Equate(t, mc.SP, 0xfd)
	test.Equate(t, mc.StackPointer(), 0x01fd)
	test.Equate(t, mc.RegisterMap()["S"], 0x01fd)
	test.Equate(t, mc.FlagMap()["I"], true)
}

func TestLoadStore(t *testing.T) {
	b, eng, mc := newMachine(t, []uint8{
		0xa9, 0x42, // LDA #$42
		0x8d, 0x00, 0x20, // STA $2000
		0xa9, 0x00, // LDA #$00
	})

	sn := step(t, eng)
	test.Equate(t, mc.A, 0x42)
	test.Equate(t, sn.Operation.Mnemonic, "LDA")
	test.Equate(t, sn.Operation.Operands[0], "#$42")
	test.Equate(t, sn.Operation.Cycles, 2)

	sn = step(t, eng)
	v, err := b.Peek(0x2000)
	test.ExpectedSuccess(t, err)
	test.Equate(t, v, 0x42)
	test.Equate(t, sn.Operation.EffectiveAddress, 0x2000)

	sn = step(t, eng)
	test.Equate(t, sn.Flags["Z"], true)
	test.Equate(t, sn.Flags["N"], false)
}

func TestZeroPageWrap(t *testing.T) {
	b, eng, mc := newMachine(t, []uint8{
		0xa2, 0x05, // LDX #$05
		0xb5, 0xfe, // LDA $FE,X
	})
	test.ExpectedSuccess(t, b.Load(0x0003, 0x77)) // $FE+$05 wraps to $03

	step(t, eng)
	sn := step(t, eng)

	test.Equate(t, sn.Operation.EffectiveAddress, 0x0003)
	test.Equate(t, mc.A, 0x77)
}

func TestIndirectIndexed(t *testing.T) {
	b, eng, mc := newMachine(t, []uint8{
		0xa0, 0x10, // LDY #$10
		0xb1, 0x40, // LDA ($40),Y
	})
	test.ExpectedSuccess(t, b.Load(0x0040, 0xf8)) // pointer low
	test.ExpectedSuccess(t, b.Load(0x0041, 0x20)) // pointer high
	test.ExpectedSuccess(t, b.Load(0x2108, 0x99)) // $20F8+$10 crosses a page

	step(t, eng)
	sn := step(t, eng)

	test.Equate(t, mc.A, 0x99)
	test.Equate(t, sn.Operation.Operands[0], "($40),Y")

	// base cycles plus the page crossing penalty
	test.Equate(t, sn.Operation.Cycles, 6)
}

func TestADCOverflow(t *testing.T) {
	_, eng, _ := newMachine(t, []uint8{
		0xa9, 0x50, // LDA #$50
		0x69, 0x50, // ADC #$50
	})

	step(t, eng)
	sn := step(t, eng)

	test.Equate(t, sn.Registers["A"], 0xa0)
	test.Equate(t, sn.Flags["V"], true)
	test.Equate(t, sn.Flags["N"], true)
	test.Equate(t, sn.Flags["C"], false)
}

func TestSBCBorrow(t *testing.T) {
	_, eng, _ := newMachine(t, []uint8{
		0x38,       // SEC
		0xa9, 0x10, // LDA #$10
		0xe9, 0x20, // SBC #$20
	})

	step(t, eng)
	step(t, eng)
	sn := step(t, eng)

	test.Equate(t, sn.Registers["A"], 0xf0)
	test.Equate(t, sn.Flags["C"], false)
	test.Equate(t, sn.Flags["N"], true)
}

func TestDecimalMode(t *testing.T) {
	_, eng, mc := newMachine(t, []uint8{
		0xf8,       // SED
		0x18,       // CLC
		0xa9, 0x19, // LDA #$19
		0x69, 0x03, // ADC #$03  (19 + 3 = 22 in BCD)
	})

	for i := 0; i < 4; i++ {
		step(t, eng)
	}

	test.Equate(t, mc.A, 0x22)
	test.Equate(t, mc.FlagMap()["C"], false)
}

func TestCompare(t *testing.T) {
	_, eng, _ := newMachine(t, []uint8{
		0xa9, 0x40, // LDA #$40
		0xc9, 0x40, // CMP #$40
	})

	step(t, eng)
	sn := step(t, eng)

	test.Equate(t, sn.Flags["Z"], true)
	test.Equate(t, sn.Flags["C"], true)
	test.Equate(t, sn.Flags["N"], false)
}

func TestShiftMemory(t *testing.T) {
	b, eng, mc := newMachine(t, []uint8{
		0x0a,       // ASL A (A=0)
		0xa9, 0x81, // LDA #$81
		0x0a,       // ASL A
		0x06, 0x40, // ASL $40
	})
	test.ExpectedSuccess(t, b.Load(0x0040, 0x40))

	step(t, eng)
	step(t, eng)

	sn := step(t, eng)
	test.Equate(t, mc.A, 0x02)
	test.Equate(t, sn.Flags["C"], true)

	step(t, eng)
	v, err := b.Peek(0x0040)
	test.ExpectedSuccess(t, err)
	test.Equate(t, v, 0x80)
	test.Equate(t, mc.FlagMap()["N"], true)
}

func TestJSRAndRTS(t *testing.T) {
	program := []uint8{
		0x20, 0x00, 0x10, // 0000: JSR $1000
		0xea, // 0003: NOP
	}
	b, eng, mc := newMachine(t, program)
	test.ExpectedSuccess(t, b.Load(0x1000, 0x60)) // RTS

	sn := step(t, eng)
	test.Equate(t, mc.PC, 0x1000)
	test.Equate(t, mc.SP, 0xfb)

	// the pushed address is the last byte of the JSR: $0002, high then low
	test.Equate(t, len(sn.BusActivity), 5)
	test.Equate(t, sn.BusActivity[3].Address, 0x01fd)
	test.Equate(t, sn.BusActivity[3].Data, 0x00)
	test.Equate(t, sn.BusActivity[4].Address, 0x01fc)
	test.Equate(t, sn.BusActivity[4].Data, 0x02)

	step(t, eng) // RTS adjusts the pulled address forward
	test.Equate(t, mc.PC, 0x0003)
	test.Equate(t, mc.SP, 0xfd)
}

func TestIndirectJumpPageWrapQuirk(t *testing.T) {
	b, eng, mc := newMachine(t, []uint8{
		0x6c, 0xff, 0x10, // JMP ($10FF)
	})
	test.ExpectedSuccess(t, b.Load(0x10ff, 0x34)) // low byte
	test.ExpectedSuccess(t, b.Load(0x1100, 0xff)) // NOT used for the high byte
	test.ExpectedSuccess(t, b.Load(0x1000, 0x12)) // high byte wraps to $1000

	step(t, eng)
	test.Equate(t, mc.PC, 0x1234)
}

func TestBranchCycles(t *testing.T) {
	// BNE with Z clear: taken, same page
	_, eng, _ := newMachine(t, []uint8{
		0xa9, 0x01, // LDA #$01 (clears Z)
		0xd0, 0x02, // BNE +2 (taken, same page)
		0xea, 0xea, // skipped
		0xf0, 0x02, // BEQ +2 (not taken)
	})

	step(t, eng)

	sn := step(t, eng)
	test.Equate(t, sn.Operation.Cycles, 3)
	test.Equate(t, sn.Registers["PC"], 0x0006)

	sn = step(t, eng)
	test.Equate(t, sn.Operation.Cycles, 2)
	test.Equate(t, sn.Registers["PC"], 0x0008)
}

func TestBranchPageCrossPenalty(t *testing.T) {
	b := bus.NewBus()
	test.ExpectedSuccess(t, b.RegisterDevice(0x0000, 0xffff, "ram", bus.NewRAM(0x10000)))

	// a backwards branch from the start of a page crosses into the
	// previous page
	test.ExpectedSuccess(t, b.Load(0x0200, 0xd0)) // BNE
	test.ExpectedSuccess(t, b.Load(0x0201, 0xfc)) // -4

	mc := mos6502.NewMOS6502(b)
	eng := cpu.NewEngine(b, mc)
	test.ExpectedSuccess(t, mc.ApplyState(map[string]uint16{"PC": 0x0200, "A": 0x01}))

	sn, err := eng.Step()
	test.ExpectedSuccess(t, err)
	test.Equate(t, sn.Operation.Cycles, 4)
	test.Equate(t, mc.PC, 0x01fe)
}

func TestStackFlags(t *testing.T) {
	_, eng, mc := newMachine(t, []uint8{
		0x08, // PHP
		0x28, // PLP
	})

	sn := step(t, eng)

	// the break and unused bits read as set on the stack
	test.Equate(t, sn.BusActivity[1].Data, 0x34)

	step(t, eng)

	// the break flag does not survive the round trip into the register
	test.Equate(t, mc.P, 0x24)
}

func TestBRKAndRTI(t *testing.T) {
	b, eng, mc := newMachine(t, []uint8{
		0x00, // BRK
	})
	test.ExpectedSuccess(t, b.Load(0xfffe, 0x00)) // vector low
	test.ExpectedSuccess(t, b.Load(0xffff, 0x30)) // vector high
	test.ExpectedSuccess(t, b.Load(0x3000, 0x40)) // RTI

	sn := step(t, eng)
	test.Equate(t, mc.PC, 0x3000)
	test.Equate(t, mc.FlagMap()["I"], true)
	test.Equate(t, sn.Operation.Cycles, 7)

	step(t, eng) // RTI

	// the return address skipped the padding byte
	test.Equate(t, mc.PC, 0x0002)
	test.Equate(t, mc.SP, 0xfd)
}

func TestUnsupportedOpcode(t *testing.T) {
	_, eng, _ := newMachine(t, []uint8{0x02})

	_, err := eng.Step()
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, cpu.UnsupportedOpcode))
}

func TestDecodeLengthInvariant(t *testing.T) {
	b := bus.NewBus()
	test.ExpectedSuccess(t, b.RegisterDevice(0x0000, 0xffff, "ram", bus.NewRAM(0x10000)))
	mc := mos6502.NewMOS6502(b)

	r := bus.PeekReader{Bus: b}
	for opcode := 0; opcode < 0x100; opcode++ {
		op, err := mc.Decode(r, uint8(opcode), 0x0000)
		if err != nil {
			continue
		}
		test.Equate(t, op.Length, len(op.OpCode)+len(op.OperandBytes))
	}
}
