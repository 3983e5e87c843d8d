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

package z80_test

import (
	"testing"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware/arch/z80"
	"github.com/tracer8/tracer8/hardware/bus"
	"github.com/tracer8/tracer8/hardware/cpu"
	"github.com/tracer8/tracer8/hardware/execution"
	"github.com/tracer8/tracer8/test"
)

// 64KB of RAM with the program loaded at address zero.
func newMachine(t *testing.T, program []uint8) (*bus.Bus, *cpu.Engine, *z80.Z80) {
	t.Helper()

	b := bus.NewBus()
	test.ExpectedSuccess(t, b.RegisterDevice(0x0000, 0xffff, "ram", bus.NewRAM(0x10000)))
	for i, v := range program {
		test.ExpectedSuccess(t, b.Load(uint16(i), v))
	}

	mc := z80.NewZ80(b)
	return b, cpu.NewEngine(b, mc), mc
}

func step(t *testing.T, eng *cpu.Engine) *execution.Snapshot {
	t.Helper()
	sn, err := eng.Step()
	test.ExpectedSuccess(t, err)
	return sn
}

func TestImmediateLoad(t *testing.T) {
	_, eng, mc := newMachine(t, []uint8{0x3e, 0x55}) // LD A,$55

	sn := step(t, eng)

	test.Equate(t, mc.A, 0x55)
	test.Equate(t, sn.PC, 0x0000)
	test.Equate(t, sn.Registers["PC"], 0x0002)
	test.Equate(t, sn.Registers["A"], 0x55)
	test.Equate(t, sn.Operation.Mnemonic, "LD")
	test.Equate(t, sn.Operation.Length, 2)
	test.Equate(t, sn.Operation.Cycles, 7)
	test.Equate(t, sn.Metadata.TotalCycles, 7)

	// opcode fetch and operand fetch
	test.Equate(t, len(sn.BusActivity), 2)
	test.Equate(t, sn.BusActivity[0].Address, 0x0000)
	test.Equate(t, sn.BusActivity[1].Address, 0x0001)
}

func TestDeterminism(t *testing.T) {
	program := []uint8{
		0x3e, 0x10, // LD A,$10
		0x06, 0x22, // LD B,$22
		0x80, // ADD A,B
	}

	run := func() []execution.Snapshot {
		_, eng, _ := newMachine(t, program)
		var s []execution.Snapshot
		for i := 0; i < 3; i++ {
			s = append(s, *step(t, eng))
		}
		return s
	}

	a := run()
	b := run()
	for i := range a {
		test.Equate(t, a[i].String(), b[i].String())
		test.Equate(t, a[i].RegisterString(), b[i].RegisterString())
		test.Equate(t, a[i].FlagString(), b[i].FlagString())
		test.Equate(t, len(a[i].BusActivity), len(b[i].BusActivity))
	}
}

func TestAddFlags(t *testing.T) {
	// $7f + $01 overflows into the sign bit
	_, eng, _ := newMachine(t, []uint8{
		0x3e, 0x7f, // LD A,$7F
		0x06, 0x01, // LD B,$01
		0x80, // ADD A,B
	})

	step(t, eng)
	step(t, eng)
	sn := step(t, eng)

	test.Equate(t, sn.Registers["A"], 0x80)
	test.Equate(t, sn.Flags["S"], true)
	test.Equate(t, sn.Flags["Z"], false)
	test.Equate(t, sn.Flags["H"], true)
	test.Equate(t, sn.Flags["PV"], true)
	test.Equate(t, sn.Flags["N"], false)
	test.Equate(t, sn.Flags["C"], false)
}

func TestSubCarry(t *testing.T) {
	// $10 - $20 borrows
	_, eng, _ := newMachine(t, []uint8{
		0x3e, 0x10, // LD A,$10
		0x06, 0x20, // LD B,$20
		0x90, // SUB B
	})

	step(t, eng)
	step(t, eng)
	sn := step(t, eng)

	test.Equate(t, sn.Registers["A"], 0xf0)
	test.Equate(t, sn.Flags["C"], true)
	test.Equate(t, sn.Flags["N"], true)
	test.Equate(t, sn.Flags["S"], true)
}

func TestIncPreservesCarry(t *testing.T) {
	_, eng, mc := newMachine(t, []uint8{
		0x3e, 0xff, // LD A,$FF
		0x06, 0x01, // LD B,$01
		0x80, // ADD A,B (sets carry)
		0x04, // INC B
	})

	for i := 0; i < 4; i++ {
		step(t, eng)
	}

	test.Equate(t, mc.B, 0x02)
	test.Equate(t, mc.FlagMap()["C"], true)
}

func TestLogicParity(t *testing.T) {
	// $f0 AND $33 = $30: two set bits, even parity
	_, eng, _ := newMachine(t, []uint8{
		0x3e, 0xf0, // LD A,$F0
		0x06, 0x33, // LD B,$33
		0xa0, // AND B
	})

	step(t, eng)
	step(t, eng)
	sn := step(t, eng)

	test.Equate(t, sn.Registers["A"], 0x30)
	test.Equate(t, sn.Flags["PV"], true)
	test.Equate(t, sn.Flags["H"], true)
	test.Equate(t, sn.Flags["C"], false)
}

func TestPushPop(t *testing.T) {
	_, eng, mc := newMachine(t, []uint8{
		0x31, 0x00, 0x90, // LD SP,$9000
		0x01, 0x34, 0x12, // LD BC,$1234
		0xc5, // PUSH BC
		0xd1, // POP DE
	})

	step(t, eng)
	step(t, eng)

	sn := step(t, eng) // PUSH BC
	test.Equate(t, mc.SP, 0x8ffe)

	// high byte first
	test.Equate(t, len(sn.BusActivity), 3)
	test.Equate(t, sn.BusActivity[1].Address, 0x8fff)
	test.Equate(t, sn.BusActivity[1].Data, 0x12)
	test.Equate(t, sn.BusActivity[2].Address, 0x8ffe)
	test.Equate(t, sn.BusActivity[2].Data, 0x34)

	step(t, eng) // POP DE
	test.Equate(t, mc.D, 0x12)
	test.Equate(t, mc.E, 0x34)
	test.Equate(t, mc.SP, 0x9000)
}

func TestCallRet(t *testing.T) {
	program := []uint8{
		0x31, 0x00, 0x90, // 0000: LD SP,$9000
		0xcd, 0x00, 0x10, // 0003: CALL $1000
		0x00, // 0006: NOP
	}
	b, eng, mc := newMachine(t, program)
	test.ExpectedSuccess(t, b.Load(0x1000, 0xc9)) // RET

	step(t, eng)
	sn := step(t, eng) // CALL
	test.Equate(t, mc.PC, 0x1000)
	test.Equate(t, mc.SP, 0x8ffe)
	test.Equate(t, sn.Operation.Mnemonic, "CALL")

	// the pushed return address points past the CALL
	v, err := b.Peek(0x8ffe)
	test.ExpectedSuccess(t, err)
	test.Equate(t, v, 0x06)

	step(t, eng) // RET
	test.Equate(t, mc.PC, 0x0006)
	test.Equate(t, mc.SP, 0x9000)
}

func TestRelativeJumps(t *testing.T) {
	_, eng, mc := newMachine(t, []uint8{
		0x18, 0x02, // 0000: JR $0004
		0x00, 0x00, // filler
		0x3e, 0x01, // 0004: LD A,$01
	})

	sn := step(t, eng)
	test.Equate(t, mc.PC, 0x0004)
	test.Equate(t, sn.Operation.Operands[0], "$0004")

	step(t, eng)
	test.Equate(t, mc.A, 0x01)
}

func TestConditionalBranchCycles(t *testing.T) {
	// Z is clear at reset so JR NZ is taken and JR Z is not
	_, eng, _ := newMachine(t, []uint8{
		0x28, 0x02, // 0000: JR Z,$0004 (not taken)
		0x20, 0x00, // 0002: JR NZ,$0004 (taken)
	})

	sn := step(t, eng)
	test.Equate(t, sn.Operation.Cycles, 7)
	test.Equate(t, sn.Registers["PC"], 0x0002)

	sn = step(t, eng)
	test.Equate(t, sn.Operation.Cycles, 12)
	test.Equate(t, sn.Registers["PC"], 0x0004)
}

func TestDJNZ(t *testing.T) {
	_, eng, mc := newMachine(t, []uint8{
		0x06, 0x03, // 0000: LD B,$03
		0x10, 0xfe, // 0002: DJNZ $0002
	})

	step(t, eng)

	sn := step(t, eng)
	test.Equate(t, mc.B, 0x02)
	test.Equate(t, mc.PC, 0x0002)
	test.Equate(t, sn.Operation.Cycles, 13)

	step(t, eng)
	sn = step(t, eng)
	test.Equate(t, mc.B, 0x00)
	test.Equate(t, mc.PC, 0x0004)
	test.Equate(t, sn.Operation.Cycles, 8)
}

func TestExchangeGroup(t *testing.T) {
	_, eng, mc := newMachine(t, []uint8{
		0x3e, 0x11, // LD A,$11
		0x08,       // EX AF,AF'
		0x3e, 0x22, // LD A,$22
		0x08, // EX AF,AF'
		0x21, 0x34, 0x12, // LD HL,$1234
		0xeb, // EX DE,HL
	})

	step(t, eng)
	step(t, eng)
	step(t, eng)
	step(t, eng)
	test.Equate(t, mc.A, 0x11)
	test.Equate(t, mc.A2, 0x22)

	step(t, eng)
	step(t, eng)
	test.Equate(t, mc.D, 0x12)
	test.Equate(t, mc.E, 0x34)
	test.Equate(t, mc.H, 0x00)
}

func TestBitManipulation(t *testing.T) {
	_, eng, mc := newMachine(t, []uint8{
		0x06, 0x08, // LD B,$08
		0xcb, 0x58, // BIT 3,B
		0xcb, 0x98, // RES 3,B
		0xcb, 0xc0, // SET 0,B
	})

	step(t, eng)

	sn := step(t, eng) // BIT 3,B: bit is set
	test.Equate(t, sn.Flags["Z"], false)
	test.Equate(t, sn.Flags["H"], true)
	test.Equate(t, sn.Operation.Mnemonic, "BIT")
	test.Equate(t, len(sn.Operation.OpCode), 2)

	step(t, eng) // RES 3,B
	test.Equate(t, mc.B, 0x00)

	step(t, eng) // SET 0,B
	test.Equate(t, mc.B, 0x01)
}

func TestRotate(t *testing.T) {
	_, eng, mc := newMachine(t, []uint8{
		0x3e, 0x81, // LD A,$81
		0xcb, 0x07, // RLC A
	})

	step(t, eng)
	sn := step(t, eng)

	test.Equate(t, mc.A, 0x03)
	test.Equate(t, sn.Flags["C"], true)
	test.Equate(t, sn.Operation.Mnemonic, "RLC")
}

func TestBlockTransfer(t *testing.T) {
	b, eng, mc := newMachine(t, []uint8{
		0x21, 0x00, 0x20, // LD HL,$2000
		0x11, 0x00, 0x30, // LD DE,$3000
		0x01, 0x03, 0x00, // LD BC,$0003
		0xed, 0xb0, // LDIR
	})
	for i, v := range []uint8{0xaa, 0xbb, 0xcc} {
		test.ExpectedSuccess(t, b.Load(0x2000+uint16(i), v))
	}

	step(t, eng)
	step(t, eng)
	step(t, eng)

	// first iteration transfers one byte and rewinds the program counter
	sn := step(t, eng)
	test.Equate(t, mc.PC, 0x0009)
	test.Equate(t, sn.Operation.Cycles, 21)
	v, err := b.Peek(0x3000)
	test.ExpectedSuccess(t, err)
	test.Equate(t, v, 0xaa)

	step(t, eng)

	// final iteration is cheaper and falls through
	sn = step(t, eng)
	test.Equate(t, mc.PC, 0x000b)
	test.Equate(t, sn.Operation.Cycles, 16)
	test.Equate(t, sn.Flags["PV"], false)

	for i, want := range []uint8{0xaa, 0xbb, 0xcc} {
		v, err := b.Peek(0x3000 + uint16(i))
		test.ExpectedSuccess(t, err)
		test.Equate(t, v, want)
	}
}

func TestHaltSuspension(t *testing.T) {
	_, eng, mc := newMachine(t, []uint8{0x76}) // HALT

	sn := step(t, eng)
	test.Equate(t, sn.Operation.Mnemonic, "HALT")
	test.Equate(t, mc.Halted, true)
	test.Equate(t, mc.PC, 0x0001)

	// every further step records a suspended HALT with no bus activity
	sn = step(t, eng)
	test.Equate(t, sn.Operation.Length, 0)
	test.Equate(t, sn.Operation.Cycles, 4)
	test.Equate(t, len(sn.BusActivity), 0)
	test.Equate(t, mc.PC, 0x0001)
	test.Equate(t, sn.Metadata.TotalCycles, 8)
}

func TestIndexedLoad(t *testing.T) {
	b, eng, mc := newMachine(t, []uint8{
		0xdd, 0x21, 0x00, 0x20, // LD IX,$2000
		0xdd, 0x7e, 0x05, // LD A,(IX+$05)
		0xfd, 0x21, 0x10, 0x20, // LD IY,$2010
		0xfd, 0x70, 0xfe, // LD (IY-$02),B
	})
	test.ExpectedSuccess(t, b.Load(0x2005, 0x99))

	step(t, eng)
	sn := step(t, eng)
	test.Equate(t, mc.A, 0x99)
	test.Equate(t, sn.Operation.EffectiveAddressValid, true)
	test.Equate(t, sn.Operation.EffectiveAddress, 0x2005)
	test.Equate(t, sn.Operation.Operands[1], "(IX+$05)")

	step(t, eng)
	step(t, eng)
	v, err := b.Peek(0x200e)
	test.ExpectedSuccess(t, err)
	test.Equate(t, v, 0x00) // B is zero
}

func TestInterruptControl(t *testing.T) {
	_, eng, mc := newMachine(t, []uint8{
		0xfb,       // EI
		0xed, 0x56, // IM 1
		0xf3, // DI
	})

	step(t, eng)
	test.Equate(t, mc.IFF1, true)
	test.Equate(t, mc.IFF2, true)

	step(t, eng)
	test.Equate(t, mc.IM, 1)

	step(t, eng)
	test.Equate(t, mc.IFF1, false)
}

func TestIOInstructions(t *testing.T) {
	b, eng, mc := newMachine(t, []uint8{
		0x3e, 0x12, // LD A,$12
		0xd3, 0x40, // OUT ($40),A
		0xdb, 0x40, // IN A,($40)
	})
	test.ExpectedSuccess(t, b.RegisterIODevice(0x0000, 0xffff, "ports", bus.NewRAM(0x10000)))

	step(t, eng)

	sn := step(t, eng)
	test.Equate(t, len(sn.BusActivity), 3)
	test.Equate(t, sn.BusActivity[2].Kind == bus.IOWrite, true)

	// the full port address is A on the high lines
	test.Equate(t, sn.BusActivity[2].Address, 0x1240)

	step(t, eng)
	test.Equate(t, mc.A, 0x12)
}

func TestUnsupportedOpcode(t *testing.T) {
	_, eng, _ := newMachine(t, []uint8{0x27}) // DAA is not implemented

	_, err := eng.Step()
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, cpu.UnsupportedOpcode))
}

func TestDecodeLengthInvariant(t *testing.T) {
	b := bus.NewBus()
	test.ExpectedSuccess(t, b.RegisterDevice(0x0000, 0xffff, "ram", bus.NewRAM(0x10000)))
	mc := z80.NewZ80(b)

	r := bus.PeekReader{Bus: b}
	for opcode := 0; opcode < 0x100; opcode++ {
		op, err := mc.Decode(r, uint8(opcode), 0x0000)
		if err != nil {
			continue
		}
		test.Equate(t, op.Length, len(op.OpCode)+len(op.OperandBytes))
	}
}
