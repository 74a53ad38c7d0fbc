// Package cpu implements the Game Boy's SM83 instruction interpreter:
// fetch/decode/execute, flag algebra, interrupt servicing, HALT, and
// delayed EI. See spec.md §4.1.
package cpu

import "log/slog"

// Bus is the narrow memory/interrupt surface the interpreter needs.
// Defined here (not imported from package mem) so cpu never depends
// on mem; mem.Memory satisfies this structurally.
type Bus interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)
	Read16(addr uint16) uint16
	Write16(addr uint16, val uint16)
	IME() bool
	SetIME(bool)
	PendingInterrupts() uint8
	ClearIF(bit uint8)
}

// Clock is the narrow scheduler surface the interpreter needs to
// advance per instruction.
type Clock interface {
	Advance(mCycles int64)
}

// CPU state bits, per spec.md §3.
const (
	StateRunning     = 0
	StateInterrupted = 1 << 0
	StateHalted      = 1 << 1
	StateStopped     = 1 << 2
	StateTimedOut    = 1 << 3
)

// Interrupt vector addresses, in dispatch-priority order.
const (
	vecVBlank = 0x40
	vecSTAT   = 0x48
	vecTimer  = 0x50
	vecSerial = 0x58
	vecJoypad = 0x60
)

var vectors = [5]struct {
	bit uint8
	pc  uint16
}{
	{1 << 0, vecVBlank},
	{1 << 1, vecSTAT},
	{1 << 2, vecTimer},
	{1 << 3, vecSerial},
	{1 << 4, vecJoypad},
}

// CPU holds the SM83 register file, flags, and dispatch state.
type CPU struct {
	a, b, c, d, e, h, l uint8
	fZ, fN, fH, fC      bool

	sp, pc uint16
	state  uint8

	bus   Bus
	clock Clock
	log   *slog.Logger

}

// New constructs a CPU in its documented DMG post-boot-ROM power-on
// state.
func New(bus Bus, clock Clock, log *slog.Logger) *CPU {
	if log == nil {
		log = slog.Default()
	}
	cp := &CPU{
		a: 0x01,
		b: 0x00, c: 0x13,
		d: 0x00, e: 0xD8,
		h: 0x01, l: 0x4D,
		sp: 0xFFFE, pc: 0x0100,
		bus: bus, clock: clock, log: log,
	}
	cp.fZ, cp.fN, cp.fH, cp.fC = true, false, true, true
	return cp
}
