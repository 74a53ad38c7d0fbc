package cpu

import "fmt"

// The accessors in this file exist for the debug REPL and tests
// outside the package; the interpreter itself never needs them.

// PC returns the current program counter.
func (cp *CPU) PC() uint16 { return cp.pc }

// SetPC overrides the program counter, used by the debug REPL's PC
// command and by Reset.
func (cp *CPU) SetPC(v uint16) { cp.pc = v }

// SP returns the current stack pointer.
func (cp *CPU) SP() uint16 { return cp.sp }

// State returns the current state bitfield.
func (cp *CPU) State() uint8 { return cp.state }

// Step executes exactly one instruction (or one M-cycle of HALT wait)
// and reports the scheduler time it consumed via clock.
func (cp *CPU) Step() { cp.step() }

// ServiceInterrupt dispatches a pending ISR if IME allows it, exposed
// for single-step debugging where the REPL wants the same ordering
// InterpretFrame uses.
func (cp *CPU) ServiceInterrupt() bool { return cp.serviceInterrupt() }

// Reset returns the CPU to its documented power-on state without
// touching bus/clock/log.
func (cp *CPU) Reset() {
	cp.a, cp.b, cp.c, cp.d, cp.e, cp.h, cp.l = 0x01, 0x00, 0x13, 0x00, 0xD8, 0x01, 0x4D
	cp.fZ, cp.fN, cp.fH, cp.fC = true, false, true, true
	cp.sp, cp.pc = 0xFFFE, 0x0100
	cp.state = StateRunning
}

func (cp *CPU) String() string {
	return fmt.Sprintf("A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X",
		cp.a, cp.packF(), cp.b, cp.c, cp.d, cp.e, cp.h, cp.l, cp.sp, cp.pc)
}
