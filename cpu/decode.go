package cpu

// Opcode bytes that do not exist on the SM83; spec.md §4.8 requires
// the disassembler report these as INVALID. The interpreter treats
// them as a documented EmulatedSoftwareError (spec.md §7): execute as
// a 1 M-cycle NOP and log a warning each time one is executed.
var invalidOpcodes = map[uint8]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true,
	0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
}

var aluOps = [8]func(*CPU, uint8){
	(*CPU).add8,
	(*CPU).adc8,
	func(cp *CPU, v uint8) { cp.subA(v) },
	(*CPU).sbc8,
	(*CPU).and8,
	(*CPU).xor8,
	(*CPU).or8,
	(*CPU).cp8,
}

func (cp *CPU) fetch8() uint8 {
	v := cp.bus.Read8(cp.pc)
	cp.pc++
	return v
}

func (cp *CPU) fetch16() uint16 {
	v := cp.bus.Read16(cp.pc)
	cp.pc += 2
	return v
}

// step executes exactly one instruction and advances the clock by its
// M-cycle cost. While HALTed it executes nothing: it waits one M-cycle,
// or none when the halt exits at once on a pending interrupt with IME
// clear.
func (cp *CPU) step() {
	if cp.state&StateHalted != 0 {
		cp.stepHalted()
		return
	}

	op := cp.fetch8()
	if invalidOpcodes[op] {
		cp.log.Warn("invalid opcode executed", "opcode", op, "pc", cp.pc-1)
		cp.clock.Advance(1)
		return
	}

	cycles := cp.execute(op)
	cp.clock.Advance(int64(cycles))
}

func (cp *CPU) stepHalted() {
	if !cp.bus.IME() && cp.bus.PendingInterrupts() != 0 {
		cp.state &^= StateHalted
		return
	}
	cp.clock.Advance(1)
	if cp.bus.PendingInterrupts() != 0 {
		cp.state &^= StateHalted
	}
}

// serviceInterrupt dispatches the highest-priority pending ISR if IME
// is set, per spec.md §4.1. Returns true if a V-blank ISR was
// entered, the signal interpretFrame waits for.
func (cp *CPU) serviceInterrupt() bool {
	if !cp.bus.IME() {
		return false
	}
	pending := cp.bus.PendingInterrupts()
	if pending == 0 {
		return false
	}

	cp.state &^= StateHalted
	cp.bus.SetIME(false)
	cp.clock.Advance(2) // two internal delay cycles preceding the PC push
	cp.push16(cp.pc)
	cp.clock.Advance(2)

	pending = cp.bus.PendingInterrupts()
	for _, v := range vectors {
		if pending&v.bit != 0 {
			cp.bus.ClearIF(v.bit)
			cp.pc = v.pc
			cp.clock.Advance(1)
			return v.pc == vecVBlank
		}
	}
	// No bit still pending (spurious re-sample): fall back to NOP-ish
	// cost; should not happen under normal operation.
	cp.clock.Advance(1)
	return false
}

// InterpretFrame runs instructions, servicing interrupts between each
// one, until a V-blank ISR has been entered, per spec.md §4.1.
func (cp *CPU) InterpretFrame() {
	for {
		if cp.serviceInterrupt() {
			return
		}
		cp.step()
	}
}

// execute dispatches a fetched unprefixed opcode via the standard
// (x,y,z,p,q) bit decomposition shared with CB-prefixed opcodes (see
// cb.go), and returns its M-cycle cost.
func (cp *CPU) execute(op uint8) int {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		return cp.executeX0(y, z, q, p)
	case 1:
		return cp.executeLD(y, z)
	case 2:
		return cp.executeALU(y, z)
	default:
		return cp.executeX3(y, z, q, p)
	}
}

func (cp *CPU) executeX0(y, z, q, p uint8) int {
	switch z {
	case 0:
		switch y {
		case 0:
			return 1 // NOP
		case 1:
			addr := cp.fetch16()
			cp.bus.Write16(addr, cp.sp)
			return 5
		case 2:
			cp.fetch8() // STOP's mandatory trailing 0x00
			cp.state |= StateStopped
			return 1
		case 3:
			d := int8(cp.fetch8())
			cp.pc = uint16(int32(cp.pc) + int32(d))
			return 3
		default:
			d := int8(cp.fetch8())
			if cp.condition(y - 4) {
				cp.pc = uint16(int32(cp.pc) + int32(d))
				return 3
			}
			return 2
		}
	case 1:
		if q == 0 {
			cp.setRegister16(p, cp.fetch16())
			return 3
		}
		cp.addHL(cp.register16(p))
		return 2
	case 2:
		addr := cp.indirectAddr(p, q)
		if q == 0 {
			cp.bus.Write8(addr, cp.a)
		} else {
			cp.a = cp.bus.Read8(addr)
		}
		return 2
	case 3:
		if q == 0 {
			cp.setRegister16(p, cp.register16(p)+1)
		} else {
			cp.setRegister16(p, cp.register16(p)-1)
		}
		return 2
	case 4:
		cp.setRegister8(y, cp.inc8(cp.register8(y)))
		if y == 6 {
			return 3
		}
		return 1
	case 5:
		cp.setRegister8(y, cp.dec8(cp.register8(y)))
		if y == 6 {
			return 3
		}
		return 1
	case 6:
		cp.setRegister8(y, cp.fetch8())
		if y == 6 {
			return 3
		}
		return 2
	default: // z == 7
		switch y {
		case 0:
			cp.a = cp.rlc(cp.a)
			cp.fZ = false
		case 1:
			cp.a = cp.rrc(cp.a)
			cp.fZ = false
		case 2:
			cp.a = cp.rl(cp.a)
			cp.fZ = false
		case 3:
			cp.a = cp.rr(cp.a)
			cp.fZ = false
		case 4:
			cp.daa()
		case 5:
			cp.cpl()
		case 6:
			cp.scf()
		case 7:
			cp.ccf()
		}
		return 1
	}
}

const (
	opDI = 0xF3
	opEI = 0xFB
)

// executeEI implements the peek-ahead delayed-EI policy of spec.md
// §4.1: EI's effect on IME is visible only after the instruction
// following it has executed, except when that instruction is itself
// DI or EI.
func (cp *CPU) executeEI() int {
	peek := cp.bus.Read8(cp.pc)
	switch peek {
	case opDI:
		cp.pc++
		return 2
	case opEI:
		cp.pc++
		cp.bus.SetIME(true)
		return 2
	default:
		op2 := cp.fetch8()
		var cost int
		if invalidOpcodes[op2] {
			cp.log.Warn("invalid opcode executed", "opcode", op2, "pc", cp.pc-1)
			cost = 1
		} else {
			cost = cp.execute(op2)
		}
		cp.bus.SetIME(true)
		return 1 + cost
	}
}

// indirectAddr resolves the {(BC),(DE),(HL+),(HL-)} address table
// used by the z==2 block of x==0.
func (cp *CPU) indirectAddr(p, q uint8) uint16 {
	switch p {
	case 0:
		return cp.bc()
	case 1:
		return cp.de()
	case 2:
		addr := cp.hl()
		cp.setHL(addr + 1)
		return addr
	default:
		addr := cp.hl()
		cp.setHL(addr - 1)
		return addr
	}
}

func (cp *CPU) executeLD(y, z uint8) int {
	if y == 6 && z == 6 {
		cp.state |= StateHalted
		return 1
	}
	cp.setRegister8(y, cp.register8(z))
	if y == 6 || z == 6 {
		return 2
	}
	return 1
}

func (cp *CPU) executeALU(y, z uint8) int {
	aluOps[y](cp, cp.register8(z))
	if z == 6 {
		return 2
	}
	return 1
}

func (cp *CPU) executeX3(y, z, q, p uint8) int {
	switch z {
	case 0:
		switch {
		case y <= 3:
			if cp.condition(y) {
				cp.pc = cp.pop16()
				return 5
			}
			return 2
		case y == 4:
			n := cp.fetch8()
			cp.bus.Write8(0xFF00+uint16(n), cp.a)
			return 3
		case y == 5:
			d := int8(cp.fetch8())
			cp.sp = cp.addSPSigned(d)
			return 4
		case y == 6:
			n := cp.fetch8()
			cp.a = cp.bus.Read8(0xFF00 + uint16(n))
			return 3
		default: // y == 7
			d := int8(cp.fetch8())
			cp.setHL(cp.addSPSigned(d))
			return 3
		}
	case 1:
		if q == 0 {
			cp.setRegister16Stack(p, cp.pop16())
			return 3
		}
		switch p {
		case 0:
			cp.pc = cp.pop16()
			return 4
		case 1:
			cp.pc = cp.pop16()
			cp.bus.SetIME(true)
			return 4
		case 2:
			cp.pc = cp.hl()
			return 1
		default:
			cp.sp = cp.hl()
			return 2
		}
	case 2:
		switch {
		case y <= 3:
			addr := cp.fetch16()
			if cp.condition(y) {
				cp.pc = addr
				return 4
			}
			return 3
		case y == 4:
			cp.bus.Write8(0xFF00+uint16(cp.c), cp.a)
			return 2
		case y == 5:
			addr := cp.fetch16()
			cp.bus.Write8(addr, cp.a)
			return 4
		case y == 6:
			cp.a = cp.bus.Read8(0xFF00 + uint16(cp.c))
			return 2
		default:
			addr := cp.fetch16()
			cp.a = cp.bus.Read8(addr)
			return 4
		}
	case 3:
		switch y {
		case 0:
			cp.pc = cp.fetch16()
			return 4
		case 1:
			return cp.executeCB(cp.fetch8())
		case 6:
			cp.bus.SetIME(false)
			return 1
		default: // y == 7
			return cp.executeEI()
		}
	case 4:
		addr := cp.fetch16()
		if y <= 3 && cp.condition(y) {
			cp.push16(cp.pc)
			cp.pc = addr
			return 6
		}
		return 3
	case 5:
		if q == 0 {
			cp.push16(cp.register16Stack(p))
			return 4
		}
		addr := cp.fetch16()
		cp.push16(cp.pc)
		cp.pc = addr
		return 6
	case 6:
		aluOps[y](cp, cp.fetch8())
		return 2
	default: // z == 7
		cp.push16(cp.pc)
		cp.pc = uint16(y) * 8
		return 4
	}
}
