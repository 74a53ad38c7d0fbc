package cpu

var rotOps = [8]func(*CPU, uint8) uint8{
	(*CPU).rlc,
	(*CPU).rrc,
	(*CPU).rl,
	(*CPU).rr,
	(*CPU).sla,
	(*CPU).sra,
	(*CPU).swap,
	(*CPU).srl,
}

// executeCB dispatches a 0xCB-prefixed opcode via the same
// (x,y,z) decomposition as the base table, per spec.md §4.1 and §9
// (CB prefix byte's own fetch cost is folded into the returned total).
func (cp *CPU) executeCB(op uint8) int {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7

	switch x {
	case 0:
		v := rotOps[y](cp, cp.register8(z))
		cp.fZ = v == 0
		cp.setRegister8(z, v)
		if z == 6 {
			return 4
		}
		return 2
	case 1:
		cp.bit(y, cp.register8(z))
		if z == 6 {
			return 3
		}
		return 2
	case 2:
		cp.setRegister8(z, cp.register8(z)&^(1<<y))
		if z == 6 {
			return 4
		}
		return 2
	default: // x == 3
		cp.setRegister8(z, cp.register8(z)|(1<<y))
		if z == 6 {
			return 4
		}
		return 2
	}
}
