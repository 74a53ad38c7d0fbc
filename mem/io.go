package mem

// writeIO applies the per-register write policy named in spec.md
// §4.3 for addresses 0xFF00-0xFFFF. Registers with no special policy
// (most of the APU's NRxx/WAVE window, unused ports) fall through to
// a plain store so their last-written value reads back, matching
// real hardware's open-bus-free behavior for implemented registers.
func (m *Memory) writeIO(addr uint16, val uint8) {
	switch addr {
	case JOYP:
		m.bytes[JOYP] = val & 0x30
	case DIV:
		m.bytes[DIV] = 0
		if m.sch != nil {
			m.sch.OnDivReset()
		}
	case TIMA:
		m.bytes[TIMA] = val
	case TMA:
		m.bytes[TMA] = val
	case TAC:
		old := m.bytes[TAC]
		if m.sch != nil {
			m.sch.OnTacUpdate(old, val)
		}
		m.bytes[TAC] = val & 0x07
	case IF:
		m.bytes[IF] = val & 0x1F
	case IEAddr:
		m.bytes[IEAddr] = val & 0x1F
	case LCDC:
		old := m.bytes[LCDC]
		m.bytes[LCDC] = val
		if m.sch != nil {
			m.sch.OnLcdcUpdate(old, val)
		}
	case STAT:
		// Bits 0-2 are read-only (mode + coincidence flag); only the
		// interrupt-source enable bits 3-6 are writable.
		m.bytes[STAT] = (m.bytes[STAT] & 0x07) | (val & 0x78)
		m.recomputeStatLine()
	case LY:
		// Read-only; writes are ignored.
	case LYC:
		m.bytes[LYC] = val
		m.compareLYC()
	case DMA:
		m.runOAMDMA(val)
	case SB:
		m.bytes[SB] = val
	case SC:
		m.bytes[SC] = val & 0x83
	case NR10:
		m.bytes[NR10] = val & 0x7F
	case NR11, NR12, NR13,
		NR21, NR22, NR23,
		NR31, NR33,
		NR42, NR43,
		NR50, NR51:
		m.bytes[addr] = val
	case NR14, NR24, NR34:
		m.bytes[addr] = val & 0xC7
	case NR30:
		m.bytes[NR30] = val & 0x80
	case NR32:
		m.bytes[NR32] = val & 0x60
	case NR41:
		m.bytes[NR41] = val & 0x3F
	case NR44:
		m.bytes[NR44] = val & 0xC0
	case NR52:
		old := m.bytes[NR52]
		m.bytes[NR52] = (old & 0x0F) | (val & 0x80)
		if old&0x80 != 0 && val&0x80 == 0 {
			m.disableAudio()
		}
	case BGP, OBP0, OBP1:
		m.bytes[addr] = val
	case SCY, SCX, WY, WX:
		m.bytes[addr] = val
	case NOBT:
		m.bytes[NOBT] = val
	default:
		if addr >= WAV0 && addr <= WAVF {
			m.bytes[addr] = val
			return
		}
		m.bytes[addr] = val
	}
}

// disableAudio implements NR52's clearing side effect (spec.md §4.3):
// clearing bit 7 wipes every channel register and wave RAM.
func (m *Memory) disableAudio() {
	for addr := uint16(NR10); addr <= NR51; addr++ {
		m.bytes[addr] = 0
	}
	for addr := uint16(WAV0); addr <= WAVF; addr++ {
		m.bytes[addr] = 0
	}
}

// runOAMDMA copies 160 bytes from src*0x100 into OAM, the one
// instantaneous (non-cycle-accurate) side effect of an otherwise
// timed transfer; see spec.md §4.3 Non-goals on DMA timing.
func (m *Memory) runOAMDMA(src uint8) {
	if src > 0xDF {
		src = 0xDF
	}
	m.dmaValue = src
	m.bytes[DMA] = src
	base := uint16(src) << 8
	for i := uint16(0); i < 160; i++ {
		m.bytes[OAMStart+i] = m.Read8(base + i)
	}
}
