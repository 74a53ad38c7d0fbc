package pak

import "fmt"

// Kind identifies which memory-bank controller a cartridge uses.
// Mirrors the original source's mbc_ids enum
// (_examples/original_source/incl/gb/pak/mbc.h).
type Kind int8

const (
	MBCUnknown Kind = iota - 1
	MBCNone
	MBC1
	MBC2
	MBCMMM01
	MBC3
	MBC5
	MBC6
	MBC7
	MBCPocketCamera
	MBCTAMA5
	MBCHuC3
	MBCHuC1
)

func (k Kind) String() string {
	switch k {
	case MBCNone:
		return "NONE"
	case MBC1:
		return "MBC1"
	case MBC2:
		return "MBC2"
	case MBCMMM01:
		return "MMM01"
	case MBC3:
		return "MBC3"
	case MBC5:
		return "MBC5"
	case MBC6:
		return "MBC6"
	case MBC7:
		return "MBC7"
	case MBCPocketCamera:
		return "POCKETCAM"
	case MBCTAMA5:
		return "TAMA5"
	case MBCHuC3:
		return "HuC3"
	case MBCHuC1:
		return "HuC1"
	default:
		return "UNKNOWN"
	}
}

// pakTypeInfo is what a single byte 0x0147 value decodes to.
type pakTypeInfo struct {
	kind    Kind
	battery bool
}

// pakTypeTable maps byte 0x0147 to {MBC id, has_battery}.
// https://gbdev.io/pandocs/The_Cartridge_Header.html#0147--cartridge-type
var pakTypeTable = map[uint8]pakTypeInfo{
	0x00: {MBCNone, false},
	0x01: {MBC1, false},
	0x02: {MBC1, false},
	0x03: {MBC1, true},
	0x05: {MBC2, false},
	0x06: {MBC2, true},
	0x08: {MBCNone, false},
	0x09: {MBCNone, true},
	0x0B: {MBCMMM01, false},
	0x0C: {MBCMMM01, false},
	0x0D: {MBCMMM01, true},
	0x0F: {MBC3, true}, // +TIMER
	0x10: {MBC3, true}, // +TIMER+RAM
	0x11: {MBC3, false},
	0x12: {MBC3, false},
	0x13: {MBC3, true},
	0x19: {MBC5, false},
	0x1A: {MBC5, false},
	0x1B: {MBC5, true},
	0x1C: {MBC5, false}, // +RUMBLE
	0x1D: {MBC5, false}, // +RUMBLE+RAM
	0x1E: {MBC5, true},  // +RUMBLE+RAM+BATTERY
	0x20: {MBC6, false},
	0x22: {MBC7, true},
	0xFC: {MBCPocketCamera, false},
	0xFD: {MBCTAMA5, false},
	0xFE: {MBCHuC3, false},
	0xFF: {MBCHuC1, true},
}

func decodePakType(b uint8) (pakTypeInfo, error) {
	info, ok := pakTypeTable[b]
	if !ok {
		return pakTypeInfo{}, fmt.Errorf("pak: unknown pak_type byte 0x%02x", b)
	}
	return info, nil
}

// romWriteFunc updates a Pak's bank-select registers in response to a
// CPU write into ROM address space (0x0000-0x7FFF). It never mutates
// the in-memory ROM image.
type romWriteFunc func(p *Pak, addr uint16, val uint8)

// ramWriteFunc services a CPU write into external-RAM address space
// (0xA000-0xBFFF): updates the pak's RAM backing store and marks it
// dirty when a RAM bank is actually present.
type ramWriteFunc func(p *Pak, addr uint16, val uint8)

// mbcDispatch is the table of {rom_write, ram_write} function
// references indexed by mbc_id, per spec.md §4.5.
var mbcDispatch = map[Kind]struct {
	rom romWriteFunc
	ram ramWriteFunc
}{
	MBCNone: {romWriteNone, ramWriteCommon},
	MBC1:    {romWriteMBC1, ramWriteMBC1},
	MBC3:    {romWriteMBC3, ramWriteMBC3},
	MBC5:    {romWriteMBC5, ramWriteCommon},
}

func dispatchFor(k Kind) (romWriteFunc, ramWriteFunc) {
	if d, ok := mbcDispatch[k]; ok {
		return d.rom, d.ram
	}
	return romWriteUnsupported, ramWriteCommon
}

// ramWriteCommon is shared by controllers with plain, unbanked-enable
// semantics: write through to the current RAM bank's backing bytes and
// mark the pak dirty. The memory map's visible window is refreshed by
// the caller (package mem) after the write returns.
func ramWriteCommon(p *Pak, addr uint16, val uint8) {
	if !p.ramEnabled || len(p.ram) == 0 {
		return
	}
	off := p.ramBankOffset() + int(addr-0xA000)
	if off < 0 || off >= len(p.ram) {
		return
	}
	p.ram[off] = val
	if p.battery {
		p.dirty = true
	}
}

func romWriteNone(p *Pak, addr uint16, val uint8) {
	// No MBC: ROM writes are discarded entirely.
}

func romWriteUnsupported(p *Pak, addr uint16, val uint8) {
	p.warnUnsupportedOnce()
}
