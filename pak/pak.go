package pak

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

const (
	romBankSize = 0x4000 // 16 KiB
	ramBankSize = 0x2000 // 8 KiB
)

// Pak owns a cartridge's raw ROM/RAM bytes for its entire lifetime and
// exposes bank-switched views of them to the memory map. See
// spec.md §3 "Pak state" and §4.5.
type Pak struct {
	path     string
	savePath string

	rom []byte
	ram []byte

	header *header

	kind    Kind
	battery bool
	dirty   bool

	romBankCount int
	ramBankCount int
	romBankCurr  int
	ramBankCurr  int
	ramEnabled   bool

	// MBC1-specific banking-mode register; harmless for other kinds.
	mbc1Mode uint8

	// MBC3 RTC registers (latched, never advanced — see Non-goals).
	rtc [5]uint8

	log      *slog.Logger
	warnOnce sync.Once
}

// Load reads a ROM file from disk, decodes its header, allocates
// ROM/RAM storage, and restores battery-backed RAM from the
// conventional "<rom-path>.sav" sibling file if one exists.
func Load(path string, log *slog.Logger) (*Pak, error) {
	if log == nil {
		log = slog.Default()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pak: couldn't open ROM file %q: %w", path, err)
	}

	padded := raw
	if len(padded) < headerSize {
		padded = make([]byte, headerSize)
		copy(padded, raw)
		for i := len(raw); i < headerSize; i++ {
			padded[i] = 0xFF
		}
	}

	hdr, err := parseHeader(padded)
	if err != nil {
		return nil, fmt.Errorf("pak: %w", err)
	}
	if hdr.logoMismatch > 0 {
		log.Warn("nintendo logo mismatch", "mismatched_bytes", hdr.logoMismatch, "path", path)
	}

	info, err := decodePakType(hdr.pakType)
	if err != nil {
		return nil, fmt.Errorf("pak: %w", err)
	}

	romBanks, err := romBankCount(hdr.romSizeCode)
	if err != nil {
		return nil, fmt.Errorf("pak: %w", err)
	}
	ramBanks, err := ramBankCount(hdr.ramSizeCode)
	if err != nil {
		return nil, fmt.Errorf("pak: %w", err)
	}

	romWant := romBanks * romBankSize
	rom := make([]byte, romWant)
	n := copy(rom, raw)
	for i := n; i < romWant; i++ {
		rom[i] = 0xFF
	}

	ram := make([]byte, ramBanks*ramBankSize)

	// The controllers in mbcDispatch gate external RAM behind their
	// RAM-enable register; without one the RAM window is always open.
	_, gated := mbcDispatch[info.kind]

	p := &Pak{
		path:         path,
		savePath:     path + ".sav",
		rom:          rom,
		ram:          ram,
		header:       hdr,
		kind:         info.kind,
		battery:      info.battery,
		romBankCount: romBanks,
		ramBankCount: ramBanks,
		romBankCurr:  1,
		ramBankCurr:  0,
		ramEnabled:   info.kind == MBCNone || !gated,
		log:          log,
	}

	if p.battery && len(p.ram) > 0 {
		if saved, err := os.ReadFile(p.savePath); err == nil {
			copy(p.ram, saved)
		}
	}

	log.Info("pak loaded", "title", hdr.title, "mbc", p.kind, "rom_banks", romBanks, "ram_banks", ramBanks, "battery", p.battery)

	return p, nil
}

func (p *Pak) warnUnsupportedOnce() {
	p.warnOnce.Do(func() {
		p.log.Warn("unsupported MBC kind; treating as no-MBC pass-through", "mbc", p.kind)
	})
}

// Kind returns the cartridge's memory-bank-controller identifier.
func (p *Pak) Kind() Kind { return p.kind }

// Title returns the cartridge's display title (header bytes 0x0134-0x0143).
func (p *Pak) Title() string { return p.header.title }

// CGBFlag returns the raw CGB-compatibility byte (0x0143).
func (p *Pak) CGBFlag() uint8 { return p.header.cgbFlag }

// HasBattery reports whether the cartridge persists RAM across power cycles.
func (p *Pak) HasBattery() bool { return p.battery }

// Dirty reports whether RAM has been written since the last Persist.
func (p *Pak) Dirty() bool { return p.dirty }

// WriteROM forwards a CPU write targeting 0x0000-0x7FFF to this
// cartridge's MBC bank-register logic.
func (p *Pak) WriteROM(addr uint16, val uint8) {
	rom, _ := dispatchFor(p.kind)
	rom(p, addr, val)
	p.clampBanks()
}

// WriteRAM forwards a CPU write targeting 0xA000-0xBFFF to this
// cartridge's MBC RAM-write logic.
func (p *Pak) WriteRAM(addr uint16, val uint8) {
	_, ram := dispatchFor(p.kind)
	ram(p, addr, val)
}

func (p *Pak) clampBanks() {
	if p.romBankCount > 0 {
		p.romBankCurr %= p.romBankCount
	}
	if p.kind == MBC3 {
		// MBC3 stores an RTC register selector (0x08-0x0C) in
		// ramBankCurr as well as plain bank indices; only RAM
		// writes (ramWriteMBC3) interpret it, so it is never
		// wrapped here.
		return
	}
	max := 1
	if p.ramBankCount > 0 {
		max = p.ramBankCount
	}
	if p.ramBankCurr >= max {
		p.ramBankCurr %= max
	}
}

func (p *Pak) romBankOffset() int {
	return p.romBankCurr * romBankSize
}

func (p *Pak) ramBankOffset() int {
	return p.ramBankCurr * ramBankSize
}

// ROMBank0 returns the fixed bank (always bank 0), mapped at 0x0000-0x3FFF.
func (p *Pak) ROMBank0() []byte {
	return p.rom[:romBankSize]
}

// ROMBankCurrent returns the switchable bank, mapped at 0x4000-0x7FFF.
func (p *Pak) ROMBankCurrent() []byte {
	off := p.romBankOffset()
	return p.rom[off : off+romBankSize]
}

// RAMBankCurrent returns the switchable external-RAM bank, mapped at
// 0xA000-0xBFFF, or nil when RAM is absent or disabled.
func (p *Pak) RAMBankCurrent() []byte {
	if !p.ramEnabled || len(p.ram) == 0 {
		return nil
	}
	off := p.ramBankOffset()
	if off < 0 || off >= len(p.ram) {
		return nil
	}
	end := off + ramBankSize
	if end > len(p.ram) {
		end = len(p.ram)
	}
	return p.ram[off:end]
}

// Persist writes external RAM to the cartridge's save file iff it is
// battery-backed and dirty. Called on clean shutdown per spec.md §6.
func (p *Pak) Persist() error {
	if !p.battery || !p.dirty {
		return nil
	}
	if err := os.WriteFile(p.savePath, p.ram, 0o644); err != nil {
		return fmt.Errorf("pak: couldn't persist save RAM to %q: %w", p.savePath, err)
	}
	p.dirty = false
	return nil
}
