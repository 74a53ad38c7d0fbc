package pak

import (
	"os"
	"path/filepath"
	"testing"
)

// buildROM synthesizes a header-valid cartridge image with romBanks
// 16 KiB banks, each bank's first byte set to the low byte of its own
// index so bank switching can be verified by inspecting
// ROMBankCurrent()[0].
func buildROM(t *testing.T, pakType, romSizeCode, ramSizeCode uint8, romBanks int) []byte {
	t.Helper()
	raw := make([]byte, romBanks*romBankSize)
	copy(raw[logoOffset:], nintendoLogo[:])
	copy(raw[titleOffset:], []byte("TESTROM"))
	raw[pakTypeOff] = pakType
	raw[romSizeOff] = romSizeCode
	raw[ramSizeOff] = ramSizeCode
	for b := 0; b < romBanks; b++ {
		raw[b*romBankSize] = byte(b)
	}
	return raw
}

func loadROM(t *testing.T, raw []byte) *Pak {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.gb")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("writing test ROM: %v", err)
	}
	p, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return p
}

func TestLoadDecodesHeaderAndKind(t *testing.T) {
	raw := buildROM(t, 0x00, 0x00, 0x00, 2) // MBCNone, 2 banks, no RAM
	p := loadROM(t, raw)

	if p.Kind() != MBCNone {
		t.Fatalf("Kind() = %v, want MBCNone", p.Kind())
	}
	if p.Title() != "TESTROM" {
		t.Fatalf("Title() = %q, want TESTROM", p.Title())
	}
	if p.HasBattery() {
		t.Fatal("HasBattery() = true, want false for pakType 0x00")
	}
}

func TestROMBank0IsAlwaysFixed(t *testing.T) {
	raw := buildROM(t, 0x01, 0x04, 0x00, 32) // MBC1, 32 banks
	p := loadROM(t, raw)
	p.WriteROM(0x2000, 5) // switch the windowed bank away from 0
	if got := p.ROMBank0()[0]; got != 0 {
		t.Fatalf("ROMBank0()[0] = %d, want 0 (fixed bank never switches)", got)
	}
}

func TestMBC1ROMBankSwitch(t *testing.T) {
	raw := buildROM(t, 0x01, 0x04, 0x00, 32) // MBC1, 32 banks
	p := loadROM(t, raw)
	p.WriteROM(0x2000, 5)
	if got := p.ROMBankCurrent()[0]; got != 5 {
		t.Fatalf("ROMBankCurrent()[0] = %d, want 5", got)
	}
}

func TestMBC1Bank0WriteRemapsToBank1(t *testing.T) {
	raw := buildROM(t, 0x01, 0x04, 0x00, 32)
	p := loadROM(t, raw)
	p.WriteROM(0x2000, 0) // selecting bank 0 in this register is the bank-1 quirk
	if got := p.ROMBankCurrent()[0]; got != 1 {
		t.Fatalf("ROMBankCurrent()[0] = %d, want 1 (bank-0 quirk)", got)
	}
}

func TestMBC1RAMBankingRequiresRAMEnable(t *testing.T) {
	raw := buildROM(t, 0x03, 0x00, 0x02, 2) // MBC1+RAM+BATTERY, 1 RAM bank
	p := loadROM(t, raw)
	p.WriteRAM(0xA000, 0x42) // RAM not yet enabled: must be dropped
	if got := p.RAMBankCurrent(); got != nil {
		t.Fatal("RAMBankCurrent() should be nil while RAM is disabled")
	}

	p.WriteROM(0x0000, 0x0A) // enable RAM
	p.WriteRAM(0xA000, 0x42)
	if got := p.RAMBankCurrent()[0]; got != 0x42 {
		t.Fatalf("RAMBankCurrent()[0] = %#x, want 0x42", got)
	}
}

func TestMBC3RTCSelectorDoesNotTouchRAM(t *testing.T) {
	raw := buildROM(t, 0x10, 0x00, 0x03, 2) // MBC3+TIMER+RAM+BATTERY, 4 RAM banks
	p := loadROM(t, raw)
	p.WriteROM(0x0000, 0x0A) // enable RAM/RTC
	p.WriteROM(0x4000, 0x01) // select RAM bank 1
	p.WriteRAM(0xA000, 0x11)
	if got := p.RAMBankCurrent()[0]; got != 0x11 {
		t.Fatalf("RAMBankCurrent()[0] = %#x, want 0x11", got)
	}

	p.WriteROM(0x4000, rtcSeconds) // switch selector into RTC register space
	p.WriteRAM(0xA000, 0x99)
	if p.RAMBankCurrent() != nil {
		t.Fatal("RAMBankCurrent() should be nil while the RTC selector is active")
	}
	if got := p.rtc[0]; got != 0x99 {
		t.Fatalf("rtc[seconds] = %#x, want 0x99", got)
	}
}

func TestMBC5NineBitROMBank(t *testing.T) {
	const bank = 0x101 // exercises the 9th bit, beyond MBC1's 5-bit window
	raw := buildROM(t, 0x19, 0x08, 0x00, bank+1)
	p := loadROM(t, raw)
	p.WriteROM(0x2000, 0x01) // low 8 bits
	p.WriteROM(0x3000, 0x01) // bit 8
	if got := p.ROMBankCurrent()[0]; got != byte(bank&0xFF) {
		t.Fatalf("ROMBankCurrent()[0] = %d, want %d", got, byte(bank&0xFF))
	}
	if p.romBankCurr != bank {
		t.Fatalf("romBankCurr = %#x, want %#x", p.romBankCurr, bank)
	}
}

func TestPersistSkipsNonBatteryCartridges(t *testing.T) {
	raw := buildROM(t, 0x01, 0x00, 0x02, 2) // MBC1, RAM, no battery
	p := loadROM(t, raw)
	p.WriteROM(0x0000, 0x0A)
	p.WriteRAM(0xA000, 0x7E)
	if err := p.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, err := os.Stat(p.savePath); err == nil {
		t.Fatal("expected no save file for a non-battery cartridge")
	}
}

func TestPersistAndReloadRoundTrip(t *testing.T) {
	raw := buildROM(t, 0x03, 0x00, 0x02, 2) // MBC1+RAM+BATTERY
	path := filepath.Join(t.TempDir(), "save.gb")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("writing test ROM: %v", err)
	}

	p, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p.WriteROM(0x0000, 0x0A)
	p.WriteRAM(0xA000, 0xAB)
	if !p.Dirty() {
		t.Fatal("expected Dirty() after a RAM write on a battery cartridge")
	}
	if err := p.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if p.Dirty() {
		t.Fatal("expected Dirty() to clear after Persist")
	}

	reloaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	reloaded.WriteROM(0x0000, 0x0A)
	if got := reloaded.RAMBankCurrent()[0]; got != 0xAB {
		t.Fatalf("reloaded RAM[0] = %#x, want 0xAB (persisted across Load)", got)
	}
}
