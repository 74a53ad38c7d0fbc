package mem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bdwalton/dmgo/pak"
)

var nintendoLogo = [0x30]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// newTestPak writes a minimal valid no-MBC ROM (2 banks, no RAM) to a
// temp file and loads it.
func newTestPak(t *testing.T) *pak.Pak {
	t.Helper()
	raw := make([]byte, 0x8000)
	copy(raw[0x0104:], nintendoLogo[:])
	raw[0x0147] = 0x00 // MBCNone
	raw[0x0148] = 0x00 // 2 ROM banks
	raw[0x0149] = 0x00 // no RAM

	path := filepath.Join(t.TempDir(), "test.gb")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("writing test ROM: %v", err)
	}
	p, err := pak.Load(path, nil)
	if err != nil {
		t.Fatalf("pak.Load: %v", err)
	}
	return p
}

func TestOAMDMACopiesFullRange(t *testing.T) {
	m := New(newTestPak(t), nil)
	for i := 0; i < 160; i++ {
		m.Write8(0xC000+uint16(i), uint8(i))
	}
	m.Write8(DMA, 0xC0)
	for i := 0; i < 160; i++ {
		if got := m.Read8(0xFE00 + uint16(i)); got != uint8(i) {
			t.Fatalf("OAM[%d] = %#x, want %#x", i, got, i)
		}
	}
}

func TestOAMDMAClampsSourceAbove0xDF(t *testing.T) {
	m := New(newTestPak(t), nil)
	for i := 0; i < 160; i++ {
		m.Write8(0xDF00+uint16(i), uint8(i+1))
	}
	m.Write8(DMA, 0xFF) // must clamp to 0xDF
	if got := m.Read8(DMA); got != 0xDF {
		t.Fatalf("expected stored DMA register clamped to 0xDF, got %#x", got)
	}
	if got := m.Read8(0xFE00); got != 1 {
		t.Fatalf("expected OAM[0]=1 from clamped source 0xDF00, got %#x", got)
	}
}

func TestEchoRAMMirrorsWRAM(t *testing.T) {
	m := New(newTestPak(t), nil)
	m.Write8(0xC050, 0x42)
	if got := m.Read8(0xE050); got != 0x42 {
		t.Fatalf("expected echo read to mirror WRAM write, got %#x", got)
	}
	m.Write8(0xE100, 0x99)
	if got := m.Read8(0xC100); got != 0x99 {
		t.Fatalf("expected WRAM read to mirror echo write, got %#x", got)
	}
}

func TestOAMWriteBlockedDuringModeTwoAndThree(t *testing.T) {
	m := New(newTestPak(t), nil)
	m.SetSTATMode(ModeOAM)
	m.Write8(0xFE10, 0xAB)
	if got := m.Read8(0xFE10); got == 0xAB {
		t.Fatal("expected OAM write to be dropped during OAM_SCAN")
	}
	m.SetSTATMode(ModeHBlank)
	m.Write8(0xFE10, 0xAB)
	if got := m.Read8(0xFE10); got != 0xAB {
		t.Fatalf("expected OAM write to succeed during HBLANK, got %#x", got)
	}
}

func TestForbiddenRegionWritesAreDropped(t *testing.T) {
	m := New(newTestPak(t), nil)
	m.Write8(0xFEA0, 0x55)
	if got := m.Read8(0xFEA0); got != 0x00 {
		t.Fatalf("expected forbidden-region write dropped, got %#x", got)
	}
}

func TestTACNotifiesBeforeMasking(t *testing.T) {
	m := New(newTestPak(t), nil)
	notif := &recordingNotifier{}
	m.SetScheduler(notif)
	m.Write8(TAC, 0xFD) // only bits 0-2 are real; 0xFD = 0b11111101
	if notif.gotNew != 0xFD {
		t.Fatalf("expected OnTacUpdate to see the unmasked value, got %#x", notif.gotNew)
	}
	if got := m.Read8(TAC); got != 0xFD&0x07 {
		t.Fatalf("expected TAC masked to 3 bits on storage, got %#x", got)
	}
}

type recordingNotifier struct {
	gotOld, gotNew uint8
}

func (r *recordingNotifier) OnDivReset()                 {}
func (r *recordingNotifier) OnTacUpdate(old, new uint8)  { r.gotOld, r.gotNew = old, new }
func (r *recordingNotifier) OnLcdcUpdate(old, new uint8) {}

func TestJoypadInterruptOnFallingEdge(t *testing.T) {
	m := New(newTestPak(t), nil)
	m.Write8(JOYP, 0x00)        // select both groups
	m.Write8(IEAddr, IntJoypad) // PendingInterrupts reports IF & IE
	m.SetPad(0xFF)              // nothing pressed yet
	if m.PendingInterrupts()&IntJoypad != 0 {
		t.Fatal("unexpected joypad IF before any press")
	}
	m.SetPad(0xFE) // press bit 0 (Right/A)
	if m.PendingInterrupts()&IntJoypad == 0 {
		t.Fatal("expected joypad IF raised on high-to-low transition")
	}
}
