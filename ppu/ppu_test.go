package ppu

import "testing"

const (
	testLCDCOn    = 1 << 7
	testLCDCOBJOn = 1 << 1
)

func blankSnapshot() *Snapshot {
	return &Snapshot{
		VRAM: make([]byte, 0x2000),
		OAM:  make([]byte, 160),
		LCDC: testLCDCOn,
		BGP:  0xE4,
		OBP0: 0xE4,
		OBP1: 0xE4,
	}
}

func TestBGDisabledProducesUniformBackgroundColor(t *testing.T) {
	snap := blankSnapshot() // BG_ENABLED bit clear
	colors := [4]uint32{0x11, 0x22, 0x33, 0x44}
	frame := make([]uint32, Width*Height)
	Render(snap, colors, frame)

	want := colors[(snap.BGP>>0)&3] // color index 0 under BGP
	for i, px := range frame {
		if px != want {
			t.Fatalf("pixel %d = %#x, want %#x (BG disabled should be uniform)", i, px, want)
		}
	}
}

func TestOBJTenPerLineCutoff(t *testing.T) {
	snap := blankSnapshot()
	snap.LCDC |= testLCDCOBJOn // BG stays off: bgGloballyLoses path

	// A single 8x8 tile at VRAM tile index 0 whose every column decodes
	// to color index 1 (lo-plane all set, hi-plane clear).
	for row := 0; row < 8; row++ {
		snap.VRAM[row*2] = 0xFF
		snap.VRAM[row*2+1] = 0x00
	}

	const n = 12
	for i := 0; i < n; i++ {
		base := i * 4
		snap.OAM[base] = 16       // y=16 -> screen row 0
		snap.OAM[base+1] = uint8(8 + i*8) // screen x = i*8
		snap.OAM[base+2] = 0      // tile 0
		snap.OAM[base+3] = 0      // no flags
	}

	colors := [4]uint32{0x11, 0x22, 0x33, 0x44}
	frame := make([]uint32, Width*Height)
	Render(snap, colors, frame)

	spriteColor := colors[(snap.OBP0>>2)&3] // OBJ color index 1 under OBP0
	bgColor := colors[(snap.BGP>>0)&3]      // BG color index 0 (BG disabled fallback)

	for i := 0; i < n; i++ {
		x := i * 8
		got := frame[x] // row 0
		if i < 10 {
			if got != spriteColor {
				t.Fatalf("sprite %d at x=%d: got %#x, want sprite color %#x", i, x, got, spriteColor)
			}
		} else {
			if got != bgColor {
				t.Fatalf("sprite %d (beyond the 10-per-line cap) at x=%d: got %#x, want background %#x", i, x, got, bgColor)
			}
		}
	}
}

func TestOBJColorIndexZeroIsTransparent(t *testing.T) {
	snap := blankSnapshot()
	snap.LCDC |= testLCDCOBJOn
	// Tile data left zeroed: every column decodes to color index 0.
	snap.OAM[0] = 16
	snap.OAM[1] = 16
	snap.OAM[2] = 0
	snap.OAM[3] = 0

	colors := [4]uint32{0x11, 0x22, 0x33, 0x44}
	frame := make([]uint32, Width*Height)
	Render(snap, colors, frame)

	bgColor := colors[(snap.BGP>>0)&3]
	if got := frame[8]; got != bgColor {
		t.Fatalf("color-index-0 OBJ pixel should let background show through: got %#x, want %#x", got, bgColor)
	}
}
