// Package ppu renders one 160x144 RGBA frame from an immutable
// snapshot of VRAM, OAM, and palette/control registers, per
// spec.md §4.4. Rendering is per-scanline with no pixel FIFO.
package ppu

const (
	Width  = 160
	Height = 144
)

// LCDC bit masks.
const (
	lcdcBGEnabled    = 1 << 0
	lcdcOBJEnabled   = 1 << 1
	lcdcOBJSize      = 1 << 2
	lcdcBGTilemap    = 1 << 3
	lcdcBGTiledata   = 1 << 4
	lcdcWndEnabled   = 1 << 5
	lcdcWndTilemap   = 1 << 6
	lcdcPPUEnabled   = 1 << 7
)

// VRAM offsets (relative to the 8 KiB VRAM snapshot, which itself
// starts at hardware address 0x8000).
const (
	vramData0 = 0x0000
	vramData1 = 0x0800
	vramBGMap0 = 0x1800
	vramBGMap1 = 0x1C00
)

// Encoded pixel byte bit layout, per spec.md §3.
const (
	encPaletteTypeBG = 1 << 7
	encPriority      = 1 << 6
	encPaletteShift  = 2
	encPaletteMask   = 0x7 << encPaletteShift
	encColorMask     = 0x3
)

// Snapshot is the PPU-visible state captured by the frame loop at
// V-blank, per spec.md §3.
type Snapshot struct {
	VRAM []byte // 8 KiB, DMG
	OAM  []byte // 160 bytes

	LCDC, SCX, SCY, WX, WY uint8
	BGP, OBP0, OBP1        uint8
}

type objAttr struct {
	y, x, tile, attr uint8
	oamIndex         int
}

const (
	objAttrYFlip  = 1 << 6
	objAttrXFlip  = 1 << 5
	objAttrPal    = 1 << 4
	objAttrBGPrio = 1 << 7
)

// Render produces a 160x144 RGBA (as packed uint32) frame from snap
// using the four-entry DMG greyscale (or custom) palette colors.
func Render(snap *Snapshot, dmgColors [4]uint32, frame []uint32) {
	colors := buildColors(snap, dmgColors)
	var enc [Width]byte
	for ly := 0; ly < Height; ly++ {
		encodeBG(snap, uint8(ly), &enc)
		encodeOBJ(snap, uint8(ly), &enc)
		resolveLine(&enc, colors, frame[ly*Width:(ly+1)*Width])
	}
}

// buildColors assembles the 12-entry colors[] table named in
// spec.md §4.4: OBP0 at 0..3, OBP1 at 4..7, BGP at 8..11.
func buildColors(snap *Snapshot, dmgColors [4]uint32) [12]uint32 {
	var colors [12]uint32
	fill := func(base int, palette uint8) {
		for i := 0; i < 4; i++ {
			idx := (palette >> (uint(i) * 2)) & 0x3
			colors[base+i] = dmgColors[idx]
		}
	}
	fill(0, snap.OBP0)
	fill(4, snap.OBP1)
	fill(8, snap.BGP)
	return colors
}

func encodeBG(snap *Snapshot, ly uint8, enc *[Width]byte) {
	if snap.LCDC&lcdcBGEnabled == 0 {
		for i := range enc {
			enc[i] = encPaletteTypeBG
		}
		return
	}

	tileBase, xorMask := tileDataParams(snap.LCDC)

	wndVisible := snap.LCDC&lcdcWndEnabled != 0 && snap.WY <= ly && int(snap.WX)-7 < Width

	bgLimit := Width
	if wndVisible {
		lim := int(snap.WX) - 7
		if lim < 0 {
			lim = 0
		}
		if lim > Width {
			lim = Width
		}
		bgLimit = lim
	}

	bgMap := vramBGMap0
	if snap.LCDC&lcdcBGTilemap != 0 {
		bgMap = vramBGMap1
	}
	bgRow := (ly + snap.SCY) & 0xFF
	row, rowWithin := int(bgRow)/8, int(bgRow)%8
	for sx := 0; sx < bgLimit; sx++ {
		col := int(snap.SCX) + sx
		tileCol := (col / 8) % 32
		bit := uint(7 - col%8)
		enc[sx] = encPaletteTypeBG | bgPixel(snap, bgMap, tileBase, xorMask, row, tileCol, rowWithin, bit)
	}

	if wndVisible {
		wndMap := vramBGMap0
		if snap.LCDC&lcdcWndTilemap != 0 {
			wndMap = vramBGMap1
		}
		start := int(snap.WX) - 7
		if start < 0 {
			start = 0
		}
		wndRow := ly - snap.WY
		wRow, wRowWithin := int(wndRow)/8, int(wndRow)%8
		for sx := start; sx < Width; sx++ {
			col := sx - start
			tileCol := col / 8
			bit := uint(7 - col%8)
			enc[sx] = encPaletteTypeBG | bgPixel(snap, wndMap, tileBase, xorMask, wRow, tileCol, wRowWithin, bit)
		}
	}
}

func bgPixel(snap *Snapshot, mapBase, tileBase int, xorMask uint8, tileRow, tileCol, rowWithin int, bit uint) uint8 {
	idx := snap.VRAM[mapBase+tileRow*32+tileCol]
	idx ^= xorMask
	tileAddr := tileBase + int(idx)*16 + rowWithin*2
	lo := snap.VRAM[tileAddr]
	hi := snap.VRAM[tileAddr+1]
	return (hi>>bit&1)<<1 | (lo >> bit & 1)
}

func tileDataParams(lcdc uint8) (base int, xorMask uint8) {
	if lcdc&lcdcBGTiledata != 0 {
		return vramData0, 0x00
	}
	return vramData1, 0x80
}

func encodeOBJ(snap *Snapshot, ly uint8, enc *[Width]byte) {
	if snap.LCDC&lcdcOBJEnabled == 0 {
		return
	}

	h := uint8(8)
	if snap.LCDC&lcdcOBJSize != 0 {
		h = 16
	}

	var selected []objAttr
	for i := 0; i < 40 && len(selected) < 10; i++ {
		base := i * 4
		y := snap.OAM[base]
		if int(ly)+16 < int(y) || int(ly)+16 >= int(y)+int(h) {
			continue
		}
		selected = append(selected, objAttr{
			y: y, x: snap.OAM[base+1], tile: snap.OAM[base+2], attr: snap.OAM[base+3],
			oamIndex: i,
		})
	}

	// DMG priority sort: ascending X, stable on OAM index ties (Go's
	// sort.SliceStable would add an import solely for this; a manual
	// insertion sort over at most 10 elements is simpler and just as
	// clear).
	for i := 1; i < len(selected); i++ {
		for j := i; j > 0 && selected[j].x < selected[j-1].x; j-- {
			selected[j], selected[j-1] = selected[j-1], selected[j]
		}
	}

	bgGloballyLoses := snap.LCDC&lcdcBGEnabled == 0

	for _, o := range selected {
		row := int(ly) - (int(o.y) - 16)
		if o.attr&objAttrYFlip != 0 {
			row = int(h) - 1 - row
		}
		tile := o.tile
		if h == 16 {
			tile &^= 1
		}
		tileAddr := vramData0 + int(tile)*16 + row*2
		lo := snap.VRAM[tileAddr]
		hi := snap.VRAM[tileAddr+1]

		screenX := int(o.x) - 8
		for col := 0; col < 8; col++ {
			sx := screenX + col
			if sx < 0 || sx >= Width {
				continue
			}
			bit := uint(7 - col)
			if o.attr&objAttrXFlip != 0 {
				bit = uint(col)
			}
			colorIdx := (hi>>bit&1)<<1 | (lo >> bit & 1)
			if colorIdx == 0 {
				continue
			}
			e := enc[sx]
			pal := uint8(0)
			if o.attr&objAttrPal != 0 {
				pal = 1
			}
			var overwrite bool
			if bgGloballyLoses {
				overwrite = e&encPaletteTypeBG != 0
			} else {
				bgPriority := e&encPriority != 0
				objAssertsNoPriority := o.attr&objAttrBGPrio == 0
				overwrite = (objAssertsNoPriority && !bgPriority) || e&encColorMask == 0
			}
			if overwrite {
				// encPriority locks this pixel against lower-priority
				// (later-drawn) objects at the same screen column.
				enc[sx] = encPriority | pal<<encPaletteShift | colorIdx
			}
		}
	}
}

func resolveLine(enc *[Width]byte, colors [12]uint32, dst []uint32) {
	for i, e := range enc {
		if e&encPaletteTypeBG != 0 {
			dst[i] = colors[8+int(e&encColorMask)]
		} else {
			pal := (e >> encPaletteShift) & 0x1
			dst[i] = colors[int(pal)*4+int(e&encColorMask)]
		}
	}
}
