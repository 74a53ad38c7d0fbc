// Package pak implements the Game Boy cartridge: header decode, raw
// ROM/RAM storage, battery save persistence, and the memory-bank
// controller (MBC) that services bank-switched reads/writes.
// https://gbdev.io/pandocs/The_Cartridge_Header.html
package pak

import "fmt"

const (
	headerSize = 0x0150

	logoOffset  = 0x0104
	logoLen     = 0x0030
	titleOffset = 0x0134
	titleLen    = 16
	cgbFlagOff  = 0x0143
	pakTypeOff  = 0x0147
	romSizeOff  = 0x0148
	ramSizeOff  = 0x0149
)

// CGB compatibility flag values (byte 0x0143).
const (
	CGBRequired = 0xC0
	CGBEnhanced = 0x80
)

var nintendoLogo = [logoLen]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// header is the parsed, read-only view of the cartridge header
// (bytes 0x0100-0x014F). See spec.md §6.
type header struct {
	title        string
	cgbFlag      uint8
	pakType      uint8
	romSizeCode  uint8
	ramSizeCode  uint8
	logoMismatch int
}

func parseHeader(raw []byte) (*header, error) {
	if len(raw) < headerSize {
		return nil, fmt.Errorf("pak: header truncated: got %d bytes, want >= %d", len(raw), headerSize)
	}

	mismatch := 0
	for i, b := range nintendoLogo {
		if raw[logoOffset+i] != b {
			mismatch++
		}
	}

	title := make([]byte, 0, titleLen)
	for i := 0; i < titleLen; i++ {
		b := raw[titleOffset+i]
		if b == 0 {
			break
		}
		title = append(title, b)
	}

	return &header{
		title:        string(title),
		cgbFlag:      raw[cgbFlagOff],
		pakType:      raw[pakTypeOff],
		romSizeCode:  raw[romSizeOff],
		ramSizeCode:  raw[ramSizeOff],
		logoMismatch: mismatch,
	}, nil
}

func (h *header) String() string {
	return fmt.Sprintf("%q pakType=0x%02x romCode=%d ramCode=%d cgb=0x%02x logoMismatch=%d",
		h.title, h.pakType, h.romSizeCode, h.ramSizeCode, h.cgbFlag, h.logoMismatch)
}

// romBankCount decodes byte 0x0148 into a bank count (16KiB banks).
// rom_size_code in [0,8]: rom_bank_count = 2 << code.
func romBankCount(code uint8) (int, error) {
	if code > 8 {
		return 0, fmt.Errorf("pak: impossible ROM size code 0x%02x", code)
	}
	return 2 << code, nil
}

var ramBankCounts = [6]int{0, 0, 1, 4, 16, 8}

// ramBankCount decodes byte 0x0149 into a bank count (8KiB banks).
func ramBankCount(code uint8) (int, error) {
	if int(code) >= len(ramBankCounts) {
		return 0, fmt.Errorf("pak: impossible RAM size code 0x%02x", code)
	}
	return ramBankCounts[code], nil
}
