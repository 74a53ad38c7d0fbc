// Package pad models the Game Boy's 8-bit input snapshot and its
// JOYP derivation, per spec.md §4.6.
package pad

// Button bit positions within the 8-bit snapshot: bits 0-3 are the
// d-pad half (Right/Left/Up/Down), bits 4-7 are the button half
// (A/B/Select/Start). A clear bit (0) means pressed.
const (
	Right = 1 << 0
	Left  = 1 << 1
	Up    = 1 << 2
	Down  = 1 << 3

	A      = 1 << 4
	B      = 1 << 5
	Select = 1 << 6
	Start  = 1 << 7
)

// Initial returns the power-on snapshot: all buttons released.
func Initial() uint8 { return 0xFF }

// Press clears the bits named in inputs (marks them pressed).
func Press(pad, inputs uint8) uint8 { return pad &^ inputs }

// Release sets the bits named in inputs (marks them released).
func Release(pad, inputs uint8) uint8 { return pad | inputs }
