package console

import (
	"fmt"
	"strings"

	"github.com/bdwalton/dmgo/pad"
	"github.com/hajimehoshi/ebiten/v2"
)

// Default key bindings, per spec.md §6.
var dpadKeys = [4]struct {
	key ebiten.Key
	bit uint8
}{
	{ebiten.KeyArrowRight, pad.Right},
	{ebiten.KeyArrowLeft, pad.Left},
	{ebiten.KeyArrowUp, pad.Up},
	{ebiten.KeyArrowDown, pad.Down},
}

var buttonKeys = [4]struct {
	key ebiten.Key
	bit uint8
}{
	{ebiten.KeyZ, pad.A},
	{ebiten.KeyX, pad.B},
	{ebiten.KeyShiftRight, pad.Select},
	{ebiten.KeyEnter, pad.Start},
}

// pollInput samples the host keyboard into the 8-bit pad snapshot and
// pushes it into Memory, and updates the fast-forward/quit latches
// Run reads each iteration.
func (c *Console) pollInput() {
	snap := pad.Initial()
	for _, k := range dpadKeys {
		if ebiten.IsKeyPressed(k.key) {
			snap = pad.Press(snap, k.bit)
		}
	}
	for _, k := range buttonKeys {
		if ebiten.IsKeyPressed(k.key) {
			snap = pad.Press(snap, k.bit)
		}
	}

	c.padMu.Lock()
	c.pad = snap
	c.fastForward = ebiten.IsKeyPressed(c.fastForwardKey)
	c.padMu.Unlock()

	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		c.quit = true
	}
}

// currentPad returns the last-polled pad snapshot and fast-forward
// latch, read by Run once per frame.
func (c *Console) currentPad() (uint8, bool) {
	c.padMu.Lock()
	defer c.padMu.Unlock()
	return c.pad, c.fastForward
}

// ParseKey resolves a key name (as taken by the CLI's
// --fast-forward-key flag: "f", "g", "space" or "tab", case-insensitive)
// into an ebiten.Key.
func ParseKey(name string) (ebiten.Key, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "f":
		return ebiten.KeyF, nil
	case "g":
		return ebiten.KeyG, nil
	case "space":
		return ebiten.KeySpace, nil
	case "tab":
		return ebiten.KeyTab, nil
	default:
		return 0, fmt.Errorf("console: unrecognized fast-forward key %q", name)
	}
}
