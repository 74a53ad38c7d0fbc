// Package console wires the pak, mem, sched, cpu, ppu, and pad
// packages into a runnable machine: the 59.7 Hz frame loop, the
// ebiten.Game glue that blits frames and polls input, and a textual
// debug REPL. See spec.md §4.7, §5, §6.
package console

import (
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"github.com/bdwalton/dmgo/cpu"
	"github.com/bdwalton/dmgo/mem"
	"github.com/bdwalton/dmgo/pad"
	"github.com/bdwalton/dmgo/pak"
	"github.com/bdwalton/dmgo/ppu"
	"github.com/bdwalton/dmgo/sched"
	"github.com/hajimehoshi/ebiten/v2"
)

// NSEC_PER_FRAME is the nanosecond frame period for the DMG's 59.7 Hz
// refresh rate, per spec.md §4.7.
const NSEC_PER_FRAME = 16_742_706

// DMG's default four-shade green palette, lightest to darkest, packed
// as 0xAARRGGBB.
var defaultDMGColors = [4]uint32{
	0xFFE0F8D0,
	0xFF88C070,
	0xFF346856,
	0xFF081820,
}

// Console owns a loaded cartridge and the wired emulation core. It
// implements ebiten.Game so it can be handed directly to
// ebiten.RunGame.
type Console struct {
	romPath string
	log     *slog.Logger

	pak *pak.Pak
	mem *mem.Memory
	sch *sched.Scheduler
	cpu *cpu.CPU

	sink *bufferSink

	padMu sync.Mutex
	pad   uint8

	fastForward bool
	quit        bool

	colors         [4]uint32
	fastForwardKey ebiten.Key
}

// DefaultFastForwardKey is used when Options.FastForwardSet is false,
// i.e. the caller didn't resolve a --fast-forward-key flag.
const DefaultFastForwardKey = ebiten.KeyF

// Options configures a Console beyond its ROM path, per the CLI's
// --scale and --fast-forward-key flags.
type Options struct {
	Scale          int        // window scale factor; 0 means use the default (3x)
	FastForwardKey ebiten.Key // resolved via ParseKey; used only when FastForwardSet is true
	FastForwardSet bool
}

// New loads romPath as a cartridge and constructs the wired emulation
// core: Memory, Scheduler, and CPU, connected via their structural
// interfaces (see mem.notifier, sched.Bus, cpu.Bus/Clock).
func New(romPath string, opts Options, log *slog.Logger) (*Console, error) {
	if log == nil {
		log = slog.Default()
	}

	p, err := pak.Load(romPath, log)
	if err != nil {
		return nil, err
	}

	m := mem.New(p, log)
	s := sched.New(m, log)
	m.SetScheduler(s)
	c := cpu.New(m, s, log)

	ffKey := DefaultFastForwardKey
	if opts.FastForwardSet {
		ffKey = opts.FastForwardKey
	}

	cons := &Console{
		romPath:        romPath,
		log:            log,
		pak:            p,
		mem:            m,
		sch:            s,
		cpu:            c,
		sink:           newBufferSink(),
		pad:            pad.Initial(),
		colors:         defaultDMGColors,
		fastForwardKey: ffKey,
	}

	scale := opts.Scale
	if scale <= 0 {
		scale = 3
	}
	ebiten.SetWindowSize(ppu.Width*scale, ppu.Height*scale)
	ebiten.SetWindowTitle(fmt.Sprintf("dmgo - %s", p.Title()))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return cons, nil
}

// Layout reports the DMG's fixed 160x144 resolution; ebiten scales
// the window to it.
func (c *Console) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.Width, ppu.Height
}

// Draw blits the most recently completed frame into screen. Frames
// are produced by the emulation goroutine started via Run; Draw only
// ever reads the sink's committed buffer under its lock.
func (c *Console) Draw(screen *ebiten.Image) {
	var buf [ppu.Width * ppu.Height]uint32
	if !c.sink.snapshot(buf[:]) {
		return
	}
	for y := 0; y < ppu.Height; y++ {
		for x := 0; x < ppu.Width; x++ {
			px := buf[y*ppu.Width+x]
			screen.Set(x, y, rgbaFromPacked(px))
		}
	}
}

// Update polls input and is required by ebiten.Game, but the
// emulation itself is driven by Run in its own goroutine rather than
// ebiten's Update callback, per spec.md §5.
func (c *Console) Update() error {
	c.pollInput()
	if c.quit {
		return ebiten.Termination
	}
	return nil
}

// rgbaFromPacked unpacks a 0xAARRGGBB-ordered pixel into an
// image/color.RGBA value.
func rgbaFromPacked(px uint32) color.RGBA {
	return color.RGBA{
		A: uint8(px >> 24),
		R: uint8(px >> 16),
		G: uint8(px >> 8),
		B: uint8(px),
	}
}
