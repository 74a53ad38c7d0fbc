package console

import (
	"context"
	"time"

	"github.com/bdwalton/dmgo/mem"
	"github.com/bdwalton/dmgo/ppu"
	"golang.org/x/sync/errgroup"
)

// Run drives the emulation until ctx is cancelled: one frame per
// iteration of cpu.InterpretFrame, PPU render, frame-sink hand-off,
// and pacing to NSEC_PER_FRAME unless fast-forwarding, per spec.md
// §4.7. It also starts a goroutine that persists battery-backed RAM
// the moment ctx is cancelled, so a quit during emulation never loses
// a save. Keyboard polling itself runs on ebiten's own callback
// goroutine (Update), since ebiten's input queries are only valid
// there; Run reads the latch currentPad fills.
func (c *Console) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		return c.persist()
	})

	g.Go(func() error {
		c.frameLoop(gctx)
		return nil
	})

	return g.Wait()
}

func (c *Console) frameLoop(ctx context.Context) {
	vramBuf := make([]byte, len(c.mem.VRAM()))
	oamBuf := make([]byte, len(c.mem.OAM()))

	deadline := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		padSnap, fastForward := c.currentPad()
		c.mem.SetPad(padSnap)

		c.cpu.InterpretFrame()
		c.renderFrame(vramBuf, oamBuf)

		if !fastForward {
			deadline = deadline.Add(NSEC_PER_FRAME * time.Nanosecond)
			if sleep := time.Until(deadline); sleep > 0 {
				time.Sleep(sleep)
			} else {
				deadline = time.Now()
			}
		} else {
			deadline = time.Now()
		}
	}
}

// renderFrame copies the PPU-visible memory into owned buffers (the
// live mem slices must not be aliased past this call, since the CPU
// resumes writing to them immediately after), renders one frame
// through package ppu, and hands it to the frame sink.
func (c *Console) renderFrame(vramBuf, oamBuf []byte) {
	copy(vramBuf, c.mem.VRAM())
	copy(oamBuf, c.mem.OAM())

	snap := &ppu.Snapshot{
		VRAM: vramBuf,
		OAM:  oamBuf,
		LCDC: c.mem.Read8(mem.LCDC),
		SCX:  c.mem.Read8(mem.SCX),
		SCY:  c.mem.Read8(mem.SCY),
		WX:   c.mem.Read8(mem.WX),
		WY:   c.mem.Read8(mem.WY),
		BGP:  c.mem.Read8(mem.BGP),
		OBP0: c.mem.Read8(mem.OBP0),
		OBP1: c.mem.Read8(mem.OBP1),
	}

	if snap.LCDC&0x80 == 0 {
		c.sink.Clear()
		return
	}

	pixels, err := c.sink.BeginFrame()
	if err != nil {
		c.log.Error("frame sink unavailable", "error", err)
		return
	}
	ppu.Render(snap, c.colors, pixels)
	if err := c.sink.EndFrame(); err != nil {
		c.log.Error("end_frame failed", "error", err)
	}
}

// persist writes battery-backed RAM to the cartridge's save file on
// clean shutdown, per spec.md §6.
func (c *Console) persist() error {
	if err := c.pak.Persist(); err != nil {
		c.log.Error("failed to persist save RAM", "error", err)
		return err
	}
	return nil
}
