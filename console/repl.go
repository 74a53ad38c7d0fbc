package console

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/bdwalton/dmgo/cpu"
	"golang.design/x/clipboard"
	"golang.org/x/term"
)

// Debug drops into a textual breakpoint REPL against the wired core,
// bypassing the ebiten frame loop entirely, for the --debug CLI flag.
// Single-character commands are read in terminal raw mode so they
// take effect without waiting on Enter; commands that need a hex
// address temporarily restore cooked mode for a line of input.
func (c *Console) Debug(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("console: couldn't enter terminal raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	clipOK := clipboard.Init() == nil
	if !clipOK {
		c.log.Warn("clipboard unavailable; yank command disabled")
	}

	sigQuit := make(chan os.Signal, 1)
	signal.Notify(sigQuit, syscall.SIGINT, syscall.SIGTERM)

	breaks := make(map[uint16]struct{})
	buf := make([]byte, 1)

	for {
		c.printStatus()
		if _, err := os.Stdin.Read(buf); err != nil {
			return nil
		}

		switch buf[0] {
		case 'b', 'B':
			term.Restore(fd, oldState)
			breaks[c.readAddress("breakpoint (e.g. ff15): ")] = struct{}{}
			term.MakeRaw(fd)
		case 'c', 'C':
			breaks = make(map[uint16]struct{})
		case 'p', 'P':
			term.Restore(fd, oldState)
			c.cpu.SetPC(c.readAddress("set PC to (e.g. 0100): "))
			term.MakeRaw(fd)
		case 'q', 'Q':
			return nil
		case 'r', 'R':
			rctx, cancel := context.WithCancel(ctx)
			go func() {
				select {
				case <-sigQuit:
					cancel()
				case <-rctx.Done():
				}
			}()
			c.runToBreakpoint(rctx, breaks)
			cancel()
		case 's', 'S':
			if c.cpu.ServiceInterrupt() {
				break
			}
			c.cpu.Step()
		case 't', 'T':
			c.printStack()
		case 'i', 'I':
			c.printInstruction()
		case 'e', 'E':
			c.cpu.Reset()
		case 'm', 'M':
			term.Restore(fd, oldState)
			low := c.readAddress("low address (e.g. c000): ")
			high := c.readAddress("high address (e.g. c0ff): ")
			c.printMemory(low, high)
			term.MakeRaw(fd)
		case 'y', 'Y':
			if clipOK {
				line, _ := cpu.Disassemble(c.mem, c.cpu.PC())
				clipboard.Write(clipboard.FmtText, []byte(line))
			}
		}
	}
}

func (c *Console) runToBreakpoint(ctx context.Context, breaks map[uint16]struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if c.cpu.ServiceInterrupt() {
			continue
		}
		c.cpu.Step()
		if _, hit := breaks[c.cpu.PC()]; hit {
			return
		}
	}
}

func (c *Console) printStatus() {
	fmt.Fprintf(os.Stdout, "\r\n%s\r\n\r\n", c.cpu)
	fmt.Fprint(os.Stdout,
		"\r\n(B)reak  (C)lear  (R)un  (S)tep  R(e)set  (M)emory  S(t)ack  (I)nstruction  (P)C  (Y)ank  (Q)uit\r\nchoice: ")
}

func (c *Console) printStack() {
	fmt.Fprint(os.Stdout, "\r\n")
	sp := c.cpu.SP()
	for i := uint16(0); i < 3; i++ {
		addr := sp + i
		fmt.Fprintf(os.Stdout, "0x%04x: 0x%02x ", addr, c.mem.Read8(addr))
		if addr == 0xFFFE {
			break
		}
	}
	fmt.Fprint(os.Stdout, "\r\n\r\n")
}

func (c *Console) printInstruction() {
	line, _ := cpu.Disassemble(c.mem, c.cpu.PC())
	fmt.Fprintf(os.Stdout, "\r\n%s\r\n\r\n", line)
}

func (c *Console) printMemory(low, high uint16) {
	fmt.Fprint(os.Stdout, "\r\n")
	x := 1
	for i := low; ; i++ {
		fmt.Fprintf(os.Stdout, "0x%04x: 0x%02x ", i, c.mem.Read8(i))
		if x%5 == 0 {
			fmt.Fprint(os.Stdout, "\r\n")
		}
		if i == high || i == math.MaxUint16 {
			break
		}
		x++
	}
	fmt.Fprint(os.Stdout, "\r\n\r\n")
}

func (c *Console) readAddress(prompt string) uint16 {
	var a uint16
	fmt.Fprint(os.Stdout, "\r\n"+prompt)
	fmt.Scanf("%04x\n", &a)
	return a
}
