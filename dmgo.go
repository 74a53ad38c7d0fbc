// Command dmgo runs a Game Boy (DMG) ROM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bdwalton/dmgo/console"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
)

var (
	scale          int
	fastForwardKey string
	debug          bool
	logLevel       string
)

func main() {
	root := &cobra.Command{
		Use:   "dmgo <rom-path>",
		Short: "Run a Game Boy ROM",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	root.Flags().IntVar(&scale, "scale", 3, "window scale factor")
	root.Flags().StringVar(&fastForwardKey, "fast-forward-key", "f", "key held to fast-forward")
	root.Flags().BoolVar(&debug, "debug", false, "drop into the textual breakpoint REPL instead of running")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	romPath := args[0]

	level, err := parseLogLevel(logLevel)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ffKey, err := console.ParseKey(fastForwardKey)
	if err != nil {
		return err
	}

	opts := console.Options{Scale: scale, FastForwardKey: ffKey, FastForwardSet: true}
	cons, err := console.New(romPath, opts, log)
	if err != nil {
		return fmt.Errorf("dmgo: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if debug {
		return cons.Debug(ctx)
	}

	go func() {
		if err := cons.Run(ctx); err != nil {
			log.Error("emulation run stopped with an error", "error", err)
		}
	}()

	if err := ebiten.RunGame(cons); err != nil {
		cancel()
		return fmt.Errorf("dmgo: %w", err)
	}

	cancel()
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("dmgo: unrecognized --log-level %q", s)
	}
}
