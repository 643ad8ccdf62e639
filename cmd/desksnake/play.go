package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/desksnake/internal/core"
	"github.com/vovakirdan/desksnake/internal/platform/tui"
	"github.com/vovakirdan/desksnake/internal/storage"
)

var (
	flagPlaySpeed string
	flagPlayIcons int
	flagPlayDir   string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play on a virtual desktop in this terminal",
	Long: `Fill the terminal with a desktop of icons and play snake with them.

The icons are cleared away, one becomes the snake and another the food.
Eat the food to grow; hitting a wall or yourself ends the game. When the
game ends the icons are arranged back onto the desktop.

Controls:
  Arrows/WASD  - Steer
  Esc/Q        - Quit (the desktop is restored first)

Speed options:
  slow    - 300ms per move
  normal  - 200ms per move
  fast    - 120ms per move
  fixed   - Use game.tick_ms from the config

Examples:
  desksnake play
  desksnake play --speed fast
  desksnake play --icons 12 --seed 42
  desksnake play --journal`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlaySpeed, "speed", "", "Speed preset: slow, normal, fast, fixed")
	playCmd.Flags().IntVar(&flagPlayIcons, "icons", 0, "Number of desktop icons (0 = from config)")
	playCmd.Flags().StringVar(&flagPlayDir, "direction", "", "Initial heading: up, down, left, right")
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg := loadConfig(flagPlaySpeed)
	if flagPlayIcons > 0 {
		cfg.Desktop.Icons = flagPlayIcons
	}
	if flagPlayDir != "" {
		cfg.Game.Direction = flagPlayDir
	}

	// The desktop owns the terminal, so logs only go to --log.
	logger, closeLog := newLogger(io.Discard, "desksnake")
	defer closeLog()

	screen := core.DefaultConfig()
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		screen.ScreenW = w
		screen.ScreenH = h
	}

	play := playConfig(cfg, logger)
	journal := openJournal(logger)
	if journal != nil {
		defer journal.Close()
	}
	rec := record(journal, storage.Meta{Surface: "terminal"}, logger)
	if rec != nil {
		play.Session.Observer = rec
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := tui.Run(ctx, play, screen.ScreenW, screen.ScreenH)
	finishRecording(rec, err, logger)
	if err != nil {
		fail("%v", err)
	}

	fmt.Println(describe(res))
	if rec != nil {
		fmt.Printf("Recorded as session %d.\n", rec.ID())
	}
}
