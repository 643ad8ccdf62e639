package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/desksnake/internal/core"
	"github.com/vovakirdan/desksnake/internal/games/snake"
	"github.com/vovakirdan/desksnake/internal/platform/headless"
	"github.com/vovakirdan/desksnake/internal/session"
	"github.com/vovakirdan/desksnake/internal/storage"
)

var (
	flagScript    string
	flagSimWidth  int
	flagSimHeight int
	flagSimIcons  int
	flagSimTickMS int
	flagFrames    bool
	flagMaxTicks  uint64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted game without a terminal",
	Long: `Play a game on an in-memory desktop, replaying key presses from a YAML
script, and print the board when it ends.

Script format:
  steps:
    - tick: 3          # first tick the keys are held, counting from 1
      keys: [up]       # up, down, left, right, w, a, s, d
    - tick: 6
      keys: [left, w]
      hold: 2          # keep them held for 2 ticks

Without a script the snake runs straight ahead. The same seed and script
always produce the same game.

Examples:
  desksnake simulate --seed 42
  desksnake simulate --script ./moves.yaml --seed 7 --frames
  desksnake simulate --width 40 --height 20 --icons 400 --max-ticks 500`,
	Args: cobra.NoArgs,
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&flagScript, "script", "", "Path to key script YAML")
	simulateCmd.Flags().IntVar(&flagSimWidth, "width", 0, "Desktop width (0 = config or 80)")
	simulateCmd.Flags().IntVar(&flagSimHeight, "height", 0, "Desktop height (0 = config or 24)")
	simulateCmd.Flags().IntVar(&flagSimIcons, "icons", 0, "Number of icons (0 = from config)")
	simulateCmd.Flags().IntVar(&flagSimTickMS, "tick-ms", 1, "Delay between ticks in milliseconds")
	simulateCmd.Flags().BoolVar(&flagFrames, "frames", false, "Print the board after every tick")
	simulateCmd.Flags().Uint64Var(&flagMaxTicks, "max-ticks", 0, "Stop after this many ticks (0 = no limit)")
}

// frameObserver prints the board after every tick and enforces --max-ticks.
type frameObserver struct {
	surface *headless.Surface
	screen  *core.Screen
	print   bool
	max     uint64
	cancel  context.CancelFunc
}

func (o *frameObserver) SessionStarted(session.Info) error { return nil }

func (o *frameObserver) TickCompleted(snap snake.Snapshot) error {
	if o.print {
		headless.Render(o.screen, o.surface, snap)
		fmt.Println(o.screen.String())
		fmt.Println()
	}
	if o.max > 0 && snap.Tick >= o.max {
		o.cancel()
	}
	return nil
}

func (o *frameObserver) SessionEnded(session.Result) error { return nil }

func runSimulate(_ *cobra.Command, _ []string) {
	cfg := loadConfig("")
	logger, closeLog := newLogger(os.Stderr, "desksnake")
	defer closeLog()

	rc := core.DefaultConfig()
	rc.Seed = flagSeed
	if cfg.Desktop.Width > 0 {
		rc.ScreenW = cfg.Desktop.Width
	}
	if cfg.Desktop.Height > 0 {
		rc.ScreenH = cfg.Desktop.Height
	}
	if flagSimWidth > 0 {
		rc.ScreenW = flagSimWidth
	}
	if flagSimHeight > 0 {
		rc.ScreenH = flagSimHeight
	}
	if flagSimIcons > 0 {
		cfg.Desktop.Icons = flagSimIcons
	}
	if rc.Seed == 0 {
		rc.Seed = time.Now().UnixNano()
	}

	var input session.Sampler
	if flagScript != "" {
		script, err := headless.LoadScript(flagScript)
		if err != nil {
			fail("%v", err)
		}
		input = script
	}

	surface := headless.New(headless.Options{
		Width:  rc.ScreenW,
		Height: rc.ScreenH,
		PitchX: cfg.Desktop.PitchX,
		PitchY: cfg.Desktop.PitchY,
		Icons:  cfg.Desktop.Icons,
	})
	w, h := surface.BoardSize()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := &frameObserver{
		surface: surface,
		screen:  core.NewScreen(max(w, 40), h),
		print:   flagFrames,
		max:     flagMaxTicks,
		cancel:  cancel,
	}

	sessCfg := sessionConfig(cfg, logger)
	sessCfg.Seed = rc.Seed
	sessCfg.Interval = time.Duration(max(flagSimTickMS, 1)) * time.Millisecond
	tracker := headless.NewTracker(sessCfg.Direction)

	journal := openJournal(logger)
	if journal != nil {
		defer journal.Close()
	}
	observers := session.Observers{tracker, frames}
	rec := record(journal, storage.Meta{Surface: "headless"}, logger)
	if rec != nil {
		observers = append(observers, rec)
	}

	sessCfg.Observer = observers

	res, err := session.New(surface, input, sessCfg).Run(ctx)
	finishRecording(rec, err, logger)
	if err != nil {
		fail("%v", err)
	}

	if !flagFrames {
		headless.Render(frames.screen, surface, tracker.Last())
		fmt.Println(frames.screen.String())
	}
	fmt.Println(describe(res))
	fmt.Printf("Seed %d, %d ticks, %d/%d icons.\n", res.Seed, res.Ticks, res.Length, res.Total)
	if rec != nil {
		fmt.Printf("Recorded as session %d.\n", rec.ID())
	}
}
