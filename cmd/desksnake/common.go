package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/desksnake/internal/config"
	"github.com/vovakirdan/desksnake/internal/platform/tui"
	"github.com/vovakirdan/desksnake/internal/session"
	"github.com/vovakirdan/desksnake/internal/storage"
)

// fail prints an error the way every command reports it and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loadConfig loads the configuration and applies a speed preset flag.
func loadConfig(speed string) config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fail("%v", err)
	}
	if speed != "" {
		preset, ok := config.ParseSpeedPreset(speed)
		if !ok {
			fail("unknown speed %q (use slow, normal, fast or fixed)", speed)
		}
		config.ApplySpeedPreset(&cfg, preset)
	}
	return cfg
}

// newLogger returns a logger writing to --log, or to fallback when no log
// file was given. The returned closer must be called before exit.
func newLogger(fallback io.Writer, prefix string) (*log.Logger, func()) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		fail("invalid log level %q", flagLogLevel)
	}

	w, closer := fallback, func() {}
	if flagLog != "" {
		if err := os.MkdirAll(filepath.Dir(flagLog), 0o755); err != nil {
			fail("cannot create log directory: %v", err)
		}
		f, err := os.OpenFile(flagLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fail("cannot open log file: %v", err)
		}
		w, closer = f, func() { f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
	return logger, closer
}

// openJournal opens the --journal database, or returns nil if journaling
// is off or the database cannot be opened.
func openJournal(logger *log.Logger) *storage.Journal {
	if flagJournal == "" {
		return nil
	}
	j, err := storage.Open(flagJournal)
	if err != nil {
		logger.Warn("could not open session journal", "path", flagJournal, "error", err)
		return nil
	}
	return j
}

// sessionConfig builds the per-session settings from cfg.
func sessionConfig(cfg config.Config, logger *log.Logger) session.Config {
	dir, err := cfg.StartDirection()
	if err != nil {
		fail("%v", err)
	}
	return session.Config{
		Interval:  cfg.TickInterval(),
		Capacity:  cfg.Game.Capacity,
		Direction: dir,
		Seed:      flagSeed,
		Logger:    logger,
	}
}

// playConfig builds the terminal desktop settings from cfg.
func playConfig(cfg config.Config, logger *log.Logger) tui.PlayConfig {
	return tui.PlayConfig{
		Icons:   cfg.Desktop.Icons,
		PitchX:  cfg.Desktop.PitchX,
		PitchY:  cfg.Desktop.PitchY,
		Width:   cfg.Desktop.Width,
		Height:  cfg.Desktop.Height,
		FPS:     cfg.Desktop.FPS,
		Hold:    cfg.HoldDuration(),
		Session: sessionConfig(cfg, logger),
	}
}

// record starts a journal recording, logging instead of failing.
func record(j *storage.Journal, meta storage.Meta, logger *log.Logger) *storage.Recording {
	if j == nil {
		return nil
	}
	rec, err := j.Begin(meta)
	if err != nil {
		logger.Warn("could not journal session", "error", err)
		return nil
	}
	return rec
}

// finishRecording stores a run error on the recording, if any.
func finishRecording(rec *storage.Recording, runErr error, logger *log.Logger) {
	if rec == nil || runErr == nil {
		return
	}
	if err := rec.Abort(runErr); err != nil {
		logger.Warn("could not journal session error", "error", err)
	}
}

func describe(res session.Result) string {
	switch res.Outcome {
	case session.OutcomeWon:
		return fmt.Sprintf("You ate every icon! Length %d after %d ticks.", res.Length, res.Ticks)
	case session.OutcomeLost:
		return fmt.Sprintf("Game over. Length %d/%d after %d ticks.", res.Length, res.Total, res.Ticks)
	default:
		return fmt.Sprintf("Stopped at length %d/%d.", res.Length, res.Total)
	}
}
