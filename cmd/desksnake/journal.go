package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/desksnake/internal/platform/tui"
	"github.com/vovakirdan/desksnake/internal/storage"
)

var (
	flagJournalLimit int
	flagJournalPlain bool
	flagJournalPrune int
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Browse recorded sessions",
	Long: `Show the sessions recorded with --journal, newest first.

Select a session to see its position and food after every tick.
The journal is a record of past games only; it never affects play.

Examples:
  desksnake journal
  desksnake journal --plain --limit 5
  desksnake journal --prune 100           # Keep only the newest 100 sessions
  desksnake journal --journal ./journal.db`,
	Args: cobra.NoArgs,
	Run:  runJournal,
}

func init() {
	journalCmd.Flags().IntVar(&flagJournalLimit, "limit", 50, "Number of sessions to show")
	journalCmd.Flags().BoolVar(&flagJournalPlain, "plain", false, "Print a plain table instead of the viewer")
	journalCmd.Flags().IntVar(&flagJournalPrune, "prune", -1, "Delete all but the newest N sessions")
}

func runJournal(_ *cobra.Command, _ []string) {
	path := flagJournal
	if path == "" {
		path = defaultJournalPath
	}

	journal, err := storage.Open(path)
	if err != nil {
		fail("opening journal: %v", err)
	}
	defer journal.Close()

	if flagJournalPrune >= 0 {
		n, err := journal.Prune(flagJournalPrune)
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("Removed %d sessions.\n", n)
		return
	}

	width, height := 80, 24
	isTerm := term.IsTerminal(int(os.Stdout.Fd()))
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width, height = w, h
	}

	if flagJournalPlain || !isTerm {
		if err := printJournal(journal, flagJournalLimit); err != nil {
			fail("%v", err)
		}
		return
	}

	if err := tui.RunJournal(journal, flagJournalLimit, width, height); err != nil {
		fail("%v", err)
	}
}

func printJournal(journal *storage.Journal, limit int) error {
	entries, err := journal.Recent(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("ID", "STARTED", "WHERE", "PLAYER", "OUTCOME", "LENGTH", "TICKS", "TIME", "SEED")
	for _, e := range entries {
		t.Row(
			strconv.FormatInt(e.ID, 10),
			e.StartedAt.Format("2006-01-02 15:04"),
			e.Surface,
			e.Player,
			e.Outcome,
			fmt.Sprintf("%d/%d", e.Length, e.Total),
			strconv.FormatUint(e.Ticks, 10),
			e.Duration.Round(time.Second).String(),
			strconv.FormatInt(e.Seed, 10),
		)
	}
	fmt.Println(t.String())
	return nil
}
