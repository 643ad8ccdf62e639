// desksnake turns a desktop full of icons into a game of snake. The
// desktop is virtual: it lives in your terminal or in an SSH session.
//
// Usage:
//
//	desksnake play           - Play on a desktop in this terminal
//	desksnake serve          - Start SSH server for remote play
//	desksnake simulate       - Run a scripted game without a terminal
//	desksnake journal        - Browse recorded sessions
//	desksnake config         - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.desksnake/config.yaml)
//	--seed <value>      - Set RNG seed for reproducible games
//	--journal [path]    - Record sessions (default path: ~/.desksnake/journal.db)
//	--log <path>        - Write logs to a file
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultJournalPath = "~/.desksnake/journal.db"

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagJournal  string
	flagLog      string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "desksnake",
	Short: "Desksnake - play snake with your desktop icons",
	Long: `Desksnake clears a desktop of icons and lets you steer a snake made of
them. Every icon you eat joins the tail; eat them all to win.

Available commands:
  play      - Play on a virtual desktop in this terminal
  serve     - Start SSH server for remote play
  simulate  - Run a scripted game headless
  journal   - Browse recorded sessions
  config    - Print the effective configuration

Examples:
  desksnake play
  desksnake play --speed fast --icons 20
  desksnake serve --ssh :2222 --journal
  desksnake simulate --script ./moves.yaml --seed 42
  desksnake journal`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagJournal, "journal", "", "Record sessions to this database")
	rootCmd.PersistentFlags().Lookup("journal").NoOptDefVal = defaultJournalPath
	rootCmd.PersistentFlags().StringVar(&flagLog, "log", "", "Write logs to this file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(configCmd)
}
