package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/desksnake/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagServeSpeed  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the desksnake SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own virtual desktop sized to the client's
terminal. With --journal every game is recorded with the SSH user name.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.desksnake/host_key

Examples:
  desksnake serve                           # Listen on :23234 with auto-generated key
  desksnake serve --ssh :2222               # Listen on port 2222
  desksnake serve --host-key ./my_host_key  # Use specific host key
  desksnake serve --journal ./journal.db    # Record every game

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServeSpeed, "speed", "", "Speed preset: slow, normal, fast, fixed")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := loadConfig(flagServeSpeed)
	logger, closeLog := newLogger(os.Stderr, "desksnake-ssh")
	defer closeLog()

	srvCfg := tui.DefaultSSHServerConfig()
	srvCfg.Address = flagSSHAddr
	srvCfg.HostKeyPath = flagHostKey
	srvCfg.JournalPath = flagJournal
	srvCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	srvCfg.Play = playConfig(cfg, logger)
	srvCfg.Logger = logger

	server, err := tui.NewSSHServer(srvCfg)
	if err != nil {
		fail("creating server: %v", err)
	}

	fmt.Printf("Starting desksnake SSH server on %s\n", srvCfg.Address)
	fmt.Println("Connect with: ssh localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fail("server: %v", err)
	}
}
