package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/desksnake/internal/session"
	"github.com/vovakirdan/desksnake/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.desksnake/host_key.
	HostKeyPath string

	// JournalPath is the session journal database. Empty disables journaling.
	JournalPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Play is the game every connection gets. Width and Height of 0 follow
	// the client's terminal; Session.Seed of 0 gives every game its own seed.
	Play PlayConfig

	// Logger receives server and session events. Defaults to stderr.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		JournalPath: "~/.desksnake/journal.db",
		IdleTimeout: 30 * time.Minute,
		Play: PlayConfig{
			Icons:  48,
			PitchX: 4,
			PitchY: 2,
			FPS:    30,
			Hold:   DefaultHold,
		},
	}
}

// SSHServer wraps a Wish SSH server that gives every connection its own
// virtual desktop to play on.
type SSHServer struct {
	config  SSHServerConfig
	server  *ssh.Server
	journal *storage.Journal
	logger  *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "desksnake-ssh",
		})
	}

	var journal *storage.Journal
	if cfg.JournalPath != "" {
		j, err := storage.Open(cfg.JournalPath)
		if err != nil {
			logger.Warn("could not open session journal", "error", err)
			// Continue without journal
		} else {
			journal = j
		}
	}

	srv := &SSHServer{
		config:  cfg,
		journal: journal,
		logger:  logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".desksnake", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if journal != nil {
			journal.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a desktop game for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	user := sshSession.User()
	play := s.config.Play
	play.Session.Logger = s.logger.With("user", user)
	play.OnDone = s.sessionDone(user, nil)

	if s.journal != nil {
		rec, err := s.journal.Begin(storage.Meta{Surface: "ssh", Player: user})
		if err != nil {
			s.logger.Warn("could not journal session", "user", user, "error", err)
		} else {
			play.Session.Observer = rec
			play.OnDone = s.sessionDone(user, rec)
		}
	}

	ctx := sshSession.Context()
	model := NewModel(ctx, play, pty.Window.Width, pty.Window.Height)

	// A dropped connection loses the desktop mid-game.
	desktop := model.Desktop()
	go func() {
		<-ctx.Done()
		desktop.Close()
	}()

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// sessionDone logs how a game ended and closes its journal record.
func (s *SSHServer) sessionDone(user string, rec *storage.Recording) func(session.Result, error) {
	return func(res session.Result, err error) {
		if err == nil {
			s.logger.Info("game ended", "user", user, "outcome", res.Outcome, "length", res.Length)
			return
		}
		s.logger.Warn("game ended with error", "user", user, "error", err)
		if rec == nil {
			return
		}
		if abortErr := rec.Abort(err); abortErr != nil {
			s.logger.Warn("could not journal session error", "user", user, "error", abortErr)
		}
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if s.journal != nil {
		s.journal.Close()
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
