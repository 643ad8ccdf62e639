package tui

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/desksnake/internal/core"
	"github.com/vovakirdan/desksnake/internal/games/snake"
	"github.com/vovakirdan/desksnake/internal/session"
)

// PlayConfig describes one desktop game.
type PlayConfig struct {
	Icons  int
	PitchX int
	PitchY int
	Width  int // 0 = screen width
	Height int // 0 = screen height minus the status bar
	FPS    int
	Hold   time.Duration

	// Session is handed to the session; its Observer is chained with the view.
	Session session.Config

	// OnDone, if set, is called from the session goroutine once Run returns.
	OnDone func(session.Result, error)
}

// statusHeight is the number of rows below the desktop.
const statusHeight = 2

// sessionDoneMsg is sent when the session goroutine has finished.
type sessionDoneMsg struct {
	result session.Result
	err    error
}

// progress mirrors the latest session state for the view.
type progress struct {
	mu      sync.Mutex
	info    session.Info
	snap    snake.Snapshot
	started bool
}

func (p *progress) SessionStarted(info session.Info) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.info = info
	p.started = true
	return nil
}

func (p *progress) TickCompleted(snap snake.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap = snap
	return nil
}

func (p *progress) SessionEnded(session.Result) error { return nil }

func (p *progress) get() (session.Info, snake.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.info, p.snap, p.started
}

// runState tracks the session goroutine so the desktop is only torn down
// after the session has restored it.
type runState struct {
	mu      sync.Mutex
	started bool
	stopped bool
	done    chan struct{}
}

func newRunState() *runState {
	return &runState{done: make(chan struct{})}
}

// begin reports whether the session may still start.
func (r *runState) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	r.started = true
	return true
}

// wait blocks until a started session has returned. A session that has not
// started yet never will.
func (r *runState) wait() {
	r.mu.Lock()
	r.stopped = true
	started := r.started
	r.mu.Unlock()
	if started {
		<-r.done
	}
}

// Model is the Bubble Tea model for one desktop game. The session runs in
// its own goroutine; the model forwards keys and redraws the desktop.
type Model struct {
	desktop  *Desktop
	input    *KeyState
	session  *session.Session
	progress *progress
	ctx      context.Context
	cancel   context.CancelFunc
	onDone   func(session.Result, error)
	run      *runState

	keys     KeyMap
	screen   *core.Screen
	fps      int
	result   *session.Result
	err      error
	stopping bool
	quitting bool
}

// NewModel creates the desktop and the session for one game. The session is
// cancelled when ctx is done or the player quits.
func NewModel(ctx context.Context, cfg PlayConfig, screenW, screenH int) Model {
	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = screenW
	}
	if height <= 0 {
		height = screenH - statusHeight
	}
	fps := cfg.FPS
	if fps <= 0 {
		fps = core.DefaultConfig().FPS
	}

	desktop := NewDesktop(width, height, cfg.PitchX, cfg.PitchY, cfg.Icons)
	input := NewKeyState(cfg.Hold)
	prog := &progress{}

	sessCfg := cfg.Session
	sessCfg.Observer = session.Observers{prog, cfg.Session.Observer}
	sess := session.New(desktop, input, sessCfg)

	ctx, cancel := context.WithCancel(ctx)
	return Model{
		desktop:  desktop,
		input:    input,
		session:  sess,
		progress: prog,
		ctx:      ctx,
		cancel:   cancel,
		onDone:   cfg.OnDone,
		run:      newRunState(),
		keys:     DefaultKeyMap(),
		screen:   core.NewScreen(max(screenW, width), max(screenH, height+statusHeight)),
		fps:      fps,
	}
}

// Init starts the session and the redraw loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.runSession(), tickCmd(m.fps))
}

func (m Model) runSession() tea.Cmd {
	sess, ctx, onDone, run := m.session, m.ctx, m.onDone, m.run
	return func() tea.Msg {
		if !run.begin() {
			return nil
		}
		defer close(run.done)

		res, err := sess.Run(ctx)
		if onDone != nil {
			onDone(res, err)
		}
		return sessionDoneMsg{result: res, err: err}
	}
}

// stop cancels the session and waits for it to restore the desktop.
func (m Model) stop() {
	m.cancel()
	m.run.wait()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.screen.Resize(max(msg.Width, 1), max(msg.Height, 1))
		return m, nil

	case TickMsg:
		if m.result != nil || m.err != nil {
			return m, nil
		}
		return m, tickCmd(m.fps)

	case sessionDoneMsg:
		m.result = &msg.result
		m.err = msg.err
		if m.stopping {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Finished() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.keys.IsQuit(msg) {
		// The session restores the desktop before it reports back.
		m.stopping = true
		m.cancel()
		return m, nil
	}

	if c, ok := m.keys.Control(msg); ok {
		m.input.Press(c)
	}
	return m, nil
}

// Finished reports whether the session has ended.
func (m Model) Finished() bool {
	return m.result != nil || m.err != nil
}

// Result returns the session result and error once finished.
func (m Model) Result() (session.Result, error) {
	if m.result == nil {
		return session.Result{}, m.err
	}
	return *m.result, m.err
}

// Desktop returns the desktop the session plays on.
func (m Model) Desktop() *Desktop {
	return m.desktop
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	info, snap, started := m.progress.get()
	drawDesktop(m.screen, m.desktop, snap, started && !m.Finished())
	m.drawStatus(info, snap)
	if m.Finished() {
		m.drawResult()
	}
	return RenderScreen(m.screen)
}

func (m Model) drawStatus(info session.Info, snap snake.Snapshot) {
	y := m.screen.Height() - statusHeight
	m.screen.FillRect(core.NewRect(0, y, m.screen.Width(), statusHeight), core.Cell{Rune: ' '})

	status := "arranging icons..."
	switch {
	case m.stopping && !m.Finished():
		status = "restoring desktop..."
	case info.Total > 0:
		status = formatStatus(info, snap)
	}
	m.screen.DrawText(0, y, status, core.ColorWhite)
	m.screen.DrawText(0, y+1, helpLine(m.keys.ShortHelp()), core.ColorGray)
}

func (m Model) drawResult() {
	title, color := "Game over", core.ColorRed
	detail := ""
	switch {
	case m.err != nil && errors.Is(m.err, session.ErrRenderSurfaceLost):
		title, detail = "Desktop lost", m.err.Error()
	case m.err != nil:
		title, detail = "Could not start", m.err.Error()
	case m.result.Outcome == session.OutcomeWon:
		title, color = "You ate every icon!", core.ColorBrightGreen
	case m.result.Outcome == session.OutcomeCancelled:
		title, color = "Stopped", core.ColorYellow
	}
	if m.result != nil && m.err == nil {
		detail = formatResult(*m.result)
	}
	drawOverlay(m.screen, title, detail, color)
}

// Run starts a local desktop game in the terminal and blocks until the
// player leaves. The session result is returned once the desktop has been
// restored.
func Run(ctx context.Context, cfg PlayConfig, screenW, screenH int) (session.Result, error) {
	model := NewModel(ctx, cfg, screenW, screenH)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	model.stop()
	model.Desktop().Close()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return session.Result{}, err
	}

	m, ok := final.(Model)
	if !ok || !m.Finished() {
		return session.Result{Outcome: session.OutcomeCancelled}, nil
	}
	return m.Result()
}
