package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/desksnake/internal/storage"
)

// JournalSource is the read side of the session journal.
type JournalSource interface {
	Recent(limit int) ([]storage.SessionEntry, error)
	Ticks(sessionID int64) ([]storage.TickEntry, error)
	OutcomeCounts() (map[string]int, error)
}

// JournalKeyMap defines the key bindings for the journal viewer.
type JournalKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k JournalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k JournalKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Back, k.Quit},
	}
}

// DefaultJournalKeyMap returns default key bindings.
func DefaultJournalKeyMap() JournalKeyMap {
	return JournalKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ticks"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// JournalModel is the Bubble Tea model listing recorded sessions and the
// ticks of a selected one.
type JournalModel struct {
	source   JournalSource
	limit    int
	sessions []storage.SessionEntry
	ticks    []storage.TickEntry
	counts   map[string]int
	selected *storage.SessionEntry
	table    table.Model
	help     help.Model
	keys     JournalKeyMap
	width    int
	height   int
	err      error
	quitting bool
}

// NewJournalModel creates a journal viewer showing up to limit sessions.
func NewJournalModel(source JournalSource, limit, width, height int) JournalModel {
	h := help.New()
	h.ShowAll = false

	m := JournalModel{
		source: source,
		limit:  limit,
		keys:   DefaultJournalKeyMap(),
		help:   h,
		width:  width,
		height: height,
	}
	m.loadSessions()
	return m
}

var sessionColumns = []table.Column{
	{Title: "ID", Width: 5},
	{Title: "Started", Width: 13},
	{Title: "Where", Width: 9},
	{Title: "Player", Width: 10},
	{Title: "Outcome", Width: 9},
	{Title: "Length", Width: 9},
	{Title: "Ticks", Width: 7},
	{Title: "Time", Width: 7},
}

var tickColumns = []table.Column{
	{Title: "Tick", Width: 6},
	{Title: "Length", Width: 7},
	{Title: "Head", Width: 11},
	{Title: "Heading", Width: 8},
	{Title: "Food", Width: 11},
	{Title: "State", Width: 8},
}

// createTable creates a new table with the given columns.
func (m *JournalModel) createTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadSessions loads the session list.
func (m *JournalModel) loadSessions() {
	m.selected = nil
	m.ticks = nil
	m.table = m.createTable(sessionColumns)

	sessions, err := m.source.Recent(m.limit)
	if err != nil {
		m.err = err
		return
	}
	m.sessions = sessions

	counts, err := m.source.OutcomeCounts()
	if err != nil {
		m.err = err
		return
	}
	m.counts = counts

	rows := make([]table.Row, len(sessions))
	for i, e := range sessions {
		rows[i] = sessionRow(e)
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// loadTicks switches to the tick list of the highlighted session.
func (m *JournalModel) loadTicks() {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.sessions) {
		return
	}
	entry := m.sessions[i]

	ticks, err := m.source.Ticks(entry.ID)
	if err != nil {
		m.err = err
		return
	}
	m.selected = &entry
	m.ticks = ticks
	m.table = m.createTable(tickColumns)

	rows := make([]table.Row, len(ticks))
	for i, t := range ticks {
		rows[i] = tickRow(t)
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func sessionRow(e storage.SessionEntry) table.Row {
	player := e.Player
	if player == "" {
		player = "-"
	}
	return table.Row{
		strconv.FormatInt(e.ID, 10),
		e.StartedAt.Format("Jan 02 15:04"),
		e.Surface,
		player,
		e.Outcome,
		fmt.Sprintf("%d/%d", e.Length, e.Total),
		strconv.FormatUint(e.Ticks, 10),
		e.Duration.Round(time.Second).String(),
	}
}

func tickRow(t storage.TickEntry) table.Row {
	food := fmt.Sprintf("%d,%d", t.FoodX, t.FoodY)
	if t.FoodEaten {
		food = "eaten"
	}
	return table.Row{
		strconv.FormatUint(t.Tick, 10),
		strconv.Itoa(t.Length),
		fmt.Sprintf("%d,%d", t.HeadX, t.HeadY),
		t.Dir.String(),
		food,
		string(t.State),
	}
}

// Init initializes the journal model.
func (m JournalModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the journal viewer.
func (m JournalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			if m.selected == nil {
				m.quitting = true
				return m, tea.Quit
			}
			m.loadSessions()
			return m, nil

		case key.Matches(msg, m.keys.Select):
			if m.selected == nil {
				m.loadTicks()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(m.height-8, 3))
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the journal.
func (m JournalModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "SESSION JOURNAL"
	if m.selected != nil {
		title = fmt.Sprintf("SESSION %d - %s, seed %d", m.selected.ID, m.selected.Outcome, m.selected.Seed)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))
	b.WriteString("\n")

	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	if m.selected == nil && len(m.counts) > 0 {
		b.WriteString(mutedStyle.Render(formatCounts(m.counts)))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or an empty/error message.
func (m JournalModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.err != nil:
		return emptyStyle.Render("Could not read the journal:\n" + m.err.Error())
	case m.selected == nil && len(m.sessions) == 0:
		return emptyStyle.Render("No sessions recorded yet.\nPlay with --journal to record one.")
	case m.selected != nil && len(m.ticks) == 0:
		return emptyStyle.Render("This session ended before its first tick.")
	}
	return m.table.View()
}

// formatCounts renders outcome totals in a stable order.
func formatCounts(counts map[string]int) string {
	outcomes := make([]string, 0, len(counts))
	for o := range counts {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)

	parts := make([]string, len(outcomes))
	for i, o := range outcomes {
		parts[i] = fmt.Sprintf("%s %d", o, counts[o])
	}
	return strings.Join(parts, " · ")
}

// RunJournal runs the journal viewer.
func RunJournal(source JournalSource, limit, width, height int) error {
	model := NewJournalModel(source, limit, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
