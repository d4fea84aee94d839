package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/level"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

// Runs board layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show map list sidebar
	sidebarWidth       = 20  // Width of map list sidebar
	maxRuns            = 100 // Max runs to load
)

// RunSource reads ranked runs.
type RunSource interface {
	TopRuns(mapID string, limit int) ([]storage.Run, error)
}

// RunsKeyMap defines the key bindings for the runs board.
type RunsKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextMap key.Binding
	PrevMap key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k RunsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextMap, k.PrevMap, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k RunsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextMap, k.PrevMap},
		{k.Back, k.Quit},
	}
}

// DefaultRunsKeyMap returns default key bindings.
func DefaultRunsKeyMap() RunsKeyMap {
	return RunsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextMap: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab/→", "next map"),
		),
		PrevMap: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab/←", "prev map"),
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

// RunsModel is the Bubble Tea model for the runs board.
type RunsModel struct {
	maps        []MenuItem
	mapCursor   int
	source      RunSource
	runs        []storage.Run
	loadErr     error
	table       table.Model
	help        help.Model
	keys        RunsKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewRunsModel creates a runs board over the given maps.
func NewRunsModel(source RunSource, maps []level.Map, width, height int) RunsModel {
	items := menuItems(maps)

	h := help.New()
	h.ShowAll = false

	m := RunsModel{
		maps:        items,
		source:      source,
		keys:        DefaultRunsKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	if len(m.maps) > 0 {
		m.loadRuns(m.maps[0].MapID)
	}
	return m
}

// createTable creates a new table sized to the window.
func (m *RunsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Player", Width: 12},
		{Title: "Score", Width: 7},
		{Title: "Time", Width: 6},
		{Title: "Cause", Width: 7},
		{Title: "Date", Width: 13},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(core.Max(1, m.height-8)), // leave room for header, help, and margins
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

// loadRuns loads the board for one map.
func (m *RunsModel) loadRuns(mapID string) {
	m.runs, m.loadErr = nil, nil
	if m.source != nil {
		m.runs, m.loadErr = m.source.TopRuns(mapID, maxRuns)
	}
	m.updateTableRows()
}

// RunRows formats runs as table rows.
func RunRows(runs []storage.Run) []table.Row {
	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			r.Player,
			fmt.Sprintf("%d", r.Score),
			formatDuration(float64(r.DurationMs)),
			r.Cause,
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

func (m *RunsModel) updateTableRows() {
	m.table.SetRows(RunRows(m.runs))
	m.table.GotoTop()
}

// Init initializes the runs board.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the runs board.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextMap):
			if len(m.maps) > 0 {
				m.mapCursor = (m.mapCursor + 1) % len(m.maps)
				m.loadRuns(m.maps[m.mapCursor].MapID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevMap):
			if len(m.maps) > 0 {
				m.mapCursor = (m.mapCursor - 1 + len(m.maps)) % len(m.maps)
				m.loadRuns(m.maps[m.mapCursor].MapID)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// CurrentMap returns the id of the map whose runs are shown.
func (m RunsModel) CurrentMap() string {
	if len(m.maps) == 0 {
		return ""
	}
	return m.maps[m.mapCursor].MapID
}

// View renders the runs board.
func (m RunsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	title := "BEST RUNS"
	if len(m.maps) > 0 {
		title = fmt.Sprintf("BEST RUNS - %s", m.maps[m.mapCursor].Title)
	}
	b.WriteString(menuTitleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	content := boxStyle.Render(m.renderTableContent())
	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", content))
	} else {
		b.WriteString(centerText(m.renderTabs(), m.width))
		b.WriteString("\n\n")
		b.WriteString(content)
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m RunsModel) renderSidebar() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sb strings.Builder
	sb.WriteString("Maps\n")
	sb.WriteString(strings.Repeat("-", sidebarWidth-4))
	sb.WriteString("\n")
	for i, it := range m.maps {
		cursor := "  "
		line := lipgloss.NewStyle()
		if i == m.mapCursor {
			cursor = "> "
			line = line.Bold(true).Foreground(lipgloss.Color("229"))
		}
		name := it.Title
		if maxLen := sidebarWidth - 6; len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		sb.WriteString(line.Render(cursor + name))
		sb.WriteString("\n")
	}
	return style.Render(sb.String())
}

func (m RunsModel) renderTabs() string {
	if len(m.maps) == 0 {
		return ""
	}
	return fmt.Sprintf("< %s >", m.maps[m.mapCursor].Title)
}

// renderTableContent renders the table or an empty message.
func (m RunsModel) renderTableContent() string {
	empty := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)
	if m.loadErr != nil {
		return empty.Render("Could not load runs:\n" + m.loadErr.Error())
	}
	if len(m.runs) == 0 {
		return empty.Render("No runs recorded yet.\nFinish a map to set one!")
	}
	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m RunsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m RunsModel) IsQuitting() bool {
	return m.quitting
}

// RunRunsBoard runs the board. Returns true if user wants to go back to menu.
func RunRunsBoard(source RunSource, maps []level.Map, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(
		NewRunsModel(source, maps, width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(RunsModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
