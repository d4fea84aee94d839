package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/game"
	"github.com/vovakirdan/tui-platformer/internal/metrics"
	"github.com/vovakirdan/tui-platformer/internal/sim"
	"github.com/vovakirdan/tui-platformer/internal/spectate"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

// publishIntervalMs throttles spectator frames to 10 per second.
const publishIntervalMs = 100

// footerHeight is the status or console line under the playfield.
const footerHeight = 1

// RunSaver persists finished runs.
type RunSaver interface {
	SaveRun(r storage.Run) (int64, error)
}

// GameDeps are the optional collaborators of a GameModel.
type GameDeps struct {
	Runs    RunSaver
	Hub     *spectate.Hub
	Metrics *metrics.Metrics
	Logger  *log.Logger
	Player  string
	HoldMs  int
}

// GameModel is the Bubble Tea model for one play session.
type GameModel struct {
	session   *game.Session
	screen    *core.Screen
	config    core.RuntimeConfig
	deps      GameDeps
	keyMapper *KeyMapper
	held      *HeldInput
	console   *console
	meters    meters

	start     time.Time
	nowMs     float64
	lastPubMs float64
	specID    spectate.SessionID
	message   string

	paused     bool
	ended      bool // metrics and run recorded for the current attempt
	embedded   bool // hosted inside SessionModel; back does not quit the program
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a model around a loaded session.
func NewGameModel(session *game.Session, cfg core.RuntimeConfig, deps GameDeps) GameModel {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.Player == "" {
		deps.Player = "local"
	}
	c := newConsole()
	m := GameModel{
		session:   session,
		screen:    core.NewScreen(cfg.ScreenW, playfieldHeight(cfg.ScreenH)),
		config:    cfg,
		deps:      deps,
		keyMapper: NewKeyMapper(),
		held:      NewHeldInput(deps.HoldMs),
		console:   &c,
		meters:    newMeters(),
		start:     time.Now(),
		lastPubMs: -publishIntervalMs,
		message:   "` console  p pause  b back  q quit",
	}
	if deps.Hub != nil {
		m.specID = deps.Hub.Register(session.Map().ID, deps.Player)
		deps.Hub.Publish(m.specID, session.Snapshot())
	}
	deps.Metrics.SessionStarted()
	return m
}

func playfieldHeight(screenH int) int {
	return core.Max(1, screenH-hudHeight-footerHeight)
}

// Init starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.console.open {
			return m.handleConsoleKey(msg)
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, playfieldHeight(msg.Height))
		return m, nil
	case TickMsg:
		if m.quitting || m.backToMenu {
			return m, nil
		}
		return m.handleTick(time.Time(msg))
	}
	return m, nil
}

// handleKey processes keyboard input while the console is closed.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.leave("quit")
		m.quitting = true
		return m, tea.Quit
	}

	switch action {
	case core.ActionBack:
		m.leave("quit")
		m.backToMenu = true
		if !m.embedded {
			return m, tea.Quit
		}
	case core.ActionPause:
		if !m.session.Over() {
			m.paused = !m.paused
		}
	case core.ActionTerminal:
		m.held.Release()
		return m, m.console.show()
	case core.ActionRestart:
		if m.session.Over() {
			m.restart()
		}
	default:
		if !m.paused {
			m.held.Press(action, m.nowMs)
		}
	}
	return m, nil
}

func (m GameModel) handleConsoleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "`":
		m.console.hide()
		return m, nil
	case "ctrl+c":
		m.leave("quit")
		m.quitting = true
		return m, tea.Quit
	case "enter":
		m.runCommand(m.console.submit())
		return m, nil
	}
	return m, m.console.update(msg)
}

// runCommand applies one console line.
func (m *GameModel) runCommand(line string) {
	cmd, err := ParseCommand(line)
	if err != nil {
		if errors.Is(err, ErrUnknownCommand) {
			m.message = fmt.Sprintf("%v (try: %s)", err, ConsoleHelp)
		} else {
			m.message = err.Error()
		}
		return
	}

	switch cmd.Kind {
	case CommandHelp:
		m.message = ConsoleHelp
	case CommandHeal:
		m.session.Heal(cmd.Amount)
		m.message = fmt.Sprintf("health %+g", cmd.Amount)
	case CommandAmmo:
		m.session.GrantAmmo(int(cmd.Amount))
		m.message = fmt.Sprintf("ammo %+d", int(cmd.Amount))
	case CommandRestart:
		if !m.session.Over() {
			m.finish("quit")
		}
		m.restart()
	}
	m.deps.Logger.Debug("console command", "line", line, "player", m.deps.Player)
}

// handleTick advances the simulation one frame.
func (m GameModel) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.nowMs = float64(now.Sub(m.start)) / float64(time.Millisecond)

	intent := m.held.Intent(m.nowMs)
	if m.paused {
		intent = core.Intent{}
	}

	began := time.Now()
	snap := m.session.Tick(intent, m.nowMs, m.console.open || m.paused)
	m.deps.Metrics.RecordTick(time.Since(began), snap.Events)

	justEnded := m.session.Over() && !m.ended
	if justEnded {
		m.finish(m.session.Stats().Cause)
	}
	m.publish(snap, justEnded)

	return m, tickCmd(m.config.TickRate)
}

// publish sends the frame to spectators, at most every publishIntervalMs
// unless force is set.
func (m *GameModel) publish(snap sim.Snapshot, force bool) {
	if m.deps.Hub == nil {
		return
	}
	if !force && m.nowMs-m.lastPubMs < publishIntervalMs {
		return
	}
	m.lastPubMs = m.nowMs
	if err := m.deps.Hub.Publish(m.specID, snap); err != nil {
		m.deps.Logger.Debug("spectate publish failed", "err", err)
	}
}

// finish records the end of the current attempt once.
func (m *GameModel) finish(cause string) {
	if m.ended {
		return
	}
	m.ended = true
	m.deps.Metrics.SessionEnded()

	st := m.session.Stats()
	if st.Ticks == 0 || m.deps.Runs == nil {
		return
	}
	run := storage.Run{
		MapID:      st.MapID,
		Player:     m.deps.Player,
		Cause:      cause,
		Score:      st.Score(),
		DurationMs: int64(st.DurationMs),
		Health:     st.Health,
		Ammo:       st.Ammo,
		Pickups:    st.Pickups,
		HazardHits: st.HazardHits,
	}
	if _, err := m.deps.Runs.SaveRun(run); err != nil {
		m.deps.Logger.Warn("could not save run", "map", run.MapID, "err", err)
		return
	}
	m.deps.Metrics.RunSaved()
}

// leave ends the attempt and drops the spectator session.
func (m *GameModel) leave(cause string) {
	m.finish(cause)
	if m.deps.Hub != nil && m.specID != "" {
		m.deps.Hub.Unregister(m.specID)
		m.specID = ""
	}
}

func (m *GameModel) restart() {
	if err := m.session.Restart(); err != nil {
		m.message = err.Error()
		m.deps.Logger.Error("restart failed", "err", err)
		return
	}
	m.held.Release()
	m.paused = false
	m.message = "restarted"
	if m.ended {
		m.ended = false
		m.deps.Metrics.SessionStarted()
	}
	if m.deps.Hub != nil && m.specID == "" {
		m.specID = m.deps.Hub.Register(m.session.Map().ID, m.deps.Player)
	}
	m.publish(m.session.Snapshot(), true)
}

var (
	overStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	pauseStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the HUD, the playfield and the footer.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	m.session.Render(m.screen)
	snap := m.session.Snapshot()
	st := m.session.Stats()
	switch {
	case m.session.Over():
		drawBanner(m.screen, core.ColorBrightRed, "GAME OVER", st.Cause, fmt.Sprintf("score %d", st.Score()))
	case m.paused:
		drawBanner(m.screen, core.ColorBrightYellow, "PAUSED")
	}

	var b strings.Builder
	b.WriteString(renderHUD(m.meters, m.session.Map().Name, snap, st, m.config.ScreenW))
	b.WriteString("\n")
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(m.footer(st))
	return b.String()
}

func (m GameModel) footer(st game.Stats) string {
	switch {
	case m.console.open:
		return m.console.view()
	case m.session.Over():
		return overStyle.Render(fmt.Sprintf("GAME OVER (%s)  score %d", st.Cause, st.Score())) +
			dimStyle.Render("  r restart  b back  q quit")
	case m.paused:
		return pauseStyle.Render("PAUSED") + dimStyle.Render("  p resume")
	}
	return dimStyle.Render(m.message)
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// SpectateID returns the spectator session id, empty without a hub.
func (m GameModel) SpectateID() spectate.SessionID {
	return m.specID
}

// Run starts the game view as a standalone program.
func Run(session *game.Session, cfg core.RuntimeConfig, deps GameDeps) error {
	model := NewGameModel(session, cfg, deps)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if gm, ok := final.(GameModel); ok {
		gm.leave("quit")
	}
	return err
}
