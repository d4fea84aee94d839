package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/game"
	"github.com/vovakirdan/tui-platformer/internal/level"
	"github.com/vovakirdan/tui-platformer/internal/metrics"
	"github.com/vovakirdan/tui-platformer/internal/ratelimit"
	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/spectate"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.platformer/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the simulation rate of hosted sessions.
	TickRate int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		TickRate:    60,
	}
}

// Backend bundles what hosted sessions need.
type Backend struct {
	Maps    []level.Map
	Catalog *registry.Catalog
	Config  config.Config
	Store   *storage.Store // optional
	Hub     *spectate.Hub  // optional
	Metrics *metrics.Metrics
	Logger  *log.Logger
}

// SSHServer wraps a Wish SSH server for the platformer.
type SSHServer struct {
	config  SSHServerConfig
	backend Backend
	server  *ssh.Server
	limiter *ratelimit.IPRateLimiter
	logger  *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, backend Backend) (*SSHServer, error) {
	logger := backend.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "platformer-ssh",
		})
		backend.Logger = logger
	}
	if backend.Catalog == nil {
		return nil, fmt.Errorf("ssh: %w", errNoCatalog)
	}

	srv := &SSHServer{
		config:  cfg,
		backend: backend,
		limiter: ratelimit.NewIPRateLimiter(ratelimit.SSHConfig),
		logger:  logger,
	}
	srv.limiter.OnReject = func(ip string) {
		backend.Metrics.RecordRejected("ssh_rate_limit")
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("ssh: cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".platformer", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("ssh: cannot create host key directory: %w", mkdirErr)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.rateLimitMiddleware,
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		srv.limiter.Stop()
		return nil, fmt.Errorf("ssh: cannot create server: %w", err)
	}

	srv.server = server
	return srv, nil
}

var errNoCatalog = errors.New("catalog is required")

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
	}

	model := NewSessionModel(s.backend, cfg, sess.User())
	go func() {
		<-sess.Context().Done()
		model.Close()
	}()

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// rateLimitMiddleware refuses clients opening sessions too quickly.
func (s *SSHServer) rateLimitMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		ip := ratelimit.HostOf(sess.RemoteAddr().String())
		if !s.limiter.Allow(ip) {
			s.logger.Warn("session rejected: rate limit", "remote", ip)
			wish.Fatalln(sess, "too many sessions, try again later")
			return
		}
		next(sess)
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// Serve runs the SSH server until ctx is cancelled.
func (s *SSHServer) Serve(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.limiter.Stop()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down SSH server")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.limiter.Stop()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

type sessionView int

const (
	viewMenu sessionView = iota
	viewRuns
	viewGame
)

// SessionModel manages the full session flow: menu -> game -> menu, with
// the runs board one key away. This is the top-level model used for SSH sessions.
type SessionModel struct {
	backend   Backend
	config    core.RuntimeConfig
	username  string
	view      sessionView
	menu      MenuModel
	runs      RunsModel
	gameModel *GameModel
	live      *liveGame
	status    string
	quitting  bool
}

// liveGame tracks the running game across model copies so a dropped
// connection can still end it.
type liveGame struct {
	mu     sync.Mutex
	gm     *GameModel
	closed bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(backend Backend, cfg core.RuntimeConfig, username string) SessionModel {
	return SessionModel{
		backend:  backend,
		config:   cfg,
		username: username,
		menu:     NewMenuModel(backend.Maps, cfg),
		live:     &liveGame{},
	}
}

// Close ends the running game, if any. Safe to call from any goroutine.
func (m SessionModel) Close() {
	m.live.mu.Lock()
	defer m.live.mu.Unlock()
	if m.live.gm != nil {
		m.live.gm.leave("quit")
		m.live.gm = nil
	}
	m.live.closed = true
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.view {
	case viewGame:
		return m.updateGame(msg)
	case viewRuns:
		return m.updateRuns(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsRuns():
		var source RunSource
		if m.backend.Store != nil {
			source = m.backend.Store
		}
		m.runs = NewRunsModel(source, m.backend.Maps, m.config.ScreenW, m.config.ScreenH)
		m.view = viewRuns
		m.menu = NewMenuModel(m.backend.Maps, m.config)
		return m, nil

	case m.menu.Selected() != nil:
		mapID := m.menu.Selected().MapID
		m.menu = NewMenuModel(m.backend.Maps, m.config)
		gm, err := m.startGame(mapID)
		if err != nil {
			m.status = err.Error()
			m.backend.Logger.Error("could not start game", "map", mapID, "user", m.username, "err", err)
			return m, nil
		}
		m.status = ""
		m.gameModel = gm
		m.view = viewGame
		m.live.mu.Lock()
		m.live.gm = gm
		m.live.mu.Unlock()
		return m, m.gameModel.Init()
	}

	// Swallow tea.Quit from sub-models; the session owns the program.
	return m, filterQuit(cmd)
}

func (m SessionModel) startGame(mapID string) (*GameModel, error) {
	var mp *level.Map
	for i := range m.backend.Maps {
		if m.backend.Maps[i].ID == mapID {
			mp = &m.backend.Maps[i]
			break
		}
	}
	if mp == nil {
		return nil, fmt.Errorf("map not found: %s", mapID)
	}

	session, err := game.NewSession(*mp, m.backend.Catalog, m.backend.Config,
		game.WithLogger(m.backend.Logger.With("user", m.username)))
	if err != nil {
		return nil, err
	}

	var runs RunSaver
	if m.backend.Store != nil {
		runs = m.backend.Store
	}
	gm := NewGameModel(session, m.config, GameDeps{
		Runs:    runs,
		Hub:     m.backend.Hub,
		Metrics: m.backend.Metrics,
		Logger:  m.backend.Logger,
		Player:  m.username,
		HoldMs:  m.backend.Config.Input.HoldMs,
	})
	gm.embedded = true
	return &gm, nil
}

// updateRuns handles updates when the runs board is shown.
func (m SessionModel) updateRuns(msg tea.Msg) (tea.Model, tea.Cmd) {
	newRuns, cmd := m.runs.Update(msg)
	if rm, ok := newRuns.(RunsModel); ok {
		m.runs = rm
	}
	if m.runs.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.runs.IsGoingBack() {
		m.view = viewMenu
		return m, nil
	}
	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.live.mu.Lock()
	defer m.live.mu.Unlock()
	if m.live.closed {
		m.quitting = true
		return m, tea.Quit
	}

	newModel, cmd := m.gameModel.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.gameModel = &gameModel
	}
	m.live.gm = m.gameModel

	if m.gameModel.IsQuitting() {
		m.live.gm = nil
		m.quitting = true
		return m, tea.Quit
	}

	if m.gameModel.BackToMenu() {
		m.live.gm = nil
		m.view = viewMenu
		m.gameModel = nil
		return m, m.menu.Init()
	}

	return m, cmd
}

// filterQuit drops a command that only quits the program.
func filterQuit(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		if _, ok := msg.(tea.QuitMsg); ok {
			return nil
		}
		return msg
	}
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.view {
	case viewGame:
		if m.gameModel != nil {
			return m.gameModel.View()
		}
	case viewRuns:
		return m.runs.View()
	}

	if m.status != "" {
		return m.menu.View() + "\n" + centerText(overStyle.Render(m.status), m.config.ScreenW)
	}
	return m.menu.View()
}
