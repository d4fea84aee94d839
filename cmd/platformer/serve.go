package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-platformer/internal/api"
	"github.com/vovakirdan/tui-platformer/internal/level"
	"github.com/vovakirdan/tui-platformer/internal/metrics"
	"github.com/vovakirdan/tui-platformer/internal/platform/tui"
	"github.com/vovakirdan/tui-platformer/internal/spectate"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

var (
	flagSSHAddr     string
	flagHTTPAddr    string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server and HTTP API",
	Long: `Start an SSH server that lets users connect and play, plus an HTTP API
with health, Prometheus metrics, live sessions, runs and a websocket
spectator feed.

Each SSH connection gets its own session with a map picker.
Runs are stored per-server (all users share the same board).

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.platformer/host_key

HTTP endpoints:
  GET /health
  GET /metrics
  GET /api/sessions, /api/sessions/{id}
  GET /api/runs?map=<id>&limit=<n>
  GET /api/maps, /api/maps/{id}/stats
  GET /ws/spectate/{id}   (websocket)

Examples:
  platformer serve                      # SSH on :23234, HTTP on :8080
  platformer serve --ssh :2222          # Listen on port 2222
  platformer serve --http ""            # SSH only
  platformer serve --host-key ./key     # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", ":8080", "HTTP API address (empty disables)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	logger := newLogger("platformer")

	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	cat, err := loadCatalog()
	if err != nil {
		fail("%v", err)
	}
	maps, err := loadMaps()
	if err != nil {
		fail("%v", err)
	}
	for _, m := range maps {
		for _, verr := range m.Validate(cat) {
			logger.Warn("map problem", "map", m.ID, "err", verr)
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open runs database", "err", err)
		store = nil
	}

	m := metrics.New()
	hub := spectate.NewHub()
	hub.OnSubscribersChanged = m.SetSpectators

	sshSrv, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		TickRate:    flagFPS,
	}, tui.Backend{
		Maps:    maps,
		Catalog: cat,
		Config:  cfg,
		Store:   store,
		Hub:     hub,
		Metrics: m,
		Logger:  logger.WithPrefix("platformer-ssh"),
	})
	if err != nil {
		fail("creating server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		wg   sync.WaitGroup
		errs = make(chan error, 2)
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sshSrv.Serve(ctx); err != nil {
			errs <- err
			stop()
		}
	}()

	if flagHTTPAddr != "" {
		rcfg := api.RouterConfig{
			Hub:     hub,
			Maps:    level.NewLoader(flagMapsDir),
			Metrics: m,
			Logger:  logger.WithPrefix("platformer-http"),
		}
		if store != nil {
			rcfg.Runs = store
		}
		httpSrv := api.NewServer(flagHTTPAddr, rcfg)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := httpSrv.Run(ctx); err != nil {
				errs <- err
				stop()
			}
		}()
	}

	logger.Info("platformer server ready", "ssh", flagSSHAddr, "http", flagHTTPAddr, "maps", len(maps))
	wg.Wait()
	close(errs)

	failed := false
	for err := range errs {
		logger.Error("server error", "err", err)
		failed = true
	}
	if store != nil {
		store.Close()
	}
	if failed {
		os.Exit(1)
	}
}
