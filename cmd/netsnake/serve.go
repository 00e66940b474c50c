package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/netsnake/internal/netsim"
	"github.com/vovakirdan/netsnake/internal/platform/tui"
	"github.com/vovakirdan/netsnake/internal/server"
)

var (
	flagAddr    string
	flagSSHAddr string
	flagHostKey string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the move server",
	Long: `Start the HTTP move server. Every move request is held for the simulated
latency of its mode and may be reported as lost.

Endpoints:
  POST /api/move      - Submit one move
  GET  /api/move/ws   - Move stream over WebSocket
  GET  /api/health    - Health check
  GET  /api/stats     - Per-mode counters

With --ssh the terminal client is also served over SSH. SSH players share
this server's leaderboard and send their moves to it.

Environment:
  PORT             - Overrides the listen port
  BASE_LATENCY_MS  - Overrides the base latency

Examples:
  netsnake serve                      # Listen on :3000
  netsnake serve --addr :8080
  netsnake serve --ssh :23234         # Also accept ssh localhost -p 23234
  BASE_LATENCY_MS=150 netsnake serve`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH listen address (disabled if empty)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key (auto-generated if not specified)")
}

func runServe(cmd *cobra.Command, _ []string) {
	if cmd.Flags().Changed("addr") {
		cfg.Server.Address = flagAddr
	}
	if cmd.Flags().Changed("ssh") {
		cfg.Server.SSHAddress = flagSSHAddr
	}
	if cmd.Flags().Changed("host-key") {
		cfg.Server.HostKeyPath = flagHostKey
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := netsim.NewFromConfig(cfg, seed())
	srv := server.New(cfg.Server, sim, logger)

	errCh := make(chan error, 2)
	go func() { errCh <- srv.ListenAndServe(ctx) }()
	running := 1

	if cfg.Server.SSHAddress != "" {
		store, err := openStore()
		if err != nil {
			logger.Warn("leaderboard unavailable, SSH results will not be saved", "err", err)
			store = nil
		} else {
			defer store.Close()
		}

		clientCfg := cfg.Client
		clientCfg.ServerURL = localURL(cfg.Server.Address)

		sshSrv, err := tui.NewSSHServer(tui.SSHServerConfig{
			Address:     cfg.Server.SSHAddress,
			HostKeyPath: cfg.Server.HostKeyPath,
			IdleTimeout: cfg.Server.IdleTimeout(),
			Client:      clientCfg,
			Game:        cfg.Game,
			Profiles:    netsim.ProfilesFromConfig(cfg.Modes),
		}, store, logger.WithPrefix("netsnake-ssh"))
		if err != nil {
			stop()
			<-errCh
			fail("creating SSH server: %v", err)
		}
		go func() { errCh <- sshSrv.ListenAndServe(ctx) }()
		running++
	}

	fmt.Printf("Move server listening on %s\n", cfg.Server.Address)
	if cfg.Server.SSHAddress != "" {
		fmt.Printf("SSH play on %s\n", cfg.Server.SSHAddress)
	}
	fmt.Println("Press Ctrl+C to stop")

	var firstErr error
	for range running {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			stop()
		}
	}
	if firstErr != nil {
		fail("%v", firstErr)
	}
}

// localURL turns a listen address into a URL the SSH sessions can dial.
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
