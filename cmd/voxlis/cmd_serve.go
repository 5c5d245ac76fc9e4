package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"voxlis/internal/logging"
	"voxlis/internal/server"
)

var serveFlags struct {
	addr      string
	publicDir string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and static pages",
	Long: `Starts the HTTP server: /api/unc-test/{name}, /api/exploits, /api/exploit/{name},
/api/roblox/version, /api/health, /metrics and the static site from public_dir.

SIGINT or SIGTERM triggers a graceful shutdown bounded by server.shutdown_timeout.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (overrides server.addr and PORT)")
	serveCmd.Flags().StringVar(&serveFlags.publicDir, "public-dir", "", "static site directory (overrides server.public_dir)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveFlags.addr != "" {
		cfg.Server.Addr = serveFlags.addr
	}
	if serveFlags.publicDir != "" {
		cfg.Server.PublicDir = serveFlags.publicDir
	}

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	logger := logging.New("http")
	srv := server.New(a.svc, a.status, server.Options{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		PublicDir:       cfg.Server.PublicDir,
		APIPerMinute:    cfg.RateLimit.APIPerMinute,
		StrictPerMinute: cfg.RateLimit.StrictPerMinute,
	}, server.WithMetrics(a.metrics), server.WithLogger(logger))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "version", version, "mirrors", a.status.Mirrors())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
