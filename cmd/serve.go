package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/usnaveen/paperlink/internal/logger"
	"github.com/usnaveen/paperlink/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the PaperLink HTTP server",
	Long: `Run the HTTP server hosting the redirect route and the JSON API.

Routes:
  GET  /{code}            Redirect to the registered target URL
  POST /api/links         Register a URL under a fresh code
  GET  /api/links/{code}  Inspect a registered link
  POST /api/recover       Recover a link from scanned text
  POST /api/recover/live  Single-substitution match for live scanning
  GET  /healthz           Liveness probe

Relevant environment variables:
  PAPERLINK_ADDR     - Listen address (default: :8080)
  PAPERLINK_BASE_URL - Base URL printed in front of codes
  PAPERLINK_DB       - SQLite database path (default: paperlink.db)`,
	Example: `  # Serve on the configured address
  paperlink serve

  # Serve on a specific port
  paperlink serve --addr :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: PAPERLINK_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	addr, _ := cmd.Flags().GetString("addr")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.ListenAddr
	}

	svc, st, err := openService(cfg, cfg.MaxDistance, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close link database")
		}
	}()

	srv := server.New(server.Config{
		Address: addr,
		BaseURL: cfg.BaseURL,
	}, svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info().
		Str("addr", addr).
		Str("base_url", cfg.BaseURL).
		Str("database", cfg.DatabasePath).
		Msg("PaperLink server listening")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	log.Info().Msg("Server stopped")
	return nil
}
