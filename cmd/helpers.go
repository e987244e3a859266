package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/usnaveen/paperlink/internal/config"
	"github.com/usnaveen/paperlink/internal/correct"
	"github.com/usnaveen/paperlink/internal/links"
	"github.com/usnaveen/paperlink/internal/store"
)

// loadConfig loads the environment configuration for a command.
func loadConfig(log zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// loadTable returns the confusion table: the built-in one, or the YAML
// file named by PAPERLINK_CONFUSION_FILE when set.
func loadTable(cfg *config.Config, log zerolog.Logger) (correct.Table, error) {
	if cfg.ConfusionFile == "" {
		return correct.Default(), nil
	}

	table, err := correct.Load(cfg.ConfusionFile)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", cfg.ConfusionFile).
			Msg("Failed to load confusion table")
		return nil, fmt.Errorf("failed to load confusion table %s: %w", cfg.ConfusionFile, err)
	}

	log.Debug().
		Str("file", cfg.ConfusionFile).
		Int("entries", len(table)).
		Msg("Confusion table loaded")
	return table, nil
}

// openService opens the link database and builds the service over it.
// The caller closes the returned store when done.
func openService(cfg *config.Config, maxDistance int, log zerolog.Logger) (*links.Service, *store.Store, error) {
	table, err := loadTable(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("database", cfg.DatabasePath).
			Msg("Failed to open link database")
		return nil, nil, fmt.Errorf("failed to open link database: %w", err)
	}

	return links.NewService(st, table, maxDistance), st, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}
